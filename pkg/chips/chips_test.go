package chips

import (
	"math"
	"testing"
	"time"

	"seehuhn.de/go/geom/vec"

	"github.com/unolab/unolayout/pkg/errors"
	"github.com/unolab/unolayout/pkg/pdk"
	"github.com/unolab/unolayout/pkg/wg"
)

func TestSixteenGrating3Rings(t *testing.T) {
	cfg := pdk.Default()
	g, err := wg.ApodizedGratingCouplerRectangular(cfg, wg.DefaultApodizedRectangularParams())
	if err != nil {
		t.Fatal(err)
	}
	p := DefaultSixteenGratingParams()
	c, err := SixteenGrating3Rings(cfg, g, p)
	if err != nil {
		t.Fatalf("SixteenGrating3Rings() error = %v", err)
	}
	// Array, two loopbacks, then a ring and four routes per site.
	if got, want := len(c.Refs), 3+3*5; got != want {
		t.Errorf("got %d refs, want %d", got, want)
	}
	ga := c.Refs[0]
	if got := ga.Cell.Ports(); len(got) != numGratings {
		t.Errorf("array has %d ports, want %d", len(got), numGratings)
	}
	if o := ga.Port("o0"); o.Orientation != 270 {
		t.Errorf("grating ports face %v, want 270", o.Orientation)
	}

	outer, inner := c.Info["outer_loopback_length"], c.Info["inner_loopback_length"]
	span := (numGratings + 1) * p.Pitch
	if outer < span+2*(ga.YMax()-ga.YMin()) {
		t.Errorf("outer loopback length = %v, want it to wrap the %v µm row", outer, span)
	}
	if !(inner > p.Pitch) || inner > p.Pitch+4*cfg.Radius {
		t.Errorf("inner loopback length = %v", inner)
	}

	for i, site := range ringSites {
		ring := c.Refs[3+5*i]
		want := ga.Port(site).Center.Add(vec.Vec2{X: -p.Pitch / 2, Y: -p.RingDrop})
		if d := ring.Center().Sub(want).Length(); d > 1e-6 {
			t.Errorf("ring %d center = %v, want %v", i, ring.Center(), want)
		}
		if got := ring.Cell.Length(); math.Abs(got-p.RingLengths[i]) > 1e-6 {
			t.Errorf("ring %d length = %v, want %v", i, got, p.RingLengths[i])
		}
	}

	if _, err := SixteenGrating3Rings(cfg, nil, p); !errors.Is(err, errors.ErrCodeInvalidParameter) {
		t.Errorf("SixteenGrating3Rings(nil) error = %v, want INVALID_PARAMETER", err)
	}
}

func TestFullChip(t *testing.T) {
	cfg := pdk.Default()
	p := DefaultFullChipParams()
	p.Time = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c, err := FullChip(cfg, p)
	if err != nil {
		t.Fatalf("FullChip() error = %v", err)
	}
	if w, h := c.Size(); w != p.DieWidth || h != p.DieWidth {
		t.Errorf("Size() = %v × %v, want the %v µm die", w, h, p.DieWidth)
	}
	// Die, four rows, stamp, five captions, FIB structures, two crosses.
	if got := len(c.Refs); got != 14 {
		t.Errorf("got %d refs, want 14", got)
	}
	for i, y := range []float64{2000, 1300, -1300, -2000} {
		row := c.Refs[1+i]
		if d := row.Center().Sub(vec.Vec2{Y: y}).Length(); d > 1e-6 {
			t.Errorf("row %d center = %v, want (0, %v)", i, row.Center(), y)
		}
		if row.Transform.Rotation != 180 {
			t.Errorf("row %d rotation = %v, want 180", i, row.Transform.Rotation)
		}
	}

	// The same stamp time gives the same cell tree.
	again, err := FullChip(cfg, p)
	if err != nil {
		t.Fatal(err)
	}
	if again.Name != c.Name {
		t.Errorf("Name = %q, then %q", c.Name, again.Name)
	}
}
