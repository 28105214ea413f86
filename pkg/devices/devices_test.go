package devices

import (
	"math"
	"strings"
	"testing"

	"seehuhn.de/go/geom/vec"

	"github.com/unolab/unolayout/pkg/errors"
	"github.com/unolab/unolayout/pkg/layout"
	"github.com/unolab/unolayout/pkg/pdk"
)

func near(a, b vec.Vec2, tol float64) bool { return a.Sub(b).Length() < tol }

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestDirPolSplitter(t *testing.T) {
	cfg := pdk.Default()
	tests := []struct {
		name   string
		stages int
		te, tm vec.Vec2
	}{
		{"single stage", 1, vec.Vec2{X: 25, Y: -2}, vec.Vec2{X: 25, Y: 2}},
		{"three stages", 3, vec.Vec2{X: 165, Y: -5.5}, vec.Vec2{X: 165, Y: 9.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultDirPolSplitterParams()
			p.NumStages = tt.stages
			c, err := DirPolSplitter(cfg, p)
			if err != nil {
				t.Fatalf("DirPolSplitter() error = %v", err)
			}
			if in := c.Port("o1"); !near(in.Center, vec.Vec2{X: -10, Y: -2}, 1e-6) || in.Orientation != 180 {
				t.Errorf("o1 = %v facing %v", in.Center, in.Orientation)
			}
			if te := c.Port("o2"); !near(te.Center, tt.te, 1e-6) || !approx(te.Orientation, 0) {
				t.Errorf("TE port = %v facing %v, want %v", te.Center, te.Orientation, tt.te)
			}
			if tm := c.Port("o3"); !near(tm.Center, tt.tm, 1e-6) || !approx(tm.Orientation, 0) {
				t.Errorf("TM port = %v facing %v, want %v", tm.Center, tm.Orientation, tt.tm)
			}
		})
	}

	for _, mod := range []func(*DirPolSplitterParams){
		func(p *DirPolSplitterParams) { p.NumStages = 0 },
		func(p *DirPolSplitterParams) { p.StageDX = 30 },
		func(p *DirPolSplitterParams) { p.StageDY = 5 },
	} {
		p := DefaultDirPolSplitterParams()
		mod(&p)
		if _, err := DirPolSplitter(cfg, p); !errors.Is(err, errors.ErrCodeInvalidParameter) {
			t.Errorf("DirPolSplitter(%+v) error = %v, want INVALID_PARAMETER", p, err)
		}
	}
}

func TestRacetrackLength(t *testing.T) {
	cfg := pdk.Default()
	for _, n := range []int{1, 2} {
		p := DefaultRacetrackParams()
		p.NumCouplers = n
		p.Heater = false
		c, err := Racetrack(cfg, p)
		if err != nil {
			t.Fatalf("Racetrack(%d couplers) error = %v", n, err)
		}
		if !approx(c.Length(), p.RingLength) {
			t.Errorf("Racetrack(%d couplers) length = %v, want %v", n, c.Length(), p.RingLength)
		}
		if got := len(layout.PortsByType(c.Ports(), layout.Optical)); got != 2*n {
			t.Errorf("Racetrack(%d couplers) optical ports = %d", n, got)
		}
		if got := len(layout.PortsByType(c.Ports(), layout.Electrical)); got != 0 {
			t.Errorf("Racetrack(no heater) electrical ports = %d", got)
		}
	}
}

func TestRacetrackPorts(t *testing.T) {
	cfg := pdk.Default()
	p := DefaultRacetrackParams()
	p.NumCouplers = 2
	p.Heater = false
	c, err := Racetrack(cfg, p)
	if err != nil {
		t.Fatal(err)
	}
	h := c.Info["height"]
	tests := []struct {
		name   string
		center vec.Vec2
		orient float64
	}{
		{"o1", vec.Vec2{X: 40, Y: -9.5}, 0},
		{"o2", vec.Vec2{X: -30, Y: -9.5}, 180},
		{"o3", vec.Vec2{X: 40, Y: h + 10.5}, 0},
		{"o4", vec.Vec2{X: -30, Y: h + 10.5}, 180},
	}
	for _, tt := range tests {
		got := c.Port(tt.name)
		if !near(got.Center, tt.center, 1e-6) || !approx(got.Orientation, tt.orient) {
			t.Errorf("%s = %v facing %v, want %v facing %v", tt.name, got.Center, got.Orientation, tt.center, tt.orient)
		}
	}
}

func TestRacetrackHeater(t *testing.T) {
	cfg := pdk.Default()

	t.Run("full ring", func(t *testing.T) {
		c, err := Racetrack(cfg, DefaultRacetrackParams())
		if err != nil {
			t.Fatal(err)
		}
		e1, e2 := c.Port("e1"), c.Port("e2")
		if !approx(e1.Orientation, 270) || !approx(e2.Orientation, 90) {
			t.Errorf("lead orientations = %v, %v, want 270, 90", e1.Orientation, e2.Orientation)
		}
		if d := e2.Y() - e1.Y(); !approx(d, 25) {
			t.Errorf("lead spacing = %v, want 25", d)
		}
		if math.Abs(e1.X()-e2.X()) > 1e-2 {
			t.Errorf("leads at x = %v and %v, want level", e1.X(), e2.X())
		}
		if e1.Type != layout.Electrical || e1.Layer != cfg.Layers.Heater {
			t.Errorf("e1 = %+v, want an electrical HEATER port", e1)
		}
		if e1.X() > c.Port("o2").X() {
			t.Errorf("leads at x = %v, want west of the ring", e1.X())
		}
	})

	t.Run("half ring", func(t *testing.T) {
		p := DefaultRacetrackParams()
		p.HalfRingHeater = true
		c, err := Racetrack(cfg, p)
		if err != nil {
			t.Fatal(err)
		}
		h := c.Info["height"]
		if e1 := c.Port("e1"); !near(e1.Center, vec.Vec2{X: 0, Y: -7}, 1e-6) || !approx(e1.Orientation, 270) {
			t.Errorf("e1 = %v facing %v, want (0,-7) facing 270", e1.Center, e1.Orientation)
		}
		if e2 := c.Port("e2"); !near(e2.Center, vec.Vec2{X: 0, Y: h + 8}, 1e-6) || !approx(e2.Orientation, 90) {
			t.Errorf("e2 = %v facing %v, want (0,%v) facing 90", e2.Center, e2.Orientation, h+8)
		}
	})
}

func TestRacetrackInvalid(t *testing.T) {
	cfg := pdk.Default()
	for _, n := range []int{0, 3} {
		p := DefaultRacetrackParams()
		p.NumCouplers = n
		_, err := Racetrack(cfg, p)
		if !errors.Is(err, errors.ErrCodeInvalidParameter) || !strings.Contains(err.Error(), "numCouplers must be 1 or 2") {
			t.Errorf("Racetrack(%d couplers) error = %v", n, err)
		}
	}

	p := DefaultRacetrackParams()
	p.RingLength = 100
	if _, err := Racetrack(cfg, p); !errors.Is(err, errors.ErrCodeInfeasibleGeometry) {
		t.Errorf("Racetrack(short ring) error = %v, want INFEASIBLE_GEOMETRY", err)
	}

	p = DefaultRacetrackParams()
	p.LeadSep = 200
	if _, err := Racetrack(cfg, p); !errors.Is(err, errors.ErrCodeInvalidParameter) {
		t.Errorf("Racetrack(lead_sep 200) error = %v, want INVALID_PARAMETER", err)
	}
}

func TestRoutedRacetrack(t *testing.T) {
	cfg := pdk.Default()
	tests := []struct {
		name     string
		couplers int
		refs     int
	}{
		{"all-pass", 1, 4},
		{"add-drop", 2, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rp := DefaultRacetrackParams()
			rp.NumCouplers = tt.couplers
			ring, err := Racetrack(cfg, rp)
			if err != nil {
				t.Fatal(err)
			}
			c, err := RoutedRacetrack(cfg, ring, DefaultRoutedRacetrackParams())
			if err != nil {
				t.Fatalf("RoutedRacetrack() error = %v", err)
			}
			if len(c.Refs) != tt.refs {
				t.Errorf("refs = %d, want %d", len(c.Refs), tt.refs)
			}
			if got := c.Refs[0].Port("o2").Center; !near(got, vec.Vec2{X: 500, Y: 1000}, 1e-6) {
				t.Errorf("ring o2 at %v, want (500,1000)", got)
			}
			if !c.HasPort("e1") || !c.HasPort("e2") {
				t.Errorf("heater ports missing: %v", c.Ports())
			}
		})
	}

	if _, err := RoutedRacetrack(cfg, layout.New("empty"), DefaultRoutedRacetrackParams()); !errors.Is(err, errors.ErrCodeInvalidParameter) {
		t.Errorf("RoutedRacetrack(empty) error = %v, want INVALID_PARAMETER", err)
	}
}

func TestMZIUnbalanced(t *testing.T) {
	cfg := pdk.Default()
	c, err := MZIUnbalanced(cfg, nil, DefaultMZIUnbalancedParams())
	if err != nil {
		t.Fatalf("MZIUnbalanced() error = %v", err)
	}
	// two coupler pairs, the MZI, four escapes, four routes and the label
	if len(c.Refs) != 12 {
		t.Errorf("refs = %d, want 12", len(c.Refs))
	}
	if got := c.Info["delta_length"]; got != 100 {
		t.Errorf("delta_length = %v", got)
	}
	if len(c.Extract(cfg.Layers.Annotation).Polygons) == 0 {
		t.Error("missing imbalance label")
	}

	p := DefaultMZIUnbalancedParams()
	p.EdgeSep = 3
	if _, err := MZIUnbalanced(cfg, nil, p); !errors.Is(err, errors.ErrCodeInvalidParameter) {
		t.Errorf("MZIUnbalanced(edge_sep 3) error = %v, want INVALID_PARAMETER", err)
	}
}
