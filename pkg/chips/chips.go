// Package chips assembles complete example chips from the component
// library: grating-coupled ring arrays and the full test die that carries
// them.
package chips

import (
	"fmt"
	"time"

	"seehuhn.de/go/geom/vec"

	"github.com/unolab/unolayout/pkg/devices"
	"github.com/unolab/unolayout/pkg/errors"
	"github.com/unolab/unolayout/pkg/fixture"
	"github.com/unolab/unolayout/pkg/layout"
	"github.com/unolab/unolayout/pkg/pdk"
	"github.com/unolab/unolayout/pkg/primitives"
	"github.com/unolab/unolayout/pkg/wg"
)

// numGratings is the size of the grating row. The ring port mapping below
// assumes it.
const numGratings = 16

// ringSites are the gratings each add-drop ring sits below, and
// ringMappings the grating→ring port pairs routed for each ring. Ports o0
// and o15 close the outer loopback, o7 and o8 the inner one.
var (
	ringSites    = [3]string{"o3", "o8", "o13"}
	ringMappings = [3][][2]string{
		{{"o1", "o2"}, {"o2", "o4"}, {"o3", "o3"}, {"o4", "o1"}},
		{{"o5", "o2"}, {"o6", "o4"}, {"o9", "o3"}, {"o10", "o1"}},
		{{"o11", "o2"}, {"o12", "o4"}, {"o13", "o3"}, {"o14", "o1"}},
	}
)

// RingSet sets the three add-drop rings of [SixteenGrating3Rings].
type RingSet struct {
	Gaps            [3]float64 `json:"coupler_gaps"`
	CouplingLengths [3]float64 `json:"coupling_lengths"`
	RingLengths     [3]float64 `json:"ring_lengths"`
}

// SixteenGratingParams configures [SixteenGrating3Rings].
type SixteenGratingParams struct {
	Width float64 `json:"width"`
	Pitch float64 `json:"pitch"`
	RingSet
	// LoopbackSpacing is the clearance of the outer loopback from the
	// gratings.
	LoopbackSpacing float64 `json:"loopback_spacing"`
	// RingDrop is how far below the grating ports each ring is centered.
	RingDrop float64 `json:"ring_drop"`
}

// DefaultSixteenGratingParams returns rings of 500, 600 and 700 µm on a
// 250 µm grating pitch.
func DefaultSixteenGratingParams() SixteenGratingParams {
	return SixteenGratingParams{
		Width: 0.45,
		Pitch: 250,
		RingSet: RingSet{
			Gaps:            [3]float64{0.1, 0.2, 0.3},
			CouplingLengths: [3]float64{15, 20, 25},
			RingLengths:     [3]float64{500, 600, 700},
		},
		LoopbackSpacing: 50,
		RingDrop:        160,
	}
}

// SixteenGrating3Rings places sixteen gratings facing south and uses them
// for two loopbacks and three add-drop racetracks. The outer loopback
// joins the end gratings around the whole row; the inner one joins the
// middle two. Each ring hangs below the gap left of its site grating and
// is routed to four gratings.
func SixteenGrating3Rings(cfg *pdk.Config, grating *layout.Component, p SixteenGratingParams) (*layout.Component, error) {
	const kind = "sixteen_grating_3_rings"
	if grating == nil {
		return nil, errors.Parameter(kind, "grating", "is required")
	}
	xs := cfg.Waveguide(p.Width)
	arr, err := primitives.GratingCouplerArray(cfg, grating, primitives.GratingArrayParams{
		N: numGratings, Pitch: p.Pitch, Rotation: 90, PortName: "o1", XS: &xs,
	})
	if err != nil {
		return nil, err
	}

	c := layout.New(layout.CellName(kind, grating.Name, p))
	ga := c.Add(arr)
	y1 := ga.YMin() - p.LoopbackSpacing
	y2 := ga.YMax() + p.LoopbackSpacing
	steps := []layout.Step{
		layout.StepY(y1),
		layout.StepDX(-p.Pitch),
		layout.StepY(y2),
		layout.StepDX((numGratings + 1) * p.Pitch),
		layout.StepY(y1),
		layout.StepDX(-p.Pitch),
	}
	outer, err := layout.RouteFromSteps(c, ga.Port("o0"), ga.Port(fmt.Sprintf("o%d", numGratings-1)), xs, steps)
	if err != nil {
		return nil, fmt.Errorf("%s: outer loopback: %w", kind, err)
	}
	inner, err := layout.RouteSingle(c, ga.Port("o7"), ga.Port("o8"), xs)
	if err != nil {
		return nil, fmt.Errorf("%s: inner loopback: %w", kind, err)
	}
	c.SetInfo("outer_loopback_length", outer.Length)
	c.SetInfo("inner_loopback_length", inner.Length)

	for i := range ringSites {
		rp := devices.DefaultRacetrackParams()
		rp.NumCouplers = 2
		rp.Width = p.Width
		rp.RingLength = p.RingLengths[i]
		rp.CouplingLength = p.CouplingLengths[i]
		rp.Gap = p.Gaps[i]
		rp.Heater = false
		ring, err := devices.Racetrack(cfg, rp)
		if err != nil {
			return nil, fmt.Errorf("%s: ring %d: %w", kind, i, err)
		}
		r := c.Add(ring)
		site := ga.Port(ringSites[i]).Center
		r.MoveTo(r.Center(), site.Add(vec.Vec2{X: -p.Pitch / 2, Y: -p.RingDrop}))
		if _, err := fixture.NaiveMultiportRoute(c, ga, r, ringMappings[i], xs); err != nil {
			return nil, fmt.Errorf("%s: ring %d: %w", kind, i, err)
		}
	}
	return c, nil
}

// FullChipParams configures [FullChip].
type FullChipParams struct {
	DieWidth float64 `json:"die_width"`
	DesWidth float64 `json:"des_width"`
	Width    float64 `json:"width"`
	// TE and TM are the ring sets of the TE and TM grating rows.
	TE RingSet `json:"te"`
	TM RingSet `json:"tm"`
	// StructureSpacing separates the rows of one polarization and
	// MiddleSpacing the TE rows from the TM rows.
	StructureSpacing float64 `json:"structure_spacing"`
	MiddleSpacing    float64 `json:"middle_spacing"`
	QuadrantLabel    string  `json:"quadrant_label"`
	// Time is stamped on the chip; zero means now.
	Time time.Time `json:"-"`
}

// DefaultFullChipParams returns the 12 mm test die.
func DefaultFullChipParams() FullChipParams {
	const ring = 500
	return FullChipParams{
		DieWidth: 12000,
		DesWidth: 8000,
		Width:    0.5,
		TE: RingSet{
			Gaps:            [3]float64{0.3, 0.3, 0.2},
			CouplingLengths: [3]float64{2, 7, 2.5},
			RingLengths:     [3]float64{ring, ring, ring},
		},
		TM: RingSet{
			Gaps:            [3]float64{0.7, 0.65, 0.6},
			CouplingLengths: [3]float64{0.1, 2, 3.5},
			RingLengths:     [3]float64{ring, ring, ring},
		},
		StructureSpacing: 700,
		MiddleSpacing:    1200,
		QuadrantLabel:    "F",
	}
}

// fullChipRows are the grating rows of [FullChip], top to bottom.
var fullChipRows = []struct {
	name   string
	tm     bool
	offset int // in structure spacings from the middle gap, signed
	apod   wg.Apodization
}{
	{"te_air", false, 2, wg.Apodization{FiberAngle: 12, N: 30, F0: 0.85, R: 0.025, Lambda: 1.55, No: 2.65, Ne: 1.222}},
	{"te", false, 1, wg.Apodization{FiberAngle: 12, N: 30, F0: 0.85, R: 0.025, Lambda: 1.55, No: 2.69, Ne: 1.444}},
	{"tm", true, -1, wg.Apodization{FiberAngle: 12, N: 30, F0: 0.9, R: 0.025, Lambda: 1.55, No: 1.95, Ne: 1.444}},
	{"tm_air", true, -2, wg.Apodization{FiberAngle: 12, N: 30, F0: 0.9, R: 0.015, Lambda: 1.55, No: 1.74, Ne: 1.444}},
}

// chipLabels are the row and column captions of [FullChip].
var chipLabels = []struct {
	text string
	at   vec.Vec2
}{
	{"TE", vec.Vec2{X: -2000, Y: 325}},
	{"TM", vec.Vec2{X: -2000, Y: -300}},
	{"20", vec.Vec2{X: -1300, Y: 325}},
	{"10", vec.Vec2{X: -40, Y: 325}},
	{"3", vec.Vec2{X: 1235, Y: 325}},
}

// FullChip returns the grating test die: the die outline, two TE and two
// TM rows of [SixteenGrating3Rings] with differently apodized gratings,
// a version stamp, captions, FIB cross-section waveguides and two
// alignment crosses.
func FullChip(cfg *pdk.Config, p FullChipParams) (*layout.Component, error) {
	die, err := wg.DieAndFloorplan(cfg, wg.DieParams{DieWidth: p.DieWidth, DesWidth: p.DesWidth})
	if err != nil {
		return nil, err
	}
	c := layout.New(layout.CellName("full_chip", p))
	c.Add(die)

	for _, row := range fullChipRows {
		g, err := wg.ApodizedGratingCouplerRectangular(cfg, wg.ApodizedRectangularParams{
			Apodization: row.apod, WidthGrating: 20, LengthTaper: 300, Width: p.Width,
		})
		if err != nil {
			return nil, fmt.Errorf("full_chip: %s grating: %w", row.name, err)
		}
		sp := DefaultSixteenGratingParams()
		sp.Width = p.Width
		sp.RingSet = p.TE
		if row.tm {
			sp.RingSet = p.TM
		}
		arr, err := SixteenGrating3Rings(cfg, g, sp)
		if err != nil {
			return nil, fmt.Errorf("full_chip: %s row: %w", row.name, err)
		}
		y := p.MiddleSpacing/2 + float64(abs(row.offset))*p.StructureSpacing
		if row.offset < 0 {
			y = -y
		}
		r := c.Add(arr).Rotate(180)
		r.MoveTo(r.Center(), vec.Vec2{Y: y})
	}

	stamp, err := primitives.VersionStamp(cfg, primitives.VersionStampParams{
		Labels: []string{p.QuadrantLabel}, TextSize: 10, Layer: "LABEL", Time: p.Time,
	})
	if err != nil {
		return nil, err
	}
	ts := c.Add(stamp)
	ts.MoveTo(ts.Center(), vec.Vec2{X: -400, Y: 150})

	for _, l := range chipLabels {
		t, err := primitives.NewText(l.text, 50, cfg.Layers.Label, layout.JustifyLeft, l.at)
		if err != nil {
			return nil, err
		}
		c.Add(t)
	}

	fib, err := wg.FIBStructures(cfg, wg.FIBParams{Width: p.Width, Gap: 0.2, Length: 600})
	if err != nil {
		return nil, err
	}
	c.Add(fib).Rotate(-90).MoveX(-50)

	cp := wg.DefaultMLACrossParams()
	cross, err := wg.MLACross(cfg, cp)
	if err != nil {
		return nil, err
	}
	for _, x := range []float64{4000, -4000} {
		c.Add(cross).MoveX(x)
	}
	return c, nil
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}
