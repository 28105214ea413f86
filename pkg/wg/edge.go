package wg

import (
	"fmt"

	"seehuhn.de/go/geom/vec"

	"github.com/unolab/unolayout/pkg/errors"
	"github.com/unolab/unolayout/pkg/layout"
	"github.com/unolab/unolayout/pkg/pdk"
	"github.com/unolab/unolayout/pkg/primitives"
)

// EdgeCouplerParams configures [EdgeCoupler].
type EdgeCouplerParams struct {
	TipWidth    float64 `json:"tip_width,omitempty"`
	Width       float64 `json:"width,omitempty"`
	TaperLength float64 `json:"taper_length,omitempty"`
	// StraightLength is the run at tip width under the dicing lane;
	// zero means half the Bosch width.
	StraightLength float64 `json:"straight_length,omitempty"`
}

// EdgeCoupler returns an inverse-taper edge coupler: a straight at tip
// width from the facet (o1, at the origin facing west) followed by a
// linear taper up to the waveguide width (o2, facing east).
func EdgeCoupler(cfg *pdk.Config, p EdgeCouplerParams) (*layout.Component, error) {
	tip := pdk.Or(p.TipWidth, cfg.TipWidth)
	w := pdk.Or(p.Width, cfg.WGWidth)
	tl := pdk.Or(p.TaperLength, 50)
	sl := pdk.Or(p.StraightLength, cfg.BoschWidth/2)
	if !(tip > 0) || !(w > 0) || !(tl > 0) || !(sl > 0) {
		return nil, errors.Parameter("edge_coupler", "dimensions", "must be positive, got tip %g, width %g, taper %g, straight %g", tip, w, tl, sl)
	}
	return newEdgeCoupler(cfg, tip, w, tl, sl), nil
}

func newEdgeCoupler(cfg *pdk.Config, tip, w, taperLength, straightLength float64) *layout.Component {
	xs := cfg.Waveguide(tip)
	c := layout.New(layout.CellName("edge_coupler", tip, w, taperLength, straightLength, xs.Layer()))
	s := c.Add(primitives.NewStraight(straightLength, xs))
	t := c.Add(primitives.NewTaper(taperLength, tip, w, xs.Layer())).Connect("o1", s.Port("o2"))
	c.AddPort(s.Port("o1"))
	c.AddPort(t.Port("o2"))
	c.SetInfo("length", straightLength+taperLength)
	return c
}

// EdgeCouplerArrayParams configures [EdgeCouplerArray].
type EdgeCouplerArrayParams struct {
	N        int     `json:"n"`
	Pitch    float64 `json:"pitch"`
	Rotation float64 `json:"rotation"`
}

// DefaultEdgeCouplerArrayParams returns 16 couplers on a 127 µm pitch
// facing south.
func DefaultEdgeCouplerArrayParams() EdgeCouplerArrayParams {
	return EdgeCouplerArrayParams{N: 16, Pitch: 127, Rotation: 90}
}

// EdgeCouplerArray places N rotated copies of coupler along +x and exposes
// their chip-side ports as o0..o{N-1}. A nil coupler selects the default
// edge coupler.
func EdgeCouplerArray(cfg *pdk.Config, coupler *layout.Component, p EdgeCouplerArrayParams) (*layout.Component, error) {
	if p.N < 1 {
		return nil, errors.Parameter("edge_coupler_array", "n", "must be at least 1, got %d", p.N)
	}
	if coupler == nil {
		var err error
		if coupler, err = EdgeCoupler(cfg, EdgeCouplerParams{}); err != nil {
			return nil, err
		}
	}
	if _, err := coupler.LookupPort("o2"); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidParameter, err, "edge_coupler_array: coupler")
	}
	c := layout.New(layout.CellName("edge_coupler_array", coupler.Name, p))
	for i := 0; i < p.N; i++ {
		ref := c.Add(coupler).Rotate(p.Rotation).MoveX(p.Pitch * float64(i))
		c.AddPort(ref.Port("o2").Renamed(fmt.Sprintf("o%d", i)))
	}
	return c, nil
}

// EdgeCouplerPairParams configures [EdgeCouplerPair].
type EdgeCouplerPairParams struct {
	// DXDY places the input facet on the west edge at y = DXDY[1] and the
	// output facet on the south edge at x = DXDY[0].
	DXDY     [2]float64 `json:"dxdy,omitempty"`
	Width    float64    `json:"width,omitempty"`
	LabelIn  string     `json:"label_in,omitempty"`
	LabelOut string     `json:"label_out,omitempty"`
	TipWidth float64    `json:"tip_width,omitempty"`
	// BoschWidth is the deep-etch lane the couplers start in.
	BoschWidth float64 `json:"bosch_width,omitempty"`
}

func (p EdgeCouplerPairParams) dxdy(cfg *pdk.Config) (float64, float64) {
	if p.DXDY == [2]float64{} {
		return cfg.DXDY.X, cfg.DXDY.Y
	}
	return p.DXDY[0], p.DXDY[1]
}

// EdgeCouplerPair returns an input coupler on the west chip edge and an
// output coupler on the south edge. Port o1 faces east from the input,
// o2 north from the output, ready to be routed to each other or to a
// device in between. Labels go next to each facet on LABEL.
func EdgeCouplerPair(cfg *pdk.Config, p EdgeCouplerPairParams) (*layout.Component, error) {
	dx, dy := p.dxdy(cfg)
	bosch := pdk.Or(p.BoschWidth, cfg.BoschWidth)
	ec, err := EdgeCoupler(cfg, EdgeCouplerParams{TipWidth: p.TipWidth, Width: p.Width, StraightLength: bosch / 2})
	if err != nil {
		return nil, err
	}
	c := layout.New(layout.CellName("edge_coupler_pair", dx, dy, ec.Name, p.LabelIn, p.LabelOut, bosch))
	in := c.Add(ec)
	in.MoveTo(in.Port("o1").Center, vec.Vec2{Y: dy})
	out := c.Add(ec).Rotate(90)
	out.MoveTo(out.Port("o1").Center, vec.Vec2{X: dx})
	o1 := in.Port("o2")
	o1.Orientation = 0
	c.AddPort(o1.Renamed("o1"))
	o2 := out.Port("o2")
	o2.Orientation = 90
	c.AddPort(o2.Renamed("o2"))

	if p.LabelIn != "" {
		t, err := layout.Text(p.LabelIn, cfg.TextSize, cfg.Layers.Label, layout.JustifyLeft)
		if err != nil {
			return nil, err
		}
		c.Add(t).Move(vec.Vec2{X: bosch, Y: dy + 15})
	}
	if p.LabelOut != "" {
		t, err := layout.Text(p.LabelOut, cfg.TextSize, cfg.Layers.Label, layout.JustifyRight)
		if err != nil {
			return nil, err
		}
		c.Add(t).Rotate(-90).Move(vec.Vec2{X: dx + 15, Y: bosch})
	}
	return c, nil
}

// EdgeCouplerTriParams configures [EdgeCouplerTri].
type EdgeCouplerTriParams struct {
	DXDY    [2]float64 `json:"dxdy,omitempty"`
	Width   float64    `json:"width,omitempty"`
	EdgeSep float64    `json:"edge_sep,omitempty"`
	LabelIn string     `json:"label_in,omitempty"`
	// LabelOut names the two output facets from west to east.
	LabelOut       [2]string  `json:"label_out,omitempty"`
	TipWidth       float64    `json:"tip_width,omitempty"`
	StraightLength float64    `json:"straight_length,omitempty"`
	TextPosition   [2]float64 `json:"text_position,omitempty"`
}

// triTextSize is the label height of [EdgeCouplerTri].
const triTextSize = 40

// EdgeCouplerTri is [EdgeCouplerPair] with a second output coupler
// EdgeSep east of the first, exposed as o3.
func EdgeCouplerTri(cfg *pdk.Config, p EdgeCouplerTriParams) (*layout.Component, error) {
	dx, dy := EdgeCouplerPairParams{DXDY: p.DXDY}.dxdy(cfg)
	sep := pdk.Or(p.EdgeSep, cfg.EdgeSep)
	if !(sep > 0) {
		return nil, errors.Parameter("edge_coupler_tri", "edge_sep", "must be positive, got %g", sep)
	}
	tp := p.TextPosition
	if tp == [2]float64{} {
		tp = [2]float64{300, 15}
	}
	ec, err := EdgeCoupler(cfg, EdgeCouplerParams{TipWidth: p.TipWidth, Width: p.Width, StraightLength: p.StraightLength})
	if err != nil {
		return nil, err
	}
	c := layout.New(layout.CellName("edge_coupler_tri", dx, dy, sep, ec.Name, p.LabelIn, p.LabelOut, tp))
	in := c.Add(ec)
	in.MoveTo(in.Port("o1").Center, vec.Vec2{Y: dy})
	outs := make([]*layout.Reference, 2)
	for i, x := range []float64{dx, dx + sep} {
		outs[i] = c.Add(ec).Rotate(90)
		outs[i].MoveTo(outs[i].Port("o1").Center, vec.Vec2{X: x})
	}
	o1 := in.Port("o2")
	o1.Orientation = 0
	c.AddPort(o1.Renamed("o1"))
	for i, name := range []string{"o2", "o3"} {
		o := outs[i].Port("o2")
		o.Orientation = 90
		c.AddPort(o.Renamed(name))
	}

	if p.LabelIn != "" {
		t, err := layout.Text(p.LabelIn, triTextSize, cfg.Layers.Label, layout.JustifyLeft)
		if err != nil {
			return nil, err
		}
		c.Add(t).Move(vec.Vec2{X: tp[0], Y: dy + tp[1]})
	}
	for i, x := range []float64{dx, dx + sep} {
		if p.LabelOut[i] == "" {
			continue
		}
		t, err := layout.Text(p.LabelOut[i], triTextSize, cfg.Layers.Label, layout.JustifyRight)
		if err != nil {
			return nil, err
		}
		c.Add(t).Rotate(-90).Move(vec.Vec2{X: x + tp[1], Y: tp[0]})
	}
	return c, nil
}

// StraightWaveguide returns an edge-coupler pair joined by a single
// routed waveguide.
func StraightWaveguide(cfg *pdk.Config, p EdgeCouplerPairParams) (*layout.Component, error) {
	pair, err := EdgeCouplerPair(cfg, p)
	if err != nil {
		return nil, err
	}
	c := layout.New(layout.CellName("straight_waveguide", pair.Name, p.Width))
	ref := c.Add(pair)
	r, err := layout.RouteSingle(c, ref.Port("o1"), ref.Port("o2"), cfg.Waveguide(p.Width))
	if err != nil {
		return nil, fmt.Errorf("straight_waveguide: %w", err)
	}
	c.SetInfo("length", r.Length)
	return c, nil
}

// FIBParams configures [FIBStructures].
type FIBParams struct {
	Width  float64 `json:"width,omitempty"`
	Gap    float64 `json:"gap"`
	Length float64 `json:"length"`
}

// DefaultFIBParams returns 100 µm structures with the ring coupling gap.
func DefaultFIBParams() FIBParams {
	return FIBParams{Gap: 0.5, Length: 100}
}

// FIBStructures returns waveguides for focused-ion-beam cross-section
// imaging: one at the design width, a 1 µm reference 50 µm above it, and
// a copy of a ring coupling section 100 µm above it.
func FIBStructures(cfg *pdk.Config, p FIBParams) (*layout.Component, error) {
	w := pdk.Or(p.Width, cfg.WGWidth)
	if !(p.Length > 0) || !(w > 0) {
		return nil, errors.Parameter("fib_structures", "length/width", "must be positive, got %g/%g", p.Length, w)
	}
	cp, err := primitives.CouplerStraight(cfg, primitives.CouplerStraightParams{Length: p.Length, Gap: p.Gap, Width: w})
	if err != nil {
		return nil, err
	}
	c := layout.New(layout.CellName("fib_structures", w, p.Gap, p.Length))
	c.Add(primitives.NewRectangle(p.Length, w, cfg.Layers.WG, true))
	c.Add(primitives.NewRectangle(p.Length, 1, cfg.Layers.WG, true)).MoveY(50)
	c.Add(cp).Move(vec.Vec2{X: -p.Length / 2, Y: 100})
	return c, nil
}
