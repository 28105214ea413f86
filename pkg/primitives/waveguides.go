package primitives

import (
	"seehuhn.de/go/geom/vec"

	"github.com/unolab/unolayout/pkg/errors"
	"github.com/unolab/unolayout/pkg/layout"
	"github.com/unolab/unolayout/pkg/pdk"
)

// StraightParams configures [Straight].
type StraightParams struct {
	Length float64               `json:"length"`
	Width  float64               `json:"width,omitempty"`
	XS     *layout.CrossSection `json:"-"`
}

// DefaultStraightParams returns a 10 µm straight at the process width.
func DefaultStraightParams() StraightParams {
	return StraightParams{Length: 10}
}

// Straight returns a straight waveguide along +x from the origin.
func Straight(cfg *pdk.Config, p StraightParams) (*layout.Component, error) {
	if err := errors.ValidatePositive("straight", "length", p.Length); err != nil {
		return nil, err
	}
	return NewStraight(p.Length, cfg.XS(p.XS, p.Width)), nil
}

// NewStraight extrudes xs along a straight of the given length.
func NewStraight(length float64, xs layout.CrossSection) *layout.Component {
	c := layout.Extrude(layout.Straight(length), xs)
	c.Name = layout.CellName("straight", length, xs)
	return c
}

// BendParams configures [BendCircular] and [BendEuler].
type BendParams struct {
	// Radius is the (minimum) bend radius; zero uses the cross-section's.
	Radius float64 `json:"radius,omitempty"`
	// Angle is the turn in degrees; positive turns left.
	Angle float64 `json:"angle"`
	// P is the Euler fraction of the turn spent in clothoid sections.
	P     float64               `json:"p,omitempty"`
	Width float64               `json:"width,omitempty"`
	XS    *layout.CrossSection `json:"-"`
}

// DefaultBendParams returns a 90° left turn with p = 0.5.
func DefaultBendParams() BendParams {
	return BendParams{Angle: 90, P: 0.5}
}

func (p BendParams) resolve(cfg *pdk.Config, kind string) (layout.CrossSection, float64, error) {
	xs := cfg.XS(p.XS, p.Width)
	r := pdk.Or(p.Radius, xs.Radius)
	if !(r > 0) {
		return xs, 0, errors.Parameter(kind, "radius", "must be positive, got %g", r)
	}
	if p.Angle == 0 || p.Angle < -360 || p.Angle > 360 {
		return xs, 0, errors.Parameter(kind, "angle", "must be non-zero and within ±360°, got %g", p.Angle)
	}
	return xs, r, nil
}

// BendCircular returns a circular bend starting at the origin heading +x.
func BendCircular(cfg *pdk.Config, p BendParams) (*layout.Component, error) {
	xs, r, err := p.resolve(cfg, "bend_circular")
	if err != nil {
		return nil, err
	}
	c := layout.Extrude(layout.Arc(r, p.Angle), xs)
	c.Name = layout.CellName("bend_circular", r, p.Angle, xs)
	return c, nil
}

// BendEuler returns an Euler bend whose minimum radius is Radius.
func BendEuler(cfg *pdk.Config, p BendParams) (*layout.Component, error) {
	xs, r, err := p.resolve(cfg, "bend_euler")
	if err != nil {
		return nil, err
	}
	if p.P < 0 || p.P > 1 {
		return nil, errors.Parameter("bend_euler", "p", "must be in [0, 1], got %g", p.P)
	}
	return NewBendEuler(r, p.Angle, p.P, xs), nil
}

// NewBendEuler extrudes xs along an Euler bend.
func NewBendEuler(radius, angle, p float64, xs layout.CrossSection) *layout.Component {
	c := layout.Extrude(layout.Euler(radius, angle, p), xs)
	c.Name = layout.CellName("bend_euler", radius, angle, p, xs)
	return c
}

// BendSParams configures [BendS].
type BendSParams struct {
	// Size is the (dx, dy) offset from the input to the output port.
	Size  [2]float64            `json:"size"`
	Width float64               `json:"width,omitempty"`
	XS    *layout.CrossSection `json:"-"`
}

// DefaultBendSParams returns an 11 × 1.8 µm S-bend.
func DefaultBendSParams() BendSParams {
	return BendSParams{Size: [2]float64{11, 1.8}}
}

// BendS returns a cubic Bézier S-bend from the origin (port o1, facing
// west) to Size (port o2, facing east).
func BendS(cfg *pdk.Config, p BendSParams) (*layout.Component, error) {
	if !(p.Size[0] > 0) {
		return nil, errors.Parameter("bend_s", "size", "dx must be positive, got %g", p.Size[0])
	}
	return NewBendS(p.Size[0], p.Size[1], cfg.XS(p.XS, p.Width)), nil
}

// NewBendS extrudes xs along an S-bend of the given offset.
func NewBendS(dx, dy float64, xs layout.CrossSection) *layout.Component {
	c := layout.Extrude(layout.SBend(dx, dy), xs)
	c.Name = layout.CellName("bend_s", dx, dy, xs)
	return c
}

// TaperParams configures [Taper].
type TaperParams struct {
	Length float64 `json:"length"`
	// Width1 and Width2 are the input and output widths. Width1 defaults
	// to the process waveguide width, Width2 to Width1.
	Width1 float64 `json:"width1,omitempty"`
	Width2 float64 `json:"width2,omitempty"`
	Layer  string  `json:"layer,omitempty"`
}

// DefaultTaperParams returns a 10 µm taper.
func DefaultTaperParams() TaperParams {
	return TaperParams{Length: 10}
}

// Taper returns a linear taper along +x with ports o1 (west) and o2
// (east).
func Taper(cfg *pdk.Config, p TaperParams) (*layout.Component, error) {
	if err := errors.ValidatePositive("taper", "length", p.Length); err != nil {
		return nil, err
	}
	w1 := pdk.Or(p.Width1, cfg.WGWidth)
	w2 := pdk.Or(p.Width2, w1)
	if w1 < 0 || w2 < 0 {
		return nil, errors.Parameter("taper", "width", "must be positive, got %g/%g", w1, w2)
	}
	l, err := cfg.Layer(p.Layer, cfg.Layers.WG)
	if err != nil {
		return nil, err
	}
	return NewTaper(p.Length, w1, w2, l), nil
}

// NewTaper builds a linear taper polygon.
func NewTaper(length, w1, w2 float64, layer layout.Layer) *layout.Component {
	c := layout.New(layout.CellName("taper", length, w1, w2, layer))
	c.AddPolygon(layer,
		vec.Vec2{X: 0, Y: w1 / 2},
		vec.Vec2{X: 0, Y: -w1 / 2},
		vec.Vec2{X: length, Y: -w2 / 2},
		vec.Vec2{X: length, Y: w2 / 2},
	)
	c.AddPort(layout.Port{Name: "o1", Orientation: 180, Width: w1, Layer: layer, Type: layout.Optical})
	c.AddPort(layout.Port{Name: "o2", Center: vec.Vec2{X: length}, Width: w2, Layer: layer, Type: layout.Optical})
	c.SetInfo("length", length)
	return c
}

// TaperCrossSectionParams configures [TaperCrossSection].
type TaperCrossSectionParams struct {
	Length float64 `json:"length"`
	// Width1 and Width2 select strip cross-sections when XS1/XS2 are nil.
	Width1 float64               `json:"width1,omitempty"`
	Width2 float64               `json:"width2,omitempty"`
	XS1    *layout.CrossSection `json:"-"`
	XS2    *layout.CrossSection `json:"-"`
}

// DefaultTaperCrossSectionParams returns a 10 µm transition.
func DefaultTaperCrossSectionParams() TaperCrossSectionParams {
	return TaperCrossSectionParams{Length: 10}
}

// TaperCrossSection returns a straight whose sections morph linearly from
// XS1 to XS2. Sections are paired by name, so a section can split off or
// vanish by narrowing to zero width.
func TaperCrossSection(cfg *pdk.Config, p TaperCrossSectionParams) (*layout.Component, error) {
	if err := errors.ValidatePositive("taper_cross_section", "length", p.Length); err != nil {
		return nil, err
	}
	xs1 := cfg.XS(p.XS1, p.Width1)
	xs2 := cfg.XS(p.XS2, p.Width2)
	if len(xs1.Sections) == 0 || len(xs2.Sections) == 0 {
		return nil, errors.Parameter("taper_cross_section", "xs", "cross-sections need at least one section")
	}
	return NewTaperCrossSection(p.Length, xs1, xs2), nil
}

// NewTaperCrossSection extrudes a linear transition from xs1 to xs2.
func NewTaperCrossSection(length float64, xs1, xs2 layout.CrossSection) *layout.Component {
	c := layout.ExtrudeTransition(layout.Straight(length), xs1, xs2)
	c.Name = layout.CellName("taper_cross_section", length, xs1, xs2)
	return c
}
