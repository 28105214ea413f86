package primitives

import (
	"seehuhn.de/go/geom/vec"

	"github.com/unolab/unolayout/pkg/errors"
	"github.com/unolab/unolayout/pkg/layout"
	"github.com/unolab/unolayout/pkg/pdk"
)

// CouplerParams configures [Coupler].
type CouplerParams struct {
	Gap    float64 `json:"gap"`
	Length float64 `json:"length"`
	// DY is the port-to-port spacing on each side, DX the S-bend length.
	DY    float64               `json:"dy"`
	DX    float64               `json:"dx"`
	Width float64               `json:"width,omitempty"`
	XS    *layout.CrossSection `json:"-"`
}

// DefaultCouplerParams returns a 20 µm coupler with a 0.236 µm gap.
func DefaultCouplerParams() CouplerParams {
	return CouplerParams{Gap: 0.236, Length: 20, DY: 4, DX: 10}
}

// Coupler returns a symmetric directional coupler: two S-bends closing in
// to a parallel section of the given length and opening out again.
//
//	o2 ___                ___ o3
//	      \______________/
//	       ______________      gap
//	o1 ___/              \___ o4
func Coupler(cfg *pdk.Config, p CouplerParams) (*layout.Component, error) {
	xs := cfg.XS(p.XS, p.Width)
	switch {
	case !(p.Gap > 0):
		return nil, errors.Parameter("coupler", "gap", "must be positive, got %g", p.Gap)
	case p.Length < 0:
		return nil, errors.Parameter("coupler", "length", "must not be negative, got %g", p.Length)
	case !(p.DX > 0):
		return nil, errors.Parameter("coupler", "dx", "must be positive, got %g", p.DX)
	case p.DY < p.Gap+xs.Width():
		return nil, errors.Parameter("coupler", "dy", "%g is smaller than gap + width %g", p.DY, p.Gap+xs.Width())
	}

	yc := (p.Gap + xs.Width()) / 2
	arm := layout.Concat(
		layout.SBend(p.DX, yc-p.DY/2),
		layout.Straight(p.Length),
		layout.SBend(p.DX, p.DY/2-yc),
	).Move(vec.Vec2{X: -p.DX, Y: p.DY / 2})
	armCell := layout.Extrude(arm, xs)
	armCell.Name = layout.CellName("coupler_arm", p.Gap, p.Length, p.DY, p.DX, xs)

	c := layout.New(layout.CellName("coupler", p.Gap, p.Length, p.DY, p.DX, xs))
	top := c.Add(armCell)
	bot := c.Add(armCell).MirrorY(0)
	in, out := xs.PortNames[0], xs.PortNames[1]
	c.AddPort(bot.Port(in).Renamed("o1"))
	c.AddPort(top.Port(in).Renamed("o2"))
	c.AddPort(top.Port(out).Renamed("o3"))
	c.AddPort(bot.Port(out).Renamed("o4"))
	c.SetInfo("length", p.Length)
	return c, nil
}

// CouplerStraightParams configures [CouplerStraight].
type CouplerStraightParams struct {
	Length float64               `json:"length"`
	Gap    float64               `json:"gap"`
	Width  float64               `json:"width,omitempty"`
	XS     *layout.CrossSection `json:"-"`
}

// DefaultCouplerStraightParams returns two 10 µm straights 0.27 µm apart.
func DefaultCouplerStraightParams() CouplerStraightParams {
	return CouplerStraightParams{Length: 10, Gap: 0.27}
}

// CouplerStraight returns two parallel straights: the bottom one on the x
// axis, the top one Gap above it edge to edge.
func CouplerStraight(cfg *pdk.Config, p CouplerStraightParams) (*layout.Component, error) {
	if err := errors.ValidatePositive("coupler_straight", "length", p.Length); err != nil {
		return nil, err
	}
	if err := errors.ValidatePositive("coupler_straight", "gap", p.Gap); err != nil {
		return nil, err
	}
	xs := cfg.XS(p.XS, p.Width)
	s := NewStraight(p.Length, xs)
	c := layout.New(layout.CellName("coupler_straight", p.Length, p.Gap, xs))
	bot := c.Add(s)
	top := c.Add(s).MoveY(p.Gap + xs.Width())
	in, out := xs.PortNames[0], xs.PortNames[1]
	c.AddPort(bot.Port(in).Renamed("o1"))
	c.AddPort(top.Port(in).Renamed("o2"))
	c.AddPort(top.Port(out).Renamed("o3"))
	c.AddPort(bot.Port(out).Renamed("o4"))
	c.SetInfo("length", p.Length)
	return c, nil
}

// MMI1x2Params configures [MMI1x2].
type MMI1x2Params struct {
	Width       float64 `json:"width,omitempty"`
	WidthTaper  float64 `json:"width_taper"`
	LengthTaper float64 `json:"length_taper"`
	LengthMMI   float64 `json:"length_mmi"`
	WidthMMI    float64 `json:"width_mmi"`
	// GapMMI is the edge-to-edge gap between the output tapers.
	GapMMI float64 `json:"gap_mmi"`
	Layer  string  `json:"layer,omitempty"`
}

// DefaultMMI1x2Params returns a 5.5 × 2.5 µm MMI with 10 µm tapers.
func DefaultMMI1x2Params() MMI1x2Params {
	return MMI1x2Params{WidthTaper: 1, LengthTaper: 10, LengthMMI: 5.5, WidthMMI: 2.5, GapMMI: 0.25}
}

// MMI1x2 returns a 1×2 multimode interference splitter. The body spans
// x ∈ [0, LengthMMI]; o1 is the input on the west, o2 and o3 the top and
// bottom outputs on the east.
func MMI1x2(cfg *pdk.Config, p MMI1x2Params) (*layout.Component, error) {
	w := pdk.Or(p.Width, cfg.WGWidth)
	switch {
	case !(p.WidthTaper > 0), !(p.LengthTaper > 0), !(p.LengthMMI > 0), !(p.WidthMMI > 0):
		return nil, errors.Parameter("mmi1x2", "dimensions", "must be positive, got %+v", p)
	case p.GapMMI < 0:
		return nil, errors.Parameter("mmi1x2", "gap_mmi", "must not be negative, got %g", p.GapMMI)
	case 2*p.WidthTaper+p.GapMMI > p.WidthMMI:
		return nil, errors.Parameter("mmi1x2", "width_mmi", "%g cannot hold two %g µm tapers %g µm apart", p.WidthMMI, p.WidthTaper, p.GapMMI)
	}
	l, err := cfg.Layer(p.Layer, cfg.Layers.WG)
	if err != nil {
		return nil, err
	}

	c := layout.New(layout.CellName("mmi1x2", w, p, l))
	lt, lm := p.LengthTaper, p.LengthMMI
	wt := p.WidthTaper
	taper := func(x0, y, w0, w1 float64) {
		c.AddPolygon(l,
			vec.Vec2{X: x0, Y: y - w0/2},
			vec.Vec2{X: x0 + lt, Y: y - w1/2},
			vec.Vec2{X: x0 + lt, Y: y + w1/2},
			vec.Vec2{X: x0, Y: y + w0/2},
		)
	}
	taper(-lt, 0, w, wt)
	c.AddPolygon(l,
		vec.Vec2{X: 0, Y: -p.WidthMMI / 2},
		vec.Vec2{X: lm, Y: -p.WidthMMI / 2},
		vec.Vec2{X: lm, Y: p.WidthMMI / 2},
		vec.Vec2{X: 0, Y: p.WidthMMI / 2},
	)
	a := (wt + p.GapMMI) / 2
	taper(lm, a, wt, w)
	taper(lm, -a, wt, w)

	port := func(name string, x, y, o float64) {
		c.AddPort(layout.Port{Name: name, Center: vec.Vec2{X: x, Y: y}, Orientation: o, Width: w, Layer: l, Type: layout.Optical})
	}
	port("o1", -lt, 0, 180)
	port("o2", lm+lt, a, 0)
	port("o3", lm+lt, -a, 0)
	return c, nil
}

// MZIParams configures [MZI].
type MZIParams struct {
	// DeltaLength is how much longer the bottom arm is than the top one.
	DeltaLength float64 `json:"delta_length"`
	// LengthY is the vertical run of the short arm, LengthX the run across
	// the top of both arms.
	LengthY float64               `json:"length_y"`
	LengthX float64               `json:"length_x"`
	Radius  float64               `json:"radius,omitempty"`
	Width   float64               `json:"width,omitempty"`
	XS      *layout.CrossSection `json:"-"`
}

// DefaultMZIParams returns a 10 µm imbalance.
func DefaultMZIParams() MZIParams {
	return MZIParams{DeltaLength: 10, LengthY: 2, LengthX: 0.1}
}

// MZI returns a 2×2 Mach-Zehnder interferometer built from two copies of
// splitter, which must have ports o1..o4 laid out like [Coupler]. The top
// arm bulges up, the bottom arm bulges down by DeltaLength/2 more. Ports
// o1/o2 are the splitter inputs, o3/o4 the combiner outputs. A nil
// splitter selects the default coupler.
func MZI(cfg *pdk.Config, splitter *layout.Component, p MZIParams) (*layout.Component, error) {
	if p.DeltaLength < 0 {
		return nil, errors.Parameter("mzi", "delta_length", "must not be negative, got %g", p.DeltaLength)
	}
	if p.LengthY < 0 || p.LengthX < 0 {
		return nil, errors.Parameter("mzi", "length_x/length_y", "must not be negative, got %g/%g", p.LengthX, p.LengthY)
	}
	xs := cfg.XS(p.XS, p.Width)
	if splitter == nil {
		cp := DefaultCouplerParams()
		cp.XS = &xs
		var err error
		if splitter, err = Coupler(cfg, cp); err != nil {
			return nil, err
		}
	}
	for _, name := range []string{"o1", "o2", "o3", "o4"} {
		if _, err := splitter.LookupPort(name); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidParameter, err, "mzi: splitter")
		}
	}
	r := pdk.Or(p.Radius, xs.Radius)
	if !(r > 0) {
		return nil, errors.Parameter("mzi", "radius", "must be positive, got %g", r)
	}

	in, out := xs.PortNames[0], xs.PortNames[1]
	top := layout.Extrude(mziArm(r, p.LengthY, p.LengthX), xs)
	top.Name = layout.CellName("mzi_arm", r, p.LengthY, p.LengthX, xs)
	bot := layout.Extrude(mziArm(r, p.LengthY+p.DeltaLength/2, p.LengthX).MirrorY(), xs)
	bot.Name = layout.CellName("mzi_arm", r, -(p.LengthY + p.DeltaLength/2), p.LengthX, xs)

	c := layout.New(layout.CellName("mzi", splitter.Name, p.DeltaLength, p.LengthY, p.LengthX, r, xs))
	sp := c.Add(splitter)
	ta := c.Add(top).Connect(in, sp.Port("o3"))
	c.Add(bot).Connect(in, sp.Port("o4"))
	cb := c.Add(splitter).Connect("o2", ta.Port(out))

	c.AddPort(sp.Port("o1"))
	c.AddPort(sp.Port("o2"))
	c.AddPort(cb.Port("o3"))
	c.AddPort(cb.Port("o4"))
	c.SetInfo("delta_length", p.DeltaLength)
	return c, nil
}

// mziArm returns a rectangular bulge with Euler corners that ends level
// with its start, heading east.
func mziArm(r, ly, lx float64) layout.Path {
	up := layout.Euler(r, 90, 0.5)
	down := layout.Euler(r, -90, 0.5)
	return layout.Concat(up, layout.Straight(ly), down, layout.Straight(lx), down, layout.Straight(ly), up)
}
