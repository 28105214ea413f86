package wg

import (
	"seehuhn.de/go/geom/vec"

	"github.com/unolab/unolayout/pkg/errors"
	"github.com/unolab/unolayout/pkg/layout"
	"github.com/unolab/unolayout/pkg/pdk"
	"github.com/unolab/unolayout/pkg/primitives"
)

// halfStraightLength is the length of the bus in a half ring coupler.
const halfStraightLength = 10

// CouplerAsymmetricParams configures [CouplerAsymmetric] and
// [CouplerAsymmetricFull].
type CouplerAsymmetricParams struct {
	Gap float64 `json:"gap"`
	// DY is the vertical port-to-port spacing, DX the bend length.
	DY float64 `json:"dy"`
	DX float64 `json:"dx"`
	// CouplingLength is only used by CouplerAsymmetricFull.
	CouplingLength float64              `json:"coupling_length,omitempty"`
	Width          float64              `json:"width,omitempty"`
	XS             *layout.CrossSection `json:"-"`
}

// DefaultCouplerAsymmetricParams returns the half ring coupler defaults.
func DefaultCouplerAsymmetricParams() CouplerAsymmetricParams {
	return CouplerAsymmetricParams{Gap: 0.234, DY: 2.5, DX: 10}
}

// DefaultCouplerAsymmetricFullParams returns the full ring coupler
// defaults.
func DefaultCouplerAsymmetricFullParams() CouplerAsymmetricParams {
	return CouplerAsymmetricParams{Gap: 0.25, DY: 2.5, DX: 10, CouplingLength: 5}
}

func (p CouplerAsymmetricParams) validate(kind string, w float64) error {
	switch {
	case !(p.Gap > 0):
		return errors.Parameter(kind, "gap", "must be positive, got %g", p.Gap)
	case !(p.DX > 0):
		return errors.Parameter(kind, "dx", "must be positive, got %g", p.DX)
	case p.DY < p.Gap+w:
		return errors.Parameter(kind, "dy", "%g is smaller than gap + width %g", p.DY, p.Gap+w)
	}
	return nil
}

// CouplerAsymmetric returns a bend coupled to a straight bus. The bus
// runs along +x above the axis; the bend starts one gap below it and
// drops away to DY below the bus.
//
//	o1 ____________ o3
//	o0 _____           gap
//	        \_____ o2  dy
//
// Ports o0/o2 are the ends of the bend, o1/o3 the ends of the bus.
func CouplerAsymmetric(cfg *pdk.Config, p CouplerAsymmetricParams) (*layout.Component, error) {
	xs := cfg.XS(p.XS, p.Width)
	if err := p.validate("coupler_asymmetric", xs.Width()); err != nil {
		return nil, err
	}
	return newCouplerAsymmetric(p.Gap, p.DY, p.DX, xs), nil
}

func newCouplerAsymmetric(gap, dy, dx float64, xs layout.CrossSection) *layout.Component {
	w := xs.Width()
	y := (w + gap) / 2
	c := layout.New(layout.CellName("coupler_asymmetric", gap, dy, dx, xs))
	bus := c.Add(primitives.NewStraight(halfStraightLength, xs)).MoveY(y)
	bend := c.Add(primitives.NewBendS(dx, dy-gap-w, xs)).MirrorY(0).MoveY(-y)
	in, out := xs.PortNames[0], xs.PortNames[1]
	c.AddPort(bend.Port(in).Renamed("o0"))
	c.AddPort(bus.Port(in).Renamed("o1"))
	c.AddPort(bend.Port(out).Renamed("o2"))
	c.AddPort(bus.Port(out).Renamed("o3"))
	return c
}

// CouplerAsymmetricFull places two half ring couplers back to back with
// CouplingLength of parallel straight between them. Ports o0/o1 are the
// bend and bus ends on the east side, o2/o3 on the west side.
func CouplerAsymmetricFull(cfg *pdk.Config, p CouplerAsymmetricParams) (*layout.Component, error) {
	xs := cfg.XS(p.XS, p.Width)
	const kind = "coupler_asymmetric_full"
	if err := p.validate(kind, xs.Width()); err != nil {
		return nil, err
	}
	if p.CouplingLength < 0 {
		return nil, errors.Parameter(kind, "coupling_length", "must not be negative, got %g", p.CouplingLength)
	}
	half := newCouplerAsymmetric(p.Gap, p.DY, p.DX, xs)
	c := layout.New(layout.CellName(kind, p.Gap, p.DY, p.DX, p.CouplingLength, xs))
	east := c.Add(half).MoveX(p.CouplingLength)
	west := c.Add(half).MirrorX(0)
	if p.CouplingLength > 0 {
		s := primitives.NewStraight(p.CouplingLength, xs)
		c.Add(s).Connect(xs.PortNames[0], east.Port("o1"))
		c.Add(s).Connect(xs.PortNames[0], east.Port("o0"))
	}
	c.AddPort(east.Port("o2").Renamed("o0"))
	c.AddPort(east.Port("o3").Renamed("o1"))
	c.AddPort(west.Port("o2"))
	c.AddPort(west.Port("o3"))
	c.SetInfo("length", p.CouplingLength)
	return c, nil
}

// AsymmetricCouplerParams configures [AsymmetricCoupler].
type AsymmetricCouplerParams struct {
	CouplingLength float64 `json:"coupling_length"`
	// DX and DY size the S-bends that lead away from the coupling
	// section.
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
	Gap float64 `json:"gap"`
	// BusLength is the length of the lower straight. It is raised to
	// CouplingLength when shorter.
	BusLength float64              `json:"bus_length"`
	Width     float64              `json:"width,omitempty"`
	XS        *layout.CrossSection `json:"-"`
}

// DefaultAsymmetricCouplerParams returns a 10 µm coupling section over a
// 20 µm bus.
func DefaultAsymmetricCouplerParams() AsymmetricCouplerParams {
	return AsymmetricCouplerParams{CouplingLength: 10, DX: 10, DY: 10, Gap: 0.5, BusLength: 20}
}

// AsymmetricCoupler returns a short straight centered above a longer bus
// straight, its ends turned up by S-bends. Ports: o1 upper west, o2 bus
// west, o3 upper east, o4 bus east.
func AsymmetricCoupler(cfg *pdk.Config, p AsymmetricCouplerParams) (*layout.Component, error) {
	const kind = "asymmetric_coupler"
	switch {
	case !(p.CouplingLength > 0):
		return nil, errors.Parameter(kind, "coupling_length", "must be positive, got %g", p.CouplingLength)
	case !(p.DX > 0):
		return nil, errors.Parameter(kind, "dx", "must be positive, got %g", p.DX)
	case !(p.Gap > 0):
		return nil, errors.Parameter(kind, "gap", "must be positive, got %g", p.Gap)
	}
	xs := cfg.XS(p.XS, p.Width)
	bus := max(p.BusLength, p.CouplingLength)
	y := (p.Gap + xs.Width()) / 2

	c := layout.New(layout.CellName(kind, p.CouplingLength, p.DX, p.DY, p.Gap, bus, xs))
	s1 := c.Add(primitives.NewStraight(p.CouplingLength, xs)).Move(vec.Vec2{X: -p.CouplingLength / 2, Y: y})
	s2 := c.Add(primitives.NewStraight(bus, xs)).Move(vec.Vec2{X: -bus / 2, Y: -y})
	in, out := xs.PortNames[0], xs.PortNames[1]
	bend := primitives.NewBendS(p.DX, p.DY, xs)
	b1 := c.Add(bend).Connect(in, s1.Port(out))
	b2 := c.Add(bend).MirrorX(0).Connect(in, s1.Port(in))

	c.AddPort(b2.Port(out).Renamed("o1"))
	c.AddPort(s2.Port(in).Renamed("o2"))
	c.AddPort(b1.Port(out).Renamed("o3"))
	c.AddPort(s2.Port(out).Renamed("o4"))
	c.SetInfo("length", p.CouplingLength)
	return c, nil
}
