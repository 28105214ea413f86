package devices

import (
	"seehuhn.de/go/geom/vec"

	"github.com/unolab/unolayout/pkg/errors"
	"github.com/unolab/unolayout/pkg/layout"
	"github.com/unolab/unolayout/pkg/pdk"
	"github.com/unolab/unolayout/pkg/primitives"
)

// Dump geometry on unused coupler ports.
const (
	dumpRadius      = 5
	dumpTipWidth    = 0.1
	dumpTaperLength = 10
)

// DirPolSplitterParams configures [DirPolSplitter].
type DirPolSplitterParams struct {
	Gap    float64 `json:"gap"`
	Length float64 `json:"length"`
	// NumStages is the number of coupler stages per output.
	NumStages int `json:"num_stages"`
	// CouplerDY and CouplerDX size the S-bends of each coupler.
	CouplerDY float64 `json:"coupler_dy"`
	CouplerDX float64 `json:"coupler_dx"`
	// StageDX is the pitch between stages, StageDY the separation of the
	// TE and TM branches.
	StageDX float64              `json:"stage_dx"`
	StageDY float64              `json:"stage_dy"`
	Width   float64              `json:"width,omitempty"`
	XS      *layout.CrossSection `json:"-"`
}

// DefaultDirPolSplitterParams returns a three-stage splitter.
func DefaultDirPolSplitterParams() DirPolSplitterParams {
	return DirPolSplitterParams{
		Gap:       0.45,
		Length:    15,
		NumStages: 3,
		CouplerDY: 4,
		CouplerDX: 10,
		StageDX:   70,
		StageDY:   15,
	}
}

// DirPolSplitter returns a polarization splitter made of cascaded
// directional couplers. TM couples across much faster than TE, so each
// stage keeps the through port on the TE branch and the cross port on the
// TM branch, cleaning up the other polarization. Unused ports end in a
// bend and a taper to a narrow tip so stray light leaks out instead of
// reflecting.
//
// Port o1 is the input, o2 the TE output and o3 the TM output.
func DirPolSplitter(cfg *pdk.Config, p DirPolSplitterParams) (*layout.Component, error) {
	const kind = "dir_pol_splitter"
	if p.NumStages < 1 {
		return nil, errors.Parameter(kind, "num_stages", "must be at least 1, got %d", p.NumStages)
	}
	xs := cfg.XS(p.XS, p.Width)
	coupler, err := primitives.Coupler(cfg, primitives.CouplerParams{
		Gap: p.Gap, Length: p.Length, DY: p.CouplerDY, DX: p.CouplerDX, XS: &xs,
	})
	if err != nil {
		return nil, err
	}
	if p.NumStages > 1 {
		if span := p.Length + 2*p.CouplerDX; p.StageDX <= span {
			return nil, errors.Parameter(kind, "stage_dx", "%g leaves no room for the %g µm couplers", p.StageDX, span)
		}
		if p.StageDY <= p.CouplerDY+2*dumpRadius {
			return nil, errors.Parameter(kind, "stage_dy", "%g does not separate the branches", p.StageDY)
		}
	}

	in, out := xs.PortNames[0], xs.PortNames[1]
	bend := primitives.NewBendEuler(dumpRadius, -90, 0.5, xs)
	taper := primitives.NewTaperCrossSection(dumpTaperLength, xs, cfg.Waveguide(dumpTipWidth).WithLayer(xs.Layer()))

	c := layout.New(layout.CellName(kind, p.Gap, p.Length, p.NumStages, p.CouplerDY, p.CouplerDX, p.StageDX, p.StageDY, xs))
	dump := func(port layout.Port, mirrored bool) {
		b := c.Add(bend)
		if mirrored {
			b.MirrorY(0)
		}
		b.Connect(in, port)
		c.Add(taper).Connect(in, b.Port(out))
	}

	first := c.Add(coupler)
	dump(first.Port("o2"), false)
	te, tm := first.Port("o4"), first.Port("o3")
	for i := 1; i < p.NumStages; i++ {
		x := float64(i) * p.StageDX

		cte := c.Add(coupler).MirrorY(0).Move(vec.Vec2{X: x, Y: -p.StageDY / 2})
		if _, err := layout.RouteSBend(c, te, cte.Port("o1"), xs); err != nil {
			return nil, err
		}
		te = cte.Port("o4")
		dump(cte.Port("o2"), true)
		c.Add(taper).Connect(in, cte.Port("o3"))

		ctm := c.Add(coupler).Move(vec.Vec2{X: x, Y: p.StageDY / 2})
		if _, err := layout.RouteSBend(c, tm, ctm.Port("o1"), xs); err != nil {
			return nil, err
		}
		tm = ctm.Port("o3")
		dump(ctm.Port("o2"), false)
		c.Add(taper).Connect(in, ctm.Port("o4"))
	}

	c.AddPort(first.Port("o1"))
	c.AddPort(te.Renamed("o2"))
	c.AddPort(tm.Renamed("o3"))
	return c, nil
}
