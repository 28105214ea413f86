package devices

import (
	"fmt"

	"seehuhn.de/go/geom/vec"

	"github.com/unolab/unolayout/pkg/errors"
	"github.com/unolab/unolayout/pkg/layout"
	"github.com/unolab/unolayout/pkg/pdk"
	"github.com/unolab/unolayout/pkg/primitives"
	"github.com/unolab/unolayout/pkg/wg"
)

// mziEscapeLength is the length of the S-bends that fan the MZI ports out
// to the edge-coupler pitch.
const mziEscapeLength = 150

// MZIUnbalancedParams configures [MZIUnbalanced].
type MZIUnbalancedParams struct {
	// OffsetX places the MZI splitter origin.
	OffsetX     float64    `json:"offset_x"`
	DXDY        [2]float64 `json:"dxdy,omitempty"`
	Width       float64    `json:"width,omitempty"`
	DeltaLength float64    `json:"delta_length"`
	LabelIn     string     `json:"label_in,omitempty"`
	LabelOut    string     `json:"label_out,omitempty"`
	EdgeSep     float64    `json:"edge_sep,omitempty"`
}

// DefaultMZIUnbalancedParams returns a 100 µm imbalance.
func DefaultMZIUnbalancedParams() MZIUnbalancedParams {
	return MZIUnbalancedParams{OffsetX: 400, DeltaLength: 100}
}

// MZIUnbalanced returns an unbalanced 2×2 MZI between two nested
// edge-coupler pairs EdgeSep apart. S-bends fan the four MZI ports out to
// the coupler pitch. The imbalance is written in mm on ANNOTATION at the
// MZI center. A nil coupler selects the default directional coupler.
func MZIUnbalanced(cfg *pdk.Config, coupler *layout.Component, p MZIUnbalancedParams) (*layout.Component, error) {
	const kind = "mzi_unbalanced"
	dx, dy := cfg.DXDY.X, cfg.DXDY.Y
	if p.DXDY != [2]float64{} {
		dx, dy = p.DXDY[0], p.DXDY[1]
	}
	sep := pdk.Or(p.EdgeSep, cfg.EdgeSep)
	xs := cfg.Waveguide(p.Width)
	m, err := primitives.MZI(cfg, coupler, primitives.MZIParams{DeltaLength: p.DeltaLength, LengthY: 2, LengthX: 0.1, XS: &xs})
	if err != nil {
		return nil, err
	}
	portSep := m.Port("o2").Y() - m.Port("o1").Y()
	rise := (sep - portSep) / 2
	if rise <= 0 {
		return nil, errors.Parameter(kind, "edge_sep", "%g is narrower than the MZI port spacing %g", sep, portSep)
	}

	e1, err := wg.EdgeCouplerPair(cfg, wg.EdgeCouplerPairParams{DXDY: [2]float64{dx, dy}, Width: p.Width, LabelIn: p.LabelIn, LabelOut: p.LabelOut})
	if err != nil {
		return nil, err
	}
	e2, err := wg.EdgeCouplerPair(cfg, wg.EdgeCouplerPairParams{DXDY: [2]float64{dx + sep, dy + sep}, Width: p.Width})
	if err != nil {
		return nil, err
	}

	c := layout.New(layout.CellName(kind, m.Name, dx, dy, sep, p))
	inner := c.Add(e1)
	outer := c.Add(e2)
	mzi := c.Add(m).MirrorY(0).Move(vec.Vec2{X: p.OffsetX, Y: dy + sep/2})

	sb := primitives.NewBendS(mziEscapeLength, rise, xs)
	in, out := xs.PortNames[0], xs.PortNames[1]
	escape := func(port string, mirrored bool) layout.Port {
		ref := c.Add(sb)
		if mirrored {
			ref.MirrorY(0)
		}
		return ref.Connect(in, mzi.Port(port)).Port(out)
	}
	// After the mirror o1/o4 are the upper ports and o2/o3 the lower ones.
	routes := []struct {
		from, to layout.Port
	}{
		{outer.Port("o1"), escape("o1", true)},
		{inner.Port("o1"), escape("o2", false)},
		{escape("o3", true), inner.Port("o2")},
		{escape("o4", false), outer.Port("o2")},
	}
	for _, r := range routes {
		if _, err := layout.RouteSingle(c, r.from, r.to, xs); err != nil {
			return nil, fmt.Errorf("%s: %w", kind, err)
		}
	}

	label, err := layout.Text(fmt.Sprintf("%.2fmm", p.DeltaLength/1000), cfg.TextSize, cfg.Layers.Annotation, layout.JustifyCenter)
	if err != nil {
		return nil, err
	}
	c.Add(label).Move(mzi.Center())
	c.SetInfo("delta_length", p.DeltaLength)
	return c, nil
}
