package wg

import (
	"seehuhn.de/go/geom/vec"

	"github.com/unolab/unolayout/pkg/errors"
	"github.com/unolab/unolayout/pkg/layout"
	"github.com/unolab/unolayout/pkg/pdk"
	"github.com/unolab/unolayout/pkg/primitives"
)

// NormalMMIParams configures [NormalMMIWithSBend].
type NormalMMIParams struct {
	Width float64 `json:"width,omitempty"`
}

// NormalMMIWithSBend returns a broadband 1×2 MMI whose outputs are pulled
// 20 µm apart by S-bends so that they can be routed.
func NormalMMIWithSBend(cfg *pdk.Config, p NormalMMIParams) (*layout.Component, error) {
	mp := primitives.DefaultMMI1x2Params()
	mp.Width = p.Width
	mp.LengthTaper = 15
	mmi, err := primitives.MMI1x2(cfg, mp)
	if err != nil {
		return nil, err
	}
	xs := cfg.Waveguide(p.Width)
	c := layout.New(layout.CellName("normal_mmi_with_sbend", mmi.Name, xs))
	m := c.Add(mmi)
	s1 := c.Add(primitives.NewBendS(30, 10, xs)).Connect("o1", m.Port("o2"))
	s2 := c.Add(primitives.NewBendS(30, -10, xs)).Connect("o1", m.Port("o3"))
	c.AddPort(m.Port("o1"))
	c.AddPort(s1.Port("o2"))
	c.AddPort(s2.Port("o2").Renamed("o3"))
	return c, nil
}

// YSplitterParams configures [YSplitterAdiabatic].
type YSplitterParams struct {
	// W1, G1 and T1 describe the input: a W1 core flanked at gap G1 by
	// two T1 tips. W2, G2 and T2 describe the output, where the center
	// has narrowed to a T2 tip and the flanks have grown to W2.
	W1 float64 `json:"w1,omitempty"`
	G1 float64 `json:"g1"`
	T1 float64 `json:"t1"`
	W2 float64 `json:"w2,omitempty"`
	G2 float64 `json:"g2"`
	T2 float64 `json:"t2"`
	// Length is the transition length; Escape the length of the input
	// straight and of the output S-bends; OutSep the output pitch.
	Length float64 `json:"length"`
	Escape float64 `json:"escape"`
	OutSep float64 `json:"out_sep"`
	Layer  string  `json:"layer,omitempty"`
}

// DefaultYSplitterParams returns a 30 µm splitter with 5 µm output pitch.
func DefaultYSplitterParams() YSplitterParams {
	return YSplitterParams{G1: 0.15, T1: 0.15, G2: 0.15, T2: 0.15, Length: 30, Escape: 25, OutSep: 5, Layer: "WG"}
}

// YSplitterAdiabatic returns a three-waveguide adiabatic Y splitter: the
// input core hands its mode over to two side waveguides while it tapers
// to a tip. Ports: o1 input (west), o2 top and o3 bottom output (east).
func YSplitterAdiabatic(cfg *pdk.Config, p YSplitterParams) (*layout.Component, error) {
	const kind = "y_splitter_adiabatic"
	w1 := pdk.Or(p.W1, cfg.WGWidth)
	w2 := pdk.Or(p.W2, cfg.WGWidth)
	switch {
	case !(p.Length > 0), !(p.Escape > 0):
		return nil, errors.Parameter(kind, "length/escape", "must be positive, got %g/%g", p.Length, p.Escape)
	case !(p.G1 > 0), !(p.G2 > 0), !(p.T1 > 0), !(p.T2 > 0):
		return nil, errors.Parameter(kind, "gaps/tips", "must be positive, got g %g/%g t %g/%g", p.G1, p.G2, p.T1, p.T2)
	}
	l, err := cfg.Layer(p.Layer, cfg.Layers.WG)
	if err != nil {
		return nil, err
	}
	start := w1/2 + p.G1 + p.T1/2
	end := w2/2 + p.G2 + p.T2/2
	if p.OutSep/2 < end {
		return nil, errors.Parameter(kind, "out_sep", "%g is narrower than the transition output %g", p.OutSep, 2*end)
	}
	ports := [2]string{"o1", "o2"}
	x1 := layout.CrossSection{PortNames: ports, PortType: layout.Optical, Sections: []layout.Section{
		{Name: "center", Width: w1, Layer: l},
		{Name: "top", Width: p.T1, Offset: start, Layer: l},
		{Name: "bot", Width: p.T1, Offset: -start, Layer: l},
	}}
	x2 := layout.CrossSection{PortNames: ports, PortType: layout.Optical, Sections: []layout.Section{
		{Name: "center", Width: p.T2, Layer: l},
		{Name: "top", Width: w2, Offset: end, Layer: l},
		{Name: "bot", Width: w2, Offset: -end, Layer: l},
	}}
	out := layout.Strip(w2, l, cfg.Radius, ports, layout.Optical)
	in := layout.Strip(w1, l, cfg.Radius, ports, layout.Optical)

	c := layout.New(layout.CellName(kind, w1, w2, p, l))
	c.Add(primitives.NewTaperCrossSection(p.Length, x1, x2))
	c.Add(primitives.NewBendS(p.Escape, p.OutSep/2-end, out)).Move(vec.Vec2{X: p.Length, Y: end})
	c.Add(primitives.NewBendS(p.Escape, -(p.OutSep/2 - end), out)).Move(vec.Vec2{X: p.Length, Y: -end})
	c.Add(primitives.NewStraight(p.Escape, in)).MoveX(-p.Escape)

	port := func(name string, x, y, o, w float64) {
		c.AddPort(layout.Port{Name: name, Center: vec.Vec2{X: x, Y: y}, Orientation: o, Width: w, Layer: l, Type: layout.Optical})
	}
	port("o1", -p.Escape, 0, 180, w1)
	port("o2", p.Length+p.Escape, p.OutSep/2, 0, w2)
	port("o3", p.Length+p.Escape, -p.OutSep/2, 0, w2)
	return c, nil
}

// ModeFilterParams configures [ModeFilter].
type ModeFilterParams struct {
	Width  float64 `json:"width,omitempty"`
	Radius float64 `json:"radius,omitempty"`
}

// ModeFilter returns four Euler bends (right, left, left, right) that
// strip weakly guided higher-order modes. The output is offset from the
// input but heads the same way.
func ModeFilter(cfg *pdk.Config, p ModeFilterParams) (*layout.Component, error) {
	xs := cfg.Waveguide(p.Width)
	r := pdk.Or(p.Radius, xs.Radius)
	if !(r > 0) {
		return nil, errors.Parameter("mode_filter", "radius", "must be positive, got %g", r)
	}
	left := primitives.NewBendEuler(r, 90, 0.5, xs)
	right := primitives.NewBendEuler(r, -90, 0.5, xs)
	c, err := primitives.ComponentSequence("RLLR", map[rune]primitives.SequenceEntry{
		'L': {Component: left, In: "o1", Out: "o2"},
		'R': {Component: right, In: "o1", Out: "o2"},
	})
	if err != nil {
		return nil, err
	}
	c.Name = layout.CellName("mode_filter", r, xs)
	return c, nil
}
