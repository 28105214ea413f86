// Package teststruct provides process test structures: deep-etch lanes of
// varying width and bridge length, and probe-pad structures for routing
// metal and heaters.
package teststruct

import (
	"fmt"

	"seehuhn.de/go/geom/vec"

	"github.com/unolab/unolayout/pkg/errors"
	"github.com/unolab/unolayout/pkg/heater"
	"github.com/unolab/unolayout/pkg/layout"
	"github.com/unolab/unolayout/pkg/pdk"
	"github.com/unolab/unolayout/pkg/primitives"
	"github.com/unolab/unolayout/pkg/wg"
)

// BoschGapParams configures [BoschGapTest].
type BoschGapParams struct {
	Widths []float64 `json:"widths"`
	DX     float64   `json:"dx"`
	DY     float64   `json:"dy"`
	Length float64   `json:"length"`
	// Bridge is the unetched spacing between trenches.
	Bridge float64 `json:"bridge"`
}

// DefaultBoschGapParams returns five trenches from 10 to 200 µm wide.
func DefaultBoschGapParams() BoschGapParams {
	return BoschGapParams{Widths: []float64{10, 20, 50, 100, 200}, DX: 1000, DY: 1000, Length: 500, Bridge: 50}
}

// BoschGapTest places a row of deep-etch trenches of the given widths,
// starting at x = DX and centered on y = DY.
func BoschGapTest(cfg *pdk.Config, p BoschGapParams) (*layout.Component, error) {
	if len(p.Widths) == 0 {
		return nil, errors.Parameter("bosch_gap_test", "widths", "must not be empty")
	}
	if err := errors.ValidatePositive("bosch_gap_test", "length", p.Length); err != nil {
		return nil, err
	}
	c := layout.New(layout.CellName("bosch_gap_test", p))
	x := p.DX
	for _, w := range p.Widths {
		if !(w > 0) {
			return nil, errors.Parameter("bosch_gap_test", "widths", "must be positive, got %g", w)
		}
		x += w / 2
		c.Add(primitives.NewRectangle(w, p.Length, cfg.Layers.Bosch, true)).Move(vec.Vec2{X: x, Y: p.DY})
		x += w/2 + p.Bridge
	}
	return c, nil
}

// BoschBridgeParams configures [BoschBridgeTest].
type BoschBridgeParams struct {
	Bridges []float64 `json:"bridges"`
	Length  float64   `json:"length"`
	Width   float64   `json:"width"`
	// DX is the first trench center. WDY is the input height of the first
	// waveguide, RDY the trench row height.
	DX      float64 `json:"dx"`
	WDY     float64 `json:"wdy"`
	RDY     float64 `json:"rdy"`
	WGWidth float64 `json:"wg_width,omitempty"`
	EdgeSep float64 `json:"edge_sep,omitempty"`
}

// DefaultBoschBridgeParams returns bridges from 5 to 50 µm.
func DefaultBoschBridgeParams() BoschBridgeParams {
	return BoschBridgeParams{
		Bridges: []float64{5, 10, 20, 50},
		Length:  500,
		Width:   100,
		DX:      3100,
		WDY:     3100,
		RDY:     500,
	}
}

// BoschBridgeTest places a row of deep-etch trenches separated by bridges
// of the given lengths and runs one edge-coupled waveguide across the
// middle of each bridge. Waveguide i is labelled B<i>.
func BoschBridgeTest(cfg *pdk.Config, p BoschBridgeParams) (*layout.Component, error) {
	const kind = "bosch_bridge_test"
	if len(p.Bridges) == 0 {
		return nil, errors.Parameter(kind, "bridges", "must not be empty")
	}
	if !(p.Width > 0) || !(p.Length > 0) {
		return nil, errors.Parameter(kind, "width/length", "must be positive, got %g/%g", p.Width, p.Length)
	}
	sep := pdk.Or(p.EdgeSep, cfg.EdgeSep)
	trench := primitives.NewRectangle(p.Width, p.Length, cfg.Layers.Bosch, true)

	c := layout.New(layout.CellName(kind, p, sep))
	rx := p.DX
	c.Add(trench).Move(vec.Vec2{X: rx, Y: p.RDY})
	rx += p.Width
	wx, wy := p.DX+p.Width/2, p.WDY
	for i, b := range p.Bridges {
		if b < 0 {
			return nil, errors.Parameter(kind, "bridges", "must not be negative, got %g", b)
		}
		rx += b
		c.Add(trench).Move(vec.Vec2{X: rx, Y: p.RDY})
		rx += p.Width

		wx += b / 2
		label := fmt.Sprintf("B%d", i)
		w, err := wg.StraightWaveguide(cfg, wg.EdgeCouplerPairParams{
			DXDY: [2]float64{wx, wy}, Width: p.WGWidth, LabelIn: label, LabelOut: label,
		})
		if err != nil {
			return nil, fmt.Errorf("%s: bridge %d: %w", kind, i, err)
		}
		c.Add(w)
		wx += b/2 + p.Width
		wy += sep
	}
	return c, nil
}

// PadPairParams configures [RoutingTestStructure].
type PadPairParams struct {
	// PadSep is the center-to-center distance of the two probe pads.
	PadSep float64 `json:"pad_sep"`
	Width  float64 `json:"width,omitempty"`
}

// DefaultPadPairParams returns pads 1 mm apart.
func DefaultPadPairParams() PadPairParams {
	return PadPairParams{PadSep: 1000}
}

// padPair places a default pad at the origin facing north and a second
// one PadSep above it facing south.
func padPair(cfg *pdk.Config, c *layout.Component, sep float64) (bottom, top layout.Port) {
	d := heater.DefaultRectPadParams()
	pad := heater.NewRectPad(cfg, d.Width, d.Height, d.OpeningInset, 0)
	p1 := c.Add(pad)
	p2 := c.Add(pad).Rotate(180).MoveY(sep)
	return p1.Port("e0"), p2.Port("e0")
}

// RoutingTestStructure joins two probe pads with one routing trace for
// measuring sheet resistance.
func RoutingTestStructure(cfg *pdk.Config, p PadPairParams) (*layout.Component, error) {
	if p.PadSep <= heater.DefaultRectPadParams().Height {
		return nil, errors.Parameter("routing_test_structure", "pad_sep", "%g makes the pads overlap", p.PadSep)
	}
	c := layout.New(layout.CellName("routing_test_structure", p))
	e1, e2 := padPair(cfg, c, p.PadSep)
	r, err := layout.RouteElectrical(c, e1, e2, cfg.Routing(p.Width))
	if err != nil {
		return nil, err
	}
	c.SetInfo("length", r.Length)
	return c, nil
}

// HeaterTestParams configures [StraightHeaterTestStructure] and
// [SnakeHeaterTestStructure]. N and Spacing only apply to the snake.
type HeaterTestParams struct {
	PadSep  float64 `json:"pad_sep"`
	Length  float64 `json:"length"`
	Width   float64 `json:"width"`
	N       int     `json:"n,omitempty"`
	Spacing float64 `json:"spacing,omitempty"`
}

// DefaultStraightHeaterTestParams returns a 500 × 25 µm heater.
func DefaultStraightHeaterTestParams() HeaterTestParams {
	return HeaterTestParams{PadSep: 1000, Length: 500, Width: 25}
}

// DefaultSnakeHeaterTestParams returns a seven-pass snake of 10 µm wire.
func DefaultSnakeHeaterTestParams() HeaterTestParams {
	return HeaterTestParams{PadSep: 1000, Length: 500, Width: 10, N: 7, Spacing: 25}
}

// StraightHeaterTestStructure places a rectangular heater halfway between
// two probe pads and routes both ends to them.
func StraightHeaterTestStructure(cfg *pdk.Config, p HeaterTestParams) (*layout.Component, error) {
	h, err := heater.RectHeater(cfg, heater.RectHeaterParams{Length: p.Length, Width: p.Width, RouteWidth: max(p.Width, cfg.RouteWidth)})
	if err != nil {
		return nil, err
	}
	return heaterBetweenPads(cfg, "straight_heater_test_structure", h, p)
}

// SnakeHeaterTestStructure is [StraightHeaterTestStructure] with a snake
// heater.
func SnakeHeaterTestStructure(cfg *pdk.Config, p HeaterTestParams) (*layout.Component, error) {
	sp := heater.DefaultSnakeHeaterParams()
	sp.Length, sp.Width, sp.N, sp.Spacing = p.Length, p.Width, p.N, p.Spacing
	h, err := heater.SnakeHeater(cfg, sp)
	if err != nil {
		return nil, err
	}
	return heaterBetweenPads(cfg, "snake_heater_test_structure", h, p)
}

func heaterBetweenPads(cfg *pdk.Config, kind string, h *layout.Component, p HeaterTestParams) (*layout.Component, error) {
	if _, hh := h.Size(); p.PadSep <= hh+heater.DefaultRectPadParams().Height {
		return nil, errors.Parameter(kind, "pad_sep", "%g leaves no room for a %g µm heater", p.PadSep, hh)
	}
	c := layout.New(layout.CellName(kind, h.Name, p.PadSep))
	e1, e2 := padPair(cfg, c, p.PadSep)
	ref := c.Add(h).MoveY(p.PadSep / 2)
	xs := cfg.Routing(max(p.Width, cfg.RouteWidth))
	for _, link := range []struct {
		from layout.Port
		to   string
	}{{e1, "e0"}, {e2, "e1"}} {
		if _, err := layout.RouteElectrical(c, link.from, ref.Port(link.to), xs); err != nil {
			return nil, fmt.Errorf("%s: %w", kind, err)
		}
	}
	c.SetInfo("length", h.Length())
	return c, nil
}
