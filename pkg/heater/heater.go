// Package heater provides thermo-optic heaters, contact pads and pad
// arrays. Heaters are drawn on the HEATER layer; pads on ROUTING with a
// PAD opening. Electrical ports are named e0, e1, ...
package heater

import (
	"fmt"

	"seehuhn.de/go/geom/vec"

	"github.com/unolab/unolayout/pkg/errors"
	"github.com/unolab/unolayout/pkg/layout"
	"github.com/unolab/unolayout/pkg/pdk"
	"github.com/unolab/unolayout/pkg/primitives"
)

// RectHeaterParams configures [RectHeater].
type RectHeaterParams struct {
	Length     float64 `json:"length"`
	Width      float64 `json:"width"`
	RouteWidth float64 `json:"route_width,omitempty"`
}

// DefaultRectHeaterParams returns a 50 × 10 µm heater.
func DefaultRectHeaterParams() RectHeaterParams {
	return RectHeaterParams{Length: 50, Width: 10}
}

// RectHeater returns a vertical heater strip centered on the origin with
// port e0 at its bottom end and e1 at its top end. The ports carry the
// routing cross-section so traces can be routed straight to them.
func RectHeater(cfg *pdk.Config, p RectHeaterParams) (*layout.Component, error) {
	if !(p.Length > 0) || !(p.Width > 0) {
		return nil, errors.Parameter("rect_heater", "length/width", "must be positive, got %g/%g", p.Length, p.Width)
	}
	return NewRectHeater(cfg, p.Length, p.Width, p.RouteWidth), nil
}

// NewRectHeater builds a rectangular heater.
func NewRectHeater(cfg *pdk.Config, length, width, routeWidth float64) *layout.Component {
	xs := cfg.Routing(routeWidth)
	c := layout.New(layout.CellName("rect_heater", length, width, xs))
	c.Add(primitives.NewRectangle(width, length, cfg.Layers.Heater, true))
	for i, o := range []float64{270, 90} {
		c.AddPort(layout.Port{
			Name:        xs.PortNames[i],
			Center:      layout.Dir(o).Mul(length / 2),
			Orientation: o,
			Width:       xs.Width(),
			Layer:       xs.Layer(),
			Type:        layout.Electrical,
		})
	}
	c.SetInfo("length", length)
	return c
}

// RectPadParams configures [RectPad].
type RectPadParams struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	// OpeningInset is how much narrower and shorter the passivation
	// opening is than the metal.
	OpeningInset float64 `json:"opening_inset"`
	RouteWidth   float64 `json:"route_width,omitempty"`
}

// DefaultRectPadParams returns a 200 × 150 µm probe pad.
func DefaultRectPadParams() RectPadParams {
	return RectPadParams{Width: 200, Height: 150, OpeningInset: 30}
}

// RectPad returns a routing-metal pad centered on the origin with a
// passivation opening on PAD and one port, e0, on its top edge facing
// north.
func RectPad(cfg *pdk.Config, p RectPadParams) (*layout.Component, error) {
	if !(p.Width > 0) || !(p.Height > 0) {
		return nil, errors.Parameter("rect_pad", "width/height", "must be positive, got %g/%g", p.Width, p.Height)
	}
	if p.OpeningInset < 0 || p.OpeningInset >= min(p.Width, p.Height) {
		return nil, errors.Parameter("rect_pad", "opening_inset", "%g leaves no opening in a %g × %g pad", p.OpeningInset, p.Width, p.Height)
	}
	return NewRectPad(cfg, p.Width, p.Height, p.OpeningInset, p.RouteWidth), nil
}

// NewRectPad builds a rectangular pad.
func NewRectPad(cfg *pdk.Config, width, height, inset, routeWidth float64) *layout.Component {
	xs := cfg.Routing(routeWidth)
	c := layout.New(layout.CellName("rect_pad", width, height, inset, xs))
	c.Add(primitives.NewRectangle(width, height, cfg.Layers.Routing, true))
	c.Add(primitives.NewRectangle(width-inset, height-inset, cfg.Layers.Pad, true))
	c.AddPort(layout.Port{
		Name:        "e0",
		Center:      vec.Vec2{Y: height / 2},
		Orientation: 90,
		Width:       xs.Width(),
		Layer:       xs.Layer(),
		Type:        layout.Electrical,
	})
	return c
}

// PadArrayParams configures [PadArray].
type PadArrayParams struct {
	Spacing  [2]float64 `json:"spacing"`
	Columns  int        `json:"columns"`
	Rows     int        `json:"rows"`
	Rotation float64    `json:"rotation,omitempty"`
}

// maxPadGrid bounds rows and columns of a pad array to single digits.
const maxPadGrid = 9

// DefaultPadArrayParams returns one row of six pads on a 150 µm pitch.
func DefaultPadArrayParams() PadArrayParams {
	return PadArrayParams{Spacing: [2]float64{150, 150}, Columns: 6, Rows: 1}
}

// PadArray returns a grid of pads, each rotated by Rotation about its own
// origin. The e0 port of the pad in row r and column c (both counted from
// one) is exposed as e<r><c>, so rows and columns stay below ten to keep
// those names unique. A nil pad selects the default pad.
func PadArray(cfg *pdk.Config, pad *layout.Component, p PadArrayParams) (*layout.Component, error) {
	if p.Columns < 1 || p.Rows < 1 {
		return nil, errors.Parameter("pad_array", "columns/rows", "must be at least 1, got %d/%d", p.Columns, p.Rows)
	}
	if p.Columns > maxPadGrid || p.Rows > maxPadGrid {
		return nil, errors.Parameter("pad_array", "columns/rows", "must be at most %d, got %d/%d", maxPadGrid, p.Columns, p.Rows)
	}
	if pad == nil {
		d := DefaultRectPadParams()
		pad = NewRectPad(cfg, d.Width, d.Height, d.OpeningInset, 0)
	}
	if _, err := pad.LookupPort("e0"); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidParameter, err, "pad_array: pad")
	}
	c := layout.New(layout.CellName("pad_array", pad.Name, p))
	for col := 0; col < p.Columns; col++ {
		for row := 0; row < p.Rows; row++ {
			ref := c.Add(pad).Rotate(p.Rotation).Move(vec.Vec2{X: float64(col) * p.Spacing[0], Y: float64(row) * p.Spacing[1]})
			c.AddPort(ref.Port("e0").Renamed(fmt.Sprintf("e%d%d", row+1, col+1)))
		}
	}
	return c, nil
}

// SnakeHeaterParams configures [SnakeHeater].
type SnakeHeaterParams struct {
	// Length is the length of one pass, N the number of passes and
	// Spacing their center-to-center pitch.
	Length  float64 `json:"length"`
	N       int     `json:"n"`
	Spacing float64 `json:"spacing"`
	Width   float64 `json:"width"`
	// ExtraEnds extends both leads beyond the passes to ease routing.
	ExtraEnds float64 `json:"extra_ends"`
	Rotation  float64 `json:"rotation,omitempty"`
}

// DefaultSnakeHeaterParams returns five 1 mm passes of a 10 µm wire.
func DefaultSnakeHeaterParams() SnakeHeaterParams {
	return SnakeHeaterParams{Length: 1000, N: 5, Spacing: 25, Width: 10, ExtraEnds: 50}
}

// SnakeHeater returns a meandering heater wire centered on the origin.
// Passes run along y, alternating direction; the first lead leaves
// downwards from the westmost pass and the last lead continues the last
// pass. An annotation below the heater states its length and the number
// of squares (length over width).
func SnakeHeater(cfg *pdk.Config, p SnakeHeaterParams) (*layout.Component, error) {
	const kind = "snake_heater"
	switch {
	case p.N < 1:
		return nil, errors.Parameter(kind, "n", "must be at least 1, got %d", p.N)
	case !(p.Length > 0), !(p.Width > 0):
		return nil, errors.Parameter(kind, "length/width", "must be positive, got %g/%g", p.Length, p.Width)
	case p.N > 1 && p.Spacing <= p.Width:
		return nil, errors.Parameter(kind, "spacing", "%g does not separate %g µm wires", p.Spacing, p.Width)
	case p.ExtraEnds < 0:
		return nil, errors.Parameter(kind, "extra_ends", "must not be negative, got %g", p.ExtraEnds)
	}

	pts := []vec.Vec2{{Y: -p.ExtraEnds}}
	var x float64
	for i := 0; i < p.N; i++ {
		bottom, top := vec.Vec2{X: x}, vec.Vec2{X: x, Y: p.Length}
		if i%2 == 0 {
			pts = append(pts, bottom, top)
		} else {
			pts = append(pts, top, bottom)
		}
		x += p.Spacing
	}
	last := vec.Vec2{X: x - p.Spacing, Y: p.Length + p.ExtraEnds}
	if p.N%2 == 0 {
		last.Y = -p.ExtraEnds
	}
	pts = append(pts, last)
	path := layout.PathFromPoints(pts).
		Move(vec.Vec2{X: -p.Spacing * float64(p.N-1) / 2, Y: -p.Length / 2}).
		Rotate(p.Rotation)

	length := path.Length()
	c := layout.New(layout.CellName(kind, p))
	snake := c.Add(layout.Extrude(path, cfg.Heater(p.Width)))
	label := fmt.Sprintf("%.0fmm/%.2fum = %.1f", length/1000, p.Width, length/p.Width)
	txt, err := primitives.NewText(label, cfg.TextSize, cfg.Layers.Annotation, layout.JustifyCenter,
		snake.Center().Sub(vec.Vec2{Y: 2 * cfg.TextSize}))
	if err != nil {
		return nil, err
	}
	c.Add(txt)
	c.AddPorts(snake.Ports(), "")
	c.SetInfo("length", length)
	c.SetInfo("squares", length/p.Width)
	return c, nil
}
