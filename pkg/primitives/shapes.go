package primitives

import (
	"math"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"github.com/unolab/unolayout/pkg/errors"
	"github.com/unolab/unolayout/pkg/layout"
	"github.com/unolab/unolayout/pkg/pdk"
)

// RectangleParams configures [Rectangle].
type RectangleParams struct {
	Size     [2]float64      `json:"size"`
	Layer    string          `json:"layer,omitempty"`
	Centered bool            `json:"centered,omitempty"`
	PortType layout.PortType `json:"port_type,omitempty"`
}

// DefaultRectangleParams returns a 4×2 rectangle on the WG layer.
func DefaultRectangleParams() RectangleParams {
	return RectangleParams{Size: [2]float64{4, 2}, Layer: "WG", PortType: layout.Electrical}
}

// Rectangle returns a rectangle with ports e1 (west), e2 (north), e3
// (east) and e4 (south) at the middle of its sides. Without Centered the
// lower-left corner sits at the origin.
func Rectangle(cfg *pdk.Config, p RectangleParams) (*layout.Component, error) {
	if !(p.Size[0] > 0) || !(p.Size[1] > 0) {
		return nil, errors.Parameter("rectangle", "size", "must be positive, got %v", p.Size)
	}
	l, err := cfg.Layer(p.Layer, cfg.Layers.WG)
	if err != nil {
		return nil, err
	}
	c := NewRectangle(p.Size[0], p.Size[1], l, p.Centered)
	if p.PortType != "" && p.PortType != layout.Electrical {
		ports := c.Ports()
		for i := range ports {
			ports[i].Type = p.PortType
		}
		c.AddPorts(ports, "")
	}
	return c, nil
}

// NewRectangle builds a w×h rectangle with electrical side ports.
func NewRectangle(w, h float64, layer layout.Layer, centered bool) *layout.Component {
	r := rect.Rect{URx: w, URy: h}
	if centered {
		r = rect.Rect{LLx: -w / 2, LLy: -h / 2, URx: w / 2, URy: h / 2}
	}
	c := layout.New(layout.CellName("rectangle", w, h, layer, centered))
	c.AddRect(layer, r)
	mid := layout.Center(r)
	side := func(name string, x, y, o, width float64) {
		c.AddPort(layout.Port{
			Name:        name,
			Center:      vec.Vec2{X: x, Y: y},
			Orientation: o,
			Width:       width,
			Layer:       layer,
			Type:        layout.Electrical,
		})
	}
	side("e1", r.LLx, mid.Y, 180, h)
	side("e2", mid.X, r.URy, 90, w)
	side("e3", r.URx, mid.Y, 0, h)
	side("e4", mid.X, r.LLy, 270, w)
	return c
}

// BBoxParams configures [BBox]: an axis-aligned box given by its edges.
type BBoxParams struct {
	Left   float64 `json:"left"`
	Bottom float64 `json:"bottom"`
	Right  float64 `json:"right"`
	Top    float64 `json:"top"`
	Layer  string  `json:"layer,omitempty"`
}

// BBox returns a filled box spanning the given edges.
func BBox(cfg *pdk.Config, p BBoxParams) (*layout.Component, error) {
	if !(p.Right > p.Left) || !(p.Top > p.Bottom) {
		return nil, errors.Parameter("bbox", "edges", "right/top must exceed left/bottom, got [%g, %g] × [%g, %g]", p.Left, p.Right, p.Bottom, p.Top)
	}
	l, err := cfg.Layer(p.Layer, cfg.Layers.WG)
	if err != nil {
		return nil, err
	}
	c := layout.New(layout.CellName("bbox", p, l))
	c.AddRect(l, rect.Rect{LLx: p.Left, LLy: p.Bottom, URx: p.Right, URy: p.Top})
	return c, nil
}

// Outline returns a box covering the bounding box of of, grown by pad on
// every side.
func Outline(of *layout.Component, layer layout.Layer, pad float64) *layout.Component {
	b := of.BBox()
	c := layout.New(layout.CellName("outline", of.Name, layer, pad))
	c.AddRect(layer, rect.Rect{LLx: b.LLx - pad, LLy: b.LLy - pad, URx: b.URx + pad, URy: b.URy + pad})
	return c
}

// CircleParams configures [Circle].
type CircleParams struct {
	Radius float64 `json:"radius"`
	// AngleResolution is the angular step between vertices in degrees.
	AngleResolution float64 `json:"angle_resolution,omitempty"`
	Layer           string  `json:"layer,omitempty"`
}

// DefaultCircleParams returns a 10 µm circle sampled every 2.5°.
func DefaultCircleParams() CircleParams {
	return CircleParams{Radius: 10, AngleResolution: 2.5, Layer: "WG"}
}

// Circle returns a circle centered on the origin.
func Circle(cfg *pdk.Config, p CircleParams) (*layout.Component, error) {
	if err := errors.ValidatePositive("circle", "radius", p.Radius); err != nil {
		return nil, err
	}
	res := p.AngleResolution
	if res == 0 {
		res = 2.5
	}
	if res < 0 || res > 120 {
		return nil, errors.Parameter("circle", "angle_resolution", "must be in (0, 120], got %g", res)
	}
	l, err := cfg.Layer(p.Layer, cfg.Layers.WG)
	if err != nil {
		return nil, err
	}
	return newCircle(p.Radius, res, l), nil
}

// NewCircle builds a circle with the default 2.5° resolution.
func NewCircle(radius float64, layer layout.Layer) *layout.Component {
	return newCircle(radius, 2.5, layer)
}

func newCircle(radius, res float64, layer layout.Layer) *layout.Component {
	n := int(math.Round(360 / res))
	pts := make([]vec.Vec2, n)
	for i := range pts {
		t := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = vec.Vec2{X: radius * math.Cos(t), Y: radius * math.Sin(t)}
	}
	c := layout.New(layout.CellName("circle", radius, res, layer))
	c.AddPolygon(layer, pts...)
	return c
}

// CrossParams configures [Cross].
type CrossParams struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Layer  string  `json:"layer,omitempty"`
}

// DefaultCrossParams returns a 10 µm cross with 3 µm arms.
func DefaultCrossParams() CrossParams {
	return CrossParams{Length: 10, Width: 3, Layer: "WG"}
}

// Cross returns a plus sign centered on the origin with electrical ports
// e1..e4 at the arm tips (west, north, east, south).
func Cross(cfg *pdk.Config, p CrossParams) (*layout.Component, error) {
	if !(p.Length > 0) || !(p.Width > 0) {
		return nil, errors.Parameter("cross", "length/width", "must be positive, got %g/%g", p.Length, p.Width)
	}
	if p.Width > p.Length {
		return nil, errors.Parameter("cross", "width", "%g exceeds length %g", p.Width, p.Length)
	}
	l, err := cfg.Layer(p.Layer, cfg.Layers.WG)
	if err != nil {
		return nil, err
	}
	return NewCross(p.Length, p.Width, l), nil
}

// NewCross builds a cross of two centered bars.
func NewCross(length, width float64, layer layout.Layer) *layout.Component {
	c := layout.New(layout.CellName("cross", length, width, layer))
	h := length / 2
	w := width / 2
	c.AddRect(layer, rect.Rect{LLx: -h, LLy: -w, URx: h, URy: w})
	c.AddRect(layer, rect.Rect{LLx: -w, LLy: -h, URx: w, URy: h})
	for i, tip := range []vec.Vec2{{X: -h}, {Y: h}, {X: h}, {Y: -h}} {
		c.AddPort(layout.Port{
			Name:        "e" + string(rune('1'+i)),
			Center:      tip,
			Orientation: layout.NormalizeAngle(180 - 90*float64(i)),
			Width:       width,
			Layer:       layer,
			Type:        layout.Electrical,
		})
	}
	return c
}

// TextParams configures [Text].
type TextParams struct {
	Text     string     `json:"text"`
	Size     float64    `json:"size,omitempty"`
	Layer    string     `json:"layer,omitempty"`
	Justify  string     `json:"justify,omitempty"`
	Position [2]float64 `json:"position,omitempty"`
}

// DefaultTextParams returns left-justified text on the LABEL layer at the
// process text size.
func DefaultTextParams() TextParams {
	return TextParams{Text: "abcd", Layer: "LABEL", Justify: "left"}
}

// Text renders a string as polygons. The baseline anchor (left, center or
// right end, per Justify) lands on Position.
func Text(cfg *pdk.Config, p TextParams) (*layout.Component, error) {
	j, err := layout.ParseJustify(p.Justify)
	if err != nil {
		return nil, err
	}
	l, err := cfg.Layer(p.Layer, cfg.Layers.Label)
	if err != nil {
		return nil, err
	}
	size := pdk.Or(p.Size, cfg.TextSize)
	return NewText(p.Text, size, l, j, vec.Vec2{X: p.Position[0], Y: p.Position[1]})
}

// NewText renders s with its anchor at pos.
func NewText(s string, size float64, layer layout.Layer, j layout.Justify, pos vec.Vec2) (*layout.Component, error) {
	c, err := layout.Text(s, size, layer, j)
	if err != nil {
		return nil, err
	}
	if pos != (vec.Vec2{}) {
		for i := range c.Polygons {
			for k := range c.Polygons[i].Points {
				c.Polygons[i].Points[k] = c.Polygons[i].Points[k].Add(pos)
			}
		}
		c.Name = layout.CellName("text", c.Name, pos)
	}
	return c, nil
}
