package layout

import (
	"fmt"
	"math"
	"sort"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"github.com/unolab/unolayout/pkg/errors"
)

// Polygon is a closed outline on one layer. The closing edge is implicit.
type Polygon struct {
	Layer  Layer
	Points []vec.Vec2
}

// Label is a text annotation placed on a layer.
type Label struct {
	Text     string
	Position vec.Vec2
	Layer    Layer
}

// Component is a cell: geometry, child references, ports and metadata.
type Component struct {
	Name     string
	Polygons []Polygon
	Refs     []*Reference
	Labels   []Label
	// Info carries generator outputs such as the routed "length".
	Info  map[string]float64
	ports []Port
}

// New returns an empty component.
func New(name string) *Component {
	return &Component{Name: name, Info: map[string]float64{}}
}

// AddPolygon adds a polygon to c.
func (c *Component) AddPolygon(layer Layer, pts ...vec.Vec2) {
	if len(pts) < 3 {
		return
	}
	c.Polygons = append(c.Polygons, Polygon{Layer: layer, Points: pts})
}

// AddRect adds an axis-aligned rectangle spanning r.
func (c *Component) AddRect(layer Layer, r rect.Rect) {
	c.AddPolygon(layer,
		vec.Vec2{X: r.LLx, Y: r.LLy},
		vec.Vec2{X: r.URx, Y: r.LLy},
		vec.Vec2{X: r.URx, Y: r.URy},
		vec.Vec2{X: r.LLx, Y: r.URy},
	)
}

// AddLabel adds a text label.
func (c *Component) AddLabel(text string, pos vec.Vec2, layer Layer) {
	c.Labels = append(c.Labels, Label{Text: text, Position: pos, Layer: layer})
}

// Add places cell inside c with an identity transform and returns the
// reference for positioning.
func (c *Component) Add(cell *Component) *Reference {
	ref := &Reference{Cell: cell}
	c.Refs = append(c.Refs, ref)
	return ref
}

// AddPort adds p to c, replacing an existing port with the same name.
func (c *Component) AddPort(p Port) {
	for i := range c.ports {
		if c.ports[i].Name == p.Name {
			c.ports[i] = p
			return
		}
	}
	c.ports = append(c.ports, p)
}

// AddPorts adds several ports, optionally prefixing their names.
func (c *Component) AddPorts(ports []Port, prefix string) {
	for _, p := range ports {
		c.AddPort(p.Renamed(prefix + p.Name))
	}
}

// Ports returns a copy of the ports of c in insertion order.
func (c *Component) Ports() []Port {
	return append([]Port(nil), c.ports...)
}

// LookupPort returns the named port.
func (c *Component) LookupPort(name string) (Port, error) {
	for _, p := range c.ports {
		if p.Name == name {
			return p, nil
		}
	}
	return Port{}, errors.New(errors.ErrCodeUnknownPort, "cell %s has no port %q (have %v)", c.Name, name, portNames(c.ports))
}

// Port returns the named port and panics if it does not exist. Use it for
// port names fixed by a generator; use LookupPort for user input.
func (c *Component) Port(name string) Port {
	p, err := c.LookupPort(name)
	if err != nil {
		panic(err)
	}
	return p
}

// HasPort reports whether c has a port with the given name.
func (c *Component) HasPort(name string) bool {
	_, err := c.LookupPort(name)
	return err == nil
}

// RenamePorts renames ports using the mapping old→new; unmapped ports keep
// their names.
func (c *Component) RenamePorts(mapping map[string]string) {
	for i := range c.ports {
		if n, ok := mapping[c.ports[i].Name]; ok {
			c.ports[i].Name = n
		}
	}
}

// SortPortsCCW orders ports counter-clockwise around the cell center,
// starting from the west side.
func (c *Component) SortPortsCCW() {
	ctr := Center(c.BBox())
	angle := func(p Port) float64 {
		a := math.Atan2(p.Center.Y-ctr.Y, p.Center.X-ctr.X) * 180 / math.Pi
		return NormalizeAngle(a - 180 - 1e-6)
	}
	sort.SliceStable(c.ports, func(i, j int) bool {
		return angle(c.ports[i]) < angle(c.ports[j])
	})
}

func portNames(ports []Port) []string {
	names := make([]string, len(ports))
	for i, p := range ports {
		names[i] = p.Name
	}
	return names
}

// Length returns Info["length"].
func (c *Component) Length() float64 {
	return c.Info["length"]
}

// SetInfo records a numeric property of the cell.
func (c *Component) SetInfo(key string, v float64) {
	if c.Info == nil {
		c.Info = map[string]float64{}
	}
	c.Info[key] = v
}

// BBox returns the bounding box of c and all its descendants. An empty
// cell has a zero box.
func (c *Component) BBox() rect.Rect {
	b, ok := c.bbox()
	if !ok {
		return rect.Rect{}
	}
	return b
}

func (c *Component) bbox() (rect.Rect, bool) {
	b := emptyBox()
	for _, p := range c.Polygons {
		for _, pt := range p.Points {
			b = extend(b, pt)
		}
	}
	for _, r := range c.Refs {
		rb, ok := r.bbox()
		if !ok {
			continue
		}
		b = extend(b, vec.Vec2{X: rb.LLx, Y: rb.LLy})
		b = extend(b, vec.Vec2{X: rb.URx, Y: rb.URy})
	}
	return b, !isEmpty(b)
}

// Size returns the width and height of the bounding box.
func (c *Component) Size() (w, h float64) {
	b := c.BBox()
	return b.URx - b.LLx, b.URy - b.LLy
}

// Flatten returns all polygons of the hierarchy in the frame of c.
func (c *Component) Flatten() []Polygon {
	var out []Polygon
	c.flatten(Transform{}, &out)
	return out
}

func (c *Component) flatten(t Transform, out *[]Polygon) {
	m := t.Matrix()
	for _, p := range c.Polygons {
		pts := make([]vec.Vec2, len(p.Points))
		for i, pt := range p.Points {
			pts[i] = applyMatrix(m, pt)
		}
		*out = append(*out, Polygon{Layer: p.Layer, Points: pts})
	}
	for _, r := range c.Refs {
		r.Cell.flatten(r.Transform.Then(t), out)
	}
}

// FlatLabels returns all labels of the hierarchy in the frame of c.
func (c *Component) FlatLabels() []Label {
	var out []Label
	var walk func(*Component, Transform)
	walk = func(cc *Component, t Transform) {
		for _, l := range cc.Labels {
			out = append(out, Label{Text: l.Text, Position: t.Apply(l.Position), Layer: l.Layer})
		}
		for _, r := range cc.Refs {
			walk(r.Cell, r.Transform.Then(t))
		}
	}
	walk(c, Transform{})
	return out
}

// Extract returns a flat copy of c holding only polygons on the given
// layers. Ports are kept.
func (c *Component) Extract(layers ...Layer) *Component {
	keep := layerSet(layers)
	out := New(CellName("extract", c.Name, layers))
	for _, p := range c.Flatten() {
		if keep[p.Layer] {
			out.Polygons = append(out.Polygons, p)
		}
	}
	out.ports = c.Ports()
	return out
}

// RemoveLayers returns a flat copy of c without polygons on the given
// layers. Ports and labels are kept.
func (c *Component) RemoveLayers(layers ...Layer) *Component {
	drop := layerSet(layers)
	out := New(CellName("remove_layers", c.Name, layers))
	for _, p := range c.Flatten() {
		if !drop[p.Layer] {
			out.Polygons = append(out.Polygons, p)
		}
	}
	out.Labels = c.FlatLabels()
	out.ports = c.Ports()
	for k, v := range c.Info {
		out.SetInfo(k, v)
	}
	return out
}

// Layers returns the distinct layers used in the hierarchy.
func (c *Component) Layers() []Layer {
	seen := map[Layer]bool{}
	var out []Layer
	for _, p := range c.Flatten() {
		if !seen[p.Layer] {
			seen[p.Layer] = true
			out = append(out, p.Layer)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Layer != out[j].Layer {
			return out[i].Layer < out[j].Layer
		}
		return out[i].Datatype < out[j].Datatype
	})
	return out
}

// Cells returns c and every distinct descendant, children before parents.
func (c *Component) Cells() []*Component {
	var out []*Component
	seen := map[*Component]bool{}
	var visit func(*Component)
	visit = func(cc *Component) {
		if seen[cc] {
			return
		}
		seen[cc] = true
		for _, r := range cc.Refs {
			visit(r.Cell)
		}
		out = append(out, cc)
	}
	visit(c)
	return out
}

func (c *Component) String() string {
	return fmt.Sprintf("%s(%d polygons, %d refs, %d ports)", c.Name, len(c.Polygons), len(c.Refs), len(c.ports))
}

func layerSet(layers []Layer) map[Layer]bool {
	m := make(map[Layer]bool, len(layers))
	for _, l := range layers {
		m[l] = true
	}
	return m
}

func emptyBox() rect.Rect {
	return rect.Rect{LLx: math.Inf(1), LLy: math.Inf(1), URx: math.Inf(-1), URy: math.Inf(-1)}
}

func isEmpty(b rect.Rect) bool {
	return b.LLx > b.URx || b.LLy > b.URy
}

func extend(b rect.Rect, p vec.Vec2) rect.Rect {
	b.LLx = math.Min(b.LLx, p.X)
	b.LLy = math.Min(b.LLy, p.Y)
	b.URx = math.Max(b.URx, p.X)
	b.URy = math.Max(b.URy, p.Y)
	return b
}

// Center returns the center of a box.
func Center(b rect.Rect) vec.Vec2 {
	return vec.Vec2{X: (b.LLx + b.URx) / 2, Y: (b.LLy + b.URy) / 2}
}
