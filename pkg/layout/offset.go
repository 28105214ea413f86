package layout

import (
	"seehuhn.de/go/geom/vec"
)

// OffsetPolygon grows a polygon outward by d (shrinks for negative d)
// using miter joins at the vertices.
func OffsetPolygon(pts []vec.Vec2, d float64) []vec.Vec2 {
	n := len(pts)
	if n < 3 || d == 0 {
		return append([]vec.Vec2(nil), pts...)
	}
	// Outward is to the right of the edges for counter-clockwise outlines.
	sign := -1.0
	if SignedArea(pts) < 0 {
		sign = 1
	}
	out := make([]vec.Vec2, n)
	for i := range pts {
		prev := pts[(i-1+n)%n]
		next := pts[(i+1)%n]
		n1 := leftNormal(prev, pts[i])
		n2 := leftNormal(pts[i], next)
		out[i] = pts[i].Add(miter(n1, n2).Mul(sign * d))
	}
	return out
}

// SignedArea returns the shoelace area; positive for counter-clockwise.
func SignedArea(pts []vec.Vec2) float64 {
	var a float64
	for i := range pts {
		j := (i + 1) % len(pts)
		a += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return a / 2
}

// Offset returns a flat copy of c in which every polygon on layer is
// offset by d. Other layers, ports and labels are kept unchanged.
func Offset(c *Component, layer Layer, d float64) *Component {
	out := New(CellName("offset", c.Name, layer, d))
	for _, p := range c.Flatten() {
		if p.Layer == layer {
			p.Points = OffsetPolygon(p.Points, d)
		}
		out.Polygons = append(out.Polygons, p)
	}
	out.Labels = c.FlatLabels()
	out.AddPorts(c.Ports(), "")
	for k, v := range c.Info {
		out.SetInfo(k, v)
	}
	return out
}
