package layout

import (
	"math"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// Reference is a placed instance of a component.
type Reference struct {
	Cell      *Component
	Transform Transform
}

// LookupPort returns the named port of the referenced cell in the parent
// frame.
func (r *Reference) LookupPort(name string) (Port, error) {
	p, err := r.Cell.LookupPort(name)
	if err != nil {
		return Port{}, err
	}
	return p.Transformed(r.Transform), nil
}

// Port returns the named port in the parent frame and panics if it does
// not exist.
func (r *Reference) Port(name string) Port {
	return r.Cell.Port(name).Transformed(r.Transform)
}

// Ports returns all ports of the referenced cell in the parent frame.
func (r *Reference) Ports() []Port {
	ports := r.Cell.Ports()
	for i := range ports {
		ports[i] = ports[i].Transformed(r.Transform)
	}
	return ports
}

// apply composes t after the current placement.
func (r *Reference) apply(t Transform) *Reference {
	r.Transform = r.Transform.Then(t)
	return r
}

// Move translates the reference by d.
func (r *Reference) Move(d vec.Vec2) *Reference {
	return r.apply(Translation(d))
}

// MoveTo translates the reference so that the point from lands on to.
func (r *Reference) MoveTo(from, to vec.Vec2) *Reference {
	return r.Move(to.Sub(from))
}

// MoveX and MoveY translate along one axis.
func (r *Reference) MoveX(dx float64) *Reference { return r.Move(vec.Vec2{X: dx}) }
func (r *Reference) MoveY(dy float64) *Reference { return r.Move(vec.Vec2{Y: dy}) }

// Rotate rotates the reference by deg degrees around the parent origin.
func (r *Reference) Rotate(deg float64) *Reference {
	return r.apply(Transform{Rotation: NormalizeAngle(deg)})
}

// RotateAround rotates the reference by deg degrees around center.
func (r *Reference) RotateAround(deg float64, center vec.Vec2) *Reference {
	return r.apply(RotationAbout(deg, center))
}

// Mirror reflects the reference across the line through p1 and p2.
func (r *Reference) Mirror(p1, p2 vec.Vec2) *Reference {
	return r.apply(MirrorAcross(p1, p2))
}

// MirrorX reflects across the vertical line at x0 (x → 2·x0 − x).
func (r *Reference) MirrorX(x0 float64) *Reference {
	return r.Mirror(vec.Vec2{X: x0, Y: 0}, vec.Vec2{X: x0, Y: 1})
}

// MirrorY reflects across the horizontal line at y0 (y → 2·y0 − y).
func (r *Reference) MirrorY(y0 float64) *Reference {
	return r.Mirror(vec.Vec2{X: 0, Y: y0}, vec.Vec2{X: 1, Y: y0})
}

// Connect places the reference so that its port name sits on dest and
// faces it. Any reflection already applied is kept.
func (r *Reference) Connect(name string, dest Port) *Reference {
	p := r.Cell.Port(name)
	local := p.Orientation
	if r.Transform.XRefl {
		local = -local
	}
	t := Transform{
		Rotation: NormalizeAngle(dest.Orientation + 180 - local),
		XRefl:    r.Transform.XRefl,
	}
	t.Origin = dest.Center.Sub(t.Apply(p.Center))
	r.Transform = t
	return r
}

// BBox returns the box of the placed cell in the parent frame.
func (r *Reference) BBox() rect.Rect {
	b, ok := r.bbox()
	if !ok {
		return rect.Rect{}
	}
	return b
}

func (r *Reference) bbox() (rect.Rect, bool) {
	cb, ok := r.Cell.bbox()
	if !ok {
		return rect.Rect{}, false
	}
	b := emptyBox()
	if math.Mod(r.Transform.Rotation, 90) == 0 {
		for _, p := range []vec.Vec2{
			{X: cb.LLx, Y: cb.LLy}, {X: cb.URx, Y: cb.LLy},
			{X: cb.URx, Y: cb.URy}, {X: cb.LLx, Y: cb.URy},
		} {
			b = extend(b, r.Transform.Apply(p))
		}
		return b, true
	}
	var polys []Polygon
	r.Cell.flatten(r.Transform, &polys)
	for _, p := range polys {
		for _, pt := range p.Points {
			b = extend(b, pt)
		}
	}
	return b, !isEmpty(b)
}

// Center returns the center of the placed bounding box.
func (r *Reference) Center() vec.Vec2 {
	return Center(r.BBox())
}

// XMin, XMax, YMin and YMax return bounding box edges.
func (r *Reference) XMin() float64 { return r.BBox().LLx }
func (r *Reference) XMax() float64 { return r.BBox().URx }
func (r *Reference) YMin() float64 { return r.BBox().LLy }
func (r *Reference) YMax() float64 { return r.BBox().URy }

// SetXMin moves the reference so that its left edge is at x.
func (r *Reference) SetXMin(x float64) *Reference { return r.MoveX(x - r.XMin()) }

// SetXMax moves the reference so that its right edge is at x.
func (r *Reference) SetXMax(x float64) *Reference { return r.MoveX(x - r.XMax()) }

// SetYMin moves the reference so that its bottom edge is at y.
func (r *Reference) SetYMin(y float64) *Reference { return r.MoveY(y - r.YMin()) }

// SetYMax moves the reference so that its top edge is at y.
func (r *Reference) SetYMax(y float64) *Reference { return r.MoveY(y - r.YMax()) }

// SetCenter moves the reference so that its box center is at p.
func (r *Reference) SetCenter(p vec.Vec2) *Reference {
	return r.Move(p.Sub(r.Center()))
}
