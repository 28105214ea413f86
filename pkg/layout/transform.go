package layout

import (
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/vec"
)

// Transform places a cell in its parent. Points are first reflected about
// the x axis (if XRefl), then rotated counter-clockwise by Rotation degrees,
// then translated by Origin.
type Transform struct {
	Origin   vec.Vec2
	Rotation float64
	XRefl    bool
}

// Apply maps a point from the child frame into the parent frame.
func (t Transform) Apply(p vec.Vec2) vec.Vec2 {
	x, y := p.X, p.Y
	if t.XRefl {
		y = -y
	}
	s, c := sincosDeg(t.Rotation)
	return vec.Vec2{X: c*x - s*y + t.Origin.X, Y: s*x + c*y + t.Origin.Y}
}

// ApplyAngle maps a heading in degrees from the child frame into the parent.
func (t Transform) ApplyAngle(deg float64) float64 {
	if t.XRefl {
		deg = -deg
	}
	return NormalizeAngle(deg + t.Rotation)
}

// Then returns the transform that applies t first and u second.
func (t Transform) Then(u Transform) Transform {
	rot := t.Rotation
	if u.XRefl {
		rot = -rot
	}
	return Transform{
		Origin:   u.Apply(t.Origin),
		Rotation: NormalizeAngle(rot + u.Rotation),
		XRefl:    t.XRefl != u.XRefl,
	}
}

// Matrix returns t as an affine matrix with x' = M[0]x + M[2]y + M[4] and
// y' = M[1]x + M[3]y + M[5].
func (t Transform) Matrix() matrix.Matrix {
	s, c := sincosDeg(t.Rotation)
	if t.XRefl {
		return matrix.Matrix{c, s, s, -c, t.Origin.X, t.Origin.Y}
	}
	return matrix.Matrix{c, s, -s, c, t.Origin.X, t.Origin.Y}
}

// IsIdentity reports whether t leaves every point in place.
func (t Transform) IsIdentity() bool {
	return t == Transform{}
}

// Translation returns a pure translation.
func Translation(d vec.Vec2) Transform {
	return Transform{Origin: d}
}

// RotationAbout returns a rotation by deg degrees around center.
func RotationAbout(deg float64, center vec.Vec2) Transform {
	r := Transform{Rotation: NormalizeAngle(deg)}
	return Transform{Origin: center.Sub(r.Apply(center)), Rotation: r.Rotation}
}

// MirrorAcross returns the reflection across the line through p1 and p2.
func MirrorAcross(p1, p2 vec.Vec2) Transform {
	d := p2.Sub(p1)
	phi := math.Atan2(d.Y, d.X) * 180 / math.Pi
	m := Transform{Rotation: NormalizeAngle(2 * phi), XRefl: true}
	return Transform{Origin: p1.Sub(m.Apply(p1)), Rotation: m.Rotation, XRefl: true}
}

func applyMatrix(m matrix.Matrix, p vec.Vec2) vec.Vec2 {
	return vec.Vec2{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// NormalizeAngle maps deg into [0, 360).
func NormalizeAngle(deg float64) float64 {
	a := math.Mod(deg, 360)
	if a < 0 {
		a += 360
	}
	if a >= 360-1e-9 || math.Abs(a) < 1e-9 {
		return 0
	}
	return a
}

// sincosDeg is exact on multiples of 90 degrees so that manhattan layouts
// stay on the database grid.
func sincosDeg(deg float64) (s, c float64) {
	a := NormalizeAngle(deg)
	switch {
	case nearly(a, 0):
		return 0, 1
	case nearly(a, 90):
		return 1, 0
	case nearly(a, 180):
		return 0, -1
	case nearly(a, 270):
		return -1, 0
	}
	return math.Sincos(a * math.Pi / 180)
}

func nearly(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// rotate rotates v counter-clockwise by deg degrees around the origin.
func rotate(v vec.Vec2, deg float64) vec.Vec2 {
	s, c := sincosDeg(deg)
	return vec.Vec2{X: c*v.X - s*v.Y, Y: s*v.X + c*v.Y}
}

// Dir returns the unit vector pointing along heading deg.
func Dir(deg float64) vec.Vec2 {
	s, c := sincosDeg(deg)
	return vec.Vec2{X: c, Y: s}
}
