package layout

import (
	"math"

	"seehuhn.de/go/geom/vec"
)

// Path is a polyline with explicit start and end headings in degrees. The
// headings matter for extrusion: they fix the end faces of the waveguide.
type Path struct {
	Points     []vec.Vec2
	StartAngle float64
	EndAngle   float64
}

// arcResolution is the number of samples per degree of arc.
const arcResolution = 2.0

// Straight returns a path of the given length along +x.
func Straight(length float64) Path {
	return Path{Points: []vec.Vec2{{}, {X: length}}}
}

// Arc returns a circular arc starting at the origin heading +x. Positive
// angles turn left (counter-clockwise).
func Arc(radius, angle float64) Path {
	n := int(math.Ceil(math.Abs(angle)*arcResolution)) + 1
	if n < 3 {
		n = 3
	}
	sign := 1.0
	if angle < 0 {
		sign = -1
	}
	a := math.Abs(angle) * math.Pi / 180
	pts := make([]vec.Vec2, n)
	for i := range pts {
		t := a * float64(i) / float64(n-1)
		pts[i] = vec.Vec2{X: radius * math.Sin(t), Y: sign * radius * (1 - math.Cos(t))}
	}
	return Path{Points: pts, EndAngle: NormalizeAngle(angle)}
}

// Euler returns an Euler (clothoid) bend turning by angle degrees. Radius
// is the minimum radius of curvature, reached in the circular middle part;
// p is the fraction of the turn spent in the two clothoid sections.
func Euler(radius, angle, p float64) Path {
	if p <= 0 {
		return Arc(radius, angle)
	}
	if p > 1 {
		p = 1
	}
	a := math.Abs(angle) * math.Pi / 180
	sp := p * a * radius
	sArc := (1 - p) * a * radius
	total := 2*sp + sArc

	heading := func(s float64) float64 {
		switch {
		case s <= sp:
			return s * s / (2 * radius * sp)
		case s <= sp+sArc:
			return p*a/2 + (s-sp)/radius
		default:
			u := total - s
			return a - u*u/(2*radius*sp)
		}
	}

	n := int(math.Ceil(math.Abs(angle)*arcResolution))*4 + 8
	ds := total / float64(n)
	pts := make([]vec.Vec2, 1, n/4+2)
	var pos vec.Vec2
	for i := 0; i < n; i++ {
		// Midpoint rule on the exact heading keeps the error at O(ds²).
		th := heading((float64(i) + 0.5) * ds)
		pos = pos.Add(vec.Vec2{X: math.Cos(th), Y: math.Sin(th)}.Mul(ds))
		if (i+1)%4 == 0 || i == n-1 {
			pts = append(pts, pos)
		}
	}
	path := Path{Points: pts, EndAngle: NormalizeAngle(math.Abs(angle))}
	if angle < 0 {
		path = path.MirrorY()
	}
	return path
}

// EulerLength returns the arc length of Euler(radius, angle, p).
func EulerLength(radius, angle, p float64) float64 {
	if p <= 0 {
		return radius * math.Abs(angle) * math.Pi / 180
	}
	if p > 1 {
		p = 1
	}
	a := math.Abs(angle) * math.Pi / 180
	return (1 + p) * a * radius
}

// SBend returns a cubic Bézier S-bend from the origin to (dx, dy) with
// horizontal tangents at both ends.
func SBend(dx, dy float64) Path {
	const n = 99
	p0 := vec.Vec2{}
	p1 := vec.Vec2{X: dx / 2}
	p2 := vec.Vec2{X: dx / 2, Y: dy}
	p3 := vec.Vec2{X: dx, Y: dy}
	pts := make([]vec.Vec2, n)
	for i := range pts {
		t := float64(i) / float64(n-1)
		omt := 1 - t
		pts[i] = p0.Mul(omt * omt * omt).
			Add(p1.Mul(3 * omt * omt * t)).
			Add(p2.Mul(3 * omt * t * t)).
			Add(p3.Mul(t * t * t))
	}
	end := 0.0
	if dx < 0 {
		end = 180
	}
	return Path{Points: pts, StartAngle: end, EndAngle: end}
}

// PathFromPoints builds a path whose headings follow its first and last
// segments.
func PathFromPoints(pts []vec.Vec2) Path {
	pts = dedupe(pts)
	p := Path{Points: pts}
	if len(pts) >= 2 {
		p.StartAngle = heading(pts[0], pts[1])
		p.EndAngle = heading(pts[len(pts)-2], pts[len(pts)-1])
	}
	return p
}

func heading(a, b vec.Vec2) float64 {
	d := b.Sub(a)
	return NormalizeAngle(math.Round(math.Atan2(d.Y, d.X)*180/math.Pi*1e9) / 1e9)
}

func dedupe(pts []vec.Vec2) []vec.Vec2 {
	out := make([]vec.Vec2, 0, len(pts))
	for _, p := range pts {
		if len(out) > 0 && p.Sub(out[len(out)-1]).Length() < 1e-9 {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Start returns the first point of the path.
func (p Path) Start() vec.Vec2 { return p.Points[0] }

// End returns the last point of the path.
func (p Path) End() vec.Vec2 { return p.Points[len(p.Points)-1] }

// Length returns the polyline length.
func (p Path) Length() float64 {
	var l float64
	for i := 1; i < len(p.Points); i++ {
		l += p.Points[i].Sub(p.Points[i-1]).Length()
	}
	return l
}

// Transformed returns the path mapped through t.
func (p Path) Transformed(t Transform) Path {
	pts := make([]vec.Vec2, len(p.Points))
	for i, pt := range p.Points {
		pts[i] = t.Apply(pt)
	}
	return Path{Points: pts, StartAngle: t.ApplyAngle(p.StartAngle), EndAngle: t.ApplyAngle(p.EndAngle)}
}

// Move returns the path translated by d.
func (p Path) Move(d vec.Vec2) Path { return p.Transformed(Translation(d)) }

// Rotate returns the path rotated by deg degrees around the origin.
func (p Path) Rotate(deg float64) Path { return p.Transformed(Transform{Rotation: deg}) }

// MirrorY returns the path reflected across the x axis (y → −y).
func (p Path) MirrorY() Path { return p.Transformed(Transform{XRefl: true}) }

// MirrorX returns the path reflected across the y axis (x → −x).
func (p Path) MirrorX() Path { return p.Transformed(Transform{Rotation: 180, XRefl: true}) }

// Append joins q to the end of p: q is rotated to continue along the end
// heading of p and translated onto its last point.
func (p Path) Append(q Path) Path {
	if len(p.Points) == 0 {
		return q
	}
	t := Transform{Rotation: NormalizeAngle(p.EndAngle - q.StartAngle)}
	q = q.Transformed(t)
	q = q.Move(p.End().Sub(q.Start()))
	pts := append(append([]vec.Vec2(nil), p.Points...), q.Points[1:]...)
	return Path{Points: dedupe(pts), StartAngle: p.StartAngle, EndAngle: q.EndAngle}
}

// Concat appends paths in order.
func Concat(paths ...Path) Path {
	var out Path
	for _, q := range paths {
		out = out.Append(q)
	}
	return out
}

// CutBand splits the path where it passes through the horizontal band
// |y − yc| < h/2 and returns the pieces outside the band.
func (p Path) CutBand(yc, h float64) []Path {
	inside := func(v vec.Vec2) bool { return math.Abs(v.Y-yc) < h/2 }
	var pieces []Path
	var cur []vec.Vec2
	flush := func() {
		if len(cur) >= 2 {
			pieces = append(pieces, PathFromPoints(cur))
		}
		cur = nil
	}
	outside := !inside(p.Points[0])
	if outside {
		cur = append(cur, p.Points[0])
	}
	for i := 1; i < len(p.Points); i++ {
		pt := p.Points[i]
		for _, x := range bandCrossings(p.Points[i-1], pt, yc, h) {
			if outside {
				cur = append(cur, x)
				flush()
			} else {
				cur = []vec.Vec2{x}
			}
			outside = !outside
		}
		switch {
		case outside && inside(pt):
			flush()
			outside = false
		case !outside && !inside(pt):
			cur = nil
			outside = true
		}
		if outside {
			cur = append(cur, pt)
		}
	}
	flush()
	if len(pieces) > 0 && pieces[0].Start() == p.Start() {
		pieces[0].StartAngle = p.StartAngle
	}
	if n := len(pieces); n > 0 && pieces[n-1].End() == p.End() {
		pieces[n-1].EndAngle = p.EndAngle
	}
	return pieces
}

// bandCrossings returns the points where segment a→b crosses the band
// edges, ordered from a to b.
func bandCrossings(a, b vec.Vec2, yc, h float64) []vec.Vec2 {
	var out []vec.Vec2
	var ts []float64
	for _, y := range []float64{yc - h/2, yc + h/2} {
		if (a.Y-y)*(b.Y-y) < 0 {
			ts = append(ts, (y-a.Y)/(b.Y-a.Y))
		}
	}
	if len(ts) == 2 && ts[0] > ts[1] {
		ts[0], ts[1] = ts[1], ts[0]
	}
	for _, t := range ts {
		out = append(out, a.Add(b.Sub(a).Mul(t)))
	}
	return out
}
