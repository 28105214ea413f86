package layout

import (
	"seehuhn.de/go/geom/vec"
)

// Extrude sweeps xs along p and returns the resulting cell with ports at
// both ends and Info["length"] set to the path length.
func Extrude(p Path, xs CrossSection) *Component {
	return ExtrudeTransition(p, xs, xs)
}

// ExtrudeTransition sweeps a cross-section whose sections vary linearly in
// width and offset from xs1 at the start to xs2 at the end. Sections are
// matched by name, falling back to position when a name is missing.
func ExtrudeTransition(p Path, xs1, xs2 CrossSection) *Component {
	c := New(CellName("extrude", p.Points, p.StartAngle, p.EndAngle, xs1, xs2))
	if len(p.Points) < 2 {
		return c
	}
	normals := vertexNormals(p)
	frac := cumulativeFraction(p.Points)

	for i, s1 := range xs1.Sections {
		s2 := matchSection(xs2.Sections, s1, i)
		left := make([]vec.Vec2, len(p.Points))
		right := make([]vec.Vec2, len(p.Points))
		for k, pt := range p.Points {
			t := frac[k]
			w := s1.Width + (s2.Width-s1.Width)*t
			o := s1.Offset + (s2.Offset-s1.Offset)*t
			left[k] = pt.Add(normals[k].Mul(o + w/2))
			right[k] = pt.Add(normals[k].Mul(o - w/2))
		}
		outline := make([]vec.Vec2, 0, 2*len(p.Points))
		outline = append(outline, left...)
		for k := len(right) - 1; k >= 0; k-- {
			outline = append(outline, right[k])
		}
		c.AddPolygon(s1.Layer, outline...)
	}

	if len(xs1.Sections) > 0 {
		m1 := xs1.Sections[0]
		m2 := matchSection(xs2.Sections, m1, 0)
		n0, n1 := normals[0], normals[len(normals)-1]
		if xs1.PortNames[0] != "" {
			c.AddPort(Port{
				Name:        xs1.PortNames[0],
				Center:      p.Start().Add(n0.Mul(m1.Offset)),
				Orientation: NormalizeAngle(p.StartAngle + 180),
				Width:       m1.Width,
				Layer:       m1.Layer,
				Type:        xs1.PortType,
			})
		}
		if xs1.PortNames[1] != "" {
			c.AddPort(Port{
				Name:        xs1.PortNames[1],
				Center:      p.End().Add(n1.Mul(m2.Offset)),
				Orientation: NormalizeAngle(p.EndAngle),
				Width:       m2.Width,
				Layer:       m2.Layer,
				Type:        xs1.PortType,
			})
		}
	}
	c.SetInfo("length", p.Length())
	return c
}

func matchSection(sections []Section, s Section, i int) Section {
	if s.Name != "" {
		for _, o := range sections {
			if o.Name == s.Name {
				return o
			}
		}
	}
	if i < len(sections) {
		return sections[i]
	}
	return s
}

// vertexNormals returns left-hand miter normals scaled so that offsetting
// by d moves each segment by exactly d. End normals follow the path
// headings.
func vertexNormals(p Path) []vec.Vec2 {
	pts := p.Points
	n := len(pts)
	out := make([]vec.Vec2, n)
	out[0] = Dir(p.StartAngle + 90)
	out[n-1] = Dir(p.EndAngle + 90)
	for i := 1; i < n-1; i++ {
		n1 := leftNormal(pts[i-1], pts[i])
		n2 := leftNormal(pts[i], pts[i+1])
		out[i] = miter(n1, n2)
	}
	return out
}

func leftNormal(a, b vec.Vec2) vec.Vec2 {
	d := b.Sub(a)
	l := d.Length()
	if l == 0 {
		return vec.Vec2{}
	}
	return vec.Vec2{X: -d.Y / l, Y: d.X / l}
}

// miter combines two unit normals into a vertex offset direction, limited
// to four times the offset for very sharp corners.
func miter(n1, n2 vec.Vec2) vec.Vec2 {
	m := n1.Add(n2)
	l := m.Length()
	if l < 1e-12 {
		return n1
	}
	m = m.Mul(1 / l)
	cos := m.Dot(n1)
	if cos < 0.25 {
		cos = 0.25
	}
	return m.Mul(1 / cos)
}

func cumulativeFraction(pts []vec.Vec2) []float64 {
	out := make([]float64, len(pts))
	var total float64
	for i := 1; i < len(pts); i++ {
		total += pts[i].Sub(pts[i-1]).Length()
		out[i] = total
	}
	if total > 0 {
		for i := range out {
			out[i] /= total
		}
	}
	return out
}
