package layout

import (
	"math"
	"testing"

	"seehuhn.de/go/geom/vec"
)

func wgXS(w float64) CrossSection {
	return Strip(w, testLayer, 10, [2]string{"o1", "o2"}, Optical)
}

func TestExtrudeStraight(t *testing.T) {
	c := Extrude(Straight(10), wgXS(0.5))
	if len(c.Polygons) != 1 {
		t.Fatalf("polygons = %d, want 1", len(c.Polygons))
	}
	if a := math.Abs(SignedArea(c.Polygons[0].Points)); math.Abs(a-5) > 1e-9 {
		t.Errorf("area = %v, want 5", a)
	}
	o1, o2 := c.Port("o1"), c.Port("o2")
	if o1.Orientation != 180 || o2.Orientation != 0 {
		t.Errorf("port orientations = %v, %v", o1.Orientation, o2.Orientation)
	}
	if !near(o2.Center, vec.Vec2{X: 10}) || o2.Width != 0.5 {
		t.Errorf("o2 = %+v", o2)
	}
	if c.Length() != 10 {
		t.Errorf("length info = %v, want 10", c.Length())
	}
}

func TestExtrudeBendPorts(t *testing.T) {
	c := Extrude(Arc(10, 90), wgXS(0.5))
	o2 := c.Port("o2")
	if !near(o2.Center, vec.Vec2{X: 10, Y: 10}) || o2.Orientation != 90 {
		t.Errorf("bend o2 = %+v", o2)
	}
}

func TestExtrudeSections(t *testing.T) {
	xs := CrossSection{
		Sections: []Section{
			{Name: "core", Width: 1, Layer: L(1, 0)},
			{Name: "clad", Width: 3, Offset: 2, Layer: L(2, 0)},
		},
		PortNames: [2]string{"o1", "o2"},
	}
	c := Extrude(Straight(4), xs)
	if len(c.Polygons) != 2 {
		t.Fatalf("polygons = %d, want 2", len(c.Polygons))
	}
	var ymin, ymax = math.Inf(1), math.Inf(-1)
	for _, p := range c.Polygons[1].Points {
		ymin = math.Min(ymin, p.Y)
		ymax = math.Max(ymax, p.Y)
	}
	if ymin != 0.5 || ymax != 3.5 {
		t.Errorf("offset section spans [%v, %v], want [0.5, 3.5]", ymin, ymax)
	}
}

func TestExtrudeTransition(t *testing.T) {
	c := ExtrudeTransition(Straight(10), wgXS(0.5), wgXS(2))
	if w := c.Port("o1").Width; w != 0.5 {
		t.Errorf("o1 width = %v, want 0.5", w)
	}
	if w := c.Port("o2").Width; w != 2 {
		t.Errorf("o2 width = %v, want 2", w)
	}
	want := (0.5 + 2) / 2 * 10
	if a := math.Abs(SignedArea(c.Polygons[0].Points)); math.Abs(a-want) > 1e-9 {
		t.Errorf("taper area = %v, want %v", a, want)
	}
}

func TestOffsetPolygon(t *testing.T) {
	sq := []vec.Vec2{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2}}
	grown := OffsetPolygon(sq, 1)
	if a := SignedArea(grown); math.Abs(a-16) > 1e-9 {
		t.Errorf("grown area = %v, want 16", a)
	}
	// Orientation must not matter.
	cw := []vec.Vec2{sq[3], sq[2], sq[1], sq[0]}
	if a := math.Abs(SignedArea(OffsetPolygon(cw, 1))); math.Abs(a-16) > 1e-9 {
		t.Errorf("grown cw area = %v, want 16", a)
	}
	shrunk := OffsetPolygon(sq, -0.5)
	if a := SignedArea(shrunk); math.Abs(a-1) > 1e-9 {
		t.Errorf("shrunk area = %v, want 1", a)
	}
}
