package layout

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"github.com/unolab/unolayout/pkg/errors"
)

var testLayer = L(1, 0)

func box(w, h float64) *Component {
	c := New(CellName("box", w, h))
	c.AddRect(testLayer, rect.Rect{LLx: 0, LLy: -h / 2, URx: w, URy: h / 2})
	c.AddPort(Port{Name: "o1", Center: vec.Vec2{X: 0}, Orientation: 180, Width: h, Layer: testLayer, Type: Optical})
	c.AddPort(Port{Name: "o2", Center: vec.Vec2{X: w}, Orientation: 0, Width: h, Layer: testLayer, Type: Optical})
	return c
}

func TestConnect(t *testing.T) {
	top := New("top")
	a := top.Add(box(10, 1))
	dest := a.Port("o2")

	tests := []struct {
		name string
		prep func(*Reference)
		port string
	}{
		{"plain", func(*Reference) {}, "o1"},
		{"other end", func(*Reference) {}, "o2"},
		{"rotated first", func(r *Reference) { r.Rotate(33) }, "o1"},
		{"mirrored first", func(r *Reference) { r.MirrorY(0) }, "o1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := top.Add(box(5, 1))
			tt.prep(b)
			b.Connect(tt.port, dest)
			got := b.Port(tt.port)
			if !near(got.Center, dest.Center) {
				t.Errorf("connected center = %v, want %v", got.Center, dest.Center)
			}
			if math.Abs(NormalizeAngle(got.Orientation-dest.Orientation)-180) > 1e-9 {
				t.Errorf("connected orientation = %v, want opposite of %v", got.Orientation, dest.Orientation)
			}
		})
	}
}

func TestConnectRotated(t *testing.T) {
	top := New("top")
	a := top.Add(box(10, 1))
	a.Rotate(90)
	b := top.Add(box(5, 1)).Connect("o1", a.Port("o2"))
	got := b.Port("o2")
	if !near(got.Center, vec.Vec2{X: 0, Y: 15}) {
		t.Errorf("o2 center = %v, want (0, 15)", got.Center)
	}
	if got.Orientation != 90 {
		t.Errorf("o2 orientation = %v, want 90", got.Orientation)
	}
}

func TestBBox(t *testing.T) {
	top := New("top")
	top.Add(box(10, 2)).Move(vec.Vec2{X: 5, Y: 5})
	top.Add(box(4, 4)).Rotate(90)
	want := rect.Rect{LLx: -2, LLy: 0, URx: 15, URy: 6}
	if diff := cmp.Diff(want, top.BBox()); diff != "" {
		t.Errorf("BBox() mismatch (-want +got):\n%s", diff)
	}
	if got := New("empty").BBox(); got != (rect.Rect{}) {
		t.Errorf("empty BBox() = %v", got)
	}

	// An empty child must not pull the box to the origin.
	far := New("far")
	far.Add(box(1, 1)).Move(vec.Vec2{X: 100, Y: 100})
	far.Add(New("nothing"))
	if got := far.BBox(); got.LLx != 100 {
		t.Errorf("BBox with empty child LLx = %v, want 100", got.LLx)
	}
}

func TestFlattenAndExtract(t *testing.T) {
	inner := box(2, 2)
	inner.AddRect(L(2, 0), rect.Rect{LLx: 0, LLy: 0, URx: 1, URy: 1})
	top := New("top")
	top.Add(inner).Move(vec.Vec2{X: 10})
	top.Add(inner).Move(vec.Vec2{X: 20})

	if got := len(top.Flatten()); got != 4 {
		t.Fatalf("len(Flatten()) = %d, want 4", got)
	}
	ex := top.Extract(L(2, 0))
	if got := len(ex.Polygons); got != 2 {
		t.Errorf("Extract polygons = %d, want 2", got)
	}
	rm := top.RemoveLayers(L(2, 0))
	for _, p := range rm.Polygons {
		if p.Layer == L(2, 0) {
			t.Errorf("RemoveLayers kept layer %v", p.Layer)
		}
	}
	if got := top.Layers(); !cmp.Equal(got, []Layer{L(1, 0), L(2, 0)}) {
		t.Errorf("Layers() = %v", got)
	}
	if got := len(top.Cells()); got != 2 {
		t.Errorf("Cells() = %d, want 2 (shared child once)", got)
	}
}

func TestLookupPort(t *testing.T) {
	c := box(1, 1)
	if _, err := c.LookupPort("o9"); !errors.Is(err, errors.ErrCodeUnknownPort) {
		t.Errorf("LookupPort(o9) error = %v, want UNKNOWN_PORT", err)
	}
	c.AddPort(Port{Name: "o1", Orientation: 90})
	if got := len(c.Ports()); got != 2 {
		t.Errorf("AddPort with existing name: %d ports, want 2", got)
	}
	if c.Port("o1").Orientation != 90 {
		t.Errorf("AddPort did not replace o1")
	}
}

func TestCellName(t *testing.T) {
	a := CellName("straight", 10.0, 0.5)
	b := CellName("straight", 10.0, 0.5)
	c := CellName("straight", 10.0, 0.6)
	if a != b {
		t.Errorf("CellName not stable: %s vs %s", a, b)
	}
	if a == c {
		t.Errorf("CellName collision for different params: %s", a)
	}
	if len(a) != len("straight_")+8 {
		t.Errorf("CellName = %q, want kind plus 8 hex digits", a)
	}
	u := WithUUID(New(a))
	if u.Name == a || len(u.Name) != len(a)+9 {
		t.Errorf("WithUUID name = %q", u.Name)
	}
}

func TestMoveToAndMirrorX(t *testing.T) {
	top := New("top")
	ref := top.Add(box(10, 1))

	ref.MoveTo(ref.Port("o1").Center, vec.Vec2{X: 5, Y: 7})
	if got := ref.Port("o1").Center; !near(got, vec.Vec2{X: 5, Y: 7}) {
		t.Errorf("after MoveTo o1 = %v, want (5, 7)", got)
	}

	ref.MirrorX(5)
	o2 := ref.Port("o2")
	if !near(o2.Center, vec.Vec2{X: -5, Y: 7}) {
		t.Errorf("after MirrorX o2 = %v, want (-5, 7)", o2.Center)
	}
	if math.Abs(o2.Orientation-180) > 1e-9 {
		t.Errorf("after MirrorX o2 faces %v, want 180", o2.Orientation)
	}
}
