package gds

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"github.com/unolab/unolayout/pkg/errors"
	"github.com/unolab/unolayout/pkg/layout"
)

func TestReal8(t *testing.T) {
	tests := []struct {
		v    float64
		bits uint64
	}{
		{0, 0},
		{1, 0x4110000000000000},
		{-1, 0xC110000000000000},
		{0.001, 0x3E4189374BC6A7F0},
		{1e-9, 0x3944B82FA09B5A54},
	}
	for _, tt := range tests {
		if got := EncodeReal8(tt.v); got != tt.bits {
			t.Errorf("EncodeReal8(%g) = %#x, want %#x", tt.v, got, tt.bits)
		}
	}
	for _, v := range []float64{1, -2.5, 90, 0.001, 1e-9, 123456.789, 1.0 / 3} {
		got := DecodeReal8(EncodeReal8(v))
		if math.Abs(got-v) > math.Abs(v)*1e-15 {
			t.Errorf("DecodeReal8(EncodeReal8(%g)) = %g", v, got)
		}
	}
}

func sample() *layout.Component {
	wg := layout.L(1, 0)
	child := layout.New("child")
	child.AddRect(wg, rect.Rect{LLx: 0, LLy: 0, URx: 10, URy: 1})
	child.AddLabel("hello", vec.Vec2{X: 1, Y: 2}, layout.L(2, 0))

	top := layout.New("top")
	top.AddPolygon(layout.L(7, 0), vec.Vec2{X: 0, Y: 0}, vec.Vec2{X: 5, Y: 0}, vec.Vec2{X: 0, Y: 5})
	top.Add(child).Move(vec.Vec2{X: 100, Y: 0})
	top.Add(child).Rotate(90).MirrorY(0).Move(vec.Vec2{X: 0, Y: 50})
	return top
}

func TestWriteReadRoundTrip(t *testing.T) {
	top := sample()
	var buf bytes.Buffer
	st, err := Write(&buf, top, Options{LibName: "TEST", Timestamp: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)})
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	want := Stats{Structures: 2, Boundaries: 2, SRefs: 2, Texts: 1}
	if st != want {
		t.Errorf("Write() stats = %+v, want %+v", st, want)
	}

	lib, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if lib.Name != "TEST" {
		t.Errorf("LibName = %q", lib.Name)
	}
	if diff := cmp.Diff([]string{"child", "top"}, lib.Order); diff != "" {
		t.Errorf("structure order (-want +got):\n%s", diff)
	}
	name, err := lib.Top()
	if err != nil || name != "top" {
		t.Fatalf("Top() = %q, %v", name, err)
	}

	got, err := lib.Flatten("top")
	if err != nil {
		t.Fatalf("Flatten() error = %v", err)
	}
	opt := cmpopts.EquateApprox(0, 1e-9)
	if diff := cmp.Diff(top.Flatten(), got, opt); diff != "" {
		t.Errorf("flattened polygons differ (-want +got):\n%s", diff)
	}
	if labels := lib.Structures["child"].Labels; len(labels) != 1 || labels[0].Text != "hello" {
		t.Errorf("labels = %+v", labels)
	}
}

func TestWriteSharesIdenticalCells(t *testing.T) {
	a := layout.New("same")
	a.AddRect(layout.L(1, 0), rect.Rect{URx: 1, URy: 1})
	b := layout.New("same")
	b.AddRect(layout.L(1, 0), rect.Rect{URx: 1, URy: 1})
	c := layout.New("same")
	c.AddRect(layout.L(1, 0), rect.Rect{URx: 2, URy: 2})

	top := layout.New("top")
	top.Add(a)
	top.Add(b)
	top.Add(c)
	var buf bytes.Buffer
	st, err := Write(&buf, top, Options{})
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if st.Structures != 3 {
		t.Errorf("structures = %d, want 3 (top, same, same$1)", st.Structures)
	}
	lib, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if _, ok := lib.Structures["same$1"]; !ok {
		t.Errorf("renamed structure missing, have %v", lib.Order)
	}
}

func TestWriteSplitsLargePolygons(t *testing.T) {
	const n = 20000
	pts := make([]vec.Vec2, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / n
		pts[i] = vec.Vec2{X: 1000 * math.Cos(a), Y: 1000 * math.Sin(a)}
	}
	top := layout.New("disc")
	top.AddPolygon(layout.L(1, 0), pts...)
	var buf bytes.Buffer
	st, err := Write(&buf, top, Options{})
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if st.Boundaries < 3 {
		t.Errorf("boundaries = %d, want the disc split in at least 3 parts", st.Boundaries)
	}
	lib, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	var area float64
	for _, p := range lib.Structures["disc"].Polygons {
		if len(p.Points) > maxVertices {
			t.Errorf("polygon with %d vertices", len(p.Points))
		}
		area += math.Abs(layout.SignedArea(p.Points))
	}
	if want := math.Abs(layout.SignedArea(pts)); math.Abs(area-want)/want > 1e-6 {
		t.Errorf("split area = %v, want %v", area, want)
	}
}

func TestWriteRejectsBadNames(t *testing.T) {
	top := layout.New("bad name")
	var buf bytes.Buffer
	if _, err := Write(&buf, top, Options{}); !errors.Is(err, errors.ErrCodeInvalidCellName) {
		t.Errorf("Write() error = %v, want INVALID_CELL_NAME", err)
	}
}

func TestReadTruncated(t *testing.T) {
	var buf bytes.Buffer
	if _, err := Write(&buf, sample(), Options{}); err != nil {
		t.Fatal(err)
	}
	data := buf.Bytes()[:buf.Len()-4]
	if _, err := Read(bytes.NewReader(data)); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Read(truncated) error = %v, want INVALID_FORMAT", err)
	}
}
