package gds

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"reflect"
	"time"

	"seehuhn.de/go/geom/vec"

	"github.com/unolab/unolayout/pkg/errors"
	"github.com/unolab/unolayout/pkg/layout"
)

// maxVertices is the largest polygon a single BOUNDARY can hold, leaving
// room for the closing point.
const maxVertices = 8190

// Options controls stream output.
type Options struct {
	// LibName is written to the LIBNAME record. Defaults to "LIB".
	LibName string
	// Unit is the user unit in meters. Defaults to 1e-6.
	Unit float64
	// Precision is the database unit in meters. Defaults to 1e-9.
	Precision float64
	// Timestamp is written to BGNLIB and BGNSTR. Defaults to time.Now.
	Timestamp time.Time
}

func (o *Options) setDefaults() {
	if o.LibName == "" {
		o.LibName = "LIB"
	}
	if o.Unit == 0 {
		o.Unit = 1e-6
	}
	if o.Precision == 0 {
		o.Precision = 1e-9
	}
	if o.Timestamp.IsZero() {
		o.Timestamp = time.Now()
	}
}

// Stats summarizes what Write emitted.
type Stats struct {
	Structures int
	Boundaries int
	SRefs      int
	Texts      int
}

// Write emits top and all its descendants as a GDSII library.
func Write(w io.Writer, top *layout.Component, opts Options) (Stats, error) {
	opts.setDefaults()
	if opts.Precision > opts.Unit {
		return Stats{}, errors.New(errors.ErrCodeInvalidParameter, "database unit %g m is larger than user unit %g m", opts.Precision, opts.Unit)
	}
	names, cells, err := structureNames(top)
	if err != nil {
		return Stats{}, err
	}

	rw := &recordWriter{w: w}
	ts := timestamp(opts.Timestamp)
	rw.int16s(recHeader, 600)
	rw.int16s(recBgnLib, append(ts, ts...)...)
	rw.str(recLibName, opts.LibName)
	rw.reals(recUnits, opts.Precision/opts.Unit, opts.Precision)

	scale := opts.Unit / opts.Precision
	var st Stats
	for _, c := range cells {
		st.Structures++
		rw.int16s(recBgnStr, append(ts, ts...)...)
		rw.str(recStrName, names[c])
		for _, p := range c.Polygons {
			for _, part := range splitPolygon(p.Points) {
				xy := toGrid(part, scale)
				if len(xy) < 3 {
					continue
				}
				st.Boundaries++
				rw.empty(recBoundary)
				rw.int16s(recLayer, p.Layer.Layer)
				rw.int16s(recDatatype, p.Layer.Datatype)
				rw.int32s(recXY, closeRing(xy)...)
				rw.empty(recEndEl)
			}
		}
		for _, r := range c.Refs {
			st.SRefs++
			rw.empty(recSRef)
			rw.str(recSName, names[r.Cell])
			t := r.Transform
			if t.XRefl || t.Rotation != 0 {
				var flags uint16
				if t.XRefl {
					flags |= stransReflect
				}
				rw.bits(recSTrans, flags)
				if t.Rotation != 0 {
					rw.reals(recAngle, t.Rotation)
				}
			}
			rw.int32s(recXY, grid(t.Origin.X, scale), grid(t.Origin.Y, scale))
			rw.empty(recEndEl)
		}
		for _, l := range c.Labels {
			st.Texts++
			rw.empty(recText)
			rw.int16s(recLayer, l.Layer.Layer)
			rw.int16s(recTextType, l.Layer.Datatype)
			rw.int32s(recXY, grid(l.Position.X, scale), grid(l.Position.Y, scale))
			rw.str(recString, l.Text)
			rw.empty(recEndEl)
		}
		rw.empty(recEndStr)
	}
	rw.empty(recEndLib)
	if rw.err != nil {
		return st, fmt.Errorf("write gds: %w", rw.err)
	}
	return st, nil
}

// WriteFile writes top to path.
func WriteFile(path string, top *layout.Component, opts Options) (Stats, error) {
	f, err := os.Create(path)
	if err != nil {
		return Stats{}, errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", path)
	}
	bw := bufio.NewWriter(f)
	st, err := Write(bw, top, opts)
	if err != nil {
		f.Close()
		return st, err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return st, fmt.Errorf("flush %s: %w", path, err)
	}
	return st, f.Close()
}

// structureNames assigns every distinct cell a unique structure name.
// Cells that share a name and have identical content share a structure;
// different cells with the same name get a numeric suffix.
func structureNames(top *layout.Component) (map[*layout.Component]string, []*layout.Component, error) {
	names := map[*layout.Component]string{}
	byName := map[string][]*layout.Component{}
	var out []*layout.Component
	for _, c := range top.Cells() {
		if err := errors.ValidateCellName(c.Name); err != nil {
			return nil, nil, err
		}
		same := false
		for _, o := range byName[c.Name] {
			if sameContent(c, o, names) {
				names[c] = names[o]
				same = true
				break
			}
		}
		if same {
			continue
		}
		name := c.Name
		if n := len(byName[c.Name]); n > 0 {
			name = fmt.Sprintf("%s$%d", c.Name, n)
		}
		byName[c.Name] = append(byName[c.Name], c)
		names[c] = name
		out = append(out, c)
	}
	return names, out, nil
}

func sameContent(a, b *layout.Component, names map[*layout.Component]string) bool {
	if len(a.Refs) != len(b.Refs) || !reflect.DeepEqual(a.Polygons, b.Polygons) || !reflect.DeepEqual(a.Labels, b.Labels) {
		return false
	}
	for i := range a.Refs {
		if names[a.Refs[i].Cell] != names[b.Refs[i].Cell] || a.Refs[i].Transform != b.Refs[i].Transform {
			return false
		}
	}
	return true
}

func timestamp(t time.Time) []int16 {
	return []int16{
		int16(t.Year()), int16(t.Month()), int16(t.Day()),
		int16(t.Hour()), int16(t.Minute()), int16(t.Second()),
	}
}

func grid(v, scale float64) int32 {
	return int32(math.Round(v * scale))
}

// toGrid snaps points to the database grid and drops repeats.
func toGrid(pts []vec.Vec2, scale float64) []int32 {
	out := make([]int32, 0, 2*len(pts))
	for _, p := range pts {
		x, y := grid(p.X, scale), grid(p.Y, scale)
		if n := len(out); n >= 2 && out[n-2] == x && out[n-1] == y {
			continue
		}
		out = append(out, x, y)
	}
	for len(out) >= 4 && out[0] == out[len(out)-2] && out[1] == out[len(out)-1] {
		out = out[:len(out)-2]
	}
	if len(out) < 6 {
		return nil
	}
	return out[:len(out):len(out)]
}

func closeRing(xy []int32) []int32 {
	return append(xy, xy[0], xy[1])
}

// splitPolygon cuts polygons with too many vertices into vertical slabs.
// Each cut keeps the filled area exactly; the zero-width edges it may
// introduce are harmless for mask data.
func splitPolygon(pts []vec.Vec2) [][]vec.Vec2 {
	if len(pts) <= maxVertices {
		return [][]vec.Vec2{pts}
	}
	xmin, xmax := math.Inf(1), math.Inf(-1)
	for _, p := range pts {
		xmin = math.Min(xmin, p.X)
		xmax = math.Max(xmax, p.X)
	}
	xm := (xmin + xmax) / 2
	left := clipX(pts, xm, true)
	right := clipX(pts, xm, false)
	if len(left) >= len(pts) || len(right) >= len(pts) {
		// No progress possible along x; fall back to a plain chunking of
		// the vertex list into fans around the first vertex.
		return fanSplit(pts)
	}
	return append(splitPolygon(left), splitPolygon(right)...)
}

// clipX clips a polygon to the half plane x <= xm (keepLeft) or x >= xm
// (Sutherland–Hodgman).
func clipX(pts []vec.Vec2, xm float64, keepLeft bool) []vec.Vec2 {
	in := func(p vec.Vec2) bool {
		if keepLeft {
			return p.X <= xm
		}
		return p.X >= xm
	}
	var out []vec.Vec2
	for i := range pts {
		a, b := pts[i], pts[(i+1)%len(pts)]
		ain, bin := in(a), in(b)
		if ain {
			out = append(out, a)
		}
		if ain != bin {
			t := (xm - a.X) / (b.X - a.X)
			out = append(out, vec.Vec2{X: xm, Y: a.Y + t*(b.Y-a.Y)})
		}
	}
	return out
}

func fanSplit(pts []vec.Vec2) [][]vec.Vec2 {
	var out [][]vec.Vec2
	for start := 1; start < len(pts)-1; start += maxVertices - 2 {
		end := start + maxVertices - 2
		if end > len(pts)-1 {
			end = len(pts) - 1
		}
		part := append([]vec.Vec2{pts[0]}, pts[start:end+1]...)
		out = append(out, part)
	}
	return out
}
