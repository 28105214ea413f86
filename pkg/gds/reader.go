package gds

import (
	"bufio"
	stderrors "errors"
	"io"
	"os"

	"seehuhn.de/go/geom/vec"

	"github.com/unolab/unolayout/pkg/errors"
	"github.com/unolab/unolayout/pkg/layout"
)

var errShortRecord = stderrors.New("record shorter than its header")

// maxDepth bounds SREF nesting when flattening, which also catches cycles.
const maxDepth = 64

// Library is a parsed GDSII stream.
type Library struct {
	Name string
	// UserUnit is the size of a database unit in user units (0.001 for a
	// 1 nm grid in microns).
	UserUnit float64
	// DBUnit is the size of a database unit in meters.
	DBUnit     float64
	Structures map[string]*Structure
	// Order lists structure names as they appear in the stream.
	Order []string
}

// Structure is one cell of a library. Coordinates are in user units.
type Structure struct {
	Name     string
	Polygons []layout.Polygon
	Refs     []Ref
	Labels   []layout.Label
}

// Ref is a structure reference.
type Ref struct {
	Name      string
	Transform layout.Transform
	Mag       float64
}

// Read parses a GDSII stream.
func Read(r io.Reader) (*Library, error) {
	br := bufio.NewReader(r)
	lib := &Library{Structures: map[string]*Structure{}, UserUnit: 1e-3, DBUnit: 1e-9}

	var (
		cur    *Structure
		elem   byte
		layer  layout.Layer
		xy     []int32
		text   string
		sname  string
		strans uint16
		mag    = 1.0
		angle  float64
		sawEnd bool
	)
	reset := func() {
		elem, layer, xy, text, sname, strans, mag, angle = 0, layout.Layer{}, nil, "", "", 0, 1, 0
	}
	toUser := func(v int32) float64 { return float64(v) * lib.UserUnit }

	for !sawEnd {
		rec, err := readRecord(br)
		if err != nil {
			if err == io.EOF {
				return nil, errors.New(errors.ErrCodeInvalidFormat, "gds stream ended before ENDLIB")
			}
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read gds record")
		}
		switch rec.typ {
		case recHeader, recBgnLib, recWidth, recColRow:
		case recLibName:
			lib.Name = rec.str()
		case recUnits:
			u := rec.reals()
			if len(u) != 2 || u[0] <= 0 || u[1] <= 0 {
				return nil, errors.New(errors.ErrCodeInvalidFormat, "malformed UNITS record")
			}
			lib.UserUnit, lib.DBUnit = u[0], u[1]
		case recBgnStr:
			cur = &Structure{}
		case recStrName:
			if cur == nil {
				return nil, errors.New(errors.ErrCodeInvalidFormat, "STRNAME outside a structure")
			}
			cur.Name = rec.str()
		case recEndStr:
			if cur == nil {
				return nil, errors.New(errors.ErrCodeInvalidFormat, "ENDSTR without BGNSTR")
			}
			lib.Structures[cur.Name] = cur
			lib.Order = append(lib.Order, cur.Name)
			cur = nil
		case recBoundary, recSRef, recText, recPath, recARef:
			if cur == nil {
				return nil, errors.New(errors.ErrCodeInvalidFormat, "element outside a structure")
			}
			reset()
			elem = rec.typ
		case recLayer:
			if v := rec.int16s(); len(v) > 0 {
				layer.Layer = v[0]
			}
		case recDatatype, recTextType:
			if v := rec.int16s(); len(v) > 0 {
				layer.Datatype = v[0]
			}
		case recXY:
			xy = rec.int32s()
		case recSName:
			sname = rec.str()
		case recString:
			text = rec.str()
		case recSTrans:
			if len(rec.data) >= 2 {
				strans = uint16(rec.data[0])<<8 | uint16(rec.data[1])
			}
		case recMag:
			if v := rec.reals(); len(v) > 0 {
				mag = v[0]
			}
		case recAngle:
			if v := rec.reals(); len(v) > 0 {
				angle = v[0]
			}
		case recEndEl:
			switch elem {
			case recBoundary:
				if len(xy) < 8 {
					break
				}
				n := len(xy)/2 - 1 // drop the closing point
				pts := make([]vec.Vec2, n)
				for i := range pts {
					pts[i] = vec.Vec2{X: toUser(xy[2*i]), Y: toUser(xy[2*i+1])}
				}
				cur.Polygons = append(cur.Polygons, layout.Polygon{Layer: layer, Points: pts})
			case recSRef:
				if len(xy) < 2 {
					return nil, errors.New(errors.ErrCodeInvalidFormat, "SREF to %s without XY", sname)
				}
				cur.Refs = append(cur.Refs, Ref{
					Name: sname,
					Transform: layout.Transform{
						Origin:   vec.Vec2{X: toUser(xy[0]), Y: toUser(xy[1])},
						Rotation: layout.NormalizeAngle(angle),
						XRefl:    strans&stransReflect != 0,
					},
					Mag: mag,
				})
			case recText:
				if len(xy) >= 2 {
					cur.Labels = append(cur.Labels, layout.Label{
						Text:     text,
						Position: vec.Vec2{X: toUser(xy[0]), Y: toUser(xy[1])},
						Layer:    layer,
					})
				}
			}
			reset()
		case recEndLib:
			sawEnd = true
		}
	}
	return lib, nil
}

// ReadFile parses the GDSII file at path.
func ReadFile(path string) (*Library, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()
	return Read(f)
}

// Top returns the first structure that no other structure references.
func (l *Library) Top() (string, error) {
	used := map[string]bool{}
	for _, s := range l.Structures {
		for _, r := range s.Refs {
			used[r.Name] = true
		}
	}
	for _, name := range l.Order {
		if !used[name] {
			return name, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "library %q has no top structure", l.Name)
}

// Flatten resolves all references below name and returns its polygons in
// the frame of that structure.
func (l *Library) Flatten(name string) ([]layout.Polygon, error) {
	var out []layout.Polygon
	if err := l.flatten(name, layout.Transform{}, 1, 0, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (l *Library) flatten(name string, t layout.Transform, mag float64, depth int, out *[]layout.Polygon) error {
	if depth > maxDepth {
		return errors.New(errors.ErrCodeInvalidFormat, "reference nesting deeper than %d at %s", maxDepth, name)
	}
	s, ok := l.Structures[name]
	if !ok {
		return errors.New(errors.ErrCodeInvalidFormat, "reference to missing structure %q", name)
	}
	for _, p := range s.Polygons {
		pts := make([]vec.Vec2, len(p.Points))
		for i, pt := range p.Points {
			pts[i] = t.Apply(pt.Mul(mag))
		}
		*out = append(*out, layout.Polygon{Layer: p.Layer, Points: pts})
	}
	for _, r := range s.Refs {
		m := r.Mag
		if m == 0 {
			m = 1
		}
		// The child's origin is expressed in this structure's frame, which
		// is itself scaled by mag.
		child := r.Transform
		child.Origin = child.Origin.Mul(mag)
		if err := l.flatten(r.Name, child.Then(t), mag*m, depth+1, out); err != nil {
			return err
		}
	}
	return nil
}
