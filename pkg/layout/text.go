package layout

import (
	"math"
	"sort"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"seehuhn.de/go/geom/vec"

	"github.com/unolab/unolayout/pkg/errors"
)

// Justify sets the horizontal anchor of a text block.
type Justify int

const (
	JustifyLeft Justify = iota
	JustifyCenter
	JustifyRight
)

// ParseJustify maps "left", "center" and "right" to a Justify value.
func ParseJustify(s string) (Justify, error) {
	switch strings.ToLower(s) {
	case "", "left":
		return JustifyLeft, nil
	case "center", "centre":
		return JustifyCenter, nil
	case "right":
		return JustifyRight, nil
	}
	return JustifyLeft, errors.New(errors.ErrCodeInvalidParameter, "unknown justification %q", s)
}

// glyphPPEM is the pixel size glyphs are loaded at before scaling to
// microns.
const glyphPPEM = 1024

// curveSteps is the number of line segments per quadratic or cubic segment.
const curveSteps = 8

var (
	fontOnce sync.Once
	monoFont *sfnt.Font
	fontErr  error
)

func loadFont() (*sfnt.Font, error) {
	fontOnce.Do(func() {
		monoFont, fontErr = sfnt.Parse(gomono.TTF)
	})
	return monoFont, fontErr
}

// TextOutlines returns hole-free outlines spelling s. Size is the em
// height in microns; the first baseline sits at y=0 and lines advance
// downward by 1.2·size.
func TextOutlines(s string, size float64, justify Justify) ([][]vec.Vec2, error) {
	if !(size > 0) {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "text size must be positive, got %g", size)
	}
	f, err := loadFont()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse text font")
	}
	var buf sfnt.Buffer
	ppem := fixed.Int26_6(glyphPPEM * 64)
	scale := size / glyphPPEM

	var out [][]vec.Vec2
	for line, text := range strings.Split(s, "\n") {
		baseline := -1.2 * size * float64(line)
		var glyphs [][][]vec.Vec2
		var x float64
		for _, r := range text {
			idx, err := f.GlyphIndex(&buf, r)
			if err != nil || idx == 0 {
				idx, err = f.GlyphIndex(&buf, '?')
				if err != nil {
					return nil, errors.Wrap(errors.ErrCodeInternal, err, "glyph lookup")
				}
			}
			segs, err := f.LoadGlyph(&buf, idx, ppem, nil)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInternal, err, "load glyph %q", r)
			}
			contours := glyphContours(segs, x, baseline, scale)
			glyphs = append(glyphs, contours)

			adv, err := f.GlyphAdvance(&buf, idx, ppem, font.HintingNone)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInternal, err, "advance of glyph %q", r)
			}
			x += float64(adv) / 64 * scale
		}
		var shift float64
		switch justify {
		case JustifyCenter:
			shift = -x / 2
		case JustifyRight:
			shift = -x
		}
		for _, contours := range glyphs {
			for _, poly := range mergeHoles(contours) {
				for i := range poly {
					poly[i].X += shift
				}
				out = append(out, poly)
			}
		}
	}
	return out, nil
}

// Text returns a cell holding s rendered on layer.
func Text(s string, size float64, layer Layer, justify Justify) (*Component, error) {
	polys, err := TextOutlines(s, size, justify)
	if err != nil {
		return nil, err
	}
	c := New(CellName("text", s, size, layer, justify))
	for _, p := range polys {
		c.AddPolygon(layer, p...)
	}
	return c, nil
}

// glyphContours flattens sfnt segments into closed polylines in microns.
// sfnt coordinates grow downward, so y is negated.
func glyphContours(segs sfnt.Segments, x0, y0, scale float64) [][]vec.Vec2 {
	pt := func(p fixed.Point26_6) vec.Vec2 {
		return vec.Vec2{
			X: x0 + float64(p.X)/64*scale,
			Y: y0 - float64(p.Y)/64*scale,
		}
	}
	var contours [][]vec.Vec2
	var cur []vec.Vec2
	closeContour := func() {
		cur = dedupe(cur)
		if len(cur) > 1 && cur[0].Sub(cur[len(cur)-1]).Length() < 1e-9 {
			cur = cur[:len(cur)-1]
		}
		if len(cur) >= 3 {
			contours = append(contours, cur)
		}
		cur = nil
	}
	for _, seg := range segs {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			closeContour()
			cur = append(cur, pt(seg.Args[0]))
		case sfnt.SegmentOpLineTo:
			cur = append(cur, pt(seg.Args[0]))
		case sfnt.SegmentOpQuadTo:
			p0 := cur[len(cur)-1]
			p1, p2 := pt(seg.Args[0]), pt(seg.Args[1])
			for i := 1; i <= curveSteps; i++ {
				t := float64(i) / curveSteps
				omt := 1 - t
				cur = append(cur, p0.Mul(omt*omt).Add(p1.Mul(2*omt*t)).Add(p2.Mul(t*t)))
			}
		case sfnt.SegmentOpCubeTo:
			p0 := cur[len(cur)-1]
			p1, p2, p3 := pt(seg.Args[0]), pt(seg.Args[1]), pt(seg.Args[2])
			for i := 1; i <= curveSteps; i++ {
				t := float64(i) / curveSteps
				omt := 1 - t
				cur = append(cur, p0.Mul(omt*omt*omt).
					Add(p1.Mul(3*omt*omt*t)).
					Add(p2.Mul(3*omt*t*t)).
					Add(p3.Mul(t*t*t)))
			}
		}
	}
	closeContour()
	return contours
}

// mergeHoles classifies contours by nesting depth and joins each hole to
// its enclosing outline with a zero-width keyhole bridge, since GDS
// boundaries cannot carry holes.
func mergeHoles(contours [][]vec.Vec2) [][]vec.Vec2 {
	depth := make([]int, len(contours))
	for i, c := range contours {
		for j, o := range contours {
			if i != j && pointInPolygon(c[0], o) {
				depth[i]++
			}
		}
	}
	var outers []int
	holes := map[int][][]vec.Vec2{}
	for i := range contours {
		if depth[i]%2 == 0 {
			outers = append(outers, i)
		}
	}
	for i, c := range contours {
		if depth[i]%2 == 0 {
			continue
		}
		best, bestArea := -1, math.Inf(1)
		for _, o := range outers {
			a := math.Abs(SignedArea(contours[o]))
			if pointInPolygon(c[0], contours[o]) && a < bestArea {
				best, bestArea = o, a
			}
		}
		if best >= 0 {
			holes[best] = append(holes[best], c)
		}
	}
	out := make([][]vec.Vec2, 0, len(outers))
	for _, o := range outers {
		out = append(out, bridgeHoles(contours[o], holes[o]))
	}
	return out
}

func bridgeHoles(outer []vec.Vec2, holes [][]vec.Vec2) []vec.Vec2 {
	outer = append([]vec.Vec2(nil), outer...)
	if SignedArea(outer) < 0 {
		reverse(outer)
	}
	maxX := func(h []vec.Vec2) int {
		k := 0
		for i, p := range h {
			if p.X > h[k].X {
				k = i
			}
		}
		return k
	}
	sort.Slice(holes, func(i, j int) bool {
		return holes[i][maxX(holes[i])].X > holes[j][maxX(holes[j])].X
	})
	for _, h := range holes {
		h = append([]vec.Vec2(nil), h...)
		if SignedArea(h) > 0 {
			reverse(h)
		}
		hi := maxX(h)
		hp := h[hi]
		edge, best := -1, math.Inf(1)
		var bp vec.Vec2
		for j := range outer {
			a, b := outer[j], outer[(j+1)%len(outer)]
			if (a.Y > hp.Y) == (b.Y > hp.Y) {
				continue
			}
			x := a.X + (hp.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
			if x >= hp.X && x-hp.X < best {
				best, edge = x-hp.X, j
				bp = vec.Vec2{X: x, Y: hp.Y}
			}
		}
		if edge < 0 {
			continue
		}
		merged := make([]vec.Vec2, 0, len(outer)+len(h)+3)
		merged = append(merged, outer[:edge+1]...)
		merged = append(merged, bp)
		for k := 0; k <= len(h); k++ {
			merged = append(merged, h[(hi+k)%len(h)])
		}
		merged = append(merged, bp)
		merged = append(merged, outer[edge+1:]...)
		outer = merged
	}
	return outer
}

func pointInPolygon(p vec.Vec2, poly []vec.Vec2) bool {
	in := false
	for i := range poly {
		a, b := poly[i], poly[(i+1)%len(poly)]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := a.X + (p.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
			if p.X < x {
				in = !in
			}
		}
	}
	return in
}

func reverse(pts []vec.Vec2) {
	for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
		pts[i], pts[j] = pts[j], pts[i]
	}
}
