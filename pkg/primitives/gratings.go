package primitives

import (
	"fmt"
	"math"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"github.com/unolab/unolayout/pkg/errors"
	"github.com/unolab/unolayout/pkg/layout"
	"github.com/unolab/unolayout/pkg/pdk"
)

// GratingRectangularParams configures [GratingCouplerRectangularArbitrary].
type GratingRectangularParams struct {
	// Gaps and Widths list the etched gap and the tooth width of every
	// period, from the taper outward.
	Gaps         []float64             `json:"gaps"`
	Widths       []float64             `json:"widths"`
	WidthGrating float64               `json:"width_grating"`
	LengthTaper  float64               `json:"length_taper"`
	Width        float64               `json:"width,omitempty"`
	XS           *layout.CrossSection `json:"-"`
}

// DefaultGratingRectangularParams returns an 11 µm wide grating behind a
// 150 µm taper with 20 uniform periods.
func DefaultGratingRectangularParams() GratingRectangularParams {
	p := GratingRectangularParams{WidthGrating: 11, LengthTaper: 150}
	for i := 0; i < 20; i++ {
		p.Gaps = append(p.Gaps, 0.2)
		p.Widths = append(p.Widths, 0.5)
	}
	return p
}

func checkTeeth(kind string, gaps, widths []float64) error {
	if len(gaps) == 0 || len(gaps) != len(widths) {
		return errors.Parameter(kind, "gaps/widths", "need the same non-zero number of entries, got %d and %d", len(gaps), len(widths))
	}
	for i := range gaps {
		if gaps[i] < 0 || !(widths[i] > 0) {
			return errors.Parameter(kind, "gaps/widths", "period %d has gap %g and width %g", i, gaps[i], widths[i])
		}
	}
	return nil
}

// GratingCouplerRectangularArbitrary returns a straight grating coupler
// with arbitrary per-period gaps and tooth widths. A linear taper widens
// the waveguide from port o1 at the origin to WidthGrating over
// LengthTaper; the teeth follow along +x.
func GratingCouplerRectangularArbitrary(cfg *pdk.Config, p GratingRectangularParams) (*layout.Component, error) {
	const kind = "grating_coupler_rectangular_arbitrary"
	if err := checkTeeth(kind, p.Gaps, p.Widths); err != nil {
		return nil, err
	}
	if !(p.WidthGrating > 0) || !(p.LengthTaper > 0) {
		return nil, errors.Parameter(kind, "width_grating/length_taper", "must be positive, got %g/%g", p.WidthGrating, p.LengthTaper)
	}
	xs := cfg.XS(p.XS, p.Width)
	w, l := xs.Width(), xs.Layer()
	hw := p.WidthGrating / 2

	c := layout.New(layout.CellName("grating_rect", p.Gaps, p.Widths, p.WidthGrating, p.LengthTaper, xs))
	c.AddPolygon(l,
		vec.Vec2{X: 0, Y: w / 2},
		vec.Vec2{X: 0, Y: -w / 2},
		vec.Vec2{X: p.LengthTaper, Y: -hw},
		vec.Vec2{X: p.LengthTaper, Y: hw},
	)
	x := p.LengthTaper
	for i := range p.Gaps {
		x += p.Gaps[i]
		c.AddRect(l, rect.Rect{LLx: x, LLy: -hw, URx: x + p.Widths[i], URy: hw})
		x += p.Widths[i]
	}
	c.AddPort(layout.Port{Name: "o1", Orientation: 180, Width: w, Layer: l, Type: layout.Optical})
	c.SetInfo("length", x)
	c.SetInfo("periods", float64(len(p.Gaps)))
	return c, nil
}

// GratingEllipticalParams configures [GratingCouplerEllipticalArbitrary].
type GratingEllipticalParams struct {
	Gaps   []float64 `json:"gaps"`
	Widths []float64 `json:"widths"`
	// TaperLength is the on-axis distance from the port to the first
	// tooth; TaperAngle the full opening angle in degrees.
	TaperLength float64 `json:"taper_length"`
	TaperAngle  float64 `json:"taper_angle"`
	// FiberAngle is the fiber tilt from vertical in degrees; NEff and
	// NClad the effective index of the grating and the cladding index.
	FiberAngle float64               `json:"fiber_angle"`
	NEff       float64               `json:"neff"`
	NClad      float64               `json:"nclad"`
	Width      float64               `json:"width,omitempty"`
	XS         *layout.CrossSection `json:"-"`
}

// DefaultGratingEllipticalParams returns a 40° focusing grating for a
// fiber tilted 15°.
func DefaultGratingEllipticalParams() GratingEllipticalParams {
	p := GratingEllipticalParams{TaperLength: 16.6, TaperAngle: 40, FiberAngle: 15, NEff: 2.638, NClad: 1.443}
	for i := 0; i < 20; i++ {
		p.Gaps = append(p.Gaps, 0.1)
		p.Widths = append(p.Widths, 0.5)
	}
	return p
}

// GratingCouplerEllipticalArbitrary returns a focusing grating coupler.
// Every tooth edge is an ellipse with one focus on port o1 at the origin,
// r(θ) = x·(nₑ − n꜀·sin φ)/(nₑ − n꜀·sin φ·cos θ), so light leaving the
// port at any angle within the taper meets each tooth in phase.
func GratingCouplerEllipticalArbitrary(cfg *pdk.Config, p GratingEllipticalParams) (*layout.Component, error) {
	const kind = "grating_coupler_elliptical_arbitrary"
	if err := checkTeeth(kind, p.Gaps, p.Widths); err != nil {
		return nil, err
	}
	if err := errors.ValidatePositive(kind, "taper_length", p.TaperLength); err != nil {
		return nil, err
	}
	if !(p.TaperAngle > 0) || p.TaperAngle >= 180 {
		return nil, errors.Parameter(kind, "taper_angle", "must be in (0, 180), got %g", p.TaperAngle)
	}
	s := p.NClad * math.Sin(p.FiberAngle*math.Pi/180)
	if !(p.NEff > s) {
		return nil, errors.Parameter(kind, "neff", "%g must exceed nclad·sin(fiber_angle) = %g", p.NEff, s)
	}
	xs := cfg.XS(p.XS, p.Width)
	w, l := xs.Width(), xs.Layer()

	n := int(math.Ceil(p.TaperAngle)) + 1
	thetas := make([]float64, n)
	scale := make([]float64, n)
	for i := range thetas {
		th := (-p.TaperAngle/2 + p.TaperAngle*float64(i)/float64(n-1)) * math.Pi / 180
		thetas[i] = th
		scale[i] = (p.NEff - s) / (p.NEff - s*math.Cos(th))
	}
	arc := func(x float64) []vec.Vec2 {
		pts := make([]vec.Vec2, n)
		for i, th := range thetas {
			r := x * scale[i]
			pts[i] = vec.Vec2{X: r * math.Cos(th), Y: r * math.Sin(th)}
		}
		return pts
	}

	c := layout.New(layout.CellName("grating_elliptical", p, xs))
	taper := []vec.Vec2{{X: 0, Y: -w / 2}}
	taper = append(taper, arc(p.TaperLength)...)
	taper = append(taper, vec.Vec2{X: 0, Y: w / 2})
	c.AddPolygon(l, taper...)

	x := p.TaperLength
	for i := range p.Gaps {
		x += p.Gaps[i]
		inner := arc(x)
		outer := arc(x + p.Widths[i])
		tooth := make([]vec.Vec2, 0, 2*n)
		tooth = append(tooth, inner...)
		for k := n - 1; k >= 0; k-- {
			tooth = append(tooth, outer[k])
		}
		c.AddPolygon(l, tooth...)
		x += p.Widths[i]
	}
	c.AddPort(layout.Port{Name: "o1", Orientation: 180, Width: w, Layer: l, Type: layout.Optical})
	c.SetInfo("length", x)
	c.SetInfo("periods", float64(len(p.Gaps)))
	return c, nil
}

// GratingArrayParams configures [GratingCouplerArray].
type GratingArrayParams struct {
	N     int     `json:"n"`
	Pitch float64 `json:"pitch"`
	// Rotation is applied to every grating before placement.
	Rotation float64 `json:"rotation"`
	// PortName is the grating port exposed by the array.
	PortName string `json:"port_name,omitempty"`
	// WithLoopback adds one grating at each end of the row, joined by a
	// U-shaped waveguide LoopbackOffset beyond the ports.
	WithLoopback   bool                  `json:"with_loopback,omitempty"`
	LoopbackOffset float64               `json:"loopback_offset,omitempty"`
	Width          float64               `json:"width,omitempty"`
	XS             *layout.CrossSection `json:"-"`
}

// DefaultGratingArrayParams returns six gratings on a 127 µm fiber-array
// pitch.
func DefaultGratingArrayParams() GratingArrayParams {
	return GratingArrayParams{N: 6, Pitch: 127, PortName: "o1", LoopbackOffset: 50}
}

// GratingCouplerArray places N copies of grating in a row along +x so
// that their ports sit at (i·Pitch, 0). Ports are renamed o0..o{N-1}
// from left to right.
func GratingCouplerArray(cfg *pdk.Config, grating *layout.Component, p GratingArrayParams) (*layout.Component, error) {
	const kind = "grating_coupler_array"
	if grating == nil {
		return nil, errors.Parameter(kind, "grating", "is required")
	}
	if p.N < 1 {
		return nil, errors.Parameter(kind, "n", "must be at least 1, got %d", p.N)
	}
	if err := errors.ValidatePositive(kind, "pitch", p.Pitch); err != nil {
		return nil, err
	}
	name := p.PortName
	if name == "" {
		name = "o1"
	}
	if _, err := grating.LookupPort(name); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidParameter, err, "%s: port_name", kind)
	}

	c := layout.New(layout.CellName(kind, grating.Name, p))
	place := func(i int) layout.Port {
		ref := c.Add(grating).Rotate(p.Rotation)
		ref.MoveTo(ref.Port(name).Center, vec.Vec2{X: float64(i) * p.Pitch})
		return ref.Port(name)
	}
	for i := 0; i < p.N; i++ {
		c.AddPort(place(i).Renamed(fmt.Sprintf("o%d", i)))
	}
	if p.WithLoopback {
		xs := cfg.XS(p.XS, p.Width)
		off := pdk.Or(p.LoopbackOffset, 2*xs.Radius)
		p1 := place(-1)
		p2 := place(p.N)
		a := p1.Center.Add(p1.Direction().Mul(off))
		b := p2.Center.Add(p2.Direction().Mul(off))
		steps := []layout.Step{{X: &a.X, Y: &a.Y}, {X: &b.X, Y: &b.Y}}
		r, err := layout.RouteFromSteps(c, p1, p2, xs, steps)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInfeasibleGeometry, err, "%s: loopback", kind)
		}
		c.SetInfo("loopback_length", r.Length)
	}
	return c, nil
}
