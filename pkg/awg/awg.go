// Package awg draws arrayed waveguide gratings: free propagation regions
// laid out on a Rowland circle and the array of waveguides between them.
package awg

import (
	"fmt"
	"math"

	"seehuhn.de/go/geom/vec"

	"github.com/unolab/unolayout/pkg/errors"
	"github.com/unolab/unolayout/pkg/layout"
	"github.com/unolab/unolayout/pkg/pdk"
)

// RowlandFSPParams configures [RowlandFSP].
type RowlandFSPParams struct {
	// RA is the radius of the array-side arc; the io-side arc has RA/2.
	RA float64 `json:"r_a"`
	// YSpan is the height of the slab. It cannot exceed RA.
	YSpan float64 `json:"y_span"`
	NIO   int     `json:"n_io"`
	DIO   float64 `json:"d_io"`
	// NArray waveguides are spaced DArray apart along the array arc.
	NArray int     `json:"n_array"`
	DArray float64 `json:"d_array"`
	// NCurve is the number of samples per arc.
	NCurve int `json:"n_curve"`
	// PortsInsideArc moves the ports into the slab so that waveguides
	// attached to them overlap it.
	PortsInsideArc float64              `json:"ports_inside_arc"`
	Width          float64              `json:"width,omitempty"`
	XS             *layout.CrossSection `json:"-"`
}

// DefaultRowlandFSPParams returns a 1×9 slab of radius 50 µm.
func DefaultRowlandFSPParams() RowlandFSPParams {
	return RowlandFSPParams{
		RA:             50,
		YSpan:          25,
		NIO:            1,
		DIO:            2,
		NArray:         9,
		DArray:         2,
		NCurve:         64,
		PortsInsideArc: 0.05,
	}
}

// RowlandFSP returns a free propagation region bounded by two arcs: the io
// arc of radius RA/2 centered at (RA/2, 0) on the west and the array arc of
// radius RA centered at the origin on the east. Both arcs span YSpan.
//
// Input ports i0.. sit on the io arc at angles 2·DIO/RA·(k − (NIO−1)/2)
// about its center and face west; array ports o0.. sit on the array arc at
// angles DArray/RA·(k − (NArray−1)/2) and face radially outward.
func RowlandFSP(cfg *pdk.Config, p RowlandFSPParams) (*layout.Component, error) {
	const kind = "rowland_fsp"
	switch {
	case !(p.RA > 0):
		return nil, errors.Parameter(kind, "r_a", "must be positive, got %g", p.RA)
	case !(p.YSpan > 0):
		return nil, errors.Parameter(kind, "y_span", "must be positive, got %g", p.YSpan)
	case p.NIO < 1, p.NArray < 1:
		return nil, errors.Parameter(kind, "n_io/n_array", "must be at least 1, got %d/%d", p.NIO, p.NArray)
	case p.NCurve < 2:
		return nil, errors.Parameter(kind, "n_curve", "must be at least 2, got %d", p.NCurve)
	case p.PortsInsideArc < 0 || p.PortsInsideArc >= p.RA/2:
		return nil, errors.Parameter(kind, "ports_inside_arc", "must be in [0, r_a/2), got %g", p.PortsInsideArc)
	}
	if p.YSpan > p.RA {
		cfg.Log().Warn("rowland y_span exceeds r_a, clamping", "y_span", p.YSpan, "r_a", p.RA)
		p.YSpan = p.RA
	}
	xs := cfg.XS(p.XS, p.Width)
	ra := p.RA

	io := func(a, off float64) vec.Vec2 {
		return vec.Vec2{X: ra/2 - (ra/2+off)*math.Cos(a), Y: (ra/2 + off) * math.Sin(a)}
	}
	array := func(a, off float64) vec.Vec2 {
		return vec.Vec2{X: (ra + off) * math.Cos(a), Y: (ra + off) * math.Sin(a)}
	}

	n := p.NCurve
	pts := make([]vec.Vec2, 0, 2*n)
	inSpan := math.Asin(p.YSpan / ra)
	for i := 0; i < n; i++ {
		pts = append(pts, io(inSpan-2*inSpan*float64(i)/float64(n-1), 0))
	}
	outSpan := math.Asin(p.YSpan / 2 / ra)
	for i := 0; i < n; i++ {
		pts = append(pts, array(-outSpan+2*outSpan*float64(i)/float64(n-1), 0))
	}

	c := layout.New(layout.CellName(kind, p, xs))
	c.AddPolygon(xs.Layer(), pts...)
	port := func(name string, at vec.Vec2, orient float64) {
		c.AddPort(layout.Port{
			Name:        name,
			Center:      at,
			Orientation: layout.NormalizeAngle(orient),
			Width:       xs.Width(),
			Layer:       xs.Layer(),
			Type:        layout.Optical,
		})
	}
	for k := 0; k < p.NIO; k++ {
		a := 2 * p.DIO / ra * (float64(k) - float64(p.NIO-1)/2)
		port(fmt.Sprintf("i%d", k), io(a, -p.PortsInsideArc), 180-a*180/math.Pi)
	}
	for k := 0; k < p.NArray; k++ {
		a := p.DArray / ra * (float64(k) - float64(p.NArray-1)/2)
		if math.Abs(a) > outSpan {
			cfg.Log().Warn("array port outside the slab", "port", k, "angle", a*180/math.Pi)
		}
		port(fmt.Sprintf("o%d", k), array(a, -p.PortsInsideArc), a*180/math.Pi)
	}
	return c, nil
}

// BendParams configures [Bend].
type BendParams struct {
	// D is the distance between the two ports to join.
	D float64 `json:"d"`
	// Phi is the angle in degrees between the start heading and the
	// line to the end port.
	Phi float64 `json:"phi"`
	// Length is the required waveguide length.
	Length float64              `json:"length"`
	Width  float64              `json:"width,omitempty"`
	XS     *layout.CrossSection `json:"-"`
}

// Bend returns an array waveguide of exactly Length made of a straight, a
// circular arc turning right by 2·Phi and a second straight of the same
// length. The ends are D apart along a line Phi to the right of the start
// heading. The straight length s and bend radius R follow from
//
//	s = ½(φ·D/sin φ − L) / (φ/tan φ − 1)
//	R = (D − 2s·cos φ) / (2 sin φ)
//
// A negative s means Length is too short to cover D and is reported as
// infeasible. A radius below the cross-section's minimum is only logged.
func Bend(cfg *pdk.Config, p BendParams) (*layout.Component, error) {
	return newBend(cfg, p.D, p.Phi, p.Length, cfg.XS(p.XS, p.Width), -1)
}

func newBend(cfg *pdk.Config, d, phiDeg, length float64, xs layout.CrossSection, arm int) (*layout.Component, error) {
	if !(d > 0) {
		return nil, errors.Parameter("awg_bend", "d", "must be positive, got %g", d)
	}
	if !(phiDeg > 0 && phiDeg < 180) {
		return nil, errors.Parameter("awg_bend", "phi", "must be in (0, 180), got %g", phiDeg)
	}
	phi := phiDeg * math.Pi / 180
	s := 0.5 * (phi*d/math.Sin(phi) - length) / (phi/math.Tan(phi) - 1)
	if s < 0 {
		return nil, errors.Infeasible("awg arm %d: length %g is too short to span %g µm (straight length %g)", arm, length, d, s)
	}
	r := (d - 2*s*math.Cos(phi)) / (2 * math.Sin(phi))
	if !(r > 0) {
		return nil, errors.Infeasible("awg arm %d: length %g needs a bend radius of %g", arm, length, r)
	}
	if r < xs.Radius {
		cfg.Log().Warn("awg bend radius below minimum", "arm", arm, "radius", r, "min", xs.Radius)
	}

	path := layout.Concat(layout.Straight(s), layout.Arc(r, -2*phiDeg), layout.Straight(s))
	c := layout.Extrude(path, xs)
	c.Name = layout.CellName("awg_bend", d, phiDeg, length, xs)
	c.SetInfo("length", 2*s+2*phi*r)
	c.SetInfo("radius", r)
	return c, nil
}

// Params configures [AWG].
type Params struct {
	NI int `json:"n_i"`
	NA int `json:"n_a"`
	NO int `json:"n_o"`
	// DeltaL is the length increment between adjacent arms.
	DeltaL float64 `json:"delta_l"`
	// FSPSpacing separates the two slabs vertically; FSPAngle tilts them,
	// negative values turning them to face each other.
	FSPSpacing  float64 `json:"fsp_spacing"`
	FSPAngle    float64 `json:"fsp_angle"`
	StartLength float64 `json:"start_length"`
	// FSP holds the slab parameters shared by both regions. Its NIO and
	// NArray are replaced by NI/NO and NA.
	FSP   RowlandFSPParams     `json:"fsp"`
	Width float64              `json:"width,omitempty"`
	XS    *layout.CrossSection `json:"-"`
}

// DefaultParams returns a 1×8 AWG with eight arms.
func DefaultParams() Params {
	return Params{
		NI:          1,
		NA:          8,
		NO:          8,
		DeltaL:      10,
		FSPSpacing:  100,
		FSPAngle:    -10,
		StartLength: 200,
		FSP:         DefaultRowlandFSPParams(),
	}
}

// AWG returns an arrayed waveguide grating. The input slab is rotated by
// FSPAngle; the output slab is its mirror image FSPSpacing below. Arm k
// has length StartLength + k·DeltaL and runs from array port o<k> of the
// input slab back to the same port of the output slab. The AWG inputs are
// i0.. and its outputs o0...
func AWG(cfg *pdk.Config, p Params) (*layout.Component, error) {
	const kind = "awg"
	if p.NI < 1 || p.NA < 1 || p.NO < 1 {
		return nil, errors.Parameter(kind, "n_i/n_a/n_o", "must be at least 1, got %d/%d/%d", p.NI, p.NA, p.NO)
	}
	if p.DeltaL < 0 {
		return nil, errors.Parameter(kind, "delta_l", "must not be negative, got %g", p.DeltaL)
	}
	xs := cfg.XS(p.XS, p.Width)
	fp := p.FSP
	fp.XS = &xs
	fp.NIO, fp.NArray = p.NI, p.NA
	in, err := RowlandFSP(cfg, fp)
	if err != nil {
		return nil, err
	}
	fp.NIO = p.NO
	out, err := RowlandFSP(cfg, fp)
	if err != nil {
		return nil, err
	}

	c := layout.New(layout.CellName(kind, p, xs))
	f1 := c.Add(in).Rotate(p.FSPAngle)
	f2 := c.Add(out).Rotate(p.FSPAngle).MirrorY(0).MoveY(-p.FSPSpacing)

	for k := 0; k < p.NA; k++ {
		name := fmt.Sprintf("o%d", k)
		p1, p2 := f1.Port(name), f2.Port(name)
		chord := p2.Center.Sub(p1.Center)
		phi := layout.NormalizeAngle(p1.Orientation - math.Atan2(chord.Y, chord.X)*180/math.Pi)
		arm, err := newBend(cfg, chord.Length(), phi, p.StartLength+float64(k)*p.DeltaL, xs, k)
		if err != nil {
			return nil, err
		}
		c.Add(arm).Connect(xs.PortNames[0], p1)
	}

	for k := 0; k < p.NI; k++ {
		c.AddPort(f1.Port(fmt.Sprintf("i%d", k)))
	}
	for k := 0; k < p.NO; k++ {
		c.AddPort(f2.Port(fmt.Sprintf("i%d", k)).Renamed(fmt.Sprintf("o%d", k)))
	}
	c.SetInfo("delta_length", p.DeltaL)
	return c, nil
}
