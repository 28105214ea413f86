// Package fixture wraps devices under test with edge couplers and routing
// so they can be measured on a cleaved chip.
//
// [Generic2Port] and [Generic3Port] place a device, add an edge coupler
// pair or triple and route every coupler to a mapped device port. The
// resulting cells carry a random suffix so repeated fixtures of the same
// device stay distinct structures.
package fixture

import (
	"fmt"

	"seehuhn.de/go/geom/vec"

	"github.com/unolab/unolayout/pkg/errors"
	"github.com/unolab/unolayout/pkg/layout"
	"github.com/unolab/unolayout/pkg/pdk"
	"github.com/unolab/unolayout/pkg/primitives"
	"github.com/unolab/unolayout/pkg/wg"
)

// NaiveMultiportRoute routes each (r1 port, r2 port) pair of mapping with
// an independent single route. Crossings are not checked.
func NaiveMultiportRoute(c *layout.Component, r1, r2 *layout.Reference, mapping [][2]string, xs layout.CrossSection, opts ...layout.RouteOption) ([]*layout.Route, error) {
	routes := make([]*layout.Route, 0, len(mapping))
	for _, m := range mapping {
		p1, err := r1.LookupPort(m[0])
		if err != nil {
			return nil, err
		}
		p2, err := r2.LookupPort(m[1])
		if err != nil {
			return nil, err
		}
		r, err := layout.RouteSingle(c, p1, p2, xs, opts...)
		if err != nil {
			return nil, fmt.Errorf("route %s→%s: %w", m[0], m[1], err)
		}
		routes = append(routes, r)
	}
	return routes, nil
}

// CountOpticalPorts returns the number of optical ports of c.
func CountOpticalPorts(c *layout.Component) int {
	return len(layout.PortsByType(c.Ports(), layout.Optical))
}

// OffsetWaveguide returns a flat copy of c with the waveguide layer grown
// by d in total width, d/2 on each side. Negative d shrinks it.
func OffsetWaveguide(cfg *pdk.Config, c *layout.Component, d float64) *layout.Component {
	return layout.Offset(c, cfg.Layers.WG, d/2)
}

// Placement orients the device before it is positioned.
type Placement struct {
	// Rotation is applied after the optional flip.
	Rotation float64 `json:"rotation,omitempty"`
	// Flip mirrors the device across the y axis.
	Flip bool `json:"flip,omitempty"`
}

func (pl Placement) apply(r *layout.Reference) {
	if pl.Flip {
		r.MirrorX(0)
	}
	if pl.Rotation != 0 {
		r.Rotate(pl.Rotation)
	}
}

func lookup(kind string, r *layout.Reference, names ...string) ([]layout.Port, error) {
	out := make([]layout.Port, len(names))
	for i, n := range names {
		p, err := r.LookupPort(n)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidParameter, err, "%s: port mapping", kind)
		}
		out[i] = p
	}
	return out, nil
}

// Generic2PortParams configures [Generic2Port].
type Generic2PortParams struct {
	// StraightLength is the x position of the device input.
	StraightLength float64    `json:"straight_length"`
	DXDY           [2]float64 `json:"dxdy,omitempty"`
	Width          float64    `json:"width,omitempty"`
	LabelIn        string     `json:"label_in,omitempty"`
	LabelOut       string     `json:"label_out,omitempty"`
	TipWidth       float64    `json:"tip_width,omitempty"`
	// Annotate names the cell after the total optical length and writes
	// width and length next to the device.
	Annotate bool `json:"annotate"`
	Placement
	// PortMapping names the device ports routed to the input and output
	// couplers.
	PortMapping [2]string `json:"port_mapping,omitempty"`
}

// DefaultGeneric2PortParams returns an annotated fixture with the device
// input 500 µm from the west edge.
func DefaultGeneric2PortParams() Generic2PortParams {
	return Generic2PortParams{StraightLength: 500, Annotate: true, PortMapping: [2]string{"o1", "o2"}}
}

// Generic2Port places dut with its input port at (StraightLength, dy) and
// routes an edge coupler pair to it. With Annotate set, Info["length"] is
// the device length plus both routes.
func Generic2Port(cfg *pdk.Config, dut *layout.Component, p Generic2PortParams) (*layout.Component, error) {
	const kind = "generic_2port"
	if dut == nil {
		return nil, errors.Parameter(kind, "dut", "is required")
	}
	if p.PortMapping == [2]string{} {
		p.PortMapping = [2]string{"o1", "o2"}
	}
	pair := wg.EdgeCouplerPairParams{DXDY: p.DXDY, Width: p.Width, LabelIn: p.LabelIn, LabelOut: p.LabelOut, TipWidth: p.TipWidth}
	ec, err := wg.EdgeCouplerPair(cfg, pair)
	if err != nil {
		return nil, err
	}
	c := layout.New(layout.CellName(kind, dut.Name, p))
	d := c.Add(dut)
	p.Placement.apply(d)
	ports, err := lookup(kind, d, p.PortMapping[:]...)
	if err != nil {
		return nil, err
	}
	d.MoveTo(ports[0].Center, vec.Vec2{X: p.StraightLength, Y: ec.Port("o1").Y()})
	ports, _ = lookup(kind, d, p.PortMapping[:]...)

	ed := c.Add(ec)
	xs := cfg.Waveguide(p.Width)
	in, err := layout.RouteSingle(c, ed.Port("o1"), ports[0], xs, layout.WithRadius(cfg.Radius))
	if err != nil {
		return nil, fmt.Errorf("%s: input: %w", kind, err)
	}
	out, err := layout.RouteSingle(c, ed.Port("o2"), ports[1], xs, layout.WithRadius(cfg.Radius))
	if err != nil {
		return nil, fmt.Errorf("%s: output: %w", kind, err)
	}

	if p.Annotate {
		total := dut.Length() + in.Length + out.Length
		c.SetInfo("length", total)
		c.Name = fmt.Sprintf("%.0fumDelay", total)
		label := fmt.Sprintf("%.0fnm/%.2fcm", xs.Width()*1e3, total*1e-4)
		txt, err := primitives.NewText(label, 25, cfg.Layers.Annotation, layout.JustifyCenter, d.Center())
		if err != nil {
			return nil, err
		}
		c.Add(txt)
	}
	return layout.WithUUID(c), nil
}

// Generic3PortParams configures [Generic3Port].
type Generic3PortParams struct {
	StraightLength float64    `json:"straight_length"`
	DXDY           [2]float64 `json:"dxdy,omitempty"`
	Width          float64    `json:"width,omitempty"`
	EdgeSep        float64    `json:"edge_sep,omitempty"`
	LabelIn        string     `json:"label_in,omitempty"`
	LabelOut       [2]string  `json:"label_out,omitempty"`
	TipWidth       float64    `json:"tip_width,omitempty"`
	TextPosition   [2]float64 `json:"text_position,omitempty"`
	Placement
	// PortMapping names the device input and the two outputs routed to
	// the south couplers, west first.
	PortMapping [3]string `json:"port_mapping,omitempty"`
	// AfterBend turns the device south and centers its outputs above the
	// output couplers at y = StraightLength.
	AfterBend bool `json:"after_bend,omitempty"`
	// Bundle routes the outputs as a bundle sorted by position.
	Bundle bool `json:"bundle,omitempty"`
}

// DefaultGeneric3PortParams returns a fixture with the device input
// 500 µm from the west edge.
func DefaultGeneric3PortParams() Generic3PortParams {
	return Generic3PortParams{StraightLength: 500, PortMapping: [3]string{"o1", "o2", "o3"}}
}

// Generic3Port routes one input and two output edge couplers to dut.
func Generic3Port(cfg *pdk.Config, dut *layout.Component, p Generic3PortParams) (*layout.Component, error) {
	const kind = "generic_3port"
	if dut == nil {
		return nil, errors.Parameter(kind, "dut", "is required")
	}
	if p.PortMapping == [3]string{} {
		p.PortMapping = [3]string{"o1", "o2", "o3"}
	}
	ec, err := wg.EdgeCouplerTri(cfg, wg.EdgeCouplerTriParams{
		DXDY: p.DXDY, Width: p.Width, EdgeSep: p.EdgeSep, LabelIn: p.LabelIn, LabelOut: p.LabelOut,
		TipWidth: p.TipWidth, TextPosition: p.TextPosition,
	})
	if err != nil {
		return nil, err
	}
	c := layout.New(layout.CellName(kind, dut.Name, p))
	d := c.Add(dut)
	p.Placement.apply(d)
	if p.AfterBend {
		d.Rotate(-90)
	}
	ports, err := lookup(kind, d, p.PortMapping[:]...)
	if err != nil {
		return nil, err
	}
	if p.AfterBend {
		mid := ports[1].Center.Add(ports[2].Center).Mul(0.5)
		outs := ec.Port("o2").Center.Add(ec.Port("o3").Center).Mul(0.5)
		d.MoveTo(mid, vec.Vec2{X: outs.X, Y: p.StraightLength})
	} else {
		d.MoveTo(ports[0].Center, vec.Vec2{X: p.StraightLength, Y: ec.Port("o1").Y()})
	}
	ports, _ = lookup(kind, d, p.PortMapping[:]...)

	ed := c.Add(ec)
	xs := cfg.Waveguide(p.Width)
	r := layout.WithRadius(cfg.Radius)
	if _, err := layout.RouteSingle(c, ed.Port("o1"), ports[0], xs, r); err != nil {
		return nil, fmt.Errorf("%s: input: %w", kind, err)
	}
	if p.Bundle {
		if _, err := layout.RouteBundle(c, ports[1:], []layout.Port{ed.Port("o2"), ed.Port("o3")}, xs, r); err != nil {
			return nil, fmt.Errorf("%s: outputs: %w", kind, err)
		}
		return layout.WithUUID(c), nil
	}
	for i, name := range []string{"o2", "o3"} {
		if _, err := layout.RouteSingle(c, ed.Port(name), ports[i+1], xs, r); err != nil {
			return nil, fmt.Errorf("%s: output %s: %w", kind, name, err)
		}
	}
	return layout.WithUUID(c), nil
}
