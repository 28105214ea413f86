package devices

import (
	"fmt"

	"seehuhn.de/go/geom/vec"

	"github.com/unolab/unolayout/pkg/errors"
	"github.com/unolab/unolayout/pkg/layout"
	"github.com/unolab/unolayout/pkg/pdk"
	"github.com/unolab/unolayout/pkg/wg"
)

// ringEulerP is the clothoid fraction of the racetrack bends.
const ringEulerP = 0.5

// RacetrackParams configures [Racetrack].
type RacetrackParams struct {
	// NumCouplers is 1 for an all-pass ring and 2 for an add-drop ring.
	NumCouplers    int     `json:"num_couplers"`
	Width          float64 `json:"width,omitempty"`
	RingLength     float64 `json:"ring_length"`
	CouplingLength float64 `json:"coupling_length"`
	CouplerDX      float64 `json:"coupler_dx"`
	CouplerDY      float64 `json:"coupler_dy"`
	Gap            float64 `json:"gap"`
	EulerRadius    float64 `json:"euler_radius"`

	Heater      bool    `json:"heater"`
	HeaterWidth float64 `json:"heater_width"`
	// LeadDXDY is the size of the L-shaped heater leads.
	LeadDXDY [2]float64 `json:"lead_dxdy"`
	// LeadSep is the gap in a full-ring heater where the leads attach.
	LeadSep float64 `json:"lead_sep"`
	// HalfRingHeater heats only the east half of the ring.
	HalfRingHeater bool `json:"half_ring_heater,omitempty"`
}

// DefaultRacetrackParams returns a 500 µm all-pass ring with a full-ring
// heater.
func DefaultRacetrackParams() RacetrackParams {
	return RacetrackParams{
		NumCouplers:    1,
		RingLength:     500,
		CouplingLength: 10,
		CouplerDX:      30,
		CouplerDY:      10,
		Gap:            0.5,
		EulerRadius:    35,
		Heater:         true,
		HeaterWidth:    5,
		LeadDXDY:       [2]float64{20, 7.5},
		LeadSep:        5,
	}
}

// Racetrack returns a racetrack resonator of RingLength. The bottom
// coupler's bus ends are o1 (east) and o2 (west); an add-drop ring adds a
// rotated coupler on top with o3 (east) and o4 (west). The straights in
// the Euler arms are sized so the closed ring has exactly RingLength.
//
// With Heater set, a heater wire follows the ring. A full-ring heater is
// opened at the west apex and fed by two leads there; a half-ring heater
// covers the east arm and is fed at both its ends. The lead ports are e1
// and e2.
func Racetrack(cfg *pdk.Config, p RacetrackParams) (*layout.Component, error) {
	const kind = "racetrack"
	if p.NumCouplers != 1 && p.NumCouplers != 2 {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "numCouplers must be 1 or 2, got %d", p.NumCouplers)
	}
	if err := errors.ValidatePositive(kind, "euler_radius", p.EulerRadius); err != nil {
		return nil, err
	}
	xs := cfg.Waveguide(p.Width)
	coupler, err := wg.CouplerAsymmetricFull(cfg, wg.CouplerAsymmetricParams{
		Gap: p.Gap, DY: p.CouplerDY, DX: p.CouplerDX, CouplingLength: p.CouplingLength, XS: &xs,
	})
	if err != nil {
		return nil, err
	}

	// Ring ends of the bottom coupler bus.
	pE := coupler.Port("o1").Center
	pW := coupler.Port("o3").Center
	busLen := pE.X - pW.X

	bend := layout.Euler(p.EulerRadius, 180, ringEulerP)
	straight := (p.RingLength - 2*busLen - 2*bend.Length()) / 4
	if straight < 0 {
		return nil, errors.Infeasible("racetrack: ring length %g is shorter than its couplers and bends (%g)", p.RingLength, 2*busLen+2*bend.Length())
	}
	arm := layout.Concat(layout.Straight(straight), bend, layout.Straight(straight))
	armCell := layout.Extrude(arm, xs)
	armCell.Name = layout.CellName("racetrack_arm", straight, p.EulerRadius, xs)
	height := arm.End().Y

	c := layout.New(layout.CellName(kind, p))
	bottom := c.Add(coupler)
	out := xs.PortNames[1]
	east := c.Add(armCell).Move(pE)
	west := c.Add(armCell).MirrorX(0).Move(pW)
	c.AddPort(bottom.Port("o0").Renamed("o1"))
	c.AddPort(bottom.Port("o2").Renamed("o2"))
	if p.NumCouplers == 1 {
		if _, err := layout.RouteSingle(c, east.Port(out), west.Port(out), xs); err != nil {
			return nil, fmt.Errorf("racetrack: close ring: %w", err)
		}
	} else {
		top := c.Add(coupler).Connect("o3", east.Port(out))
		c.AddPort(top.Port("o2").Renamed("o3"))
		c.AddPort(top.Port("o0").Renamed("o4"))
	}

	if p.Heater {
		eastPath := arm.Move(pE)
		westPath := arm.MirrorX().Move(pW)
		if err := addRingHeater(cfg, c, p, eastPath, westPath); err != nil {
			return nil, err
		}
	}

	length := 2*busLen + 2*arm.Length()
	label, err := layout.Text(fmt.Sprintf("%.1fum", length), cfg.TextSize, cfg.Layers.Annotation, layout.JustifyCenter)
	if err != nil {
		return nil, err
	}
	c.Add(label).Move(vec.Vec2{X: (pE.X + pW.X) / 2, Y: pE.Y + height + 30})
	c.SetInfo("length", length)
	c.SetInfo("height", height)
	return c, nil
}

// addRingHeater draws the heater wire and its leads over the ring arms
// given in c's frame.
func addRingHeater(cfg *pdk.Config, c *layout.Component, p RacetrackParams, eastPath, westPath layout.Path) error {
	const kind = "racetrack"
	hw := p.HeaterWidth
	if !(hw > 0) {
		return errors.Parameter(kind, "heater_width", "must be positive, got %g", hw)
	}
	if !(p.LeadDXDY[0] > 0) || !(p.LeadDXDY[1] > 0) {
		return errors.Parameter(kind, "lead_dxdy", "must be positive, got %v", p.LeadDXDY)
	}
	hxs := cfg.Heater(hw)
	lead := layout.Extrude(layout.PathFromPoints([]vec.Vec2{{}, {X: p.LeadDXDY[0]}, {X: p.LeadDXDY[0], Y: p.LeadDXDY[1]}}), hxs)
	lead.Name = layout.CellName("heater_lead", p.LeadDXDY, hxs)
	start, end := hxs.PortNames[0], hxs.PortNames[1]

	var upper, lower *layout.Reference
	if p.HalfRingHeater {
		h := c.Add(layout.Extrude(eastPath, hxs))
		lower = c.Add(lead).Connect(start, h.Port(start))
		upper = c.Add(lead).MirrorY(0).Connect(start, h.Port(end))
	} else {
		y0 := eastPath.Start().Y
		yc := y0 + (eastPath.End().Y-y0)/2
		if !(p.LeadSep > 0) || p.LeadSep >= eastPath.End().Y-y0-2*hw {
			return errors.Parameter(kind, "lead_sep", "%g does not fit the ring", p.LeadSep)
		}
		// Walk the west arm from top to bottom so the opening splits it
		// into the end and the start of the heater.
		rev := make([]vec.Vec2, len(westPath.Points))
		for i, pt := range westPath.Points {
			rev[len(rev)-1-i] = pt
		}
		pieces := layout.PathFromPoints(rev).CutBand(yc, p.LeadSep)
		if len(pieces) != 2 {
			return errors.Infeasible("racetrack: heater opening of %g µm does not split the west arm", p.LeadSep)
		}
		pts := append([]vec.Vec2(nil), pieces[1].Points...)
		pts = append(pts, eastPath.Points...)
		pts = append(pts, pieces[0].Points...)
		c.Add(layout.Extrude(layout.PathFromPoints(pts), hxs))

		u, l := pieces[0].End(), pieces[1].Start()
		upper = c.Add(lead).MirrorY(0).Connect(start, layout.Port{Center: u.Add(vec.Vec2{X: hw / 2, Y: hw / 2}), Orientation: 180})
		lower = c.Add(lead).Connect(start, layout.Port{Center: l.Add(vec.Vec2{X: hw / 2, Y: -hw / 2}), Orientation: 180})
	}
	c.AddPort(lower.Port(end).Renamed("e1"))
	c.AddPort(upper.Port(end).Renamed("e2"))
	return nil
}

// RoutedRacetrackParams configures [RoutedRacetrack].
type RoutedRacetrackParams struct {
	Width float64 `json:"width,omitempty"`
	// OffsetX places the ring's west bus port.
	OffsetX  float64    `json:"offset_x"`
	DXDY     [2]float64 `json:"dxdy,omitempty"`
	InLabel  string     `json:"in_label"`
	OutLabel string     `json:"out_label"`
	Radius   float64    `json:"radius,omitempty"`
	// InputSep and OutputSep offset the second coupler pair of an
	// add-drop ring.
	InputSep  float64 `json:"input_sep"`
	OutputSep float64 `json:"output_sep"`
	TipWidth  float64 `json:"tip_width,omitempty"`
}

// DefaultRoutedRacetrackParams returns the standard ring placement.
func DefaultRoutedRacetrackParams() RoutedRacetrackParams {
	return RoutedRacetrackParams{OffsetX: 500, InLabel: "Ri", OutLabel: "Ro", InputSep: 200, OutputSep: 200}
}

// RoutedRacetrack wires a ring from [Racetrack] to edge-coupler pairs: the
// bus o2/o1 go to the first pair; an add-drop ring also routes o4/o3 to a
// second pair offset by (OutputSep, InputSep). A nil ring selects the
// default racetrack.
func RoutedRacetrack(cfg *pdk.Config, ring *layout.Component, p RoutedRacetrackParams) (*layout.Component, error) {
	if ring == nil {
		var err error
		if ring, err = Racetrack(cfg, DefaultRacetrackParams()); err != nil {
			return nil, err
		}
	}
	optical := layout.PortsByType(ring.Ports(), layout.Optical)
	if len(optical) != 2 && len(optical) != 4 {
		return nil, errors.Parameter("routed_racetrack", "ring", "has %d optical ports, want 2 or 4", len(optical))
	}
	for _, name := range []string{"o1", "o2"} {
		if _, err := ring.LookupPort(name); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidParameter, err, "routed_racetrack: ring")
		}
	}
	dx, dy := cfg.DXDY.X, cfg.DXDY.Y
	if p.DXDY != [2]float64{} {
		dx, dy = p.DXDY[0], p.DXDY[1]
	}
	xs := cfg.Waveguide(p.Width)
	opts := []layout.RouteOption{layout.WithRadius(pdk.Or(p.Radius, cfg.Radius))}

	c := layout.New(layout.CellName("routed_racetrack", ring.Name, p))
	r := c.Add(ring)
	r.MoveTo(r.Port("o2").Center, vec.Vec2{X: p.OffsetX, Y: dy})

	type link struct{ from, to string }
	connect := func(suffix string, shift vec.Vec2, links [2]link) error {
		ec, err := wg.EdgeCouplerPair(cfg, wg.EdgeCouplerPairParams{
			DXDY:     [2]float64{dx + shift.X, dy + shift.Y},
			Width:    p.Width,
			LabelIn:  p.InLabel + suffix,
			LabelOut: p.OutLabel + suffix,
			TipWidth: p.TipWidth,
		})
		if err != nil {
			return err
		}
		e := c.Add(ec)
		for _, l := range links {
			if _, err := layout.RouteSingle(c, e.Port(l.from), r.Port(l.to), xs, opts...); err != nil {
				return fmt.Errorf("routed_racetrack: %s → ring %s: %w", l.from, l.to, err)
			}
		}
		return nil
	}
	if err := connect("-0", vec.Vec2{}, [2]link{{"o1", "o2"}, {"o2", "o1"}}); err != nil {
		return nil, err
	}
	if len(optical) == 4 {
		if err := connect("-1", vec.Vec2{X: p.OutputSep, Y: p.InputSep}, [2]link{{"o1", "o4"}, {"o2", "o3"}}); err != nil {
			return nil, err
		}
	}
	c.AddPorts(layout.PortsByType(r.Ports(), layout.Electrical), "")
	return c, nil
}
