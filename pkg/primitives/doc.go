// Package primitives provides the stock cells every device is assembled
// from: rectangles and marks, straight and bent waveguides, tapers,
// directional couplers, MMIs, Mach-Zehnder interferometers, grating
// couplers, text and version stamps.
//
// # Parameters
//
// Each generator takes the process [pdk.Config] and a parameter struct.
// Default*Params returns the documented defaults; zero-valued widths and
// radii fall back to process settings, so a recipe only has to name what
// it changes:
//
//	p := primitives.DefaultCouplerParams()
//	p.Gap = 0.3
//	c, err := primitives.Coupler(cfg, p)
//
// Waveguide generators accept an optional XS pointer that overrides the
// default strip cross-section. It is not serialized; recipes set Width.
//
// # Port conventions
//
// Optical ports are named o1, o2, ... and electrical ports e1, e2, ...
// Four-port couplers number their ports counter-clockwise from the
// bottom-left: o1 west-bottom, o2 west-top, o3 east-top, o4 east-bottom.
package primitives
