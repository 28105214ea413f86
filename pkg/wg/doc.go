// Package wg provides the waveguide components and chip furniture of the
// UNO process: asymmetric and full ring couplers, apodized grating
// couplers, edge couplers and their arrays, splitters, scattering fills,
// and the die, dicing and alignment marks placed around a design.
//
// Generators follow the conventions of package primitives: they take a
// [pdk.Config] and a parameter struct, Default*Params returns the
// defaults, and zero widths fall back to the process settings.
package wg
