// Package pkg provides the core libraries for unolayout photonic mask layout.
//
// # Overview
//
// unolayout builds photonic integrated circuit masks from parametric
// components. Every generator is a geometric construction: place a shape,
// connect port A to port B, repeat. The result is a cell hierarchy written
// as a GDSII stream.
//
// # Architecture
//
// The typical data flow:
//
//	chip recipe (TOML/YAML)
//	         ↓
//	    [recipe] package (parse, validate, place registry components)
//	         ↓
//	    [registry] package (component name + JSON params → generator)
//	         ↓
//	    generators ([primitives], [wg], [heater], [devices], [awg], ...)
//	         ↓
//	    [layout] package (cells, references, ports, paths, routes)
//	         ↓
//	    [gds] package (GDSII stream) / JSON summary
//
// # Quick Start
//
//	import (
//	    "os"
//
//	    "github.com/unolab/unolayout/pkg/devices"
//	    "github.com/unolab/unolayout/pkg/gds"
//	    "github.com/unolab/unolayout/pkg/pdk"
//	)
//
//	cfg := pdk.Default()
//	ring, err := devices.Racetrack(cfg, devices.DefaultRacetrackParams())
//	if err != nil {
//	    return err
//	}
//	f, _ := os.Create("ring.gds")
//	defer f.Close()
//	_, err = gds.Write(f, ring, gds.Options{LibName: "ring"})
//
// # Main Packages
//
// ## Engine
//
// [pdk] - Process settings: layer map, waveguide width, bend radius and chip
// pitch. Replaces global state; every generator takes a *pdk.Config.
//
// [layout] - Components, references and ports with affine transforms, path
// construction (straight, arc, Euler), extrusion along cross-sections,
// manhattan routing and polygon text.
//
// [gds] - GDSII stream writer and reader.
//
// [poisson] - Bridson Poisson-disc sampling for random fill.
//
// ## Components
//
//   - [primitives]: stock cells (straights, bends, tapers, couplers, MMIs, gratings)
//   - [wg]: edge couplers, apodized gratings, dicing and alignment marks
//   - [heater]: heaters and bond pads
//   - [devices]: racetrack resonators, polarization splitters, unbalanced MZIs
//   - [awg]: Rowland-circle arrayed waveguide gratings
//   - [teststruct]: fabrication test structures
//   - [fixture]: edge-coupled test fixtures around a device under test
//   - [chips]: example chips assembled from the above
//
// ## Orchestration
//
// [registry] - Name-to-generator table used by recipes and the CLI.
//
// [recipe] - Chip descriptions as placed registry components.
//
// [pipeline] - Load → build → export, with an artifact cache. Used by the
// CLI so every entry point behaves the same.
//
// [cache] - File, Redis and null artifact caches and their key scheme.
//
// [observability] - Hooks for pipeline and cache events.
//
// [errors] - Structured errors with machine-readable codes.
//
// [buildinfo] - Version information set at link time.
package pkg
