// Package layout is the small mask-layout engine the component generators
// draw into.
//
// A [Component] is a GDS cell: polygons on [Layer]s, [Reference]s to other
// components, named [Port]s and text [Label]s. References carry a
// [Transform] in the GDS SREF model (x-reflection, then rotation, then
// translation), so ports and polygons of a placed cell are always derived
// from the same affine map and can never drift apart.
//
// # Building geometry
//
// Most cells are built from a [Path] (a polyline with start and end
// headings) extruded along a [CrossSection]:
//
//	p := layout.Euler(25, 90, 0.5)
//	bend := layout.Extrude(p, xs)
//
// # Connecting
//
// References are placed by moving their ports onto other ports:
//
//	ref := top.Add(bend)
//	ref.Connect("o1", straight.Port("o2"))
//
// # Routing
//
// [RouteSingle], [RouteFromSteps], [RouteBundle], [RouteSBend] and
// [RouteElectrical] draw waveguides or traces between two ports using
// manhattan waypoints with filleted corners. They return the routed length
// and fail with INFEASIBLE_GEOMETRY when a segment is too short for its
// bends.
//
// All coordinates are in microns.
package layout
