// Package gds reads and writes GDSII stream files.
//
// [Write] emits one structure per distinct cell of a [layout.Component]
// hierarchy, children before parents, with BOUNDARY elements for polygons,
// SREF elements for references and TEXT elements for labels. Coordinates
// are stored on a 1 nm database grid with a 1 µm user unit.
//
// [Read] parses a stream back into structures: BOUNDARY, SREF (with
// STRANS, MAG and ANGLE) and TEXT elements are kept, PATH and AREF
// elements are skipped.
package gds
