// Package devices assembles complete optical devices from the waveguide
// components: polarization splitters, racetrack resonators with optional
// heaters, and unbalanced Mach-Zehnder interferometers wired to edge
// couplers.
package devices
