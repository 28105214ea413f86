package layout

import (
	"seehuhn.de/go/geom/vec"
)

// Port is a named attachment point. Orientation is the outward heading in
// degrees, normalized to [0, 360).
type Port struct {
	Name        string
	Center      vec.Vec2
	Orientation float64
	Width       float64
	Layer       Layer
	Type        PortType
}

// Direction returns the outward unit vector of the port.
func (p Port) Direction() vec.Vec2 {
	return Dir(p.Orientation)
}

// Transformed returns the port as seen through t.
func (p Port) Transformed(t Transform) Port {
	p.Center = t.Apply(p.Center)
	p.Orientation = t.ApplyAngle(p.Orientation)
	return p
}

// Moved returns the port translated by d.
func (p Port) Moved(d vec.Vec2) Port {
	p.Center = p.Center.Add(d)
	return p
}

// Renamed returns a copy of the port with a new name.
func (p Port) Renamed(name string) Port {
	p.Name = name
	return p
}

// Reversed returns the port facing the opposite way.
func (p Port) Reversed() Port {
	p.Orientation = NormalizeAngle(p.Orientation + 180)
	return p
}

// IsManhattan reports whether the port faces along an axis.
func (p Port) IsManhattan() bool {
	a := NormalizeAngle(p.Orientation)
	return nearly(a, 0) || nearly(a, 90) || nearly(a, 180) || nearly(a, 270)
}

// X and Y return the port center coordinates.
func (p Port) X() float64 { return p.Center.X }
func (p Port) Y() float64 { return p.Center.Y }

// PortsByType returns the ports of the given type in order.
func PortsByType(ports []Port, typ PortType) []Port {
	var out []Port
	for _, p := range ports {
		if p.Type == typ {
			out = append(out, p)
		}
	}
	return out
}
