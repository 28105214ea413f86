package layout

import "fmt"

// Layer identifies a fabrication mask layer as a GDS (layer, datatype) pair.
type Layer struct {
	Layer    int16
	Datatype int16
}

// L is shorthand for Layer{layer, datatype}.
func L(layer, datatype int16) Layer {
	return Layer{Layer: layer, Datatype: datatype}
}

func (l Layer) String() string {
	return fmt.Sprintf("%d/%d", l.Layer, l.Datatype)
}

// PortType distinguishes optical from electrical ports.
type PortType string

const (
	Optical    PortType = "optical"
	Electrical PortType = "electrical"
)
