package layout

// Section is one strip of a cross-section.
type Section struct {
	Name   string
	Width  float64
	Offset float64
	Layer  Layer
}

// CrossSection describes what is extruded along a path. The first section
// is the main one: it defines the port width and layer.
type CrossSection struct {
	Sections  []Section
	Radius    float64
	PortNames [2]string
	PortType  PortType
}

// Width returns the width of the main section.
func (xs CrossSection) Width() float64 {
	if len(xs.Sections) == 0 {
		return 0
	}
	return xs.Sections[0].Width
}

// Layer returns the layer of the main section.
func (xs CrossSection) Layer() Layer {
	if len(xs.Sections) == 0 {
		return Layer{}
	}
	return xs.Sections[0].Layer
}

// WithWidth returns a copy with the main section resized.
func (xs CrossSection) WithWidth(w float64) CrossSection {
	out := xs
	out.Sections = append([]Section(nil), xs.Sections...)
	if len(out.Sections) > 0 {
		out.Sections[0].Width = w
	}
	return out
}

// WithLayer returns a copy with the main section moved to layer.
func (xs CrossSection) WithLayer(l Layer) CrossSection {
	out := xs
	out.Sections = append([]Section(nil), xs.Sections...)
	if len(out.Sections) > 0 {
		out.Sections[0].Layer = l
	}
	return out
}

// WithRadius returns a copy with a different default bend radius.
func (xs CrossSection) WithRadius(r float64) CrossSection {
	xs.Sections = append([]Section(nil), xs.Sections...)
	xs.Radius = r
	return xs
}

// Strip returns a single-section cross-section.
func Strip(width float64, layer Layer, radius float64, ports [2]string, typ PortType) CrossSection {
	return CrossSection{
		Sections:  []Section{{Name: "core", Width: width, Layer: layer}},
		Radius:    radius,
		PortNames: ports,
		PortType:  typ,
	}
}
