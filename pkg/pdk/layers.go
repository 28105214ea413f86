package pdk

import (
	"sort"
	"strings"

	"github.com/unolab/unolayout/pkg/errors"
	"github.com/unolab/unolayout/pkg/layout"
)

// LayerMap names the mask layers of the process.
type LayerMap struct {
	WG               layout.Layer
	Label            layout.Layer
	Bosch            layout.Layer
	Heater           layout.Layer
	Routing          layout.Layer
	Pad              layout.Layer
	Floorplan        layout.Layer
	Die              layout.Layer
	SEM              layout.Layer
	AntEdgeTrench    layout.Layer
	AntHandling      layout.Layer
	AntThermalTrench layout.Layer
	Annotation       layout.Layer
}

// DefaultLayers returns the standard layer assignment.
func DefaultLayers() LayerMap {
	return LayerMap{
		WG:               layout.L(1, 0),
		Label:            layout.L(2, 0),
		Bosch:            layout.L(7, 0),
		Heater:           layout.L(11, 0),
		Routing:          layout.L(12, 0),
		Pad:              layout.L(13, 0),
		Floorplan:        layout.L(100, 0),
		Die:              layout.L(101, 0),
		SEM:              layout.L(200, 0),
		AntEdgeTrench:    layout.L(201, 0),
		AntHandling:      layout.L(202, 0),
		AntThermalTrench: layout.L(203, 0),
		Annotation:       layout.L(210, 0),
	}
}

func (m *LayerMap) fields() map[string]*layout.Layer {
	return map[string]*layout.Layer{
		"WG":                 &m.WG,
		"LABEL":              &m.Label,
		"BOSCH":              &m.Bosch,
		"HEATER":             &m.Heater,
		"ROUTING":            &m.Routing,
		"PAD":                &m.Pad,
		"FLOORPLAN":          &m.Floorplan,
		"DIE":                &m.Die,
		"SEM":                &m.SEM,
		"ANT_EDGE_TRENCH":    &m.AntEdgeTrench,
		"ANT_HANDLING":       &m.AntHandling,
		"ANT_THERMAL_TRENCH": &m.AntThermalTrench,
		"ANNOTATION":         &m.Annotation,
	}
}

// ByName looks a layer up by its process name (for example "WG" or
// "ANT_EDGE_TRENCH"), case-insensitively.
func (m LayerMap) ByName(name string) (layout.Layer, error) {
	if l, ok := m.fields()[strings.ToUpper(name)]; ok {
		return *l, nil
	}
	return layout.Layer{}, errors.New(errors.ErrCodeInvalidConfig, "unknown layer %q (have %s)", name, strings.Join(m.Names(), ", "))
}

// Set assigns a layer by process name.
func (m *LayerMap) Set(name string, l layout.Layer) error {
	p, ok := m.fields()[strings.ToUpper(name)]
	if !ok {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown layer %q", name)
	}
	*p = l
	return nil
}

// Names returns the process layer names in sorted order.
func (m LayerMap) Names() []string {
	f := m.fields()
	names := make([]string, 0, len(f))
	for n := range f {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (m LayerMap) validate() error {
	for name, l := range m.fields() {
		if err := errors.ValidateLayer(int(l.Layer), int(l.Datatype)); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "layer %s", name)
		}
	}
	return nil
}
