// Package pdk holds the process settings every component generator reads:
// the layer map, default waveguide and trace widths, bend radius and the
// chip-level dimensions.
//
// A [Config] is passed explicitly to generators. [Default] returns the
// standard process; [Load] and [Config.Apply] layer TOML or YAML overrides
// on top of it.
package pdk

import (
	"io"

	"github.com/charmbracelet/log"
	"seehuhn.de/go/geom/vec"

	"github.com/unolab/unolayout/pkg/errors"
	"github.com/unolab/unolayout/pkg/layout"
)

// Config is the process configuration. All lengths are in microns.
type Config struct {
	Layers LayerMap

	WGWidth    float64  // default single-mode waveguide width
	Radius     float64  // default bend radius
	EdgeSep    float64  // spacing between edge couplers
	TextSize   float64  // default label height
	DXDY       vec.Vec2 // default chip pitch
	RouteWidth float64  // default metal routing width
	BoschWidth float64  // deep-etch (Bosch) lane width
	DesWidth   float64  // usable design area width
	DiceWidth  float64  // dicing lane width
	TipWidth   float64  // edge-coupler tip width
	// DBUnit is the database grid in microns.
	DBUnit float64

	// Logger receives generator warnings. Nil discards them.
	Logger *log.Logger
}

// Default returns the standard process settings.
func Default() *Config {
	return &Config{
		Layers:     DefaultLayers(),
		WGWidth:    0.5,
		Radius:     25,
		EdgeSep:    100,
		TextSize:   25,
		DXDY:       vec.Vec2{X: 1000, Y: 1000},
		RouteWidth: 25,
		BoschWidth: 300,
		DesWidth:   8000,
		DiceWidth:  93,
		TipWidth:   0.11,
		DBUnit:     0.001,
	}
}

var discard = log.New(io.Discard)

// Log returns the configured logger or a discarding one.
func (c *Config) Log() *log.Logger {
	if c.Logger == nil {
		return discard
	}
	return c.Logger
}

// Clone returns a copy of c that can be modified independently.
func (c *Config) Clone() *Config {
	out := *c
	return &out
}

// Validate rejects settings no generator can work with.
func (c *Config) Validate() error {
	checks := []struct {
		name string
		v    float64
	}{
		{"wg_width", c.WGWidth},
		{"radius", c.Radius},
		{"edge_sep", c.EdgeSep},
		{"text_size", c.TextSize},
		{"route_width", c.RouteWidth},
		{"bosch_width", c.BoschWidth},
		{"des_width", c.DesWidth},
		{"dice_width", c.DiceWidth},
		{"tip_width", c.TipWidth},
		{"db_unit", c.DBUnit},
	}
	for _, ch := range checks {
		if !(ch.v > 0) {
			return errors.New(errors.ErrCodeInvalidConfig, "%s must be positive, got %g", ch.name, ch.v)
		}
	}
	if c.DXDY.X <= 0 || c.DXDY.Y <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "dxdy must be positive, got (%g, %g)", c.DXDY.X, c.DXDY.Y)
	}
	return c.Layers.validate()
}

// Waveguide returns the strip waveguide cross-section on the WG layer
// with ports o1/o2. A zero width selects the default.
func (c *Config) Waveguide(width float64) layout.CrossSection {
	if width == 0 {
		width = c.WGWidth
	}
	return layout.Strip(width, c.Layers.WG, c.Radius, [2]string{"o1", "o2"}, layout.Optical)
}

// Routing returns the metal routing cross-section with ports e0/e1. A
// zero width selects the default.
func (c *Config) Routing(width float64) layout.CrossSection {
	if width == 0 {
		width = c.RouteWidth
	}
	return layout.Strip(width, c.Layers.Routing, 0, [2]string{"e0", "e1"}, layout.Electrical)
}

// Heater returns the heater-metal cross-section with ports e0/e1.
func (c *Config) Heater(width float64) layout.CrossSection {
	return layout.Strip(width, c.Layers.Heater, 0, [2]string{"e0", "e1"}, layout.Electrical)
}

// Or returns v when it is non-zero and def otherwise. Generators use it to
// resolve parameters that default to a process setting.
func Or(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

// Layer resolves a layer parameter given by process name. An empty name
// selects def.
func (c *Config) Layer(name string, def layout.Layer) (layout.Layer, error) {
	if name == "" {
		return def, nil
	}
	l, err := c.Layers.ByName(name)
	if err != nil {
		return layout.Layer{}, errors.Wrap(errors.ErrCodeInvalidParameter, err, "layer parameter")
	}
	return l, nil
}

// XS returns *xs when it is set and the default waveguide of the given
// width otherwise. Generators take an optional cross-section pointer for
// Go callers and a plain width for recipes.
func (c *Config) XS(xs *layout.CrossSection, width float64) layout.CrossSection {
	if xs != nil {
		return *xs
	}
	return c.Waveguide(width)
}
