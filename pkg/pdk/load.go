package pdk

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
	"seehuhn.de/go/geom/vec"

	"github.com/unolab/unolayout/pkg/errors"
	"github.com/unolab/unolayout/pkg/layout"
)

// Overrides is the on-disk form of a partial Config. Unset fields keep
// their current value.
type Overrides struct {
	Layers     map[string][]int `toml:"layers" yaml:"layers" json:"layers,omitempty"`
	WGWidth    *float64         `toml:"wg_width" yaml:"wg_width" json:"wg_width,omitempty"`
	Radius     *float64         `toml:"radius" yaml:"radius" json:"radius,omitempty"`
	EdgeSep    *float64         `toml:"edge_sep" yaml:"edge_sep" json:"edge_sep,omitempty"`
	TextSize   *float64         `toml:"text_size" yaml:"text_size" json:"text_size,omitempty"`
	DXDY       []float64        `toml:"dxdy" yaml:"dxdy" json:"dxdy,omitempty"`
	RouteWidth *float64         `toml:"route_width" yaml:"route_width" json:"route_width,omitempty"`
	BoschWidth *float64         `toml:"bosch_width" yaml:"bosch_width" json:"bosch_width,omitempty"`
	DesWidth   *float64         `toml:"des_width" yaml:"des_width" json:"des_width,omitempty"`
	DiceWidth  *float64         `toml:"dice_width" yaml:"dice_width" json:"dice_width,omitempty"`
	TipWidth   *float64         `toml:"tip_width" yaml:"tip_width" json:"tip_width,omitempty"`
	DBUnit     *float64         `toml:"db_unit" yaml:"db_unit" json:"db_unit,omitempty"`
}

// Format is a config/recipe serialization.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatFor picks the serialization from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "cannot tell format of %s (want .toml, .yaml or .yml)", path)
}

// Decode unmarshals TOML or YAML data into v. Unknown keys are rejected
// in both formats, except below the dotted table paths in open, which
// name free-form maps such as "place.params". Array-of-tables indices
// do not appear in these paths.
func Decode(data []byte, format Format, v any, open ...string) error {
	switch format {
	case FormatTOML:
		md, err := toml.Decode(string(data), v)
		if err != nil {
			return err
		}
		var keys []string
		for _, k := range md.Undecoded() {
			if !underAny(k, open) {
				keys = append(keys, k.String())
			}
		}
		if len(keys) > 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
		}
		return nil
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(v); err != nil && err != io.EOF {
			return err
		}
		return nil
	}
	return errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", format)
}

// underAny reports whether key lies strictly below one of the dotted paths.
func underAny(key toml.Key, paths []string) bool {
	for _, p := range paths {
		prefix := strings.Split(p, ".")
		if len(key) <= len(prefix) {
			continue
		}
		match := true
		for i, part := range prefix {
			if key[i] != part {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// Load reads overrides from a TOML or YAML file on top of Default.
func Load(path string) (*Config, error) {
	if err := errors.ValidateRecipeFilename(path); err != nil {
		return nil, err
	}
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read config")
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config")
	}
	var o Overrides
	if err := Decode(data, format, &o); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode %s", path)
	}
	cfg := Default()
	if err := cfg.Apply(o); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Apply merges o into c and validates the result.
func (c *Config) Apply(o Overrides) error {
	for name, pair := range o.Layers {
		if len(pair) != 2 {
			return errors.New(errors.ErrCodeInvalidConfig, "layer %s: want [layer, datatype], got %v", name, pair)
		}
		if err := errors.ValidateLayer(pair[0], pair[1]); err != nil {
			return err
		}
		if err := c.Layers.Set(name, layout.L(int16(pair[0]), int16(pair[1]))); err != nil {
			return err
		}
	}
	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	set(&c.WGWidth, o.WGWidth)
	set(&c.Radius, o.Radius)
	set(&c.EdgeSep, o.EdgeSep)
	set(&c.TextSize, o.TextSize)
	set(&c.RouteWidth, o.RouteWidth)
	set(&c.BoschWidth, o.BoschWidth)
	set(&c.DesWidth, o.DesWidth)
	set(&c.DiceWidth, o.DiceWidth)
	set(&c.TipWidth, o.TipWidth)
	set(&c.DBUnit, o.DBUnit)
	if len(o.DXDY) > 0 {
		if len(o.DXDY) != 2 {
			return errors.New(errors.ErrCodeInvalidConfig, "dxdy: want [dx, dy], got %v", o.DXDY)
		}
		c.DXDY = vec.Vec2{X: o.DXDY[0], Y: o.DXDY[1]}
	}
	return c.Validate()
}
