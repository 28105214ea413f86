// Package recipe describes a chip as a list of registry components placed
// in one top cell, plus optional process overrides and waveguide routes
// between the placed components.
//
// Recipes are TOML or YAML files:
//
//	name = "ring_chip"
//
//	[settings]
//	wg_width = 0.45
//
//	[[place]]
//	component = "racetrack"
//	name = "ring"
//	at = [1000, 2000]
//	rotate = 90
//	[place.params]
//	ring_length = 800
//
//	[[route]]
//	from = "ring.o1"
//	to = "gc.o1"
//
// Placement order is mirror (across the y axis), rotate, then move to at.
// A placement with connect instead snaps one of its ports onto a port of
// an earlier placement.
package recipe

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
	"seehuhn.de/go/geom/vec"

	"github.com/unolab/unolayout/pkg/errors"
	"github.com/unolab/unolayout/pkg/layout"
	"github.com/unolab/unolayout/pkg/pdk"
	"github.com/unolab/unolayout/pkg/registry"
)

// Recipe is a parsed chip description.
type Recipe struct {
	Name     string        `toml:"name" yaml:"name" json:"name"`
	Settings pdk.Overrides `toml:"settings,omitempty" yaml:"settings,omitempty" json:"settings"`
	Place    []Placement   `toml:"place" yaml:"place" json:"place"`
	Routes   []Route       `toml:"route,omitempty" yaml:"route,omitempty" json:"route,omitempty"`
}

// Placement is one component instance in the top cell.
type Placement struct {
	Component string         `toml:"component" yaml:"component" json:"component"`
	Name      string         `toml:"name,omitempty" yaml:"name,omitempty" json:"name,omitempty"`
	Params    map[string]any `toml:"params,omitempty" yaml:"params,omitempty" json:"params,omitempty"`
	At        []float64      `toml:"at,omitempty" yaml:"at,omitempty" json:"at,omitempty"`
	Rotate    float64        `toml:"rotate,omitempty" yaml:"rotate,omitempty" json:"rotate,omitempty"`
	Mirror    bool           `toml:"mirror,omitempty" yaml:"mirror,omitempty" json:"mirror,omitempty"`
	Connect   *Connect       `toml:"connect,omitempty" yaml:"connect,omitempty" json:"connect,omitempty"`
}

// Connect snaps Port of the placement onto To, given as "instance.port".
type Connect struct {
	Port string `toml:"port" yaml:"port" json:"port"`
	To   string `toml:"to" yaml:"to" json:"to"`
}

// Route joins two placed ports, each given as "instance.port". Optical
// routes use the process bend radius; electrical routes have sharp
// corners on the routing metal.
type Route struct {
	From       string  `toml:"from" yaml:"from" json:"from"`
	To         string  `toml:"to" yaml:"to" json:"to"`
	Width      float64 `toml:"width,omitempty" yaml:"width,omitempty" json:"width,omitempty"`
	Electrical bool    `toml:"electrical,omitempty" yaml:"electrical,omitempty" json:"electrical,omitempty"`
}

// Parse decodes a recipe and validates it.
func Parse(data []byte, format pdk.Format) (*Recipe, error) {
	var r Recipe
	if err := pdk.Decode(data, format, &r, "place.params"); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRecipe, err, "decode recipe")
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Load reads and parses a recipe file. The format follows the extension.
func Load(path string) (*Recipe, error) {
	if err := errors.ValidateRecipeFilename(path); err != nil {
		return nil, err
	}
	format, err := pdk.FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read recipe")
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidRecipe, err, "read recipe")
	}
	r, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// Encode writes r in the given format.
func Encode(w io.Writer, r *Recipe, format pdk.Format) error {
	switch format {
	case pdk.FormatTOML:
		return toml.NewEncoder(w).Encode(r)
	case pdk.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	}
	return errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", format)
}

// Canonical returns a stable JSON encoding of r used for cache keys. Map
// keys are sorted, so two files that differ only in layout or key order
// encode the same.
func (r *Recipe) Canonical() ([]byte, error) {
	return json.Marshal(r)
}

// instanceName returns the placement's name or a positional default.
func (r *Recipe) instanceName(i int) string {
	if n := r.Place[i].Name; n != "" {
		return n
	}
	return fmt.Sprintf("%s_%d", r.Place[i].Component, i)
}

// Validate checks structure and names without building anything.
func (r *Recipe) Validate() error {
	if err := errors.ValidateCellName(r.Name); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidRecipe, err, "recipe name")
	}
	if len(r.Place) == 0 {
		return errors.New(errors.ErrCodeInvalidRecipe, "recipe %s places no components", r.Name)
	}
	seen := map[string]bool{}
	for i, p := range r.Place {
		name := r.instanceName(i)
		if seen[name] {
			return errors.New(errors.ErrCodeInvalidRecipe, "place[%d]: duplicate instance name %q", i, name)
		}
		if _, err := registry.Lookup(p.Component); err != nil {
			return fmt.Errorf("place[%d]: %w", i, err)
		}
		if p.At != nil && len(p.At) != 2 {
			return errors.New(errors.ErrCodeInvalidRecipe, "place[%d]: at must be [x, y], got %v", i, p.At)
		}
		if p.Connect != nil {
			if p.At != nil || p.Rotate != 0 {
				return errors.New(errors.ErrCodeInvalidRecipe, "place[%d]: connect excludes at and rotate", i)
			}
			inst, _, err := splitPortRef(p.Connect.To)
			if err != nil {
				return fmt.Errorf("place[%d]: %w", i, err)
			}
			if !seen[inst] {
				return errors.New(errors.ErrCodeInvalidRecipe, "place[%d]: connect target %q is not placed before it", i, inst)
			}
		}
		seen[name] = true
	}
	for i, rt := range r.Routes {
		for _, ref := range []string{rt.From, rt.To} {
			inst, _, err := splitPortRef(ref)
			if err != nil {
				return fmt.Errorf("route[%d]: %w", i, err)
			}
			if !seen[inst] {
				return errors.New(errors.ErrCodeInvalidRecipe, "route[%d]: unknown instance %q", i, inst)
			}
		}
	}
	return nil
}

// Config returns base with the recipe's settings applied. base is not
// modified.
func (r *Recipe) Config(base *pdk.Config) (*pdk.Config, error) {
	cfg := base.Clone()
	if err := cfg.Apply(r.Settings); err != nil {
		return nil, fmt.Errorf("recipe %s settings: %w", r.Name, err)
	}
	return cfg, nil
}

// Build creates the top cell. Components are built through the registry
// with cfg, which should already carry the recipe's settings.
func (r *Recipe) Build(cfg *pdk.Config) (*layout.Component, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	top := layout.New(r.Name)
	refs := map[string]*layout.Reference{}
	for i, p := range r.Place {
		name := r.instanceName(i)
		raw, err := json.Marshal(p.Params)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRecipe, err, "place[%d] params", i)
		}
		c, err := registry.Build(cfg, p.Component, raw)
		if err != nil {
			return nil, fmt.Errorf("place %s: %w", name, err)
		}
		ref := top.Add(c)
		if p.Mirror {
			ref.MirrorX(0)
		}
		if p.Connect != nil {
			dest, err := portOf(refs, p.Connect.To)
			if err != nil {
				return nil, fmt.Errorf("place %s: %w", name, err)
			}
			if _, err := c.LookupPort(p.Connect.Port); err != nil {
				return nil, fmt.Errorf("place %s: %w", name, err)
			}
			ref.Connect(p.Connect.Port, dest)
		} else {
			ref.Rotate(p.Rotate)
			if p.At != nil {
				ref.Move(vec.Vec2{X: p.At[0], Y: p.At[1]})
			}
		}
		refs[name] = ref
		cfg.Log().Debug("placed component", "instance", name, "component", p.Component, "cell", c.Name)
	}
	for i, rt := range r.Routes {
		if err := addRoute(cfg, top, refs, rt); err != nil {
			return nil, fmt.Errorf("route[%d] %s -> %s: %w", i, rt.From, rt.To, err)
		}
	}
	return top, nil
}

func addRoute(cfg *pdk.Config, top *layout.Component, refs map[string]*layout.Reference, rt Route) error {
	p1, err := portOf(refs, rt.From)
	if err != nil {
		return err
	}
	p2, err := portOf(refs, rt.To)
	if err != nil {
		return err
	}
	if rt.Electrical {
		_, err = layout.RouteElectrical(top, p1, p2, cfg.Routing(rt.Width))
		return err
	}
	_, err = layout.RouteSingle(top, p1, p2, cfg.Waveguide(rt.Width), layout.WithRadius(cfg.Radius))
	return err
}

func portOf(refs map[string]*layout.Reference, ref string) (layout.Port, error) {
	inst, port, err := splitPortRef(ref)
	if err != nil {
		return layout.Port{}, err
	}
	r, ok := refs[inst]
	if !ok {
		return layout.Port{}, errors.New(errors.ErrCodeInvalidRecipe, "unknown instance %q", inst)
	}
	return r.LookupPort(port)
}

// splitPortRef splits "instance.port" at the last dot so instance names
// may contain dots.
func splitPortRef(ref string) (inst, port string, err error) {
	i := strings.LastIndexByte(ref, '.')
	if i <= 0 || i == len(ref)-1 {
		return "", "", errors.New(errors.ErrCodeInvalidRecipe, "port reference %q is not instance.port", ref)
	}
	return ref[:i], ref[i+1:], nil
}

// Scaffold returns a recipe placing each named component once with its
// default parameters, stacked DXDY apart along y.
func Scaffold(name string, components []string, cfg *pdk.Config) (*Recipe, error) {
	r := &Recipe{Name: name}
	for i, comp := range components {
		s, err := registry.Lookup(comp)
		if err != nil {
			return nil, err
		}
		params, err := s.DefaultParams()
		if err != nil {
			return nil, err
		}
		dropNulls(params)
		r.Place = append(r.Place, Placement{
			Component: comp,
			Name:      fmt.Sprintf("%s_%d", comp, i),
			Params:    params,
			At:        []float64{0, float64(i) * cfg.DXDY.Y},
		})
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// dropNulls removes null values, which TOML cannot represent.
func dropNulls(m map[string]any) {
	for k, v := range m {
		switch v := v.(type) {
		case nil:
			delete(m, k)
		case map[string]any:
			dropNulls(v)
		}
	}
}

// Equal reports whether two recipes have the same canonical encoding.
func Equal(a, b *Recipe) bool {
	ca, err1 := a.Canonical()
	cb, err2 := b.Canonical()
	return err1 == nil && err2 == nil && bytes.Equal(ca, cb)
}
