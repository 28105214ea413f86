// Package registry maps component names to their generators so that
// recipes and the CLI can build any cell from a name and a parameter
// document.
//
// Parameters are JSON objects decoded over the generator's defaults: keys
// that are left out keep their default value and unknown keys are
// rejected. Generators that wrap another cell (arrays, fixtures, MZIs)
// take it as a nested {"component": ..., "params": ...} object under a
// generator-specific key.
//
// Usage:
//
//	spec := registry.Find("racetrack")
//	c, err := spec.Build(pdk.Default(), []byte(`{"ring_length": 800}`))
package registry

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/unolab/unolayout/pkg/errors"
	"github.com/unolab/unolayout/pkg/layout"
	"github.com/unolab/unolayout/pkg/pdk"
)

// maxDepth bounds nested child components so a recipe cannot recurse
// forever.
const maxDepth = 8

// Spec describes one registered component generator.
type Spec struct {
	// Name is the recipe name, e.g. "edge_coupler_pair".
	Name string
	// Group is the package the generator lives in.
	Group string
	// Doc is a one-line description.
	Doc string
	// ChildKey names the parameter holding a nested component, if any.
	ChildKey string

	defaults func() any
	build    func(cfg *pdk.Config, raw []byte, depth int) (*layout.Component, error)
}

// Defaults returns the default parameters as a fresh value.
func (s *Spec) Defaults() any {
	return s.defaults()
}

// DefaultParams returns the default parameters as a JSON object. For
// wrapping generators the default child is included under ChildKey.
func (s *Spec) DefaultParams() (map[string]any, error) {
	data, err := json.Marshal(s.defaults())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "%s defaults", s.Name)
	}
	out := map[string]any{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "%s defaults", s.Name)
	}
	return out, nil
}

// Build creates the component from a JSON parameter object. Nil or empty
// raw selects all defaults.
func (s *Spec) Build(cfg *pdk.Config, raw []byte) (*layout.Component, error) {
	return s.build(cfg, raw, 0)
}

// Child is a nested component reference inside another generator's
// parameters.
type Child struct {
	Component string          `json:"component"`
	Params    json.RawMessage `json:"params,omitempty"`
}

// Find returns the Spec with the given name, or nil if not found.
func Find(name string) *Spec {
	for _, s := range All {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Lookup is Find with an UNKNOWN_COMPONENT error.
func Lookup(name string) (*Spec, error) {
	if s := Find(name); s != nil {
		return s, nil
	}
	return nil, errors.New(errors.ErrCodeUnknownComponent, "unknown component %q (see 'unolayout list')", name)
}

// Build looks up name and builds it from raw parameters.
func Build(cfg *pdk.Config, name string, raw []byte) (*layout.Component, error) {
	s, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return s.Build(cfg, raw)
}

// Names returns all registered names in sorted order.
func Names() []string {
	out := make([]string, len(All))
	for i, s := range All {
		out[i] = s.Name
	}
	sort.Strings(out)
	return out
}

// Groups returns the registered specs grouped by package, each group
// sorted by name.
func Groups() map[string][]*Spec {
	out := map[string][]*Spec{}
	for _, s := range All {
		out[s.Group] = append(out[s.Group], s)
	}
	for _, g := range out {
		sort.Slice(g, func(i, j int) bool { return g[i].Name < g[j].Name })
	}
	return out
}

// decode overlays raw on p, rejecting unknown keys.
func decode(name string, raw []byte, p any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(p); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidParameter, err, "%s params", name)
	}
	return nil
}

// splitChild removes key from the raw object and returns it separately.
func splitChild(name, key string, raw []byte) (rest []byte, child []byte, err error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil, nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidParameter, err, "%s params", name)
	}
	child = m[key]
	delete(m, key)
	rest, err = json.Marshal(m)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInternal, err, "%s params", name)
	}
	return rest, child, nil
}

// buildChild resolves a nested component, falling back to def when the
// key is absent.
func buildChild(cfg *pdk.Config, parent string, raw []byte, def Child, depth int) (*layout.Component, error) {
	if depth >= maxDepth {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "%s: components nested deeper than %d", parent, maxDepth)
	}
	ch := def
	if len(raw) > 0 {
		ch = Child{}
		if err := decode(parent, raw, &ch); err != nil {
			return nil, err
		}
		if ch.Component == "" {
			ch.Component = def.Component
		}
	}
	s, err := Lookup(ch.Component)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnknownComponent, err, "%s child", parent)
	}
	return s.build(cfg, ch.Params, depth+1)
}

// simple registers a generator that takes only parameters.
func simple[P any](name, group, doc string, def func() P, fn func(*pdk.Config, P) (*layout.Component, error)) *Spec {
	return &Spec{
		Name:     name,
		Group:    group,
		Doc:      doc,
		defaults: func() any { return def() },
		build: func(cfg *pdk.Config, raw []byte, _ int) (*layout.Component, error) {
			p := def()
			if err := decode(name, raw, &p); err != nil {
				return nil, err
			}
			return fn(cfg, p)
		},
	}
}

// wrapping registers a generator that takes another component.
func wrapping[P any](name, group, doc, key string, child Child, def func() P, fn func(*pdk.Config, *layout.Component, P) (*layout.Component, error)) *Spec {
	return &Spec{
		Name:     name,
		Group:    group,
		Doc:      doc,
		ChildKey: key,
		defaults: func() any {
			out := map[string]any{}
			data, _ := json.Marshal(def())
			_ = json.Unmarshal(data, &out)
			out[key] = child
			return out
		},
		build: func(cfg *pdk.Config, raw []byte, depth int) (*layout.Component, error) {
			rest, childRaw, err := splitChild(name, key, raw)
			if err != nil {
				return nil, err
			}
			p := def()
			if err := decode(name, rest, &p); err != nil {
				return nil, err
			}
			c, err := buildChild(cfg, name, childRaw, child, depth)
			if err != nil {
				return nil, err
			}
			return fn(cfg, c, p)
		},
	}
}

// fixed wraps generators that have no parameters.
func fixed(fn func(*pdk.Config) *layout.Component) func(*pdk.Config, struct{}) (*layout.Component, error) {
	return func(cfg *pdk.Config, _ struct{}) (*layout.Component, error) {
		return fn(cfg), nil
	}
}

func zero[P any]() P {
	var p P
	return p
}
