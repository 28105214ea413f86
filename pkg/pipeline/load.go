package pipeline

import (
	"encoding/json"

	"github.com/unolab/unolayout/pkg/cache"
	"github.com/unolab/unolayout/pkg/pdk"
	"github.com/unolab/unolayout/pkg/recipe"
)

// Load reads the recipe and returns it with the effective process config:
// the defaults, then the config file, then the recipe's own settings.
func Load(opts Options) (*recipe.Recipe, *pdk.Config, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, nil, err
	}

	rec := opts.Recipe
	if rec == nil {
		var err error
		if rec, err = recipe.Load(opts.RecipePath); err != nil {
			return nil, nil, err
		}
	} else if err := rec.Validate(); err != nil {
		return nil, nil, err
	}

	base := pdk.Default()
	if opts.ConfigPath != "" {
		var err error
		if base, err = pdk.Load(opts.ConfigPath); err != nil {
			return nil, nil, err
		}
	}
	cfg, err := rec.Config(base)
	if err != nil {
		return nil, nil, err
	}
	cfg.Logger = opts.Logger
	return rec, cfg, nil
}

// configHash identifies the geometry-relevant part of cfg.
func configHash(cfg *pdk.Config) string {
	c := cfg.Clone()
	c.Logger = nil
	data, _ := json.Marshal(c)
	return cache.Hash(data)
}
