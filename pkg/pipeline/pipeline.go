// Package pipeline provides the recipe-to-mask pipeline for unolayout.
//
// This package implements the complete load → build → export pipeline used
// by the CLI. Centralizing it keeps caching and logging identical for every
// entry point.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read a recipe file (TOML or YAML) and the process config
//  2. Build: Construct the top cell through the component registry
//  3. Export: Write the cell hierarchy as GDSII and a JSON summary
//
// Exported artifacts are cached under a key derived from the recipe, the
// effective process config and the export options.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    RecipePath: "chip.toml",
//	    Formats:    []string{"gds"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	gds := result.Artifacts["gds"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/unolab/unolayout/pkg/cache"
	"github.com/unolab/unolayout/pkg/errors"
	"github.com/unolab/unolayout/pkg/layout"
	"github.com/unolab/unolayout/pkg/pdk"
	"github.com/unolab/unolayout/pkg/recipe"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultUnit is the GDS user unit in meters (1 micron).
	DefaultUnit = 1e-6

	// DefaultPrecision is the GDS database unit in meters (1 nm).
	DefaultPrecision = 1e-9
)

// Format constants for output formats.
const (
	FormatGDS  = "gds"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatGDS:  true,
	FormatJSON: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
type Options struct {
	// Load options. Exactly one of RecipePath and Recipe is set.
	RecipePath string         `json:"recipe_path,omitempty"`
	Recipe     *recipe.Recipe `json:"recipe,omitempty"`
	ConfigPath string         `json:"config_path,omitempty"`

	// Export options
	Formats   []string  `json:"formats,omitempty"`
	LibName   string    `json:"lib_name,omitempty"`
	Unit      float64   `json:"unit,omitempty"`
	Precision float64   `json:"precision,omitempty"`
	Flatten   bool      `json:"flatten,omitempty"`
	Timestamp time.Time `json:"-"`

	// Refresh skips the cache lookup but still stores fresh artifacts.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Recipe is the loaded recipe.
	Recipe *recipe.Recipe

	// Top is the built top cell. It is nil when every artifact came from
	// the cache.
	Top *layout.Component

	// BuildHash identifies the recipe and effective config.
	BuildHash string

	// Artifacts contains exported outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Placements int
	Cells      int
	Polygons   int
	LoadTime   time.Duration
	BuildTime  time.Duration
	ExportTime time.Duration
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	ExportHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: gds, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForExport(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks the recipe and config sources.
func (o *Options) ValidateForLoad() error {
	if o.RecipePath == "" && o.Recipe == nil {
		return fmt.Errorf("recipe path or recipe is required")
	}
	if o.RecipePath != "" && o.Recipe != nil {
		return fmt.Errorf("recipe path and recipe are mutually exclusive")
	}
	if o.RecipePath != "" {
		if err := errors.ValidatePath(o.RecipePath); err != nil {
			return err
		}
	}
	if o.ConfigPath != "" {
		if err := errors.ValidatePath(o.ConfigPath); err != nil {
			return err
		}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetExportDefaults sets default values for export.
func (o *Options) SetExportDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatGDS}
	}
	if o.Unit == 0 {
		o.Unit = DefaultUnit
	}
	if o.Precision == 0 {
		o.Precision = DefaultPrecision
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForExport validates and sets defaults for export.
func (o *Options) ValidateForExport() error {
	o.SetExportDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Unit < 0 || o.Precision < 0 || o.Precision > o.Unit {
		return errors.New(errors.ErrCodeInvalidParameter,
			"precision %g must not exceed unit %g", o.Precision, o.Unit)
	}
	return nil
}

// BuildKeyOpts returns cache key options for a build with cfg.
func (o *Options) BuildKeyOpts(cfg *pdk.Config, version string) cache.BuildKeyOpts {
	return cache.BuildKeyOpts{
		ConfigHash: configHash(cfg),
		Version:    version,
	}
}

// ArtifactKeyOpts returns cache key options for one exported format.
func (o *Options) ArtifactKeyOpts(format, libName string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:    format,
		LibName:   libName,
		Unit:      o.Unit,
		Precision: o.Precision,
		Flatten:   o.Flatten,
	}
}
