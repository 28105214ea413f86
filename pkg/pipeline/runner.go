package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/unolab/unolayout/pkg/buildinfo"
	"github.com/unolab/unolayout/pkg/cache"
	"github.com/unolab/unolayout/pkg/layout"
	"github.com/unolab/unolayout/pkg/observability"
	"github.com/unolab/unolayout/pkg/pdk"
	"github.com/unolab/unolayout/pkg/recipe"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → build → export pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		Artifacts: make(map[string][]byte),
	}
	hooks := observability.Pipeline()

	// Stage 1: Load
	source := opts.RecipePath
	if source == "" {
		source = opts.Recipe.Name
	}
	hooks.OnLoadStart(ctx, source)
	loadStart := time.Now()
	rec, cfg, err := Load(opts)
	result.Stats.LoadTime = time.Since(loadStart)
	if err != nil {
		hooks.OnLoadComplete(ctx, source, 0, result.Stats.LoadTime, err)
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Recipe = rec
	result.Stats.Placements = len(rec.Place)
	hooks.OnLoadComplete(ctx, rec.Name, len(rec.Place), result.Stats.LoadTime, nil)

	buildHash, err := r.BuildHash(rec, cfg, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.BuildHash = buildHash

	r.Logger.Info("loaded recipe",
		"recipe", rec.Name,
		"placements", len(rec.Place),
		"routes", len(rec.Routes),
		"duration", result.Stats.LoadTime)

	libName := opts.LibName
	if libName == "" {
		libName = rec.Name
	}

	if !opts.Refresh {
		if artifacts, ok := r.cached(ctx, buildHash, libName, opts); ok {
			result.Artifacts = artifacts
			result.CacheInfo.ExportHit = true
			r.Logger.Info("artifacts from cache", "recipe", rec.Name, "formats", opts.Formats)
			return result, nil
		}
	}

	// Stage 2: Build
	buildStart := time.Now()
	top, err := r.Build(ctx, rec, cfg)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.Top = top
	summary := Summarize(top)
	result.Stats.Cells = summary.Cells
	result.Stats.Polygons = summary.Polygons
	result.Stats.BuildTime = time.Since(buildStart)

	r.Logger.Info("built layout",
		"cells", summary.Cells,
		"polygons", summary.Polygons,
		"duration", result.Stats.BuildTime)

	// Stage 3: Export
	exportStart := time.Now()
	artifacts, err := r.Export(ctx, top, buildHash, libName, opts)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.ExportTime = time.Since(exportStart)

	r.Logger.Info("exported outputs",
		"formats", opts.Formats,
		"duration", result.Stats.ExportTime)

	return result, nil
}

// BuildHash returns the cache identity of building rec with cfg.
func (r *Runner) BuildHash(rec *recipe.Recipe, cfg *pdk.Config, opts Options) (string, error) {
	canonical, err := rec.Canonical()
	if err != nil {
		return "", err
	}
	return r.Keyer.BuildKey(cache.Hash(canonical), opts.BuildKeyOpts(cfg, buildinfo.Version)), nil
}

// Build constructs the top cell of rec.
func (r *Runner) Build(ctx context.Context, rec *recipe.Recipe, cfg *pdk.Config) (*layout.Component, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx, rec.Name)
	start := time.Now()
	top, err := rec.Build(cfg)
	cells := 0
	if top != nil {
		cells = len(top.Cells())
	}
	hooks.OnBuildComplete(ctx, rec.Name, cells, time.Since(start), err)
	return top, err
}

// Export writes top in every requested format and stores the artifacts
// under buildHash.
func (r *Runner) Export(ctx context.Context, top *layout.Component, buildHash, libName string, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForExport(); err != nil {
		return nil, err
	}
	hooks := observability.Pipeline()
	hooks.OnExportStart(ctx, opts.Formats)
	start := time.Now()

	artifacts, err := Export(top, libName, opts)
	size := 0
	for _, data := range artifacts {
		size += len(data)
	}
	hooks.OnExportComplete(ctx, opts.Formats, size, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	for format, data := range artifacts {
		key := r.Keyer.ArtifactKey(buildHash, opts.ArtifactKeyOpts(format, libName))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			r.Logger.Warn("cache write failed", "format", format, "error", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, format, len(data))
	}
	return artifacts, nil
}

// cached returns the artifacts for every requested format, or false if
// any of them is missing.
func (r *Runner) cached(ctx context.Context, buildHash, libName string, opts Options) (map[string][]byte, bool) {
	hooks := observability.Cache()
	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(buildHash, opts.ArtifactKeyOpts(format, libName))
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil {
			r.Logger.Warn("cache read failed", "format", format, "error", err)
		}
		if err != nil || !hit {
			hooks.OnCacheMiss(ctx, format)
			return nil, false
		}
		hooks.OnCacheHit(ctx, format)
		artifacts[format] = data
	}
	return artifacts, true
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
