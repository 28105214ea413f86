// Package cli implements the unolayout command-line interface.
//
// The CLI builds chip recipes into GDSII masks, lists and inspects the
// registered component generators, scaffolds new recipes interactively and
// manages the artifact cache. It is built on cobra; status output uses
// lipgloss and logging uses charmbracelet/log.
//
// # Commands
//
//   - build: Build one or more recipes into GDS and JSON artifacts
//   - list: Show the registered components by group
//   - info: Build a single component and print its ports
//   - init: Pick components interactively and write a recipe skeleton
//   - sample: Print Poisson-disc sample points
//   - cache: Clear or locate the artifact cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// is attached to the command context and passed to the pipeline runner.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/unolab/unolayout/pkg/buildinfo"
	"github.com/unolab/unolayout/pkg/cache"
	"github.com/unolab/unolayout/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "unolayout"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "unolayout builds photonic chip masks from component recipes",
		Long:         `unolayout is a photonic IC layout tool. Chips are described as recipes of parametric components (waveguides, couplers, rings, AWGs, test structures) and built into GDSII mask files.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c.registerHooks()
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.buildCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.infoCommand())
	root.AddCommand(c.initCommand())
	root.AddCommand(c.sampleCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. spec selects the cache
// backend, see newCache.
func (c *CLI) newRunner(ctx context.Context, spec string, noCache bool) (*pipeline.Runner, error) {
	store, err := newCache(ctx, spec, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if isRedisURL(spec) {
		// A shared server may hold keys of other tools.
		keyer = cache.NewScopedKeyer(nil, appName+":")
	}
	return pipeline.NewRunner(store, keyer, c.Logger), nil
}

// newCache opens the artifact cache. spec is a redis:// URL, a directory,
// or empty for the XDG cache directory.
func newCache(ctx context.Context, spec string, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if isRedisURL(spec) {
		return cache.NewRedisCache(ctx, spec)
	}
	dir := spec
	if dir == "" {
		var err error
		if dir, err = cacheDir(); err != nil {
			return cache.NewNullCache(), nil
		}
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, fmt.Errorf("open cache %s: %w", dir, err)
	}
	return fc, nil
}

func isRedisURL(s string) bool {
	return strings.HasPrefix(s, "redis://") || strings.HasPrefix(s, "rediss://")
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/unolayout/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatGDS}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
