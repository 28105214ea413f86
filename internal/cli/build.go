package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/unolab/unolayout/pkg/pipeline"
)

// buildOpts holds the command-line flags for the build command.
type buildOpts struct {
	output  string // output file (one recipe, one format), base path, or directory
	formats string // comma-separated formats
	config  string // process overrides file
	cache   string // cache directory or redis URL
	noCache bool
	refresh bool
	flatten bool
	libName string
	jobs    int
}

// buildCommand creates the build command.
func (c *CLI) buildCommand() *cobra.Command {
	opts := buildOpts{jobs: runtime.NumCPU()}

	cmd := &cobra.Command{
		Use:   "build [recipe.toml ...]",
		Short: "Build chip recipes into GDSII masks",
		Long: `Build one or more recipes into mask artifacts.

Each recipe is loaded, its components are built through the registry and the
top cell is written as GDSII (-f gds) and/or a JSON summary of its bounding
box, layers and ports (-f json). Several recipes are built in parallel.

With a single recipe and format, -o names the output file. With several
formats it is the base path, and with several recipes a directory.

Artifacts are cached locally (or in Redis with --cache redis://host:6379/0)
so unchanged recipes are not rebuilt.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseFormats(opts.formats)
			if err := pipeline.ValidateFormats(formats); err != nil {
				return err
			}
			if opts.jobs < 1 {
				return fmt.Errorf("--jobs must be at least 1, got %d", opts.jobs)
			}
			return c.runBuild(cmd.Context(), args, formats, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file, base path (several formats) or directory (several recipes)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): gds (default), json (comma-separated)")
	cmd.Flags().StringVarP(&opts.config, "config", "c", "", "process overrides file (.toml or .yaml)")
	cmd.Flags().StringVar(&opts.cache, "cache", "", "cache directory or redis:// URL (default: XDG cache dir)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "rebuild even if cached")
	cmd.Flags().BoolVar(&opts.flatten, "flatten", false, "write a single flat GDS structure")
	cmd.Flags().StringVar(&opts.libName, "lib", "", "GDS library name (default: recipe name)")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", opts.jobs, "recipes built in parallel")

	return cmd
}

// buildOutcome is the result of one recipe build, kept in input order.
type buildOutcome struct {
	input  string
	result *pipeline.Result
	files  []string
}

// runBuild builds every recipe and writes the artifacts.
func (c *CLI) runBuild(ctx context.Context, inputs []string, formats []string, opts buildOpts) error {
	runner, err := c.newRunner(ctx, opts.cache, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	if len(inputs) > 1 && opts.output != "" {
		if err := os.MkdirAll(opts.output, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Building %d recipe(s)...", len(inputs)))
	spinner.Start()

	outcomes := make([]buildOutcome, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.jobs)
	for i, input := range inputs {
		g.Go(func() error {
			res, err := runner.Execute(gctx, pipeline.Options{
				RecipePath: input,
				ConfigPath: opts.config,
				Formats:    formats,
				LibName:    opts.libName,
				Flatten:    opts.flatten,
				Refresh:    opts.refresh,
				Logger:     c.Logger.With("recipe", filepath.Base(input)),
			})
			if err != nil {
				return fmt.Errorf("%s: %w", input, err)
			}
			files, err := writeArtifacts(res.Artifacts, outputPaths(input, opts.output, formats, len(inputs) > 1))
			if err != nil {
				return fmt.Errorf("%s: %w", input, err)
			}
			outcomes[i] = buildOutcome{input: input, result: res, files: files}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		spinner.StopWithError("Build failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	for _, o := range outcomes {
		printSuccess("Built %s", StyleHighlight.Render(o.result.Recipe.Name))
		for _, f := range o.files {
			printFile(f)
		}
		printStats(o.result.Stats, o.result.CacheInfo.ExportHit)
	}
	prog.done("built recipes", "count", len(inputs), "jobs", opts.jobs)
	return nil
}

// outputPaths maps each format to the file it is written to.
func outputPaths(input, output string, formats []string, multi bool) map[string]string {
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	var base string
	switch {
	case output == "":
		base = strings.TrimSuffix(input, filepath.Ext(input))
	case multi:
		base = filepath.Join(output, stem)
	case len(formats) == 1:
		return map[string]string{formats[0]: output}
	default:
		base = strings.TrimSuffix(output, filepath.Ext(output))
	}

	paths := make(map[string]string, len(formats))
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

// writeArtifacts writes each artifact to its path and returns the written
// paths in sorted order.
func writeArtifacts(artifacts map[string][]byte, paths map[string]string) ([]string, error) {
	var written []string
	for format, data := range artifacts {
		path, ok := paths[format]
		if !ok {
			continue
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	sort.Strings(written)
	return written, nil
}
