package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"

	"github.com/spf13/cobra"
	"seehuhn.de/go/geom/vec"

	"github.com/unolab/unolayout/pkg/poisson"
)

// sampleOpts holds the command-line flags for the sample command.
type sampleOpts struct {
	width    float64
	height   float64
	radius   float64
	attempts int
	seed     int64
	json     bool
}

// sampleCommand creates the sample command.
func (c *CLI) sampleCommand() *cobra.Command {
	opts := sampleOpts{width: 100, height: 100, radius: 5, attempts: poisson.DefaultAttempts, seed: 1}

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Print Poisson-disc sample points",
		Long: `Print blue-noise points in [0, width) × [0, height) where every pair is more
than --radius apart. The same seed always gives the same points, which is how
random fill patterns stay reproducible.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rng := rand.New(rand.NewSource(opts.seed))
			pts, err := poisson.Samples(opts.width, opts.height, opts.radius, opts.attempts, rng)
			if err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Debug("sampled", "points", len(pts), "seed", opts.seed)
			return writeSamples(stdout, pts, opts.json)
		},
	}

	cmd.Flags().Float64Var(&opts.width, "width", opts.width, "region width (µm)")
	cmd.Flags().Float64Var(&opts.height, "height", opts.height, "region height (µm)")
	cmd.Flags().Float64VarP(&opts.radius, "radius", "r", opts.radius, "minimum distance between points (µm)")
	cmd.Flags().IntVarP(&opts.attempts, "attempts", "k", opts.attempts, "candidates tried around each point")
	cmd.Flags().Int64Var(&opts.seed, "seed", opts.seed, "random seed")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print a JSON array instead of x,y lines")

	return cmd
}

type point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func writeSamples(w io.Writer, pts []vec.Vec2, asJSON bool) error {
	if asJSON {
		out := make([]point, len(pts))
		for i, p := range pts {
			out[i] = point{X: p.X, Y: p.Y}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	for _, p := range pts {
		if _, err := fmt.Fprintf(w, "%.4f,%.4f\n", p.X, p.Y); err != nil {
			return err
		}
	}
	return nil
}
