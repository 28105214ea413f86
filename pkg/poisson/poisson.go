// Package poisson draws blue-noise point sets with Bridson's Poisson-disc
// algorithm: every pair of samples is more than r apart and no gap is
// large enough to hold another sample.
package poisson

import (
	"math"
	"math/rand"

	"seehuhn.de/go/geom/vec"

	"github.com/unolab/unolayout/pkg/errors"
)

// DefaultAttempts is the number of candidates tried around each sample.
const DefaultAttempts = 5

// Samples returns Poisson-disc samples in [0, width) × [0, height) with
// minimum distance r. Every accepted sample is taken off the queue once
// and spawns up to k candidates in the annulus [r, 2r) around it; each
// candidate that fits is accepted. The same rng state always yields the
// same points.
func Samples(width, height, r float64, k int, rng *rand.Rand) ([]vec.Vec2, error) {
	if !(r > 0) {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "poisson: radius must be positive, got %g", r)
	}
	if !(width > 0) || !(height > 0) {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "poisson: region must be positive, got %g × %g", width, height)
	}
	if k <= 0 {
		k = DefaultAttempts
	}

	cell := r / math.Sqrt2
	nx := int(math.Ceil(width / cell))
	ny := int(math.Ceil(height / cell))
	grid := make([]int, nx*ny)
	for i := range grid {
		grid[i] = -1
	}
	cellOf := func(p vec.Vec2) (int, int) {
		return int(p.X / cell), int(p.Y / cell)
	}

	var samples []vec.Vec2
	var queue []vec.Vec2
	add := func(p vec.Vec2) {
		samples = append(samples, p)
		i, j := cellOf(p)
		grid[j*nx+i] = len(samples) - 1
		queue = append(queue, p)
	}
	fits := func(p vec.Vec2) bool {
		ci, cj := cellOf(p)
		for j := max(cj-2, 0); j <= min(cj+2, ny-1); j++ {
			for i := max(ci-2, 0); i <= min(ci+2, nx-1); i++ {
				if s := grid[j*nx+i]; s >= 0 && samples[s].Sub(p).Length() <= r {
					return false
				}
			}
		}
		return true
	}

	add(vec.Vec2{X: rng.Float64() * width, Y: rng.Float64() * height})
	for len(queue) > 0 {
		qi := rng.Intn(len(queue))
		q := queue[qi]
		queue[qi] = queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		for n := 0; n < k; n++ {
			alpha := 2 * math.Pi * rng.Float64()
			// Uniform in area over the annulus [r, 2r).
			d := r * math.Sqrt(3*rng.Float64()+1)
			p := q.Add(vec.Vec2{X: d * math.Cos(alpha), Y: d * math.Sin(alpha)})
			if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
				continue
			}
			if fits(p) {
				add(p)
			}
		}
	}

	// Report samples in grid order so the output does not depend on the
	// order points were accepted in.
	out := make([]vec.Vec2, 0, len(samples))
	for _, s := range grid {
		if s >= 0 {
			out = append(out, samples[s])
		}
	}
	return out, nil
}
