package poisson

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/unolab/unolayout/pkg/errors"
)

func TestSamplesMinimumDistance(t *testing.T) {
	tests := []struct {
		name          string
		width, height float64
		r             float64
	}{
		{"square", 100, 100, 5},
		{"strip", 300, 20, 3},
		{"tiny", 1, 1, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pts, err := Samples(tt.width, tt.height, tt.r, DefaultAttempts, rand.New(rand.NewSource(1)))
			if err != nil {
				t.Fatalf("Samples() error = %v", err)
			}
			if len(pts) == 0 {
				t.Fatal("Samples() returned no points")
			}
			for i, p := range pts {
				if p.X < 0 || p.X >= tt.width || p.Y < 0 || p.Y >= tt.height {
					t.Errorf("sample %v outside region", p)
				}
				for _, q := range pts[i+1:] {
					if d := p.Sub(q).Length(); d <= tt.r {
						t.Fatalf("samples %v and %v are %v apart, want > %v", p, q, d, tt.r)
					}
				}
			}
		})
	}
}

func TestSamplesCoverage(t *testing.T) {
	pts, err := Samples(200, 200, 5, 30, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatal(err)
	}
	// Maximal packings with disc radius r/2 cover at least ~40% of the
	// area; a sparse result means the sampler stopped early.
	if len(pts) < 400 {
		t.Errorf("got %d samples, want a dense packing (>= 400)", len(pts))
	}
}

func TestSamplesDeterministic(t *testing.T) {
	a, _ := Samples(50, 50, 2, DefaultAttempts, rand.New(rand.NewSource(42)))
	b, _ := Samples(50, 50, 2, DefaultAttempts, rand.New(rand.NewSource(42)))
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same seed gave different samples (-a +b):\n%s", diff)
	}
}

func TestSamplesInvalid(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, r := range []float64{0, -1} {
		if _, err := Samples(10, 10, r, 5, rng); !errors.Is(err, errors.ErrCodeInvalidParameter) {
			t.Errorf("Samples(r=%v) error = %v, want INVALID_PARAMETER", r, err)
		}
	}
	if _, err := Samples(0, 10, 1, 5, rng); !errors.Is(err, errors.ErrCodeInvalidParameter) {
		t.Errorf("Samples(width=0) error = %v, want INVALID_PARAMETER", err)
	}
}
