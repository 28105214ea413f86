package wg

import (
	"math"
	"math/rand"

	"seehuhn.de/go/geom/vec"

	"github.com/unolab/unolayout/pkg/errors"
	"github.com/unolab/unolayout/pkg/layout"
	"github.com/unolab/unolayout/pkg/pdk"
	"github.com/unolab/unolayout/pkg/poisson"
	"github.com/unolab/unolayout/pkg/primitives"
)

// RandomFillParams configures [RandomFillNaive] and [RandomFillPoisson].
type RandomFillParams struct {
	// Size is the filled region, anchored at the origin.
	Size    [2]float64 `json:"size"`
	PostRad float64    `json:"post_rad"`
	// Density is the mean number of posts per µm² (naive fill only).
	Density float64 `json:"density,omitempty"`
	// Radius is the minimum post spacing (Poisson fill only).
	Radius float64 `json:"radius,omitempty"`
	Layer  string  `json:"layer,omitempty"`
	Seed   int64   `json:"seed"`
}

// DefaultRandomFillParams returns a 100 × 50 µm region of 0.5 µm posts.
func DefaultRandomFillParams() RandomFillParams {
	return RandomFillParams{Size: [2]float64{100, 50}, PostRad: 0.5, Density: 1e-4, Radius: 2.5, Layer: "WG"}
}

func (p RandomFillParams) check(cfg *pdk.Config, kind string) (layout.Layer, error) {
	if !(p.Size[0] > 0) || !(p.Size[1] > 0) {
		return layout.Layer{}, errors.Parameter(kind, "size", "must be positive, got %v", p.Size)
	}
	if !(p.PostRad > 0) {
		return layout.Layer{}, errors.Parameter(kind, "post_rad", "must be positive, got %g", p.PostRad)
	}
	return cfg.Layer(p.Layer, cfg.Layers.WG)
}

// RandomFillNaive scatters round(Density·area) posts uniformly over the
// region to scatter stray light. Posts may overlap. The same seed gives
// the same fill.
func RandomFillNaive(cfg *pdk.Config, p RandomFillParams) (*layout.Component, error) {
	l, err := p.check(cfg, "random_fill_naive")
	if err != nil {
		return nil, err
	}
	if p.Density < 0 {
		return nil, errors.Parameter("random_fill_naive", "density", "must not be negative, got %g", p.Density)
	}
	n := int(math.RoundToEven(p.Density * p.Size[0] * p.Size[1]))
	rng := rand.New(rand.NewSource(p.Seed))
	pts := make([]vec.Vec2, n)
	for i := range pts {
		pts[i] = vec.Vec2{X: p.Size[0] * rng.Float64(), Y: p.Size[1] * rng.Float64()}
	}
	return posts(layout.CellName("random_fill_naive", p, l), pts, p.PostRad, l), nil
}

// RandomFillPoisson fills the region with posts on a Poisson-disc set:
// no two posts are closer than Radius and no hole could hold another.
func RandomFillPoisson(cfg *pdk.Config, p RandomFillParams) (*layout.Component, error) {
	l, err := p.check(cfg, "random_fill_poisson")
	if err != nil {
		return nil, err
	}
	pts, err := poisson.Samples(p.Size[0], p.Size[1], p.Radius, poisson.DefaultAttempts, rand.New(rand.NewSource(p.Seed)))
	if err != nil {
		return nil, err
	}
	return posts(layout.CellName("random_fill_poisson", p, l), pts, p.PostRad, l), nil
}

// posts returns a flat cell with one circle per point.
func posts(name string, at []vec.Vec2, r float64, l layout.Layer) *layout.Component {
	circle := primitives.NewCircle(r, l).Polygons[0].Points
	c := layout.New(name)
	for _, p := range at {
		pts := make([]vec.Vec2, len(circle))
		for i, q := range circle {
			pts[i] = q.Add(p)
		}
		c.AddPolygon(l, pts...)
	}
	c.SetInfo("posts", float64(len(at)))
	return c
}
