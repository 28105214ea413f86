package layout

import (
	"math"
	"testing"

	"seehuhn.de/go/geom/vec"

	"github.com/unolab/unolayout/pkg/errors"
)

func port(name string, x, y, o float64) Port {
	return Port{Name: name, Center: vec.Vec2{X: x, Y: y}, Orientation: o, Width: 0.5, Layer: testLayer, Type: Optical}
}

func TestRouteSingle(t *testing.T) {
	const r = 10
	quarter := math.Pi / 2 * r
	tests := []struct {
		name   string
		p1, p2 Port
		length float64
	}{
		{"straight", port("a", 0, 0, 0), port("b", 100, 0, 180), 100},
		{"straight rotated", port("a", 0, 0, 90), port("b", 0, 50, 270), 50},
		{"L", port("a", 0, 0, 0), port("b", 100, 100, 270), 200 - 2*r + quarter},
		{"Z", port("a", 0, 0, 0), port("b", 100, 50, 180), 150 - 4*r + 2*quarter},
		{"U", port("a", 0, 0, 0), port("b", 0, 40, 0), r + 40 + r - 4*r + 2*quarter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New("top")
			route, err := RouteSingle(c, tt.p1, tt.p2, wgXS(0.5), WithRadius(r))
			if err != nil {
				t.Fatalf("RouteSingle() error = %v", err)
			}
			if math.Abs(route.Length-tt.length) > 1e-6 {
				t.Errorf("Length = %v, want %v", route.Length, tt.length)
			}
			if !near(route.Path.Start(), tt.p1.Center) || !near(route.Path.End(), tt.p2.Center) {
				t.Errorf("route runs %v → %v", route.Path.Start(), route.Path.End())
			}
			if len(c.Refs) != 1 {
				t.Errorf("refs = %d, want 1", len(c.Refs))
			}
			// The polyline is within a fraction of a percent of the exact length.
			if pl := route.Path.Length(); math.Abs(pl-tt.length)/tt.length > 1e-3 {
				t.Errorf("polyline length = %v, exact %v", pl, tt.length)
			}
		})
	}
}

func TestRouteSingleSBendFallback(t *testing.T) {
	c := New("top")
	route, err := RouteSingle(c, port("a", 0, 0, 0), port("b", 100, 5, 180), wgXS(0.5), WithRadius(10))
	if err != nil {
		t.Fatalf("RouteSingle() error = %v", err)
	}
	if !near(route.Path.End(), vec.Vec2{X: 100, Y: 5}) {
		t.Errorf("s-bend end = %v", route.Path.End())
	}
	if route.Length <= 100 {
		t.Errorf("s-bend length = %v, want > 100", route.Length)
	}
}

func TestRouteInfeasible(t *testing.T) {
	c := New("top")
	// Same-facing ports closer than two radii cannot make a U-turn.
	_, err := RouteSingle(c, port("a", 0, 0, 0), port("b", 0, 5, 0), wgXS(0.5), WithRadius(10))
	if !errors.Is(err, errors.ErrCodeInfeasibleGeometry) {
		t.Errorf("u-turn error = %v, want INFEASIBLE_GEOMETRY", err)
	}
	_, err = RouteSingle(c, port("a", 0, 0, 45), port("b", 100, 0, 180), wgXS(0.5))
	if !errors.Is(err, errors.ErrCodeInfeasibleGeometry) {
		t.Errorf("non-manhattan error = %v, want INFEASIBLE_GEOMETRY", err)
	}
	_, err = RouteFromSteps(c, port("a", 0, 0, 0), port("b", 100, 100, 180), wgXS(0.5),
		[]Step{StepDX(5), StepY(100)}, WithRadius(10))
	if !errors.Is(err, errors.ErrCodeInfeasibleGeometry) {
		t.Errorf("short step error = %v, want INFEASIBLE_GEOMETRY", err)
	}
}

func TestRouteFromSteps(t *testing.T) {
	c := New("top")
	const r = 10
	route, err := RouteFromSteps(c, port("a", 0, 0, 270), port("b", 200, 0, 270), wgXS(0.5),
		[]Step{StepDY(-100), StepDX(200)}, WithRadius(r))
	if err != nil {
		t.Fatalf("RouteFromSteps() error = %v", err)
	}
	want := 100 + 200 + 100 - 4*r + math.Pi*r
	if math.Abs(route.Length-want) > 1e-6 {
		t.Errorf("Length = %v, want %v", route.Length, want)
	}
}

func TestRouteElectrical(t *testing.T) {
	c := New("top")
	xs := Strip(10, L(12, 0), 0, [2]string{"e0", "e1"}, Electrical)
	p1 := Port{Name: "e0", Center: vec.Vec2{}, Orientation: 90, Width: 10, Type: Electrical}
	p2 := Port{Name: "e1", Center: vec.Vec2{X: 100, Y: 100}, Orientation: 180, Width: 10, Type: Electrical}
	route, err := RouteElectrical(c, p1, p2, xs)
	if err != nil {
		t.Fatalf("RouteElectrical() error = %v", err)
	}
	if route.Length != 200 {
		t.Errorf("Length = %v, want 200", route.Length)
	}
	// Sharp corner: the corner point itself is on the path.
	found := false
	for _, p := range route.Path.Points {
		if near(p, vec.Vec2{X: 0, Y: 100}) {
			found = true
		}
	}
	if !found {
		t.Errorf("electrical route has no sharp corner at (0, 100): %v", route.Path.Points)
	}
}

func TestRouteBundle(t *testing.T) {
	c := New("top")
	starts := []Port{port("a1", 0, 20, 0), port("a0", 0, 0, 0)}
	ends := []Port{port("b0", 200, 100, 180), port("b1", 200, 150, 180)}
	routes, err := RouteBundle(c, starts, ends, wgXS(0.5), WithRadius(10))
	if err != nil {
		t.Fatalf("RouteBundle() error = %v", err)
	}
	if len(routes) != 2 {
		t.Fatalf("routes = %d, want 2", len(routes))
	}
	if !near(routes[0].Path.End(), vec.Vec2{X: 200, Y: 100}) {
		t.Errorf("lowest start should reach lowest end, got %v", routes[0].Path.End())
	}
	if _, err := RouteBundle(c, starts, ends[:1], wgXS(0.5)); !errors.Is(err, errors.ErrCodeInvalidParameter) {
		t.Errorf("mismatched bundle error = %v", err)
	}
}

func TestRouteSBendBehind(t *testing.T) {
	c := New("top")
	_, err := RouteSBend(c, port("a", 0, 0, 0), port("b", -20, 10, 180), wgXS(0.5))
	if !errors.Is(err, errors.ErrCodeInfeasibleGeometry) {
		t.Errorf("RouteSBend(behind) error = %v, want INFEASIBLE_GEOMETRY", err)
	}
	if len(c.Refs) != 0 {
		t.Errorf("failed route added %d references", len(c.Refs))
	}
}
