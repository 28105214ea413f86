package layout

import (
	"math"
	"sort"

	"seehuhn.de/go/geom/vec"

	"github.com/unolab/unolayout/pkg/errors"
)

const routeEps = 1e-6

// Route is a drawn connection between two ports.
type Route struct {
	Path   Path
	Length float64
	Ref    *Reference
}

// RouteOption configures a router call.
type RouteOption func(*routeConfig)

type routeConfig struct {
	radius    float64
	radiusSet bool
}

// WithRadius overrides the bend radius of the cross-section.
func WithRadius(r float64) RouteOption {
	return func(c *routeConfig) {
		c.radius = r
		c.radiusSet = true
	}
}

func newRouteConfig(xs CrossSection, opts []RouteOption) routeConfig {
	cfg := routeConfig{radius: xs.Radius}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// RouteSingle connects p1 to p2 with manhattan segments joined by circular
// bends. Facing ports whose lateral offset is smaller than two bend radii
// are joined with an S-bend instead.
func RouteSingle(c *Component, p1, p2 Port, xs CrossSection, opts ...RouteOption) (*Route, error) {
	cfg := newRouteConfig(xs, opts)
	pts, sbend, err := manhattanWaypoints(p1, p2, cfg.radius)
	if err != nil {
		return nil, err
	}
	if sbend {
		return RouteSBend(c, p1, p2, xs)
	}
	return drawRoute(c, pts, p1, p2, xs, cfg.radius)
}

// RouteElectrical connects two electrical ports with sharp manhattan
// corners.
func RouteElectrical(c *Component, p1, p2 Port, xs CrossSection) (*Route, error) {
	pts, _, err := manhattanWaypoints(p1, p2, 0)
	if err != nil {
		return nil, err
	}
	return drawRoute(c, pts, p1, p2, xs, 0)
}

// Step is one waypoint of a stepped route. X and Y set absolute
// coordinates; DX and DY move relative to the previous waypoint.
type Step struct {
	X  *float64 `json:"x,omitempty" toml:"x,omitempty" yaml:"x,omitempty"`
	Y  *float64 `json:"y,omitempty" toml:"y,omitempty" yaml:"y,omitempty"`
	DX *float64 `json:"dx,omitempty" toml:"dx,omitempty" yaml:"dx,omitempty"`
	DY *float64 `json:"dy,omitempty" toml:"dy,omitempty" yaml:"dy,omitempty"`
}

// StepX, StepY, StepDX and StepDY build single-coordinate steps.
func StepX(v float64) Step  { return Step{X: &v} }
func StepY(v float64) Step  { return Step{Y: &v} }
func StepDX(v float64) Step { return Step{DX: &v} }
func StepDY(v float64) Step { return Step{DY: &v} }

// RouteFromSteps routes from p1 through the given steps and then to p2
// with at most one more corner.
func RouteFromSteps(c *Component, p1, p2 Port, xs CrossSection, steps []Step, opts ...RouteOption) (*Route, error) {
	cfg := newRouteConfig(xs, opts)
	cur := p1.Center
	pts := []vec.Vec2{cur}
	for _, s := range steps {
		if s.X != nil {
			cur.X = *s.X
		}
		if s.Y != nil {
			cur.Y = *s.Y
		}
		if s.DX != nil {
			cur.X += *s.DX
		}
		if s.DY != nil {
			cur.Y += *s.DY
		}
		pts = append(pts, cur)
	}
	arrive := Dir(p2.Orientation + 180)
	if math.Abs(arrive.X) > 0.5 {
		pts = append(pts, vec.Vec2{X: cur.X, Y: p2.Center.Y})
	} else {
		pts = append(pts, vec.Vec2{X: p2.Center.X, Y: cur.Y})
	}
	pts = append(pts, p2.Center)
	return drawRoute(c, pts, p1, p2, xs, cfg.radius)
}

// RouteBundle pairs two port lists after sorting both along the axis
// across the first list's facing direction and routes each pair.
func RouteBundle(c *Component, ports1, ports2 []Port, xs CrossSection, opts ...RouteOption) ([]*Route, error) {
	if len(ports1) != len(ports2) {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "route bundle: %d start ports but %d end ports", len(ports1), len(ports2))
	}
	if len(ports1) == 0 {
		return nil, nil
	}
	axis := Dir(ports1[0].Orientation + 90)
	a := sortedAlong(ports1, axis)
	b := sortedAlong(ports2, axis)
	routes := make([]*Route, 0, len(a))
	for i := range a {
		r, err := RouteSingle(c, a[i], b[i], xs, opts...)
		if err != nil {
			return nil, err
		}
		routes = append(routes, r)
	}
	return routes, nil
}

func sortedAlong(ports []Port, axis vec.Vec2) []Port {
	out := append([]Port(nil), ports...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Center.Dot(axis) < out[j].Center.Dot(axis)
	})
	return out
}

// RouteSBend joins p1 to p2 with a cubic Bézier S-bend built in the frame
// of p1.
func RouteSBend(c *Component, p1, p2 Port, xs CrossSection) (*Route, error) {
	frame := Transform{Origin: p1.Center, Rotation: p1.Orientation}
	inv := Transform{Rotation: NormalizeAngle(-p1.Orientation)}
	local := inv.Apply(p2.Center.Sub(p1.Center))
	if local.X <= routeEps {
		return nil, errors.Infeasible("s-bend from %s to %s: end port is behind the start port", p1.Name, p2.Name)
	}
	path := SBend(local.X, local.Y).Transformed(frame)
	cell := Extrude(path, xs)
	ref := c.Add(cell)
	return &Route{Path: path, Length: path.Length(), Ref: ref}, nil
}

func drawRoute(c *Component, waypoints []vec.Vec2, p1, p2 Port, xs CrossSection, r float64) (*Route, error) {
	path, length, err := fillet(waypoints, r)
	if err != nil {
		return nil, err
	}
	if len(path.Points) < 2 {
		return &Route{Path: path}, nil
	}
	if !sameDir(path.Points[0], path.Points[1], p1.Orientation) {
		return nil, errors.Infeasible("route %s→%s leaves the start port sideways", p1.Name, p2.Name)
	}
	n := len(path.Points)
	if !sameDir(path.Points[n-2], path.Points[n-1], p2.Orientation+180) {
		return nil, errors.Infeasible("route %s→%s enters the end port sideways", p1.Name, p2.Name)
	}
	path.StartAngle = NormalizeAngle(p1.Orientation)
	path.EndAngle = NormalizeAngle(p2.Orientation + 180)
	cell := Extrude(path, xs)
	cell.SetInfo("length", length)
	ref := c.Add(cell)
	return &Route{Path: path, Length: length, Ref: ref}, nil
}

func sameDir(a, b vec.Vec2, deg float64) bool {
	d := b.Sub(a)
	l := d.Length()
	if l == 0 {
		return true
	}
	return d.Mul(1/l).Dot(Dir(deg)) > 0.999
}

// manhattanWaypoints plans corners in the frame of p1 (heading +x from the
// origin). The bool result asks for an S-bend instead.
func manhattanWaypoints(p1, p2 Port, r float64) ([]vec.Vec2, bool, error) {
	if !p1.IsManhattan() || !p2.IsManhattan() {
		return nil, false, errors.Infeasible("route %s→%s: ports must face along an axis (%g°, %g°)", p1.Name, p2.Name, p1.Orientation, p2.Orientation)
	}
	inv := Transform{Rotation: NormalizeAngle(-p1.Orientation)}
	b := inv.Apply(p2.Center.Sub(p1.Center))
	bx, by := b.X, b.Y
	arrive := NormalizeAngle(p2.Orientation + 180 - p1.Orientation)

	var local []vec.Vec2
	origin := vec.Vec2{}
	switch {
	case nearly(arrive, 0):
		switch {
		case math.Abs(by) < routeEps && bx > routeEps:
			local = []vec.Vec2{origin, b}
		case bx >= 2*r-routeEps && math.Abs(by) >= 2*r-routeEps:
			xm := bx / 2
			local = []vec.Vec2{origin, {X: xm}, {X: xm, Y: by}, b}
		case bx >= 2*r-routeEps:
			return nil, true, nil
		default:
			x1 := r
			x2 := math.Min(bx-r, x1-2*r)
			ym := by / 2
			if math.Abs(by) < 4*r {
				if by >= 0 {
					ym = by + 2*r
				} else {
					ym = by - 2*r
				}
			}
			local = []vec.Vec2{origin, {X: x1}, {X: x1, Y: ym}, {X: x2, Y: ym}, {X: x2, Y: by}, b}
		}
	case nearly(arrive, 180):
		if math.Abs(by) < 2*r-routeEps {
			return nil, false, errors.Infeasible("u-turn route %s→%s: lateral offset %.3f < 2·radius %.3f", p1.Name, p2.Name, math.Abs(by), 2*r)
		}
		xm := math.Max(0, bx) + r
		local = []vec.Vec2{origin, {X: xm}, {X: xm, Y: by}, b}
	default:
		sy := 1.0
		if nearly(arrive, 270) {
			sy = -1
		}
		if bx >= r-routeEps && by*sy >= r-routeEps {
			local = []vec.Vec2{origin, {X: bx}, b}
			break
		}
		ym := by - sy*r
		if math.Abs(ym) < 2*r-routeEps {
			ym = -sy * 2 * r
		}
		x1 := r
		if bx < 3*r-routeEps && bx > -r+routeEps {
			x1 = bx + 2*r
		}
		local = []vec.Vec2{origin, {X: x1}, {X: x1, Y: ym}, {X: bx, Y: ym}, b}
	}

	frame := Transform{Origin: p1.Center, Rotation: NormalizeAngle(p1.Orientation)}
	pts := make([]vec.Vec2, len(local))
	for i, p := range local {
		pts[i] = frame.Apply(p)
	}
	// The last point must be exactly the port center, not a rotated copy.
	pts[len(pts)-1] = p2.Center
	return pts, false, nil
}

// simplify drops repeated and collinear waypoints.
func simplify(pts []vec.Vec2) []vec.Vec2 {
	pts = dedupe(pts)
	if len(pts) < 3 {
		return pts
	}
	out := []vec.Vec2{pts[0]}
	for i := 1; i < len(pts)-1; i++ {
		a := out[len(out)-1]
		d1 := pts[i].Sub(a)
		d2 := pts[i+1].Sub(pts[i])
		cross := d1.X*d2.Y - d1.Y*d2.X
		if math.Abs(cross) < 1e-9*d1.Length()*d2.Length() && d1.Dot(d2) > 0 {
			continue
		}
		out = append(out, pts[i])
	}
	return append(out, pts[len(pts)-1])
}

// fillet rounds every interior corner of a polyline with radius r and
// returns the path and its exact length.
func fillet(waypoints []vec.Vec2, r float64) (Path, float64, error) {
	pts := simplify(waypoints)
	n := len(pts)
	if n < 2 {
		return Path{Points: pts}, 0, nil
	}

	// Tangent distance of each corner.
	tan := make([]float64, n)
	turn := make([]float64, n)
	for i := 1; i < n-1; i++ {
		din := unit(pts[i].Sub(pts[i-1]))
		dout := unit(pts[i+1].Sub(pts[i]))
		th := math.Acos(math.Max(-1, math.Min(1, din.Dot(dout))))
		if th > math.Pi-1e-6 {
			return Path{}, 0, errors.Infeasible("route doubles back on itself at (%.3f, %.3f)", pts[i].X, pts[i].Y)
		}
		turn[i] = th
		tan[i] = r * math.Tan(th/2)
	}

	var length float64
	for i := 0; i < n-1; i++ {
		seg := pts[i+1].Sub(pts[i]).Length()
		if seg < tan[i]+tan[i+1]-routeEps {
			return Path{}, 0, errors.Infeasible("route segment of %.3f µm at (%.3f, %.3f) is shorter than its bends need (%.3f µm)",
				seg, pts[i].X, pts[i].Y, tan[i]+tan[i+1])
		}
		length += seg - tan[i] - tan[i+1]
	}

	out := []vec.Vec2{pts[0]}
	for i := 1; i < n-1; i++ {
		if r == 0 || turn[i] == 0 {
			out = append(out, pts[i])
			continue
		}
		din := unit(pts[i].Sub(pts[i-1]))
		dout := unit(pts[i+1].Sub(pts[i]))
		t1 := pts[i].Sub(din.Mul(tan[i]))
		left := din.X*dout.Y-din.Y*dout.X > 0
		nrm := vec.Vec2{X: -din.Y, Y: din.X}
		sweep := turn[i] * 180 / math.Pi
		if !left {
			nrm = nrm.Mul(-1)
			sweep = -sweep
		}
		center := t1.Add(nrm.Mul(r))
		start := math.Atan2(t1.Y-center.Y, t1.X-center.X)
		k := int(math.Ceil(math.Abs(sweep)*arcResolution)) + 1
		for j := 0; j < k; j++ {
			a := start + sweep*math.Pi/180*float64(j)/float64(k-1)
			out = append(out, vec.Vec2{X: center.X + r*math.Cos(a), Y: center.Y + r*math.Sin(a)})
		}
		length += r * turn[i]
	}
	out = append(out, pts[n-1])
	return PathFromPoints(out), length, nil
}

func unit(v vec.Vec2) vec.Vec2 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.Mul(1 / l)
}
