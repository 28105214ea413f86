package layout

import (
	"math"
	"testing"

	"seehuhn.de/go/geom/vec"
)

func TestArc(t *testing.T) {
	tests := []struct {
		radius, angle float64
		end           vec.Vec2
	}{
		{10, 90, vec.Vec2{X: 10, Y: 10}},
		{10, -90, vec.Vec2{X: 10, Y: -10}},
		{5, 180, vec.Vec2{X: 0, Y: 10}},
	}
	for _, tt := range tests {
		p := Arc(tt.radius, tt.angle)
		if !near(p.End(), tt.end) {
			t.Errorf("Arc(%v, %v) end = %v, want %v", tt.radius, tt.angle, p.End(), tt.end)
		}
		if p.EndAngle != NormalizeAngle(tt.angle) {
			t.Errorf("Arc(%v, %v) EndAngle = %v", tt.radius, tt.angle, p.EndAngle)
		}
		want := tt.radius * math.Abs(tt.angle) * math.Pi / 180
		if got := p.Length(); math.Abs(got-want)/want > 1e-4 {
			t.Errorf("Arc(%v, %v) Length() = %v, want ≈ %v", tt.radius, tt.angle, got, want)
		}
	}
}

func TestEuler(t *testing.T) {
	p := Euler(10, 90, 0.5)
	// Symmetric 90° Euler bend ends on the diagonal x = y.
	end := p.End()
	if math.Abs(end.X-end.Y) > 1e-3 {
		t.Errorf("Euler 90 end = %v, want x == y", end)
	}
	// The clothoid sections make the footprint larger than a circular bend.
	if end.X <= 10 {
		t.Errorf("Euler 90 end.X = %v, want > radius", end.X)
	}
	want := EulerLength(10, 90, 0.5)
	if got := p.Length(); math.Abs(got-want)/want > 1e-3 {
		t.Errorf("Euler Length() = %v, want ≈ %v", got, want)
	}
	neg := Euler(10, -90, 0.5)
	if !near(neg.End(), vec.Vec2{X: end.X, Y: -end.Y}) {
		t.Errorf("Euler(-90) end = %v, want mirror of %v", neg.End(), end)
	}
	if neg.EndAngle != 270 {
		t.Errorf("Euler(-90) EndAngle = %v, want 270", neg.EndAngle)
	}
	if arc := Euler(10, 90, 0); !near(arc.End(), vec.Vec2{X: 10, Y: 10}) {
		t.Errorf("Euler with p=0 end = %v, want circular arc", arc.End())
	}
}

func TestAppend(t *testing.T) {
	p := Concat(Straight(10), Arc(5, 90), Straight(10))
	want := vec.Vec2{X: 15, Y: 15}
	if !near(p.End(), want) {
		t.Errorf("Concat end = %v, want %v", p.End(), want)
	}
	if p.EndAngle != 90 {
		t.Errorf("Concat EndAngle = %v, want 90", p.EndAngle)
	}
	if m := p.MirrorY(); !near(m.End(), vec.Vec2{X: 15, Y: -15}) || m.EndAngle != 270 {
		t.Errorf("MirrorY end = %v angle %v", m.End(), m.EndAngle)
	}
	if m := p.MirrorX(); !near(m.End(), vec.Vec2{X: -15, Y: 15}) || m.StartAngle != 180 {
		t.Errorf("MirrorX end = %v start angle %v", m.End(), m.StartAngle)
	}
}

func TestSBend(t *testing.T) {
	p := SBend(20, 5)
	if !near(p.Start(), vec.Vec2{}) || !near(p.End(), vec.Vec2{X: 20, Y: 5}) {
		t.Errorf("SBend endpoints = %v, %v", p.Start(), p.End())
	}
	if p.StartAngle != 0 || p.EndAngle != 0 {
		t.Errorf("SBend angles = %v, %v", p.StartAngle, p.EndAngle)
	}
}

func TestCutBand(t *testing.T) {
	// A full circle around (0, 10) starting at its bottom point.
	circle := Concat(Arc(10, 180), Arc(10, 180))
	if got := circle.CutBand(0, 4); len(got) != 1 {
		t.Errorf("cut at the start point: %d pieces, want 1", len(got))
	}
	pieces := circle.CutBand(10, 4)
	if len(pieces) != 3 {
		t.Fatalf("CutBand pieces = %d, want 3", len(pieces))
	}
	for _, p := range pieces {
		for _, pt := range p.Points {
			if math.Abs(pt.Y-10) < 2-1e-9 {
				t.Errorf("point %v lies inside the band", pt)
			}
		}
	}

	vertical := PathFromPoints([]vec.Vec2{{X: 0, Y: -10}, {X: 0, Y: 10}})
	got := vertical.CutBand(0, 2)
	if len(got) != 2 {
		t.Fatalf("vertical CutBand pieces = %d, want 2", len(got))
	}
	if !near(got[0].End(), vec.Vec2{X: 0, Y: -1}) || !near(got[1].Start(), vec.Vec2{X: 0, Y: 1}) {
		t.Errorf("cut ends = %v, %v", got[0].End(), got[1].Start())
	}

	if miss := vertical.CutBand(50, 2); len(miss) != 1 || miss[0].Length() != 20 {
		t.Errorf("band missing the path should keep it whole, got %d pieces", len(miss))
	}
}
