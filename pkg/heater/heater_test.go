package heater

import (
	"math"
	"testing"

	"seehuhn.de/go/geom/vec"

	"github.com/unolab/unolayout/pkg/errors"
	"github.com/unolab/unolayout/pkg/layout"
	"github.com/unolab/unolayout/pkg/pdk"
)

func near(a, b vec.Vec2) bool { return a.Sub(b).Length() < 1e-6 }

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestRectHeater(t *testing.T) {
	cfg := pdk.Default()
	c, err := RectHeater(cfg, DefaultRectHeaterParams())
	if err != nil {
		t.Fatalf("RectHeater() error = %v", err)
	}
	if w, h := c.Size(); !approx(w, 10) || !approx(h, 50) {
		t.Errorf("size = %v × %v, want 10 × 50", w, h)
	}
	for _, tt := range []struct {
		name   string
		center vec.Vec2
		orient float64
	}{
		{"e0", vec.Vec2{Y: -25}, 270},
		{"e1", vec.Vec2{Y: 25}, 90},
	} {
		p := c.Port(tt.name)
		if !near(p.Center, tt.center) || !approx(p.Orientation, tt.orient) {
			t.Errorf("%s = %v facing %v, want %v facing %v", tt.name, p.Center, p.Orientation, tt.center, tt.orient)
		}
		if p.Width != cfg.RouteWidth || p.Layer != cfg.Layers.Routing || p.Type != layout.Electrical {
			t.Errorf("%s = %+v, want a default routing port", tt.name, p)
		}
	}
	if got := c.Layers(); len(got) != 1 || got[0] != cfg.Layers.Heater {
		t.Errorf("layers = %v, want only HEATER", got)
	}

	if _, err := RectHeater(cfg, RectHeaterParams{Length: 0, Width: 1}); !errors.Is(err, errors.ErrCodeInvalidParameter) {
		t.Errorf("RectHeater(length 0) error = %v, want INVALID_PARAMETER", err)
	}
}

func TestRectPad(t *testing.T) {
	cfg := pdk.Default()
	c, err := RectPad(cfg, RectPadParams{Width: 100, Height: 80, OpeningInset: 10, RouteWidth: 12})
	if err != nil {
		t.Fatalf("RectPad() error = %v", err)
	}
	p := c.Port("e0")
	if !near(p.Center, vec.Vec2{Y: 40}) || p.Orientation != 90 || p.Width != 12 {
		t.Errorf("e0 = %+v, want (0,40) facing 90 width 12", p)
	}
	opening := c.Extract(cfg.Layers.Pad)
	if w, h := opening.Size(); !approx(w, 90) || !approx(h, 70) {
		t.Errorf("opening = %v × %v, want 90 × 70", w, h)
	}

	tests := []struct {
		name string
		p    RectPadParams
	}{
		{"zero width", RectPadParams{Width: 0, Height: 10}},
		{"inset too large", RectPadParams{Width: 50, Height: 40, OpeningInset: 40}},
		{"negative inset", RectPadParams{Width: 50, Height: 40, OpeningInset: -1}},
	}
	for _, tt := range tests {
		if _, err := RectPad(cfg, tt.p); !errors.Is(err, errors.ErrCodeInvalidParameter) {
			t.Errorf("RectPad(%s) error = %v, want INVALID_PARAMETER", tt.name, err)
		}
	}
}

func TestPadArray(t *testing.T) {
	cfg := pdk.Default()
	c, err := PadArray(cfg, nil, PadArrayParams{Spacing: [2]float64{150, 300}, Columns: 3, Rows: 2, Rotation: 180})
	if err != nil {
		t.Fatalf("PadArray() error = %v", err)
	}
	if got := len(c.Ports()); got != 6 {
		t.Fatalf("ports = %d, want 6", got)
	}
	// Rotated pads expose e0 on their south edge.
	p := c.Port("e23")
	if !near(p.Center, vec.Vec2{X: 300, Y: 300 - 75}) || !approx(p.Orientation, 270) {
		t.Errorf("e23 = %v facing %v, want (300,225) facing 270", p.Center, p.Orientation)
	}
	if len(c.Refs) != 6 {
		t.Errorf("refs = %d, want 6", len(c.Refs))
	}

	for _, bad := range []PadArrayParams{
		{Columns: 0, Rows: 1},
		{Spacing: [2]float64{150, 150}, Columns: 11, Rows: 1},
		{Spacing: [2]float64{150, 150}, Columns: 1, Rows: 10},
	} {
		if _, err := PadArray(cfg, nil, bad); !errors.Is(err, errors.ErrCodeInvalidParameter) {
			t.Errorf("PadArray(%d×%d) error = %v, want INVALID_PARAMETER", bad.Rows, bad.Columns, err)
		}
	}

	// The largest grid still names every pad uniquely.
	big, err := PadArray(cfg, nil, PadArrayParams{Spacing: [2]float64{150, 150}, Columns: 9, Rows: 9})
	if err != nil {
		t.Fatalf("PadArray(9×9) error = %v", err)
	}
	if got := len(big.Ports()); got != 81 {
		t.Errorf("PadArray(9×9) ports = %d, want 81", got)
	}
	if _, err := PadArray(cfg, layout.New("bare"), DefaultPadArrayParams()); !errors.Is(err, errors.ErrCodeUnknownPort) {
		t.Errorf("PadArray(bare pad) error = %v, want UNKNOWN_PORT in chain", err)
	}
}

func TestSnakeHeater(t *testing.T) {
	cfg := pdk.Default()
	tests := []struct {
		name       string
		p          SnakeHeaterParams
		wantLength float64
		wantE1     vec.Vec2
		wantE1Dir  float64
	}{
		{
			name:       "odd passes",
			p:          DefaultSnakeHeaterParams(),
			wantLength: 5*1000 + 4*25 + 2*50,
			wantE1:     vec.Vec2{X: 50, Y: 550},
			wantE1Dir:  90,
		},
		{
			name:       "even passes",
			p:          SnakeHeaterParams{Length: 100, N: 2, Spacing: 20, Width: 5, ExtraEnds: 10},
			wantLength: 2*100 + 20 + 2*10,
			wantE1:     vec.Vec2{X: 10, Y: -60},
			wantE1Dir:  270,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := SnakeHeater(cfg, tt.p)
			if err != nil {
				t.Fatalf("SnakeHeater() error = %v", err)
			}
			if !approx(c.Length(), tt.wantLength) {
				t.Errorf("length = %v, want %v", c.Length(), tt.wantLength)
			}
			e0 := c.Port("e0")
			wantE0 := vec.Vec2{X: -tt.p.Spacing * float64(tt.p.N-1) / 2, Y: -tt.p.Length/2 - tt.p.ExtraEnds}
			if !near(e0.Center, wantE0) || !approx(e0.Orientation, 270) {
				t.Errorf("e0 = %v facing %v, want %v facing 270", e0.Center, e0.Orientation, wantE0)
			}
			e1 := c.Port("e1")
			if !near(e1.Center, tt.wantE1) || !approx(e1.Orientation, tt.wantE1Dir) {
				t.Errorf("e1 = %v facing %v, want %v facing %v", e1.Center, e1.Orientation, tt.wantE1, tt.wantE1Dir)
			}
			if got := c.Info["squares"]; !approx(got, tt.wantLength/tt.p.Width) {
				t.Errorf("squares = %v", got)
			}
			if len(c.Extract(cfg.Layers.Annotation).Polygons) == 0 {
				t.Error("missing annotation text")
			}
		})
	}
}

func TestSnakeHeaterRotation(t *testing.T) {
	cfg := pdk.Default()
	p := DefaultSnakeHeaterParams()
	p.Rotation = 90
	c, err := SnakeHeater(cfg, p)
	if err != nil {
		t.Fatal(err)
	}
	e0 := c.Port("e0")
	if !near(e0.Center, vec.Vec2{X: 550, Y: -50}) || !approx(e0.Orientation, 0) {
		t.Errorf("e0 = %v facing %v, want (550,-50) facing 0", e0.Center, e0.Orientation)
	}
}

func TestSnakeHeaterInvalid(t *testing.T) {
	cfg := pdk.Default()
	for _, tt := range []struct {
		name string
		mod  func(*SnakeHeaterParams)
	}{
		{"no passes", func(p *SnakeHeaterParams) { p.N = 0 }},
		{"zero width", func(p *SnakeHeaterParams) { p.Width = 0 }},
		{"overlapping passes", func(p *SnakeHeaterParams) { p.Spacing = p.Width }},
		{"negative ends", func(p *SnakeHeaterParams) { p.ExtraEnds = -1 }},
	} {
		p := DefaultSnakeHeaterParams()
		tt.mod(&p)
		if _, err := SnakeHeater(cfg, p); !errors.Is(err, errors.ErrCodeInvalidParameter) {
			t.Errorf("SnakeHeater(%s) error = %v, want INVALID_PARAMETER", tt.name, err)
		}
	}
}
