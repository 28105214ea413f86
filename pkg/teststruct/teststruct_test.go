package teststruct

import (
	"math"
	"testing"

	"github.com/unolab/unolayout/pkg/errors"
	"github.com/unolab/unolayout/pkg/layout"
	"github.com/unolab/unolayout/pkg/pdk"
)

func centers(c *layout.Component) []float64 {
	var xs []float64
	for _, r := range c.Refs {
		xs = append(xs, r.Center().X)
	}
	return xs
}

func TestBoschGapTest(t *testing.T) {
	cfg := pdk.Default()
	c, err := BoschGapTest(cfg, BoschGapParams{Widths: []float64{10, 20}, DX: 1000, DY: 1000, Length: 500, Bridge: 50})
	if err != nil {
		t.Fatalf("BoschGapTest() error = %v", err)
	}
	want := []float64{1005, 1070}
	got := centers(c)
	if len(got) != len(want) {
		t.Fatalf("got %d trenches, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("trench %d center x = %v, want %v", i, got[i], want[i])
		}
	}
	if l := c.Layers(); len(l) != 1 || l[0] != cfg.Layers.Bosch {
		t.Errorf("Layers() = %v, want [BOSCH]", l)
	}

	bad := []BoschGapParams{
		{DX: 1000, DY: 1000, Length: 500},
		{Widths: []float64{10, -1}, Length: 500},
		{Widths: []float64{10}, Length: 0},
	}
	for _, p := range bad {
		if _, err := BoschGapTest(cfg, p); !errors.Is(err, errors.ErrCodeInvalidParameter) {
			t.Errorf("BoschGapTest(%+v) error = %v, want INVALID_PARAMETER", p, err)
		}
	}
}

func TestBoschBridgeTest(t *testing.T) {
	cfg := pdk.Default()
	p := DefaultBoschBridgeParams()
	p.Bridges = []float64{10, 20}
	c, err := BoschBridgeTest(cfg, p)
	if err != nil {
		t.Fatalf("BoschBridgeTest() error = %v", err)
	}
	var trenches, guides []*layout.Reference
	for _, r := range c.Refs {
		if len(r.Cell.Refs) == 0 {
			trenches = append(trenches, r)
		} else {
			guides = append(guides, r)
		}
	}
	if len(trenches) != 3 || len(guides) != 2 {
		t.Fatalf("got %d trenches and %d waveguides, want 3 and 2", len(trenches), len(guides))
	}
	for i, want := range []float64{3100, 3210, 3330} {
		if x := trenches[i].Center().X; math.Abs(x-want) > 1e-9 {
			t.Errorf("trench %d center x = %v, want %v", i, x, want)
		}
	}
	// Each waveguide turns north at the middle of its bridge and so ends
	// at the bridge x on the south edge.
	for i, want := range []float64{3155, 3270} {
		xmax := guides[i].XMax()
		if xmax < want || xmax > want+p.Width {
			t.Errorf("waveguide %d spans to x = %v, want just past %v", i, xmax, want)
		}
	}
	for i, g := range guides {
		if l := g.Cell.Length(); !(l > 0) {
			t.Errorf("waveguide %d length = %v", i, l)
		}
	}
	if guides[1].YMax() <= guides[0].YMax() {
		t.Errorf("second waveguide should start one edge pitch higher")
	}

	p.Bridges = nil
	if _, err := BoschBridgeTest(cfg, p); !errors.Is(err, errors.ErrCodeInvalidParameter) {
		t.Errorf("BoschBridgeTest(no bridges) error = %v, want INVALID_PARAMETER", err)
	}
}

func TestRoutingTestStructure(t *testing.T) {
	cfg := pdk.Default()
	c, err := RoutingTestStructure(cfg, DefaultPadPairParams())
	if err != nil {
		t.Fatalf("RoutingTestStructure() error = %v", err)
	}
	if got, want := c.Length(), 1000.0-150; math.Abs(got-want) > 1e-9 {
		t.Errorf("trace length = %v, want %v", got, want)
	}
	if len(c.Refs) != 3 {
		t.Errorf("got %d refs, want two pads and a trace", len(c.Refs))
	}
	if _, err := RoutingTestStructure(cfg, PadPairParams{PadSep: 100}); !errors.Is(err, errors.ErrCodeInvalidParameter) {
		t.Errorf("RoutingTestStructure(overlap) error = %v, want INVALID_PARAMETER", err)
	}
}

func TestHeaterTestStructures(t *testing.T) {
	cfg := pdk.Default()
	tests := []struct {
		name   string
		build  func(*pdk.Config, HeaterTestParams) (*layout.Component, error)
		p      HeaterTestParams
		length float64
	}{
		{"straight", StraightHeaterTestStructure, DefaultStraightHeaterTestParams(), 500},
		{"snake", SnakeHeaterTestStructure, DefaultSnakeHeaterTestParams(), 7*500 + 6*25 + 2*50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := tt.build(cfg, tt.p)
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if len(c.Refs) != 5 {
				t.Errorf("got %d refs, want pads, heater and two traces", len(c.Refs))
			}
			if got := c.Length(); math.Abs(got-tt.length) > 1e-6 {
				t.Errorf("heater length = %v, want %v", got, tt.length)
			}
			_, h := c.Size()
			if h < tt.p.PadSep {
				t.Errorf("height = %v, want the pads %v apart", h, tt.p.PadSep)
			}
		})
	}

	p := DefaultSnakeHeaterTestParams()
	p.PadSep = 500
	if _, err := SnakeHeaterTestStructure(cfg, p); !errors.Is(err, errors.ErrCodeInvalidParameter) {
		t.Errorf("SnakeHeaterTestStructure(pad_sep 500) error = %v, want INVALID_PARAMETER", err)
	}
	p = DefaultSnakeHeaterTestParams()
	p.N = 0
	if _, err := SnakeHeaterTestStructure(cfg, p); err == nil {
		t.Error("SnakeHeaterTestStructure(n 0) error = nil")
	}
}
