package registry

import (
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/unolab/unolayout/pkg/errors"
	"github.com/unolab/unolayout/pkg/pdk"
)

func TestNamesUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, s := range All {
		if seen[s.Name] {
			t.Errorf("duplicate component %q", s.Name)
		}
		seen[s.Name] = true
		if s.Doc == "" || s.Group == "" {
			t.Errorf("%s: missing doc or group", s.Name)
		}
	}
	if got := Names(); len(got) != len(All) {
		t.Errorf("Names() has %d entries, want %d", len(got), len(All))
	}
}

func TestFind(t *testing.T) {
	if Find("racetrack") == nil {
		t.Error("Find(racetrack) = nil")
	}
	if Find("nope") != nil {
		t.Error("Find(nope) != nil")
	}
	if _, err := Lookup("nope"); !errors.Is(err, errors.ErrCodeUnknownComponent) {
		t.Errorf("Lookup(nope) error = %v, want UNKNOWN_COMPONENT", err)
	}
}

func TestBuild(t *testing.T) {
	cfg := pdk.Default()
	tests := []struct {
		name      string
		component string
		params    string
		length    float64
	}{
		{"defaults", "straight", "", 10},
		{"null", "straight", "null", 10},
		{"override", "straight", `{"length": 50}`, 50},
		{"partial keeps defaults", "racetrack", `{"heater": false}`, 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Build(cfg, tt.component, []byte(tt.params))
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if got := c.Length(); math.Abs(got-tt.length) > 1e-9 {
				t.Errorf("length = %v, want %v", got, tt.length)
			}
		})
	}
}

func TestBuildErrors(t *testing.T) {
	cfg := pdk.Default()
	tests := []struct {
		name      string
		component string
		params    string
		code      errors.Code
	}{
		{"unknown component", "nope", "", errors.ErrCodeUnknownComponent},
		{"unknown key", "straight", `{"lenght": 5}`, errors.ErrCodeInvalidParameter},
		{"wrong type", "straight", `{"length": "long"}`, errors.ErrCodeInvalidParameter},
		{"generator rejects", "straight", `{"length": -1}`, errors.ErrCodeInvalidParameter},
		{"unknown child", "generic_2port", `{"dut": {"component": "nope"}}`, errors.ErrCodeUnknownComponent},
		{"bad child params", "generic_2port", `{"dut": {"component": "straight", "params": {"x": 1}}}`, errors.ErrCodeInvalidParameter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(cfg, tt.component, []byte(tt.params))
			if !errors.Is(err, tt.code) {
				t.Errorf("Build() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestBuildNested(t *testing.T) {
	cfg := pdk.Default()
	c, err := Build(cfg, "generic_2port", []byte(`{"dut": {"component": "straight", "params": {"length": 100}}}`))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	want := 300 + 100 + 1200 - 50 + math.Pi*25/2
	if got := c.Length(); math.Abs(got-want) > 0.5 {
		t.Errorf("length = %v, want %v", got, want)
	}
	if !strings.HasPrefix(c.Name, "1589umDelay_") {
		t.Errorf("Name = %q", c.Name)
	}

	// The child key is optional; the default device is used.
	if _, err := Build(cfg, "generic_3port", []byte(`{"after_bend": true, "bundle": true}`)); err != nil {
		t.Errorf("Build(generic_3port) error = %v", err)
	}
}

func TestDefaultParams(t *testing.T) {
	s := Find("straight")
	got, err := s.DefaultParams()
	if err != nil {
		t.Fatalf("DefaultParams() error = %v", err)
	}
	if diff := cmp.Diff(map[string]any{"length": 10.0}, got); diff != "" {
		t.Errorf("DefaultParams() mismatch (-want +got):\n%s", diff)
	}

	s = Find("pad_array")
	got, err = s.DefaultParams()
	if err != nil {
		t.Fatalf("DefaultParams() error = %v", err)
	}
	child, ok := got["pad"].(map[string]any)
	if !ok || child["component"] != "rect_pad" {
		t.Errorf("pad_array defaults = %v, want a rect_pad child", got)
	}
}

func TestGroups(t *testing.T) {
	groups := Groups()
	total := 0
	for name, specs := range groups {
		total += len(specs)
		for i := 1; i < len(specs); i++ {
			if specs[i-1].Name > specs[i].Name {
				t.Errorf("group %s not sorted", name)
			}
		}
	}
	if total != len(All) {
		t.Errorf("groups hold %d specs, want %d", total, len(All))
	}
}
