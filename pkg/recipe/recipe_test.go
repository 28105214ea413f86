package recipe

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/unolab/unolayout/pkg/errors"
	"github.com/unolab/unolayout/pkg/pdk"
)

const twoStraights = `
name = "demo"

[settings]
wg_width = 0.45

[[place]]
component = "straight"
name = "s1"
[place.params]
length = 10

[[place]]
component = "straight"
name = "s2"
at = [110, 0]
[place.params]
length = 10

[[route]]
from = "s1.o2"
to = "s2.o1"
`

const twoStraightsYAML = `
name: demo
settings:
  wg_width: 0.45
place:
  - component: straight
    name: s1
    params:
      length: 10
  - component: straight
    name: s2
    at: [110, 0]
    params:
      length: 10
route:
  - from: s1.o2
    to: s2.o1
`

func TestParseAndBuild(t *testing.T) {
	r, err := Parse([]byte(twoStraights), pdk.FormatTOML)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	cfg, err := r.Config(pdk.Default())
	if err != nil {
		t.Fatalf("Config() error = %v", err)
	}
	if cfg.WGWidth != 0.45 {
		t.Errorf("WGWidth = %v, want 0.45", cfg.WGWidth)
	}
	top, err := r.Build(cfg)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if top.Name != "demo" {
		t.Errorf("Name = %q", top.Name)
	}
	if len(top.Refs) != 3 {
		t.Fatalf("got %d refs, want two straights and a route", len(top.Refs))
	}
	if got := top.Refs[2].Cell.Length(); math.Abs(got-100) > 1e-9 {
		t.Errorf("route length = %v, want 100", got)
	}
	if _, h := top.Size(); math.Abs(h-0.45) > 1e-9 {
		t.Errorf("height = %v, want the recipe width 0.45", h)
	}
}

func TestParseYAMLMatchesTOML(t *testing.T) {
	a, err := Parse([]byte(twoStraights), pdk.FormatTOML)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Parse([]byte(twoStraightsYAML), pdk.FormatYAML)
	if err != nil {
		t.Fatalf("Parse(yaml) error = %v", err)
	}
	if !Equal(a, b) {
		ca, _ := a.Canonical()
		cb, _ := b.Canonical()
		t.Errorf("recipes differ:\n%s\n%s", ca, cb)
	}
}

func TestConnect(t *testing.T) {
	src := `
name = "chain"
[[place]]
component = "straight"
name = "a"
[[place]]
component = "straight"
name = "b"
connect = { port = "o1", to = "a.o2" }
`
	r, err := Parse([]byte(src), pdk.FormatTOML)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	top, err := r.Build(pdk.Default())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	end := top.Refs[1].Port("o2")
	if math.Abs(end.Center.X-20) > 1e-9 || math.Abs(end.Center.Y) > 1e-9 {
		t.Errorf("b.o2 at %v, want (20, 0)", end.Center)
	}
}

func TestMirrorRotate(t *testing.T) {
	src := `
name = "turned"
[[place]]
component = "straight"
rotate = 90
at = [5, 5]
[[place]]
component = "straight"
mirror = true
`
	r, err := Parse([]byte(src), pdk.FormatTOML)
	if err != nil {
		t.Fatal(err)
	}
	top, err := r.Build(pdk.Default())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	p := top.Refs[0].Port("o2")
	if math.Abs(p.Center.X-5) > 1e-9 || math.Abs(p.Center.Y-15) > 1e-9 || math.Abs(p.Orientation-90) > 1e-9 {
		t.Errorf("rotated o2 = %+v, want (5, 15) facing 90", p)
	}
	if x := top.Refs[1].Port("o2").Center.X; math.Abs(x+10) > 1e-9 {
		t.Errorf("mirrored o2 x = %v, want -10", x)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code errors.Code
	}{
		{"no places", `name = "x"`, errors.ErrCodeInvalidRecipe},
		{"bad name", "name = \"a b\"\n[[place]]\ncomponent = \"straight\"", errors.ErrCodeInvalidRecipe},
		{"unknown key", "name = \"x\"\ncolour = 1\n[[place]]\ncomponent = \"straight\"", errors.ErrCodeInvalidRecipe},
		{"unknown component", "name = \"x\"\n[[place]]\ncomponent = \"nope\"", errors.ErrCodeUnknownComponent},
		{"duplicate", "name = \"x\"\n[[place]]\ncomponent = \"straight\"\nname = \"a\"\n[[place]]\ncomponent = \"straight\"\nname = \"a\"", errors.ErrCodeInvalidRecipe},
		{"bad at", "name = \"x\"\n[[place]]\ncomponent = \"straight\"\nat = [1]", errors.ErrCodeInvalidRecipe},
		{"forward connect", "name = \"x\"\n[[place]]\ncomponent = \"straight\"\nconnect = { port = \"o1\", to = \"b.o1\" }\n[[place]]\ncomponent = \"straight\"\nname = \"b\"", errors.ErrCodeInvalidRecipe},
		{"connect with at", "name = \"x\"\n[[place]]\ncomponent = \"straight\"\nname = \"a\"\n[[place]]\ncomponent = \"straight\"\nat = [0, 0]\nconnect = { port = \"o1\", to = \"a.o2\" }", errors.ErrCodeInvalidRecipe},
		{"route unknown instance", "name = \"x\"\n[[place]]\ncomponent = \"straight\"\n[[route]]\nfrom = \"a.o1\"\nto = \"b.o1\"", errors.ErrCodeInvalidRecipe},
		{"route bad ref", "name = \"x\"\n[[place]]\ncomponent = \"straight\"\nname = \"a\"\n[[route]]\nfrom = \"a\"\nto = \"a.o1\"", errors.ErrCodeInvalidRecipe},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.src), pdk.FormatTOML); !errors.Is(err, tt.code) {
				t.Errorf("Parse() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestBuildErrors(t *testing.T) {
	src := "name = \"x\"\n[[place]]\ncomponent = \"straight\"\nname = \"a\"\n[place.params]\nlength = -1"
	r, err := Parse([]byte(src), pdk.FormatTOML)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Build(pdk.Default()); !errors.Is(err, errors.ErrCodeInvalidParameter) {
		t.Errorf("Build() error = %v, want INVALID_PARAMETER", err)
	}

	src = "name = \"x\"\n[[place]]\ncomponent = \"straight\"\nname = \"a\"\n[[route]]\nfrom = \"a.o1\"\nto = \"a.o9\""
	r, err = Parse([]byte(src), pdk.FormatTOML)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Build(pdk.Default()); !errors.Is(err, errors.ErrCodeUnknownPort) {
		t.Errorf("Build() error = %v, want UNKNOWN_PORT", err)
	}

	src = "name = \"x\"\n[settings]\nradius = -5\n[[place]]\ncomponent = \"straight\""
	r, err = Parse([]byte(src), pdk.FormatTOML)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Config(pdk.Default()); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Config() error = %v, want INVALID_CONFIG", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo.toml")
	if err := os.WriteFile(path, []byte(twoStraights), 0o644); err != nil {
		t.Fatal(err)
	}
	r, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(r.Place) != 2 {
		t.Errorf("got %d placements, want 2", len(r.Place))
	}
	if _, err := Load(filepath.Join(dir, "missing.yaml")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) error = %v, want FILE_NOT_FOUND", err)
	}
	if _, err := Load(filepath.Join(dir, "demo.json")); !errors.Is(err, errors.ErrCodeInvalidRecipe) {
		t.Errorf("Load(.json) error = %v, want INVALID_RECIPE", err)
	}
}

func TestScaffoldRoundTrip(t *testing.T) {
	cfg := pdk.Default()
	r, err := Scaffold("scaffold", []string{"straight", "pad_array"}, cfg)
	if err != nil {
		t.Fatalf("Scaffold() error = %v", err)
	}
	for _, format := range []pdk.Format{pdk.FormatTOML, pdk.FormatYAML} {
		var buf bytes.Buffer
		if err := Encode(&buf, r, format); err != nil {
			t.Fatalf("Encode(%s) error = %v", format, err)
		}
		back, err := Parse(buf.Bytes(), format)
		if err != nil {
			t.Fatalf("Parse(%s) error = %v\n%s", format, err, buf.String())
		}
		top, err := back.Build(cfg)
		if err != nil {
			t.Fatalf("Build(%s) error = %v", format, err)
		}
		if len(top.Refs) != 2 {
			t.Errorf("%s: got %d refs, want 2", format, len(top.Refs))
		}
	}
	if _, err := Scaffold("x", []string{"nope"}, cfg); !errors.Is(err, errors.ErrCodeUnknownComponent) {
		t.Errorf("Scaffold(nope) error = %v", err)
	}
}

func TestParseNestedParamTables(t *testing.T) {
	const src = `
name = "nested"

[[place]]
component = "pad_array"
name = "pads"
[place.params]
rows = 1
columns = 2
[place.params.pad]
component = "rect_pad"

[[place]]
component = "awg"
name = "awg"
at = [0, 500]
[place.params]
n_a = 16
[place.params.fsp]
r_a = 60.0
`
	r, err := Parse([]byte(src), pdk.FormatTOML)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	pad, ok := r.Place[0].Params["pad"].(map[string]any)
	if !ok || pad["component"] != "rect_pad" {
		t.Errorf("pad_array child = %#v, want rect_pad", r.Place[0].Params["pad"])
	}
	fsp, ok := r.Place[1].Params["fsp"].(map[string]any)
	if !ok || fsp["r_a"] != 60.0 {
		t.Errorf("awg fsp = %#v, want r_a 60", r.Place[1].Params["fsp"])
	}

	top, err := (&Recipe{Name: "pads", Place: r.Place[:1]}).Build(pdk.Default())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(top.Refs) != 1 {
		t.Errorf("got %d refs, want 1", len(top.Refs))
	}
}

func TestParseRejectsUnknownKeysOutsideParams(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"placement", "name = \"x\"\n[[place]]\ncomponent = \"straight\"\ncolour = \"red\"\n"},
		{"top level", "name = \"x\"\nauthor = \"me\"\n[[place]]\ncomponent = \"straight\"\n"},
		{"route", "name = \"x\"\n[[place]]\ncomponent = \"straight\"\nname = \"s\"\n[[route]]\nfrom = \"s.o1\"\nto = \"s.o2\"\nradius = 5\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.src), pdk.FormatTOML); !errors.Is(err, errors.ErrCodeInvalidRecipe) {
				t.Errorf("Parse() error = %v, want INVALID_RECIPE", err)
			}
		})
	}
}
