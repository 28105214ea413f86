package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/unolab/unolayout/pkg/cache"
	"github.com/unolab/unolayout/pkg/errors"
	"github.com/unolab/unolayout/pkg/gds"
	"github.com/unolab/unolayout/pkg/observability"
	"github.com/unolab/unolayout/pkg/recipe"
)

const chipTOML = `
name = "chip"

[[place]]
component = "straight"
name = "a"
[place.params]
length = 20

[[place]]
component = "straight"
name = "b"
at = [120, 0]
[place.params]
length = 20

[[route]]
from = "a.o2"
to = "b.o1"
`

func writeRecipe(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func quietRunner(c cache.Cache) *Runner {
	return NewRunner(c, nil, log.New(&bytes.Buffer{}))
}

func fixedTime() time.Time {
	return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"gds", false},
		{"json", false},
		{"svg", true},
		{"GDS", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s, want INVALID_FORMAT", tt.format, errors.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"gds", "json"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"gds", "oasis"}); err == nil {
		t.Error("Invalid format should fail")
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsValidateForLoad(t *testing.T) {
	rec := &recipe.Recipe{Name: "x"}
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"missing", Options{}, true},
		{"both", Options{RecipePath: "a.toml", Recipe: rec}, true},
		{"path", Options{RecipePath: "a.toml"}, false},
		{"recipe", Options{Recipe: rec}, false},
		{"control character", Options{RecipePath: "a\x00.toml"}, true},
		{"bad config path", Options{Recipe: rec, ConfigPath: "x\n.toml"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateForLoad()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateForLoad() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && tt.opts.Logger == nil {
				t.Error("ValidateForLoad should set a logger")
			}
		})
	}
}

func TestSetExportDefaults(t *testing.T) {
	opts := Options{}
	opts.SetExportDefaults()

	if diff := cmp.Diff([]string{FormatGDS}, opts.Formats); diff != "" {
		t.Errorf("Formats mismatch (-want +got):\n%s", diff)
	}
	if opts.Unit != DefaultUnit || opts.Precision != DefaultPrecision {
		t.Errorf("Unit/Precision = %g/%g, want %g/%g", opts.Unit, opts.Precision, DefaultUnit, DefaultPrecision)
	}
}

func TestValidateForExportPrecision(t *testing.T) {
	opts := Options{Unit: 1e-9, Precision: 1e-6}
	if err := opts.ValidateForExport(); !errors.Is(err, errors.ErrCodeInvalidParameter) {
		t.Errorf("ValidateForExport() error = %v, want INVALID_PARAMETER", err)
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{RecipePath: "chip.toml"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}
	formats := opts.Formats
	opts.Formats = []string{"bogus"}
	// Second call is a no-op, so the bogus format survives.
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}
	if len(formats) != 1 || opts.Formats[0] != "bogus" {
		t.Errorf("second call re-validated: %v", opts.Formats)
	}
}

func TestExecute(t *testing.T) {
	path := writeRecipe(t, "chip.toml", chipTOML)
	r := quietRunner(nil)

	res, err := r.Execute(context.Background(), Options{
		RecipePath: path,
		Formats:    []string{FormatGDS, FormatJSON},
		Timestamp:  fixedTime(),
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Top == nil || res.Top.Name != "chip" {
		t.Fatalf("Top = %v, want chip", res.Top)
	}
	if res.Stats.Placements != 2 {
		t.Errorf("Placements = %d, want 2", res.Stats.Placements)
	}
	if res.CacheInfo.ExportHit {
		t.Error("NullCache run should not report a cache hit")
	}

	lib, err := gds.Read(bytes.NewReader(res.Artifacts[FormatGDS]))
	if err != nil {
		t.Fatalf("gds.Read() error = %v", err)
	}
	if lib.Name != "chip" {
		t.Errorf("LIBNAME = %q, want chip", lib.Name)
	}
	if top, err := lib.Top(); err != nil || top != "chip" {
		t.Errorf("Top() = %q, %v", top, err)
	}

	var s Summary
	if err := json.Unmarshal(res.Artifacts[FormatJSON], &s); err != nil {
		t.Fatalf("summary is not JSON: %v", err)
	}
	if s.Name != "chip" || s.Cells != res.Stats.Cells || s.GDS == nil || s.Generator == "" {
		t.Errorf("summary = %+v", s)
	}
	if s.BBox[0] != 0 || s.BBox[2] != 140 {
		t.Errorf("summary bbox x = [%g, %g], want [0, 140]", s.BBox[0], s.BBox[2])
	}
}

func TestExecuteInlineRecipeAndConfig(t *testing.T) {
	cfgPath := writeRecipe(t, "pdk.yaml", "wg_width: 0.8\n")
	rec := &recipe.Recipe{
		Name:  "inline",
		Place: []recipe.Placement{{Component: "straight", Params: map[string]any{"length": 5.0}}},
	}
	res, err := quietRunner(nil).Execute(context.Background(), Options{
		Recipe:     rec,
		ConfigPath: cfgPath,
		Formats:    []string{FormatJSON},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	b := res.Top.BBox()
	if h := b.URy - b.LLy; h < 0.79 || h > 0.81 {
		t.Errorf("waveguide height = %g, want 0.8 from the config file", h)
	}
	if _, ok := res.Artifacts[FormatGDS]; ok {
		t.Error("gds artifact produced although only json was requested")
	}
}

func TestExecuteErrors(t *testing.T) {
	ctx := context.Background()
	r := quietRunner(nil)

	if _, err := r.Execute(ctx, Options{}); err == nil {
		t.Error("Execute(no recipe) should fail")
	}

	missing := filepath.Join(t.TempDir(), "nope.toml")
	if _, err := r.Execute(ctx, Options{RecipePath: missing}); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Execute(missing) error = %v, want FILE_NOT_FOUND", err)
	}

	bad := writeRecipe(t, "bad.toml", `
name = "bad"
[[place]]
component = "straight"
[place.params]
length = -1
`)
	if _, err := r.Execute(ctx, Options{RecipePath: bad}); !errors.Is(err, errors.ErrCodeInvalidParameter) {
		t.Errorf("Execute(negative length) error = %v, want INVALID_PARAMETER", err)
	}

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	ok := writeRecipe(t, "ok.toml", chipTOML)
	if _, err := r.Execute(cctx, Options{RecipePath: ok}); err == nil {
		t.Error("Execute(cancelled) should fail")
	}
}

func TestExecuteCache(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := quietRunner(fc)
	path := writeRecipe(t, "chip.toml", chipTOML)
	opts := Options{RecipePath: path, Formats: []string{FormatGDS, FormatJSON}, Timestamp: fixedTime()}

	first, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("first Execute() error = %v", err)
	}
	second, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("second Execute() error = %v", err)
	}
	if !second.CacheInfo.ExportHit || second.Top != nil {
		t.Errorf("second run: hit %v, top %v; want a cache hit without a build", second.CacheInfo.ExportHit, second.Top)
	}
	if first.BuildHash != second.BuildHash {
		t.Error("build hash changed between identical runs")
	}
	if !bytes.Equal(first.Artifacts[FormatGDS], second.Artifacts[FormatGDS]) {
		t.Error("cached gds differs from the built one")
	}

	opts.Refresh = true
	third, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("refresh Execute() error = %v", err)
	}
	if third.CacheInfo.ExportHit {
		t.Error("Refresh should bypass the cache")
	}

	opts.Refresh = false
	opts.Flatten = true
	flat, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("flatten Execute() error = %v", err)
	}
	if flat.CacheInfo.ExportHit {
		t.Error("Flatten should use its own cache entry")
	}
}

func TestBuildHashTracksSettings(t *testing.T) {
	r := quietRunner(nil)
	a := &recipe.Recipe{Name: "a", Place: []recipe.Placement{{Component: "straight"}}}
	w := 0.6
	b := &recipe.Recipe{Name: "a", Settings: a.Settings, Place: a.Place}
	b.Settings.WGWidth = &w

	hashOf := func(rec *recipe.Recipe) string {
		_, cfg, err := Load(Options{Recipe: rec})
		if err != nil {
			t.Fatal(err)
		}
		h, err := r.BuildHash(rec, cfg, Options{})
		if err != nil {
			t.Fatal(err)
		}
		return h
	}
	if hashOf(a) == hashOf(b) {
		t.Error("settings change should change the build hash")
	}
}

func TestFlattenExport(t *testing.T) {
	path := writeRecipe(t, "chip.toml", chipTOML)
	rec, cfg, err := Load(Options{RecipePath: path})
	if err != nil {
		t.Fatal(err)
	}
	top, err := rec.Build(cfg)
	if err != nil {
		t.Fatal(err)
	}

	count := func(flatten bool) int {
		arts, err := Export(top, "lib", Options{Flatten: flatten, Timestamp: fixedTime()})
		if err != nil {
			t.Fatalf("Export(flatten=%v) error = %v", flatten, err)
		}
		lib, err := gds.Read(bytes.NewReader(arts[FormatGDS]))
		if err != nil {
			t.Fatal(err)
		}
		return len(lib.Order)
	}
	if n := count(false); n < 2 {
		t.Errorf("hierarchical export has %d structures, want several", n)
	}
	if n := count(true); n != 1 {
		t.Errorf("flat export has %d structures, want 1", n)
	}

	flat := flattenCell(top)
	if len(flat.Refs) != 0 || len(flat.Polygons) != len(top.Flatten()) {
		t.Errorf("flattenCell: %d refs, %d polygons", len(flat.Refs), len(flat.Polygons))
	}
}

func TestSummarizePorts(t *testing.T) {
	rec := &recipe.Recipe{Name: "p", Place: []recipe.Placement{{Component: "straight"}}}
	_, cfg, err := Load(Options{Recipe: rec})
	if err != nil {
		t.Fatal(err)
	}
	top, err := rec.Build(cfg)
	if err != nil {
		t.Fatal(err)
	}
	top.AddPorts(top.Refs[0].Ports(), "")
	s := Summarize(top)
	if len(s.Ports) != 2 || s.Ports[0].Name != "o1" || s.Ports[1].X != 10 {
		t.Errorf("ports = %+v", s.Ports)
	}
}

type countingHooks struct {
	observability.NoopPipelineHooks
	loads, builds, exports int
}

func (h *countingHooks) OnLoadComplete(context.Context, string, int, time.Duration, error) {
	h.loads++
}

func (h *countingHooks) OnBuildComplete(context.Context, string, int, time.Duration, error) {
	h.builds++
}

func (h *countingHooks) OnExportComplete(context.Context, []string, int, time.Duration, error) {
	h.exports++
}

type countingCache struct {
	observability.NoopCacheHooks
	hits, misses, sets int
}

func (h *countingCache) OnCacheHit(context.Context, string)      { h.hits++ }
func (h *countingCache) OnCacheMiss(context.Context, string)     { h.misses++ }
func (h *countingCache) OnCacheSet(context.Context, string, int) { h.sets++ }

func TestExecuteHooks(t *testing.T) {
	defer observability.Reset()
	ph := &countingHooks{}
	ch := &countingCache{}
	observability.SetPipelineHooks(ph)
	observability.SetCacheHooks(ch)

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := quietRunner(fc)
	opts := Options{RecipePath: writeRecipe(t, "chip.toml", chipTOML)}
	for i := 0; i < 2; i++ {
		if _, err := r.Execute(context.Background(), opts); err != nil {
			t.Fatal(err)
		}
	}

	if ph.loads != 2 || ph.builds != 1 || ph.exports != 1 {
		t.Errorf("pipeline hooks: loads %d builds %d exports %d, want 2 1 1", ph.loads, ph.builds, ph.exports)
	}
	if ch.misses != 1 || ch.sets != 1 || ch.hits != 1 {
		t.Errorf("cache hooks: hits %d misses %d sets %d, want 1 1 1", ch.hits, ch.misses, ch.sets)
	}
}
