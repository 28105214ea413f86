package buildinfo

import (
	"strings"
	"testing"
)

func TestGenerator(t *testing.T) {
	defer func(v, c string) { Version, Commit = v, c }(Version, Commit)

	tests := []struct {
		version, commit string
		want            string
	}{
		{"dev", "none", "unolayout dev"},
		{"v1.2.0", "", "unolayout v1.2.0"},
		{"v1.2.0", "3f2a9c1e77d0", "unolayout v1.2.0 (3f2a9c1)"},
		{"v1.2.0", "abc", "unolayout v1.2.0 (abc)"},
	}
	for _, tt := range tests {
		Version, Commit = tt.version, tt.commit
		if got := Generator(); got != tt.want {
			t.Errorf("Generator() with %q/%q = %q, want %q", tt.version, tt.commit, got, tt.want)
		}
	}
}

func TestTemplate(t *testing.T) {
	got := Template()
	for _, want := range []string{"{{.Name}}", Version, Commit, Date} {
		if !strings.Contains(got, want) {
			t.Errorf("Template() = %q, missing %q", got, want)
		}
	}
}
