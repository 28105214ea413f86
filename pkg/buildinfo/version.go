// Package buildinfo holds the version stamped into the binary at link time:
//
//	go build -ldflags "-X github.com/unolab/unolayout/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/unolab/unolayout/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/unolab/unolayout/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Version is part of every artifact cache key, so masks built by an older
// generator are never served to a newer one.
package buildinfo

import (
	"fmt"
	"strings"
)

var (
	// Version is the release tag, "dev" for local builds.
	Version = "dev"
	// Commit is the git SHA the binary was built from.
	Commit = "none"
	// Date is the UTC build time.
	Date = "unknown"
)

// Generator identifies this build in artifacts, e.g. "unolayout v1.2.0
// (3f2a9c1)". The commit is shortened to seven characters.
func Generator() string {
	if Commit == "none" || Commit == "" {
		return "unolayout " + Version
	}
	commit := Commit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	return fmt.Sprintf("unolayout %s (%s)", Version, commit)
}

// Template is the cobra version template.
func Template() string {
	var b strings.Builder
	fmt.Fprintf(&b, "{{.Name}} %s\n", Version)
	fmt.Fprintf(&b, "  commit: %s\n", Commit)
	fmt.Fprintf(&b, "  built:  %s\n", Date)
	return b.String()
}
