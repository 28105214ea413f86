// Package cache stores build artifacts (GDS streams, JSON summaries) keyed
// by the content of the recipe that produced them.
//
// Three backends implement [Cache]:
//
//   - [FileCache]: one JSON entry per key below a directory (CLI default)
//   - [RedisCache]: a shared Redis server, for build machines that share
//     results
//   - [NullCache]: stores nothing (--no-cache)
//
// Keys come from a [Keyer] so that callers never hand-assemble them.
// [ScopedKeyer] prefixes every key, which lets several projects share one
// Redis database.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// TTLs for cached entries.
const (
	// TTLArtifact bounds how long a rendered artifact is reused. Builds are
	// deterministic for a given recipe and tool version, so this is long.
	TTLArtifact = 30 * 24 * time.Hour
)

// Cache is a byte store with expiry.
type Cache interface {
	// Get returns the stored data and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the backend.
	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// BuildKey identifies one build of a recipe.
	BuildKey(recipeHash string, opts BuildKeyOpts) string
	// ArtifactKey identifies one output format of a build.
	ArtifactKey(buildHash string, opts ArtifactKeyOpts) string
}

// BuildKeyOpts holds everything besides the recipe that changes the
// built geometry.
type BuildKeyOpts struct {
	// ConfigHash is the hash of the process overrides file, if any.
	ConfigHash string `json:"config_hash,omitempty"`
	// Version is the tool version; generator changes invalidate old
	// entries.
	Version string `json:"version"`
}

// ArtifactKeyOpts holds the output settings of one artifact.
type ArtifactKeyOpts struct {
	Format    string  `json:"format"`
	LibName   string  `json:"lib_name,omitempty"`
	Unit      float64 `json:"unit,omitempty"`
	Precision float64 `json:"precision,omitempty"`
	// Flatten requests a single-structure GDS.
	Flatten bool `json:"flatten,omitempty"`
}

// DefaultKeyer hashes key parts with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// BuildKey returns "build:<hash>".
func (DefaultKeyer) BuildKey(recipeHash string, opts BuildKeyOpts) string {
	return hashKey("build", recipeHash, opts)
}

// ArtifactKey returns "artifact:<hash>".
func (DefaultKeyer) ArtifactKey(buildHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", buildHash, opts)
}

// hashKey returns "<prefix>:<sha256 of the JSON-encoded parts>".
func hashKey(prefix string, parts ...any) string {
	h := sha256.New()
	// Encoding plain structs and strings cannot fail.
	_ = json.NewEncoder(h).Encode(parts)
	return prefix + ":" + hex.EncodeToString(h.Sum(nil))
}

// Hash returns the hex SHA-256 of data. Callers hash canonical recipe and
// settings encodings with it before building keys.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// NullCache stores nothing; every Get is a miss. The CLI uses it for
// --no-cache and when no cache directory can be determined.
type NullCache struct{}

// NewNullCache returns a cache that stores nothing.
func NewNullCache() Cache { return &NullCache{} }

func (*NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (*NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (*NullCache) Delete(context.Context, string) error { return nil }
func (*NullCache) Close() error { return nil }
