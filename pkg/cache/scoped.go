package cache

// ScopedKeyer wraps a Keyer with a prefix so several projects or users
// can share one Redis database without seeing each other's artifacts.
//
// Example usage:
//
//	keyer := cache.NewScopedKeyer(nil, "unolayout:lab-a:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// BuildKey generates a prefixed build key.
func (k *ScopedKeyer) BuildKey(recipeHash string, opts BuildKeyOpts) string {
	return k.prefix + k.inner.BuildKey(recipeHash, opts)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(buildHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(buildHash, opts)
}
