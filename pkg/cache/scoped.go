package cache

// ScopedKeyer wraps a Keyer with a prefix so that several tools can share
// one cache backend without colliding.
//
// Example usage:
//
//	// Keys of the HTTP server in a shared Redis
//	serverKeyer := NewScopedKeyer(NewDefaultKeyer(), "ladderkit:")
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

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(contentHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(contentHash, opts)
}
