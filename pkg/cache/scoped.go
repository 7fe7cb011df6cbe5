package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments (or the
// CLI and the HTTP API) can share one Redis instance without colliding.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "hmaputil:")
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

// BundleKey generates a prefixed bundle key.
func (k *ScopedKeyer) BundleKey(inputHash, trackHash string, request any) string {
	return k.prefix + k.inner.BundleKey(inputHash, trackHash, request)
}
