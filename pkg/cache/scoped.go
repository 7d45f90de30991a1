package cache

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation.
// This is useful when one shared backend serves several deployments or
// users that need separate cache namespaces.
//
// Example usage:
//
//	// Per-deployment keys on a shared redis
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "site:warehouse:")
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

// MarkerKey generates a prefixed key for built marker arrays.
func (k *ScopedKeyer) MarkerKey(sceneHash string, opts MarkerKeyOpts) string {
	return k.prefix + k.inner.MarkerKey(sceneHash, opts)
}

// ArtifactKey generates a prefixed key for rendered output bytes.
func (k *ScopedKeyer) ArtifactKey(markerHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(markerHash, opts)
}
