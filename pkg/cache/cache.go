// Package cache provides caching for rendered scene artifacts.
//
// # Overview
//
// Building a marker array for a large scene graph is the expensive step of
// the pipeline; the inputs (scene JSON, config) hash cleanly, so results are
// cached keyed by content hash:
//
//	markers  -> built marker array (scene hash + config hash + seed)
//	artifact -> final output bytes (marker hash + format + size)
//
// # Backends
//
//   - [FileCache]: directory-backed, for CLI usage
//   - [RedisCache]: shared cache for the HTTP server
//   - [NullCache]: disables caching
//
// All backends emit hit/miss/set events through the observability hooks.
package cache

import (
	"context"
	"strings"
	"time"
)

// Cache is the storage interface shared by all backends. Implementations
// must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return value reports whether the
	// key was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A zero TTL means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// MarkerKeyOpts captures the build inputs that affect marker output beyond
// the scene content itself.
type MarkerKeyOpts struct {
	ConfigHash string // hash of the visualizer/layer configuration
	Seed       uint64 // label jitter seed
}

// ArtifactKeyOpts captures the render inputs that affect final output bytes.
type ArtifactKeyOpts struct {
	Format string  // "json", "svg", "png", ...
	Size   float64 // output size or scale, format dependent
	NoText bool    // text markers suppressed
}

// Keyer generates cache keys for the pipeline stages.
type Keyer interface {
	// MarkerKey generates a key for built marker arrays.
	MarkerKey(sceneHash string, opts MarkerKeyOpts) string

	// ArtifactKey generates a key for rendered output bytes.
	ArtifactKey(markerHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer generates keys of the form "stage:hash".
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// MarkerKey generates a key for built marker arrays.
func (k *DefaultKeyer) MarkerKey(sceneHash string, opts MarkerKeyOpts) string {
	return hashKey("markers", sceneHash, opts)
}

// ArtifactKey generates a key for rendered output bytes.
func (k *DefaultKeyer) ArtifactKey(markerHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", markerHash, opts)
}

// keyType extracts the stage prefix from a key for hook reporting.
func keyType(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return "unknown"
}
