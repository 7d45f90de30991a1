// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about marker building, cache operations, and HTTP serving.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetBuilderHooks(&myBuilderHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Builder().OnBuildStart(ctx, layerCount)
//	// ... build markers ...
//	observability.Builder().OnBuildComplete(ctx, markerCount, duration)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Builder Hooks
// =============================================================================

// BuilderHooks receives events from the marker builder.
type BuilderHooks interface {
	// Whole-graph build events
	OnBuildStart(ctx context.Context, layerCount int)
	OnBuildComplete(ctx context.Context, markerCount int, duration time.Duration)

	// Per-layer events
	OnLayerStart(ctx context.Context, layer int, nodeCount int)
	OnLayerComplete(ctx context.Context, layer int, markerCount int, duration time.Duration)

	// OnNodeSkipped records a node dropped for malformed or missing attributes.
	OnNodeSkipped(ctx context.Context, layer int, reason string)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP API.
type HTTPHooks interface {
	// OnRequest records an incoming HTTP request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records a served HTTP response.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)

	// OnError records a request that failed before a response was written.
	OnError(ctx context.Context, method, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopBuilderHooks is a no-op implementation of BuilderHooks.
type NoopBuilderHooks struct{}

func (NoopBuilderHooks) OnBuildStart(context.Context, int)                        {}
func (NoopBuilderHooks) OnBuildComplete(context.Context, int, time.Duration)      {}
func (NoopBuilderHooks) OnLayerStart(context.Context, int, int)                   {}
func (NoopBuilderHooks) OnLayerComplete(context.Context, int, int, time.Duration) {}
func (NoopBuilderHooks) OnNodeSkipped(context.Context, int, string)               {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	builderHooks BuilderHooks = NoopBuilderHooks{}
	cacheHooks   CacheHooks   = NoopCacheHooks{}
	httpHooks    HTTPHooks    = NoopHTTPHooks{}
	hooksMu      sync.RWMutex
)

// SetBuilderHooks registers custom builder hooks.
// This should be called once at application startup before any build operations.
func SetBuilderHooks(h BuilderHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		builderHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before the server starts.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Builder returns the registered builder hooks.
func Builder() BuilderHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return builderHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	builderHooks = NoopBuilderHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
