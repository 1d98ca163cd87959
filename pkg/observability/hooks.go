// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about lint runs, cache operations, and registry calls.
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
//	    observability.SetLintHooks(&myLintHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Registry().OnFetchStart(ctx, pkg)
//	// ... fetch package metadata ...
//	observability.Registry().OnFetchComplete(ctx, pkg, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Lint Hooks
// =============================================================================

// LintHooks receives events from lint runs.
type LintHooks interface {
	// OnRunStart records the beginning of a lint run.
	OnRunStart(ctx context.Context, root string, requirements int)

	// OnRunComplete records a finished lint run with its finding counts.
	OnRunComplete(ctx context.Context, root string, errors, warnings, infos int, duration time.Duration)
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
// Registry Hooks
// =============================================================================

// RegistryHooks receives events from package registry clients.
type RegistryHooks interface {
	// OnFetchStart records an outgoing registry request.
	OnFetchStart(ctx context.Context, pkg string)

	// OnFetchComplete records a registry response or failure.
	OnFetchComplete(ctx context.Context, pkg string, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopLintHooks is a no-op implementation of LintHooks.
type NoopLintHooks struct{}

func (NoopLintHooks) OnRunStart(context.Context, string, int)                             {}
func (NoopLintHooks) OnRunComplete(context.Context, string, int, int, int, time.Duration) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopRegistryHooks is a no-op implementation of RegistryHooks.
type NoopRegistryHooks struct{}

func (NoopRegistryHooks) OnFetchStart(context.Context, string)                          {}
func (NoopRegistryHooks) OnFetchComplete(context.Context, string, time.Duration, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	lintHooks     LintHooks     = NoopLintHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	registryHooks RegistryHooks = NoopRegistryHooks{}
	hooksMu       sync.RWMutex
)

// SetLintHooks registers custom lint hooks.
// This should be called once at application startup before any lint runs.
func SetLintHooks(h LintHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		lintHooks = h
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

// SetRegistryHooks registers custom registry hooks.
// This should be called once at application startup before any registry calls.
func SetRegistryHooks(h RegistryHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		registryHooks = h
	}
}

// Lint returns the registered lint hooks.
func Lint() LintHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return lintHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Registry returns the registered registry hooks.
func Registry() RegistryHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return registryHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	lintHooks = NoopLintHooks{}
	cacheHooks = NoopCacheHooks{}
	registryHooks = NoopRegistryHooks{}
}
