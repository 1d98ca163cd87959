// Package httputil provides HTTP utilities for the PyPI registry client.
//
// # Overview
//
// This package provides infrastructure shared by code that talks to
// package registries:
//
//   - [JSONCache]: typed response caching over any cache backend
//   - [Retry]: automatic retry with exponential backoff
//
// # Caching
//
// [JSONCache] marshals values to JSON and stores them through a
// [cache.Cache] backend (file, Redis, MongoDB, or null) with a
// configurable TTL. Repeated lookups of the same package skip the
// network entirely.
//
//	jc := httputil.NewJSONCache(backend, "pypi:", 24*time.Hour)
//	var info PackageInfo
//	ok, err := jc.Get(ctx, "requests", &info)
//
// Cache keys should be namespaced by registry to avoid collisions.
//
// # Retry
//
// [Retry] wraps HTTP requests with automatic retry for transient
// failures: network errors, 5xx server errors, and rate limit responses.
// Only errors wrapped in [RetryableError] are retried; a 404 fails
// immediately.
//
// Default settings: 3 attempts with 1 second base delay, doubling after
// each failure.
package httputil
