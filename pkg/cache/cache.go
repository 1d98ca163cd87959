// Package cache provides the byte-level cache backends used by the server
// and the registry clients: a file cache for CLI usage, Redis and MongoDB
// backends for deployments, and a null cache for tests.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Cache is the backend interface. Implementations must be safe for
// concurrent use.
type Cache interface {
	// Get retrieves a value. The bool reports whether the key was found;
	// a miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A TTL of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Open creates a backend from a location string:
//
//	"none" or ""          -> NullCache
//	"redis://host:6379"   -> Redis backend
//	"mongodb://host/db"   -> MongoDB backend
//	anything else         -> file cache rooted at that directory
//
// This gives commands and the server a single --cache flag covering every
// backend.
func Open(ctx context.Context, location string) (Cache, error) {
	switch {
	case location == "" || location == "none":
		return NewNullCache(), nil
	case strings.HasPrefix(location, "redis://"):
		return NewRedisCache(location)
	case strings.HasPrefix(location, "mongodb://") || strings.HasPrefix(location, "mongodb+srv://"):
		return NewMongoCache(ctx, location)
	case strings.Contains(location, "://"):
		return nil, fmt.Errorf("unsupported cache location %q", location)
	default:
		return NewFileCache(location)
	}
}
