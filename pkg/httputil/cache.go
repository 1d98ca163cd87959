package httputil

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pinfold/pinfold/pkg/cache"
	"github.com/pinfold/pinfold/pkg/observability"
)

// JSONCache is a typed view over a byte-level cache backend. Values are
// JSON-marshaled on Set and unmarshaled on Get, and every key gains the
// cache's prefix, so different registries can share one backend without
// key collisions.
//
// A JSONCache is as goroutine-safe as its backend.
type JSONCache struct {
	backend cache.Cache
	prefix  string
	ttl     time.Duration
}

// NewJSONCache wraps backend with JSON marshaling, a key prefix, and a
// TTL applied to every Set. A TTL of 0 means entries never expire.
func NewJSONCache(backend cache.Cache, prefix string, ttl time.Duration) *JSONCache {
	return &JSONCache{backend: backend, prefix: prefix, ttl: ttl}
}

// Get retrieves a cached value by key and unmarshals it into v.
// A miss returns (false, nil); a corrupt entry is treated as a miss.
func (c *JSONCache) Get(ctx context.Context, key string, v any) (bool, error) {
	data, ok, err := c.backend.Get(ctx, c.prefix+key)
	if err != nil || !ok {
		observability.Cache().OnCacheMiss(ctx, c.prefix)
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		_ = c.backend.Delete(ctx, c.prefix+key)
		observability.Cache().OnCacheMiss(ctx, c.prefix)
		return false, nil
	}
	observability.Cache().OnCacheHit(ctx, c.prefix)
	return true, nil
}

// Set marshals v and stores it under the prefixed key.
func (c *JSONCache) Set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, c.prefix, len(data))
	return c.backend.Set(ctx, c.prefix+key, data, c.ttl)
}
