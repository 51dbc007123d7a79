// Package cache provides the TTL key/value layer fronting the spatial store,
// with deterministic key canonicalization and pattern invalidation.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss signals that a key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Namespaces partition cache keys by use case so invalidation can target one
// concern without touching the others.
const (
	NamespaceSearch      = "search"
	NamespaceGeolocation = "geolocation"
	NamespaceGeocode     = "geocode"
)

// TTL policy by use case.
const (
	// TTLSearch bounds staleness of product search pages.
	TTLSearch = 5 * time.Minute
	// TTLGeolocation bounds staleness of proximity and bounds queries.
	TTLGeolocation = time.Hour
	// TTLGeocode is long: external address-to-point mappings are near-static.
	TTLGeocode = 24 * time.Hour
)

// Cache is the narrow contract injected into the search engine and the
// geocode chain. Implementations must tolerate concurrent use.
type Cache interface {
	// Get returns the stored value or ErrMiss.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores a value under key for ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Invalidate removes every entry whose key matches the glob pattern.
	// Invalidation is idempotent: repeating a pattern is a no-op.
	Invalidate(ctx context.Context, pattern string) error
}
