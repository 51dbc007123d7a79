package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sokohub/geosearch/internal/db"
)

// kvStore is the consumer interface for the backing store (ISP).
type kvStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// RedisCache implements Cache on the shared rueidis store. Expiry is enforced
// by the server; Invalidate scans and deletes matching keys.
type RedisCache struct {
	store kvStore
}

// NewRedis creates a store-backed cache.
func NewRedis(store kvStore) *RedisCache {
	return &RedisCache{store: store}
}

// Get returns the stored value or ErrMiss.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("cache get: %w", err)
	}
	return data, nil
}

// Set stores a value with a TTL.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.store.SetWithTTL(ctx, key, value, ttl); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Invalidate removes every key matching the glob pattern. Idempotent: a
// second pass over the same pattern finds nothing to delete.
func (c *RedisCache) Invalidate(ctx context.Context, pattern string) error {
	keys, err := c.store.Scan(ctx, pattern)
	if err != nil {
		return fmt.Errorf("cache scan %q: %w", pattern, err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.store.Del(ctx, keys...); err != nil {
		return fmt.Errorf("cache invalidate %q: %w", pattern, err)
	}
	return nil
}
