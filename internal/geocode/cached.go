package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sokohub/geosearch/internal/cache"
	"github.com/sokohub/geosearch/internal/domain/geo"
	"github.com/sokohub/geosearch/internal/metrics"
)

// reverseKeyPrecision rounds reverse-lookup coordinates to 4 decimal places
// (~11 m) so near-duplicate queries share a cache entry.
const reverseKeyPrecision = 4

// Cached decorates a Resolver with the geocode cache namespace. Cache failures
// degrade to the inner resolver.
type Cached struct {
	inner  Resolver
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCached creates a caching decorator around a resolver.
func NewCached(inner Resolver, c cache.Cache, logger *zap.Logger) *Cached {
	return &Cached{inner: inner, cache: c, ttl: cache.TTLGeocode, logger: logger}
}

// WithTTL overrides the geocode cache TTL. Zero keeps the default.
func (c *Cached) WithTTL(ttl time.Duration) *Cached {
	if ttl > 0 {
		c.ttl = ttl
	}
	return c
}

// Forward resolves an address, keyed by its case-folded, whitespace-collapsed
// form.
func (c *Cached) Forward(ctx context.Context, address string) (Result, error) {
	key := cache.Key(cache.NamespaceGeocode, map[string]string{
		"op":      "forward",
		"address": NormalizeAddress(address),
	})
	return c.resolve(ctx, key, func(ctx context.Context) (Result, error) {
		return c.inner.Forward(ctx, address)
	})
}

// Reverse resolves a point, keyed by rounded coordinates.
func (c *Cached) Reverse(ctx context.Context, point geo.Point) (Result, error) {
	key := cache.Key(cache.NamespaceGeocode, map[string]string{
		"op":  "reverse",
		"lat": roundCoord(point.Latitude),
		"lon": roundCoord(point.Longitude),
	})
	return c.resolve(ctx, key, func(ctx context.Context) (Result, error) {
		return c.inner.Reverse(ctx, point)
	})
}

func (c *Cached) resolve(ctx context.Context, key string, fetch func(context.Context) (Result, error)) (Result, error) {
	if data, err := c.cache.Get(ctx, key); err == nil {
		var res Result
		if jsonErr := json.Unmarshal(data, &res); jsonErr == nil {
			metrics.CacheTotal.WithLabelValues(cache.NamespaceGeocode, "hit").Inc()
			return res, nil
		}
		c.logger.Warn("dropping undecodable geocode cache entry", zap.String("key", key))
	} else if !errors.Is(err, cache.ErrMiss) {
		metrics.CacheTotal.WithLabelValues(cache.NamespaceGeocode, "error").Inc()
		c.logger.Warn("geocode cache read failed, falling through", zap.Error(err))
	}

	metrics.CacheTotal.WithLabelValues(cache.NamespaceGeocode, "miss").Inc()

	res, err := fetch(ctx)
	if err != nil {
		return Result{}, err
	}

	if data, jsonErr := json.Marshal(res); jsonErr == nil {
		if setErr := c.cache.Set(ctx, key, data, c.ttl); setErr != nil {
			c.logger.Warn("geocode cache write failed", zap.String("key", key), zap.Error(setErr))
		}
	}

	return res, nil
}

// NormalizeAddress case-folds and collapses whitespace so near-duplicate
// address strings share one cache key.
func NormalizeAddress(address string) string {
	return strings.Join(strings.Fields(strings.ToLower(address)), " ")
}

func roundCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', reverseKeyPrecision, 64)
}
