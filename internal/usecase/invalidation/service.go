// Package invalidation evicts cached query results when the underlying data
// changes, keeping staleness inside the TTL windows rather than unbounded.
package invalidation

import (
	"context"
	"fmt"

	"github.com/sokohub/geosearch/internal/cache"
	"github.com/sokohub/geosearch/internal/metrics"
)

// Service maps write notifications onto cache namespaces.
type Service struct {
	cache Invalidator
}

// New creates an invalidation service.
func New(c Invalidator) *Service {
	return &Service{cache: c}
}

// OnBusinessWrite evicts search and geolocation results. Business writes can
// move pins on the map and change the owner data embedded in search pages.
func (s *Service) OnBusinessWrite(ctx context.Context) error {
	if err := s.invalidate(ctx, cache.NamespaceGeolocation); err != nil {
		return err
	}
	return s.invalidate(ctx, cache.NamespaceSearch)
}

// OnProductWrite evicts search results. Geolocation caches only hold
// businesses, so product writes leave them intact.
func (s *Service) OnProductWrite(ctx context.Context) error {
	return s.invalidate(ctx, cache.NamespaceSearch)
}

func (s *Service) invalidate(ctx context.Context, namespace string) error {
	if err := s.cache.Invalidate(ctx, cache.Pattern(namespace)); err != nil {
		return fmt.Errorf("invalidate %s cache: %w", namespace, err)
	}
	metrics.CacheInvalidations.WithLabelValues(namespace).Inc()
	return nil
}
