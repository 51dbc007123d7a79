// Package search implements multi-filter product search with owner
// enrichment, fronted by the TTL cache.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/sokohub/geosearch/internal/cache"
	searchdom "github.com/sokohub/geosearch/internal/domain/search"
	"github.com/sokohub/geosearch/internal/logger"
	"github.com/sokohub/geosearch/internal/metrics"
)

// Service executes validated search queries.
type Service struct {
	repo   Repository
	owners OwnerReader
	cache  Cache
	ttl    time.Duration
}

// New creates a search service.
func New(repo Repository, owners OwnerReader, c Cache) *Service {
	return &Service{repo: repo, owners: owners, cache: c, ttl: cache.TTLSearch}
}

// WithTTL overrides the search page cache TTL. Zero keeps the default.
func (s *Service) WithTTL(ttl time.Duration) *Service {
	if ttl > 0 {
		s.ttl = ttl
	}
	return s
}

// Search runs the query, enriches each hit with its owner summary, and
// returns the page with the accurate total. Pages are cached for
// cache.TTLSearch under a canonical key, so semantically identical queries
// share an entry.
func (s *Service) Search(ctx context.Context, q *searchdom.Query) (*searchdom.Page, error) {
	key := cache.Key(cache.NamespaceSearch, q.CanonicalParams())

	if data, err := s.cache.Get(ctx, key); err == nil {
		var page searchdom.Page
		if err := json.Unmarshal(data, &page); err == nil {
			metrics.CacheTotal.WithLabelValues(cache.NamespaceSearch, "hit").Inc()
			return &page, nil
		}
	} else if !errors.Is(err, cache.ErrMiss) {
		s.cacheDegraded(ctx, err)
	}
	metrics.CacheTotal.WithLabelValues(cache.NamespaceSearch, "miss").Inc()

	hits, total, err := s.repo.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(hits))
	seen := make(map[string]struct{}, len(hits))
	for _, h := range hits {
		if _, ok := seen[h.Product.BusinessID]; ok {
			continue
		}
		seen[h.Product.BusinessID] = struct{}{}
		ids = append(ids, h.Product.BusinessID)
	}
	owners, err := s.owners.Summaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	page := &searchdom.Page{
		Items:  make([]searchdom.Item, 0, len(hits)),
		Total:  total,
		Limit:  q.Limit(),
		Offset: q.Offset(),
	}
	for _, h := range hits {
		page.Items = append(page.Items, searchdom.Item{
			Product:        h.Product,
			Owner:          owners[h.Product.BusinessID],
			DistanceMeters: h.DistanceMeters,
		})
	}

	if data, err := json.Marshal(page); err == nil {
		if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
			s.cacheDegraded(ctx, err)
		}
	}
	return page, nil
}

func (s *Service) cacheDegraded(ctx context.Context, err error) {
	metrics.CacheTotal.WithLabelValues(cache.NamespaceSearch, "error").Inc()
	logger.FromContext(ctx).Warn("search cache unavailable", zap.Error(err))
}
