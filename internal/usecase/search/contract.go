package search

import (
	"context"
	"time"

	"github.com/sokohub/geosearch/internal/domain"
	searchdom "github.com/sokohub/geosearch/internal/domain/search"
	"github.com/sokohub/geosearch/internal/repository/product"
)

// Repository runs pushed-down catalog queries.
type Repository interface {
	Search(ctx context.Context, q *searchdom.Query) ([]product.Hit, int, error)
}

// OwnerReader loads owner summaries for result enrichment in one batch.
type OwnerReader interface {
	Summaries(ctx context.Context, ids []string) (map[string]domain.Summary, error)
}

// Cache is the TTL layer fronting search pages.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
