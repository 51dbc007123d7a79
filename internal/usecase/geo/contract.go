package geo

import (
	"context"
	"time"

	"github.com/sokohub/geosearch/internal/domain"
	domgeo "github.com/sokohub/geosearch/internal/domain/geo"
	"github.com/sokohub/geosearch/internal/repository/business"
)

// Repository is the spatial query store consumed by the service.
type Repository interface {
	FindNearby(ctx context.Context, center domgeo.Point, radiusMeters float64, f business.Filters, limit, offset int) ([]business.Hit, error)
	CountNearby(ctx context.Context, center domgeo.Point, radiusMeters float64, f business.Filters) (int, error)
	FindInBounds(ctx context.Context, bounds domgeo.Bounds) ([]domain.Business, error)
}

// Cache is the TTL layer fronting spatial queries.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
