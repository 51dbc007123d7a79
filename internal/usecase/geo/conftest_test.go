package geo

import (
	"context"
	"time"

	"github.com/sokohub/geosearch/internal/domain"
	domgeo "github.com/sokohub/geosearch/internal/domain/geo"
	"github.com/sokohub/geosearch/internal/repository/business"
)

// mockRepo is a hand-rolled Repository with overridable behavior.
type mockRepo struct {
	findNearbyFn   func(ctx context.Context, center domgeo.Point, radiusMeters float64, f business.Filters, limit, offset int) ([]business.Hit, error)
	countNearbyFn  func(ctx context.Context, center domgeo.Point, radiusMeters float64, f business.Filters) (int, error)
	findInBoundsFn func(ctx context.Context, bounds domgeo.Bounds) ([]domain.Business, error)

	nearbyCalls int
	boundsCalls int
}

func (m *mockRepo) FindNearby(ctx context.Context, center domgeo.Point, radiusMeters float64, f business.Filters, limit, offset int) ([]business.Hit, error) {
	m.nearbyCalls++
	if m.findNearbyFn != nil {
		return m.findNearbyFn(ctx, center, radiusMeters, f, limit, offset)
	}
	return nil, nil
}

func (m *mockRepo) CountNearby(ctx context.Context, center domgeo.Point, radiusMeters float64, f business.Filters) (int, error) {
	if m.countNearbyFn != nil {
		return m.countNearbyFn(ctx, center, radiusMeters, f)
	}
	return 0, nil
}

func (m *mockRepo) FindInBounds(ctx context.Context, bounds domgeo.Bounds) ([]domain.Business, error) {
	m.boundsCalls++
	if m.findInBoundsFn != nil {
		return m.findInBoundsFn(ctx, bounds)
	}
	return nil, nil
}

// brokenCache errors on every operation, for degraded-cache tests.
type brokenCache struct{ err error }

func (b *brokenCache) Get(context.Context, string) ([]byte, error) { return nil, b.err }

func (b *brokenCache) Set(context.Context, string, []byte, time.Duration) error { return b.err }
