package chi

import (
	"context"

	"go.uber.org/zap"

	"github.com/sokohub/geosearch/internal/cache"
	"github.com/sokohub/geosearch/internal/domain"
	domgeo "github.com/sokohub/geosearch/internal/domain/geo"
	searchdom "github.com/sokohub/geosearch/internal/domain/search"
	"github.com/sokohub/geosearch/internal/geocode"
	"github.com/sokohub/geosearch/internal/repository/business"
	"github.com/sokohub/geosearch/internal/repository/product"
	geouc "github.com/sokohub/geosearch/internal/usecase/geo"
	healthuc "github.com/sokohub/geosearch/internal/usecase/health"
	searchuc "github.com/sokohub/geosearch/internal/usecase/search"
)

// --- Mocks ---

type mockSearchRepo struct {
	searchFn func(ctx context.Context, q *searchdom.Query) ([]product.Hit, int, error)
}

func (m *mockSearchRepo) Search(ctx context.Context, q *searchdom.Query) ([]product.Hit, int, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return nil, 0, nil
}

type mockOwners struct {
	summariesFn func(ctx context.Context, ids []string) (map[string]domain.Summary, error)
}

func (m *mockOwners) Summaries(ctx context.Context, ids []string) (map[string]domain.Summary, error) {
	if m.summariesFn != nil {
		return m.summariesFn(ctx, ids)
	}
	return map[string]domain.Summary{}, nil
}

type mockGeoRepo struct {
	findNearbyFn   func(ctx context.Context, center domgeo.Point, radiusMeters float64, f business.Filters, limit, offset int) ([]business.Hit, error)
	countNearbyFn  func(ctx context.Context, center domgeo.Point, radiusMeters float64, f business.Filters) (int, error)
	findInBoundsFn func(ctx context.Context, bounds domgeo.Bounds) ([]domain.Business, error)
}

func (m *mockGeoRepo) FindNearby(ctx context.Context, center domgeo.Point, radiusMeters float64, f business.Filters, limit, offset int) ([]business.Hit, error) {
	if m.findNearbyFn != nil {
		return m.findNearbyFn(ctx, center, radiusMeters, f, limit, offset)
	}
	return nil, nil
}

func (m *mockGeoRepo) CountNearby(ctx context.Context, center domgeo.Point, radiusMeters float64, f business.Filters) (int, error) {
	if m.countNearbyFn != nil {
		return m.countNearbyFn(ctx, center, radiusMeters, f)
	}
	return 0, nil
}

func (m *mockGeoRepo) FindInBounds(ctx context.Context, bounds domgeo.Bounds) ([]domain.Business, error) {
	if m.findInBoundsFn != nil {
		return m.findInBoundsFn(ctx, bounds)
	}
	return nil, nil
}

type mockResolver struct {
	forwardFn func(ctx context.Context, address string) (geocode.Result, error)
	reverseFn func(ctx context.Context, point domgeo.Point) (geocode.Result, error)
}

func (m *mockResolver) Forward(ctx context.Context, address string) (geocode.Result, error) {
	if m.forwardFn != nil {
		return m.forwardFn(ctx, address)
	}
	return geocode.Result{}, nil
}

func (m *mockResolver) Reverse(ctx context.Context, point domgeo.Point) (geocode.Result, error) {
	if m.reverseFn != nil {
		return m.reverseFn(ctx, point)
	}
	return geocode.Result{}, nil
}

type mockPinger struct{ err error }

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

// --- Fixture ---

type serverMocks struct {
	search   *mockSearchRepo
	owners   *mockOwners
	geo      *mockGeoRepo
	resolver *mockResolver
	pinger   *mockPinger
}

func newTestServer() (*Server, *serverMocks) {
	m := &serverMocks{
		search:   &mockSearchRepo{},
		owners:   &mockOwners{},
		geo:      &mockGeoRepo{},
		resolver: &mockResolver{},
		pinger:   &mockPinger{},
	}
	srv := NewServer(
		searchuc.New(m.search, m.owners, cache.NewMemory()),
		geouc.New(m.geo, cache.NewMemory()),
		m.resolver,
		healthuc.New(m.pinger),
		zap.NewNop(),
	)
	return srv, m
}
