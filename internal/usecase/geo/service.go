// Package geo implements proximity and viewport discovery over the spatial
// store, fronted by the TTL cache.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/sokohub/geosearch/internal/cache"
	"github.com/sokohub/geosearch/internal/domain"
	domgeo "github.com/sokohub/geosearch/internal/domain/geo"
	"github.com/sokohub/geosearch/internal/domain/search"
	"github.com/sokohub/geosearch/internal/logger"
	"github.com/sokohub/geosearch/internal/metrics"
	"github.com/sokohub/geosearch/internal/repository/business"
)

// NearbyRequest is a proximity query around a center point.
type NearbyRequest struct {
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
	Kind         domain.BusinessKind
	VerifiedOnly bool
	MinRating    float64
	Limit        int
	Offset       int
}

// NearbyItem is one proximity result ordered closest first.
type NearbyItem struct {
	Business       domain.Business `json:"business"`
	DistanceMeters float64         `json:"distanceMeters"`
}

// NearbyPage is a page of proximity results with the total match count.
type NearbyPage struct {
	Items  []NearbyItem `json:"items"`
	Total  int          `json:"total"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
}

// BoundsRequest is a viewport query by its southwest and northeast corners.
type BoundsRequest struct {
	SWLatitude  float64
	SWLongitude float64
	NELatitude  float64
	NELongitude float64
}

// Service answers proximity, viewport and distance queries.
type Service struct {
	repo  Repository
	cache Cache
	ttl   time.Duration
}

// New creates a geo discovery service.
func New(repo Repository, c Cache) *Service {
	return &Service{repo: repo, cache: c, ttl: cache.TTLGeolocation}
}

// WithTTL overrides the geolocation cache TTL. Zero keeps the default.
func (s *Service) WithTTL(ttl time.Duration) *Service {
	if ttl > 0 {
		s.ttl = ttl
	}
	return s
}

// FindNearby returns businesses within the radius of the center, closest
// first. The radius must lie in [100m, 100km]. Results are cached for
// cache.TTLGeolocation.
func (s *Service) FindNearby(ctx context.Context, req NearbyRequest) (*NearbyPage, error) {
	center, err := domgeo.NewPoint(req.Latitude, req.Longitude)
	if err != nil {
		return nil, domain.NewValidationError("center", err.Error())
	}
	if req.RadiusMeters < search.MinRadiusMeters || req.RadiusMeters > search.MaxRadiusMeters {
		return nil, domain.NewValidationError("radius", "must be between 100 and 100000 meters")
	}
	if req.Kind != "" && !req.Kind.IsValid() {
		return nil, domain.NewValidationError("kind", "unknown business kind")
	}
	if req.MinRating < 0 || req.MinRating > 5 {
		return nil, domain.NewValidationError("minRating", "must be between 0 and 5")
	}
	if req.Offset < 0 {
		return nil, domain.NewValidationError("offset", "must not be negative")
	}
	if req.Limit <= 0 {
		req.Limit = search.DefaultLimit
	}
	if req.Limit > search.MaxLimit {
		req.Limit = search.MaxLimit
	}

	key := cache.Key(cache.NamespaceGeolocation, nearbyParams(req))
	if page, ok := s.cachedNearby(ctx, key); ok {
		return page, nil
	}

	filters := business.Filters{
		Kind:         req.Kind,
		VerifiedOnly: req.VerifiedOnly,
		MinRating:    req.MinRating,
	}
	hits, err := s.repo.FindNearby(ctx, center, req.RadiusMeters, filters, req.Limit, req.Offset)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.CountNearby(ctx, center, req.RadiusMeters, filters)
	if err != nil {
		return nil, err
	}

	page := &NearbyPage{
		Items:  make([]NearbyItem, 0, len(hits)),
		Total:  total,
		Limit:  req.Limit,
		Offset: req.Offset,
	}
	for _, h := range hits {
		page.Items = append(page.Items, NearbyItem{Business: h.Business, DistanceMeters: h.DistanceMeters})
	}

	s.storeNearby(ctx, key, page)
	return page, nil
}

// FindInBounds returns businesses inside the viewport in stable ID order.
// Viewports may wrap the antimeridian (west longitude greater than east).
func (s *Service) FindInBounds(ctx context.Context, req BoundsRequest) ([]domain.Business, error) {
	sw := domgeo.Point{Latitude: req.SWLatitude, Longitude: req.SWLongitude}
	ne := domgeo.Point{Latitude: req.NELatitude, Longitude: req.NELongitude}
	bounds, err := domgeo.NewBounds(sw, ne)
	if err != nil {
		return nil, domain.NewValidationError("bounds", err.Error())
	}

	key := cache.Key(cache.NamespaceGeolocation, boundsParams(req))
	if cached, err := s.cache.Get(ctx, key); err == nil {
		var out []domain.Business
		if err := json.Unmarshal(cached, &out); err == nil {
			metrics.CacheTotal.WithLabelValues(cache.NamespaceGeolocation, "hit").Inc()
			return out, nil
		}
	} else if !errors.Is(err, cache.ErrMiss) {
		s.cacheDegraded(ctx, err)
	}
	metrics.CacheTotal.WithLabelValues(cache.NamespaceGeolocation, "miss").Inc()

	out, err := s.repo.FindInBounds(ctx, bounds)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(out); err == nil {
		if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
			s.cacheDegraded(ctx, err)
		}
	}
	return out, nil
}

// Distance returns the great-circle distance between two coordinates.
func (s *Service) Distance(aLat, aLon, bLat, bLon float64) (domgeo.Distance, error) {
	a, err := domgeo.NewPoint(aLat, aLon)
	if err != nil {
		return 0, domain.NewValidationError("from", err.Error())
	}
	b, err := domgeo.NewPoint(bLat, bLon)
	if err != nil {
		return 0, domain.NewValidationError("to", err.Error())
	}
	return domgeo.Between(a, b), nil
}

func (s *Service) cachedNearby(ctx context.Context, key string) (*NearbyPage, bool) {
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			s.cacheDegraded(ctx, err)
		}
		metrics.CacheTotal.WithLabelValues(cache.NamespaceGeolocation, "miss").Inc()
		return nil, false
	}
	var page NearbyPage
	if err := json.Unmarshal(data, &page); err != nil {
		metrics.CacheTotal.WithLabelValues(cache.NamespaceGeolocation, "miss").Inc()
		return nil, false
	}
	metrics.CacheTotal.WithLabelValues(cache.NamespaceGeolocation, "hit").Inc()
	return &page, true
}

func (s *Service) storeNearby(ctx context.Context, key string, page *NearbyPage) {
	data, err := json.Marshal(page)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		s.cacheDegraded(ctx, err)
	}
}

// cacheDegraded logs a cache failure and lets the query proceed uncached.
func (s *Service) cacheDegraded(ctx context.Context, err error) {
	metrics.CacheTotal.WithLabelValues(cache.NamespaceGeolocation, "error").Inc()
	logger.FromContext(ctx).Warn("geolocation cache unavailable", zap.Error(err))
}

func nearbyParams(req NearbyRequest) map[string]string {
	p := map[string]string{
		"op":     "nearby",
		"lat":    cache.Float(req.Latitude),
		"lon":    cache.Float(req.Longitude),
		"radius": cache.Float(req.RadiusMeters),
		"limit":  strconv.Itoa(req.Limit),
		"offset": strconv.Itoa(req.Offset),
	}
	if req.Kind != "" {
		p["kind"] = string(req.Kind)
	}
	if req.VerifiedOnly {
		p["verified"] = "1"
	}
	if req.MinRating > 0 {
		p["min_rating"] = cache.Float(req.MinRating)
	}
	return p
}

func boundsParams(req BoundsRequest) map[string]string {
	return map[string]string{
		"op":     "bounds",
		"sw_lat": cache.Float(req.SWLatitude),
		"sw_lon": cache.Float(req.SWLongitude),
		"ne_lat": cache.Float(req.NELatitude),
		"ne_lon": cache.Float(req.NELongitude),
	}
}
