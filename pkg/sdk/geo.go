package geosearch

import (
	"context"

	"github.com/sokohub/geosearch/internal/domain"
	"github.com/sokohub/geosearch/internal/domain/geo"
	geouc "github.com/sokohub/geosearch/internal/usecase/geo"
)

// NearbyRequest is a proximity query around a center point. The radius must
// lie in [100m, 100km].
type NearbyRequest = geouc.NearbyRequest

// NearbyPage is a page of proximity results, closest first.
type NearbyPage = geouc.NearbyPage

// GeoService answers proximity, viewport and distance queries.
type GeoService struct {
	svc *geouc.Service
}

// Nearby returns businesses within the radius of the center.
func (s *GeoService) Nearby(ctx context.Context, req NearbyRequest) (*NearbyPage, error) {
	return s.svc.FindNearby(ctx, req)
}

// InBounds returns businesses inside a viewport in stable ID order.
func (s *GeoService) InBounds(ctx context.Context, swLat, swLon, neLat, neLon float64) ([]domain.Business, error) {
	return s.svc.FindInBounds(ctx, geouc.BoundsRequest{
		SWLatitude:  swLat,
		SWLongitude: swLon,
		NELatitude:  neLat,
		NELongitude: neLon,
	})
}

// DistanceBetween returns the great-circle distance between two coordinates.
func (s *GeoService) DistanceBetween(aLat, aLon, bLat, bLon float64) (geo.Distance, error) {
	return s.svc.Distance(aLat, aLon, bLat, bLon)
}
