package geosearch

import (
	"context"

	"github.com/sokohub/geosearch/internal/domain"
	"github.com/sokohub/geosearch/internal/domain/geo"
	searchdom "github.com/sokohub/geosearch/internal/domain/search"
)

// searchService is satisfied by the search use case; tests substitute fakes.
type searchService interface {
	Search(ctx context.Context, q *searchdom.Query) (*searchdom.Page, error)
}

// SearchBuilder is a fluent builder for product search queries.
type SearchBuilder struct {
	svc    searchService
	params searchdom.Params
}

// Keyword sets a case-insensitive substring match over name and description.
func (b *SearchBuilder) Keyword(keyword string) *SearchBuilder {
	b.params.Keyword = keyword
	return b
}

// Category restricts results to one category.
func (b *SearchBuilder) Category(c domain.Category) *SearchBuilder {
	b.params.Category = c
	return b
}

// MinPrice sets the inclusive lower price bound.
func (b *SearchBuilder) MinPrice(p float64) *SearchBuilder {
	b.params.MinPrice = &p
	return b
}

// MaxPrice sets the inclusive upper price bound.
func (b *SearchBuilder) MaxPrice(p float64) *SearchBuilder {
	b.params.MaxPrice = &p
	return b
}

// Near restricts results to radiusMeters around a center point and enables
// distance sorting.
func (b *SearchBuilder) Near(lat, lon, radiusMeters float64) *SearchBuilder {
	b.params.Center = &geo.Point{Latitude: lat, Longitude: lon}
	b.params.RadiusMeters = radiusMeters
	return b
}

// Within restricts results to a viewport. West longitude greater than east
// wraps the antimeridian.
func (b *SearchBuilder) Within(swLat, swLon, neLat, neLon float64) *SearchBuilder {
	b.params.Bounds = &geo.Bounds{
		SouthWest: geo.Point{Latitude: swLat, Longitude: swLon},
		NorthEast: geo.Point{Latitude: neLat, Longitude: neLon},
	}
	return b
}

// SortBy sets the result ordering.
func (b *SearchBuilder) SortBy(sort searchdom.Sort, dir searchdom.Direction) *SearchBuilder {
	b.params.SortBy = sort
	b.params.Direction = dir
	return b
}

// Limit caps the page size.
func (b *SearchBuilder) Limit(n int) *SearchBuilder {
	b.params.Limit = n
	return b
}

// Offset skips the first n results.
func (b *SearchBuilder) Offset(n int) *SearchBuilder {
	b.params.Offset = n
	return b
}

// Do validates the accumulated parameters and executes the search.
func (b *SearchBuilder) Do(ctx context.Context) (*Page, error) {
	q, err := searchdom.New(b.params)
	if err != nil {
		return nil, err
	}
	return b.svc.Search(ctx, &q)
}
