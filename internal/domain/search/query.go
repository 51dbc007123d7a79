// Package search defines the validated product search query and its result page.
package search

import (
	"strconv"
	"strings"

	"github.com/sokohub/geosearch/internal/domain"
	"github.com/sokohub/geosearch/internal/domain/geo"
)

// Search parameter limits.
const (
	// MaxKeywordLength is the maximum allowed keyword length.
	MaxKeywordLength = 256
	DefaultLimit     = 20
	MaxLimit         = 100
	// MinRadiusMeters is the smallest accepted proximity radius.
	MinRadiusMeters = 100
	// MaxRadiusMeters is the largest accepted proximity radius.
	MaxRadiusMeters = 100_000
)

// Sort selects the result ordering key.
type Sort string

const (
	// SortPrice orders by product price.
	SortPrice Sort = "price"
	// SortCreatedAt orders by product creation time.
	SortCreatedAt Sort = "createdAt"
	// SortName orders lexicographically by product name.
	SortName Sort = "name"
	// SortRating orders by the owning business rating.
	SortRating Sort = "rating"
	// SortDistance orders by distance from the query center.
	SortDistance Sort = "distance"
)

// IsValid reports whether the sort key is one of the fixed enumeration.
func (s Sort) IsValid() bool {
	switch s {
	case SortPrice, SortCreatedAt, SortName, SortRating, SortDistance:
		return true
	}
	return false
}

// Direction selects ascending or descending order.
type Direction string

const (
	// Asc sorts ascending.
	Asc Direction = "asc"
	// Desc sorts descending.
	Desc Direction = "desc"
)

// IsValid reports whether the direction is asc or desc.
func (d Direction) IsValid() bool { return d == Asc || d == Desc }

// Params are the raw, pre-validation search inputs.
type Params struct {
	Keyword      string
	Category     domain.Category
	MinPrice     *float64
	MaxPrice     *float64
	Center       *geo.Point
	RadiusMeters float64
	Bounds       *geo.Bounds
	SortBy       Sort
	Direction    Direction
	Limit        int
	Offset       int
}

// Query is a validated, immutable product search query.
type Query struct {
	keyword      string
	category     domain.Category
	minPrice     *float64
	maxPrice     *float64
	center       *geo.Point
	radiusMeters float64
	bounds       *geo.Bounds
	sortBy       Sort
	direction    Direction
	limit        int
	offset       int
}

// New validates and normalizes search parameters.
// Defaults: sort=createdAt descending (newest first), limit=20. Limit is
// capped at 100.
func New(p Params) (Query, error) {
	keyword := normalizeKeyword(p.Keyword)
	if len(keyword) > MaxKeywordLength {
		return Query{}, domain.NewValidationError("keyword", "too long")
	}
	if p.Category != "" && !p.Category.IsValid() {
		return Query{}, domain.NewValidationError("category", "unknown category "+string(p.Category))
	}
	if p.MinPrice != nil && *p.MinPrice < 0 {
		return Query{}, domain.NewValidationError("minPrice", "must be non-negative")
	}
	if p.MaxPrice != nil && *p.MaxPrice < 0 {
		return Query{}, domain.NewValidationError("maxPrice", "must be non-negative")
	}
	if p.MinPrice != nil && p.MaxPrice != nil && *p.MinPrice > *p.MaxPrice {
		return Query{}, domain.NewValidationError("minPrice", "exceeds maxPrice")
	}

	if p.Center != nil && p.Bounds != nil {
		return Query{}, domain.NewValidationError("center", "center and bounds are mutually exclusive")
	}
	if p.Center != nil {
		if !geo.ValidCoordinates(p.Center.Latitude, p.Center.Longitude) {
			return Query{}, domain.NewValidationError("center", "coordinates out of range")
		}
		if p.RadiusMeters < MinRadiusMeters || p.RadiusMeters > MaxRadiusMeters {
			return Query{}, domain.NewValidationError("radius", "must be within [100m, 100km]")
		}
	} else if p.RadiusMeters != 0 {
		return Query{}, domain.NewValidationError("radius", "requires a center")
	}

	defaulted := p.SortBy == ""
	sortBy := p.SortBy
	if defaulted {
		sortBy = SortCreatedAt
	}
	if !sortBy.IsValid() {
		return Query{}, domain.NewValidationError("sortBy", "unknown sort key "+string(p.SortBy))
	}
	if sortBy == SortDistance && p.Center == nil {
		return Query{}, domain.NewValidationError("sortBy", "distance sort requires a geographic center")
	}

	direction := p.Direction
	if direction == "" {
		direction = Asc
		if defaulted {
			direction = Desc
		}
	}
	if !direction.IsValid() {
		return Query{}, domain.NewValidationError("direction", "must be asc or desc")
	}

	limit := p.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if p.Offset < 0 {
		return Query{}, domain.NewValidationError("offset", "must be non-negative")
	}

	return Query{
		keyword:      keyword,
		category:     p.Category,
		minPrice:     p.MinPrice,
		maxPrice:     p.MaxPrice,
		center:       p.Center,
		radiusMeters: p.RadiusMeters,
		bounds:       p.Bounds,
		sortBy:       sortBy,
		direction:    direction,
		limit:        limit,
		offset:       p.Offset,
	}, nil
}

// Keyword returns the case-folded, whitespace-collapsed keyword ("" if unset).
func (q *Query) Keyword() string { return q.keyword }

// Category returns the category filter ("" if unset).
func (q *Query) Category() domain.Category { return q.category }

// MinPrice returns the inclusive lower price bound (nil if unset).
func (q *Query) MinPrice() *float64 { return q.minPrice }

// MaxPrice returns the inclusive upper price bound (nil if unset).
func (q *Query) MaxPrice() *float64 { return q.maxPrice }

// Center returns the proximity center (nil if unset).
func (q *Query) Center() *geo.Point { return q.center }

// RadiusMeters returns the proximity radius (0 if unset).
func (q *Query) RadiusMeters() float64 { return q.radiusMeters }

// Bounds returns the viewport filter (nil if unset).
func (q *Query) Bounds() *geo.Bounds { return q.bounds }

// SortBy returns the sort key.
func (q *Query) SortBy() Sort { return q.sortBy }

// Direction returns the sort direction.
func (q *Query) Direction() Direction { return q.direction }

// Limit returns the page size.
func (q *Query) Limit() int { return q.limit }

// Offset returns the page offset.
func (q *Query) Offset() int { return q.offset }

// HasGeo reports whether a center or bounds filter is present.
func (q *Query) HasGeo() bool { return q.center != nil || q.bounds != nil }

// CanonicalParams returns the order-independent parameter set used for cache
// keying. Floats are normalized to six decimal places so equivalent numeric
// representations collide to the same key.
func (q *Query) CanonicalParams() map[string]string {
	params := make(map[string]string)
	if q.keyword != "" {
		params["keyword"] = q.keyword
	}
	if q.category != "" {
		params["category"] = string(q.category)
	}
	if q.minPrice != nil {
		params["min_price"] = canonFloat(*q.minPrice)
	}
	if q.maxPrice != nil {
		params["max_price"] = canonFloat(*q.maxPrice)
	}
	if q.center != nil {
		params["lat"] = canonFloat(q.center.Latitude)
		params["lon"] = canonFloat(q.center.Longitude)
		params["radius"] = canonFloat(q.radiusMeters)
	}
	if q.bounds != nil {
		params["sw_lat"] = canonFloat(q.bounds.SouthWest.Latitude)
		params["sw_lon"] = canonFloat(q.bounds.SouthWest.Longitude)
		params["ne_lat"] = canonFloat(q.bounds.NorthEast.Latitude)
		params["ne_lon"] = canonFloat(q.bounds.NorthEast.Longitude)
	}
	params["sort"] = string(q.sortBy)
	params["dir"] = string(q.direction)
	params["limit"] = strconv.Itoa(q.limit)
	params["offset"] = strconv.Itoa(q.offset)
	return params
}

func canonFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 6, 64)
}

// normalizeKeyword lowercases and collapses internal whitespace so near-identical
// keywords share one canonical form.
func normalizeKeyword(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	return strings.Join(fields, " ")
}
