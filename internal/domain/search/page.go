package search

import "github.com/sokohub/geosearch/internal/domain"

// Item is a single search hit: a product enriched with its owner summary and,
// when the query carried a center, the distance from it.
type Item struct {
	Product        domain.Product
	Owner          domain.Summary
	DistanceMeters *float64
}

// Page is an ordered result page with accurate total-count metadata.
// Total is computed from the filtered predicate, not from the page itself.
type Page struct {
	Items  []Item
	Total  int
	Limit  int
	Offset int
}
