// Package domain holds geosearch core types and the error taxonomy.
package domain

import (
	"time"

	"github.com/sokohub/geosearch/internal/domain/geo"
)

// KeyPrefix namespaces every Redis key owned by geosearch.
const KeyPrefix = "geosearch:"

// BusinessKind classifies a located entity.
type BusinessKind string

const (
	// KindShop is a retail storefront.
	KindShop BusinessKind = "shop"
	// KindBusiness is a general commercial entity.
	KindBusiness BusinessKind = "business"
	// KindService is a service provider without retail stock.
	KindService BusinessKind = "service"
)

// IsValid reports whether the kind is one of the fixed enumeration.
func (k BusinessKind) IsValid() bool {
	switch k {
	case KindShop, KindBusiness, KindService:
		return true
	}
	return false
}

// Business is a located entity: a seller with an optional geographic point.
// Location is nil while geocoding is pending; it is never partially set.
type Business struct {
	ID          string
	Name        string
	Description string
	Kind        BusinessKind
	Verified    bool
	Rating      float64
	Location    *geo.Point
	CreatedAt   time.Time
}

// Summary is the owner projection joined onto each search result.
type Summary struct {
	ID       string
	Name     string
	Verified bool
	Rating   float64
}

// Summary returns the projection of the business used for result enrichment.
func (b *Business) Summary() Summary {
	return Summary{ID: b.ID, Name: b.Name, Verified: b.Verified, Rating: b.Rating}
}
