// Package geocode resolves addresses to coordinates and back through an
// ordered chain of external providers with per-call timeouts and fallback.
package geocode

import (
	"context"

	"github.com/sokohub/geosearch/internal/domain/geo"
)

// Precision is the provider-assigned precision tier of a result.
type Precision string

const (
	// PrecisionExact is a rooftop or building level match.
	PrecisionExact Precision = "exact"
	// PrecisionStreet is a street level match.
	PrecisionStreet Precision = "street"
	// PrecisionLocality is a city, town or neighbourhood level match.
	PrecisionLocality Precision = "locality"
	// PrecisionRegion is a state or country level match.
	PrecisionRegion Precision = "region"
)

// Result is a resolved address/point pair.
type Result struct {
	Address   string    `json:"address"`
	Point     geo.Point `json:"point"`
	Provider  string    `json:"provider"`
	Precision Precision `json:"precision"`
}

// Provider is a single external geocoding backend.
// Forward and Reverse return domain.ErrNotFound when the provider is healthy
// but has no resolution for the input; any other error is a provider failure.
type Provider interface {
	Name() string
	Forward(ctx context.Context, address string) (Result, error)
	Reverse(ctx context.Context, point geo.Point) (Result, error)
}

// Resolver is the outward contract of the chain, shared by the caching
// decorator.
type Resolver interface {
	Forward(ctx context.Context, address string) (Result, error)
	Reverse(ctx context.Context, point geo.Point) (Result, error)
}
