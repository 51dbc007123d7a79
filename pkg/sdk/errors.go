package geosearch

import "github.com/sokohub/geosearch/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrValidation          = domain.ErrValidation
	ErrNotFound            = domain.ErrNotFound
	ErrProviderUnavailable = domain.ErrProviderUnavailable
	ErrStore               = domain.ErrStore
)
