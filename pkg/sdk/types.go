package geosearch

import (
	"github.com/sokohub/geosearch/internal/domain"
	"github.com/sokohub/geosearch/internal/domain/geo"
	searchdom "github.com/sokohub/geosearch/internal/domain/search"
)

// Domain types re-exported for SDK users.
type (
	// Business is a located entity in the index.
	Business = domain.Business
	// Product is a catalog item owned by a business.
	Product = domain.Product
	// Summary is the owner projection attached to search hits.
	Summary = domain.Summary
	// Point is a geographic coordinate in degrees.
	Point = geo.Point
	// Bounds is a rectangular viewport.
	Bounds = geo.Bounds
	// Distance is a meter-native geodesic distance.
	Distance = geo.Distance
	// Page is an ordered search result page with total-count metadata.
	Page = searchdom.Page
	// Item is a single enriched search hit.
	Item = searchdom.Item
)

// Business kinds.
const (
	KindShop     = domain.KindShop
	KindBusiness = domain.KindBusiness
	KindService  = domain.KindService
)

// Product categories.
const (
	CategoryGroceries   = domain.CategoryGroceries
	CategoryElectronics = domain.CategoryElectronics
	CategoryFashion     = domain.CategoryFashion
	CategoryHome        = domain.CategoryHome
	CategoryHealth      = domain.CategoryHealth
	CategoryServices    = domain.CategoryServices
	CategoryOther       = domain.CategoryOther
)

// Sort fields.
const (
	SortPrice     = searchdom.SortPrice
	SortCreatedAt = searchdom.SortCreatedAt
	SortName      = searchdom.SortName
	SortRating    = searchdom.SortRating
	SortDistance  = searchdom.SortDistance
)

// Sort directions.
const (
	Asc  = searchdom.Asc
	Desc = searchdom.Desc
)
