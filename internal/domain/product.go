package domain

import "time"

// Category is the fixed product category enumeration.
type Category string

const (
	// CategoryGroceries covers food and household staples.
	CategoryGroceries Category = "groceries"
	// CategoryElectronics covers consumer electronics.
	CategoryElectronics Category = "electronics"
	// CategoryFashion covers clothing and accessories.
	CategoryFashion Category = "fashion"
	// CategoryHome covers furniture and home goods.
	CategoryHome Category = "home"
	// CategoryHealth covers health and beauty.
	CategoryHealth Category = "health"
	// CategoryServices covers non-physical offerings.
	CategoryServices Category = "services"
	// CategoryOther is the catch-all bucket.
	CategoryOther Category = "other"
)

// Categories lists every valid category in declaration order.
func Categories() []Category {
	return []Category{
		CategoryGroceries, CategoryElectronics, CategoryFashion,
		CategoryHome, CategoryHealth, CategoryServices, CategoryOther,
	}
}

// IsValid reports whether the category is one of the fixed enumeration.
func (c Category) IsValid() bool {
	switch c {
	case CategoryGroceries, CategoryElectronics, CategoryFashion,
		CategoryHome, CategoryHealth, CategoryServices, CategoryOther:
		return true
	}
	return false
}

// Product is a catalog item owned by exactly one business.
// Price and Quantity are non-negative; negative values are rejected at the
// write boundary before they reach the read model.
type Product struct {
	ID          string
	BusinessID  string
	Name        string
	Description string
	Price       float64
	Quantity    int
	Category    Category
	CreatedAt   time.Time
}

// InStock is derived from quantity at read time. It is never stored and never
// independently settable.
func (p *Product) InStock() bool { return p.Quantity > 0 }
