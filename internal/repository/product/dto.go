// Package product is the catalog read-model repository backing search.
package product

import (
	"fmt"
	"strconv"
	"time"

	"github.com/sokohub/geosearch/internal/domain"
	"github.com/sokohub/geosearch/internal/domain/geo"
)

// Hash field names for the product read model. Owner location and rating are
// denormalized into each product row so geo filters and rating sorts run
// entirely inside the index.
const (
	fieldID          = "id"
	fieldBusinessID  = "business_id"
	fieldName        = "name"
	fieldDescription = "description"
	fieldPrice       = "price"
	fieldQuantity    = "quantity"
	fieldCategory    = "category"
	fieldCreatedAt   = "created_at"
	fieldRating      = "rating"
	fieldLocation    = "location" // "lon,lat" for the GEO index field
	fieldLatitude    = "latitude"
	fieldLongitude   = "longitude"
)

// loadFields are the fields fetched by every search query.
var loadFields = []string{
	fieldID, fieldBusinessID, fieldName, fieldDescription,
	fieldPrice, fieldQuantity, fieldCategory, fieldCreatedAt, fieldRating,
}

// Row is a product plus the owner attributes denormalized alongside it.
type Row struct {
	Product  domain.Product
	Rating   float64
	Location *geo.Point
}

// toFields flattens a product row into read-model hash fields. Rows whose
// owner has no location omit the geo fields so spatial predicates never
// match them.
func toFields(row *Row) map[string]string {
	p := &row.Product
	fields := map[string]string{
		fieldID:          p.ID,
		fieldBusinessID:  p.BusinessID,
		fieldName:        p.Name,
		fieldDescription: p.Description,
		fieldPrice:       strconv.FormatFloat(p.Price, 'f', -1, 64),
		fieldQuantity:    strconv.Itoa(p.Quantity),
		fieldCategory:    string(p.Category),
		fieldCreatedAt:   strconv.FormatInt(p.CreatedAt.Unix(), 10),
		fieldRating:      strconv.FormatFloat(row.Rating, 'f', -1, 64),
	}
	if row.Location != nil {
		fields[fieldLocation] = geoField(*row.Location)
		fields[fieldLatitude] = strconv.FormatFloat(row.Location.Latitude, 'f', -1, 64)
		fields[fieldLongitude] = strconv.FormatFloat(row.Location.Longitude, 'f', -1, 64)
	}
	return fields
}

// fromFields rebuilds a product from hash fields.
func fromFields(fields map[string]string) (domain.Product, error) {
	id := fields[fieldID]
	if id == "" {
		return domain.Product{}, fmt.Errorf("row missing id field")
	}

	p := domain.Product{
		ID:          id,
		BusinessID:  fields[fieldBusinessID],
		Name:        fields[fieldName],
		Description: fields[fieldDescription],
		Category:    domain.Category(fields[fieldCategory]),
	}

	if v := fields[fieldPrice]; v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return domain.Product{}, fmt.Errorf("product %s: parse price %q: %w", id, v, err)
		}
		p.Price = price
	}
	if v := fields[fieldQuantity]; v != "" {
		qty, err := strconv.Atoi(v)
		if err != nil {
			return domain.Product{}, fmt.Errorf("product %s: parse quantity %q: %w", id, v, err)
		}
		p.Quantity = qty
	}
	if v := fields[fieldCreatedAt]; v != "" {
		ts, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return domain.Product{}, fmt.Errorf("product %s: parse created_at %q: %w", id, v, err)
		}
		p.CreatedAt = time.Unix(ts, 0).UTC()
	}
	return p, nil
}

func geoField(p geo.Point) string {
	return strconv.FormatFloat(p.Longitude, 'f', -1, 64) + "," + strconv.FormatFloat(p.Latitude, 'f', -1, 64)
}
