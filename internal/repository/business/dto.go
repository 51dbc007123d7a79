package business

import (
	"fmt"
	"strconv"
	"time"

	"github.com/sokohub/geosearch/internal/domain"
	"github.com/sokohub/geosearch/internal/domain/geo"
)

// Hash field names for the business read model.
const (
	fieldID          = "id"
	fieldName        = "name"
	fieldDescription = "description"
	fieldKind        = "kind"
	fieldVerified    = "verified"
	fieldRating      = "rating"
	fieldLocation    = "location" // "lon,lat" for the GEO index field
	fieldLatitude    = "latitude"
	fieldLongitude   = "longitude"
	fieldCreatedAt   = "created_at"
)

// loadFields are the fields fetched by every query.
var loadFields = []string{
	fieldID, fieldName, fieldDescription, fieldKind,
	fieldVerified, fieldRating, fieldLatitude, fieldLongitude, fieldCreatedAt,
}

// toFields flattens a business into read-model hash fields.
// A business without a location omits the geo fields entirely so the spatial
// index never sees a partially set point.
func toFields(b *domain.Business) map[string]string {
	fields := map[string]string{
		fieldID:          b.ID,
		fieldName:        b.Name,
		fieldDescription: b.Description,
		fieldKind:        string(b.Kind),
		fieldVerified:    boolField(b.Verified),
		fieldRating:      strconv.FormatFloat(b.Rating, 'f', -1, 64),
		fieldCreatedAt:   strconv.FormatInt(b.CreatedAt.Unix(), 10),
	}
	if b.Location != nil {
		fields[fieldLocation] = geoField(*b.Location)
		fields[fieldLatitude] = strconv.FormatFloat(b.Location.Latitude, 'f', -1, 64)
		fields[fieldLongitude] = strconv.FormatFloat(b.Location.Longitude, 'f', -1, 64)
	}
	return fields
}

// fromFields rebuilds a business from hash fields.
func fromFields(fields map[string]string) (domain.Business, error) {
	id := fields[fieldID]
	if id == "" {
		return domain.Business{}, fmt.Errorf("row missing id field")
	}

	b := domain.Business{
		ID:          id,
		Name:        fields[fieldName],
		Description: fields[fieldDescription],
		Kind:        domain.BusinessKind(fields[fieldKind]),
		Verified:    fields[fieldVerified] == "1",
	}

	if v := fields[fieldRating]; v != "" {
		rating, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return domain.Business{}, fmt.Errorf("business %s: parse rating %q: %w", id, v, err)
		}
		b.Rating = rating
	}

	latStr, lonStr := fields[fieldLatitude], fields[fieldLongitude]
	if latStr != "" && lonStr != "" {
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return domain.Business{}, fmt.Errorf("business %s: parse latitude %q: %w", id, latStr, err)
		}
		lon, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			return domain.Business{}, fmt.Errorf("business %s: parse longitude %q: %w", id, lonStr, err)
		}
		b.Location = &geo.Point{Latitude: lat, Longitude: lon}
	}

	if v := fields[fieldCreatedAt]; v != "" {
		sec, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return domain.Business{}, fmt.Errorf("business %s: parse created_at %q: %w", id, v, err)
		}
		b.CreatedAt = time.Unix(sec, 0).UTC()
	}

	return b, nil
}

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// geoField formats a point as the "lon,lat" string the GEO index expects.
func geoField(p geo.Point) string {
	return strconv.FormatFloat(p.Longitude, 'f', -1, 64) + "," +
		strconv.FormatFloat(p.Latitude, 'f', -1, 64)
}
