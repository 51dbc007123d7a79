// Package business is the spatial read-model repository for located entities.
package business

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/sokohub/geosearch/internal/db"
	"github.com/sokohub/geosearch/internal/domain"
	"github.com/sokohub/geosearch/internal/domain/geo"
)

const (
	keyPrefix = domain.KeyPrefix + "business:"
	indexName = keyPrefix + "idx"

	// distanceAlias is the FT.AGGREGATE projection name for geodistance.
	distanceAlias = "distance"

	// maxBoundsResults caps viewport queries; map clients never render more.
	maxBoundsResults = 500
)

// store is the consumer interface for business queries (ISP).
type store interface {
	Aggregate(ctx context.Context, q *db.AggregateQuery) (*db.AggregateResult, error)
	Count(ctx context.Context, index string, p db.Predicate) (int, error)
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, keys ...string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Filters narrows proximity queries.
type Filters struct {
	Kind         domain.BusinessKind
	VerifiedOnly bool
	MinRating    float64
}

// Hit pairs a business with its store-computed distance from the query center.
type Hit struct {
	Business       domain.Business
	DistanceMeters float64
}

// Repo implements the spatial query store over the FT business index.
type Repo struct {
	store store
}

// New creates a business repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// EnsureIndex creates the business FT index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, indexName)
	if err != nil {
		return domain.WrapStore(err)
	}
	if exists {
		return nil
	}

	def := db.NewIndex(indexName).
		Prefix(keyPrefix).
		Tag(fieldID).
		WildcardText(fieldName).
		WildcardText(fieldDescription).
		Tag(fieldKind).
		Tag(fieldVerified).
		SortableNumeric(fieldRating).
		Geo(fieldLocation).
		Numeric(fieldLatitude).
		Numeric(fieldLongitude).
		SortableNumeric(fieldCreatedAt).
		MustBuild()

	if err := r.store.CreateIndex(ctx, def); err != nil && err != db.ErrIndexExists {
		return domain.WrapStore(err)
	}
	return nil
}

// FindNearby returns businesses within radiusMeters of center, closest first,
// ties broken by ID. Distance filtering and ordering run inside the store.
func (r *Repo) FindNearby(
	ctx context.Context, center geo.Point, radiusMeters float64, f Filters, limit, offset int,
) ([]Hit, error) {
	pred := db.Predicate{
		GeoRadius: &db.GeoRadius{
			Field:  fieldLocation,
			Lat:    center.Latitude,
			Lon:    center.Longitude,
			Meters: radiusMeters,
		},
	}
	applyFilters(&pred, f)

	q := &db.AggregateQuery{
		Index:     indexName,
		Predicate: pred,
		Load:      loadFields,
		Distance: &db.DistanceProjection{
			Field: fieldLocation,
			Lat:   center.Latitude,
			Lon:   center.Longitude,
			As:    distanceAlias,
		},
		SortBy: []db.SortField{
			{Field: distanceAlias},
			{Field: fieldID},
		},
		Offset: offset,
		Limit:  limit,
	}

	res, err := r.store.Aggregate(ctx, q)
	if err != nil {
		return nil, domain.WrapStore(fmt.Errorf("find nearby: %w", err))
	}

	hits := make([]Hit, 0, len(res.Rows))
	for _, row := range res.Rows {
		b, err := fromFields(row)
		if err != nil {
			return nil, domain.WrapStore(err)
		}
		dist, err := strconv.ParseFloat(row[distanceAlias], 64)
		if err != nil {
			return nil, domain.WrapStore(fmt.Errorf("business %s: parse distance %q: %w", b.ID, row[distanceAlias], err))
		}
		hits = append(hits, Hit{Business: b, DistanceMeters: dist})
	}
	return hits, nil
}

// CountNearby returns the number of businesses matching a proximity predicate.
func (r *Repo) CountNearby(ctx context.Context, center geo.Point, radiusMeters float64, f Filters) (int, error) {
	pred := db.Predicate{
		GeoRadius: &db.GeoRadius{
			Field:  fieldLocation,
			Lat:    center.Latitude,
			Lon:    center.Longitude,
			Meters: radiusMeters,
		},
	}
	applyFilters(&pred, f)

	total, err := r.store.Count(ctx, indexName, pred)
	if err != nil {
		return 0, domain.WrapStore(fmt.Errorf("count nearby: %w", err))
	}
	return total, nil
}

// FindInBounds returns businesses inside the viewport in stable ID order.
// A box wrapping the antimeridian runs as two longitude sub-queries whose
// results are merged without duplication.
func (r *Repo) FindInBounds(ctx context.Context, bounds geo.Bounds) ([]domain.Business, error) {
	seen := make(map[string]struct{})
	var out []domain.Business

	for _, lr := range bounds.LonRanges() {
		south, north := bounds.SouthWest.Latitude, bounds.NorthEast.Latitude
		west, east := lr.West, lr.East
		pred := db.Predicate{
			Ranges: []db.NumRange{
				{Field: fieldLatitude, Min: &south, Max: &north},
				{Field: fieldLongitude, Min: &west, Max: &east},
			},
		}

		q := &db.AggregateQuery{
			Index:     indexName,
			Predicate: pred,
			Load:      loadFields,
			SortBy:    []db.SortField{{Field: fieldID}},
			Limit:     maxBoundsResults,
		}

		res, err := r.store.Aggregate(ctx, q)
		if err != nil {
			return nil, domain.WrapStore(fmt.Errorf("find in bounds: %w", err))
		}

		for _, row := range res.Rows {
			b, err := fromFields(row)
			if err != nil {
				return nil, domain.WrapStore(err)
			}
			if _, dup := seen[b.ID]; dup {
				continue
			}
			seen[b.ID] = struct{}{}
			out = append(out, b)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Summaries fetches owner projections for a set of business IDs in one
// pipelined round-trip. Unknown IDs are simply absent from the map.
func (r *Repo) Summaries(ctx context.Context, ids []string) (map[string]domain.Summary, error) {
	if len(ids) == 0 {
		return map[string]domain.Summary{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = keyPrefix + id
	}

	rows, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, domain.WrapStore(fmt.Errorf("load summaries: %w", err))
	}

	out := make(map[string]domain.Summary, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		b, err := fromFields(row)
		if err != nil {
			return nil, domain.WrapStore(err)
		}
		out[b.ID] = b.Summary()
	}
	return out, nil
}

// Upsert writes businesses into the read model in one pipelined round-trip.
func (r *Repo) Upsert(ctx context.Context, businesses []domain.Business) error {
	if len(businesses) == 0 {
		return nil
	}
	items := make([]db.HashSetItem, len(businesses))
	for i := range businesses {
		items[i] = db.HashSetItem{
			Key:    keyPrefix + businesses[i].ID,
			Fields: toFields(&businesses[i]),
		}
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return domain.WrapStore(fmt.Errorf("upsert businesses: %w", err))
	}
	return nil
}

// Delete removes a business row from the read model.
func (r *Repo) Delete(ctx context.Context, id string) error {
	if err := r.store.Del(ctx, keyPrefix+id); err != nil {
		return domain.WrapStore(fmt.Errorf("delete business %s: %w", id, err))
	}
	return nil
}

func applyFilters(pred *db.Predicate, f Filters) {
	if f.Kind != "" {
		pred.Tags = append(pred.Tags, db.TagMatch{Field: fieldKind, Value: string(f.Kind)})
	}
	if f.VerifiedOnly {
		pred.Tags = append(pred.Tags, db.TagMatch{Field: fieldVerified, Value: "1"})
	}
	if f.MinRating > 0 {
		minRating := f.MinRating
		pred.Ranges = append(pred.Ranges, db.NumRange{Field: fieldRating, Min: &minRating})
	}
}
