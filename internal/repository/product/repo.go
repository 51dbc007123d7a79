package product

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/sokohub/geosearch/internal/db"
	"github.com/sokohub/geosearch/internal/domain"
	searchdom "github.com/sokohub/geosearch/internal/domain/search"
)

const (
	keyPrefix = domain.KeyPrefix + "product:"
	indexName = keyPrefix + "idx"

	distanceAlias = "distance"
)

// store is the consumer interface for product queries (ISP).
type store interface {
	Aggregate(ctx context.Context, q *db.AggregateQuery) (*db.AggregateResult, error)
	Count(ctx context.Context, index string, p db.Predicate) (int, error)
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	Del(ctx context.Context, keys ...string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Hit is one search result row. DistanceMeters is set only for queries with
// a center point.
type Hit struct {
	Product        domain.Product
	DistanceMeters *float64

	ownerRating float64
}

// Repo implements catalog search over the FT product index.
type Repo struct {
	store store
}

// New creates a product repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// EnsureIndex creates the product FT index if it does not exist yet.
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
		Tag(fieldBusinessID).
		WildcardText(fieldName).
		WildcardText(fieldDescription).
		SortableNumeric(fieldPrice).
		Numeric(fieldQuantity).
		Tag(fieldCategory).
		SortableNumeric(fieldCreatedAt).
		SortableNumeric(fieldRating).
		Geo(fieldLocation).
		Numeric(fieldLatitude).
		Numeric(fieldLongitude).
		MustBuild()

	if err := r.store.CreateIndex(ctx, def); err != nil && err != db.ErrIndexExists {
		return domain.WrapStore(err)
	}
	return nil
}

// Search runs a validated query against the index and returns the matching
// page plus the total match count for the same predicate. All filtering,
// sorting and pagination are pushed into the store; a viewport wrapping the
// antimeridian is the one case handled by merging two sub-queries.
func (r *Repo) Search(ctx context.Context, q *searchdom.Query) ([]Hit, int, error) {
	pred := predicateFor(q)

	if b := q.Bounds(); b != nil && b.WrapsAntimeridian() {
		return r.searchWrapped(ctx, q)
	}

	agg := &db.AggregateQuery{
		Index:     indexName,
		Predicate: pred,
		Load:      loadFields,
		SortBy:    sortFor(q),
		Offset:    q.Offset(),
		Limit:     q.Limit(),
	}
	if c := q.Center(); c != nil {
		agg.Distance = &db.DistanceProjection{
			Field: fieldLocation,
			Lat:   c.Latitude,
			Lon:   c.Longitude,
			As:    distanceAlias,
		}
	}

	res, err := r.store.Aggregate(ctx, agg)
	if err != nil {
		return nil, 0, domain.WrapStore(fmt.Errorf("search products: %w", err))
	}
	hits, err := parseHits(res.Rows, q.Center() != nil)
	if err != nil {
		return nil, 0, err
	}

	total, err := r.store.Count(ctx, indexName, pred)
	if err != nil {
		return nil, 0, domain.WrapStore(fmt.Errorf("count products: %w", err))
	}
	return hits, total, nil
}

// searchWrapped splits an antimeridian-crossing viewport into its two
// longitude ranges, over-fetches each, then merges, re-sorts and pages in
// memory. The ranges are disjoint so totals simply add up.
func (r *Repo) searchWrapped(ctx context.Context, q *searchdom.Query) ([]Hit, int, error) {
	fetch := q.Offset() + q.Limit()
	var merged []Hit
	total := 0

	for _, lr := range q.Bounds().LonRanges() {
		pred := predicateFor(q)
		setLonRange(&pred, lr.West, lr.East)

		agg := &db.AggregateQuery{
			Index:     indexName,
			Predicate: pred,
			Load:      loadFields,
			SortBy:    sortFor(q),
			Limit:     fetch,
		}
		res, err := r.store.Aggregate(ctx, agg)
		if err != nil {
			return nil, 0, domain.WrapStore(fmt.Errorf("search products: %w", err))
		}
		hits, err := parseHits(res.Rows, false)
		if err != nil {
			return nil, 0, err
		}
		merged = append(merged, hits...)

		n, err := r.store.Count(ctx, indexName, pred)
		if err != nil {
			return nil, 0, domain.WrapStore(fmt.Errorf("count products: %w", err))
		}
		total += n
	}

	sortHits(merged, q)
	if q.Offset() >= len(merged) {
		return nil, total, nil
	}
	merged = merged[q.Offset():]
	if len(merged) > q.Limit() {
		merged = merged[:q.Limit()]
	}
	return merged, total, nil
}

// Upsert writes product rows into the read model in one pipelined round-trip.
func (r *Repo) Upsert(ctx context.Context, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}
	items := make([]db.HashSetItem, len(rows))
	for i := range rows {
		items[i] = db.HashSetItem{
			Key:    keyPrefix + rows[i].Product.ID,
			Fields: toFields(&rows[i]),
		}
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return domain.WrapStore(fmt.Errorf("upsert products: %w", err))
	}
	return nil
}

// Delete removes a product row from the read model.
func (r *Repo) Delete(ctx context.Context, id string) error {
	if err := r.store.Del(ctx, keyPrefix+id); err != nil {
		return domain.WrapStore(fmt.Errorf("delete product %s: %w", id, err))
	}
	return nil
}

// predicateFor translates query filters into index clauses. For a
// non-wrapping viewport the longitude range goes straight into the
// predicate; wrapping viewports get their ranges substituted per sub-query.
func predicateFor(q *searchdom.Query) db.Predicate {
	var pred db.Predicate

	if kw := q.Keyword(); kw != "" {
		pred.Wildcards = append(pred.Wildcards, db.WildcardMatch{
			Fields:    []string{fieldName, fieldDescription},
			Substring: kw,
		})
	}
	if cat := q.Category(); cat != "" {
		pred.Tags = append(pred.Tags, db.TagMatch{Field: fieldCategory, Value: string(cat)})
	}
	if q.MinPrice() != nil || q.MaxPrice() != nil {
		pred.Ranges = append(pred.Ranges, db.NumRange{
			Field: fieldPrice, Min: q.MinPrice(), Max: q.MaxPrice(),
		})
	}

	if c := q.Center(); c != nil {
		pred.GeoRadius = &db.GeoRadius{
			Field:  fieldLocation,
			Lat:    c.Latitude,
			Lon:    c.Longitude,
			Meters: q.RadiusMeters(),
		}
	}
	if b := q.Bounds(); b != nil {
		south, north := b.SouthWest.Latitude, b.NorthEast.Latitude
		pred.Ranges = append(pred.Ranges, db.NumRange{Field: fieldLatitude, Min: &south, Max: &north})
		if !b.WrapsAntimeridian() {
			setLonRange(&pred, b.SouthWest.Longitude, b.NorthEast.Longitude)
		}
	}
	return pred
}

func setLonRange(pred *db.Predicate, west, east float64) {
	w, e := west, east
	pred.Ranges = append(pred.Ranges, db.NumRange{Field: fieldLongitude, Min: &w, Max: &e})
}

// sortFor maps the query sort onto index fields, with the entity ID as the
// deterministic tie-break.
func sortFor(q *searchdom.Query) []db.SortField {
	desc := q.Direction() == searchdom.Desc
	var primary string
	switch q.SortBy() {
	case searchdom.SortPrice:
		primary = fieldPrice
	case searchdom.SortCreatedAt:
		primary = fieldCreatedAt
	case searchdom.SortName:
		primary = fieldName
	case searchdom.SortRating:
		primary = fieldRating
	case searchdom.SortDistance:
		primary = distanceAlias
	default:
		primary = fieldCreatedAt
	}
	return []db.SortField{
		{Field: primary, Desc: desc},
		{Field: fieldID},
	}
}

// sortHits reorders merged antimeridian sub-query results with the same
// ordering the store applies, so paging over the merged set stays correct.
func sortHits(hits []Hit, q *searchdom.Query) {
	desc := q.Direction() == searchdom.Desc
	less := func(i, j int) bool {
		a, b := &hits[i].Product, &hits[j].Product
		var cmp int
		switch q.SortBy() {
		case searchdom.SortPrice:
			cmp = compareFloat(a.Price, b.Price)
		case searchdom.SortName:
			cmp = compareString(a.Name, b.Name)
		case searchdom.SortRating:
			cmp = compareFloat(hits[i].ownerRating, hits[j].ownerRating)
		default:
			cmp = compareInt64(a.CreatedAt.Unix(), b.CreatedAt.Unix())
		}
		if cmp == 0 {
			return a.ID < b.ID
		}
		if desc {
			return cmp > 0
		}
		return cmp < 0
	}
	sort.SliceStable(hits, less)
}

func parseHits(rows []map[string]string, withDistance bool) ([]Hit, error) {
	hits := make([]Hit, 0, len(rows))
	for _, row := range rows {
		p, err := fromFields(row)
		if err != nil {
			return nil, domain.WrapStore(err)
		}
		hit := Hit{Product: p}
		if v := row[fieldRating]; v != "" {
			rating, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, domain.WrapStore(fmt.Errorf("product %s: parse rating %q: %w", p.ID, v, err))
			}
			hit.ownerRating = rating
		}
		if withDistance {
			dist, err := strconv.ParseFloat(row[distanceAlias], 64)
			if err != nil {
				return nil, domain.WrapStore(fmt.Errorf("product %s: parse distance %q: %w", p.ID, row[distanceAlias], err))
			}
			hit.DistanceMeters = &dist
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
