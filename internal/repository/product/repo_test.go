package product

import (
	"context"
	"strconv"
	"testing"

	"github.com/sokohub/geosearch/internal/db"
	"github.com/sokohub/geosearch/internal/domain"
	"github.com/sokohub/geosearch/internal/domain/geo"
	searchdom "github.com/sokohub/geosearch/internal/domain/search"
)

func mustQuery(t *testing.T, p searchdom.Params) *searchdom.Query {
	t.Helper()
	q, err := searchdom.New(p)
	if err != nil {
		t.Fatalf("searchdom.New: %v", err)
	}
	return &q
}

func productRow(id string, price float64, createdAt int64, extra map[string]string) map[string]string {
	row := map[string]string{
		fieldID:          id,
		fieldBusinessID:  "b-" + id,
		fieldName:        "Product " + id,
		fieldDescription: "",
		fieldPrice:       strconv.FormatFloat(price, 'f', -1, 64),
		fieldQuantity:    "3",
		fieldCategory:    "groceries",
		fieldCreatedAt:   strconv.FormatInt(createdAt, 10),
		fieldRating:      "4.2",
	}
	for k, v := range extra {
		row[k] = v
	}
	return row
}

func TestSearch_QueryShape(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms)

	minPrice, maxPrice := 10.0, 500.0
	q := mustQuery(t, searchdom.Params{
		Keyword:  "Rice",
		Category: domain.CategoryGroceries,
		MinPrice: &minPrice,
		MaxPrice: &maxPrice,
		SortBy:   searchdom.SortPrice,
		Limit:    25,
		Offset:   5,
	})

	if _, _, err := repo.Search(context.Background(), q); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ms.aggregateQueries) != 1 {
		t.Fatalf("expected 1 aggregate, got %d", len(ms.aggregateQueries))
	}
	agg := ms.aggregateQueries[0]

	if agg.Index != indexName {
		t.Errorf("index = %q, want %q", agg.Index, indexName)
	}
	if len(agg.Predicate.Wildcards) != 1 {
		t.Fatalf("expected keyword wildcard, got %+v", agg.Predicate.Wildcards)
	}
	w := agg.Predicate.Wildcards[0]
	if w.Substring != "rice" {
		t.Errorf("wildcard substring = %q, want normalized %q", w.Substring, "rice")
	}
	if len(w.Fields) != 2 || w.Fields[0] != fieldName || w.Fields[1] != fieldDescription {
		t.Errorf("wildcard fields = %v", w.Fields)
	}
	if len(agg.Predicate.Tags) != 1 || agg.Predicate.Tags[0].Value != "groceries" {
		t.Errorf("unexpected tags: %+v", agg.Predicate.Tags)
	}
	if len(agg.Predicate.Ranges) != 1 {
		t.Fatalf("expected price range, got %+v", agg.Predicate.Ranges)
	}
	pr := agg.Predicate.Ranges[0]
	if pr.Field != fieldPrice || *pr.Min != 10 || *pr.Max != 500 {
		t.Errorf("unexpected price range: %+v", pr)
	}
	if agg.Distance != nil {
		t.Error("distance projection without a center")
	}
	if len(agg.SortBy) != 2 || agg.SortBy[0].Field != fieldPrice || agg.SortBy[0].Desc || agg.SortBy[1].Field != fieldID {
		t.Errorf("unexpected sort: %+v", agg.SortBy)
	}
	if agg.Offset != 5 || agg.Limit != 25 {
		t.Errorf("offset/limit = %d/%d, want 5/25", agg.Offset, agg.Limit)
	}

	// Count must run over the exact same predicate as the page query.
	if len(ms.countPredicates) != 1 {
		t.Fatalf("expected 1 count, got %d", len(ms.countPredicates))
	}
	if len(ms.countPredicates[0].Wildcards) != 1 || ms.countPredicates[0].Wildcards[0].Substring != "rice" {
		t.Errorf("count predicate differs from search predicate: %+v", ms.countPredicates[0])
	}
}

func TestSearch_CenterAddsDistanceProjection(t *testing.T) {
	ms := &mockStore{
		aggregateFn: func(_ context.Context, _ *db.AggregateQuery) (*db.AggregateResult, error) {
			return &db.AggregateResult{Rows: []map[string]string{
				productRow("p1", 120, 1700000000, map[string]string{distanceAlias: "812.5"}),
			}}, nil
		},
		countFn: func(_ context.Context, _ string, _ db.Predicate) (int, error) { return 1, nil },
	}
	repo := New(ms)

	q := mustQuery(t, searchdom.Params{
		Keyword:      "rice",
		Center:       &geo.Point{Latitude: -1.283, Longitude: 36.817},
		RadiusMeters: 5000,
	})

	hits, total, err := repo.Search(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 {
		t.Errorf("total = %d, want 1", total)
	}

	agg := ms.aggregateQueries[0]
	if agg.Predicate.GeoRadius == nil || agg.Predicate.GeoRadius.Meters != 5000 {
		t.Errorf("unexpected geo radius: %+v", agg.Predicate.GeoRadius)
	}
	if agg.Distance == nil || agg.Distance.As != distanceAlias || agg.Distance.Lat != -1.283 {
		t.Errorf("unexpected distance projection: %+v", agg.Distance)
	}

	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	if hits[0].DistanceMeters == nil || *hits[0].DistanceMeters != 812.5 {
		t.Errorf("unexpected distance: %v", hits[0].DistanceMeters)
	}
}

func TestSearch_NoCenterLeavesDistanceNil(t *testing.T) {
	ms := &mockStore{
		aggregateFn: func(_ context.Context, _ *db.AggregateQuery) (*db.AggregateResult, error) {
			return &db.AggregateResult{Rows: []map[string]string{
				productRow("p1", 120, 1700000000, nil),
			}}, nil
		},
	}
	repo := New(ms)

	hits, _, err := repo.Search(context.Background(), mustQuery(t, searchdom.Params{Keyword: "rice"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hits[0].DistanceMeters != nil {
		t.Errorf("distance should be nil without a center, got %v", *hits[0].DistanceMeters)
	}
}

func TestSearch_BoundsPushesLatLonRanges(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms)

	q := mustQuery(t, searchdom.Params{
		Bounds: &geo.Bounds{
			SouthWest: geo.Point{Latitude: -2, Longitude: 36},
			NorthEast: geo.Point{Latitude: -1, Longitude: 37},
		},
	})
	if _, _, err := repo.Search(context.Background(), q); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ranges := ms.aggregateQueries[0].Predicate.Ranges
	if len(ranges) != 2 {
		t.Fatalf("expected lat+lon ranges, got %+v", ranges)
	}
	if ranges[0].Field != fieldLatitude || *ranges[0].Min != -2 || *ranges[0].Max != -1 {
		t.Errorf("unexpected lat range: %+v", ranges[0])
	}
	if ranges[1].Field != fieldLongitude || *ranges[1].Min != 36 || *ranges[1].Max != 37 {
		t.Errorf("unexpected lon range: %+v", ranges[1])
	}
}

func TestSearch_WrappedViewportMergesSubQueries(t *testing.T) {
	ms := &mockStore{}
	ms.aggregateFn = func(_ context.Context, q *db.AggregateQuery) (*db.AggregateResult, error) {
		// Longitude range is the last pushed range.
		lonRange := q.Predicate.Ranges[len(q.Predicate.Ranges)-1]
		switch {
		case *lonRange.Min == 170 && *lonRange.Max == 180:
			return &db.AggregateResult{Rows: []map[string]string{
				productRow("p-east-1", 300, 1700000300, nil),
				productRow("p-east-2", 100, 1700000100, nil),
			}}, nil
		case *lonRange.Min == -180 && *lonRange.Max == -170:
			return &db.AggregateResult{Rows: []map[string]string{
				productRow("p-west-1", 200, 1700000200, nil),
			}}, nil
		default:
			t.Errorf("unexpected lon range: %+v", lonRange)
			return &db.AggregateResult{}, nil
		}
	}
	ms.countFn = func(_ context.Context, _ string, p db.Predicate) (int, error) {
		lonRange := p.Ranges[len(p.Ranges)-1]
		if *lonRange.Min == 170 {
			return 2, nil
		}
		return 1, nil
	}
	repo := New(ms)

	q := mustQuery(t, searchdom.Params{
		Bounds: &geo.Bounds{
			SouthWest: geo.Point{Latitude: -20, Longitude: 170},
			NorthEast: geo.Point{Latitude: -10, Longitude: -170},
		},
		SortBy: searchdom.SortPrice,
		Limit:  2,
	})

	hits, total, err := repo.Search(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ms.aggregateQueries) != 2 {
		t.Fatalf("expected 2 sub-queries, got %d", len(ms.aggregateQueries))
	}
	// Disjoint longitude ranges: totals add up.
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	// Merged and re-sorted by price ascending, then paged to limit 2.
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].Product.ID != "p-east-2" || hits[1].Product.ID != "p-west-1" {
		t.Errorf("unexpected merge order: %q, %q", hits[0].Product.ID, hits[1].Product.ID)
	}
}

func TestSearch_WrappedViewportOffsetBeyondResults(t *testing.T) {
	ms := &mockStore{
		countFn: func(_ context.Context, _ string, _ db.Predicate) (int, error) { return 1, nil },
	}
	repo := New(ms)

	q := mustQuery(t, searchdom.Params{
		Bounds: &geo.Bounds{
			SouthWest: geo.Point{Latitude: -20, Longitude: 170},
			NorthEast: geo.Point{Latitude: -10, Longitude: -170},
		},
		Offset: 50,
	})

	hits, total, err := repo.Search(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("expected empty page, got %d hits", len(hits))
	}
	if total != 2 {
		t.Errorf("total = %d, want 2", total)
	}
}

func TestSortFor_Mapping(t *testing.T) {
	cases := []struct {
		sort  searchdom.Sort
		dir   searchdom.Direction
		field string
		desc  bool
	}{
		{searchdom.SortPrice, searchdom.Asc, fieldPrice, false},
		{searchdom.SortCreatedAt, searchdom.Desc, fieldCreatedAt, true},
		{searchdom.SortName, searchdom.Asc, fieldName, false},
		{searchdom.SortRating, searchdom.Desc, fieldRating, true},
	}
	for _, tc := range cases {
		q := mustQuery(t, searchdom.Params{SortBy: tc.sort, Direction: tc.dir})
		got := sortFor(q)
		if len(got) != 2 {
			t.Fatalf("sort %q: expected primary + tie-break, got %+v", tc.sort, got)
		}
		if got[0].Field != tc.field || got[0].Desc != tc.desc {
			t.Errorf("sort %q: got %+v, want field=%q desc=%v", tc.sort, got[0], tc.field, tc.desc)
		}
		if got[1].Field != fieldID || got[1].Desc {
			t.Errorf("sort %q: tie-break = %+v, want ascending %q", tc.sort, got[1], fieldID)
		}
	}
}

func TestSortFor_DistanceUsesProjectionAlias(t *testing.T) {
	q := mustQuery(t, searchdom.Params{
		SortBy:       searchdom.SortDistance,
		Center:       &geo.Point{Latitude: -1.283, Longitude: 36.817},
		RadiusMeters: 5000,
	})
	got := sortFor(q)
	if got[0].Field != distanceAlias {
		t.Errorf("distance sort field = %q, want %q", got[0].Field, distanceAlias)
	}
}

func TestSortHits_RatingUsesOwnerRating(t *testing.T) {
	hits := []Hit{
		{Product: domain.Product{ID: "a"}, ownerRating: 3.1},
		{Product: domain.Product{ID: "b"}, ownerRating: 4.8},
		{Product: domain.Product{ID: "c"}, ownerRating: 4.8},
	}
	q := mustQuery(t, searchdom.Params{SortBy: searchdom.SortRating, Direction: searchdom.Desc})

	sortHits(hits, q)
	if hits[0].Product.ID != "b" || hits[1].Product.ID != "c" || hits[2].Product.ID != "a" {
		t.Errorf("unexpected order: %q, %q, %q", hits[0].Product.ID, hits[1].Product.ID, hits[2].Product.ID)
	}
}

func TestUpsert_DenormalizesOwnerFields(t *testing.T) {
	var items []db.HashSetItem
	ms := &mockStore{
		hsetMultiFn: func(_ context.Context, got []db.HashSetItem) error {
			items = got
			return nil
		},
	}
	repo := New(ms)

	err := repo.Upsert(context.Background(), []Row{{
		Product: domain.Product{
			ID:         "p1",
			BusinessID: "b1",
			Name:       "Basmati Rice 5kg",
			Price:      1200,
			Quantity:   8,
			Category:   domain.CategoryGroceries,
		},
		Rating:   4.6,
		Location: &geo.Point{Latitude: -1.2833, Longitude: 36.8167},
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if items[0].Key != keyPrefix+"p1" {
		t.Errorf("key = %q", items[0].Key)
	}
	f := items[0].Fields
	if f[fieldRating] != "4.6" {
		t.Errorf("rating field = %q, want denormalized owner rating", f[fieldRating])
	}
	if f[fieldLocation] != "36.8167,-1.2833" {
		t.Errorf("location field = %q, want lon,lat order", f[fieldLocation])
	}
	if f[fieldQuantity] != "8" {
		t.Errorf("quantity field = %q", f[fieldQuantity])
	}
}

func TestUpsert_EmptyIsNoop(t *testing.T) {
	ms := &mockStore{
		hsetMultiFn: func(_ context.Context, _ []db.HashSetItem) error {
			t.Error("store should not be written for an empty batch")
			return nil
		},
	}
	repo := New(ms)

	if err := repo.Upsert(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDelete_UsesPrefixedKey(t *testing.T) {
	var deleted []string
	ms := &mockStore{
		delFn: func(_ context.Context, keys ...string) error {
			deleted = keys
			return nil
		},
	}
	repo := New(ms)

	if err := repo.Delete(context.Background(), "p1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(deleted) != 1 || deleted[0] != keyPrefix+"p1" {
		t.Errorf("deleted keys = %v", deleted)
	}
}
