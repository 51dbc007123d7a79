package db

// Predicate is a conjunction of pushed-down filter clauses.
// The zero value matches all documents.
type Predicate struct {
	Tags      []TagMatch
	Ranges    []NumRange
	Wildcards []WildcardMatch
	GeoRadius *GeoRadius
}

// IsEmpty reports whether the predicate has no clauses.
func (p Predicate) IsEmpty() bool {
	return len(p.Tags) == 0 && len(p.Ranges) == 0 && len(p.Wildcards) == 0 && p.GeoRadius == nil
}

// TagMatch is an exact TAG equality clause.
type TagMatch struct {
	Field string
	Value string
}

// NumRange is an inclusive numeric range clause. Nil bounds are open.
type NumRange struct {
	Field string
	Min   *float64
	Max   *float64
}

// WildcardMatch is a case-insensitive substring clause ORed across TEXT
// fields. Multi-word substrings match documents containing every word.
type WildcardMatch struct {
	Fields    []string
	Substring string
}

// GeoRadius is a geo radius clause in meters around a point.
type GeoRadius struct {
	Field  string
	Lat    float64
	Lon    float64
	Meters float64
}

// DistanceProjection asks the store to compute the geodesic distance from a
// point and expose it under As for sorting and loading.
type DistanceProjection struct {
	Field string
	Lat   float64
	Lon   float64
	As    string
}

// SortField orders results by a loaded or projected field.
type SortField struct {
	Field string
	Desc  bool
}

// AggregateQuery is a filtered, sorted, paginated FT.AGGREGATE request.
type AggregateQuery struct {
	Index     string
	Predicate Predicate
	Load      []string
	Distance  *DistanceProjection
	SortBy    []SortField
	Offset    int
	Limit     int
}

// AggregateResult is the output of an aggregate query: one field map per row.
type AggregateResult struct {
	Rows []map[string]string
}
