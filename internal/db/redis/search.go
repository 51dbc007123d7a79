package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/sokohub/geosearch/internal/db"
)

// Aggregate runs a filtered, sorted, paginated query via FT.AGGREGATE.
// Predicate evaluation, the geodistance projection, ordering and LIMIT all
// happen inside the query engine.
func (s *Store) Aggregate(ctx context.Context, q *db.AggregateQuery) (*db.AggregateResult, error) {
	if q.Index == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.Limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}

	args := []string{q.Index, buildPredicate(q.Predicate)}

	if len(q.Load) > 0 {
		args = append(args, "LOAD", strconv.Itoa(len(q.Load)))
		for _, f := range q.Load {
			args = append(args, "@"+f)
		}
	}

	if q.Distance != nil {
		expr := fmt.Sprintf("geodistance(@%s,%s,%s)",
			q.Distance.Field, formatCoord(q.Distance.Lon), formatCoord(q.Distance.Lat))
		args = append(args, "APPLY", expr, "AS", q.Distance.As)
	}

	if len(q.SortBy) > 0 {
		args = append(args, "SORTBY", strconv.Itoa(len(q.SortBy)*2))
		for _, sf := range q.SortBy {
			dir := "ASC"
			if sf.Desc {
				dir = "DESC"
			}
			args = append(args, "@"+sf.Field, dir)
		}
	}

	args = append(args,
		"LIMIT", strconv.Itoa(q.Offset), strconv.Itoa(q.Limit),
		"DIALECT", "2",
	)

	cmd := s.b().Arbitrary("FT.AGGREGATE").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpAggregate, Err: err}
	}

	return parseAggregateResult(raw)
}

// Count returns the number of documents matching the predicate via
// FT.SEARCH with LIMIT 0 0.
func (s *Store) Count(ctx context.Context, index string, p db.Predicate) (int, error) {
	cmd := s.b().Arbitrary("FT.SEARCH").
		Args(index, buildPredicate(p), "LIMIT", "0", "0", "DIALECT", "2").
		Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return 0, &db.Error{Op: db.OpSearch, Err: err}
	}
	if len(raw) == 0 {
		return 0, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return 0, fmt.Errorf("parse count: %w", err)
	}
	return int(total), nil
}

// --- Result parsing ---

// parseAggregateResult converts the RESP2 reply [count, row1, row2, ...] where
// each row is a flat field/value array.
func parseAggregateResult(raw []rueidis.RedisMessage) (*db.AggregateResult, error) {
	if len(raw) == 0 {
		return &db.AggregateResult{}, nil
	}

	rows := make([]map[string]string, 0, len(raw)-1)
	for _, msg := range raw[1:] {
		pairs, err := msg.ToArray()
		if err != nil {
			continue
		}
		rows = append(rows, parseFieldPairs(pairs))
	}

	return &db.AggregateResult{Rows: rows}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// --- Predicate building ---

// buildPredicate translates db.Predicate into an FT query string.
func buildPredicate(p db.Predicate) string {
	if p.IsEmpty() {
		return "*"
	}

	var parts []string

	for _, t := range p.Tags {
		parts = append(parts, fmt.Sprintf("@%s:{%s}", t.Field, tagEscaper.Replace(t.Value)))
	}

	for _, r := range p.Ranges {
		parts = append(parts, buildNumRange(r))
	}

	for _, w := range p.Wildcards {
		if clause := buildWildcard(w); clause != "" {
			parts = append(parts, clause)
		}
	}

	if g := p.GeoRadius; g != nil {
		parts = append(parts, fmt.Sprintf("@%s:[%s %s %s m]",
			g.Field, formatCoord(g.Lon), formatCoord(g.Lat), formatCoord(g.Meters)))
	}

	return strings.Join(parts, " ")
}

func buildNumRange(r db.NumRange) string {
	minBound := "-inf"
	maxBound := "+inf"
	if r.Min != nil {
		minBound = formatCoord(*r.Min)
	}
	if r.Max != nil {
		maxBound = formatCoord(*r.Max)
	}
	return fmt.Sprintf("@%s:[%s %s]", r.Field, minBound, maxBound)
}

// buildWildcard produces dialect-2 infix wildcard clauses ORed across fields:
// (@name:(w'*rice*') | @description:(w'*rice*')).
//
// TEXT fields are tokenized on whitespace and a wildcard term matches single
// indexed terms, so a multi-word substring is split into one term per word,
// each ORed across the fields and all ANDed together.
func buildWildcard(w db.WildcardMatch) string {
	words := strings.Fields(w.Substring)
	if len(words) == 0 || len(w.Fields) == 0 {
		return ""
	}
	groups := make([]string, 0, len(words))
	for _, word := range words {
		term := fmt.Sprintf("w'*%s*'", wildcardEscaper.Replace(word))
		clauses := make([]string, 0, len(w.Fields))
		for _, f := range w.Fields {
			clauses = append(clauses, fmt.Sprintf("@%s:(%s)", f, term))
		}
		if len(clauses) == 1 {
			groups = append(groups, clauses[0])
		} else {
			groups = append(groups, "("+strings.Join(clauses, " | ")+")")
		}
	}
	return strings.Join(groups, " ")
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// --- Escaping ---

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	" ", "\\ ",
)

// wildcardEscaper neutralizes characters with meaning inside a w'...' term.
var wildcardEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`*`, `\*`,
	`?`, `\?`,
)
