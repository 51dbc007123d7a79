package product

import (
	"context"

	"github.com/sokohub/geosearch/internal/db"
)

// mockStore is a hand-rolled store with overridable behavior per test.
type mockStore struct {
	aggregateFn   func(ctx context.Context, q *db.AggregateQuery) (*db.AggregateResult, error)
	countFn       func(ctx context.Context, index string, p db.Predicate) (int, error)
	hsetMultiFn   func(ctx context.Context, items []db.HashSetItem) error
	delFn         func(ctx context.Context, keys ...string) error
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	indexExistsFn func(ctx context.Context, name string) (bool, error)

	aggregateQueries []*db.AggregateQuery
	countPredicates  []db.Predicate
}

func (m *mockStore) Aggregate(ctx context.Context, q *db.AggregateQuery) (*db.AggregateResult, error) {
	m.aggregateQueries = append(m.aggregateQueries, q)
	if m.aggregateFn != nil {
		return m.aggregateFn(ctx, q)
	}
	return &db.AggregateResult{}, nil
}

func (m *mockStore) Count(ctx context.Context, index string, p db.Predicate) (int, error) {
	m.countPredicates = append(m.countPredicates, p)
	if m.countFn != nil {
		return m.countFn(ctx, index, p)
	}
	return 0, nil
}

func (m *mockStore) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if m.hsetMultiFn != nil {
		return m.hsetMultiFn(ctx, items)
	}
	return nil
}

func (m *mockStore) Del(ctx context.Context, keys ...string) error {
	if m.delFn != nil {
		return m.delFn(ctx, keys...)
	}
	return nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return false, nil
}
