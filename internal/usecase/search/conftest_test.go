package search

import (
	"context"
	"time"

	"github.com/sokohub/geosearch/internal/domain"
	searchdom "github.com/sokohub/geosearch/internal/domain/search"
	"github.com/sokohub/geosearch/internal/repository/product"
)

// mockRepo is a hand-rolled Repository with overridable behavior.
type mockRepo struct {
	searchFn func(ctx context.Context, q *searchdom.Query) ([]product.Hit, int, error)

	searchCalls int
}

func (m *mockRepo) Search(ctx context.Context, q *searchdom.Query) ([]product.Hit, int, error) {
	m.searchCalls++
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return nil, 0, nil
}

// mockOwners is a hand-rolled OwnerReader.
type mockOwners struct {
	summariesFn func(ctx context.Context, ids []string) (map[string]domain.Summary, error)

	requestedIDs [][]string
}

func (m *mockOwners) Summaries(ctx context.Context, ids []string) (map[string]domain.Summary, error) {
	m.requestedIDs = append(m.requestedIDs, ids)
	if m.summariesFn != nil {
		return m.summariesFn(ctx, ids)
	}
	return map[string]domain.Summary{}, nil
}

// brokenCache errors on every operation, for degraded-cache tests.
type brokenCache struct{ err error }

func (b *brokenCache) Get(context.Context, string) ([]byte, error) { return nil, b.err }

func (b *brokenCache) Set(context.Context, string, []byte, time.Duration) error { return b.err }
