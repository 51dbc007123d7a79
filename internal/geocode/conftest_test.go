package geocode

import (
	"context"

	"github.com/sokohub/geosearch/internal/domain/geo"
)

// mockProvider is a hand-rolled Provider with overridable behavior.
type mockProvider struct {
	name      string
	forwardFn func(ctx context.Context, address string) (Result, error)
	reverseFn func(ctx context.Context, point geo.Point) (Result, error)

	forwardCalls int
	reverseCalls int
}

func (m *mockProvider) Name() string { return m.name }

func (m *mockProvider) Forward(ctx context.Context, address string) (Result, error) {
	m.forwardCalls++
	if m.forwardFn != nil {
		return m.forwardFn(ctx, address)
	}
	return Result{}, nil
}

func (m *mockProvider) Reverse(ctx context.Context, point geo.Point) (Result, error) {
	m.reverseCalls++
	if m.reverseFn != nil {
		return m.reverseFn(ctx, point)
	}
	return Result{}, nil
}

// mockResolver is a hand-rolled Resolver for decorator tests.
type mockResolver struct {
	forwardFn func(ctx context.Context, address string) (Result, error)
	reverseFn func(ctx context.Context, point geo.Point) (Result, error)

	forwardCalls int
	reverseCalls int
}

func (m *mockResolver) Forward(ctx context.Context, address string) (Result, error) {
	m.forwardCalls++
	if m.forwardFn != nil {
		return m.forwardFn(ctx, address)
	}
	return Result{}, nil
}

func (m *mockResolver) Reverse(ctx context.Context, point geo.Point) (Result, error) {
	m.reverseCalls++
	if m.reverseFn != nil {
		return m.reverseFn(ctx, point)
	}
	return Result{}, nil
}
