package geocode

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/sokohub/geosearch/internal/domain"
	"github.com/sokohub/geosearch/internal/domain/geo"
)

const chainTimeout = 100 * time.Millisecond

func okResult(address string) Result {
	return Result{
		Address:   address,
		Point:     geo.Point{Latitude: -1.2833, Longitude: 36.8167},
		Precision: PrecisionStreet,
	}
}

func TestChainForward_FirstProviderWins(t *testing.T) {
	primary := &mockProvider{
		name: "nominatim",
		forwardFn: func(_ context.Context, _ string) (Result, error) {
			return okResult("Nairobi, Kenya"), nil
		},
	}
	secondary := &mockProvider{name: "locationiq"}

	chain := NewChain([]Provider{primary, secondary}, chainTimeout, zap.NewNop())
	res, err := chain.Forward(context.Background(), "Nairobi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Provider != "nominatim" {
		t.Errorf("provider = %q, want %q", res.Provider, "nominatim")
	}
	if secondary.forwardCalls != 0 {
		t.Errorf("secondary called %d times, want 0", secondary.forwardCalls)
	}
}

func TestChainForward_FallsBackOnProviderError(t *testing.T) {
	primary := &mockProvider{
		name: "nominatim",
		forwardFn: func(_ context.Context, _ string) (Result, error) {
			return Result{}, errors.New("503 service unavailable")
		},
	}
	secondary := &mockProvider{
		name: "locationiq",
		forwardFn: func(_ context.Context, _ string) (Result, error) {
			return okResult("Nairobi, Kenya"), nil
		},
	}

	chain := NewChain([]Provider{primary, secondary}, chainTimeout, zap.NewNop())
	res, err := chain.Forward(context.Background(), "Nairobi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Provider != "locationiq" {
		t.Errorf("provider = %q, want fallback %q", res.Provider, "locationiq")
	}
}

func TestChainForward_AllNotFound(t *testing.T) {
	notFound := func(_ context.Context, _ string) (Result, error) {
		return Result{}, domain.ErrNotFound
	}
	chain := NewChain([]Provider{
		&mockProvider{name: "a", forwardFn: notFound},
		&mockProvider{name: "b", forwardFn: notFound},
	}, chainTimeout, zap.NewNop())

	_, err := chain.Forward(context.Background(), "nowhere at all")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestChainForward_AllFailed(t *testing.T) {
	failing := func(_ context.Context, _ string) (Result, error) {
		return Result{}, errors.New("connection refused")
	}
	chain := NewChain([]Provider{
		&mockProvider{name: "a", forwardFn: failing},
		&mockProvider{name: "b", forwardFn: failing},
	}, chainTimeout, zap.NewNop())

	_, err := chain.Forward(context.Background(), "Nairobi")
	if !errors.Is(err, domain.ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestChainForward_MixedNotFoundAndErrorPrefersNotFound(t *testing.T) {
	chain := NewChain([]Provider{
		&mockProvider{name: "a", forwardFn: func(_ context.Context, _ string) (Result, error) {
			return Result{}, errors.New("timeout")
		}},
		&mockProvider{name: "b", forwardFn: func(_ context.Context, _ string) (Result, error) {
			return Result{}, domain.ErrNotFound
		}},
	}, chainTimeout, zap.NewNop())

	// One provider answered authoritatively: the input is unresolvable.
	_, err := chain.Forward(context.Background(), "nowhere")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestChainForward_OutOfRangeResultAdvances(t *testing.T) {
	primary := &mockProvider{
		name: "a",
		forwardFn: func(_ context.Context, _ string) (Result, error) {
			return Result{Point: geo.Point{Latitude: 120, Longitude: 36.8}}, nil
		},
	}
	secondary := &mockProvider{
		name: "b",
		forwardFn: func(_ context.Context, _ string) (Result, error) {
			return okResult("fallback"), nil
		},
	}

	chain := NewChain([]Provider{primary, secondary}, chainTimeout, zap.NewNop())
	res, err := chain.Forward(context.Background(), "Nairobi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Provider != "b" {
		t.Errorf("provider = %q, want %q", res.Provider, "b")
	}
}

func TestChainForward_EmptyChain(t *testing.T) {
	chain := NewChain(nil, chainTimeout, zap.NewNop())
	_, err := chain.Forward(context.Background(), "Nairobi")
	if !errors.Is(err, domain.ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestChainForward_CallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	provider := &mockProvider{name: "a"}
	chain := NewChain([]Provider{provider}, chainTimeout, zap.NewNop())

	_, err := chain.Forward(ctx, "Nairobi")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if provider.forwardCalls != 0 {
		t.Errorf("provider called %d times after cancellation, want 0", provider.forwardCalls)
	}
}

func TestChainReverse_InvalidPoint(t *testing.T) {
	provider := &mockProvider{name: "a"}
	chain := NewChain([]Provider{provider}, chainTimeout, zap.NewNop())

	_, err := chain.Reverse(context.Background(), geo.Point{Latitude: 91})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if provider.reverseCalls != 0 {
		t.Errorf("provider called %d times for invalid point, want 0", provider.reverseCalls)
	}
}

func TestChainReverse_Success(t *testing.T) {
	provider := &mockProvider{
		name: "nominatim",
		reverseFn: func(_ context.Context, p geo.Point) (Result, error) {
			return Result{Address: "Moi Avenue, Nairobi", Point: p, Precision: PrecisionStreet}, nil
		},
	}
	chain := NewChain([]Provider{provider}, chainTimeout, zap.NewNop())

	res, err := chain.Reverse(context.Background(), geo.Point{Latitude: -1.2833, Longitude: 36.8167})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Address != "Moi Avenue, Nairobi" {
		t.Errorf("address = %q", res.Address)
	}
	if res.Provider != "nominatim" {
		t.Errorf("provider = %q, want %q", res.Provider, "nominatim")
	}
}
