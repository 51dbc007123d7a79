package geocode

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/sokohub/geosearch/internal/domain"
	"github.com/sokohub/geosearch/internal/domain/geo"
	"github.com/sokohub/geosearch/internal/metrics"
)

// Chain tries providers in priority order. A timeout, transport failure, or
// out-of-range result advances to the next provider; only full exhaustion
// fails the request.
type Chain struct {
	providers []Provider
	timeout   time.Duration
	logger    *zap.Logger
}

// NewChain creates a provider chain with a per-call timeout.
func NewChain(providers []Provider, timeout time.Duration, logger *zap.Logger) *Chain {
	return &Chain{providers: providers, timeout: timeout, logger: logger}
}

// Forward resolves an address to a point via the first provider that answers.
func (c *Chain) Forward(ctx context.Context, address string) (Result, error) {
	return c.resolve(ctx, func(ctx context.Context, p Provider) (Result, error) {
		return p.Forward(ctx, address)
	})
}

// Reverse resolves a point to an address via the first provider that answers.
func (c *Chain) Reverse(ctx context.Context, point geo.Point) (Result, error) {
	if !geo.ValidCoordinates(point.Latitude, point.Longitude) {
		return Result{}, domain.NewValidationError("point", "coordinates out of range")
	}
	return c.resolve(ctx, func(ctx context.Context, p Provider) (Result, error) {
		return p.Reverse(ctx, point)
	})
}

type providerCall func(ctx context.Context, p Provider) (Result, error)

func (c *Chain) resolve(ctx context.Context, call providerCall) (Result, error) {
	if len(c.providers) == 0 {
		return Result{}, domain.ErrProviderUnavailable
	}

	sawNotFound := false

	for _, p := range c.providers {
		// Caller cancellation outranks fallback.
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		res, err := call(callCtx, p)
		cancel()

		switch {
		case err == nil:
			if !geo.ValidCoordinates(res.Point.Latitude, res.Point.Longitude) {
				// Out-of-range coordinates are a provider defect, never surfaced.
				metrics.GeocodeAttempts.WithLabelValues(p.Name(), "error").Inc()
				c.logger.Warn("geocode provider returned out-of-range coordinates",
					zap.String("provider", p.Name()),
					zap.Float64("lat", res.Point.Latitude),
					zap.Float64("lon", res.Point.Longitude),
				)
				continue
			}
			metrics.GeocodeAttempts.WithLabelValues(p.Name(), "ok").Inc()
			res.Provider = p.Name()
			return res, nil

		case errors.Is(err, domain.ErrNotFound):
			metrics.GeocodeAttempts.WithLabelValues(p.Name(), "not_found").Inc()
			sawNotFound = true

		default:
			metrics.GeocodeAttempts.WithLabelValues(p.Name(), "error").Inc()
			c.logger.Warn("geocode provider failed, advancing chain",
				zap.String("provider", p.Name()),
				zap.Error(err),
			)
		}
	}

	if sawNotFound {
		return Result{}, domain.ErrNotFound
	}
	return Result{}, domain.ErrProviderUnavailable
}
