package invalidation

import "context"

// Invalidator removes cache entries by glob pattern.
type Invalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}
