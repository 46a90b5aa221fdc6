package alert

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"breakreminder/internal/domain/entity"
	appErrors "breakreminder/internal/pkg/errors"
)

// RateLimited drops alerts that arrive faster than one per interval so
// repeated manual alerts cannot flood a remote chat.
type RateLimited struct {
	name    string
	sink    Sink
	limiter *rate.Limiter
}

// NewRateLimited wraps sink. An interval of zero disables the limit.
func NewRateLimited(name string, sink Sink, interval time.Duration) *RateLimited {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &RateLimited{
		name:    name,
		sink:    sink,
		limiter: rate.NewLimiter(limit, 1),
	}
}

func (r *RateLimited) Fire(ctx context.Context, alert entity.Alert) error {
	if !r.limiter.Allow() {
		return fmt.Errorf("%w: %s", appErrors.ErrRateLimited, r.name)
	}
	return r.sink.Fire(ctx, alert)
}
