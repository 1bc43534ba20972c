package utils

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Throttle spaces out sequential requests so that consecutive calls to Wait
// return at least interval apart. The first call never blocks.
type Throttle struct {
	limiter *rate.Limiter
}

// NewThrottle creates a Throttle with the given minimum interval. A zero or
// negative interval disables throttling.
func NewThrottle(interval time.Duration) *Throttle {
	if interval <= 0 {
		return &Throttle{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Throttle{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the next request may proceed or ctx is done.
func (t *Throttle) Wait(ctx context.Context) error {
	return t.limiter.Wait(ctx)
}
