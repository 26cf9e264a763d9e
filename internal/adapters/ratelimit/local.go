package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// LocalLimiter spaces calls at least minDelay apart within this process.
type LocalLimiter struct {
	lim *rate.Limiter
}

// NewLocalLimiter returns a limiter allowing one call per minDelay.
// A non-positive minDelay never blocks.
func NewLocalLimiter(minDelay time.Duration) *LocalLimiter {
	limit := rate.Inf
	if minDelay > 0 {
		limit = rate.Every(minDelay)
	}
	return &LocalLimiter{lim: rate.NewLimiter(limit, 1)}
}

func (l *LocalLimiter) Wait(ctx context.Context) error {
	return l.lim.Wait(ctx)
}
