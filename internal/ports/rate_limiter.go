package ports

import "context"

// Gate for calls against a shared external quota.
type RateLimiter interface {
	// Block until one more call is allowed or ctx is done.
	Wait(ctx context.Context) error
}

// NoopLimiter never blocks.
type NoopLimiter struct{}

func (NoopLimiter) Wait(ctx context.Context) error { return ctx.Err() }
