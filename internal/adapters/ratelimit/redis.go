package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisLimiter is a fixed-window limiter shared by every process using the
// same Redis and key. At most limit calls are allowed per window.
//
// While Redis is unreachable, calls are paced by an in-process limiter at the
// same average rate, so the quota is kept per process instead of shared.
type RedisLimiter struct {
	client   redis.Cmdable
	key      string
	limit    int64
	window   time.Duration
	now      func() time.Time
	fallback *LocalLimiter
}

func NewRedisLimiter(client redis.Cmdable, key string, limit int, window time.Duration) *RedisLimiter {
	if limit < 1 {
		limit = 1
	}
	if window <= 0 {
		window = time.Second
	}
	return &RedisLimiter{
		client:   client,
		key:      key,
		limit:    int64(limit),
		window:   window,
		now:      time.Now,
		fallback: NewLocalLimiter(window / time.Duration(limit)),
	}
}

// Wait blocks until the current window has room or ctx is done.
func (l *RedisLimiter) Wait(ctx context.Context) error {
	for {
		now := l.now()
		slot := now.UnixNano() / int64(l.window)
		key := l.key + ":" + strconv.FormatInt(slot, 10)

		pipe := l.client.TxPipeline()
		incr := pipe.Incr(ctx, key)
		pipe.PExpire(ctx, key, 2*l.window)
		if _, err := pipe.Exec(ctx); err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("rate limiter %s: %w", l.key, ctx.Err())
			}
			logrus.WithError(err).WithField("key", l.key).Warn("rate limiter redis unavailable; pacing locally")
			return l.fallback.Wait(ctx)
		}

		if incr.Val() <= l.limit {
			return nil
		}

		next := time.Unix(0, (slot+1)*int64(l.window))
		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
