package obs

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

type ctxKey string

const RequestIDKey ctxKey = "req_id"

// WithRequestID returns a context carrying reqID for Time to report.
func WithRequestID(ctx context.Context, reqID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, reqID)
}

// RequestID returns the request id stored in ctx, if any.
func RequestID(ctx context.Context) string {
	reqID, _ := ctx.Value(RequestIDKey).(string)
	return reqID
}

// Time logs the duration of op when the returned func is called,
// including the error errp points at.
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	reqID := RequestID(ctx)

	return func(errp *error) {
		dur := time.Since(start)

		entry := logrus.WithFields(logrus.Fields{
			"req_id": reqID,
			"op":     name,
			"dur_ms": dur.Milliseconds(),
		})
		if errp != nil && *errp != nil {
			entry.WithError(*errp).Warn("op failed")
			return
		}
		entry.Debug("op finished")
	}
}
