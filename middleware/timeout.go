package middleware

import (
	"context"
	"time"

	"github.com/hansenmc/batchwrite/batch"
)

// Timeout returns middleware that enforces a per-write deadline.
// A context.WithTimeout wraps the handler call; when the deadline is
// exceeded the context is cancelled and the write action should return
// context.DeadlineExceeded. A non-positive duration disables the
// deadline and the middleware becomes a pass-through.
func Timeout(d time.Duration) Middleware {
	return func(ctx context.Context, _ *batch.Task, next Handler) error {
		if d > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, d)
			defer cancel()
		}
		return next(ctx)
	}
}
