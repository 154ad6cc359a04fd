package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/hansenmc/batchwrite/batch"
)

// Recover returns middleware that recovers from panics in the write chain.
// Panics are converted to errors and logged with a stack trace.
func Recover(logger *slog.Logger) Middleware {
	return func(ctx context.Context, t *batch.Task, next Handler) (retErr error) {
		defer func() {
			if r := recover(); r != nil {
				stack := string(debug.Stack())
				logger.Error("batch write action panicked",
					slog.String("task_id", t.ID.String()),
					slog.String("batch_id", t.Batch.ID.String()),
					slog.Any("panic", r),
					slog.String("stack", stack),
				)
				retErr = fmt.Errorf("panic writing batch %s: %v", t.Batch.ID.String(), r)
			}
		}()
		return next(ctx)
	}
}
