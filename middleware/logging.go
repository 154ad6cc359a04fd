package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/hansenmc/batchwrite/batch"
)

// Logging returns middleware that logs batch write start and completion.
func Logging(logger *slog.Logger) Middleware {
	return func(ctx context.Context, t *batch.Task, next Handler) error {
		logger.Info("batch write started",
			slog.String("task_id", t.ID.String()),
			slog.String("batch_id", t.Batch.ID.String()),
			slog.Int("batch_size", t.Size()),
		)

		start := time.Now()
		err := next(ctx)
		elapsed := time.Since(start)

		if err != nil {
			logger.Error("batch write failed",
				slog.String("task_id", t.ID.String()),
				slog.String("batch_id", t.Batch.ID.String()),
				slog.Int("batch_size", t.Size()),
				slog.Duration("elapsed", elapsed),
				slog.String("error", err.Error()),
			)
		} else {
			logger.Info("batch write completed",
				slog.String("task_id", t.ID.String()),
				slog.String("batch_id", t.Batch.ID.String()),
				slog.Int("batch_size", t.Size()),
				slog.Duration("elapsed", elapsed),
			)
		}

		return err
	}
}
