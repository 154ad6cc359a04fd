package batchwrite

import (
	"log/slog"

	"github.com/hansenmc/batchwrite/batch"
)

// FailureListener is notified when a batch write fails. It is invoked
// at most once per failed task, on the worker goroutine that executed
// the write; implementations shared across tasks must be safe for
// concurrent invocation. A listener must not call back into the
// dispatcher and must not panic.
type FailureListener interface {
	OnWriteFailure(err error, b *batch.Batch)
}

// FailureListenerFunc adapts a function to the FailureListener interface.
type FailureListenerFunc func(err error, b *batch.Batch)

// OnWriteFailure implements FailureListener.
func (f FailureListenerFunc) OnWriteFailure(err error, b *batch.Batch) { f(err, b) }

// MultiListener fans a failure notification out to several listeners,
// in order.
type MultiListener []FailureListener

// OnWriteFailure implements FailureListener.
func (m MultiListener) OnWriteFailure(err error, b *batch.Batch) {
	for _, l := range m {
		l.OnWriteFailure(err, b)
	}
}

// LogListener returns a FailureListener that records each failed batch
// with the given logger.
func LogListener(logger *slog.Logger) FailureListener {
	return FailureListenerFunc(func(err error, b *batch.Batch) {
		logger.Error("batch write failed",
			slog.String("batch_id", b.ID.String()),
			slog.Int("batch_size", b.Len()),
			slog.String("error", err.Error()),
		)
	})
}
