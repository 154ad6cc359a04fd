package batchwrite

import (
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/hansenmc/batchwrite/executor"
	"github.com/hansenmc/batchwrite/middleware"
	"github.com/hansenmc/batchwrite/writer"
)

// Option configures a Dispatcher.
type Option func(*Dispatcher) error

// WithConcurrency sets the number of worker goroutines. A value of 1
// or 0 selects the synchronous inline strategy; negative values are
// rejected by New. Ignored when WithExecutor is used.
func WithConcurrency(n int) Option {
	return func(d *Dispatcher) error {
		d.config.Concurrency = n
		return nil
	}
}

// WithQueueDepth sets the capacity of the pooled strategy's task queue.
// Submissions block while the queue is full.
func WithQueueDepth(n int) Option {
	return func(d *Dispatcher) error {
		d.config.QueueDepth = n
		return nil
	}
}

// WithShutdownTimeout bounds how long Drain waits for outstanding
// batches before abandoning them.
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) error {
		d.config.ShutdownTimeout = timeout
		return nil
	}
}

// WithFailureListener registers the listener notified of failed batch
// writes. Failure notification requires the pooled strategy; see the
// package documentation.
func WithFailureListener(l FailureListener) Option {
	return func(d *Dispatcher) error {
		d.listener = l
		return nil
	}
}

// WithWriter sets the store writer used by Dispatcher.Write. The caller
// owns the writer's lifecycle; Drain does not close it.
func WithWriter(w writer.Writer) Option {
	return func(d *Dispatcher) error {
		d.writer = w
		return nil
	}
}

// WithLogger sets the structured logger for the dispatcher.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) error {
		d.logger = l
		return nil
	}
}

// WithMiddleware appends middleware applied around every task's write
// action, outermost first.
func WithMiddleware(mws ...middleware.Middleware) Option {
	return func(d *Dispatcher) error {
		d.mws = append(d.mws, mws...)
		return nil
	}
}

// WithExecutor injects a pre-built execution strategy, bypassing the
// default pool-or-synchronous selection. The strategy is fixed for the
// dispatcher's lifetime.
func WithExecutor(e executor.Executor) Option {
	return func(d *Dispatcher) error {
		d.exec = e
		return nil
	}
}

// WithRateLimit throttles task starts on the default pooled strategy
// with the given token-bucket limiter. Ignored by the synchronous
// strategy and by injected executors.
func WithRateLimit(l *rate.Limiter) Option {
	return func(d *Dispatcher) error {
		d.limiter = l
		return nil
	}
}
