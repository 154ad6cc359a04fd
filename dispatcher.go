package batchwrite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/time/rate"

	"github.com/hansenmc/batchwrite/batch"
	"github.com/hansenmc/batchwrite/executor"
	"github.com/hansenmc/batchwrite/middleware"
	"github.com/hansenmc/batchwrite/writer"
)

// Dispatcher states. The strategy is fixed at construction; the only
// transitions afterwards are ready → draining → drained, once.
const (
	stateReady int32 = iota
	stateDraining
	stateDrained
)

// Dispatcher coordinates parallel execution of batch writes. Construct
// one with New; it is safe for concurrent submission from multiple
// goroutines. A Dispatcher is drained exactly once and is unusable
// afterwards.
type Dispatcher struct {
	config   Config
	logger   *slog.Logger
	listener FailureListener
	writer   writer.Writer
	limiter  *rate.Limiter
	mws      []middleware.Middleware
	mw       middleware.Middleware

	exec executor.Executor
	// async is non-nil when exec supports completion callbacks; the
	// capability is asserted once here, never on the submission path.
	async executor.Async

	state atomic.Int32
}

// New creates a Dispatcher and fixes its execution strategy: the
// injected executor if WithExecutor was used, otherwise a pooled
// strategy for concurrency > 1 and a synchronous strategy for
// concurrency <= 1. Negative concurrency fails fast.
func New(opts ...Option) (*Dispatcher, error) {
	d := &Dispatcher{
		config: DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	if d.config.Concurrency < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidConcurrency, d.config.Concurrency)
	}

	if d.exec == nil {
		if d.config.Concurrency > 1 {
			pooledOpts := []executor.PooledOption{
				executor.WithQueueDepth(d.config.QueueDepth),
				executor.WithLogger(d.logger),
			}
			if d.limiter != nil {
				pooledOpts = append(pooledOpts, executor.WithRateLimit(d.limiter))
			}
			d.exec = executor.NewPooled(d.config.Concurrency, pooledOpts...)
		} else {
			d.logger.Info("concurrency is <= 1, using the synchronous strategy")
			d.exec = executor.NewSynchronous()
		}
	}

	if a, ok := d.exec.(executor.Async); ok {
		d.async = a
	}

	if d.listener != nil && d.async == nil {
		// Failure visibility requires asynchronous completion; under
		// the synchronous strategy the task error is returned from
		// Submit instead and the listener is never invoked.
		d.logger.Warn("failure listener registered on a strategy without asynchronous completion, listener will not be invoked")
	}

	if len(d.mws) > 0 {
		d.mw = middleware.Chain(d.mws...)
	}

	return d, nil
}

// Logger returns the dispatcher's logger.
func (d *Dispatcher) Logger() *slog.Logger { return d.logger }

// Config returns a copy of the dispatcher's configuration.
func (d *Dispatcher) Config() Config { return d.config }

// Submit hands one task to the execution strategy. This is a
// fire-and-forget API, not a future: a nil return means the task was
// accepted, not that it succeeded.
//
// Under the pooled strategy Submit blocks only while the task queue is
// full (or until ctx is cancelled) and the task's eventual error goes
// to the failure listener, or to a Warn log when none is registered.
// Under the synchronous strategy the task runs to completion inline and
// its error is returned directly.
//
// After Drain, Submit fails fast with ErrDispatcherClosed.
func (d *Dispatcher) Submit(ctx context.Context, t *batch.Task) error {
	if t == nil || t.Action == nil {
		return ErrNilTask
	}
	if d.state.Load() != stateReady {
		return ErrDispatcherClosed
	}

	t = d.wrap(t)

	if d.listener != nil && d.async != nil {
		err := d.async.ExecuteAsync(ctx, t, func(err error, ft *batch.Task) {
			d.listener.OnWriteFailure(err, ft.Batch)
		})
		return d.mapExecErr(err)
	}

	return d.mapExecErr(d.exec.Execute(ctx, t))
}

// Write builds a task that persists the batch through the configured
// writer and submits it. See Submit for delivery semantics.
func (d *Dispatcher) Write(ctx context.Context, b *batch.Batch) error {
	if d.writer == nil {
		return ErrNoWriter
	}
	t := batch.NewTask(b, func(ctx context.Context) error {
		return d.writer.Write(ctx, b)
	})
	return d.Submit(ctx, t)
}

// Drain stops intake and waits for in-flight and queued tasks, bounded
// by the configured shutdown timeout. The bound is best-effort: if it
// elapses first, the remaining tasks are abandoned and Drain still
// returns nil. Drain is idempotent and terminal; after it returns, the
// dispatcher accepts no further submissions.
func (d *Dispatcher) Drain(ctx context.Context) error {
	if !d.state.CompareAndSwap(stateReady, stateDraining) {
		// Already draining or drained; benign repeat.
		return nil
	}
	defer d.state.Store(stateDrained)

	if d.config.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.ShutdownTimeout)
		defer cancel()
	}

	return d.exec.Drain(ctx)
}

// wrap applies the middleware chain around the task's action. The
// returned task shares the original's identity and batch.
func (d *Dispatcher) wrap(t *batch.Task) *batch.Task {
	if d.mw == nil {
		return t
	}
	wrapped := *t
	action := t.Action
	wrapped.Action = func(ctx context.Context) error {
		return d.mw(ctx, &wrapped, middleware.Handler(action))
	}
	return &wrapped
}

// mapExecErr translates the executor's closed sentinel into the
// dispatcher-level one, so callers only ever handle ErrDispatcherClosed.
func (d *Dispatcher) mapExecErr(err error) error {
	if errors.Is(err, executor.ErrClosed) {
		return ErrDispatcherClosed
	}
	return err
}
