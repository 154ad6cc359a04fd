package executor

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/time/rate"

	"github.com/hansenmc/batchwrite/batch"
)

// pooledItem pairs a task with its optional failure callback for the
// trip through the queue.
type pooledItem struct {
	task      *batch.Task
	onFailure func(err error, t *batch.Task)
}

// Pooled runs tasks on a fixed set of worker goroutines fed by a
// bounded queue.
//
// Queue policy: the queue is a buffered channel of depth queueDepth
// (default 256). When the queue is full, Execute and ExecuteAsync block
// until a worker frees a slot or the submission context is cancelled.
//
// Panics raised by a task action are not recovered here; install
// middleware.Recover on the dispatcher if actions may panic.
type Pooled struct {
	concurrency int
	queueDepth  int
	limiter     *rate.Limiter
	logger      *slog.Logger

	tasks chan pooledItem
	wg    sync.WaitGroup

	// execCtx is the context tasks run under. It is cancelled only when
	// a drain times out, abandoning whatever is still in flight.
	execCtx    context.Context
	cancelExec context.CancelFunc

	mu     sync.RWMutex
	closed bool
}

var _ Async = (*Pooled)(nil)

// PooledOption configures a Pooled executor.
type PooledOption func(*Pooled)

// WithQueueDepth sets the capacity of the task queue. Submissions block
// while the queue is full.
func WithQueueDepth(n int) PooledOption {
	return func(p *Pooled) { p.queueDepth = n }
}

// WithRateLimit throttles task starts with the given token-bucket
// limiter. Workers wait for a token before executing each task.
func WithRateLimit(l *rate.Limiter) PooledOption {
	return func(p *Pooled) { p.limiter = l }
}

// WithLogger sets the logger for the pool.
func WithLogger(l *slog.Logger) PooledOption {
	return func(p *Pooled) { p.logger = l }
}

// NewPooled creates a pooled executor with exactly concurrency worker
// goroutines and starts them. A concurrency below 1 is clamped to 1.
func NewPooled(concurrency int, opts ...PooledOption) *Pooled {
	if concurrency < 1 {
		concurrency = 1
	}

	p := &Pooled{
		concurrency: concurrency,
		queueDepth:  256,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.execCtx, p.cancelExec = context.WithCancel(context.Background())
	p.tasks = make(chan pooledItem, p.queueDepth)

	p.logger.Info("worker pool starting",
		slog.Int("concurrency", p.concurrency),
		slog.Int("queue_depth", p.queueDepth),
	)

	for range p.concurrency {
		p.wg.Add(1)
		go p.worker()
	}

	return p
}

// Execute enqueues the task without a completion callback. A failure of
// the task is logged at Warn level and otherwise lost to the caller.
func (p *Pooled) Execute(ctx context.Context, t *batch.Task) error {
	return p.enqueue(ctx, pooledItem{task: t})
}

// ExecuteAsync enqueues the task with a failure callback. The callback
// runs on the worker goroutine and is invoked at most once.
func (p *Pooled) ExecuteAsync(ctx context.Context, t *batch.Task, onFailure func(err error, t *batch.Task)) error {
	return p.enqueue(ctx, pooledItem{task: t, onFailure: onFailure})
}

func (p *Pooled) enqueue(ctx context.Context, it pooledItem) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrClosed
	}

	select {
	case p.tasks <- it:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Drain stops intake, then waits for queued and in-flight tasks to
// finish, bounded by the context deadline. On timeout the execution
// context is cancelled and whatever is still running is abandoned;
// Drain still returns nil — the bound is best-effort, not an error.
// Calling Drain again after it has completed is a no-op.
func (p *Pooled) Drain(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()

	p.logger.Info("worker pool draining", slog.Int("concurrency", p.concurrency))

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("worker pool drained")
	case <-ctx.Done():
		p.logger.Warn("worker pool drain timed out, abandoning in-flight batches")
		p.cancelExec()
	}

	return nil
}

// worker is run by each pool goroutine. It exits when the queue is
// closed and empty.
func (p *Pooled) worker() {
	defer p.wg.Done()

	for it := range p.tasks {
		if p.limiter != nil {
			// A wait error only happens once execCtx is cancelled,
			// i.e. the pool is being abandoned; run the task anyway
			// and let the action observe the cancelled context.
			_ = p.limiter.Wait(p.execCtx)
		}

		err := it.task.Action(p.execCtx)
		switch {
		case err == nil:
		case it.onFailure != nil:
			it.onFailure(err, it.task)
		default:
			p.logger.Warn("batch write failed with no failure listener attached",
				slog.String("task_id", it.task.ID.String()),
				slog.String("batch_id", it.task.Batch.ID.String()),
				slog.Int("batch_size", it.task.Size()),
				slog.String("error", err.Error()),
			)
		}
	}
}
