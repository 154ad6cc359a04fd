// Package executor provides the execution strategies behind a
// batchwrite dispatcher: a Pooled strategy running tasks across a fixed
// set of worker goroutines, and a Synchronous strategy running every
// task inline on the submitting goroutine.
//
// The strategy is chosen once, at dispatcher construction, and never
// changes afterwards. Only the Pooled strategy implements Async; the
// Synchronous strategy cannot report completion through a callback by
// construction, so no runtime type inspection is ever needed on the
// submission path.
package executor

import (
	"context"
	"errors"

	"github.com/hansenmc/batchwrite/batch"
)

// ErrClosed is returned when a task is handed to an executor that has
// already been drained.
var ErrClosed = errors.New("batchwrite/executor: executor closed")

// Executor runs dispatch tasks. Implementations are safe for concurrent
// use by multiple submitters.
type Executor interface {
	// Execute runs the task through the plain fire-and-forget path.
	// The Synchronous strategy runs the task inline and returns its
	// error; the Pooled strategy enqueues it and returns nil, with any
	// eventual task failure surfaced only through the pool's own
	// fault logging.
	Execute(ctx context.Context, t *batch.Task) error

	// Drain stops intake and waits for outstanding tasks, bounded by
	// the context deadline. Safe to call more than once.
	Drain(ctx context.Context) error
}

// Async is implemented by executors that run tasks in the background
// and can report a task's failure through a completion callback.
type Async interface {
	Executor

	// ExecuteAsync enqueues the task and invokes onFailure with the
	// task's error if the task fails. onFailure runs on the worker
	// goroutine that executed the task and is called at most once.
	ExecuteAsync(ctx context.Context, t *batch.Task, onFailure func(err error, t *batch.Task)) error
}

// Synchronous executes every task inline on the submitting goroutine.
// There is no queue, no parallelism, and nothing to drain: by the time
// Execute returns, the task has fully completed.
type Synchronous struct{}

var _ Executor = (*Synchronous)(nil)

// NewSynchronous creates the inline execution strategy.
func NewSynchronous() *Synchronous { return &Synchronous{} }

// Execute runs the task immediately and returns its error to the
// caller. This is the only path where a task failure reaches the
// submitter directly.
func (s *Synchronous) Execute(ctx context.Context, t *batch.Task) error {
	return t.Action(ctx)
}

// Drain is a no-op: every submitted task already completed inline.
func (s *Synchronous) Drain(_ context.Context) error { return nil }
