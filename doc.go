// Package batchwrite provides a parallel batch-write dispatcher: it
// accepts batches of write items, executes the writes across a bounded
// worker pool (or inline, for concurrency <= 1), reports per-batch
// failures to a registered listener without halting the pool, and
// offers a deterministic, bounded drain.
//
// Dispatch is designed as a library, not a service. Construct a
// Dispatcher, submit one task per batch, and drain when done:
//
//	d, err := batchwrite.New(
//	    batchwrite.WithConcurrency(16),
//	    batchwrite.WithWriter(redisWriter),
//	    batchwrite.WithFailureListener(listener),
//	)
//	if err != nil { ... }
//	for _, b := range batches {
//	    _ = d.Write(ctx, b)
//	}
//	_ = d.Drain(ctx)
//
// # Execution strategies
//
// The concurrency setting fixes the execution strategy for the
// dispatcher's lifetime. With concurrency > 1 a pooled strategy runs
// tasks on exactly that many worker goroutines behind a bounded queue;
// with concurrency <= 1 a synchronous strategy runs every task inline
// on the submitting goroutine before Submit returns.
//
// # Failure visibility
//
// Failure reporting through the listener requires both the pooled
// strategy and a registered listener; this asymmetry is deliberate.
// Under the synchronous strategy the task's error is returned directly
// from Submit instead. Under the pooled strategy with no listener, a
// failed write is logged at Warn level and otherwise dropped.
//
// # Drain
//
// Drain stops intake and waits for in-flight and queued tasks, bounded
// by the configured shutdown timeout. The bound is best-effort: if it
// elapses, whatever is still running is abandoned and Drain returns
// nil. After Drain, submissions fail fast with ErrDispatcherClosed.
package batchwrite
