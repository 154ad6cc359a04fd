package batchwrite

import "errors"

var (
	// ErrInvalidConcurrency is returned by New when the configured
	// concurrency is negative.
	ErrInvalidConcurrency = errors.New("batchwrite: concurrency must be non-negative")

	// ErrDispatcherClosed is returned by Submit and Write once Drain
	// has been called.
	ErrDispatcherClosed = errors.New("batchwrite: dispatcher closed")

	// ErrNoWriter is returned by Write when no writer was configured.
	ErrNoWriter = errors.New("batchwrite: no writer configured")

	// ErrNilTask is returned by Submit for a nil task or a task with
	// no action.
	ErrNilTask = errors.New("batchwrite: nil task or task action")
)
