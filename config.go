package batchwrite

import "time"

// Config holds configuration for the Dispatcher.
type Config struct {
	// Concurrency is the number of worker goroutines writing batches.
	// A value of 1 or 0 selects the synchronous inline strategy.
	// Negative values are rejected by New.
	Concurrency int

	// QueueDepth is the capacity of the pooled strategy's task queue.
	// Submissions block while the queue is full. Ignored by the
	// synchronous strategy.
	QueueDepth int

	// ShutdownTimeout is the maximum time Drain waits for outstanding
	// batches before abandoning them.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Concurrency:     16,
		QueueDepth:      256,
		ShutdownTimeout: time.Hour,
	}
}
