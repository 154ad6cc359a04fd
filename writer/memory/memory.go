// Package memory implements writer.Writer entirely in memory.
// Intended for unit testing and development.
package memory

import (
	"context"
	"sync"

	"github.com/hansenmc/batchwrite/batch"
	"github.com/hansenmc/batchwrite/writer"
)

// Ensure Writer implements writer.Writer at compile time.
var _ writer.Writer = (*Writer)(nil)

// Writer stores written items in a map keyed by URI.
// Safe for concurrent access.
type Writer struct {
	mu   sync.RWMutex
	docs map[string]batch.Item

	// failWith, when set, makes every Write fail. Used to exercise
	// failure paths in tests.
	failWith error
}

// New returns a new empty Writer.
func New() *Writer {
	return &Writer{docs: make(map[string]batch.Item)}
}

// FailWith makes every subsequent Write return err. Pass nil to
// restore normal behaviour.
func (w *Writer) FailWith(err error) {
	w.mu.Lock()
	w.failWith = err
	w.mu.Unlock()
}

// Migrate is a no-op for the memory writer.
func (w *Writer) Migrate(_ context.Context) error { return nil }

// Ping always succeeds for the memory writer.
func (w *Writer) Ping(_ context.Context) error { return nil }

// Write stores every item in the batch, replacing existing URIs.
func (w *Writer) Write(_ context.Context, b *batch.Batch) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.failWith != nil {
		return w.failWith
	}

	for _, item := range b.Items {
		w.docs[item.URI] = item
	}
	return nil
}

// Close is a no-op for the memory writer.
func (w *Writer) Close() error { return nil }

// Get returns the item stored under uri, if any.
func (w *Writer) Get(uri string) (batch.Item, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	item, ok := w.docs[uri]
	return item, ok
}

// Len returns the number of stored items.
func (w *Writer) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.docs)
}
