// Package writer defines the store contract consumed by batch write
// actions. A Writer persists one batch as a unit against a remote
// store; each backend (memory, redis, postgres, bun, mongo) implements
// it in its own subpackage.
//
// Writers receive already-configured clients; how the connection was
// built (TLS, auth, pooling) is the caller's concern. The dispatcher
// never constructs or closes a Writer.
package writer

import (
	"context"

	"github.com/hansenmc/batchwrite/batch"
)

// Writer persists batches against a remote store. Implementations must
// be safe for concurrent use: the dispatcher may call Write from many
// worker goroutines at once.
type Writer interface {
	// Migrate prepares backend schema or indexes. Backends without
	// schema make this a no-op.
	Migrate(ctx context.Context) error

	// Ping verifies connectivity to the store.
	Ping(ctx context.Context) error

	// Write persists every item in the batch. Items with an existing
	// URI are replaced. An error means the batch as a whole failed;
	// partial application is backend-dependent.
	Write(ctx context.Context, b *batch.Batch) error

	// Close releases resources owned by the writer. It does not close
	// clients owned by the caller.
	Close() error
}
