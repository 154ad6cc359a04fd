// Package batch defines the value types dispatched by batchwrite: the
// write items grouped into a Batch, and the Task that carries a batch
// together with the action that persists it.
package batch

import (
	"context"
	"time"

	"github.com/hansenmc/batchwrite/id"
)

// Item is a single write operation within a batch. The dispatcher treats
// items as opaque; only writers interpret them.
type Item struct {
	// URI is the destination address of the document within the store.
	URI string `json:"uri"`

	// Content is the raw document body.
	Content []byte `json:"content"`

	// ContentType is an optional MIME type hint for the store.
	ContentType string `json:"content_type,omitempty"`

	// Metadata holds optional store-specific key/value pairs.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Batch is an ordered group of write items submitted as one unit of
// work. A Batch is immutable once handed to a dispatcher.
type Batch struct {
	ID        id.BatchID `json:"id"`
	Items     []Item     `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
}

// New creates a Batch over the given items with a fresh ID.
func New(items []Item) *Batch {
	return &Batch{
		ID:        id.NewBatchID(),
		Items:     items,
		CreatedAt: time.Now().UTC(),
	}
}

// Len returns the number of items in the batch.
func (b *Batch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Items)
}

// Action is the executable that persists a batch against the remote
// store. It must be safe to run on an arbitrary goroutine.
type Action func(ctx context.Context) error

// Task binds one Batch to the Action that writes it. The dispatcher
// owns a Task only for the duration of execution; nothing is retained
// after completion, successful or not.
type Task struct {
	ID     id.TaskID
	Batch  *Batch
	Action Action
}

// NewTask creates a Task for the given batch and write action.
func NewTask(b *Batch, action Action) *Task {
	return &Task{
		ID:     id.NewTaskID(),
		Batch:  b,
		Action: action,
	}
}

// Size returns the number of items carried by the task's batch.
func (t *Task) Size() int {
	if t == nil {
		return 0
	}
	return t.Batch.Len()
}
