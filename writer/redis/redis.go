// Package redis implements writer.Writer backed by Redis. Each item is
// encoded with MessagePack and stored under a "batchwrite:doc:" key;
// a Set tracks written URIs for enumeration. All items in a batch are
// applied through one transactional pipeline.
//
// Usage:
//
//	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	w := rediswriter.New(client)
//	if err := w.Ping(ctx); err != nil { ... }
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/hansenmc/batchwrite/batch"
	"github.com/hansenmc/batchwrite/writer"
)

// ErrNotFound is returned by Read when no document exists for a URI.
var ErrNotFound = errors.New("batchwrite/redis: document not found")

// Compile-time interface check.
var _ writer.Writer = (*Writer)(nil)

// Option configures the Writer.
type Option func(*Writer)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Writer) { w.logger = l }
}

// Writer implements writer.Writer backed by Redis.
type Writer struct {
	client goredis.Cmdable
	logger *slog.Logger
}

// New creates a new Redis-backed writer. The caller owns the Redis
// client lifecycle.
func New(client goredis.Cmdable, opts ...Option) *Writer {
	w := &Writer{client: client, logger: slog.Default()}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Migrate is a no-op: Redis needs no schema.
func (w *Writer) Migrate(_ context.Context) error { return nil }

// Ping verifies connectivity.
func (w *Writer) Ping(ctx context.Context) error {
	if err := w.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("batchwrite/redis: ping: %w", err)
	}
	return nil
}

// Write stores every item in the batch through one transactional
// pipeline, replacing existing URIs.
func (w *Writer) Write(ctx context.Context, b *batch.Batch) error {
	pipe := w.client.TxPipeline()

	for i := range b.Items {
		item := &b.Items[i]
		payload, err := msgpack.Marshal(item)
		if err != nil {
			return fmt.Errorf("batchwrite/redis: encode item %q: %w", item.URI, err)
		}
		pipe.Set(ctx, docKey(item.URI), payload, 0)
		pipe.SAdd(ctx, uriIndexKey, item.URI)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("batchwrite/redis: write batch %s: %w", b.ID.String(), err)
	}
	return nil
}

// Close is a no-op: the caller owns the client.
func (w *Writer) Close() error { return nil }

// Read fetches one document by URI. Returns ErrNotFound when absent.
func (w *Writer) Read(ctx context.Context, uri string) (batch.Item, error) {
	data, err := w.client.Get(ctx, docKey(uri)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return batch.Item{}, ErrNotFound
	}
	if err != nil {
		return batch.Item{}, fmt.Errorf("batchwrite/redis: read %q: %w", uri, err)
	}

	var item batch.Item
	if err := msgpack.Unmarshal(data, &item); err != nil {
		return batch.Item{}, fmt.Errorf("batchwrite/redis: decode %q: %w", uri, err)
	}
	return item, nil
}

// URIs lists every written URI.
func (w *Writer) URIs(ctx context.Context) ([]string, error) {
	uris, err := w.client.SMembers(ctx, uriIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("batchwrite/redis: list uris: %w", err)
	}
	return uris, nil
}
