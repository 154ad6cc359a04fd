// Package bunwriter implements writer.Writer over the Bun ORM with the
// PostgreSQL dialect. It is the ORM-flavoured alternative to the plain
// pgx writer; both land batches in the same upsert shape.
//
// Usage:
//
//	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
//	db := bun.NewDB(sqldb, pgdialect.New())
//	w := bunwriter.New(db)
package bunwriter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"

	"github.com/hansenmc/batchwrite/batch"
	"github.com/hansenmc/batchwrite/writer"
)

// Compile-time interface check.
var _ writer.Writer = (*Writer)(nil)

type documentModel struct {
	bun.BaseModel `bun:"table:batchwrite_documents"`

	URI         string            `bun:"uri,pk"`
	Content     []byte            `bun:"content,notnull,type:bytea"`
	ContentType string            `bun:"content_type,notnull,default:''"`
	Metadata    map[string]string `bun:"metadata,type:jsonb"`
	BatchID     string            `bun:"batch_id,notnull"`
	WrittenAt   time.Time         `bun:"written_at,notnull,default:current_timestamp"`
}

// Option configures the Writer.
type Option func(*Writer)

// WithLogger sets the logger for the writer.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Writer) {
		w.logger = logger
	}
}

// Writer implements writer.Writer over Bun. The caller owns the
// *bun.DB lifecycle; the Writer never closes it.
type Writer struct {
	db     *bun.DB
	logger *slog.Logger
}

// New creates a new Bun-backed writer.
func New(db *bun.DB, opts ...Option) *Writer {
	w := &Writer{
		db:     db,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// DB returns the underlying *bun.DB for advanced usage.
func (w *Writer) DB() *bun.DB {
	return w.db
}

// Migrate creates the documents table if it does not exist.
func (w *Writer) Migrate(ctx context.Context) error {
	_, err := w.db.NewCreateTable().
		Model((*documentModel)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("batchwrite/bun: migrate: %w", err)
	}
	return nil
}

// Ping verifies connectivity.
func (w *Writer) Ping(ctx context.Context) error {
	if err := w.db.PingContext(ctx); err != nil {
		return fmt.Errorf("batchwrite/bun: ping: %w", err)
	}
	return nil
}

// Write upserts every item in the batch in one INSERT ... ON CONFLICT
// statement.
func (w *Writer) Write(ctx context.Context, b *batch.Batch) error {
	if b.Len() == 0 {
		return nil
	}

	now := time.Now().UTC()
	models := make([]documentModel, 0, len(b.Items))
	for i := range b.Items {
		item := &b.Items[i]
		models = append(models, documentModel{
			URI:         item.URI,
			Content:     item.Content,
			ContentType: item.ContentType,
			Metadata:    item.Metadata,
			BatchID:     b.ID.String(),
			WrittenAt:   now,
		})
	}

	_, err := w.db.NewInsert().
		Model(&models).
		On("CONFLICT (uri) DO UPDATE").
		Set("content = EXCLUDED.content").
		Set("content_type = EXCLUDED.content_type").
		Set("metadata = EXCLUDED.metadata").
		Set("batch_id = EXCLUDED.batch_id").
		Set("written_at = EXCLUDED.written_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("batchwrite/bun: write batch %s: %w", b.ID.String(), err)
	}
	return nil
}

// Close is a no-op: the caller owns the db.
func (w *Writer) Close() error { return nil }

// Count returns the number of stored documents.
func (w *Writer) Count(ctx context.Context) (int, error) {
	n, err := w.db.NewSelect().Model((*documentModel)(nil)).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("batchwrite/bun: count: %w", err)
	}
	return n, nil
}

// Read fetches one document by URI.
func (w *Writer) Read(ctx context.Context, uri string) (batch.Item, error) {
	var m documentModel
	err := w.db.NewSelect().
		Model(&m).
		Where("uri = ?", uri).
		Scan(ctx)
	if err != nil {
		return batch.Item{}, fmt.Errorf("batchwrite/bun: read %q: %w", uri, err)
	}

	return batch.Item{
		URI:         m.URI,
		Content:     m.Content,
		ContentType: m.ContentType,
		Metadata:    m.Metadata,
	}, nil
}
