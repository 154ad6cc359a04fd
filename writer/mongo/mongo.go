// Package mongo implements writer.Writer backed by MongoDB. Each batch
// is applied as one BulkWrite of replace-upserts keyed by URI.
//
// Usage:
//
//	client, _ := mongod.Connect(options.Client().ApplyURI(uri))
//	w := mongowriter.New(client.Database("docs"))
package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongod "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/hansenmc/batchwrite/batch"
	"github.com/hansenmc/batchwrite/writer"
)

// colDocuments is the collection batches are written to.
const colDocuments = "batchwrite_documents"

// Compile-time interface check.
var _ writer.Writer = (*Writer)(nil)

type documentModel struct {
	URI         string            `bson:"_id"`
	Content     []byte            `bson:"content"`
	ContentType string            `bson:"content_type,omitempty"`
	Metadata    map[string]string `bson:"metadata,omitempty"`
	BatchID     string            `bson:"batch_id"`
	WrittenAt   time.Time         `bson:"written_at"`
}

// Option configures the Writer.
type Option func(*Writer)

// WithLogger sets the logger for the writer.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Writer) { w.logger = logger }
}

// Writer implements writer.Writer backed by MongoDB. The caller owns
// the client lifecycle; the Writer never disconnects it.
type Writer struct {
	db     *mongod.Database
	logger *slog.Logger
}

// New creates a new MongoDB-backed writer over the given database.
func New(db *mongod.Database, opts ...Option) *Writer {
	w := &Writer{db: db, logger: slog.Default()}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Migrate creates the index on batch_id used for per-batch lookups.
// The primary lookup is by _id (the URI) and needs no extra index.
func (w *Writer) Migrate(ctx context.Context) error {
	_, err := w.db.Collection(colDocuments).Indexes().CreateOne(ctx, mongod.IndexModel{
		Keys: bson.D{{Key: "batch_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("batchwrite/mongo: migrate: %w", err)
	}
	return nil
}

// Ping verifies connectivity.
func (w *Writer) Ping(ctx context.Context) error {
	if err := w.db.Client().Ping(ctx, nil); err != nil {
		return fmt.Errorf("batchwrite/mongo: ping: %w", err)
	}
	return nil
}

// Write applies the batch as one unordered BulkWrite of replace-upserts.
func (w *Writer) Write(ctx context.Context, b *batch.Batch) error {
	if b.Len() == 0 {
		return nil
	}

	now := time.Now().UTC()
	models := make([]mongod.WriteModel, 0, len(b.Items))
	for i := range b.Items {
		item := &b.Items[i]
		models = append(models, mongod.NewReplaceOneModel().
			SetFilter(bson.D{{Key: "_id", Value: item.URI}}).
			SetReplacement(documentModel{
				URI:         item.URI,
				Content:     item.Content,
				ContentType: item.ContentType,
				Metadata:    item.Metadata,
				BatchID:     b.ID.String(),
				WrittenAt:   now,
			}).
			SetUpsert(true))
	}

	_, err := w.db.Collection(colDocuments).BulkWrite(ctx, models,
		options.BulkWrite().SetOrdered(false))
	if err != nil {
		return fmt.Errorf("batchwrite/mongo: write batch %s: %w", b.ID.String(), err)
	}
	return nil
}

// Close is a no-op: the caller owns the client.
func (w *Writer) Close() error { return nil }

// Read fetches one document by URI.
func (w *Writer) Read(ctx context.Context, uri string) (batch.Item, error) {
	var m documentModel
	err := w.db.Collection(colDocuments).
		FindOne(ctx, bson.D{{Key: "_id", Value: uri}}).
		Decode(&m)
	if err != nil {
		return batch.Item{}, fmt.Errorf("batchwrite/mongo: read %q: %w", uri, err)
	}

	return batch.Item{
		URI:         m.URI,
		Content:     m.Content,
		ContentType: m.ContentType,
		Metadata:    m.Metadata,
	}, nil
}
