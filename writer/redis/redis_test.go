package redis_test

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/hansenmc/batchwrite/batch"
	redwriter "github.com/hansenmc/batchwrite/writer/redis"
)

func setupWriter(t *testing.T) *redwriter.Writer {
	t.Helper()

	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return redwriter.New(client)
}

func TestPing(t *testing.T) {
	w := setupWriter(t)
	if err := w.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
}

func TestWriteAndRead(t *testing.T) {
	w := setupWriter(t)
	ctx := context.Background()

	b := batch.New([]batch.Item{
		{URI: "/a.json", Content: []byte(`{"a":1}`), ContentType: "application/json"},
		{URI: "/b.xml", Content: []byte(`<b/>`), ContentType: "application/xml",
			Metadata: map[string]string{"collection": "test"}},
	})

	if err := w.Write(ctx, b); err != nil {
		t.Fatalf("unexpected write error: %v", err)
	}

	got, err := w.Read(ctx, "/b.xml")
	if err != nil {
		t.Fatalf("unexpected read error: %v", err)
	}
	if string(got.Content) != `<b/>` {
		t.Errorf("unexpected content: %s", got.Content)
	}
	if got.ContentType != "application/xml" {
		t.Errorf("unexpected content type: %s", got.ContentType)
	}
	if got.Metadata["collection"] != "test" {
		t.Errorf("unexpected metadata: %v", got.Metadata)
	}
}

func TestWrite_ReplacesExistingURI(t *testing.T) {
	w := setupWriter(t)
	ctx := context.Background()

	if err := w.Write(ctx, batch.New([]batch.Item{{URI: "/doc", Content: []byte("v1")}})); err != nil {
		t.Fatalf("unexpected write error: %v", err)
	}
	if err := w.Write(ctx, batch.New([]batch.Item{{URI: "/doc", Content: []byte("v2")}})); err != nil {
		t.Fatalf("unexpected write error: %v", err)
	}

	got, err := w.Read(ctx, "/doc")
	if err != nil {
		t.Fatalf("unexpected read error: %v", err)
	}
	if string(got.Content) != "v2" {
		t.Errorf("expected replacement content v2, got %s", got.Content)
	}

	uris, err := w.URIs(ctx)
	if err != nil {
		t.Fatalf("unexpected uris error: %v", err)
	}
	if len(uris) != 1 {
		t.Errorf("expected 1 indexed uri, got %d: %v", len(uris), uris)
	}
}

func TestURIs(t *testing.T) {
	w := setupWriter(t)
	ctx := context.Background()

	b := batch.New([]batch.Item{
		{URI: "/x", Content: []byte("x")},
		{URI: "/y", Content: []byte("y")},
	})
	if err := w.Write(ctx, b); err != nil {
		t.Fatalf("unexpected write error: %v", err)
	}

	uris, err := w.URIs(ctx)
	if err != nil {
		t.Fatalf("unexpected uris error: %v", err)
	}
	sort.Strings(uris)
	if len(uris) != 2 || uris[0] != "/x" || uris[1] != "/y" {
		t.Errorf("unexpected uris: %v", uris)
	}
}

func TestRead_NotFound(t *testing.T) {
	w := setupWriter(t)

	_, err := w.Read(context.Background(), "/missing")
	if !errors.Is(err, redwriter.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
