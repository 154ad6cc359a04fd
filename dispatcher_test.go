package batchwrite_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hansenmc/batchwrite"
	"github.com/hansenmc/batchwrite/batch"
	"github.com/hansenmc/batchwrite/executor"
	"github.com/hansenmc/batchwrite/middleware"
	"github.com/hansenmc/batchwrite/writer/memory"
)

// recordingListener captures failure notifications for assertions.
type recordingListener struct {
	mu      sync.Mutex
	calls   int
	lastErr error
	lastB   *batch.Batch
}

func (l *recordingListener) OnWriteFailure(err error, b *batch.Batch) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	l.lastErr = err
	l.lastB = b
}

func (l *recordingListener) snapshot() (int, error, *batch.Batch) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls, l.lastErr, l.lastB
}

func newTask(t *testing.T, action batch.Action) *batch.Task {
	t.Helper()
	b := batch.New([]batch.Item{{URI: "/doc.json", Content: []byte(`{}`)}})
	return batch.NewTask(b, action)
}

func TestNew_NegativeConcurrency(t *testing.T) {
	_, err := batchwrite.New(batchwrite.WithConcurrency(-1))
	if !errors.Is(err, batchwrite.ErrInvalidConcurrency) {
		t.Fatalf("expected ErrInvalidConcurrency, got %v", err)
	}
}

func TestSubmit_SynchronousRunsInline(t *testing.T) {
	for _, concurrency := range []int{0, 1} {
		d, err := batchwrite.New(batchwrite.WithConcurrency(concurrency))
		if err != nil {
			t.Fatalf("unexpected New error: %v", err)
		}

		done := false
		if err := d.Submit(context.Background(), newTask(t, func(_ context.Context) error {
			done = true
			return nil
		})); err != nil {
			t.Fatalf("unexpected submit error: %v", err)
		}
		if !done {
			t.Fatalf("concurrency=%d: task must complete before Submit returns", concurrency)
		}
	}
}

func TestSubmit_SynchronousErrorReachesCaller(t *testing.T) {
	d, err := batchwrite.New(batchwrite.WithConcurrency(1))
	if err != nil {
		t.Fatalf("unexpected New error: %v", err)
	}

	want := errors.New("write rejected")
	got := d.Submit(context.Background(), newTask(t, func(_ context.Context) error {
		return want
	}))
	if !errors.Is(got, want) {
		t.Fatalf("expected inline task error from Submit, got %v", got)
	}
}

func TestSubmit_ListenerReceivesFailureExactlyOnce(t *testing.T) {
	listener := &recordingListener{}
	d, err := batchwrite.New(
		batchwrite.WithConcurrency(4),
		batchwrite.WithFailureListener(listener),
	)
	if err != nil {
		t.Fatalf("unexpected New error: %v", err)
	}

	want := errors.New("write rejected")
	task := newTask(t, func(_ context.Context) error { return want })

	if err := d.Submit(context.Background(), task); err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}
	if err := d.Drain(context.Background()); err != nil {
		t.Fatalf("unexpected drain error: %v", err)
	}

	calls, gotErr, gotBatch := listener.snapshot()
	if calls != 1 {
		t.Fatalf("expected exactly one failure notification, got %d", calls)
	}
	if !errors.Is(gotErr, want) {
		t.Errorf("listener error = %v, want %v", gotErr, want)
	}
	if gotBatch != task.Batch {
		t.Error("listener must receive the failed task's batch")
	}
}

func TestSubmit_NoListenerCallOnSuccess(t *testing.T) {
	listener := &recordingListener{}
	d, err := batchwrite.New(
		batchwrite.WithConcurrency(4),
		batchwrite.WithFailureListener(listener),
	)
	if err != nil {
		t.Fatalf("unexpected New error: %v", err)
	}

	if err := d.Submit(context.Background(), newTask(t, func(_ context.Context) error {
		return nil
	})); err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}
	if err := d.Drain(context.Background()); err != nil {
		t.Fatalf("unexpected drain error: %v", err)
	}

	if calls, _, _ := listener.snapshot(); calls != 0 {
		t.Fatalf("expected no notification for a successful task, got %d", calls)
	}
}

func TestSubmit_PooledWithoutListenerSwallowsFailure(t *testing.T) {
	d, err := batchwrite.New(batchwrite.WithConcurrency(4))
	if err != nil {
		t.Fatalf("unexpected New error: %v", err)
	}

	if err := d.Submit(context.Background(), newTask(t, func(_ context.Context) error {
		return errors.New("lost")
	})); err != nil {
		t.Fatalf("the pooled fire-and-forget path must not surface the task error, got %v", err)
	}
	if err := d.Drain(context.Background()); err != nil {
		t.Fatalf("unexpected drain error: %v", err)
	}
}

func TestDrain_WaitsForAllTasks(t *testing.T) {
	// 50 tasks of 10ms on 5 workers: 10 waves, so the drain must take
	// at least 100ms and finish well under the 5s bound.
	d, err := batchwrite.New(
		batchwrite.WithConcurrency(5),
		batchwrite.WithShutdownTimeout(5*time.Second),
	)
	if err != nil {
		t.Fatalf("unexpected New error: %v", err)
	}

	var completed atomic.Int32
	start := time.Now()
	for range 50 {
		if err := d.Submit(context.Background(), newTask(t, func(_ context.Context) error {
			time.Sleep(10 * time.Millisecond)
			completed.Add(1)
			return nil
		})); err != nil {
			t.Fatalf("unexpected submit error: %v", err)
		}
	}

	if err := d.Drain(context.Background()); err != nil {
		t.Fatalf("unexpected drain error: %v", err)
	}
	elapsed := time.Since(start)

	if got := completed.Load(); got != 50 {
		t.Fatalf("drain returned before all tasks completed: %d/50", got)
	}
	if elapsed < 100*time.Millisecond {
		t.Errorf("50 tasks of 10ms on 5 workers finished suspiciously fast: %v", elapsed)
	}
	if elapsed >= 5*time.Second {
		t.Errorf("drain must finish well under the shutdown timeout, took %v", elapsed)
	}
}

func TestDrain_Idempotent(t *testing.T) {
	d, err := batchwrite.New(batchwrite.WithConcurrency(2))
	if err != nil {
		t.Fatalf("unexpected New error: %v", err)
	}

	for range 2 {
		if err := d.Drain(context.Background()); err != nil {
			t.Fatalf("unexpected drain error: %v", err)
		}
	}
}

func TestSubmit_AfterDrainFailsFast(t *testing.T) {
	d, err := batchwrite.New(batchwrite.WithConcurrency(2))
	if err != nil {
		t.Fatalf("unexpected New error: %v", err)
	}
	if err := d.Drain(context.Background()); err != nil {
		t.Fatalf("unexpected drain error: %v", err)
	}

	start := time.Now()
	got := d.Submit(context.Background(), newTask(t, func(_ context.Context) error {
		return nil
	}))
	if !errors.Is(got, batchwrite.ErrDispatcherClosed) {
		t.Fatalf("expected ErrDispatcherClosed, got %v", got)
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Error("submit after drain must fail fast, not hang")
	}
}

func TestSubmit_SynchronousDrainNoOp(t *testing.T) {
	d, err := batchwrite.New(batchwrite.WithConcurrency(1))
	if err != nil {
		t.Fatalf("unexpected New error: %v", err)
	}

	start := time.Now()
	if err := d.Drain(context.Background()); err != nil {
		t.Fatalf("unexpected drain error: %v", err)
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Error("synchronous drain must return immediately")
	}

	// The dispatcher is still closed afterwards.
	got := d.Submit(context.Background(), newTask(t, func(_ context.Context) error { return nil }))
	if !errors.Is(got, batchwrite.ErrDispatcherClosed) {
		t.Fatalf("expected ErrDispatcherClosed, got %v", got)
	}
}

func TestSubmit_NilTask(t *testing.T) {
	d, err := batchwrite.New(batchwrite.WithConcurrency(2))
	if err != nil {
		t.Fatalf("unexpected New error: %v", err)
	}
	defer func() { _ = d.Drain(context.Background()) }()

	if err := d.Submit(context.Background(), nil); !errors.Is(err, batchwrite.ErrNilTask) {
		t.Fatalf("expected ErrNilTask for nil task, got %v", err)
	}
	if err := d.Submit(context.Background(), &batch.Task{}); !errors.Is(err, batchwrite.ErrNilTask) {
		t.Fatalf("expected ErrNilTask for task without action, got %v", err)
	}
}

func TestWrite_UsesConfiguredWriter(t *testing.T) {
	store := memory.New()
	d, err := batchwrite.New(
		batchwrite.WithConcurrency(4),
		batchwrite.WithWriter(store),
	)
	if err != nil {
		t.Fatalf("unexpected New error: %v", err)
	}

	b := batch.New([]batch.Item{
		{URI: "/a.json", Content: []byte(`{"a":1}`)},
		{URI: "/b.json", Content: []byte(`{"b":2}`)},
	})
	if err := d.Write(context.Background(), b); err != nil {
		t.Fatalf("unexpected write error: %v", err)
	}
	if err := d.Drain(context.Background()); err != nil {
		t.Fatalf("unexpected drain error: %v", err)
	}

	if store.Len() != 2 {
		t.Fatalf("expected 2 items persisted after drain, got %d", store.Len())
	}
}

func TestWrite_NoWriter(t *testing.T) {
	d, err := batchwrite.New(batchwrite.WithConcurrency(2))
	if err != nil {
		t.Fatalf("unexpected New error: %v", err)
	}
	defer func() { _ = d.Drain(context.Background()) }()

	b := batch.New([]batch.Item{{URI: "/x", Content: []byte("x")}})
	if err := d.Write(context.Background(), b); !errors.Is(err, batchwrite.ErrNoWriter) {
		t.Fatalf("expected ErrNoWriter, got %v", err)
	}
}

func TestWrite_FailingWriterNotifiesListener(t *testing.T) {
	store := memory.New()
	want := errors.New("store unavailable")
	store.FailWith(want)

	listener := &recordingListener{}
	d, err := batchwrite.New(
		batchwrite.WithConcurrency(4),
		batchwrite.WithWriter(store),
		batchwrite.WithFailureListener(listener),
	)
	if err != nil {
		t.Fatalf("unexpected New error: %v", err)
	}

	b := batch.New([]batch.Item{{URI: "/x", Content: []byte("x")}})
	if err := d.Write(context.Background(), b); err != nil {
		t.Fatalf("unexpected write error: %v", err)
	}
	if err := d.Drain(context.Background()); err != nil {
		t.Fatalf("unexpected drain error: %v", err)
	}

	calls, gotErr, gotBatch := listener.snapshot()
	if calls != 1 {
		t.Fatalf("expected one notification, got %d", calls)
	}
	if !errors.Is(gotErr, want) {
		t.Errorf("listener error = %v, want %v", gotErr, want)
	}
	if gotBatch != b {
		t.Error("listener must receive the failed batch")
	}
}

func TestWithExecutor_InjectedStrategy(t *testing.T) {
	// An injected synchronous executor overrides the concurrency-based
	// selection: tasks run inline even though concurrency says pooled.
	d, err := batchwrite.New(
		batchwrite.WithConcurrency(8),
		batchwrite.WithExecutor(executor.NewSynchronous()),
	)
	if err != nil {
		t.Fatalf("unexpected New error: %v", err)
	}

	want := errors.New("inline failure")
	got := d.Submit(context.Background(), newTask(t, func(_ context.Context) error {
		return want
	}))
	if !errors.Is(got, want) {
		t.Fatalf("expected the injected strategy's inline error, got %v", got)
	}
}

func TestWithMiddleware_WrapsTasks(t *testing.T) {
	var order []string
	var mu sync.Mutex
	record := func(s string) {
		mu.Lock()
		order = append(order, s)
		mu.Unlock()
	}

	mw := func(ctx context.Context, _ *batch.Task, next middleware.Handler) error {
		record("before")
		err := next(ctx)
		record("after")
		return err
	}

	d, err := batchwrite.New(
		batchwrite.WithConcurrency(1),
		batchwrite.WithMiddleware(mw),
	)
	if err != nil {
		t.Fatalf("unexpected New error: %v", err)
	}

	if err := d.Submit(context.Background(), newTask(t, func(_ context.Context) error {
		record("action")
		return nil
	})); err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	expected := []string{"before", "action", "after"}
	if len(order) != len(expected) {
		t.Fatalf("expected %d calls, got %d: %v", len(expected), len(order), order)
	}
	for i, want := range expected {
		if order[i] != want {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want)
		}
	}
}

func TestConcurrentSubmitters(t *testing.T) {
	store := memory.New()
	d, err := batchwrite.New(
		batchwrite.WithConcurrency(8),
		batchwrite.WithWriter(store),
	)
	if err != nil {
		t.Fatalf("unexpected New error: %v", err)
	}

	var wg sync.WaitGroup
	for g := range 4 {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := range 25 {
				b := batch.New([]batch.Item{{
					URI:     string(rune('a'+g)) + "/" + string(rune('0'+i%10)),
					Content: []byte("x"),
				}})
				if err := d.Write(context.Background(), b); err != nil {
					t.Errorf("unexpected write error: %v", err)
					return
				}
			}
		}(g)
	}
	wg.Wait()

	if err := d.Drain(context.Background()); err != nil {
		t.Fatalf("unexpected drain error: %v", err)
	}

	// 4 goroutines × 10 distinct URIs each.
	if store.Len() != 40 {
		t.Fatalf("expected 40 distinct documents, got %d", store.Len())
	}
}
