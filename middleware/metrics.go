package middleware

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/hansenmc/batchwrite/batch"
)

// meterName is the instrumentation scope name for batchwrite metrics.
const meterName = "github.com/hansenmc/batchwrite"

// Metrics returns middleware that records per-batch write metrics using
// the global OTel MeterProvider. If no MeterProvider is configured, noop
// instruments are used and this middleware becomes a pass-through.
//
// Instruments:
//   - batchwrite.batch.duration (Float64Histogram): write time in
//     seconds, with attribute: status ("ok" or "error")
//   - batchwrite.batch.writes (Int64Counter): total batch writes,
//     with attribute: status
//   - batchwrite.batch.items (Int64Counter): total items carried by
//     written batches, with attribute: status
func Metrics() Middleware {
	meter := otel.Meter(meterName)
	return MetricsWithMeter(meter)
}

// MetricsWithMeter returns metrics middleware using the provided meter.
// This variant allows injecting a specific MeterProvider for testing.
func MetricsWithMeter(meter metric.Meter) Middleware {
	// Create instruments once at middleware construction time.
	// OTel instruments are safe for concurrent use. On error, the API
	// returns noop instruments so the middleware degrades gracefully.
	duration, dErr := meter.Float64Histogram(
		"batchwrite.batch.duration",
		metric.WithDescription("Duration of batch writes in seconds"),
		metric.WithUnit("s"),
	)
	_ = dErr // noop fallback guaranteed by OTel API contract

	writes, wErr := meter.Int64Counter(
		"batchwrite.batch.writes",
		metric.WithDescription("Total number of batch writes"),
		metric.WithUnit("{write}"),
	)
	_ = wErr // noop fallback guaranteed by OTel API contract

	items, iErr := meter.Int64Counter(
		"batchwrite.batch.items",
		metric.WithDescription("Total number of items carried by written batches"),
		metric.WithUnit("{item}"),
	)
	_ = iErr // noop fallback guaranteed by OTel API contract

	return func(ctx context.Context, t *batch.Task, next Handler) error {
		start := time.Now()
		err := next(ctx)
		elapsed := time.Since(start).Seconds()

		status := "ok"
		if err != nil {
			status = "error"
		}

		attrs := metric.WithAttributes(
			attribute.String("status", status),
		)

		duration.Record(ctx, elapsed, attrs)
		writes.Add(ctx, 1, attrs)
		items.Add(ctx, int64(t.Size()), attrs)

		return err
	}
}
