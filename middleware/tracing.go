package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hansenmc/batchwrite/batch"
)

// tracerName is the instrumentation scope name for batchwrite tracing.
const tracerName = "github.com/hansenmc/batchwrite"

// Tracing returns middleware that wraps each batch write in an
// OpenTelemetry span. If no TracerProvider is configured globally, the
// default noop tracer is used and this middleware becomes a
// pass-through with zero overhead.
//
// Span attributes include: batchwrite.task.id, batchwrite.batch.id,
// batchwrite.batch.size. On error, the span status is set to
// codes.Error with the error message.
func Tracing() Middleware {
	tracer := otel.Tracer(tracerName)
	return TracingWithTracer(tracer)
}

// TracingWithTracer returns tracing middleware using the provided tracer.
// This variant allows injecting a specific TracerProvider for testing or
// when multiple providers are in use.
func TracingWithTracer(tracer trace.Tracer) Middleware {
	return func(ctx context.Context, t *batch.Task, next Handler) error {
		ctx, span := tracer.Start(ctx, "batchwrite.task.execute",
			trace.WithAttributes(
				attribute.String("batchwrite.task.id", t.ID.String()),
				attribute.String("batchwrite.batch.id", t.Batch.ID.String()),
				attribute.Int("batchwrite.batch.size", t.Size()),
			),
			trace.WithSpanKind(trace.SpanKindInternal),
		)
		defer span.End()

		err := next(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}

		return err
	}
}
