// Package middleware provides composable middleware for batch write
// execution.
//
// A [Middleware] is a function that wraps a write action. Middleware are
// composed into a chain using [Chain] and applied before each batch is
// written. They are applied right-to-left: the first middleware in the
// slice is the outermost wrapper.
//
//	// logging → recover → action
//	chain := middleware.Chain(middleware.Logging(logger), middleware.Recover(logger))
//
// # Built-in Middleware
//
//   - [Logging] — logs batch ID, size, duration, and outcome per write
//   - [Recover] — catches panics and converts them to errors
//   - [Timeout] — cancels the write context after a configured duration
//   - [Tracing] — wraps the write in an OpenTelemetry span
//   - [Metrics] — records per-write duration and outcome counters
//
// # Writing Custom Middleware
//
//	func MyMiddleware() middleware.Middleware {
//	    return func(ctx context.Context, t *batch.Task, next middleware.Handler) error {
//	        // pre-processing
//	        err := next(ctx)
//	        // post-processing
//	        return err
//	    }
//	}
//
// Middleware MUST call next to continue the chain unless intentionally
// short-circuiting, and must never retry the write: the dispatcher
// guarantees at-most-once execution per submitted task.
package middleware
