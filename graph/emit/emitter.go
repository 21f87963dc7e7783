// Package emit provides pluggable observability for a tree execution's node
// transitions: stdout/JSON logging, an in-memory buffer for tests, and
// OpenTelemetry spans.
package emit

import "context"

// Emitter receives the node-transition and execution-lifecycle events a
// Dispatcher publishes (see dispatcher.go's emit()). Implementations must
// not block the Dispatcher goroutine and must not panic.
type Emitter interface {
	// Emit handles a single event. Never blocks the caller for long; slow
	// backends should buffer or go async internally.
	Emit(event Event)

	// EmitBatch handles multiple events in one call, in order. Returns an
	// error only for catastrophic failures, never for a single bad event.
	EmitBatch(ctx context.Context, events []Event) error

	// Flush blocks until any buffered events are delivered, or ctx expires.
	// Safe to call more than once.
	Flush(ctx context.Context) error
}
