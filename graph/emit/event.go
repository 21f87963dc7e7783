package emit

// Event represents an observability event emitted during a tree execution.
//
// Events provide detailed insight into dispatcher behavior:
//   - Node dispatch start/complete/failed/skipped/cancelled
//   - Execution-level start/finish
//   - Engine errors and panics recovered from callbacks
//
// Events are emitted to an Emitter which can:
//   - Log to stdout/stderr
//   - Send to OpenTelemetry
//   - Store in time-series databases
//   - Trigger alerts
type Event struct {
	// RunID identifies the execution that emitted this event.
	RunID string

	// Step is unused by the Dispatcher (there is no step counter in a
	// dependency-graph execution); it is kept so Emitter implementations
	// that key on it degrade gracefully to zero.
	Step int

	// NodeID identifies which node emitted this event.
	// Empty string for execution-level events.
	NodeID string

	// Msg is the event name, e.g. "node_start", "node_completed",
	// "node_failed", "node_skipped", "node_cancelled", "execution_start",
	// "execution_finished", "engine_error", "callback_panic".
	Msg string

	// Meta contains additional structured data specific to this event.
	// Common keys:
	//   - "error": error text, for node_failed/engine_error/callback_panic
	//   - "result": the node's Output.String(), for node_completed
	//   - "status": the terminal ExecutionStatus, for execution_finished
	Meta map[string]interface{}
}
