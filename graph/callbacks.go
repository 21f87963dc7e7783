package graph

// Callbacks lets a caller observe execution-lifecycle events. All four
// methods are optional — a caller embeds NoopCallbacks to get no-op defaults
// for the ones it doesn't care about. Every method is invoked from the
// Dispatcher goroutine; a callback that needs to do async work must spawn
// its own goroutine rather than block here. Panics and errors raised by a
// callback are caught and logged by the Dispatcher; they never affect
// execution.
type Callbacks interface {
	OnExecutionStart(workflowID, executionID string)
	OnNodeCompleted(executionID, nodeID string, result Output)
	OnNodeFailed(executionID, nodeID string, err error)
	OnExecutionFinished(executionID string, summary ExecutionSummary)
}

// NoopCallbacks implements Callbacks with no-ops. Embed it to satisfy the
// interface while overriding only the methods you need.
type NoopCallbacks struct{}

func (NoopCallbacks) OnExecutionStart(string, string)                    {}
func (NoopCallbacks) OnNodeCompleted(string, string, Output)             {}
func (NoopCallbacks) OnNodeFailed(string, string, error)                 {}
func (NoopCallbacks) OnExecutionFinished(string, ExecutionSummary)       {}
