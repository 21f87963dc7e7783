package graph

import "time"

// NodeStatus is the terminal (or in-flight) status of a single node within
// an execution.
type NodeStatus string

const (
	StatusPending   NodeStatus = "PENDING"
	StatusRunning   NodeStatus = "RUNNING"
	StatusCompleted NodeStatus = "COMPLETED"
	StatusFailed    NodeStatus = "FAILED"
	StatusSkipped   NodeStatus = "SKIPPED"
	StatusCancelled NodeStatus = "CANCELLED"
)

// ExecutionStatus is the overall status of an execution.
type ExecutionStatus string

const (
	ExecutionRunning   ExecutionStatus = "RUNNING"
	ExecutionCompleted ExecutionStatus = "COMPLETED"
	ExecutionFailed    ExecutionStatus = "FAILED"
	ExecutionCancelled ExecutionStatus = "CANCELLED"
)

// LogEntry is one record in an execution's ordered event log.
type LogEntry struct {
	Timestamp time.Time
	EventType string
	Data      map[string]any
}

// ExecutionState is the private, single-writer state of one in-flight
// execution. It is mutated only by the Dispatcher goroutine.
type ExecutionState struct {
	ExecutionID string
	WorkflowID  string
	WorkflowName string

	NodeResults map[string]Output
	NodeStatus  map[string]NodeStatus

	StartTime time.Time
	EndTime   time.Time

	Logs []LogEntry
}

// NewExecutionState creates empty tracking state for a graph of the given
// size, seeded with every node PENDING.
func NewExecutionState(executionID string, g *Graph) *ExecutionState {
	st := &ExecutionState{
		ExecutionID:  executionID,
		WorkflowID:   g.ID(),
		WorkflowName: g.Name(),
		NodeResults:  make(map[string]Output),
		NodeStatus:   make(map[string]NodeStatus, len(g.nodes)),
		StartTime:    time.Now(),
	}
	for _, id := range g.NodeIDs() {
		st.NodeStatus[id] = StatusPending
	}
	return st
}

// log appends an execution-log entry. Not concurrency-safe on its own; only
// ever called from the Dispatcher goroutine.
func (s *ExecutionState) log(eventType string, data map[string]any) {
	s.Logs = append(s.Logs, LogEntry{Timestamp: time.Now(), EventType: eventType, Data: data})
}

// FilterLogs returns the subset of Logs matching eventType, or all logs when
// eventType is empty. Supplements the original implementation's filterable
// execution-log query.
func (s *ExecutionState) FilterLogs(eventType string) []LogEntry {
	if eventType == "" {
		out := make([]LogEntry, len(s.Logs))
		copy(out, s.Logs)
		return out
	}
	var out []LogEntry
	for _, l := range s.Logs {
		if l.EventType == eventType {
			out = append(out, l)
		}
	}
	return out
}

// ExecutionSummary is the final snapshot returned by ExecuteWorkflow.
type ExecutionSummary struct {
	WorkflowID   string
	WorkflowName string

	CompletedCount int
	FailedCount    int
	SkippedCount   int
	CancelledCount int
	TotalCount     int

	Results map[string]Output

	ErrorMessage string
}

// IsComplete reports whether the execution finished with no failures.
func (s ExecutionSummary) IsComplete() bool {
	return s.FailedCount == 0 && s.ErrorMessage == "" && s.CompletedCount > 0
}

// IsFailed reports whether the execution finished with at least one failure
// or an engine-level error.
func (s ExecutionSummary) IsFailed() bool {
	return s.FailedCount > 0 || s.ErrorMessage != ""
}

// SuccessRate is completed / (completed + failed), or 0 when that divisor is
// zero.
func (s ExecutionSummary) SuccessRate() float64 {
	denom := s.CompletedCount + s.FailedCount
	if denom == 0 {
		return 0
	}
	return float64(s.CompletedCount) / float64(denom)
}

// summarize builds the final ExecutionSummary from execution state, coercing
// any still-PENDING node (unreachable from any START) to skipped.
func summarize(st *ExecutionState, errorMessage string) ExecutionSummary {
	sum := ExecutionSummary{
		WorkflowID:   st.WorkflowID,
		WorkflowName: st.WorkflowName,
		Results:      make(map[string]Output, len(st.NodeResults)),
		ErrorMessage: errorMessage,
	}
	for k, v := range st.NodeResults {
		sum.Results[k] = v
	}
	for _, status := range st.NodeStatus {
		sum.TotalCount++
		switch status {
		case StatusCompleted:
			sum.CompletedCount++
		case StatusFailed:
			sum.FailedCount++
		case StatusCancelled:
			sum.CancelledCount++
		default: // PENDING, RUNNING, SKIPPED all coerce to skipped in the final tally
			sum.SkippedCount++
		}
	}
	return sum
}
