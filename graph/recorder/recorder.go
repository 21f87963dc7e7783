// Package recorder provides reference graph.Callbacks implementations that
// persist the advisory execution layout from §6.4: per-execution status,
// timestamps, and a per-node result_data map, backed by SQLite, MySQL, or an
// in-memory map. None of this is required by the engine — any graph.Callbacks
// implementation is equally valid — but it gives the engine something
// runnable end to end and puts the teacher's database drivers to work.
package recorder

import (
	"errors"
	"time"

	"github.com/wflow/treeflow-go/graph"
)

// ErrNotFound is returned when a requested execution id has no recorded
// state.
var ErrNotFound = errors.New("recorder: execution not found")

// Status mirrors the advisory §6.4 status field.
type Status string

const (
	StatusRunning   Status = "RUNNING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusCancelled Status = "CANCELLED"
)

// NodeResult is one entry of the §6.4 result_data map.
type NodeResult struct {
	Result    string    `json:"result"`
	Success   bool      `json:"success"`
	Timestamp time.Time `json:"timestamp"`
}

// ExecutionRecord is the full advisory persisted-state layout for one
// execution.
type ExecutionRecord struct {
	ExecutionID    string                `json:"execution_id"`
	WorkflowID     string                `json:"workflow_id"`
	Status         Status                `json:"status"`
	StartedAt      time.Time             `json:"started_at"`
	CompletedAt    time.Time             `json:"completed_at"`
	ResultData     map[string]NodeResult `json:"result_data"`
	TotalNodes     int                   `json:"total_nodes"`
	CompletedNodes int                   `json:"completed_nodes"`
	FailedNodes    int                   `json:"failed_nodes"`
	ErrorMessage   string                `json:"error_message"`
}

// Recorder both implements graph.Callbacks (so it can be wired straight into
// an Engine via graph.WithCallbacks) and exposes a Load method so a caller
// can query persisted state outside the callback lifecycle.
type Recorder interface {
	graph.Callbacks
	Load(executionID string) (ExecutionRecord, error)
}
