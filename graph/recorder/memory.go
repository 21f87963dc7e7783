package recorder

import (
	"sync"
	"time"

	"github.com/wflow/treeflow-go/graph"
)

// MemoryRecorder is an in-memory Recorder. Useful for tests and short-lived
// processes; data is lost on exit.
type MemoryRecorder struct {
	mu      sync.RWMutex
	records map[string]ExecutionRecord
}

// NewMemoryRecorder creates an empty MemoryRecorder.
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{records: make(map[string]ExecutionRecord)}
}

func (m *MemoryRecorder) OnExecutionStart(workflowID, executionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[executionID] = ExecutionRecord{
		ExecutionID: executionID,
		WorkflowID:  workflowID,
		Status:      StatusRunning,
		StartedAt:   time.Now(),
		ResultData:  make(map[string]NodeResult),
	}
}

func (m *MemoryRecorder) OnNodeCompleted(executionID, nodeID string, result graph.Output) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[executionID]
	if !ok {
		return
	}
	rec.ResultData[nodeID] = NodeResult{Result: result.String(), Success: true, Timestamp: time.Now()}
	rec.CompletedNodes++
	m.records[executionID] = rec
}

func (m *MemoryRecorder) OnNodeFailed(executionID, nodeID string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[executionID]
	if !ok {
		return
	}
	rec.ResultData[nodeID] = NodeResult{Result: err.Error(), Success: false, Timestamp: time.Now()}
	rec.FailedNodes++
	m.records[executionID] = rec
}

func (m *MemoryRecorder) OnExecutionFinished(executionID string, summary graph.ExecutionSummary) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[executionID]
	if !ok {
		return
	}
	rec.CompletedAt = time.Now()
	rec.TotalNodes = summary.TotalCount
	rec.ErrorMessage = summary.ErrorMessage
	switch {
	case summary.ErrorMessage == "cancelled":
		rec.Status = StatusCancelled
	case summary.IsFailed():
		rec.Status = StatusFailed
	default:
		rec.Status = StatusCompleted
	}
	m.records[executionID] = rec
}

func (m *MemoryRecorder) Load(executionID string) (ExecutionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[executionID]
	if !ok {
		return ExecutionRecord{}, ErrNotFound
	}
	return rec, nil
}
