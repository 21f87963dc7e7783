package recorder

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/wflow/treeflow-go/graph"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists the §6.4 layout to a single SQLite file using the
// pure-Go modernc.org/sqlite driver (no cgo), matching the teacher's choice
// of driver for its own store package.
type SQLiteRecorder struct {
	db *sql.DB
}

// NewSQLiteRecorder opens (creating if necessary) a SQLite database at path
// and ensures its schema exists. Use ":memory:" for an ephemeral database.
func NewSQLiteRecorder(path string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("recorder: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS executions (
			execution_id    TEXT PRIMARY KEY,
			workflow_id     TEXT NOT NULL,
			status          TEXT NOT NULL,
			started_at      DATETIME NOT NULL,
			completed_at    DATETIME,
			total_nodes     INTEGER NOT NULL DEFAULT 0,
			completed_nodes INTEGER NOT NULL DEFAULT 0,
			failed_nodes    INTEGER NOT NULL DEFAULT 0,
			error_message   TEXT NOT NULL DEFAULT '',
			result_data     TEXT NOT NULL DEFAULT '{}'
		)
	`)
	return err
}

func (r *SQLiteRecorder) Close() error { return r.db.Close() }

func (r *SQLiteRecorder) OnExecutionStart(workflowID, executionID string) {
	_, _ = r.db.ExecContext(context.Background(),
		`INSERT OR REPLACE INTO executions (execution_id, workflow_id, status, started_at, result_data) VALUES (?, ?, ?, ?, '{}')`,
		executionID, workflowID, StatusRunning, time.Now())
}

func (r *SQLiteRecorder) OnNodeCompleted(executionID, nodeID string, result graph.Output) {
	r.updateResult(executionID, nodeID, NodeResult{Result: result.String(), Success: true, Timestamp: time.Now()}, true)
}

func (r *SQLiteRecorder) OnNodeFailed(executionID, nodeID string, err error) {
	r.updateResult(executionID, nodeID, NodeResult{Result: err.Error(), Success: false, Timestamp: time.Now()}, false)
}

func (r *SQLiteRecorder) updateResult(executionID, nodeID string, nr NodeResult, success bool) {
	rec, err := r.Load(executionID)
	if err != nil {
		return
	}
	if rec.ResultData == nil {
		rec.ResultData = make(map[string]NodeResult)
	}
	rec.ResultData[nodeID] = nr
	data, _ := json.Marshal(rec.ResultData)

	column := "failed_nodes"
	if success {
		column = "completed_nodes"
	}
	_, _ = r.db.ExecContext(context.Background(),
		fmt.Sprintf(`UPDATE executions SET result_data = ?, %s = %s + 1 WHERE execution_id = ?`, column, column),
		string(data), executionID)
}

func (r *SQLiteRecorder) OnExecutionFinished(executionID string, summary graph.ExecutionSummary) {
	status := StatusCompleted
	switch {
	case summary.ErrorMessage == "cancelled":
		status = StatusCancelled
	case summary.IsFailed():
		status = StatusFailed
	}
	_, _ = r.db.ExecContext(context.Background(),
		`UPDATE executions SET status = ?, completed_at = ?, total_nodes = ?, error_message = ? WHERE execution_id = ?`,
		status, time.Now(), summary.TotalCount, summary.ErrorMessage, executionID)
}

func (r *SQLiteRecorder) Load(executionID string) (ExecutionRecord, error) {
	row := r.db.QueryRowContext(context.Background(),
		`SELECT workflow_id, status, started_at, completed_at, total_nodes, completed_nodes, failed_nodes, error_message, result_data FROM executions WHERE execution_id = ?`,
		executionID)

	var (
		rec         ExecutionRecord
		completedAt sql.NullTime
		resultJSON  string
	)
	rec.ExecutionID = executionID
	if err := row.Scan(&rec.WorkflowID, &rec.Status, &rec.StartedAt, &completedAt, &rec.TotalNodes, &rec.CompletedNodes, &rec.FailedNodes, &rec.ErrorMessage, &resultJSON); err != nil {
		if err == sql.ErrNoRows {
			return ExecutionRecord{}, ErrNotFound
		}
		return ExecutionRecord{}, fmt.Errorf("recorder: load %q: %w", executionID, err)
	}
	if completedAt.Valid {
		rec.CompletedAt = completedAt.Time
	}
	rec.ResultData = make(map[string]NodeResult)
	_ = json.Unmarshal([]byte(resultJSON), &rec.ResultData)
	return rec, nil
}
