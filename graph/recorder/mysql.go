package recorder

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/wflow/treeflow-go/graph"
	_ "github.com/go-sql-driver/mysql"
)

// MySQLRecorder persists the §6.4 layout to a MySQL/MariaDB database, for
// deployments that already run a relational store rather than shipping
// SQLite files around.
type MySQLRecorder struct {
	db *sql.DB
}

// NewMySQLRecorder opens a connection using dsn (see
// github.com/go-sql-driver/mysql for the DSN format) and ensures its schema
// exists.
func NewMySQLRecorder(dsn string) (*MySQLRecorder, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("recorder: open mysql: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	r := &MySQLRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

func (r *MySQLRecorder) migrate() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS executions (
			execution_id    VARCHAR(191) PRIMARY KEY,
			workflow_id     VARCHAR(191) NOT NULL,
			status          VARCHAR(32) NOT NULL,
			started_at      DATETIME NOT NULL,
			completed_at    DATETIME NULL,
			total_nodes     INT NOT NULL DEFAULT 0,
			completed_nodes INT NOT NULL DEFAULT 0,
			failed_nodes    INT NOT NULL DEFAULT 0,
			error_message   TEXT NOT NULL,
			result_data     JSON NOT NULL
		)
	`)
	return err
}

func (r *MySQLRecorder) Close() error { return r.db.Close() }

func (r *MySQLRecorder) OnExecutionStart(workflowID, executionID string) {
	_, _ = r.db.ExecContext(context.Background(),
		`REPLACE INTO executions (execution_id, workflow_id, status, started_at, error_message, result_data) VALUES (?, ?, ?, ?, '', '{}')`,
		executionID, workflowID, StatusRunning, time.Now())
}

func (r *MySQLRecorder) OnNodeCompleted(executionID, nodeID string, result graph.Output) {
	r.updateResult(executionID, nodeID, NodeResult{Result: result.String(), Success: true, Timestamp: time.Now()}, true)
}

func (r *MySQLRecorder) OnNodeFailed(executionID, nodeID string, err error) {
	r.updateResult(executionID, nodeID, NodeResult{Result: err.Error(), Success: false, Timestamp: time.Now()}, false)
}

func (r *MySQLRecorder) updateResult(executionID, nodeID string, nr NodeResult, success bool) {
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

func (r *MySQLRecorder) OnExecutionFinished(executionID string, summary graph.ExecutionSummary) {
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

func (r *MySQLRecorder) Load(executionID string) (ExecutionRecord, error) {
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
