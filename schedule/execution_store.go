package schedule

import (
	"database/sql"
	"time"

	"github.com/promptcrafter/promptcrafter/errors"
)

// ExecutionStore handles persistence of job execution records
type ExecutionStore struct {
	db *sql.DB
}

// NewExecutionStore creates a new execution store
func NewExecutionStore(db *sql.DB) *ExecutionStore {
	return &ExecutionStore{db: db}
}

// CreateExecution inserts a new execution record (normally status "running")
func (s *ExecutionStore) CreateExecution(exec *Execution) error {
	now := time.Now().Format(time.RFC3339)
	exec.CreatedAt = now
	exec.UpdatedAt = now

	_, err := s.db.Exec(
		`INSERT INTO job_executions (
			id, scheduled_job_id, status, started_at, completed_at,
			duration_ms, output_path, result_summary, error_message,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		exec.ID,
		exec.ScheduledJobID,
		exec.Status,
		exec.StartedAt,
		exec.CompletedAt,
		exec.DurationMs,
		exec.OutputPath,
		exec.ResultSummary,
		exec.ErrorMessage,
		exec.CreatedAt,
		exec.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to create execution record")
	}
	return nil
}

// UpdateExecution persists the terminal state of an execution
func (s *ExecutionStore) UpdateExecution(exec *Execution) error {
	exec.UpdatedAt = time.Now().Format(time.RFC3339)

	res, err := s.db.Exec(
		`UPDATE job_executions
		 SET status = ?, completed_at = ?, duration_ms = ?,
		     output_path = ?, result_summary = ?, error_message = ?, updated_at = ?
		 WHERE id = ?`,
		exec.Status,
		exec.CompletedAt,
		exec.DurationMs,
		exec.OutputPath,
		exec.ResultSummary,
		exec.ErrorMessage,
		exec.UpdatedAt,
		exec.ID,
	)
	if err != nil {
		return errors.Wrapf(err, "failed to update execution %s", exec.ID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to check update result")
	}
	if n == 0 {
		return errors.Wrapf(errors.ErrNotFound, "execution %s", exec.ID)
	}
	return nil
}

// GetExecution retrieves an execution by ID
func (s *ExecutionStore) GetExecution(id string) (*Execution, error) {
	row := s.db.QueryRow(
		`SELECT id, scheduled_job_id, status, started_at, completed_at,
		        duration_ms, output_path, result_summary, error_message,
		        created_at, updated_at
		 FROM job_executions WHERE id = ?`, id)

	exec, err := scanExecution(row)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(errors.ErrNotFound, "execution %s", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get execution %s", id)
	}
	return exec, nil
}

// ListExecutions returns the most recent executions of a job, newest first
func (s *ExecutionStore) ListExecutions(scheduledJobID string, limit int) ([]*Execution, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, scheduled_job_id, status, started_at, completed_at,
		        duration_ms, output_path, result_summary, error_message,
		        created_at, updated_at
		 FROM job_executions
		 WHERE scheduled_job_id = ?
		 ORDER BY started_at DESC
		 LIMIT ?`, scheduledJobID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list executions")
	}
	defer rows.Close()

	var execs []*Execution
	for rows.Next() {
		exec, err := scanExecution(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan execution")
		}
		execs = append(execs, exec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate executions")
	}
	return execs, nil
}

// CleanupOldExecutions removes execution records older than retentionDays
// and returns the number deleted
func (s *ExecutionStore) CleanupOldExecutions(retentionDays int) (int, error) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays).Format(time.RFC3339)

	res, err := s.db.Exec(`DELETE FROM job_executions WHERE started_at < ?`, cutoff)
	if err != nil {
		return 0, errors.Wrap(err, "failed to clean up old executions")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "failed to count cleaned executions")
	}
	return int(n), nil
}

func scanExecution(row rowScanner) (*Execution, error) {
	var exec Execution
	var completedAt, outputPath, resultSummary, errorMessage sql.NullString
	var durationMs sql.NullInt64

	err := row.Scan(
		&exec.ID,
		&exec.ScheduledJobID,
		&exec.Status,
		&exec.StartedAt,
		&completedAt,
		&durationMs,
		&outputPath,
		&resultSummary,
		&errorMessage,
		&exec.CreatedAt,
		&exec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if completedAt.Valid {
		exec.CompletedAt = &completedAt.String
	}
	if durationMs.Valid {
		d := int(durationMs.Int64)
		exec.DurationMs = &d
	}
	if outputPath.Valid {
		exec.OutputPath = &outputPath.String
	}
	if resultSummary.Valid {
		exec.ResultSummary = &resultSummary.String
	}
	if errorMessage.Valid {
		exec.ErrorMessage = &errorMessage.String
	}

	return &exec, nil
}
