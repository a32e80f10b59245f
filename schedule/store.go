package schedule

import (
	"database/sql"
	"time"

	"github.com/promptcrafter/promptcrafter/errors"
)

// Store handles persistence of scheduled jobs
type Store struct {
	db *sql.DB
}

// NewStore creates a new schedule store
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// CreateJob creates a new scheduled job
func (s *Store) CreateJob(job *Job) error {
	query := `
		INSERT INTO scheduled_jobs (
			id, name, config_path, interval_seconds,
			next_run_at, last_run_at, last_execution_id, state,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now()
	var nextRunAt interface{}
	if job.NextRunAt != nil {
		nextRunAt = job.NextRunAt.Format(time.RFC3339)
	}
	var lastRunAt interface{}
	if job.LastRunAt != nil {
		lastRunAt = job.LastRunAt.Format(time.RFC3339)
	}

	_, err := s.db.Exec(query,
		job.ID,
		job.Name,
		job.ConfigPath,
		job.IntervalSeconds,
		nextRunAt,
		lastRunAt,
		job.LastExecutionID,
		job.State,
		now.Format(time.RFC3339),
		now.Format(time.RFC3339),
	)
	if err != nil {
		return errors.Wrap(err, "failed to create scheduled job")
	}

	return nil
}

// GetJob retrieves a scheduled job by ID
func (s *Store) GetJob(id string) (*Job, error) {
	query := `
		SELECT id, name, config_path, interval_seconds,
		       next_run_at, last_run_at, last_execution_id, state,
		       created_at, updated_at
		FROM scheduled_jobs
		WHERE id = ?
	`
	job, err := scanJob(s.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(errors.ErrNotFound, "scheduled job %s", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get scheduled job %s", id)
	}
	return job, nil
}

// GetJobByName retrieves a non-deleted scheduled job by name
func (s *Store) GetJobByName(name string) (*Job, error) {
	query := `
		SELECT id, name, config_path, interval_seconds,
		       next_run_at, last_run_at, last_execution_id, state,
		       created_at, updated_at
		FROM scheduled_jobs
		WHERE name = ? AND state != ?
	`
	job, err := scanJob(s.db.QueryRow(query, name, StateDeleted))
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(errors.ErrNotFound, "scheduled job named %q", name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get scheduled job named %q", name)
	}
	return job, nil
}

// ListJobs returns all non-deleted jobs, newest first
func (s *Store) ListJobs() ([]*Job, error) {
	query := `
		SELECT id, name, config_path, interval_seconds,
		       next_run_at, last_run_at, last_execution_id, state,
		       created_at, updated_at
		FROM scheduled_jobs
		WHERE state != ?
		ORDER BY created_at DESC
	`
	rows, err := s.db.Query(query, StateDeleted)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list scheduled jobs")
	}
	defer rows.Close()

	return collectJobs(rows)
}

// ListJobsDue returns active jobs whose next_run_at is at or before now
func (s *Store) ListJobsDue(now time.Time) ([]*Job, error) {
	query := `
		SELECT id, name, config_path, interval_seconds,
		       next_run_at, last_run_at, last_execution_id, state,
		       created_at, updated_at
		FROM scheduled_jobs
		WHERE state = ? AND next_run_at IS NOT NULL AND next_run_at <= ?
		ORDER BY next_run_at ASC
	`
	rows, err := s.db.Query(query, StateActive, now.Format(time.RFC3339))
	if err != nil {
		return nil, errors.Wrap(err, "failed to list due jobs")
	}
	defer rows.Close()

	return collectJobs(rows)
}

// GetNextScheduledJob returns the active job with the soonest next_run_at
func (s *Store) GetNextScheduledJob() (*Job, error) {
	query := `
		SELECT id, name, config_path, interval_seconds,
		       next_run_at, last_run_at, last_execution_id, state,
		       created_at, updated_at
		FROM scheduled_jobs
		WHERE state = ? AND next_run_at IS NOT NULL
		ORDER BY next_run_at ASC
		LIMIT 1
	`
	job, err := scanJob(s.db.QueryRow(query, StateActive))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get next scheduled job")
	}
	return job, nil
}

// UpdateJobState transitions a job to a new state
func (s *Store) UpdateJobState(jobID string, newState string) error {
	res, err := s.db.Exec(
		`UPDATE scheduled_jobs SET state = ?, updated_at = ? WHERE id = ?`,
		newState, time.Now().Format(time.RFC3339), jobID,
	)
	if err != nil {
		return errors.Wrapf(err, "failed to update state of job %s", jobID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to check update result")
	}
	if n == 0 {
		return errors.Wrapf(errors.ErrNotFound, "scheduled job %s", jobID)
	}
	return nil
}

// UpdateJobInterval changes the interval of a job. The next run is
// rescheduled relative to now.
func (s *Store) UpdateJobInterval(jobID string, newInterval int) error {
	now := time.Now()
	nextRun := now.Add(time.Duration(newInterval) * time.Second)

	res, err := s.db.Exec(
		`UPDATE scheduled_jobs SET interval_seconds = ?, next_run_at = ?, updated_at = ? WHERE id = ?`,
		newInterval, nextRun.Format(time.RFC3339), now.Format(time.RFC3339), jobID,
	)
	if err != nil {
		return errors.Wrapf(err, "failed to update interval of job %s", jobID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to check update result")
	}
	if n == 0 {
		return errors.Wrapf(errors.ErrNotFound, "scheduled job %s", jobID)
	}
	return nil
}

// UpdateJobAfterExecution records the completed run and schedules the next one
func (s *Store) UpdateJobAfterExecution(jobID string, lastRun time.Time, executionID string, nextRun time.Time) error {
	_, err := s.db.Exec(
		`UPDATE scheduled_jobs
		 SET last_run_at = ?, last_execution_id = ?, next_run_at = ?, updated_at = ?
		 WHERE id = ?`,
		lastRun.Format(time.RFC3339), executionID,
		nextRun.Format(time.RFC3339), time.Now().Format(time.RFC3339),
		jobID,
	)
	if err != nil {
		return errors.Wrapf(err, "failed to update job %s after execution", jobID)
	}
	return nil
}

// DeleteJob soft-deletes a job. History in job_executions is preserved.
func (s *Store) DeleteJob(jobID string) error {
	return s.UpdateJobState(jobID, StateDeleted)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row rowScanner) (*Job, error) {
	var job Job
	var createdAt, updatedAt string
	var nextRunAt, lastRunAt, lastExecutionID sql.NullString

	err := row.Scan(
		&job.ID,
		&job.Name,
		&job.ConfigPath,
		&job.IntervalSeconds,
		&nextRunAt,
		&lastRunAt,
		&lastExecutionID,
		&job.State,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if nextRunAt.Valid {
		t, err := time.Parse(time.RFC3339, nextRunAt.String)
		if err != nil {
			return nil, errors.Wrapf(err, "corrupt next_run_at on job %s", job.ID)
		}
		job.NextRunAt = &t
	}
	if lastRunAt.Valid {
		t, err := time.Parse(time.RFC3339, lastRunAt.String)
		if err != nil {
			return nil, errors.Wrapf(err, "corrupt last_run_at on job %s", job.ID)
		}
		job.LastRunAt = &t
	}
	if lastExecutionID.Valid {
		job.LastExecutionID = lastExecutionID.String
	}

	job.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, errors.Wrapf(err, "corrupt created_at on job %s", job.ID)
	}
	job.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return nil, errors.Wrapf(err, "corrupt updated_at on job %s", job.ID)
	}

	return &job, nil
}

func collectJobs(rows *sql.Rows) ([]*Job, error) {
	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan scheduled job")
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate scheduled jobs")
	}
	return jobs, nil
}
