// Package schedule provides recurring generation jobs backed by SQLite.
package schedule

import "time"

// Job represents a recurring generation job
type Job struct {
	ID              string
	Name            string
	ConfigPath      string // Config file the generation run loads
	IntervalSeconds int
	NextRunAt       *time.Time
	LastRunAt       *time.Time
	LastExecutionID string
	State           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// State constants for scheduled jobs
const (
	StateActive  = "active"  // Job is running on schedule
	StatePaused  = "paused"  // Job is temporarily paused by user
	StateDeleted = "deleted" // Job has been deleted by user (soft delete)
)

// Interval returns the job interval as a duration
func (j *Job) Interval() time.Duration {
	return time.Duration(j.IntervalSeconds) * time.Second
}
