package schedule

// Execution represents a single run of a scheduled job
//
// Each time a scheduled job fires, an Execution record tracks timing,
// status, the output file written, and the error if the run failed.
// This provides execution history for the `schedule history` command.
type Execution struct {
	ID             string `json:"id"`
	ScheduledJobID string `json:"scheduled_job_id"`

	Status string `json:"status"` // "running", "completed", "failed"

	StartedAt   string  `json:"started_at"`             // RFC3339 timestamp
	CompletedAt *string `json:"completed_at,omitempty"` // RFC3339 timestamp (null if running)
	DurationMs  *int    `json:"duration_ms,omitempty"`  // Milliseconds (null if running)

	OutputPath    *string `json:"output_path,omitempty"`
	ResultSummary *string `json:"result_summary,omitempty"`
	ErrorMessage  *string `json:"error_message,omitempty"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// Execution status constants for type safety
const (
	ExecutionStatusRunning   = "running"
	ExecutionStatusCompleted = "completed"
	ExecutionStatusFailed    = "failed"
)
