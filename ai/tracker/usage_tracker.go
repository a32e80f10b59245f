// Package tracker records every LLM API call in the model_usage table.
// The budget enforcer and the `db stats` command read from this data.
package tracker

import (
	"database/sql"
	"time"

	"github.com/promptcrafter/promptcrafter/errors"
)

// ModelUsage represents a record of one model API call
type ModelUsage struct {
	ID                int        `json:"id"`
	OperationType     string     `json:"operation_type"` // e.g. "generate", "schedule"
	ParamName         string     `json:"param_name"`     // template placeholder being generated
	ModelName         string     `json:"model_name"`
	ModelProvider     string     `json:"model_provider"`
	RequestTimestamp  time.Time  `json:"request_timestamp"`
	ResponseTimestamp *time.Time `json:"response_timestamp,omitempty"`
	PromptTokens      *int       `json:"prompt_tokens,omitempty"`
	CompletionTokens  *int       `json:"completion_tokens,omitempty"`
	TokensUsed        *int       `json:"tokens_used,omitempty"`
	CostUSD           *float64   `json:"cost_usd,omitempty"`
	Success           bool       `json:"success"`
	ErrorMessage      *string    `json:"error_message,omitempty"`
}

// UsageStats aggregates usage over a time period
type UsageStats struct {
	TotalRequests      int     `json:"total_requests"`
	SuccessfulRequests int     `json:"successful_requests"`
	TotalTokens        int     `json:"total_tokens"`
	TotalCostUSD       float64 `json:"total_cost_usd"`
	UniqueModels       int     `json:"unique_models"`
	SuccessRate        float64 `json:"success_rate"`
}

// UsageTracker provides functionality to track model usage
type UsageTracker struct {
	db *sql.DB
}

// NewUsageTracker creates a new usage tracker
func NewUsageTracker(db *sql.DB) *UsageTracker {
	return &UsageTracker{db: db}
}

// TrackUsage records a model API call in the database
func (t *UsageTracker) TrackUsage(usage *ModelUsage) error {
	query := `
		INSERT INTO model_usage (
			operation_type, param_name, model_name, model_provider,
			request_timestamp, response_timestamp, prompt_tokens,
			completion_tokens, tokens_used, cost_usd, success, error_message
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var responseTS interface{}
	if usage.ResponseTimestamp != nil {
		responseTS = usage.ResponseTimestamp.Format(time.RFC3339)
	}

	_, err := t.db.Exec(query,
		usage.OperationType, usage.ParamName,
		usage.ModelName, usage.ModelProvider,
		usage.RequestTimestamp.Format(time.RFC3339), responseTS,
		usage.PromptTokens, usage.CompletionTokens, usage.TokensUsed,
		usage.CostUSD, usage.Success, usage.ErrorMessage,
	)
	if err != nil {
		return errors.Wrap(err, "failed to record model usage")
	}
	return nil
}

// GetUsageStats returns usage statistics since the given time
func (t *UsageTracker) GetUsageStats(since time.Time) (*UsageStats, error) {
	query := `
		SELECT
			COUNT(*) as total_requests,
			COUNT(CASE WHEN success = 1 THEN 1 END) as successful_requests,
			COALESCE(SUM(COALESCE(tokens_used, 0)), 0) as total_tokens,
			COALESCE(SUM(COALESCE(cost_usd, 0)), 0) as total_cost,
			COUNT(DISTINCT model_name) as unique_models
		FROM model_usage
		WHERE request_timestamp >= ?`

	var stats UsageStats
	err := t.db.QueryRow(query, since.Format(time.RFC3339)).Scan(
		&stats.TotalRequests, &stats.SuccessfulRequests,
		&stats.TotalTokens, &stats.TotalCostUSD, &stats.UniqueModels,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query usage stats")
	}

	if stats.TotalRequests > 0 {
		stats.SuccessRate = float64(stats.SuccessfulRequests) / float64(stats.TotalRequests)
	}

	return &stats, nil
}

// SpendSince returns the total tracked cost in USD since the given time.
// Failed calls with no recorded cost contribute nothing.
func (t *UsageTracker) SpendSince(since time.Time) (float64, error) {
	var spend float64
	err := t.db.QueryRow(
		`SELECT COALESCE(SUM(COALESCE(cost_usd, 0)), 0) FROM model_usage WHERE request_timestamp >= ?`,
		since.Format(time.RFC3339),
	).Scan(&spend)
	if err != nil {
		return 0, errors.Wrap(err, "failed to query spend")
	}
	return spend, nil
}
