package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptcrafter/promptcrafter/errors"
	pctest "github.com/promptcrafter/promptcrafter/internal/testing"
	"github.com/promptcrafter/promptcrafter/internal/util"
)

func createJobForExecutions(t *testing.T, store *Store) *Job {
	t.Helper()
	job := testJob("exec-host")
	require.NoError(t, store.CreateJob(job))
	return job
}

func TestCreateAndGetExecution(t *testing.T) {
	db := pctest.CreateTestDB(t)
	job := createJobForExecutions(t, NewStore(db))
	store := NewExecutionStore(db)

	exec := &Execution{
		ID:             newExecutionID(),
		ScheduledJobID: job.ID,
		Status:         ExecutionStatusRunning,
		StartedAt:      time.Now().Format(time.RFC3339),
	}
	require.NoError(t, store.CreateExecution(exec))

	got, err := store.GetExecution(exec.ID)
	require.NoError(t, err)
	assert.Equal(t, ExecutionStatusRunning, got.Status)
	assert.Equal(t, job.ID, got.ScheduledJobID)
	assert.Nil(t, got.CompletedAt)
	assert.Nil(t, got.DurationMs)
}

func TestUpdateExecutionToCompleted(t *testing.T) {
	db := pctest.CreateTestDB(t)
	job := createJobForExecutions(t, NewStore(db))
	store := NewExecutionStore(db)

	exec := &Execution{
		ID:             newExecutionID(),
		ScheduledJobID: job.ID,
		Status:         ExecutionStatusRunning,
		StartedAt:      time.Now().Format(time.RFC3339),
	}
	require.NoError(t, store.CreateExecution(exec))

	completedAt := time.Now().Format(time.RFC3339)
	exec.Status = ExecutionStatusCompleted
	exec.CompletedAt = &completedAt
	exec.DurationMs = util.Ptr(1234)
	exec.OutputPath = util.Ptr("output/result.txt")
	exec.ResultSummary = util.Ptr("2 params, 1 cache hit")
	require.NoError(t, store.UpdateExecution(exec))

	got, err := store.GetExecution(exec.ID)
	require.NoError(t, err)
	assert.Equal(t, ExecutionStatusCompleted, got.Status)
	require.NotNil(t, got.DurationMs)
	assert.Equal(t, 1234, *got.DurationMs)
	require.NotNil(t, got.OutputPath)
	assert.Equal(t, "output/result.txt", *got.OutputPath)
}

func TestUpdateExecutionNotFound(t *testing.T) {
	db := pctest.CreateTestDB(t)
	store := NewExecutionStore(db)

	err := store.UpdateExecution(&Execution{ID: "missing", Status: ExecutionStatusFailed})
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestListExecutionsNewestFirst(t *testing.T) {
	db := pctest.CreateTestDB(t)
	job := createJobForExecutions(t, NewStore(db))
	store := NewExecutionStore(db)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		exec := &Execution{
			ID:             newExecutionID(),
			ScheduledJobID: job.ID,
			Status:         ExecutionStatusCompleted,
			StartedAt:      base.Add(time.Duration(i) * time.Minute).Format(time.RFC3339),
		}
		require.NoError(t, store.CreateExecution(exec))
	}

	execs, err := store.ListExecutions(job.ID, 2)
	require.NoError(t, err)
	require.Len(t, execs, 2)
	assert.True(t, execs[0].StartedAt > execs[1].StartedAt)
}

func TestCleanupOldExecutions(t *testing.T) {
	db := pctest.CreateTestDB(t)
	job := createJobForExecutions(t, NewStore(db))
	store := NewExecutionStore(db)

	old := &Execution{
		ID:             newExecutionID(),
		ScheduledJobID: job.ID,
		Status:         ExecutionStatusCompleted,
		StartedAt:      time.Now().AddDate(0, 0, -60).Format(time.RFC3339),
	}
	recent := &Execution{
		ID:             newExecutionID(),
		ScheduledJobID: job.ID,
		Status:         ExecutionStatusCompleted,
		StartedAt:      time.Now().Format(time.RFC3339),
	}
	require.NoError(t, store.CreateExecution(old))
	require.NoError(t, store.CreateExecution(recent))

	deleted, err := store.CleanupOldExecutions(30)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	_, err = store.GetExecution(old.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	_, err = store.GetExecution(recent.ID)
	assert.NoError(t, err)
}
