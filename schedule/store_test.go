package schedule

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptcrafter/promptcrafter/errors"
	pctest "github.com/promptcrafter/promptcrafter/internal/testing"
)

func testJob(name string) *Job {
	nextRun := time.Now().Add(time.Hour)
	return &Job{
		ID:              uuid.NewString(),
		Name:            name,
		ConfigPath:      "config.yaml",
		IntervalSeconds: 3600,
		NextRunAt:       &nextRun,
		State:           StateActive,
	}
}

func TestCreateAndGetJob(t *testing.T) {
	db := pctest.CreateTestDB(t)
	store := NewStore(db)

	job := testJob("daily-report")
	require.NoError(t, store.CreateJob(job))

	got, err := store.GetJob(job.ID)
	require.NoError(t, err)
	assert.Equal(t, "daily-report", got.Name)
	assert.Equal(t, "config.yaml", got.ConfigPath)
	assert.Equal(t, 3600, got.IntervalSeconds)
	assert.Equal(t, StateActive, got.State)
	require.NotNil(t, got.NextRunAt)
	assert.WithinDuration(t, *job.NextRunAt, *got.NextRunAt, time.Second)
	assert.Nil(t, got.LastRunAt)
}

func TestGetJobNotFound(t *testing.T) {
	db := pctest.CreateTestDB(t)
	store := NewStore(db)

	_, err := store.GetJob("missing")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestGetJobByName(t *testing.T) {
	db := pctest.CreateTestDB(t)
	store := NewStore(db)

	job := testJob("daily-report")
	require.NoError(t, store.CreateJob(job))

	got, err := store.GetJobByName("daily-report")
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)

	// Deleted jobs are not found by name
	require.NoError(t, store.DeleteJob(job.ID))
	_, err = store.GetJobByName("daily-report")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestListJobsExcludesDeleted(t *testing.T) {
	db := pctest.CreateTestDB(t)
	store := NewStore(db)

	keep := testJob("keep")
	drop := testJob("drop")
	require.NoError(t, store.CreateJob(keep))
	require.NoError(t, store.CreateJob(drop))
	require.NoError(t, store.DeleteJob(drop.ID))

	jobs, err := store.ListJobs()
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "keep", jobs[0].Name)

	// Soft delete preserves the row
	got, err := store.GetJob(drop.ID)
	require.NoError(t, err)
	assert.Equal(t, StateDeleted, got.State)
}

func TestListJobsDue(t *testing.T) {
	db := pctest.CreateTestDB(t)
	store := NewStore(db)

	now := time.Now()

	overdue := testJob("overdue")
	past := now.Add(-time.Minute)
	overdue.NextRunAt = &past
	require.NoError(t, store.CreateJob(overdue))

	future := testJob("future")
	require.NoError(t, store.CreateJob(future))

	paused := testJob("paused")
	paused.NextRunAt = &past
	paused.State = StatePaused
	require.NoError(t, store.CreateJob(paused))

	due, err := store.ListJobsDue(now)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "overdue", due[0].Name)
}

func TestUpdateJobState(t *testing.T) {
	db := pctest.CreateTestDB(t)
	store := NewStore(db)

	job := testJob("pausable")
	require.NoError(t, store.CreateJob(job))

	require.NoError(t, store.UpdateJobState(job.ID, StatePaused))
	got, err := store.GetJob(job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatePaused, got.State)

	err = store.UpdateJobState("missing", StatePaused)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestUpdateJobInterval(t *testing.T) {
	db := pctest.CreateTestDB(t)
	store := NewStore(db)

	job := testJob("retimed")
	require.NoError(t, store.CreateJob(job))

	require.NoError(t, store.UpdateJobInterval(job.ID, 60))
	got, err := store.GetJob(job.ID)
	require.NoError(t, err)
	assert.Equal(t, 60, got.IntervalSeconds)
	require.NotNil(t, got.NextRunAt)
	assert.WithinDuration(t, time.Now().Add(time.Minute), *got.NextRunAt, 5*time.Second)
}

func TestUpdateJobAfterExecution(t *testing.T) {
	db := pctest.CreateTestDB(t)
	store := NewStore(db)

	job := testJob("tracked")
	require.NoError(t, store.CreateJob(job))

	lastRun := time.Now()
	nextRun := lastRun.Add(time.Hour)
	require.NoError(t, store.UpdateJobAfterExecution(job.ID, lastRun, "exec_12345678", nextRun))

	got, err := store.GetJob(job.ID)
	require.NoError(t, err)
	assert.Equal(t, "exec_12345678", got.LastExecutionID)
	require.NotNil(t, got.LastRunAt)
	assert.WithinDuration(t, lastRun, *got.LastRunAt, time.Second)
	require.NotNil(t, got.NextRunAt)
	assert.WithinDuration(t, nextRun, *got.NextRunAt, time.Second)
}

func TestGetNextScheduledJob(t *testing.T) {
	db := pctest.CreateTestDB(t)
	store := NewStore(db)

	// No jobs: no error, nil result
	next, err := store.GetNextScheduledJob()
	require.NoError(t, err)
	assert.Nil(t, next)

	soon := testJob("soon")
	soonAt := time.Now().Add(time.Minute)
	soon.NextRunAt = &soonAt
	require.NoError(t, store.CreateJob(soon))

	later := testJob("later")
	require.NoError(t, store.CreateJob(later))

	next, err = store.GetNextScheduledJob()
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "soon", next.Name)
}
