package budget

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptcrafter/promptcrafter/errors"
)

type fixedSpend struct {
	spend float64
	err   error
	since time.Time
}

func (f *fixedSpend) SpendSince(since time.Time) (float64, error) {
	f.since = since
	return f.spend, f.err
}

// steppingClock advances by a fixed step on every read, so a full rate
// limiter window passes within a few calls instead of a real minute
type steppingClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (s *steppingClock) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = s.now.Add(s.step)
	return s.now
}

func TestEnforcerUnderBudget(t *testing.T) {
	spend := &fixedSpend{spend: 1.50}
	e := NewEnforcer(spend, 3.0, 10)

	require.NoError(t, e.Reserve(context.Background()))
	assert.WithinDuration(t, time.Now().Add(-24*time.Hour), spend.since, time.Minute)
}

func TestEnforcerAtBudget(t *testing.T) {
	e := NewEnforcer(&fixedSpend{spend: 3.0}, 3.0, 10)

	err := e.Reserve(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrBudgetExceeded))
}

func TestEnforcerZeroBudgetDisablesSpendCheck(t *testing.T) {
	e := NewEnforcer(&fixedSpend{spend: 999}, 0, 10)
	assert.NoError(t, e.Reserve(context.Background()))
}

func TestEnforcerSpendReadError(t *testing.T) {
	e := NewEnforcer(&fixedSpend{err: assert.AnError}, 3.0, 10)
	assert.Error(t, e.Reserve(context.Background()))
}

func TestEnforcerWaitsOutRateLimit(t *testing.T) {
	e := NewEnforcer(&fixedSpend{spend: 0}, 3.0, 1)
	clock := &steppingClock{now: time.Now(), step: 30 * time.Second}
	e.limiter = NewLimiterWithClock(1, clock.Now)

	require.NoError(t, e.Reserve(context.Background()))

	// The limit is hit, but the window slides past as the clock steps,
	// so the second reservation completes instead of failing
	assert.NoError(t, e.Reserve(context.Background()))
}

func TestEnforcerRateLimitHonorsContext(t *testing.T) {
	e := NewEnforcer(&fixedSpend{spend: 0}, 3.0, 1)

	require.NoError(t, e.Reserve(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := e.Reserve(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestEnforcerNilSpendReader(t *testing.T) {
	e := NewEnforcer(nil, 3.0, 0)
	assert.NoError(t, e.Reserve(context.Background()))
}
