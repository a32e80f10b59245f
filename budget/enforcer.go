package budget

import (
	"context"
	"time"

	"github.com/promptcrafter/promptcrafter/errors"
)

// SpendReader reports tracked API spend. *tracker.UsageTracker satisfies it.
type SpendReader interface {
	SpendSince(since time.Time) (float64, error)
}

// Enforcer combines the call rate limiter with a daily USD spend ceiling.
// Spend is read from the model_usage table, so enforcement covers every
// process sharing the database, not just the current one.
type Enforcer struct {
	limiter  *Limiter
	spend    SpendReader
	dailyUSD float64 // 0 = no spend limit
	timeNow  func() time.Time
}

// NewEnforcer creates a budget enforcer. dailyUSD of 0 disables the
// spend check; maxCallsPerMinute of 0 disables rate limiting.
func NewEnforcer(spend SpendReader, dailyUSD float64, maxCallsPerMinute int) *Enforcer {
	return &Enforcer{
		limiter:  NewLimiter(maxCallsPerMinute),
		spend:    spend,
		dailyUSD: dailyUSD,
		timeNow:  time.Now,
	}
}

// CheckSpend returns ErrBudgetExceeded when the last 24 hours of tracked
// spend meet or exceed the daily ceiling
func (e *Enforcer) CheckSpend() error {
	if e.dailyUSD <= 0 || e.spend == nil {
		return nil
	}

	since := e.timeNow().Add(-24 * time.Hour)
	spent, err := e.spend.SpendSince(since)
	if err != nil {
		return errors.Wrap(err, "failed to read tracked spend")
	}

	if spent >= e.dailyUSD {
		err := errors.Wrapf(errors.ErrBudgetExceeded,
			"daily spend $%.4f reached limit $%.2f", spent, e.dailyUSD)
		return errors.WithHint(err, "raise budget.daily_usd in config.yaml or wait for the window to roll over")
	}

	return nil
}

// Reserve performs both checks in order: spend ceiling first, then the
// rate limiter. The spend check fails fast; the rate limiter blocks
// until a slot frees or ctx is cancelled. A successful call consumes
// one rate limiter slot.
func (e *Enforcer) Reserve(ctx context.Context) error {
	if err := e.CheckSpend(); err != nil {
		return err
	}
	return e.limiter.Wait(ctx)
}

// Limiter exposes the underlying rate limiter
func (e *Enforcer) Limiter() *Limiter {
	return e.limiter
}
