package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Runner executes the generation run for a due job. The returned summary
// and output path are recorded on the execution.
type Runner interface {
	RunJob(ctx context.Context, job *Job) (summary string, outputPath string, err error)
}

// RunnerFunc adapts a function to the Runner interface
type RunnerFunc func(ctx context.Context, job *Job) (string, string, error)

// RunJob implements Runner
func (f RunnerFunc) RunJob(ctx context.Context, job *Job) (string, string, error) {
	return f(ctx, job)
}

// Ticker scans for due jobs at a fixed interval and runs them.
// Jobs run sequentially; a slow job delays later ones rather than
// overlapping generation runs against the same output files.
type Ticker struct {
	store           *Store
	execStore       *ExecutionStore
	runner          Runner
	interval        time.Duration
	intervalCh      chan time.Duration
	ctx             context.Context
	cancel          context.CancelFunc
	wg              sync.WaitGroup
	logger          *zap.SugaredLogger
	mu              sync.Mutex
	lastTickAt      time.Time
	ticksSinceStart int64
}

// TickerConfig contains configuration for the scheduler ticker
type TickerConfig struct {
	Interval time.Duration // How often to check for due jobs (default: 1 second)
}

// DefaultTickerConfig returns sensible defaults
func DefaultTickerConfig() TickerConfig {
	return TickerConfig{
		Interval: 1 * time.Second,
	}
}

// NewTicker creates a scheduler ticker
func NewTicker(store *Store, execStore *ExecutionStore, runner Runner, cfg TickerConfig, logger *zap.SugaredLogger) *Ticker {
	return NewTickerWithContext(context.Background(), store, execStore, runner, cfg, logger)
}

// NewTickerWithContext creates a ticker with a parent context
func NewTickerWithContext(ctx context.Context, store *Store, execStore *ExecutionStore, runner Runner, cfg TickerConfig, log *zap.SugaredLogger) *Ticker {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultTickerConfig().Interval
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	tickerCtx, cancel := context.WithCancel(ctx)

	return &Ticker{
		store:      store,
		execStore:  execStore,
		runner:     runner,
		interval:   cfg.Interval,
		intervalCh: make(chan time.Duration, 1),
		ctx:        tickerCtx,
		cancel:     cancel,
		logger:     log,
	}
}

// SetInterval changes how often the ticker scans for due jobs. A running
// ticker picks the new interval up immediately; the config watcher uses
// this when schedule.ticker_interval_seconds changes on disk.
func (t *Ticker) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	t.mu.Lock()
	t.interval = d
	t.mu.Unlock()

	select {
	case t.intervalCh <- d:
	default:
	}
}

// Start begins the ticker loop
func (t *Ticker) Start() {
	t.wg.Add(1)
	go t.run()
	t.logger.Infow("Scheduler ticker started", "interval", t.interval)
}

// Stop gracefully stops the ticker, waiting for an in-flight job to finish
func (t *Ticker) Stop() {
	t.cancel()
	t.wg.Wait()
	t.logger.Infow("Scheduler ticker stopped")
}

// run is the main ticker loop
func (t *Ticker) run() {
	defer t.wg.Done()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.ctx.Done():
			return
		case d := <-t.intervalCh:
			ticker.Reset(d)
			t.logger.Infow("Scheduler ticker interval updated", "interval", d)
		case tickTime := <-ticker.C:
			t.mu.Lock()
			t.lastTickAt = tickTime
			t.ticksSinceStart++
			t.mu.Unlock()

			if err := t.checkDueJobs(tickTime); err != nil {
				// Don't spam logs - errors here repeat every tick
				t.logger.Warnw("Scheduler tick error", "error", err, "tick", t.ticksSinceStart)
			}
		}
	}
}

// checkDueJobs runs every job whose next_run_at has passed.
// A failing job is recorded and rescheduled; it never stops the loop.
func (t *Ticker) checkDueJobs(now time.Time) error {
	due, err := t.store.ListJobsDue(now)
	if err != nil {
		return err
	}

	for _, job := range due {
		select {
		case <-t.ctx.Done():
			return nil
		default:
		}
		t.executeJob(job, now)
	}

	return nil
}

// executeJob runs one job, records the execution, and schedules the next run
func (t *Ticker) executeJob(job *Job, now time.Time) {
	exec := &Execution{
		ID:             newExecutionID(),
		ScheduledJobID: job.ID,
		Status:         ExecutionStatusRunning,
		StartedAt:      now.Format(time.RFC3339),
	}
	if err := t.execStore.CreateExecution(exec); err != nil {
		t.logger.Errorw("Failed to create execution record", "job", job.Name, "error", err)
		return
	}

	t.logger.Infow("Running scheduled job", "job", job.Name, "execution", exec.ID, "config", job.ConfigPath)

	started := time.Now()
	summary, outputPath, runErr := t.runner.RunJob(t.ctx, job)
	duration := int(time.Since(started).Milliseconds())
	completedAt := time.Now().Format(time.RFC3339)

	exec.CompletedAt = &completedAt
	exec.DurationMs = &duration

	if runErr != nil {
		exec.Status = ExecutionStatusFailed
		errMsg := runErr.Error()
		exec.ErrorMessage = &errMsg
		t.logger.Warnw("Scheduled job failed", "job", job.Name, "execution", exec.ID, "error", runErr)
	} else {
		exec.Status = ExecutionStatusCompleted
		if summary != "" {
			exec.ResultSummary = &summary
		}
		if outputPath != "" {
			exec.OutputPath = &outputPath
		}
		t.logger.Infow("Scheduled job completed",
			"job", job.Name, "execution", exec.ID, "duration_ms", duration, "output", outputPath)
	}

	if err := t.execStore.UpdateExecution(exec); err != nil {
		t.logger.Errorw("Failed to update execution record", "execution", exec.ID, "error", err)
	}

	// Failed runs are rescheduled too; persistent failures show up in history
	nextRun := time.Now().Add(job.Interval())
	if err := t.store.UpdateJobAfterExecution(job.ID, now, exec.ID, nextRun); err != nil {
		t.logger.Errorw("Failed to reschedule job", "job", job.Name, "error", err)
	}
}

// newExecutionID returns an execution identifier like "exec_a1b2c3d4"
func newExecutionID() string {
	return fmt.Sprintf("exec_%s", uuid.NewString()[:8])
}

// LastTick reports when the ticker last fired and how many ticks have run
func (t *Ticker) LastTick() (time.Time, int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastTickAt, t.ticksSinceStart
}
