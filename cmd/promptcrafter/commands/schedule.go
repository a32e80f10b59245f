package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/promptcrafter/promptcrafter/config"
	"github.com/promptcrafter/promptcrafter/errors"
	"github.com/promptcrafter/promptcrafter/generator"
	"github.com/promptcrafter/promptcrafter/logger"
	"github.com/promptcrafter/promptcrafter/schedule"
)

// ScheduleCmd groups recurring job commands
var ScheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Manage recurring generation jobs",
	Long: `Manage recurring generation jobs.

Jobs are stored in the local database. The scheduler daemon
(schedule start) scans for due jobs and runs a generation pass for each,
loading the job's config file fresh on every run.

Examples:
  promptcrafter schedule add --every 1h --name hourly-report
  promptcrafter schedule ls
  promptcrafter schedule pause hourly-report
  promptcrafter schedule resume hourly-report
  promptcrafter schedule edit hourly-report --every 30m
  promptcrafter schedule history hourly-report
  promptcrafter schedule rm hourly-report
  promptcrafter schedule start`,
}

var scheduleAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a recurring generation job",
	RunE:  runScheduleAdd,
}

var scheduleLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List registered jobs",
	RunE:  runScheduleLs,
}

var schedulePauseCmd = &cobra.Command{
	Use:   "pause <name>",
	Short: "Pause a job",
	Args:  cobra.ExactArgs(1),
	RunE:  runScheduleSetState(schedule.StatePaused, "Paused"),
}

var scheduleResumeCmd = &cobra.Command{
	Use:   "resume <name>",
	Short: "Resume a paused job",
	Args:  cobra.ExactArgs(1),
	RunE:  runScheduleSetState(schedule.StateActive, "Resumed"),
}

var scheduleEditCmd = &cobra.Command{
	Use:   "edit <name>",
	Short: "Change a job's run interval",
	Args:  cobra.ExactArgs(1),
	RunE:  runScheduleEdit,
}

var scheduleRmCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Remove a job (execution history is preserved)",
	Args:  cobra.ExactArgs(1),
	RunE:  runScheduleRm,
}

var scheduleHistoryCmd = &cobra.Command{
	Use:   "history <name>",
	Short: "Show recent executions of a job",
	Args:  cobra.ExactArgs(1),
	RunE:  runScheduleHistory,
}

var scheduleStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the scheduler daemon in the foreground",
	Long: `Run the scheduler daemon in the foreground.

The daemon scans for due jobs once per ticker interval and runs them
sequentially. The config file is watched; edits are validated and
applied to subsequent runs. Ctrl+C stops the daemon after the current
job finishes.`,
	RunE: runScheduleStart,
}

func init() {
	scheduleAddCmd.Flags().Duration("every", time.Hour, "Run interval (e.g. 30m, 1h, 24h)")
	scheduleAddCmd.Flags().String("name", "", "Job name (default: derived from config file)")
	scheduleEditCmd.Flags().Duration("every", time.Hour, "New run interval (e.g. 30m, 1h, 24h)")
	scheduleHistoryCmd.Flags().Int("limit", 20, "Number of executions to show")

	ScheduleCmd.AddCommand(scheduleAddCmd)
	ScheduleCmd.AddCommand(scheduleLsCmd)
	ScheduleCmd.AddCommand(schedulePauseCmd)
	ScheduleCmd.AddCommand(scheduleResumeCmd)
	ScheduleCmd.AddCommand(scheduleEditCmd)
	ScheduleCmd.AddCommand(scheduleRmCmd)
	ScheduleCmd.AddCommand(scheduleHistoryCmd)
	ScheduleCmd.AddCommand(scheduleStartCmd)
}

// resolveConfigPath returns the config file a scheduled job will load
// on every run: the --config flag when given, otherwise the default
// project config file.
func resolveConfigPath(cmd *cobra.Command) string {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return path
	}
	return config.ConfigFileName
}

func runScheduleAdd(cmd *cobra.Command, args []string) error {
	every, _ := cmd.Flags().GetDuration("every")
	name, _ := cmd.Flags().GetString("name")

	if every < time.Second {
		return errors.Newf("interval %s is too short (minimum 1s)", every)
	}

	configPath := resolveConfigPath(cmd)

	// Validate the job's config up front so broken jobs are caught at
	// registration rather than at 3am
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if name == "" {
		name = fmt.Sprintf("job-%s", uuid.NewString()[:8])
	}

	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	store := schedule.NewStore(database)
	if _, err := store.GetJobByName(name); err == nil {
		return errors.Newf("a job named %q already exists", name)
	} else if !errors.Is(err, errors.ErrNotFound) {
		return err
	}

	nextRun := time.Now().Add(every)
	job := &schedule.Job{
		ID:              uuid.NewString(),
		Name:            name,
		ConfigPath:      configPath,
		IntervalSeconds: int(every.Seconds()),
		NextRunAt:       &nextRun,
		State:           schedule.StateActive,
	}
	if err := store.CreateJob(job); err != nil {
		return err
	}

	pterm.Success.Printf("Registered job %q: every %s, config %s\n", name, every, configPath)
	pterm.Info.Printf("First run at %s (requires `promptcrafter schedule start`)\n",
		nextRun.Format(time.RFC3339))
	return nil
}

func runScheduleLs(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	store := schedule.NewStore(database)
	jobs, err := store.ListJobs()
	if err != nil {
		return err
	}

	if len(jobs) == 0 {
		pterm.Info.Println("No scheduled jobs")
		return nil
	}

	data := pterm.TableData{{"Name", "State", "Interval", "Next run", "Last run", "Config"}}
	for _, job := range jobs {
		nextRun := "-"
		if job.NextRunAt != nil {
			nextRun = job.NextRunAt.Format("2006-01-02 15:04:05")
		}
		lastRun := "never"
		if job.LastRunAt != nil {
			lastRun = job.LastRunAt.Format("2006-01-02 15:04:05")
		}
		data = append(data, []string{
			job.Name, job.State, job.Interval().String(), nextRun, lastRun, job.ConfigPath,
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()

	if next, err := store.GetNextScheduledJob(); err == nil && next != nil && next.NextRunAt != nil {
		pterm.Info.Printf("Next due: %q at %s\n", next.Name, next.NextRunAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func runScheduleSetState(state, verb string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		database, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		store := schedule.NewStore(database)
		job, err := store.GetJobByName(args[0])
		if err != nil {
			return err
		}
		if err := store.UpdateJobState(job.ID, state); err != nil {
			return err
		}

		pterm.Success.Printf("%s job %q\n", verb, job.Name)
		return nil
	}
}

func runScheduleEdit(cmd *cobra.Command, args []string) error {
	if !cmd.Flags().Changed("every") {
		return errors.New("--every is required")
	}
	every, _ := cmd.Flags().GetDuration("every")
	if every < time.Second {
		return errors.Newf("interval %s is too short (minimum 1s)", every)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	store := schedule.NewStore(database)
	job, err := store.GetJobByName(args[0])
	if err != nil {
		return err
	}
	if err := store.UpdateJobInterval(job.ID, int(every.Seconds())); err != nil {
		return err
	}

	pterm.Success.Printf("Job %q now runs every %s\n", job.Name, every)
	return nil
}

func runScheduleRm(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	store := schedule.NewStore(database)
	job, err := store.GetJobByName(args[0])
	if err != nil {
		return err
	}
	if err := store.DeleteJob(job.ID); err != nil {
		return err
	}

	pterm.Success.Printf("Removed job %q\n", job.Name)
	return nil
}

func runScheduleHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	store := schedule.NewStore(database)
	job, err := store.GetJobByName(args[0])
	if err != nil {
		return err
	}

	execs, err := schedule.NewExecutionStore(database).ListExecutions(job.ID, limit)
	if err != nil {
		return err
	}

	if len(execs) == 0 {
		pterm.Info.Printf("Job %q has not run yet\n", job.Name)
		return nil
	}

	data := pterm.TableData{{"Execution", "Status", "Started", "Duration", "Result"}}
	for _, exec := range execs {
		duration := "-"
		if exec.DurationMs != nil {
			duration = (time.Duration(*exec.DurationMs) * time.Millisecond).String()
		}
		result := "-"
		if exec.ResultSummary != nil {
			result = *exec.ResultSummary
		}
		if exec.ErrorMessage != nil {
			result = truncate(*exec.ErrorMessage, 60)
		}
		data = append(data, []string{exec.ID, exec.Status, exec.StartedAt, duration, result})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return nil
}

func runScheduleStart(cmd *cobra.Command, args []string) error {
	configPath := resolveConfigPath(cmd)

	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	runner := schedule.RunnerFunc(func(ctx context.Context, job *schedule.Job) (string, string, error) {
		result, err := generator.RunFile(ctx, job.ConfigPath, generator.Options{
			Logger:        logger.Logger,
			DB:            database,
			OperationType: "schedule",
		})
		if err != nil {
			return "", "", err
		}
		summary := fmt.Sprintf("%d param(s), %d cache hit(s), %d tokens, $%.4f",
			len(result.Values), len(result.CacheHits), result.TotalTokens, result.CostUSD)
		return summary, result.OutputPath, nil
	})

	tickerCfg := schedule.DefaultTickerConfig()
	if cfg.Schedule.TickerIntervalSeconds > 0 {
		tickerCfg.Interval = time.Duration(cfg.Schedule.TickerIntervalSeconds) * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := schedule.NewStore(database)
	execStore := schedule.NewExecutionStore(database)
	ticker := schedule.NewTickerWithContext(ctx, store, execStore, runner, tickerCfg, logger.Logger)
	ticker.Start()

	// Watch the daemon's own config; job configs are re-read per run
	watcher, err := config.NewWatcher(configPath)
	if err != nil {
		logger.Warnw("Config watcher unavailable", "error", err)
	} else {
		watcher.OnReload(func(updated *config.Config) error {
			if updated.Schedule.TickerIntervalSeconds > 0 {
				ticker.SetInterval(time.Duration(updated.Schedule.TickerIntervalSeconds) * time.Second)
			}
			logger.Infow("Config reloaded", "path", configPath)
			return nil
		})
		watcher.Start()
		defer watcher.Stop()
	}

	jobs, err := store.ListJobs()
	if err != nil {
		return err
	}

	pterm.Success.Println("Scheduler started")
	pterm.Info.Printf("  Jobs: %d\n", len(jobs))
	pterm.Info.Printf("  Ticker interval: %s\n", tickerCfg.Interval)
	pterm.Info.Printf("  Database: %s\n", cfg.Database.Path)
	pterm.Println()
	pterm.Info.Println("Press Ctrl+C for graceful shutdown")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	pterm.Println()
	pterm.Info.Println("Shutting down...")

	ticker.Stop()
	cancel()

	pterm.Success.Println("Scheduler stopped")
	return nil
}
