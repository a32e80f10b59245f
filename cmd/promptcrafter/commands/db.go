package commands

import (
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/promptcrafter/promptcrafter/ai/tracker"
	"github.com/promptcrafter/promptcrafter/cache"
	"github.com/promptcrafter/promptcrafter/schedule"
)

// DbCmd groups database maintenance commands
var DbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the local database",
	Long: `Manage the local SQLite database.

Examples:
  promptcrafter db stats     # Cache, job and usage statistics
  promptcrafter db migrate   # Apply pending schema migrations
  promptcrafter db prune     # Drop expired cache entries and old executions`,
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache, job and usage statistics",
	RunE:  runDbStats,
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE:  runDbMigrate,
}

var dbPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Drop expired cache entries and old execution records",
	RunE:  runDbPrune,
}

func init() {
	dbStatsCmd.Flags().Duration("since", 24*time.Hour, "Usage window for the statistics")
	dbPruneCmd.Flags().Int("retention-days", 30, "Keep execution records newer than this many days")

	DbCmd.AddCommand(dbStatsCmd)
	DbCmd.AddCommand(dbMigrateCmd)
	DbCmd.AddCommand(dbPruneCmd)
}

func runDbStats(cmd *cobra.Command, args []string) error {
	since, _ := cmd.Flags().GetDuration("since")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	cacheCount, err := cache.New(database, 0, nil).Count()
	if err != nil {
		return err
	}

	jobs, err := schedule.NewStore(database).ListJobs()
	if err != nil {
		return err
	}

	stats, err := tracker.NewUsageTracker(database).GetUsageStats(time.Now().Add(-since))
	if err != nil {
		return err
	}

	pterm.DefaultSection.Println("Database")
	pterm.DefaultTable.WithData(pterm.TableData{
		{"path", cfg.Database.Path},
		{"cached responses", pterm.Sprintf("%d", cacheCount)},
		{"scheduled jobs", pterm.Sprintf("%d", len(jobs))},
	}).Render()

	pterm.DefaultSection.Printf("Usage (last %s)", since)
	pterm.DefaultTable.WithData(pterm.TableData{
		{"requests", pterm.Sprintf("%d", stats.TotalRequests)},
		{"successful", pterm.Sprintf("%d", stats.SuccessfulRequests)},
		{"success rate", pterm.Sprintf("%.0f%%", stats.SuccessRate*100)},
		{"tokens", pterm.Sprintf("%d", stats.TotalTokens)},
		{"cost", pterm.Sprintf("$%.4f", stats.TotalCostUSD)},
		{"models used", pterm.Sprintf("%d", stats.UniqueModels)},
	}).Render()

	return nil
}

func runDbMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// openDatabase migrates as part of opening
	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	pterm.Success.Printf("Database %s is up to date\n", cfg.Database.Path)
	return nil
}

func runDbPrune(cmd *cobra.Command, args []string) error {
	retentionDays, _ := cmd.Flags().GetInt("retention-days")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	purged, err := cache.New(database, 0, nil).PurgeExpired()
	if err != nil {
		return err
	}

	cleaned, err := schedule.NewExecutionStore(database).CleanupOldExecutions(retentionDays)
	if err != nil {
		return err
	}

	pterm.Success.Printf("Pruned %d expired cache entrie(s) and %d old execution(s)\n", purged, cleaned)
	return nil
}
