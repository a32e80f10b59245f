package commands

import (
	"database/sql"

	"github.com/spf13/cobra"

	"github.com/promptcrafter/promptcrafter/config"
	"github.com/promptcrafter/promptcrafter/db"
	"github.com/promptcrafter/promptcrafter/errors"
	"github.com/promptcrafter/promptcrafter/logger"
)

// loadConfig resolves the config file from the --config flag or the
// default search path and loads it
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// openDatabase opens and migrates the configured SQLite database
func openDatabase(cfg *config.Config) (*sql.DB, error) {
	dbPath := cfg.Database.Path
	if dbPath == "" {
		dbPath = "promptcrafter.db"
	}

	database, err := db.Open(dbPath, logger.Logger)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database at %s", dbPath)
	}

	if err := db.Migrate(database); err != nil {
		database.Close()
		return nil, errors.Wrapf(err, "failed to run migrations on %s", dbPath)
	}

	return database, nil
}
