package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/promptcrafter/promptcrafter/errors"
	"github.com/promptcrafter/promptcrafter/generator"
	"github.com/promptcrafter/promptcrafter/logger"
)

// GenerateCmd runs one generation pass
var GenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run one generation pass",
	Long: `Run one generation pass: produce a value for every template
placeholder through the configured model, render the template, and write
the result to the output file.

Cached responses are reused when the cache is enabled and the prompt,
model and temperature are unchanged.

Examples:
  promptcrafter generate                  # Use ./config.yaml
  promptcrafter generate -c report.yaml   # Use a specific config
  promptcrafter generate --json           # Machine-readable result`,
	RunE: runGenerate,
}

func init() {
	GenerateCmd.Flags().Bool("json", false, "Print the run result as JSON")
	GenerateCmd.Flags().Bool("no-cache", false, "Skip the response cache for this run")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	noCache, _ := cmd.Flags().GetBool("no-cache")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if noCache {
		cfg.Cache.Enabled = false
	}

	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	gen, err := generator.New(cfg, generator.Options{
		Logger: logger.Logger,
		DB:     database,
	})
	if err != nil {
		return err
	}

	// Ctrl+C aborts the run between API calls
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var spinner *pterm.SpinnerPrinter
	if !jsonOutput {
		spinner, _ = pterm.DefaultSpinner.Start(fmt.Sprintf("Generating %d parameter(s)...", len(cfg.Params)))
	}

	result, err := gen.Run(ctx)
	if err != nil {
		if spinner != nil {
			spinner.Fail("Generation failed")
		}
		if hints := errors.GetAllHints(err); len(hints) > 0 {
			for _, hint := range hints {
				pterm.Info.Println(hint)
			}
		}
		return err
	}

	if jsonOutput {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal result")
		}
		fmt.Println(string(out))
		return nil
	}

	spinner.Success("Generation complete")

	tableData := pterm.TableData{{"Param", "Value", "Source"}}
	for _, name := range sortedKeys(result.Values) {
		source := "api"
		for _, hit := range result.CacheHits {
			if hit == name {
				source = "cache"
				break
			}
		}
		tableData = append(tableData, []string{name, truncate(result.Values[name], 60), source})
	}
	pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()

	pterm.Println()
	pterm.Success.Printf("Wrote %s\n", result.OutputPath)
	pterm.Info.Printf("Provider: %s  Model: %s  Tokens: %d  Cost: $%.4f  Duration: %s\n",
		result.Provider, result.Model, result.TotalTokens, result.CostUSD, result.Duration.Round(timeRound))

	return nil
}
