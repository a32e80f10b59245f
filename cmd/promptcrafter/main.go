package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/promptcrafter/promptcrafter/cmd/promptcrafter/commands"
	"github.com/promptcrafter/promptcrafter/logger"
)

var rootCmd = &cobra.Command{
	Use:   "promptcrafter",
	Short: "PromptCrafter - template-driven prompt generation with LLM-filled parameters",
	Long: `PromptCrafter generates documents from templates whose placeholders
are filled by language model calls.

A config file declares the parameters and the prompt that produces each
one; the template references them as {name}. Each run generates every
parameter value, renders the template, and writes the result to the
output file.

Available commands:
  generate - Run one generation pass
  template - Inspect and validate the template file
  config   - Show and validate configuration
  schedule - Manage recurring generation jobs
  db       - Manage the local database
  version  - Show version information

Examples:
  promptcrafter generate                     # Generate using ./config.yaml
  promptcrafter generate -c other.yaml      # Generate with a specific config
  promptcrafter template inspect            # List template placeholders
  promptcrafter schedule add --every 1h     # Register a recurring run
  promptcrafter schedule start              # Run the scheduler daemon`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		jsonLogs, _ := cmd.Flags().GetBool("json-logs")
		if err := logger.Initialize(jsonLogs); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to config file (default: ./config.yaml, then ~/.promptcrafter/config.yaml)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Emit operational logs as JSON")

	rootCmd.AddCommand(commands.GenerateCmd)
	rootCmd.AddCommand(commands.TemplateCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.ScheduleCmd)
	rootCmd.AddCommand(commands.DbCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Cleanup()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
