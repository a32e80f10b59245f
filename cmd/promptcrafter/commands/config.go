package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/promptcrafter/promptcrafter/errors"
)

// ConfigCmd groups configuration commands
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and validate configuration",
	Long: `Show the resolved configuration and validate it.

Examples:
  promptcrafter config show       # Print resolved settings
  promptcrafter config validate   # Check the config file`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration",
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	RunE:  runConfigValidate,
}

func init() {
	ConfigCmd.AddCommand(configShowCmd)
	ConfigCmd.AddCommand(configValidateCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	apiKey := "(not set)"
	if cfg.OpenAI.APIKey != "" {
		apiKey = "(set)"
	}

	temperature := 0.2
	if t := cfg.ModelTemperature(); t != nil {
		temperature = *t
	}

	pterm.DefaultSection.Println("Model")
	pterm.DefaultTable.WithData(pterm.TableData{
		{"name", cfg.ModelName()},
		{"provider", cfg.Model.Provider},
		{"temperature", pterm.Sprintf("%.2f", temperature)},
	}).Render()

	pterm.DefaultSection.Println("Params")
	paramData := pterm.TableData{{"Name", "Prompt"}}
	for _, p := range cfg.Params {
		paramData = append(paramData, []string{p.Name, truncate(p.Prompt, 70)})
	}
	pterm.DefaultTable.WithHasHeader().WithData(paramData).Render()

	pterm.DefaultSection.Println("Paths")
	pterm.DefaultTable.WithData(pterm.TableData{
		{"template", cfg.Template.Path},
		{"output", cfg.OutputPath()},
		{"database", cfg.Database.Path},
	}).Render()

	pterm.DefaultSection.Println("OpenAI")
	pterm.DefaultTable.WithData(pterm.TableData{
		{"api_key", apiKey},
		{"base_url", cfg.OpenAI.BaseURL},
	}).Render()

	if cfg.LocalInference.Enabled {
		pterm.DefaultSection.Println("Local inference")
		pterm.DefaultTable.WithData(pterm.TableData{
			{"base_url", cfg.LocalInference.BaseURL},
			{"model", cfg.LocalInference.Model},
		}).Render()
	}

	pterm.DefaultSection.Println("Budget")
	pterm.DefaultTable.WithData(pterm.TableData{
		{"daily_usd", pterm.Sprintf("%.2f", cfg.Budget.DailyUSD)},
		{"max_calls_per_minute", pterm.Sprintf("%d", cfg.Budget.MaxCallsPerMinute)},
	}).Render()

	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		pterm.Error.Println("Configuration invalid")
		for _, detail := range errors.GetAllDetails(err) {
			pterm.Info.Println(detail)
		}
		for _, hint := range errors.GetAllHints(err) {
			pterm.Info.Println(hint)
		}
		return err
	}

	pterm.Success.Printf("Configuration valid: %d param(s), model %s\n",
		len(cfg.Params), cfg.ModelName())
	return nil
}
