package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/promptcrafter/promptcrafter/errors"
	"github.com/promptcrafter/promptcrafter/template"
)

// TemplateCmd groups template inspection commands
var TemplateCmd = &cobra.Command{
	Use:   "template",
	Short: "Inspect and validate the template file",
	Long: `Inspect and validate the template file named by the configuration.

Examples:
  promptcrafter template inspect    # List placeholders and metadata
  promptcrafter template validate   # Check template against configured params`,
}

var templateInspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "List template placeholders and frontmatter metadata",
	RunE:  runTemplateInspect,
}

var templateValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that template placeholders and configured params match",
	RunE:  runTemplateValidate,
}

func init() {
	TemplateCmd.AddCommand(templateInspectCmd)
	TemplateCmd.AddCommand(templateValidateCmd)
}

func runTemplateInspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	doc, err := template.LoadFile(cfg.Template.Path)
	if err != nil {
		return err
	}

	pterm.DefaultSection.Printf("Template: %s", cfg.Template.Path)

	placeholders := doc.Body.Placeholders()
	if len(placeholders) == 0 {
		pterm.Warning.Println("Template has no placeholders")
	} else {
		items := make([]pterm.BulletListItem, 0, len(placeholders))
		for _, name := range placeholders {
			items = append(items, pterm.BulletListItem{Level: 0, Text: name})
		}
		pterm.DefaultBulletList.WithItems(items).Render()
	}

	if doc.Metadata.Name != "" || doc.Metadata.Model != "" {
		pterm.Println()
		pterm.DefaultSection.Println("Frontmatter")
		meta := pterm.TableData{}
		if doc.Metadata.Name != "" {
			meta = append(meta, []string{"name", doc.Metadata.Name})
		}
		if doc.Metadata.Description != "" {
			meta = append(meta, []string{"description", doc.Metadata.Description})
		}
		if doc.Metadata.Model != "" {
			meta = append(meta, []string{"model", doc.Metadata.Model})
		}
		if doc.Metadata.Temperature != nil {
			meta = append(meta, []string{"temperature", pterm.Sprintf("%.2f", *doc.Metadata.Temperature)})
		}
		if doc.Metadata.MaxTokens != nil {
			meta = append(meta, []string{"max_tokens", pterm.Sprintf("%d", *doc.Metadata.MaxTokens)})
		}
		pterm.DefaultTable.WithData(meta).Render()
	}

	return nil
}

func runTemplateValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	doc, err := template.LoadFile(cfg.Template.Path)
	if err != nil {
		return err
	}

	if err := template.ValidateParams(doc.Body.Placeholders(), cfg.ParamPrompts()); err != nil {
		pterm.Error.Println("Template and params do not match")
		for _, detail := range errors.GetAllDetails(err) {
			pterm.Info.Println(detail)
		}
		return err
	}

	pterm.Success.Printf("Template valid: %d placeholder(s) match configured params\n",
		len(doc.Body.Placeholders()))
	return nil
}
