package template

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/promptcrafter/promptcrafter/errors"
)

// Document represents a template file with frontmatter metadata and body
type Document struct {
	Metadata Metadata
	Body     *Template
}

// Metadata holds configuration from YAML frontmatter
type Metadata struct {
	// Name is the template identifier
	Name string `yaml:"name"`

	// Description explains what the template produces
	Description string `yaml:"description"`

	// Model overrides the configured model for this template
	Model string `yaml:"model,omitempty"`

	// Temperature controls randomness (0.0-2.0, provider-dependent)
	Temperature *float64 `yaml:"temperature,omitempty"`

	// MaxTokens limits response length per generated value
	MaxTokens *int `yaml:"max_tokens,omitempty"`
}

// ParseDocument extracts YAML frontmatter and parses the template body.
// Expected format:
//
//	---
//	name: "story-prompt"
//	model: "gpt-4o"
//	temperature: 0.7
//	---
//	Template body with {placeholders}
//
// Content without frontmatter is treated as a bare template body.
func ParseDocument(content string) (*Document, error) {
	body := content
	var metadata Metadata

	if strings.HasPrefix(content, "---") {
		parts := strings.SplitN(content, "---", 3)
		if len(parts) == 3 {
			frontmatterYAML := strings.TrimSpace(parts[1])
			body = strings.TrimSpace(parts[2])

			if frontmatterYAML != "" {
				if err := yaml.Unmarshal([]byte(frontmatterYAML), &metadata); err != nil {
					return nil, errors.Wrap(err, "failed to parse frontmatter YAML")
				}
			}

			if err := validateMetadata(&metadata); err != nil {
				return nil, errors.Wrap(err, "invalid frontmatter")
			}
		}
	}

	tmpl, err := Parse(body)
	if err != nil {
		return nil, err
	}

	return &Document{Metadata: metadata, Body: tmpl}, nil
}

// validateMetadata checks that optional fields are in range when present
func validateMetadata(m *Metadata) error {
	if m.Temperature != nil {
		if *m.Temperature < 0.0 || *m.Temperature > 2.0 {
			return errors.Newf("temperature must be between 0.0 and 2.0, got %f", *m.Temperature)
		}
	}
	if m.MaxTokens != nil {
		if *m.MaxTokens < 1 {
			return errors.Newf("max_tokens must be positive, got %d", *m.MaxTokens)
		}
	}
	return nil
}

// Model returns the model specified in metadata, or fallback if not set
func (d *Document) Model(fallback string) string {
	if d.Metadata.Model != "" {
		return d.Metadata.Model
	}
	return fallback
}

// Temperature returns the metadata temperature, or fallback if not set
func (d *Document) Temperature(fallback float64) float64 {
	if d.Metadata.Temperature != nil {
		return *d.Metadata.Temperature
	}
	return fallback
}

// MaxTokens returns the metadata max tokens, or fallback if not set
func (d *Document) MaxTokens(fallback int) int {
	if d.Metadata.MaxTokens != nil {
		return *d.Metadata.MaxTokens
	}
	return fallback
}
