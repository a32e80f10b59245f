// Package config loads and validates PromptCrafter configuration.
//
// Configuration comes from config.yaml (project directory or
// ~/.promptcrafter/), environment variables with the PROMPTCRAFTER_ prefix,
// and built-in defaults. The legacy flat keys `openai_model`, `temperature`
// and `output_file` are accepted as aliases for their nested equivalents.
package config

import "path/filepath"

// Config represents the full PromptCrafter configuration
type Config struct {
	Model          ModelConfig          `mapstructure:"model"`
	Params         []Param              `mapstructure:"params"`
	Template       TemplateConfig       `mapstructure:"template"`
	Output         OutputConfig         `mapstructure:"output"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Cache          CacheConfig          `mapstructure:"cache"`
	Schedule       ScheduleConfig       `mapstructure:"schedule"`
	Budget         BudgetConfig         `mapstructure:"budget"`
	OpenAI         OpenAIConfig         `mapstructure:"openai"`
	LocalInference LocalInferenceConfig `mapstructure:"local_inference"`

	// Legacy flat-key aliases, kept for config files written against the
	// original layout. The flat key wins when both are present, preserving
	// the original loader's precedence.
	OpenAIModel string   `mapstructure:"openai_model"`
	Temperature *float64 `mapstructure:"temperature"`
	OutputFile  string   `mapstructure:"output_file"`
}

// Param maps a template placeholder to the prompt that generates its value
type Param struct {
	Name   string `mapstructure:"name"`
	Prompt string `mapstructure:"prompt"`
}

// ModelConfig selects the model and its sampling parameters
type ModelConfig struct {
	Name        string   `mapstructure:"name"`
	Provider    string   `mapstructure:"provider"`    // "openai", "local" or "auto"
	Temperature *float64 `mapstructure:"temperature"` // nil = default 0.2
	MaxTokens   *int     `mapstructure:"max_tokens"`  // nil = default 1000
}

// TemplateConfig locates the prompt template
type TemplateConfig struct {
	Path string `mapstructure:"path"`
}

// OutputConfig locates the rendered output file
type OutputConfig struct {
	Directory string `mapstructure:"directory"`
	Filename  string `mapstructure:"filename"`
}

// DatabaseConfig configures the SQLite database
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// CacheConfig configures the response cache
type CacheConfig struct {
	Enabled  bool `mapstructure:"enabled"`
	TTLHours int  `mapstructure:"ttl_hours"` // 0 = entries never expire
}

// ScheduleConfig configures the scheduler daemon
type ScheduleConfig struct {
	TickerIntervalSeconds int `mapstructure:"ticker_interval_seconds"`
}

// BudgetConfig bounds API spend and call rate
type BudgetConfig struct {
	DailyUSD          float64 `mapstructure:"daily_usd"`            // 0 = no spend limit
	MaxCallsPerMinute int     `mapstructure:"max_calls_per_minute"` // 0 = unlimited
}

// OpenAIConfig configures direct OpenAI API access
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"` // usually bound from OPENAI_API_KEY
	BaseURL string `mapstructure:"base_url"`
}

// LocalInferenceConfig configures local model inference (Ollama, LocalAI,
// or any OpenAI-compatible server)
type LocalInferenceConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BaseURL        string `mapstructure:"base_url"`
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// DefaultModelName is used when neither model.name nor the legacy
// openai_model key is set.
const DefaultModelName = "gpt-4o-mini"

// ModelName resolves the model. The legacy openai_model key wins over
// model.name to preserve the original precedence.
func (c *Config) ModelName() string {
	if c.OpenAIModel != "" {
		return c.OpenAIModel
	}
	if c.Model.Name != "" {
		return c.Model.Name
	}
	return DefaultModelName
}

// ModelTemperature resolves the sampling temperature. The legacy top-level
// temperature key wins over model.temperature. Returns nil when neither
// is set.
func (c *Config) ModelTemperature() *float64 {
	if c.Temperature != nil {
		return c.Temperature
	}
	return c.Model.Temperature
}

// OutputPath resolves the output file location. The legacy output_file key
// wins over output.directory + output.filename to preserve the original
// precedence.
func (c *Config) OutputPath() string {
	if c.OutputFile != "" {
		return c.OutputFile
	}
	if c.Output.Directory != "" && c.Output.Filename != "" {
		return filepath.Join(c.Output.Directory, c.Output.Filename)
	}
	return ""
}

// ParamNames returns the configured param names in declaration order.
func (c *Config) ParamNames() []string {
	names := make([]string, 0, len(c.Params))
	for _, p := range c.Params {
		names = append(names, p.Name)
	}
	return names
}

// ParamPrompts returns a name -> prompt map of the configured params.
func (c *Config) ParamPrompts() map[string]string {
	prompts := make(map[string]string, len(c.Params))
	for _, p := range c.Params {
		prompts[p.Name] = p.Prompt
	}
	return prompts
}
