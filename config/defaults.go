package config

import "github.com/spf13/viper"

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Model defaults. model.name and model.temperature have no viper
	// defaults: a default there would always shadow the legacy flat keys
	// (openai_model, temperature). ModelName/ModelTemperature resolve the
	// fallback instead.
	v.SetDefault("model.provider", "auto")

	// Template and output defaults (mirror the original project layout)
	v.SetDefault("template.path", "prompts/template.txt")
	v.SetDefault("output.directory", "output")
	v.SetDefault("output.filename", "result.txt")

	// Database defaults
	v.SetDefault("database.path", "promptcrafter.db")

	// Cache defaults
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl_hours", 24)

	// Scheduler defaults
	v.SetDefault("schedule.ticker_interval_seconds", 1)

	// Budget defaults
	v.SetDefault("budget.daily_usd", 3.0)          // Default $3/day limit
	v.SetDefault("budget.max_calls_per_minute", 10)

	// OpenAI defaults
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")

	// Local inference (Ollama) defaults, off unless explicitly enabled.
	// The /v1 suffix selects Ollama's OpenAI-compatible endpoint.
	v.SetDefault("local_inference.enabled", false)
	v.SetDefault("local_inference.base_url", "http://localhost:11434/v1")
	v.SetDefault("local_inference.model", "llama3.2:3b")
	v.SetDefault("local_inference.timeout_seconds", 3600)
}

// BindSensitiveEnvVars explicitly binds sensitive configuration to
// environment variables. OPENAI_API_KEY is honored without the prefix for
// compatibility with the wider ecosystem.
func BindSensitiveEnvVars(v *viper.Viper) {
	v.BindEnv("openai.api_key", "PROMPTCRAFTER_OPENAI_API_KEY", "OPENAI_API_KEY")
}
