package config

import "github.com/promptcrafter/promptcrafter/errors"

// Validate checks that the configuration is valid.
// Param checks mirror the original contract: params must be a list of
// entries that each carry both a name and a prompt.
func (c *Config) Validate() error {
	if len(c.Params) == 0 {
		return errors.WithHint(
			errors.New("params is missing or empty"),
			"add a params list to config.yaml, one {name, prompt} entry per template placeholder")
	}

	seen := make(map[string]bool, len(c.Params))
	for i, p := range c.Params {
		if p.Name == "" || p.Prompt == "" {
			return errors.Newf("params[%d] is missing name or prompt", i)
		}
		if seen[p.Name] {
			return errors.Newf("params contains duplicate name %q", p.Name)
		}
		seen[p.Name] = true
	}

	if t := c.ModelTemperature(); t != nil && (*t < 0.0 || *t > 2.0) {
		return errors.Newf("model.temperature must be between 0.0 and 2.0, got %f", *t)
	}
	if c.Model.MaxTokens != nil && *c.Model.MaxTokens < 1 {
		return errors.Newf("model.max_tokens must be positive, got %d", *c.Model.MaxTokens)
	}

	if c.OutputPath() == "" {
		return errors.New("output location missing: set output.directory + output.filename, or output_file")
	}

	// Ticker interval: 0 = no periodic ticking, negative = invalid
	if c.Schedule.TickerIntervalSeconds < 0 {
		return errors.Newf("schedule.ticker_interval_seconds must be >= 0, got %d", c.Schedule.TickerIntervalSeconds)
	}

	// Budget values: 0 = no limit, negative = invalid
	if c.Budget.DailyUSD < 0 {
		return errors.Newf("budget.daily_usd must be >= 0, got %f", c.Budget.DailyUSD)
	}
	if c.Budget.MaxCallsPerMinute < 0 {
		return errors.Newf("budget.max_calls_per_minute must be >= 0, got %d", c.Budget.MaxCallsPerMinute)
	}

	if c.Cache.TTLHours < 0 {
		return errors.Newf("cache.ttl_hours must be >= 0, got %d", c.Cache.TTLHours)
	}

	// Validate local inference configuration only when enabled
	if c.LocalInference.Enabled {
		if c.LocalInference.BaseURL == "" {
			return errors.New("local_inference.base_url cannot be empty when enabled")
		}
		if c.LocalInference.Model == "" {
			return errors.New("local_inference.model cannot be empty when enabled")
		}
		if c.LocalInference.TimeoutSeconds <= 0 {
			return errors.Newf("local_inference.timeout_seconds must be > 0, got %d", c.LocalInference.TimeoutSeconds)
		}
	}

	return nil
}
