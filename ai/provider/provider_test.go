package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptcrafter/promptcrafter/config"
	"github.com/promptcrafter/promptcrafter/errors"
)

func baseConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Model.Name = "gpt-4o-mini"
	cfg.Model.Provider = "auto"
	cfg.LocalInference.BaseURL = "http://localhost:11434/v1"
	cfg.LocalInference.Model = "llama3.2:3b"
	return cfg
}

func TestParseProvider(t *testing.T) {
	for _, valid := range []string{"", "auto", "openai", "local"} {
		_, err := ParseProvider(valid)
		assert.NoError(t, err, valid)
	}

	_, err := ParseProvider("azure")
	assert.Error(t, err)
}

func TestAutoSelectsLocalWhenEnabled(t *testing.T) {
	cfg := baseConfig()
	cfg.LocalInference.Enabled = true
	cfg.OpenAI.APIKey = "sk-test"

	client, err := NewClient(cfg, Options{})
	require.NoError(t, err)
	assert.Equal(t, "local", client.Provider())
	assert.Equal(t, "llama3.2:3b", client.Model())
}

func TestAutoFallsBackToOpenAI(t *testing.T) {
	cfg := baseConfig()
	cfg.OpenAI.APIKey = "sk-test"

	client, err := NewClient(cfg, Options{})
	require.NoError(t, err)
	assert.Equal(t, "openai", client.Provider())
	assert.Equal(t, "gpt-4o-mini", client.Model())
}

func TestAutoWithNothingConfigured(t *testing.T) {
	cfg := baseConfig()

	_, err := NewClient(cfg, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotConfigured))
}

func TestExplicitOpenAIRequiresKey(t *testing.T) {
	cfg := baseConfig()
	cfg.Model.Provider = "openai"

	_, err := NewClient(cfg, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotConfigured))
}

func TestExplicitLocalRequiresEnabled(t *testing.T) {
	cfg := baseConfig()
	cfg.Model.Provider = "local"

	_, err := NewClient(cfg, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotConfigured))
}
