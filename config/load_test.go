package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
model:
  name: gpt-4o
  provider: openai
  temperature: 0.7
params:
  - name: city
    prompt: "Name a city."
  - name: season
    prompt: "Name a season."
template:
  path: prompts/template.txt
output:
  directory: out
  filename: result.txt
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", cfg.ModelName())
	assert.Equal(t, "openai", cfg.Model.Provider)
	require.NotNil(t, cfg.ModelTemperature())
	assert.InDelta(t, 0.7, *cfg.ModelTemperature(), 1e-9)
	assert.Equal(t, []string{"city", "season"}, cfg.ParamNames())
	assert.Equal(t, "Name a city.", cfg.ParamPrompts()["city"])
	assert.Equal(t, filepath.Join("out", "result.txt"), cfg.OutputPath())
}

func TestLoadFromFileAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
params:
  - name: city
    prompt: "Name a city."
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", cfg.ModelName())
	assert.Equal(t, "auto", cfg.Model.Provider)
	assert.Equal(t, filepath.Join("output", "result.txt"), cfg.OutputPath())
	assert.Equal(t, "promptcrafter.db", cfg.Database.Path)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 24, cfg.Cache.TTLHours)
	assert.Equal(t, "https://api.openai.com/v1", cfg.OpenAI.BaseURL)
	assert.False(t, cfg.LocalInference.Enabled)
	assert.Equal(t, "http://localhost:11434/v1", cfg.LocalInference.BaseURL)
}

func TestLoadFromFileLegacyAliases(t *testing.T) {
	path := writeConfig(t, `
openai_model: gpt-3.5-turbo
temperature: 1.1
output_file: flat/result.txt
params:
  - name: city
    prompt: "Name a city."
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "gpt-3.5-turbo", cfg.ModelName())
	require.NotNil(t, cfg.ModelTemperature())
	assert.InDelta(t, 1.1, *cfg.ModelTemperature(), 1e-9)
	assert.Equal(t, "flat/result.txt", cfg.OutputPath())
}

func TestLoadFromFileAliasesWinOverNested(t *testing.T) {
	path := writeConfig(t, `
openai_model: gpt-3.5-turbo
temperature: 1.1
model:
  name: gpt-4o
  temperature: 0.3
params:
  - name: city
    prompt: "Name a city."
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "gpt-3.5-turbo", cfg.ModelName())
	assert.InDelta(t, 1.1, *cfg.ModelTemperature(), 1e-9)
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestAPIKeyFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-from-env")

	path := writeConfig(t, `
params:
  - name: city
    prompt: "Name a city."
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-from-env", cfg.OpenAI.APIKey)
}

func TestPrefixedEnvOverridesFile(t *testing.T) {
	t.Setenv("PROMPTCRAFTER_MODEL_NAME", "gpt-4o")

	path := writeConfig(t, `
model:
  name: gpt-4o-mini
params:
  - name: city
    prompt: "Name a city."
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", cfg.ModelName())
}
