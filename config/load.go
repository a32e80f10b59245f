package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/promptcrafter/promptcrafter/errors"
)

// ConfigFileName is the canonical config file name
const ConfigFileName = "config.yaml"

// Load reads configuration from the default locations: config.yaml found by
// walking up from the working directory, then ~/.promptcrafter/config.yaml,
// with environment variables layered on top.
func Load() (*Config, error) {
	v := newViper()

	if path := findProjectConfig(); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &cfg, nil
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal config from %s", configPath)
	}
	return &cfg, nil
}

// newViper builds a Viper instance with defaults and env binding applied
func newViper() *viper.Viper {
	v := viper.New()

	v.SetEnvPrefix("PROMPTCRAFTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	BindSensitiveEnvVars(v)
	SetDefaults(v)

	return v
}

// findProjectConfig searches for config.yaml by walking up the directory
// tree, then falls back to ~/.promptcrafter/config.yaml. Returns the first
// config file found, or empty string if none exists.
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err == nil {
		for {
			path := filepath.Join(dir, ConfigFileName)
			if _, err := os.Stat(path); err == nil {
				return path
			}

			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	userPath := filepath.Join(homeDir, ".promptcrafter", ConfigFileName)
	if _, err := os.Stat(userPath); err == nil {
		return userPath
	}

	return ""
}
