// Package provider selects and constructs the AI client used for
// generation. Both providers speak the OpenAI chat-completions wire
// protocol, so selection only decides the endpoint and credentials.
package provider

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/promptcrafter/promptcrafter/ai/openai"
	"github.com/promptcrafter/promptcrafter/config"
	"github.com/promptcrafter/promptcrafter/errors"
)

// Provider identifies an inference backend
type Provider string

const (
	// ProviderAuto selects local inference when enabled, otherwise OpenAI
	ProviderAuto Provider = "auto"
	// ProviderOpenAI uses the hosted OpenAI API
	ProviderOpenAI Provider = "openai"
	// ProviderLocal uses an OpenAI-compatible local server (Ollama, llamafile)
	ProviderLocal Provider = "local"
)

// ParseProvider validates a provider name from configuration
func ParseProvider(s string) (Provider, error) {
	switch Provider(s) {
	case ProviderAuto, ProviderOpenAI, ProviderLocal:
		return Provider(s), nil
	case "":
		return ProviderAuto, nil
	default:
		return "", errors.Newf("unknown provider %q (expected auto, openai or local)", s)
	}
}

// Client is the interface the generator depends on. *openai.Client
// satisfies it for both hosted and local backends.
type Client interface {
	Chat(ctx context.Context, req openai.ChatRequest) (*openai.ChatResponse, error)
	Model() string
	Provider() string
}

// Options carries the cross-cutting dependencies a client needs
type Options struct {
	Logger        *zap.SugaredLogger
	DB            *sql.DB // nil disables usage tracking
	OperationType string  // e.g. "generate", "schedule"
}

// NewClient builds the client selected by cfg.Model.Provider.
// Auto selection prefers local inference when it is enabled, falling
// back to OpenAI when an API key is configured.
func NewClient(cfg *config.Config, opts Options) (Client, error) {
	p, err := ParseProvider(cfg.Model.Provider)
	if err != nil {
		return nil, err
	}

	if p == ProviderAuto {
		switch {
		case cfg.LocalInference.Enabled:
			p = ProviderLocal
		case cfg.OpenAI.APIKey != "":
			p = ProviderOpenAI
		default:
			return nil, errors.WithHint(
				errors.Wrap(errors.ErrNotConfigured, "no usable provider"),
				"set OPENAI_API_KEY or enable local_inference in config.yaml")
		}
	}

	switch p {
	case ProviderOpenAI:
		if cfg.OpenAI.APIKey == "" {
			return nil, errors.WithHint(
				errors.Wrap(errors.ErrNotConfigured, "OpenAI API key not set"),
				"export OPENAI_API_KEY or set openai.api_key in config.yaml")
		}
		return openai.NewClient(openai.Config{
			APIKey:        cfg.OpenAI.APIKey,
			BaseURL:       cfg.OpenAI.BaseURL,
			Model:         cfg.ModelName(),
			Temperature:   cfg.ModelTemperature(),
			MaxTokens:     cfg.Model.MaxTokens,
			Provider:      string(ProviderOpenAI),
			Logger:        opts.Logger,
			DB:            opts.DB,
			OperationType: opts.OperationType,
		}), nil

	case ProviderLocal:
		if !cfg.LocalInference.Enabled {
			return nil, errors.WithHint(
				errors.Wrap(errors.ErrNotConfigured, "local inference not enabled"),
				"set local_inference.enabled: true in config.yaml")
		}
		model := cfg.LocalInference.Model
		if model == "" {
			model = cfg.ModelName()
		}
		return openai.NewClient(openai.Config{
			BaseURL:           cfg.LocalInference.BaseURL,
			Model:             model,
			Timeout:           time.Duration(cfg.LocalInference.TimeoutSeconds) * time.Second,
			Temperature:       cfg.ModelTemperature(),
			MaxTokens:         cfg.Model.MaxTokens,
			Provider:          string(ProviderLocal),
			Logger:            opts.Logger,
			DB:                opts.DB,
			OperationType:     opts.OperationType,
			AllowPrivateHosts: true,
		}), nil
	}

	return nil, errors.Newf("unhandled provider %q", p)
}
