package gateway

import (
	"context"

	"github.com/lehigh-university-libraries/transcribe/internal/config"
	"github.com/lehigh-university-libraries/transcribe/internal/gemini"
	"github.com/lehigh-university-libraries/transcribe/internal/ollama"
	"github.com/lehigh-university-libraries/transcribe/internal/openai"
	"github.com/lehigh-university-libraries/transcribe/internal/providers"
)

// NewProvider builds the provider named in cfg. Missing credentials are
// reported as a *ConfigurationError before any network call.
func NewProvider(ctx context.Context, cfg *config.Config) (providers.Provider, error) {
	switch cfg.Provider {
	case "gemini", "":
		g, err := gemini.New(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return nil, err
		}
		return g, nil
	case "openai":
		o, err := openai.New(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
		if err != nil {
			return nil, err
		}
		return o, nil
	case "ollama":
		return ollama.New(cfg.OllamaURL), nil
	default:
		return nil, &ConfigurationError{Provider: cfg.Provider, Reason: "unsupported provider (supported: gemini, openai, ollama)"}
	}
}

// NewFromConfig builds the provider and wraps it in a Client
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Client, error) {
	provider, err := NewProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return New(provider, Options{
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		Timeout:     cfg.Timeout,
	}), nil
}
