package providers

import (
	"context"

	"github.com/lehigh-university-libraries/transcribe/internal/images"
)

// Request represents a single generation request sent to an LLM provider
type Request struct {
	Model       string
	Temperature float64
	Prompt      string
	// Image is attached as inline data when set
	Image *images.Payload
	// JSON asks the provider for a JSON-only reply where supported
	JSON bool
}

// Provider defines the interface for a multimodal LLM provider
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}

// ConfigurationError reports a provider that cannot be used as configured,
// typically because its credential is missing. It is never retried.
type ConfigurationError struct {
	Provider string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Provider + ": " + e.Reason
}
