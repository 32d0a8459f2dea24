package gateway

import (
	"errors"
	"fmt"

	"github.com/lehigh-university-libraries/transcribe/internal/providers"
)

// ErrNothingToTranslate is returned by Translate for blank input. No
// provider call is made.
var ErrNothingToTranslate = errors.New("nothing to translate")

// ConfigurationError is the provider configuration failure, re-exported so
// callers only need this package.
type ConfigurationError = providers.ConfigurationError

// GatewayError wraps any failure talking to the inference provider
type GatewayError struct {
	Op       string
	Provider string
	Err      error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s via %s failed: %v", e.Op, e.Provider, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// ResponseFormatError reports a provider reply that could not be interpreted.
// Raw holds the reply as received.
type ResponseFormatError struct {
	Raw string
	Err error
}

func (e *ResponseFormatError) Error() string {
	return fmt.Sprintf("unexpected response format: %v", e.Err)
}

func (e *ResponseFormatError) Unwrap() error {
	return e.Err
}
