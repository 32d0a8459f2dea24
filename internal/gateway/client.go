package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/transcribe/internal/images"
	"github.com/lehigh-university-libraries/transcribe/internal/models"
	"github.com/lehigh-university-libraries/transcribe/internal/providers"
)

// DefaultTimeout bounds a single provider call when Options.Timeout is unset
const DefaultTimeout = 60 * time.Second

// Options configures a Client
type Options struct {
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// Client runs text extraction and translation against a provider
type Client struct {
	provider providers.Provider
	opts     Options
}

// New creates a client around an already configured provider
func New(provider providers.Provider, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Client{
		provider: provider,
		opts:     opts,
	}
}

// Provider returns the name of the underlying provider
func (c *Client) Provider() string {
	return c.provider.Name()
}

// Model returns the configured model, empty meaning the provider default
func (c *Client) Model() string {
	return c.opts.Model
}

// Close releases the provider if it holds resources
func (c *Client) Close() error {
	if closer, ok := c.provider.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// ExtractText returns the literal text found in the image. An image without
// text yields an empty RawText and no error.
func (c *Client) ExtractText(ctx context.Context, payload images.Payload) (models.ExtractionResult, error) {
	text, err := c.generate(ctx, "extract", providers.Request{
		Prompt: buildExtractPrompt(),
		Image:  &payload,
	})
	if err != nil {
		return models.ExtractionResult{}, err
	}

	text = strings.TrimSpace(text)
	slog.Info("Extracted text", "provider", c.provider.Name(), "length", len(text))
	return models.ExtractionResult{RawText: text}, nil
}

// Translate renders text in targetLanguage
func (c *Client) Translate(ctx context.Context, text, targetLanguage string) (models.TranslationResult, error) {
	if strings.TrimSpace(text) == "" {
		return models.TranslationResult{}, ErrNothingToTranslate
	}
	if strings.TrimSpace(targetLanguage) == "" {
		return models.TranslationResult{}, errors.New("target language is required")
	}

	translated, err := c.generate(ctx, "translate", providers.Request{
		Prompt: buildTranslatePrompt(text, targetLanguage),
	})
	if err != nil {
		return models.TranslationResult{}, err
	}

	translated = strings.TrimSpace(translated)
	slog.Info("Translated text", "provider", c.provider.Name(), "language", targetLanguage, "length", len(translated))
	return models.TranslationResult{Language: targetLanguage, Text: translated}, nil
}

// ExtractAndTranslate performs extraction and translation in one round trip
// and parses the structured reply.
func (c *Client) ExtractAndTranslate(ctx context.Context, payload images.Payload, targetLanguage string) (models.OCRResult, error) {
	if strings.TrimSpace(targetLanguage) == "" {
		return models.OCRResult{}, errors.New("target language is required")
	}

	raw, err := c.generate(ctx, "extract_and_translate", providers.Request{
		Prompt: buildCombinedPrompt(targetLanguage),
		Image:  &payload,
		JSON:   true,
	})
	if err != nil {
		return models.OCRResult{}, err
	}

	result, err := ParseEnvelope(raw)
	if err != nil {
		slog.Warn("Failed to parse combined response", "provider", c.provider.Name(), "error", err)
		return models.OCRResult{}, err
	}

	slog.Info("Extracted and translated text",
		"provider", c.provider.Name(),
		"language", result.Translation.Language,
		"confidence", result.Extraction.Confidence,
		"length", len(result.Extraction.RawText))
	return result, nil
}

func (c *Client) generate(ctx context.Context, op string, req providers.Request) (string, error) {
	req.Model = c.opts.Model
	req.Temperature = c.opts.Temperature

	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	start := time.Now()
	out, err := c.provider.Generate(ctx, req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = fmt.Errorf("%w: %v", ctxErr, err)
		}
		slog.Error("Provider call failed", "op", op, "provider", c.provider.Name(), "elapsed", time.Since(start), "error", err)
		return "", &GatewayError{Op: op, Provider: c.provider.Name(), Err: err}
	}

	slog.Debug("Provider call finished", "op", op, "provider", c.provider.Name(), "elapsed", time.Since(start))
	return out, nil
}
