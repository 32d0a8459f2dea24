package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/lehigh-university-libraries/transcribe/internal/images"
	"github.com/lehigh-university-libraries/transcribe/internal/providers"
	"google.golang.org/api/option"
)

// DefaultModel is used when no model is configured
const DefaultModel = "gemini-2.5-flash"

// Gemini is a provider for Google Gemini
type Gemini struct {
	client *genai.Client
}

// New returns a new Gemini provider. The API key is required.
func New(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Gemini, error) {
	if apiKey == "" {
		return nil, &providers.ConfigurationError{Provider: "gemini", Reason: "GEMINI_API_KEY (or API_KEY) environment variable not set"}
	}

	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create new gemini client: %w", err)
	}

	return &Gemini{client: client}, nil
}

func (g *Gemini) Name() string { return "gemini" }

// Close releases the underlying client
func (g *Gemini) Close() error {
	return g.client.Close()
}

// Generate sends the prompt, and the image if present, to Gemini
func (g *Gemini) Generate(ctx context.Context, req providers.Request) (string, error) {
	modelName := req.Model
	if modelName == "" {
		modelName = DefaultModel
	}

	model := g.client.GenerativeModel(modelName)
	model.SetTemperature(float32(req.Temperature))
	if req.JSON {
		model.ResponseMIMEType = "application/json"
	}

	parts := make([]genai.Part, 0, 2)
	if req.Image != nil {
		data, err := images.Decode(*req.Image)
		if err != nil {
			return "", err
		}
		parts = append(parts, genai.Blob{MIMEType: req.Image.MIMEType, Data: data})
	}
	parts = append(parts, genai.Text(req.Prompt))

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned from Gemini")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("empty content returned from Gemini")
	}

	var sb strings.Builder
	found := false
	for _, part := range candidate.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
			found = true
		}
	}
	if !found {
		return "", fmt.Errorf("unexpected response format from Gemini")
	}

	return sb.String(), nil
}
