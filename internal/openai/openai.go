package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/transcribe/internal/providers"
)

const (
	// DefaultBaseURL is the public OpenAI API
	DefaultBaseURL = "https://api.openai.com/v1"
	// DefaultModel is used when no model is configured
	DefaultModel = "gpt-4o"
)

// OpenAI is a provider for OpenAI compatible chat completion APIs
type OpenAI struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// New returns a new OpenAI provider. An empty baseURL selects the public API.
func New(apiKey, baseURL string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, &providers.ConfigurationError{Provider: "openai", Reason: "OPENAI_API_KEY environment variable not set"}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &OpenAI{
		apiKey:     apiKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{},
	}, nil
}

func (o *OpenAI) Name() string { return "openai" }

// Generate sends the prompt, and the image if present, as a single user message
func (o *OpenAI) Generate(ctx context.Context, req providers.Request) (string, error) {
	model := req.Model
	if model == "" {
		model = DefaultModel
	}

	content := []map[string]interface{}{
		{
			"type": "text",
			"text": req.Prompt,
		},
	}
	if req.Image != nil {
		content = append(content, map[string]interface{}{
			"type": "image_url",
			"image_url": map[string]string{
				"url": req.Image.DataURL(),
			},
		})
	}

	body := map[string]interface{}{
		"model": model,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": content,
			},
		},
		"max_tokens":  4000,
		"temperature": req.Temperature,
	}
	if req.JSON {
		body["response_format"] = map[string]string{"type": "json_object"}
	}

	requestBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("received non-200 status code: %d - %s", resp.StatusCode, string(respBody))
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from OpenAI")
	}

	return response.Choices[0].Message.Content, nil
}
