package ollama

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
	// DefaultURL is where a local Ollama listens
	DefaultURL = "http://localhost:11434"
	// DefaultModel is used when no model is configured
	DefaultModel = "mistral-small3.2:24b"
)

// Ollama is a provider for Ollama
type Ollama struct {
	baseURL    string
	httpClient *http.Client
}

// New returns a new Ollama provider
func New(baseURL string) *Ollama {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Ollama{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

func (o *Ollama) Name() string { return "ollama" }

// Generate calls /api/generate without streaming
func (o *Ollama) Generate(ctx context.Context, req providers.Request) (string, error) {
	model := req.Model
	if model == "" {
		model = DefaultModel
	}

	body := map[string]interface{}{
		"model":  model,
		"prompt": req.Prompt,
		"stream": false,
		"options": map[string]interface{}{
			"temperature": req.Temperature,
		},
	}
	if req.Image != nil {
		body["images"] = []string{req.Image.Data}
	}
	if req.JSON {
		body["format"] = "json"
	}

	requestBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

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
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	return response.Response, nil
}
