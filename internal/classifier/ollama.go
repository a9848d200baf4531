package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const maxResponseBytes = 1 << 20

// OllamaClient calls an Ollama-style /api/generate endpoint.
type OllamaClient struct {
	settings Settings
	prompt   *Prompt
	http     *http.Client
}

type generateRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"maxTokens"`
	Temperature float64 `json:"temperature"`
	Stream      bool    `json:"stream"`
}

type generateResponse struct {
	Response *string `json:"response"`
}

// NewOllamaClient returns a client for s.BaseURL. The request timeout is
// applied per call from s.Timeout.
func NewOllamaClient(s Settings, prompt *Prompt) *OllamaClient {
	return &OllamaClient{
		settings: s,
		prompt:   prompt,
		http:     &http.Client{},
	}
}

// Complete implements Client.
func (c *OllamaClient) Complete(ctx context.Context, title, description string) (string, error) {
	if !c.settings.Enabled {
		return "", fmt.Errorf("%w: disabled by configuration", ErrUnavailable)
	}

	prompt, err := c.prompt.Build(title, description)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	body, err := json.Marshal(generateRequest{
		Model:       c.settings.Model,
		Prompt:      prompt,
		MaxTokens:   c.settings.MaxTokens,
		Temperature: c.settings.Temperature,
		Stream:      false,
	})
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %v", ErrUnavailable, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.settings.timeout())
	defer cancel()

	url := strings.TrimRight(c.settings.BaseURL, "/") + "/api/generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return "", fmt.Errorf("%w: endpoint returned status %d", ErrUnavailable, resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	if out.Response == nil || strings.TrimSpace(*out.Response) == "" {
		return "", fmt.Errorf("%w: empty response body", ErrUnavailable)
	}
	return *out.Response, nil
}
