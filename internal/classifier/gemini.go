package classifier

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiClient sends the classification prompt to the Gemini API.
type GeminiClient struct {
	settings Settings
	prompt   *Prompt
	client   *genai.Client
}

// NewGeminiClient requires s.GeminiAPIKey and s.Model.
func NewGeminiClient(ctx context.Context, s Settings, prompt *Prompt) (*GeminiClient, error) {
	if s.GeminiAPIKey == "" {
		return nil, fmt.Errorf("gemini API key cannot be empty")
	}
	if s.Model == "" {
		return nil, fmt.Errorf("gemini model name cannot be empty")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  s.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiClient{settings: s, prompt: prompt, client: client}, nil
}

// Complete implements Client.
func (c *GeminiClient) Complete(ctx context.Context, title, description string) (string, error) {
	if !c.settings.Enabled {
		return "", fmt.Errorf("%w: disabled by configuration", ErrUnavailable)
	}
	prompt, err := c.prompt.Build(title, description)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.settings.timeout())
	defer cancel()

	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(c.settings.Temperature)),
		MaxOutputTokens:  int32(c.settings.MaxTokens),
		ResponseMIMEType: "application/json",
	}
	resp, err := c.client.Models.GenerateContent(ctx, c.settings.Model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates returned", ErrUnavailable)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty response body", ErrUnavailable)
	}
	return text, nil
}
