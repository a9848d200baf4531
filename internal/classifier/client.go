package classifier

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
)

// Settings configures the classification pipeline. All fields may change at
// runtime through Service.Reconfigure.
type Settings struct {
	Enabled        bool
	Provider       string
	BaseURL        string
	Model          string
	Timeout        time.Duration
	MaxTokens      int
	Temperature    float64
	GeminiAPIKey   string
	MaxConcurrent  int
	CacheTTL       time.Duration
	PromptTemplate string
}

// DefaultSettings targets a local Ollama instance.
func DefaultSettings() Settings {
	return Settings{
		Enabled:       true,
		Provider:      ProviderOllama,
		BaseURL:       "http://localhost:11434",
		Model:         "llama3.2",
		Timeout:       30 * time.Second,
		MaxTokens:     1000,
		Temperature:   0.7,
		MaxConcurrent: 4,
		CacheTTL:      time.Hour,
	}
}

func (s Settings) timeout() time.Duration {
	if s.Timeout <= 0 {
		return DefaultSettings().Timeout
	}
	return s.Timeout
}

// Client sends one classification prompt for a task to a text-generation
// backend and returns the raw model output. Every failure wraps
// ErrUnavailable.
type Client interface {
	Complete(ctx context.Context, title, description string) (string, error)
}

// NewClient builds the backend selected by s.Provider.
func NewClient(ctx context.Context, s Settings) (Client, error) {
	prompt, err := NewPrompt(s.PromptTemplate)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(s.Provider) {
	case "", ProviderOllama:
		return NewOllamaClient(s, prompt), nil
	case ProviderGemini:
		return NewGeminiClient(ctx, s, prompt)
	default:
		return nil, fmt.Errorf("unknown classification provider %q", s.Provider)
	}
}
