package llm

import (
	"context"
	"fmt"
	"net/http"
)

const (
	BackendSDK  = "sdk"
	BackendREST = "rest"
)

type Config struct {
	Backend    string
	BaseURL    string
	Token      string
	Model      string
	HTTPClient *http.Client
}

// New returns the Gemini client for cfg.Backend. An empty backend selects the SDK.
func New(ctx context.Context, cfg Config) (Client, error) {
	switch cfg.Backend {
	case "", BackendSDK:
		client, err := NewGenAIClient(ctx, GenAIConfig{
			BaseURL:    cfg.BaseURL,
			Token:      cfg.Token,
			Model:      cfg.Model,
			HTTPClient: cfg.HTTPClient,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	case BackendREST:
		client, err := NewGeminiClient(GeminiConfig{
			BaseURL:    cfg.BaseURL,
			Token:      cfg.Token,
			Model:      cfg.Model,
			HTTPClient: cfg.HTTPClient,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported llm backend: %s", cfg.Backend)
	}
}
