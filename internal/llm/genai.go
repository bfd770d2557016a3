package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

type GenAIConfig struct {
	BaseURL    string
	Token      string
	Model      string
	HTTPClient *http.Client
}

// GenAIClient uses the official Gemini SDK for the same generateContent call
// that GeminiClient issues by hand.
type GenAIClient struct {
	client *genai.Client
	model  string
}

func NewGenAIClient(ctx context.Context, cfg GenAIConfig) (*GenAIClient, error) {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("gemini token is required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		return nil, errors.New("gemini model is required")
	}
	clientConfig := &genai.ClientConfig{
		APIKey:     token,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GenAIClient{client: client, model: model}, nil
}

func (c *GenAIClient) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	if strings.TrimSpace(req.Model) == "" {
		req.Model = c.model
	}
	if err := ValidateRequest(req); err != nil {
		return GenerateResponse{}, err
	}
	contents, config := buildGenAIRequest(req)
	resp, err := c.client.Models.GenerateContent(ctx, req.Model, contents, config)
	if err != nil {
		return GenerateResponse{}, genAIError(err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return GenerateResponse{}, &RemoteError{Message: "gemini response has no candidates"}
	}
	candidate := resp.Candidates[0]
	return GenerateResponse{
		Text:         flattenGenAIContent(candidate.Content),
		Model:        resp.ModelVersion,
		FinishReason: string(candidate.FinishReason),
	}, nil
}

func buildGenAIRequest(req GenerateRequest) ([]*genai.Content, *genai.GenerateContentConfig) {
	contents := make([]*genai.Content, 0, len(req.Turns))
	for _, turn := range req.Turns {
		contents = append(contents, &genai.Content{
			Role:  string(turn.Role),
			Parts: []*genai.Part{{Text: turn.Text}},
		})
	}
	config := &genai.GenerateContentConfig{}
	if strings.TrimSpace(req.SystemInstruction) != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemInstruction}},
		}
	}
	if req.Options.ThinkingBudget != nil {
		budget := *req.Options.ThinkingBudget
		config.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: &budget}
	}
	return contents, config
}

func flattenGenAIContent(content *genai.Content) string {
	if content == nil {
		return ""
	}
	var builder strings.Builder
	for _, part := range content.Parts {
		if part == nil || part.Text == "" || part.Thought {
			continue
		}
		builder.WriteString(part.Text)
	}
	return builder.String()
}

func genAIError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &RemoteError{
			Status:  apiErr.Code,
			Message: fmt.Sprintf("gemini request failed: %s (status %d)", apiErr.Message, apiErr.Code),
			Err:     err,
		}
	}
	return &RemoteError{Message: fmt.Sprintf("gemini request: %v", err), Err: err}
}
