package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
)

type GeminiConfig struct {
	BaseURL    string
	Token      string
	Model      string
	HTTPClient *http.Client
}

// GeminiClient talks to the generateContent REST endpoint directly.
type GeminiClient struct {
	baseURL    string
	token      string
	model      string
	httpClient *http.Client
}

func NewGeminiClient(cfg GeminiConfig) (*GeminiClient, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, errors.New("gemini base url is required")
	}
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("gemini token is required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		return nil, errors.New("gemini model is required")
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	return &GeminiClient{
		baseURL:    baseURL,
		token:      token,
		model:      model,
		httpClient: client,
	}, nil
}

func (c *GeminiClient) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	req.Model = c.resolveModel(req.Model)
	if err := ValidateRequest(req); err != nil {
		return GenerateResponse{}, err
	}
	payload := buildGeminiRequest(req)
	var resp geminiGenerateContentResponse
	if err := c.do(ctx, payload, req.Model, &resp); err != nil {
		return GenerateResponse{}, err
	}
	if len(resp.Candidates) == 0 {
		return GenerateResponse{}, &RemoteError{Message: "gemini response has no candidates"}
	}
	return GenerateResponse{
		Text:         flattenGeminiContent(resp.Candidates[0].Content),
		Model:        resp.ModelVersion,
		FinishReason: resp.Candidates[0].FinishReason,
	}, nil
}

func (c *GeminiClient) resolveModel(override string) string {
	if strings.TrimSpace(override) == "" {
		return c.model
	}
	return override
}

func (c *GeminiClient) do(ctx context.Context, payload geminiGenerateContentRequest, model string, out *geminiGenerateContentResponse) error {
	requestBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	endpoint, err := buildGeminiEndpoint(c.baseURL, model, c.token)
	if err != nil {
		return err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(requestBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &RemoteError{Message: fmt.Sprintf("gemini request: %v", redactKey(err, c.token)), Err: err}
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < http.StatusOK || httpResp.StatusCode >= http.StatusMultipleChoices {
		return readGeminiError(httpResp.Body, httpResp.StatusCode)
	}
	if err := json.NewDecoder(httpResp.Body).Decode(out); err != nil {
		return &RemoteError{Status: httpResp.StatusCode, Message: fmt.Sprintf("decode response: %v", err), Err: err}
	}
	if out.Error != nil {
		return &RemoteError{Status: httpResp.StatusCode, Message: fmt.Sprintf("gemini error: %s", out.Error.Message)}
	}
	return nil
}

// redactKey strips the api key query parameter that net/http echoes back in
// *url.Error messages.
func redactKey(err error, token string) string {
	return strings.ReplaceAll(err.Error(), token, "REDACTED")
}

func buildGeminiEndpoint(baseURL, model, token string) (string, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return "", errors.New("gemini base url is required")
	}
	model = strings.TrimSpace(model)
	if model == "" {
		return "", errors.New("gemini model is required")
	}
	if strings.TrimSpace(token) == "" {
		return "", errors.New("gemini token is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base url: %w", err)
	}
	apiPath := strings.TrimSuffix(u.Path, "/")
	if !strings.HasSuffix(apiPath, "/v1") && !strings.HasSuffix(apiPath, "/v1beta") {
		apiPath = path.Join(apiPath, "/v1beta")
	}
	u.Path = path.Join(apiPath, "models", model+":generateContent")
	query := u.Query()
	query.Set("key", token)
	u.RawQuery = query.Encode()
	return u.String(), nil
}

func readGeminiError(body io.Reader, status int) error {
	var resp geminiGenerateContentResponse
	_ = json.NewDecoder(body).Decode(&resp)
	if resp.Error != nil && resp.Error.Message != "" {
		return &RemoteError{
			Status:  status,
			Message: fmt.Sprintf("gemini request failed: %s (status %d)", resp.Error.Message, status),
		}
	}
	return &RemoteError{Status: status, Message: fmt.Sprintf("gemini request failed with status %d", status)}
}

func buildGeminiRequest(req GenerateRequest) geminiGenerateContentRequest {
	payload := geminiGenerateContentRequest{
		Contents: make([]geminiContent, 0, len(req.Turns)),
	}
	if strings.TrimSpace(req.SystemInstruction) != "" {
		payload.SystemInstruction = &geminiSystemInstruction{
			Parts: []geminiPart{{Text: req.SystemInstruction}},
		}
	}
	for _, turn := range req.Turns {
		payload.Contents = append(payload.Contents, geminiContent{
			Role:  string(turn.Role),
			Parts: []geminiPart{{Text: turn.Text}},
		})
	}
	if req.Options.ThinkingBudget != nil {
		budget := *req.Options.ThinkingBudget
		payload.GenerationConfig = &geminiGenerationConfig{
			ThinkingConfig: &geminiThinkingConfig{ThinkingBudget: &budget},
		}
	}
	return payload
}

func flattenGeminiContent(content geminiContent) string {
	if len(content.Parts) == 0 {
		return ""
	}
	var builder strings.Builder
	for _, part := range content.Parts {
		if part.Text == "" || part.Thought {
			continue
		}
		builder.WriteString(part.Text)
	}
	return builder.String()
}

type geminiGenerateContentRequest struct {
	Contents          []geminiContent          `json:"contents"`
	SystemInstruction *geminiSystemInstruction `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenerationConfig  `json:"generationConfig,omitempty"`
}

type geminiGenerationConfig struct {
	ThinkingConfig *geminiThinkingConfig `json:"thinkingConfig,omitempty"`
}

type geminiThinkingConfig struct {
	ThinkingBudget *int32 `json:"thinkingBudget,omitempty"`
}

type geminiGenerateContentResponse struct {
	Candidates   []geminiCandidate `json:"candidates"`
	ModelVersion string            `json:"modelVersion,omitempty"`
	Error        *geminiError      `json:"error,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text    string `json:"text,omitempty"`
	Thought bool   `json:"thought,omitempty"`
}

type geminiSystemInstruction struct {
	Parts []geminiPart `json:"parts"`
}

type geminiError struct {
	Message string `json:"message"`
	Status  string `json:"status,omitempty"`
}
