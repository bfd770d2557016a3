package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleModel
}

type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

type GenerationOptions struct {
	// ThinkingBudget caps reasoning tokens. Nil leaves the provider default in
	// place, zero asks for minimal reasoning.
	ThinkingBudget *int32 `json:"thinkingBudget,omitempty"`
}

type GenerateRequest struct {
	Model             string            `json:"model"`
	SystemInstruction string            `json:"systemInstruction,omitempty"`
	Turns             []Turn            `json:"turns"`
	Options           GenerationOptions `json:"options"`
}

type GenerateResponse struct {
	Text         string
	Model        string
	FinishReason string
}

type Client interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error)
}

// RemoteError is returned by every Client for a failed generate call.
type RemoteError struct {
	Status  int
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return "request failed"
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

func ValidateRequest(req GenerateRequest) error {
	if strings.TrimSpace(req.Model) == "" {
		return errors.New("model is required")
	}
	if len(req.Turns) == 0 {
		return errors.New("at least one turn is required")
	}
	for i, turn := range req.Turns {
		if !turn.Role.Valid() {
			return fmt.Errorf("turn %d: invalid role %q", i, turn.Role)
		}
	}
	return nil
}
