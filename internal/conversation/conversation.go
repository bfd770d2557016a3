package conversation

import (
	_ "embed"
	"strings"

	"azor/internal/llm"
)

//go:embed system.md
var systemPrompt string

const DefaultModel = "gemini-2.5-flash"

var fixedTurns = [...]llm.Turn{
	{Role: llm.RoleUser, Text: "Hi Azor! Who are you?"},
	{Role: llm.RoleModel, Text: "Woof! I'm Azor, your assistant dog. I fetch answers instead of sticks."},
	{Role: llm.RoleUser, Text: "Nice to meet you. Can you tell me one fun fact about dogs?"},
}

type Options struct {
	Model string
	// ThinkingBudget is copied into the request as is; nil keeps the provider default.
	ThinkingBudget *int32
}

func SystemInstruction() string {
	return strings.TrimSpace(systemPrompt)
}

// Turns returns a copy of the fixed dialogue in order.
func Turns() []llm.Turn {
	turns := make([]llm.Turn, len(fixedTurns))
	copy(turns, fixedTurns[:])
	return turns
}

func Build(opts Options) llm.GenerateRequest {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultModel
	}
	var budget *int32
	if opts.ThinkingBudget != nil {
		value := *opts.ThinkingBudget
		budget = &value
	}
	return llm.GenerateRequest{
		Model:             model,
		SystemInstruction: SystemInstruction(),
		Turns:             Turns(),
		Options:           llm.GenerationOptions{ThinkingBudget: budget},
	}
}
