package genx

import (
	"context"

	"github.com/goccy/go-yaml"
	"github.com/google/jsonschema-go/jsonschema"
)

// Role is the producer of a Turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Turn is one entry of a conversation history.
type Turn struct {
	Role    Role   `json:"role"`
	Name    string `json:"name,omitzero"`
	Content string `json:"content,omitzero"`

	// ToolCalls is set on assistant turns that request tool invocations.
	ToolCalls []ToolCall `json:"tool_calls,omitzero"`

	// ToolCallID is set on tool turns, naming the call being answered.
	ToolCallID string `json:"tool_call_id,omitzero"`
}

func SystemTurn(text string) Turn {
	return Turn{Role: RoleSystem, Content: text}
}

func UserTurn(text string) Turn {
	return Turn{Role: RoleUser, Content: text}
}

func AssistantTurn(text string) Turn {
	return Turn{Role: RoleAssistant, Content: text}
}

// ToolResultTurn answers call with result.
func ToolResultTurn(call ToolCall, result string) Turn {
	return Turn{Role: RoleTool, Name: call.Name, Content: result, ToolCallID: call.ID}
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Spec describes a tool or a structured output schema to the model.
type Spec struct {
	Name        string
	Description string
	Schema      *jsonschema.Schema
}

type ModelParams struct {
	MaxTokens        int     `json:"max_tokens,omitzero" yaml:"max_tokens,omitempty"`
	FrequencyPenalty float32 `json:"frequency_penalty,omitzero" yaml:"frequency_penalty,omitempty"`
	Temperature      float32 `json:"temperature,omitzero" yaml:"temperature,omitempty"`
	TopP             float32 `json:"top_p,omitzero" yaml:"top_p,omitempty"`
	PresencePenalty  float32 `json:"presence_penalty,omitzero" yaml:"presence_penalty,omitempty"`
	TopK             float32 `json:"top_k,omitzero" yaml:"top_k,omitempty"`
}

// Request is the input of a single model call.
type Request struct {
	Instructions string
	History      []Turn
	Tools        []Spec

	// Output, when set, asks the model for a JSON answer matching the schema.
	Output *Spec

	Params *ModelParams
}

// Response is the result of a single model call. Either Text is the final
// answer or ToolCalls lists the tools the model wants invoked.
type Response struct {
	Text      string
	ToolCalls []ToolCall
	Usage     Usage
}

// Generator performs one model call.
type Generator interface {
	Generate(ctx context.Context, req *Request) (*Response, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req *Request) (*Response, error)

func (fn GeneratorFunc) Generate(ctx context.Context, req *Request) (*Response, error) {
	return fn(ctx, req)
}

type Usage struct {
	// Number of tokens in the prompt, including cached content.
	PromptTokenCount int64

	// Number of tokens in the cached part of the prompt.
	CachedContentTokenCount int64

	// Number of tokens generated.
	GeneratedTokenCount int64
}

func (u *Usage) add(o Usage) {
	u.PromptTokenCount += o.PromptTokenCount
	u.CachedContentTokenCount += o.CachedContentTokenCount
	u.GeneratedTokenCount += o.GeneratedTokenCount
}

func (u Usage) String() string {
	b, _ := yaml.Marshal(map[string]map[string]any{
		"Usage": {
			"Prompt":    u.PromptTokenCount,
			"Cached":    u.CachedContentTokenCount,
			"Generated": u.GeneratedTokenCount,
		},
	})
	return string(b)
}
