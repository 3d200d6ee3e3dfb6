package driven

import "context"

// LLMService is the chat model behind the planner, judge and synthesiser.
// When it is nil, search still works but questions cannot be answered.
type LLMService interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// ChatWithTools conducts a conversation in which the model may request
	// function calls. Tool calls are returned, never executed.
	ChatWithTools(ctx context.Context, messages []ChatMessage, tools []ToolSpec, opts ChatOptions) (*ChatResponse, error)

	// Summarise backs the upload endpoint's optional description.
	Summarise(ctx context.Context, content string, maxLength int) (string, error)

	ModelName() string
	Ping(ctx context.Context) error
	Close() error
}

// GenerateOptions tune a single completion. Zero MaxTokens leaves the
// provider default in place; Temperature is always sent.
type GenerateOptions struct {
	MaxTokens   int
	Temperature float64
	StopWords   []string
}

// ChatMessage is one turn. Role is "system", "user" or "assistant".
type ChatMessage struct {
	Role    string
	Content string
}

type ChatOptions struct {
	MaxTokens   int
	Temperature float64
}

// ToolSpec advertises a callable function to the model.
type ToolSpec struct {
	// Name is the function name the model must use.
	Name string

	// Description tells the model when to call the function.
	Description string

	// Parameters is a JSON schema object describing the arguments.
	Parameters map[string]any
}

// ChatResponse is the model's reply when tools were offered.
type ChatResponse struct {
	// Text is the assistant content, possibly empty when only tools were called.
	Text string

	// ToolCalls are the function calls the model requested, in order.
	ToolCalls []FunctionCall
}

// FunctionCall is a single function invocation requested by the model.
type FunctionCall struct {
	Name      string
	Arguments map[string]any
}
