package llm

import "context"

// Provider generates text from a system prompt and a conversation
type Provider interface {
	Name() string
	Generate(ctx context.Context, request *GenerationRequest) (*GenerationResponse, error)
}

// GenerationRequest is a provider-neutral request.
//
// InputArray holds the conversation as {"role": ..., "content": ...} items with the roles
// "user", "assistant" or "developer".
type GenerationRequest struct {
	Model         string
	SystemPrompt  string
	InputArray    []map[string]any
	ReasoningMode string
	// CFGGrammar constrains the output where the provider supports it
	CFGGrammar *CFGConfig
}

// CFGConfig describes a grammar-constrained custom tool
type CFGConfig struct {
	ToolName    string
	Description string
	Grammar     string
	Syntax      string // "lark" or "regex"
}

// Usage is the token usage of one generation
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// GenerationResponse is the text produced by a provider
type GenerationResponse struct {
	RawOutput string
	Usage     Usage
}

// UserMessage builds a user input item
func UserMessage(content string) map[string]any {
	return map[string]any{"role": userRole, "content": content}
}

// AssistantMessage builds an assistant input item
func AssistantMessage(content string) map[string]any {
	return map[string]any{"role": assistantRole, "content": content}
}

// messageParts returns the role and content of an input item
func messageParts(item map[string]any) (role, content string, ok bool) {
	role, hasRole := item["role"].(string)
	content, hasContent := item["content"].(string)
	return role, content, hasRole && hasContent
}
