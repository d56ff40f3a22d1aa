package ai

import "context"

// Message is one turn sent to an LLM backend.
type Message struct {
	Role    string // "user" or "assistant"
	Content string
}

// Completion is a single LLM request.
type Completion struct {
	System   string
	Messages []Message

	// SchemaName and Schema request structured JSON output. Providers that
	// cannot enforce a schema still ask for JSON.
	SchemaName string
	Schema     map[string]any
}

// LLMProvider sends a completion request to an LLM and returns the raw text response.
type LLMProvider interface {
	Name() string
	Complete(ctx context.Context, req Completion) (string, error)
}
