package model

import (
	"context"
	"time"
)

// Role identifies who authored a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one entry of the append-only session transcript.
type ChatMessage struct {
	ID      string    `json:"id"`
	Role    Role      `json:"role"`
	Content string    `json:"content"`
	ReplyTo string    `json:"reply_to,omitempty"` // user message ID an assistant message answers
	Failed  bool      `json:"failed,omitempty"`   // inline chat service error
	At      time.Time `json:"at"`
}

// ChatRequest is everything the assistant gets to answer one user message.
type ChatRequest struct {
	RequestID  string
	Transcript []ChatMessage // prior messages, oldest first, excluding Message
	Message    ChatMessage
	Job        *JobDescription
	Analysis   *Analysis
}

// ChatAssistant produces one assistant reply for a user message.
type ChatAssistant interface {
	Reply(ctx context.Context, req ChatRequest) (string, error)
}
