package ai

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/amishk599/screener/internal/model"
)

// maxTranscriptMessages bounds how much chat history is replayed to the LLM.
const maxTranscriptMessages = 20

// LLMChatAssistant implements model.ChatAssistant using an LLM.
type LLMChatAssistant struct {
	provider LLMProvider
	tmpl     *template.Template
	logger   *slog.Logger
}

// NewLLMChatAssistant creates an assistant grounded on the current analysis.
func NewLLMChatAssistant(provider LLMProvider, tmpl *template.Template, logger *slog.Logger) *LLMChatAssistant {
	return &LLMChatAssistant{
		provider: provider,
		tmpl:     tmpl,
		logger:   logger,
	}
}

// Reply answers req.Message. Failures are wrapped in model.ErrChatService.
func (a *LLMChatAssistant) Reply(ctx context.Context, req model.ChatRequest) (string, error) {
	var sys bytes.Buffer
	if err := a.tmpl.Execute(&sys, struct {
		Job      *model.JobDescription
		Analysis *model.Analysis
	}{Job: req.Job, Analysis: req.Analysis}); err != nil {
		return "", fmt.Errorf("render system prompt: %w", err)
	}

	history := req.Transcript
	if len(history) > maxTranscriptMessages {
		history = history[len(history)-maxTranscriptMessages:]
	}
	msgs := make([]Message, 0, len(history)+1)
	for _, m := range history {
		// Inline error entries are UI artifacts, not things the assistant said.
		if m.Failed {
			continue
		}
		msgs = append(msgs, Message{Role: string(m.Role), Content: m.Content})
	}
	msgs = append(msgs, Message{Role: string(model.RoleUser), Content: req.Message.Content})

	reply, err := a.provider.Complete(ctx, Completion{System: sys.String(), Messages: msgs})
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrChatService, err)
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", fmt.Errorf("%w: empty reply", model.ErrChatService)
	}

	if a.logger != nil {
		a.logger.Debug("chat reply", "request_id", req.RequestID, "chars", len(reply))
	}
	return reply, nil
}
