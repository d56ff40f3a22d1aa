package ai

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/genai"

	"github.com/amishk599/screener/internal/model"
)

type fakeGenerator struct {
	text string
	err  error

	gotModel    string
	gotContents []*genai.Content
	gotConfig   *genai.GenerateContentConfig
}

func (f *fakeGenerator) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.gotModel = model
	f.gotContents = contents
	f.gotConfig = config
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: genai.NewContentFromText(f.text, genai.RoleModel)}},
	}, nil
}

func TestGemini_MapsRolesAndSystem(t *testing.T) {
	fake := &fakeGenerator{text: "sure"}
	p := &GeminiProvider{models: fake, model: "gemini-2.5-flash"}

	got, err := p.Complete(context.Background(), Completion{
		System: "you help recruiters",
		Messages: []Message{
			{Role: "user", Content: "hi"},
			{Role: "assistant", Content: "hello"},
			{Role: "user", Content: "tell me more"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "sure" {
		t.Errorf("got %q", got)
	}
	if fake.gotModel != "gemini-2.5-flash" {
		t.Errorf("model = %q", fake.gotModel)
	}
	if len(fake.gotContents) != 3 || fake.gotContents[0].Role != string(genai.RoleUser) ||
		fake.gotContents[1].Role != string(genai.RoleModel) || fake.gotContents[2].Role != string(genai.RoleUser) {
		t.Errorf("contents roles not mapped: %+v", fake.gotContents)
	}
	if fake.gotConfig.SystemInstruction == nil {
		t.Error("system instruction not set")
	}
	if fake.gotConfig.ResponseMIMEType != "" {
		t.Errorf("plain chat should not request JSON, got %q", fake.gotConfig.ResponseMIMEType)
	}
}

func TestGemini_SchemaRequestsJSON(t *testing.T) {
	fake := &fakeGenerator{text: "{}"}
	p := &GeminiProvider{models: fake, model: "m"}

	if _, err := p.Complete(context.Background(), Completion{
		Messages: []Message{{Role: "user", Content: "analyze"}},
		Schema:   analysisSchema,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fake.gotConfig.ResponseMIMEType != "application/json" {
		t.Errorf("ResponseMIMEType = %q", fake.gotConfig.ResponseMIMEType)
	}
	if *fake.gotConfig.Temperature != 0 {
		t.Errorf("temperature = %v, want 0", *fake.gotConfig.Temperature)
	}
}

func TestGemini_APIErrorBecomesHTTPError(t *testing.T) {
	fake := &fakeGenerator{err: genai.APIError{Code: 503, Message: "overloaded"}}
	p := &GeminiProvider{models: fake, model: "m"}

	_, err := p.Complete(context.Background(), userPrompt("hi"))
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != 503 {
		t.Fatalf("expected HTTPError 503, got %v", err)
	}
}

func TestGemini_EmptyText(t *testing.T) {
	p := &GeminiProvider{models: &fakeGenerator{text: ""}, model: "m"}
	if _, err := p.Complete(context.Background(), userPrompt("hi")); err == nil {
		t.Fatal("expected error for empty response text")
	}
}
