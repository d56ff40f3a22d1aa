package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amishk599/screener/internal/model"
)

// choiceBody builds an OpenAI response with a single choice.
func choiceBody(content string) map[string]any {
	return map[string]any{
		"choices": []any{
			map[string]any{"message": map[string]any{"content": content}},
		},
	}
}

func makeTestServer(t *testing.T, statusCode int, body any) (*httptest.Server, *http.Client) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if statusCode == http.StatusTooManyRequests {
			w.Header().Set("Retry-After", "7")
		}
		w.WriteHeader(statusCode)
		if err := json.NewEncoder(w).Encode(body); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, srv.Client()
}

func userPrompt(text string) Completion {
	return Completion{Messages: []Message{{Role: "user", Content: text}}}
}

func TestComplete_Success(t *testing.T) {
	srv, client := makeTestServer(t, http.StatusOK, choiceBody(`{"selection_score":80}`))

	provider := NewOpenAIProvider(srv.URL, "test-key", "test-model", client)
	got, err := provider.Complete(context.Background(), userPrompt("analyze this"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"selection_score":80}` {
		t.Errorf("got %q, want json string", got)
	}
}

func TestComplete_HTTPError(t *testing.T) {
	srv, client := makeTestServer(t, http.StatusInternalServerError, map[string]string{"error": "server error"})

	provider := NewOpenAIProvider(srv.URL, "test-key", "test-model", client)
	_, err := provider.Complete(context.Background(), userPrompt("analyze this"))

	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *model.HTTPError, got %v", err)
	}
	if httpErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", httpErr.StatusCode)
	}
}

func TestComplete_RateLimited(t *testing.T) {
	srv, client := makeTestServer(t, http.StatusTooManyRequests, map[string]string{"error": "rate limited"})

	provider := NewOpenAIProvider(srv.URL, "test-key", "test-model", client)
	_, err := provider.Complete(context.Background(), userPrompt("analyze this"))

	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *model.HTTPError, got %v", err)
	}
	if httpErr.RetryAfter != 7*time.Second {
		t.Errorf("RetryAfter = %v, want 7s", httpErr.RetryAfter)
	}
}

func TestComplete_EmptyChoices(t *testing.T) {
	srv, client := makeTestServer(t, http.StatusOK, map[string]any{"choices": []any{}})

	provider := NewOpenAIProvider(srv.URL, "test-key", "test-model", client)
	_, err := provider.Complete(context.Background(), userPrompt("analyze this"))
	if err == nil {
		t.Fatal("expected error when LLM returns no choices")
	}
}

func TestComplete_ErrorBody(t *testing.T) {
	body := map[string]any{"error": map[string]string{"type": "invalid_request_error", "message": "bad model"}}
	srv, client := makeTestServer(t, http.StatusOK, body)

	provider := NewOpenAIProvider(srv.URL, "test-key", "test-model", client)
	if _, err := provider.Complete(context.Background(), userPrompt("hi")); err == nil {
		t.Fatal("expected error when body carries an error object")
	}
}

func TestComplete_SetsAuthHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(choiceBody("ok"))
	}))
	defer srv.Close()

	provider := NewOpenAIProvider(srv.URL, "my-secret-key", "test-model", srv.Client())
	_, _ = provider.Complete(context.Background(), userPrompt("hello"))

	if gotAuth != "Bearer my-secret-key" {
		t.Errorf("Authorization header = %q, want %q", gotAuth, "Bearer my-secret-key")
	}
}

func TestComplete_SendsStructuredOutputFormat(t *testing.T) {
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(choiceBody("{}"))
	}))
	defer srv.Close()

	provider := NewOpenAIProvider(srv.URL, "key", "gpt-4o-mini", srv.Client())
	_, _ = provider.Complete(context.Background(), Completion{
		System:     "be precise",
		Messages:   []Message{{Role: "user", Content: "analyze this"}},
		SchemaName: "resume_analysis",
		Schema:     analysisSchema,
	})

	if gotReq.ResponseFormat == nil || gotReq.ResponseFormat.Type != "json_schema" {
		t.Fatalf("response_format = %+v, want json_schema", gotReq.ResponseFormat)
	}
	if gotReq.ResponseFormat.JSONSchema.Name != "resume_analysis" {
		t.Errorf("json_schema.name = %q, want resume_analysis", gotReq.ResponseFormat.JSONSchema.Name)
	}
	if gotReq.Temperature != 0 {
		t.Errorf("temperature = %v, want 0", gotReq.Temperature)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" {
		t.Errorf("messages = %+v, want system then user", gotReq.Messages)
	}
}

func TestComplete_PlainChatOmitsResponseFormat(t *testing.T) {
	var raw map[string]json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&raw)
		json.NewEncoder(w).Encode(choiceBody("hello"))
	}))
	defer srv.Close()

	provider := NewOpenAIProvider(srv.URL, "key", "gpt-4o-mini", srv.Client())
	if _, err := provider.Complete(context.Background(), userPrompt("hi")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := raw["response_format"]; ok {
		t.Error("response_format should be omitted without a schema")
	}
}
