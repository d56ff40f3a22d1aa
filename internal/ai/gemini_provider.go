package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"github.com/amishk599/screener/internal/model"
)

// contentGenerator is the subset of *genai.Models used by GeminiProvider.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiProvider calls the Gemini API through the genai SDK.
type GeminiProvider struct {
	models contentGenerator
	model  string
}

// NewGeminiProvider creates a provider for the Gemini developer API.
func NewGeminiProvider(ctx context.Context, apiKey, model string, httpClient *http.Client) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiProvider{models: client.Models, model: model}, nil
}

// Name identifies the backend for rate limiting.
func (p *GeminiProvider) Name() string { return "gemini" }

// Complete maps the conversation onto Gemini contents. A schema switches the
// response to JSON; the schema itself travels in the prompt.
func (p *GeminiProvider) Complete(ctx context.Context, c Completion) (string, error) {
	contents := make([]*genai.Content, 0, len(c.Messages))
	for _, m := range c.Messages {
		var role genai.Role = genai.RoleUser
		if m.Role == "assistant" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}

	temperature := float32(0.7)
	cfg := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 1024,
	}
	if c.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(c.System, genai.RoleUser)
	}
	if c.Schema != nil {
		temperature = 0
		cfg.ResponseMIMEType = "application/json"
	}

	resp, err := p.models.GenerateContent(ctx, p.model, contents, cfg)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", &model.HTTPError{StatusCode: apiErr.Code, Err: fmt.Errorf("gemini: %s", apiErr.Message)}
		}
		return "", fmt.Errorf("gemini request: %w", err)
	}
	if resp == nil {
		return "", errors.New("gemini returned no response")
	}

	text := resp.Text()
	if text == "" {
		return "", errors.New("gemini returned no text content")
	}
	return text, nil
}
