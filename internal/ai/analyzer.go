package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/amishk599/screener/internal/model"
	"github.com/amishk599/screener/internal/resume"
)

// maxPromptResumeChars keeps very long resumes inside the model's context.
const maxPromptResumeChars = 24000

// analysisSchema is the JSON Schema enforced via structured outputs.
// It matches rawAnalysis exactly so the response can be parsed directly.
var analysisSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"properties": map[string]any{
		"name":             map[string]any{"type": "string"},
		"designation":      map[string]any{"type": "string"},
		"company":          map[string]any{"type": "string"},
		"years_experience": map[string]any{"type": "integer"},
		"selection_score":  map[string]any{"type": "integer"},
		"risk_score":       map[string]any{"type": "integer"},
		"feedback":         map[string]any{"type": "string"},
	},
	"required": []string{
		"name", "designation", "company", "years_experience",
		"selection_score", "risk_score", "feedback",
	},
}

// LLMResumeAnalyzer implements model.ResumeAnalyzer using an LLM.
type LLMResumeAnalyzer struct {
	provider LLMProvider
	tmpl     *template.Template
	logger   *slog.Logger
}

// NewLLMResumeAnalyzer creates an analyzer that scores resumes with an LLM.
func NewLLMResumeAnalyzer(provider LLMProvider, tmpl *template.Template, logger *slog.Logger) *LLMResumeAnalyzer {
	return &LLMResumeAnalyzer{
		provider: provider,
		tmpl:     tmpl,
		logger:   logger,
	}
}

// Analyze extracts the resume text and asks the LLM for a profile and scores.
// Unreadable files fail with model.ErrUnsupportedFile; everything else that
// goes wrong is model.ErrAnalysisUnavailable.
func (a *LLMResumeAnalyzer) Analyze(ctx context.Context, file model.UploadedFile, job model.JobDescription) (model.Analysis, error) {
	text, err := resume.ExtractText(ctx, file)
	if err != nil {
		if errors.Is(err, model.ErrUnsupportedFile) {
			return model.Analysis{}, err
		}
		return model.Analysis{}, fmt.Errorf("%w: %v", model.ErrAnalysisUnavailable, err)
	}
	text = truncateRunes(text, maxPromptResumeChars)

	var promptBuf bytes.Buffer
	if err := a.tmpl.Execute(&promptBuf, struct {
		Job      model.JobDescription
		FileName string
		Resume   string
	}{Job: job, FileName: file.Name, Resume: text}); err != nil {
		return model.Analysis{}, fmt.Errorf("render prompt: %w", err)
	}

	raw, err := a.provider.Complete(ctx, Completion{
		System:     "You are an experienced technical recruiter who evaluates resumes objectively.",
		Messages:   []Message{{Role: "user", Content: promptBuf.String()}},
		SchemaName: "resume_analysis",
		Schema:     analysisSchema,
	})
	if err != nil {
		return model.Analysis{}, fmt.Errorf("%w: llm complete: %v", model.ErrAnalysisUnavailable, err)
	}

	analysis, err := parseAnalysis(raw)
	if err != nil {
		return model.Analysis{}, fmt.Errorf("%w: %v", model.ErrAnalysisUnavailable, err)
	}

	if a.logger != nil {
		a.logger.Debug("resume analyzed",
			"file", file.Name,
			"job", job.ID,
			"selection", analysis.SelectionScore,
			"risk", analysis.RiskScore,
		)
	}
	return analysis, nil
}

// rawAnalysis is the JSON shape returned by the LLM (matches analysisSchema).
type rawAnalysis struct {
	Name            string `json:"name"`
	Designation     string `json:"designation"`
	Company         string `json:"company"`
	YearsExperience int    `json:"years_experience"`
	SelectionScore  int    `json:"selection_score"`
	RiskScore       int    `json:"risk_score"`
	Feedback        string `json:"feedback"`
}

// parseAnalysis deserializes the LLM response. Backends without schema
// enforcement sometimes wrap the JSON in a markdown fence.
func parseAnalysis(raw string) (model.Analysis, error) {
	var ra rawAnalysis
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &ra); err != nil {
		return model.Analysis{}, fmt.Errorf("unmarshal analysis JSON: %w", err)
	}
	if strings.TrimSpace(ra.Name) == "" && strings.TrimSpace(ra.Feedback) == "" {
		return model.Analysis{}, errors.New("analysis JSON has neither name nor feedback")
	}

	return model.Analysis{
		Profile: model.CandidateProfile{
			Name:            strings.TrimSpace(ra.Name),
			Designation:     strings.TrimSpace(ra.Designation),
			Company:         strings.TrimSpace(ra.Company),
			YearsExperience: ra.YearsExperience,
		},
		SelectionScore: ra.SelectionScore,
		RiskScore:      ra.RiskScore,
		Feedback:       strings.TrimSpace(ra.Feedback),
	}.Normalize(), nil
}

func stripCodeFence(raw string) string {
	clean := strings.TrimSpace(raw)
	if strings.HasPrefix(clean, "```json") {
		clean = strings.TrimPrefix(clean, "```json")
	} else if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```")
	}
	clean = strings.TrimSuffix(clean, "```")
	return strings.TrimSpace(clean)
}

// truncateRunes cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
