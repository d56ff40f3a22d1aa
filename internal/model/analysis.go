package model

import (
	"context"
	"strings"
	"unicode/utf8"
)

// CandidateProfile is the card shown above the analysis.
type CandidateProfile struct {
	Name            string `json:"name"`
	Designation     string `json:"designation"`
	Company         string `json:"company"`
	YearsExperience int    `json:"years_experience"`
	AvatarURL       string `json:"avatar_url,omitempty"`
}

// Initials is the avatar fallback: the first letter of each name part.
func (p CandidateProfile) Initials() string {
	var b strings.Builder
	for _, part := range strings.Fields(p.Name) {
		r, _ := utf8.DecodeRuneInString(part)
		b.WriteRune(r)
	}
	return b.String()
}

// Analysis is the evaluation of one resume against the selected job.
// SelectionScore and RiskScore are independent percentages.
type Analysis struct {
	Profile        CandidateProfile `json:"profile"`
	SelectionScore int              `json:"selection_score"`
	RiskScore      int              `json:"risk_score"`
	Feedback       string           `json:"feedback"`
}

// Normalize clamps scores into [0,100] and experience to >= 0.
func (a Analysis) Normalize() Analysis {
	a.SelectionScore = clampPercent(a.SelectionScore)
	a.RiskScore = clampPercent(a.RiskScore)
	if a.Profile.YearsExperience < 0 {
		a.Profile.YearsExperience = 0
	}
	return a
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// ResumeAnalyzer evaluates one resume against a job description.
// job may be the zero value when no catalog entry matches the selection.
type ResumeAnalyzer interface {
	Analyze(ctx context.Context, file UploadedFile, job JobDescription) (Analysis, error)
}

// AnalysisNotifier shares a finished analysis outside the tool.
type AnalysisNotifier interface {
	Notify(ctx context.Context, job JobDescription, file UploadedFile, analysis Analysis) error
}
