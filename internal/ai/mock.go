package ai

import (
	"context"
	"time"

	"github.com/amishk599/screener/internal/model"
)

// SampleAnalysis is what MockAnalyzer returns for every resume.
var SampleAnalysis = model.Analysis{
	Profile: model.CandidateProfile{
		Name:            "Sarah Anderson",
		Designation:     "Senior Software Engineer",
		Company:         "Tech Innovations Inc.",
		YearsExperience: 7,
		AvatarURL:       "https://images.unsplash.com/photo-1494790108377-be9c29b29330?q=80&w=150&h=150&auto=format&fit=crop",
	},
	SelectionScore: 85,
	RiskScore:      15,
	Feedback:       "Strong technical background with relevant experience. Good culture fit potential. Consider deep diving into system design experience during interview.",
}

// SampleReply is what MockAssistant answers to every message.
const SampleReply = "Based on the resume, the candidate has extensive experience in similar roles..."

// MockAnalyzer returns SampleAnalysis after Delay, regardless of the file.
type MockAnalyzer struct {
	Delay time.Duration
}

// Analyze implements model.ResumeAnalyzer.
func (m MockAnalyzer) Analyze(ctx context.Context, _ model.UploadedFile, _ model.JobDescription) (model.Analysis, error) {
	if err := sleep(ctx, m.Delay); err != nil {
		return model.Analysis{}, err
	}
	return SampleAnalysis, nil
}

// MockAssistant answers SampleReply after Delay.
type MockAssistant struct {
	Delay time.Duration
}

// Reply implements model.ChatAssistant.
func (m MockAssistant) Reply(ctx context.Context, _ model.ChatRequest) (string, error) {
	if err := sleep(ctx, m.Delay); err != nil {
		return "", err
	}
	return SampleReply, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
