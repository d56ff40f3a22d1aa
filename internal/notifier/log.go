package notifier

import (
	"context"
	"log/slog"

	"github.com/amishk599/screener/internal/model"
)

// Ensure LogNotifier implements model.AnalysisNotifier.
var _ model.AnalysisNotifier = (*LogNotifier)(nil)

// LogNotifier writes shared analyses to the given logger as structured messages.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each shared analysis via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the candidate, the job and both scores.
// Returns nil (logging does not fail).
func (n *LogNotifier) Notify(ctx context.Context, job model.JobDescription, file model.UploadedFile, a model.Analysis) error {
	n.logger.InfoContext(ctx, "candidate analysis shared",
		"job", job.Title,
		"file", file.Name,
		"candidate", a.Profile.Name,
		"designation", a.Profile.Designation,
		"company", a.Profile.Company,
		"years", a.Profile.YearsExperience,
		"selection", a.SelectionScore,
		"risk", a.RiskScore,
	)
	return nil
}
