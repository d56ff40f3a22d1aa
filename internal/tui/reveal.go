package tui

import (
	"github.com/amishk599/screener/internal/session"
	"github.com/amishk599/screener/internal/timeline"
)

// RevealSteps maps session state onto the four-step workflow timeline. Steps
// already reached are done, the first unreached one is active.
func RevealSteps(s session.State) []timeline.Step {
	reached := []bool{
		s.UploadVisible(),
		s.FileListVisible(),
		s.AnalysisVisible(),
		s.ProfileVisible(),
	}
	labels := []string{"Select a job", "Upload resumes", "Pick a resume", "Review analysis"}

	steps := make([]timeline.Step, len(labels))
	activeSet := false
	for i, l := range labels {
		switch {
		case reached[i]:
			steps[i] = timeline.Step{Label: l, Status: timeline.StatusDone}
		case !activeSet:
			steps[i] = timeline.Step{Label: l, Status: timeline.StatusActive}
			activeSet = true
		default:
			steps[i] = timeline.Step{Label: l, Status: timeline.StatusPending}
		}
	}
	return steps
}
