package tui

import (
	"errors"
	"testing"

	"github.com/amishk599/screener/internal/model"
	"github.com/amishk599/screener/internal/session"
	"github.com/amishk599/screener/internal/timeline"
)

func statuses(steps []timeline.Step) []timeline.StepStatus {
	out := make([]timeline.StepStatus, len(steps))
	for i, s := range steps {
		out[i] = s.Status
	}
	return out
}

func assertStatuses(t *testing.T, got []timeline.Step, want ...timeline.StepStatus) {
	t.Helper()
	g := statuses(got)
	if len(g) != len(want) {
		t.Fatalf("steps = %v, want %v", g, want)
	}
	for i := range want {
		if g[i] != want[i] {
			t.Fatalf("steps = %v, want %v", g, want)
		}
	}
}

func TestRevealSteps_Initial(t *testing.T) {
	steps := RevealSteps(session.State{})
	assertStatuses(t, steps, timeline.StatusActive, timeline.StatusPending, timeline.StatusPending, timeline.StatusPending)
	if steps[0].Label != "Select a job" {
		t.Errorf("first label = %q", steps[0].Label)
	}
}

func TestRevealSteps_JobSelected(t *testing.T) {
	steps := RevealSteps(session.State{SelectedJobID: "1"})
	assertStatuses(t, steps, timeline.StatusDone, timeline.StatusActive, timeline.StatusPending, timeline.StatusPending)
}

func TestRevealSteps_AnalysisFailedKeepsLastStepActive(t *testing.T) {
	f := model.NewMemoryFile("a", "a.pdf", nil)
	s := session.State{
		SelectedJobID: "1",
		Files:         []model.UploadedFile{f},
		SelectedFile:  &f,
		Analysis:      session.AnalysisState{Status: session.StatusFailure, Err: errors.New("down")},
	}
	assertStatuses(t, RevealSteps(s), timeline.StatusDone, timeline.StatusDone, timeline.StatusDone, timeline.StatusActive)
}

func TestRevealSteps_AllDone(t *testing.T) {
	f := model.NewMemoryFile("a", "a.pdf", nil)
	s := session.State{
		SelectedJobID: "1",
		Files:         []model.UploadedFile{f},
		SelectedFile:  &f,
		Analysis:      session.AnalysisState{Status: session.StatusSuccess, Analysis: &model.Analysis{}},
	}
	assertStatuses(t, RevealSteps(s), timeline.StatusDone, timeline.StatusDone, timeline.StatusDone, timeline.StatusDone)
}
