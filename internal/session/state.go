package session

import (
	"maps"
	"slices"

	"github.com/amishk599/screener/internal/model"
)

// Status is the lifecycle of the current analysis request.
type Status string

const (
	StatusNone    Status = "none"
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// AnalysisState is the single analysis slot. A new file selection replaces it.
type AnalysisState struct {
	Status    Status
	RequestID string
	FileID    string
	Analysis  *model.Analysis // set only when Status is StatusSuccess
	Err       error           // set only when Status is StatusFailure
}

// Phase is the furthest panel the user has unlocked.
type Phase int

const (
	PhaseJob Phase = iota
	PhaseUpload
	PhaseFile
	PhaseAnalysis
)

func (p Phase) String() string {
	switch p {
	case PhaseUpload:
		return "upload"
	case PhaseFile:
		return "file"
	case PhaseAnalysis:
		return "analysis"
	default:
		return "job"
	}
}

// State is an immutable snapshot of the session. Panel visibility is derived
// from it by the methods below and never stored.
type State struct {
	SelectedJobID  string
	Files          []model.UploadedFile
	SelectedFile   *model.UploadedFile
	Transcript     []model.ChatMessage
	Analysis       AnalysisState
	FileErrors     map[string]error // per-file UnsupportedFile errors, keyed by file ID
	PendingReplies int
}

// UploadVisible reports whether the upload panel is shown.
func (s State) UploadVisible() bool { return s.SelectedJobID != "" }

// FileListVisible reports whether the uploaded file list is shown.
func (s State) FileListVisible() bool { return s.UploadVisible() && len(s.Files) > 0 }

// AnalysisVisible reports whether the analysis panel (pending, result or error) is shown.
func (s State) AnalysisVisible() bool { return s.SelectedFile != nil }

// ProfileVisible reports whether the candidate profile card is shown.
func (s State) ProfileVisible() bool {
	return s.Analysis.Status == StatusSuccess && s.Analysis.Analysis != nil
}

// ChatVisible reports whether the chat panel is shown.
func (s State) ChatVisible() bool { return s.SelectedFile != nil }

// Phase returns the furthest unlocked panel.
func (s State) Phase() Phase {
	switch {
	case s.AnalysisVisible():
		return PhaseAnalysis
	case s.FileListVisible():
		return PhaseFile
	case s.UploadVisible():
		return PhaseUpload
	default:
		return PhaseJob
	}
}

// IsSelected reports whether fileID is the selected file.
func (s State) IsSelected(fileID string) bool {
	return s.SelectedFile != nil && s.SelectedFile.ID == fileID
}

// FileError returns the inline error recorded for fileID, if any.
func (s State) FileError(fileID string) error {
	return s.FileErrors[fileID]
}

// LastMessage returns the newest transcript entry.
func (s State) LastMessage() (model.ChatMessage, bool) {
	if len(s.Transcript) == 0 {
		return model.ChatMessage{}, false
	}
	return s.Transcript[len(s.Transcript)-1], true
}

func (s State) clone() State {
	out := s
	out.Files = slices.Clone(s.Files)
	out.Transcript = slices.Clone(s.Transcript)
	out.FileErrors = maps.Clone(s.FileErrors)
	if s.SelectedFile != nil {
		f := *s.SelectedFile
		out.SelectedFile = &f
	}
	if s.Analysis.Analysis != nil {
		a := *s.Analysis.Analysis
		out.Analysis.Analysis = &a
	}
	return out
}
