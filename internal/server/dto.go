package server

import (
	"time"

	"github.com/amishk599/screener/internal/model"
	"github.com/amishk599/screener/internal/session"
)

type fileDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type,omitempty"`
	Selected    bool   `json:"selected"`
	Error       string `json:"error,omitempty"`
}

type analysisDTO struct {
	Status    session.Status  `json:"status"`
	RequestID string          `json:"request_id,omitempty"`
	FileID    string          `json:"file_id,omitempty"`
	Result    *model.Analysis `json:"result,omitempty"`
	Initials  string          `json:"initials,omitempty"`
	Error     string          `json:"error,omitempty"`
}

type visibilityDTO struct {
	Upload   bool `json:"upload"`
	FileList bool `json:"file_list"`
	Analysis bool `json:"analysis"`
	Profile  bool `json:"profile"`
	Chat     bool `json:"chat"`
}

type messageDTO struct {
	ID      string     `json:"id"`
	Role    model.Role `json:"role"`
	Content string     `json:"content"`
	ReplyTo string     `json:"reply_to,omitempty"`
	Failed  bool       `json:"failed,omitempty"`
	At      time.Time  `json:"at"`
}

type stateDTO struct {
	SelectedJobID  string        `json:"selected_job_id"`
	SelectedFileID string        `json:"selected_file_id,omitempty"`
	Phase          string        `json:"phase"`
	Visible        visibilityDTO `json:"visible"`
	Files          []fileDTO     `json:"files"`
	Analysis       analysisDTO   `json:"analysis"`
	Transcript     []messageDTO  `json:"transcript"`
	PendingReplies int           `json:"pending_replies"`
}

func toStateDTO(s session.State) stateDTO {
	out := stateDTO{
		SelectedJobID: s.SelectedJobID,
		Phase:         s.Phase().String(),
		Visible: visibilityDTO{
			Upload:   s.UploadVisible(),
			FileList: s.FileListVisible(),
			Analysis: s.AnalysisVisible(),
			Profile:  s.ProfileVisible(),
			Chat:     s.ChatVisible(),
		},
		Files:          make([]fileDTO, 0, len(s.Files)),
		Transcript:     make([]messageDTO, 0, len(s.Transcript)),
		PendingReplies: s.PendingReplies,
		Analysis: analysisDTO{
			Status:    s.Analysis.Status,
			RequestID: s.Analysis.RequestID,
			FileID:    s.Analysis.FileID,
			Result:    s.Analysis.Analysis,
		},
	}
	if s.SelectedFile != nil {
		out.SelectedFileID = s.SelectedFile.ID
	}
	if s.Analysis.Analysis != nil {
		out.Analysis.Initials = s.Analysis.Analysis.Profile.Initials()
	}
	if s.Analysis.Err != nil {
		out.Analysis.Error = s.Analysis.Err.Error()
	}
	for _, f := range s.Files {
		fd := fileDTO{ID: f.ID, Name: f.Name, Size: f.Size, ContentType: f.ContentType, Selected: s.IsSelected(f.ID)}
		if err := s.FileError(f.ID); err != nil {
			fd.Error = err.Error()
		}
		out.Files = append(out.Files, fd)
	}
	for _, m := range s.Transcript {
		out.Transcript = append(out.Transcript, messageDTO(m))
	}
	return out
}
