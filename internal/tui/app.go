// Package tui is the terminal front-end of a screening session. Panels are
// revealed from controller state; every mutation goes through the controller.
package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/screener/internal/model"
	"github.com/amishk599/screener/internal/resume"
	"github.com/amishk599/screener/internal/session"
)

// Controller is the part of session.Controller the TUI drives.
type Controller interface {
	Jobs() []model.JobDescription
	SelectJob(id string) error
	UploadFiles(files []model.UploadedFile) error
	SelectFile(fileID string) error
	RetryAnalysis() error
	SendChatMessage(text string) (string, error)
}

type focusArea int

const (
	focusJobs focusArea = iota
	focusFiles
	focusPrompt
	focusChat
)

// eventMsg carries one controller event. ok is false once the channel closed.
type eventMsg struct {
	event session.Event
	ok    bool
}

// filesLoadedMsg is sent when the upload prompt's locations are listed.
type filesLoadedMsg struct {
	files []model.UploadedFile
	err   error
}

// actionDoneMsg reports the error of a controller call, if any.
type actionDoneMsg struct {
	action string
	err    error
}

// sharedMsg is sent when the notifier finished sharing an analysis.
type sharedMsg struct {
	name string
	err  error
}

type appModel struct {
	ctx      context.Context
	ctrl     Controller
	events   <-chan session.Event
	files    resume.Source
	notifier model.AnalysisNotifier

	jobs       []model.JobDescription
	state      session.State
	focus      focusArea
	jobCursor  int
	fileCursor int
	status     string

	width  int
	height int
	ready  bool

	prompt       textinput.Model
	chatInput    textinput.Model
	chatView     viewport.Model
	spinner      spinner.Model
	selectionBar progress.Model
	riskBar      progress.Model
	loadingFiles bool
}

func newAppModel(ctx context.Context, ctrl Controller, events <-chan session.Event, files resume.Source, notifier model.AnalysisNotifier) appModel {
	prompt := textinput.New()
	prompt.Prompt = "path> "
	prompt.Placeholder = "./resumes, cv.pdf, s3://bucket/prefix"
	prompt.CharLimit = 512

	chatInput := textinput.New()
	chatInput.Prompt = "> "
	chatInput.Placeholder = "Ask about this candidate"
	chatInput.CharLimit = 2000

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))

	return appModel{
		ctx:          ctx,
		ctrl:         ctrl,
		events:       events,
		files:        files,
		notifier:     notifier,
		jobs:         ctrl.Jobs(),
		prompt:       prompt,
		chatInput:    chatInput,
		spinner:      sp,
		selectionBar: progress.New(progress.WithGradient("#5A56E0", "#42D392"), progress.WithoutPercentage(), progress.WithWidth(30)),
		riskBar:      progress.New(progress.WithGradient("#F5A623", "#E0245E"), progress.WithoutPercentage(), progress.WithWidth(30)),
	}
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(waitForEvent(m.events), m.spinner.Tick)
}

func waitForEvent(events <-chan session.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		return eventMsg{event: ev, ok: ok}
	}
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		return m, nil

	case eventMsg:
		if !msg.ok {
			return m, tea.Quit
		}
		m.applyState(msg.event.State)
		return m, waitForEvent(m.events)

	case filesLoadedMsg:
		m.loadingFiles = false
		if msg.err != nil {
			m.status = fmt.Sprintf("could not load resumes: %v", msg.err)
			return m, nil
		}
		if len(msg.files) == 0 {
			m.status = "no resumes found"
			return m, nil
		}
		m.status = fmt.Sprintf("%d resume(s) loaded", len(msg.files))
		m.focus = focusFiles
		m.fileCursor = 0
		files := msg.files
		return m, m.call("upload", func() error { return m.ctrl.UploadFiles(files) })

	case actionDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("%s: %v", msg.action, msg.err)
		}
		return m, nil

	case sharedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("share failed: %v", msg.err)
		} else {
			m.status = fmt.Sprintf("shared analysis of %s", msg.name)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m appModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.focus {
	case focusPrompt:
		return m.updatePrompt(msg)
	case focusChat:
		return m.updateChat(msg)
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "tab":
		m.cycleFocus()
		return m, m.focusCmd()
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "enter":
		return m, m.activate()
	case "u":
		if m.state.UploadVisible() {
			m.focus = focusPrompt
			m.prompt.Reset()
			return m, m.prompt.Focus()
		}
	case "r":
		if m.state.Analysis.Status == session.StatusFailure {
			m.status = ""
			return m, m.call("retry", m.ctrl.RetryAnalysis)
		}
	case "s":
		return m, m.shareCmd()
	case "c":
		if m.state.ChatVisible() {
			m.focus = focusChat
			return m, m.chatInput.Focus()
		}
	case "o":
		if job, ok := model.FindJob(m.jobs, m.state.SelectedJobID); ok && job.URL != "" {
			openURL(job.URL)
		}
	}
	return m, nil
}

func (m appModel) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.prompt.Blur()
		m.focus = focusJobs
		if m.state.FileListVisible() {
			m.focus = focusFiles
		}
		return m, nil
	case "enter":
		locations := resume.SplitLocations(m.prompt.Value())
		if len(locations) == 0 {
			return m, nil
		}
		m.prompt.Blur()
		m.focus = focusFiles
		m.loadingFiles = true
		return m, m.loadFilesCmd(locations)
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m appModel) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "tab":
		m.chatInput.Blur()
		m.focus = focusFiles
		return m, nil
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.chatView, cmd = m.chatView.Update(msg)
		return m, cmd
	case "enter":
		text := m.chatInput.Value()
		m.chatInput.Reset()
		return m, func() tea.Msg {
			_, err := m.ctrl.SendChatMessage(text)
			return actionDoneMsg{action: "chat", err: err}
		}
	}
	var cmd tea.Cmd
	m.chatInput, cmd = m.chatInput.Update(msg)
	return m, cmd
}

func (m *appModel) applyState(s session.State) {
	m.state = s
	m.fileCursor = clamp(m.fileCursor, 0, max(len(s.Files)-1, 0))
	if m.focus == focusFiles && !s.FileListVisible() {
		m.focus = focusJobs
	}
	m.recalcContent()
}

func (m *appModel) cycleFocus() {
	order := []focusArea{focusJobs}
	if m.state.FileListVisible() {
		order = append(order, focusFiles)
	}
	if m.state.ChatVisible() {
		order = append(order, focusChat)
	}
	for i, f := range order {
		if f == m.focus {
			m.focus = order[(i+1)%len(order)]
			return
		}
	}
	m.focus = focusJobs
}

func (m *appModel) focusCmd() tea.Cmd {
	if m.focus == focusChat {
		return m.chatInput.Focus()
	}
	return nil
}

func (m *appModel) moveCursor(delta int) {
	switch m.focus {
	case focusJobs:
		m.jobCursor = clamp(m.jobCursor+delta, 0, max(len(m.jobs)-1, 0))
	case focusFiles:
		m.fileCursor = clamp(m.fileCursor+delta, 0, max(len(m.state.Files)-1, 0))
	}
}

func (m appModel) activate() tea.Cmd {
	switch m.focus {
	case focusJobs:
		if len(m.jobs) == 0 {
			return nil
		}
		id := m.jobs[m.jobCursor].ID
		return m.call("select job", func() error { return m.ctrl.SelectJob(id) })
	case focusFiles:
		if len(m.state.Files) == 0 {
			return nil
		}
		id := m.state.Files[m.fileCursor].ID
		return m.call("select file", func() error { return m.ctrl.SelectFile(id) })
	}
	return nil
}

func (m appModel) call(action string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{action: action, err: fn()}
	}
}

func (m appModel) loadFilesCmd(locations []string) tea.Cmd {
	ctx, src := m.ctx, m.files
	return func() tea.Msg {
		files, err := resume.ListAll(ctx, src, locations)
		return filesLoadedMsg{files: files, err: err}
	}
}

func (m appModel) shareCmd() tea.Cmd {
	if m.notifier == nil || !m.state.ProfileVisible() || m.state.SelectedFile == nil {
		return nil
	}
	ctx, n := m.ctx, m.notifier
	file := *m.state.SelectedFile
	analysis := *m.state.Analysis.Analysis
	job, ok := model.FindJob(m.jobs, m.state.SelectedJobID)
	if !ok {
		job = model.JobDescription{ID: m.state.SelectedJobID}
	}
	return func() tea.Msg {
		return sharedMsg{name: analysis.Profile.Name, err: n.Notify(ctx, job, file, analysis)}
	}
}

// Run starts the full-screen session UI and blocks until the user quits or
// ctx is cancelled. notifier may be nil, which disables sharing.
func Run(ctx context.Context, ctrl *session.Controller, files resume.Source, notifier model.AnalysisNotifier) error {
	events, cancel, err := ctrl.Subscribe()
	if err != nil {
		return err
	}
	defer cancel()

	m := newAppModel(ctx, ctrl, events, files, notifier)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
