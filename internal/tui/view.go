package tui

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/screener/internal/model"
	"github.com/amishk599/screener/internal/session"
	"github.com/amishk599/screener/internal/timeline"
)

var (
	activeBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("39")) // bright blue

	inactiveBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240")) // dim gray

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	itemStyle = lipgloss.NewStyle()

	selectedItemStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("24"))

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Width(12)

	avatarStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	userMsgStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	assistantMsgStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("42"))
)

// Lines of the right column that are not chat history: profile card,
// analysis section, chat header, input and borders.
const rightChrome = 18

func (m *appModel) recalcLayout() {
	leftWidth := clamp(m.width/3, 28, 48)
	rightWidth := max(m.width-leftWidth-5, 30)
	chatHeight := max(m.height-rightChrome, 3)

	if !m.ready {
		m.chatView = viewport.New(rightWidth-2, chatHeight)
		m.ready = true
	} else {
		m.chatView.Width = rightWidth - 2
		m.chatView.Height = chatHeight
	}
	m.chatInput.Width = rightWidth - 6
	m.prompt.Width = leftWidth - 10
	barWidth := clamp(rightWidth-detailLabelStyle.GetWidth()-10, 10, 40)
	m.selectionBar.Width = barWidth
	m.riskBar.Width = barWidth
	m.recalcContent()
}

func (m *appModel) recalcContent() {
	if !m.ready {
		return
	}
	m.chatView.SetContent(renderTranscript(m.state.Transcript, m.chatView.Width))
	m.chatView.GotoBottom()
}

func (m appModel) leftWidth() int {
	return clamp(m.width/3, 28, 48)
}

func (m appModel) rightWidth() int {
	return max(m.width-m.leftWidth()-5, 30)
}

func (m appModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	left := m.renderLeft()
	right := m.renderRight()
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)

	return body + "\n" + m.renderStatusBar()
}

func (m appModel) renderLeft() string {
	var b strings.Builder
	b.WriteString(timeline.Render(RevealSteps(m.state)))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render(fmt.Sprintf("Jobs (%d)", len(m.jobs))))
	b.WriteByte('\n')
	b.WriteString(renderJobs(m.jobs, m.jobCursor, m.state.SelectedJobID, m.focus == focusJobs))

	if m.state.UploadVisible() {
		b.WriteString("\n\n")
		b.WriteString(sectionStyle.Render("Resumes"))
		b.WriteByte('\n')
		switch {
		case m.focus == focusPrompt:
			b.WriteString(m.prompt.View())
		case m.loadingFiles:
			b.WriteString(m.spinner.View() + " loading resumes...")
		default:
			b.WriteString(subtleStyle.Render("u add resumes"))
		}
		if m.state.FileListVisible() {
			b.WriteByte('\n')
			b.WriteString(renderFiles(m.state, m.fileCursor, m.focus == focusFiles))
		}
	}

	border := inactiveBorderStyle
	if m.focus == focusJobs || m.focus == focusFiles || m.focus == focusPrompt {
		border = activeBorderStyle
	}
	return border.Width(m.leftWidth()).Render(b.String())
}

func (m appModel) renderRight() string {
	width := m.rightWidth()
	if !m.state.AnalysisVisible() {
		hint := "Select a job, add resumes and pick one to see the analysis."
		return inactiveBorderStyle.Width(width).Render(subtleStyle.Render(wordWrap(hint, width-2)))
	}

	var b strings.Builder
	if m.state.ProfileVisible() {
		b.WriteString(renderProfile(m.state.Analysis.Analysis.Profile))
		b.WriteString("\n\n")
	}
	b.WriteString(m.renderAnalysis(width - 2))
	b.WriteString("\n\n")

	chatHeader := "Chat"
	if m.state.PendingReplies > 0 {
		chatHeader += "  " + m.spinner.View() + subtleStyle.Render(" assistant is typing")
	}
	b.WriteString(sectionStyle.Render(chatHeader))
	b.WriteByte('\n')
	b.WriteString(m.chatView.View())
	b.WriteByte('\n')
	if m.focus == focusChat {
		b.WriteString(m.chatInput.View())
	} else {
		b.WriteString(subtleStyle.Render("c chat"))
	}

	border := inactiveBorderStyle
	if m.focus == focusChat {
		border = activeBorderStyle
	}
	return border.Width(width).Render(b.String())
}

func (m appModel) renderAnalysis(width int) string {
	a := m.state.Analysis
	name := ""
	if m.state.SelectedFile != nil {
		name = m.state.SelectedFile.Name
	}

	var b strings.Builder
	b.WriteString(sectionStyle.Render("Analysis"))
	b.WriteByte('\n')
	switch a.Status {
	case session.StatusPending:
		b.WriteString(m.spinner.View() + " analyzing " + name + "...")
	case session.StatusFailure:
		b.WriteString(errorStyle.Render(wordWrap(failureText(a.Err), width)))
		b.WriteByte('\n')
		b.WriteString(subtleStyle.Render("r retry"))
	case session.StatusSuccess:
		res := a.Analysis
		b.WriteString(detailLabelStyle.Render("Selection") + m.selectionBar.ViewAs(float64(res.SelectionScore)/100) + fmt.Sprintf(" %d%%", res.SelectionScore))
		b.WriteByte('\n')
		b.WriteString(detailLabelStyle.Render("Risk") + m.riskBar.ViewAs(float64(res.RiskScore)/100) + fmt.Sprintf(" %d%%", res.RiskScore))
		if res.Feedback != "" {
			b.WriteString("\n\n")
			b.WriteString(wordWrap(res.Feedback, width))
		}
	}
	return b.String()
}

func failureText(err error) string {
	switch {
	case err == nil:
		return "analysis failed"
	case errors.Is(err, model.ErrUnsupportedFile):
		return "Unsupported file: " + err.Error()
	default:
		return "Analysis unavailable: " + err.Error()
	}
}

func (m appModel) renderStatusBar() string {
	text := " ↑/↓ move  enter select  tab focus  u upload  c chat  q quit"
	if m.state.ProfileVisible() && m.notifier != nil {
		text = " ↑/↓ move  enter select  tab focus  u upload  c chat  s share  q quit"
	}
	status := m.status
	if status == "" {
		status = chatStatus(m.state)
	}
	if status != "" {
		text = " " + status + "  |" + text
	}
	return statusBarStyle.Width(m.width).Render(text)
}

// chatStatus summarizes the newest transcript entry for the status bar.
func chatStatus(s session.State) string {
	last, ok := s.LastMessage()
	switch {
	case !ok:
		return ""
	case last.Role == model.RoleUser && s.PendingReplies > 0:
		return "waiting for reply"
	case last.Failed:
		return "last chat reply failed"
	}
	return ""
}

func renderJobs(jobs []model.JobDescription, cursor int, selectedID string, isActive bool) string {
	if len(jobs) == 0 {
		return subtleStyle.Render("  (no jobs)")
	}

	var b strings.Builder
	for i, j := range jobs {
		prefix := "  "
		if j.ID == selectedID {
			prefix = "✓ "
		}
		st := itemStyle
		if isActive && i == cursor {
			st = selectedItemStyle
			prefix = "> "
		}
		label := j.Title
		if j.Company != "" {
			label += subtleStyle.Render(" · " + j.Company)
		}
		b.WriteString(prefix + st.Render(label))
		if i < len(jobs)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func renderFiles(s session.State, cursor int, isActive bool) string {
	var b strings.Builder
	for i, f := range s.Files {
		prefix := "  "
		if s.IsSelected(f.ID) {
			prefix = "● "
		}
		st := itemStyle
		if isActive && i == cursor {
			st = selectedItemStyle
			prefix = "> "
		}
		b.WriteString(prefix + st.Render(f.Name))
		if err := s.FileError(f.ID); err != nil {
			b.WriteByte('\n')
			b.WriteString("    " + errorStyle.Render("unsupported file"))
		}
		if i < len(s.Files)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func renderProfile(p model.CandidateProfile) string {
	avatar := avatarStyle.Render(p.Initials())
	info := []string{sectionStyle.Render(p.Name)}
	role := p.Designation
	if p.Company != "" {
		role += " at " + p.Company
	}
	if role != "" {
		info = append(info, role)
	}
	info = append(info, subtleStyle.Render(fmt.Sprintf("%d years experience", p.YearsExperience)))
	return lipgloss.JoinHorizontal(lipgloss.Top, avatar, " ", strings.Join(info, "\n"))
}

func renderTranscript(msgs []model.ChatMessage, width int) string {
	if len(msgs) == 0 {
		return subtleStyle.Render("No messages yet.")
	}
	var b strings.Builder
	for i, msg := range msgs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch {
		case msg.Role == model.RoleUser:
			b.WriteString(userMsgStyle.Render("You"))
		case msg.Failed:
			b.WriteString(errorStyle.Render("Assistant (error)"))
		default:
			b.WriteString(assistantMsgStyle.Render("Assistant"))
		}
		b.WriteByte('\n')
		body := wordWrap(msg.Content, max(width, 10))
		if msg.Failed {
			body = errorStyle.Render(body)
		}
		b.WriteString(body)
	}
	return b.String()
}

func wordWrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) <= width {
			line += " " + w
		} else {
			lines = append(lines, line)
			line = w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// openURL opens url in the default system browser, fire-and-forget.
func openURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}
	_ = cmd.Start()
}
