package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/screener/internal/model"
)

var (
	pickerTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Padding(1, 0, 1, 2)

	pickerItemStyle = lipgloss.NewStyle().
			Padding(0, 0, 0, 4)

	pickerSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true).
				Padding(0, 0, 0, 2)

	pickerHintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Padding(1, 0, 0, 2)
)

type pickerModel struct {
	jobs   []model.JobDescription
	cursor int
	chosen int // -1 = no choice yet, -2 = quit
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.chosen = -2
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.jobs)-1 {
				m.cursor++
			}
		case "enter":
			m.chosen = m.cursor
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m pickerModel) View() string {
	s := pickerTitleStyle.Render("Select a job description")
	s += "\n"

	for i, j := range m.jobs {
		label := j.Title
		if j.Company != "" {
			label = fmt.Sprintf("%s (%s)", j.Title, j.Company)
		}
		if i == m.cursor {
			s += pickerSelectedStyle.Render("> "+label) + "\n"
		} else {
			s += pickerItemStyle.Render(label) + "\n"
		}
	}

	s += pickerHintStyle.Render("↑/↓/j/k navigate  enter select  q quit")
	return s
}

// RunJobPicker shows an inline job selector.
// Returns the chosen job, or ok=false if the user quit.
func RunJobPicker(jobs []model.JobDescription) (job model.JobDescription, ok bool, err error) {
	if len(jobs) == 0 {
		return model.JobDescription{}, false, nil
	}
	m := pickerModel{
		jobs:   jobs,
		chosen: -1,
	}

	p := tea.NewProgram(m)
	result, err := p.Run()
	if err != nil {
		return model.JobDescription{}, false, err
	}

	final := result.(pickerModel)
	if final.chosen < 0 {
		return model.JobDescription{}, false, nil
	}
	return jobs[final.chosen], true, nil
}
