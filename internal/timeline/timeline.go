// Package timeline renders an ordered list of progress steps.
package timeline

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// StepStatus is the progress of one step.
type StepStatus int

const (
	StatusPending StepStatus = iota
	StatusActive
	StatusDone
)

func (s StepStatus) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusDone:
		return "done"
	default:
		return "pending"
	}
}

// Step is one labelled entry of the timeline.
type Step struct {
	Label  string
	Status StepStatus
}

const (
	markDone    = "✓"
	markActive  = "●"
	markPending = "○"
	connector   = "│"
)

var (
	doneMarkStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	activeMarkStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	pendingMarkStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	connectorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	doneLabelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	activeLabelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	pendingLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// FixedSteps returns the labels as a fully completed timeline.
func FixedSteps(labels ...string) []Step {
	steps := make([]Step, len(labels))
	for i, l := range labels {
		steps[i] = Step{Label: l, Status: StatusDone}
	}
	return steps
}

// Render draws one line per step with a connector line between consecutive
// steps and none after the last. An empty list renders as "".
func Render(steps []Step) string {
	var b strings.Builder
	for i, s := range steps {
		b.WriteString(mark(s.Status))
		b.WriteString(" ")
		b.WriteString(label(s))
		if i < len(steps)-1 {
			b.WriteString("\n")
			b.WriteString(connectorStyle.Render(connector))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func mark(st StepStatus) string {
	switch st {
	case StatusDone:
		return doneMarkStyle.Render(markDone)
	case StatusActive:
		return activeMarkStyle.Render(markActive)
	default:
		return pendingMarkStyle.Render(markPending)
	}
}

func label(s Step) string {
	switch s.Status {
	case StatusDone:
		return doneLabelStyle.Render(s.Label)
	case StatusActive:
		return activeLabelStyle.Render(s.Label)
	default:
		return pendingLabelStyle.Render(s.Label)
	}
}
