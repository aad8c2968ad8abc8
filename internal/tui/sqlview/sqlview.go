// Package sqlview shows the SQL generated for the last request and the
// progress of the request in flight.
package sqlview

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/joacominatel/askdb/internal/tui/theme"
)

// Phase is the stage of the request in flight.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseGenerating
	PhaseRunning
	PhaseListening
)

func (p Phase) String() string {
	switch p {
	case PhaseGenerating:
		return "Generating SQL query..."
	case PhaseRunning:
		return "Running SQL query..."
	case PhaseListening:
		return "Listening..."
	default:
		return ""
	}
}

// Model is the generated SQL pane.
type Model struct {
	spinner spinner.Model
	phase   Phase
	request string
	query   string
	width   int
	height  int
}

// New creates a new SQL pane.
func New() Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(theme.ColorPrimary)
	return Model{spinner: s}
}

// SetSize updates the component dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// Start enters phase p and returns the spinner tick to schedule.
func (m *Model) Start(p Phase) tea.Cmd {
	idle := m.phase == PhaseIdle
	m.phase = p
	if idle {
		return m.spinner.Tick
	}
	return nil
}

// Stop returns to idle.
func (m *Model) Stop() {
	m.phase = PhaseIdle
}

// Busy reports whether a request is in flight.
func (m Model) Busy() bool {
	return m.phase != PhaseIdle
}

// Phase returns the current phase.
func (m Model) Phase() Phase {
	return m.phase
}

// SetQuery records the request and the SQL generated for it.
func (m *Model) SetQuery(request, query string) {
	m.request = request
	m.query = query
}

// Query returns the last generated SQL.
func (m Model) Query() string {
	return m.query
}

// Request returns the request the last SQL was generated for.
func (m Model) Request() string {
	return m.request
}

// Update advances the spinner while busy.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if _, ok := msg.(spinner.TickMsg); !ok || !m.Busy() {
		return m, nil
	}
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

// View renders the pane.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(theme.StyleTitle.Render("SQL"))
	if m.Busy() {
		b.WriteString(" " + m.spinner.View() + theme.StyleMuted.Render(m.phase.String()))
	}
	b.WriteString("\n")

	if m.query == "" {
		b.WriteString(theme.StyleMuted.Render("  Press Ctrl+E to generate a query"))
		return b.String()
	}

	body := lipgloss.NewStyle().
		Foreground(theme.ColorHighlight).
		Padding(0, 1).
		Width(max(1, m.width-2)).
		MaxHeight(max(1, m.height-2)).
		Render(m.query)
	b.WriteString(body)
	return b.String()
}
