package statusbar

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/joacominatel/askdb/internal/tui/theme"
)

// Level selects the color of the status message.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

const hints = "Ctrl+E: Ask │ Ctrl+R: Refresh │ Tab: Pane │ ?: Help │ q: Quit"

// Model is the status bar component.
type Model struct {
	width      int
	connected  bool
	dialect    string
	database   string
	activePane string
	message    string
	level      Level
}

// New creates a new status bar model.
func New() Model {
	return Model{activePane: "explorer"}
}

// SetWidth updates the component width.
func (m *Model) SetWidth(w int) {
	m.width = w
}

// SetConnected updates the connection status display.
func (m *Model) SetConnected(connected bool, dialect string) {
	m.connected = connected
	m.dialect = dialect
	if !connected {
		m.database = ""
	}
}

// SetDatabase shows the selected database.
func (m *Model) SetDatabase(name string) {
	m.database = name
}

// SetActivePane updates the displayed active pane name.
func (m *Model) SetActivePane(pane string) {
	m.activePane = pane
}

// SetMessage sets an informational message. An empty message shows the hints.
func (m *Model) SetMessage(msg string) {
	m.SetLeveled(msg, LevelInfo)
}

// SetLeveled sets a message with a level.
func (m *Model) SetLeveled(msg string, level Level) {
	m.message = msg
	m.level = level
}

// Message returns the current message.
func (m Model) Message() string {
	return m.message
}

// View renders the status bar.
func (m Model) View() string {
	style := theme.StyleStatusBar.Width(m.width)

	var left string
	if m.connected {
		left = lipgloss.NewStyle().Foreground(theme.ColorSuccess).Render("●") + " " + m.dialect
		if m.database != "" {
			left += " › " + m.database
		}
	} else {
		left = lipgloss.NewStyle().Foreground(theme.ColorError).Render("●") + " disconnected"
	}
	left += theme.StyleMuted.Render(" [" + m.activePane + "]")

	right := hints
	if m.message != "" {
		right = m.styledMessage()
	}

	padding := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if padding < 1 {
		padding = 1
	}

	return style.Render(left + strings.Repeat(" ", padding) + right)
}

func (m Model) styledMessage() string {
	switch m.level {
	case LevelSuccess:
		return lipgloss.NewStyle().Foreground(theme.ColorSuccess).Render(m.message)
	case LevelWarning:
		return lipgloss.NewStyle().Foreground(theme.ColorWarning).Render(m.message)
	case LevelError:
		return lipgloss.NewStyle().Foreground(theme.ColorError).Render(m.message)
	default:
		return m.message
	}
}
