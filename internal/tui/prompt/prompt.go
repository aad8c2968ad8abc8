// Package prompt holds the request pane where the user types what they want
// to ask the database.
package prompt

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/joacominatel/askdb/internal/schema"
	"github.com/joacominatel/askdb/internal/tui/theme"
)

// SubmitMsg is sent when the user submits a request.
type SubmitMsg struct {
	Request string
}

// Model is the natural-language request component.
type Model struct {
	textarea textarea.Model
	width    int
	height   int
	focused  bool

	history []string
	histPos int

	words       []string
	completing  bool
	completions []string
	compIndex   int
}

// New creates a new prompt model.
func New() Model {
	ta := textarea.New()
	ta.Placeholder = "Ask your database, e.g. how many orders were placed last week?"
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.Prompt = "│ "
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle()
	ta.BlurredStyle.Base = lipgloss.NewStyle()
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(theme.ColorMuted)
	ta.BlurredStyle.Placeholder = lipgloss.NewStyle().Foreground(theme.ColorMuted)
	ta.FocusedStyle.Prompt = lipgloss.NewStyle().Foreground(theme.ColorPrimary)
	ta.BlurredStyle.Prompt = lipgloss.NewStyle().Foreground(theme.ColorBorder)

	return Model{textarea: ta}
}

// SetSize updates the component dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.textarea.SetWidth(max(1, w-2))
	m.textarea.SetHeight(max(1, h-2))
}

// SetFocused sets the focus state.
func (m *Model) SetFocused(f bool) {
	m.focused = f
	if f {
		m.textarea.Focus()
	} else {
		m.textarea.Blur()
	}
}

// Focused returns whether the prompt has focus.
func (m Model) Focused() bool {
	return m.focused
}

// Value returns the current request text.
func (m Model) Value() string {
	return m.textarea.Value()
}

// SetValue replaces the request text.
func (m *Model) SetValue(s string) {
	m.textarea.SetValue(s)
}

// Completing reports whether tab completion is cycling candidates.
func (m Model) Completing() bool {
	return m.completing
}

// SetSchema feeds table and column names of desc to tab completion.
func (m *Model) SetSchema(desc *schema.Description) {
	m.words = nil
	if desc == nil {
		return
	}
	seen := make(map[string]bool)
	for _, t := range desc.Tables {
		if !seen[t.Name] {
			seen[t.Name] = true
			m.words = append(m.words, t.Name)
		}
		for _, c := range t.Columns {
			if !seen[c.Name] {
				seen[c.Name] = true
				m.words = append(m.words, c.Name)
			}
		}
	}
}

// Clear empties the prompt.
func (m *Model) Clear() {
	m.textarea.Reset()
	m.cancelCompletion()
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles messages for the prompt.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		key := msg.String()

		switch key {
		case "ctrl+e", "f5":
			return m, m.submit()

		case "ctrl+k":
			m.Clear()
			return m, nil

		case "ctrl+p":
			m.recall(-1)
			return m, nil

		case "ctrl+n":
			m.recall(1)
			return m, nil

		case "tab":
			if m.tryCompletion() {
				return m, nil
			}

		case "esc":
			if m.completing {
				m.cancelCompletion()
				return m, nil
			}
		}

		if m.completing && key != "tab" {
			m.cancelCompletion()
		}
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m *Model) submit() tea.Cmd {
	request := strings.TrimSpace(m.textarea.Value())
	if request == "" {
		return nil
	}
	m.cancelCompletion()
	if n := len(m.history); n == 0 || m.history[n-1] != request {
		m.history = append(m.history, request)
	}
	m.histPos = len(m.history)
	return func() tea.Msg {
		return SubmitMsg{Request: request}
	}
}

// recall walks the submitted requests. Moving past the newest clears the
// prompt.
func (m *Model) recall(delta int) {
	if len(m.history) == 0 {
		return
	}
	m.histPos = min(max(m.histPos+delta, 0), len(m.history))
	if m.histPos == len(m.history) {
		m.textarea.Reset()
		return
	}
	m.textarea.SetValue(m.history[m.histPos])
}

// tryCompletion completes the word before the cursor from schema names and
// reports whether it did. Repeated tabs cycle the candidates.
func (m *Model) tryCompletion() bool {
	if len(m.words) == 0 {
		return false
	}

	if m.completing && len(m.completions) > 0 {
		m.compIndex = (m.compIndex + 1) % len(m.completions)
		m.applyCompletion()
		return true
	}

	partial := lastWord(m.textarea.Value())
	if partial == "" {
		return false
	}

	lower := strings.ToLower(partial)
	var matches []string
	for _, w := range m.words {
		if strings.HasPrefix(strings.ToLower(w), lower) && w != partial {
			matches = append(matches, w)
		}
	}
	if len(matches) == 0 {
		return false
	}

	m.completing = true
	m.completions = matches
	m.compIndex = 0
	m.applyCompletion()
	return true
}

func (m *Model) applyCompletion() {
	val := m.textarea.Value()
	base := strings.TrimSuffix(val, lastWord(val))
	m.textarea.SetValue(base + m.completions[m.compIndex])
}

func (m *Model) cancelCompletion() {
	m.completing = false
	m.completions = nil
	m.compIndex = 0
}

// lastWord returns the trailing identifier of s, or "" when s ends in
// whitespace or punctuation.
func lastWord(s string) string {
	i := len(s)
	for i > 0 && isIdentChar(s[i-1]) {
		i--
	}
	return s[i:]
}

func isIdentChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') || c == '_'
}

// View renders the prompt.
func (m Model) View() string {
	title := theme.StyleTitle.Render("Ask")

	var hint string
	if m.completing && len(m.completions) > 1 {
		parts := make([]string, 0, len(m.completions))
		for i, c := range m.completions {
			if i == m.compIndex {
				parts = append(parts, theme.StyleSelected.Render(c))
			} else {
				parts = append(parts, theme.StyleMuted.Render(c))
			}
		}
		hint = "\n" + lipgloss.NewStyle().Padding(0, 1).Render(
			theme.StyleMuted.Render("Tab: ")+strings.Join(parts, " │ "),
		)
	}

	return title + "\n" + m.textarea.View() + hint
}
