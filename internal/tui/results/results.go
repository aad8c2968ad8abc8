package results

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/joacominatel/askdb/internal/database"
	"github.com/joacominatel/askdb/internal/tui/theme"
)

const maxColWidth = 40

// Model is the query results component.
type Model struct {
	result    *database.QueryResult
	cells     [][]string
	colWidths []int

	width   int
	height  int
	focused bool

	cursorX int
	cursorY int
	scrollY int
}

// New creates a new results model.
func New() Model {
	return Model{}
}

// SetSize updates the component dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// SetFocused sets the focus state.
func (m *Model) SetFocused(f bool) {
	m.focused = f
}

// Focused returns whether the results pane has focus.
func (m Model) Focused() bool {
	return m.focused
}

// SetResult shows r and resets the cursor.
func (m *Model) SetResult(r database.QueryResult) {
	m.result = &r
	m.cells = r.StringRows()
	m.cursorX, m.cursorY, m.scrollY = 0, 0, 0
	m.calculateColumnWidths()
}

// Clear removes the current result.
func (m *Model) Clear() {
	m.result = nil
	m.cells = nil
	m.colWidths = nil
	m.cursorX, m.cursorY, m.scrollY = 0, 0, 0
}

// Result returns the displayed result, if any.
func (m Model) Result() (database.QueryResult, bool) {
	if m.result == nil {
		return database.QueryResult{}, false
	}
	return *m.result, true
}

// Cursor returns the selected row and column.
func (m Model) Cursor() (row, col int) {
	return m.cursorY, m.cursorX
}

func (m *Model) calculateColumnWidths() {
	if m.result == nil || len(m.result.Columns) == 0 {
		m.colWidths = nil
		return
	}

	m.colWidths = make([]int, len(m.result.Columns))
	for i, col := range m.result.Columns {
		m.colWidths[i] = lipgloss.Width(col)
	}
	for _, row := range m.cells {
		for i, cell := range row {
			if i < len(m.colWidths) {
				m.colWidths[i] = max(m.colWidths[i], lipgloss.Width(cell))
			}
		}
	}
	for i := range m.colWidths {
		m.colWidths[i] = min(max(m.colWidths[i], 1), maxColWidth)
	}
}

func (m Model) visibleRows() int {
	return max(1, m.height-4)
}

// Init returns the initial command (none).
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the results pane.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused || m.result == nil {
		return m, nil
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	rows := len(m.cells)
	switch key.String() {
	case "up", "k":
		m.cursorY = max(0, m.cursorY-1)
	case "down", "j":
		m.cursorY = max(0, min(rows-1, m.cursorY+1))
	case "left", "h":
		m.cursorX = max(0, m.cursorX-1)
	case "right", "l":
		m.cursorX = max(0, min(len(m.result.Columns)-1, m.cursorX+1))
	case "pgup":
		m.cursorY = max(0, m.cursorY-m.visibleRows())
	case "pgdown":
		m.cursorY = max(0, min(rows-1, m.cursorY+m.visibleRows()))
	case "home", "g":
		m.cursorY = 0
	case "end", "G":
		m.cursorY = max(0, rows-1)
	case "y":
		return m, m.copyCell()
	case "Y":
		return m, m.copyRowJSON()
	case "c":
		return m, m.copyRowCSV()
	case "t":
		return m, m.copyRowText()
	case "e":
		return m, m.exportCSVCmd()
	case "E":
		return m, m.exportJSONCmd()
	}

	if m.cursorY < m.scrollY {
		m.scrollY = m.cursorY
	}
	if m.cursorY >= m.scrollY+m.visibleRows() {
		m.scrollY = m.cursorY - m.visibleRows() + 1
	}
	return m, nil
}

// View renders the results pane.
func (m Model) View() string {
	title := theme.StyleTitle.Render("Results")

	if m.result == nil {
		return title + "\n" + theme.StyleMuted.Render("  Ask a question to see results")
	}
	if m.result.Failed() {
		return title + "\n" + theme.StyleError.Render("  "+m.result.Error)
	}

	stats := fmt.Sprintf("%d row(s) | %s", m.result.RowCount, m.result.Duration.Round(1000).String())
	header := title + "  " + theme.StyleMuted.Render(stats)

	if len(m.result.Columns) == 0 {
		return header + "\n" + theme.StyleSuccess.Render("  Query executed successfully")
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(m.renderRow(m.result.Columns, -1))
	b.WriteString("\n")
	b.WriteString(m.renderSeparator())

	visible := m.visibleRows()
	for i := m.scrollY; i < len(m.cells) && i < m.scrollY+visible; i++ {
		b.WriteString("\n")
		b.WriteString(m.renderRow(m.cells[i], i))
	}

	return b.String()
}

// renderRow renders one line of cells. row is -1 for the header.
func (m Model) renderRow(cells []string, row int) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		width := 10
		if i < len(m.colWidths) {
			width = m.colWidths[i]
		}

		display := cell
		if lipgloss.Width(display) > width {
			runes := []rune(display)
			for len(runes) > 0 && lipgloss.Width(string(runes)) >= width {
				runes = runes[:len(runes)-1]
			}
			display = string(runes) + "…"
		}
		if pad := width - lipgloss.Width(display); pad > 0 {
			display += strings.Repeat(" ", pad)
		}

		switch {
		case row < 0:
			parts[i] = lipgloss.NewStyle().Bold(true).Foreground(theme.ColorPrimary).Render(display)
		case m.focused && row == m.cursorY && i == m.cursorX:
			parts[i] = theme.StyleSelected.Reverse(true).Render(display)
		case cell == "NULL":
			parts[i] = theme.StyleMuted.Render(display)
		default:
			parts[i] = display
		}
	}
	return "  " + strings.Join(parts, " │ ")
}

func (m Model) renderSeparator() string {
	parts := make([]string, len(m.colWidths))
	for i, w := range m.colWidths {
		parts[i] = strings.Repeat("─", w)
	}
	return "  " + lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(strings.Join(parts, "─┼─"))
}
