package results

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/joacominatel/askdb/internal/database"
)

// exportDir is where exports are written. Empty means the working directory.
var exportDir = ""

func notify(msg string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return StatusNotifyMsg{Message: msg, Err: isErr}
	}
}

func (m Model) cellAt(row, col int) (string, bool) {
	if row < 0 || row >= len(m.cells) {
		return "", false
	}
	r := m.cells[row]
	if col < 0 || col >= len(r) {
		return "", false
	}
	return r[col], true
}

func (m Model) currentRow() ([]any, bool) {
	if m.result == nil || m.cursorY < 0 || m.cursorY >= len(m.result.Rows) {
		return nil, false
	}
	return m.result.Rows[m.cursorY], true
}

func copyText(text, done string) tea.Cmd {
	if err := clipboard.WriteAll(text); err != nil {
		return notify("Copy failed: "+err.Error(), true)
	}
	return notify(done, false)
}

func (m Model) copyCell() tea.Cmd {
	val, ok := m.cellAt(m.cursorY, m.cursorX)
	if !ok {
		return notify("Nothing to copy", false)
	}
	return copyText(val, "Copied: "+truncateStatus(val, 40))
}

func (m Model) copyRowJSON() tea.Cmd {
	row, ok := m.currentRow()
	if !ok {
		return notify("No row to copy", false)
	}
	return copyText(rowToJSON(m.result.Columns, row), "Copied row as JSON")
}

func (m Model) copyRowCSV() tea.Cmd {
	if _, ok := m.currentRow(); !ok {
		return notify("No row to copy", false)
	}
	var b strings.Builder
	w := csv.NewWriter(&b)
	_ = w.Write(m.result.Columns)
	_ = w.Write(m.cells[m.cursorY])
	w.Flush()
	return copyText(b.String(), "Copied row as CSV")
}

func (m Model) copyRowText() tea.Cmd {
	if _, ok := m.currentRow(); !ok {
		return notify("No row to copy", false)
	}
	return copyText(strings.Join(m.cells[m.cursorY], "\t"), "Copied row as text")
}

func exportName(ext string) string {
	return filepath.Join(exportDir, fmt.Sprintf("askdb_export_%s.%s", time.Now().Format("20060102_150405"), ext))
}

func (m Model) exportJSONCmd() tea.Cmd {
	if m.result == nil || m.result.Failed() {
		return nil
	}
	result := *m.result
	return func() tea.Msg {
		filename := exportName("json")
		if err := writeJSON(filename, result); err != nil {
			return StatusNotifyMsg{Message: "Export failed: " + err.Error(), Err: true}
		}
		return StatusNotifyMsg{Message: fmt.Sprintf("Exported %d rows to %s", len(result.Rows), filename)}
	}
}

func (m Model) exportCSVCmd() tea.Cmd {
	if m.result == nil || m.result.Failed() {
		return nil
	}
	result := *m.result
	return func() tea.Msg {
		filename := exportName("csv")
		if err := writeCSV(filename, result); err != nil {
			return StatusNotifyMsg{Message: "Export failed: " + err.Error(), Err: true}
		}
		return StatusNotifyMsg{Message: fmt.Sprintf("Exported %d rows to %s", len(result.Rows), filename)}
	}
}

func writeJSON(filename string, result database.QueryResult) error {
	var b strings.Builder
	b.WriteString("[\n")
	for i, row := range result.Rows {
		if i > 0 {
			b.WriteString(",\n")
		}
		b.WriteString("  ")
		b.WriteString(rowToJSON(result.Columns, row))
	}
	b.WriteString("\n]\n")
	return os.WriteFile(filename, []byte(b.String()), 0o644)
}

func writeCSV(filename string, result database.QueryResult) (err error) {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(result.Columns); err != nil {
		return err
	}
	return w.WriteAll(result.StringRows())
}

// rowToJSON keeps column order, unlike marshaling a map.
func rowToJSON(columns []string, row []any) string {
	var b strings.Builder
	b.WriteString("{")
	for i, col := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		key, _ := json.Marshal(col)
		b.Write(key)
		b.WriteString(": ")

		var v any
		if i < len(row) {
			v = database.NormalizeValue(row[i])
		}
		val, err := json.Marshal(v)
		if err != nil {
			val, _ = json.Marshal(database.FormatValue(v))
		}
		b.Write(val)
	}
	b.WriteString("}")
	return b.String()
}

// truncateStatus cuts s to maxLen display cells without splitting a rune.
func truncateStatus(s string, maxLen int) string {
	return ansi.Truncate(s, maxLen, "...")
}
