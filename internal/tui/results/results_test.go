package results

import (
	"os"
	"testing"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joacominatel/askdb/internal/database"
)

func sample() database.QueryResult {
	return database.QueryResult{
		Columns:  []string{"id", "name"},
		Rows:     [][]any{{int64(1), []byte("ada")}, {int64(2), nil}},
		RowCount: 2,
	}
}

func press(m Model, key string) (Model, tea.Cmd) {
	return m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})
}

func TestRowToJSON(t *testing.T) {
	res := sample()
	assert.Equal(t, `{"id": 1, "name": "ada"}`, rowToJSON(res.Columns, res.Rows[0]))
	assert.Equal(t, `{"id": 2, "name": null}`, rowToJSON(res.Columns, res.Rows[1]))
	assert.Equal(t, `{"id": 3, "name": null}`, rowToJSON(res.Columns, []any{int64(3)}))
}

func TestCursorMovement(t *testing.T) {
	m := New()
	m.SetSize(80, 20)
	m.SetFocused(true)
	m.SetResult(sample())

	m, _ = press(m, "j")
	m, _ = press(m, "j")
	m, _ = press(m, "l")
	m, _ = press(m, "l")
	row, col := m.Cursor()
	assert.Equal(t, 1, row)
	assert.Equal(t, 1, col)

	m, _ = press(m, "g")
	row, _ = m.Cursor()
	assert.Equal(t, 0, row)
}

func TestView(t *testing.T) {
	m := New()
	m.SetSize(80, 20)
	assert.Contains(t, m.View(), "Ask a question")

	m.SetResult(sample())
	out := m.View()
	assert.Contains(t, out, "ada")
	assert.Contains(t, out, "NULL")
	assert.Contains(t, out, "2 row(s)")

	m.SetResult(database.QueryResult{Error: "Error Executing Query: boom"})
	assert.Contains(t, m.View(), "Error Executing Query: boom")
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	exportDir = dir
	t.Cleanup(func() { exportDir = "" })

	m := New()
	m.SetFocused(true)
	m.SetResult(sample())

	_, cmd := press(m, "e")
	require.NotNil(t, cmd)
	msg, ok := cmd().(StatusNotifyMsg)
	require.True(t, ok)
	assert.False(t, msg.Err)
	assert.Contains(t, msg.Message, "Exported 2 rows")

	_, cmd = press(m, "E")
	require.NotNil(t, cmd)
	msg = cmd().(StatusNotifyMsg)
	assert.False(t, msg.Err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var csvData, jsonData []byte
	for _, e := range entries {
		data, err := os.ReadFile(dir + "/" + e.Name())
		require.NoError(t, err)
		assert.Contains(t, e.Name(), "askdb_export_")
		if e.Name()[len(e.Name())-3:] == "csv" {
			csvData = data
		} else {
			jsonData = data
		}
	}
	assert.Equal(t, "id,name\n1,ada\n2,NULL\n", string(csvData))
	assert.JSONEq(t, `[{"id": 1, "name": "ada"}, {"id": 2, "name": null}]`, string(jsonData))
}

func TestExport_FailedResult(t *testing.T) {
	m := New()
	m.SetFocused(true)
	m.SetResult(database.QueryResult{Error: "Error Executing Query: boom"})

	_, cmd := press(m, "e")
	assert.Nil(t, cmd)
}

func TestWriteCSV_ReportsWriteFailure(t *testing.T) {
	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("/dev/full not available")
	}
	assert.Error(t, writeCSV("/dev/full", sample()))
}

func TestTruncateStatus(t *testing.T) {
	assert.Equal(t, "short", truncateStatus("short", 40))

	got := truncateStatus("naïve café résumé über straße", 12)
	assert.True(t, utf8.ValidString(got), got)
	assert.Equal(t, "naïve caf...", got)
}
