package results

import (
	"errors"
	"os"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joacominatel/theseus/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResults() Model {
	m := New()
	m.SetFocused(true)
	m.SetSize(60, 10)
	m.SetResult(&database.QueryResult{
		Columns:  []string{"id", "name", "note"},
		Rows:     [][]string{{"1", "ada", "NULL"}, {"2", "grace", "x"}},
		RowCount: 2,
	}, "SELECT * FROM main.people")
	return m
}

func TestView(t *testing.T) {
	m := newResults()
	view := m.View()
	assert.Contains(t, view, "2 row(s)")
	assert.Contains(t, view, "grace")

	m.SetError(errors.New("Parser Error: syntax error"))
	assert.Contains(t, m.View(), "Parser Error")

	m.SetLoading(true)
	assert.Contains(t, m.View(), "Executing query")
}

func TestScrolling(t *testing.T) {
	m := newResults()
	// One row and one column visible at a time.
	m.SetSize(12, 5)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.cursorY)
	assert.Equal(t, 1, m.scrollY)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 1, m.cursorX)
	assert.Equal(t, 1, m.colOffset)
	assert.Equal(t, []int{1}, m.visibleColumns())
	assert.NotContains(t, m.View(), " id ")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 2, m.cursorX)
	assert.Equal(t, 2, m.colOffset)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, 1, m.colOffset)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, m.scrollY)
}

func TestVisibleColumnsFitWidth(t *testing.T) {
	m := New()
	m.SetSize(20, 10)
	m.SetResult(&database.QueryResult{Columns: []string{"aaaaaaaaaa", "bbbbbbbbbb", "c"}}, "")

	assert.Equal(t, []int{0}, m.visibleColumns())
}

func TestExport(t *testing.T) {
	t.Chdir(t.TempDir())
	m := newResults()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	require.NotNil(t, cmd)

	msg, ok := cmd().(ExportedMsg)
	require.True(t, ok)
	require.NoError(t, msg.Err)
	assert.Equal(t, 2, msg.Rows)

	data, err := os.ReadFile(msg.Path)
	require.NoError(t, err)
	assert.Equal(t, "id,name,note\n1,ada,NULL\n2,grace,x\n", string(data))
}

func stubClipboard(t *testing.T) *string {
	t.Helper()
	var got string
	orig := writeClipboard
	writeClipboard = func(text string) error {
		got = text
		return nil
	}
	t.Cleanup(func() { writeClipboard = orig })
	return &got
}

func press(m Model, key string) (Model, tea.Msg) {
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})
	if cmd == nil {
		return m, nil
	}
	return m, cmd()
}

func TestCopyCell(t *testing.T) {
	clip := stubClipboard(t)
	m := newResults()
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})

	_, msg := press(m, "c")
	assert.Equal(t, StatusNotifyMsg{Message: "Copied: grace"}, msg)
	assert.Equal(t, "grace", *clip)
}

func TestCopyRow(t *testing.T) {
	clip := stubClipboard(t)
	m := newResults()

	_, msg := press(m, "y")
	assert.Equal(t, StatusNotifyMsg{Message: "Copied row as JSON"}, msg)
	assert.Equal(t, `{"id": "1", "name": "ada", "note": null}`, *clip)

	_, msg = press(m, "Y")
	assert.Equal(t, StatusNotifyMsg{Message: "Copied row as CSV"}, msg)
	assert.Equal(t, "id,name,note\n1,ada,NULL\n", *clip)
}

func TestCopy_Failure(t *testing.T) {
	orig := writeClipboard
	writeClipboard = func(string) error { return errors.New("no clipboard utility") }
	t.Cleanup(func() { writeClipboard = orig })

	_, msg := press(newResults(), "c")
	assert.Equal(t, StatusNotifyMsg{Message: "Copy failed: no clipboard utility"}, msg)
}

func TestCopy_EmptyResult(t *testing.T) {
	stubClipboard(t)
	m := New()
	m.SetFocused(true)
	m.SetResult(&database.QueryResult{Columns: []string{"id"}}, "SELECT id FROM t")

	_, msg := press(m, "c")
	assert.Equal(t, StatusNotifyMsg{Message: "Nothing to copy"}, msg)
	_, msg = press(m, "y")
	assert.Equal(t, StatusNotifyMsg{Message: "No row to copy"}, msg)
}

func TestFilterByValue(t *testing.T) {
	m := newResults()
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})

	_, msg := press(m, "f")
	assert.Equal(t, SetEditorQueryMsg{Query: "SELECT * FROM main.people WHERE name = 'ada'"}, msg)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	_, msg = press(m, "f")
	assert.Equal(t, SetEditorQueryMsg{Query: "SELECT * FROM main.people WHERE note IS NULL"}, msg)

	m.SetResult(&database.QueryResult{
		Columns: []string{"name"},
		Rows:    [][]string{{"o'brien"}},
	}, "select name from people;")
	_, msg = press(m, "f")
	assert.Equal(t, SetEditorQueryMsg{Query: "SELECT * FROM people WHERE name = 'o''brien'"}, msg)

	m.SetResult(&database.QueryResult{Columns: []string{"x"}, Rows: [][]string{{"1"}}}, "SELECT 1 AS x")
	_, msg = press(m, "f")
	assert.Equal(t, StatusNotifyMsg{Message: "Cannot filter: no table for this result"}, msg)
}

func TestRowToJSON(t *testing.T) {
	assert.Equal(t, `{"a": "x\"y", "b": null}`, rowToJSON([]string{"a", "b"}, []string{`x"y`}))
}
