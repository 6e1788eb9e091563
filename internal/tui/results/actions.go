package results

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/joacominatel/theseus/internal/app"
)

// StatusNotifyMsg carries a message for the status bar.
type StatusNotifyMsg struct {
	Message string
}

// SetEditorQueryMsg asks the app to put Query in the editor for review.
type SetEditorQueryMsg struct {
	Query string
}

// writeClipboard is replaced in tests.
var writeClipboard = clipboard.WriteAll

func (m Model) selectedRow() ([]string, bool) {
	if m.result == nil || m.cursorY < 0 || m.cursorY >= len(m.result.Rows) {
		return nil, false
	}
	return m.result.Rows[m.cursorY], true
}

func (m Model) selectedCell() (column, value string, ok bool) {
	row, ok := m.selectedRow()
	if !ok || m.cursorX < 0 || m.cursorX >= len(row) || m.cursorX >= len(m.result.Columns) {
		return "", "", false
	}
	return m.result.Columns[m.cursorX], row[m.cursorX], true
}

func copyCmd(text, done string) tea.Cmd {
	return func() tea.Msg {
		if err := writeClipboard(text); err != nil {
			return StatusNotifyMsg{Message: "Copy failed: " + err.Error()}
		}
		return StatusNotifyMsg{Message: done}
	}
}

func notify(message string) tea.Cmd {
	return func() tea.Msg { return StatusNotifyMsg{Message: message} }
}

func (m Model) copyCellCmd() tea.Cmd {
	_, val, ok := m.selectedCell()
	if !ok {
		return notify("Nothing to copy")
	}
	return copyCmd(val, "Copied: "+truncateStatus(val, 40))
}

func (m Model) copyRowJSONCmd() tea.Cmd {
	row, ok := m.selectedRow()
	if !ok {
		return notify("No row to copy")
	}
	return copyCmd(rowToJSON(m.result.Columns, row), "Copied row as JSON")
}

func (m Model) copyRowCSVCmd() tea.Cmd {
	row, ok := m.selectedRow()
	if !ok {
		return notify("No row to copy")
	}

	var b strings.Builder
	w := csv.NewWriter(&b)
	_ = w.Write(m.result.Columns)
	_ = w.Write(row)
	w.Flush()
	return copyCmd(b.String(), "Copied row as CSV")
}

// filterByValueCmd proposes a query that selects the rows of the source
// table whose selected column equals the selected cell.
func (m Model) filterByValueCmd() tea.Cmd {
	col, val, ok := m.selectedCell()
	table := extractTableName(m.lastQuery)
	if !ok || table == "" {
		return notify("Cannot filter: no table for this result")
	}

	condition := col + " IS NULL"
	if val != app.NullDisplay {
		condition = fmt.Sprintf("%s = '%s'", col, strings.ReplaceAll(val, "'", "''"))
	}
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s", table, condition)
	return func() tea.Msg { return SetEditorQueryMsg{Query: query} }
}

// extractTableName returns the identifier after the first FROM, INTO or
// UPDATE in query, or "".
func extractTableName(query string) string {
	tokens := strings.Fields(query)
	for i, tok := range tokens {
		switch strings.ToUpper(tok) {
		case "FROM", "INTO", "UPDATE":
			if i+1 < len(tokens) {
				if name := strings.TrimRight(tokens[i+1], ";,()"); name != "" {
					return name
				}
			}
		}
	}
	return ""
}

// rowToJSON keeps column order, which marshaling a map would not.
func rowToJSON(columns []string, row []string) string {
	var b strings.Builder
	b.WriteString("{")
	for i, col := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		key, _ := json.Marshal(col)
		b.Write(key)
		b.WriteString(": ")
		if i >= len(row) || row[i] == app.NullDisplay {
			b.WriteString("null")
			continue
		}
		val, _ := json.Marshal(row[i])
		b.Write(val)
	}
	b.WriteString("}")
	return b.String()
}

func truncateStatus(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
