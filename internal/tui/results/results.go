package results

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joacominatel/theseus/internal/app"
	"github.com/joacominatel/theseus/internal/database"
	"github.com/joacominatel/theseus/internal/tui/theme"
)

const maxColWidth = 40

// ExportedMsg reports the outcome of an export started with "e".
type ExportedMsg struct {
	Path string
	Rows int
	Err  error
}

// Model is the query results component.
type Model struct {
	result    *database.QueryResult
	err       error
	width     int
	height    int
	focused   bool
	scrollY   int
	colOffset int
	cursorY   int
	cursorX   int
	loading   bool
	colWidths []int
	lastQuery string
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

// SetLoading sets the loading state.
func (m *Model) SetLoading(l bool) {
	m.loading = l
}

// SetResult sets the result to display and the query that produced it.
func (m *Model) SetResult(r *database.QueryResult, query string) {
	m.result = r
	m.lastQuery = query
	m.err = nil
	m.scrollY, m.cursorY = 0, 0
	m.colOffset, m.cursorX = 0, 0
	m.loading = false
	m.colWidths = app.ColumnWidths(r, maxColWidth)
}

// SetError sets an error to display.
func (m *Model) SetError(err error) {
	m.err = err
	m.result = nil
	m.scrollY, m.cursorY = 0, 0
	m.colOffset, m.cursorX = 0, 0
	m.loading = false
}

func (m Model) visibleRows() int {
	return max(m.height-4, 1)
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

	lastRow := max(len(m.result.Rows)-1, 0)
	lastCol := max(len(m.result.Columns)-1, 0)

	switch key.String() {
	case "up", "k":
		m.cursorY = max(m.cursorY-1, 0)
	case "down", "j":
		m.cursorY = min(m.cursorY+1, lastRow)
	case "pgup":
		m.cursorY = max(m.cursorY-m.visibleRows(), 0)
	case "pgdown":
		m.cursorY = min(m.cursorY+m.visibleRows(), lastRow)
	case "g", "home":
		m.cursorY = 0
	case "G", "end":
		m.cursorY = lastRow
	case "left", "h":
		m.cursorX = max(m.cursorX-1, 0)
	case "right", "l":
		m.cursorX = min(m.cursorX+1, lastCol)
	case "c":
		return m, m.copyCellCmd()
	case "y":
		return m, m.copyRowJSONCmd()
	case "Y":
		return m, m.copyRowCSVCmd()
	case "f":
		return m, m.filterByValueCmd()
	case "e":
		return m, exportCmd(m.result)
	}

	m.follow()
	return m, nil
}

// follow scrolls so the selected cell is visible.
func (m *Model) follow() {
	if m.cursorY < m.scrollY {
		m.scrollY = m.cursorY
	}
	if n := m.visibleRows(); m.cursorY >= m.scrollY+n {
		m.scrollY = m.cursorY - n + 1
	}

	if m.cursorX < m.colOffset {
		m.colOffset = m.cursorX
	}
	for m.colOffset < m.cursorX && !slices.Contains(m.visibleColumns(), m.cursorX) {
		m.colOffset++
	}
}

// exportCmd writes the result as CSV into the working directory.
func exportCmd(result *database.QueryResult) tea.Cmd {
	return func() tea.Msg {
		path := fmt.Sprintf("theseus_export_%s.csv", time.Now().Format("20060102_150405"))
		f, err := os.Create(path)
		if err != nil {
			return ExportedMsg{Err: err}
		}
		defer f.Close()

		if err := app.Render(f, result, app.FormatCSV); err != nil {
			return ExportedMsg{Err: err}
		}
		return ExportedMsg{Path: path, Rows: len(result.Rows)}
	}
}

// View renders the results pane.
func (m Model) View() string {
	title := theme.StyleTitle.Render("Results")

	switch {
	case m.loading:
		return title + "\n" + theme.StyleMuted.Render("  Executing query...")
	case m.err != nil:
		return title + "\n" + theme.StyleError.Render("  Error: "+m.err.Error())
	case m.result == nil:
		return title + "\n" + theme.StyleMuted.Render("  Execute a query to see results")
	}

	stats := fmt.Sprintf("%d row(s) | %s", m.result.RowCount, m.result.Duration.Round(time.Millisecond))
	if len(m.result.Rows) > 0 {
		stats += fmt.Sprintf(" | row %d, col %d", m.cursorY+1, m.cursorX+1)
	}
	header := title + "  " + theme.StyleMuted.Render(stats)

	if len(m.result.Columns) == 0 {
		return header + "\n" + theme.StyleSuccess.Render("  Query executed successfully")
	}

	lines := []string{
		header,
		m.renderRow(m.result.Columns, true, -1),
		m.renderSeparator(),
	}
	end := min(len(m.result.Rows), m.scrollY+m.visibleRows())
	for i := m.scrollY; i < end; i++ {
		selected := -1
		if m.focused && i == m.cursorY {
			selected = m.cursorX
		}
		lines = append(lines, m.renderRow(m.result.Rows[i], false, selected))
	}
	return strings.Join(lines, "\n")
}

// visibleColumns returns the indices of the columns that fit starting at
// colOffset.
func (m Model) visibleColumns() []int {
	var cols []int
	used := 2
	for i := m.colOffset; i < len(m.colWidths); i++ {
		w := m.colWidths[i] + 3
		if len(cols) > 0 && m.width > 0 && used+w > m.width {
			break
		}
		cols = append(cols, i)
		used += w
	}
	return cols
}

// renderRow renders one line of the grid. selected is the index of the
// highlighted cell, or -1.
func (m Model) renderRow(cells []string, isHeader bool, selected int) string {
	cols := m.visibleColumns()
	parts := make([]string, 0, len(cols))
	for _, i := range cols {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		display := app.Fit(cell, m.colWidths[i])

		switch {
		case i == selected:
			display = theme.StyleSelected.Reverse(true).Render(display)
		case isHeader:
			display = lipgloss.NewStyle().Bold(true).Foreground(theme.ColorPrimary).Render(display)
		case cell == app.NullDisplay:
			display = theme.StyleMuted.Render(display)
		}
		parts = append(parts, display)
	}
	return "  " + strings.Join(parts, " │ ")
}

func (m Model) renderSeparator() string {
	cols := m.visibleColumns()
	parts := make([]string, len(cols))
	for j, i := range cols {
		parts[j] = strings.Repeat("─", m.colWidths[i])
	}
	return "  " + lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(strings.Join(parts, "─┼─"))
}
