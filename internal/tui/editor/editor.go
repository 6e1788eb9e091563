package editor

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joacominatel/theseus/internal/tui/theme"
)

// ExecuteQueryMsg is sent when the user runs the editor content.
type ExecuteQueryMsg struct {
	Query string
}

// SQL keywords uppercased by Ctrl+L.
var sqlKeywords = map[string]bool{
	"select": true, "from": true, "where": true, "and": true, "or": true,
	"insert": true, "into": true, "update": true, "delete": true,
	"create": true, "drop": true, "alter": true, "table": true, "view": true,
	"join": true, "inner": true, "outer": true, "full": true,
	"left": true, "right": true, "cross": true, "on": true, "using": true,
	"not": true, "in": true, "is": true, "null": true, "like": true,
	"order": true, "by": true, "group": true, "having": true,
	"limit": true, "offset": true, "as": true, "distinct": true,
	"count": true, "sum": true, "avg": true, "min": true, "max": true,
	"between": true, "exists": true, "case": true, "when": true,
	"then": true, "else": true, "end": true, "values": true,
	"set": true, "commit": true, "with": true, "cast": true,
	"union": true, "all": true, "asc": true, "desc": true,
	"true": true, "false": true, "ilike": true, "describe": true,
}

// Model is the multi-line SQL editor with history and table name
// completion.
type Model struct {
	textarea textarea.Model
	width    int
	height   int
	focused  bool

	history []string
	histPos int // len(history) when not browsing

	tableNames  []string
	completing  bool
	completions []string
	compIndex   int
}

// New creates a new editor model.
func New() Model {
	ta := textarea.New()
	ta.Placeholder = "SELECT * FROM people LIMIT 10"
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.Prompt = "│ "
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle()
	ta.BlurredStyle.Base = lipgloss.NewStyle()
	ta.FocusedStyle.Placeholder = theme.StyleMuted
	ta.BlurredStyle.Placeholder = theme.StyleMuted
	ta.FocusedStyle.Prompt = lipgloss.NewStyle().Foreground(theme.ColorPrimary)
	ta.BlurredStyle.Prompt = lipgloss.NewStyle().Foreground(theme.ColorBorder)

	return Model{textarea: ta}
}

// SetSize updates the component dimensions. The title and the completion
// line take two rows.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.textarea.SetWidth(max(w-2, 10))
	m.textarea.SetHeight(max(h-2, 1))
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

// Value returns the editor content.
func (m Model) Value() string {
	return m.textarea.Value()
}

// SetQuery replaces the editor content.
func (m *Model) SetQuery(query string) {
	m.textarea.SetValue(query)
}

// SetTableNames sets the names offered by Tab completion.
func (m *Model) SetTableNames(names []string) {
	m.tableNames = names
}

// Clear empties the editor.
func (m *Model) Clear() {
	m.textarea.Reset()
	m.cancelCompletion()
}

// Remember appends query to the history unless it repeats the last entry.
func (m *Model) Remember(query string) {
	if n := len(m.history); n == 0 || m.history[n-1] != query {
		m.history = append(m.history, query)
	}
	m.histPos = len(m.history)
}

// Completing reports whether Tab is cycling through candidates.
func (m Model) Completing() bool {
	return m.completing
}

// Completable reports whether Tab would complete the word before the
// cursor.
func (m Model) Completable() bool {
	return m.completing || len(m.candidates(m.textarea.Value())) > 0
}

// Update handles messages for the editor.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+e", "f5":
			query := strings.TrimSpace(m.textarea.Value())
			if query == "" {
				return m, nil
			}
			m.cancelCompletion()
			m.Remember(query)
			return m, func() tea.Msg { return ExecuteQueryMsg{Query: query} }
		case "ctrl+k":
			m.Clear()
			return m, nil
		case "ctrl+l":
			m.textarea.SetValue(FormatKeywords(m.textarea.Value()))
			return m, nil
		case "ctrl+p":
			m.browse(-1)
			return m, nil
		case "ctrl+n":
			m.browse(1)
			return m, nil
		case "tab":
			if m.complete() {
				return m, nil
			}
		case "esc":
			if m.completing {
				m.cancelCompletion()
				return m, nil
			}
		}

		if m.completing && key.String() != "tab" {
			m.cancelCompletion()
		}
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m *Model) browse(step int) {
	if len(m.history) == 0 {
		return
	}
	m.histPos = min(max(m.histPos+step, 0), len(m.history))
	if m.histPos == len(m.history) {
		m.textarea.Reset()
		return
	}
	m.SetQuery(m.history[m.histPos])
}

// candidates returns the table names matching the word before the cursor,
// when the text is at a point where a table name is expected.
func (m Model) candidates(val string) []string {
	partial := lastWord(val)
	if partial == "" || len(m.tableNames) == 0 {
		return nil
	}

	upper := strings.ToUpper(val)
	if !strings.Contains(upper, "FROM") && !strings.Contains(upper, "JOIN") &&
		!strings.Contains(upper, "TABLE") && !strings.Contains(upper, "INTO") {
		return nil
	}

	lower := strings.ToLower(partial)
	var matches []string
	for _, name := range m.tableNames {
		if strings.HasPrefix(strings.ToLower(name), lower) {
			matches = append(matches, name)
		}
	}
	return matches
}

// complete replaces the word before the cursor with the next candidate.
// Repeated Tabs cycle through the candidates.
func (m *Model) complete() bool {
	val := m.textarea.Value()

	if m.completing {
		m.compIndex = (m.compIndex + 1) % len(m.completions)
	} else {
		matches := m.candidates(val)
		if len(matches) == 0 {
			return false
		}
		m.completing = true
		m.completions = matches
		m.compIndex = 0
	}

	m.SetQuery(strings.TrimSuffix(val, lastWord(val)) + m.completions[m.compIndex])
	return true
}

func (m *Model) cancelCompletion() {
	m.completing = false
	m.completions = nil
	m.compIndex = 0
}

// FormatKeywords uppercases SQL keywords outside string literals and quoted
// identifiers.
func FormatKeywords(sql string) string {
	var result, word strings.Builder
	flush := func() {
		if word.Len() == 0 {
			return
		}
		w := word.String()
		if sqlKeywords[strings.ToLower(w)] {
			w = strings.ToUpper(w)
		}
		result.WriteString(w)
		word.Reset()
	}

	var quote rune
	for _, ch := range sql {
		switch {
		case quote != 0:
			result.WriteRune(ch)
			if ch == quote {
				quote = 0
			}
		case ch == '\'' || ch == '"':
			flush()
			quote = ch
			result.WriteRune(ch)
		case unicode.IsLetter(ch) || ch == '_':
			word.WriteRune(ch)
		default:
			flush()
			result.WriteRune(ch)
		}
	}
	flush()
	return result.String()
}

func lastWord(s string) string {
	i := len(s)
	for i > 0 && isIdentChar(s[i-1]) {
		i--
	}
	return s[i:]
}

func isIdentChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') || c == '_' || c == '.'
}

// View renders the editor.
func (m Model) View() string {
	title := theme.StyleTitle.Render("Query Editor")

	var hint string
	if m.completing && len(m.completions) > 1 {
		parts := make([]string, len(m.completions))
		for i, c := range m.completions {
			if i == m.compIndex {
				parts[i] = theme.StyleSelected.Render(c)
			} else {
				parts[i] = theme.StyleMuted.Render(c)
			}
		}
		hint = "\n" + lipgloss.NewStyle().Padding(0, 1).Render(
			theme.StyleMuted.Render("Tab: ")+strings.Join(parts, " │ "),
		)
	}

	return title + "\n" + m.textarea.View() + hint
}
