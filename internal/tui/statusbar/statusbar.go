package statusbar

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/joacominatel/theseus/internal/tui/theme"
)

const hints = "Ctrl+E: Run │ Tab: Switch pane │ ?: Help │ Ctrl+C: Quit"

// Model is the status bar component.
type Model struct {
	width      int
	connected  bool
	dialect    string
	connName   string
	activePane string
	message    string
	notices    int
}

// New creates a new status bar model.
func New(dialect string) Model {
	return Model{
		dialect:    dialect,
		activePane: "explorer",
	}
}

// SetWidth updates the component width.
func (m *Model) SetWidth(w int) {
	m.width = w
}

// SetConnected updates the connection status display.
func (m *Model) SetConnected(connected bool, name string) {
	m.connected = connected
	m.connName = name
}

// SetActivePane updates the displayed active pane name.
func (m *Model) SetActivePane(pane string) {
	m.activePane = pane
}

// SetMessage sets a temporary status message.
func (m *Model) SetMessage(msg string) {
	m.message = msg
}

// SetNotices sets the number of server notices collected on the connection.
func (m *Model) SetNotices(n int) {
	m.notices = n
}

// View renders the status bar.
func (m Model) View() string {
	style := theme.StyleStatusBar.Width(m.width)

	var left string
	if m.connected {
		left = theme.StyleSuccess.Render("●") + " " + m.dialect + " " + m.connName
	} else {
		left = theme.StyleError.Render("●") + " disconnected"
	}
	left += theme.StyleMuted.Render(" [" + m.activePane + "]")
	if m.notices > 0 {
		left += " " + theme.StyleWarning.Render(fmt.Sprintf("%d notice(s)", m.notices))
	}

	right := hints
	if m.message != "" {
		right = m.message
	}

	padding := max(m.width-lipgloss.Width(left)-lipgloss.Width(right)-4, 1)

	return style.Render(left + strings.Repeat(" ", padding) + right)
}
