package theme

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/joacominatel/theseus/internal/database"
)

// Color palette.
var (
	ColorPrimary   = lipgloss.Color("39")  // Blue
	ColorSecondary = lipgloss.Color("241") // Gray
	ColorSuccess   = lipgloss.Color("42")  // Green
	ColorWarning   = lipgloss.Color("214") // Orange
	ColorError     = lipgloss.Color("196") // Red
	ColorBorder    = lipgloss.Color("238") // Dark gray
	ColorMuted     = lipgloss.Color("245") // Light gray
	ColorHighlight = lipgloss.Color("229") // Yellow
)

// Shared styles used across TUI components.
var (
	StyleBorder = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	StyleActiveBorder = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(ColorPrimary)

	StyleTitle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true).
			Padding(0, 1)

	StyleSelected = lipgloss.NewStyle().
			Foreground(ColorHighlight).
			Bold(true)

	StyleMuted   = lipgloss.NewStyle().Foreground(ColorMuted)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning)
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)

	StyleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)
)

var typeColors = map[database.LogicalType]lipgloss.Color{
	database.TypeString:   lipgloss.Color("114"),
	database.TypeInteger:  lipgloss.Color("75"),
	database.TypeBigInt:   lipgloss.Color("75"),
	database.TypeFloat:    lipgloss.Color("141"),
	database.TypeNumeric:  lipgloss.Color("141"),
	database.TypeDateTime: lipgloss.Color("180"),
	database.TypeBoolean:  lipgloss.Color("210"),
}

// TypeStyle returns the style used to render a column's logical type.
func TypeStyle(t database.LogicalType) lipgloss.Style {
	if c, ok := typeColors[t]; ok {
		return lipgloss.NewStyle().Foreground(c)
	}
	return StyleMuted
}
