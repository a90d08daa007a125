// Package tui holds the terminal styles and table rendering used by the CLI.
package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	ColorAccent = lipgloss.Color("#A8D8EA") // headers and titles
	ColorDeep   = lipgloss.Color("#596E79") // borders and secondary text
	ColorText   = lipgloss.Color("#E0E0E0") // primary text
	ColorAlert  = lipgloss.Color("#FF6B6B") // down, removed
	ColorGood   = lipgloss.Color("#4ECDC4") // up, added
	ColorMuted  = lipgloss.Color("#6c757d")
)

// Styles
var (
	StyleBase = lipgloss.NewStyle().Foreground(ColorText)

	StyleTitle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	StyleStatusGood = lipgloss.NewStyle().Foreground(ColorGood).Bold(true)
	StyleStatusBad  = lipgloss.NewStyle().Foreground(ColorAlert).Bold(true)
	StyleMuted      = lipgloss.NewStyle().Foreground(ColorMuted)

	StyleTableHeader = lipgloss.NewStyle().
				Foreground(ColorAccent).
				Bold(true).
				Padding(0, 1)

	StyleTableCell = lipgloss.NewStyle().
			Foreground(ColorText).
			Padding(0, 1)

	StyleDiffAdd    = lipgloss.NewStyle().Foreground(ColorGood)
	StyleDiffRemove = lipgloss.NewStyle().Foreground(ColorAlert)
	StyleDiffHunk   = lipgloss.NewStyle().Foreground(ColorMuted)
)

// State renders an operational state, colored by whether it is up.
func State(s string) string {
	switch s {
	case "up":
		return StyleStatusGood.Render(s)
	case "down", "lowerlayerdown", "notpresent":
		return StyleStatusBad.Render(s)
	}
	return StyleMuted.Render(s)
}
