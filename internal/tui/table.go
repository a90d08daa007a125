package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Table renders rows under headers with a rounded border.
func Table(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorDeep)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return StyleTableHeader
			}
			return StyleTableCell
		}).
		Headers(headers...).
		Rows(rows...)
	return t.Render()
}

// Diff colors a unified diff line by line.
func Diff(unified string) string {
	lines := strings.SplitAfter(unified, "\n")
	var b strings.Builder
	for _, line := range lines {
		body := strings.TrimSuffix(line, "\n")
		nl := line[len(body):]
		switch {
		case strings.HasPrefix(body, "+++"), strings.HasPrefix(body, "---"):
			b.WriteString(StyleTitle.Render(body))
		case strings.HasPrefix(body, "@@"):
			b.WriteString(StyleDiffHunk.Render(body))
		case strings.HasPrefix(body, "+"):
			b.WriteString(StyleDiffAdd.Render(body))
		case strings.HasPrefix(body, "-"):
			b.WriteString(StyleDiffRemove.Render(body))
		default:
			b.WriteString(body)
		}
		b.WriteString(nl)
	}
	return b.String()
}
