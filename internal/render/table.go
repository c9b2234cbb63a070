package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("5")). // magenta, the em color
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Align(lipgloss.Right)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("5")).
			Underline(true)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("4")) // blue, the header color

	ruleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("3")) // yellow
)

// Table lays out rows under headers as an aligned text table.
func Table(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)
	return t.String()
}

// Title renders a section heading.
func Title(s string) string {
	return titleStyle.Render(s)
}

// Footer renders the closing summary line of a flow.
func Footer(s string) string {
	return footerStyle.Render(s)
}

// Rule renders a horizontal separator.
func Rule(width int) string {
	if width <= 0 {
		width = 80
	}
	return ruleStyle.Render(strings.Repeat("─", width))
}

// ClearScreen returns the control sequence that resets the terminal for a
// live-refreshing view.
func ClearScreen() string {
	return "\033[2J\033[0;0H"
}
