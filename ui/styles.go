package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	screenStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))
)

func init() {
	// Monochrome terminals get unstyled output instead of raw sequences.
	if termenv.ColorProfile() == termenv.Ascii {
		plain := lipgloss.NewStyle()
		screenStyle = plain.Border(lipgloss.NormalBorder()).Padding(0, 1)
		statusStyle = plain
		titleStyle = plain
		noticeStyle = plain
	}
}
