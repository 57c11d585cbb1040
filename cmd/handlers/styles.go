package handlers

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle  = lipgloss.NewStyle().Bold(true)
	indexStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Width(5).Align(lipgloss.Right)
	siteStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), true).Padding(0, 1)
)

func keyValue(label, value string) string {
	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}
