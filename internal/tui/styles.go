package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent    = lipgloss.Color("39")
	muted     = lipgloss.Color("244")
	frame     = lipgloss.Color("237")
	highlight = lipgloss.Color("214")

	promptStyle    = lipgloss.NewStyle().Foreground(accent).Bold(true)
	inputStyle     = lipgloss.NewStyle().Foreground(accent)
	tabStyle       = lipgloss.NewStyle().Foreground(muted).Padding(0, 1)
	activeTabStyle = tabStyle.Foreground(highlight).Bold(true).Underline(true)
	cursorStyle    = lipgloss.NewStyle().Foreground(highlight).Bold(true)
	mutedStyle     = lipgloss.NewStyle().Foreground(muted)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	titleStyle     = lipgloss.NewStyle().Bold(true)

	panelStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(frame)
	focusPanelStyle = panelStyle.BorderForeground(accent)
)

var kindColors = map[string]lipgloss.Color{
	"text":     "75",
	"image":    "170",
	"video":    "141",
	"audio":    "179",
	"location": "114",
}

func kindStyle(kind string) lipgloss.Style {
	c, ok := kindColors[kind]
	if !ok {
		c = muted
	}
	return lipgloss.NewStyle().Foreground(c)
}
