package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func (m model) View() string {
	if m.quitting || m.width == 0 {
		return ""
	}
	h := m.bodyHeight()
	list := panelStyle.Width(m.listWidth()).Height(h).Render(m.renderList(m.listWidth(), h))

	m.preview.Width, m.preview.Height = m.previewWidth(), h
	preview := focusPanelStyle.Width(m.previewWidth()).Height(h).Render(m.preview.View())

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Center, m.input.View(), "  ", m.kindTabs()),
		lipgloss.JoinHorizontal(lipgloss.Top, list, preview),
		m.statusLine(),
	)
}

func (m model) kindTabs() string {
	tabs := make([]string, len(kindFilters))
	for i, k := range kindFilters {
		style := tabStyle
		if k == m.kind {
			style = activeTabStyle
		}
		tabs[i] = style.Render(kindLabel(k))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m model) statusLine() string {
	status := mutedStyle.Render(fmt.Sprintf("%d points", len(m.features)))
	if m.err != nil {
		status = errorStyle.Render(m.err.Error())
	}
	return status + "  " + m.help.View(keys)
}

// Panel sizes leave room for the input row, the status line and borders.

func (m model) listWidth() int {
	if m.width <= 0 {
		return 40
	}
	return max(m.width*2/5-2, 24)
}

func (m model) previewWidth() int {
	if m.width <= 0 {
		return 60
	}
	return max(m.width-m.listWidth()-6, 20)
}

func (m model) bodyHeight() int {
	if m.height <= 0 {
		return 20
	}
	return max(m.height-4, 4)
}
