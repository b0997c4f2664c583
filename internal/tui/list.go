package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/chatmap/internal/render"
	"github.com/Zuo-Peng/chatmap/internal/search"
)

const (
	rowHeight  = 2
	userColumn = 10
	timeLayout = "01-02 15:04"
)

func (m model) visibleRows() int {
	return max(m.bodyHeight()/rowHeight, 1)
}

// scrollOffset returns the first visible row that keeps cursor on screen.
func scrollOffset(cursor, offset, visible int) int {
	switch {
	case cursor < offset:
		return cursor
	case cursor >= offset+visible:
		return cursor - visible + 1
	}
	return offset
}

func (m model) renderList(width, height int) string {
	if len(m.features) == 0 {
		hint := "No points"
		if m.query == "" && !m.browse {
			hint = "Type to search messages"
		}
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, mutedStyle.Render(hint))
	}
	var lines []string
	for i := m.offset; i < len(m.features) && len(lines)+rowHeight <= height; i++ {
		lines = append(lines, featureRow(m.features[i], width, i == m.cursor)...)
	}
	return strings.Join(lines, "\n")
}

func shortTime(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return strings.Repeat("-", len(timeLayout))
	}
	return t.Format(timeLayout)
}

var snippetReplacer = strings.NewReplacer("\n", " ", "\t", " ", ">>>", "", "<<<", "")

func cleanSnippet(s string) string {
	return strings.TrimSpace(snippetReplacer.Replace(s))
}

// featureRow renders a point as two lines:
//
//	[>] kind MM-DD hh:mm user       lat,lon
//	    message, or the chat name when there is none
//
// The coordinates are dropped when they do not fit.
func featureRow(r search.Result, width int, selected bool) []string {
	marker := "  "
	if selected {
		marker = cursorStyle.Render("> ")
	}
	user := runewidth.FillRight(runewidth.Truncate(cleanSnippet(r.Username), userColumn, "…"), userColumn)
	head := marker + kindBadge(r.Kind) + " " + shortTime(r.Ts) + " " + user

	coords := render.FormatCoords(r.Lat, r.Lon)
	used := 2 + 3 + 1 + len(timeLayout) + 1 + userColumn
	if used+1+len(coords) <= width {
		head += " " + mutedStyle.Render(coords)
	}

	body := cleanSnippet(r.Snippet)
	if body == "" {
		body = r.Chat
	}
	body = runewidth.Truncate(body, max(width-4, 0), "…")
	return []string{head, "    " + mutedStyle.Render(body)}
}
