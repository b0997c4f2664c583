package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Zuo-Peng/chatmap/internal/index"
	"github.com/Zuo-Peng/chatmap/internal/render"
	"github.com/Zuo-Peng/chatmap/internal/search"
)

const nearbyPoints = 2

func cardTime(ts string) string {
	if ts == "" {
		return "no date"
	}
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.Format("2006-01-02 15:04")
}

// featureCard describes one point: who sent it, when, where, and the
// message it was paired with.
func featureCard(r search.Result, width int) string {
	var b strings.Builder
	title := r.Username
	if r.Chat != "" {
		title += " · " + r.Chat
	}
	fmt.Fprintf(&b, "%s  %s\n", titleStyle.Render(title), mutedStyle.Render("["+r.Source+"]"))
	fmt.Fprintf(&b, "%s  %s  #%d\n", cardTime(r.Ts), kindStyle(r.Kind).Render(kindLabel(r.Kind)), r.FeatureID)
	fmt.Fprintf(&b, "%s\n%s\n", render.FormatCoords(r.Lat, r.Lon), mutedStyle.Render(mapsLink(r.Lat, r.Lon)))

	if text := cleanSnippet(r.Snippet); text != "" {
		style := lipgloss.NewStyle()
		if width > 0 {
			style = style.Width(width)
		}
		b.WriteString("\n" + style.Render(text) + "\n")
	}
	return b.String()
}

// renderPreview is the card followed by the points around it in its map.
func renderPreview(db *index.DB, r search.Result, query string, width int) string {
	card := featureCard(r, width)
	nearby, _, err := render.RenderMap(db, r.MapKey, render.Options{
		HitFeatureID: r.FeatureID,
		Context:      nearbyPoints,
		Width:        width,
		Query:        query,
	})
	if err != nil {
		return card + "\n" + errorStyle.Render(err.Error())
	}
	return card + "\n" + mutedStyle.Render("nearby points") + "\n" + nearby
}
