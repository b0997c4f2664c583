package tui

import "slices"

// kindFilters is the tab order of the kind filter; "" shows every point.
var kindFilters = []string{"", "text", "image", "video", "audio", "location"}

func kindLabel(kind string) string {
	switch kind {
	case "":
		return "all"
	case "image":
		return "photo"
	case "location":
		return "location only"
	default:
		return kind
	}
}

var kindBadges = map[string]string{
	"text":     "txt",
	"image":    "img",
	"video":    "vid",
	"audio":    "aud",
	"location": "loc",
}

func kindBadge(kind string) string {
	badge, ok := kindBadges[kind]
	if !ok {
		badge = "???"
	}
	return kindStyle(kind).Render(badge)
}

// shiftKind moves step places through kindFilters, wrapping around.
func shiftKind(cur string, step int) string {
	i := max(slices.Index(kindFilters, cur), 0)
	n := len(kindFilters)
	return kindFilters[((i+step)%n+n)%n]
}
