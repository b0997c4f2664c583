package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/chatmap/internal/index"
)

const (
	colorReset   = "\033[0m"
	colorUser    = "\033[1;34m" // bold blue
	colorCoord   = "\033[1;32m" // bold green
	colorMedia   = "\033[2;35m" // dim magenta for file names
	colorDim     = "\033[2m"
	colorHit     = "\033[43m"   // yellow background
	colorBoldRed = "\033[1;31m" // bold red for keyword highlights
)

type Options struct {
	HitFeatureID int    // -1 for none
	Context      int    // features before/after hit to show
	Width        int    // wrap width (0 = no wrap)
	Query        string // search query for keyword highlighting
}

// fts5Operators are FTS5 operators that should not be highlighted as keywords.
var fts5Operators = map[string]bool{
	"AND": true, "OR": true, "NOT": true, "NEAR": true,
	"and": true, "or": true, "not": true, "near": true,
}

// highlightKeywords wraps case-insensitive matches of query terms in bold red ANSI codes.
func highlightKeywords(text, query string) string {
	if query == "" {
		return text
	}
	terms := strings.Fields(query)
	var filtered []string
	for _, t := range terms {
		if !fts5Operators[t] {
			filtered = append(filtered, t)
		}
	}
	if len(filtered) == 0 {
		return text
	}
	for _, term := range filtered {
		lower := strings.ToLower(term)
		i := 0
		for i < len(text) {
			idx := strings.Index(strings.ToLower(text[i:]), lower)
			if idx < 0 {
				break
			}
			pos := i + idx
			orig := text[pos : pos+len(term)]
			replacement := colorBoldRed + orig + colorReset
			text = text[:pos] + replacement + text[pos+len(term):]
			i = pos + len(replacement)
		}
	}
	return text
}

// indentLines prepends each line of text with the given prefix.
func indentLines(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

// wrapLine breaks a single line into multiple lines that fit within maxWidth
// visible columns, correctly skipping ANSI escape sequences when measuring width.
func wrapLine(line string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{line}
	}

	var result []string
	var cur strings.Builder
	visW := 0

	i := 0
	for i < len(line) {
		// check for ANSI escape sequence: ESC[ ... m
		if i+1 < len(line) && line[i] == '\033' && line[i+1] == '[' {
			j := i + 2
			for j < len(line) && line[j] != 'm' {
				j++
			}
			if j < len(line) {
				j++ // include 'm'
			}
			cur.WriteString(line[i:j])
			i = j
			continue
		}

		r, size := utf8.DecodeRuneInString(line[i:])
		rw := runewidth.RuneWidth(r)

		if visW+rw > maxWidth {
			result = append(result, cur.String())
			cur.Reset()
			visW = 0
		}

		cur.WriteRune(r)
		visW += rw
		i += size
	}

	if cur.Len() > 0 {
		result = append(result, cur.String())
	}

	if len(result) == 0 {
		return []string{""}
	}
	return result
}

// FormatCoords prints a point the way map apps accept it: "lat,lon".
func FormatCoords(lat, lon float64) string {
	return fmt.Sprintf("%.6f,%.6f", lat, lon)
}

// RenderMap renders the features of a map and returns the content, the
// 0-based line number of the hit feature header (-1 if no hit), and any error.
func RenderMap(db *index.DB, mapKey string, opts Options) (string, int, error) {
	if opts.Context == 0 {
		opts.Context = 10
	}
	if opts.Context < 0 {
		opts.Context = 1000000 // no limit
	}

	m, err := db.GetMapByKey(mapKey)
	if err != nil {
		return "", -1, fmt.Errorf("get map: %w", err)
	}
	if m == nil {
		return "", -1, fmt.Errorf("map not found: %s", mapKey)
	}

	features, hitIdx, err := db.GetFeaturesWindow(mapKey, opts.HitFeatureID, opts.Context)
	if err != nil {
		return "", -1, fmt.Errorf("get features: %w", err)
	}
	if m.Features == 0 {
		return "(no locations)", -1, nil
	}

	// count the points outside the window
	skipBefore, skipAfter := 0, 0
	all, err := db.GetFeatures(mapKey)
	if err != nil {
		return "", -1, fmt.Errorf("get features: %w", err)
	}
	if len(features) > 0 {
		first, last := features[0].FeatureID, features[len(features)-1].FeatureID
		for _, f := range all {
			switch {
			case f.FeatureID < first:
				skipBefore++
			case f.FeatureID > last:
				skipAfter++
			}
		}
	}

	var b strings.Builder
	hitLine := -1
	lineCount := 0
	separator := colorDim + "--------------------------------------------------" + colorReset
	wrapW := opts.Width

	// helper to track line count; wraps long lines if Width is set
	writeLine := func(s string) {
		for _, wl := range wrapLine(s, wrapW) {
			b.WriteString(wl)
			b.WriteString("\n")
			lineCount++
		}
	}

	title := m.FilePath
	if m.Chat != "" {
		title = m.Chat + " (" + m.FilePath + ")"
	}
	writeLine(fmt.Sprintf("%s--- %s [%s] %d points ---%s", colorDim, title, m.Source, m.Features, colorReset))

	if skipBefore > 0 {
		writeLine(fmt.Sprintf("%s... (%d points before) ...%s", colorDim, skipBefore, colorReset))
	}

	for i, f := range features {
		isHit := i == hitIdx

		if i > 0 {
			writeLine(separator)
		}
		if isHit {
			hitLine = lineCount
		}

		label := fmt.Sprintf("#%d %s", f.FeatureID, strings.ToUpper(f.Kind))
		if isHit {
			writeLine(fmt.Sprintf("%s>> %s > %s %s <<%s", colorHit, label, f.Username, f.Ts, colorReset))
		} else {
			writeLine(fmt.Sprintf("%s%s > %s%s %s%s%s", colorUser, label, f.Username, colorReset, colorDim, f.Ts, colorReset))
		}
		writeLine(fmt.Sprintf("  %s%s%s", colorCoord, FormatCoords(f.Lat, f.Lon), colorReset))

		text := f.Text
		switch f.Kind {
		case "image", "video", "audio":
			text = colorMedia + text + colorReset
		case "location":
			text = colorDim + text + colorReset
		}
		text = highlightKeywords(text, opts.Query)
		for _, tl := range strings.Split(indentLines(text, "  "), "\n") {
			writeLine(tl)
		}
		writeLine("") // blank line after feature
	}

	if skipAfter > 0 {
		writeLine(fmt.Sprintf("%s... (%d points after) ...%s", colorDim, skipAfter, colorReset))
	}

	return b.String(), hitLine, nil
}
