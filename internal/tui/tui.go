package tui

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Zuo-Peng/chatmap/internal/index"
	"github.com/Zuo-Peng/chatmap/internal/render"
	"github.com/Zuo-Peng/chatmap/internal/search"
)

// Run searches paired messages interactively, starting from query.
// Picking a point copies its coordinates (or maps link) to the clipboard.
func Run(db *index.DB, query string, opts search.Options) error {
	return run(newModel(db, query, opts, false))
}

// RunList browses every indexed point, newest first. Typing narrows the
// list to points whose message matches.
func RunList(db *index.DB, opts search.Options) error {
	return run(newModel(db, "", opts, true))
}

func run(m model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	fm := final.(model)
	if fm.picked == nil {
		return nil
	}
	return copyPicked(os.Stdout, *fm.picked, fm.link)
}

var writeClipboard = clipboard.WriteAll

func mapsLink(lat, lon float64) string {
	return "https://maps.google.com/?q=" + render.FormatCoords(lat, lon)
}

// copyPicked puts "lat,lon" (or a maps link) on the clipboard, printing it
// instead when no clipboard is available.
func copyPicked(w io.Writer, r search.Result, link bool) error {
	text := render.FormatCoords(r.Lat, r.Lon)
	if link {
		text = mapsLink(r.Lat, r.Lon)
	}
	if err := writeClipboard(text); err != nil {
		slog.Debug("clipboard unavailable", "err", err)
		_, err = fmt.Fprintln(w, text)
		return err
	}
	_, err := fmt.Fprintf(w, "Copied to clipboard: %s\n", text)
	return err
}
