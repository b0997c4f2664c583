package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zuo-Peng/chatmap/internal/config"
	"github.com/Zuo-Peng/chatmap/internal/index"
	"github.com/Zuo-Peng/chatmap/internal/render"
	"github.com/Zuo-Peng/chatmap/internal/search"
	"github.com/Zuo-Peng/chatmap/internal/tui"
)

const (
	sColorReset   = "\033[0m"
	sColorBoldRed = "\033[1;31m"
	sColorBlue    = "\033[1;34m"
	sColorGreen   = "\033[1;32m"
	sColorMagenta = "\033[1;35m"
	sColorDim     = "\033[2m"
)

func colorizeKind(kind string) string {
	switch kind {
	case "text":
		return sColorBlue + kind + sColorReset
	case "location":
		return sColorGreen + kind + sColorReset
	case "":
		return "-"
	default:
		return sColorMagenta + kind + sColorReset
	}
}

func colorizeSnippet(snippet string) string {
	snippet = strings.ReplaceAll(snippet, ">>>", sColorBoldRed)
	snippet = strings.ReplaceAll(snippet, "<<<", sColorReset)
	return snippet
}

var tsvCleaner = strings.NewReplacer("\t", " ", "\n", " ")

// writeTSV prints one result per line. The first two fields (mapKey,
// featureID) stay plain for fzf {1} {2}.
func writeTSV(w io.Writer, results []search.Result) {
	for _, r := range results {
		user := tsvCleaner.Replace(r.Username)
		if user == "" {
			user = "-"
		}
		fmt.Fprintf(w, "%s\t%d\t%s%s%s\t%s\t%s\t%s\t%s\t%s\n",
			r.MapKey,
			r.FeatureID,
			sColorDim, r.Ts, sColorReset,
			r.Source,
			colorizeKind(r.Kind),
			user,
			render.FormatCoords(r.Lat, r.Lon),
			colorizeSnippet(tsvCleaner.Replace(r.Snippet)),
		)
	}
}

func searchCmd() *cobra.Command {
	var source, user, kind, since string
	var limit int
	var perMap bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search across the messages paired with locations",
		Long: `Search indexed maps using FTS5. Output is TSV for fzf integration:
  mapKey, featureId, time, app, kind, user, lat,lon, snippet

Recommended shell function (add to .zshrc):
  cmf() {
    chatmap search "$*" | fzf \
      --ansi \
      --delimiter='\t' --with-nth=3.. \
      --preview 'chatmap preview {1} --hit {2} --context 5 --query {q}' \
      --preview-window=right:60%:wrap \
      --preview-debounce=150 \
      --bind 'enter:execute(chatmap open {1} --hit {2})'
  }`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			db, err := index.OpenDB(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			// refresh the index before searching
			if _, err := index.IndexAll(cmd.Context(), db, cfg.ExportRoot, indexOptions(cfg)); err != nil {
				slog.Warn("refresh index", "error", err)
			}

			opts := search.Options{
				Source:   source,
				Username: user,
				Kind:     kind,
				Since:    since,
				Limit:    limit,
				PerMap:   perMap,
			}

			// Interactive TUI when stdout is a terminal; TSV output for pipes
			if term.IsTerminal(int(os.Stdout.Fd())) {
				return tui.Run(db, args[0], opts)
			}

			opts.Query = args[0]
			results, err := search.Search(db, opts)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Fprintln(os.Stderr, "No results found.")
				return nil
			}
			writeTSV(cmd.OutOrStdout(), results)
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "Filter by app (WhatsApp/Telegram/Signal/GeoJSON)")
	cmd.Flags().StringVar(&user, "user", "", "Filter by username")
	cmd.Flags().StringVar(&kind, "kind", "", "Filter by kind (text/image/video/audio/location)")
	cmd.Flags().StringVar(&since, "since", "", "Filter points sent since date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 100, "Max results")
	cmd.Flags().BoolVar(&perMap, "per-map", false, "Keep only the best hit of each map")

	return cmd
}
