package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zuo-Peng/chatmap/internal/config"
	"github.com/Zuo-Peng/chatmap/internal/index"
	"github.com/Zuo-Peng/chatmap/internal/search"
	"github.com/Zuo-Peng/chatmap/internal/tui"
)

func listCmd() *cobra.Command {
	var source, user, kind, since string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Browse indexed points, newest first",
		Long: `Opens a TUI panel showing every indexed point, newest first. Type to search
the paired messages. When stdout is not a terminal, prints the indexed maps.`,
		Args: cobra.NoArgs,
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

			if _, err := index.IndexAll(cmd.Context(), db, cfg.ExportRoot, indexOptions(cfg)); err != nil {
				slog.Warn("refresh index", "error", err)
			}

			if term.IsTerminal(int(os.Stdout.Fd())) {
				return tui.RunList(db, search.Options{
					Source:   source,
					Username: user,
					Kind:     kind,
					Since:    since,
					Limit:    limit,
				})
			}

			maps, err := db.ListMaps(source, limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, m := range maps {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", m.MapKey, m.Source, m.Chat, m.Features, m.LastAt)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "Filter by app (WhatsApp/Telegram/Signal/GeoJSON)")
	cmd.Flags().StringVar(&user, "user", "", "Filter by username")
	cmd.Flags().StringVar(&kind, "kind", "", "Filter by kind (text/image/video/audio/location)")
	cmd.Flags().StringVar(&since, "since", "", "Filter points sent since date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Max results (0 = default)")

	return cmd
}
