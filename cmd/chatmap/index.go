package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/chatmap/internal/config"
	"github.com/Zuo-Peng/chatmap/internal/index"
)

func indexOptions(cfg *config.Config) index.Options {
	return index.Options{
		Pairing:  cfg.Options(),
		Ignore:   cfg.Ignore,
		MaxBytes: cfg.MaxInputBytes,
	}
}

func indexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Scan the export root and index every map it holds",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			db, err := index.OpenDB(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			fmt.Fprintf(os.Stderr, "Scanning %s...\n", cfg.ExportRoot)

			stats, err := index.IndexAll(cmd.Context(), db, cfg.ExportRoot, indexOptions(cfg))
			if err != nil {
				return fmt.Errorf("index: %w", err)
			}

			fmt.Fprintf(os.Stderr, "Done. %s\n", stats)
			return nil
		},
	}
}
