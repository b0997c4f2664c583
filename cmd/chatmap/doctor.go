package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/chatmap/internal/config"
	"github.com/Zuo-Peng/chatmap/internal/index"
	"github.com/Zuo-Peng/chatmap/internal/scan"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Self-check: verify export root, DB, FTS5, and show stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			w := cmd.OutOrStdout()

			fmt.Fprintln(w, "=== Export Root ===")
			checkDir(w, "Exports", cfg.ExportRoot)

			fmt.Fprintln(w, "\n=== File Scan ===")
			files, err := scan.ScanRoot(cfg.ExportRoot, cfg.MaxInputBytes)
			if err != nil {
				fmt.Fprintf(w, "  scan error: %v\n", err)
			} else {
				fmt.Fprintf(w, "  Export files: %d\n", len(files))
			}

			fmt.Fprintln(w, "\n=== Database ===")
			fmt.Fprintf(w, "  Path: %s\n", cfg.DBPath)
			if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
				fmt.Fprintln(w, "  Status: NOT FOUND (run 'chatmap index' first)")
				return nil
			}

			db, err := index.OpenDB(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			mapCount, err := db.MapCount()
			if err != nil {
				return fmt.Errorf("count maps: %w", err)
			}
			featureCount, err := db.FeatureCount()
			if err != nil {
				return fmt.Errorf("count features: %w", err)
			}
			fmt.Fprintf(w, "  Maps:     %d\n", mapCount)
			fmt.Fprintf(w, "  Features: %d\n", featureCount)

			fmt.Fprintln(w, "\n=== FTS5 ===")
			var ftsCount int
			err = db.Raw().QueryRow("SELECT COUNT(*) FROM features_fts").Scan(&ftsCount)
			if err != nil {
				fmt.Fprintf(w, "  FTS5 error: %v\n", err)
			} else {
				fmt.Fprintf(w, "  FTS5 entries: %d\n", ftsCount)
				if ftsCount == featureCount {
					fmt.Fprintln(w, "  Status: OK (synced)")
				} else {
					fmt.Fprintf(w, "  Status: MISMATCH (features=%d, fts=%d)\n", featureCount, ftsCount)
				}
			}

			if info, err := os.Stat(cfg.DBPath); err == nil {
				sizeMB := float64(info.Size()) / 1024 / 1024
				fmt.Fprintf(w, "\n=== DB Size: %.1f MB ===\n", sizeMB)
			}

			return nil
		},
	}
}

func checkDir(w io.Writer, name, path string) {
	if info, err := os.Stat(path); err != nil {
		fmt.Fprintf(w, "  %s: %s (NOT FOUND)\n", name, path)
	} else if !info.IsDir() {
		fmt.Fprintf(w, "  %s: %s (NOT A DIRECTORY)\n", name, path)
	} else {
		fmt.Fprintf(w, "  %s: %s (OK)\n", name, path)
	}
}
