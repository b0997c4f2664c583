package main

import (
	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/chatmap/internal/config"
	"github.com/Zuo-Peng/chatmap/internal/index"
	"github.com/Zuo-Peng/chatmap/internal/open"
)

func openCmd() *cobra.Command {
	var hitFeatureID int

	cmd := &cobra.Command{
		Use:   "open <mapKey>",
		Short: "Open the original export in $EDITOR at the hit's message",
		Args:  cobra.ExactArgs(1),
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

			return open.OpenFeature(db, args[0], hitFeatureID)
		},
	}

	cmd.Flags().IntVar(&hitFeatureID, "hit", -1, "Feature ID to jump to")

	return cmd
}
