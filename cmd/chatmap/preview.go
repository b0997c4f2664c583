package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/chatmap/internal/config"
	"github.com/Zuo-Peng/chatmap/internal/index"
	"github.com/Zuo-Peng/chatmap/internal/render"
)

func previewCmd() *cobra.Command {
	var hitFeatureID int
	var context int
	var query string
	var geojson bool

	cmd := &cobra.Command{
		Use:   "preview <mapKey>",
		Short: "Preview a map's points with context around a hit",
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

			if geojson {
				s, err := db.MapGeoJSON(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), s)
				return nil
			}

			out, _, err := render.RenderMap(db, args[0], render.Options{
				HitFeatureID: hitFeatureID,
				Context:      context,
				Query:        query,
			})
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().IntVar(&hitFeatureID, "hit", -1, "Feature ID to highlight")
	cmd.Flags().IntVar(&context, "context", 10, "Points before/after hit to show")
	cmd.Flags().StringVar(&query, "query", "", "Search query for keyword highlighting")
	cmd.Flags().BoolVar(&geojson, "geojson", false, "Print the stored FeatureCollection instead")

	return cmd
}
