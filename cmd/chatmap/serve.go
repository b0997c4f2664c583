package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/chatmap/internal/api"
	"github.com/Zuo-Peng/chatmap/internal/config"
)

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the converter over HTTP",
		Long: `Start an HTTP server that converts exports posted to it.

  POST /api/v1/maps?photos=true&videos=true&audios=true&text=true
       body: the raw export, response: the GeoJSON FeatureCollection
  GET  /health`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if addr == "" {
				addr = cfg.Addr
			}

			srv := api.NewServer(addr, api.Options{
				Pairing:  cfg.Options(),
				Ignore:   cfg.Ignore,
				MaxBytes: cfg.MaxInputBytes,
			})
			if err := srv.Start(cmd.Context()); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address, default from config")

	return cmd
}
