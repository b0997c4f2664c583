package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/chatmap/internal/chatmap"
	"github.com/Zuo-Peng/chatmap/internal/config"
	"github.com/Zuo-Peng/chatmap/internal/parse"
)

var errNoLocations = errors.New("no locations found")

// includeFlags overrides the [include] section of the config for one run.
type includeFlags struct {
	photos, videos, audios, text bool
}

func (f *includeFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.photos, "photos", true, "Pair photos with locations")
	cmd.Flags().BoolVar(&f.videos, "videos", true, "Pair videos with locations")
	cmd.Flags().BoolVar(&f.audios, "audios", true, "Pair audio messages with locations")
	cmd.Flags().BoolVar(&f.text, "text", true, "Pair text messages with locations")
}

// apply returns base with every flag the user set on the command line.
func (f *includeFlags) apply(cmd *cobra.Command, base chatmap.Options) chatmap.Options {
	opts := base
	if cmd.Flags().Changed("photos") {
		opts.IncludePhotos = f.photos
	}
	if cmd.Flags().Changed("videos") {
		opts.IncludeVideos = f.videos
	}
	if cmd.Flags().Changed("audios") {
		opts.IncludeAudios = f.audios
	}
	if cmd.Flags().Changed("text") {
		opts.IncludeText = f.text
	}
	return opts
}

func importCmd() *cobra.Command {
	var output string
	var compact bool
	var include includeFlags

	cmd := &cobra.Command{
		Use:   "import <export>...",
		Short: "Convert chat exports into one GeoJSON FeatureCollection",
		Long: `Convert WhatsApp (.txt), Telegram (result.json) and Signal exports, or a
collection written earlier by chatmap, into a GeoJSON FeatureCollection.

Several exports are merged into one collection. Each location is paired with
the closest photo, video, audio or text message sent by the same person within
30 minutes; locations with nothing nearby are kept as "location only" points.

Example:
  chatmap import _chat.txt > trip.geojson
  chatmap import --text=false -o trip.geojson _chat.txt result.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			inputs, err := readInputs(args, cfg.MaxInputBytes)
			if err != nil {
				return err
			}

			results, err := chatmap.Import(cmd.Context(), inputs, include.apply(cmd, cfg.Options()),
				parse.WithIgnore(cfg.Ignore...))
			if err != nil {
				return err
			}

			fc := chatmap.Merge(results)
			if len(fc.Features) == 0 {
				return errNoLocations
			}

			w := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer f.Close()
				w = f
			}
			if err := writeCollection(w, fc, !compact); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d points from %d export(s)\n", len(fc.Features), len(results))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the collection to a file instead of stdout")
	cmd.Flags().BoolVar(&compact, "compact", false, "Write compact JSON")
	include.register(cmd)

	return cmd
}

// readInputs loads export files, refusing anything over maxBytes.
func readInputs(paths []string, maxBytes int64) ([]chatmap.Input, error) {
	inputs := make([]chatmap.Input, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("export not found: %s", p)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%s is a directory", p)
		}
		if maxBytes > 0 && info.Size() > maxBytes {
			return nil, fmt.Errorf("%s is %d bytes, larger than max_input_bytes (%d)", p, info.Size(), maxBytes)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		inputs = append(inputs, chatmap.Input{Name: filepath.Base(p), Text: string(data)})
	}
	return inputs, nil
}

func writeCollection(w io.Writer, fc *chatmap.FeatureCollection, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(fc); err != nil {
		return fmt.Errorf("encode geojson: %w", err)
	}
	return nil
}
