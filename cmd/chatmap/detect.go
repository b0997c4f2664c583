package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Zuo-Peng/chatmap/internal/chatmap"
	"github.com/Zuo-Peng/chatmap/internal/config"
	"github.com/Zuo-Peng/chatmap/internal/parse"
)

// detectReport describes how an export was read.
type detectReport struct {
	File      string   `json:"file" yaml:"file"`
	Format    string   `json:"format" yaml:"format"`
	Chat      string   `json:"chat,omitempty" yaml:"chat,omitempty"`
	Dialect   string   `json:"dialect,omitempty" yaml:"dialect,omitempty"`
	DateOrder string   `json:"date_order,omitempty" yaml:"date_order,omitempty"`
	Lines     int      `json:"lines,omitempty" yaml:"lines,omitempty"`
	Messages  int      `json:"messages" yaml:"messages"`
	Untimed   int      `json:"untimed" yaml:"untimed"`
	Locations int      `json:"locations" yaml:"locations"`
	Paired    int      `json:"paired" yaml:"paired"`
	Media     int      `json:"media" yaml:"media"`
	Sources   []string `json:"sources,omitempty" yaml:"sources,omitempty"`
	SessionID string   `json:"session_id,omitempty" yaml:"session_id,omitempty"`
}

func detectCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "detect <export>",
		Short: "Report the format, dialect and date order of an export",
		Long: `Read an export without writing a map and report what chatmap sees in it:
the chat app, the WhatsApp dialect (iOS or Android), the inferred date order
and how many locations could be paired.

Example:
  chatmap detect _chat.txt
  chatmap detect -o yaml result.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			inputs, err := readInputs(args, cfg.MaxInputBytes)
			if err != nil {
				return err
			}
			rep, err := buildReport(inputs[0], cfg.Options(), parse.WithIgnore(cfg.Ignore...))
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), rep, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format (text|json|yaml)")

	return cmd
}

func buildReport(in chatmap.Input, opts chatmap.Options, popts ...parse.Option) (*detectReport, error) {
	r, err := chatmap.Build(in.Text, opts, popts...)
	if err != nil {
		return nil, err
	}

	rep := &detectReport{
		File:      in.Name,
		Format:    r.Meta.Format.String(),
		Chat:      r.Meta.Chat,
		Lines:     r.Meta.Lines,
		Messages:  len(r.Messages),
		Sources:   r.Sources(),
		SessionID: r.Meta.SessionID,
	}
	if r.Meta.Format == parse.FormatWhatsApp {
		rep.Dialect = r.Meta.Dialect.String()
	}
	if r.Meta.DateOrder != nil {
		rep.DateOrder = r.Meta.DateOrder.String()
	}
	for _, m := range r.Messages {
		if !m.HasTime() {
			rep.Untimed++
		}
		if m.FileType != parse.FileNone {
			rep.Media++
		}
	}
	rep.Locations = len(r.Collection.Features)
	for i := range r.Collection.Features {
		if !r.Collection.Features[i].LocationOnly() {
			rep.Paired++
		}
	}
	return rep, nil
}

func writeReport(w io.Writer, rep *detectReport, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rep); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
		return writeReportText(w, rep)
	default:
		return fmt.Errorf("unknown output format %q (text|json|yaml)", format)
	}
}

func writeReportText(w io.Writer, rep *detectReport) error {
	fmt.Fprintln(w, "=== Export Detection ===")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "File: %s\n", rep.File)
	fmt.Fprintf(w, "Format: %s\n", rep.Format)
	if rep.Chat != "" {
		fmt.Fprintf(w, "Chat: %s\n", rep.Chat)
	}
	if rep.Dialect != "" {
		fmt.Fprintf(w, "Dialect: %s\n", rep.Dialect)
	}
	if rep.DateOrder != "" {
		fmt.Fprintf(w, "Date order: %s\n", rep.DateOrder)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Messages: %d (%d without a usable date)\n", rep.Messages, rep.Untimed)
	fmt.Fprintf(w, "Media: %d\n", rep.Media)
	fmt.Fprintf(w, "Locations: %d (%d paired)\n", rep.Locations, rep.Paired)

	if rep.Locations == 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "No locations found.")
		if rep.Dialect == parse.DialectUnknown.String() {
			fmt.Fprintln(w, "Tip: no line matched a WhatsApp message; check the export was not edited.")
		}
	}
	return nil
}
