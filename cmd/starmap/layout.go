package main

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/starmap/pkg/export"
	"github.com/vanderheijden86/starmap/pkg/metrics"
)

func newLayoutCmd(a *app) *cobra.Command {
	var (
		output       string
		sqlitePath   string
		snapshotPath string
		markdownPath string
		summary      bool
		showMetrics  bool
	)

	cmd := &cobra.Command{
		Use:   "layout [nodes]",
		Short: "Compute the star map and write placement JSON",
		Long: `Compute polar positions for every node and write them as JSON.

The node argument is a .jsonl/.json file, a directory containing one, or the
name of an input registered in the config file. Without an argument the
directory in $STARMAP_DATA or the working directory is searched.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if showMetrics {
				metrics.SetEnabled(true)
				metrics.ResetAll()
			}

			doc, err := a.document(args)
			if err != nil {
				return err
			}

			toStdout := output == "" || output == "-"
			targets := export.Targets{
				SQLitePath:   a.outputPath(sqlitePath),
				SnapshotPath: a.outputPath(snapshotPath),
				MarkdownPath: a.outputPath(markdownPath),
				SQLite:       export.DefaultSQLiteOptions(),
				Snapshot:     a.snapshotOptions(),
				Markdown:     export.MarkdownOptions{Title: a.cfg.Output.Title},
			}
			targets.SQLite.Title = a.cfg.Output.Title
			if !toStdout {
				targets.JSONPath = a.outputPath(output)
			}
			if !targets.Empty() {
				if err := export.WriteAll(cmd.Context(), doc, targets); err != nil {
					return err
				}
			}

			// Reports go to stderr when stdout carries the JSON.
			report := cmd.OutOrStdout()
			if toStdout {
				if err := export.WriteJSON(cmd.OutOrStdout(), doc); err != nil {
					return err
				}
				report = cmd.ErrOrStderr()
			}
			for _, p := range []string{targets.JSONPath, targets.SQLitePath, targets.SnapshotPath, targets.MarkdownPath} {
				if p != "" {
					fmt.Fprintf(report, "wrote %s\n", p)
				}
			}
			if summary {
				if err := printSummary(report, doc); err != nil {
					return err
				}
			}
			if showMetrics {
				return writeMetrics(report)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", "", "placement JSON path (default stdout)")
	f.StringVar(&sqlitePath, "sqlite", "", "also write a SQLite bundle to this path")
	f.StringVar(&snapshotPath, "snapshot", "", "also write an SVG or PNG preview to this path")
	f.StringVar(&markdownPath, "markdown", "", "also write a Markdown report to this path")
	f.BoolVar(&summary, "summary", false, "print a summary report")
	f.BoolVar(&showMetrics, "metrics", false, "print phase timings as JSON")
	return cmd
}

// document loads the nodes named by args and flattens one layout pass.
func (a *app) document(args []string) (*export.Document, error) {
	ds, res, err := a.compute(args)
	if err != nil {
		return nil, err
	}
	return export.BuildDocument(res, ds.Nodes, export.DocumentOptions{
		Title:      a.cfg.Output.Title,
		Repository: ds.Repository,
	}), nil
}

func (a *app) outputPath(p string) string {
	if p == "" {
		return ""
	}
	return a.cfg.OutputPath(p)
}

func (a *app) snapshotOptions() export.SnapshotOptions {
	return export.SnapshotOptions{
		Title:  a.cfg.Output.Title,
		Preset: a.cfg.Output.SnapshotPreset,
	}
}

func writeMetrics(w io.Writer) error {
	data, err := json.MarshalIndent(metrics.TakeSnapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
