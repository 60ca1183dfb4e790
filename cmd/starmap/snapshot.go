package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/starmap/pkg/export"
)

func newSnapshotCmd(a *app) *cobra.Command {
	var (
		output string
		format string
		preset string
		title  string
		labels int
	)
	cmd := &cobra.Command{
		Use:   "snapshot [nodes]",
		Short: "Render a static SVG or PNG preview of the star map",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.document(args)
			if err != nil {
				return err
			}
			opts := a.snapshotOptions()
			if output == "" {
				f := format
				if f == "" {
					f = a.cfg.Output.SnapshotFormat
				}
				output = "star_map." + f
			}
			opts.Path = a.outputPath(output)
			opts.Format = format
			opts.Document = doc
			opts.LabelCount = labels
			if cmd.Flags().Changed("preset") {
				opts.Preset = preset
			}
			if cmd.Flags().Changed("title") {
				opts.Title = title
			}
			if err := export.SaveSnapshot(opts); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", opts.Path)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", "", "output path; the extension picks the format (default star_map.<format>)")
	f.StringVar(&format, "format", "", "svg or png, overriding the extension")
	f.StringVar(&preset, "preset", "compact", "canvas preset: compact or roomy")
	f.StringVar(&title, "title", "", "header title")
	f.IntVar(&labels, "labels", 0, "label the top n nodes (0 uses the preset default)")
	return cmd
}
