package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vanderheijden86/starmap/pkg/export"
)

func newReportCmd(a *app) *cobra.Command {
	var (
		raw   bool
		width int
	)

	cmd := &cobra.Command{
		Use:   "report [nodes]",
		Short: "Print the Markdown report, rendered when stdout is a terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.document(args)
			if err != nil {
				return err
			}
			md := export.GenerateMarkdown(doc, export.MarkdownOptions{Title: a.cfg.Output.Title})

			out := cmd.OutOrStdout()
			if raw || !isTerminal(out) {
				_, err := io.WriteString(out, md)
				return err
			}
			rendered, err := renderMarkdown(md, width)
			if err != nil {
				return err
			}
			_, err = io.WriteString(out, rendered)
			return err
		},
	}

	f := cmd.Flags()
	f.BoolVar(&raw, "raw", false, "print Markdown source even on a terminal")
	f.IntVar(&width, "width", 100, "word wrap width for rendered output")
	return cmd
}

func renderMarkdown(md string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("markdown renderer: %w", err)
	}
	return r.Render(md)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
