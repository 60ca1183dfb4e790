package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/starmap/pkg/debug"
	"github.com/vanderheijden86/starmap/pkg/layout"
	"github.com/vanderheijden86/starmap/pkg/loader"
	"github.com/vanderheijden86/starmap/pkg/model"
	"github.com/vanderheijden86/starmap/pkg/ui"
	"github.com/vanderheijden86/starmap/pkg/watcher"
)

func newWatchCmd(a *app) *cobra.Command {
	var (
		plain bool
		once  bool
	)
	cmd := &cobra.Command{
		Use:   "watch [nodes]",
		Short: "Show the ranked star map and recompute it when the node file changes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.resolve(args)
			if err != nil {
				return err
			}
			src := a.source(path)

			if once {
				msg := src.Refresh()
				if msg.Err != nil {
					return msg.Err
				}
				fmt.Fprintln(cmd.OutOrStdout(), ui.SummaryLine(msg))
				return nil
			}

			w, err := watcher.NewWatcher(path,
				watcher.WithDebounce(a.cfg.Watch.Debounce),
				watcher.WithPollInterval(a.cfg.Watch.PollInterval),
				watcher.WithForcePoll(a.cfg.Watch.ForcePoll),
				watcher.WithFingerprinter(watcher.NodeSetFingerprint(a.parseOptions())),
				watcher.WithOnError(func(err error) {
					debug.Log("watch %s: %v", path, err)
				}),
			)
			if err != nil {
				return fmt.Errorf("watching %s: %w", path, err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := w.Start(ctx); err != nil {
				return fmt.Errorf("watching %s: %w", path, err)
			}
			defer w.Stop()

			if plain {
				return watchPlain(ctx, cmd.OutOrStdout(), src, w)
			}
			p := tea.NewProgram(ui.NewModel(src, w), tea.WithAltScreen(), tea.WithContext(ctx))
			if _, err := p.Run(); err != nil && ctx.Err() == nil {
				return fmt.Errorf("running terminal view: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "print a summary line per recompute instead of the terminal view")
	cmd.Flags().BoolVar(&once, "once", false, "print one summary line and exit")
	return cmd
}

// source builds the reload pipeline for path. Recomputes share a memo cache, so an
// unchanged file is served without a new layout pass.
func (a *app) source(path string) ui.Source {
	opts := a.parseOptions()
	return ui.Source{
		Path:  path,
		Title: a.cfg.Output.Title,
		Load: func() ([]model.Node, error) {
			ds, err := loader.Load(path, opts)
			if err != nil {
				return nil, err
			}
			return ds.Nodes, nil
		},
		Engine: layout.NewCachedEngine(a.engine, layout.NewCache(0)),
	}
}

// watchPlain prints one summary line now and one per node-set change until ctx is done.
func watchPlain(ctx context.Context, out io.Writer, src ui.Source, w *watcher.Watcher) error {
	fmt.Fprintln(out, ui.SummaryLine(src.Refresh()))
	for {
		select {
		case <-ctx.Done():
			return nil
		case c := <-w.Changed():
			debug.Log("watch: %s changed, %d -> %d nodes, layout changed %v",
				c.Path, c.Previous.Nodes, c.Current.Nodes, c.LayoutChanged())
			fmt.Fprintln(out, ui.SummaryLine(src.Refresh()))
		}
	}
}
