package export

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/starmap/pkg/debug"
)

// Targets lists the files one layout pass should be written to. Empty paths are skipped.
type Targets struct {
	JSONPath     string
	SQLitePath   string
	SnapshotPath string
	MarkdownPath string

	SQLite   SQLiteOptions
	Snapshot SnapshotOptions // Path and Document are filled in by WriteAll
	Markdown MarkdownOptions
}

// Empty reports whether no target is set.
func (t Targets) Empty() bool {
	return t.JSONPath == "" && t.SQLitePath == "" && t.SnapshotPath == "" && t.MarkdownPath == ""
}

// WriteAll writes doc to every target concurrently. The first failure cancels
// exporters that have not started yet and is returned.
func WriteAll(ctx context.Context, doc *Document, t Targets) error {
	g, ctx := errgroup.WithContext(ctx)

	run := func(name, path string, fn func() error) {
		if path == "" {
			return
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			debug.Log("export %s -> %s", name, path)
			if err := fn(); err != nil {
				return fmt.Errorf("%s export: %w", name, err)
			}
			return nil
		})
	}

	run("json", t.JSONPath, func() error {
		return SaveJSON(t.JSONPath, doc)
	})
	run("sqlite", t.SQLitePath, func() error {
		return SaveSQLite(t.SQLitePath, doc, t.SQLite)
	})
	run("snapshot", t.SnapshotPath, func() error {
		opts := t.Snapshot
		opts.Path = t.SnapshotPath
		opts.Document = doc
		return SaveSnapshot(opts)
	})

	run("markdown", t.MarkdownPath, func() error {
		return SaveMarkdown(t.MarkdownPath, doc, t.Markdown)
	})

	return g.Wait()
}
