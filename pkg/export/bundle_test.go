package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vanderheijden86/starmap/pkg/testutil"
)

func TestWriteAll(t *testing.T) {
	doc := buildDoc(t, testutil.QuickConstellations(3, 1))
	dir := t.TempDir()
	targets := Targets{
		JSONPath:     filepath.Join(dir, "layout.json"),
		SQLitePath:   filepath.Join(dir, "layout.sqlite3"),
		SnapshotPath: filepath.Join(dir, "layout.svg"),
		MarkdownPath: filepath.Join(dir, "layout.md"),
		SQLite:       DefaultSQLiteOptions(),
		Snapshot:     SnapshotOptions{Preset: "roomy"},
	}

	if err := WriteAll(context.Background(), doc, targets); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	for _, p := range []string{targets.JSONPath, targets.SQLitePath, targets.SnapshotPath, targets.MarkdownPath} {
		if info, err := os.Stat(p); err != nil || info.Size() == 0 {
			t.Errorf("%s not written (err %v)", p, err)
		}
	}
}

func TestWriteAll_SkipsEmptyTargets(t *testing.T) {
	if !(Targets{}).Empty() {
		t.Fatal("zero Targets should be empty")
	}
	if err := WriteAll(context.Background(), &Document{}, Targets{}); err != nil {
		t.Errorf("WriteAll with no targets: %v", err)
	}
}

func TestWriteAll_PropagatesErrors(t *testing.T) {
	empty := BuildDocument(nil, nil, DocumentOptions{})
	err := WriteAll(context.Background(), empty, Targets{SnapshotPath: filepath.Join(t.TempDir(), "x.svg")})
	if !errors.Is(err, ErrNoNodes) {
		t.Errorf("err = %v, want ErrNoNodes", err)
	}
}

func TestWriteAll_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := filepath.Join(t.TempDir(), "layout.json")
	err := WriteAll(ctx, buildDoc(t, testutil.Scenario()), Targets{JSONPath: path})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Errorf("file written despite cancellation")
	}
}
