package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/starmap/pkg/export"
	"github.com/vanderheijden86/starmap/pkg/layout"
	"github.com/vanderheijden86/starmap/pkg/loader"
	"github.com/vanderheijden86/starmap/pkg/testutil"
	"github.com/vanderheijden86/starmap/pkg/version"
)

// run executes the CLI with an isolated config directory and returns stdout and stderr.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("STARMAP_QUIET", "1")
	t.Setenv("STARMAP_ITERATIONS", "")
	t.Setenv("STARMAP_MAX_EDGES", "")

	root := newRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func scenarioFile(t *testing.T) string {
	t.Helper()
	return testutil.WriteNodesFile(t, t.TempDir(), "nodes.jsonl", testutil.Scenario())
}

func TestLayoutWritesJSONToStdout(t *testing.T) {
	stdout, _, err := run(t, "layout", scenarioFile(t))
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	doc, err := export.ReadJSON(strings.NewReader(stdout))
	if err != nil {
		t.Fatalf("stdout is not a document: %v\n%s", err, stdout)
	}
	if len(doc.Nodes) != 3 {
		t.Fatalf("nodes = %d, want 3", len(doc.Nodes))
	}
	wantOrder := []string{"I1", "P1", "I2"}
	for i, id := range wantOrder {
		if doc.Nodes[i].ID != id {
			t.Errorf("node %d = %s, want %s", i, doc.Nodes[i].ID, id)
		}
	}
	if doc.Summary.ReferenceEdges != 1 {
		t.Errorf("reference edges = %d, want 1", doc.Summary.ReferenceEdges)
	}
}

func TestLayoutWritesAllTargets(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "out", "map.json")
	dbPath := filepath.Join(dir, "out", "map.sqlite3")
	svgPath := filepath.Join(dir, "out", "map.svg")
	mdPath := filepath.Join(dir, "out", "map.md")

	stdout, _, err := run(t, "layout", scenarioFile(t),
		"-o", jsonPath, "--sqlite", dbPath, "--snapshot", svgPath, "--markdown", mdPath, "--summary")
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	for _, p := range []string{jsonPath, dbPath, svgPath, mdPath} {
		if info, err := os.Stat(p); err != nil || info.Size() == 0 {
			t.Errorf("%s not written: %v", p, err)
		}
		if !strings.Contains(stdout, "wrote "+p) {
			t.Errorf("stdout does not report %s:\n%s", p, stdout)
		}
	}
	if !strings.Contains(stdout, "Star map summary") {
		t.Errorf("summary missing:\n%s", stdout)
	}
	if !strings.Contains(stdout, "security") || !strings.Contains(stdout, "documentation") {
		t.Errorf("category breakdown missing:\n%s", stdout)
	}
}

func TestLayoutSummaryGoesToStderrWithStdoutJSON(t *testing.T) {
	stdout, stderr, err := run(t, "layout", scenarioFile(t), "--summary")
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if strings.Contains(stdout, "Star map summary") {
		t.Error("summary mixed into JSON output")
	}
	if !strings.Contains(stderr, "Star map summary") {
		t.Errorf("summary missing from stderr:\n%s", stderr)
	}
}

func TestLayoutMetrics(t *testing.T) {
	out := filepath.Join(t.TempDir(), "map.json")
	stdout, _, err := run(t, "layout", scenarioFile(t), "-o", out, "--metrics")
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	start := strings.Index(stdout, "{")
	if start < 0 {
		t.Fatalf("no metrics JSON in output:\n%s", stdout)
	}
	var snap struct {
		Timings []struct {
			Name  string `json:"name"`
			Count int64  `json:"count"`
		} `json:"timings"`
	}
	if err := json.Unmarshal([]byte(stdout[start:]), &snap); err != nil {
		t.Fatalf("metrics JSON: %v", err)
	}
	seen := map[string]bool{}
	for _, tm := range snap.Timings {
		seen[tm.Name] = tm.Count > 0
	}
	for _, name := range []string{"node_load", "rank_compute", "json_export"} {
		if !seen[name] {
			t.Errorf("metric %s not recorded (have %v)", name, seen)
		}
	}
}

func TestLayoutFlagOverrides(t *testing.T) {
	stdout, _, err := run(t, "layout", scenarioFile(t), "--max-edges", "0")
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	doc, err := export.ReadJSON(strings.NewReader(stdout))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(doc.Edges) != 0 {
		t.Errorf("edges = %d with --max-edges 0", len(doc.Edges))
	}
}

func TestLayoutRejectsInvalidOverrides(t *testing.T) {
	_, _, err := run(t, "layout", scenarioFile(t), "--inner-radius", "9")
	if !errors.Is(err, layout.ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestLayoutReadsConfigFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "layout:\n  max_rendered_edges: 0\noutput:\n  title: Tidescope\n"
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	stdout, _, err := run(t, "--config", cfgPath, "layout", scenarioFile(t))
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	doc, err := export.ReadJSON(strings.NewReader(stdout))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(doc.Edges) != 0 {
		t.Errorf("edges = %d, config set max_rendered_edges 0", len(doc.Edges))
	}
	if doc.Metadata["title"] != "Tidescope" {
		t.Errorf("title = %q", doc.Metadata["title"])
	}
}

func TestMissingConfigFileFails(t *testing.T) {
	_, _, err := run(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "rank", scenarioFile(t))
	if err == nil {
		t.Fatal("expected error for missing --config file")
	}
}

func TestMissingInputFails(t *testing.T) {
	_, _, err := run(t, "layout", filepath.Join(t.TempDir(), "missing.jsonl"))
	if !errors.Is(err, loader.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestLayoutFindsFileInDirectory(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteNodesFile(t, dir, "nodes.jsonl", testutil.Scenario())
	stdout, _, err := run(t, "rank", dir)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if !strings.Contains(stdout, "I1") {
		t.Errorf("rank output missing I1:\n%s", stdout)
	}
}

func TestRankTable(t *testing.T) {
	stdout, _, err := run(t, "rank", scenarioFile(t))
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 4 {
		t.Fatalf("lines = %d, want header + 3:\n%s", len(lines), stdout)
	}
	if !strings.HasPrefix(lines[0], "RANK") {
		t.Errorf("header = %q", lines[0])
	}
	for i, id := range []string{"I1", "P1", "I2"} {
		fields := strings.Fields(lines[i+1])
		if len(fields) < 2 || fields[1] != id {
			t.Errorf("row %d = %q, want id %s", i+1, lines[i+1], id)
		}
	}
	if !strings.Contains(lines[1], "3.000") {
		t.Errorf("I1 importance should be 2.5 × 1.2 = 3.000: %q", lines[1])
	}
}

func TestRankJSONLimit(t *testing.T) {
	stdout, _, err := run(t, "rank", scenarioFile(t), "--json", "-n", "2")
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	var entries []rankEntry
	if err := json.Unmarshal([]byte(stdout), &entries); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].ID != "I1" || entries[0].Rank != 1 || entries[1].ID != "P1" {
		t.Errorf("entries = %+v", entries)
	}
	if entries[0].Radius > entries[1].Radius {
		t.Errorf("rank 1 radius %.3f beyond rank 2 radius %.3f", entries[0].Radius, entries[1].Radius)
	}
}

func TestEdgesCommand(t *testing.T) {
	file := scenarioFile(t)

	stdout, _, err := run(t, "edges", file, "--json")
	if err != nil {
		t.Fatalf("edges: %v", err)
	}
	var edges []layout.Edge
	if err := json.Unmarshal([]byte(stdout), &edges); err != nil {
		t.Fatalf("json: %v", err)
	}
	var ref *layout.Edge
	for i := range edges {
		if edges[i].Kind == layout.EdgeReference {
			ref = &edges[i]
		}
	}
	if ref == nil || ref.From != "P1" || ref.To != "I1" || ref.Distance != layout.ReferenceEdgeDistance {
		t.Errorf("reference edge = %+v", ref)
	}

	stdout, _, err = run(t, "edges", file, "--kind", "reference")
	if err != nil {
		t.Fatalf("edges --kind: %v", err)
	}
	if !strings.Contains(stdout, "1 edges") {
		t.Errorf("filtered table:\n%s", stdout)
	}

	if _, _, err := run(t, "edges", file, "--kind", "gravity"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestSnapshotCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "map.png")
	stdout, _, err := run(t, "snapshot", scenarioFile(t), "-o", out, "--preset", "roomy")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("output is not a PNG")
	}
	if !strings.Contains(stdout, out) {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestSnapshotEmptyInput(t *testing.T) {
	file := testutil.WriteNodesFile(t, t.TempDir(), "nodes.jsonl", testutil.Empty())
	out := filepath.Join(t.TempDir(), "map.svg")
	_, _, err := run(t, "snapshot", file, "-o", out)
	if !errors.Is(err, export.ErrNoNodes) {
		t.Fatalf("err = %v, want ErrNoNodes", err)
	}
}

func TestWatchOnce(t *testing.T) {
	stdout, _, err := run(t, "watch", scenarioFile(t), "--once")
	if err != nil {
		t.Fatalf("watch --once: %v", err)
	}
	if !strings.HasPrefix(stdout, "3 nodes, 1 reference") {
		t.Errorf("summary = %q", stdout)
	}
	if !strings.Contains(stdout, "top I1") {
		t.Errorf("summary = %q", stdout)
	}
}

func TestVersion(t *testing.T) {
	stdout, _, err := run(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if strings.TrimSpace(stdout) != "starmap "+version.Version {
		t.Errorf("version = %q", stdout)
	}
}

func TestReportPrintsMarkdownWhenPiped(t *testing.T) {
	stdout, _, err := run(t, "report", scenarioFile(t))
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if !strings.HasPrefix(stdout, "# Star map\n") {
		t.Errorf("report header = %q", strings.SplitN(stdout, "\n", 2)[0])
	}
	for _, want := range []string{"| 1 | I1 |", "```mermaid", "## Ranking"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestConfigInitDefaultsAndShow(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "nested", "config.yaml")
	stdout, _, err := run(t, "config", "init", "--defaults", "--config", cfgPath)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(stdout, "wrote "+cfgPath) {
		t.Errorf("init output = %q", stdout)
	}
	if _, err := os.Stat(cfgPath); err != nil {
		t.Fatalf("config not written: %v", err)
	}

	stdout, _, err = run(t, "config", "show", "--config", cfgPath, "--iterations", "7")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(stdout, "iterations: 7") {
		t.Errorf("flag override missing from effective config:\n%s", stdout)
	}
	if !strings.Contains(stdout, "snapshot_format: svg") {
		t.Errorf("defaults missing:\n%s", stdout)
	}
}
