package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/starmap/pkg/layout"
	"github.com/vanderheijden86/starmap/pkg/model"
	"github.com/vanderheijden86/starmap/pkg/testutil"
)

var fixedTime = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func buildDoc(t *testing.T, nodes []model.Node) *Document {
	t.Helper()
	engine, err := layout.NewEngine(layout.DefaultConfig())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	res := engine.Compute(nodes)
	return BuildDocument(res, nodes, DocumentOptions{Title: "Test map", Repository: "acme/widgets", GeneratedAt: fixedTime})
}

func TestBuildDocument_Scenario(t *testing.T) {
	doc := buildDoc(t, testutil.Scenario())

	if len(doc.Nodes) != 3 {
		t.Fatalf("nodes = %d, want 3", len(doc.Nodes))
	}
	for i, want := range []string{"I1", "P1", "I2"} {
		if doc.Nodes[i].ID != want {
			t.Errorf("nodes[%d] = %s, want %s", i, doc.Nodes[i].ID, want)
		}
		if doc.Nodes[i].Rank != i+1 {
			t.Errorf("nodes[%d].Rank = %d, want %d", i, doc.Nodes[i].Rank, i+1)
		}
	}
	if doc.Nodes[0].Label != "Crash on start" {
		t.Errorf("label = %q", doc.Nodes[0].Label)
	}
	if doc.Nodes[0].Importance != 3 {
		t.Errorf("importance = %v, want 3", doc.Nodes[0].Importance)
	}

	s := doc.Summary
	if s.TotalNodes != 3 || s.ByCategory["security"] != 2 || s.ByCategory["documentation"] != 1 {
		t.Errorf("category aggregates wrong: %+v", s)
	}
	if s.ByKind["issue"] != 2 || s.ByKind["pr"] != 1 {
		t.Errorf("kind aggregates wrong: %+v", s.ByKind)
	}
	if s.ByModule["unknown"] != 3 {
		t.Errorf("module aggregates wrong: %+v", s.ByModule)
	}
	if s.ReferenceEdges != 1 {
		t.Errorf("reference edges = %d, want 1", s.ReferenceEdges)
	}
	if s.TotalEdges != len(doc.Edges) || s.ReferenceEdges+s.ProximityEdges != s.TotalEdges {
		t.Errorf("edge totals inconsistent: %+v", s)
	}

	if doc.Metadata["node_count"] != "3" || doc.Metadata["repository"] != "acme/widgets" {
		t.Errorf("metadata = %v", doc.Metadata)
	}
	if !doc.GeneratedAt.Equal(fixedTime) {
		t.Errorf("generated_at = %v", doc.GeneratedAt)
	}
	if doc.DataHash != layout.ComputeDataHash(testutil.Scenario()) {
		t.Errorf("data hash mismatch")
	}

	cats := doc.Categories()
	if len(cats) != 2 || cats[0] != model.CategorySecurity || cats[1] != model.CategoryDocumentation {
		t.Errorf("categories = %v", cats)
	}
	if _, ok := doc.Node("P1"); !ok {
		t.Error("Node(P1) not found")
	}
	if _, ok := doc.Node("nope"); ok {
		t.Error("Node(nope) should not be found")
	}
}

func TestBuildDocument_NilResult(t *testing.T) {
	doc := BuildDocument(nil, nil, DocumentOptions{})

	if doc.Nodes == nil || doc.Edges == nil {
		t.Fatal("empty document should use empty slices, not nil")
	}
	if doc.DataHash != "empty" {
		t.Errorf("data hash = %q, want empty", doc.DataHash)
	}
	if doc.MaxRadius() != 0 {
		t.Errorf("max radius = %v", doc.MaxRadius())
	}
	if doc.GeneratedAt.IsZero() {
		t.Error("generated_at should default to now")
	}
}

func TestBuildDocument_RoundsValues(t *testing.T) {
	doc := buildDoc(t, testutil.QuickNodes(20))
	for _, n := range doc.Nodes {
		for name, v := range map[string]float64{"radius": n.Radius, "angle": n.Angle, "size": n.Size} {
			if r := round3(v); r != v {
				t.Errorf("%s %s = %v not rounded to 3 decimals", n.ID, name, v)
			}
		}
	}
}

func TestWriteJSON_Contract(t *testing.T) {
	doc := buildDoc(t, testutil.Scenario())

	var buf bytes.Buffer
	if err := WriteJSON(&buf, doc); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(buf.Bytes(), &raw); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	for _, key := range []string{"generated_at", "version", "data_hash", "metadata", "nodes", "edges", "summary"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing top-level key %q", key)
		}
	}

	nodes := raw["nodes"].([]any)
	first := nodes[0].(map[string]any)
	for _, key := range []string{"id", "label", "category", "kind", "status", "priority", "importance", "rank", "radius", "angle", "size"} {
		if _, ok := first[key]; !ok {
			t.Errorf("node missing key %q", key)
		}
	}

	edges := raw["edges"].([]any)
	edge := edges[0].(map[string]any)
	for _, key := range []string{"from", "to", "kind", "distance"} {
		if _, ok := edge[key]; !ok {
			t.Errorf("edge missing key %q", key)
		}
	}
}

func TestSaveJSON_CreatesParentDirs(t *testing.T) {
	doc := buildDoc(t, testutil.Scenario())
	path := filepath.Join(t.TempDir(), "nested", "out", "layout.json")

	if err := SaveJSON(path, doc); err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	back, err := ReadJSON(f)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if back.DataHash != doc.DataHash || len(back.Nodes) != len(doc.Nodes) {
		t.Errorf("round trip mismatch: hash %s/%s nodes %d/%d", back.DataHash, doc.DataHash, len(back.Nodes), len(doc.Nodes))
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestSaveJSON_RequiresPath(t *testing.T) {
	if err := SaveJSON("", &Document{}); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestBuildDocument_AngleWrapsAfterRounding(t *testing.T) {
	nodes := []model.Node{{ID: "task-7082", Title: "Edge of the circle", Kind: model.KindTodo, Category: model.CategoryTesting, Priority: 1, Status: model.StatusOpen}}
	res := &layout.Result{
		Positions:   map[string]layout.Position{"task-7082": {Radius: 0.3, Angle: 359.9997}},
		Order:       []string{"task-7082"},
		Importance:  map[string]float64{"task-7082": 1},
		Size:        map[string]float64{"task-7082": 22},
		InnerRadius: 0.3,
		OuterRadius: 6.5,
	}
	doc := BuildDocument(res, nodes, DocumentOptions{GeneratedAt: fixedTime})
	if got := doc.Nodes[0].Angle; got != 0 {
		t.Errorf("angle = %v, want 0", got)
	}

	for _, tt := range []struct{ in, want float64 }{
		{359.9994, 359.999},
		{0.0004, 0},
		{180.0006, 180.001},
	} {
		if got := recordAngle(tt.in); got != tt.want {
			t.Errorf("recordAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBuildDocument_RadiusStaysInBounds(t *testing.T) {
	cfg := layout.DefaultConfig()
	cfg.InnerRadius = 0.3333
	cfg.OuterRadius = 6.4996
	engine, err := layout.NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	nodes := testutil.QuickNodes(60)
	doc := BuildDocument(engine.Compute(nodes), nodes, DocumentOptions{GeneratedAt: fixedTime})
	for _, n := range doc.Nodes {
		if n.Radius < cfg.InnerRadius || n.Radius > cfg.OuterRadius {
			t.Errorf("%s radius %v outside [%v, %v]", n.ID, n.Radius, cfg.InnerRadius, cfg.OuterRadius)
		}
	}

	// 0.3334 rounds to 0.333 and 6.4996 to 6.5, both outside the bounds.
	res := &layout.Result{InnerRadius: 0.3333, OuterRadius: 6.4996}
	if got := recordRadius(0.3334, res); got != 0.3333 {
		t.Errorf("recordRadius below inner = %v, want 0.3333", got)
	}
	if got := recordRadius(6.4996, res); got != 6.4996 {
		t.Errorf("recordRadius above outer = %v, want 6.4996", got)
	}
}

func TestBuildDocument_DuplicateOrderIDs(t *testing.T) {
	nodes := testutil.Scenario()
	engine, err := layout.NewEngine(layout.DefaultConfig())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	res := engine.Compute(nodes)
	res.Order = append(res.Order, res.Order[0])

	doc := BuildDocument(res, nodes, DocumentOptions{GeneratedAt: fixedTime})
	if len(doc.Nodes) != 3 {
		t.Fatalf("nodes = %d, want 3", len(doc.Nodes))
	}
	for i, n := range doc.Nodes {
		if n.Rank != i+1 {
			t.Errorf("%s rank = %d, want %d", n.ID, n.Rank, i+1)
		}
	}
	if doc.Summary.ByCategory["security"] != 2 {
		t.Errorf("duplicate counted twice: %v", doc.Summary.ByCategory)
	}
}
