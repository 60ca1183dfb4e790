package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/starmap/pkg/model"
)

// AssertNodeCount fails if the slice length differs from expected.
func AssertNodeCount(t *testing.T, nodes []model.Node, expected int) {
	t.Helper()
	if len(nodes) != expected {
		t.Errorf("expected %d nodes, got %d", expected, len(nodes))
	}
}

// AssertNoDuplicateIDs fails on repeated node IDs.
func AssertNoDuplicateIDs(t *testing.T, nodes []model.Node) {
	t.Helper()
	seen := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if seen[n.ID] {
			t.Errorf("duplicate node ID: %s", n.ID)
		}
		seen[n.ID] = true
	}
}

// AssertAllValid fails if any node fails validation.
func AssertAllValid(t *testing.T, nodes []model.Node) {
	t.Helper()
	for i := range nodes {
		if err := nodes[i].Validate(); err != nil {
			t.Errorf("node %d (%s) invalid: %v", i, nodes[i].ID, err)
		}
	}
}

// AssertReferencesResolve fails if a pull request references an issue not in nodes.
func AssertReferencesResolve(t *testing.T, nodes []model.Node) {
	t.Helper()
	issues := make(map[string]bool)
	for _, n := range nodes {
		if n.Kind == model.KindIssue {
			issues[n.ID] = true
		}
	}
	for _, n := range nodes {
		if n.Kind == model.KindPullRequest && !issues[n.ReferenceID] {
			t.Errorf("pull request %s references unknown issue %q", n.ID, n.ReferenceID)
		}
	}
}

// AssertJSONEqual compares two values after JSON round-tripping.
// Useful for comparing structs that may have different Go representations
// but equivalent JSON forms.
func AssertJSONEqual(t *testing.T, expected, actual any) {
	t.Helper()

	expectedJSON, err := json.Marshal(expected)
	if err != nil {
		t.Fatalf("failed to marshal expected: %v", err)
	}

	actualJSON, err := json.Marshal(actual)
	if err != nil {
		t.Fatalf("failed to marshal actual: %v", err)
	}

	if string(expectedJSON) != string(actualJSON) {
		t.Errorf("JSON mismatch:\nexpected: %s\nactual:   %s", expectedJSON, actualJSON)
	}
}

// WriteNodesFile writes nodes as JSONL to dir/name and returns the path.
func WriteNodesFile(t *testing.T, dir, name string, nodes []model.Node) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(ToJSONL(nodes)), 0o644); err != nil {
		t.Fatalf("failed to write nodes file: %v", err)
	}
	return path
}

// FindNode returns the node with id, or nil.
func FindNode(nodes []model.Node, id string) *model.Node {
	for i := range nodes {
		if nodes[i].ID == id {
			return &nodes[i]
		}
	}
	return nil
}

// CountByKind tallies nodes per source kind.
func CountByKind(nodes []model.Node) map[model.Kind]int {
	counts := make(map[model.Kind]int)
	for _, n := range nodes {
		counts[n.Kind]++
	}
	return counts
}

// GetIDs returns node IDs in input order.
func GetIDs(nodes []model.Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}
