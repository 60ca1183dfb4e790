package layout

import (
	"testing"

	"github.com/vanderheijden86/starmap/pkg/model"
)

func TestReferenceEdges(t *testing.T) {
	nodes := []model.Node{
		{ID: "I1", Kind: model.KindIssue},
		{ID: "issue:7", Kind: model.KindIssue, ReferenceID: "7"},
		{ID: "T1", Kind: model.KindTodo},
		{ID: "P1", Kind: model.KindPullRequest, ReferenceID: "I1"},
		{ID: "P2", Kind: model.KindPullRequest, ReferenceID: "7"},
		{ID: "P3", Kind: model.KindPullRequest, ReferenceID: "T1"},      // todo, not an issue
		{ID: "P4", Kind: model.KindPullRequest, ReferenceID: "missing"}, // dangling
		{ID: "P5", Kind: model.KindPullRequest},                         // no reference
	}

	edges := ReferenceEdges(nodes)
	if len(edges) != 2 {
		t.Fatalf("got %d reference edges, want 2: %+v", len(edges), edges)
	}
	want := map[string]string{"P1": "I1", "P2": "issue:7"}
	for _, e := range edges {
		if e.Kind != EdgeReference {
			t.Errorf("edge %s->%s kind = %s", e.From, e.To, e.Kind)
		}
		if e.Distance != ReferenceEdgeDistance {
			t.Errorf("edge %s->%s distance = %v, want %v", e.From, e.To, e.Distance, ReferenceEdgeDistance)
		}
		if want[e.From] != e.To {
			t.Errorf("edge %s->%s, want %s->%s", e.From, e.To, e.From, want[e.From])
		}
	}
}

func TestReferenceLinksPreferIDOverReference(t *testing.T) {
	nodes := []model.Node{
		{ID: "issue:1", Kind: model.KindIssue, ReferenceID: "2"},
		{ID: "2", Kind: model.KindIssue},
		{ID: "pr", Kind: model.KindPullRequest, ReferenceID: "2"},
	}
	links := referenceLinks(nodes)
	if len(links) != 1 || links[0].issue != 1 {
		t.Fatalf("links = %+v, want pr -> index 1", links)
	}
}

func TestReferenceLinksDuplicateIDsFirstWins(t *testing.T) {
	nodes := []model.Node{
		{ID: "I", Kind: model.KindIssue},
		{ID: "I", Kind: model.KindIssue},
		{ID: "P", Kind: model.KindPullRequest, ReferenceID: "I"},
	}
	links := referenceLinks(nodes)
	if len(links) != 1 || links[0].issue != 0 || links[0].pr != 2 {
		t.Fatalf("links = %+v, want {pr:2 issue:0}", links)
	}
}

func TestProximityEdges(t *testing.T) {
	nodes := []model.Node{
		{ID: "a", Kind: model.KindIssue, Category: model.CategorySecurity},
		{ID: "b", Kind: model.KindIssue, Category: model.CategorySecurity},
		{ID: "c", Kind: model.KindIssue, Category: model.CategoryTesting},
		{ID: "d", Kind: model.KindIssue, Category: model.CategorySecurity},
		{ID: "p", Kind: model.KindPullRequest, Category: model.CategorySecurity, ReferenceID: "a"},
		{ID: "unplaced", Kind: model.KindIssue, Category: model.CategorySecurity},
	}
	positions := map[string]Position{
		"a": {Radius: 1, Angle: 10},
		"b": {Radius: 1.2, Angle: 16}, // 0.2, 0.1 -> ~0.22 from a
		"c": {Radius: 1, Angle: 11},   // close to a, other category
		"d": {Radius: 4, Angle: 10},   // same category, too far
		"p": {Radius: 1.05, Angle: 12},
	}

	edges := ProximityEdges(nodes, positions, 0.6)
	got := make(map[[2]string]bool)
	for _, e := range edges {
		if e.Kind != EdgeProximity {
			t.Errorf("unexpected kind %s", e.Kind)
		}
		if e.Distance >= 0.6 {
			t.Errorf("edge %s-%s distance %v not below threshold", e.From, e.To, e.Distance)
		}
		got[[2]string{e.From, e.To}] = true
	}
	if !got[[2]string{"a", "b"}] {
		t.Error("missing proximity edge a-b")
	}
	if !got[[2]string{"b", "p"}] {
		t.Error("missing proximity edge b-p")
	}
	if got[[2]string{"a", "c"}] {
		t.Error("cross-category pair a-c must not get a proximity edge")
	}
	if got[[2]string{"a", "d"}] {
		t.Error("distant pair a-d must not get a proximity edge")
	}
	if got[[2]string{"a", "p"}] {
		t.Error("reference-linked pair a-p must not get a proximity edge")
	}
	if len(edges) != 2 {
		t.Errorf("got %d edges, want 2: %+v", len(edges), edges)
	}
}

func TestSelectEdgesOrderingAndLimit(t *testing.T) {
	refs := []Edge{{From: "p", To: "i", Kind: EdgeReference, Distance: 0.1}}
	prox := []Edge{
		{From: "x", To: "y", Kind: EdgeProximity, Distance: 0.5},
		{From: "b", To: "c", Kind: EdgeProximity, Distance: 0.1},
		{From: "a", To: "c", Kind: EdgeProximity, Distance: 0.3},
	}

	all := SelectEdges(10, prox, refs)
	wantOrder := []string{"p", "b", "a", "x"}
	if len(all) != len(wantOrder) {
		t.Fatalf("got %d edges, want %d", len(all), len(wantOrder))
	}
	for i, from := range wantOrder {
		if all[i].From != from {
			t.Errorf("edge %d from %s, want %s", i, all[i].From, from)
		}
	}

	capped := SelectEdges(2, refs, prox)
	if len(capped) != 2 || capped[0].Kind != EdgeReference || capped[1].From != "b" {
		t.Errorf("capped = %+v", capped)
	}

	if got := SelectEdges(0, refs); got == nil || len(got) != 0 {
		t.Errorf("SelectEdges(0) = %#v, want empty non-nil", got)
	}
	if got := SelectEdges(-1); got == nil || len(got) != 0 {
		t.Errorf("SelectEdges(-1) = %#v, want empty non-nil", got)
	}
}
