package layout

import (
	"testing"

	"github.com/vanderheijden86/starmap/pkg/model"
)

func TestComputeDataHash(t *testing.T) {
	nodes := []model.Node{
		{ID: "a", Kind: model.KindIssue, Priority: 1},
		{ID: "b", Kind: model.KindPullRequest, ReferenceID: "a", Priority: 2},
	}
	h1 := ComputeDataHash(nodes)
	if len(h1) != 16 {
		t.Fatalf("hash length = %d, want 16", len(h1))
	}
	if h2 := ComputeDataHash(nodes); h1 != h2 {
		t.Errorf("hash not stable: %s vs %s", h1, h2)
	}

	changed := append([]model.Node(nil), nodes...)
	changed[1].Priority = 2.5
	if ComputeDataHash(changed) == h1 {
		t.Error("priority change did not change hash")
	}

	swapped := []model.Node{nodes[1], nodes[0]}
	if ComputeDataHash(swapped) == h1 {
		t.Error("input order should be part of the hash")
	}

	retitled := append([]model.Node(nil), nodes...)
	retitled[0].Title = "cosmetic"
	if ComputeDataHash(retitled) != h1 {
		t.Error("title does not affect layout and should not change the hash")
	}

	if ComputeDataHash(nil) != "empty" {
		t.Error("empty input should hash to \"empty\"")
	}
}

func TestComputeConfigHash(t *testing.T) {
	a := DefaultConfig()
	b := DefaultConfig()
	if ComputeConfigHash(a) != ComputeConfigHash(b) {
		t.Error("equal configs hash differently")
	}
	b.Iterations++
	if ComputeConfigHash(a) == ComputeConfigHash(b) {
		t.Error("iteration change did not change config hash")
	}
}
