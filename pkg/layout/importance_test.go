package layout

import (
	"testing"

	"github.com/vanderheijden86/starmap/pkg/model"
)

func TestDifficultyModifier(t *testing.T) {
	tests := []struct {
		d    model.Difficulty
		want float64
	}{
		{model.DifficultyEntry, 1.2},
		{model.DifficultyIntermediate, 1.0},
		{model.DifficultyAdvanced, 0.75},
		{"", 1.0},
		{"expert", 1.0},
	}
	for _, tt := range tests {
		if got := DifficultyModifier(tt.d); got != tt.want {
			t.Errorf("DifficultyModifier(%q) = %v, want %v", tt.d, got, tt.want)
		}
	}
}

func TestRankOrdersByImportance(t *testing.T) {
	nodes := []model.Node{
		{ID: "slow", Priority: 2, Difficulty: model.DifficultyAdvanced},    // 1.5
		{ID: "quick", Priority: 2, Difficulty: model.DifficultyEntry},      // 2.4
		{ID: "mid", Priority: 2, Difficulty: model.DifficultyIntermediate}, // 2.0
		{ID: "odd", Priority: 0.5, Difficulty: "unheard-of"},               // 0.5
	}
	ranked := Rank(nodes)
	want := []string{"quick", "mid", "slow", "odd"}
	if len(ranked) != len(want) {
		t.Fatalf("got %d ranked, want %d", len(ranked), len(want))
	}
	for i, id := range want {
		if ranked[i].ID != id {
			t.Errorf("rank %d = %s, want %s", i, ranked[i].ID, id)
		}
	}
	if ranked[0].Index != 1 {
		t.Errorf("quick index = %d, want 1", ranked[0].Index)
	}
}

func TestRankTiesKeepInputOrder(t *testing.T) {
	nodes := []model.Node{
		{ID: "c", Priority: 1},
		{ID: "a", Priority: 1},
		{ID: "b", Priority: 1},
	}
	ranked := Rank(nodes)
	for i, n := range nodes {
		if ranked[i].ID != n.ID {
			t.Errorf("tie order %d = %s, want %s", i, ranked[i].ID, n.ID)
		}
	}
}

func TestRankEmpty(t *testing.T) {
	if got := Rank(nil); len(got) != 0 {
		t.Errorf("Rank(nil) = %v, want empty", got)
	}
}
