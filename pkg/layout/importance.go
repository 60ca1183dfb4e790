package layout

import (
	"sort"

	"github.com/vanderheijden86/starmap/pkg/model"
)

// DifficultyModifier scales raw priority so quick wins outrank slow burns of equal
// priority. Unrecognized difficulties use 1.0.
func DifficultyModifier(d model.Difficulty) float64 {
	switch d {
	case model.DifficultyEntry:
		return 1.2
	case model.DifficultyIntermediate:
		return 1.0
	case model.DifficultyAdvanced:
		return 0.75
	default:
		return 1.0
	}
}

// Importance is the value a node is ranked by.
func Importance(n model.Node) float64 {
	return n.Priority * DifficultyModifier(n.Difficulty)
}

// Ranked is one entry of a rank order.
type Ranked struct {
	Index      int     // position in the input slice
	ID         string  // node id
	Importance float64 // priority × difficulty modifier
}

// Rank orders nodes from most to least important. Ties keep input order.
func Rank(nodes []model.Node) []Ranked {
	ranked := make([]Ranked, len(nodes))
	for i, n := range nodes {
		ranked[i] = Ranked{Index: i, ID: n.ID, Importance: Importance(n)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Importance > ranked[j].Importance
	})
	return ranked
}
