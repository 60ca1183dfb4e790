package layout

import (
	"sort"

	"github.com/vanderheijden86/starmap/pkg/model"
)

// EdgeKind distinguishes hard reference links from soft proximity links.
type EdgeKind string

const (
	EdgeReference EdgeKind = "reference"
	EdgeProximity EdgeKind = "proximity"
)

// Edge connects two nodes for drawing. Edges carry no identity between passes.
type Edge struct {
	From     string   `json:"from"`
	To       string   `json:"to"`
	Kind     EdgeKind `json:"kind"`
	Distance float64  `json:"distance"`
}

// link is a reference edge expressed as input indices: pr references issue.
type link struct {
	pr    int
	issue int
}

type pairKey struct{ a, b int }

func makePair(i, j int) pairKey {
	if i > j {
		i, j = j, i
	}
	return pairKey{i, j}
}

// linkSet indexes linked pairs and linked nodes for O(1) lookups in the pair loop.
type linkSet struct {
	pairs map[pairKey]struct{}
	nodes []bool
}

func newLinkSet(n int, links []link) linkSet {
	ls := linkSet{
		pairs: make(map[pairKey]struct{}, len(links)),
		nodes: make([]bool, n),
	}
	for _, l := range links {
		ls.pairs[makePair(l.pr, l.issue)] = struct{}{}
		ls.nodes[l.pr] = true
		ls.nodes[l.issue] = true
	}
	return ls
}

func (ls linkSet) linked(i, j int) bool {
	_, ok := ls.pairs[makePair(i, j)]
	return ok
}

// referenceLinks matches each pull request's reference against issue nodes.
// An issue matches by id first, then by its own reference id. Duplicate ids resolve
// to the first occurrence.
func referenceLinks(nodes []model.Node) []link {
	byID := make(map[string]int)
	byRef := make(map[string]int)
	for i, n := range nodes {
		if n.Kind != model.KindIssue {
			continue
		}
		if _, seen := byID[n.ID]; !seen {
			byID[n.ID] = i
		}
		if n.ReferenceID != "" {
			if _, seen := byRef[n.ReferenceID]; !seen {
				byRef[n.ReferenceID] = i
			}
		}
	}

	var links []link
	for i, n := range nodes {
		if n.Kind != model.KindPullRequest || n.ReferenceID == "" {
			continue
		}
		target, ok := byID[n.ReferenceID]
		if !ok {
			target, ok = byRef[n.ReferenceID]
		}
		if !ok || target == i {
			continue
		}
		links = append(links, link{pr: i, issue: target})
	}
	return links
}

// ReferenceEdges returns one edge per pull request whose reference resolves to an
// issue in nodes. From is the pull request, To the issue.
func ReferenceEdges(nodes []model.Node) []Edge {
	links := referenceLinks(nodes)
	edges := make([]Edge, 0, len(links))
	for _, l := range links {
		edges = append(edges, Edge{
			From:     nodes[l.pr].ID,
			To:       nodes[l.issue].ID,
			Kind:     EdgeReference,
			Distance: ReferenceEdgeDistance,
		})
	}
	return edges
}

// proximityEdges compares every same-category pair and keeps those closer than
// threshold that are not already reference-linked.
func proximityEdges(nodes []model.Node, pos []Position, threshold float64, ls linkSet) []Edge {
	var edges []Edge
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			if nodes[i].Category != nodes[j].Category || ls.linked(i, j) {
				continue
			}
			d := PolarDistance(pos[i], pos[j])
			if d >= threshold {
				continue
			}
			edges = append(edges, Edge{
				From:     nodes[i].ID,
				To:       nodes[j].ID,
				Kind:     EdgeProximity,
				Distance: d,
			})
		}
	}
	return edges
}

// ProximityEdges returns same-category edges for nodes placed at positions.
// Nodes without a position are skipped.
func ProximityEdges(nodes []model.Node, positions map[string]Position, threshold float64) []Edge {
	placed := make([]model.Node, 0, len(nodes))
	pos := make([]Position, 0, len(nodes))
	for _, n := range nodes {
		p, ok := positions[n.ID]
		if !ok {
			continue
		}
		placed = append(placed, n)
		pos = append(pos, p)
	}
	ls := newLinkSet(len(placed), referenceLinks(placed))
	return proximityEdges(placed, pos, threshold, ls)
}

// SelectEdges merges edge lists, sorts them closest first and keeps at most limit.
// Reference edges win distance ties.
func SelectEdges(limit int, lists ...[]Edge) []Edge {
	var all []Edge
	for _, l := range lists {
		all = append(all, l...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.Distance != b.Distance {
			return a.Distance < b.Distance
		}
		if a.Kind != b.Kind {
			return a.Kind == EdgeReference
		}
		if a.From != b.From {
			return a.From < b.From
		}
		return a.To < b.To
	})
	if limit < 0 {
		limit = 0
	}
	if len(all) > limit {
		all = all[:limit]
	}
	if all == nil {
		all = []Edge{}
	}
	return all
}
