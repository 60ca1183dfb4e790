// Package export writes layout results to files for external renderers and static viewers.
//
// Every exporter works from a Document, the flattened output contract built once per
// layout pass: nodes in importance order with their polar placement, the retained
// edges, and per-category/kind/module aggregates.
package export

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/vanderheijden86/starmap/pkg/layout"
	"github.com/vanderheijden86/starmap/pkg/model"
	"github.com/vanderheijden86/starmap/pkg/version"
)

// ErrNoNodes is returned by exporters that cannot produce anything useful from an
// empty document.
var ErrNoNodes = errors.New("no nodes to export")

// DefaultDescription is written into the document metadata.
const DefaultDescription = "Higher-priority tasks sit closer to the center."

// Document is the serialized form of one layout pass.
type Document struct {
	GeneratedAt time.Time         `json:"generated_at"`
	Version     string            `json:"version"`
	DataHash    string            `json:"data_hash"`
	Metadata    map[string]string `json:"metadata"`
	Nodes       []NodeRecord      `json:"nodes"`
	Edges       []layout.Edge     `json:"edges"`
	Summary     Summary           `json:"summary"`
}

// NodeRecord is one placed node.
type NodeRecord struct {
	ID          string           `json:"id"`
	Label       string           `json:"label"`
	Module      string           `json:"module,omitempty"`
	Category    model.Category   `json:"category"`
	Kind        model.Kind       `json:"kind"`
	ReferenceID string           `json:"reference_id,omitempty"`
	Status      model.Status     `json:"status"`
	Difficulty  model.Difficulty `json:"difficulty"`
	Priority    float64          `json:"priority"`
	Importance  float64          `json:"importance"`
	Rank        int              `json:"rank"` // 1 is the most important node
	Radius      float64          `json:"radius"`
	Angle       float64          `json:"angle"`
	Size        float64          `json:"size"`
	URL         string           `json:"url,omitempty"`
}

// Summary aggregates a document.
type Summary struct {
	TotalNodes     int            `json:"total_nodes"`
	TotalEdges     int            `json:"total_edges"`
	ReferenceEdges int            `json:"reference_edges"`
	ProximityEdges int            `json:"proximity_edges"`
	ByCategory     map[string]int `json:"by_category"`
	ByKind         map[string]int `json:"by_kind"`
	ByModule       map[string]int `json:"by_module"`
	Quality        layout.Quality `json:"quality"`
}

// DocumentOptions carries provenance that is not part of the layout result.
type DocumentOptions struct {
	Title       string
	Repository  string
	GeneratedAt time.Time // zero means now
}

// BuildDocument flattens res into a Document. nodes must be the slice res was
// computed from; ids missing from res are ignored.
func BuildDocument(res *layout.Result, nodes []model.Node, opts DocumentOptions) *Document {
	generated := opts.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}

	doc := &Document{
		GeneratedAt: generated.UTC(),
		Version:     version.Version,
		Metadata:    map[string]string{"description": DefaultDescription},
		Nodes:       []NodeRecord{},
		Edges:       []layout.Edge{},
		Summary: Summary{
			ByCategory: map[string]int{},
			ByKind:     map[string]int{},
			ByModule:   map[string]int{},
		},
	}
	if opts.Title != "" {
		doc.Metadata["title"] = opts.Title
	}
	if opts.Repository != "" {
		doc.Metadata["repository"] = opts.Repository
	}
	if res == nil {
		doc.Metadata["node_count"] = "0"
		doc.DataHash = layout.ComputeDataHash(nil)
		return doc
	}
	doc.DataHash = res.DataHash

	byID := make(map[string]model.Node, len(nodes))
	for _, n := range nodes {
		if _, dup := byID[n.ID]; !dup {
			byID[n.ID] = n
		}
	}

	placed := make(map[string]bool, len(res.Order))
	for _, id := range res.Order {
		n, ok := byID[id]
		if !ok || placed[id] {
			continue
		}
		placed[id] = true
		pos := res.Positions[id]
		doc.Nodes = append(doc.Nodes, NodeRecord{
			ID:          id,
			Label:       n.Label(),
			Module:      n.Module,
			Category:    n.Category,
			Kind:        n.Kind,
			ReferenceID: n.ReferenceID,
			Status:      n.Status,
			Difficulty:  n.Difficulty,
			Priority:    n.Priority,
			Importance:  round3(res.Importance[id]),
			Rank:        len(doc.Nodes) + 1,
			Radius:      recordRadius(pos.Radius, res),
			Angle:       recordAngle(pos.Angle),
			Size:        round3(res.Size[id]),
			URL:         n.URL,
		})
		doc.Summary.ByCategory[string(n.Category)]++
		doc.Summary.ByKind[string(n.Kind)]++
		module := n.Module
		if module == "" {
			module = "unknown"
		}
		doc.Summary.ByModule[module]++
	}

	doc.Edges = append(doc.Edges, res.Edges...)
	for _, e := range res.Edges {
		switch e.Kind {
		case layout.EdgeReference:
			doc.Summary.ReferenceEdges++
		case layout.EdgeProximity:
			doc.Summary.ProximityEdges++
		}
	}
	doc.Summary.TotalNodes = len(doc.Nodes)
	doc.Summary.TotalEdges = len(doc.Edges)
	doc.Summary.Quality = res.Quality
	doc.Metadata["node_count"] = strconv.Itoa(len(doc.Nodes))
	return doc
}

// Categories returns the categories present in doc in display order.
func (d *Document) Categories() []model.Category {
	var out []model.Category
	for _, c := range model.Categories {
		if d.Summary.ByCategory[string(c)] > 0 {
			out = append(out, c)
		}
	}
	return out
}

// Node returns the record for id.
func (d *Document) Node(id string) (NodeRecord, bool) {
	for _, n := range d.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return NodeRecord{}, false
}

// MaxRadius returns the largest placed radius, or 0 for an empty document.
func (d *Document) MaxRadius() float64 {
	var m float64
	for _, n := range d.Nodes {
		m = math.Max(m, n.Radius)
	}
	return m
}

// sortedKeys returns the keys of m in lexical order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// recordRadius rounds r and keeps it inside the bounds the pass used. Results built by
// hand without bounds are only rounded.
func recordRadius(r float64, res *layout.Result) float64 {
	r = round3(r)
	if res.OuterRadius > res.InnerRadius {
		r = math.Min(math.Max(r, res.InnerRadius), res.OuterRadius)
	}
	return r
}

// recordAngle rounds a and wraps it back into [0, 360), since 359.9995 rounds up to 360.
func recordAngle(a float64) float64 {
	return layout.NormalizeAngle(round3(a))
}

func round3(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*1000) / 1000
}
