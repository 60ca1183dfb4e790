package export

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"

	"github.com/vanderheijden86/starmap/pkg/layout"
	"github.com/vanderheijden86/starmap/pkg/model"
)

// MermaidConfig configures the Mermaid graph generation.
type MermaidConfig struct {
	ShowNoEdgesNode bool // If true, adds a "No Edges" node when no edges exist
	MaxNodes        int  // Only the top MaxNodes nodes by rank are drawn; 0 draws all
}

// GenerateMermaidGraph draws the retained edges of doc as a Mermaid flowchart.
// Reference edges are bold, proximity edges dashed; nodes are styled by category.
func GenerateMermaidGraph(doc *Document, config MermaidConfig) string {
	var sb strings.Builder

	sb.WriteString("graph LR\n")

	for _, c := range model.Categories {
		col := categoryColor(c)
		sb.WriteString(fmt.Sprintf("    classDef %s fill:%s,stroke:#333,color:#000\n", c, css(col)))
	}
	sb.WriteString("\n")

	nodes := doc.Nodes
	if config.MaxNodes > 0 && len(nodes) > config.MaxNodes {
		nodes = nodes[:config.MaxNodes]
	}
	included := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		included[n.ID] = true
	}

	// Sort by id for deterministic output
	sorted := make([]NodeRecord, len(nodes))
	copy(sorted, nodes)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ID < sorted[j].ID
	})

	// Build deterministic, collision-free Mermaid IDs
	safeIDMap := make(map[string]string)
	usedSafe := make(map[string]bool)
	getSafeID := func(orig string) string {
		if safe, ok := safeIDMap[orig]; ok {
			return safe
		}
		base := sanitizeMermaidID(orig)
		safe := base
		if usedSafe[safe] {
			h := fnv.New32a()
			_, _ = h.Write([]byte(orig))
			safe = fmt.Sprintf("%s_%x", base, h.Sum32())
		}
		usedSafe[safe] = true
		safeIDMap[orig] = safe
		return safe
	}
	for _, n := range sorted {
		getSafeID(n.ID)
	}

	for _, n := range sorted {
		safeID := getSafeID(n.ID)
		sb.WriteString(fmt.Sprintf("    %s[\"#%d %s<br/>%s\"]\n",
			safeID, n.Rank, sanitizeMermaidText(n.ID), sanitizeMermaidText(n.Label)))
		sb.WriteString(fmt.Sprintf("    class %s %s\n", safeID, n.Category))
	}

	sb.WriteString("\n")

	edges := make([]layout.Edge, 0, len(doc.Edges))
	for _, e := range doc.Edges {
		if included[e.From] && included[e.To] {
			edges = append(edges, e)
		}
	}
	sort.SliceStable(edges, func(i, j int) bool {
		if edges[i].Kind != edges[j].Kind {
			return edges[i].Kind == layout.EdgeReference
		}
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	for _, e := range edges {
		linkStyle := "-.-" // Dashed for proximity
		if e.Kind == layout.EdgeReference {
			linkStyle = "==>"
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", getSafeID(e.From), linkStyle, getSafeID(e.To)))
	}

	if config.ShowNoEdgesNode && len(edges) == 0 && len(nodes) > 0 {
		sb.WriteString("    NoEdges[\"No Edges\"]\n")
	}

	return sb.String()
}
