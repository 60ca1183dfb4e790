package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/starmap/pkg/export"
	"github.com/vanderheijden86/starmap/pkg/layout"
	"github.com/vanderheijden86/starmap/pkg/model"
)

const titleWidth = 50

// styler renders headings bold only when w is a terminal. Tab-separated table
// headers stay unstyled so tabwriter can measure them.
type styler struct {
	heading lipgloss.Style
	muted   lipgloss.Style
	plain   bool
}

func newStyler(w io.Writer) styler {
	if !isTerminal(w) {
		return styler{plain: true}
	}
	r := lipgloss.NewRenderer(w)
	return styler{
		heading: r.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}),
		muted:   r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"}),
	}
}

func (s styler) Heading(text string) string {
	if s.plain {
		return text
	}
	return s.heading.Render(text)
}

func (s styler) Muted(text string) string {
	if s.plain {
		return text
	}
	return s.muted.Render(text)
}

func shortTitle(title string) string {
	return runewidth.Truncate(title, titleWidth, "...")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// printRankTable writes the importance order. limit <= 0 prints every node.
func printRankTable(w io.Writer, res *layout.Result, nodes map[string]model.Node, limit int) error {
	s := newStyler(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tID\tKIND\tCATEGORY\tIMPORTANCE\tRADIUS\tANGLE\tTITLE")
	for i, id := range res.Order {
		if limit > 0 && i >= limit {
			break
		}
		n := nodes[id]
		pos := res.Positions[id]
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			i+1, id, n.Kind, n.Category,
			formatFloat(res.Importance[id]),
			formatFloat(pos.Radius),
			formatFloat(pos.Angle),
			shortTitle(n.Title),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if limit > 0 && len(res.Order) > limit {
		fmt.Fprintln(w, s.Muted(fmt.Sprintf("\n%d of %d nodes", limit, len(res.Order))))
	}
	return nil
}

func printEdgeTable(w io.Writer, edges []layout.Edge) error {
	s := newStyler(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FROM\tTO\tKIND\tDISTANCE")
	for _, e := range edges {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.From, e.To, e.Kind, formatFloat(e.Distance))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w, s.Muted(fmt.Sprintf("\n%d edges", len(edges))))
	return nil
}

// printSummary writes the document aggregates as a short report.
func printSummary(w io.Writer, doc *export.Document) error {
	s := newStyler(w)
	sum := doc.Summary
	fmt.Fprintln(w, s.Heading("Star map summary"))
	fmt.Fprintf(w, "  nodes:     %d\n", sum.TotalNodes)
	fmt.Fprintf(w, "  edges:     %d (%d reference, %d proximity)\n", sum.TotalEdges, sum.ReferenceEdges, sum.ProximityEdges)
	fmt.Fprintf(w, "  overlaps:  %d of %d pairs (%.1f%%)\n",
		sum.Quality.OverlappingPairs, sum.Quality.Pairs, sum.Quality.OverlapFraction*100)
	fmt.Fprintf(w, "  hash:      %s\n", doc.DataHash)
	if len(doc.Nodes) > 0 {
		top := doc.Nodes[0]
		fmt.Fprintf(w, "  top:       %s %s\n", top.ID, shortTitle(top.Label))
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\nCATEGORY\tNODES")
	for _, c := range doc.Categories() {
		fmt.Fprintf(tw, "%s\t%d\n", c, sum.ByCategory[string(c)])
	}
	fmt.Fprintln(tw, "\nKIND\tNODES")
	kinds := make([]string, 0, len(sum.ByKind))
	for k := range sum.ByKind {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Fprintf(tw, "%s\t%d\n", k, sum.ByKind[k])
	}
	return tw.Flush()
}
