package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/vanderheijden86/starmap/pkg/model"
)

// Package-level compiled regex for slug creation (avoids recompilation per call)
var slugNonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9]+`)

// MarkdownOptions controls the Markdown report.
type MarkdownOptions struct {
	Title      string
	GraphNodes int // nodes drawn in the Mermaid graph; 0 uses DefaultGraphNodes
}

// DefaultGraphNodes keeps the Mermaid graph readable on large maps.
const DefaultGraphNodes = 40

// sanitizeMermaidID ensures an ID is valid for Mermaid diagrams.
// Mermaid node IDs must be alphanumeric with hyphens/underscores.
func sanitizeMermaidID(id string) string {
	var sb strings.Builder
	for _, r := range id {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			sb.WriteRune(r)
		}
	}
	result := sb.String()
	if result == "" {
		return "node"
	}
	return result
}

// sanitizeMermaidText prepares text for use in Mermaid node labels.
func sanitizeMermaidText(text string) string {
	replacer := strings.NewReplacer(
		"\"", "'",
		"[", "(",
		"]", ")",
		"{", "(",
		"}", ")",
		"<", "&lt;",
		">", "&gt;",
		"|", "/",
		"`", "'",
		"\n", " ",
		"\r", "",
	)
	result := replacer.Replace(text)
	result = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, result)
	return truncate(strings.TrimSpace(result), 40)
}

// escapeCell makes text safe inside a Markdown table cell.
func escapeCell(text string) string {
	text = strings.ReplaceAll(text, "\r", "")
	text = strings.ReplaceAll(text, "\n", " ")
	return strings.ReplaceAll(text, "|", "\\|")
}

// GenerateMarkdown renders doc as a Markdown report: summary, constellation graph,
// ranked table and one section per category.
func GenerateMarkdown(doc *Document, opts MarkdownOptions) string {
	var sb strings.Builder

	title := opts.Title
	if title == "" {
		title = doc.Metadata["title"]
	}
	if title == "" {
		title = "Star map"
	}
	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	sb.WriteString(fmt.Sprintf("*Generated: %s*\n\n", doc.GeneratedAt.Format(time.RFC1123)))
	if repo := doc.Metadata["repository"]; repo != "" {
		sb.WriteString(fmt.Sprintf("Repository: `%s`\n\n", repo))
	}
	sb.WriteString(DefaultDescription + "\n\n")

	// Summary Statistics
	sum := doc.Summary
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| **Nodes** | %d |\n", sum.TotalNodes))
	sb.WriteString(fmt.Sprintf("| Reference edges | %d |\n", sum.ReferenceEdges))
	sb.WriteString(fmt.Sprintf("| Proximity edges | %d |\n", sum.ProximityEdges))
	sb.WriteString(fmt.Sprintf("| Overlapping pairs | %d of %d |\n", sum.Quality.OverlappingPairs, sum.Quality.Pairs))
	sb.WriteString(fmt.Sprintf("| Outer radius | %.3f |\n", doc.MaxRadius()))
	sb.WriteString(fmt.Sprintf("| Data hash | `%s` |\n\n", doc.DataHash))

	if len(doc.Nodes) == 0 {
		sb.WriteString("*No open tasks.*\n")
		return sb.String()
	}

	// Precompute stable, unique slugs for category anchors.
	slugCounts := make(map[string]int)
	categorySlugs := make(map[model.Category]string)
	for _, c := range doc.Categories() {
		categorySlugs[c] = uniqueSlug(createSlug(categoryHeading(c)), slugCounts)
	}

	sb.WriteString("## Categories\n\n")
	for _, c := range doc.Categories() {
		sb.WriteString(fmt.Sprintf("- [%s](#%s) (%d)\n", categoryHeading(c), categorySlugs[c], sum.ByCategory[string(c)]))
	}
	sb.WriteString("\n---\n\n")

	graphNodes := opts.GraphNodes
	if graphNodes <= 0 {
		graphNodes = DefaultGraphNodes
	}
	sb.WriteString("## Constellations\n\n")
	sb.WriteString("```mermaid\n")
	sb.WriteString(GenerateMermaidGraph(doc, MermaidConfig{ShowNoEdgesNode: true, MaxNodes: graphNodes}))
	sb.WriteString("```\n\n")
	sb.WriteString("---\n\n")

	sb.WriteString("## Ranking\n\n")
	sb.WriteString("| # | ID | Kind | Category | Importance | Radius | Angle | Title |\n")
	sb.WriteString("|---|----|------|----------|------------|--------|-------|-------|\n")
	for _, n := range doc.Nodes {
		sb.WriteString(fmt.Sprintf("| %d | %s | %s %s | %s | %.3f | %.3f | %.1f° | %s |\n",
			n.Rank, nodeLink(n), getKindEmoji(n.Kind), n.Kind, n.Category,
			n.Importance, n.Radius, n.Angle, escapeCell(n.Label)))
	}
	sb.WriteString("\n---\n\n")

	for _, c := range doc.Categories() {
		sb.WriteString(fmt.Sprintf("<a id=\"%s\"></a>\n\n", categorySlugs[c]))
		sb.WriteString(fmt.Sprintf("## %s\n\n", categoryHeading(c)))
		for _, n := range doc.Nodes {
			if n.Category != c {
				continue
			}
			line := fmt.Sprintf("- %s %s **%s** %s", getStatusEmoji(n.Status), getKindEmoji(n.Kind), n.ID, n.Label)
			if n.ReferenceID != "" {
				line += fmt.Sprintf(" (fixes `%s`)", n.ReferenceID)
			}
			if n.Module != "" {
				line += fmt.Sprintf(" in `%s`", n.Module)
			}
			sb.WriteString(line + "\n")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// WriteMarkdown writes the report for doc to w.
func WriteMarkdown(w io.Writer, doc *Document, opts MarkdownOptions) error {
	_, err := io.WriteString(w, GenerateMarkdown(doc, opts))
	return err
}

// SaveMarkdown writes the report for doc to path, creating parent directories.
func SaveMarkdown(path string, doc *Document, opts MarkdownOptions) error {
	if path == "" {
		return fmt.Errorf("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	return os.WriteFile(path, []byte(GenerateMarkdown(doc, opts)), 0o644)
}

func categoryHeading(c model.Category) string {
	if c == model.CategoryCI {
		return "CI"
	}
	s := string(c)
	if s == "" {
		return "Unknown"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func nodeLink(n NodeRecord) string {
	if n.URL == "" {
		return escapeCell(n.ID)
	}
	return fmt.Sprintf("[%s](%s)", escapeCell(n.ID), n.URL)
}

func uniqueSlug(base string, counts map[string]int) string {
	if base == "" {
		base = "section"
	}
	if count, ok := counts[base]; ok {
		count++
		counts[base] = count
		return fmt.Sprintf("%s-%d", base, count)
	}
	counts[base] = 0
	return base
}

// createSlug creates a URL-friendly slug from heading text.
func createSlug(text string) string {
	slug := strings.ToLower(text)
	slug = slugNonAlphanumericRegex.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

func getStatusEmoji(status model.Status) string {
	switch status {
	case model.StatusOpen:
		return "🟢"
	case model.StatusDraft:
		return "📝"
	case model.StatusClosed, model.StatusMerged:
		return "⚫"
	default:
		return "⚪"
	}
}

func getKindEmoji(kind model.Kind) string {
	switch kind {
	case model.KindIssue:
		return "🐛"
	case model.KindPullRequest:
		return "🔀"
	case model.KindTodo:
		return "📋"
	default:
		return "•"
	}
}
