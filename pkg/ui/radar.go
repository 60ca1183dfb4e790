package ui

import (
	"math"
	"strings"

	"github.com/vanderheijden86/starmap/pkg/export"
	"github.com/vanderheijden86/starmap/pkg/model"
)

// cellAspect is the height/width ratio of a terminal cell.
const cellAspect = 2.0

type radarCell struct {
	glyph    rune
	category model.Category
	node     bool
}

// RenderRadar draws doc onto a width×height character grid with the most important
// node at the center. A nil theme renders plain glyphs.
func RenderRadar(doc *export.Document, width, height int, theme *Theme) string {
	if width < 3 || height < 3 {
		return ""
	}
	grid := make([][]radarCell, height)
	for y := range grid {
		grid[y] = make([]radarCell, width)
		for x := range grid[y] {
			grid[y][x] = radarCell{glyph: ' '}
		}
	}

	cx := float64(width-1) / 2
	cy := float64(height-1) / 2
	// Fit the outer ring in both dimensions, accounting for tall cells.
	plot := math.Min(cx, cy*cellAspect)

	maxR := 1.0
	if doc != nil {
		maxR = math.Max(doc.MaxRadius(), 1)
	}
	scale := plot / maxR

	for r := 1.0; r <= maxR; r++ {
		steps := int(2 * math.Pi * r * scale)
		for s := 0; s < steps; s++ {
			theta := 2 * math.Pi * float64(s) / float64(steps)
			x, y := project(cx, cy, r*scale, theta)
			if inGrid(x, y, width, height) && grid[y][x].glyph == ' ' {
				grid[y][x].glyph = '·'
			}
		}
	}
	grid[int(math.Round(cy))][int(math.Round(cx))].glyph = '+'

	if doc != nil {
		for i := len(doc.Nodes) - 1; i >= 0; i-- {
			n := doc.Nodes[i]
			x, y := project(cx, cy, n.Radius*scale, n.Angle*math.Pi/180)
			if !inGrid(x, y, width, height) {
				continue
			}
			grid[y][x] = radarCell{glyph: nodeGlyph(n.Kind), category: n.Category, node: true}
		}
	}

	var sb strings.Builder
	for y, row := range grid {
		for _, c := range row {
			switch {
			case c.node && theme != nil:
				sb.WriteString(theme.CategoryStyle(c.category).Render(string(c.glyph)))
			case c.glyph == '·' && theme != nil:
				sb.WriteString(theme.MutedText.Render("·"))
			default:
				sb.WriteRune(c.glyph)
			}
		}
		if y < height-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func project(cx, cy, r, theta float64) (int, int) {
	x := int(math.Round(cx + r*math.Cos(theta)))
	y := int(math.Round(cy - r*math.Sin(theta)/cellAspect))
	return x, y
}

func inGrid(x, y, w, h int) bool {
	return x >= 0 && x < w && y >= 0 && y < h
}

func nodeGlyph(k model.Kind) rune {
	switch k {
	case model.KindIssue:
		return '●'
	case model.KindPullRequest:
		return '◆'
	}
	return '•'
}
