package export

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"git.sr.ht/~sbinet/gg"
	svg "github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/starmap/pkg/layout"
	"github.com/vanderheijden86/starmap/pkg/metrics"
	"github.com/vanderheijden86/starmap/pkg/model"
)

// SnapshotOptions controls snapshot export.
type SnapshotOptions struct {
	Path       string // output path; format inferred from extension when Format is empty
	Format     string // "svg" or "png" (case-insensitive)
	Title      string
	Preset     string // "compact" (default) or "roomy"
	LabelCount int    // how many top-ranked nodes get a text label; 0 uses the preset default
	Document   *Document
}

// SaveSnapshot renders a static polar preview of doc: importance rings, nodes colored
// by category, reference edges in high contrast and proximity edges faint, plus a
// summary header and a category legend.
func SaveSnapshot(opts SnapshotOptions) error {
	defer metrics.Timer(metrics.SnapshotRender)()

	if opts.Document == nil || len(opts.Document.Nodes) == 0 {
		return ErrNoNodes
	}

	format := strings.ToLower(strings.TrimPrefix(opts.Format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(opts.Path)) {
		case ".svg":
			format = "svg"
		case ".png":
			format = "png"
		default:
			format = "svg"
			if opts.Path != "" && filepath.Ext(opts.Path) == "" {
				opts.Path += ".svg"
			}
		}
	}
	if format != "svg" && format != "png" {
		return fmt.Errorf("unsupported format %q (want svg or png)", format)
	}
	if opts.Path == "" {
		return fmt.Errorf("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	sl := buildSnapshotLayout(opts)
	switch format {
	case "png":
		return renderPNG(opts.Path, sl)
	default:
		f, err := os.Create(opts.Path)
		if err != nil {
			return err
		}
		if err := renderSVGToWriter(f, sl); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
}

// WriteSVG renders the snapshot as SVG to w.
func WriteSVG(w io.Writer, opts SnapshotOptions) error {
	if opts.Document == nil || len(opts.Document.Nodes) == 0 {
		return ErrNoNodes
	}
	return renderSVGToWriter(w, buildSnapshotLayout(opts))
}

// --- layout ----------------------------------------------------------------

type snapshotNode struct {
	ID       string
	Label    string
	Category model.Category
	Kind     model.Kind
	Rank     int
	X, Y     float64
	R        float64 // marker radius in pixels
	Labeled  bool
}

type snapshotEdge struct {
	X1, Y1, X2, Y2 float64
	Kind           layout.EdgeKind
}

type snapshotLayout struct {
	Nodes      []snapshotNode
	Edges      []snapshotEdge
	Rings      []float64 // pixel radii
	Categories []model.Category
	CX, CY     float64
	Width      int
	Height     int
	Header     float64
	Summary    summaryInfo
}

type summaryInfo struct {
	Title      string
	DataHash   string
	NodeCount  int
	RefEdges   int
	ProxEdges  int
	TopNode    string
	MaxRadius  float64
	Overlapped int
}

type snapshotPreset struct {
	plotRadius  float64
	markerScale float64
	labels      int
}

var (
	presetCompact = snapshotPreset{plotRadius: 300, markerScale: 0.35, labels: 10}
	presetRoomy   = snapshotPreset{plotRadius: 420, markerScale: 0.45, labels: 25}
)

const (
	snapshotPadding = 36.0
	snapshotHeader  = 120.0
)

func buildSnapshotLayout(opts SnapshotOptions) snapshotLayout {
	doc := opts.Document
	preset := presetCompact
	if strings.EqualFold(opts.Preset, "roomy") {
		preset = presetRoomy
	}
	labels := opts.LabelCount
	if labels <= 0 {
		labels = preset.labels
	}

	maxR := math.Max(doc.MaxRadius(), 1)
	scale := preset.plotRadius / maxR

	width := int(2 * (preset.plotRadius + snapshotPadding))
	if width < 640 {
		width = 640
	}
	height := int(snapshotHeader + 2*(preset.plotRadius+snapshotPadding))
	cx := float64(width) / 2
	cy := snapshotHeader + snapshotPadding + preset.plotRadius

	sl := snapshotLayout{
		CX:         cx,
		CY:         cy,
		Width:      width,
		Height:     height,
		Header:     snapshotHeader,
		Categories: doc.Categories(),
	}
	for r := 1.0; r < maxR; r++ {
		sl.Rings = append(sl.Rings, r*scale)
	}
	sl.Rings = append(sl.Rings, maxR*scale)

	pos := make(map[string]snapshotNode, len(doc.Nodes))
	for _, n := range doc.Nodes {
		theta := n.Angle * math.Pi / 180
		sn := snapshotNode{
			ID:       n.ID,
			Label:    truncate(n.Label, 32),
			Category: n.Category,
			Kind:     n.Kind,
			Rank:     n.Rank,
			X:        cx + n.Radius*scale*math.Cos(theta),
			Y:        cy - n.Radius*scale*math.Sin(theta),
			R:        math.Max(2, n.Size*preset.markerScale),
			Labeled:  len(sl.Nodes) < labels,
		}
		sl.Nodes = append(sl.Nodes, sn)
		pos[n.ID] = sn
	}

	for _, e := range doc.Edges {
		from, okFrom := pos[e.From]
		to, okTo := pos[e.To]
		if !okFrom || !okTo {
			continue
		}
		sl.Edges = append(sl.Edges, snapshotEdge{X1: from.X, Y1: from.Y, X2: to.X, Y2: to.Y, Kind: e.Kind})
	}

	title := opts.Title
	if strings.TrimSpace(title) == "" {
		title = "Star map"
	}
	top := "n/a"
	if len(doc.Nodes) > 0 {
		top = fmt.Sprintf("%s (%.2f)", doc.Nodes[0].ID, doc.Nodes[0].Importance)
	}
	sl.Summary = summaryInfo{
		Title:      title,
		DataHash:   doc.DataHash,
		NodeCount:  len(doc.Nodes),
		RefEdges:   doc.Summary.ReferenceEdges,
		ProxEdges:  doc.Summary.ProximityEdges,
		TopNode:    top,
		MaxRadius:  maxR,
		Overlapped: doc.Summary.Quality.OverlappingPairs,
	}
	return sl
}

// --- rendering -------------------------------------------------------------

var (
	colorBackdrop   = color.RGBA{0x0f, 0x17, 0x2a, 0xff}
	colorHeaderBG   = color.RGBA{0x1e, 0x29, 0x3b, 0xff}
	colorLegendBG   = color.RGBA{0x1e, 0x29, 0x3b, 0xff}
	colorRing       = color.RGBA{0x33, 0x41, 0x55, 0xff}
	colorRefEdge    = color.RGBA{0xf8, 0xfa, 0xfc, 0xff}
	colorProxEdge   = color.RGBA{0x47, 0x55, 0x69, 0xff}
	colorText       = color.RGBA{0xf1, 0xf5, 0xf9, 0xff}
	colorSubtle     = color.RGBA{0x94, 0xa3, 0xb8, 0xff}
	colorPRStroke   = color.RGBA{0xff, 0xff, 0xff, 0xff}
	colorTodoStroke = color.RGBA{0x47, 0x55, 0x69, 0xff}
)

var categoryColors = map[model.Category]color.RGBA{
	model.CategorySecurity:        {0xe5, 0x73, 0x73, 0xff},
	model.CategoryPerformance:     {0xff, 0xb7, 0x4d, 0xff},
	model.CategoryMaintainability: {0x95, 0x75, 0xcd, 0xff},
	model.CategoryDocumentation:   {0x64, 0xb5, 0xf6, 0xff},
	model.CategoryTesting:         {0x81, 0xc7, 0x84, 0xff},
	model.CategoryCI:              {0x4d, 0xb6, 0xac, 0xff},
	model.CategoryFeature:         {0xff, 0xf1, 0x76, 0xff},
	model.CategoryUnknown:         {0xb0, 0xbe, 0xc5, 0xff},
}

func categoryColor(c model.Category) color.RGBA {
	if col, ok := categoryColors[c]; ok {
		return col
	}
	return categoryColors[model.CategoryUnknown]
}

func renderPNG(path string, sl snapshotLayout) error {
	dc := gg.NewContext(sl.Width, sl.Height)
	dc.SetColor(colorBackdrop)
	dc.Clear()

	dc.SetColor(colorHeaderBG)
	dc.DrawRoundedRectangle(16, 16, float64(sl.Width)-32, sl.Header-24, 10)
	dc.Fill()
	dc.SetFontFace(basicfont.Face7x13)
	drawSummaryBlock(dc, sl)

	dc.SetColor(colorRing)
	dc.SetLineWidth(1)
	for _, r := range sl.Rings {
		dc.DrawCircle(sl.CX, sl.CY, r)
		dc.Stroke()
	}

	for _, e := range sl.Edges {
		if e.Kind == layout.EdgeReference {
			dc.SetColor(colorRefEdge)
			dc.SetLineWidth(2)
		} else {
			dc.SetColor(colorProxEdge)
			dc.SetLineWidth(1)
		}
		dc.DrawLine(e.X1, e.Y1, e.X2, e.Y2)
		dc.Stroke()
	}

	// Paint least important first so the brightest stars stay on top.
	for i := len(sl.Nodes) - 1; i >= 0; i-- {
		drawStar(dc, sl.Nodes[i])
	}
	for _, n := range sl.Nodes {
		if n.Labeled {
			dc.SetColor(colorText)
			dc.DrawStringAnchored(n.Label, n.X+n.R+4, n.Y, 0, 0.5)
		}
	}

	drawLegend(dc, sl)
	return dc.SavePNG(path)
}

func drawStar(dc *gg.Context, n snapshotNode) {
	dc.SetColor(categoryColor(n.Category))
	dc.DrawCircle(n.X, n.Y, n.R)
	dc.Fill()

	switch n.Kind {
	case model.KindPullRequest:
		dc.SetColor(colorPRStroke)
		dc.SetLineWidth(1.5)
	case model.KindTodo:
		dc.SetColor(colorTodoStroke)
		dc.SetLineWidth(1)
	default:
		return
	}
	dc.DrawCircle(n.X, n.Y, n.R)
	dc.Stroke()
}

func drawSummaryBlock(dc *gg.Context, sl snapshotLayout) {
	dc.SetColor(colorText)
	dc.DrawStringAnchored(sl.Summary.Title, 32, 44, 0, 0.5)
	dc.SetColor(colorSubtle)
	for i, line := range summaryLines(sl) {
		dc.DrawStringAnchored(line, 32, 64+float64(i)*20, 0, 0.5)
	}
}

func drawLegend(dc *gg.Context, sl snapshotLayout) {
	boxW, boxH := 170.0, legendHeight(sl)
	x := float64(sl.Width) - boxW - 16
	y := sl.Header + 8
	dc.SetColor(colorLegendBG)
	dc.DrawRoundedRectangle(x, y, boxW, boxH, 10)
	dc.Fill()

	dc.SetColor(colorText)
	dc.DrawStringAnchored("Categories", x+12, y+18, 0, 0.5)
	for i, c := range sl.Categories {
		ry := y + 36 + float64(i)*16
		dc.SetColor(categoryColor(c))
		dc.DrawCircle(x+19, ry, 6)
		dc.Fill()
		dc.SetColor(colorSubtle)
		dc.DrawStringAnchored(string(c), x+32, ry, 0, 0.5)
	}
}

func renderSVGToWriter(w io.Writer, sl snapshotLayout) error {
	canvas := svg.New(w)
	canvas.Start(sl.Width, sl.Height)

	canvas.Def()
	canvas.Filter("glow")
	canvas.FeGaussianBlur(svg.Filterspec{In: "SourceGraphic", Result: "blur"}, 3, 3)
	canvas.FeMerge([]string{"blur", "SourceGraphic"})
	canvas.Fend()
	canvas.DefEnd()

	canvas.Rect(0, 0, sl.Width, sl.Height, fmt.Sprintf("fill:%s", css(colorBackdrop)))
	canvas.Roundrect(16, 16, sl.Width-32, int(sl.Header-24), 10, 10, fmt.Sprintf("fill:%s", css(colorHeaderBG)))

	canvas.Text(32, 44, sl.Summary.Title, fmt.Sprintf("fill:%s;font-size:16px;font-family:monospace;font-weight:bold", css(colorText)))
	for i, line := range summaryLines(sl) {
		canvas.Text(32, 64+i*20, line, fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorSubtle)))
	}

	cx, cy := int(sl.CX), int(sl.CY)
	for _, r := range sl.Rings {
		canvas.Circle(cx, cy, int(r), fmt.Sprintf("fill:none;stroke:%s;stroke-width:1", css(colorRing)))
	}

	for _, e := range sl.Edges {
		style := fmt.Sprintf("stroke:%s;stroke-width:2", css(colorRefEdge))
		if e.Kind == layout.EdgeProximity {
			style = fmt.Sprintf("stroke:%s;stroke-width:1;stroke-opacity:0.35", css(colorProxEdge))
		}
		canvas.Line(int(e.X1), int(e.Y1), int(e.X2), int(e.Y2), style)
	}

	for i := len(sl.Nodes) - 1; i >= 0; i-- {
		n := sl.Nodes[i]
		style := fmt.Sprintf("fill:%s", css(categoryColor(n.Category)))
		switch n.Kind {
		case model.KindPullRequest:
			style += fmt.Sprintf(";stroke:%s;stroke-width:1.5", css(colorPRStroke))
		case model.KindTodo:
			style += fmt.Sprintf(";stroke:%s;stroke-width:1", css(colorTodoStroke))
		}
		if n.Labeled {
			style += ";filter:url(#glow)"
		}
		canvas.Circle(int(n.X), int(n.Y), int(math.Round(n.R)), style)
	}
	for _, n := range sl.Nodes {
		if n.Labeled {
			canvas.Text(int(n.X+n.R+4), int(n.Y+4), n.Label,
				fmt.Sprintf("fill:%s;font-size:11px;font-family:monospace", css(colorText)))
		}
	}

	boxW, boxH := 170, int(legendHeight(sl))
	x := sl.Width - boxW - 16
	y := int(sl.Header) + 8
	canvas.Roundrect(x, y, boxW, boxH, 10, 10, fmt.Sprintf("fill:%s", css(colorLegendBG)))
	canvas.Text(x+12, y+18, "Categories", fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace;font-weight:bold", css(colorText)))
	for i, c := range sl.Categories {
		ry := y + 36 + i*16
		canvas.Circle(x+19, ry-4, 6, fmt.Sprintf("fill:%s", css(categoryColor(c))))
		canvas.Text(x+32, ry, string(c), fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorSubtle)))
	}

	canvas.End()
	return nil
}

func summaryLines(sl snapshotLayout) []string {
	return []string{
		fmt.Sprintf("data_hash: %s", sl.Summary.DataHash),
		fmt.Sprintf("nodes: %d  reference edges: %d  proximity edges: %d  overlaps: %d",
			sl.Summary.NodeCount, sl.Summary.RefEdges, sl.Summary.ProxEdges, sl.Summary.Overlapped),
		fmt.Sprintf("top: %s  outer radius: %.2f", sl.Summary.TopNode, sl.Summary.MaxRadius),
	}
}

func legendHeight(sl snapshotLayout) float64 {
	return 28 + float64(len(sl.Categories))*16
}

// --- helpers ---------------------------------------------------------------

func truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
