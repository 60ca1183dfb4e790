// Package ui implements the read-only terminal view of a star map.
//
// The view shows the ranked layout as a table (or a character radar) and recomputes
// the layout whenever the watched input file changes.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/starmap/pkg/debug"
	"github.com/vanderheijden86/starmap/pkg/export"
	"github.com/vanderheijden86/starmap/pkg/layout"
	"github.com/vanderheijden86/starmap/pkg/model"
	"github.com/vanderheijden86/starmap/pkg/watcher"
)

const (
	defaultWidth  = 100
	defaultHeight = 30
	detailHeight  = 12
)

// Source loads nodes and lays them out.
type Source struct {
	Path   string
	Title  string
	Load   func() ([]model.Node, error)
	Engine *layout.CachedEngine
}

// Refresh reloads nodes and recomputes the layout. It is safe to call off the UI
// goroutine.
func (s Source) Refresh() LayoutMsg {
	start := time.Now()
	if s.Load == nil || s.Engine == nil {
		return LayoutMsg{Err: fmt.Errorf("source not configured")}
	}
	nodes, err := s.Load()
	if err != nil {
		return LayoutMsg{Err: err, Elapsed: time.Since(start)}
	}
	res, hit := s.Engine.Compute(nodes)
	doc := export.BuildDocument(res, nodes, export.DocumentOptions{Title: s.Title})
	elapsed := time.Since(start)
	debug.LogTiming("ui.refresh", elapsed)
	return LayoutMsg{Doc: doc, CacheHit: hit, Elapsed: elapsed}
}

// LayoutMsg carries the outcome of one reload.
type LayoutMsg struct {
	Doc      *export.Document
	CacheHit bool
	Elapsed  time.Duration
	Err      error
}

// FileChangedMsg is sent when the node set in the input file changes.
type FileChangedMsg struct {
	Change watcher.Change
}

// ReadyTimeoutMsg makes the view usable even if the terminal never reports its size.
type ReadyTimeoutMsg struct{}

// ReadyTimeoutCmd returns a command that sends ReadyTimeoutMsg after 100ms.
func ReadyTimeoutCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return ReadyTimeoutMsg{}
	})
}

// WatchFileCmd returns a command that waits for a node-set change and sends FileChangedMsg.
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		return FileChangedMsg{Change: <-w.Changed()}
	}
}

// RefreshCmd reloads src in the background.
func RefreshCmd(src Source) tea.Cmd {
	return func() tea.Msg {
		return src.Refresh()
	}
}

// clipboardWrite is swapped out in tests.
var clipboardWrite = clipboard.WriteAll

type viewMode int

const (
	viewTable viewMode = iota
	viewRadar
)

// Model is the bubbletea model of the terminal view.
type Model struct {
	source  Source
	watcher *watcher.Watcher
	theme   Theme

	table  table.Model
	detail viewport.Model
	help   help.Model

	doc        *export.Document
	filter     model.Category // empty shows every category
	mode       viewMode
	showDetail bool

	width  int
	height int
	ready  bool

	status      string
	statusErr   bool
	refreshedAt time.Time
	refreshes   int
	now         func() time.Time
}

// NewModel returns a view over src. w may be nil to disable live reload.
func NewModel(src Source, w *watcher.Watcher) Model {
	theme := DefaultTheme(lipgloss.DefaultRenderer())

	t := table.New(
		table.WithColumns(columnsFor(defaultWidth)),
		table.WithFocused(true),
		table.WithHeight(defaultHeight-4),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.Border).
		BorderBottom(true).
		Bold(true)
	s.Selected = theme.Selected
	t.SetStyles(s)

	return Model{
		source:  src,
		watcher: w,
		theme:   theme,
		table:   t,
		detail:  viewport.New(defaultWidth, detailHeight),
		help:    help.New(),
		width:   defaultWidth,
		height:  defaultHeight,
		status:  "Loading…",
		now:     time.Now,
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{RefreshCmd(m.source), ReadyTimeoutCmd()}
	if m.watcher != nil {
		cmds = append(cmds, WatchFileCmd(m.watcher))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case ReadyTimeoutMsg:
		if !m.ready {
			m.ready = true
			m.resize()
		}
		return m, nil

	case FileChangedMsg:
		m.status = changeStatus(msg.Change)
		m.statusErr = false
		cmds := []tea.Cmd{RefreshCmd(m.source)}
		if m.watcher != nil {
			cmds = append(cmds, WatchFileCmd(m.watcher))
		}
		return m, tea.Batch(cmds...)

	case LayoutMsg:
		m.applyLayout(msg)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.resize()
			return m, nil
		case key.Matches(msg, keys.Detail):
			m.showDetail = !m.showDetail
			m.resize()
			m.updateDetail()
			return m, nil
		case key.Matches(msg, keys.Radar):
			if m.mode == viewTable {
				m.mode = viewRadar
			} else {
				m.mode = viewTable
			}
			return m, nil
		case key.Matches(msg, keys.Category):
			m.cycleFilter()
			m.rebuildRows()
			return m, nil
		case key.Matches(msg, keys.Copy):
			m.copySelected()
			return m, nil
		case key.Matches(msg, keys.Reload):
			if m.source.Engine != nil {
				m.source.Engine.Cache().Invalidate()
			}
			m.status = "Reloading…"
			m.statusErr = false
			return m, RefreshCmd(m.source)
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	m.updateDetail()
	return m, cmd
}

func (m *Model) applyLayout(msg LayoutMsg) {
	if msg.Err != nil {
		m.status = fmt.Sprintf("Reload failed: %v", msg.Err)
		m.statusErr = true
		return
	}
	m.doc = msg.Doc
	m.refreshedAt = m.now()
	m.refreshes++
	m.statusErr = false
	m.status = SummaryLine(msg)
	if m.filter != "" && m.doc.Summary.ByCategory[string(m.filter)] == 0 {
		m.filter = ""
	}
	m.rebuildRows()
}

func changeStatus(c watcher.Change) string {
	switch {
	case c.Current == (watcher.Fingerprint{}):
		return "Change detected, recomputing…"
	case c.LayoutChanged():
		return fmt.Sprintf("Node set changed (%d → %d nodes), recomputing…", c.Previous.Nodes, c.Current.Nodes)
	default:
		return "Labels changed, refreshing…"
	}
}

// copySelected puts the selected node's URL on the clipboard, or its id when it has none.
func (m *Model) copySelected() {
	n, ok := m.SelectedNode()
	if !ok {
		return
	}
	text := n.URL
	if text == "" {
		text = n.ID
	}
	if err := clipboardWrite(text); err != nil {
		m.status = fmt.Sprintf("Clipboard error: %v", err)
		m.statusErr = true
		return
	}
	m.status = "Copied " + text
	m.statusErr = false
}

func (m *Model) cycleFilter() {
	if m.doc == nil {
		return
	}
	cats := m.doc.Categories()
	if len(cats) == 0 {
		m.filter = ""
		return
	}
	if m.filter == "" {
		m.filter = cats[0]
		return
	}
	for i, c := range cats {
		if c == m.filter {
			if i+1 < len(cats) {
				m.filter = cats[i+1]
			} else {
				m.filter = ""
			}
			return
		}
	}
	m.filter = ""
}

// visibleNodes returns the document nodes that pass the category filter.
func (m Model) visibleNodes() []export.NodeRecord {
	if m.doc == nil {
		return nil
	}
	if m.filter == "" {
		return m.doc.Nodes
	}
	var out []export.NodeRecord
	for _, n := range m.doc.Nodes {
		if n.Category == m.filter {
			out = append(out, n)
		}
	}
	return out
}

func (m *Model) rebuildRows() {
	cols := m.table.Columns()
	labelWidth := cols[len(cols)-1].Width

	nodes := m.visibleNodes()
	rows := make([]table.Row, 0, len(nodes))
	for _, n := range nodes {
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", n.Rank),
			n.ID,
			kindBadge(n.Kind),
			string(n.Category),
			fmt.Sprintf("%.2f", n.Importance),
			fmt.Sprintf("%.2f", n.Radius),
			fmt.Sprintf("%3.0f° %s", n.Angle, compass(n.Angle)),
			truncate(n.Label, labelWidth),
		})
	}
	m.table.SetRows(rows)
	if c := m.table.Cursor(); c >= len(rows) {
		m.table.SetCursor(max(0, len(rows)-1))
	}
	m.updateDetail()
}

func (m *Model) resize() {
	body := m.bodyHeight()
	tableHeight := body
	if m.showDetail {
		tableHeight = body - detailHeight - 2
	}
	m.table.SetColumns(columnsFor(m.width))
	m.table.SetWidth(m.width)
	m.table.SetHeight(max(3, tableHeight))
	m.detail.Width = max(10, m.width-4)
	m.detail.Height = detailHeight
	if m.doc != nil {
		m.rebuildRows()
	}
}

// bodyHeight is the terminal height minus header, status line and help.
func (m Model) bodyHeight() int {
	chrome := 3
	if m.help.ShowAll {
		chrome += 3
	}
	return max(3, m.height-chrome)
}

func columnsFor(width int) []table.Column {
	cols := []table.Column{
		{Title: "#", Width: 4},
		{Title: "ID", Width: 12},
		{Title: "Kind", Width: 4},
		{Title: "Category", Width: 15},
		{Title: "Imp", Width: 6},
		{Title: "Radius", Width: 6},
		{Title: "Angle", Width: 8},
	}
	used := 0
	for _, c := range cols {
		used += c.Width + 2 // cell padding
	}
	label := max(10, width-used-2)
	return append(cols, table.Column{Title: "Title", Width: label})
}

// SelectedNode returns the node under the cursor.
func (m Model) SelectedNode() (export.NodeRecord, bool) {
	row := m.table.SelectedRow()
	if row == nil || m.doc == nil {
		return export.NodeRecord{}, false
	}
	return m.doc.Node(row[1])
}

func (m *Model) updateDetail() {
	n, ok := m.SelectedNode()
	if !ok {
		m.detail.SetContent(m.theme.MutedText.Render("No node selected"))
		return
	}
	m.detail.SetContent(m.renderDetail(n))
}

func (m Model) renderDetail(n export.NodeRecord) string {
	var sb strings.Builder
	field := func(name, value string) {
		if value == "" {
			return
		}
		sb.WriteString(m.theme.MutedText.Render(padRight(name, 12)))
		sb.WriteString(value)
		sb.WriteByte('\n')
	}
	field("ID", m.theme.Base.Bold(true).Render(n.ID))
	field("Title", m.theme.Base.Render(n.Label))
	field("Kind", string(n.Kind))
	field("Category", m.theme.CategoryStyle(n.Category).Render(string(n.Category)))
	field("Module", n.Module)
	field("Status", string(n.Status))
	field("Difficulty", string(n.Difficulty))
	field("Importance", fmt.Sprintf("%.2f (priority %.2f, rank %d)", n.Importance, n.Priority, n.Rank))
	field("Position", fmt.Sprintf("r=%.3f θ=%.1f° %s", n.Radius, n.Angle, compass(n.Angle)))
	field("References", n.ReferenceID)
	field("URL", n.URL)

	var links []string
	for _, e := range m.doc.Edges {
		switch n.ID {
		case e.From:
			links = append(links, fmt.Sprintf("%s→%s", e.Kind, e.To))
		case e.To:
			links = append(links, fmt.Sprintf("%s←%s", e.Kind, e.From))
		}
	}
	field("Edges", strings.Join(links, ", "))
	return strings.TrimRight(sb.String(), "\n")
}

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var body string
	switch {
	case m.doc == nil:
		body = m.theme.MutedText.Render("Waiting for layout…")
	case m.mode == viewRadar:
		body = RenderRadar(m.doc, m.width, m.bodyHeight(), &m.theme)
	default:
		body = m.table.View()
		if m.showDetail {
			body = lipgloss.JoinVertical(lipgloss.Left, body, m.theme.Panel.Render(m.detail.View()))
		}
	}

	status := m.theme.MutedText.Render(m.status)
	if m.statusErr {
		status = m.theme.ErrorText.Render(m.status)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		status,
		m.help.View(keys),
	)
}

func (m Model) renderHeader() string {
	title := m.source.Title
	if title == "" {
		title = "Star map"
	}
	parts := []string{}
	if m.source.Path != "" {
		parts = append(parts, m.source.Path)
	}
	if m.doc != nil {
		parts = append(parts,
			fmt.Sprintf("%d nodes", len(m.doc.Nodes)),
			fmt.Sprintf("%d edges", len(m.doc.Edges)),
			m.doc.DataHash,
		)
	}
	if m.filter != "" {
		parts = append(parts, "category: "+m.theme.CategoryStyle(m.filter).Render(string(m.filter)))
	}
	parts = append(parts, "updated "+FormatTimeRel(m.refreshedAt, m.now()))
	line := m.theme.Header.Render(title) + " " + m.theme.MutedText.Render(strings.Join(parts, " · "))
	return lipgloss.NewStyle().MaxWidth(m.width).Render(line)
}

// SummaryLine describes one reload in a single line.
func SummaryLine(msg LayoutMsg) string {
	if msg.Err != nil {
		return fmt.Sprintf("error: %v", msg.Err)
	}
	doc := msg.Doc
	cached := ""
	if msg.CacheHit {
		cached = " (cached)"
	}
	top := "-"
	if len(doc.Nodes) > 0 {
		top = doc.Nodes[0].ID
	}
	return fmt.Sprintf("%d nodes, %d reference + %d proximity edges, %d overlaps, top %s, hash %s in %s%s",
		len(doc.Nodes), doc.Summary.ReferenceEdges, doc.Summary.ProximityEdges,
		doc.Summary.Quality.OverlappingPairs, top, doc.DataHash,
		msg.Elapsed.Round(time.Millisecond), cached)
}

// Status returns the current status line text.
func (m Model) Status() string { return m.status }

// Refreshes returns how many layouts have been applied.
func (m Model) Refreshes() int { return m.refreshes }

// Filter returns the active category filter; empty means all categories.
func (m Model) Filter() model.Category { return m.filter }
