// Package testutil provides deterministic node fixtures for tests.
package testutil

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/starmap/pkg/model"
)

// GeneratorConfig controls node generation.
type GeneratorConfig struct {
	Seed           int64              // Random seed for determinism (0 = 42)
	IDPrefix       string             // Prefix for node IDs (default: "n")
	CategoryMix    []model.Category   // Category distribution (nil = all categories)
	DifficultyMix  []model.Difficulty // Difficulty distribution (nil = all three)
	MaxPriority    float64            // Priorities are drawn from [0, MaxPriority) (default 3)
	PRRatio        float64            // Share of nodes that are pull requests (DefaultConfig: 0.25)
	TodoRatio      float64            // Share of nodes that are code TODOs (DefaultConfig: 0.2)
	MaxPRsPerIssue int                // Cap on pull requests referencing one issue (default 3)
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:           42,
		IDPrefix:       "n",
		CategoryMix:    model.Categories,
		DifficultyMix:  []model.Difficulty{model.DifficultyEntry, model.DifficultyIntermediate, model.DifficultyAdvanced},
		MaxPriority:    3,
		PRRatio:        0.25,
		TodoRatio:      0.2,
		MaxPRsPerIssue: 3,
	}
}

// Generator creates node fixtures.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config; zero fields take defaults.
func New(cfg GeneratorConfig) *Generator {
	def := DefaultConfig()
	if cfg.Seed == 0 {
		cfg.Seed = def.Seed
	}
	if cfg.IDPrefix == "" {
		cfg.IDPrefix = def.IDPrefix
	}
	if len(cfg.CategoryMix) == 0 {
		cfg.CategoryMix = def.CategoryMix
	}
	if len(cfg.DifficultyMix) == 0 {
		cfg.DifficultyMix = def.DifficultyMix
	}
	if cfg.MaxPriority <= 0 {
		cfg.MaxPriority = def.MaxPriority
	}
	if cfg.MaxPRsPerIssue <= 0 {
		cfg.MaxPRsPerIssue = def.MaxPRsPerIssue
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}
}

// NewDefault creates a Generator with DefaultConfig.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// Nodes generates n nodes mixing issues, pull requests and TODOs. Every pull request
// references an issue generated earlier, and no issue gets more than MaxPRsPerIssue.
func (g *Generator) Nodes(n int) []model.Node {
	nodes := make([]model.Node, 0, n)
	prCount := make(map[string]int)
	var issues []string

	for i := 0; i < n; i++ {
		id := fmt.Sprintf("%s-%d", g.cfg.IDPrefix, i)
		roll := g.rng.Float64()

		var target string
		if roll < g.cfg.PRRatio && len(issues) > 0 {
			candidate := issues[g.rng.Intn(len(issues))]
			if prCount[candidate] < g.cfg.MaxPRsPerIssue {
				target = candidate
			}
		}

		switch {
		case target != "":
			prCount[target]++
			nodes = append(nodes, g.node(id, model.KindPullRequest, target))
		case roll < g.cfg.PRRatio+g.cfg.TodoRatio:
			nodes = append(nodes, g.node(id, model.KindTodo, ""))
		default:
			issues = append(issues, id)
			nodes = append(nodes, g.node(id, model.KindIssue, ""))
		}
	}
	return nodes
}

// Constellations generates issues each with prsPerIssue referencing pull requests.
// The pull requests of issue i are listed right after it.
func (g *Generator) Constellations(issues, prsPerIssue int) []model.Node {
	var nodes []model.Node
	for i := 0; i < issues; i++ {
		issueID := fmt.Sprintf("%s-issue-%d", g.cfg.IDPrefix, i)
		nodes = append(nodes, g.node(issueID, model.KindIssue, ""))
		for j := 0; j < prsPerIssue; j++ {
			nodes = append(nodes, g.node(fmt.Sprintf("%s-pr-%d-%d", g.cfg.IDPrefix, i, j), model.KindPullRequest, issueID))
		}
	}
	return nodes
}

// SameCategory generates n TODO nodes sharing one category and priority, so only
// jitter separates them.
func (g *Generator) SameCategory(n int, c model.Category) []model.Node {
	nodes := make([]model.Node, n)
	for i := range nodes {
		nodes[i] = model.Node{
			ID:         fmt.Sprintf("%s-%d", g.cfg.IDPrefix, i),
			Title:      fmt.Sprintf("TODO %d", i),
			Category:   c,
			Kind:       model.KindTodo,
			Priority:   1,
			Difficulty: model.DifficultyIntermediate,
			Status:     model.StatusOpen,
		}
	}
	return nodes
}

func (g *Generator) node(id string, kind model.Kind, ref string) model.Node {
	n := model.Node{
		ID:          id,
		Title:       fmt.Sprintf("%s %s", kind, id),
		Module:      g.pickModule(),
		Category:    g.cfg.CategoryMix[g.rng.Intn(len(g.cfg.CategoryMix))],
		Kind:        kind,
		ReferenceID: ref,
		Priority:    g.rng.Float64() * g.cfg.MaxPriority,
		Difficulty:  g.cfg.DifficultyMix[g.rng.Intn(len(g.cfg.DifficultyMix))],
		Status:      model.StatusOpen,
	}
	if kind == model.KindPullRequest {
		n.Module = "pull-requests"
	}
	return n
}

var modules = []string{"api", "core", "cli", "docs", "storage"}

func (g *Generator) pickModule() string {
	return modules[g.rng.Intn(len(modules))]
}

// ToJSONL converts nodes to JSONL format (one JSON object per line).
func ToJSONL(nodes []model.Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		data, err := json.Marshal(n)
		if err != nil {
			continue
		}
		sb.Write(data)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Convenience functions with default config

// QuickNodes generates n mixed nodes with the default config.
func QuickNodes(n int) []model.Node {
	return NewDefault().Nodes(n)
}

// QuickConstellations generates issues with referencing pull requests.
func QuickConstellations(issues, prsPerIssue int) []model.Node {
	return NewDefault().Constellations(issues, prsPerIssue)
}

// Scenario returns the three-node example: a high-priority issue, a pull request
// fixing it and a low-priority advanced issue in another category.
func Scenario() []model.Node {
	return []model.Node{
		{ID: "I1", Title: "Crash on start", Kind: model.KindIssue, Category: model.CategorySecurity, Priority: 2.5, Difficulty: model.DifficultyEntry, Status: model.StatusOpen},
		{ID: "P1", Title: "Fix crash", Kind: model.KindPullRequest, Category: model.CategorySecurity, ReferenceID: "I1", Priority: 1.0, Difficulty: model.DifficultyEntry, Status: model.StatusOpen},
		{ID: "I2", Title: "Rewrite docs", Kind: model.KindIssue, Category: model.CategoryDocumentation, Priority: 0.8, Difficulty: model.DifficultyAdvanced, Status: model.StatusOpen},
	}
}

// Empty returns an empty node slice.
func Empty() []model.Node {
	return []model.Node{}
}

// Single returns a single issue.
func Single() []model.Node {
	return []model.Node{{ID: "solo", Title: "Only node", Kind: model.KindIssue, Category: model.CategoryFeature, Priority: 1, Difficulty: model.DifficultyIntermediate, Status: model.StatusOpen}}
}
