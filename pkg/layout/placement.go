// Package layout computes star map placements.
//
// A pass runs in three fixed phases over an immutable node set:
//
//  1. rank placement: radius from importance rank (square-root mapping), angle from
//     the golden-angle sequence plus a category bias and seeded jitter;
//  2. constellation attraction: each pull request moves next to the issue it references;
//  3. relaxation: a fixed number of simultaneous repulsion and anti-collinearity steps.
//
// The pass is pure and deterministic: all randomness is derived from node ids.
package layout

import (
	"fmt"
	"math"

	"github.com/vanderheijden86/starmap/pkg/debug"
	"github.com/vanderheijden86/starmap/pkg/metrics"
	"github.com/vanderheijden86/starmap/pkg/model"
)

const (
	angleJitterDegrees = 8.0
	waveJitterDegrees  = 4.0

	orbitAngleJitter  = 6.0
	orbitRadiusJitter = 0.15
)

// Buckets that spread several pull requests referencing the same issue.
var (
	orbitAngleBuckets  = [3]float64{-5, 0, 5}
	orbitRadiusBuckets = [3]float64{0, 0.05, 0.1}
)

// Result is the output of one layout pass.
type Result struct {
	Positions  map[string]Position `json:"positions"`
	Order      []string            `json:"order"`      // ids, most important first
	Importance map[string]float64  `json:"importance"` // priority × difficulty modifier
	Size       map[string]float64  `json:"size"`       // marker size hint for renderers
	Edges      []Edge              `json:"edges"`
	Quality    Quality             `json:"quality"`
	DataHash   string              `json:"data_hash"`

	// Radius bounds the pass was computed with.
	InnerRadius float64 `json:"inner_radius"`
	OuterRadius float64 `json:"outer_radius"`
}

// Engine runs layout passes with a fixed configuration.
type Engine struct {
	cfg Config
}

// NewEngine validates cfg and returns an engine using it.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Compute lays out nodes. It never fails for well-formed input; an empty slice yields
// an empty placement.
func (e *Engine) Compute(nodes []model.Node) *Result {
	res := &Result{
		Positions:  make(map[string]Position, len(nodes)),
		Order:      make([]string, 0, len(nodes)),
		Importance: make(map[string]float64, len(nodes)),
		Size:       make(map[string]float64, len(nodes)),
		Edges:      []Edge{},
		DataHash:   ComputeDataHash(nodes),

		InnerRadius: e.cfg.InnerRadius,
		OuterRadius: e.cfg.OuterRadius,
	}
	if len(nodes) == 0 {
		return res
	}

	trace := debug.NewPass(len(nodes))

	stopRank := metrics.Timer(metrics.RankCompute)
	ranked := Rank(nodes)
	stopRank()

	links := referenceLinks(nodes)
	ls := newLinkSet(len(nodes), links)
	trace.Phase("rank", nil)

	st := e.placeInitial(nodes, ranked)
	overlap := func() float64 { return measure(st.positions(), e.cfg.MinSeparation).OverlapFraction }
	trace.Phase("initial", overlap)
	if len(nodes) > 1 {
		e.attract(st, nodes, links)
		trace.Phase(fmt.Sprintf("attract %d links", len(links)), overlap)
		e.relax(st, ls)
		trace.Phase(fmt.Sprintf("relax %d iterations", e.cfg.Iterations), overlap)
	}

	for _, r := range ranked {
		res.Order = append(res.Order, r.ID)
		res.Importance[r.ID] = r.Importance
	}
	sizes := markerSizes(ranked)
	for i, n := range nodes {
		res.Positions[n.ID] = Position{Radius: st.radius[i], Angle: st.angle[i]}
		res.Size[n.ID] = sizes[i]
	}

	stopEdges := metrics.Timer(metrics.EdgeBuild)
	refs := make([]Edge, 0, len(links))
	for _, l := range links {
		refs = append(refs, Edge{From: nodes[l.pr].ID, To: nodes[l.issue].ID, Kind: EdgeReference, Distance: ReferenceEdgeDistance})
	}
	prox := proximityEdges(nodes, st.positions(), e.cfg.ProximityThreshold, ls)
	res.Edges = SelectEdges(e.cfg.MaxRenderedEdges, refs, prox)
	stopEdges()

	trace.Phase(fmt.Sprintf("edges %d proximity candidates", len(prox)), nil)

	res.Quality = Measure(res.Positions, e.cfg.MinSeparation)
	trace.Done(len(res.Edges))
	return res
}

// state is the working copy of positions, indexed like the input nodes.
type state struct {
	radius []float64
	angle  []float64
	seeds  []uint64
}

func newState(n int) *state {
	return &state{
		radius: make([]float64, n),
		angle:  make([]float64, n),
		seeds:  make([]uint64, n),
	}
}

func (s *state) positions() []Position {
	out := make([]Position, len(s.radius))
	for i := range s.radius {
		out[i] = Position{Radius: s.radius[i], Angle: s.angle[i]}
	}
	return out
}

// placeInitial assigns rank-based radius and golden-angle positions.
func (e *Engine) placeInitial(nodes []model.Node, ranked []Ranked) *state {
	defer metrics.Timer(metrics.InitialPlacement)()

	n := len(nodes)
	st := newState(n)
	span := e.cfg.OuterRadius - e.cfg.InnerRadius
	for i, r := range ranked {
		node := nodes[r.Index]
		st.seeds[r.Index] = nodeSeed(node.ID)

		normalized := 0.0
		if n > 1 {
			normalized = float64(i) / float64(n-1)
		}
		radius := RankRadius(normalized, e.cfg.InnerRadius, e.cfg.OuterRadius)
		radius += jitter(node.ID+"-radius", e.cfg.RadiusJitter*span)
		st.radius[r.Index] = clamp(radius, e.cfg.InnerRadius, e.cfg.OuterRadius)

		angle := math.Mod(float64(i)*GoldenAngle, 360)
		angle += CategoryOffset(node.Category)
		angle += jitter(node.ID+"-angle", angleJitterDegrees)
		angle += waveJitter(node.ID+"-wave", waveJitterDegrees)
		st.angle[r.Index] = NormalizeAngle(angle)
	}
	return st
}

// CategoryOffset biases same-category nodes toward a shared angular neighborhood.
// The offset comes from the category's first byte and lies in [-10.5°, 10.5°].
func CategoryOffset(c model.Category) float64 {
	first := byte('u')
	if len(c) > 0 {
		first = c[0]
	}
	return float64(int(first)%8)*3 - 10.5
}

// attract moves every referencing pull request into orbit around its issue.
// Only pull requests that own a reference edge move.
func (e *Engine) attract(st *state, nodes []model.Node, links []link) {
	defer metrics.Timer(metrics.Attraction)()

	perIssue := make(map[int]int, len(links))
	for _, l := range links {
		k := perIssue[l.issue] % len(orbitAngleBuckets)
		perIssue[l.issue]++

		id := nodes[l.pr].ID
		angle := st.angle[l.issue] + jitter(id+"-orbit-angle", orbitAngleJitter) + orbitAngleBuckets[k]
		radius := st.radius[l.issue] + jitter(id+"-orbit-radius", orbitRadiusJitter) + orbitRadiusBuckets[k]

		st.angle[l.pr] = NormalizeAngle(angle)
		st.radius[l.pr] = clamp(radius, e.cfg.InnerRadius, e.cfg.OuterRadius)
	}
}

// markerSizes scales normalized importance into a renderer size hint, indexed like
// the input nodes.
func markerSizes(ranked []Ranked) []float64 {
	sizes := make([]float64, len(ranked))
	if len(ranked) == 0 {
		return sizes
	}
	lo, hi := ranked[0].Importance, ranked[0].Importance
	for _, r := range ranked {
		lo = math.Min(lo, r.Importance)
		hi = math.Max(hi, r.Importance)
	}
	for _, r := range ranked {
		factor := 0.5
		if hi-lo > epsilon {
			factor = (r.Importance - lo) / (hi - lo)
		}
		if math.IsNaN(factor) {
			factor = 0.5
		}
		sizes[r.Index] = 10 + factor*12
	}
	return sizes
}
