package layout

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Quality summarizes how readable a placement is.
type Quality struct {
	Nodes            int     `json:"nodes"`
	Pairs            int     `json:"pairs"`
	OverlappingPairs int     `json:"overlapping_pairs"`
	OverlapFraction  float64 `json:"overlap_fraction"`
	MeanNearest      float64 `json:"mean_nearest"`
	MinNearest       float64 `json:"min_nearest"`
	RadiusMean       float64 `json:"radius_mean"`
	RadiusStdDev     float64 `json:"radius_stddev"`
}

// Measure computes overlap and spread statistics for positions. Pairs closer than
// minSeparation count as overlapping.
func Measure(positions map[string]Position, minSeparation float64) Quality {
	ids := make([]string, 0, len(positions))
	for id := range positions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	pos := make([]Position, len(ids))
	for i, id := range ids {
		pos[i] = positions[id]
	}
	return measure(pos, minSeparation)
}

func measure(pos []Position, minSeparation float64) Quality {
	q := Quality{Nodes: len(pos)}
	if len(pos) == 0 {
		return q
	}

	radii := make([]float64, len(pos))
	for i, p := range pos {
		radii[i] = p.Radius
	}
	if len(radii) > 1 {
		q.RadiusMean, q.RadiusStdDev = stat.MeanStdDev(radii, nil)
	} else {
		q.RadiusMean = radii[0]
	}

	if len(pos) < 2 {
		return q
	}

	nearest := make([]float64, len(pos))
	for i := range nearest {
		nearest[i] = math.Inf(1)
	}
	for i := 0; i < len(pos); i++ {
		for j := i + 1; j < len(pos); j++ {
			d := PolarDistance(pos[i], pos[j])
			q.Pairs++
			if d < minSeparation {
				q.OverlappingPairs++
			}
			nearest[i] = math.Min(nearest[i], d)
			nearest[j] = math.Min(nearest[j], d)
		}
	}
	q.OverlapFraction = float64(q.OverlappingPairs) / float64(q.Pairs)
	q.MeanNearest = stat.Mean(nearest, nil)
	q.MinNearest = floats.Min(nearest)
	return q
}
