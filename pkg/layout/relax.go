package layout

import (
	"math"

	"github.com/vanderheijden86/starmap/pkg/metrics"
)

// relax runs the fixed-iteration repulsion pass. Impulses are accumulated for every
// pair first and applied together, so the result does not depend on pair order.
func (e *Engine) relax(st *state, ls linkSet) {
	defer metrics.Timer(metrics.Relaxation)()

	n := len(st.radius)
	if n < 2 || e.cfg.Iterations == 0 {
		return
	}

	cfg := e.cfg
	dr := make([]float64, n)
	da := make([]float64, n)
	maxStep := cfg.MinSeparation

	for iter := 0; iter < cfg.Iterations; iter++ {
		for i := range dr {
			dr[i], da[i] = 0, 0
		}

		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				deltaR := st.radius[i] - st.radius[j]
				deltaA := signedAngularDelta(st.angle[i], st.angle[j])
				sep := math.Abs(deltaA)

				if !ls.linked(i, j) {
					d := math.Sqrt(deltaR*deltaR + (deltaA/degreesPerUnit)*(deltaA/degreesPerUnit))
					if d < cfg.MinSeparation {
						if d < epsilon {
							// Coincident: pick a stable direction for the pair.
							theta := pairNoise(st.seeds[i], st.seeds[j], -1) * 2 * math.Pi
							deltaR = math.Cos(theta) * epsilon
							deltaA = math.Sin(theta) * epsilon * degreesPerUnit
							d = epsilon
						}
						m := cfg.RepulsionStrength * (cfg.MinSeparation - d) / d
						dr[i] += m * deltaR
						dr[j] -= m * deltaR
						da[i] += m * deltaA
						da[j] -= m * deltaA
					}
				}

				if cfg.CollinearTolerance > 0 {
					dev := math.Min(sep, 180-sep)
					if dev < cfg.CollinearTolerance {
						closeness := 1 - dev/cfg.CollinearTolerance
						kick := closeness * cfg.CollinearStrength * (0.5 + 0.5*pairNoise(st.seeds[i], st.seeds[j], iter))
						// Near 0° push the pair apart; near 180° pull it off the diameter.
						dir := 1.0
						if deltaA < 0 || (deltaA == 0 && pairNoise(st.seeds[i], st.seeds[j], -2) < 0.5) {
							dir = -1
						}
						if sep > 90 {
							dir = -dir
						}
						da[i] += dir * kick
						da[j] -= dir * kick
					}
				}
			}
		}

		for i := 0; i < n; i++ {
			damping := cfg.FreeDamping
			if ls.nodes[i] {
				damping = cfg.LinkedDamping
			}
			stepR := dr[i] * damping
			stepA := da[i] * damping
			if mag := math.Hypot(stepR, stepA/degreesPerUnit); mag > maxStep {
				scale := maxStep / mag
				stepR *= scale
				stepA *= scale
			}
			if math.IsNaN(stepR) || math.IsNaN(stepA) || math.IsInf(stepR, 0) || math.IsInf(stepA, 0) {
				continue
			}
			st.radius[i] = clamp(st.radius[i]+stepR, cfg.InnerRadius, cfg.OuterRadius)
			st.angle[i] = NormalizeAngle(st.angle[i] + stepA)
		}
	}
}
