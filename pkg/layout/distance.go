package layout

import "math"

// Position is a point on the star map in polar coordinates.
// Angle is in degrees, normalized into [0, 360).
type Position struct {
	Radius float64 `json:"radius"`
	Angle  float64 `json:"angle"`
}

// degreesPerUnit converts angular separation into the same units as radius.
// Radius encodes importance while angle is cosmetic, so angle is discounted.
const degreesPerUnit = 60.0

// epsilon floors distances before they are used as divisors.
const epsilon = 1e-6

// NormalizeAngle wraps a into [0, 360).
func NormalizeAngle(a float64) float64 {
	if math.IsNaN(a) || math.IsInf(a, 0) {
		return 0
	}
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	if a >= 360 {
		a = 0
	}
	return a
}

// AngularDelta returns the unsigned angular separation of a and b in [0, 180].
func AngularDelta(a, b float64) float64 {
	d := math.Abs(a - b)
	d = math.Mod(d, 360)
	if 360-d < d {
		d = 360 - d
	}
	return d
}

// signedAngularDelta returns a-b wrapped into (-180, 180].
func signedAngularDelta(a, b float64) float64 {
	d := math.Mod(a-b, 360)
	if d > 180 {
		d -= 360
	} else if d <= -180 {
		d += 360
	}
	return d
}

// PolarDistance is the anisotropic distance used for overlap and proximity decisions:
// sqrt((r1-r2)² + (angularDelta/60)²).
func PolarDistance(a, b Position) float64 {
	dr := a.Radius - b.Radius
	da := AngularDelta(a.Angle, b.Angle) / degreesPerUnit
	return math.Sqrt(dr*dr + da*da)
}

// RankRadius maps a normalized rank in [0, 1] to its jitter-free radius.
// The square root keeps the area per rank step even across the annulus.
func RankRadius(normalizedRank, inner, outer float64) float64 {
	if normalizedRank <= 0 {
		return inner
	}
	if normalizedRank >= 1 {
		return outer
	}
	return inner + math.Sqrt(normalizedRank)*(outer-inner)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
