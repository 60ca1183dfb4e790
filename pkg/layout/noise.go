package layout

import (
	"math"

	"github.com/cespare/xxhash/v2"
)

// unitNoise maps key onto a stable pseudo-random value in [0, 1).
// The same key always yields the same value, independent of call order.
func unitNoise(key string) float64 {
	return float64(xxhash.Sum64String(key)>>11) / (1 << 53)
}

// jitter returns a stable value in [-amplitude, amplitude] derived from key.
func jitter(key string, amplitude float64) float64 {
	return (unitNoise(key)*2 - 1) * amplitude
}

// waveJitter is a sinusoidal jitter term in [-amplitude, amplitude].
func waveJitter(key string, amplitude float64) float64 {
	return math.Sin(unitNoise(key)*2*math.Pi) * amplitude
}

// nodeSeed is the per-node seed mixed into pairwise noise during relaxation.
func nodeSeed(id string) uint64 {
	return xxhash.Sum64String(id)
}

// pairNoise derives a stable value in [0, 1) for an unordered node pair at a given
// relaxation iteration.
func pairNoise(seedA, seedB uint64, iteration int) float64 {
	if seedA > seedB {
		seedA, seedB = seedB, seedA
	}
	x := seedA ^ (seedB<<29 | seedB>>35) ^ (uint64(iteration)+1)*0x9e3779b97f4a7c15
	return float64(splitmix64(x)>>11) / (1 << 53)
}

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
