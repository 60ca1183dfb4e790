package layout

import (
	"math"
	"testing"
)

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{359.5, 359.5},
		{360, 0},
		{720, 0},
		{-90, 270},
		{-360, 0},
		{450, 90},
		{math.NaN(), 0},
		{math.Inf(1), 0},
	}
	for _, tt := range tests {
		if got := NormalizeAngle(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("NormalizeAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestAngularDeltaWraps(t *testing.T) {
	tests := []struct {
		a, b, want float64
	}{
		{10, 20, 10},
		{350, 10, 20},
		{0, 180, 180},
		{90, 270, 180},
		{359, 1, 2},
	}
	for _, tt := range tests {
		if got := AngularDelta(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("AngularDelta(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
		if got := AngularDelta(tt.b, tt.a); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("AngularDelta(%v, %v) = %v, want %v (symmetry)", tt.b, tt.a, got, tt.want)
		}
	}
}

func TestSignedAngularDelta(t *testing.T) {
	if got := signedAngularDelta(10, 350); math.Abs(got-20) > 1e-9 {
		t.Errorf("signedAngularDelta(10, 350) = %v, want 20", got)
	}
	if got := signedAngularDelta(350, 10); math.Abs(got+20) > 1e-9 {
		t.Errorf("signedAngularDelta(350, 10) = %v, want -20", got)
	}
	if got := signedAngularDelta(0, 180); got != 180 {
		t.Errorf("signedAngularDelta(0, 180) = %v, want 180", got)
	}
}

func TestPolarDistance(t *testing.T) {
	a := Position{Radius: 1, Angle: 0}
	b := Position{Radius: 1.3, Angle: 24}
	// dr = 0.3, da = 24/60 = 0.4
	if got := PolarDistance(a, b); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("PolarDistance = %v, want 0.5", got)
	}
	if got := PolarDistance(Position{Radius: 2, Angle: 355}, Position{Radius: 2, Angle: 5}); math.Abs(got-10.0/60) > 1e-9 {
		t.Errorf("PolarDistance across 0° = %v, want %v", got, 10.0/60)
	}
	if got := PolarDistance(a, a); got != 0 {
		t.Errorf("PolarDistance(a, a) = %v, want 0", got)
	}
}

func TestRankRadiusMonotonic(t *testing.T) {
	const inner, outer = 0.3, 6.5
	if got := RankRadius(0, inner, outer); got != inner {
		t.Errorf("RankRadius(0) = %v, want %v", got, inner)
	}
	if got := RankRadius(1, inner, outer); got != outer {
		t.Errorf("RankRadius(1) = %v, want %v", got, outer)
	}
	prev := RankRadius(0, inner, outer)
	for i := 1; i <= 100; i++ {
		r := RankRadius(float64(i)/100, inner, outer)
		if r < prev {
			t.Fatalf("RankRadius not monotonic at %d: %v < %v", i, r, prev)
		}
		prev = r
	}
	// Square-root mapping: the quarter rank reaches half the span.
	if got := RankRadius(0.25, inner, outer); math.Abs(got-(inner+0.5*(outer-inner))) > 1e-9 {
		t.Errorf("RankRadius(0.25) = %v", got)
	}
}

func TestClamp(t *testing.T) {
	if got := clamp(math.NaN(), 1, 2); got != 1 {
		t.Errorf("clamp(NaN) = %v, want 1", got)
	}
	if got := clamp(5, 1, 2); got != 2 {
		t.Errorf("clamp(5) = %v, want 2", got)
	}
	if got := clamp(-1, 1, 2); got != 1 {
		t.Errorf("clamp(-1) = %v, want 1", got)
	}
}
