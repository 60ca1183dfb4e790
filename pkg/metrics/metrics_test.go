package metrics

import (
	"testing"
	"time"
)

func TestTimingMetricRecord(t *testing.T) {
	m := newTimingMetric("test")
	m.Record(10 * time.Millisecond)
	m.Record(30 * time.Millisecond)

	if m.Count() != 2 {
		t.Fatalf("count = %d, want 2", m.Count())
	}
	if got := time.Duration(m.MaxNs()); got != 30*time.Millisecond {
		t.Errorf("max = %v, want 30ms", got)
	}
	if got := time.Duration(m.MinNs()); got != 10*time.Millisecond {
		t.Errorf("min = %v, want 10ms", got)
	}
	if got := time.Duration(m.AvgNs()); got != 20*time.Millisecond {
		t.Errorf("avg = %v, want 20ms", got)
	}

	m.Reset()
	if m.Count() != 0 || m.TotalNs() != 0 {
		t.Errorf("reset did not clear metric: count=%d total=%d", m.Count(), m.TotalNs())
	}
}

func TestTimerRecordsWhenEnabled(t *testing.T) {
	prev := Enabled()
	SetEnabled(true)
	defer SetEnabled(prev)

	m := newTimingMetric("timer")
	stop := Timer(m)
	stop()
	if m.Count() != 1 {
		t.Fatalf("count = %d, want 1", m.Count())
	}

	SetEnabled(false)
	Timer(m)()
	if m.Count() != 1 {
		t.Errorf("disabled timer recorded: count = %d", m.Count())
	}
}

func TestCacheMetricStats(t *testing.T) {
	prev := Enabled()
	SetEnabled(true)
	defer SetEnabled(prev)

	m := newCacheMetric("cache")
	m.Hit()
	m.Hit()
	m.Hit()
	m.Miss()

	s := m.Stats()
	if s.Hits != 3 || s.Misses != 1 {
		t.Fatalf("stats = %+v, want 3 hits 1 miss", s)
	}
	if s.HitRatio != 0.75 {
		t.Errorf("hit ratio = %v, want 0.75", s.HitRatio)
	}

	m.Reset()
	if s := m.Stats(); s.Hits != 0 || s.Misses != 0 || s.HitRatio != 0 {
		t.Errorf("reset stats = %+v", s)
	}
}

func TestResetAllClearsGlobals(t *testing.T) {
	prev := Enabled()
	SetEnabled(true)
	defer SetEnabled(prev)

	Relaxation.Record(time.Millisecond)
	LayoutCache.Miss()
	ResetAll()

	if Relaxation.Count() != 0 {
		t.Errorf("relaxation count = %d after reset", Relaxation.Count())
	}
	if len(AllCacheStats()) != 0 {
		t.Errorf("cache stats not cleared: %+v", AllCacheStats())
	}
	if len(TakeSnapshot().Timings) != 0 {
		t.Errorf("snapshot timings not empty after reset")
	}
}
