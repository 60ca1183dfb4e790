package ui

import (
	"testing"
	"time"

	"github.com/vanderheijden86/starmap/pkg/model"
)

func TestTruncateWideRunes(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"hello world", 6, "hello…"},
		{"日本語テキスト", 6, "日本…"},
		{"anything", 0, ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("日本", 6); got != "日本  " {
		t.Errorf("padRight wide = %q", got)
	}
	if got := padRight("toolong", 3); got != "toolong" {
		t.Errorf("padRight long = %q", got)
	}
}

func TestFormatTimeRel(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		at   time.Time
		want string
	}{
		{time.Time{}, "never"},
		{now, "now"},
		{now.Add(-12 * time.Second), "12s ago"},
		{now.Add(-5 * time.Minute), "5m ago"},
		{now.Add(-3 * time.Hour), "3h ago"},
	}
	for _, tt := range tests {
		if got := FormatTimeRel(tt.at, now); got != tt.want {
			t.Errorf("FormatTimeRel(%v) = %q, want %q", tt.at, got, tt.want)
		}
	}
}

func TestCompass(t *testing.T) {
	tests := map[float64]string{0: "E", 44: "NE", 90: "N", 180: "W", 270: "S", 315: "SE", 359: "E"}
	for angle, want := range tests {
		if got := compass(angle); got != want {
			t.Errorf("compass(%v) = %q, want %q", angle, got, want)
		}
	}
}

func TestKindBadge(t *testing.T) {
	for k, want := range map[model.Kind]string{
		model.KindIssue:       "ISS",
		model.KindPullRequest: "PR",
		model.KindTodo:        "TODO",
		model.Kind("x"):       "?",
	} {
		if got := kindBadge(k); got != want {
			t.Errorf("kindBadge(%q) = %q, want %q", k, got, want)
		}
	}
}
