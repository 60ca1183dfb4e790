package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/starmap/pkg/model"
)

// FormatTimeRel returns a relative time string (e.g., "5s ago", "2h ago").
func FormatTimeRel(t time.Time, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := now.Sub(t)
	switch {
	case d < time.Second:
		return "now"
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
}

// truncateRunesHelper truncates a string to max visual width (cells), adding suffix if needed.
// Uses go-runewidth to handle wide characters correctly.
func truncateRunesHelper(s string, maxWidth int, suffix string) string {
	if maxWidth <= 0 {
		return ""
	}

	width := runewidth.StringWidth(s)
	if width <= maxWidth {
		return s
	}

	suffixWidth := runewidth.StringWidth(suffix)
	if suffixWidth > maxWidth {
		return runewidth.Truncate(suffix, maxWidth, "")
	}

	targetWidth := maxWidth - suffixWidth
	return runewidth.Truncate(s, targetWidth, "") + suffix
}

// truncate truncates s to maxWidth cells.
func truncate(s string, maxWidth int) string {
	return truncateRunesHelper(s, maxWidth, "…")
}

// padRight pads s with spaces to width cells.
func padRight(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// kindBadge is the short marker shown in the kind column.
func kindBadge(k model.Kind) string {
	switch k {
	case model.KindIssue:
		return "ISS"
	case model.KindPullRequest:
		return "PR"
	case model.KindTodo:
		return "TODO"
	}
	return "?"
}

// compass names the octant an angle points into, with 0° at east.
func compass(angle float64) string {
	names := [8]string{"E", "NE", "N", "NW", "W", "SW", "S", "SE"}
	idx := int((angle+22.5)/45) % 8
	if idx < 0 {
		idx += 8
	}
	return names[idx]
}
