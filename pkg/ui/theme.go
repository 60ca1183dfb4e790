package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/starmap/pkg/model"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so every style helper can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeFg returns the given hex color for ANSI256+ terminals and a safe
// ANSI white (color 7) for 16-color or lower terminals.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

// Theme bundles the colors and pre-built styles of the terminal view.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Danger    lipgloss.AdaptiveColor

	Categories map[model.Category]lipgloss.AdaptiveColor

	Base      lipgloss.Style
	Header    lipgloss.Style
	Selected  lipgloss.Style
	MutedText lipgloss.Style
	ErrorText lipgloss.Style
	Panel     lipgloss.Style
}

// DefaultTheme returns the Dracula-inspired adaptive theme.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,

		Primary:   lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"},
		Secondary: lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
		Subtext:   lipgloss.AdaptiveColor{Light: "#666666", Dark: "#BFBFBF"},
		Border:    lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"},
		Highlight: lipgloss.AdaptiveColor{Light: "#E0E0E0", Dark: "#44475A"},
		Muted:     lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
		Danger:    lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"},

		Categories: map[model.Category]lipgloss.AdaptiveColor{
			model.CategorySecurity:        {Light: "#CC0000", Dark: "#FF5555"},
			model.CategoryPerformance:     {Light: "#B06800", Dark: "#FFB86C"},
			model.CategoryMaintainability: {Light: "#6B47D9", Dark: "#BD93F9"},
			model.CategoryDocumentation:   {Light: "#0066CC", Dark: "#6699FF"},
			model.CategoryTesting:         {Light: "#007700", Dark: "#50FA7B"},
			model.CategoryCI:              {Light: "#008080", Dark: "#8BE9FD"},
			model.CategoryFeature:         {Light: "#808000", Dark: "#F1FA8C"},
			model.CategoryUnknown:         {Light: "#888888", Dark: "#6272A4"},
		},
	}

	t.Base = r.NewStyle().Foreground(ThemeFg("#F8F8F2"))
	t.Header = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)
	t.Selected = r.NewStyle().
		Background(t.Highlight).
		Foreground(t.Primary).
		Bold(true)
	t.MutedText = r.NewStyle().Foreground(t.Muted)
	t.ErrorText = r.NewStyle().Foreground(t.Danger).Bold(true)
	t.Panel = r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1)
	return t
}

// CategoryStyle returns the foreground style for c.
func (t Theme) CategoryStyle(c model.Category) lipgloss.Style {
	col, ok := t.Categories[c]
	if !ok {
		col = t.Categories[model.CategoryUnknown]
	}
	return t.Renderer.NewStyle().Foreground(col)
}
