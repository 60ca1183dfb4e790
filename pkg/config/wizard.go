package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// WizardAnswers holds the raw form values collected by RunWizard. Numbers stay
// strings so a half-typed value can be rejected with a useful message.
type WizardAnswers struct {
	InputName      string
	InputPath      string
	Title          string
	OutputDir      string
	SnapshotFormat string
	SnapshotPreset string
	Iterations     string
	MaxEdges       string
}

// AnswersFrom prefills the form from an existing config.
func AnswersFrom(cfg Config) WizardAnswers {
	a := WizardAnswers{
		Title:          cfg.Output.Title,
		OutputDir:      cfg.Output.Dir,
		SnapshotFormat: cfg.Output.SnapshotFormat,
		SnapshotPreset: cfg.Output.SnapshotPreset,
		Iterations:     strconv.Itoa(cfg.Layout.Iterations),
		MaxEdges:       strconv.Itoa(cfg.Layout.MaxRenderedEdges),
	}
	if len(cfg.Inputs) > 0 {
		a.InputName = cfg.Inputs[0].Name
		a.InputPath = cfg.Inputs[0].Path
	}
	return a
}

// Apply merges the answers into cfg and validates the result. An input is
// registered (or replaced by name) only when both name and path are given.
func (a WizardAnswers) Apply(cfg Config) (Config, error) {
	iterations, err := parseCount("iterations", a.Iterations, cfg.Layout.Iterations)
	if err != nil {
		return cfg, err
	}
	maxEdges, err := parseCount("max edges", a.MaxEdges, cfg.Layout.MaxRenderedEdges)
	if err != nil {
		return cfg, err
	}

	out := cfg
	out.Inputs = append([]Input(nil), cfg.Inputs...)
	out.Layout.Iterations = iterations
	out.Layout.MaxRenderedEdges = maxEdges
	if v := strings.TrimSpace(a.Title); v != "" {
		out.Output.Title = v
	}
	out.Output.Dir = expandHome(strings.TrimSpace(a.OutputDir))
	if a.SnapshotFormat != "" {
		out.Output.SnapshotFormat = a.SnapshotFormat
	}
	if a.SnapshotPreset != "" {
		out.Output.SnapshotPreset = a.SnapshotPreset
	}

	name, path := strings.TrimSpace(a.InputName), strings.TrimSpace(a.InputPath)
	switch {
	case name != "" && path != "":
		in := Input{Name: name, Path: expandHome(path)}
		if existing := out.FindInput(name); existing != nil {
			*existing = in
		} else {
			out.Inputs = append(out.Inputs, in)
		}
	case name != "" || path != "":
		return cfg, fmt.Errorf("%w: input needs both a name and a path", ErrInvalid)
	}

	if err := out.Validate(); err != nil {
		return cfg, err
	}
	return out, nil
}

func parseCount(field, s string, fallback int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fallback, fmt.Errorf("%w: %s must be a non-negative integer (got %q)", ErrInvalid, field, s)
	}
	return n, nil
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// newForm falls back to accessible (line-based) prompts when stdin is not a TTY.
func newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
	if !isTerminal() {
		form = form.WithAccessible(true)
	}
	return form
}

func validateCount(s string) error {
	_, err := parseCount("value", s, 0)
	return err
}

// RunWizard walks the user through the common settings and returns the updated
// config. Nothing is written to disk.
func RunWizard(cfg Config, out io.Writer) (Config, error) {
	a := AnswersFrom(cfg)

	fmt.Fprintln(out, "Star map setup")
	fmt.Fprintln(out, "──────────────")

	form := newForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Input name").
				Description("Short name usable in place of a path, e.g. tidescope (optional)").
				Value(&a.InputName),
			huh.NewInput().
				Title("Node file").
				Description("A .jsonl/.json node file or the directory holding it").
				Value(&a.InputPath),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Map title").
				Value(&a.Title).
				Placeholder("Star map"),
			huh.NewInput().
				Title("Output directory (optional)").
				Value(&a.OutputDir),
			huh.NewSelect[string]().
				Title("Snapshot format").
				Options(
					huh.NewOption("SVG", "svg"),
					huh.NewOption("PNG", "png"),
				).
				Value(&a.SnapshotFormat),
			huh.NewSelect[string]().
				Title("Snapshot size").
				Options(
					huh.NewOption("Compact", "compact"),
					huh.NewOption("Roomy", "roomy"),
				).
				Value(&a.SnapshotPreset),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Relaxation iterations").
				Value(&a.Iterations).
				Validate(validateCount),
			huh.NewInput().
				Title("Max rendered edges").
				Value(&a.MaxEdges).
				Validate(validateCount),
		),
	)

	if err := form.Run(); err != nil {
		return cfg, err
	}
	fmt.Fprintln(out)
	return a.Apply(cfg)
}
