package config

import (
	"errors"
	"testing"
)

func TestAnswersFrom(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Inputs = []Input{{Name: "tidescope", Path: "/data/nodes.jsonl"}}

	a := AnswersFrom(cfg)
	if a.Iterations != "50" || a.MaxEdges != "50" {
		t.Errorf("numbers = %q %q", a.Iterations, a.MaxEdges)
	}
	if a.InputName != "tidescope" || a.InputPath != "/data/nodes.jsonl" {
		t.Errorf("input = %q %q", a.InputName, a.InputPath)
	}
	if a.SnapshotFormat != "svg" || a.SnapshotPreset != "compact" {
		t.Errorf("snapshot = %q %q", a.SnapshotFormat, a.SnapshotPreset)
	}
}

func TestWizardAnswers_Apply(t *testing.T) {
	base := DefaultConfig()
	a := AnswersFrom(base)
	a.InputName = "tidescope"
	a.InputPath = "/data/nodes.jsonl"
	a.Title = "  Tidescope  "
	a.SnapshotFormat = "png"
	a.Iterations = "80"
	a.MaxEdges = ""

	cfg, err := a.Apply(base)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if cfg.Layout.Iterations != 80 {
		t.Errorf("iterations = %d", cfg.Layout.Iterations)
	}
	if cfg.Layout.MaxRenderedEdges != 50 {
		t.Errorf("blank max edges should keep the current value, got %d", cfg.Layout.MaxRenderedEdges)
	}
	if cfg.Output.Title != "Tidescope" || cfg.Output.SnapshotFormat != "png" {
		t.Errorf("output = %+v", cfg.Output)
	}
	if len(cfg.Inputs) != 1 || cfg.Inputs[0].Path != "/data/nodes.jsonl" {
		t.Errorf("inputs = %+v", cfg.Inputs)
	}
	if len(base.Inputs) != 0 {
		t.Error("Apply mutated the base config")
	}

	// Same name replaces the existing input.
	a.InputPath = "/other/nodes.jsonl"
	cfg, err = a.Apply(cfg)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(cfg.Inputs) != 1 || cfg.Inputs[0].Path != "/other/nodes.jsonl" {
		t.Errorf("inputs after replace = %+v", cfg.Inputs)
	}
}

func TestWizardAnswers_ApplyRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*WizardAnswers)
	}{
		{"non-numeric iterations", func(a *WizardAnswers) { a.Iterations = "lots" }},
		{"negative edges", func(a *WizardAnswers) { a.MaxEdges = "-1" }},
		{"too many iterations", func(a *WizardAnswers) { a.Iterations = "20000" }},
		{"name without path", func(a *WizardAnswers) { a.InputName = "x"; a.InputPath = "" }},
		{"bad format", func(a *WizardAnswers) { a.SnapshotFormat = "gif" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := DefaultConfig()
			a := AnswersFrom(base)
			tt.mutate(&a)
			cfg, err := a.Apply(base)
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
			if cfg.Layout.Iterations != base.Layout.Iterations {
				t.Error("failed Apply should return the base config")
			}
		})
	}
}
