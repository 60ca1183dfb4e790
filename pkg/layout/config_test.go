package layout

import (
	"errors"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if GoldenAngle != 137.5 {
		t.Errorf("GoldenAngle = %v, want 137.5", GoldenAngle)
	}
	if cfg.MinSeparation != 0.35 || cfg.Iterations != 50 || cfg.MaxRenderedEdges != 50 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestConfigValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"outer below inner", func(c *Config) { c.OuterRadius = c.InnerRadius }},
		{"negative inner", func(c *Config) { c.InnerRadius = -1 }},
		{"zero separation", func(c *Config) { c.MinSeparation = 0 }},
		{"negative iterations", func(c *Config) { c.Iterations = -1 }},
		{"too many iterations", func(c *Config) { c.Iterations = 10001 }},
		{"negative edge cap", func(c *Config) { c.MaxRenderedEdges = -5 }},
		{"damping above one", func(c *Config) { c.FreeDamping = 1.5 }},
		{"tolerance at 90", func(c *Config) { c.CollinearTolerance = 90 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error %v does not wrap ErrInvalidConfig", err)
			}
			if _, err := NewEngine(cfg); err == nil {
				t.Error("NewEngine accepted invalid config")
			}
		})
	}
}

func TestConfigZeroTuningIsValid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Iterations = 0
	cfg.RadiusJitter = 0
	cfg.CollinearTolerance = 0
	cfg.MaxRenderedEdges = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("zeroed tuning rejected: %v", err)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("STARMAP_ITERATIONS", "12")
	t.Setenv("STARMAP_MAX_EDGES", " 7 ")
	t.Setenv("STARMAP_MIN_SEPARATION", "0.5")

	cfg := ApplyEnvOverrides(DefaultConfig())
	if cfg.Iterations != 12 {
		t.Errorf("Iterations = %d, want 12", cfg.Iterations)
	}
	if cfg.MaxRenderedEdges != 7 {
		t.Errorf("MaxRenderedEdges = %d, want 7", cfg.MaxRenderedEdges)
	}
	if cfg.MinSeparation != 0.5 {
		t.Errorf("MinSeparation = %v, want 0.5", cfg.MinSeparation)
	}
}

func TestApplyEnvOverridesIgnoresInvalid(t *testing.T) {
	t.Setenv("STARMAP_ITERATIONS", "lots")
	t.Setenv("STARMAP_MAX_EDGES", "-3")
	t.Setenv("STARMAP_MIN_SEPARATION", "0")

	def := DefaultConfig()
	if cfg := ApplyEnvOverrides(def); cfg != def {
		t.Errorf("invalid env values changed config: %+v", cfg)
	}
}
