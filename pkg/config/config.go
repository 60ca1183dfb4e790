// Package config handles loading and saving starmap configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/starmap/config.yaml
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/starmap/pkg/layout"
)

// Input is a named node file, so commands can take "tidescope" instead of a path.
type Input struct {
	Name string `yaml:"name" validate:"required"`
	Path string `yaml:"path" validate:"required"`
}

// OutputConfig controls export defaults.
type OutputConfig struct {
	Dir            string `yaml:"dir,omitempty"`                                                      // Default export directory
	SnapshotFormat string `yaml:"snapshot_format,omitempty" validate:"omitempty,oneof=svg png"`       // Used when the path has no extension
	SnapshotPreset string `yaml:"snapshot_preset,omitempty" validate:"omitempty,oneof=compact roomy"` // Canvas size preset
	Title          string `yaml:"title,omitempty"`                                                    // Snapshot header
}

// WatchConfig controls the file watcher used by `starmap watch`.
type WatchConfig struct {
	Debounce     time.Duration `yaml:"debounce,omitempty" validate:"gte=0"`
	PollInterval time.Duration `yaml:"poll_interval,omitempty" validate:"gte=0"`
	ForcePoll    bool          `yaml:"force_poll,omitempty"`
}

// Config is the top-level configuration for starmap.
type Config struct {
	Layout layout.Config `yaml:"layout"`
	Output OutputConfig  `yaml:"output,omitempty"`
	Watch  WatchConfig   `yaml:"watch,omitempty"`
	Inputs []Input       `yaml:"inputs,omitempty" validate:"dive"`
}

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

var validate = validator.New()

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Layout: layout.DefaultConfig(),
		Output: OutputConfig{
			SnapshotFormat: "svg",
			SnapshotPreset: "compact",
			Title:          "Star map",
		},
		Watch: WatchConfig{
			Debounce:     200 * time.Millisecond,
			PollInterval: 2 * time.Second,
		},
	}
}

// Validate checks every section, including the layout parameters.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s fails %q (got %v)", ErrInvalid, fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// ConfigDir returns the XDG config directory for starmap.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "starmap")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "starmap")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path. Keys missing from the file keep their
// defaults. Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	// Expand ~ in paths
	cfg.Output.Dir = expandHome(cfg.Output.Dir)
	for i := range cfg.Inputs {
		cfg.Inputs[i].Path = expandHome(cfg.Inputs[i].Path)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// ApplyEnvOverrides applies STARMAP_* environment overrides to the layout section.
func (c Config) ApplyEnvOverrides() Config {
	c.Layout = layout.ApplyEnvOverrides(c.Layout)
	return c
}

// FindInput returns the input with the given name, or nil.
func (c Config) FindInput(name string) *Input {
	for i := range c.Inputs {
		if strings.EqualFold(c.Inputs[i].Name, name) {
			return &c.Inputs[i]
		}
	}
	return nil
}

// ResolveInput maps arg to a file path: a registered input name resolves to its path,
// anything else is returned with ~ expanded.
func (c Config) ResolveInput(arg string) string {
	if in := c.FindInput(arg); in != nil {
		return expandHome(in.Path)
	}
	return expandHome(arg)
}

// OutputPath joins name onto the configured output directory. Absolute names and an
// empty output directory leave name unchanged.
func (c Config) OutputPath(name string) string {
	if c.Output.Dir == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(expandHome(c.Output.Dir), name)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
