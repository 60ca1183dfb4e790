package layout

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// GoldenAngle is the angular increment between consecutive ranks, in degrees.
// Its continued-fraction expansion avoids small-denominator resonances with 360°.
const GoldenAngle = 137.5

// ReferenceEdgeDistance is the fixed distance assigned to reference edges.
const ReferenceEdgeDistance = 0.1

// Config holds the tunable parameters of a layout pass.
type Config struct {
	InnerRadius        float64 `yaml:"inner_radius" json:"inner_radius" validate:"gte=0"`
	OuterRadius        float64 `yaml:"outer_radius" json:"outer_radius" validate:"gtfield=InnerRadius"`
	MinSeparation      float64 `yaml:"min_separation" json:"min_separation" validate:"gt=0"`
	Iterations         int     `yaml:"iterations" json:"iterations" validate:"gte=0,lte=10000"`
	MaxRenderedEdges   int     `yaml:"max_rendered_edges" json:"max_rendered_edges" validate:"gte=0"`
	ProximityThreshold float64 `yaml:"proximity_threshold" json:"proximity_threshold" validate:"gte=0"`

	// Fine tuning. Zero values are valid and disable the corresponding effect.
	RadiusJitter       float64 `yaml:"radius_jitter" json:"radius_jitter" validate:"gte=0,lte=0.5"`
	RepulsionStrength  float64 `yaml:"repulsion_strength" json:"repulsion_strength" validate:"gte=0,lte=2"`
	LinkedDamping      float64 `yaml:"linked_damping" json:"linked_damping" validate:"gte=0,lte=1"`
	FreeDamping        float64 `yaml:"free_damping" json:"free_damping" validate:"gte=0,lte=1"`
	CollinearTolerance float64 `yaml:"collinear_tolerance" json:"collinear_tolerance" validate:"gte=0,lt=90"`
	CollinearStrength  float64 `yaml:"collinear_strength" json:"collinear_strength" validate:"gte=0"`
}

// DefaultConfig returns the standard star map parameters.
func DefaultConfig() Config {
	return Config{
		InnerRadius:        0.3,
		OuterRadius:        6.5,
		MinSeparation:      0.35,
		Iterations:         50,
		MaxRenderedEdges:   50,
		ProximityThreshold: 0.6,

		RadiusJitter:       0.075,
		RepulsionStrength:  0.5,
		LinkedDamping:      0.15,
		FreeDamping:        0.6,
		CollinearTolerance: 5,
		CollinearStrength:  1.5,
	}
}

// ErrInvalidConfig wraps every configuration validation failure.
var ErrInvalidConfig = errors.New("invalid layout config")

var validate = validator.New()

// Validate checks ranges and cross-field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s fails %q (got %v)", ErrInvalidConfig, fe.Field(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// ApplyEnvOverrides applies STARMAP_* environment overrides to cfg.
// Invalid values are ignored.
//
//	STARMAP_ITERATIONS=<n>       relaxation iteration count
//	STARMAP_MAX_EDGES=<n>        retained edge cap
//	STARMAP_MIN_SEPARATION=<f>   overlap threshold
func ApplyEnvOverrides(cfg Config) Config {
	if v, ok := envInt("STARMAP_ITERATIONS"); ok && v >= 0 {
		cfg.Iterations = v
	}
	if v, ok := envInt("STARMAP_MAX_EDGES"); ok && v >= 0 {
		cfg.MaxRenderedEdges = v
	}
	if v, ok := envFloat("STARMAP_MIN_SEPARATION"); ok && v > 0 {
		cfg.MinSeparation = v
	}
	return cfg
}

func envInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func envFloat(name string) (float64, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
