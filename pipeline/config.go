package pipeline

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrConfiguration wraps every parameter validation failure. Validation runs
// before any computation starts.
var ErrConfiguration = errors.New("configuration error")

// ConfigError reports which field failed validation and why.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%v: %s %s", ErrConfiguration, e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrConfiguration
}

// Config is the full parameter surface of a run. Zero values are not usable;
// start from DefaultConfig and override.
type Config struct {
	K                int     `yaml:"k"`                  //fingerprint k-mer length
	WindowSize       int     `yaml:"window_size"`        //minimizer window, in k-mer positions
	GapTolerance     int     `yaml:"gap_tolerance"`      //diagonal drift allowed within a chain
	MaxGap           int     `yaml:"max_gap"`            //largest anchor step within a chain
	MinAnchors       int     `yaml:"min_anchors"`        //chains below this are discarded
	BandWidth        int     `yaml:"band_width"`         //refiner edit-distance band half-width
	MaxErrorRate     float64 `yaml:"max_error_rate"`     //refiner extension stop threshold
	MinOverlapLength int     `yaml:"min_overlap_length"` //refined overlaps below this are rejected
	MinIdentity      float64 `yaml:"min_identity"`       //refined overlaps below this are rejected
	MergeFraction    float64 `yaml:"merge_fraction"`     //same-sequence span merge threshold
	SelfCompare      bool    `yaml:"self_compare"`       //also chain sequences against themselves
	Workers          int     `yaml:"workers"`            //0 means GOMAXPROCS
}

func DefaultConfig() Config {
	return Config{
		K:                16,
		WindowSize:       24,
		GapTolerance:     24,
		MaxGap:           500,
		MinAnchors:       3,
		BandWidth:        16,
		MaxErrorRate:     0.25,
		MinOverlapLength: 100,
		MinIdentity:      0.75,
		MergeFraction:    0.5,
	}
}

// LoadConfig reads a YAML config file over the defaults.
func LoadConfig(filename string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(filename)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %s: %v", ErrConfiguration, filename, err)
	}
	return cfg, cfg.Validate()
}

// Validate fails fast on the first out-of-range parameter.
func (c *Config) Validate() error {
	switch {
	case c.K < 1 || c.K > 31:
		return &ConfigError{"k", "must be in [1,31]"}
	case c.WindowSize < 1:
		return &ConfigError{"window_size", "must be > 0"}
	case c.GapTolerance < 0:
		return &ConfigError{"gap_tolerance", "must be >= 0"}
	case c.MaxGap < 1:
		return &ConfigError{"max_gap", "must be > 0"}
	case c.MinAnchors < 1:
		return &ConfigError{"min_anchors", "must be >= 1"}
	case c.BandWidth < 1:
		return &ConfigError{"band_width", "must be > 0"}
	case c.MaxErrorRate < 0 || c.MaxErrorRate > 1:
		return &ConfigError{"max_error_rate", "must be in [0,1]"}
	case c.MinOverlapLength < 0:
		return &ConfigError{"min_overlap_length", "must be >= 0"}
	case c.MinIdentity < 0 || c.MinIdentity > 1:
		return &ConfigError{"min_identity", "must be in [0,1]"}
	case c.MergeFraction < 0 || c.MergeFraction > 1:
		return &ConfigError{"merge_fraction", "must be in [0,1]"}
	case c.Workers < 0:
		return &ConfigError{"workers", "must be >= 0"}
	}
	return nil
}
