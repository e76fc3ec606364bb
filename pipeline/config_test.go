package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsOutOfRange(t *testing.T) {
	cases := []struct {
		name  string
		field string
		tweak func(*Config)
	}{
		{"k too small", "k", func(c *Config) { c.K = 0 }},
		{"k too large", "k", func(c *Config) { c.K = 32 }},
		{"window", "window_size", func(c *Config) { c.WindowSize = 0 }},
		{"gap tolerance", "gap_tolerance", func(c *Config) { c.GapTolerance = -1 }},
		{"max gap", "max_gap", func(c *Config) { c.MaxGap = 0 }},
		{"min anchors", "min_anchors", func(c *Config) { c.MinAnchors = 0 }},
		{"band width", "band_width", func(c *Config) { c.BandWidth = 0 }},
		{"error rate", "max_error_rate", func(c *Config) { c.MaxErrorRate = 1.5 }},
		{"overlap length", "min_overlap_length", func(c *Config) { c.MinOverlapLength = -1 }},
		{"identity", "min_identity", func(c *Config) { c.MinIdentity = -0.1 }},
		{"merge fraction", "merge_fraction", func(c *Config) { c.MergeFraction = 2 }},
		{"workers", "workers", func(c *Config) { c.Workers = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.tweak(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfiguration))
			var ce *ConfigError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tc.field, ce.Field)
		})
	}
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(name, []byte("k: 20\nwindow_size: 32\nmin_identity: 0.9\n"), 0644))
	cfg, err := LoadConfig(name)
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.K)
	assert.Equal(t, 32, cfg.WindowSize)
	assert.Equal(t, 0.9, cfg.MinIdentity)
	//untouched fields keep their defaults
	assert.Equal(t, DefaultConfig().MaxGap, cfg.MaxGap)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(name, []byte("k: 99\n"), 0644))
	_, err := LoadConfig(name)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestLoadConfigRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(name, []byte(":\n\t- not yaml"), 0644))
	_, err := LoadConfig(name)
	assert.ErrorIs(t, err, ErrConfiguration)
}
