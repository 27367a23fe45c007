package queuebench

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSweepConfig(t *testing.T) {
	cfg := DefaultSweepConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, []int{6, 8, 10}, cfg.Servers)
	assert.Equal(t, 200, cfg.Resolution)
	assert.Equal(t, 0.2, cfg.TargetSojourn)
	assert.Equal(t, 1.0, cfg.SojournInflation)
}

func TestSweepConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SweepConfig)
	}{
		{"zero resolution", func(c *SweepConfig) { c.Resolution = 0 }},
		{"inverted lambda range", func(c *SweepConfig) { c.LambdaMin, c.LambdaMax = c.LambdaMax, c.LambdaMin }},
		{"inverted mu range", func(c *SweepConfig) { c.MuMin, c.MuMax = c.MuMax, c.MuMin }},
		{"no servers", func(c *SweepConfig) { c.Servers = nil }},
		{"bad server count", func(c *SweepConfig) { c.Servers = []int{6, 0} }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultSweepConfig()
			tc.mutate(&cfg)

			var domErr *DomainError
			require.ErrorAs(t, cfg.Validate(), &domErr)
		})
	}
}

func TestLoadSweepConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sweep.yaml")
	content := `
lambda_min: 1
lambda_max: 300
mu_min: 10
mu_max: 60
resolution: 100
servers: [4, 6]
target_sojourn: 0.15
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadSweepConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 1.0, cfg.LambdaMin)
	assert.Equal(t, 300.0, cfg.LambdaMax)
	assert.Equal(t, []int{4, 6}, cfg.Servers)
	assert.Equal(t, 0.15, cfg.TargetSojourn)
	// Unset fields keep their defaults.
	assert.Equal(t, 1.0, cfg.SojournInflation)
	assert.Equal(t, 0, cfg.Workers)
}

func TestLoadSweepConfig_Errors(t *testing.T) {
	_, err := LoadSweepConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("servers: [0]\n"), 0o644))
	_, err = LoadSweepConfig(bad)
	var domErr *DomainError
	require.ErrorAs(t, err, &domErr)

	notYAML := filepath.Join(t.TempDir(), "garbage.yaml")
	require.NoError(t, os.WriteFile(notYAML, []byte("{{nope"), 0o644))
	_, err = LoadSweepConfig(notYAML)
	require.Error(t, err)
}
