package risk

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeParams(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadParams_EmptyPathUsesDefaults(t *testing.T) {
	p, err := LoadParams("")
	require.NoError(t, err)
	assert.Equal(t, DefaultParams(), p)
}

func TestLoadParams_Overlay(t *testing.T) {
	path := writeParams(t, `
num_trees: 20
seed: 7
trim_fraction: 0.2
tree:
  temperature_threshold: 30
`)

	p, err := LoadParams(path)
	require.NoError(t, err)
	assert.Equal(t, 20, p.NumTrees)
	assert.Equal(t, int64(7), p.Seed)
	assert.Equal(t, 0.2, p.TrimFraction)
	assert.Equal(t, 30.0, p.Tree.TemperatureThreshold)

	// Untouched keys keep their defaults.
	assert.Equal(t, 25.0, p.BaseProbability)
	assert.Equal(t, 40.0, p.Tree.HumidityThreshold)
}

func TestLoadParams_Errors(t *testing.T) {
	_, err := LoadParams(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadParams(writeParams(t, "num_trees: [oops"))
	assert.Error(t, err)

	_, err = LoadParams(writeParams(t, "trim_fraction: 0.6"))
	assert.Error(t, err)
}

func TestParams_Validate(t *testing.T) {
	require.NoError(t, DefaultParams().Validate())

	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"no trees", func(p *Params) { p.NumTrees = 0 }},
		{"negative trim", func(p *Params) { p.TrimFraction = -0.1 }},
		{"inverted jitter", func(p *Params) { p.JitterMin, p.JitterMax = 1.1, 0.9 }},
		{"zero cap", func(p *Params) { p.MaxProbability = 0 }},
		{"zero temperature threshold", func(p *Params) { p.Tree.TemperatureThreshold = 0 }},
		{"humidity threshold at 100", func(p *Params) { p.Tree.HumidityThreshold = 100 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			assert.Error(t, p.Validate())
		})
	}
}
