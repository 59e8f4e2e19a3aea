package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/internal/classify"
	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/internal/profiling"
)

func TestLoadDefaultsMatchEngineDefaults(t *testing.T) {
	t.Setenv("NUMERIC_THRESHOLD", "")
	t.Setenv("DATE_THRESHOLD", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.InDelta(t, classify.DefaultConfig().NumericThreshold, cfg.Analysis.NumericThreshold, 1e-9)
	assert.InDelta(t, classify.DefaultConfig().DateThreshold, cfg.Analysis.DateThreshold, 1e-9)
	assert.InDelta(t, profiling.DefaultConfig().DateThreshold, cfg.Analysis.DateThreshold, 1e-9)
}

func TestLoadRejectsOutOfRangeThreshold(t *testing.T) {
	t.Setenv("DATE_THRESHOLD", "1.5")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATE_THRESHOLD")
}
