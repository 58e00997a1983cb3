package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.True(t, cfg.Analytics.CacheEnabled)
	assert.Equal(t, time.Minute, cfg.Analytics.SnapshotTTL)
	assert.Equal(t, 15.0, cfg.Analytics.LateThresholdMinutes)
	assert.Equal(t, []float64{-10, 0, 5, 10, 15, 20, 30, 60}, cfg.Analytics.HistogramEdges)

	loc, err := cfg.Analytics.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("LATE_THRESHOLD_MINUTES", "10")
	t.Setenv("HISTOGRAM_EDGES", "0, 5, 10")
	t.Setenv("SNAPSHOT_TTL", "2m")
	t.Setenv("ENV", EnvProduction)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10.0, cfg.Analytics.LateThresholdMinutes)
	assert.Equal(t, []float64{0, 5, 10}, cfg.Analytics.HistogramEdges)
	assert.Equal(t, 2*time.Minute, cfg.Analytics.SnapshotTTL)
	assert.False(t, cfg.EnableDocs)
}

func TestLoadRejectsInvalidEdges(t *testing.T) {
	t.Setenv("HISTOGRAM_EDGES", "0,five")

	_, err := Load()
	assert.Error(t, err)
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, time.Second, parseDuration("nope", time.Second))
	assert.Equal(t, time.Second, parseDuration("", time.Second))
	assert.Equal(t, 3*time.Minute, parseDuration("3m", time.Second))
}
