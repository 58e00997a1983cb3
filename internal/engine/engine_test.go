package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppliesDefaults(t *testing.T) {
	e, err := New(Options{})
	require.NoError(t, err)
	assert.Equal(t, DefaultLateThreshold, e.LateThreshold())
	assert.Equal(t, DefaultHistogramEdges, e.HistogramEdges())
	assert.Equal(t, time.UTC, e.Location())
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	cases := map[string]Options{
		"negative threshold": {LateThresholdMinutes: -1},
		"single edge":        {HistogramEdges: []float64{0}},
		"unsorted edges":     {HistogramEdges: []float64{0, 10, 5}},
		"duplicate edges":    {HistogramEdges: []float64{0, 5, 5, 10}},
	}
	for name, opts := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := New(opts)
			assert.ErrorIs(t, err, ErrInvalidOptions)
		})
	}
}

func TestHistogramEdgesReturnsCopy(t *testing.T) {
	e := Default()
	edges := e.HistogramEdges()
	edges[0] = 99
	assert.Equal(t, -10.0, e.HistogramEdges()[0])
}

func TestClassifyBoundary(t *testing.T) {
	e := Default()
	assert.Equal(t, StatusPresent, e.Classify(15.0))
	assert.Equal(t, StatusLate, e.Classify(15.01))
	assert.Equal(t, StatusPresent, e.Classify(-10))
}

func TestClassifyCustomThreshold(t *testing.T) {
	e, err := New(Options{LateThresholdMinutes: 5})
	require.NoError(t, err)
	assert.Equal(t, StatusPresent, e.Classify(5))
	assert.Equal(t, StatusLate, e.Classify(6))
}
