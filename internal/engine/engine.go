// Package engine implements the attendance analytics computations: it joins
// check-ins to their events, classifies punctuality, estimates no-shows and
// produces the aggregated series consumed by the dashboards.
//
// Every function is a pure computation over the collections it is handed. The
// engine never mutates its inputs and keeps no state between calls, so a single
// Engine can be shared by concurrent callers.
package engine

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

const (
	// DefaultLateThreshold is the latency, in minutes, up to which a check-in
	// still counts as on time.
	DefaultLateThreshold = 15.0

	// ConfirmationRate approximates the share of capacity that confirmed
	// attendance. There is no invitation dataset behind it.
	ConfirmationRate = 0.8

	// NoShowComplianceWeight scales compliance in the headline no-show heuristic.
	NoShowComplianceWeight = 0.8
)

// DefaultHistogramEdges are the latency bin edges in minutes.
var DefaultHistogramEdges = []float64{-10, 0, 5, 10, 15, 20, 30, 60}

// ErrInvalidOptions is returned by New for unusable options.
var ErrInvalidOptions = errors.New("invalid engine options")

// Options tunes classification and bucketing.
type Options struct {
	// LateThresholdMinutes defaults to DefaultLateThreshold when zero.
	LateThresholdMinutes float64
	// HistogramEdges must be strictly increasing with at least two values.
	HistogramEdges []float64
	// Location is used to derive calendar days and hours of day. Defaults to UTC.
	Location *time.Location
}

// Engine computes attendance analytics.
type Engine struct {
	lateThreshold float64
	edges         []float64
	loc           *time.Location
}

// New validates options and builds an Engine.
func New(opts Options) (*Engine, error) {
	threshold := opts.LateThresholdMinutes
	if threshold == 0 {
		threshold = DefaultLateThreshold
	}
	if threshold < 0 {
		return nil, fmt.Errorf("%w: late threshold %v must be positive", ErrInvalidOptions, threshold)
	}

	edges := opts.HistogramEdges
	if len(edges) == 0 {
		edges = DefaultHistogramEdges
	}
	if len(edges) < 2 {
		return nil, fmt.Errorf("%w: histogram needs at least two edges", ErrInvalidOptions)
	}
	if !sort.SliceIsSorted(edges, func(i, j int) bool { return edges[i] < edges[j] }) || hasDuplicates(edges) {
		return nil, fmt.Errorf("%w: histogram edges must be strictly increasing", ErrInvalidOptions)
	}

	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	return &Engine{
		lateThreshold: threshold,
		edges:         append([]float64(nil), edges...),
		loc:           loc,
	}, nil
}

// Default returns an Engine using the default options.
func Default() *Engine {
	e, err := New(Options{})
	if err != nil {
		panic(err)
	}
	return e
}

// LateThreshold reports the configured punctuality threshold in minutes.
func (e *Engine) LateThreshold() float64 {
	return e.lateThreshold
}

// HistogramEdges returns a copy of the configured bin edges.
func (e *Engine) HistogramEdges() []float64 {
	return append([]float64(nil), e.edges...)
}

// Location returns the location used for calendar bucketing.
func (e *Engine) Location() *time.Location {
	return e.loc
}

func hasDuplicates(edges []float64) bool {
	for i := 1; i < len(edges); i++ {
		if edges[i] == edges[i-1] {
			return true
		}
	}
	return false
}
