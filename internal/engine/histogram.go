package engine

import (
	"fmt"
	"sort"
	"strconv"
)

// LatencyHistogram bins the latencies of one event into half-open intervals
// [edge_i, edge_i+1). Every bin is reported, empty ones with a zero count.
// Latencies below the first edge or at/above the last edge are not binned and
// are reported in OutOfRange.
func (e *Engine) LatencyHistogram(records []EnrichedCheckIn, eventID string) Histogram {
	hist := Histogram{Bins: make([]HistogramBin, len(e.edges)-1)}
	for i := range hist.Bins {
		lower, upper := e.edges[i], e.edges[i+1]
		hist.Bins[i] = HistogramBin{Label: binLabel(lower, upper), Lower: lower, Upper: upper}
	}

	for _, r := range records {
		if r.EventID != eventID {
			continue
		}
		idx := e.binIndex(r.LatencyMinutes)
		if idx < 0 {
			hist.OutOfRange++
			continue
		}
		hist.Bins[idx].Count++
	}
	return hist
}

func (e *Engine) binIndex(v float64) int {
	last := len(e.edges) - 1
	if v < e.edges[0] || v >= e.edges[last] {
		return -1
	}
	// first edge strictly greater than v closes the bin
	return sort.Search(len(e.edges), func(i int) bool { return e.edges[i] > v }) - 1
}

func binLabel(lower, upper float64) string {
	return fmt.Sprintf("[%s, %s)", formatEdge(lower), formatEdge(upper))
}

func formatEdge(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
