package engine

import (
	"time"

	"github.com/noah-isme/uep-attendance-analytics/internal/models"
)

// Status is the punctuality label of a check-in.
type Status string

const (
	StatusPresent Status = "Present"
	StatusLate    Status = "Late"
)

// EnrichedCheckIn is a check-in joined with the attributes of its event.
// Instances are created per call and never shared across calls.
type EnrichedCheckIn struct {
	models.CheckIn
	EventStart     time.Time
	Faculty        *string
	Capacity       int
	LatencyMinutes float64
	Status         Status
}

// FacultyName returns the event faculty or an empty string when unset.
func (r EnrichedCheckIn) FacultyName() string {
	if r.Faculty == nil {
		return ""
	}
	return *r.Faculty
}

// JoinResult holds the enriched records plus the check-ins that were left out.
type JoinResult struct {
	Records []EnrichedCheckIn
	// Orphaned counts check-ins whose event does not exist at all.
	Orphaned int
	// OutOfScope counts check-ins of existing events excluded by the filter.
	OutOfScope int
}

// KPISummary carries the headline numbers of a filtered event set.
type KPISummary struct {
	EventCount      int     `json:"eventCount"`
	UniqueAttendees int     `json:"uniqueAttendees"`
	CompliancePct   float64 `json:"compliancePct"`
	// NoShowPct is a heuristic, see KPIs.
	NoShowPct float64 `json:"noShowPct"`
}

// EventNoShow is the no-show estimate for one event.
type EventNoShow struct {
	EventID        string  `json:"eventId"`
	Faculty        string  `json:"faculty,omitempty"`
	Capacity       int     `json:"capacity"`
	Present        int     `json:"present"`
	ConfirmedProxy float64 `json:"confirmedProxy"`
	NoShow         float64 `json:"noShow"`
}

// NoShowEstimate aggregates estimated no-shows per event and per faculty.
type NoShowEstimate struct {
	Events    []EventNoShow      `json:"events"`
	ByFaculty map[string]float64 `json:"byFaculty"`
}

// StatusCounts is the per-faculty comparison. Present and Late are observed
// distinct-user counts; NoShowEstimated comes from the capacity proxy.
type StatusCounts struct {
	Present         int     `json:"present"`
	Late            int     `json:"late"`
	NoShowEstimated float64 `json:"noShowEstimated"`
}

// DailyCount is one point of the daily trend.
type DailyCount struct {
	Date      time.Time `json:"date"`
	Attendees int       `json:"attendees"`
}

// MinuteCount is one point of the per-minute check-in density.
type MinuteCount struct {
	Minute   time.Time `json:"minute"`
	CheckIns int       `json:"checkIns"`
}

// HistogramBin is a half-open latency interval [Lower, Upper).
type HistogramBin struct {
	Label string  `json:"label"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Histogram is the latency distribution of one event.
type Histogram struct {
	Bins       []HistogramBin `json:"bins"`
	OutOfRange int            `json:"outOfRange"`
}

// HoursPerDay is the width of the heatmap grid.
const HoursPerDay = 24

// HeatmapRow holds distinct attendees per hour of day for one faculty.
type HeatmapRow struct {
	Faculty string           `json:"faculty"`
	Hours   [HoursPerDay]int `json:"hours"`
}

// Heatmap is the dense faculty by hour-of-day matrix.
type Heatmap struct {
	Rows []HeatmapRow `json:"rows"`
}

// AttendeeDetail is the per check-in row exposed for exports.
type AttendeeDetail struct {
	UserID         string               `json:"userId"`
	Name           string               `json:"name"`
	Faculty        string               `json:"faculty"`
	CheckedInAt    time.Time            `json:"checkedInAt"`
	Method         models.CheckInMethod `json:"method"`
	LatencyMinutes float64              `json:"latencyMinutes"`
	Status         Status               `json:"status"`
}

// EventSummary is the organizer headline for a single event.
type EventSummary struct {
	EventID             string  `json:"eventId"`
	Attendees           int     `json:"attendees"`
	CheckIns            int     `json:"checkIns"`
	Capacity            int     `json:"capacity"`
	MeanLatenessMinutes float64 `json:"meanLatenessMinutes"`
	QRSharePct          float64 `json:"qrSharePct"`
}
