package dto

import (
	"time"

	"github.com/noah-isme/uep-attendance-analytics/internal/engine"
	"github.com/noah-isme/uep-attendance-analytics/internal/models"
)

// CriteriaEcho is the resolved filter a report was computed with. Empty dates
// mean the range is open on that side.
type CriteriaEcho struct {
	Faculties []string           `json:"faculties"`
	Types     []models.EventType `json:"types"`
	DateFrom  string             `json:"dateFrom,omitempty"`
	DateTo    string             `json:"dateTo,omitempty"`
}

// NewCriteriaEcho formats criteria for responses.
func NewCriteriaEcho(c models.FilterCriteria) CriteriaEcho {
	echo := CriteriaEcho{Faculties: c.Faculties, Types: c.Types}
	if echo.Faculties == nil {
		echo.Faculties = []string{}
	}
	if echo.Types == nil {
		echo.Types = []models.EventType{}
	}
	if !c.DateFrom.IsZero() {
		echo.DateFrom = c.DateFrom.Format(DateLayout)
	}
	if !c.DateTo.IsZero() {
		echo.DateTo = c.DateTo.Format(DateLayout)
	}
	return echo
}

// DateLayout is the calendar date format accepted and returned by the API.
const DateLayout = "2006-01-02"

// AcademicKPIs decorates the KPI summary with the estimate marker.
type AcademicKPIs struct {
	engine.KPISummary
	NoShowIsEstimate bool `json:"noShowIsEstimate"`
}

// FacultyBreakdown compares punctuality and estimated no-shows for one faculty.
type FacultyBreakdown struct {
	Faculty          string  `json:"faculty"`
	Present          int     `json:"present"`
	Late             int     `json:"late"`
	NoShow           float64 `json:"noShow"`
	NoShowIsEstimate bool    `json:"noShowIsEstimate"`
}

// EventRow lists one event of the filtered set.
type EventRow struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	Type             models.EventType `json:"type"`
	Faculty          string           `json:"faculty,omitempty"`
	StartAt          time.Time        `json:"startAt"`
	EndAt            time.Time        `json:"endAt"`
	Location         string           `json:"location,omitempty"`
	Capacity         int              `json:"capacity"`
	Attendees        int              `json:"attendees"`
	NoShow           float64          `json:"noShow"`
	NoShowIsEstimate bool             `json:"noShowIsEstimate"`
}

// AcademicReport is the cross-event analytics payload.
type AcademicReport struct {
	Criteria         CriteriaEcho        `json:"criteria"`
	KPIs             AcademicKPIs        `json:"kpis"`
	DailyTrend       []engine.DailyCount `json:"dailyTrend"`
	FacultyBreakdown []FacultyBreakdown  `json:"facultyBreakdown"`
	Heatmap          engine.Heatmap      `json:"heatmap"`
	Events           []EventRow          `json:"events"`
	Orphaned         int                 `json:"orphanedCheckIns"`
	OutOfScope       int                 `json:"outOfScopeCheckIns"`
	GeneratedAt      time.Time           `json:"generatedAt"`
}

// EventInfo describes the event an organizer report is about.
type EventInfo struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Type        models.EventType `json:"type"`
	Faculty     string           `json:"faculty,omitempty"`
	StartAt     time.Time        `json:"startAt"`
	EndAt       time.Time        `json:"endAt"`
	Location    string           `json:"location,omitempty"`
	OrganizerID string           `json:"organizerId,omitempty"`
	Capacity    int              `json:"capacity"`
}

// NewEventInfo maps an event model.
func NewEventInfo(ev models.Event) EventInfo {
	return EventInfo{
		ID:          ev.ID,
		Title:       ev.Title,
		Type:        ev.Type,
		Faculty:     ev.FacultyName(),
		StartAt:     ev.StartAt,
		EndAt:       ev.EndAt,
		Location:    ev.Location,
		OrganizerID: ev.OrganizerID,
		Capacity:    ev.Capacity,
	}
}

// EventReport is the organizer view of one event.
type EventReport struct {
	Event                EventInfo               `json:"event"`
	Summary              engine.EventSummary     `json:"summary"`
	Density              []engine.MinuteCount    `json:"density"`
	Histogram            engine.Histogram        `json:"histogram"`
	Attendees            []engine.AttendeeDetail `json:"attendees"`
	LateThresholdMinutes float64                 `json:"lateThresholdMinutes"`
	GeneratedAt          time.Time               `json:"generatedAt"`
}

// FilterOptionsResponse lists the values the academic filters can take.
type FilterOptionsResponse struct {
	Faculties []string           `json:"faculties"`
	Types     []models.EventType `json:"types"`
	MinDate   string             `json:"minDate,omitempty"`
	MaxDate   string             `json:"maxDate,omitempty"`
	Defaults  CriteriaEcho       `json:"defaults"`
}

// NewFilterOptionsResponse formats observed filter options together with the
// criteria a report uses when the caller selects nothing.
func NewFilterOptionsResponse(opts models.FilterOptions, defaults models.FilterCriteria) FilterOptionsResponse {
	resp := FilterOptionsResponse{Faculties: opts.Faculties, Types: opts.Types, Defaults: NewCriteriaEcho(defaults)}
	if resp.Faculties == nil {
		resp.Faculties = []string{}
	}
	if resp.Types == nil {
		resp.Types = []models.EventType{}
	}
	if opts.MinDate != nil {
		resp.MinDate = opts.MinDate.Format(DateLayout)
	}
	if opts.MaxDate != nil {
		resp.MaxDate = opts.MaxDate.Format(DateLayout)
	}
	return resp
}
