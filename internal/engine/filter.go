package engine

import (
	"sort"
	"time"

	"github.com/noah-isme/uep-attendance-analytics/internal/models"
)

// FilterEvents keeps the events whose faculty and type are selected and whose
// date falls inside [DateFrom, DateTo]. A zero bound leaves that side open.
// Events without a faculty never match a faculty selection.
func (e *Engine) FilterEvents(events []models.Event, criteria models.FilterCriteria) []models.Event {
	faculties := make(map[string]struct{}, len(criteria.Faculties))
	for _, f := range criteria.Faculties {
		faculties[f] = struct{}{}
	}
	types := make(map[models.EventType]struct{}, len(criteria.Types))
	for _, t := range criteria.Types {
		types[t] = struct{}{}
	}

	filtered := make([]models.Event, 0, len(events))
	for _, ev := range events {
		if ev.Faculty == nil {
			continue
		}
		if _, ok := faculties[*ev.Faculty]; !ok {
			continue
		}
		if _, ok := types[ev.Type]; !ok {
			continue
		}
		if !withinDays(ev.Date, criteria.DateFrom, criteria.DateTo) {
			continue
		}
		filtered = append(filtered, ev)
	}
	return filtered
}

// DefaultCriteria selects every observed faculty and type over the full
// observed date span.
func (e *Engine) DefaultCriteria(events []models.Event) models.FilterCriteria {
	opts := e.ObservedOptions(events)
	criteria := models.FilterCriteria{
		Faculties: opts.Faculties,
		Types:     opts.Types,
	}
	if opts.MinDate != nil {
		criteria.DateFrom = *opts.MinDate
	}
	if opts.MaxDate != nil {
		criteria.DateTo = *opts.MaxDate
	}
	return criteria
}

// ObservedOptions lists the sorted distinct faculties and types and the date
// span found in events.
func (e *Engine) ObservedOptions(events []models.Event) models.FilterOptions {
	facultySet := make(map[string]struct{})
	typeSet := make(map[models.EventType]struct{})
	var minDate, maxDate *time.Time
	for i := range events {
		ev := events[i]
		if ev.Faculty != nil {
			facultySet[*ev.Faculty] = struct{}{}
		}
		if ev.Type != "" {
			typeSet[ev.Type] = struct{}{}
		}
		day := civilDay(ev.Date)
		if minDate == nil || day.Before(*minDate) {
			d := day
			minDate = &d
		}
		if maxDate == nil || day.After(*maxDate) {
			d := day
			maxDate = &d
		}
	}

	opts := models.FilterOptions{
		Faculties: make([]string, 0, len(facultySet)),
		Types:     make([]models.EventType, 0, len(typeSet)),
		MinDate:   minDate,
		MaxDate:   maxDate,
	}
	for f := range facultySet {
		opts.Faculties = append(opts.Faculties, f)
	}
	for t := range typeSet {
		opts.Types = append(opts.Types, t)
	}
	sort.Strings(opts.Faculties)
	sort.Slice(opts.Types, func(i, j int) bool { return opts.Types[i] < opts.Types[j] })
	return opts
}

func withinDays(date, from, to time.Time) bool {
	day := civilDay(date)
	if !from.IsZero() && day.Before(civilDay(from)) {
		return false
	}
	if !to.IsZero() && day.After(civilDay(to)) {
		return false
	}
	return true
}

// civilDay strips the clock and zone, keeping the calendar date as written.
func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
