package models

import "time"

// FilterCriteria narrows the event set used by the academic view. Empty Faculties
// or Types select nothing; callers wanting "everything" pass the observed values.
type FilterCriteria struct {
	Faculties []string    `json:"faculties"`
	Types     []EventType `json:"types"`
	DateFrom  time.Time   `json:"date_from"`
	DateTo    time.Time   `json:"date_to"`
}

// FilterOptions lists the selectable values observed in the current data.
type FilterOptions struct {
	Faculties []string    `json:"faculties"`
	Types     []EventType `json:"types"`
	MinDate   *time.Time  `json:"min_date,omitempty"`
	MaxDate   *time.Time  `json:"max_date,omitempty"`
}
