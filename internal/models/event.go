package models

import "time"

// EventType enumerates the supported event formats.
type EventType string

const (
	EventTypeTalk     EventType = "talk"
	EventTypeWorkshop EventType = "workshop"
	EventTypeSeminar  EventType = "seminar"
)

// Event is a scheduled session attendees check into.
type Event struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Type        EventType `db:"type" json:"type"`
	Faculty     *string   `db:"faculty" json:"faculty,omitempty"`
	Date        time.Time `db:"event_date" json:"date"`
	StartAt     time.Time `db:"-" json:"start_at"`
	EndAt       time.Time `db:"-" json:"end_at"`
	OrganizerID string    `db:"organizer_id" json:"organizer_id"`
	Location    string    `db:"location" json:"location"`
	Capacity    int       `db:"capacity" json:"capacity"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// FacultyName returns the faculty or an empty string when unset.
func (e Event) FacultyName() string {
	if e.Faculty == nil {
		return ""
	}
	return *e.Faculty
}
