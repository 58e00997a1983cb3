package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uep-attendance-analytics/internal/models"
)

const listEventsQuery = `SELECT id, title, type, faculty, event_date, start_time, end_time,
        COALESCE(organizer_id, '') AS organizer_id, COALESCE(location, '') AS location, capacity, created_at
        FROM events ORDER BY event_date, start_time, id`

// EventRepository reads scheduled events.
type EventRepository struct {
	db  *sqlx.DB
	loc *time.Location
}

// NewEventRepository instantiates the repository. loc is the zone event dates and
// clock times are expressed in.
func NewEventRepository(db *sqlx.DB, loc *time.Location) *EventRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &EventRepository{db: db, loc: loc}
}

type eventRow struct {
	ID          string           `db:"id"`
	Title       string           `db:"title"`
	Type        models.EventType `db:"type"`
	Faculty     sql.NullString   `db:"faculty"`
	EventDate   time.Time        `db:"event_date"`
	StartTime   string           `db:"start_time"`
	EndTime     string           `db:"end_time"`
	OrganizerID string           `db:"organizer_id"`
	Location    string           `db:"location"`
	Capacity    int              `db:"capacity"`
	CreatedAt   time.Time        `db:"created_at"`
}

// List returns every event with StartAt/EndAt resolved in the repository zone.
// Rows whose clock times cannot be parsed or whose start is not before end are
// rejected.
func (r *EventRepository) List(ctx context.Context) ([]models.Event, error) {
	var rows []eventRow
	if err := r.db.SelectContext(ctx, &rows, listEventsQuery); err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}

	events := make([]models.Event, 0, len(rows))
	for _, row := range rows {
		ev, err := r.toModel(row)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

func (r *EventRepository) toModel(row eventRow) (models.Event, error) {
	y, m, d := row.EventDate.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, r.loc)

	start, err := parseClock(row.StartTime)
	if err != nil {
		return models.Event{}, fmt.Errorf("event %s start_time: %w", row.ID, err)
	}
	end, err := parseClock(row.EndTime)
	if err != nil {
		return models.Event{}, fmt.Errorf("event %s end_time: %w", row.ID, err)
	}
	if start >= end {
		return models.Event{}, fmt.Errorf("event %s starts at %s but ends at %s", row.ID, row.StartTime, row.EndTime)
	}

	ev := models.Event{
		ID:          row.ID,
		Title:       row.Title,
		Type:        row.Type,
		Date:        day,
		StartAt:     day.Add(start),
		EndAt:       day.Add(end),
		OrganizerID: row.OrganizerID,
		Location:    row.Location,
		Capacity:    row.Capacity,
		CreatedAt:   row.CreatedAt,
	}
	if row.Faculty.Valid {
		faculty := row.Faculty.String
		ev.Faculty = &faculty
	}
	return ev, nil
}

var clockLayouts = []string{"15:04:05.999999", "15:04:05", "15:04"}

// parseClock converts a Postgres time value into an offset from midnight.
func parseClock(raw string) (time.Duration, error) {
	for _, layout := range clockLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second +
				time.Duration(t.Nanosecond()), nil
		}
	}
	return 0, fmt.Errorf("invalid clock value %q", raw)
}
