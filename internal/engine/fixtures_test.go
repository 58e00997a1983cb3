package engine

import (
	"time"

	"github.com/noah-isme/uep-attendance-analytics/internal/models"
)

var baseDay = time.Date(2024, 10, 7, 0, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func newEvent(id, faculty string, typ models.EventType, day time.Time, startHour, capacity int) models.Event {
	start := day.Add(time.Duration(startHour) * time.Hour)
	ev := models.Event{
		ID:       id,
		Title:    "Event " + id,
		Type:     typ,
		Date:     day,
		StartAt:  start,
		EndAt:    start.Add(2 * time.Hour),
		Capacity: capacity,
	}
	if faculty != "" {
		ev.Faculty = strPtr(faculty)
	}
	return ev
}

func checkInAt(id int64, eventID, userID string, at time.Time) models.CheckIn {
	return models.CheckIn{
		ID:          id,
		EventID:     eventID,
		UserID:      userID,
		CheckedInAt: at,
		Method:      models.CheckInMethodQR,
		Valid:       true,
		CreatedAt:   at,
		Origin:      "test",
	}
}

func minutesAfter(ev models.Event, minutes float64) time.Time {
	return ev.StartAt.Add(time.Duration(minutes * float64(time.Minute)))
}

func heatmapCell(h Heatmap, faculty string, hour int) int {
	if hour < 0 || hour >= HoursPerDay {
		return 0
	}
	for _, row := range h.Rows {
		if row.Faculty == faculty {
			return row.Hours[hour]
		}
	}
	return 0
}
