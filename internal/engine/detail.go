package engine

import (
	"sort"

	"github.com/noah-isme/uep-attendance-analytics/internal/models"
)

// AttendeeDetail lists the check-ins of one event with the attendee's name and
// faculty, ordered by check-in time. Unknown users keep empty name and faculty.
func (e *Engine) AttendeeDetail(records []EnrichedCheckIn, users []models.User, eventID string) []AttendeeDetail {
	byID := make(map[string]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	rows := make([]AttendeeDetail, 0)
	for _, r := range records {
		if r.EventID != eventID {
			continue
		}
		row := AttendeeDetail{
			UserID:         r.UserID,
			CheckedInAt:    r.CheckedInAt,
			Method:         r.Method,
			LatencyMinutes: r.LatencyMinutes,
			Status:         r.Status,
		}
		if u, ok := byID[r.UserID]; ok {
			row.Name = u.Name
			if u.Faculty != nil {
				row.Faculty = *u.Faculty
			}
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].CheckedInAt.Before(rows[j].CheckedInAt) })
	return rows
}

// Summarize builds the organizer headline for one event. Mean lateness clips
// early arrivals to zero; QR share is the percentage of check-ins made by QR.
func (e *Engine) Summarize(event models.Event, records []EnrichedCheckIn) EventSummary {
	summary := EventSummary{EventID: event.ID, Capacity: event.Capacity}

	users := make(map[string]struct{})
	var lateness float64
	qr := 0
	for _, r := range records {
		if r.EventID != event.ID {
			continue
		}
		summary.CheckIns++
		users[r.UserID] = struct{}{}
		if r.LatencyMinutes > 0 {
			lateness += r.LatencyMinutes
		}
		if r.Method == models.CheckInMethodQR {
			qr++
		}
	}
	summary.Attendees = len(users)
	if summary.CheckIns > 0 {
		summary.MeanLatenessMinutes = lateness / float64(summary.CheckIns)
		summary.QRSharePct = 100 * float64(qr) / float64(summary.CheckIns)
	}
	return summary
}
