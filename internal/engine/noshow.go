package engine

import (
	"math"

	"github.com/noah-isme/uep-attendance-analytics/internal/models"
)

// EstimateNoShows derives a per-event no-show count from capacity: confirmed
// attendance is assumed to be ConfirmationRate of capacity and every confirmed
// seat without a distinct attendee is a no-show. The per-faculty totals sum
// the events of each faculty; events without faculty only appear per event.
func (e *Engine) EstimateNoShows(events []models.Event, records []EnrichedCheckIn) NoShowEstimate {
	present := distinctUsersByEvent(records)

	estimate := NoShowEstimate{
		Events:    make([]EventNoShow, 0, len(events)),
		ByFaculty: make(map[string]float64),
	}
	for _, ev := range events {
		confirmed := float64(ev.Capacity) * ConfirmationRate
		attended := present[ev.ID]
		noShow := math.Max(0, confirmed-float64(attended))
		estimate.Events = append(estimate.Events, EventNoShow{
			EventID:        ev.ID,
			Faculty:        ev.FacultyName(),
			Capacity:       ev.Capacity,
			Present:        attended,
			ConfirmedProxy: confirmed,
			NoShow:         noShow,
		})
		if ev.Faculty != nil {
			estimate.ByFaculty[*ev.Faculty] += noShow
		}
	}
	return estimate
}

// Breakdown counts distinct users per faculty and punctuality status and
// attaches the estimated no-shows. Only faculties with check-ins appear.
func (e *Engine) Breakdown(records []EnrichedCheckIn, noShows NoShowEstimate) map[string]StatusCounts {
	type key struct {
		faculty string
		status  Status
	}
	seen := make(map[key]map[string]struct{})
	for _, r := range records {
		if r.Faculty == nil {
			continue
		}
		k := key{faculty: *r.Faculty, status: r.Status}
		users, ok := seen[k]
		if !ok {
			users = make(map[string]struct{})
			seen[k] = users
		}
		users[r.UserID] = struct{}{}
	}

	breakdown := make(map[string]StatusCounts)
	for k, users := range seen {
		counts := breakdown[k.faculty]
		switch k.status {
		case StatusPresent:
			counts.Present = len(users)
		case StatusLate:
			counts.Late = len(users)
		}
		breakdown[k.faculty] = counts
	}
	for faculty, counts := range breakdown {
		counts.NoShowEstimated = noShows.ByFaculty[faculty]
		breakdown[faculty] = counts
	}
	return breakdown
}
