package engine

import (
	"math"

	"github.com/noah-isme/uep-attendance-analytics/internal/models"
)

// KPIs computes the headline numbers for a filtered event set.
//
// Compliance sums the distinct attendees of each event and divides by the
// total capacity, so one person attending two events counts twice. The no-show
// percentage is max(0, 100 - 0.8*compliance) and is a rough heuristic, not a
// measured rate. Both are zero when total capacity or compliance is zero.
func (e *Engine) KPIs(events []models.Event, records []EnrichedCheckIn) KPISummary {
	capacityByEvent := make(map[string]int, len(events))
	for _, ev := range events {
		capacityByEvent[ev.ID] = ev.Capacity
	}
	totalCapacity := 0
	for _, c := range capacityByEvent {
		totalCapacity += c
	}

	users := make(map[string]struct{})
	for _, r := range records {
		users[r.UserID] = struct{}{}
	}

	present := 0
	for _, n := range distinctUsersByEvent(records) {
		present += n
	}

	var compliance float64
	if totalCapacity > 0 {
		compliance = 100 * float64(present) / float64(totalCapacity)
	}
	var noShow float64
	if compliance > 0 {
		noShow = math.Max(0, 100-compliance*NoShowComplianceWeight)
	}

	return KPISummary{
		EventCount:      len(capacityByEvent),
		UniqueAttendees: len(users),
		CompliancePct:   compliance,
		NoShowPct:       noShow,
	}
}
