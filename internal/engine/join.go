package engine

import "github.com/noah-isme/uep-attendance-analytics/internal/models"

// Classify labels a latency as Present when it does not exceed the late threshold.
func (e *Engine) Classify(latencyMinutes float64) Status {
	if latencyMinutes <= e.lateThreshold {
		return StatusPresent
	}
	return StatusLate
}

// Join enriches the check-ins belonging to the filtered events. all is the
// complete event collection and is only used to tell orphaned check-ins apart
// from check-ins of events that were filtered out.
func (e *Engine) Join(all, filtered []models.Event, checkIns []models.CheckIn) JoinResult {
	known := make(map[string]struct{}, len(all))
	for _, ev := range all {
		known[ev.ID] = struct{}{}
	}
	scope := make(map[string]models.Event, len(filtered))
	for _, ev := range filtered {
		scope[ev.ID] = ev
	}

	result := JoinResult{Records: make([]EnrichedCheckIn, 0, len(checkIns))}
	for _, ci := range checkIns {
		ev, ok := scope[ci.EventID]
		if !ok {
			if _, exists := known[ci.EventID]; exists {
				result.OutOfScope++
			} else {
				result.Orphaned++
			}
			continue
		}
		result.Records = append(result.Records, e.enrich(ci, ev))
	}
	return result
}

func (e *Engine) enrich(ci models.CheckIn, ev models.Event) EnrichedCheckIn {
	latency := ci.CheckedInAt.Sub(ev.StartAt).Minutes()
	return EnrichedCheckIn{
		CheckIn:        ci,
		EventStart:     ev.StartAt,
		Faculty:        ev.Faculty,
		Capacity:       ev.Capacity,
		LatencyMinutes: latency,
		Status:         e.Classify(latency),
	}
}

func distinctUsersByEvent(records []EnrichedCheckIn) map[string]int {
	seen := make(map[string]map[string]struct{})
	for _, r := range records {
		users, ok := seen[r.EventID]
		if !ok {
			users = make(map[string]struct{})
			seen[r.EventID] = users
		}
		users[r.UserID] = struct{}{}
	}
	counts := make(map[string]int, len(seen))
	for id, users := range seen {
		counts[id] = len(users)
	}
	return counts
}
