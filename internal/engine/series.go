package engine

import (
	"sort"
	"time"
)

// DailyTrend counts distinct attendees per calendar day of check-in, in the
// engine location. Days without check-ins are omitted.
func (e *Engine) DailyTrend(records []EnrichedCheckIn) []DailyCount {
	byDay := make(map[time.Time]map[string]struct{})
	for _, r := range records {
		local := r.CheckedInAt.In(e.loc)
		y, m, d := local.Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, e.loc)
		users, ok := byDay[day]
		if !ok {
			users = make(map[string]struct{})
			byDay[day] = users
		}
		users[r.UserID] = struct{}{}
	}

	trend := make([]DailyCount, 0, len(byDay))
	for day, users := range byDay {
		trend = append(trend, DailyCount{Date: day, Attendees: len(users)})
	}
	sort.Slice(trend, func(i, j int) bool { return trend[i].Date.Before(trend[j].Date) })
	return trend
}

// Density counts distinct attendees per minute of check-in for one event.
func (e *Engine) Density(records []EnrichedCheckIn, eventID string) []MinuteCount {
	byMinute := make(map[int64]map[string]struct{})
	for _, r := range records {
		if r.EventID != eventID {
			continue
		}
		minute := r.CheckedInAt.Truncate(time.Minute).Unix()
		users, ok := byMinute[minute]
		if !ok {
			users = make(map[string]struct{})
			byMinute[minute] = users
		}
		users[r.UserID] = struct{}{}
	}

	series := make([]MinuteCount, 0, len(byMinute))
	for minute, users := range byMinute {
		series = append(series, MinuteCount{Minute: time.Unix(minute, 0).In(e.loc), CheckIns: len(users)})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Minute.Before(series[j].Minute) })
	return series
}
