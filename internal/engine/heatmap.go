package engine

import "sort"

// Heatmap counts distinct attendees per faculty and hour of check-in. Rows are
// sorted by faculty and every row carries all 24 hours. Records without a
// faculty are skipped.
func (e *Engine) Heatmap(records []EnrichedCheckIn) Heatmap {
	cells := make(map[string]*[HoursPerDay]map[string]struct{})
	for _, r := range records {
		if r.Faculty == nil {
			continue
		}
		row, ok := cells[*r.Faculty]
		if !ok {
			row = &[HoursPerDay]map[string]struct{}{}
			cells[*r.Faculty] = row
		}
		hour := r.CheckedInAt.In(e.loc).Hour()
		if row[hour] == nil {
			row[hour] = make(map[string]struct{})
		}
		row[hour][r.UserID] = struct{}{}
	}

	heatmap := Heatmap{Rows: make([]HeatmapRow, 0, len(cells))}
	for faculty, row := range cells {
		out := HeatmapRow{Faculty: faculty}
		for hour, users := range row {
			out.Hours[hour] = len(users)
		}
		heatmap.Rows = append(heatmap.Rows, out)
	}
	sort.Slice(heatmap.Rows, func(i, j int) bool { return heatmap.Rows[i].Faculty < heatmap.Rows[j].Faculty })
	return heatmap
}
