package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/noah-isme/uep-attendance-analytics/internal/engine"
	"github.com/noah-isme/uep-attendance-analytics/internal/models"
	appErrors "github.com/noah-isme/uep-attendance-analytics/pkg/errors"
)

var baseDay = time.Date(2024, 10, 7, 0, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func fixtureEvent(id, faculty string, typ models.EventType, day time.Time, startHour, capacity int) models.Event {
	start := day.Add(time.Duration(startHour) * time.Hour)
	ev := models.Event{
		ID:       id,
		Title:    "Event " + id,
		Type:     typ,
		Date:     day,
		StartAt:  start,
		EndAt:    start.Add(2 * time.Hour),
		Location: "Auditorio A",
		Capacity: capacity,
	}
	if faculty != "" {
		ev.Faculty = strPtr(faculty)
	}
	return ev
}

func fixtureCheckIn(id int64, eventID, userID string, at time.Time, method models.CheckInMethod) models.CheckIn {
	return models.CheckIn{ID: id, EventID: eventID, UserID: userID, CheckedInAt: at, Method: method, Valid: true, CreatedAt: at}
}

// fixtureSnapshot has two engineering events, one law event and an orphaned check-in.
func fixtureSnapshot() *Snapshot {
	e1 := fixtureEvent("e-1", "Engineering", models.EventTypeTalk, baseDay, 9, 10)
	e2 := fixtureEvent("e-2", "Engineering", models.EventTypeWorkshop, baseDay.AddDate(0, 0, 1), 14, 5)
	e3 := fixtureEvent("e-3", "Law", models.EventTypeSeminar, baseDay.AddDate(0, 0, 2), 10, 20)
	return &Snapshot{
		Events: []models.Event{e1, e2, e3},
		CheckIns: []models.CheckIn{
			fixtureCheckIn(1, "e-1", "u-1", e1.StartAt.Add(5*time.Minute), models.CheckInMethodQR),
			fixtureCheckIn(2, "e-1", "u-2", e1.StartAt.Add(30*time.Minute), models.CheckInMethodManual),
			fixtureCheckIn(3, "e-2", "u-1", e2.StartAt.Add(-2*time.Minute), models.CheckInMethodQR),
			fixtureCheckIn(4, "e-3", "u-3", e3.StartAt.Add(10*time.Minute), models.CheckInMethodNFC),
			fixtureCheckIn(5, "e-404", "u-4", e3.StartAt, models.CheckInMethodQR),
		},
		Users: []models.User{
			{ID: "u-1", Name: "Usuario 001", Faculty: strPtr("Engineering"), Active: true, Role: models.RoleStudent},
			{ID: "u-2", Name: "Usuario 002", Faculty: strPtr("Law"), Active: true, Role: models.RoleStudent},
		},
		FetchedAt: baseDay,
	}
}

type stubSnapshotLoader struct {
	snapshot    *Snapshot
	err         error
	loads       int
	invalidated int
}

func (s *stubSnapshotLoader) Load(context.Context) (*Snapshot, error) {
	s.loads++
	if s.err != nil {
		return nil, s.err
	}
	return s.snapshot, nil
}

func (s *stubSnapshotLoader) Invalidate() { s.invalidated++ }

type stubCacheRepo struct {
	mu       sync.Mutex
	store    map[string][]byte
	patterns  []string
	getErr    error
	deleteErr error
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return s.getErr
	}
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		s.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	return nil
}

func (s *stubCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patterns = append(s.patterns, pattern)
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.store = nil
	return nil
}

func heatmapCell(h engine.Heatmap, faculty string, hour int) int {
	for _, row := range h.Rows {
		if row.Faculty == faculty {
			return row.Hours[hour]
		}
	}
	return 0
}

// refreshingLoader runs onLoad before serving the snapshot, standing in for a
// refresh that lands while a report is being computed.
type refreshingLoader struct {
	stubSnapshotLoader
	onLoad func()
}

func (l *refreshingLoader) Load(ctx context.Context) (*Snapshot, error) {
	if l.onLoad != nil {
		fn := l.onLoad
		l.onLoad = nil
		fn()
	}
	return l.stubSnapshotLoader.Load(ctx)
}
