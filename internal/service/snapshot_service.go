package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/uep-attendance-analytics/internal/models"
	appErrors "github.com/noah-isme/uep-attendance-analytics/pkg/errors"
)

// EventSource lists scheduled events.
type EventSource interface {
	List(ctx context.Context) ([]models.Event, error)
}

// CheckInSource lists recorded check-ins.
type CheckInSource interface {
	List(ctx context.Context) ([]models.CheckIn, error)
}

// UserSource lists users for attendee detail.
type UserSource interface {
	List(ctx context.Context) ([]models.User, error)
}

// Snapshot is a point-in-time copy of the three record sets. Callers must not
// modify the slices.
type Snapshot struct {
	Events    []models.Event
	CheckIns  []models.CheckIn
	Users     []models.User
	FetchedAt time.Time
}

// Age reports how old the snapshot is at the given instant.
func (s *Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.FetchedAt)
}

// SnapshotService keeps the most recent record snapshot and refreshes it once
// it is older than the configured TTL.
type SnapshotService struct {
	events   EventSource
	checkIns CheckInSource
	users    UserSource
	metrics  *MetricsService
	logger   *zap.Logger
	ttl      time.Duration
	now      func() time.Time

	mu       sync.Mutex
	snapshot *Snapshot
}

// NewSnapshotService constructs a snapshot service.
func NewSnapshotService(events EventSource, checkIns CheckInSource, users UserSource, ttl time.Duration, metrics *MetricsService, logger *zap.Logger) *SnapshotService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &SnapshotService{
		events:   events,
		checkIns: checkIns,
		users:    users,
		metrics:  metrics,
		logger:   logger,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Load returns the cached snapshot or fetches a new one when it has expired.
// A failed refresh falls back to the previous snapshot when one exists.
func (s *SnapshotService) Load(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.snapshot != nil && s.snapshot.Age(now) < s.ttl {
		return s.snapshot, nil
	}

	fresh, err := s.fetch(ctx)
	s.metrics.RecordSnapshotRefresh(err == nil)
	if err != nil {
		if s.snapshot != nil {
			s.logger.Warn("snapshot refresh failed, serving stale records",
				zap.Duration("age", s.snapshot.Age(now)),
				zap.Error(err),
			)
			return s.snapshot, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrSourceUnavailable.Code, appErrors.ErrSourceUnavailable.Status, "attendance records unavailable")
	}

	fresh.FetchedAt = now
	s.snapshot = fresh
	s.logger.Debug("snapshot refreshed",
		zap.Int("events", len(fresh.Events)),
		zap.Int("checkins", len(fresh.CheckIns)),
		zap.Int("users", len(fresh.Users)),
	)
	return fresh, nil
}

// Invalidate drops the cached snapshot so the next Load refetches.
func (s *SnapshotService) Invalidate() {
	s.mu.Lock()
	s.snapshot = nil
	s.mu.Unlock()
}

func (s *SnapshotService) fetch(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		start := time.Now()
		events, err := s.events.List(gctx)
		s.metrics.ObserveDBQuery("events_list", time.Since(start))
		snap.Events = events
		return err
	})
	g.Go(func() error {
		start := time.Now()
		checkIns, err := s.checkIns.List(gctx)
		s.metrics.ObserveDBQuery("checkins_list", time.Since(start))
		snap.CheckIns = checkIns
		return err
	})
	g.Go(func() error {
		start := time.Now()
		users, err := s.users.List(gctx)
		s.metrics.ObserveDBQuery("users_list", time.Since(start))
		snap.Users = users
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}
