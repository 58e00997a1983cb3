package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/uep-attendance-analytics/internal/dto"
	"github.com/noah-isme/uep-attendance-analytics/internal/engine"
	"github.com/noah-isme/uep-attendance-analytics/internal/models"
	appErrors "github.com/noah-isme/uep-attendance-analytics/pkg/errors"
)

const analyticsCachePattern = "analytics:*"

// SnapshotLoader provides the record snapshot analytics are computed from.
type SnapshotLoader interface {
	Load(ctx context.Context) (*Snapshot, error)
	Invalidate()
}

// AnalyticsService computes attendance analytics over the current snapshot with cache integration.
type AnalyticsService struct {
	snapshots SnapshotLoader
	engine    *engine.Engine
	cache     *CacheService
	metrics   *MetricsService
	logger    *zap.Logger
	warmer    refreshScheduler
	now       func() time.Time

	// generation advances on every Refresh; reports computed under an older
	// generation are not cached.
	genMu      sync.RWMutex
	generation uint64
}

type refreshScheduler interface {
	Schedule() error
}

// NewAnalyticsService constructs an analytics service.
func NewAnalyticsService(snapshots SnapshotLoader, eng *engine.Engine, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if eng == nil {
		eng = engine.Default()
	}
	return &AnalyticsService{
		snapshots: snapshots,
		engine:    eng,
		cache:     cache,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// WithWarmer schedules a background snapshot reload after every Refresh.
func (s *AnalyticsService) WithWarmer(w refreshScheduler) *AnalyticsService {
	s.warmer = w
	return s
}

// Academic returns the cross-event report for the criteria. Nil faculty or
// type selections are replaced by every observed value; empty non-nil ones
// select nothing. The boolean indicates whether data originated from cache.
func (s *AnalyticsService) Academic(ctx context.Context, criteria models.FilterCriteria) (*dto.AcademicReport, bool, error) {
	gen := s.currentGeneration()
	cacheKey := makeAnalyticsCacheKey("academic", criteriaDigest(criteria))
	var cached dto.AcademicReport
	if s.cache.Lookup(ctx, cacheKey, &cached) {
		return &cached, true, nil
	}

	snap, err := s.snapshots.Load(ctx)
	if err != nil {
		return nil, false, err
	}
	resolved := s.resolveCriteria(snap, criteria)

	start := time.Now()
	filtered := s.engine.FilterEvents(snap.Events, resolved)
	joined := s.engine.Join(snap.Events, filtered, snap.CheckIns)
	s.metrics.ObserveEngineCompute("filter_join", time.Since(start))
	s.reportOrphans(joined.Orphaned)

	report := &dto.AcademicReport{
		Criteria:    dto.NewCriteriaEcho(resolved),
		Orphaned:    joined.Orphaned,
		OutOfScope:  joined.OutOfScope,
		GeneratedAt: s.now().UTC(),
	}
	var noShows engine.NoShowEstimate
	var breakdown map[string]engine.StatusCounts

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer s.observe("kpis", time.Now())
		report.KPIs = dto.AcademicKPIs{KPISummary: s.engine.KPIs(filtered, joined.Records), NoShowIsEstimate: true}
		return gctx.Err()
	})
	g.Go(func() error {
		defer s.observe("daily_trend", time.Now())
		report.DailyTrend = s.engine.DailyTrend(joined.Records)
		return gctx.Err()
	})
	g.Go(func() error {
		defer s.observe("heatmap", time.Now())
		report.Heatmap = s.engine.Heatmap(joined.Records)
		return gctx.Err()
	})
	g.Go(func() error {
		defer s.observe("breakdown", time.Now())
		noShows = s.engine.EstimateNoShows(filtered, joined.Records)
		breakdown = s.engine.Breakdown(joined.Records, noShows)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, false, err
	}

	report.FacultyBreakdown = facultyBreakdown(breakdown)
	report.Events = eventRows(filtered, noShows)

	s.store(ctx, gen, cacheKey, report)
	return report, false, nil
}

// DefaultCriteria returns every observed faculty and type over the full observed date span.
func (s *AnalyticsService) DefaultCriteria(ctx context.Context) (models.FilterCriteria, error) {
	snap, err := s.snapshots.Load(ctx)
	if err != nil {
		return models.FilterCriteria{}, err
	}
	return s.engine.DefaultCriteria(snap.Events), nil
}

// FilterOptions lists the observed faculties, types and date span.
func (s *AnalyticsService) FilterOptions(ctx context.Context) (models.FilterOptions, error) {
	snap, err := s.snapshots.Load(ctx)
	if err != nil {
		return models.FilterOptions{}, err
	}
	return s.engine.ObservedOptions(snap.Events), nil
}

// FilteredEvents returns the events selected by the criteria, resolved like Academic.
func (s *AnalyticsService) FilteredEvents(ctx context.Context, criteria models.FilterCriteria) ([]models.Event, models.FilterCriteria, error) {
	snap, err := s.snapshots.Load(ctx)
	if err != nil {
		return nil, models.FilterCriteria{}, err
	}
	resolved := s.resolveCriteria(snap, criteria)
	return s.engine.FilterEvents(snap.Events, resolved), resolved, nil
}

// EventReport returns the organizer view of one event.
func (s *AnalyticsService) EventReport(ctx context.Context, eventID string) (*dto.EventReport, bool, error) {
	gen := s.currentGeneration()
	cacheKey := makeAnalyticsCacheKey("event", eventID)
	var cached dto.EventReport
	if s.cache.Lookup(ctx, cacheKey, &cached) {
		return &cached, true, nil
	}

	snap, err := s.snapshots.Load(ctx)
	if err != nil {
		return nil, false, err
	}
	event, records, err := s.eventRecords(snap, eventID)
	if err != nil {
		return nil, false, err
	}

	start := time.Now()
	report := &dto.EventReport{
		Event:                dto.NewEventInfo(event),
		Summary:              s.engine.Summarize(event, records),
		Density:              s.engine.Density(records, event.ID),
		Histogram:            s.engine.LatencyHistogram(records, event.ID),
		Attendees:            s.engine.AttendeeDetail(records, snap.Users, event.ID),
		LateThresholdMinutes: s.engine.LateThreshold(),
		GeneratedAt:          s.now().UTC(),
	}
	s.metrics.ObserveEngineCompute("event_report", time.Since(start))

	s.store(ctx, gen, cacheKey, report)
	return report, false, nil
}

// AttendeeDetail returns the event and its check-ins joined with attendee names.
func (s *AnalyticsService) AttendeeDetail(ctx context.Context, eventID string) (models.Event, []engine.AttendeeDetail, error) {
	snap, err := s.snapshots.Load(ctx)
	if err != nil {
		return models.Event{}, nil, err
	}
	event, records, err := s.eventRecords(snap, eventID)
	if err != nil {
		return models.Event{}, nil, err
	}
	return event, s.engine.AttendeeDetail(records, snap.Users, event.ID), nil
}

// Refresh drops the record snapshot and every cached analytics payload. A
// failed cache purge is logged and counted; entries left behind expire with
// their TTL.
func (s *AnalyticsService) Refresh(ctx context.Context) error {
	s.genMu.Lock()
	s.generation++
	s.snapshots.Invalidate()
	_ = s.cache.Purge(ctx, analyticsCachePattern)
	s.genMu.Unlock()

	if s.warmer != nil {
		if err := s.warmer.Schedule(); err != nil {
			s.logger.Warn("failed to schedule snapshot warm-up", zap.Error(err))
		}
	}
	s.logger.Info("analytics refreshed")
	return nil
}

// SystemMetrics returns system instrumentation snapshot.
func (s *AnalyticsService) SystemMetrics() models.AnalyticsSystemMetrics {
	if s.metrics == nil {
		return models.AnalyticsSystemMetrics{}
	}
	return s.metrics.Snapshot()
}

func (s *AnalyticsService) currentGeneration() uint64 {
	s.genMu.RLock()
	defer s.genMu.RUnlock()
	return s.generation
}

// store caches the report unless a Refresh ran since gen was read.
func (s *AnalyticsService) store(ctx context.Context, gen uint64, key string, report interface{}) {
	s.genMu.RLock()
	defer s.genMu.RUnlock()
	if s.generation != gen {
		return
	}
	s.cache.Store(ctx, key, report)
}

func (s *AnalyticsService) resolveCriteria(snap *Snapshot, criteria models.FilterCriteria) models.FilterCriteria {
	if criteria.Faculties != nil && criteria.Types != nil {
		return criteria
	}
	defaults := s.engine.ObservedOptions(snap.Events)
	if criteria.Faculties == nil {
		criteria.Faculties = defaults.Faculties
	}
	if criteria.Types == nil {
		criteria.Types = defaults.Types
	}
	return criteria
}

func (s *AnalyticsService) eventRecords(snap *Snapshot, eventID string) (models.Event, []engine.EnrichedCheckIn, error) {
	for _, ev := range snap.Events {
		if ev.ID != eventID {
			continue
		}
		joined := s.engine.Join(snap.Events, []models.Event{ev}, snap.CheckIns)
		s.reportOrphans(joined.Orphaned)
		return ev, joined.Records, nil
	}
	return models.Event{}, nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
}

func (s *AnalyticsService) reportOrphans(n int) {
	if n == 0 {
		return
	}
	s.metrics.RecordOrphanedCheckIns(n)
	s.logger.Warn("check-ins reference unknown events", zap.Int("orphaned", n))
}

func (s *AnalyticsService) observe(aggregate string, start time.Time) {
	s.metrics.ObserveEngineCompute(aggregate, time.Since(start))
}

func facultyBreakdown(breakdown map[string]engine.StatusCounts) []dto.FacultyBreakdown {
	rows := make([]dto.FacultyBreakdown, 0, len(breakdown))
	for faculty, counts := range breakdown {
		rows = append(rows, dto.FacultyBreakdown{
			Faculty:          faculty,
			Present:          counts.Present,
			Late:             counts.Late,
			NoShow:           counts.NoShowEstimated,
			NoShowIsEstimate: true,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Faculty < rows[j].Faculty })
	return rows
}

func eventRows(events []models.Event, noShows engine.NoShowEstimate) []dto.EventRow {
	byEvent := make(map[string]engine.EventNoShow, len(noShows.Events))
	for _, ns := range noShows.Events {
		byEvent[ns.EventID] = ns
	}
	rows := make([]dto.EventRow, 0, len(events))
	for _, ev := range events {
		ns := byEvent[ev.ID]
		rows = append(rows, dto.EventRow{
			ID:               ev.ID,
			Title:            ev.Title,
			Type:             ev.Type,
			Faculty:          ev.FacultyName(),
			StartAt:          ev.StartAt,
			EndAt:            ev.EndAt,
			Location:         ev.Location,
			Capacity:         ev.Capacity,
			Attendees:        ns.Present,
			NoShow:           ns.NoShow,
			NoShowIsEstimate: true,
		})
	}
	return rows
}

// criteriaDigest distinguishes a nil selection ("all observed") from an empty one.
func criteriaDigest(c models.FilterCriteria) string {
	var b strings.Builder
	if c.Faculties == nil {
		b.WriteString("f=*")
	} else {
		faculties := append([]string(nil), c.Faculties...)
		sort.Strings(faculties)
		b.WriteString("f=" + strings.Join(faculties, "\x1f"))
	}
	if c.Types == nil {
		b.WriteString("|t=*")
	} else {
		types := make([]string, 0, len(c.Types))
		for _, t := range c.Types {
			types = append(types, string(t))
		}
		sort.Strings(types)
		b.WriteString("|t=" + strings.Join(types, "\x1f"))
	}
	b.WriteString("|from=" + formatDate(c.DateFrom))
	b.WriteString("|to=" + formatDate(c.DateTo))
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:12])
}

func makeAnalyticsCacheKey(parts ...string) string {
	var builder strings.Builder
	builder.Grow(len(parts) * 16)
	builder.WriteString("analytics")
	for _, part := range parts {
		if part == "" {
			continue
		}
		builder.WriteByte(':')
		builder.WriteString(strings.ReplaceAll(part, ":", "|"))
	}
	return builder.String()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dto.DateLayout)
}
