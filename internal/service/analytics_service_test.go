package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/uep-attendance-analytics/internal/engine"
	"github.com/noah-isme/uep-attendance-analytics/internal/models"
	appErrors "github.com/noah-isme/uep-attendance-analytics/pkg/errors"
)

func newAnalyticsServiceForTest(loader SnapshotLoader, cacheRepo CacheRepository) *AnalyticsService {
	metrics := NewMetricsService()
	cacheSvc := NewCacheService(cacheRepo, metrics, time.Minute, zap.NewNop(), cacheRepo != nil)
	svc := NewAnalyticsService(loader, engine.Default(), cacheSvc, metrics, zap.NewNop())
	svc.now = func() time.Time { return baseDay.Add(72 * time.Hour) }
	return svc
}

func TestAnalyticsServiceAcademicDefaultsToObservedValues(t *testing.T) {
	loader := &stubSnapshotLoader{snapshot: fixtureSnapshot()}
	svc := newAnalyticsServiceForTest(loader, nil)

	report, cacheHit, err := svc.Academic(context.Background(), models.FilterCriteria{})
	require.NoError(t, err)
	assert.False(t, cacheHit)

	assert.Equal(t, []string{"Engineering", "Law"}, report.Criteria.Faculties)
	assert.Len(t, report.Criteria.Types, 3)
	assert.Equal(t, 3, report.KPIs.EventCount)
	assert.Equal(t, 3, report.KPIs.UniqueAttendees)
	assert.InDelta(t, 400.0/35.0, report.KPIs.CompliancePct, 1e-9)
	assert.InDelta(t, 100-0.8*400.0/35.0, report.KPIs.NoShowPct, 1e-9)
	assert.True(t, report.KPIs.NoShowIsEstimate)
	assert.Equal(t, 1, report.Orphaned)
	assert.Equal(t, 0, report.OutOfScope)

	require.Len(t, report.FacultyBreakdown, 2)
	eng := report.FacultyBreakdown[0]
	assert.Equal(t, "Engineering", eng.Faculty)
	assert.Equal(t, 1, eng.Present)
	assert.Equal(t, 1, eng.Late)
	assert.InDelta(t, 9.0, eng.NoShow, 1e-9)
	assert.True(t, eng.NoShowIsEstimate)
	law := report.FacultyBreakdown[1]
	assert.Equal(t, "Law", law.Faculty)
	assert.Equal(t, 1, law.Present)
	assert.InDelta(t, 15.0, law.NoShow, 1e-9)

	require.Len(t, report.Events, 3)
	assert.Equal(t, "e-1", report.Events[0].ID)
	assert.Equal(t, 2, report.Events[0].Attendees)
	assert.Len(t, report.DailyTrend, 3)
	assert.Equal(t, 2, heatmapCell(report.Heatmap, "Engineering", 9))
	assert.Equal(t, 1, heatmapCell(report.Heatmap, "Engineering", 13))
	assert.Equal(t, baseDay.Add(72*time.Hour), report.GeneratedAt)
}

func TestAnalyticsServiceAcademicFaculty(t *testing.T) {
	svc := newAnalyticsServiceForTest(&stubSnapshotLoader{snapshot: fixtureSnapshot()}, nil)

	report, _, err := svc.Academic(context.Background(), models.FilterCriteria{Faculties: []string{"Law"}})
	require.NoError(t, err)
	assert.Equal(t, 1, report.KPIs.EventCount)
	assert.Equal(t, 3, report.OutOfScope)
	assert.Equal(t, 1, report.Orphaned)
	require.Len(t, report.Events, 1)
	assert.Equal(t, "e-3", report.Events[0].ID)
}

func TestAnalyticsServiceAcademicEmptySelection(t *testing.T) {
	svc := newAnalyticsServiceForTest(&stubSnapshotLoader{snapshot: fixtureSnapshot()}, nil)

	report, _, err := svc.Academic(context.Background(), models.FilterCriteria{Faculties: []string{}})
	require.NoError(t, err)
	assert.Equal(t, 0, report.KPIs.EventCount)
	assert.Zero(t, report.KPIs.CompliancePct)
	assert.Zero(t, report.KPIs.NoShowPct)
	assert.Empty(t, report.Events)
	assert.Empty(t, report.FacultyBreakdown)
	assert.Empty(t, report.DailyTrend)
	assert.Equal(t, 4, report.OutOfScope)
	assert.Empty(t, report.Criteria.Faculties)
}

func TestAnalyticsServiceAcademicCaching(t *testing.T) {
	loader := &stubSnapshotLoader{snapshot: fixtureSnapshot()}
	svc := newAnalyticsServiceForTest(loader, &stubCacheRepo{})
	ctx := context.Background()

	first, hit, err := svc.Academic(ctx, models.FilterCriteria{})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 1, loader.loads)

	second, hit, err := svc.Academic(ctx, models.FilterCriteria{})
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, loader.loads)
	assert.Equal(t, first.KPIs, second.KPIs)
	assert.Equal(t, first.FacultyBreakdown, second.FacultyBreakdown)

	_, hit, err = svc.Academic(ctx, models.FilterCriteria{Faculties: []string{}})
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestAnalyticsServiceAcademicCacheFailureFallsThrough(t *testing.T) {
	loader := &stubSnapshotLoader{snapshot: fixtureSnapshot()}
	svc := newAnalyticsServiceForTest(loader, &stubCacheRepo{getErr: assert.AnError})

	report, hit, err := svc.Academic(context.Background(), models.FilterCriteria{})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 3, report.KPIs.EventCount)
}

func TestAnalyticsServiceAcademicSourceUnavailable(t *testing.T) {
	loader := &stubSnapshotLoader{err: appErrors.Clone(appErrors.ErrSourceUnavailable, "down")}
	svc := newAnalyticsServiceForTest(loader, nil)

	_, _, err := svc.Academic(context.Background(), models.FilterCriteria{})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrSourceUnavailable)
}

func TestAnalyticsServiceDefaultCriteria(t *testing.T) {
	svc := newAnalyticsServiceForTest(&stubSnapshotLoader{snapshot: fixtureSnapshot()}, nil)

	criteria, err := svc.DefaultCriteria(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Engineering", "Law"}, criteria.Faculties)
	assert.Equal(t, []models.EventType{models.EventTypeSeminar, models.EventTypeTalk, models.EventTypeWorkshop}, criteria.Types)
	assert.Equal(t, baseDay, criteria.DateFrom)
	assert.Equal(t, baseDay.AddDate(0, 0, 2), criteria.DateTo)

	opts, err := svc.FilterOptions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, criteria.Faculties, opts.Faculties)
}

func TestAnalyticsServiceEventReport(t *testing.T) {
	svc := newAnalyticsServiceForTest(&stubSnapshotLoader{snapshot: fixtureSnapshot()}, &stubCacheRepo{})

	report, hit, err := svc.EventReport(context.Background(), "e-1")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "e-1", report.Event.ID)
	assert.Equal(t, "Engineering", report.Event.Faculty)
	assert.Equal(t, 2, report.Summary.Attendees)
	assert.Equal(t, 2, report.Summary.CheckIns)
	assert.InDelta(t, 17.5, report.Summary.MeanLatenessMinutes, 1e-9)
	assert.InDelta(t, 50.0, report.Summary.QRSharePct, 1e-9)
	assert.Equal(t, 15.0, report.LateThresholdMinutes)

	require.Len(t, report.Attendees, 2)
	assert.Equal(t, "Usuario 001", report.Attendees[0].Name)
	assert.Equal(t, engine.StatusPresent, report.Attendees[0].Status)
	assert.Equal(t, engine.StatusLate, report.Attendees[1].Status)

	counts := map[string]int{}
	for _, bin := range report.Histogram.Bins {
		counts[bin.Label] = bin.Count
	}
	assert.Equal(t, 1, counts["[5, 10)"])
	assert.Equal(t, 1, counts["[30, 60)"])
	assert.Len(t, report.Density, 2)

	_, hit, err = svc.EventReport(context.Background(), "e-1")
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestAnalyticsServiceEventReportUnknownEvent(t *testing.T) {
	svc := newAnalyticsServiceForTest(&stubSnapshotLoader{snapshot: fixtureSnapshot()}, nil)

	_, _, err := svc.EventReport(context.Background(), "e-404")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAnalyticsServiceAttendeeDetail(t *testing.T) {
	svc := newAnalyticsServiceForTest(&stubSnapshotLoader{snapshot: fixtureSnapshot()}, nil)

	event, rows, err := svc.AttendeeDetail(context.Background(), "e-3")
	require.NoError(t, err)
	assert.Equal(t, "e-3", event.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, "u-3", rows[0].UserID)
	assert.Empty(t, rows[0].Name)
}

func TestAnalyticsServiceRefresh(t *testing.T) {
	loader := &stubSnapshotLoader{snapshot: fixtureSnapshot()}
	cacheRepo := &stubCacheRepo{}
	svc := newAnalyticsServiceForTest(loader, cacheRepo)

	require.NoError(t, svc.Refresh(context.Background()))
	assert.Equal(t, 1, loader.invalidated)
	assert.Equal(t, []string{"analytics:*"}, cacheRepo.patterns)
}

func TestAnalyticsServiceRecordsOrphans(t *testing.T) {
	svc := newAnalyticsServiceForTest(&stubSnapshotLoader{snapshot: fixtureSnapshot()}, nil)

	_, _, err := svc.Academic(context.Background(), models.FilterCriteria{})
	require.NoError(t, err)
	snapshot := svc.SystemMetrics()
	assert.Equal(t, uint64(1), snapshot.OrphanedCheckIns)
	assert.NotZero(t, snapshot.EngineComputeCount)
}

func TestCriteriaDigestDistinguishesNilAndEmpty(t *testing.T) {
	all := criteriaDigest(models.FilterCriteria{})
	none := criteriaDigest(models.FilterCriteria{Faculties: []string{}, Types: []models.EventType{}})
	assert.NotEqual(t, all, none)

	a := criteriaDigest(models.FilterCriteria{Faculties: []string{"Law", "Engineering"}})
	b := criteriaDigest(models.FilterCriteria{Faculties: []string{"Engineering", "Law"}})
	assert.Equal(t, a, b)

	ranged := criteriaDigest(models.FilterCriteria{DateFrom: baseDay})
	assert.NotEqual(t, all, ranged)
}

func TestAnalyticsServiceRefreshSurvivesCachePurgeFailure(t *testing.T) {
	loader := &stubSnapshotLoader{snapshot: fixtureSnapshot()}
	cacheRepo := &stubCacheRepo{deleteErr: errors.New("redis: connection refused")}
	scheduler := &recordingScheduler{}
	svc := newAnalyticsServiceForTest(loader, cacheRepo).WithWarmer(scheduler)

	require.NoError(t, svc.Refresh(context.Background()))
	assert.Equal(t, 1, loader.invalidated)
	assert.Equal(t, 1, scheduler.calls)
	assert.Equal(t, uint64(1), svc.SystemMetrics().CachePurgeFailures)
}

func TestAnalyticsServiceSkipsCachingReportsOlderThanRefresh(t *testing.T) {
	cacheRepo := &stubCacheRepo{}
	loader := &refreshingLoader{stubSnapshotLoader: stubSnapshotLoader{snapshot: fixtureSnapshot()}}
	svc := newAnalyticsServiceForTest(loader, cacheRepo)
	loader.onLoad = func() { require.NoError(t, svc.Refresh(context.Background())) }

	_, hit, err := svc.Academic(context.Background(), models.FilterCriteria{})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Empty(t, cacheRepo.store)

	_, hit, err = svc.Academic(context.Background(), models.FilterCriteria{})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Len(t, cacheRepo.store, 1)

	loader.onLoad = func() { require.NoError(t, svc.Refresh(context.Background())) }
	_, _, err = svc.EventReport(context.Background(), "e-1")
	require.NoError(t, err)
	assert.Empty(t, cacheRepo.store)
}
