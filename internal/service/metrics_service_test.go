package service

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uep-attendance-analytics/internal/models"
)

func TestMetricsServiceSnapshotAggregates(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/analytics/academic", http.StatusOK, 20*time.Millisecond)
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/analytics/academic", http.StatusOK, 40*time.Millisecond)
	m.ObserveDBQuery("events_list", 10*time.Millisecond)
	m.ObserveEngineCompute("kpis", 2*time.Millisecond)
	m.ObserveEngineCompute("heatmap", 4*time.Millisecond)
	m.RecordOrphanedCheckIns(3)
	m.RecordOrphanedCheckIns(0)
	m.RecordSnapshotRefresh(true)
	m.RecordSnapshotRefresh(false)

	s := m.Snapshot()
	assert.Equal(t, uint64(2), s.RequestsTotal)
	assert.InDelta(t, 30.0, s.AverageRequestDurationMs, 1e-6)
	assert.Equal(t, uint64(1), s.DBQueryCount)
	assert.Equal(t, uint64(2), s.EngineComputeCount)
	assert.InDelta(t, 3.0, s.AverageEngineComputeMs, 1e-6)
	assert.Equal(t, uint64(3), s.OrphanedCheckIns)
	assert.Equal(t, uint64(1), s.SnapshotRefreshes)
	assert.Equal(t, uint64(1), s.SnapshotRefreshFailures)
	assert.Positive(t, s.Goroutines)
}

func TestMetricsServiceHandlerExposesCollectors(t *testing.T) {
	m := NewMetricsService()
	m.ObserveEngineCompute("kpis", time.Millisecond)
	m.RecordOrphanedCheckIns(1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "analytics_engine_compute_seconds"))
	assert.True(t, strings.Contains(body, "analytics_orphaned_checkins_total 1"))
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	m.ObserveEngineCompute("kpis", time.Millisecond)
	m.RecordOrphanedCheckIns(2)
	m.RecordSnapshotRefresh(true)
	assert.Zero(t, m.Snapshot().RequestsTotal)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsServiceNilSnapshot(t *testing.T) {
	var m *MetricsService
	assert.Equal(t, models.AnalyticsSystemMetrics{}, m.Snapshot())
	m.ObserveEngineCompute("kpis", time.Millisecond)
	m.RecordSnapshotRefresh(true)
}
