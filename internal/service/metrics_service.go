package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/uep-attendance-analytics/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	dbQueryDuration *prometheus.HistogramVec
	engineCompute   *prometheus.HistogramVec
	orphaned        prometheus.Counter
	snapshotRefresh *prometheus.CounterVec
	cachePurgeFails prometheus.Counter

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	dbQueryCount         uint64
	dbQueryDurationTotal uint64
	engineCount          uint64
	engineDurationTotal  uint64
	orphanedCount        uint64
	refreshCount         uint64
	refreshFailureCount  uint64
	purgeFailureCount    uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	engineCompute := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "analytics_engine_compute_seconds",
		Help:    "Duration of analytics engine aggregations",
		Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"aggregate"})

	orphaned := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "analytics_orphaned_checkins_total",
		Help: "Check-ins referencing events that do not exist",
	})

	snapshotRefresh := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "analytics_snapshot_refresh_total",
		Help: "Record snapshot refresh attempts by result",
	}, []string{"result"})

	cachePurgeFails := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_purge_failures_total",
		Help: "Cache invalidations that failed",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses, dbQueryDuration, engineCompute, orphaned, snapshotRefresh, cachePurgeFails, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheHitRatio:   cacheHitRatio,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		dbQueryDuration: dbQueryDuration,
		engineCompute:   engineCompute,
		orphaned:        orphaned,
		snapshotRefresh: snapshotRefresh,
		cachePurgeFails: cachePurgeFails,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	if m.cacheLatency != nil {
		m.cacheLatency.Observe(duration.Seconds())
	}
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	total := hits + misses
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil || m.cacheWrite == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
	atomic.AddUint64(&m.dbQueryCount, 1)
	atomic.AddUint64(&m.dbQueryDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveEngineCompute records the duration of one engine aggregation.
func (m *MetricsService) ObserveEngineCompute(aggregate string, duration time.Duration) {
	if m == nil {
		return
	}
	m.engineCompute.WithLabelValues(aggregate).Observe(duration.Seconds())
	atomic.AddUint64(&m.engineCount, 1)
	atomic.AddUint64(&m.engineDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordOrphanedCheckIns adds to the orphaned check-in counter.
func (m *MetricsService) RecordOrphanedCheckIns(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.orphaned.Add(float64(n))
	atomic.AddUint64(&m.orphanedCount, uint64(n))
}

// RecordSnapshotRefresh counts a snapshot refresh attempt.
func (m *MetricsService) RecordSnapshotRefresh(ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.snapshotRefresh.WithLabelValues("success").Inc()
		atomic.AddUint64(&m.refreshCount, 1)
		return
	}
	m.snapshotRefresh.WithLabelValues("failure").Inc()
	atomic.AddUint64(&m.refreshFailureCount, 1)
}

// RecordCachePurgeFailure counts a failed cache invalidation.
func (m *MetricsService) RecordCachePurgeFailure() {
	if m == nil {
		return
	}
	m.cachePurgeFails.Inc()
	atomic.AddUint64(&m.purgeFailureCount, 1)
}

// Snapshot returns aggregated metrics suitable for analytics endpoints.
func (m *MetricsService) Snapshot() models.AnalyticsSystemMetrics {
	if m == nil {
		return models.AnalyticsSystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)
	dbCount := atomic.LoadUint64(&m.dbQueryCount)
	dbDuration := atomic.LoadUint64(&m.dbQueryDurationTotal)
	engineCount := atomic.LoadUint64(&m.engineCount)
	engineDuration := atomic.LoadUint64(&m.engineDurationTotal)

	var cacheRatio float64
	totalLookups := hits + misses
	if totalLookups > 0 {
		cacheRatio = float64(hits) / float64(totalLookups)
	}

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	var avgDBMs float64
	if dbCount > 0 {
		avgDBMs = float64(dbDuration) / float64(dbCount) / float64(time.Millisecond)
	}

	var avgEngineMs float64
	if engineCount > 0 {
		avgEngineMs = float64(engineDuration) / float64(engineCount) / float64(time.Millisecond)
	}

	return models.AnalyticsSystemMetrics{
		CacheHitRatio:            cacheRatio,
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		DBQueryCount:             dbCount,
		AverageDBQueryDurationMs: avgDBMs,
		EngineComputeCount:       engineCount,
		AverageEngineComputeMs:   avgEngineMs,
		OrphanedCheckIns:         atomic.LoadUint64(&m.orphanedCount),
		SnapshotRefreshes:        atomic.LoadUint64(&m.refreshCount),
		SnapshotRefreshFailures:  atomic.LoadUint64(&m.refreshFailureCount),
		CachePurgeFailures:       atomic.LoadUint64(&m.purgeFailureCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
