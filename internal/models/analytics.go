package models

import "time"

// AnalyticsSystemMetrics represents system level analytics captured from instrumentation.
type AnalyticsSystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"average_db_query_duration_ms"`
	EngineComputeCount       uint64    `json:"engine_compute_count"`
	AverageEngineComputeMs   float64   `json:"average_engine_compute_ms"`
	OrphanedCheckIns         uint64    `json:"orphaned_check_ins"`
	SnapshotRefreshes        uint64    `json:"snapshot_refreshes"`
	SnapshotRefreshFailures  uint64    `json:"snapshot_refresh_failures"`
	CachePurgeFailures       uint64    `json:"cache_purge_failures"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
