package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/uep-attendance-analytics/pkg/errors"
)

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheService keeps computed reports for a fixed TTL. Lookups and stores
// never fail the caller: repository errors are logged and count as misses.
type CacheService struct {
	repo    CacheRepository
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
	enabled bool
}

// NewCacheService constructs a cache service. A non-positive ttl falls back to one minute.
func NewCacheService(repo CacheRepository, metrics *MetricsService, ttl time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, ttl: ttl, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Lookup decodes the entry stored under key into dest and reports whether it was found.
func (s *CacheService) Lookup(ctx context.Context, key string, dest interface{}) bool {
	if !s.Enabled() {
		return false
	}
	start := time.Now()
	err := s.repo.Get(ctx, key, dest)
	s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	if err != nil && !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("report cache lookup failed", zap.String("key", key), zap.Error(err))
	}
	return err == nil
}

// Store saves value under key for the configured TTL.
func (s *CacheService) Store(ctx context.Context, key string, value interface{}) {
	if !s.Enabled() {
		return
	}
	start := time.Now()
	err := s.repo.Set(ctx, key, value, s.ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("report cache store failed", zap.String("key", key), zap.Error(err))
	}
}

// Purge removes every entry matching pattern.
func (s *CacheService) Purge(ctx context.Context, pattern string) error {
	if !s.Enabled() {
		return nil
	}
	if err := s.repo.DeleteByPattern(ctx, pattern); err != nil {
		s.metrics.RecordCachePurgeFailure()
		s.logger.Warn("report cache purge failed", zap.String("pattern", pattern), zap.Error(err))
		return err
	}
	return nil
}
