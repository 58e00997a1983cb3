package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/uep-attendance-analytics/pkg/errors"
)

const scanBatchSize = 100

// CacheRepository stores JSON encoded analytics payloads in Redis under a key namespace.
type CacheRepository struct {
	client    *redis.Client
	namespace string
	logger    *zap.Logger
}

// NewCacheRepository constructs a cache repository. A nil client turns every
// lookup into a miss.
func NewCacheRepository(client *redis.Client, namespace string, logger *zap.Logger) *CacheRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheRepository{client: client, namespace: namespace, logger: logger}
}

func (r *CacheRepository) key(key string) string {
	if r.namespace == "" {
		return key
	}
	return r.namespace + ":" + key
}

// Get retrieves and unmarshals the cached value into the provided destination.
func (r *CacheRepository) Get(ctx context.Context, key string, dest interface{}) error {
	if r.client == nil {
		return appErrors.ErrCacheMiss
	}

	raw, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return appErrors.ErrCacheMiss
		}
		return fmt.Errorf("redis get %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("unmarshal cache value for %s: %w", key, err)
	}

	return nil
}

// Set marshals the provided value and stores it with the given TTL.
func (r *CacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if r.client == nil {
		return nil
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value for %s: %w", key, err)
	}

	if err := r.client.Set(ctx, r.key(key), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}

	return nil
}

// DeleteByPattern removes cached entries matching the provided pattern, in batches.
func (r *CacheRepository) DeleteByPattern(ctx context.Context, pattern string) error {
	if r.client == nil {
		return nil
	}

	iter := r.client.Scan(ctx, 0, r.key(pattern), scanBatchSize).Iterator()
	batch := make([]string, 0, scanBatchSize)
	deleted := 0
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := r.client.Unlink(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("redis unlink %d keys: %w", len(batch), err)
		}
		deleted += len(batch)
		batch = batch[:0]
		return nil
	}
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan pattern %s: %w", pattern, err)
	}
	if err := flush(); err != nil {
		return err
	}

	r.logger.Debug("cache entries removed", zap.String("pattern", pattern), zap.Int("count", deleted))
	return nil
}

// Close releases the underlying Redis connection if present.
func (r *CacheRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
