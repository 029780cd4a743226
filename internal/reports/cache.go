package reports

import (
	"context"
	"errors"
	"time"

	"soc-dashboard/internal/common/logger"
	"soc-dashboard/internal/common/metrics"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "soc:report:"

// Cache stores rendered report bodies. Failures are never surfaced to
// callers; a broken cache behaves like an empty one.
type Cache interface {
	Get(ctx context.Context, report string) ([]byte, bool)
	Set(ctx context.Context, report string, payload []byte)
}

// NoopCache is used when caching is disabled.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) ([]byte, bool) { return nil, false }
func (NoopCache) Set(context.Context, string, []byte)        {}

// RedisCache keeps report bodies in Redis for a fixed TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewRedisCache(client *redis.Client, ttl time.Duration, log logger.Logger) *RedisCache {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &RedisCache{client: client, ttl: ttl, logger: log}
}

func CacheKey(report string) string {
	return cacheKeyPrefix + report
}

func (c *RedisCache) Get(ctx context.Context, report string) ([]byte, bool) {
	val, err := c.client.Get(ctx, CacheKey(report)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.ReportCacheTotal.WithLabelValues("miss").Inc()
		return nil, false
	}
	if err != nil {
		metrics.ReportCacheTotal.WithLabelValues("error").Inc()
		c.logger.Warn("report cache read failed", map[string]interface{}{
			"report": report,
			"error":  err,
		})
		return nil, false
	}

	metrics.ReportCacheTotal.WithLabelValues("hit").Inc()
	return val, true
}

func (c *RedisCache) Set(ctx context.Context, report string, payload []byte) {
	if err := c.client.Set(ctx, CacheKey(report), payload, c.ttl).Err(); err != nil {
		c.logger.Warn("report cache write failed", map[string]interface{}{
			"report": report,
			"error":  err,
		})
	}
}
