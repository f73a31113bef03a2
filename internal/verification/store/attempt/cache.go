package attempt

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"veriface/internal/verification"
	id "veriface/pkg/domain"
)

// RedisCache caches serialized attempts for the read path. It is strictly
// best effort: a cache failure is logged and the caller falls through to the
// store, so redis being down degrades latency, never correctness.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisCache builds a cache with the given TTL. TTL doubles as the
// retention bound for attempt data held outside the system of record.
func NewRedisCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisCache{client: client, ttl: ttl, logger: logger}
}

func cacheKey(attemptID id.AttemptID) string {
	return "veriface:attempt:" + attemptID.String()
}

func (c *RedisCache) Get(ctx context.Context, attemptID id.AttemptID) (*verification.Attempt, bool) {
	payload, err := c.client.Get(ctx, cacheKey(attemptID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.WarnContext(ctx, "attempt cache read failed", "attempt_id", attemptID, "error", err)
		}
		return nil, false
	}
	var attempt verification.Attempt
	if err := json.Unmarshal(payload, &attempt); err != nil {
		c.logger.WarnContext(ctx, "attempt cache entry corrupt", "attempt_id", attemptID, "error", err)
		return nil, false
	}
	return &attempt, true
}

func (c *RedisCache) Set(ctx context.Context, attempt *verification.Attempt) {
	payload, err := json.Marshal(attempt)
	if err != nil {
		c.logger.WarnContext(ctx, "attempt cache marshal failed", "attempt_id", attempt.ID, "error", err)
		return
	}
	if err := c.client.Set(ctx, cacheKey(attempt.ID), payload, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "attempt cache write failed", "attempt_id", attempt.ID, "error", err)
	}
}

func (c *RedisCache) Invalidate(ctx context.Context, attemptID id.AttemptID) {
	if err := c.client.Del(ctx, cacheKey(attemptID)).Err(); err != nil {
		c.logger.WarnContext(ctx, "attempt cache invalidate failed", "attempt_id", attemptID, "error", err)
	}
}
