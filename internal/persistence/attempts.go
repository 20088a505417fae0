package persistence

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const attemptKeyPrefix = "gym_access_attempts:"

// AttemptLimiter is a fixed-window counter stored in Redis.
type AttemptLimiter struct {
	redis       *Redis
	maxAttempts int64
	window      time.Duration
	logger      *zap.Logger
}

// NewAttemptLimiter builds a limiter allowing maxAttempts per window and key.
func NewAttemptLimiter(redis *Redis, maxAttempts int, window time.Duration, logger *zap.Logger) *AttemptLimiter {
	return &AttemptLimiter{redis: redis, maxAttempts: int64(maxAttempts), window: window, logger: logger}
}

// Allow records one attempt for key and reports whether it is within budget.
// When Redis cannot be reached the attempt is allowed and the error returned
// for logging.
func (l *AttemptLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if l.maxAttempts <= 0 {
		return true, nil
	}
	if err := l.redis.Ping(ctx); err != nil {
		return true, err
	}
	redisKey := attemptKeyPrefix + key

	count, err := l.redis.Client.Incr(ctx, redisKey).Result()
	if err != nil {
		return true, err
	}
	if count == 1 {
		if err := l.redis.Client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			l.logger.Warn("failed to set attempt window", zap.String("key", redisKey), zap.Error(err))
		}
	}
	return count <= l.maxAttempts, nil
}

// Reset clears the counter for key, e.g. after a successful verification.
func (l *AttemptLimiter) Reset(ctx context.Context, key string) error {
	if l.redis == nil || l.redis.Client == nil {
		return nil
	}
	return l.redis.Client.Del(ctx, attemptKeyPrefix+key).Err()
}
