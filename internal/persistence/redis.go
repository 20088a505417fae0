package persistence

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/gym-access/internal/config"
)

var errRedisNotConfigured = errors.New("redis client not configured")

// Redis holds the client backing the verify attempt limiter.
type Redis struct {
	Client *redis.Client
}

// NewRedis builds the client. An unreachable server is only logged: the
// limiter fails open, so Redis is never required to start.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
		opts.ReadTimeout = cfg.DialTimeout
		opts.WriteTimeout = cfg.DialTimeout
	}
	r := &Redis{Client: redis.NewClient(opts)}

	ctx := context.Background()
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	if err := r.Ping(ctx); err != nil {
		logger.Warn("unable to reach redis; verify attempts will not be limited",
			zap.String("addr", cfg.Addr), zap.Error(err))
	} else {
		logger.Info("connected to redis", zap.String("addr", cfg.Addr))
	}
	return r
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping reports whether Redis answers.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errRedisNotConfigured
	}
	return r.Client.Ping(ctx).Err()
}
