package cache

import (
	"context"

	"go.uber.org/zap"
)

// NewIdempotencyStore returns a Redis store when enabled and reachable, and
// falls back to the in-memory store otherwise.
func NewIdempotencyStore(ctx context.Context, enabled bool, cfg RedisConfig, logger *zap.Logger) IdempotencyStore {
	if !enabled {
		logger.Info("using in-memory idempotency store")
		return NewInMemoryIdempotencyStore()
	}

	store, err := NewRedisIdempotencyStore(ctx, cfg)
	if err != nil {
		logger.Warn("Redis unavailable, falling back to in-memory idempotency store. "+
			"Retries that reach another instance will not be deduplicated.",
			zap.String("addr", cfg.Addr),
			zap.Error(err),
		)
		return NewInMemoryIdempotencyStore()
	}

	logger.Info("using Redis idempotency store", zap.String("addr", cfg.Addr))
	return store
}
