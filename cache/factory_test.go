package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewIdempotencyStore_Disabled(t *testing.T) {
	store := NewIdempotencyStore(context.Background(), false, RedisConfig{}, zap.NewNop())
	defer store.Close()

	assert.IsType(t, &InMemoryIdempotencyStore{}, store)
}

func TestNewIdempotencyStore_FallsBackWhenRedisIsDown(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)

	store := NewIdempotencyStore(context.Background(), true, RedisConfig{Addr: "127.0.0.1:1"}, zap.New(core))
	defer store.Close()

	assert.IsType(t, &InMemoryIdempotencyStore{}, store)
	assert.Equal(t, 1, logs.Len())
}
