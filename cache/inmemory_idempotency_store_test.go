package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore_Reserve(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	t.Run("first reservation runs the request", func(t *testing.T) {
		resp, err := store.Reserve(ctx, "shop-1:key-1", time.Hour)
		require.NoError(t, err)
		assert.Nil(t, resp)
	})

	t.Run("second reservation while in flight is rejected", func(t *testing.T) {
		_, err := store.Reserve(ctx, "shop-1:key-2", time.Hour)
		require.NoError(t, err)

		_, err = store.Reserve(ctx, "shop-1:key-2", time.Hour)
		assert.ErrorIs(t, err, ErrInFlight)
	})

	t.Run("completed key replays the response", func(t *testing.T) {
		key := "shop-1:key-3"
		_, err := store.Reserve(ctx, key, time.Hour)
		require.NoError(t, err)

		want := Response{StatusCode: 201, Body: []byte(`{"invoice_id":7}`)}
		require.NoError(t, store.Complete(ctx, key, want, time.Hour))

		got, err := store.Reserve(ctx, key, time.Hour)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, want, *got)
	})

	t.Run("released key can be reserved again", func(t *testing.T) {
		key := "shop-1:key-4"
		_, err := store.Reserve(ctx, key, time.Hour)
		require.NoError(t, err)
		require.NoError(t, store.Release(ctx, key))

		resp, err := store.Reserve(ctx, key, time.Hour)
		require.NoError(t, err)
		assert.Nil(t, resp)
	})

	t.Run("release keeps a completed response", func(t *testing.T) {
		key := "shop-1:key-5"
		_, err := store.Reserve(ctx, key, time.Hour)
		require.NoError(t, err)
		require.NoError(t, store.Complete(ctx, key, Response{StatusCode: 201}, time.Hour))
		require.NoError(t, store.Release(ctx, key))

		got, err := store.Reserve(ctx, key, time.Hour)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 201, got.StatusCode)
	})

	t.Run("expired key can be reserved again", func(t *testing.T) {
		key := "shop-1:key-6"
		_, err := store.Reserve(ctx, key, 10*time.Millisecond)
		require.NoError(t, err)

		time.Sleep(20 * time.Millisecond)

		resp, err := store.Reserve(ctx, key, time.Hour)
		require.NoError(t, err)
		assert.Nil(t, resp)
	})
}

func TestInMemoryIdempotencyStore_Cleanup(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()
	_, err := store.Reserve(ctx, "short", 10*time.Millisecond)
	require.NoError(t, err)
	_, err = store.Reserve(ctx, "long", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 2, store.Size())

	time.Sleep(20 * time.Millisecond)
	store.cleanup()

	assert.Equal(t, 1, store.Size())
}

func TestInMemoryIdempotencyStore_CloseTwice(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
