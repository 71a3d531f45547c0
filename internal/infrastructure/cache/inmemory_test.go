package cache

import (
	"context"
	"testing"
	"time"

	"github.com/exportdesk/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestInMemoryStore_TryLock(t *testing.T) {
	store := NewInMemoryStore()
	defer store.Close()
	ctx := context.Background()

	t.Run("second holder is refused until release", func(t *testing.T) {
		lease, ok, err := store.TryLock(ctx, "sync:orders", time.Minute)
		require.NoError(t, err)
		require.True(t, ok)

		_, ok, err = store.TryLock(ctx, "sync:orders", time.Minute)
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, lease.Release(ctx))
		again, ok, err := store.TryLock(ctx, "sync:orders", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
		require.NoError(t, again.Release(ctx))
	})

	t.Run("expired lease can be taken over", func(t *testing.T) {
		stale, ok, err := store.TryLock(ctx, "sync:products", 10*time.Millisecond)
		require.NoError(t, err)
		require.True(t, ok)

		time.Sleep(20 * time.Millisecond)
		fresh, ok, err := store.TryLock(ctx, "sync:products", time.Minute)
		require.NoError(t, err)
		require.True(t, ok)

		// releasing the stale lease must not free the new holder's lock
		require.NoError(t, stale.Release(ctx))
		_, ok, err = store.TryLock(ctx, "sync:products", time.Minute)
		require.NoError(t, err)
		assert.False(t, ok)
		require.NoError(t, fresh.Release(ctx))
	})
}

func TestInMemoryStore_Cache(t *testing.T) {
	store := NewInMemoryStore()
	defer store.Close()
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "img:1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "img:1", "https://signed", time.Hour))
	v, ok, err := store.Get(ctx, "img:1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://signed", v)

	require.NoError(t, store.Set(ctx, "img:2", "short", 10*time.Millisecond))
	time.Sleep(20 * time.Millisecond)
	_, ok, _ = store.Get(ctx, "img:2")
	assert.False(t, ok)

	store.cleanup()
	assert.Equal(t, 1, store.Size())

	require.NoError(t, store.Delete(ctx, "img:1"))
	assert.Equal(t, 0, store.Size())
}

func TestInMemoryStore_CloseIsIdempotent(t *testing.T) {
	store := NewInMemoryStore()
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}

func TestNewBackend(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled redis uses memory", func(t *testing.T) {
		b, err := NewBackend(ctx, config.RedisConfig{})
		require.NoError(t, err)
		defer b.Close()
		assert.False(t, b.Shared)
		assert.IsType(t, &InMemoryStore{}, b.Locker)
	})

	t.Run("unreachable redis falls back with a warning", func(t *testing.T) {
		core, logs := observer.New(zap.WarnLevel)
		b, err := NewBackend(ctx, config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}, WithLogger(zap.New(core)))
		require.NoError(t, err)
		defer b.Close()
		assert.False(t, b.Shared)
		assert.Equal(t, 1, logs.Len())
	})

	t.Run("fallback can be refused", func(t *testing.T) {
		_, err := NewBackend(ctx, config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}, WithInMemoryFallback(false))
		assert.Error(t, err)
	})

	t.Run("bad url", func(t *testing.T) {
		_, err := NewBackend(ctx, config.RedisConfig{Enabled: true, URL: "://nope"}, WithInMemoryFallback(false))
		assert.Error(t, err)
	})
}
