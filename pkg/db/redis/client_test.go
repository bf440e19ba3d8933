package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	return NewStore(redis.NewClient(&redis.Options{Addr: mr.Addr()})), mr
}

func TestSetGetDelete(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	_, err := store.GetValue(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.SetValue(ctx, "k", "v", 0))
	v, err := store.GetValue(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "v", v)

	require.NoError(t, store.Delete(ctx, "k"))
	_, err = store.GetValue(ctx, "k")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSetIfAbsentAndExpiry(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)

	ok, err := store.SetIfAbsent(ctx, "cd", "1", 10*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = store.SetIfAbsent(ctx, "cd", "1", 10*time.Second)
	require.NoError(t, err)
	require.False(t, ok)

	ttl, err := store.TTL(ctx, "cd")
	require.NoError(t, err)
	require.Greater(t, ttl, time.Duration(0))

	mr.FastForward(11 * time.Second)
	ok, err = store.SetIfAbsent(ctx, "cd", "1", 10*time.Second)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestTake(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.SetValue(ctx, "dialog", "payload", time.Minute))
	v, err := store.Take(ctx, "dialog")
	require.NoError(t, err)
	require.Equal(t, "payload", v)

	_, err = store.Take(ctx, "dialog")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestConnectFails(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := Connect(ctx, Options{Host: "127.0.0.1", Port: 1})
	require.Error(t, err)
}
