package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"media-approve/internal/chat"
	"media-approve/internal/models"
	"media-approve/pkg/botErrors"
	rdb "media-approve/pkg/db/redis"
)

func newRedisStore(t *testing.T) (*rdb.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	return rdb.NewStore(redis.NewClient(&redis.Options{Addr: mr.Addr()})), mr
}

func TestDialogLifecycle(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)
	dialogs := NewDialogRepository(store, 5*time.Minute)

	_, err := dialogs.Get(ctx, "rev@example.org")
	require.ErrorIs(t, err, botErrors.ErrNoDialog)

	d := DenyDialog{Ref: chat.MessageRef{ChatID: "review", MessageID: "10"}, Text: "body"}
	require.NoError(t, dialogs.Open(ctx, "rev@example.org", d))

	got, err := dialogs.Get(ctx, "rev@example.org")
	require.NoError(t, err)
	require.Equal(t, d, *got)

	require.NoError(t, dialogs.Close(ctx, "rev@example.org"))
	_, err = dialogs.Get(ctx, "rev@example.org")
	require.ErrorIs(t, err, botErrors.ErrNoDialog)

	require.NoError(t, dialogs.Open(ctx, "rev@example.org", d))
	got, err = dialogs.Take(ctx, "rev@example.org")
	require.NoError(t, err)
	require.Equal(t, d, *got)
	_, err = dialogs.Take(ctx, "rev@example.org")
	require.ErrorIs(t, err, botErrors.ErrNoDialog)

	require.NoError(t, dialogs.Open(ctx, "rev@example.org", d))
	mr.FastForward(6 * time.Minute)
	_, err = dialogs.Get(ctx, "rev@example.org")
	require.ErrorIs(t, err, botErrors.ErrNoDialog)
}

func TestCooldown(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)
	cooldown := NewCooldownRepository(store, 10*time.Second)

	ok, _, err := cooldown.Acquire(ctx, "u@example.org")
	require.NoError(t, err)
	require.True(t, ok)

	ok, left, err := cooldown.Acquire(ctx, "u@example.org")
	require.NoError(t, err)
	require.False(t, ok)
	require.Greater(t, left, time.Duration(0))
	require.LessOrEqual(t, left, 10*time.Second)

	ok, _, err = cooldown.Acquire(ctx, "other@example.org")
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(10 * time.Second)
	ok, _, err = cooldown.Acquire(ctx, "u@example.org")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, cooldown.Release(ctx, "u@example.org"))
	ok, _, err = cooldown.Acquire(ctx, "u@example.org")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestLedger(t *testing.T) {
	ctx := context.Background()
	store, _ := newRedisStore(t)
	ledger := NewLedgerRepository(store, time.Hour)
	ref := chat.MessageRef{ChatID: "review", MessageID: "11"}

	status, err := ledger.Resolution(ctx, ref)
	require.NoError(t, err)
	require.Empty(t, status)

	require.NoError(t, ledger.MarkResolved(ctx, ref, models.StatusApproved))
	status, err = ledger.Resolution(ctx, ref)
	require.NoError(t, err)
	require.Equal(t, models.StatusApproved, status)

	other, err := ledger.Resolution(ctx, chat.MessageRef{ChatID: "review", MessageID: "12"})
	require.NoError(t, err)
	require.Empty(t, other)
}
