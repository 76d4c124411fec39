package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DenisKhanov/RouteBOT/internal/routebot/models"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T, ttl time.Duration) (*RedisConversations, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisConversations(client, ttl), mr
}

func TestRedisConversationsRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedis(t, time.Hour)
	require.NoError(t, store.Ping(ctx))

	conv, err := store.GetOrCreate(ctx, "573001112233")
	require.NoError(t, err)
	assert.Equal(t, models.StateStart, conv.State)
	assert.False(t, mr.Exists("conversation:573001112233"), "new conversation is written only on Save")

	conv.State = models.StateAwaitingName
	conv.SelectedDepartment = "cartera"
	require.NoError(t, store.Save(ctx, conv))
	assert.True(t, mr.Exists("conversation:573001112233"))
	assert.Equal(t, time.Hour, mr.TTL("conversation:573001112233"))

	stored, err := store.GetOrCreate(ctx, "573001112233")
	require.NoError(t, err)
	assert.Equal(t, models.StateAwaitingName, stored.State)
	assert.Equal(t, "cartera", stored.SelectedDepartment)
}

func TestRedisConversationsExpire(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedis(t, 10*time.Minute)

	conv := models.NewConversation("a")
	conv.State = models.StateAwaitingDepartment
	require.NoError(t, store.Save(ctx, conv))

	mr.FastForward(11 * time.Minute)

	stored, err := store.GetOrCreate(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, models.StateStart, stored.State)
}

func TestRedisConversationsErrors(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedis(t, 0)

	_, err := store.GetOrCreate(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyConversationID)
	assert.ErrorIs(t, store.Save(ctx, models.Conversation{}), ErrEmptyConversationID)

	require.NoError(t, mr.Set("conversation:broken", "{not json"))
	_, err = store.GetOrCreate(ctx, "broken")
	assert.Error(t, err)

	mr.Close()
	_, err = store.GetOrCreate(ctx, "a")
	assert.Error(t, err)
}
