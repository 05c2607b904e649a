package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	defer client.Close()
	store := NewRedisStore(client, "")
	ctx := context.Background()

	_, err := store.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	data := &Data{LoggedIn: true, Username: "alice", Messages: []Message{{Level: LevelSuccess, Text: "Login Successful"}}}
	require.NoError(t, store.Save(ctx, "id1", data, time.Minute))
	assert.True(t, srv.Exists("session:id1"))
	assert.Equal(t, time.Minute, srv.TTL("session:id1"))

	loaded, err := store.Load(ctx, "id1")
	require.NoError(t, err)
	assert.Equal(t, data, loaded)

	srv.FastForward(2 * time.Minute)
	_, err = store.Load(ctx, "id1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Save(ctx, "id2", data, time.Minute))
	require.NoError(t, store.Delete(ctx, "id2"))
	require.NoError(t, store.Delete(ctx, "id2"))
	assert.False(t, srv.Exists("session:id2"))
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	data := &Data{LoggedIn: true, Username: "alice"}
	require.NoError(t, store.Save(ctx, "id1", data, time.Minute))

	loaded, err := store.Load(ctx, "id1")
	require.NoError(t, err)
	loaded.Username = "mallory"
	again, err := store.Load(ctx, "id1")
	require.NoError(t, err)
	assert.Equal(t, "alice", again.Username)

	now = now.Add(2 * time.Minute)
	_, err = store.Load(ctx, "id1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Delete(ctx, "nope"))
}
