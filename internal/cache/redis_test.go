package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

func TestAside_MissThenHit(t *testing.T) {
	setupTestRedis(t)
	ctx := context.Background()

	calls := 0
	load := func() (string, error) {
		calls++
		return "loaded", nil
	}

	got, err := Aside(ctx, "user:abc", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, "loaded", got)
	assert.Equal(t, 1, calls)

	got, err = Aside(ctx, "user:abc", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, "loaded", got)
	assert.Equal(t, 1, calls, "second read should come from cache")
}

func TestAside_LoaderError(t *testing.T) {
	setupTestRedis(t)

	_, err := Aside(context.Background(), "user:err", time.Minute, func() (int, error) {
		return 0, errors.New("db down")
	})
	assert.EqualError(t, err, "db down")
}

func TestAside_NoClient(t *testing.T) {
	SetClient(nil)

	calls := 0
	load := func() (int, error) {
		calls++
		return 42, nil
	}

	for i := 0; i < 2; i++ {
		got, err := Aside(context.Background(), "stats:totals", time.Minute, load)
		require.NoError(t, err)
		assert.Equal(t, 42, got)
	}
	assert.Equal(t, 2, calls, "without a client every read hits the loader")
}

func TestInvalidateUser(t *testing.T) {
	mr := setupTestRedis(t)
	ctx := context.Background()

	id := uuid.New()
	username := "gopher"
	require.NoError(t, mr.Set(UserKey(id), "x"))
	require.NoError(t, mr.Set(UsernameKey(username), "x"))

	InvalidateUser(ctx, id, &username)

	assert.False(t, mr.Exists(UserKey(id)))
	assert.False(t, mr.Exists(UsernameKey(username)))
}
