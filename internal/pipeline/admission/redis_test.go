// internal/pipeline/admission/redis_test.go
package admission

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client), mr
}

func TestRedisStoreIncr(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		count, remaining, err := store.Incr(ctx, "sender-1", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(i), count)
		assert.Greater(t, remaining, time.Duration(0))
		assert.LessOrEqual(t, remaining, time.Minute)
	}
}

func TestRedisStoreIncrSeparateKeys(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	count, _, err := store.Incr(ctx, "sender-a", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, _, err = store.Incr(ctx, "sender-b", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRedisStoreIncrWindowExpires(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	_, _, err := store.Incr(ctx, "sender-1", time.Minute)
	require.NoError(t, err)
	_, _, err = store.Incr(ctx, "sender-1", time.Minute)
	require.NoError(t, err)

	mr.FastForward(61 * time.Second)

	count, remaining, err := store.Incr(ctx, "sender-1", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.LessOrEqual(t, remaining, time.Minute)
}

func TestRedisStoreIncrConnectionError(t *testing.T) {
	store, mr := newTestRedisStore(t)
	mr.Close()

	_, _, err := store.Incr(context.Background(), "sender-1", time.Minute)
	assert.Error(t, err)
}
