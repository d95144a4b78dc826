package store_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"banbds/internal/domain"
	"banbds/internal/store"
)

// exerciseStore runs the behaviour every KeyValueStore must share.
func exerciseStore(t *testing.T, kv domain.KeyValueStore) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := kv.Get(ctx, "device_id")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set(ctx, "device_id", "dev-1"))
	require.NoError(t, kv.Set(ctx, "device_token", "tok-1"))
	require.NoError(t, kv.Set(ctx, "device_token", "tok-2"))

	v, ok, err := kv.Get(ctx, "device_token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok-2", v)

	require.NoError(t, kv.Remove(ctx, "device_token"))
	_, ok, err = kv.Get(ctx, "device_token")
	require.NoError(t, err)
	assert.False(t, ok)

	v, ok, err = kv.Get(ctx, "device_id")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dev-1", v)

	require.NoError(t, kv.Remove(ctx, "never-set"))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, store.NewMemoryStore())
}

func TestMemoryStore_ConcurrentWritersLastWins(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()

	var wg sync.WaitGroup
	for _, tok := range []string{"a", "b", "c", "d"} {
		wg.Add(1)
		go func(tok string) {
			defer wg.Done()
			_ = kv.Set(ctx, "device_token", tok)
		}(tok)
	}
	wg.Wait()

	v, ok, err := kv.Get(ctx, "device_token")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, []string{"a", "b", "c", "d"}, v)
}

func TestRedisStore(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	kv := store.NewRedisStore(client, "")
	defer kv.Close()

	exerciseStore(t, kv)

	assert.True(t, mr.Exists(store.DefaultRedisPrefix+"device_id"))
	assert.False(t, mr.Exists("device_id"))
}

func TestOpenRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	kv, err := store.OpenRedis(context.Background(), "redis://"+mr.Addr(), "test:")
	require.NoError(t, err)
	defer kv.Close()

	require.NoError(t, kv.Set(context.Background(), "user_token", "u"))
	got, err := mr.Get("test:user_token")
	require.NoError(t, err)
	assert.Equal(t, "u", got)

	_, err = store.OpenRedis(context.Background(), "", "")
	assert.Error(t, err)
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.db")

	kv, err := store.OpenSQLite(ctx, path)
	require.NoError(t, err)
	exerciseStore(t, kv)
	require.NoError(t, kv.Close())

	reopened, err := store.OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()
	v, ok, err := reopened.Get(ctx, "device_id")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dev-1", v)
}
