package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/isoscene/pkg/adapters/redis"
	"github.com/aretw0/isoscene/pkg/domain"
	"github.com/aretw0/isoscene/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)

	store := redis.NewFromClient(client)
	ports.RunSnapshotStoreContract(t, store)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()
	key := "state-ttl"

	err := store.Save(ctx, key, []byte(`{"scene":{}}`))
	assert.NoError(t, err)

	keys, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Contains(t, keys, key)

	// Key expiration is driven by miniredis time.
	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, key)
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)

	// Index pruning relies on time.Now(), so wait past the score.
	time.Sleep(1200 * time.Millisecond)

	keys, err = store.List(ctx)
	assert.NoError(t, err)
	assert.Empty(t, keys)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	err := store.Save(ctx, "my-state", []byte("{}"))
	assert.NoError(t, err)

	assert.True(t, mr.Exists("custom:app:my-state"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:index"), "Expected index with custom prefix to exist")

	list, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Contains(t, list, "my-state")
}

func TestRedisStore_EmptyKey(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client)
	assert.Error(t, store.Save(context.Background(), "", []byte("{}")))
}
