package workspace

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/isoscene/pkg/adapters/memory"
	redisadapter "github.com/aretw0/isoscene/pkg/adapters/redis"
	"github.com/aretw0/isoscene/pkg/domain"
	"github.com/aretw0/isoscene/pkg/editor"
	"github.com/aretw0/isoscene/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(memory.NewStore())
	ctx := context.Background()

	for i := 0; i < 200; i++ {
		id := fmt.Sprintf("ws-%d", i)
		require.NoError(t, mgr.WithLock(ctx, id, func(context.Context, *editor.Editor) error { return nil }))
	}

	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	assert.Empty(t, mgr.locks)
	assert.Len(t, mgr.editors, 200)
}

func TestManager_SerializesAccess(t *testing.T) {
	mgr := NewManager(memory.NewStore())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := mgr.WithLock(ctx, "shared", func(ctx context.Context, e *editor.Editor) error {
				_, err := e.AddObject(ctx, domain.KindCube, domain.Vec3{})
				return err
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	err := mgr.WithLock(ctx, "shared", func(ctx context.Context, e *editor.Editor) error {
		tree := e.State().Snapshot()
		assert.Equal(t, 20, tree.Objects.ObjectCount)
		assert.Equal(t, domain.ObjectID(21), tree.Objects.NextObjectID)
		assert.Len(t, e.VisibleObjects(), 20)
		return nil
	})
	require.NoError(t, err)
}

func TestManager_PersistsAcrossManagers(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	first := NewManager(store)
	require.NoError(t, first.WithLock(ctx, "castle", func(ctx context.Context, e *editor.Editor) error {
		e.AddLayer(ctx, "Towers")
		return nil
	}))

	second := NewManager(store)
	require.NoError(t, second.WithLock(ctx, "castle", func(ctx context.Context, e *editor.Editor) error {
		assert.Len(t, e.Layers(), 2)
		assert.Equal(t, Key("castle"), e.State().Key())
		return nil
	}))
}

func TestManager_ListExistsDrop(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	mgr := NewManager(store)

	id, err := mgr.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, mgr.WithLock(ctx, "beta", func(ctx context.Context, e *editor.Editor) error {
		e.AddLayer(ctx, "x")
		return e.SaveScene(ctx, "draft")
	}))

	ids, err := mgr.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{id, "beta"}, ids)

	ok, err := mgr.Exists(ctx, "beta")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = mgr.Exists(ctx, "gamma")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, mgr.Drop(ctx, "beta"))
	keys, err := store.List(ctx)
	require.NoError(t, err)
	for _, k := range keys {
		assert.NotContains(t, k, "beta")
	}
	assert.ErrorIs(t, mgr.Drop(ctx, "beta"), domain.ErrWorkspaceNotFound)

	// A dropped workspace reopens empty.
	require.NoError(t, mgr.WithLock(ctx, "beta", func(ctx context.Context, e *editor.Editor) error {
		assert.Len(t, e.Layers(), 1)
		return nil
	}))
}

func TestManager_InvalidIDs(t *testing.T) {
	mgr := NewManager(memory.NewStore())
	for _, id := range []string{"", "  ", "a:b", "a/b", "a b"} {
		err := mgr.WithLock(context.Background(), id, func(context.Context, *editor.Editor) error { return nil })
		assert.ErrorIs(t, err, domain.ErrInvalidWorkspaceID, id)
	}
}

func TestManager_OpenHook(t *testing.T) {
	var opened []string
	mgr := NewManager(memory.NewStore(), WithOpenHook(func(id string, _ *editor.Editor) {
		opened = append(opened, id)
	}))
	ctx := context.Background()
	noop := func(context.Context, *editor.Editor) error { return nil }

	require.NoError(t, mgr.WithLock(ctx, "a", noop))
	require.NoError(t, mgr.WithLock(ctx, "a", noop))
	require.NoError(t, mgr.WithLock(ctx, "b", noop))
	assert.Equal(t, []string{"a", "b"}, opened)
}

type recordingLocker struct {
	mu       sync.Mutex
	keys     []string
	unlocked int
	err      error
}

func (l *recordingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	l.keys = append(l.keys, key)
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.unlocked++
		return nil
	}, nil
}

func TestManager_DistributedLocker(t *testing.T) {
	ctx := context.Background()
	locker := &recordingLocker{}
	mgr := NewManager(memory.NewStore(), WithLocker(locker))

	require.NoError(t, mgr.WithLock(ctx, "a", func(context.Context, *editor.Editor) error { return nil }))
	assert.Equal(t, []string{"ws:a"}, locker.keys)
	assert.Equal(t, 1, locker.unlocked)

	locker.err = errors.New("redis down")
	called := false
	err := mgr.WithLock(ctx, "a", func(context.Context, *editor.Editor) error {
		called = true
		return nil
	})
	assert.Error(t, err)
	assert.False(t, called)
}

func TestManager_RedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	store := redisadapter.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	mgr := NewManager(store, WithLocker(redisadapter.NewLocker(store.Client(), "")))

	require.NoError(t, mgr.WithLock(ctx, "shared", func(ctx context.Context, e *editor.Editor) error {
		_, err := e.AddObject(ctx, domain.KindSphere, domain.Vec3{X: 2})
		return err
	}))

	other := NewManager(store)
	require.NoError(t, other.WithLock(ctx, "shared", func(ctx context.Context, e *editor.Editor) error {
		require.Len(t, e.Objects(), 1)
		assert.Equal(t, domain.KindSphere, e.Objects()[0].Kind)
		return nil
	}))
}

func TestManager_StateHooksPerWorkspace(t *testing.T) {
	ctx := context.Background()
	counts := map[string]int{}
	var mu sync.Mutex
	mgr := NewManager(memory.NewStore(), WithStateHooks(func(id string) domain.StateHooks {
		return domain.StateHooks{OnMutation: func(context.Context, string) {
			mu.Lock()
			counts[id]++
			mu.Unlock()
		}}
	}))

	require.NoError(t, mgr.WithLock(ctx, "a", func(ctx context.Context, e *editor.Editor) error {
		e.RotateCamera(ctx, true)
		return nil
	}))
	require.NoError(t, mgr.WithLock(ctx, "b", func(ctx context.Context, e *editor.Editor) error {
		e.SetZoom(ctx, 2)
		e.SetZoom(ctx, 3)
		return nil
	}))
	// Rotating the camera commits once and records one history entry.
	assert.Equal(t, map[string]int{"a": 2, "b": 2}, counts)
}
