package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/isoscene/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSnapshotStoreContract runs a suite of tests to verify that a SnapshotStore implementation
// adheres to the defined interface contract.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()
	key := "contract-test-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		payload := []byte(`{"scene":{"currentCameraAngle":90}}`)

		err := store.Save(ctx, key, payload)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, payload, loaded)
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key, []byte("first")))
		require.NoError(t, store.Save(ctx, key, []byte("second")))

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, []byte("second"), loaded)
	})

	t.Run("Load Returns Copy", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key, []byte("immutable")))
		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		loaded[0] = 'X'

		again, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, []byte("immutable"), again)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+key)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key, []byte("{}")))

		err := store.Delete(ctx, key)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, key)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound, "Load after Delete should return ErrSnapshotNotFound")

		assert.NoError(t, store.Delete(ctx, key), "Deleting a missing key should not fail")
	})

	t.Run("List", func(t *testing.T) {
		k1 := key + "-1"
		k2 := key + "-2"
		_ = store.Save(ctx, k1, []byte("{}"))
		_ = store.Save(ctx, k2, []byte("{}"))

		defer func() {
			_ = store.Delete(ctx, k1)
			_ = store.Delete(ctx, k2)
		}()

		keys, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, k1)
		assert.Contains(t, keys, k2)
	})
}
