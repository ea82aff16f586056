package editor

import (
	"context"
	"testing"

	"github.com/aretw0/isoscene/pkg/adapters/memory"
	"github.com/aretw0/isoscene/pkg/domain"
	"github.com/aretw0/isoscene/pkg/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndOpenScene(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	e := newTestEditor(t, store)

	_, err := e.AddObject(ctx, domain.KindCube, domain.Vec3{X: 1})
	require.NoError(t, err)
	e.AddLayer(ctx, "Roof")
	_, err = e.AddObject(ctx, domain.KindRamp, domain.Vec3{Y: 2})
	require.NoError(t, err)
	require.NoError(t, e.SaveScene(ctx, " house "))

	saved := e.Objects()
	savedLayers := e.Layers()

	// A second scene replaces the first in memory.
	require.NoError(t, e.LoadDocument(ctx, Document{Version: DocumentVersion, Layers: layers.NewStore().Export()}))
	assert.Empty(t, e.Objects())
	assert.Len(t, e.Layers(), 1)
	assert.False(t, e.State().CanUndo())

	require.NoError(t, e.OpenScene(ctx, "house"))
	assert.Equal(t, saved, e.Objects())
	assert.Equal(t, savedLayers, e.Layers())
	assert.Equal(t, []string{"house"}, e.State().RecentFiles())

	tree := e.State().Snapshot()
	assert.Equal(t, 2, tree.Layers.LayerCount)
	assert.Equal(t, 2, tree.Objects.ObjectCount)
	assert.Equal(t, domain.ObjectID(3), tree.Objects.NextObjectID)

	names, err := e.ListScenes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"house"}, names)

	require.NoError(t, e.DeleteScene(ctx, "house"))
	assert.ErrorIs(t, e.OpenScene(ctx, "house"), domain.ErrSnapshotNotFound)
	assert.ErrorIs(t, e.SaveScene(ctx, "  "), domain.ErrInvalidSnapshot)
}

func TestOpenScene_KeepsLayerIDsUnique(t *testing.T) {
	ctx := context.Background()
	e := newTestEditor(t, memory.NewStore())

	require.NoError(t, e.SaveScene(ctx, "empty"))
	e.AddLayer(ctx, "Walls")
	e.AddLayer(ctx, "Roof")
	issued := e.Document().Layers.NextLayerID
	require.Equal(t, 4, issued)

	require.NoError(t, e.OpenScene(ctx, "empty"))
	assert.Equal(t, issued, e.Document().Layers.NextLayerID)

	l := e.AddLayer(ctx, "Attic")
	assert.Equal(t, issued, l.ID, "ids issued before the reload are not reused")
}

func TestLoadDocument_Validation(t *testing.T) {
	ctx := context.Background()
	e := newTestEditor(t, memory.NewStore())
	_, err := e.AddObject(ctx, domain.KindCube, domain.Vec3{})
	require.NoError(t, err)
	before := e.Document()

	snap := layers.Snapshot{
		Layers:         []layers.Layer{{ID: 1, Name: "A", Visible: true, Objects: []domain.ObjectID{5}}},
		CurrentLayerID: 1,
		NextLayerID:    2,
	}
	err = e.LoadDocument(ctx, Document{Version: 1, Layers: snap})
	assert.ErrorIs(t, err, domain.ErrInvalidSnapshot)

	err = e.LoadDocument(ctx, Document{Version: 1, Layers: layers.NewStore().Export(), Objects: []domain.Object{{ID: 1, Kind: domain.KindCube}}})
	assert.ErrorIs(t, err, domain.ErrInvalidSnapshot)

	err = e.LoadDocument(ctx, Document{Version: 99, Layers: snap})
	assert.ErrorIs(t, err, domain.ErrInvalidSnapshot)

	err = e.LoadDocument(ctx, Document{Version: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidSnapshot)

	assert.Equal(t, before.Objects, e.Objects())
	assert.Equal(t, before.Layers.Layers, e.Layers())
}

func TestAutosaveRestoresScene(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	e := newTestEditor(t, store)

	_, err := e.AddObject(ctx, domain.KindCylinder, domain.Vec3{X: 3})
	require.NoError(t, err)
	e.AddLayer(ctx, "Second")

	restored := newTestEditor(t, store)
	assert.Equal(t, e.Objects(), restored.Objects())
	assert.Equal(t, e.Layers(), restored.Layers())
	assert.Equal(t, e.State().Snapshot(), restored.State().Snapshot())
}

func TestAutosaveDisabled(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	e := newTestEditor(t, store)
	require.NoError(t, e.State().SetStateProperty(ctx, "preferences.autoSave", false))

	_, err := e.AddObject(ctx, domain.KindCube, domain.Vec3{})
	require.NoError(t, err)

	_, err = store.Load(ctx, e.autosaveKey())
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
}
