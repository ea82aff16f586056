package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	base := DefaultTree()

	t.Run("Initial Load (Old is Nil)", func(t *testing.T) {
		diff := Diff(nil, &base)
		require.NotNil(t, diff)
		assert.Len(t, diff.Sections, len(SectionNames)-1)
		require.NotNil(t, diff.History)
		assert.Equal(t, 0, diff.History.UndoDepth)
		assert.Nil(t, diff.History.Last)
	})

	t.Run("No Changes", func(t *testing.T) {
		same := base.Clone()
		assert.Nil(t, Diff(&base, &same))
	})

	t.Run("Section Change", func(t *testing.T) {
		changed := base.Clone()
		changed.Scene.CurrentCameraAngle = 90
		diff := Diff(&base, &changed)
		require.NotNil(t, diff)
		assert.True(t, diff.Touches("scene"))
		assert.False(t, diff.Touches("ui"))
		assert.False(t, diff.Touches("history"))
		assert.Equal(t, changed.Scene, diff.Sections["scene"])
	})

	t.Run("History Change", func(t *testing.T) {
		changed := base.Clone()
		changed.History.UndoStack = append(changed.History.UndoStack, Action{Kind: ActionAddLayer, LayerID: 2})
		diff := Diff(&base, &changed)
		require.NotNil(t, diff)
		assert.Nil(t, diff.Sections)
		require.NotNil(t, diff.History)
		assert.Equal(t, 1, diff.History.UndoDepth)
		assert.Equal(t, ActionAddLayer, diff.History.Last.Kind)
	})
}

func TestDiff_JSONShape(t *testing.T) {
	base := DefaultTree()
	changed := base.Clone()
	changed.Layers.CurrentLayerID = 3

	data, err := json.Marshal(Diff(&base, &changed))
	require.NoError(t, err)
	assert.JSONEq(t, `{"sections":{"layers":{"currentLayerId":3,"layerCount":1}}}`, string(data))
}

func TestTree_CloneIsolation(t *testing.T) {
	original := DefaultTree()
	original.History.UndoStack = []Action{{Kind: ActionMoveObject, From: &Vec3{X: 1}, Details: map[string]string{"k": "v"}}}

	cloned := original.Clone()
	cloned.Preferences.Shortcuts["undo"] = "u"
	cloned.History.UndoStack[0].From.X = 9
	cloned.History.UndoStack[0].Details["k"] = "changed"
	cloned.RecentFiles.Files = append(cloned.RecentFiles.Files, "a")

	assert.Equal(t, "ctrl+z", original.Preferences.Shortcuts["undo"])
	assert.Equal(t, 1.0, original.History.UndoStack[0].From.X)
	assert.Equal(t, "v", original.History.UndoStack[0].Details["k"])
	assert.Empty(t, original.RecentFiles.Files)
}

func TestAction_Validate(t *testing.T) {
	assert.ErrorIs(t, Action{}.Validate(), ErrInvalidAction)
	assert.NoError(t, Action{Kind: "custom_kind"}.Validate())
}

func TestKind_Valid(t *testing.T) {
	for _, k := range Kinds {
		assert.True(t, k.Valid(), k)
	}
	assert.False(t, Kind("torus").Valid())
}
