package layers_test

import (
	"testing"

	"github.com/aretw0/isoscene/pkg/domain"
	"github.com/aretw0/isoscene/pkg/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportRestore_Roundtrip(t *testing.T) {
	src := layers.NewStore()
	src.AddObjectToCurrentLayer(1)
	src.AddLayer("Props")
	src.AddObjectToCurrentLayer(2)
	src.ToggleLayerVisibility(1)
	src.MoveLayerUp(2)

	dst := layers.NewStore()
	require.NoError(t, dst.Restore(src.Export()))

	assert.Equal(t, src.Export(), dst.Export())
	assert.Equal(t, src.VisibleObjects(), dst.VisibleObjects())
	assert.Equal(t, 3, dst.AddLayer("").ID)
}

func TestRestore_Validation(t *testing.T) {
	tests := []struct {
		name string
		snap layers.Snapshot
	}{
		{"Empty", layers.Snapshot{}},
		{"Non Positive Id", layers.Snapshot{Layers: []layers.Layer{{ID: 0}}, CurrentLayerID: 0}},
		{"Duplicate Id", layers.Snapshot{Layers: []layers.Layer{{ID: 1}, {ID: 1}}, CurrentLayerID: 1}},
		{"Missing Current", layers.Snapshot{Layers: []layers.Layer{{ID: 1}}, CurrentLayerID: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := layers.NewStore()
			before := s.Export()
			err := s.Restore(tt.snap)
			assert.ErrorIs(t, err, domain.ErrInvalidSnapshot)
			assert.Equal(t, before, s.Export())
		})
	}
}

func TestRestore_RepairsNextID(t *testing.T) {
	s := layers.NewStore()
	err := s.Restore(layers.Snapshot{
		Layers:         []layers.Layer{{ID: 4, Name: "a", Visible: true}, {ID: 9, Name: "b"}},
		CurrentLayerID: 9,
		NextLayerID:    3,
	})
	require.NoError(t, err)
	assert.Equal(t, 10, s.NextLayerID())
}

func TestReserveIDs(t *testing.T) {
	s := layers.NewStore()
	s.ReserveIDs(7)
	assert.Equal(t, 7, s.NextLayerID())
	s.ReserveIDs(3)
	assert.Equal(t, 7, s.NextLayerID(), "the counter never goes back")
	assert.Equal(t, 7, s.AddLayer("").ID)
}
