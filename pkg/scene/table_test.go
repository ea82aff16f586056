package scene

import (
	"testing"

	"github.com/aretw0/isoscene/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_AddGetRemove(t *testing.T) {
	table := NewTable()

	obj, err := table.Add(1, domain.KindCube, domain.Vec3{X: 1}, "#ff0000")
	require.NoError(t, err)
	assert.Equal(t, domain.Object{ID: 1, Kind: domain.KindCube, Position: domain.Vec3{X: 1}, Scale: 1, Color: "#ff0000", Visible: true}, obj)

	_, err = table.Add(1, domain.KindSphere, domain.Vec3{}, "")
	assert.ErrorIs(t, err, domain.ErrInvalidSnapshot)

	_, err = table.Add(2, "pyramid", domain.Vec3{}, "")
	assert.ErrorIs(t, err, domain.ErrUnknownKind)

	_, err = table.Add(0, domain.KindCube, domain.Vec3{}, "")
	assert.Error(t, err)

	got, ok := table.Get(1)
	require.True(t, ok)
	assert.Equal(t, obj, got)

	assert.True(t, table.Remove(1))
	assert.False(t, table.Remove(1))
	_, ok = table.Get(1)
	assert.False(t, ok)
	assert.Zero(t, table.Len())
}

func TestTable_Transforms(t *testing.T) {
	table := NewTable()
	_, err := table.Add(1, domain.KindRamp, domain.Vec3{}, "#000000")
	require.NoError(t, err)

	obj, err := table.Move(1, domain.Vec3{X: 1, Y: 2, Z: 3})
	require.NoError(t, err)
	assert.Equal(t, domain.Vec3{X: 1, Y: 2, Z: 3}, obj.Position)

	obj, err = table.SetPosition(1, domain.Vec3{X: -1})
	require.NoError(t, err)
	assert.Equal(t, domain.Vec3{X: -1}, obj.Position)

	obj, err = table.Rotate(1, -90)
	require.NoError(t, err)
	assert.Equal(t, 270.0, obj.Rotation)
	obj, _ = table.Rotate(1, 180)
	assert.Equal(t, 90.0, obj.Rotation)

	obj, _ = table.ScaleBy(1, 100)
	assert.Equal(t, MaxScale, obj.Scale)
	obj, _ = table.ScaleBy(1, 0.0001)
	assert.Equal(t, MinScale, obj.Scale)

	obj, _ = table.SetColor(1, "#abcdef")
	assert.Equal(t, "#abcdef", obj.Color)

	assert.True(t, table.SetVisible(1, false))
	assert.False(t, table.SetVisible(9, false))
	got, _ := table.Get(1)
	assert.False(t, got.Visible)

	_, err = table.Move(9, domain.Vec3{})
	assert.ErrorIs(t, err, domain.ErrObjectNotFound)
}

func TestTable_GetReturnsCopy(t *testing.T) {
	table := NewTable()
	_, _ = table.Add(1, domain.KindCube, domain.Vec3{}, "")
	obj, _ := table.Get(1)
	obj.Position.X = 42

	again, _ := table.Get(1)
	assert.Zero(t, again.Position.X)
}

func TestTable_AllAndRestore(t *testing.T) {
	table := NewTable()
	for _, id := range []domain.ObjectID{3, 1, 2} {
		_, err := table.Add(id, domain.KindCylinder, domain.Vec3{}, "")
		require.NoError(t, err)
	}
	all := table.All()
	require.Len(t, all, 3)
	assert.Equal(t, []domain.ObjectID{1, 2, 3}, []domain.ObjectID{all[0].ID, all[1].ID, all[2].ID})
	assert.Equal(t, domain.ObjectID(3), table.MaxID())

	other := NewTable()
	require.NoError(t, other.Restore(all))
	assert.Equal(t, all, other.All())

	err := other.Restore([]domain.Object{{ID: 1, Kind: domain.KindCube}, {ID: 1, Kind: domain.KindCube}})
	assert.ErrorIs(t, err, domain.ErrInvalidSnapshot)
	err = other.Restore([]domain.Object{{ID: 5, Kind: "blob"}})
	assert.ErrorIs(t, err, domain.ErrUnknownKind)
	assert.Equal(t, all, other.All())

	assert.Empty(t, NewTable().All())
	assert.Zero(t, NewTable().MaxID())
}
