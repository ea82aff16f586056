package editor

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aretw0/isoscene/pkg/domain"
	"github.com/aretw0/isoscene/pkg/scene"
)

// AddObject places a new object on the current layer and selects it. An empty kind uses the
// default type from the objects section. The position snaps to the grid when snapping is on.
func (e *Editor) AddObject(ctx context.Context, kind domain.Kind, pos domain.Vec3) (domain.Object, error) {
	tree := e.state.Snapshot()
	if kind == "" {
		kind = tree.Objects.DefaultType
	}
	if !kind.Valid() {
		return domain.Object{}, fmt.Errorf("%w: %q", domain.ErrUnknownKind, kind)
	}
	if tree.Tools.SnapToGrid {
		pos = scene.SnapToGrid(pos, tree.Tools.SnapIncrement)
	}

	var obj domain.Object
	err := e.commit(ctx, "object:add", func(t *domain.Tree) error {
		id := t.Objects.NextObjectID
		if id <= e.objects.MaxID() {
			id = e.objects.MaxID() + 1
		}
		added, err := e.objects.Add(id, kind, pos, t.Objects.DefaultColor)
		if err != nil {
			return err
		}
		e.layers.AddObjectToCurrentLayer(id)
		obj = added
		t.Objects.NextObjectID = id + 1
		t.Objects.SelectedObjectID = id
		return nil
	})
	if err != nil {
		return domain.Object{}, err
	}

	to := obj.Position
	e.record(ctx, domain.Action{
		Kind:       domain.ActionAddObject,
		ObjectID:   obj.ID,
		ObjectType: obj.Kind,
		LayerID:    e.layers.CurrentLayerID(),
		To:         &to,
	})
	return obj, nil
}

// DeleteObject removes an object from the table and from its layer.
func (e *Editor) DeleteObject(ctx context.Context, id domain.ObjectID) error {
	obj, ok := e.objects.Get(id)
	if !ok {
		return fmt.Errorf("%w: %d", domain.ErrObjectNotFound, id)
	}
	layerID, _ := e.layers.LayerOf(id)

	e.objects.Remove(id)
	e.layers.RemoveObjectFromLayer(id)
	_ = e.commit(ctx, "object:delete", func(t *domain.Tree) error {
		if t.Objects.SelectedObjectID == id {
			t.Objects.SelectedObjectID = 0
		}
		return nil
	})

	from := obj.Position
	e.record(ctx, domain.Action{
		Kind:       domain.ActionDeleteObject,
		ObjectID:   id,
		ObjectType: obj.Kind,
		LayerID:    layerID,
		From:       &from,
	})
	return nil
}

// SelectObject selects id; 0 clears the selection. Selection is not recorded in history.
func (e *Editor) SelectObject(ctx context.Context, id domain.ObjectID) error {
	if id != 0 {
		if _, ok := e.objects.Get(id); !ok {
			return fmt.Errorf("%w: %d", domain.ErrObjectNotFound, id)
		}
	}
	e.state.SetSelectedObjectID(ctx, id)
	return nil
}

// Selected returns the selected object.
func (e *Editor) Selected() (domain.Object, bool) {
	id := e.state.Objects().SelectedObjectID
	if id == 0 {
		return domain.Object{}, false
	}
	return e.objects.Get(id)
}

func (e *Editor) selectedID() (domain.ObjectID, error) {
	obj, ok := e.Selected()
	if !ok {
		return 0, fmt.Errorf("%w: nothing selected", domain.ErrObjectNotFound)
	}
	return obj.ID, nil
}

// MoveObject translates an object by delta, snapping the result when snapping is on.
func (e *Editor) MoveObject(ctx context.Context, id domain.ObjectID, delta domain.Vec3) (domain.Object, error) {
	before, ok := e.objects.Get(id)
	if !ok {
		return domain.Object{}, fmt.Errorf("%w: %d", domain.ErrObjectNotFound, id)
	}
	tools := e.state.Tools()
	target := before.Position.Add(delta)
	if tools.SnapToGrid {
		target = scene.SnapToGrid(target, tools.SnapIncrement)
	}
	after, err := e.objects.SetPosition(id, target)
	if err != nil {
		return domain.Object{}, err
	}
	_ = e.commit(ctx, "object:move", nil)

	from, to := before.Position, after.Position
	e.record(ctx, domain.Action{Kind: domain.ActionMoveObject, ObjectID: id, From: &from, To: &to})
	return after, nil
}

// MoveSelected moves the selected object by delta.
func (e *Editor) MoveSelected(ctx context.Context, delta domain.Vec3) (domain.Object, error) {
	id, err := e.selectedID()
	if err != nil {
		return domain.Object{}, err
	}
	return e.MoveObject(ctx, id, delta)
}

// DragSelected moves the selected object by a pointer drag, taking the camera into account.
func (e *Editor) DragSelected(ctx context.Context, from, to scene.ScreenPoint) (domain.Object, error) {
	sc := e.state.Scene()
	return e.MoveSelected(ctx, scene.DragDelta(from, to, sc.CurrentCameraAngle, sc.Zoom))
}

// RotateObject turns an object about Y by the configured rotation step.
func (e *Editor) RotateObject(ctx context.Context, id domain.ObjectID, clockwise bool) (domain.Object, error) {
	step := e.state.Tools().RotationStep
	if !clockwise {
		step = -step
	}
	before, ok := e.objects.Get(id)
	if !ok {
		return domain.Object{}, fmt.Errorf("%w: %d", domain.ErrObjectNotFound, id)
	}
	after, err := e.objects.Rotate(id, step)
	if err != nil {
		return domain.Object{}, err
	}
	_ = e.commit(ctx, "object:rotate", nil)

	e.record(ctx, domain.Action{
		Kind:     domain.ActionRotateObject,
		ObjectID: id,
		Value:    after.Rotation,
		Details:  map[string]string{"from": strconv.FormatFloat(before.Rotation, 'f', -1, 64)},
	})
	return after, nil
}

// RotateSelected rotates the selected object.
func (e *Editor) RotateSelected(ctx context.Context, clockwise bool) (domain.Object, error) {
	id, err := e.selectedID()
	if err != nil {
		return domain.Object{}, err
	}
	return e.RotateObject(ctx, id, clockwise)
}

// ScaleObject grows or shrinks an object by the configured scale step.
func (e *Editor) ScaleObject(ctx context.Context, id domain.ObjectID, grow bool) (domain.Object, error) {
	step := e.state.Tools().ScaleStep
	factor := 1 + step
	if !grow {
		factor = 1 / (1 + step)
	}
	before, ok := e.objects.Get(id)
	if !ok {
		return domain.Object{}, fmt.Errorf("%w: %d", domain.ErrObjectNotFound, id)
	}
	after, err := e.objects.ScaleBy(id, factor)
	if err != nil {
		return domain.Object{}, err
	}
	_ = e.commit(ctx, "object:scale", nil)

	e.record(ctx, domain.Action{
		Kind:     domain.ActionScaleObject,
		ObjectID: id,
		Value:    after.Scale,
		Details:  map[string]string{"from": strconv.FormatFloat(before.Scale, 'f', -1, 64)},
	})
	return after, nil
}

// ScaleSelected scales the selected object.
func (e *Editor) ScaleSelected(ctx context.Context, grow bool) (domain.Object, error) {
	id, err := e.selectedID()
	if err != nil {
		return domain.Object{}, err
	}
	return e.ScaleObject(ctx, id, grow)
}

// SetObjectColor repaints an object.
func (e *Editor) SetObjectColor(ctx context.Context, id domain.ObjectID, color string) (domain.Object, error) {
	hex, err := scene.ParseColor(color)
	if err != nil {
		return domain.Object{}, err
	}
	obj, err := e.objects.SetColor(id, hex)
	if err != nil {
		return domain.Object{}, err
	}
	_ = e.commit(ctx, "object:color", nil)
	return obj, nil
}

// MoveObjectToLayer reassigns an object. It fails without changes when the object or the
// layer is unknown.
func (e *Editor) MoveObjectToLayer(ctx context.Context, id domain.ObjectID, layerID int) bool {
	if _, ok := e.objects.Get(id); !ok {
		return false
	}
	fromLayer, _ := e.layers.LayerOf(id)
	if !e.layers.MoveObjectToLayer(id, layerID) {
		return false
	}
	_ = e.commit(ctx, "object:layer", nil)

	target, _ := e.layers.Layer(layerID)
	e.record(ctx, domain.Action{
		Kind:      domain.ActionMoveObjectToLayer,
		ObjectID:  id,
		LayerID:   layerID,
		LayerName: target.Name,
		Details:   map[string]string{"fromLayer": strconv.Itoa(fromLayer)},
	})
	return true
}
