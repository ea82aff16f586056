package editor

import (
	"context"
	"strconv"
	"strings"

	"github.com/aretw0/isoscene/pkg/domain"
	"github.com/aretw0/isoscene/pkg/layers"
)

// AddLayer appends a layer and makes it current.
func (e *Editor) AddLayer(ctx context.Context, name string) layers.Layer {
	l := e.layers.AddLayer(name)
	_ = e.commit(ctx, "layer:add", nil)
	e.record(ctx, domain.Action{Kind: domain.ActionAddLayer, LayerID: l.ID, LayerName: l.Name})
	return l
}

// RemoveLayer deletes a layer. Objects on it are deleted from the scene as well, since no
// layer refers to them anymore.
func (e *Editor) RemoveLayer(ctx context.Context, id int) bool {
	l, ok := e.layers.Layer(id)
	if !ok || !e.layers.RemoveLayer(id) {
		return false
	}
	for _, handle := range l.Objects {
		e.objects.Remove(handle)
	}
	_ = e.commit(ctx, "layer:remove", func(t *domain.Tree) error {
		if _, ok := e.objects.Get(t.Objects.SelectedObjectID); !ok {
			t.Objects.SelectedObjectID = 0
		}
		return nil
	})

	action := domain.Action{Kind: domain.ActionRemoveLayer, LayerID: l.ID, LayerName: l.Name}
	if len(l.Objects) > 0 {
		action.Details = map[string]string{"objects": joinIDs(l.Objects)}
	}
	e.record(ctx, action)
	return true
}

// RenameLayer renames a layer.
func (e *Editor) RenameLayer(ctx context.Context, id int, name string) bool {
	before, ok := e.layers.Layer(id)
	if !ok || !e.layers.RenameLayer(id, name) {
		return false
	}
	_ = e.commit(ctx, "layer:rename", nil)
	e.record(ctx, domain.Action{
		Kind:      domain.ActionRenameLayer,
		LayerID:   id,
		LayerName: name,
		Details:   map[string]string{"from": before.Name},
	})
	return true
}

// SetCurrentLayer changes the layer new objects go to. Not recorded in history.
func (e *Editor) SetCurrentLayer(ctx context.Context, id int) bool {
	if !e.layers.SetCurrentLayer(id) {
		return false
	}
	_ = e.commit(ctx, "layer:current", nil)
	return true
}

// MoveLayerUp swaps a layer with its predecessor.
func (e *Editor) MoveLayerUp(ctx context.Context, id int) bool {
	return e.moveLayer(ctx, id, domain.ActionMoveLayerUp, e.layers.MoveLayerUp)
}

// MoveLayerDown swaps a layer with its successor.
func (e *Editor) MoveLayerDown(ctx context.Context, id int) bool {
	return e.moveLayer(ctx, id, domain.ActionMoveLayerDown, e.layers.MoveLayerDown)
}

func (e *Editor) moveLayer(ctx context.Context, id int, kind domain.ActionKind, move func(int) bool) bool {
	if !move(id) {
		return false
	}
	_ = e.commit(ctx, "layer:"+string(kind), nil)
	l, _ := e.layers.Layer(id)
	e.record(ctx, domain.Action{Kind: kind, LayerID: id, LayerName: l.Name})
	return true
}

// ReorderLayers applies a full permutation of layer ids.
func (e *Editor) ReorderLayers(ctx context.Context, ids []int) bool {
	before := e.layers.IDs()
	if !e.layers.ReorderLayers(ids) {
		return false
	}
	_ = e.commit(ctx, "layer:reorder", nil)
	e.record(ctx, domain.Action{
		Kind: domain.ActionReorderLayers,
		Details: map[string]string{
			"from": joinInts(before),
			"to":   joinInts(ids),
		},
	})
	return true
}

// ToggleLayerVisibility flips a layer's visibility and returns the new value.
func (e *Editor) ToggleLayerVisibility(ctx context.Context, id int) (visible bool, ok bool) {
	visible, ok = e.layers.ToggleLayerVisibility(id)
	if !ok {
		return false, false
	}
	_ = e.commit(ctx, "layer:visibility", nil)
	l, _ := e.layers.Layer(id)
	e.record(ctx, domain.Action{
		Kind:      domain.ActionToggleLayerVisibility,
		LayerID:   id,
		LayerName: l.Name,
		Details:   map[string]string{"visible": strconv.FormatBool(visible)},
	})
	return visible, true
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

func joinIDs(ids []domain.ObjectID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(int(id))
	}
	return strings.Join(parts, ",")
}
