package domain

import "fmt"

// ActionKind tags a history entry. The taxonomy is open: hosts may record kinds
// not listed here and the log keeps them verbatim.
type ActionKind string

// Known action kinds recorded by the editor.
const (
	ActionAddObject             ActionKind = "add_object"
	ActionDeleteObject          ActionKind = "delete_object"
	ActionMoveObject            ActionKind = "move_object"
	ActionRotateObject          ActionKind = "rotate_object"
	ActionScaleObject           ActionKind = "scale_object"
	ActionSelectObject          ActionKind = "select_object"
	ActionAddLayer              ActionKind = "add_layer"
	ActionRemoveLayer           ActionKind = "remove_layer"
	ActionRenameLayer           ActionKind = "rename_layer"
	ActionMoveLayerUp           ActionKind = "move_layer_up"
	ActionMoveLayerDown         ActionKind = "move_layer_down"
	ActionToggleLayerVisibility ActionKind = "toggle_layer_visibility"
	ActionMoveObjectToLayer     ActionKind = "move_object_to_layer"
	ActionChangeBackground      ActionKind = "change_background"
	ActionChangeFog             ActionKind = "change_fog"
	ActionRotateCamera          ActionKind = "rotate_camera"
	ActionReorderLayers         ActionKind = "reorder_layers"
)

// Action is one entry of the undo/redo log. It records what happened, not how to
// revert it: replaying an entry is the caller's job.
//
// Payload fields are optional and only set when meaningful for the kind.
type Action struct {
	Kind       ActionKind        `json:"action"`
	LayerID    int               `json:"layerId,omitempty"`
	LayerName  string            `json:"layerName,omitempty"`
	ObjectID   ObjectID          `json:"objectId,omitempty"`
	ObjectType Kind              `json:"objectType,omitempty"`
	From       *Vec3             `json:"from,omitempty"`
	To         *Vec3             `json:"to,omitempty"`
	Value      float64           `json:"value,omitempty"`
	Details    map[string]string `json:"details,omitempty"`
}

// Validate checks that the action can be stored in the log.
func (a Action) Validate() error {
	if a.Kind == "" {
		return fmt.Errorf("%w: missing action kind", ErrInvalidAction)
	}
	return nil
}

// Clone returns a copy that shares no memory with a.
func (a Action) Clone() Action {
	out := a
	if a.From != nil {
		from := *a.From
		out.From = &from
	}
	if a.To != nil {
		to := *a.To
		out.To = &to
	}
	if a.Details != nil {
		out.Details = make(map[string]string, len(a.Details))
		for k, v := range a.Details {
			out.Details[k] = v
		}
	}
	return out
}

func cloneActions(in []Action) []Action {
	if in == nil {
		return nil
	}
	out := make([]Action, len(in))
	for i, a := range in {
		out[i] = a.Clone()
	}
	return out
}
