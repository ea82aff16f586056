package domain

import "context"

// StateHooks observe the application state lifecycle. Every field is optional.
type StateHooks struct {
	// OnMutation fires after an operation changed the in-memory tree.
	OnMutation func(ctx context.Context, op string)
	// OnPersist fires after a snapshot was written.
	OnPersist func(ctx context.Context, size int)
	// OnPersistError fires when writing or deleting the snapshot failed.
	OnPersistError func(ctx context.Context, err error)
	// OnHistory fires after the undo/redo log changed.
	OnHistory func(ctx context.Context, op string, undoDepth, redoDepth int)
}
