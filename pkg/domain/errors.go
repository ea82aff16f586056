package domain

import "errors"

// ErrSnapshotNotFound is returned when no snapshot is stored under a key.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// ErrPathNotFound is returned when a dotted state path does not resolve.
var ErrPathNotFound = errors.New("state path not found")

// ErrTypeMismatch is returned when a value cannot be converted to the type of the target field.
var ErrTypeMismatch = errors.New("value does not match field type")

// ErrInvalidAction is returned when a history action carries no kind.
var ErrInvalidAction = errors.New("invalid history action")

// ErrInvalidSnapshot is returned when a scene document or layer snapshot fails validation.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// ErrObjectNotFound is returned when an object id is not present in the scene table.
var ErrObjectNotFound = errors.New("object not found")

// ErrUnknownKind is returned when a primitive kind is not supported.
var ErrUnknownKind = errors.New("unknown object kind")

// ErrWorkspaceNotFound is returned when a workspace has never been opened or persisted.
var ErrWorkspaceNotFound = errors.New("workspace not found")

// ErrInvalidWorkspaceID is returned when a workspace id is empty or contains a separator.
var ErrInvalidWorkspaceID = errors.New("invalid workspace id")
