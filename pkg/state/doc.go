/*
Package state implements the application state of the isoscene editor.

An AppState owns one domain.Tree. Every mutation goes through a single path: change the
tree, serialize the whole tree into the configured ports.SnapshotStore under one fixed
key, then notify subscribers with a copy of the new tree. Persistence is best effort:
failures are logged and reported to hooks, never returned, and the in-memory tree stays
the source of truth for the rest of the process.

Reads and writes by dotted path ("scene.currentCameraAngle") are supported next to typed
setters. Path writes are shallow: they never create intermediate containers.

The history section is a bounded undo/redo log of domain.Action records. It records what
happened; replaying or reverting an entry is the caller's responsibility.
*/
package state
