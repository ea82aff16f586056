/*
Package isoscene is the headless core of an isometric 3D scene editor.

The editor keeps three pieces consistent: an ordered set of layers holding object
handles (package layers), a table of scene objects (package scene) and one application
state tree with persistence, change subscriptions and an undo/redo log (package state).
Package editor composes them for one scene; package workspace hosts many scenes behind
the HTTP and MCP adapters.

# Usage

	ctx := context.Background()
	ed := editor.New(ctx, memory.NewStore())

	ed.State().Subscribe(func(tree domain.Tree) {
		fmt.Println("camera at", tree.Scene.CurrentCameraAngle)
	})

	cube, _ := ed.AddObject(ctx, domain.KindCube, domain.Vec3{X: 1})
	roof := ed.AddLayer(ctx, "Roof")
	ed.MoveObjectToLayer(ctx, cube.ID, roof.ID)
	ed.RotateCamera(ctx, true)

	action, _ := ed.Undo(ctx) // the log entry for the camera rotation

# Persistence

Every state mutation rewrites one snapshot in a ports.SnapshotStore. Adapters exist for
memory, files, Redis and SQLite, and snapshots can be encrypted at rest with the
persistence middleware.
*/
package isoscene
