package isoscene_test

import (
	"context"
	"fmt"

	"github.com/aretw0/isoscene/pkg/adapters/memory"
	"github.com/aretw0/isoscene/pkg/domain"
	"github.com/aretw0/isoscene/pkg/editor"
)

// Example_layers builds a two-layer scene and hides one layer.
func Example_layers() {
	ctx := context.Background()
	ed := editor.New(ctx, memory.NewStore())

	floor, _ := ed.AddObject(ctx, domain.KindCube, domain.Vec3{})
	roof := ed.AddLayer(ctx, "Roof")
	ramp, _ := ed.AddObject(ctx, domain.KindRamp, domain.Vec3{Y: 1})

	ed.ToggleLayerVisibility(ctx, roof.ID)
	fmt.Println(ed.VisibleObjects())
	fmt.Println(floor.ID, ramp.ID)

	for _, l := range ed.Layers() {
		fmt.Println(l.ID, l.Name, l.Visible, l.Objects)
	}
	// Output:
	// [1]
	// 1 2
	// 1 Default Layer true [1]
	// 2 Roof false [2]
}

// Example_undo shows that the history is a log: undo returns the entry without
// reverting the scene.
func Example_undo() {
	ctx := context.Background()
	ed := editor.New(ctx, memory.NewStore())

	angle := ed.RotateCamera(ctx, true)
	action, _ := ed.Undo(ctx)

	fmt.Println(angle, action.Kind)
	fmt.Println(ed.State().Scene().CurrentCameraAngle)
	fmt.Println(ed.State().CanUndo(), ed.State().CanRedo())
	// Output:
	// 90 rotate_camera
	// 90
	// false true
}

// Example_stateProperty reads and writes the tree by dotted path.
func Example_stateProperty() {
	ctx := context.Background()
	ed := editor.New(ctx, memory.NewStore())

	_ = ed.State().SetStateProperty(ctx, "scene.currentCameraAngle", 270)
	v, _ := ed.State().GetStateProperty("scene.currentCameraAngle")
	fmt.Println(v)

	_, ok := ed.State().GetStateProperty("scene.nope")
	fmt.Println(ok)
	// Output:
	// 270
	// false
}
