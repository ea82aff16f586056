package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/isoscene/pkg/editor"
)

// Summary describes the editor's scene as markdown: view settings, layers in render
// order and the newest history entries.
func Summary(e *editor.Editor) string {
	tree := e.State().Snapshot()
	var b strings.Builder

	fmt.Fprintf(&b, "# Scene\n\n")
	fmt.Fprintf(&b, "| Setting | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Camera | %g° |\n", tree.Scene.CurrentCameraAngle)
	fmt.Fprintf(&b, "| Zoom | %g |\n", tree.Scene.Zoom)
	fmt.Fprintf(&b, "| Background | %s (%s) |\n", tree.Scene.BackgroundColor, tree.Scene.BackgroundTheme)
	if tree.Scene.FogEnabled {
		fmt.Fprintf(&b, "| Fog | %s, %g to %g |\n", tree.Scene.FogColor, tree.Scene.FogNear, tree.Scene.FogFar)
	} else {
		fmt.Fprintf(&b, "| Fog | off |\n")
	}
	fmt.Fprintf(&b, "| Objects | %d |\n", tree.Objects.ObjectCount)

	fmt.Fprintf(&b, "\n## Layers\n\n")
	current := e.CurrentLayerID()
	for _, l := range e.Layers() {
		marker := ""
		if l.ID == current {
			marker = " **(current)**"
		}
		visibility := "visible"
		if !l.Visible {
			visibility = "hidden"
		}
		fmt.Fprintf(&b, "- %d. %s, %s, %d objects%s\n", l.ID, l.Name, visibility, len(l.Objects), marker)
	}

	undo, redo := e.State().History()
	fmt.Fprintf(&b, "\n## History\n\n%d to undo, %d to redo.\n", len(undo), len(redo))
	for i := len(undo) - 1; i >= 0 && i >= len(undo)-5; i-- {
		fmt.Fprintf(&b, "- `%s`\n", undo[i].Kind)
	}
	return b.String()
}
