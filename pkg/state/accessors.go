package state

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/isoscene/pkg/domain"
)

// Panel names accepted by TogglePanel.
const (
	PanelLayers     = "layers"
	PanelProperties = "properties"
	PanelBackground = "background"
	PanelHelp       = "help"
)

func (s *AppState) set(ctx context.Context, op string, fn func(t *domain.Tree)) {
	_ = s.Mutate(ctx, op, func(t *domain.Tree) error {
		fn(t)
		return nil
	})
}

// SetCameraAngle stores the camera angle in degrees.
func (s *AppState) SetCameraAngle(ctx context.Context, degrees float64) {
	s.set(ctx, "camera", func(t *domain.Tree) { t.Scene.CurrentCameraAngle = degrees })
}

// SetZoom stores the camera zoom as given; clamping is the caller's job.
func (s *AppState) SetZoom(ctx context.Context, zoom float64) {
	s.set(ctx, "zoom", func(t *domain.Tree) { t.Scene.Zoom = zoom })
}

// SetSelectedObjectID selects id; 0 clears the selection.
func (s *AppState) SetSelectedObjectID(ctx context.Context, id domain.ObjectID) {
	s.set(ctx, "select", func(t *domain.Tree) { t.Objects.SelectedObjectID = id })
}

// IncrementObjectCount adds one to the object count and returns the new value.
func (s *AppState) IncrementObjectCount(ctx context.Context) int {
	var n int
	s.set(ctx, "objects:increment", func(t *domain.Tree) {
		t.Objects.ObjectCount++
		n = t.Objects.ObjectCount
	})
	return n
}

// DecrementObjectCount subtracts one from the object count, stopping at zero.
func (s *AppState) DecrementObjectCount(ctx context.Context) int {
	var n int
	s.set(ctx, "objects:decrement", func(t *domain.Tree) {
		if t.Objects.ObjectCount > 0 {
			t.Objects.ObjectCount--
		}
		n = t.Objects.ObjectCount
	})
	return n
}

// AllocateObjectID hands out the next object id and bumps the counter.
func (s *AppState) AllocateObjectID(ctx context.Context) domain.ObjectID {
	var id domain.ObjectID
	s.set(ctx, "objects:allocate", func(t *domain.Tree) {
		if t.Objects.NextObjectID <= 0 {
			t.Objects.NextObjectID = 1
		}
		id = t.Objects.NextObjectID
		t.Objects.NextObjectID++
	})
	return id
}

// SetCurrentLayerID mirrors the layer store's current layer.
func (s *AppState) SetCurrentLayerID(ctx context.Context, id int) {
	s.set(ctx, "layers:current", func(t *domain.Tree) { t.Layers.CurrentLayerID = id })
}

// SetLayerCount mirrors the number of layers.
func (s *AppState) SetLayerCount(ctx context.Context, n int) {
	s.set(ctx, "layers:count", func(t *domain.Tree) { t.Layers.LayerCount = n })
}

// SetActiveTool selects the tool used by pointer input.
func (s *AppState) SetActiveTool(ctx context.Context, tool string) {
	s.set(ctx, "tool", func(t *domain.Tree) { t.Tools.ActiveTool = tool })
}

// SetTheme sets the UI theme ("light" or "dark").
func (s *AppState) SetTheme(ctx context.Context, theme string) {
	s.set(ctx, "theme", func(t *domain.Tree) { t.UI.Theme = theme })
}

// TogglePanel flips the open flag of the named panel and returns the new value.
func (s *AppState) TogglePanel(ctx context.Context, panel string) (bool, error) {
	var open bool
	err := s.Mutate(ctx, "panel:"+panel, func(t *domain.Tree) error {
		var flag *bool
		switch panel {
		case PanelLayers:
			flag = &t.UI.LayersPanelOpen
		case PanelProperties:
			flag = &t.UI.PropertiesPanelOpen
		case PanelBackground:
			flag = &t.UI.BackgroundPanelOpen
		case PanelHelp:
			flag = &t.UI.HelpVisible
		default:
			return fmt.Errorf("%w: panel %q", domain.ErrPathNotFound, panel)
		}
		*flag = !*flag
		open = *flag
		return nil
	})
	return open, err
}

// SetBackground stores the background colour and the theme it came from.
func (s *AppState) SetBackground(ctx context.Context, color, theme string) {
	s.set(ctx, "background", func(t *domain.Tree) {
		t.Scene.BackgroundColor = color
		t.Scene.BackgroundTheme = theme
	})
}

// SetFog updates every fog field in one mutation.
func (s *AppState) SetFog(ctx context.Context, enabled bool, color string, near, far float64) {
	s.set(ctx, "fog", func(t *domain.Tree) {
		t.Scene.FogEnabled = enabled
		t.Scene.FogColor = color
		t.Scene.FogNear = near
		t.Scene.FogFar = far
	})
}

// AddRecentFile moves name to the front of the recent files list, trimming it to maxFiles.
func (s *AppState) AddRecentFile(ctx context.Context, name string) {
	s.set(ctx, "recent", func(t *domain.Tree) { t.RecentFiles.Push(name) })
}

// RecordFrame stores render statistics for one frame. fps is derived from the time
// elapsed since the previous recorded frame.
func (s *AppState) RecordFrame(ctx context.Context, now time.Time, renderTime time.Duration) {
	s.set(ctx, "frame", func(t *domain.Tree) {
		p := &t.Performance
		ms := now.UnixMilli()
		if p.LastFrameTime > 0 && ms > p.LastFrameTime {
			p.FPS = 1000 / float64(ms-p.LastFrameTime)
		}
		p.LastFrameTime = ms
		p.FrameCount++
		p.RenderTimeMs = float64(renderTime.Microseconds()) / 1000
	})
}

// IncrementActionCount counts one user action in the session section.
func (s *AppState) IncrementActionCount(ctx context.Context) int {
	var n int
	s.set(ctx, "session:action", func(t *domain.Tree) {
		t.Session.ActionCount++
		n = t.Session.ActionCount
	})
	return n
}

// Section getters return copies.

func (s *AppState) Scene() domain.SceneSection { return s.Snapshot().Scene }

func (s *AppState) Objects() domain.ObjectsSection { return s.Snapshot().Objects }

func (s *AppState) UI() domain.UISection { return s.Snapshot().UI }

func (s *AppState) Tools() domain.ToolsSection { return s.Snapshot().Tools }

func (s *AppState) Session() domain.SessionSection { return s.Snapshot().Session }

func (s *AppState) RecentFiles() []string { return s.Snapshot().RecentFiles.Files }
