package editor

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aretw0/isoscene/pkg/domain"
	"github.com/aretw0/isoscene/pkg/scene"
)

// DefaultCameraStep is used when the tools section carries no rotation step.
const DefaultCameraStep = 90.0

// RotateCamera steps the camera around the scene and returns the new angle.
func (e *Editor) RotateCamera(ctx context.Context, clockwise bool) float64 {
	tree := e.state.Snapshot()
	step := tree.Tools.RotationStep
	if step <= 0 {
		step = DefaultCameraStep
	}
	if !clockwise {
		step = -step
	}
	from := tree.Scene.CurrentCameraAngle
	angle := scene.StepAngle(from, step)

	_ = e.commit(ctx, "camera", func(t *domain.Tree) error {
		t.Scene.CurrentCameraAngle = angle
		return nil
	})
	e.record(ctx, domain.Action{
		Kind:    domain.ActionRotateCamera,
		Value:   angle,
		Details: map[string]string{"from": strconv.FormatFloat(from, 'f', -1, 64)},
	})
	return angle
}

// SetZoom clamps and stores the camera zoom. Not recorded in history.
func (e *Editor) SetZoom(ctx context.Context, zoom float64) float64 {
	zoom = scene.ClampZoom(zoom)
	e.state.SetZoom(ctx, zoom)
	return zoom
}

// ApplyTheme switches to a background preset, including its fog colour.
func (e *Editor) ApplyTheme(ctx context.Context, name string) (scene.Theme, error) {
	theme, ok := scene.LookupTheme(name)
	if !ok {
		return scene.Theme{}, fmt.Errorf("%w: theme %q", domain.ErrPathNotFound, name)
	}
	previous := e.state.Scene().BackgroundTheme
	_ = e.commit(ctx, "background:theme", func(t *domain.Tree) error {
		t.Scene.BackgroundColor = theme.Background
		t.Scene.BackgroundTheme = theme.Name
		t.Scene.FogColor = theme.Fog
		return nil
	})
	e.record(ctx, domain.Action{
		Kind:    domain.ActionChangeBackground,
		Details: map[string]string{"theme": theme.Name, "from": previous},
	})
	return theme, nil
}

// SetBackgroundColor sets a custom "#rrggbb" background.
func (e *Editor) SetBackgroundColor(ctx context.Context, color string) (string, error) {
	hex, err := scene.ParseColor(color)
	if err != nil {
		return "", err
	}
	previous := e.state.Scene().BackgroundColor
	_ = e.commit(ctx, "background:color", func(t *domain.Tree) error {
		t.Scene.BackgroundColor = hex
		t.Scene.BackgroundTheme = "custom"
		return nil
	})
	e.record(ctx, domain.Action{
		Kind:    domain.ActionChangeBackground,
		Details: map[string]string{"color": hex, "from": previous},
	})
	return hex, nil
}

// Fog describes the fog settings.
type Fog struct {
	Enabled bool    `json:"enabled"`
	Color   string  `json:"color,omitempty"`
	Near    float64 `json:"near"`
	Far     float64 `json:"far"`
}

// SetFog updates the fog. An empty colour is derived from the background.
func (e *Editor) SetFog(ctx context.Context, fog Fog) (Fog, error) {
	if fog.Near < 0 || fog.Far <= fog.Near {
		return Fog{}, fmt.Errorf("%w: fog range [%v, %v]", domain.ErrTypeMismatch, fog.Near, fog.Far)
	}
	var err error
	if fog.Color == "" {
		fog.Color, err = scene.FogColorFor(e.state.Scene().BackgroundColor)
	} else {
		fog.Color, err = scene.ParseColor(fog.Color)
	}
	if err != nil {
		return Fog{}, err
	}

	_ = e.commit(ctx, "fog", func(t *domain.Tree) error {
		t.Scene.FogEnabled = fog.Enabled
		t.Scene.FogColor = fog.Color
		t.Scene.FogNear = fog.Near
		t.Scene.FogFar = fog.Far
		return nil
	})
	e.record(ctx, domain.Action{
		Kind:  domain.ActionChangeFog,
		Value: fog.Far,
		Details: map[string]string{
			"enabled": strconv.FormatBool(fog.Enabled),
			"color":   fog.Color,
		},
	})
	return fog, nil
}

// FrameStats summarises one render pass.
type FrameStats struct {
	Visible    []domain.ObjectID `json:"visible"`
	Hidden     int               `json:"hidden"`
	FrameCount int64             `json:"frameCount"`
	FPS        float64           `json:"fps"`
}

// Frame runs the render pass: an object is visible iff its layer is visible. Render
// statistics are stored in the performance section with a single commit.
func (e *Editor) Frame(ctx context.Context) FrameStats {
	start := e.now()
	visible := e.layers.VisibleObjects()
	shown := make(map[domain.ObjectID]bool, len(visible))
	for _, id := range visible {
		shown[id] = true
	}
	hidden := 0
	for _, obj := range e.objects.All() {
		e.objects.SetVisible(obj.ID, shown[obj.ID])
		if !shown[obj.ID] {
			hidden++
		}
	}

	e.state.RecordFrame(ctx, start, e.now().Sub(start))
	perf := e.state.Snapshot().Performance
	return FrameStats{
		Visible:    visible,
		Hidden:     hidden,
		FrameCount: perf.FrameCount,
		FPS:        perf.FPS,
	}
}
