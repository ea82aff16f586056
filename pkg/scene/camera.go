package scene

import "math"

// Zoom bounds applied by ClampZoom.
const (
	MinZoom = 0.25
	MaxZoom = 4.0
)

// NormalizeAngle maps degrees into [0, 360).
func NormalizeAngle(deg float64) float64 {
	a := math.Mod(deg, 360)
	if a < 0 {
		a += 360
	}
	if a == 360 || a == 0 {
		return 0
	}
	return a
}

// StepAngle rotates the camera by step degrees, snapping the result to a multiple of step
// so repeated steps never drift.
func StepAngle(angle, step float64) float64 {
	if step == 0 {
		return NormalizeAngle(angle)
	}
	snapped := math.Round(angle/step) * step
	return NormalizeAngle(snapped + step)
}

// ClampZoom bounds zoom to [MinZoom, MaxZoom]. Non-positive input resets to 1.
func ClampZoom(zoom float64) float64 {
	if zoom <= 0 || math.IsNaN(zoom) {
		return 1
	}
	return math.Min(MaxZoom, math.Max(MinZoom, zoom))
}
