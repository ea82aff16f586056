package scene

import (
	"math"

	"github.com/aretw0/isoscene/pkg/domain"
)

// PixelsPerUnit is the screen distance of one world unit at zoom 1.
const PixelsPerUnit = 50.0

// ScreenPoint is a pointer position in pixels, Y growing downwards.
type ScreenPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// SnapToGrid rounds X and Z to the nearest multiple of increment. Y is kept as is.
func SnapToGrid(v domain.Vec3, increment float64) domain.Vec3 {
	if increment <= 0 {
		return v
	}
	return domain.Vec3{
		X: math.Round(v.X/increment) * increment,
		Y: v.Y,
		Z: math.Round(v.Z/increment) * increment,
	}
}

// DragDelta converts a pointer drag into a world-space offset on the XZ plane for a camera
// rotated angleDeg about Y and zoomed by zoom.
func DragDelta(from, to ScreenPoint, angleDeg, zoom float64) domain.Vec3 {
	scale := PixelsPerUnit * ClampZoom(zoom)
	dx := (to.X - from.X) / scale
	dy := (to.Y - from.Y) / scale

	rad := angleDeg * math.Pi / 180
	sin, cos := math.Sincos(rad)
	return domain.Vec3{
		X: dx*cos - dy*sin,
		Z: dx*sin + dy*cos,
	}
}
