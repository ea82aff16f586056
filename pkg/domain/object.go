package domain

// ObjectID is a non-owning handle to an object stored in the scene table.
// Layers and the application state refer to objects only through this id.
type ObjectID int

// Kind identifies the primitive shape of an object.
type Kind string

const (
	KindCube     Kind = "cube"
	KindSphere   Kind = "sphere"
	KindCylinder Kind = "cylinder"
	KindRamp     Kind = "ramp" // Custom wedge geometry
)

// Kinds lists the supported primitives in toolbar order.
var Kinds = []Kind{KindCube, KindSphere, KindCylinder, KindRamp}

// Valid reports whether k is a supported primitive.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Vec3 is a point or offset in world space. Y is up.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Object is a primitive placed in the scene.
type Object struct {
	ID       ObjectID `json:"id"`
	Kind     Kind     `json:"kind"`
	Position Vec3     `json:"position"`
	// Rotation is the yaw in degrees, normalised to [0, 360).
	Rotation float64 `json:"rotation"`
	Scale    float64 `json:"scale"`
	Color    string  `json:"color"`
	// Visible is written by the render pass from layer visibility.
	Visible bool `json:"visible"`
}
