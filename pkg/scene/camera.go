package scene

import (
	gomath "math"

	"github.com/Faultbox/assetkit/pkg/math"
)

// Camera is a viewpoint bound to the node with the same name.
type Camera struct {
	Name     string
	Position math.Vec3
	Up       math.Vec3
	LookAt   math.Vec3
	// HorizontalFOV is the half horizontal field of view in radians.
	HorizontalFOV float64
	ClipNear      float64
	ClipFar       float64
	Aspect        float64
	// OrthographicWidth is non-zero for orthographic cameras.
	OrthographicWidth float64
}

// NewCamera returns a camera with the default frustum.
func NewCamera(name string) Camera {
	return Camera{
		Name:          name,
		Up:            math.Vec3{Y: 1},
		LookAt:        math.Vec3{Z: 1},
		HorizontalFOV: 0.25 * 2 * gomath.Pi,
		ClipNear:      0.1,
		ClipFar:       1000,
	}
}

// IsOrthographic reports whether the camera uses an orthographic projection.
func (c *Camera) IsOrthographic() bool {
	return c.OrthographicWidth != 0
}
