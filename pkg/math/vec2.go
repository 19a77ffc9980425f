package math

// Vec2 is a 2D vector.
type Vec2 struct {
	X, Y float64
}

// Vec3 extends v with the given Z.
func (v Vec2) Vec3(z float64) Vec3 {
	return Vec3{v.X, v.Y, z}
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max Vec3
}

// BoundsOf returns the bounding box of the given points.
// An empty slice yields the zero box.
func BoundsOf(points []Vec3) AABB {
	if len(points) == 0 {
		return AABB{}
	}
	box := AABB{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		box.Min = box.Min.Min(p)
		box.Max = box.Max.Max(p)
	}
	return box
}
