package scene

import "github.com/Faultbox/assetkit/pkg/math"

// Interpolation is the keyframe interpolation mode.
type Interpolation int

const (
	InterpolationStep Interpolation = iota
	InterpolationLinear
	InterpolationSphericalLinear
	InterpolationCubicSpline
)

// VectorKey is a position or scale keyframe.
type VectorKey struct {
	Time          float64
	Value         math.Vec3
	Interpolation Interpolation
}

// QuatKey is a rotation keyframe.
type QuatKey struct {
	Time          float64
	Value         math.Quat
	Interpolation Interpolation
}

// NodeAnim animates one node, matched by name.
type NodeAnim struct {
	NodeName     string
	PositionKeys []VectorKey
	RotationKeys []QuatKey
	ScalingKeys  []VectorKey
}

// MorphKey sets morph target weights at a point in time.
type MorphKey struct {
	Time    float64
	Values  []uint32
	Weights []float64
}

// MeshMorphAnim animates morph weights of the meshes of one node.
type MeshMorphAnim struct {
	Name string
	Keys []MorphKey
}

// Animation is a named set of channels. Times are in ticks.
type Animation struct {
	Name           string
	Duration       float64
	TicksPerSecond float64
	Channels       []NodeAnim
	MorphChannels  []MeshMorphAnim
}
