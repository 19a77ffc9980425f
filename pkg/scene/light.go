package scene

import (
	gomath "math"

	"github.com/Faultbox/assetkit/pkg/math"
)

// LightType is the kind of light source.
type LightType int

const (
	LightUndefined LightType = iota
	LightDirectional
	LightPoint
	LightSpot
	LightAmbient
	LightArea
)

// String returns the light type name.
func (t LightType) String() string {
	switch t {
	case LightDirectional:
		return "Directional"
	case LightPoint:
		return "Point"
	case LightSpot:
		return "Spot"
	case LightAmbient:
		return "Ambient"
	case LightArea:
		return "Area"
	default:
		return "Undefined"
	}
}

// Light is a light source bound to the node with the same name.
type Light struct {
	Name                 string
	Type                 LightType
	Position             math.Vec3
	Direction            math.Vec3
	Up                   math.Vec3
	AttenuationConstant  float64
	AttenuationLinear    float64
	AttenuationQuadratic float64
	Diffuse              math.Color3
	Specular             math.Color3
	Ambient              math.Color3
	InnerConeAngle       float64
	OuterConeAngle       float64
	Size                 math.Vec2
}

// NewLight returns a light with default attenuation and cone angles.
func NewLight(name string, typ LightType) Light {
	return Light{
		Name:              name,
		Type:              typ,
		AttenuationLinear: 1,
		InnerConeAngle:    gomath.Pi,
		OuterConeAngle:    gomath.Pi,
	}
}
