package gltf2

import (
	"github.com/qmuntal/gltf"

	"github.com/Faultbox/assetkit/pkg/accessor"
	"github.com/Faultbox/assetkit/pkg/scene"
)

var componentTypes = map[gltf.ComponentType]accessor.ComponentType{
	gltf.ComponentByte:   accessor.Byte,
	gltf.ComponentUbyte:  accessor.UnsignedByte,
	gltf.ComponentShort:  accessor.Short,
	gltf.ComponentUshort: accessor.UnsignedShort,
	gltf.ComponentUint:   accessor.UnsignedInt,
	gltf.ComponentFloat:  accessor.Float,
}

var accessorTypes = map[gltf.AccessorType]accessor.Type{
	gltf.AccessorScalar: accessor.Scalar,
	gltf.AccessorVec2:   accessor.Vec2,
	gltf.AccessorVec3:   accessor.Vec3,
	gltf.AccessorVec4:   accessor.Vec4,
	gltf.AccessorMat2:   accessor.Mat2,
	gltf.AccessorMat3:   accessor.Mat3,
	gltf.AccessorMat4:   accessor.Mat4,
}

func fromComponentType(c accessor.ComponentType) gltf.ComponentType {
	for k, v := range componentTypes {
		if v == c {
			return k
		}
	}
	return gltf.ComponentFloat
}

func fromAccessorType(t accessor.Type) gltf.AccessorType {
	for k, v := range accessorTypes {
		if v == t {
			return k
		}
	}
	return gltf.AccessorScalar
}

func toTarget(t gltf.Target) accessor.Target {
	switch t {
	case gltf.TargetArrayBuffer:
		return accessor.TargetArray
	case gltf.TargetElementArrayBuffer:
		return accessor.TargetElementArray
	}
	return accessor.TargetNone
}

func fromTarget(t accessor.Target) gltf.Target {
	switch t {
	case accessor.TargetArray:
		return gltf.TargetArrayBuffer
	case accessor.TargetElementArray:
		return gltf.TargetElementArrayBuffer
	}
	return gltf.TargetNone
}

// GL sampler enums.
const (
	glNearest              = 9728
	glLinear               = 9729
	glNearestMipmapNearest = 9984
	glLinearMipmapNearest  = 9985
	glNearestMipmapLinear  = 9986
	glLinearMipmapLinear   = 9987
)

var magFilters = map[gltf.MagFilter]int{
	gltf.MagNearest: glNearest,
	gltf.MagLinear:  glLinear,
}

var minFilters = map[gltf.MinFilter]int{
	gltf.MinNearest:              glNearest,
	gltf.MinLinear:               glLinear,
	gltf.MinNearestMipMapNearest: glNearestMipmapNearest,
	gltf.MinLinearMipMapNearest:  glLinearMipmapNearest,
	gltf.MinNearestMipMapLinear:  glNearestMipmapLinear,
	gltf.MinLinearMipMapLinear:   glLinearMipmapLinear,
}

var wrapModes = map[gltf.WrappingMode]scene.WrapMode{
	gltf.WrapRepeat:         scene.WrapRepeat,
	gltf.WrapClampToEdge:    scene.WrapClamp,
	gltf.WrapMirroredRepeat: scene.WrapMirror,
}

func toSampler(s *gltf.Sampler) scene.Sampler {
	return scene.Sampler{
		MagFilter: magFilters[s.MagFilter],
		MinFilter: minFilters[s.MinFilter],
		WrapS:     wrapModes[s.WrapS],
		WrapT:     wrapModes[s.WrapT],
	}
}

func fromSampler(s scene.Sampler) *gltf.Sampler {
	out := &gltf.Sampler{}
	for k, v := range magFilters {
		if v == s.MagFilter {
			out.MagFilter = k
		}
	}
	for k, v := range minFilters {
		if v == s.MinFilter {
			out.MinFilter = k
		}
	}
	for k, v := range wrapModes {
		if v == s.WrapS {
			out.WrapS = k
		}
		if v == s.WrapT {
			out.WrapT = k
		}
	}
	return out
}

var alphaModes = map[gltf.AlphaMode]scene.AlphaMode{
	gltf.AlphaOpaque: scene.AlphaOpaque,
	gltf.AlphaMask:   scene.AlphaMask,
	gltf.AlphaBlend:  scene.AlphaBlend,
}

func fromAlphaMode(a scene.AlphaMode) gltf.AlphaMode {
	switch a {
	case scene.AlphaMask:
		return gltf.AlphaMask
	case scene.AlphaBlend:
		return gltf.AlphaBlend
	}
	return gltf.AlphaOpaque
}

var interpolations = map[gltf.Interpolation]scene.Interpolation{
	gltf.InterpolationStep:        scene.InterpolationStep,
	gltf.InterpolationLinear:      scene.InterpolationLinear,
	gltf.InterpolationCubicSpline: scene.InterpolationCubicSpline,
}

func fromInterpolation(i scene.Interpolation) gltf.Interpolation {
	switch i {
	case scene.InterpolationStep:
		return gltf.InterpolationStep
	case scene.InterpolationCubicSpline:
		return gltf.InterpolationCubicSpline
	}
	return gltf.InterpolationLinear
}
