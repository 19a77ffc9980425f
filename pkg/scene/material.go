package scene

import "github.com/Faultbox/assetkit/pkg/math"

// DefaultMaterialName names the fallback material appended by importers.
const DefaultMaterialName = "DefaultMaterial"

// TextureType identifies the role of a texture slot.
type TextureType int

const (
	TextureNone TextureType = iota
	TextureDiffuse
	TextureSpecular
	TextureAmbient
	TextureEmissive
	TextureHeight
	TextureNormals
	TextureShininess
	TextureOpacity
	TextureDisplacement
	TextureLightmap
	TextureReflection
	TextureBaseColor
	TextureNormalCamera
	TextureEmissionColor
	TextureMetalness
	TextureDiffuseRoughness
	TextureAmbientOcclusion
	TextureUnknown
)

var textureTypeNames = map[TextureType]string{
	TextureNone:             "None",
	TextureDiffuse:          "Diffuse",
	TextureSpecular:         "Specular",
	TextureAmbient:          "Ambient",
	TextureEmissive:         "Emissive",
	TextureHeight:           "Height",
	TextureNormals:          "Normals",
	TextureShininess:        "Shininess",
	TextureOpacity:          "Opacity",
	TextureDisplacement:     "Displacement",
	TextureLightmap:         "Lightmap",
	TextureReflection:       "Reflection",
	TextureBaseColor:        "BaseColor",
	TextureNormalCamera:     "NormalCamera",
	TextureEmissionColor:    "EmissionColor",
	TextureMetalness:        "Metalness",
	TextureDiffuseRoughness: "DiffuseRoughness",
	TextureAmbientOcclusion: "AmbientOcclusion",
	TextureUnknown:          "Unknown",
}

// String returns the texture type name.
func (t TextureType) String() string {
	if n, ok := textureTypeNames[t]; ok {
		return n
	}
	return "Unknown"
}

// ShadingModel is the lighting model of a material.
type ShadingModel int

const (
	ShadingGouraud ShadingModel = iota
	ShadingPhong
	ShadingBlinn
	ShadingPBR
	ShadingUnlit
	ShadingConstant
)

// AlphaMode is the alpha blending mode.
type AlphaMode int

const (
	AlphaOpaque AlphaMode = iota
	AlphaMask
	AlphaBlend
)

// String returns the glTF spelling of the mode.
func (a AlphaMode) String() string {
	switch a {
	case AlphaMask:
		return "MASK"
	case AlphaBlend:
		return "BLEND"
	default:
		return "OPAQUE"
	}
}

// WrapMode is a texture addressing mode.
type WrapMode int

const (
	WrapRepeat WrapMode = iota
	WrapClamp
	WrapMirror
)

// Sampler holds texture filtering settings. Zero filters mean unspecified.
type Sampler struct {
	MagFilter int
	MinFilter int
	WrapS     WrapMode
	WrapT     WrapMode
}

// TextureRef binds a texture to a material slot.
type TextureRef struct {
	// Path is an external URI, or "*N" for Scene.Textures[N].
	Path     string
	UVIndex  int
	Strength float64 // normal scale, occlusion strength; 1 otherwise
	Sampler  Sampler
}

// Material describes surface appearance.
type Material struct {
	Name         string
	ShadingModel ShadingModel

	// Metallic-roughness workflow.
	BaseColor math.Color4
	Metallic  float64
	Roughness float64

	// Specular-glossiness and legacy workflows.
	UseSpecularGlossiness bool
	Diffuse               math.Color4
	Specular              math.Color4
	Ambient               math.Color4
	Glossiness            float64
	Shininess             float64

	Emissive          math.Color3
	EmissiveIntensity float64
	Opacity           float64
	AlphaMode         AlphaMode
	AlphaCutoff       float64
	TwoSided          bool

	Textures map[TextureType]TextureRef
}

// NewMaterial returns a material with glTF default factors.
func NewMaterial(name string) Material {
	return Material{
		Name:              name,
		ShadingModel:      ShadingPBR,
		BaseColor:         math.White(),
		Metallic:          1,
		Roughness:         1,
		Diffuse:           math.White(),
		Specular:          math.White(),
		Glossiness:        1,
		EmissiveIntensity: 1,
		Opacity:           1,
		AlphaCutoff:       0.5,
	}
}

// DefaultMaterial returns the fallback material.
func DefaultMaterial() Material {
	m := NewMaterial(DefaultMaterialName)
	m.BaseColor = math.Color4{R: 0.6, G: 0.6, B: 0.6, A: 1}
	m.Diffuse = m.BaseColor
	m.Metallic = 0
	m.Roughness = 0.5
	return m
}

// SetTexture stores a texture reference for the given slot.
func (m *Material) SetTexture(t TextureType, ref TextureRef) {
	if m.Textures == nil {
		m.Textures = make(map[TextureType]TextureRef)
	}
	m.Textures[t] = ref
}

// Texture returns the reference stored for the given slot.
func (m *Material) Texture(t TextureType) (TextureRef, bool) {
	ref, ok := m.Textures[t]
	return ref, ok
}
