package gltf1

import "encoding/json"

// Document is the root object of a glTF 1.0 file. Every collection is
// keyed by string id.
type Document struct {
	Accessors      Dict[*Accessor]   `json:"accessors,omitzero"`
	Animations     Dict[*Animation]  `json:"animations,omitzero"`
	Asset          *Asset            `json:"asset,omitempty"`
	Buffers        Dict[*Buffer]     `json:"buffers,omitzero"`
	BufferViews    Dict[*BufferView] `json:"bufferViews,omitzero"`
	Cameras        Dict[*Camera]     `json:"cameras,omitzero"`
	Images         Dict[*Image]      `json:"images,omitzero"`
	Materials      Dict[*Material]   `json:"materials,omitzero"`
	Meshes         Dict[*Mesh]       `json:"meshes,omitzero"`
	Nodes          Dict[*Node]       `json:"nodes,omitzero"`
	Samplers       Dict[*Sampler]    `json:"samplers,omitzero"`
	Scene          string            `json:"scene,omitempty"`
	Scenes         Dict[*Scene]      `json:"scenes,omitzero"`
	Skins          Dict[*Skin]       `json:"skins,omitzero"`
	Textures       Dict[*Texture]    `json:"textures,omitzero"`
	Extensions     *RootExtensions   `json:"extensions,omitempty"`
	ExtensionsUsed []string          `json:"extensionsUsed,omitempty"`
}

type Asset struct {
	Copyright          string   `json:"copyright,omitempty"`
	Generator          string   `json:"generator,omitempty"`
	PremultipliedAlpha bool     `json:"premultipliedAlpha,omitempty"`
	Profile            *Profile `json:"profile,omitempty"`
	Version            string   `json:"version"`
}

type Profile struct {
	API     string `json:"api,omitempty"`
	Version string `json:"version,omitempty"`
}

// Buffer types.
const (
	BufferArray = "arraybuffer"
	BufferText  = "text"
)

type Buffer struct {
	URI        string `json:"uri"`
	ByteLength int    `json:"byteLength,omitempty"`
	Type       string `json:"type,omitempty"`
	Name       string `json:"name,omitempty"`
}

type BufferView struct {
	Buffer     string `json:"buffer"`
	ByteOffset int    `json:"byteOffset"`
	ByteLength int    `json:"byteLength,omitempty"`
	Target     uint32 `json:"target,omitempty"`
	Name       string `json:"name,omitempty"`
}

type Accessor struct {
	BufferView    string    `json:"bufferView"`
	ByteOffset    int       `json:"byteOffset"`
	ByteStride    int       `json:"byteStride,omitempty"`
	ComponentType uint32    `json:"componentType"`
	Count         int       `json:"count"`
	Type          string    `json:"type"`
	Max           []float64 `json:"max,omitempty"`
	Min           []float64 `json:"min,omitempty"`
	Name          string    `json:"name,omitempty"`
}

// Primitive modes.
const (
	ModePoints        = 0
	ModeLines         = 1
	ModeLineLoop      = 2
	ModeLineStrip     = 3
	ModeTriangles     = 4
	ModeTriangleStrip = 5
	ModeTriangleFan   = 6
)

type Primitive struct {
	Attributes map[string]string `json:"attributes,omitempty"`
	Indices    string            `json:"indices,omitempty"`
	Material   string            `json:"material"`
	// Mode is nil for triangles.
	Mode *int `json:"mode,omitempty"`
}

// ModeOrDefault returns the primitive topology.
func (p *Primitive) ModeOrDefault() int {
	if p.Mode == nil {
		return ModeTriangles
	}
	return *p.Mode
}

type Mesh struct {
	Primitives []*Primitive `json:"primitives,omitempty"`
	Name       string       `json:"name,omitempty"`
}

type Node struct {
	Camera      string          `json:"camera,omitempty"`
	Children    []string        `json:"children,omitempty"`
	Skeletons   []string        `json:"skeletons,omitempty"`
	Skin        string          `json:"skin,omitempty"`
	JointName   string          `json:"jointName,omitempty"`
	Matrix      *[16]float64    `json:"matrix,omitempty"`
	Meshes      []string        `json:"meshes,omitempty"`
	Rotation    *[4]float64     `json:"rotation,omitempty"`
	Scale       *[3]float64     `json:"scale,omitempty"`
	Translation *[3]float64     `json:"translation,omitempty"`
	Name        string          `json:"name,omitempty"`
	Extensions  *NodeExtensions `json:"extensions,omitempty"`
}

type NodeExtensions struct {
	Common *NodeLight `json:"KHR_materials_common,omitempty"`
}

// NodeLight binds a KHR_materials_common light to a node.
type NodeLight struct {
	Light string `json:"light"`
}

type Scene struct {
	Nodes []string `json:"nodes,omitempty"`
	Name  string   `json:"name,omitempty"`
}

type Camera struct {
	Orthographic *Orthographic `json:"orthographic,omitempty"`
	Perspective  *Perspective  `json:"perspective,omitempty"`
	Type         string        `json:"type"`
	Name         string        `json:"name,omitempty"`
}

type Perspective struct {
	AspectRatio float64 `json:"aspectRatio,omitempty"`
	Yfov        float64 `json:"yfov"`
	Zfar        float64 `json:"zfar"`
	Znear       float64 `json:"znear"`
}

type Orthographic struct {
	Xmag  float64 `json:"xmag"`
	Ymag  float64 `json:"ymag"`
	Zfar  float64 `json:"zfar"`
	Znear float64 `json:"znear"`
}

type Image struct {
	URI        string           `json:"uri"`
	Name       string           `json:"name,omitempty"`
	Extensions *ImageExtensions `json:"extensions,omitempty"`
}

type ImageExtensions struct {
	Binary *BinaryImage `json:"KHR_binary_glTF,omitempty"`
}

// BinaryImage stores an image in a buffer view of the container body.
type BinaryImage struct {
	BufferView string `json:"bufferView"`
	MimeType   string `json:"mimeType"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
}

type Texture struct {
	Sampler        string `json:"sampler,omitempty"`
	Source         string `json:"source"`
	Format         int    `json:"format,omitempty"`
	InternalFormat int    `json:"internalFormat,omitempty"`
	Target         int    `json:"target,omitempty"`
	Type           int    `json:"type,omitempty"`
	Name           string `json:"name,omitempty"`
}

type Sampler struct {
	MagFilter int    `json:"magFilter,omitempty"`
	MinFilter int    `json:"minFilter,omitempty"`
	WrapS     int    `json:"wrapS,omitempty"`
	WrapT     int    `json:"wrapT,omitempty"`
	Name      string `json:"name,omitempty"`
}

// Material values are colors, numbers, booleans or texture ids, so they
// stay raw until read.
type Material struct {
	Technique  string                     `json:"technique,omitempty"`
	Values     map[string]json.RawMessage `json:"values,omitempty"`
	Name       string                     `json:"name,omitempty"`
	Extensions *MaterialExtensions        `json:"extensions,omitempty"`
}

type MaterialExtensions struct {
	Common *CommonMaterial `json:"KHR_materials_common,omitempty"`
}

// CommonMaterial is the KHR_materials_common material description.
type CommonMaterial struct {
	Technique   string                     `json:"technique"`
	DoubleSided bool                       `json:"doubleSided,omitempty"`
	Transparent bool                       `json:"transparent,omitempty"`
	Values      map[string]json.RawMessage `json:"values,omitempty"`
}

type Skin struct {
	BindShapeMatrix     *[16]float64 `json:"bindShapeMatrix,omitempty"`
	InverseBindMatrices string       `json:"inverseBindMatrices"`
	JointNames          []string     `json:"jointNames"`
	Name                string       `json:"name,omitempty"`
}

type Animation struct {
	Channels   []*Channel              `json:"channels,omitempty"`
	Parameters map[string]string       `json:"parameters,omitempty"`
	Samplers   map[string]*AnimSampler `json:"samplers,omitempty"`
	Name       string                  `json:"name,omitempty"`
}

type Channel struct {
	Sampler string        `json:"sampler"`
	Target  ChannelTarget `json:"target"`
}

type ChannelTarget struct {
	ID   string `json:"id"`
	Path string `json:"path"`
}

// AnimSampler names animation parameters, not accessors.
type AnimSampler struct {
	Input         string `json:"input"`
	Interpolation string `json:"interpolation,omitempty"`
	Output        string `json:"output"`
}

type RootExtensions struct {
	Common *CommonLights `json:"KHR_materials_common,omitempty"`
}

type CommonLights struct {
	Lights Dict[*Light] `json:"lights,omitzero"`
}

// Light is a KHR_materials_common light. Exactly one of the typed
// parameter blocks matches Type.
type Light struct {
	Name        string       `json:"name,omitempty"`
	Type        string       `json:"type"`
	Ambient     *LightParams `json:"ambient,omitempty"`
	Directional *LightParams `json:"directional,omitempty"`
	Point       *LightParams `json:"point,omitempty"`
	Spot        *LightParams `json:"spot,omitempty"`
}

// Params returns the parameter block for the light type, or nil.
func (l *Light) Params() *LightParams {
	switch l.Type {
	case "ambient":
		return l.Ambient
	case "directional":
		return l.Directional
	case "point":
		return l.Point
	case "spot":
		return l.Spot
	}
	return nil
}

type LightParams struct {
	Color                []float64 `json:"color,omitempty"`
	ConstantAttenuation  *float64  `json:"constantAttenuation,omitempty"`
	LinearAttenuation    *float64  `json:"linearAttenuation,omitempty"`
	QuadraticAttenuation *float64  `json:"quadraticAttenuation,omitempty"`
	Distance             float64   `json:"distance,omitempty"`
	FalloffAngle         *float64  `json:"falloffAngle,omitempty"`
	FalloffExponent      float64   `json:"falloffExponent,omitempty"`
}
