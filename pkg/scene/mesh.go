package scene

import "github.com/Faultbox/assetkit/pkg/math"

// Per-mesh channel limits.
const (
	MaxColorSets     = 8
	MaxTextureCoords = 8
)

// PrimitiveType is the bitset of face topologies present in a mesh.
type PrimitiveType uint8

const (
	PrimitivePoint            PrimitiveType = 0x01
	PrimitiveLine             PrimitiveType = 0x02
	PrimitiveTriangle         PrimitiveType = 0x04
	PrimitivePolygon          PrimitiveType = 0x08
	PrimitiveNgonEncodingFlag PrimitiveType = 0x10
)

// Has reports whether all bits of p2 are set.
func (p PrimitiveType) Has(p2 PrimitiveType) bool {
	return p&p2 == p2
}

// Face is a list of vertex indices.
type Face []uint32

// VertexWeight binds one vertex to a bone.
type VertexWeight struct {
	VertexID uint32
	Weight   float64
}

// Bone is a skinning influence on a mesh.
type Bone struct {
	Name string
	// NodeIndex is the arena index of the joint node, NoNode when unknown.
	NodeIndex    int
	Weights      []VertexWeight
	OffsetMatrix math.Mat4
}

// MorphMethod selects how morph targets combine with the base mesh.
type MorphMethod uint8

const (
	MorphUnknown MorphMethod = iota
	MorphVertexBlend
	MorphNormalized
	MorphRelative
)

// AnimMesh is a morph target. Attribute slices hold absolute values.
type AnimMesh struct {
	Name          string
	Vertices      []math.Vec3
	Normals       []math.Vec3
	Tangents      []math.Vec3
	Bitangents    []math.Vec3
	Colors        [MaxColorSets][]math.Color4
	TextureCoords [MaxTextureCoords][]math.Vec3
	Weight        float64
}

// Mesh holds one submesh with a single material.
type Mesh struct {
	Name           string
	PrimitiveTypes PrimitiveType
	Vertices       []math.Vec3
	Normals        []math.Vec3
	Tangents       []math.Vec3
	Bitangents     []math.Vec3
	Colors         [MaxColorSets][]math.Color4
	TextureCoords  [MaxTextureCoords][]math.Vec3
	// NumUVComponents is 2 or 3 for populated texture coordinate channels.
	NumUVComponents   [MaxTextureCoords]int
	TextureCoordNames [MaxTextureCoords]string
	Faces             []Face
	Bones             []Bone
	MaterialIndex     int
	AnimMeshes        []AnimMesh
	MorphMethod       MorphMethod
	AABB              math.AABB
}

// HasPositions reports whether the mesh carries vertex positions.
func (m *Mesh) HasPositions() bool {
	return len(m.Vertices) > 0
}

// HasFaces reports whether the mesh has at least one face.
func (m *Mesh) HasFaces() bool {
	return len(m.Faces) > 0
}

// NumColorChannels returns the number of leading populated color sets.
func (m *Mesh) NumColorChannels() int {
	n := 0
	for n < MaxColorSets && m.Colors[n] != nil {
		n++
	}
	return n
}

// NumUVChannels returns the number of leading populated texture coordinate sets.
func (m *Mesh) NumUVChannels() int {
	n := 0
	for n < MaxTextureCoords && m.TextureCoords[n] != nil {
		n++
	}
	return n
}

// UpdateAABB recomputes the bounding box from the vertices.
func (m *Mesh) UpdateAABB() {
	m.AABB = math.BoundsOf(m.Vertices)
}

// IndexSpan maps one source mesh to a contiguous run of submeshes.
type IndexSpan struct {
	Start uint32
	Count uint32
}

// Indexes expands the span into submesh indices.
func (s IndexSpan) Indexes() []int {
	out := make([]int, s.Count)
	for i := range out {
		out[i] = int(s.Start) + i
	}
	return out
}
