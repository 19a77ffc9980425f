// Package meshsplit turns glTF primitives into flat submeshes: index lists
// become faces for the primitive topology, referenced vertices are
// compacted, and each source mesh maps to a contiguous span of submeshes.
package meshsplit

import "github.com/Faultbox/assetkit/pkg/scene"

// Mode is a primitive topology, using the GL values shared by glTF 1.0
// and 2.0.
type Mode int

const (
	Points Mode = iota
	Lines
	LineLoop
	LineStrip
	Triangles
	TriangleStrip
	TriangleFan
)

// Faces expands an index list into faces for the given topology. Faces
// referencing a vertex at or past vertexCount are skipped. Unknown modes
// are read as triangles.
func Faces(mode Mode, idx []uint32, vertexCount uint32) ([]scene.Face, scene.PrimitiveType) {
	var faces []scene.Face
	add := func(f ...uint32) {
		for _, i := range f {
			if i >= vertexCount {
				return
			}
		}
		faces = append(faces, scene.Face(f))
	}
	n := len(idx)
	switch mode {
	case Points:
		for i := 0; i < n; i++ {
			add(idx[i])
		}
		return faces, scene.PrimitivePoint
	case Lines:
		for i := 0; i+1 < n; i += 2 {
			add(idx[i], idx[i+1])
		}
		return faces, scene.PrimitiveLine
	case LineLoop:
		if n >= 2 {
			for i := 0; i < n; i++ {
				add(idx[i], idx[(i+1)%n])
			}
		}
		return faces, scene.PrimitiveLine
	case LineStrip:
		for i := 0; i+1 < n; i++ {
			add(idx[i], idx[i+1])
		}
		return faces, scene.PrimitiveLine
	case TriangleStrip:
		for i := 0; i+2 < n; i++ {
			if i%2 == 1 {
				add(idx[i+1], idx[i], idx[i+2])
			} else {
				add(idx[i], idx[i+1], idx[i+2])
			}
		}
		return faces, scene.PrimitiveTriangle
	case TriangleFan:
		for i := 1; i+1 < n; i++ {
			add(idx[0], idx[i], idx[i+1])
		}
		return faces, scene.PrimitiveTriangle
	default:
		for i := 0; i+2 < n; i += 3 {
			add(idx[i], idx[i+1], idx[i+2])
		}
		return faces, scene.PrimitiveTriangle
	}
}

// Sequential returns the indices 0..n-1, used for non-indexed primitives.
func Sequential(n uint32) []uint32 {
	out := make([]uint32, n)
	for i := range out {
		out[i] = uint32(i)
	}
	return out
}

// Compact renumbers the vertices used by faces in first-use order, in
// place, and returns the source vertex of each new index.
func Compact(faces []scene.Face) ([]scene.Face, []uint32) {
	mapping := make(map[uint32]uint32)
	var remap []uint32
	for _, f := range faces {
		for j, v := range f {
			nv, ok := mapping[v]
			if !ok {
				nv = uint32(len(remap))
				mapping[v] = nv
				remap = append(remap, v)
			}
			f[j] = nv
		}
	}
	if remap == nil {
		remap = []uint32{}
	}
	return faces, remap
}

// Append adds the submeshes of one source mesh to dst and returns the span
// they occupy.
func Append(dst []scene.Mesh, parts ...scene.Mesh) ([]scene.Mesh, scene.IndexSpan) {
	span := scene.IndexSpan{Start: uint32(len(dst)), Count: uint32(len(parts))}
	return append(dst, parts...), span
}

// Indices flattens faces for the dominant topology of the mesh.
// Polygons are fan-triangulated; faces of other topologies are dropped.
func Indices(m *scene.Mesh) (Mode, []uint32) {
	var out []uint32
	switch {
	case m.PrimitiveTypes.Has(scene.PrimitiveLine) && !m.PrimitiveTypes.Has(scene.PrimitiveTriangle) && !m.PrimitiveTypes.Has(scene.PrimitivePolygon):
		for _, f := range m.Faces {
			if len(f) == 2 {
				out = append(out, f[0], f[1])
			}
		}
		return Lines, out
	case m.PrimitiveTypes == scene.PrimitivePoint:
		for _, f := range m.Faces {
			if len(f) == 1 {
				out = append(out, f[0])
			}
		}
		return Points, out
	}
	for _, f := range m.Faces {
		for i := 1; i+1 < len(f); i++ {
			out = append(out, f[0], f[i], f[i+1])
		}
	}
	return Triangles, out
}
