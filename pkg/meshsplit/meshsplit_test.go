package meshsplit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/assetkit/pkg/scene"
)

func TestFaces(t *testing.T) {
	tests := []struct {
		name  string
		mode  Mode
		idx   []uint32
		count uint32
		want  []scene.Face
		prim  scene.PrimitiveType
	}{
		{"triangles", Triangles, []uint32{0, 1, 2, 3, 4, 5}, 6, []scene.Face{{0, 1, 2}, {3, 4, 5}}, scene.PrimitiveTriangle},
		{"triangles out of range", Triangles, []uint32{0, 1, 9, 0, 1, 2}, 3, []scene.Face{{0, 1, 2}}, scene.PrimitiveTriangle},
		{"trailing indices", Triangles, []uint32{0, 1, 2, 0}, 3, []scene.Face{{0, 1, 2}}, scene.PrimitiveTriangle},
		{"strip", TriangleStrip, []uint32{0, 1, 2, 3}, 4, []scene.Face{{0, 1, 2}, {2, 1, 3}}, scene.PrimitiveTriangle},
		{"fan", TriangleFan, []uint32{0, 1, 2, 3}, 4, []scene.Face{{0, 1, 2}, {0, 2, 3}}, scene.PrimitiveTriangle},
		{"lines", Lines, []uint32{0, 1, 2, 3, 4}, 5, []scene.Face{{0, 1}, {2, 3}}, scene.PrimitiveLine},
		{"line strip", LineStrip, []uint32{0, 1, 2}, 3, []scene.Face{{0, 1}, {1, 2}}, scene.PrimitiveLine},
		{"line loop", LineLoop, []uint32{0, 1, 2}, 3, []scene.Face{{0, 1}, {1, 2}, {2, 0}}, scene.PrimitiveLine},
		{"points", Points, []uint32{2, 0, 7}, 3, []scene.Face{{2}, {0}}, scene.PrimitivePoint},
		{"unknown mode", Mode(42), []uint32{0, 1, 2}, 3, []scene.Face{{0, 1, 2}}, scene.PrimitiveTriangle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			faces, prim := Faces(tt.mode, tt.idx, tt.count)
			assert.Equal(t, tt.want, faces)
			assert.Equal(t, tt.prim, prim)
		})
	}
}

func TestSequentialTriangles(t *testing.T) {
	faces, _ := Faces(Triangles, Sequential(6), 6)
	assert.Equal(t, []scene.Face{{0, 1, 2}, {3, 4, 5}}, faces)
	assert.Empty(t, Sequential(0))
}

func TestCompact(t *testing.T) {
	faces, remap := Compact([]scene.Face{{5, 2, 5}, {2, 7}})
	assert.Equal(t, []scene.Face{{0, 1, 0}, {1, 2}}, faces)
	assert.Equal(t, []uint32{5, 2, 7}, remap)

	_, remap = Compact(nil)
	assert.NotNil(t, remap)
	assert.Empty(t, remap)
}

func TestAppendSpans(t *testing.T) {
	var meshes []scene.Mesh
	meshes, a := Append(meshes, scene.Mesh{Name: "a-0"}, scene.Mesh{Name: "a-1"})
	meshes, b := Append(meshes, scene.Mesh{Name: "b"})
	meshes, empty := Append(meshes)

	assert.Len(t, meshes, 3)
	assert.Equal(t, scene.IndexSpan{Start: 0, Count: 2}, a)
	assert.Equal(t, scene.IndexSpan{Start: 2, Count: 1}, b)
	assert.Equal(t, []int{0, 1}, a.Indexes())
	assert.Equal(t, []int{2}, b.Indexes())
	assert.Empty(t, empty.Indexes())
}

func TestIndices(t *testing.T) {
	tests := []struct {
		name  string
		prim  scene.PrimitiveType
		faces []scene.Face
		mode  Mode
		want  []uint32
	}{
		{"triangles", scene.PrimitiveTriangle, []scene.Face{{0, 1, 2}}, Triangles, []uint32{0, 1, 2}},
		{"polygon fan", scene.PrimitivePolygon, []scene.Face{{0, 1, 2, 3}}, Triangles, []uint32{0, 1, 2, 0, 2, 3}},
		{"lines", scene.PrimitiveLine, []scene.Face{{0, 1}, {1, 2, 3}}, Lines, []uint32{0, 1}},
		{"points", scene.PrimitivePoint, []scene.Face{{4}, {5}}, Points, []uint32{4, 5}},
		{"mixed keeps triangles", scene.PrimitiveTriangle | scene.PrimitiveLine, []scene.Face{{0, 1}, {0, 1, 2}}, Triangles, []uint32{0, 1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &scene.Mesh{PrimitiveTypes: tt.prim, Faces: tt.faces}
			mode, idx := Indices(m)
			assert.Equal(t, tt.mode, mode)
			assert.Equal(t, tt.want, idx)
		})
	}
}
