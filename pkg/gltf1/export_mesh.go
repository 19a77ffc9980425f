package gltf1

import (
	"fmt"
	"slices"
	"sort"
	"strconv"

	"github.com/Faultbox/assetkit/pkg/accessor"
	"github.com/Faultbox/assetkit/pkg/math"
	"github.com/Faultbox/assetkit/pkg/meshsplit"
	"github.com/Faultbox/assetkit/pkg/scene"
)

// maxShortIndex is the largest index an UNSIGNED_SHORT accessor holds.
const maxShortIndex = 1<<16 - 1

// exportMeshes writes one single-primitive mesh per submesh. Submeshes no
// node references still get a key.
func (ex *exporter) exportMeshes() error {
	skins := make(map[int]string)
	for mi := range ex.s.Meshes {
		m := &ex.s.Meshes[mi]
		key, ok := ex.meshKeys[mi]
		if !ok {
			key = ex.keys.Next(m.Name, "mesh")
			ex.meshKeys[mi] = key
		}
		p, err := ex.primitive(m)
		if err != nil {
			return fmt.Errorf("mesh %q: %w", m.Name, err)
		}
		ex.doc.Meshes.Set(key, &Mesh{Name: m.Name, Primitives: []*Primitive{p}})
		if len(m.Bones) > 0 {
			if skins[mi], err = ex.skin(key, m, p); err != nil {
				return fmt.Errorf("mesh %q: %w", m.Name, err)
			}
		}
	}
	if len(skins) == 0 {
		return nil
	}

	// A skinned node takes the skin of its first skinned mesh.
	tree := &ex.s.Nodes
	for i := range tree.Arena {
		for _, mi := range tree.Arena[i].MeshIndexes {
			skin, ok := skins[mi]
			if !ok {
				continue
			}
			gn, _ := ex.doc.Nodes.Get(ex.nodeKeys[i])
			gn.Skin = skin
			gn.Skeletons = []string{ex.nodeKeys[tree.Root]}
			break
		}
	}
	return nil
}

func (ex *exporter) primitive(m *scene.Mesh) (*Primitive, error) {
	if !m.HasPositions() {
		return nil, ErrMissingPositions
	}
	n := len(m.Vertices)
	p := &Primitive{Attributes: map[string]string{}}
	p.Attributes["POSITION"] = ex.addAccessor(ex.b.AddVec3s(m.Vertices, accessor.TargetArray))
	if len(m.Normals) == n {
		p.Attributes["NORMAL"] = ex.addAccessor(ex.b.AddVec3s(m.Normals, accessor.TargetArray))
	}
	for c := 0; c < m.NumColorChannels(); c++ {
		if len(m.Colors[c]) == n {
			p.Attributes["COLOR_"+strconv.Itoa(c)] = ex.addAccessor(ex.b.AddColors(m.Colors[c]))
		}
	}
	for t := 0; t < m.NumUVChannels(); t++ {
		if len(m.TextureCoords[t]) != n {
			continue
		}
		uv := make([]math.Vec3, n)
		for i, v := range m.TextureCoords[t] {
			uv[i] = math.Vec3{X: v.X, Y: 1 - v.Y}
		}
		p.Attributes["TEXCOORD_"+strconv.Itoa(t)] = ex.addAccessor(ex.b.AddVec2s(uv, accessor.TargetArray))
	}

	mode, indices := meshsplit.Indices(m)
	if mode != meshsplit.Triangles {
		md := int(mode)
		p.Mode = &md
	}
	if len(indices) > 0 {
		ct := accessor.UnsignedShort
		if slices.Max(indices) > maxShortIndex {
			ct = accessor.UnsignedInt
		}
		p.Indices = ex.addAccessor(ex.b.AddUints(indices, ct, accessor.Scalar, accessor.TargetElementArray))
	}
	if key, ok := ex.materials[m.MaterialIndex]; ok {
		p.Material = key
	}
	return p, nil
}

// skin writes the JOINT and WEIGHT attributes of a skinned mesh and a skin
// whose joint names are the bone node keys. Each vertex keeps its four
// strongest influences.
func (ex *exporter) skin(meshKey string, m *scene.Mesh, p *Primitive) (string, error) {
	n := len(m.Vertices)
	type influence struct {
		bone   int
		weight float64
	}
	per := make([][]influence, n)
	jointNames := make([]string, len(m.Bones))
	offsets := make([]math.Mat4, len(m.Bones))
	for b, bone := range m.Bones {
		node := bone.NodeIndex
		if node < 0 || node >= ex.s.Nodes.Len() {
			var ok bool
			if node, ok = ex.s.Nodes.FindByName(bone.Name); !ok {
				return "", fmt.Errorf("bone %q has no node: %w", bone.Name, ErrInvalidReference)
			}
		}
		key := ex.nodeKeys[node]
		jointNames[b] = key
		offsets[b] = bone.OffsetMatrix
		if gn, ok := ex.doc.Nodes.Get(key); ok {
			gn.JointName = key
		}
		for _, w := range bone.Weights {
			if int(w.VertexID) < n && w.Weight > 0 {
				per[w.VertexID] = append(per[w.VertexID], influence{bone: b, weight: w.Weight})
			}
		}
	}

	joints := make([][4]float64, n)
	weights := make([][4]float64, n)
	for v, infl := range per {
		sort.SliceStable(infl, func(a, b int) bool { return infl[a].weight > infl[b].weight })
		if len(infl) > 4 {
			infl = infl[:4]
		}
		sum := 0.0
		for _, in := range infl {
			sum += in.weight
		}
		for k, in := range infl {
			joints[v][k] = float64(in.bone)
			weights[v][k] = in.weight / sum
		}
	}
	p.Attributes["JOINT"] = ex.addAccessor(ex.b.AddVec4s(joints, accessor.TargetArray))
	p.Attributes["WEIGHT"] = ex.addAccessor(ex.b.AddVec4s(weights, accessor.TargetArray))

	key := ex.keys.Next(meshKey+"_skin", "skin")
	ex.doc.Skins.Set(key, &Skin{
		InverseBindMatrices: ex.addAccessor(ex.b.AddMat4s(offsets)),
		JointNames:          jointNames,
	})
	return key, nil
}
