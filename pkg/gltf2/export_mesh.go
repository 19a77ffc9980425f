package gltf2

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/qmuntal/gltf"

	"github.com/Faultbox/assetkit/pkg/accessor"
	"github.com/Faultbox/assetkit/pkg/math"
	"github.com/Faultbox/assetkit/pkg/meshsplit"
	"github.com/Faultbox/assetkit/pkg/scene"
)

// maxInfluences is the number of bone weights per vertex unless unlimited
// bones are requested.
const maxInfluences = 4

// meshGroup returns the glTF mesh holding the given submeshes as
// primitives, creating it and its skin on first use.
func (ex *exporter) meshGroup(indexes []int) (meshGroup, error) {
	key := fmt.Sprint(indexes)
	if g, ok := ex.meshGroups[key]; ok {
		return g, nil
	}
	for _, mi := range indexes {
		if mi < 0 || mi >= len(ex.s.Meshes) {
			return meshGroup{}, fmt.Errorf("mesh %d: %w", mi, ErrInvalidReference)
		}
	}

	joints, slots, err := ex.joints(indexes)
	if err != nil {
		return meshGroup{}, err
	}

	first := &ex.s.Meshes[indexes[0]]
	name := first.Name
	if len(indexes) > 1 {
		name = strings.TrimSuffix(name, "-0")
	}
	gm := &gltf.Mesh{Name: name}
	for _, am := range first.AnimMeshes {
		gm.Weights = append(gm.Weights, am.Weight)
	}
	for k, mi := range indexes {
		p, err := ex.primitive(&ex.s.Meshes[mi], slots[k])
		if err != nil {
			return meshGroup{}, fmt.Errorf("mesh %d: %w", mi, err)
		}
		gm.Primitives = append(gm.Primitives, p)
	}
	ex.doc.Meshes = append(ex.doc.Meshes, gm)

	g := meshGroup{mesh: len(ex.doc.Meshes) - 1, skin: -1}
	if len(joints) > 0 {
		skin, err := ex.skin(joints)
		if err != nil {
			return meshGroup{}, err
		}
		g.skin = skin
	}
	ex.meshGroups[key] = g
	return g, nil
}

type joint struct {
	node   int
	offset math.Mat4
}

// joints collects the distinct bone nodes of a group of submeshes and
// returns, per submesh, the joint slot of each of its bones.
func (ex *exporter) joints(indexes []int) ([]joint, [][]int, error) {
	var joints []joint
	byNode := make(map[int]int)
	slots := make([][]int, len(indexes))
	for k, mi := range indexes {
		mesh := &ex.s.Meshes[mi]
		slots[k] = make([]int, len(mesh.Bones))
		for b, bone := range mesh.Bones {
			node := bone.NodeIndex
			if node < 0 || node >= ex.s.Nodes.Len() {
				var ok bool
				if node, ok = ex.s.Nodes.FindByName(bone.Name); !ok {
					return nil, nil, fmt.Errorf("bone %q has no node: %w", bone.Name, ErrInvalidReference)
				}
			}
			slot, ok := byNode[node]
			if !ok {
				slot = len(joints)
				byNode[node] = slot
				joints = append(joints, joint{node: node, offset: bone.OffsetMatrix})
			}
			slots[k][b] = slot
		}
	}
	return joints, slots, nil
}

func (ex *exporter) skin(joints []joint) (int, error) {
	gs := &gltf.Skin{}
	offsets := make([]math.Mat4, len(joints))
	for i, j := range joints {
		gs.Joints = append(gs.Joints, j.node)
		offsets[i] = j.offset
	}
	gs.InverseBindMatrices = gltf.Index(ex.addAccessor(ex.b.AddMat4s(offsets), false))
	ex.doc.Skins = append(ex.doc.Skins, gs)
	return len(ex.doc.Skins) - 1, nil
}

func (ex *exporter) primitive(m *scene.Mesh, slots []int) (*gltf.Primitive, error) {
	if !m.HasPositions() {
		return nil, ErrMissingPositions
	}
	n := len(m.Vertices)
	p := &gltf.Primitive{Attributes: map[string]int{}}
	p.Attributes[gltf.POSITION] = ex.addAccessor(ex.b.AddVec3s(m.Vertices, accessor.TargetArray), true)

	if len(m.Normals) == n {
		p.Attributes[gltf.NORMAL] = ex.addAccessor(ex.b.AddVec3s(m.Normals, accessor.TargetArray), false)
	}
	if len(m.Tangents) == n && len(m.Normals) == n {
		t := make([][4]float64, n)
		for i, tan := range m.Tangents {
			w := 1.0
			if len(m.Bitangents) == n && m.Normals[i].Cross(tan).Dot(m.Bitangents[i]) < 0 {
				w = -1
			}
			t[i] = [4]float64{tan.X, tan.Y, tan.Z, w}
		}
		p.Attributes[gltf.TANGENT] = ex.addAccessor(ex.b.AddVec4s(t, accessor.TargetArray), false)
	}
	for c := 0; c < m.NumColorChannels(); c++ {
		if len(m.Colors[c]) != n {
			continue
		}
		p.Attributes["COLOR_"+strconv.Itoa(c)] = ex.addAccessor(ex.b.AddColors(m.Colors[c]), false)
	}
	for t := 0; t < m.NumUVChannels(); t++ {
		if len(m.TextureCoords[t]) != n {
			continue
		}
		uv := make([]math.Vec3, n)
		for i, v := range m.TextureCoords[t] {
			uv[i] = math.Vec3{X: v.X, Y: 1 - v.Y}
		}
		p.Attributes["TEXCOORD_"+strconv.Itoa(t)] = ex.addAccessor(ex.b.AddVec2s(uv, accessor.TargetArray), false)
	}

	mode, indices := meshsplit.Indices(m)
	p.Mode = gltf.PrimitiveMode(mode)
	if len(indices) > 0 {
		p.Indices = gltf.Index(ex.addAccessor(ex.b.AddIndices(indices), false))
	}
	if m.MaterialIndex >= 0 && m.MaterialIndex < len(ex.s.Materials) {
		p.Material = gltf.Index(m.MaterialIndex)
	}

	if len(m.Bones) > 0 {
		ex.skinAttributes(p, m, slots)
	}
	for _, am := range m.AnimMeshes {
		target := map[string]int{}
		if len(am.Vertices) == n {
			target[gltf.POSITION] = ex.addAccessor(ex.b.AddVec3s(delta(am.Vertices, m.Vertices), accessor.TargetArray), true)
		}
		if ex.props.TargetNormals && len(am.Normals) == n && len(m.Normals) == n {
			target[gltf.NORMAL] = ex.addAccessor(ex.b.AddVec3s(delta(am.Normals, m.Normals), accessor.TargetArray), false)
		}
		p.Targets = append(p.Targets, target)
	}
	return p, nil
}

func delta(target, base []math.Vec3) []math.Vec3 {
	out := make([]math.Vec3, len(base))
	for i := range base {
		out[i] = target[i].Sub(base[i])
	}
	return out
}

type influence struct {
	joint  uint32
	weight float64
}

// skinAttributes writes JOINTS_n/WEIGHTS_n sets. Each vertex keeps its
// strongest influences (four unless unlimited bones are requested) with
// weights renormalized to sum to one.
func (ex *exporter) skinAttributes(p *gltf.Primitive, m *scene.Mesh, slots []int) {
	n := len(m.Vertices)
	per := make([][]influence, n)
	for b, bone := range m.Bones {
		for _, w := range bone.Weights {
			if int(w.VertexID) < n && w.Weight > 0 {
				per[w.VertexID] = append(per[w.VertexID], influence{joint: uint32(slots[b]), weight: w.Weight})
			}
		}
	}
	sets := 1
	for i := range per {
		sort.SliceStable(per[i], func(a, b int) bool { return per[i][a].weight > per[i][b].weight })
		if !ex.props.UnlimitedBones && len(per[i]) > maxInfluences {
			per[i] = per[i][:maxInfluences]
		}
		sum := 0.0
		for _, inf := range per[i] {
			sum += inf.weight
		}
		for k := range per[i] {
			per[i][k].weight /= sum
		}
		if s := (len(per[i]) + maxInfluences - 1) / maxInfluences; s > sets {
			sets = s
		}
	}
	for set := 0; set < sets; set++ {
		joints := make([]uint32, 4*n)
		weights := make([]float64, 4*n)
		for v, infl := range per {
			for k := 0; k < maxInfluences; k++ {
				if idx := set*maxInfluences + k; idx < len(infl) {
					joints[4*v+k] = infl[idx].joint
					weights[4*v+k] = infl[idx].weight
				}
			}
		}
		suffix := strconv.Itoa(set)
		p.Attributes["JOINTS_"+suffix] = ex.addAccessor(ex.b.AddUints(joints, accessor.UnsignedShort, accessor.Vec4, accessor.TargetArray), false)
		p.Attributes["WEIGHTS_"+suffix] = ex.addAccessor(ex.b.AddFloats(weights, accessor.Vec4, accessor.TargetArray), false)
	}
}
