package gltf1

import (
	"fmt"
	"strconv"

	"github.com/Faultbox/assetkit/pkg/math"
	"github.com/Faultbox/assetkit/pkg/meshsplit"
	"github.com/Faultbox/assetkit/pkg/scene"
)

// primRef records the source primitive of a submesh.
type primRef struct {
	mesh  string
	prim  int
	remap []uint32
}

// importMeshes splits every mesh into one submesh per primitive and
// records the span under the mesh id.
func (im *importer) importMeshes() error {
	for id, gm := range im.doc.Meshes.All() {
		if gm == nil {
			return fmt.Errorf("mesh %q: %w", id, ErrInvalidReference)
		}
		name := gm.Name
		if name == "" {
			name = id
		}
		parts := make([]scene.Mesh, 0, len(gm.Primitives))
		for pi, p := range gm.Primitives {
			mesh, remap, err := im.primitive(name, p)
			if err != nil {
				return fmt.Errorf("mesh %q primitive %d: %w", id, pi, err)
			}
			if len(gm.Primitives) > 1 {
				mesh.Name = name + "-" + strconv.Itoa(pi)
			}
			parts = append(parts, mesh)
			im.prims = append(im.prims, primRef{mesh: id, prim: pi, remap: remap})
		}
		var span scene.IndexSpan
		im.s.Meshes, span = meshsplit.Append(im.s.Meshes, parts...)
		im.spans[id] = span
	}
	return nil
}

func (im *importer) primitive(name string, p *Primitive) (scene.Mesh, []uint32, error) {
	mesh := scene.Mesh{Name: name, MaterialIndex: im.defaultMaterial}
	if p == nil {
		return mesh, nil, ErrInvalidReference
	}
	if p.Material != "" {
		mi, ok := im.materials[p.Material]
		if !ok {
			return mesh, nil, fmt.Errorf("material %q: %w", p.Material, ErrInvalidReference)
		}
		mesh.MaterialIndex = mi
	}

	posID, ok := p.Attributes["POSITION"]
	if !ok {
		return mesh, nil, ErrMissingPositions
	}
	posAcc, err := im.accessor(posID)
	if err != nil {
		return mesh, nil, err
	}
	vertexCount := uint32(posAcc.Count)

	var indices []uint32
	if p.Indices != "" {
		el, err := im.decode(p.Indices, nil)
		if err != nil {
			return mesh, nil, fmt.Errorf("indices: %w", err)
		}
		if indices, err = el.Uints(); err != nil {
			return mesh, nil, fmt.Errorf("indices: %w", err)
		}
	} else {
		indices = meshsplit.Sequential(vertexCount)
	}

	faces, prim := meshsplit.Faces(meshsplit.Mode(p.ModeOrDefault()), indices, vertexCount)
	mesh.PrimitiveTypes = prim
	var remap []uint32
	mesh.Faces, remap = meshsplit.Compact(faces)

	if err := im.attributes(&mesh, p, remap); err != nil {
		return mesh, nil, err
	}
	mesh.UpdateAABB()
	return mesh, remap, nil
}

func (im *importer) vec3Attribute(mesh *scene.Mesh, id, attr string, remap []uint32) ([]math.Vec3, error) {
	el, err := im.decode(id, remap)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", attr, err)
	}
	v, err := el.Vec3s()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", attr, err)
	}
	if mesh.Vertices != nil && len(v) != len(mesh.Vertices) {
		im.s.Warnf("mesh %q: ignoring %d %s values for %d vertices", mesh.Name, len(v), attr, len(mesh.Vertices))
		return nil, nil
	}
	return v, nil
}

func (im *importer) attributes(mesh *scene.Mesh, p *Primitive, remap []uint32) error {
	var err error
	if mesh.Vertices, err = im.vec3Attribute(mesh, p.Attributes["POSITION"], "POSITION", remap); err != nil {
		return err
	}
	n := len(mesh.Vertices)
	if id, ok := p.Attributes["NORMAL"]; ok {
		if mesh.Normals, err = im.vec3Attribute(mesh, id, "NORMAL", remap); err != nil {
			return err
		}
	}

	for c := 0; c < scene.MaxColorSets; c++ {
		id, ok := p.Attributes["COLOR_"+strconv.Itoa(c)]
		if !ok {
			break
		}
		el, err := im.decode(id, remap)
		if err != nil {
			return fmt.Errorf("COLOR_%d: %w", c, err)
		}
		if mesh.Colors[c], err = el.Colors(); err != nil {
			return fmt.Errorf("COLOR_%d: %w", c, err)
		}
	}

	for t := 0; t < scene.MaxTextureCoords; t++ {
		id, ok := p.Attributes["TEXCOORD_"+strconv.Itoa(t)]
		if !ok {
			break
		}
		el, err := im.decode(id, remap)
		if err != nil {
			return fmt.Errorf("TEXCOORD_%d: %w", t, err)
		}
		uv, comps, err := el.TexCoords()
		if err != nil {
			return fmt.Errorf("TEXCOORD_%d: %w", t, err)
		}
		if len(uv) != n {
			im.s.Warnf("mesh %q: ignoring %d TEXCOORD_%d values for %d vertices", mesh.Name, len(uv), t, n)
			break
		}
		for i := range uv {
			uv[i].Y = 1 - uv[i].Y
		}
		mesh.TextureCoords[t] = uv
		mesh.NumUVComponents[t] = comps
	}
	return nil
}

// importSkins turns JOINT/WEIGHT attributes of skinned nodes into bones.
// Joints are matched to nodes through their jointName.
func (im *importer) importSkins() error {
	jointNodes := make(map[string]int)
	for id, n := range im.doc.Nodes.All() {
		if n != nil && n.JointName != "" {
			if idx, ok := im.nodeToArena[id]; ok {
				jointNodes[n.JointName] = idx
			}
		}
	}
	for id, n := range im.doc.Nodes.All() {
		if n == nil || n.Skin == "" || len(n.Meshes) == 0 {
			continue
		}
		skin, ok := im.doc.Skins.Get(n.Skin)
		if !ok || skin == nil {
			return fmt.Errorf("node %q skin %q: %w", id, n.Skin, ErrInvalidReference)
		}
		var ibm []math.Mat4
		if skin.InverseBindMatrices != "" {
			el, err := im.decode(skin.InverseBindMatrices, nil)
			if err != nil {
				return fmt.Errorf("skin %q: %w", n.Skin, err)
			}
			if ibm, err = el.Mat4s(); err != nil {
				return fmt.Errorf("skin %q: %w", n.Skin, err)
			}
		}
		for _, meshID := range n.Meshes {
			span := im.spans[meshID]
			for _, mi := range span.Indexes() {
				if err := im.skinMesh(&im.s.Meshes[mi], im.prims[mi], skin, ibm, jointNodes); err != nil {
					return fmt.Errorf("skin %q mesh %q: %w", n.Skin, meshID, err)
				}
			}
		}
	}
	return nil
}

func (im *importer) skinMesh(mesh *scene.Mesh, ref primRef, skin *Skin, ibm []math.Mat4, jointNodes map[string]int) error {
	if len(mesh.Bones) > 0 {
		return nil
	}
	gm, _ := im.doc.Meshes.Get(ref.mesh)
	p := gm.Primitives[ref.prim]
	jointID, okJ := p.Attributes["JOINT"]
	weightID, okW := p.Attributes["WEIGHT"]
	if !okJ || !okW {
		return nil
	}
	jel, err := im.decode(jointID, ref.remap)
	if err != nil {
		return fmt.Errorf("JOINT: %w", err)
	}
	joints, err := jel.Vec4s()
	if err != nil {
		return fmt.Errorf("JOINT: %w", err)
	}
	wel, err := im.decode(weightID, ref.remap)
	if err != nil {
		return fmt.Errorf("WEIGHT: %w", err)
	}
	weights, err := wel.Vec4s()
	if err != nil {
		return fmt.Errorf("WEIGHT: %w", err)
	}

	bones := make([]scene.Bone, len(skin.JointNames))
	for i, jn := range skin.JointNames {
		bones[i] = scene.Bone{Name: jn, NodeIndex: scene.NoNode, OffsetMatrix: math.Identity()}
		if idx, ok := jointNodes[jn]; ok {
			bones[i].NodeIndex = idx
			bones[i].Name = im.s.Nodes.Arena[idx].Name
		}
		if i < len(ibm) {
			bones[i].OffsetMatrix = ibm[i]
		}
	}
	for v := range joints {
		if v >= len(weights) {
			break
		}
		for k := 0; k < 4; k++ {
			w := weights[v][k]
			j := int(joints[v][k])
			if w <= 0 || j < 0 || j >= len(bones) {
				continue
			}
			bones[j].Weights = append(bones[j].Weights, scene.VertexWeight{VertexID: uint32(v), Weight: w})
		}
	}
	mesh.Bones = bones
	return nil
}
