package gltf2

import (
	"fmt"

	"github.com/qmuntal/gltf"

	"github.com/Faultbox/assetkit/pkg/math"
	"github.com/Faultbox/assetkit/pkg/meshsplit"
	"github.com/Faultbox/assetkit/pkg/scene"
)

// importMeshes splits every glTF mesh into one submesh per primitive and
// records the resulting span.
func (im *importer) importMeshes() error {
	im.spans = make([]scene.IndexSpan, len(im.doc.Meshes))
	for mi, gm := range im.doc.Meshes {
		start := len(im.s.Meshes)
		for pi, p := range gm.Primitives {
			mesh, remap, err := im.primitive(gm, pi, p)
			if err != nil {
				return fmt.Errorf("mesh %d primitive %d: %w", mi, pi, err)
			}
			if len(gm.Primitives) > 1 {
				mesh.Name = fmt.Sprintf("%s-%d", gm.Name, pi)
			}
			im.s.Meshes = append(im.s.Meshes, mesh)
			im.prims = append(im.prims, primRef{mesh: mi, prim: pi, remap: remap})
		}
		im.spans[mi] = scene.IndexSpan{Start: uint32(start), Count: uint32(len(im.s.Meshes) - start)}
	}
	return nil
}

func (im *importer) primitive(gm *gltf.Mesh, pi int, p *gltf.Primitive) (scene.Mesh, []uint32, error) {
	mesh := scene.Mesh{Name: gm.Name, MaterialIndex: im.defaultMaterial}
	if p.Material != nil {
		if *p.Material < 0 || *p.Material >= len(im.doc.Materials) {
			return mesh, nil, fmt.Errorf("material %d: %w", *p.Material, ErrInvalidReference)
		}
		mesh.MaterialIndex = *p.Material
	}

	posIdx, ok := p.Attributes[gltf.POSITION]
	if !ok {
		return mesh, nil, ErrMissingPositions
	}
	posAcc, err := im.accessor(posIdx)
	if err != nil {
		return mesh, nil, err
	}
	vertexCount := uint32(posAcc.Count)

	var indices []uint32
	if p.Indices != nil {
		el, err := im.decode(*p.Indices, nil)
		if err != nil {
			return mesh, nil, fmt.Errorf("indices: %w", err)
		}
		if indices, err = el.Uints(); err != nil {
			return mesh, nil, fmt.Errorf("indices: %w", err)
		}
	} else {
		indices = meshsplit.Sequential(vertexCount)
	}

	faces, prim := meshsplit.Faces(meshsplit.Mode(p.Mode), indices, vertexCount)
	mesh.PrimitiveTypes = prim
	var remap []uint32
	mesh.Faces, remap = meshsplit.Compact(faces)

	if err := im.attributes(&mesh, p, remap); err != nil {
		return mesh, nil, err
	}
	if err := im.morphTargets(&mesh, gm, p, remap); err != nil {
		return mesh, nil, err
	}
	mesh.UpdateAABB()
	return mesh, remap, nil
}

func (im *importer) attributes(mesh *scene.Mesh, p *gltf.Primitive, remap []uint32) error {
	pos, err := im.decode(p.Attributes[gltf.POSITION], remap)
	if err != nil {
		return fmt.Errorf("POSITION: %w", err)
	}
	if mesh.Vertices, err = pos.Vec3s(); err != nil {
		return fmt.Errorf("POSITION: %w", err)
	}
	n := len(mesh.Vertices)

	if idx, ok := p.Attributes[gltf.NORMAL]; ok {
		el, err := im.decode(idx, remap)
		if err != nil {
			return fmt.Errorf("NORMAL: %w", err)
		}
		normals, err := el.Vec3s()
		if err != nil {
			return fmt.Errorf("NORMAL: %w", err)
		}
		if len(normals) == n {
			mesh.Normals = normals
		} else {
			im.s.Warnf("mesh %q: ignoring %d normals for %d vertices", mesh.Name, len(normals), n)
		}
	}

	if idx, ok := p.Attributes[gltf.TANGENT]; ok {
		el, err := im.decode(idx, remap)
		if err != nil {
			return fmt.Errorf("TANGENT: %w", err)
		}
		tangents, err := el.Vec4s()
		if err != nil {
			return fmt.Errorf("TANGENT: %w", err)
		}
		if len(tangents) == n {
			mesh.Tangents = make([]math.Vec3, n)
			for i, t := range tangents {
				mesh.Tangents[i] = math.Vec3{X: t[0], Y: t[1], Z: t[2]}
			}
			if mesh.Normals != nil {
				mesh.Bitangents = make([]math.Vec3, n)
				for i, t := range tangents {
					mesh.Bitangents[i] = mesh.Normals[i].Cross(mesh.Tangents[i]).Scale(t[3])
				}
			}
		} else {
			im.s.Warnf("mesh %q: ignoring %d tangents for %d vertices", mesh.Name, len(tangents), n)
		}
	}

	for c := 0; c < scene.MaxColorSets; c++ {
		idx, ok := p.Attributes[fmt.Sprintf("COLOR_%d", c)]
		if !ok {
			break
		}
		el, err := im.decode(idx, remap)
		if err != nil {
			return fmt.Errorf("COLOR_%d: %w", c, err)
		}
		if mesh.Colors[c], err = el.Colors(); err != nil {
			return fmt.Errorf("COLOR_%d: %w", c, err)
		}
	}

	for t := 0; t < scene.MaxTextureCoords; t++ {
		idx, ok := p.Attributes[fmt.Sprintf("TEXCOORD_%d", t)]
		if !ok {
			break
		}
		el, err := im.decode(idx, remap)
		if err != nil {
			return fmt.Errorf("TEXCOORD_%d: %w", t, err)
		}
		uv, comps, err := el.TexCoords()
		if err != nil {
			return fmt.Errorf("TEXCOORD_%d: %w", t, err)
		}
		for i := range uv {
			uv[i].Y = 1 - uv[i].Y
		}
		mesh.TextureCoords[t] = uv
		mesh.NumUVComponents[t] = comps
	}
	return nil
}

// morphTargets stores each target as absolute attribute values.
func (im *importer) morphTargets(mesh *scene.Mesh, gm *gltf.Mesh, p *gltf.Primitive, remap []uint32) error {
	if len(p.Targets) == 0 {
		return nil
	}
	mesh.MorphMethod = scene.MorphNormalized
	for ti, target := range p.Targets {
		am := scene.AnimMesh{Name: fmt.Sprintf("%s_target_%d", gm.Name, ti)}
		if ti < len(gm.Weights) {
			am.Weight = gm.Weights[ti]
		}
		var err error
		if am.Vertices, err = im.targetDelta(target, gltf.POSITION, remap, mesh.Vertices); err != nil {
			return fmt.Errorf("target %d: %w", ti, err)
		}
		if am.Normals, err = im.targetDelta(target, gltf.NORMAL, remap, mesh.Normals); err != nil {
			return fmt.Errorf("target %d: %w", ti, err)
		}
		if am.Tangents, err = im.targetDelta(target, gltf.TANGENT, remap, mesh.Tangents); err != nil {
			return fmt.Errorf("target %d: %w", ti, err)
		}
		mesh.AnimMeshes = append(mesh.AnimMeshes, am)
	}
	return nil
}

func (im *importer) targetDelta(target map[string]int, attr string, remap []uint32, base []math.Vec3) ([]math.Vec3, error) {
	idx, ok := target[attr]
	if !ok || base == nil {
		return nil, nil
	}
	el, err := im.decode(idx, remap)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", attr, err)
	}
	delta, err := el.Vec3s()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", attr, err)
	}
	if len(delta) != len(base) {
		return nil, fmt.Errorf("%s: %d deltas for %d vertices: %w", attr, len(delta), len(base), ErrInvalidReference)
	}
	out := make([]math.Vec3, len(base))
	for i := range base {
		out[i] = base[i].Add(delta[i])
	}
	return out, nil
}
