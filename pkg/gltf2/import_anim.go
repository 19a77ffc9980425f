package gltf2

import (
	"fmt"
	"strconv"

	"github.com/qmuntal/gltf"

	"github.com/Faultbox/assetkit/pkg/math"
	"github.com/Faultbox/assetkit/pkg/scene"
)

// ticksPerSecond is the time base of imported animations; glTF keyframe
// times are in seconds.
const ticksPerSecond = 1000.0

// importSkins attaches bones to the submeshes of every skinned node.
func (im *importer) importSkins() error {
	done := make(map[int]bool)
	for src, gn := range im.doc.Nodes {
		if gn.Skin == nil || gn.Mesh == nil {
			continue
		}
		if *gn.Skin < 0 || *gn.Skin >= len(im.doc.Skins) {
			return fmt.Errorf("node %d skin %d: %w", src, *gn.Skin, ErrInvalidReference)
		}
		skin := im.doc.Skins[*gn.Skin]
		span := im.spans[*gn.Mesh]
		for _, mi := range span.Indexes() {
			if done[mi] {
				continue
			}
			done[mi] = true
			if err := im.skinMesh(mi, skin); err != nil {
				return fmt.Errorf("node %d: %w", src, err)
			}
		}
	}
	return nil
}

func (im *importer) skinMesh(mi int, skin *gltf.Skin) error {
	ref := im.prims[mi]
	p := im.doc.Meshes[ref.mesh].Primitives[ref.prim]
	mesh := &im.s.Meshes[mi]

	offsets := make([]math.Mat4, len(skin.Joints))
	for i := range offsets {
		offsets[i] = math.Identity()
	}
	if skin.InverseBindMatrices != nil {
		el, err := im.decode(*skin.InverseBindMatrices, nil)
		if err != nil {
			return fmt.Errorf("inverse bind matrices: %w", err)
		}
		m, err := el.Mat4s()
		if err != nil {
			return fmt.Errorf("inverse bind matrices: %w", err)
		}
		copy(offsets, m)
	}

	bones := make([]scene.Bone, len(skin.Joints))
	for j, joint := range skin.Joints {
		if joint < 0 || joint >= len(im.doc.Nodes) {
			return fmt.Errorf("joint %d: %w", joint, ErrInvalidReference)
		}
		name := im.doc.Nodes[joint].Name
		if name == "" {
			name = "bone_" + strconv.Itoa(j)
		}
		nodeIdx := scene.NoNode
		if a, ok := im.nodeToArena[joint]; ok {
			nodeIdx = a
			name = im.s.Nodes.Arena[a].Name
		}
		bones[j] = scene.Bone{Name: name, NodeIndex: nodeIdx, OffsetMatrix: offsets[j]}
	}

	for set := 0; ; set++ {
		jIdx, okJ := p.Attributes["JOINTS_"+strconv.Itoa(set)]
		wIdx, okW := p.Attributes["WEIGHTS_"+strconv.Itoa(set)]
		if !okJ || !okW {
			break
		}
		jel, err := im.decode(jIdx, ref.remap)
		if err != nil {
			return fmt.Errorf("JOINTS_%d: %w", set, err)
		}
		joints, err := jel.Uints()
		if err != nil {
			return fmt.Errorf("JOINTS_%d: %w", set, err)
		}
		wel, err := im.decode(wIdx, ref.remap)
		if err != nil {
			return fmt.Errorf("WEIGHTS_%d: %w", set, err)
		}
		weights := wel.NormalizedFloats()
		if len(joints) != len(weights) || len(joints) != 4*len(mesh.Vertices) {
			return fmt.Errorf("JOINTS_%d/WEIGHTS_%d size mismatch: %w", set, set, ErrInvalidReference)
		}
		for i, w := range weights {
			if w <= 0 {
				continue
			}
			j := int(joints[i])
			if j >= len(bones) {
				return fmt.Errorf("joint index %d of %d: %w", j, len(bones), ErrInvalidReference)
			}
			bones[j].Weights = append(bones[j].Weights, scene.VertexWeight{VertexID: uint32(i / 4), Weight: w})
		}
	}
	mesh.Bones = bones
	return nil
}

func (im *importer) importAnimations() error {
	for ai, ga := range im.doc.Animations {
		anim, err := im.animation(ga)
		if err != nil {
			return fmt.Errorf("animation %d: %w", ai, err)
		}
		if anim.Name == "" {
			anim.Name = "animation_" + strconv.Itoa(ai)
		}
		im.s.Animations = append(im.s.Animations, anim)
	}
	return nil
}

func (im *importer) animation(ga *gltf.Animation) (scene.Animation, error) {
	anim := scene.Animation{Name: ga.Name, TicksPerSecond: ticksPerSecond}
	channels := make(map[int]int)
	morphs := make(map[int]int)

	for ci, ch := range ga.Channels {
		if ch.Target.Node == nil {
			continue
		}
		arena, ok := im.nodeToArena[*ch.Target.Node]
		if !ok {
			// Node outside the active scene.
			continue
		}
		if ch.Sampler < 0 || ch.Sampler >= len(ga.Samplers) {
			return anim, fmt.Errorf("channel %d sampler %d: %w", ci, ch.Sampler, ErrInvalidReference)
		}
		smp := ga.Samplers[ch.Sampler]
		interp := interpolations[smp.Interpolation]

		in, err := im.decode(smp.Input, nil)
		if err != nil {
			return anim, fmt.Errorf("channel %d input: %w", ci, err)
		}
		times, err := in.Scalars()
		if err != nil {
			return anim, fmt.Errorf("channel %d input: %w", ci, err)
		}
		for i := range times {
			times[i] *= ticksPerSecond
			if times[i] > anim.Duration {
				anim.Duration = times[i]
			}
		}
		out, err := im.decode(smp.Output, nil)
		if err != nil {
			return anim, fmt.Errorf("channel %d output: %w", ci, err)
		}
		name := im.s.Nodes.Arena[arena].Name

		if ch.Target.Path == gltf.TRSWeights {
			i, ok := morphs[arena]
			if !ok {
				i = len(anim.MorphChannels)
				morphs[arena] = i
				anim.MorphChannels = append(anim.MorphChannels, scene.MeshMorphAnim{Name: name})
			}
			keys, err := morphKeys(times, out.Floats(), interp)
			if err != nil {
				return anim, fmt.Errorf("channel %d: %w", ci, err)
			}
			anim.MorphChannels[i].Keys = keys
			continue
		}

		i, ok := channels[arena]
		if !ok {
			i = len(anim.Channels)
			channels[arena] = i
			anim.Channels = append(anim.Channels, scene.NodeAnim{NodeName: name})
		}
		na := &anim.Channels[i]
		switch ch.Target.Path {
		case gltf.TRSTranslation, gltf.TRSScale:
			v, err := out.Vec3s()
			if err != nil {
				return anim, fmt.Errorf("channel %d output: %w", ci, err)
			}
			v, err = keyValues(v, len(times), interp)
			if err != nil {
				return anim, fmt.Errorf("channel %d: %w", ci, err)
			}
			keys := make([]scene.VectorKey, len(times))
			for k := range keys {
				keys[k] = scene.VectorKey{Time: times[k], Value: v[k], Interpolation: interp}
			}
			if ch.Target.Path == gltf.TRSTranslation {
				na.PositionKeys = keys
			} else {
				na.ScalingKeys = keys
			}
		case gltf.TRSRotation:
			q, err := out.Quats()
			if err != nil {
				return anim, fmt.Errorf("channel %d output: %w", ci, err)
			}
			q, err = keyValues(q, len(times), interp)
			if err != nil {
				return anim, fmt.Errorf("channel %d: %w", ci, err)
			}
			rinterp := interp
			if rinterp == scene.InterpolationLinear {
				rinterp = scene.InterpolationSphericalLinear
			}
			keys := make([]scene.QuatKey, len(times))
			for k := range keys {
				keys[k] = scene.QuatKey{Time: times[k], Value: q[k].Normalize(), Interpolation: rinterp}
			}
			na.RotationKeys = keys
		}
	}
	return anim, nil
}

// keyValues returns one value per key. Cubic spline outputs store
// in-tangent, value and out-tangent per key; only the value is kept.
func keyValues[T any](v []T, keys int, interp scene.Interpolation) ([]T, error) {
	if interp == scene.InterpolationCubicSpline {
		if len(v) != 3*keys {
			return nil, fmt.Errorf("%d cubic spline outputs for %d keys: %w", len(v), keys, ErrInvalidReference)
		}
		out := make([]T, keys)
		for i := range out {
			out[i] = v[3*i+1]
		}
		return out, nil
	}
	if len(v) != keys {
		return nil, fmt.Errorf("%d outputs for %d keys: %w", len(v), keys, ErrInvalidReference)
	}
	return v, nil
}

func morphKeys(times, weights []float64, interp scene.Interpolation) ([]scene.MorphKey, error) {
	if len(times) == 0 {
		return nil, nil
	}
	per := len(weights) / len(times)
	if interp == scene.InterpolationCubicSpline {
		per /= 3
	}
	if per == 0 {
		return nil, fmt.Errorf("no morph weights for %d keys: %w", len(times), ErrInvalidReference)
	}
	keys := make([]scene.MorphKey, len(times))
	for k := range keys {
		base := k * per
		if interp == scene.InterpolationCubicSpline {
			base = (3*k + 1) * per
		}
		key := scene.MorphKey{Time: times[k], Values: make([]uint32, per), Weights: make([]float64, per)}
		for j := 0; j < per; j++ {
			key.Values[j] = uint32(j)
			key.Weights[j] = weights[base+j]
		}
		keys[k] = key
	}
	return keys, nil
}
