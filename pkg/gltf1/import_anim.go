package gltf1

import (
	"fmt"

	"github.com/Faultbox/assetkit/pkg/scene"
)

// ticksPerSecond is the time base of imported animations; keyframe times
// are in seconds.
const ticksPerSecond = 1000.0

// importAnimations reads every animation. Sampler inputs and outputs name
// animation parameters, which in turn name accessors.
func (im *importer) importAnimations() error {
	for id, ga := range im.doc.Animations.All() {
		if ga == nil {
			return fmt.Errorf("animation %q: %w", id, ErrInvalidReference)
		}
		anim, err := im.animation(ga)
		if err != nil {
			return fmt.Errorf("animation %q: %w", id, err)
		}
		if anim.Name == "" {
			anim.Name = id
		}
		im.s.Animations = append(im.s.Animations, anim)
	}
	return nil
}

func animParameter(ga *Animation, name string) (string, error) {
	acc, ok := ga.Parameters[name]
	if !ok {
		return "", fmt.Errorf("parameter %q: %w", name, ErrInvalidReference)
	}
	return acc, nil
}

func (im *importer) animation(ga *Animation) (scene.Animation, error) {
	anim := scene.Animation{Name: ga.Name, TicksPerSecond: ticksPerSecond}
	channels := make(map[int]int)

	for ci, ch := range ga.Channels {
		if ch == nil {
			continue
		}
		arena, ok := im.nodeToArena[ch.Target.ID]
		if !ok {
			// Node outside the active scene.
			continue
		}
		smp, ok := ga.Samplers[ch.Sampler]
		if !ok || smp == nil {
			return anim, fmt.Errorf("channel %d sampler %q: %w", ci, ch.Sampler, ErrInvalidReference)
		}
		interp := scene.InterpolationLinear
		if smp.Interpolation == "STEP" {
			interp = scene.InterpolationStep
		}

		inID, err := animParameter(ga, smp.Input)
		if err != nil {
			return anim, fmt.Errorf("channel %d input: %w", ci, err)
		}
		in, err := im.decode(inID, nil)
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
		outID, err := animParameter(ga, smp.Output)
		if err != nil {
			return anim, fmt.Errorf("channel %d output: %w", ci, err)
		}
		out, err := im.decode(outID, nil)
		if err != nil {
			return anim, fmt.Errorf("channel %d output: %w", ci, err)
		}

		i, ok := channels[arena]
		if !ok {
			i = len(anim.Channels)
			channels[arena] = i
			anim.Channels = append(anim.Channels, scene.NodeAnim{NodeName: im.s.Nodes.Arena[arena].Name})
		}
		na := &anim.Channels[i]
		switch ch.Target.Path {
		case "translation", "scale":
			v, err := out.Vec3s()
			if err != nil {
				return anim, fmt.Errorf("channel %d output: %w", ci, err)
			}
			if len(v) != len(times) {
				return anim, fmt.Errorf("channel %d: %d outputs for %d keys: %w", ci, len(v), len(times), ErrInvalidReference)
			}
			keys := make([]scene.VectorKey, len(times))
			for k := range keys {
				keys[k] = scene.VectorKey{Time: times[k], Value: v[k], Interpolation: interp}
			}
			if ch.Target.Path == "translation" {
				na.PositionKeys = keys
			} else {
				na.ScalingKeys = keys
			}
		case "rotation":
			q, err := out.Quats()
			if err != nil {
				return anim, fmt.Errorf("channel %d output: %w", ci, err)
			}
			if len(q) != len(times) {
				return anim, fmt.Errorf("channel %d: %d outputs for %d keys: %w", ci, len(q), len(times), ErrInvalidReference)
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
		default:
			return anim, fmt.Errorf("channel %d: unknown path %q", ci, ch.Target.Path)
		}
	}
	return anim, nil
}
