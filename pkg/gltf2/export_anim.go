package gltf2

import (
	"github.com/qmuntal/gltf"

	"github.com/Faultbox/assetkit/pkg/accessor"
	"github.com/Faultbox/assetkit/pkg/math"
	"github.com/Faultbox/assetkit/pkg/scene"
)

func (ex *exporter) exportAnimations() error {
	for _, a := range ex.s.Animations {
		tps := a.TicksPerSecond
		if tps <= 0 {
			tps = ticksPerSecond
		}
		ga := &gltf.Animation{Name: a.Name}
		for _, ch := range a.Channels {
			node, ok := ex.s.Nodes.FindByName(ch.NodeName)
			if !ok {
				continue
			}
			if len(ch.PositionKeys) > 0 {
				times, values := vectorKeys(ch.PositionKeys, tps)
				ex.channel(ga, node, gltf.TRSTranslation, times, ex.b.AddVec3s(values, accessor.TargetNone), ch.PositionKeys[0].Interpolation)
			}
			if len(ch.RotationKeys) > 0 {
				times := make([]float64, len(ch.RotationKeys))
				values := make([][4]float64, len(ch.RotationKeys))
				for i, k := range ch.RotationKeys {
					times[i] = k.Time / tps
					values[i] = k.Value.Array()
				}
				interp := ch.RotationKeys[0].Interpolation
				if interp == scene.InterpolationSphericalLinear {
					interp = scene.InterpolationLinear
				}
				ex.channel(ga, node, gltf.TRSRotation, times, ex.b.AddVec4s(values, accessor.TargetNone), interp)
			}
			if len(ch.ScalingKeys) > 0 {
				times, values := vectorKeys(ch.ScalingKeys, tps)
				ex.channel(ga, node, gltf.TRSScale, times, ex.b.AddVec3s(values, accessor.TargetNone), ch.ScalingKeys[0].Interpolation)
			}
		}
		for _, mc := range a.MorphChannels {
			node, ok := ex.s.Nodes.FindByName(mc.Name)
			if !ok || len(mc.Keys) == 0 {
				continue
			}
			targets := 0
			for _, k := range mc.Keys {
				for _, v := range k.Values {
					targets = max(targets, int(v)+1)
				}
			}
			times := make([]float64, len(mc.Keys))
			weights := make([]float64, len(mc.Keys)*targets)
			for i, k := range mc.Keys {
				times[i] = k.Time / tps
				for j, v := range k.Values {
					if j < len(k.Weights) {
						weights[i*targets+int(v)] = k.Weights[j]
					}
				}
			}
			ex.channel(ga, node, gltf.TRSWeights, times, ex.b.AddScalars(weights), scene.InterpolationLinear)
		}
		if len(ga.Channels) > 0 {
			ex.doc.Animations = append(ex.doc.Animations, ga)
		}
	}
	return nil
}

func vectorKeys(keys []scene.VectorKey, tps float64) ([]float64, []math.Vec3) {
	times := make([]float64, len(keys))
	values := make([]math.Vec3, len(keys))
	for i, k := range keys {
		times[i] = k.Time / tps
		values[i] = k.Value
	}
	return times, values
}

// channel adds a sampler and channel. Imported cubic splines keep only
// key values, so they are written as linear.
func (ex *exporter) channel(ga *gltf.Animation, node int, path gltf.TRSProperty, times []float64, output accessor.Encoded, interp scene.Interpolation) {
	if interp == scene.InterpolationCubicSpline {
		interp = scene.InterpolationLinear
	}
	in := ex.addAccessor(ex.b.AddScalars(times), true)
	out := ex.addAccessor(output, false)
	ga.Samplers = append(ga.Samplers, &gltf.AnimationSampler{
		Input:         in,
		Output:        out,
		Interpolation: fromInterpolation(interp),
	})
	ga.Channels = append(ga.Channels, &gltf.AnimationChannel{
		Sampler: len(ga.Samplers) - 1,
		Target:  gltf.AnimationChannelTarget{Node: gltf.Index(node), Path: path},
	})
}
