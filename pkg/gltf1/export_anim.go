package gltf1

import (
	"strconv"

	"github.com/Faultbox/assetkit/pkg/accessor"
	"github.com/Faultbox/assetkit/pkg/math"
	"github.com/Faultbox/assetkit/pkg/naming"
	"github.com/Faultbox/assetkit/pkg/scene"
)

// exportAnimations writes one 1.0 animation per node channel. The three
// paths share a TIME parameter, so every path is resampled to the longest
// key list.
func (ex *exporter) exportAnimations() error {
	names := naming.NewGenerator()
	for _, a := range ex.s.Animations {
		tps := a.TicksPerSecond
		if tps <= 0 {
			tps = ticksPerSecond
		}
		base := a.Name
		if base == "" {
			base = "anim"
		}
		for j, ch := range a.Channels {
			node, ok := ex.s.Nodes.FindByName(ch.NodeName)
			if !ok {
				continue
			}
			num := max(len(ch.PositionKeys), len(ch.RotationKeys), len(ch.ScalingKeys))
			if num == 0 {
				continue
			}
			name := names.Next(base+"_"+strconv.Itoa(j), "anim")
			ga := &Animation{
				Name:       name,
				Parameters: make(map[string]string),
				Samplers:   make(map[string]*AnimSampler),
			}

			times := make([]float64, num)
			for i := range times {
				switch {
				case len(ch.PositionKeys) == num:
					times[i] = ch.PositionKeys[i].Time
				case len(ch.RotationKeys) == num:
					times[i] = ch.RotationKeys[i].Time
				default:
					times[i] = ch.ScalingKeys[i].Time
				}
				times[i] /= tps
			}
			ga.Parameters["TIME"] = ex.addAccessor(ex.b.AddScalars(times))

			if len(ch.PositionKeys) > 0 {
				ex.vectorChannel(ga, name, ex.nodeKeys[node], "translation", ch.PositionKeys, num)
			}
			if len(ch.RotationKeys) > 0 {
				values := make([][4]float64, num)
				for i := range values {
					values[i] = ch.RotationKeys[frame(i, len(ch.RotationKeys), num)].Value.Array()
				}
				ex.channel(ga, name, ex.nodeKeys[node], "rotation", ex.b.AddVec4s(values, accessor.TargetNone))
			}
			if len(ch.ScalingKeys) > 0 {
				ex.vectorChannel(ga, name, ex.nodeKeys[node], "scale", ch.ScalingKeys, num)
			}
			ex.doc.Animations.Set(name, ga)
		}
	}
	return nil
}

// frame maps output frame i of num onto a key list of length n.
func frame(i, n, num int) int {
	return i * n / num
}

func (ex *exporter) vectorChannel(ga *Animation, name, target, path string, keys []scene.VectorKey, num int) {
	values := make([]math.Vec3, num)
	for i := range values {
		values[i] = keys[frame(i, len(keys), num)].Value
	}
	ex.channel(ga, name, target, path, ex.b.AddVec3s(values, accessor.TargetNone))
}

// channel binds an output parameter named after path to the node key.
func (ex *exporter) channel(ga *Animation, name, target, path string, output accessor.Encoded) {
	ga.Parameters[path] = ex.addAccessor(output)
	sampler := name + "_" + path
	ga.Samplers[sampler] = &AnimSampler{Input: "TIME", Interpolation: "LINEAR", Output: path}
	ga.Channels = append(ga.Channels, &Channel{
		Sampler: sampler,
		Target:  ChannelTarget{ID: target, Path: path},
	})
}
