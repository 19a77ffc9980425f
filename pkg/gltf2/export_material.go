package gltf2

import (
	"fmt"
	"path/filepath"

	"github.com/qmuntal/gltf"

	"github.com/Faultbox/assetkit/pkg/accessor"
	"github.com/Faultbox/assetkit/pkg/assetio"
	"github.com/Faultbox/assetkit/pkg/scene"
	"github.com/Faultbox/assetkit/pkg/texture"
)

const extTextureWebP = "EXT_texture_webp"

type webpSource struct {
	Source int `json:"source"`
}

// exportTextures emits one image and texture per embedded texture, in
// order, so "*N" references map to texture N.
func (ex *exporter) exportTextures() error {
	for i := range ex.s.Textures {
		t := &ex.s.Textures[i]
		data, ext, err := texture.Portable(t)
		if err != nil {
			return fmt.Errorf("texture %d: %w", i, err)
		}
		img := &gltf.Image{Name: t.Filename, MimeType: texture.MimeType(ext)}
		if ex.binary {
			img.BufferView = gltf.Index(ex.b.AddView(data, 0, accessor.TargetNone))
		} else {
			named := *t
			named.FormatHint = ext
			img.URI = scene.TextureFilename(&named, i)
			if err := assetio.WriteAll(ex.w, filepath.Join(ex.dir, img.URI), data); err != nil {
				return fmt.Errorf("texture %d: %w", i, err)
			}
		}
		ex.doc.Images = append(ex.doc.Images, img)

		gt := &gltf.Texture{}
		if ext == "webp" {
			gt.Extensions = gltf.Extensions{extTextureWebP: webpSource{Source: i}}
			ex.useExtension(extTextureWebP)
		} else {
			gt.Source = gltf.Index(i)
		}
		ex.doc.Textures = append(ex.doc.Textures, gt)
	}
	return nil
}

// texture returns the glTF texture index for a material slot reference.
func (ex *exporter) texture(ref scene.TextureRef) (int, bool) {
	idx, ok := scene.ParseEmbeddedRef(ref.Path)
	if ok && idx >= len(ex.s.Textures) {
		return 0, false
	}
	if !ok {
		if ref.Path == "" {
			return 0, false
		}
		if idx, ok = ex.external[ref.Path]; !ok {
			ex.doc.Images = append(ex.doc.Images, &gltf.Image{URI: ref.Path})
			ex.doc.Textures = append(ex.doc.Textures, &gltf.Texture{Source: gltf.Index(len(ex.doc.Images) - 1)})
			idx = len(ex.doc.Textures) - 1
			ex.external[ref.Path] = idx
		}
	}
	if ref.Sampler != (scene.Sampler{}) && ex.doc.Textures[idx].Sampler == nil {
		si, ok := ex.samplers[ref.Sampler]
		if !ok {
			ex.doc.Samplers = append(ex.doc.Samplers, fromSampler(ref.Sampler))
			si = len(ex.doc.Samplers) - 1
			ex.samplers[ref.Sampler] = si
		}
		ex.doc.Textures[idx].Sampler = gltf.Index(si)
	}
	return idx, true
}

// textureInfo returns the first populated slot among types.
func (ex *exporter) textureInfo(m *scene.Material, types ...scene.TextureType) (*gltf.TextureInfo, scene.TextureRef) {
	for _, t := range types {
		ref, ok := m.Texture(t)
		if !ok {
			continue
		}
		if idx, ok := ex.texture(ref); ok {
			return &gltf.TextureInfo{Index: idx, TexCoord: ref.UVIndex}, ref
		}
	}
	return nil, scene.TextureRef{}
}

func (ex *exporter) exportMaterials() error {
	for i := range ex.s.Materials {
		ex.doc.Materials = append(ex.doc.Materials, ex.material(&ex.s.Materials[i]))
	}
	return nil
}

func (ex *exporter) material(m *scene.Material) *gltf.Material {
	base := m.BaseColor
	if m.UseSpecularGlossiness {
		base = m.Diffuse
	}
	gm := &gltf.Material{
		Name: m.Name,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &[4]float64{base.R, base.G, base.B, base.A},
			MetallicFactor:  gltf.Float(m.Metallic),
			RoughnessFactor: gltf.Float(m.Roughness),
		},
		EmissiveFactor: [3]float64{m.Emissive.R, m.Emissive.G, m.Emissive.B},
		AlphaMode:      fromAlphaMode(m.AlphaMode),
		DoubleSided:    m.TwoSided,
	}
	if m.AlphaMode == scene.AlphaMask {
		gm.AlphaCutoff = gltf.Float(m.AlphaCutoff)
	}

	pbr := gm.PBRMetallicRoughness
	pbr.BaseColorTexture, _ = ex.textureInfo(m, scene.TextureBaseColor, scene.TextureDiffuse)
	pbr.MetallicRoughnessTexture, _ = ex.textureInfo(m, scene.TextureMetalness, scene.TextureDiffuseRoughness)
	if info, ref := ex.textureInfo(m, scene.TextureNormals, scene.TextureNormalCamera); info != nil {
		gm.NormalTexture = &gltf.NormalTexture{Index: gltf.Index(info.Index), TexCoord: info.TexCoord, Scale: gltf.Float(ref.Strength)}
	}
	if info, ref := ex.textureInfo(m, scene.TextureLightmap, scene.TextureAmbientOcclusion); info != nil {
		gm.OcclusionTexture = &gltf.OcclusionTexture{Index: gltf.Index(info.Index), TexCoord: info.TexCoord, Strength: gltf.Float(ref.Strength)}
	}
	gm.EmissiveTexture, _ = ex.textureInfo(m, scene.TextureEmissive, scene.TextureEmissionColor)

	exts := gltf.Extensions{}
	if ex.props.SpecularGlossiness {
		sg := specGlossExt{
			DiffuseFactor:  &[4]float64{base.R, base.G, base.B, base.A},
			SpecularFactor: &[3]float64{m.Specular.R, m.Specular.G, m.Specular.B},
		}
		gloss := m.Glossiness
		if !m.UseSpecularGlossiness {
			gloss = 1 - m.Roughness
		}
		sg.GlossinessFactor = gltf.Float(gloss)
		sg.DiffuseTexture, _ = ex.textureInfo(m, scene.TextureDiffuse, scene.TextureBaseColor)
		sg.SpecularGlossinessTexture, _ = ex.textureInfo(m, scene.TextureSpecular)
		exts[extSpecGloss] = sg
		ex.useExtension(extSpecGloss)
	}
	if m.ShadingModel == scene.ShadingUnlit {
		exts[extUnlit] = struct{}{}
		ex.useExtension(extUnlit)
	}
	if m.EmissiveIntensity != 1 && m.EmissiveIntensity > 0 {
		exts[extEmissiveStrength] = emissiveStrengthExt{EmissiveStrength: m.EmissiveIntensity}
		ex.useExtension(extEmissiveStrength)
	}
	if len(exts) > 0 {
		gm.Extensions = exts
	}
	return gm
}
