package gltf2

import (
	"fmt"
	"strings"

	"github.com/qmuntal/gltf"

	"github.com/Faultbox/assetkit/pkg/math"
	"github.com/Faultbox/assetkit/pkg/resolver"
	"github.com/Faultbox/assetkit/pkg/scene"
	"github.com/Faultbox/assetkit/pkg/texture"
)

// importTextures embeds images stored in buffer views or data URIs.
// Images with external URIs stay referenced by path.
func (im *importer) importTextures() error {
	im.imageTextures = make([]int, len(im.doc.Images))
	for i, img := range im.doc.Images {
		im.imageTextures[i] = -1
		var data []byte
		switch {
		case img.BufferView != nil:
			v, err := im.view(*img.BufferView)
			if err != nil {
				return fmt.Errorf("image %d: %w", i, err)
			}
			if v.Buffer < 0 || v.Buffer >= len(im.buffers) || v.ByteOffset+v.ByteLength > len(im.buffers[v.Buffer]) {
				return fmt.Errorf("image %d: %w", i, ErrInvalidReference)
			}
			data = im.buffers[v.Buffer][v.ByteOffset : v.ByteOffset+v.ByteLength]
		case strings.HasPrefix(img.URI, "data:"):
			var err error
			if data, err = resolver.DecodeDataURI(img.URI); err != nil {
				return fmt.Errorf("image %d: %w", i, err)
			}
		default:
			continue
		}
		hint := texture.HintFromMime(img.MimeType)
		if hint == "" {
			hint = texture.HintFromMime(resolver.DataURIMime(img.URI))
		}
		im.imageTextures[i] = len(im.s.Textures)
		im.s.Textures = append(im.s.Textures, *texture.Embedded(img.Name, data, hint))
	}
	return nil
}

// textureRef resolves a glTF texture index to a material slot reference.
func (im *importer) textureRef(idx, texCoord int) (scene.TextureRef, bool) {
	if idx < 0 || idx >= len(im.doc.Textures) {
		return scene.TextureRef{}, false
	}
	tex := im.doc.Textures[idx]
	source := -1
	if tex.Source != nil {
		source = *tex.Source
	} else {
		var webp webpSource
		if ok, err := decodeExtension(tex.Extensions, extTextureWebP, &webp); ok && err == nil {
			source = webp.Source
		}
	}
	if source < 0 || source >= len(im.doc.Images) {
		return scene.TextureRef{}, false
	}
	ref := scene.TextureRef{UVIndex: texCoord, Strength: 1}
	if t := im.imageTextures[source]; t >= 0 {
		ref.Path = scene.EmbeddedRef(t)
	} else {
		ref.Path = im.doc.Images[source].URI
	}
	if tex.Sampler != nil && *tex.Sampler >= 0 && *tex.Sampler < len(im.doc.Samplers) {
		ref.Sampler = toSampler(im.doc.Samplers[*tex.Sampler])
	}
	return ref, true
}

func (im *importer) setTexture(m *scene.Material, slot scene.TextureType, info *gltf.TextureInfo) {
	if info == nil {
		return
	}
	if ref, ok := im.textureRef(info.Index, info.TexCoord); ok {
		m.SetTexture(slot, ref)
	}
}

type specGlossExt struct {
	DiffuseFactor             *[4]float64       `json:"diffuseFactor,omitempty"`
	DiffuseTexture            *gltf.TextureInfo `json:"diffuseTexture,omitempty"`
	SpecularFactor            *[3]float64       `json:"specularFactor,omitempty"`
	GlossinessFactor          *float64          `json:"glossinessFactor,omitempty"`
	SpecularGlossinessTexture *gltf.TextureInfo `json:"specularGlossinessTexture,omitempty"`
}

type emissiveStrengthExt struct {
	EmissiveStrength float64 `json:"emissiveStrength"`
}

// importMaterials converts every material and appends the default
// material used by primitives without one.
func (im *importer) importMaterials() error {
	for i, gm := range im.doc.Materials {
		m, err := im.material(gm)
		if err != nil {
			return fmt.Errorf("material %d: %w", i, err)
		}
		im.s.Materials = append(im.s.Materials, m)
	}
	im.defaultMaterial = len(im.s.Materials)
	im.s.Materials = append(im.s.Materials, scene.DefaultMaterial())
	return nil
}

func (im *importer) material(gm *gltf.Material) (scene.Material, error) {
	m := scene.NewMaterial(gm.Name)
	if pbr := gm.PBRMetallicRoughness; pbr != nil {
		m.BaseColor = color4(pbr.BaseColorFactorOrDefault())
		m.Metallic = pbr.MetallicFactorOrDefault()
		m.Roughness = pbr.RoughnessFactorOrDefault()
		im.setTexture(&m, scene.TextureBaseColor, pbr.BaseColorTexture)
		im.setTexture(&m, scene.TextureDiffuse, pbr.BaseColorTexture)
		im.setTexture(&m, scene.TextureMetalness, pbr.MetallicRoughnessTexture)
		im.setTexture(&m, scene.TextureDiffuseRoughness, pbr.MetallicRoughnessTexture)
	}
	m.Diffuse = m.BaseColor
	m.Opacity = m.BaseColor.A

	if nt := gm.NormalTexture; nt != nil && nt.Index != nil {
		if ref, ok := im.textureRef(*nt.Index, nt.TexCoord); ok {
			ref.Strength = nt.ScaleOrDefault()
			m.SetTexture(scene.TextureNormals, ref)
		}
	}
	if ot := gm.OcclusionTexture; ot != nil && ot.Index != nil {
		if ref, ok := im.textureRef(*ot.Index, ot.TexCoord); ok {
			ref.Strength = ot.StrengthOrDefault()
			m.SetTexture(scene.TextureLightmap, ref)
		}
	}
	im.setTexture(&m, scene.TextureEmissive, gm.EmissiveTexture)
	m.Emissive = math.Color3{R: gm.EmissiveFactor[0], G: gm.EmissiveFactor[1], B: gm.EmissiveFactor[2]}

	m.AlphaMode = alphaModes[gm.AlphaMode]
	m.AlphaCutoff = gm.AlphaCutoffOrDefault()
	m.TwoSided = gm.DoubleSided

	var sg specGlossExt
	ok, err := decodeExtension(gm.Extensions, extSpecGloss, &sg)
	if err != nil {
		return m, fmt.Errorf("%s: %w", extSpecGloss, err)
	}
	if ok {
		m.UseSpecularGlossiness = true
		m.Diffuse = math.White()
		if sg.DiffuseFactor != nil {
			m.Diffuse = color4(*sg.DiffuseFactor)
		}
		m.Specular = math.White()
		if sg.SpecularFactor != nil {
			f := *sg.SpecularFactor
			m.Specular = math.Color4{R: f[0], G: f[1], B: f[2], A: 1}
		}
		m.Glossiness = 1
		if sg.GlossinessFactor != nil {
			m.Glossiness = *sg.GlossinessFactor
		}
		im.setTexture(&m, scene.TextureDiffuse, sg.DiffuseTexture)
		im.setTexture(&m, scene.TextureSpecular, sg.SpecularGlossinessTexture)
	}

	if _, ok := gm.Extensions[extUnlit]; ok {
		m.ShadingModel = scene.ShadingUnlit
	}
	var es emissiveStrengthExt
	if ok, err := decodeExtension(gm.Extensions, extEmissiveStrength, &es); err != nil {
		return m, fmt.Errorf("%s: %w", extEmissiveStrength, err)
	} else if ok {
		m.EmissiveIntensity = es.EmissiveStrength
	}
	return m, nil
}

func color4(c [4]float64) math.Color4 {
	return math.Color4{R: c[0], G: c[1], B: c[2], A: c[3]}
}
