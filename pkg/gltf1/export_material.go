package gltf1

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/Faultbox/assetkit/pkg/accessor"
	"github.com/Faultbox/assetkit/pkg/math"
	"github.com/Faultbox/assetkit/pkg/naming"
	"github.com/Faultbox/assetkit/pkg/scene"
	"github.com/Faultbox/assetkit/pkg/texture"
)

// exportMaterials writes every material as a KHR_materials_common
// material. Color slots hold either an RGBA array or a texture id.
func (ex *exporter) exportMaterials() error {
	names := naming.NewGenerator()
	for i := range ex.s.Materials {
		m := &ex.s.Materials[i]
		key := names.Next(m.Name, "material")
		gm, err := ex.material(m)
		if err != nil {
			return fmt.Errorf("material %q: %w", m.Name, err)
		}
		ex.materials[i] = key
		ex.doc.Materials.Set(key, gm)
	}
	if ex.doc.Materials.Len() > 0 {
		ex.useExtension(extCommon)
	}
	return nil
}

func technique(m scene.ShadingModel) string {
	switch m {
	case scene.ShadingConstant, scene.ShadingUnlit:
		return "CONSTANT"
	case scene.ShadingGouraud:
		return "LAMBERT"
	case scene.ShadingPhong:
		return "PHONG"
	default:
		return "BLINN"
	}
}

func (ex *exporter) material(m *scene.Material) (*Material, error) {
	values := make(map[string]json.RawMessage)
	set := func(key string, v any) error {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		values[key] = raw
		return nil
	}

	diffuse := m.Diffuse
	if m.ShadingModel == scene.ShadingPBR {
		diffuse = m.BaseColor
	}
	emission := math.Color4{R: m.Emissive.R, G: m.Emissive.G, B: m.Emissive.B, A: 1}
	slots := []struct {
		key   string
		color math.Color4
		types []scene.TextureType
	}{
		{"ambient", m.Ambient, []scene.TextureType{scene.TextureAmbient}},
		{"diffuse", diffuse, []scene.TextureType{scene.TextureDiffuse, scene.TextureBaseColor}},
		{"specular", m.Specular, []scene.TextureType{scene.TextureSpecular}},
		{"emission", emission, []scene.TextureType{scene.TextureEmissive, scene.TextureEmissionColor}},
	}
	for _, sl := range slots {
		var v any = []float64{sl.color.R, sl.color.G, sl.color.B, sl.color.A}
		for _, t := range sl.types {
			ref, ok := m.Texture(t)
			if !ok {
				continue
			}
			id, err := ex.texture(ref)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", sl.key, err)
			}
			if id != "" {
				v = id
				break
			}
		}
		if err := set(sl.key, v); err != nil {
			return nil, err
		}
	}
	if m.Shininess > 0 {
		if err := set("shininess", m.Shininess); err != nil {
			return nil, err
		}
	}
	transparent := m.Opacity != 1
	if err := set("transparency", m.Opacity); err != nil {
		return nil, err
	}
	return &Material{
		Name: m.Name,
		Extensions: &MaterialExtensions{Common: &CommonMaterial{
			Technique:   technique(m.ShadingModel),
			DoubleSided: m.TwoSided,
			Transparent: transparent,
			Values:      values,
		}},
	}, nil
}

// texture returns the texture id for a material slot, writing the image,
// sampler and texture on first use. Unresolvable references yield "".
func (ex *exporter) texture(ref scene.TextureRef) (string, error) {
	if ref.Path == "" {
		return "", nil
	}
	if id, ok := ex.textures[ref.Path]; ok {
		return id, nil
	}
	img := &Image{URI: ref.Path}
	if idx, ok := scene.ParseEmbeddedRef(ref.Path); ok {
		if idx >= len(ex.s.Textures) {
			return "", nil
		}
		var err error
		if img, err = ex.image(&ex.s.Textures[idx]); err != nil {
			return "", fmt.Errorf("texture %d: %w", idx, err)
		}
	}
	imageID := ex.ids.Next("image", "image")
	ex.doc.Images.Set(imageID, img)

	samplerID := ex.ids.Next("sampler", "sampler")
	ex.doc.Samplers.Set(samplerID, &Sampler{
		MagFilter: ref.Sampler.MagFilter,
		MinFilter: ref.Sampler.MinFilter,
		WrapS:     fromWrap(ref.Sampler.WrapS),
		WrapT:     fromWrap(ref.Sampler.WrapT),
	})

	id := ex.ids.Next("texture", "texture")
	ex.doc.Textures.Set(id, &Texture{
		Sampler: samplerID,
		Source:  imageID,
		Format:  glRGBA,
		Target:  glTexture2D,
		Type:    glUnsignedByte,
	})
	ex.textures[ref.Path] = id
	return id, nil
}

// OpenGL enums of 1.0 texture objects.
const (
	glRGBA         = 6408
	glTexture2D    = 3553
	glUnsignedByte = 5121
)

// image stores an embedded texture as a data URI, or as a container body
// view in binary output.
func (ex *exporter) image(t *scene.Texture) (*Image, error) {
	data, ext, err := texture.Portable(t)
	if err != nil {
		return nil, err
	}
	mime := texture.MimeType(ext)
	img := &Image{Name: t.Filename}
	if !ex.binary {
		img.URI = "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
		return img, nil
	}
	w, h, err := texture.Size(data)
	if err != nil {
		return nil, err
	}
	vi := ex.b.AddView(data, 0, accessor.TargetNone)
	img.URI = "data:,"
	img.Extensions = &ImageExtensions{Binary: &BinaryImage{
		BufferView: ex.viewID(vi),
		MimeType:   mime,
		Width:      w,
		Height:     h,
	}}
	return img, nil
}
