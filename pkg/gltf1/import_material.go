package gltf1

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Faultbox/assetkit/pkg/math"
	"github.com/Faultbox/assetkit/pkg/resolver"
	"github.com/Faultbox/assetkit/pkg/scene"
	"github.com/Faultbox/assetkit/pkg/texture"
)

// importTextures embeds images stored in the container body or in data
// URIs. Images with external URIs stay referenced by path.
func (im *importer) importTextures() error {
	for id, img := range im.doc.Images.All() {
		if img == nil {
			return fmt.Errorf("image %q: %w", id, ErrInvalidReference)
		}
		var (
			data []byte
			hint string
			err  error
		)
		switch {
		case img.Extensions != nil && img.Extensions.Binary != nil:
			bi := img.Extensions.Binary
			if data, err = im.viewBytes(bi.BufferView); err != nil {
				return fmt.Errorf("image %q: %w", id, err)
			}
			hint = texture.HintFromMime(bi.MimeType)
		case strings.HasPrefix(img.URI, "data:"):
			if data, err = resolver.DecodeDataURI(img.URI); err != nil {
				return fmt.Errorf("image %q: %w", id, err)
			}
			hint = texture.HintFromMime(resolver.DataURIMime(img.URI))
		default:
			continue
		}
		name := img.Name
		if name == "" {
			name = id
		}
		im.imageTexture[id] = len(im.s.Textures)
		im.s.Textures = append(im.s.Textures, *texture.Embedded(name, data, hint))
	}
	return nil
}

// textureRef resolves a texture id to a material slot reference. Texture
// coordinates always come from the first channel in 1.0.
func (im *importer) textureRef(id string) (scene.TextureRef, bool) {
	tex, ok := im.doc.Textures.Get(id)
	if !ok || tex == nil {
		return scene.TextureRef{}, false
	}
	img, ok := im.doc.Images.Get(tex.Source)
	if !ok || img == nil {
		return scene.TextureRef{}, false
	}
	ref := scene.TextureRef{Strength: 1}
	if t, ok := im.imageTexture[tex.Source]; ok {
		ref.Path = scene.EmbeddedRef(t)
	} else {
		ref.Path = img.URI
	}
	if smp, ok := im.doc.Samplers.Get(tex.Sampler); ok && smp != nil {
		ref.Sampler = scene.Sampler{
			MagFilter: smp.MagFilter,
			MinFilter: smp.MinFilter,
			WrapS:     toWrap(smp.WrapS),
			WrapT:     toWrap(smp.WrapT),
		}
	}
	return ref, true
}

func toWrap(mode int) scene.WrapMode {
	switch mode {
	case 33071:
		return scene.WrapClamp
	case 33648:
		return scene.WrapMirror
	default:
		return scene.WrapRepeat
	}
}

func fromWrap(mode scene.WrapMode) int {
	switch mode {
	case scene.WrapClamp:
		return 33071
	case scene.WrapMirror:
		return 33648
	default:
		return 10497
	}
}

// importMaterials converts every material and appends the default
// material used by primitives without one.
func (im *importer) importMaterials() error {
	for id, gm := range im.doc.Materials.All() {
		if gm == nil {
			return fmt.Errorf("material %q: %w", id, ErrInvalidReference)
		}
		m, err := im.material(id, gm)
		if err != nil {
			return fmt.Errorf("material %q: %w", id, err)
		}
		im.materials[id] = len(im.s.Materials)
		im.s.Materials = append(im.s.Materials, m)
	}
	im.defaultMaterial = len(im.s.Materials)
	im.s.Materials = append(im.s.Materials, scene.DefaultMaterial())
	return nil
}

// commonValues merges technique values with the KHR_materials_common
// values, which take precedence.
func commonValues(gm *Material) (map[string]json.RawMessage, *CommonMaterial) {
	values := make(map[string]json.RawMessage, len(gm.Values))
	for k, v := range gm.Values {
		values[k] = v
	}
	var common *CommonMaterial
	if gm.Extensions != nil && gm.Extensions.Common != nil {
		common = gm.Extensions.Common
		for k, v := range common.Values {
			values[k] = v
		}
	}
	return values, common
}

func (im *importer) material(id string, gm *Material) (scene.Material, error) {
	name := gm.Name
	if name == "" {
		name = id
	}
	m := scene.NewMaterial(name)
	m.ShadingModel = scene.ShadingBlinn
	values, common := commonValues(gm)

	black := math.Color4{A: 1}
	slots := []struct {
		key   string
		color *math.Color4
		slot  scene.TextureType
	}{
		{"ambient", &m.Ambient, scene.TextureAmbient},
		{"diffuse", &m.Diffuse, scene.TextureDiffuse},
		{"specular", &m.Specular, scene.TextureSpecular},
	}
	for _, sl := range slots {
		*sl.color = black
		c, texID, err := colorOrTexture(values[sl.key])
		if err != nil {
			return m, fmt.Errorf("%s: %w", sl.key, err)
		}
		if texID != "" {
			if ref, ok := im.textureRef(texID); ok {
				m.SetTexture(sl.slot, ref)
			}
			continue
		}
		if c != nil {
			*sl.color = *c
		}
	}
	m.BaseColor = m.Diffuse

	emission, texID, err := colorOrTexture(values["emission"])
	if err != nil {
		return m, fmt.Errorf("emission: %w", err)
	}
	switch {
	case texID != "":
		if ref, ok := im.textureRef(texID); ok {
			m.SetTexture(scene.TextureEmissive, ref)
		}
	case emission != nil:
		m.Emissive = math.Color3{R: emission.R, G: emission.G, B: emission.B}
	}

	var shininess float64
	if err := scalarValue(values["shininess"], &shininess); err != nil {
		return m, fmt.Errorf("shininess: %w", err)
	}
	if shininess > 0 {
		m.Shininess = shininess
	}

	transparency := 1.0
	if err := scalarValue(values["transparency"], &transparency); err != nil {
		return m, fmt.Errorf("transparency: %w", err)
	}
	var transparent, doubleSided bool
	if err := scalarValue(values["transparent"], &transparent); err != nil {
		return m, fmt.Errorf("transparent: %w", err)
	}
	if err := scalarValue(values["doubleSided"], &doubleSided); err != nil {
		return m, fmt.Errorf("doubleSided: %w", err)
	}
	if common != nil {
		transparent = transparent || common.Transparent
		doubleSided = doubleSided || common.DoubleSided
		switch strings.ToUpper(common.Technique) {
		case "CONSTANT":
			m.ShadingModel = scene.ShadingConstant
		case "LAMBERT":
			m.ShadingModel = scene.ShadingGouraud
		case "PHONG":
			m.ShadingModel = scene.ShadingPhong
		}
	}
	if transparent && transparency != 1 {
		m.Opacity = transparency
		m.AlphaMode = scene.AlphaBlend
	}
	m.TwoSided = doubleSided
	return m, nil
}

// colorOrTexture reads a value that is either an RGBA array or a texture
// id. Both results are empty when the value is absent.
func colorOrTexture(raw json.RawMessage) (*math.Color4, string, error) {
	if len(raw) == 0 {
		return nil, "", nil
	}
	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		return nil, id, nil
	}
	var c []float64
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, "", err
	}
	out := math.Color4{A: 1}
	for i, v := range c {
		switch i {
		case 0:
			out.R = v
		case 1:
			out.G = v
		case 2:
			out.B = v
		case 3:
			out.A = v
		}
	}
	return &out, "", nil
}

// scalarValue decodes raw into out, leaving out untouched when raw is absent.
// Values wrapped in a one-element array are accepted.
func scalarValue[T any](raw json.RawMessage, out *T) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err == nil {
		return nil
	}
	var wrapped []T
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return err
	}
	if len(wrapped) > 0 {
		*out = wrapped[0]
	}
	return nil
}
