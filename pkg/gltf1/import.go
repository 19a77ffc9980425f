package gltf1

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Faultbox/assetkit/pkg/accessor"
	"github.com/Faultbox/assetkit/pkg/assetio"
	"github.com/Faultbox/assetkit/pkg/container"
	"github.com/Faultbox/assetkit/pkg/resolver"
	"github.com/Faultbox/assetkit/pkg/scene"
)

// Decode parses a JSON document.
func Decode(data []byte) (*Document, error) {
	doc := new(Document)
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Read imports the asset at path.
func (Importer) Read(path string, loader assetio.Loader) (*scene.Scene, error) {
	data, err := assetio.ReadAll(loader, path)
	if err != nil {
		return nil, err
	}
	var body []byte
	if _, ok := container.Sniff(data); ok {
		bin, err := container.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		data, body = bin.Content, bin.Body
	}
	doc, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return ImportDocument(doc, path, loader, body)
}

// ImportDocument converts a decoded document. body is the container body
// bound to the "binary_glTF" buffer, or nil.
func ImportDocument(doc *Document, path string, loader assetio.Loader, body []byte) (*scene.Scene, error) {
	im := &importer{
		doc:          doc,
		res:          resolver.New(loader, path, body),
		s:            scene.New(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))),
		bufferIndex:  make(map[string]int),
		imageTexture: make(map[string]int),
		materials:    make(map[string]int),
		spans:        make(map[string]scene.IndexSpan),
		cameras:      make(map[string]int),
		lights:       make(map[string]int),
		nodeToArena:  make(map[string]int),
	}
	if err := im.run(); err != nil {
		return nil, err
	}
	return im.s, nil
}

// importer holds the state of one import call. The maps translate string
// ids to scene indices.
type importer struct {
	doc *Document
	res *resolver.Resolver
	s   *scene.Scene

	buffers      [][]byte
	bufferIndex  map[string]int
	imageTexture map[string]int
	materials    map[string]int
	// defaultMaterial is appended for primitives without a known material.
	defaultMaterial int
	spans           map[string]scene.IndexSpan
	// prims records the source primitive of every submesh.
	prims       []primRef
	cameras     map[string]int
	lights      map[string]int
	nodeToArena map[string]int
}

func (im *importer) run() error {
	steps := []struct {
		name string
		fn   func() error
	}{
		{"buffers", im.importBuffers},
		{"textures", im.importTextures},
		{"materials", im.importMaterials},
		{"meshes", im.importMeshes},
		{"cameras", im.importCameras},
		{"lights", im.importLights},
		{"nodes", im.importNodes},
		{"skins", im.importSkins},
		{"animations", im.importAnimations},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}
	im.importMetadata()
	if len(im.s.Meshes) == 0 {
		im.s.Flags |= scene.FlagIncomplete
	}
	return nil
}

func (im *importer) importBuffers() error {
	for id, b := range im.doc.Buffers.All() {
		if b == nil {
			return fmt.Errorf("buffer %q: %w", id, ErrInvalidReference)
		}
		data, err := im.res.Resolve(resolver.Source{
			URI:         b.URI,
			ByteLength:  b.ByteLength,
			BinaryChunk: id == BinaryBufferID,
		})
		if err != nil {
			return fmt.Errorf("buffer %q: %w", id, err)
		}
		im.bufferIndex[id] = len(im.buffers)
		im.buffers = append(im.buffers, data)
	}
	return nil
}

func (im *importer) view(id string) (*accessor.View, error) {
	v, ok := im.doc.BufferViews.Get(id)
	if !ok || v == nil {
		return nil, fmt.Errorf("buffer view %q: %w", id, ErrInvalidReference)
	}
	buf, ok := im.bufferIndex[v.Buffer]
	if !ok {
		return nil, fmt.Errorf("buffer view %q buffer %q: %w", id, v.Buffer, ErrInvalidReference)
	}
	length := v.ByteLength
	if length == 0 {
		length = len(im.buffers[buf]) - v.ByteOffset
	}
	return &accessor.View{
		Buffer:     buf,
		ByteOffset: v.ByteOffset,
		ByteLength: length,
		Target:     accessor.Target(v.Target),
	}, nil
}

// viewBytes returns the bytes of a buffer view.
func (im *importer) viewBytes(id string) ([]byte, error) {
	v, err := im.view(id)
	if err != nil {
		return nil, err
	}
	buf := im.buffers[v.Buffer]
	if v.ByteOffset < 0 || v.ByteLength < 0 || v.ByteOffset+v.ByteLength > len(buf) {
		return nil, fmt.Errorf("buffer view %q: %w", id, accessor.ErrExceedsBounds)
	}
	return buf[v.ByteOffset : v.ByteOffset+v.ByteLength], nil
}

// accessor translates a 1.0 accessor. The stride lives on the accessor in
// 1.0, so each accessor gets its own view copy.
func (im *importer) accessor(id string) (*accessor.Accessor, error) {
	a, ok := im.doc.Accessors.Get(id)
	if !ok || a == nil {
		return nil, fmt.Errorf("accessor %q: %w", id, ErrInvalidReference)
	}
	typ, err := accessor.ParseType(a.Type)
	if err != nil {
		return nil, fmt.Errorf("accessor %q: %w", id, err)
	}
	ct := accessor.ComponentType(a.ComponentType)
	if ct.Size() == 0 {
		return nil, fmt.Errorf("accessor %q: %w", id, accessor.ErrUnsupportedComponent)
	}
	out := &accessor.Accessor{
		ByteOffset:    a.ByteOffset,
		ComponentType: ct,
		Type:          typ,
		Count:         a.Count,
		Min:           a.Min,
		Max:           a.Max,
	}
	if a.BufferView != "" {
		v, err := im.view(a.BufferView)
		if err != nil {
			return nil, fmt.Errorf("accessor %q: %w", id, err)
		}
		v.ByteStride = a.ByteStride
		out.View = v
	}
	return out, nil
}

// decode reads accessor id, keeping only the elements listed in remap
// when remap is non-nil.
func (im *importer) decode(id string, remap []uint32) (*accessor.Elements, error) {
	a, err := im.accessor(id)
	if err != nil {
		return nil, err
	}
	var el *accessor.Elements
	if remap == nil {
		el, err = a.Decode(im.buffers)
	} else {
		el, err = a.DecodeRemapped(im.buffers, remap)
	}
	if err != nil {
		return nil, fmt.Errorf("accessor %q: %w", id, err)
	}
	return el, nil
}

func (im *importer) importMetadata() {
	md := &im.s.Metadata
	md.SetString(scene.MetaSourceFormat, "glTF")
	version := "1.0"
	if a := im.doc.Asset; a != nil {
		if a.Version != "" {
			version = a.Version
		}
		if a.Generator != "" {
			md.SetString(scene.MetaSourceGenerator, a.Generator)
		}
		if a.Copyright != "" {
			md.SetString(scene.MetaSourceCopyright, a.Copyright)
		}
	}
	md.SetString(scene.MetaSourceFormatVersion, version)
	for _, ext := range im.doc.ExtensionsUsed {
		md.SetBool(scene.MetaExtensionsPrefix+ext, true)
	}
}
