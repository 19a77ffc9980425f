package gltf2

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"

	"github.com/Faultbox/assetkit/pkg/accessor"
	"github.com/Faultbox/assetkit/pkg/assetio"
	"github.com/Faultbox/assetkit/pkg/resolver"
	"github.com/Faultbox/assetkit/pkg/scene"
)

// Read imports the asset at path.
func (Importer) Read(path string, loader assetio.Loader) (*scene.Scene, error) {
	r, err := loader.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	doc := new(gltf.Document)
	dec := gltf.NewDecoderFS(r, assetio.LoaderFS{Loader: loader, Dir: filepath.Dir(path)})
	if err := dec.Decode(doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return ImportDocument(doc, path, loader)
}

// ImportDocument converts a decoded document. path and loader resolve
// buffers and images the decoder left unloaded.
func ImportDocument(doc *gltf.Document, path string, loader assetio.Loader) (*scene.Scene, error) {
	im := &importer{
		doc:         doc,
		res:         resolver.New(loader, path, nil),
		s:           scene.New(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))),
		nodeToArena: make(map[int]int),
		lightRanges: make(map[int]float64),
	}
	if err := im.run(); err != nil {
		return nil, err
	}
	return im.s, nil
}

// importer holds the state of one import call.
type importer struct {
	doc *gltf.Document
	res *resolver.Resolver
	s   *scene.Scene

	buffers [][]byte
	// spans maps each glTF mesh to its submeshes.
	spans []scene.IndexSpan
	// prims records the source primitive of every submesh.
	prims []primRef
	// imageTextures maps glTF images to embedded texture indices, -1 for
	// external images.
	imageTextures   []int
	defaultMaterial int
	// nodeToArena maps glTF node indices to arena indices.
	nodeToArena map[int]int
	lightRanges map[int]float64
}

type primRef struct {
	mesh, prim int
	remap      []uint32
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
	im.buffers = make([][]byte, len(im.doc.Buffers))
	for i, b := range im.doc.Buffers {
		data := b.Data
		if data == nil && b.URI != "" {
			var err error
			if data, err = im.res.ResolveURI(b.URI); err != nil {
				return fmt.Errorf("buffer %d: %w", i, err)
			}
		}
		data, err := resolver.Finalize(data, b.ByteLength)
		if err != nil {
			return fmt.Errorf("buffer %d: %w", i, err)
		}
		im.buffers[i] = data
	}
	return nil
}

func (im *importer) view(idx int) (*accessor.View, error) {
	if idx < 0 || idx >= len(im.doc.BufferViews) {
		return nil, fmt.Errorf("buffer view %d: %w", idx, ErrInvalidReference)
	}
	v := im.doc.BufferViews[idx]
	return &accessor.View{
		Buffer:     v.Buffer,
		ByteOffset: v.ByteOffset,
		ByteLength: v.ByteLength,
		ByteStride: v.ByteStride,
		Target:     toTarget(v.Target),
	}, nil
}

func (im *importer) accessor(idx int) (*accessor.Accessor, error) {
	if idx < 0 || idx >= len(im.doc.Accessors) {
		return nil, fmt.Errorf("accessor %d: %w", idx, ErrInvalidReference)
	}
	a := im.doc.Accessors[idx]
	ct, ok := componentTypes[a.ComponentType]
	if !ok {
		return nil, fmt.Errorf("accessor %d: %w", idx, accessor.ErrUnsupportedComponent)
	}
	out := &accessor.Accessor{
		ByteOffset:    a.ByteOffset,
		ComponentType: ct,
		Type:          accessorTypes[a.Type],
		Count:         a.Count,
		Normalized:    a.Normalized,
		Min:           a.Min,
		Max:           a.Max,
	}
	if a.BufferView != nil {
		v, err := im.view(*a.BufferView)
		if err != nil {
			return nil, fmt.Errorf("accessor %d: %w", idx, err)
		}
		out.View = v
	}
	if sp := a.Sparse; sp != nil {
		iv, err := im.view(sp.Indices.BufferView)
		if err != nil {
			return nil, fmt.Errorf("accessor %d sparse indices: %w", idx, err)
		}
		vv, err := im.view(sp.Values.BufferView)
		if err != nil {
			return nil, fmt.Errorf("accessor %d sparse values: %w", idx, err)
		}
		out.Sparse = &accessor.Sparse{
			Count: sp.Count,
			Indices: &accessor.SparseIndices{
				View:          iv,
				ByteOffset:    sp.Indices.ByteOffset,
				ComponentType: componentTypes[sp.Indices.ComponentType],
			},
			Values: &accessor.SparseValues{View: vv, ByteOffset: sp.Values.ByteOffset},
		}
	}
	return out, nil
}

// decode reads accessor idx, keeping only the elements listed in remap
// when remap is non-nil.
func (im *importer) decode(idx int, remap []uint32) (*accessor.Elements, error) {
	a, err := im.accessor(idx)
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
		return nil, fmt.Errorf("accessor %d: %w", idx, err)
	}
	return el, nil
}

func (im *importer) importMetadata() {
	md := &im.s.Metadata
	md.SetString(scene.MetaSourceFormat, "glTF2")
	if v := im.doc.Asset.Version; v != "" {
		md.SetString(scene.MetaSourceFormatVersion, v)
	}
	if g := im.doc.Asset.Generator; g != "" {
		md.SetString(scene.MetaSourceGenerator, g)
	}
	if c := im.doc.Asset.Copyright; c != "" {
		md.SetString(scene.MetaSourceCopyright, c)
	}
	for _, ext := range im.doc.ExtensionsUsed {
		md.SetBool(scene.MetaExtensionsPrefix+ext, true)
	}
}
