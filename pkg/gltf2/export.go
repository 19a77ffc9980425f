package gltf2

import (
	"fmt"
	"io"
	"io/fs"
	gomath "math"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"

	"github.com/Faultbox/assetkit/pkg/accessor"
	"github.com/Faultbox/assetkit/pkg/assetio"
	"github.com/Faultbox/assetkit/pkg/math"
	"github.com/Faultbox/assetkit/pkg/naming"
	"github.com/Faultbox/assetkit/pkg/scene"
)

const generator = "assetkit"

// Write exports s to path. Standard output writes <base>.bin and one
// image file per embedded texture next to the .gltf; binary output packs
// everything into one GLB.
func (e Exporter) Write(s *scene.Scene, path string, w assetio.Writer, props assetio.Properties) error {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	ex := &exporter{
		s:          s,
		props:      props,
		binary:     e.Binary,
		dir:        filepath.Dir(path),
		w:          w,
		doc:        &gltf.Document{Asset: gltf.Asset{Version: "2.0", Generator: generator}},
		b:          accessor.NewBuilder(0),
		names:      naming.NewGenerator(),
		external:   make(map[string]int),
		samplers:   make(map[scene.Sampler]int),
		meshGroups: make(map[string]meshGroup),
		lightMap:   make(map[int]int),
	}
	if err := ex.build(base + ".bin"); err != nil {
		return err
	}

	f, err := w.Create(path)
	if err != nil {
		return err
	}
	wfs := &writerFS{w: w, dir: ex.dir, created: make(map[string]bool)}
	enc := gltf.NewEncoderFS(f, wfs)
	enc.AsBinary = e.Binary
	if err := enc.Encode(ex.doc); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	if !e.Binary {
		for _, b := range ex.doc.Buffers {
			if b.URI != "" && !wfs.created[b.URI] {
				if err := assetio.WriteAll(w, filepath.Join(ex.dir, b.URI), b.Data); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// writerFS lets the encoder create side-files through an assetio.Writer.
type writerFS struct {
	w       assetio.Writer
	dir     string
	created map[string]bool
}

func (f *writerFS) Open(name string) (fs.File, error) {
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}

func (f *writerFS) Create(name string) (io.WriteCloser, error) {
	f.created[name] = true
	return f.w.Create(filepath.Join(f.dir, filepath.FromSlash(name)))
}

type exporter struct {
	s      *scene.Scene
	props  assetio.Properties
	binary bool
	dir    string
	w      assetio.Writer
	doc    *gltf.Document
	b      *accessor.Builder
	names  *naming.Generator

	// external maps non-embedded texture paths to glTF texture indices.
	external   map[string]int
	samplers   map[scene.Sampler]int
	meshGroups map[string]meshGroup
	// lightMap maps scene lights to KHR_lights_punctual indices.
	lightMap map[int]int
	extUsed  []string
}

type meshGroup struct {
	mesh int
	skin int
}

func (ex *exporter) build(binURI string) error {
	if c, ok := ex.s.Metadata.GetString(scene.MetaSourceCopyright); ok {
		ex.doc.Asset.Copyright = c
	}
	steps := []struct {
		name string
		fn   func() error
	}{
		{"textures", ex.exportTextures},
		{"materials", ex.exportMaterials},
		{"cameras", ex.exportCameras},
		{"lights", ex.exportLights},
		{"nodes", ex.exportNodes},
		{"animations", ex.exportAnimations},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}

	if data := ex.b.Bytes(); len(data) > 0 {
		buf := &gltf.Buffer{ByteLength: len(data), Data: data}
		if !ex.binary {
			buf.URI = binURI
		}
		ex.doc.Buffers = []*gltf.Buffer{buf}
		for _, v := range ex.b.Views {
			ex.doc.BufferViews = append(ex.doc.BufferViews, &gltf.BufferView{
				Buffer:     v.Buffer,
				ByteOffset: v.ByteOffset,
				ByteLength: v.ByteLength,
				ByteStride: v.ByteStride,
				Target:     fromTarget(v.Target),
			})
		}
	}
	ex.doc.ExtensionsUsed = ex.extUsed
	return nil
}

func (ex *exporter) useExtension(name string) {
	for _, e := range ex.extUsed {
		if e == name {
			return
		}
	}
	ex.extUsed = append(ex.extUsed, name)
}

// addAccessor records an encoded accessor. Bounds are kept only where
// glTF requires them.
func (ex *exporter) addAccessor(enc accessor.Encoded, bounds bool) int {
	a := enc.Accessor
	ga := &gltf.Accessor{
		BufferView:    gltf.Index(enc.ViewIndex),
		ComponentType: fromComponentType(a.ComponentType),
		Type:          fromAccessorType(a.Type),
		Count:         a.Count,
		Normalized:    a.Normalized,
	}
	if bounds {
		ga.Min, ga.Max = a.Min, a.Max
	}
	ex.doc.Accessors = append(ex.doc.Accessors, ga)
	return len(ex.doc.Accessors) - 1
}

func (ex *exporter) exportNodes() error {
	tree := &ex.s.Nodes
	for i := range tree.Arena {
		n := &tree.Arena[i]
		gn := &gltf.Node{
			Name:     ex.names.Next(n.Name, "node"),
			Children: append([]int(nil), n.Children...),
		}
		ex.setTransform(gn, n.Transform)
		if len(n.MeshIndexes) > 0 {
			g, err := ex.meshGroup(n.MeshIndexes)
			if err != nil {
				return fmt.Errorf("node %q: %w", n.Name, err)
			}
			gn.Mesh = gltf.Index(g.mesh)
			if g.skin >= 0 {
				gn.Skin = gltf.Index(g.skin)
			}
		}
		if ci, ok := ex.s.CameraByName(n.Name); ok {
			gn.Camera = gltf.Index(ci)
		}
		if li, ok := ex.s.LightByName(n.Name); ok {
			if idx, ok := ex.lightMap[li]; ok {
				gn.Extensions = gltf.Extensions{extLightsPunctual: lightRef{Light: idx}}
			}
		}
		ex.doc.Nodes = append(ex.doc.Nodes, gn)
	}
	if tree.HasRoot() {
		ex.doc.Scenes = []*gltf.Scene{{Name: ex.s.Name, Nodes: []int{tree.Root}}}
		ex.doc.Scene = gltf.Index(0)
	}
	return nil
}

// setTransform leaves transforms within epsilon of identity implicit.
func (ex *exporter) setTransform(gn *gltf.Node, m math.Mat4) {
	if m.IsIdentity(ex.props.Tolerance()) {
		return
	}
	if ex.props.TRS {
		t, r, s := m.Decompose()
		gn.Translation = t.Array()
		gn.Rotation = r.Array()
		gn.Scale = s.Array()
		return
	}
	gn.Matrix = [16]float64(m)
}

func (ex *exporter) exportCameras() error {
	for _, c := range ex.s.Cameras {
		gc := &gltf.Camera{Name: c.Name}
		if c.IsOrthographic() {
			ymag := c.OrthographicWidth
			if c.Aspect > 0 {
				ymag = c.OrthographicWidth / c.Aspect
			}
			gc.Orthographic = &gltf.Orthographic{
				Xmag:  c.OrthographicWidth,
				Ymag:  ymag,
				Znear: c.ClipNear,
				Zfar:  c.ClipFar,
			}
		} else {
			p := &gltf.Perspective{Znear: c.ClipNear, Zfar: gltf.Float(c.ClipFar)}
			if c.Aspect > 0 {
				p.AspectRatio = gltf.Float(c.Aspect)
				p.Yfov = 2 * gomath.Atan(gomath.Tan(c.HorizontalFOV)/c.Aspect)
			} else {
				p.Yfov = 2 * c.HorizontalFOV
			}
			gc.Perspective = p
		}
		ex.doc.Cameras = append(ex.doc.Cameras, gc)
	}
	return nil
}

func (ex *exporter) exportLights() error {
	var ext punctualLights
	for i, l := range ex.s.Lights {
		var typ string
		switch l.Type {
		case scene.LightDirectional:
			typ = "directional"
		case scene.LightPoint:
			typ = "point"
		case scene.LightSpot:
			typ = "spot"
		default:
			continue
		}
		intensity := max(l.Diffuse.R, l.Diffuse.G, l.Diffuse.B)
		color := [3]float64{1, 1, 1}
		if intensity > 0 {
			color = [3]float64{l.Diffuse.R / intensity, l.Diffuse.G / intensity, l.Diffuse.B / intensity}
		}
		pl := punctualLight{Name: l.Name, Type: typ, Color: &color, Intensity: gltf.Float(intensity)}
		if typ == "spot" {
			pl.Spot = &punctualSpot{InnerConeAngle: l.InnerConeAngle, OuterConeAngle: gltf.Float(l.OuterConeAngle)}
		}
		if ni, ok := ex.s.Nodes.FindByName(l.Name); ok {
			if md := ex.s.Nodes.Arena[ni].Metadata; md != nil {
				if r, ok := md.GetFloat(scene.MetaLightRange); ok {
					pl.Range = gltf.Float(r)
				}
			}
		}
		ex.lightMap[i] = len(ext.Lights)
		ext.Lights = append(ext.Lights, pl)
	}
	if len(ext.Lights) > 0 {
		if ex.doc.Extensions == nil {
			ex.doc.Extensions = gltf.Extensions{}
		}
		ex.doc.Extensions[extLightsPunctual] = ext
		ex.useExtension(extLightsPunctual)
	}
	return nil
}
