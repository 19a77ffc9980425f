package gltf1

import (
	"bytes"
	"encoding/json"
	"fmt"
	gomath "math"
	"path/filepath"
	"strings"

	"github.com/Faultbox/assetkit/pkg/accessor"
	"github.com/Faultbox/assetkit/pkg/assetio"
	"github.com/Faultbox/assetkit/pkg/container"
	"github.com/Faultbox/assetkit/pkg/math"
	"github.com/Faultbox/assetkit/pkg/naming"
	"github.com/Faultbox/assetkit/pkg/scene"
)

const generator = "assetkit"

// bodyBufferID is the buffer id of the .bin side-file.
const bodyBufferID = "body"

// Write exports s to path. Standard output writes the JSON document and
// <base>.bin; binary output writes one container whose body holds every
// buffer view and embedded image.
func (e Exporter) Write(s *scene.Scene, path string, w assetio.Writer, props assetio.Properties) error {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	ex := newExporter(s, props, e.Binary)
	if err := ex.build(); err != nil {
		return err
	}
	body := ex.finish(base + ".bin")

	if e.Binary {
		content, err := json.Marshal(ex.doc)
		if err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		var buf bytes.Buffer
		if err := container.Write(&buf, content, body); err != nil {
			return err
		}
		return assetio.WriteAll(w, path, buf.Bytes())
	}

	content, err := json.MarshalIndent(ex.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := assetio.WriteAll(w, path, content); err != nil {
		return err
	}
	if body != nil {
		return assetio.WriteAll(w, filepath.Join(filepath.Dir(path), base+".bin"), body)
	}
	return nil
}

// exporter holds the state of one export call.
type exporter struct {
	s      *scene.Scene
	props  assetio.Properties
	binary bool
	doc    *Document
	b      *accessor.Builder

	// keys names nodes and meshes, ids names buffer objects and textures.
	keys *naming.Generator
	ids  *naming.Generator

	viewIDs   []string
	nodeKeys  []string
	meshKeys  map[int]string
	materials map[int]string
	cameras   map[int]string
	lights    map[int]string
	// textures maps material texture paths to texture ids.
	textures map[string]string
	extUsed  []string
}

func newExporter(s *scene.Scene, props assetio.Properties, binary bool) *exporter {
	return &exporter{
		s:         s,
		props:     props,
		binary:    binary,
		doc:       &Document{Asset: &Asset{Version: "1.0", Generator: generator}},
		b:         accessor.NewBuilder(0),
		keys:      naming.NewGenerator(),
		ids:       naming.NewGenerator(),
		meshKeys:  make(map[int]string),
		materials: make(map[int]string),
		cameras:   make(map[int]string),
		lights:    make(map[int]string),
		textures:  make(map[string]string),
	}
}

func (ex *exporter) build() error {
	if c, ok := ex.s.Metadata.GetString(scene.MetaSourceCopyright); ok {
		ex.doc.Asset.Copyright = c
	}
	steps := []struct {
		name string
		fn   func() error
	}{
		{"materials", ex.exportMaterials},
		{"cameras", ex.exportCameras},
		{"lights", ex.exportLights},
		{"nodes", ex.exportNodes},
		{"meshes", ex.exportMeshes},
		{"animations", ex.exportAnimations},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}

	name := ex.s.Name
	if name == "" {
		name = "scene"
	}
	sc := &Scene{Name: name}
	if len(ex.nodeKeys) > 0 && ex.s.Nodes.HasRoot() {
		sc.Nodes = []string{ex.nodeKeys[ex.s.Nodes.Root]}
	}
	ex.doc.Scenes.Set(name, sc)
	ex.doc.Scene = name
	return nil
}

// finish declares the buffer and its views and returns the body bytes,
// or nil when nothing was written.
func (ex *exporter) finish(binURI string) []byte {
	if ex.binary {
		ex.useExtension(extBinary)
	}
	ex.doc.ExtensionsUsed = ex.extUsed
	data := ex.b.Bytes()
	if len(data) == 0 {
		return nil
	}
	id, uri := bodyBufferID, binURI
	if ex.binary {
		id, uri = BinaryBufferID, "data:,"
	}
	ex.doc.Buffers.Set(id, &Buffer{URI: uri, ByteLength: len(data), Type: BufferArray, Name: id})
	for i, v := range ex.b.Views {
		ex.doc.BufferViews.Set(ex.viewID(i), &BufferView{
			Buffer:     id,
			ByteOffset: v.ByteOffset,
			ByteLength: v.ByteLength,
			Target:     uint32(v.Target),
		})
	}
	return data
}

func (ex *exporter) useExtension(name string) {
	for _, e := range ex.extUsed {
		if e == name {
			return
		}
	}
	ex.extUsed = append(ex.extUsed, name)
}

// viewID returns the id of builder view i, naming views created since the
// last call.
func (ex *exporter) viewID(i int) string {
	for len(ex.viewIDs) <= i {
		ex.viewIDs = append(ex.viewIDs, ex.ids.Next("bufferView", "bufferView"))
	}
	return ex.viewIDs[i]
}

// addAccessor records an encoded accessor and returns its id. The view
// stride moves to the accessor, where 1.0 keeps it.
func (ex *exporter) addAccessor(enc accessor.Encoded) string {
	a := enc.Accessor
	id := ex.ids.Next("accessor", "accessor")
	ex.doc.Accessors.Set(id, &Accessor{
		BufferView:    ex.viewID(enc.ViewIndex),
		ByteStride:    a.View.ByteStride,
		ComponentType: uint32(a.ComponentType),
		Count:         a.Count,
		Type:          a.Type.String(),
		Min:           a.Min,
		Max:           a.Max,
	})
	return id
}

// exportNodes emits nodes in arena order keyed by their unique names.
func (ex *exporter) exportNodes() error {
	tree := &ex.s.Nodes
	ex.nodeKeys = make([]string, len(tree.Arena))
	for i := range tree.Arena {
		ex.nodeKeys[i] = ex.keys.Next(tree.Arena[i].Name, "node")
	}
	for i := range tree.Arena {
		n := &tree.Arena[i]
		key := ex.nodeKeys[i]
		gn := &Node{Name: key}
		for _, c := range n.Children {
			if c < 0 || c >= len(ex.nodeKeys) {
				return fmt.Errorf("node %q child %d: %w", n.Name, c, ErrInvalidReference)
			}
			gn.Children = append(gn.Children, ex.nodeKeys[c])
		}
		ex.setTransform(gn, n.Transform)
		for _, mi := range n.MeshIndexes {
			if mi < 0 || mi >= len(ex.s.Meshes) {
				return fmt.Errorf("node %q mesh %d: %w", n.Name, mi, ErrInvalidReference)
			}
			mk, ok := ex.meshKeys[mi]
			if !ok {
				mk = ex.keys.Next(ex.s.Meshes[mi].Name, "mesh")
				ex.meshKeys[mi] = mk
			}
			gn.Meshes = append(gn.Meshes, mk)
		}
		if ci, ok := ex.s.CameraByName(n.Name); ok {
			gn.Camera = ex.cameras[ci]
		}
		if li, ok := ex.s.LightByName(n.Name); ok {
			if lk, ok := ex.lights[li]; ok {
				gn.Extensions = &NodeExtensions{Common: &NodeLight{Light: lk}}
			}
		}
		ex.doc.Nodes.Set(key, gn)
	}
	return nil
}

// setTransform leaves transforms within epsilon of identity implicit.
func (ex *exporter) setTransform(gn *Node, m math.Mat4) {
	if m.IsIdentity(ex.props.Tolerance()) {
		return
	}
	if ex.props.TRS {
		t, r, s := m.Decompose()
		ta, ra, sa := t.Array(), r.Array(), s.Array()
		gn.Translation, gn.Rotation, gn.Scale = &ta, &ra, &sa
		return
	}
	mat := [16]float64(m)
	gn.Matrix = &mat
}

func (ex *exporter) exportCameras() error {
	names := naming.NewGenerator()
	for i, c := range ex.s.Cameras {
		key := names.Next(c.Name, "camera")
		gc := &Camera{Name: c.Name}
		if c.IsOrthographic() {
			ymag := c.OrthographicWidth
			if c.Aspect > 0 {
				ymag = c.OrthographicWidth / c.Aspect
			}
			gc.Type = "orthographic"
			gc.Orthographic = &Orthographic{Xmag: c.OrthographicWidth, Ymag: ymag, Znear: c.ClipNear, Zfar: c.ClipFar}
		} else {
			p := &Perspective{AspectRatio: c.Aspect, Znear: c.ClipNear, Zfar: c.ClipFar}
			if c.Aspect > 0 {
				p.Yfov = 2 * gomath.Atan(gomath.Tan(c.HorizontalFOV)/c.Aspect)
			} else {
				p.Yfov = 2 * c.HorizontalFOV
			}
			gc.Type = "perspective"
			gc.Perspective = p
		}
		ex.cameras[i] = key
		ex.doc.Cameras.Set(key, gc)
	}
	return nil
}

// exportLights writes KHR_materials_common lights. Area and undefined
// lights have no 1.0 equivalent.
func (ex *exporter) exportLights() error {
	names := naming.NewGenerator()
	var lights Dict[*Light]
	for i, l := range ex.s.Lights {
		p := &LightParams{Color: []float64{l.Diffuse.R, l.Diffuse.G, l.Diffuse.B, 1}}
		gl := &Light{Name: l.Name}
		switch l.Type {
		case scene.LightAmbient:
			gl.Type, gl.Ambient = "ambient", p
			p.Color = []float64{l.Ambient.R, l.Ambient.G, l.Ambient.B, 1}
		case scene.LightDirectional:
			gl.Type, gl.Directional = "directional", p
		case scene.LightPoint:
			gl.Type, gl.Point = "point", p
		case scene.LightSpot:
			gl.Type, gl.Spot = "spot", p
			outer := l.OuterConeAngle
			p.FalloffAngle = &outer
			if outer > 0 && l.InnerConeAngle < outer {
				// inner = outer * (1 - 1/(1+exponent))
				p.FalloffExponent = outer/(outer-l.InnerConeAngle) - 1
			}
		default:
			continue
		}
		if l.Type != scene.LightAmbient && l.Type != scene.LightDirectional {
			c, lin, q := l.AttenuationConstant, l.AttenuationLinear, l.AttenuationQuadratic
			p.ConstantAttenuation, p.LinearAttenuation, p.QuadraticAttenuation = &c, &lin, &q
		}
		key := names.Next(l.Name, "light")
		ex.lights[i] = key
		lights.Set(key, gl)
	}
	if lights.Len() > 0 {
		ex.doc.Extensions = &RootExtensions{Common: &CommonLights{Lights: lights}}
		ex.useExtension(extCommon)
	}
	return nil
}
