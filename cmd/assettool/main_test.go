package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/assetkit/internal/assets"
	"github.com/Faultbox/assetkit/internal/config"
	"github.com/Faultbox/assetkit/pkg/assetio"
	"github.com/Faultbox/assetkit/pkg/gltf1"
	"github.com/Faultbox/assetkit/pkg/gltf2"
	"github.com/Faultbox/assetkit/pkg/math"
	"github.com/Faultbox/assetkit/pkg/scene"
)

func sampleScene(t *testing.T) *scene.Scene {
	t.Helper()
	s := scene.New("box")
	mesh := scene.Mesh{
		Name:           "tri",
		PrimitiveTypes: scene.PrimitiveTriangle,
		Vertices:       []math.Vec3{{}, {X: 1}, {Y: 1}},
		Faces:          []scene.Face{{0, 1, 2}},
	}
	s.Meshes = []scene.Mesh{mesh}
	s.Materials = []scene.Material{scene.NewMaterial("mat")}

	tree := scene.WithRoot(scene.NewNode("root"))
	child := scene.NewNode("body")
	child.MeshIndexes = []int{0}
	child.Transform = math.Translate(0, 2, 0)
	_, err := tree.Insert(child, 0)
	require.NoError(t, err)
	_, err = tree.Insert(scene.NewNode("sun"), 0)
	require.NoError(t, err)
	s.Nodes = tree
	s.Lights = []scene.Light{scene.NewLight("sun", scene.LightDirectional)}
	return s
}

func newTool(t *testing.T) (*tool, *assetio.FS, *bytes.Buffer) {
	t.Helper()
	fsys, err := assetio.NewMemFS()
	require.NoError(t, err)
	var out bytes.Buffer
	return &tool{
		cfg:    config.Default(),
		reg:    newRegistry(),
		loader: assets.NewManager(fsys),
		writer: fsys,
		out:    &out,
	}, fsys, &out
}

func TestInfoAndNodes(t *testing.T) {
	tl, fsys, out := newTool(t)
	require.NoError(t, gltf2.Exporter{Binary: true}.Write(sampleScene(t), "box.glb", fsys, assetio.DefaultProperties()))

	require.NoError(t, tl.run("info", []string{"box.glb"}))
	assert.Contains(t, out.String(), "Nodes:      3")
	assert.Contains(t, out.String(), "Meshes:     1 (3 vertices, 1 faces)")
	assert.Contains(t, out.String(), "Lights:     1")
	assert.Contains(t, out.String(), scene.MetaSourceFormatVersion)

	out.Reset()
	require.NoError(t, tl.run("nodes", []string{"box.glb"}))
	assert.Equal(t, "root\n  body [meshes=[0] transformed]\n  sun [light=Directional]\n", out.String())
}

func TestConvertToLegacy(t *testing.T) {
	tl, fsys, _ := newTool(t)
	require.NoError(t, gltf2.Exporter{}.Write(sampleScene(t), "in/box.gltf", fsys, assetio.DefaultProperties()))

	require.NoError(t, tl.run("convert", []string{"-format", gltf1.FormatGLTF, "in/box.gltf", "out/legacy.gltf"}))
	assert.True(t, fsys.Exists("out/legacy.gltf"))
	assert.True(t, fsys.Exists("out/legacy.bin"))

	s, err := gltf1.Importer{}.Read("out/legacy.gltf", fsys)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Nodes.Len())
	require.Len(t, s.Lights, 1)
	assert.Equal(t, "sun", s.Lights[0].Name)

	// The registry routes the 1.0 file to the 1.0 importer.
	back, err := tl.reg.Import("out/legacy.gltf", tl.loader)
	require.NoError(t, err)
	v, _ := back.Metadata.GetString(scene.MetaSourceFormatVersion)
	assert.Equal(t, "1.0", v)
}

func TestConvertDefaultsFromExtension(t *testing.T) {
	tl, fsys, _ := newTool(t)
	require.NoError(t, gltf1.Exporter{Binary: true}.Write(sampleScene(t), "old.glb", fsys, assetio.DefaultProperties()))

	require.NoError(t, tl.run("convert", []string{"old.glb", "new.glb"}))
	data, err := assetio.ReadAll(fsys, "new.glb")
	require.NoError(t, err)
	assert.Equal(t, "glTF", string(data[:4]))
	assert.Equal(t, byte(2), data[4])

	assert.Equal(t, gltf2.FormatGLTF, tl.formatFor("x.gltf"))
	assert.Equal(t, "glb2", tl.formatFor("x.out"))
}

func TestCommandErrors(t *testing.T) {
	tl, _, _ := newTool(t)
	assert.ErrorIs(t, tl.run("info", nil), errUsage)
	assert.ErrorIs(t, tl.run("convert", []string{"only-one"}), errUsage)
	assert.ErrorIs(t, tl.run("bogus", nil), errUsage)
	assert.ErrorIs(t, tl.run("info", []string{"model.obj"}), assetio.ErrUnsupportedFormat)
	assert.Error(t, tl.run("info", []string{"missing.gltf"}))
}

func TestFormatsAndConfig(t *testing.T) {
	tl, _, out := newTool(t)
	require.NoError(t, tl.run("formats", nil))
	for _, id := range []string{"gltf1", "glb1", "gltf2", "glb2"} {
		assert.Contains(t, out.String(), id)
	}
	assert.Contains(t, out.String(), "glTF 1.0 importer")

	out.Reset()
	require.NoError(t, tl.run("config", nil))
	assert.Contains(t, out.String(), "epsilon: 0.01")
	assert.Contains(t, out.String(), "level: info")
}
