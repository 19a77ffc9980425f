package assetio

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/assetkit/pkg/scene"
)

func TestMemFSRoundTrip(t *testing.T) {
	m, err := NewMemFS()
	require.NoError(t, err)

	require.NoError(t, WriteAll(m, "/out/models/box.bin", []byte{1, 2, 3, 4}))
	assert.True(t, m.Exists("out/models/box.bin"))

	data, err := ReadAll(m, "out/models/box.bin")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, data)

	names, err := m.List("/out/models")
	require.NoError(t, err)
	assert.Equal(t, []string{"box.bin"}, names)

	// Truncate on re-create.
	require.NoError(t, WriteAll(m, "out/models/box.bin", []byte{9}))
	data, err = ReadAll(m, "out/models/box.bin")
	require.NoError(t, err)
	assert.Equal(t, []byte{9}, data)
}

func TestMemFSMissing(t *testing.T) {
	m, err := NewMemFS()
	require.NoError(t, err)
	_, err = m.Open("nope.gltf")
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestFSLoaderSeekable(t *testing.T) {
	fsys := fstest.MapFS{
		"scene/a.bin": &fstest.MapFile{Data: []byte("abcdef")},
	}
	l := FSLoader{FS: fsys}
	r, err := l.Open("/scene/a.bin")
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Seek(2, io.SeekStart)
	require.NoError(t, err)
	rest, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "cdef", string(rest))
}

func TestLoaderFS(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "buf.bin"), []byte("xyz"), 0644))

	fsys := LoaderFS{Loader: FileLoader{}, Dir: dir}
	data, err := fsys.ReadFile("buf.bin")
	require.NoError(t, err)
	assert.Equal(t, "xyz", string(data))

	f, err := fsys.Open("buf.bin")
	require.NoError(t, err)
	info, err := f.Stat()
	require.NoError(t, err)
	assert.Equal(t, int64(3), info.Size())
	assert.Equal(t, "buf.bin", info.Name())
	require.NoError(t, f.Close())

	_, err = fsys.Open("../escape.bin")
	assert.ErrorIs(t, err, fs.ErrInvalid)
}

func TestFileWriterCreatesDirs(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a", "b", "out.gltf")
	require.NoError(t, WriteAll(FileWriter{}, p, []byte("{}")))
	data, err := ReadAll(FileLoader{}, p)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestNormPath(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", "."},
		{"/", "."},
		{"/a/b/../c", "a/c"},
		{"a//b", "a/b"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormPath(tt.in), tt.in)
	}
}

func TestLoadProperties(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "props.yaml")
	content := "GLTF_EPSILON: 0.5\nGLTF_TRS: true\nGLTF_TARGET_NORMALS: true\nSOMETHING_ELSE: 3\n"
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))

	props, err := LoadProperties(p)
	require.NoError(t, err)
	assert.Equal(t, 0.5, props.Epsilon)
	assert.True(t, props.TRS)
	assert.True(t, props.TargetNormals)
	assert.False(t, props.SpecularGlossiness)
	assert.False(t, props.UnlimitedBones)
}

func TestLoadPropertiesDefaultsAndErrors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	props, err := LoadProperties(empty)
	require.NoError(t, err)
	assert.Equal(t, DefaultProperties(), props)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("GLTF_TRS: maybe\n"), 0644))
	_, err = LoadProperties(bad)
	assert.Error(t, err)

	neg := filepath.Join(dir, "neg.yaml")
	require.NoError(t, os.WriteFile(neg, []byte("GLTF_EPSILON: -1\n"), 0644))
	_, err = LoadProperties(neg)
	assert.Error(t, err)
}

func TestPropertiesSet(t *testing.T) {
	p := DefaultProperties()
	require.NoError(t, p.Set("GLTF_SOMETHING_NEW", 42))
	assert.Equal(t, DefaultProperties(), p)

	require.NoError(t, p.Set(PropEpsilon, 0.2))
	require.NoError(t, p.Set(PropUnlimitedBones, true))
	assert.Equal(t, 0.2, p.Epsilon)
	assert.True(t, p.UnlimitedBones)

	assert.Error(t, p.Set(PropTRS, "yes"))
	assert.Error(t, p.Set(PropEpsilon, "small"))
}

func TestPropertiesTolerance(t *testing.T) {
	assert.Equal(t, DefaultEpsilon, Properties{}.Tolerance())
	assert.Equal(t, DefaultEpsilon, Properties{Epsilon: -1}.Tolerance())
	assert.Equal(t, 0.5, Properties{Epsilon: 0.5}.Tolerance())
}

type stubImporter struct {
	name  string
	exts  []string
	probe bool
	err   error
	calls *[]string
}

func (s stubImporter) Name() string         { return s.name }
func (s stubImporter) Extensions() []string { return s.exts }
func (s stubImporter) CanRead(string, Loader) (bool, error) {
	*s.calls = append(*s.calls, "probe:"+s.name)
	return s.probe, s.err
}
func (s stubImporter) Read(string, Loader) (*scene.Scene, error) {
	*s.calls = append(*s.calls, "read:"+s.name)
	return scene.New(s.name), nil
}

type stubExporter struct {
	id      string
	written *string
}

func (e stubExporter) ID() string          { return e.id }
func (e stubExporter) Extension() string   { return e.id }
func (e stubExporter) Description() string { return e.id }
func (e stubExporter) Write(s *scene.Scene, path string, _ Writer, _ Properties) error {
	*e.written = s.Name + "->" + path
	return nil
}

func TestRegistryImport(t *testing.T) {
	var calls []string
	r := NewRegistry()
	r.RegisterImporter(stubImporter{name: "obj", exts: []string{"obj"}, probe: true, calls: &calls})
	r.RegisterImporter(stubImporter{name: "broken", exts: []string{"gltf"}, err: errors.New("boom"), calls: &calls})
	r.RegisterImporter(stubImporter{name: "v1", exts: []string{"gltf"}, probe: false, calls: &calls})
	r.RegisterImporter(stubImporter{name: "v2", exts: []string{"gltf", "glb"}, probe: true, calls: &calls})

	s, err := r.Import("Model.GLTF", FileLoader{})
	require.NoError(t, err)
	assert.Equal(t, "v2", s.Name)
	assert.Equal(t, []string{"probe:broken", "probe:v1", "probe:v2", "read:v2"}, calls)

	_, err = r.Import("model.fbx", FileLoader{})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestRegistryExport(t *testing.T) {
	var written string
	r := NewRegistry()
	r.RegisterExporter(stubExporter{id: "glb2", written: &written})
	r.RegisterExporter(stubExporter{id: "gltf2", written: &written})

	require.NoError(t, r.Export(scene.New("s"), "out.glb", "glb2", DefaultProperties(), FileWriter{}))
	assert.Equal(t, "s->out.glb", written)

	err := r.Export(scene.New("s"), "out.x", "x3d", DefaultProperties(), FileWriter{})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	ids := []string{}
	for _, e := range r.Exporters() {
		ids = append(ids, e.ID())
	}
	assert.Equal(t, []string{"glb2", "gltf2"}, ids)
}
