package assetio

import (
	"io"
	"os"
	"path"

	"github.com/hack-pad/hackpadfs"
	"github.com/hack-pad/hackpadfs/mem"
)

// FS adapts a hackpadfs filesystem to both Loader and Writer.
// Paths are cleaned and unrooted before use.
type FS struct {
	FS hackpadfs.FS
}

// NewMemFS returns an empty in-memory filesystem.
func NewMemFS() (*FS, error) {
	m, err := mem.NewFS()
	if err != nil {
		return nil, err
	}
	return &FS{FS: m}, nil
}

// Open reads the whole file and returns a seekable view of it.
func (f *FS) Open(name string) (io.ReadSeekCloser, error) {
	file, err := f.FS.Open(NormPath(name))
	if err != nil {
		return nil, err
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	return BytesReader(data), nil
}

// Create creates or truncates name, making parent directories as needed.
func (f *FS) Create(name string) (io.WriteCloser, error) {
	name = NormPath(name)
	if dir := path.Dir(name); dir != "." {
		if err := hackpadfs.MkdirAll(f.FS, dir, 0755); err != nil {
			return nil, err
		}
	}
	file, err := hackpadfs.OpenFile(f.FS, name, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return fileWriter{file}, nil
}

// Exists reports whether name is present.
func (f *FS) Exists(name string) bool {
	_, err := hackpadfs.Stat(f.FS, NormPath(name))
	return err == nil
}

// List returns the entry names of a directory.
func (f *FS) List(dir string) ([]string, error) {
	entries, err := hackpadfs.ReadDir(f.FS, NormPath(dir))
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names, nil
}

type fileWriter struct {
	file hackpadfs.File
}

func (w fileWriter) Write(p []byte) (int, error) {
	return hackpadfs.WriteFile(w.file, p)
}

func (w fileWriter) Close() error {
	return w.file.Close()
}
