// Package assetio defines how codecs reach storage (loaders and writers),
// export properties, and the importer/exporter registry.
package assetio

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Loader opens asset files and their side-files for reading.
type Loader interface {
	Open(path string) (io.ReadSeekCloser, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(path string) (io.ReadSeekCloser, error)

// Open calls f(path).
func (f LoaderFunc) Open(path string) (io.ReadSeekCloser, error) {
	return f(path)
}

// Writer creates output files.
type Writer interface {
	Create(path string) (io.WriteCloser, error)
}

// WriterFunc adapts a function to Writer.
type WriterFunc func(path string) (io.WriteCloser, error)

// Create calls f(path).
func (f WriterFunc) Create(path string) (io.WriteCloser, error) {
	return f(path)
}

// FileLoader reads from the local filesystem.
type FileLoader struct{}

// Open opens path with os.Open.
func (FileLoader) Open(path string) (io.ReadSeekCloser, error) {
	return os.Open(path)
}

// FileWriter writes to the local filesystem, creating parent directories.
type FileWriter struct{}

// Create creates or truncates path.
func (FileWriter) Create(path string) (io.WriteCloser, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	return os.Create(path)
}

type nopCloser struct {
	*bytes.Reader
}

func (nopCloser) Close() error { return nil }

// BytesReader wraps data as a ReadSeekCloser.
func BytesReader(data []byte) io.ReadSeekCloser {
	return nopCloser{bytes.NewReader(data)}
}

// FSLoader reads from an io/fs filesystem using slash-separated paths.
type FSLoader struct {
	FS fs.FS
}

// Open opens path within the filesystem.
func (l FSLoader) Open(name string) (io.ReadSeekCloser, error) {
	name = NormPath(name)
	f, err := l.FS.Open(name)
	if err != nil {
		return nil, err
	}
	if rsc, ok := f.(io.ReadSeekCloser); ok {
		return rsc, nil
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, &fs.PathError{Op: "read", Path: name, Err: err}
	}
	return BytesReader(data), nil
}

// NormPath converts a path to the unrooted slash form used by fs.FS.
func NormPath(p string) string {
	p = path.Clean(filepath.ToSlash(p))
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return "."
	}
	return p
}

// ReadAll loads a whole file through l.
func ReadAll(l Loader, path string) ([]byte, error) {
	r, err := l.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &fs.PathError{Op: "read", Path: path, Err: err}
	}
	return data, nil
}

// WriteAll writes data to a new file through w.
func WriteAll(w Writer, path string, data []byte) error {
	f, err := w.Create(path)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return &fs.PathError{Op: "write", Path: path, Err: err}
	}
	return f.Close()
}

// LoaderFS exposes a Loader rooted at Dir as an io/fs filesystem, so codecs
// that resolve side-files through fs.FS go through the caller's loader.
type LoaderFS struct {
	Loader Loader
	Dir    string
}

// Open implements fs.FS.
func (l LoaderFS) Open(name string) (fs.File, error) {
	data, err := l.ReadFile(name)
	if err != nil {
		return nil, err
	}
	return &memFile{Reader: bytes.NewReader(data), name: path.Base(name), size: int64(len(data))}, nil
}

// ReadFile implements fs.ReadFileFS.
func (l LoaderFS) ReadFile(name string) ([]byte, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	return ReadAll(l.Loader, filepath.Join(l.Dir, filepath.FromSlash(name)))
}

type memFile struct {
	*bytes.Reader
	name string
	size int64
}

func (f *memFile) Stat() (fs.FileInfo, error) { return f, nil }
func (f *memFile) Close() error               { return nil }
func (f *memFile) Name() string               { return f.name }
func (f *memFile) Size() int64                { return f.size }
func (f *memFile) Mode() fs.FileMode          { return 0444 }
func (f *memFile) ModTime() time.Time         { return time.Time{} }
func (f *memFile) IsDir() bool                { return false }
func (f *memFile) Sys() any                   { return nil }
