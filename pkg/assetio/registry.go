package assetio

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Faultbox/assetkit/pkg/scene"
)

// ErrUnsupportedFormat is returned (or wrapped) when no codec accepts an
// input or an output format id is unknown.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Importer reads one family of file formats into a Scene.
type Importer interface {
	// Name identifies the importer in listings.
	Name() string
	// Extensions lists lowercase extensions without the leading dot.
	Extensions() []string
	// CanRead probes the file without consuming the loader's state.
	CanRead(path string, loader Loader) (bool, error)
	// Read imports the file.
	Read(path string, loader Loader) (*scene.Scene, error)
}

// Exporter writes a Scene in one output format.
type Exporter interface {
	// ID is the format id passed to Registry.Export.
	ID() string
	// Extension is the default file extension without the leading dot.
	Extension() string
	// Description is a human-readable label.
	Description() string
	// Write exports s to path through w.
	Write(s *scene.Scene, path string, w Writer, props Properties) error
}

// Registry dispatches files to importers by extension and scenes to
// exporters by format id.
type Registry struct {
	importers []Importer
	exporters map[string]Exporter
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{exporters: make(map[string]Exporter)}
}

// RegisterImporter adds an importer. Importers are tried in registration order.
func (r *Registry) RegisterImporter(imp Importer) {
	r.importers = append(r.importers, imp)
}

// RegisterExporter adds an exporter, replacing one with the same id.
func (r *Registry) RegisterExporter(exp Exporter) {
	r.exporters[exp.ID()] = exp
}

// Importers returns the registered importers.
func (r *Registry) Importers() []Importer {
	return r.importers
}

// Exporters returns the registered exporters sorted by id.
func (r *Registry) Exporters() []Exporter {
	out := make([]Exporter, 0, len(r.exporters))
	for _, e := range r.exporters {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Exporter looks up an exporter by id.
func (r *Registry) Exporter(id string) (Exporter, bool) {
	e, ok := r.exporters[id]
	return e, ok
}

// Import reads path with the first importer whose extension matches and
// whose probe accepts the file. Probe errors count as a decline. The first
// Read result is final.
func (r *Registry) Import(path string, loader Loader) (*scene.Scene, error) {
	ext := Ext(path)
	for _, imp := range r.importers {
		if !hasExt(imp, ext) {
			continue
		}
		ok, err := imp.CanRead(path, loader)
		if err != nil || !ok {
			continue
		}
		s, err := imp.Read(path, loader)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", imp.Name(), err)
		}
		return s, nil
	}
	return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
}

// Export writes s to path using the exporter registered under id.
func (r *Registry) Export(s *scene.Scene, path, id string, props Properties, w Writer) error {
	exp, ok := r.exporters[id]
	if !ok {
		return fmt.Errorf("format %q: %w", id, ErrUnsupportedFormat)
	}
	if err := exp.Write(s, path, w, props); err != nil {
		return fmt.Errorf("%s: %w", id, err)
	}
	return nil
}

// Ext returns the lowercase extension of path without the leading dot.
func Ext(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

func hasExt(imp Importer, ext string) bool {
	for _, e := range imp.Extensions() {
		if e == ext {
			return true
		}
	}
	return false
}
