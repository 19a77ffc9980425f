// Package gltf2 imports and exports glTF 2.0 assets.
//
// JSON schema handling and GLB chunk framing are delegated to
// github.com/qmuntal/gltf; this package maps documents to and from the
// scene model. One glTF mesh with N primitives becomes N submeshes, and a
// node's submeshes are merged back into one glTF mesh on export.
package gltf2

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/qmuntal/gltf"

	"github.com/Faultbox/assetkit/pkg/assetio"
	"github.com/Faultbox/assetkit/pkg/container"
)

// Format ids of the exporters.
const (
	FormatGLTF = "gltf2"
	FormatGLB  = "glb2"
)

// Extension names handled by the codec.
const (
	extLightsPunctual   = "KHR_lights_punctual"
	extSpecGloss        = "KHR_materials_pbrSpecularGlossiness"
	extUnlit            = "KHR_materials_unlit"
	extEmissiveStrength = "KHR_materials_emissive_strength"
)

// ErrInvalidReference is returned when an index in the document points at
// nothing.
var ErrInvalidReference = errors.New("invalid reference")

// ErrMissingPositions is returned for primitives without POSITION.
var ErrMissingPositions = errors.New("primitive has no POSITION attribute")

// Importer reads .gltf, .glb and .vrm files.
type Importer struct{}

// Name implements assetio.Importer.
func (Importer) Name() string { return "glTF 2.0 importer" }

// Extensions implements assetio.Importer.
func (Importer) Extensions() []string { return []string{"gltf", "glb", "vrm"} }

// CanRead accepts GLB files with container version 2 and JSON documents
// declaring asset version 2.x.
func (Importer) CanRead(path string, loader assetio.Loader) (bool, error) {
	data, err := assetio.ReadAll(loader, path)
	if err != nil {
		return false, err
	}
	if version, ok := container.Sniff(data); ok {
		return version == 2, nil
	}
	return strings.HasPrefix(assetVersion(data), "2"), nil
}

// assetVersion returns asset.version of a JSON document, or "".
func assetVersion(data []byte) string {
	var probe struct {
		Asset struct {
			Version string `json:"version"`
		} `json:"asset"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return ""
	}
	return probe.Asset.Version
}

// Exporter writes glTF 2.0 as a .gltf with side-files or as a single .glb.
type Exporter struct {
	Binary bool
}

// ID implements assetio.Exporter.
func (e Exporter) ID() string {
	if e.Binary {
		return FormatGLB
	}
	return FormatGLTF
}

// Extension implements assetio.Exporter.
func (e Exporter) Extension() string {
	if e.Binary {
		return "glb"
	}
	return "gltf"
}

// Description implements assetio.Exporter.
func (e Exporter) Description() string {
	if e.Binary {
		return "glTF 2.0 (binary)"
	}
	return "glTF 2.0"
}

// decodeExtension unmarshals an extension object into out. Extensions
// without a registered codec arrive as raw JSON; anything else is
// re-encoded first.
func decodeExtension(exts gltf.Extensions, name string, out any) (bool, error) {
	v, ok := exts[name]
	if !ok {
		return false, nil
	}
	var raw []byte
	switch t := v.(type) {
	case json.RawMessage:
		raw = t
	case []byte:
		raw = t
	default:
		var err error
		if raw, err = json.Marshal(v); err != nil {
			return true, err
		}
	}
	return true, json.Unmarshal(raw, out)
}
