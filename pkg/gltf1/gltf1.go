// Package gltf1 imports and exports glTF 1.0 assets.
//
// Every top-level collection of a 1.0 document is an object keyed by string
// id, and references between entities use those ids. Binary files use the
// 20-byte container of the KHR_binary_glTF extension, whose body is the
// buffer with id "binary_glTF".
package gltf1

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/Faultbox/assetkit/pkg/assetio"
	"github.com/Faultbox/assetkit/pkg/container"
)

// Format ids of the exporters.
const (
	FormatGLTF = "gltf1"
	FormatGLB  = "glb1"
)

// Extension names handled by the codec.
const (
	extBinary = "KHR_binary_glTF"
	extCommon = "KHR_materials_common"
)

// BinaryBufferID is the buffer id of the container body.
const BinaryBufferID = "binary_glTF"

// ErrInvalidReference is returned when an id in the document points at
// nothing.
var ErrInvalidReference = errors.New("invalid reference")

// ErrMissingPositions is returned for primitives without POSITION.
var ErrMissingPositions = errors.New("primitive has no POSITION attribute")

// Importer reads glTF 1.0 .gltf and .glb files.
type Importer struct{}

// Name implements assetio.Importer.
func (Importer) Name() string { return "glTF 1.0 importer" }

// Extensions implements assetio.Importer.
func (Importer) Extensions() []string { return []string{"gltf", "glb"} }

// CanRead accepts containers with version 1 and JSON documents whose asset
// version is 1.x or absent.
func (Importer) CanRead(path string, loader assetio.Loader) (bool, error) {
	data, err := assetio.ReadAll(loader, path)
	if err != nil {
		return false, err
	}
	if version, ok := container.Sniff(data); ok {
		return version == 1, nil
	}
	var probe struct {
		Asset *struct {
			Version string `json:"version"`
		} `json:"asset"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return false, nil
	}
	if probe.Asset == nil || probe.Asset.Version == "" {
		return true, nil
	}
	return strings.HasPrefix(probe.Asset.Version, "1"), nil
}

// Exporter writes glTF 1.0 as a .gltf with a .bin side-file or as a single
// binary container.
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
		return "glTF 1.0 (binary)"
	}
	return "glTF 1.0"
}
