// Package scene defines the in-memory scene representation shared by all
// importers and exporters. Cross-references between entities are indices
// into the owning Scene's slices.
package scene

import (
	"fmt"
	"strings"
)

// Flags is the scene status bitset.
type Flags uint8

const (
	FlagIncomplete        Flags = 0x01
	FlagValidated         Flags = 0x02
	FlagValidationWarning Flags = 0x04
	FlagNonVerboseFormat  Flags = 0x08
	FlagTerrain           Flags = 0x10
	FlagAllowShared       Flags = 0x20
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{FlagIncomplete, "Incomplete"},
	{FlagValidated, "Validated"},
	{FlagValidationWarning, "ValidationWarning"},
	{FlagNonVerboseFormat, "NonVerboseFormat"},
	{FlagTerrain, "Terrain"},
	{FlagAllowShared, "AllowShared"},
}

// Has reports whether all bits of f2 are set.
func (f Flags) Has(f2 Flags) bool {
	return f&f2 == f2
}

// String returns the set flag names joined by "|".
func (f Flags) String() string {
	var parts []string
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			parts = append(parts, fn.name)
		}
	}
	if len(parts) == 0 {
		return "None"
	}
	return strings.Join(parts, "|")
}

// Metadata keys written by importers.
const (
	MetaSourceFormat        = "SourceAsset_Format"
	MetaSourceFormatVersion = "SourceAsset_FormatVersion"
	MetaSourceGenerator     = "SourceAsset_Generator"
	MetaSourceCopyright     = "SourceAsset_Copyright"
	MetaLightRange          = "PBR_LightRange"
	MetaExtensionsPrefix    = "Extensions_"
)

// Scene is the root of an imported or to-be-exported asset.
type Scene struct {
	Name       string
	Flags      Flags
	Nodes      NodeTree
	Meshes     []Mesh
	Materials  []Material
	Animations []Animation
	Textures   []Texture
	Lights     []Light
	Cameras    []Camera
	Skeletons  []Skeleton
	Metadata   Metadata

	// Warnings collects non-fatal conditions found while importing.
	Warnings []string
}

// New returns an empty scene with the given name.
func New(name string) *Scene {
	return &Scene{Name: name}
}

// Warnf records a non-fatal import condition.
func (s *Scene) Warnf(format string, args ...any) {
	s.Warnings = append(s.Warnings, fmt.Sprintf(format, args...))
}

// CameraByName returns the index of the first camera with the given name.
func (s *Scene) CameraByName(name string) (int, bool) {
	for i := range s.Cameras {
		if s.Cameras[i].Name == name {
			return i, true
		}
	}
	return -1, false
}

// LightByName returns the index of the first light with the given name.
func (s *Scene) LightByName(name string) (int, bool) {
	for i := range s.Lights {
		if s.Lights[i].Name == name {
			return i, true
		}
	}
	return -1, false
}

// Skeleton groups bones sharing a common root node.
type Skeleton struct {
	Name  string
	Bones []SkeletonBone
}

// SkeletonBone is a bone entry of a Skeleton.
type SkeletonBone struct {
	Parent       int // -1 for none
	NodeIndex    int
	MeshIndex    int
	OffsetMatrix [16]float64
}
