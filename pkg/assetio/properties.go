package assetio

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Property keys understood by the codecs.
const (
	PropEpsilon          = "GLTF_EPSILON"
	PropTRS              = "GLTF_TRS"
	PropUnlimitedBones   = "GLTF_UNLIMITED_BONES"
	PropSpecularGlossy   = "GLTF_SPEC_GLOSS"
	PropTargetNormals    = "GLTF_TARGET_NORMALS"
	DefaultEpsilon       = 0.01
	DefaultMaxBoneWeight = 4
)

// Properties tunes import and export behavior.
type Properties struct {
	// Epsilon is the per-element tolerance for identity-matrix suppression.
	// Zero selects DefaultEpsilon.
	Epsilon float64
	// TRS writes node transforms as translation/rotation/scale.
	TRS bool
	// UnlimitedBones keeps every bone weight instead of the strongest four.
	UnlimitedBones bool
	// SpecularGlossiness writes KHR_materials_pbrSpecularGlossiness.
	SpecularGlossiness bool
	// TargetNormals exports morph target normals.
	TargetNormals bool
}

// DefaultProperties returns the stock settings.
func DefaultProperties() Properties {
	return Properties{Epsilon: DefaultEpsilon}
}

// Tolerance returns the identity tolerance exporters compare against.
func (p Properties) Tolerance() float64 {
	if p.Epsilon <= 0 {
		return DefaultEpsilon
	}
	return p.Epsilon
}

// Set applies a value by its property key. Unknown keys are ignored.
func (p *Properties) Set(key string, value any) error {
	switch key {
	case PropEpsilon:
		switch v := value.(type) {
		case float64:
			p.Epsilon = v
		case float32:
			p.Epsilon = float64(v)
		case int:
			p.Epsilon = float64(v)
		default:
			return fmt.Errorf("property %s: expected number, got %T", key, value)
		}
	case PropTRS, PropUnlimitedBones, PropSpecularGlossy, PropTargetNormals:
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("property %s: expected bool, got %T", key, value)
		}
		switch key {
		case PropTRS:
			p.TRS = b
		case PropUnlimitedBones:
			p.UnlimitedBones = b
		case PropSpecularGlossy:
			p.SpecularGlossiness = b
		default:
			p.TargetNormals = b
		}
	}
	return nil
}

// LoadProperties reads a YAML map of property keys to values. Unknown keys
// are ignored; unset keys keep their defaults.
func LoadProperties(path string) (Properties, error) {
	p := DefaultProperties()
	data, err := os.ReadFile(path)
	if err != nil {
		return p, err
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return p, fmt.Errorf("parse properties: %w", err)
	}
	for key, v := range raw {
		if err := p.Set(key, v); err != nil {
			return p, err
		}
	}
	if p.Epsilon < 0 {
		return p, fmt.Errorf("%s must be non-negative, got %v", PropEpsilon, p.Epsilon)
	}
	return p, nil
}
