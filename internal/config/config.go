// Package config handles assettool configuration loading and management.
package config

import "github.com/Faultbox/assetkit/pkg/assetio"

// Config holds all tool settings.
type Config struct {
	Export  ExportConfig  `yaml:"export"`
	Logging LoggingConfig `yaml:"logging"`
}

// ExportConfig holds the defaults applied by convert.
type ExportConfig struct {
	Epsilon        float64 `yaml:"epsilon"`
	TRS            bool    `yaml:"trs"`
	UnlimitedBones bool    `yaml:"unlimited_bones"`
	SpecGloss      bool    `yaml:"spec_gloss"`
	TargetNormals  bool    `yaml:"target_normals"`
	Binary         bool    `yaml:"binary"` // write .glb unless a format is given
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Export: ExportConfig{
			Epsilon: assetio.DefaultEpsilon,
			Binary:  true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Properties converts the export section into codec properties.
func (e ExportConfig) Properties() assetio.Properties {
	p := assetio.DefaultProperties()
	p.Epsilon = e.Epsilon
	p.TRS = e.TRS
	p.UnlimitedBones = e.UnlimitedBones
	p.SpecularGlossiness = e.SpecGloss
	p.TargetNormals = e.TargetNormals
	return p
}

// Format returns the glTF 2.0 exporter id matching Binary.
func (e ExportConfig) Format() string {
	if e.Binary {
		return "glb2"
	}
	return "gltf2"
}
