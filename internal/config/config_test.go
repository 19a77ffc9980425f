package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Export.Epsilon != 0.01 {
		t.Errorf("expected epsilon 0.01, got %v", cfg.Export.Epsilon)
	}
	if cfg.Export.TRS {
		t.Error("expected trs to be false by default")
	}
	if !cfg.Export.Binary {
		t.Error("expected binary to be true by default")
	}
	if got := cfg.Export.Format(); got != "glb2" {
		t.Errorf("expected format glb2, got %s", got)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestExportProperties(t *testing.T) {
	e := ExportConfig{Epsilon: 0.5, TRS: true, UnlimitedBones: true, SpecGloss: true, TargetNormals: true}
	p := e.Properties()
	if p.Epsilon != 0.5 || !p.TRS || !p.UnlimitedBones || !p.SpecularGlossiness || !p.TargetNormals {
		t.Errorf("properties not carried over: %+v", p)
	}
	if got := e.Format(); got != "gltf2" {
		t.Errorf("expected format gltf2, got %s", got)
	}
}

func TestLoadFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "assettool.yaml")

	yamlContent := `
export:
  epsilon: 0.001
  trs: true
  unlimited_bones: true
  binary: false

logging:
  level: "debug"
  log_file: "assettool.log"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Export.Epsilon != 0.001 {
		t.Errorf("expected epsilon 0.001, got %v", cfg.Export.Epsilon)
	}
	if !cfg.Export.TRS {
		t.Error("expected trs to be true")
	}
	if !cfg.Export.UnlimitedBones {
		t.Error("expected unlimited_bones to be true")
	}
	if cfg.Export.SpecGloss {
		t.Error("expected spec_gloss to keep its default")
	}
	if cfg.Export.Binary {
		t.Error("expected binary to be false")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "assettool.log" {
		t.Errorf("expected log file 'assettool.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid.yaml")
	invalidYAML := `
export:
  epsilon: not a number
  invalid syntax here
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/assettool.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	if err := os.WriteFile("assettool.yaml", []byte("export:\n  trs: true\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}
	if path := findConfigFile(); path == "" {
		t.Error("expected to find assettool.yaml in current directory")
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "assettool.yaml")
	cfg := Default()
	cfg.Export.TRS = true
	cfg.Logging.Level = "warn"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("expected %+v, got %+v", *cfg, *loaded)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "log file flag",
			setup: func() { *flagLogFile = "run.log" },
			verify: func(cfg *Config) {
				if cfg.Logging.LogFile != "run.log" {
					t.Errorf("expected log file run.log, got %s", cfg.Logging.LogFile)
				}
			},
			teardown: func() { *flagLogFile = "" },
		},
		{
			name:  "trs and epsilon flags",
			setup: func() { *flagTRS = true; *flagEpsilon = 0 },
			verify: func(cfg *Config) {
				if !cfg.Export.TRS {
					t.Error("expected trs to be enabled")
				}
				if cfg.Export.Epsilon != 0 {
					t.Errorf("expected epsilon 0, got %v", cfg.Export.Epsilon)
				}
			},
			teardown: func() { *flagTRS = false; *flagEpsilon = -1 },
		},
		{
			name:  "text flag",
			setup: func() { *flagText = true },
			verify: func(cfg *Config) {
				if cfg.Export.Format() != "gltf2" {
					t.Errorf("expected format gltf2, got %s", cfg.Export.Format())
				}
			},
			teardown: func() { *flagText = false },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "assettool.yaml")
	yamlContent := `
export:
  epsilon: 0.2
  unlimited_bones: true
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagEpsilon = 0.05
	defer func() {
		*flagConfig = ""
		*flagEpsilon = -1
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Export.Epsilon != 0.05 {
		t.Errorf("expected epsilon 0.05 from flag, got %v", cfg.Export.Epsilon)
	}
	if !cfg.Export.UnlimitedBones {
		t.Error("expected unlimited_bones from file")
	}
}

func TestLoadRejectsNegativeEpsilon(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "assettool.yaml")
	if err := os.WriteFile(configPath, []byte("export:\n  epsilon: -1\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); err == nil {
		t.Error("expected error for negative epsilon")
	}
}
