package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	c := Default()
	if !c.DSP.EnableOutput {
		t.Error("Default should enable output")
	}
	if c.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", c.Logging.Level)
	}
	if c.Recording.Directory != "./recordings" {
		t.Errorf("Recording.Directory = %q, want ./recordings", c.Recording.Directory)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !c.DSP.EnableOutput {
		t.Error("missing file should fall back to defaults")
	}
}

func TestLoadOverridesOnlyPresentKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corelx.yaml")
	const yaml = "dsp:\n  enable_output: false\nlogging:\n  level: debug\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.DSP.EnableOutput {
		t.Error("enable_output should be overridden to false")
	}
	if c.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", c.Logging.Level)
	}
	// Keys absent from the file keep their defaults.
	if c.Recording.Directory != "./recordings" {
		t.Errorf("Recording.Directory = %q, want default ./recordings", c.Recording.Directory)
	}
}

func TestLoadMalformedYAMLReturnsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("not: valid: yaml: : :"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load should return an error for malformed YAML")
	}
}
