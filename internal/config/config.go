// Package config loads corelx's startup settings from a flat YAML file,
// with every key optional and a sane default when absent, following the
// retrieval pack's common flat-YAML-settings-file pattern for
// service-shaped Go repos.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is corelx's startup configuration.
type Config struct {
	DSP struct {
		EnableOutput bool `yaml:"enable_output"`
	} `yaml:"dsp"`

	Audio struct {
		Device string `yaml:"device"`
	} `yaml:"audio"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`

	Recording struct {
		Directory string `yaml:"directory"`
	} `yaml:"recording"`
}

// Default returns a Config with every ambient key set to its sane
// default: output enabled, default audio device, info logging, and
// recordings under ./recordings.
func Default() *Config {
	c := &Config{}
	c.DSP.EnableOutput = true
	c.Audio.Device = ""
	c.Logging.Level = "info"
	c.Recording.Directory = "./recordings"
	return c
}

// Load reads and parses a YAML config file at path, starting from
// Default and overwriting only the keys present in the file.
func Load(path string) (*Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return c, nil
}
