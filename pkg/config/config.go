// Package config loads the optional YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable consulted when no --config is given.
const EnvVar = "IGATOOL_CONFIG"

type LogConfig struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	MaxBackups int    `yaml:"maxBackups"`
	Compress   bool   `yaml:"compress"`
	Verbose    bool   `yaml:"verbose"`
}

type Config struct {
	OutputDir    string    `yaml:"outputDir"`
	ForceDecrypt bool      `yaml:"forceDecrypt"`
	BufferSize   int       `yaml:"bufferSize"`
	Progress     bool      `yaml:"progress"`
	Logs         LogConfig `yaml:"logs"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	var cfg Config
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	if c.BufferSize == 0 {
		c.BufferSize = 4096
	}
	if c.Logs.MaxSizeMB <= 0 {
		c.Logs.MaxSizeMB = 25
	}
	if c.Logs.MaxAgeDays <= 0 {
		c.Logs.MaxAgeDays = 7
	}
	if c.Logs.MaxBackups <= 0 {
		c.Logs.MaxBackups = 5
	}
}

// Validate checks values that would make an operation fail later.
func (c Config) Validate() error {
	if c.BufferSize <= 0 || c.BufferSize%256 != 0 {
		return fmt.Errorf("bufferSize %d: must be a positive multiple of 256", c.BufferSize)
	}
	return nil
}

// Load reads path, or the file named by EnvVar when path is empty. With
// neither set it returns Default().
func Load(path string) (Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return Default(), nil
	}

	var cfg Config
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("decode %s: %w", path, err)
	}

	baseDir := filepath.Dir(path)
	resolvePath := func(p string) string {
		p = strings.TrimSpace(p)
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Clean(filepath.Join(baseDir, p))
	}
	cfg.OutputDir = resolvePath(cfg.OutputDir)
	cfg.Logs.File = resolvePath(cfg.Logs.File)
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
