// Package config loads pqgram settings from YAML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/phobologic/pqgram/internal/lang"
	"github.com/phobologic/pqgram/pqgram"
)

// FileName is the config file looked up in the scanned root.
const FileName = ".pqgram.yaml"

// DefaultMaxFileSize skips files larger than 1 MB.
const DefaultMaxFileSize = 1_000_000

// Config holds the full pqgram configuration.
type Config struct {
	P             int      `yaml:"p"`
	Q             int      `yaml:"q"`
	Threshold     float64  `yaml:"threshold"`
	MaxPairs      int      `yaml:"max_pairs"`
	Langs         []string `yaml:"langs"`
	Exclude       []string `yaml:"exclude"`
	SkipTests     bool     `yaml:"skip_tests"`
	MaxFileSize   int      `yaml:"max_file_size"`
	LeafText      bool     `yaml:"leaf_text"`
	AllNodes      bool     `yaml:"all_nodes"`
	XMLAttributes bool     `yaml:"xml_attributes"`
	XMLNamespaces bool     `yaml:"xml_namespaces"`
	CrossLanguage bool     `yaml:"cross_language"`
	Jobs          int      `yaml:"jobs"` // 0 means GOMAXPROCS
}

// Default returns sane defaults.
func Default() *Config {
	return &Config{
		P:           pqgram.DefaultP,
		Q:           pqgram.DefaultQ,
		Threshold:   0.3,
		MaxFileSize: DefaultMaxFileSize,
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDir loads FileName from dir if it exists and returns the defaults
// otherwise. found reports whether a file was read.
func LoadDir(dir string) (cfg *Config, found bool, err error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return Default(), false, nil
	}
	cfg, err = Load(path)
	if err != nil {
		return nil, false, err
	}
	return cfg, true, nil
}

// Validate checks that values are sane.
func (c *Config) Validate() error {
	if c.P < 1 {
		return fmt.Errorf("p must be >= 1, got %d", c.P)
	}
	if c.Q < 1 {
		return fmt.Errorf("q must be >= 1, got %d", c.Q)
	}
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("threshold must be within [0, 1], got %v", c.Threshold)
	}
	if c.MaxPairs < 0 {
		return fmt.Errorf("max_pairs must be >= 0, got %d", c.MaxPairs)
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("max_file_size must be > 0, got %d", c.MaxFileSize)
	}
	if c.Jobs < 0 {
		return fmt.Errorf("jobs must be >= 0, got %d", c.Jobs)
	}
	for _, name := range c.Langs {
		if _, err := lang.Lookup(name); err != nil {
			return err
		}
	}
	return nil
}

// Encode renders c as YAML for a new config file.
func (c *Config) Encode() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	header := "# pqgram settings. Command-line flags take precedence.\n"
	return append([]byte(header), data...), nil
}
