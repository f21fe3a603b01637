package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/forcelayout/internal/physics"
)

const (
	DefaultMaxSteps  = 1000
	DefaultGenerator = "grid"
	DefaultNodes     = 25
)

// legacyKeys maps renamed settings to their current names.
var legacyKeys = map[string]string{
	"springCoeff": "spring_coefficient",
	"dragCoeff":   "drag_coefficient",
}

type Config struct {
	Physics   physics.Settings `yaml:"physics" toml:"physics"`
	Seed      uint64           `yaml:"seed" toml:"seed"`
	MaxSteps  int              `yaml:"max_steps" toml:"max_steps"`
	Input     string           `yaml:"input,omitempty" toml:"input,omitempty"`
	Generator GeneratorConfig  `yaml:"generator" toml:"generator"`
}

// GeneratorConfig picks a synthetic graph when no input file is given.
type GeneratorConfig struct {
	Name   string  `yaml:"name" toml:"name"`
	N      int     `yaml:"n" toml:"n"`
	Fanout int     `yaml:"fanout,omitempty" toml:"fanout,omitempty"`
	P      float64 `yaml:"p,omitempty" toml:"p,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Physics:  physics.DefaultSettings(),
		Seed:     physics.DefaultSeed,
		MaxSteps: DefaultMaxSteps,
		Generator: GeneratorConfig{
			Name: DefaultGenerator,
			N:    DefaultNodes,
		},
	}
}

// Validate checks the physics settings and run options.
func (c *Config) Validate() error {
	if err := c.Physics.Validate(); err != nil {
		return err
	}
	if c.MaxSteps < 0 {
		return fmt.Errorf("%w: max_steps = %d", physics.ErrInvalidParameter, c.MaxSteps)
	}
	return nil
}

// Load reads a YAML or TOML file, chosen by extension, over the defaults.
// Unknown keys are rejected; renamed keys are reported with their new name.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()

	switch format(path) {
	case "toml":
		var raw map[string]any
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if err := checkLegacy(raw); err != nil {
			return nil, err
		}
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("parse %s: unknown key %q", path, undecoded[0].String())
		}
	default:
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if err := checkLegacy(raw); err != nil {
			return nil, err
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	var buf bytes.Buffer
	switch format(path) {
	case "toml":
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return err
		}
	default:
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		buf.Write(data)
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

func format(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return "toml"
	}
	return "yaml"
}

// checkLegacy looks for renamed keys at the top level and in the physics
// table.
func checkLegacy(raw map[string]any) error {
	tables := []map[string]any{raw}
	if p, ok := raw["physics"].(map[string]any); ok {
		tables = append(tables, p)
	}
	for _, t := range tables {
		for old, current := range legacyKeys {
			if _, ok := t[old]; ok {
				return fmt.Errorf("%w: %q is now %q", physics.ErrLegacySetting, old, current)
			}
		}
	}
	return nil
}
