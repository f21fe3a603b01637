package config

import "slices"

var Presets = map[string]func() *Config{
	"default": DefaultConfig,
	"3d": func() *Config {
		c := DefaultConfig()
		c.Physics.Dimensions = 3
		return c
	},
	"compact": func() *Config {
		c := DefaultConfig()
		c.Physics.SpringLength = 5
		c.Physics.Gravity = -4
		c.Physics.SpringCoefficient = 1.2
		return c
	},
	"spread": func() *Config {
		c := DefaultConfig()
		c.Physics.SpringLength = 30
		c.Physics.Gravity = -40
		return c
	},
	"adaptive": func() *Config {
		c := DefaultConfig()
		c.Physics.AdaptiveTimeStepWeight = 0.05
		return c
	},
	"hyper": func() *Config {
		c := DefaultConfig()
		c.Physics.Dimensions = 6
		c.Physics.Theta = 1.2
		c.Generator = GeneratorConfig{Name: "tree", N: 63, Fanout: 2}
		return c
	},
	"exact": func() *Config {
		c := DefaultConfig()
		c.Physics.Theta = 0
		c.Physics.Debug = true
		return c
	},
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *Config {
	fn, ok := Presets[name]
	if !ok {
		return nil
	}
	return fn()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
