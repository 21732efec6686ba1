package config

import (
	"sort"

	"github.com/san-kum/wobbles/internal/phasespace"
)

func preset(name string, norms, sigmas []float64, d DiskConfig) *Config {
	cfg := DefaultConfig()
	cfg.Name = name
	cfg.Normalizations = norms
	cfg.Dispersions = sigmas
	if d.Nu == 0 {
		d.Nu = DefaultNu
	}
	if d.NoiseScale == 0 {
		d.NoiseScale = 0.1
	}
	cfg.Disk = d
	return cfg
}

var Presets = map[string]*Config{
	"thin":          preset("thin", []float64{1}, []float64{0.08}, DiskConfig{}),
	"thick":         preset("thick", []float64{1}, []float64{0.2}, DiskConfig{}),
	"two-component": preset("two-component", []float64{0.85, 0.15}, []float64{0.1, 0.2}, DiskConfig{}),
	"bending":       preset("bending", []float64{0.85, 0.15}, []float64{0.1, 0.2}, DiskConfig{ZShift: 0.05}),
	"kicked":        preset("kicked", []float64{0.85, 0.15}, []float64{0.1, 0.2}, DiskConfig{VShift: 0.02}),
	"breathing":     preset("breathing", []float64{1}, []float64{0.15}, DiskConfig{Breathing: 0.1}),
	"noisy": func() *Config {
		cfg := preset("noisy", []float64{0.85, 0.15}, []float64{0.1, 0.2}, DiskConfig{Noise: 0.05, Seed: 42})
		cfg.Grid = phasespace.Grid{ZMin: -1, ZMax: 1, NZ: 61, VMin: -1, VMax: 1, NV: 101}
		return cfg
	}(),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
