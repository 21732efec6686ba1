package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/wobbles/internal/disk"
	"github.com/san-kum/wobbles/internal/phasespace"
	"gopkg.in/yaml.v3"
)

const (
	DefaultRhoMidplane = 1.0
	DefaultNu          = 0.3
	DefaultSigma       = 0.15
	DefaultNZ          = 81
	DefaultNV          = 121
	DefaultZMax        = 1.0
	DefaultVMax        = 1.0
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Name           string            `yaml:"name"`
	RhoMidplane    float64           `yaml:"rho_midplane"`
	Normalizations []float64         `yaml:"normalizations"`
	Dispersions    []float64         `yaml:"dispersions"`
	Scales         phasespace.Scales `yaml:"scales"`
	Grid           phasespace.Grid   `yaml:"grid"`
	Disk           DiskConfig        `yaml:"disk"`
	// Fields, when set, points at a JSON field set and replaces the
	// synthetic disk.
	Fields string `yaml:"fields,omitempty"`
}

type DiskConfig struct {
	Nu         float64 `yaml:"nu"`
	ZShift     float64 `yaml:"z_shift"`
	VShift     float64 `yaml:"v_shift"`
	Breathing  float64 `yaml:"breathing"`
	Noise      float64 `yaml:"noise"`
	NoiseScale float64 `yaml:"noise_scale"`
	Seed       int64   `yaml:"seed"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:           "default",
		RhoMidplane:    DefaultRhoMidplane,
		Normalizations: []float64{1.0},
		Dispersions:    []float64{DefaultSigma},
		Scales:         phasespace.DefaultScales(),
		Grid: phasespace.Grid{
			ZMin: -DefaultZMax, ZMax: DefaultZMax, NZ: DefaultNZ,
			VMin: -DefaultVMax, VMax: DefaultVMax, NV: DefaultNV,
		},
		Disk: DiskConfig{
			Nu:         DefaultNu,
			NoiseScale: 0.1,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks what can be checked without building fields. The
// normalization/dispersion length check is left to the df constructor.
func (c *Config) Validate() error {
	if !(c.RhoMidplane > 0) {
		return fmt.Errorf("%w: rho_midplane must be positive, got %v", ErrInvalidConfig, c.RhoMidplane)
	}
	if err := c.Scales.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Fields == "" {
		if err := c.Harmonic().Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}

// Harmonic builds the synthetic disk described by the config.
func (c *Config) Harmonic() *disk.Harmonic {
	h := disk.NewHarmonic(c.Grid)
	h.Nu = c.Disk.Nu
	h.ZShift = c.Disk.ZShift
	h.VShift = c.Disk.VShift
	h.Breathing = c.Disk.Breathing
	h.Noise = c.Disk.Noise
	h.NoiseScale = c.Disk.NoiseScale
	h.Seed = c.Disk.Seed
	return h
}

// Source returns the field source: the JSON file if configured, the
// synthetic disk otherwise.
func (c *Config) Source() disk.Source {
	if c.Fields != "" {
		return disk.File{Path: c.Fields}
	}
	return c.Harmonic()
}

// Clone deep-copies the config so sweeps can mutate it.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Normalizations = append([]float64(nil), c.Normalizations...)
	cp.Dispersions = append([]float64(nil), c.Dispersions...)
	return &cp
}
