package config

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/san-kum/wobbles/internal/disk"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if len(cfg.Normalizations) != len(cfg.Dispersions) {
		t.Error("default lists should have equal length")
	}
	if cfg.Grid.NZ <= 0 || cfg.Grid.NV <= 0 {
		t.Error("grid sizes should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("kicked")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Disk.VShift != 0.02 {
		t.Errorf("expected v_shift 0.02, got %f", cfg.Disk.VShift)
	}

	cfg.Dispersions[0] = 99
	if Presets["kicked"].Dispersions[0] == 99 {
		t.Error("GetPreset returned shared state")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	if len(presets) != len(Presets) {
		t.Errorf("expected %d presets, got %d", len(Presets), len(presets))
	}
	for i := 1; i < len(presets); i++ {
		if presets[i-1] > presets[i] {
			t.Errorf("presets not sorted: %v", presets)
		}
	}
	for _, name := range presets {
		if err := Presets[name].Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.yaml")

	cfg := GetPreset("two-component")
	cfg.Disk.ZShift = 0.03
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.Name != "two-component" || got.Disk.ZShift != 0.03 {
		t.Errorf("round trip lost fields: %+v", got)
	}
	if len(got.Dispersions) != 2 || got.Dispersions[1] != 0.2 {
		t.Errorf("dispersions = %v", got.Dispersions)
	}
	if got.Scales != cfg.Scales {
		t.Errorf("scales = %+v, want %+v", got.Scales, cfg.Scales)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero density", func(c *Config) { c.RhoMidplane = 0 }},
		{"bad scale", func(c *Config) { c.Scales.Velocity = -1 }},
		{"bad nu", func(c *Config) { c.Disk.Nu = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSource(t *testing.T) {
	cfg := DefaultConfig()
	if _, ok := cfg.Source().(*disk.Harmonic); !ok {
		t.Error("expected synthetic disk source")
	}
	cfg.Fields = "fields.json"
	if f, ok := cfg.Source().(disk.File); !ok || f.Path != "fields.json" {
		t.Error("expected file source")
	}
}
