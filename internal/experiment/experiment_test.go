package experiment

import (
	"context"
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/san-kum/wobbles/internal/config"
	"github.com/san-kum/wobbles/internal/df"
)

func smallConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Grid.NZ = 41
	cfg.Grid.NV = 61
	return cfg
}

func TestRun(t *testing.T) {
	cfg := smallConfig()
	res, err := New(cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(res.Profiles.Z) != 41 || len(res.Profiles.ZPlus) != 41 {
		t.Errorf("profile lengths = %d, %d", len(res.Profiles.Z), len(res.Profiles.ZPlus))
	}
	if res.Summary.PeakAbs > 1e-3 {
		t.Errorf("symmetric disk has |A| = %v", res.Summary.PeakAbs)
	}
	if _, ok := res.Metrics["z_fit_0"]; !ok {
		t.Errorf("metrics = %v", res.Metrics)
	}
	if res.Config == cfg {
		t.Error("experiment should snapshot the config")
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New(smallConfig()).Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRunInvalid(t *testing.T) {
	cfg := smallConfig()
	cfg.RhoMidplane = 0
	if _, err := New(cfg).Run(context.Background()); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("err = %v", err)
	}

	cfg = smallConfig()
	cfg.Dispersions = []float64{0.1, 0.2}
	if _, err := New(cfg).Run(context.Background()); !errors.Is(err, df.ErrLengthMismatch) {
		t.Errorf("err = %v", err)
	}
}

func TestSetParam(t *testing.T) {
	cfg := smallConfig()
	cfg.Normalizations = []float64{0.7, 0.3}
	cfg.Dispersions = []float64{0.1, 0.2}

	tests := []struct {
		name  string
		value float64
		check func() bool
	}{
		{"rho", 2, func() bool { return cfg.RhoMidplane == 2 }},
		{"sigma_scale", 2, func() bool { return cfg.Dispersions[0] == 0.2 && cfg.Dispersions[1] == 0.4 }},
		{"sigma", 0.3, func() bool { return cfg.Dispersions[0] == 0.3 && cfg.Dispersions[1] == 0.3 }},
		{"z_shift", 0.05, func() bool { return cfg.Disk.ZShift == 0.05 }},
		{"nu", 0.5, func() bool { return cfg.Disk.Nu == 0.5 && cfg.Disk.ZShift == 0.05 }},
		{"seed", 7, func() bool { return cfg.Disk.Seed == 7 }},
	}

	for _, tt := range tests {
		if err := SetParam(cfg, tt.name, tt.value); err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if !tt.check() {
			t.Errorf("%s not applied: %+v", tt.name, cfg)
		}
	}

	if err := SetParam(cfg, "bogus", 1); !errors.Is(err, ErrUnknownParam) {
		t.Errorf("err = %v", err)
	}

	cfg.Fields = "fields.json"
	if err := SetParam(cfg, "z_shift", 1); !errors.Is(err, ErrFieldsFixed) {
		t.Errorf("err = %v", err)
	}
	if err := SetParam(cfg, "rho", 3); err != nil {
		t.Errorf("mixture params should still apply: %v", err)
	}
}

func TestListParams(t *testing.T) {
	names := ListParams()
	for _, want := range []string{"nu", "rho", "sigma", "z_shift", "noise_scale"} {
		if !slices.Contains(names, want) {
			t.Errorf("missing %s in %v", want, names)
		}
	}
	if !slices.IsSorted(names) {
		t.Errorf("not sorted: %v", names)
	}
}

func TestDisplacedMetrics(t *testing.T) {
	cfg := smallConfig()
	cfg.Disk.ZShift = 0.1
	res, err := New(cfg).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	zfit := res.Metrics["z_fit_0"]
	want := -0.1 * cfg.Scales.Length
	if math.Abs(zfit-want) > 0.05*cfg.Scales.Length {
		t.Errorf("z_fit = %v, want about %v", zfit, want)
	}
}
