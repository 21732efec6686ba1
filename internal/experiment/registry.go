package experiment

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/wobbles/internal/config"
	"github.com/san-kum/wobbles/internal/disk"
)

var (
	ErrUnknownParam = errors.New("experiment: unknown parameter")
	ErrFieldsFixed  = errors.New("experiment: disk parameters do not apply to loaded fields")
)

type setter func(cfg *config.Config, value float64)

var configParams = map[string]setter{
	"rho": func(cfg *config.Config, v float64) { cfg.RhoMidplane = v },
	"sigma": func(cfg *config.Config, v float64) {
		for i := range cfg.Dispersions {
			cfg.Dispersions[i] = v
		}
	},
	"sigma_scale": func(cfg *config.Config, v float64) {
		for i := range cfg.Dispersions {
			cfg.Dispersions[i] *= v
		}
	},
	"seed": func(cfg *config.Config, v float64) { cfg.Disk.Seed = int64(v) },
}

// SetParam applies a named parameter to cfg. Names cover the mixture
// (rho, sigma, sigma_scale), the noise seed and every synthetic disk
// parameter.
func SetParam(cfg *config.Config, name string, value float64) error {
	if fn, ok := configParams[name]; ok {
		fn(cfg, value)
		return nil
	}

	if _, ok := diskParams()[name]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownParam, name)
	}
	if cfg.Fields != "" {
		return fmt.Errorf("%w: %s", ErrFieldsFixed, name)
	}

	h := cfg.Harmonic()
	if err := h.SetParam(name, value); err != nil {
		return err
	}
	cfg.Disk = config.DiskConfig{
		Nu:         h.Nu,
		ZShift:     h.ZShift,
		VShift:     h.VShift,
		Breathing:  h.Breathing,
		Noise:      h.Noise,
		NoiseScale: h.NoiseScale,
		Seed:       h.Seed,
	}
	return nil
}

func diskParams() map[string]float64 {
	return disk.NewHarmonic(config.DefaultConfig().Grid).GetParams()
}

func ListParams() []string {
	names := make([]string, 0, len(configParams)+8)
	for name := range configParams {
		names = append(names, name)
	}
	for name := range diskParams() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
