package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/san-kum/wobbles/internal/analysis"
	"github.com/san-kum/wobbles/internal/config"
	"github.com/san-kum/wobbles/internal/df"
	"github.com/san-kum/wobbles/internal/disk"
)

// Result is one evaluated configuration.
type Result struct {
	Config    *config.Config
	Fields    disk.Fields
	Composite *df.Composite
	Profiles  df.Profiles
	Summary   analysis.Summary
	Metrics   map[string]float64
	Elapsed   time.Duration
}

type Experiment struct {
	cfg *config.Config
	src disk.Source
}

// New snapshots cfg; later changes to it do not affect the experiment.
func New(cfg *config.Config) *Experiment {
	c := cfg.Clone()
	return &Experiment{cfg: c, src: c.Source()}
}

// WithSource replaces the field source, e.g. with fields already in memory.
func (e *Experiment) WithSource(src disk.Source) *Experiment {
	e.src = src
	return e
}

func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	fields, err := e.src.Fields()
	if err != nil {
		return nil, fmt.Errorf("fields: %w", err)
	}

	comp, err := df.NewComposite(e.cfg.RhoMidplane, e.cfg.Normalizations, e.cfg.Dispersions,
		fields.J, fields.Nu, fields.Domain, e.cfg.Scales)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Config:    e.cfg,
		Fields:    fields,
		Composite: comp,
		Profiles:  comp.Profiles(),
	}
	res.Summary = analysis.Summarize(res.Profiles.ZPlus, res.Profiles.A)
	res.Metrics = metrics(res)
	res.Elapsed = time.Since(start)

	slog.Debug("experiment done", "name", e.cfg.Name, "components", len(res.Profiles.Weights),
		"heights", len(res.Profiles.Z), "elapsed", res.Elapsed)
	return res, nil
}

func metrics(r *Result) map[string]float64 {
	m := r.Summary.Metrics()
	for i, z := range r.Profiles.ZFit {
		m[fmt.Sprintf("z_fit_%d", i)] = z
	}
	if spec, err := analysis.Spectrum(r.Profiles.ZPlus, r.Profiles.A); err == nil {
		k, _ := analysis.DominantWavenumber(spec)
		m["dominant_wavenumber"] = k
	}
	return m
}
