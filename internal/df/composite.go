package df

import (
	"fmt"
	"math"

	"github.com/san-kum/wobbles/internal/numeric"
	"github.com/san-kum/wobbles/internal/phasespace"
	"golang.org/x/sync/errgroup"
)

// Composite is a weighted mixture of components sharing one grid.
type Composite struct {
	components []*SingleComponent
	weights    []float64

	z     []float64
	v     []float64
	zPlus []float64

	density []float64
	meanV   []float64
	meanRel []float64
	sigmaV  []float64
	a       []float64
}

// NewComposite builds one component per (normalization, dispersion) pair.
// Component i is normalized to normalizations[i] * rhoMidplane; the
// normalized weights normalizations / sum(normalizations) are used only to
// mix moments, mean velocity and asymmetry.
func NewComposite(rhoMidplane float64, normalizations, dispersions []float64, j, nu phasespace.Field, dom phasespace.Domain, sc phasespace.Scales) (*Composite, error) {
	if len(normalizations) != len(dispersions) {
		return nil, fmt.Errorf("%w: %d normalizations, %d dispersions", ErrLengthMismatch, len(normalizations), len(dispersions))
	}
	if len(normalizations) == 0 {
		return nil, ErrNoComponents
	}
	weights, err := normalize(normalizations)
	if err != nil {
		return nil, err
	}

	components := make([]*SingleComponent, len(normalizations))
	var g errgroup.Group
	for i := range normalizations {
		g.Go(func() error {
			c, err := NewSingleComponent(normalizations[i]*rhoMidplane, dispersions[i], j, nu, dom, sc)
			if err != nil {
				return &ComponentError{Index: i, Sigma: dispersions[i], Wrapped: err}
			}
			components[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	first := components[0]
	c := &Composite{
		components: components,
		weights:    weights,
		z:          first.z,
		v:          first.v,
		zPlus:      first.zPlus,
	}
	c.aggregate()
	return c, nil
}

func normalize(norms []float64) ([]float64, error) {
	total := 0.0
	for _, w := range norms {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("%w: %v", ErrBadWeights, norms)
		}
		total += w
	}
	if !(total > 0) {
		return nil, fmt.Errorf("%w: %v", ErrBadWeights, norms)
	}

	weights := make([]float64, len(norms))
	for i, w := range norms {
		weights[i] = w / total
	}
	return weights, nil
}

func (c *Composite) aggregate() {
	n := len(c.z)
	c.density = make([]float64, n)
	c.meanV = make([]float64, n)
	c.a = make([]float64, len(c.zPlus))

	// Each component already carries its share of rho0, so densities add
	// without weights.
	for i, comp := range c.components {
		numeric.AddScaled(c.density, 1, comp.density)
		numeric.AddScaled(c.meanV, c.weights[i], comp.meanV)
		numeric.AddScaled(c.a, c.weights[i], comp.a)
	}

	c.sigmaV = dispersion(c.VelocityMoment(2), c.VelocityMoment(1))

	mean := numeric.Mean(c.meanV)
	c.meanRel = make([]float64, n)
	for i, v := range c.meanV {
		c.meanRel[i] = v - mean
	}
}

// VelocityMoment is the weight-averaged component moment of order n.
func (c *Composite) VelocityMoment(n int) []float64 {
	out := make([]float64, len(c.z))
	for i, comp := range c.components {
		numeric.AddScaled(out, c.weights[i], comp.VelocityMoment(n))
	}
	return out
}

// Density is the sum of the component densities.
func (c *Composite) Density() []float64 { return clone(c.density) }

func (c *Composite) MeanV() []float64 { return clone(c.meanV) }

// MeanVRelative is MeanV minus its average over the grid heights.
func (c *Composite) MeanVRelative() []float64 { return clone(c.meanRel) }

// VelocityDispersion is sqrt(m2 - m1²) of the mixed moments, not a mix of
// component dispersions.
func (c *Composite) VelocityDispersion() []float64 { return clone(c.sigmaV) }

func (c *Composite) A() []float64 { return clone(c.a) }

func (c *Composite) Weights() []float64 { return clone(c.weights) }

func (c *Composite) Components() []*SingleComponent {
	return append([]*SingleComponent(nil), c.components...)
}

func (c *Composite) Z() []float64 { return clone(c.z) }

func (c *Composite) V() []float64 { return clone(c.v) }

func (c *Composite) ZPlus() []float64 { return clone(c.zPlus) }

// Profiles is a flat snapshot of a composite for storage and display.
type Profiles struct {
	Z                  []float64 `json:"z"`
	Density            []float64 `json:"density"`
	MeanV              []float64 `json:"mean_v"`
	MeanVRelative      []float64 `json:"mean_v_relative"`
	VelocityDispersion []float64 `json:"velocity_dispersion"`
	ZPlus              []float64 `json:"z_plus"`
	A                  []float64 `json:"asymmetry"`
	Weights            []float64 `json:"weights"`
	ZFit               []float64 `json:"z_fit"`
	ScaleHeight        []float64 `json:"scale_height"`
	// Sigma holds each component's input dispersion.
	Sigma []float64 `json:"sigma"`
}

func (c *Composite) Profiles() Profiles {
	p := Profiles{
		Z:                  c.Z(),
		Density:            c.Density(),
		MeanV:              c.MeanV(),
		MeanVRelative:      c.MeanVRelative(),
		VelocityDispersion: c.VelocityDispersion(),
		ZPlus:              c.ZPlus(),
		A:                  c.A(),
		Weights:            c.Weights(),
	}
	for _, comp := range c.components {
		fit := comp.Fit()
		p.ZFit = append(p.ZFit, fit.Offset)
		p.ScaleHeight = append(p.ScaleHeight, fit.ScaleHeight)
		p.Sigma = append(p.Sigma, comp.Sigma())
	}
	return p
}
