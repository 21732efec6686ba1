package df

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/wobbles/internal/numeric"
	"github.com/san-kum/wobbles/internal/phasespace"
	"gonum.org/v1/gonum/floats"
)

const minRowChunk = 16

var sqrt2Pi = math.Sqrt(2 * math.Pi)

// SingleComponent is one quasi-isothermal component at a fixed velocity
// dispersion.
type SingleComponent struct {
	rho0   float64
	sigma0 float64
	scales phasespace.Scales

	vdom []float64 // internal units, Simpson abscissa for the density
	z    []float64 // physical heights
	v    []float64 // physical velocities

	f0          phasespace.Field
	rowSum      []float64
	normDensity float64
	density     []float64
	meanV       []float64
	sigmaV      []float64

	fit   numeric.Sech2Params
	zPlus []float64
	a     []float64
}

// NewSingleComponent evaluates f0 on the grid and derives every profile.
// nu must broadcast to J's shape: a scalar (1x1), one value per height
// (rows x 1), one per velocity (1 x cols) or a full field.
func NewSingleComponent(rhoMidplane, sigma float64, j, nu phasespace.Field, dom phasespace.Domain, sc phasespace.Scales) (*SingleComponent, error) {
	if !(sigma > 0) || math.IsInf(sigma, 0) {
		return nil, fmt.Errorf("%w: %v", ErrBadDispersion, sigma)
	}
	if err := dom.Validate(); err != nil {
		return nil, err
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	if err := dom.Check(j); err != nil {
		return nil, fmt.Errorf("action field: %w", err)
	}
	if !nu.BroadcastsTo(j.Rows, j.Cols) {
		return nil, fmt.Errorf("frequency field: %w", &phasespace.ShapeError{
			What: "nu", Rows: nu.Rows, Cols: nu.Cols, WantRows: j.Rows, WantCols: j.Cols,
		})
	}

	s := &SingleComponent{
		rho0:   rhoMidplane,
		sigma0: sigma,
		scales: sc,
		vdom:   append([]float64(nil), dom.V...),
		z:      make([]float64, len(dom.Z)),
		v:      make([]float64, len(dom.V)),
	}
	floats.ScaleTo(s.z, sc.Length, dom.Z)
	floats.ScaleTo(s.v, sc.Velocity, dom.V)

	s.computeF0(j, nu)
	s.computeDensity(dom.Midplane())
	s.meanV = s.VelocityMoment(1)
	s.sigmaV = dispersion(s.VelocityMoment(2), s.meanV)

	fit, err := numeric.FitSech2(s.z, s.density)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProfileFit, err)
	}
	s.fit = fit

	if err := s.computeAsymmetry(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SingleComponent) computeF0(j, nu phasespace.Field) {
	s.f0 = phasespace.NewField(j.Rows, j.Cols)
	s.rowSum = make([]float64, j.Rows)
	sigma2 := s.sigma0 * s.sigma0

	phasespace.ParallelRows(j.Rows, minRowChunk, func(start, end int) {
		for i := start; i < end; i++ {
			row := s.f0.Row(i)
			for k := range row {
				f := math.Exp(-j.At(i, k)*nu.AtBroadcast(i, k)/sigma2) / sqrt2Pi
				row[k] = f * s.rho0 / s.sigma0
			}
			s.rowSum[i] = floats.Sum(row)
		}
	})
}

// computeDensity integrates f0 over velocity and rescales so the midplane
// row lands on Density * rho0.
func (s *SingleComponent) computeDensity(mid int) {
	raw := make([]float64, s.f0.Rows)
	for i := range raw {
		raw[i] = numeric.Simpson(s.vdom, s.f0.Row(i)) * s.scales.Density
	}

	s.normDensity = s.scales.Density * s.rho0 / raw[mid]
	s.density = make([]float64, len(raw))
	for i, r := range raw {
		s.density[i] = r * s.normDensity
	}
}

func (s *SingleComponent) computeAsymmetry() error {
	shifted := make([]float64, len(s.z))
	for i, z := range s.z {
		shifted[i] = z + s.fit.Offset
	}

	spline, err := numeric.NewSpline(shifted, s.density)
	if err != nil {
		if errors.Is(err, numeric.ErrSplineInput) {
			return fmt.Errorf("%w: %w", ErrProfileFit, err)
		}
		return err
	}

	zmax := floats.Max(s.z)
	n := len(s.z)
	s.zPlus = numeric.Linspace(0, zmax, n)
	zMinus := numeric.Linspace(0, -zmax, n)

	s.a = numeric.Asymmetry(spline.PredictAll(s.zPlus), spline.PredictAll(zMinus))
	return nil
}

// VelocityMoment returns, per height, the Simpson integral of
// f0 * v^n over the velocity samples (unit spacing) divided by the plain
// row sum of f0. n must be non-negative.
func (s *SingleComponent) VelocityMoment(n int) []float64 {
	if n < 0 {
		panic(fmt.Sprintf("df: negative velocity moment %d", n))
	}

	vn := make([]float64, len(s.v))
	for k, v := range s.v {
		vn[k] = math.Pow(v, float64(n))
	}

	out := make([]float64, s.f0.Rows)
	phasespace.ParallelRows(s.f0.Rows, minRowChunk, func(start, end int) {
		integrand := make([]float64, len(vn))
		for i := start; i < end; i++ {
			floats.MulTo(integrand, s.f0.Row(i), vn)
			out[i] = numeric.SimpsonUnit(integrand) / s.rowSum[i]
		}
	})
	return out
}

func dispersion(m2, m1 []float64) []float64 {
	out := make([]float64, len(m2))
	for i := range out {
		out[i] = math.Sqrt(m2[i] - m1[i]*m1[i])
	}
	return out
}

// F0 returns a copy of the phase-space density.
func (s *SingleComponent) F0() phasespace.Field { return s.f0.Clone() }

// Density is the vertical density profile in physical units.
func (s *SingleComponent) Density() []float64 { return clone(s.density) }

func (s *SingleComponent) MeanV() []float64 { return clone(s.meanV) }

func (s *SingleComponent) VelocityDispersion() []float64 { return clone(s.sigmaV) }

// A is the density asymmetry sampled at ZPlus.
func (s *SingleComponent) A() []float64 { return clone(s.a) }

// ZFit is the fitted midplane offset in physical length units.
func (s *SingleComponent) ZFit() float64 { return s.fit.Offset }

func (s *SingleComponent) Fit() numeric.Sech2Params { return s.fit }

// Z returns the physical heights of the grid rows.
func (s *SingleComponent) Z() []float64 { return clone(s.z) }

// V returns the physical velocities of the grid columns.
func (s *SingleComponent) V() []float64 { return clone(s.v) }

// ZPlus returns the heights above the midplane at which A is sampled.
func (s *SingleComponent) ZPlus() []float64 { return clone(s.zPlus) }

func (s *SingleComponent) Sigma() float64 { return s.sigma0 }

func (s *SingleComponent) RhoMidplane() float64 { return s.rho0 }

func clone(x []float64) []float64 {
	return append([]float64(nil), x...)
}
