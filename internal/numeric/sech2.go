package numeric

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

var ErrFitFailed = errors.New("numeric: sech² fit did not converge")

// flatTolerance is the relative spread below which a profile carries no
// vertical structure to fit.
const flatTolerance = 1e-12

// Sech2Params describes rho(z) = Amplitude * sech²((z + Offset) / ScaleHeight).
// The profile peaks at z = -Offset, so z + Offset is the height measured
// from the fitted midplane.
type Sech2Params struct {
	Amplitude   float64
	Offset      float64
	ScaleHeight float64
}

func (p Sech2Params) Eval(z float64) float64 {
	c := math.Cosh((z + p.Offset) / p.ScaleHeight)
	return p.Amplitude / (c * c)
}

// FitSech2 least-squares fits a sech² profile to rho sampled at z. The fit
// runs on rho scaled to unit peak; Amplitude is reported in rho's units.
func FitSech2(z, rho []float64) (Sech2Params, error) {
	if len(z) != len(rho) || len(z) < 3 {
		return Sech2Params{}, fmt.Errorf("%w: %d heights, %d densities", ErrFitFailed, len(z), len(rho))
	}

	for _, r := range rho {
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return Sech2Params{}, fmt.Errorf("%w: non-finite density in profile", ErrFitFailed)
		}
	}
	peakIdx := floats.MaxIdx(rho)
	peak := rho[peakIdx]
	low := floats.Min(rho)
	if !(peak > 0) {
		return Sech2Params{}, fmt.Errorf("%w: profile peak %v", ErrFitFailed, peak)
	}
	if peak-low <= flatTolerance*peak {
		return Sech2Params{Amplitude: peak, Offset: 0, ScaleHeight: math.Inf(1)}, nil
	}

	norm := make([]float64, len(rho))
	floats.ScaleTo(norm, 1/peak, rho)

	problem := optimize.Problem{
		Func: func(p []float64) float64 {
			if p[2] == 0 {
				return math.Inf(1)
			}
			model := Sech2Params{Amplitude: p[0], Offset: p[1], ScaleHeight: p[2]}
			sse := 0.0
			for i, zi := range z {
				d := model.Eval(zi) - norm[i]
				sse += d * d
			}
			return sse
		},
	}

	x0 := []float64{1, -z[peakIdx], initialScaleHeight(z, norm, peakIdx)}
	settings := &optimize.Settings{
		MajorIterations: 20000,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-16,
			Relative:   1e-12,
			Iterations: 400,
		},
	}

	res, err := optimize.Minimize(problem, x0, settings, &optimize.NelderMead{})
	if err != nil {
		return Sech2Params{}, fmt.Errorf("%w: %v", ErrFitFailed, err)
	}
	switch res.Status {
	case optimize.IterationLimit, optimize.FunctionEvaluationLimit, optimize.RuntimeLimit:
		return Sech2Params{}, fmt.Errorf("%w: %v", ErrFitFailed, res.Status)
	}
	for _, v := range res.X {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Sech2Params{}, fmt.Errorf("%w: parameters %v", ErrFitFailed, res.X)
		}
	}

	return Sech2Params{
		Amplitude:   res.X[0] * peak,
		Offset:      res.X[1],
		ScaleHeight: math.Abs(res.X[2]),
	}, nil
}

// initialScaleHeight walks outward from the peak to where the normalized
// profile drops below sech²(1).
func initialScaleHeight(z, norm []float64, peakIdx int) float64 {
	const level = 0.42
	for i := peakIdx; i < len(z); i++ {
		if norm[i] < level {
			if h := z[i] - z[peakIdx]; h > 0 {
				return h
			}
		}
	}
	for i := peakIdx; i >= 0; i-- {
		if norm[i] < level {
			if h := z[peakIdx] - z[i]; h > 0 {
				return h
			}
		}
	}
	return (z[len(z)-1] - z[0]) / 4
}
