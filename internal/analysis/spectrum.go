package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrTooShort  = errors.New("analysis: need at least 4 samples")
	ErrNonFinite = errors.New("analysis: signal contains non-finite values")
	ErrSpacing   = errors.New("analysis: heights must be evenly spaced and increasing")
)

// PowerSpectrum is one-sided: Wavenumber[k] = k/(n*dz) in cycles per
// length unit, Power[k] = |X_k|²/n of the mean-removed signal.
type PowerSpectrum struct {
	Wavenumber []float64
	Power      []float64
}

func Spectrum(z, a []float64) (PowerSpectrum, error) {
	n := len(a)
	if n < 4 || len(z) != n {
		return PowerSpectrum{}, ErrTooShort
	}
	for _, v := range a {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return PowerSpectrum{}, ErrNonFinite
		}
	}

	dz := (z[n-1] - z[0]) / float64(n-1)
	if !(dz > 0) {
		return PowerSpectrum{}, ErrSpacing
	}
	for i := 1; i < n; i++ {
		if math.Abs(z[i]-z[i-1]-dz) > 1e-6*dz {
			return PowerSpectrum{}, ErrSpacing
		}
	}

	signal := make([]float64, n)
	copy(signal, a)
	floats.AddConst(-stat.Mean(signal, nil), signal)

	coeffs := fft.FFTReal(signal)
	half := n/2 + 1
	ps := PowerSpectrum{
		Wavenumber: make([]float64, half),
		Power:      make([]float64, half),
	}
	for k := 0; k < half; k++ {
		mag := cmplx.Abs(coeffs[k])
		ps.Wavenumber[k] = float64(k) / (float64(n) * dz)
		ps.Power[k] = mag * mag / float64(n)
	}
	return ps, nil
}

// DominantWavenumber returns the wavenumber with the largest power,
// ignoring the zero-frequency bin.
func DominantWavenumber(ps PowerSpectrum) (float64, float64) {
	if len(ps.Power) < 2 {
		return 0, 0
	}
	idx := floats.MaxIdx(ps.Power[1:]) + 1
	return ps.Wavenumber[idx], ps.Power[idx]
}
