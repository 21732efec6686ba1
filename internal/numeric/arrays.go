package numeric

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Linspace returns n evenly spaced samples from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	switch n {
	case 0:
	case 1:
		out[0] = lo
	default:
		floats.Span(out, lo, hi)
	}
	return out
}

func Mean(x []float64) float64 {
	return stat.Mean(x, nil)
}

// Asymmetry returns (plus - minus) / (plus + minus) elementwise. Swapping
// the arguments negates the result exactly. Zero denominators produce
// non-finite entries, which are left for the caller to reject.
func Asymmetry(plus, minus []float64) []float64 {
	out := make([]float64, len(plus))
	for i := range out {
		out[i] = (plus[i] - minus[i]) / (plus[i] + minus[i])
	}
	return out
}

// AddScaled sets dst[i] += alpha * s[i].
func AddScaled(dst []float64, alpha float64, s []float64) {
	floats.AddScaled(dst, alpha, s)
}
