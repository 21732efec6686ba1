package numeric

import "gonum.org/v1/gonum/integrate"

// Simpson integrates samples f taken at strictly increasing x.
func Simpson(x, f []float64) float64 {
	return integrate.Simpsons(x, f)
}

// SimpsonUnit integrates f as if sampled at 0, 1, ..., len(f)-1.
func SimpsonUnit(f []float64) float64 {
	return integrate.Simpsons(unitAbscissa(len(f)), f)
}

func unitAbscissa(n int) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = float64(i)
	}
	return x
}
