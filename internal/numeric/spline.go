package numeric

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/interp"
)

var ErrSplineInput = errors.New("numeric: spline needs at least 4 strictly increasing abscissae")

// Spline is a not-a-knot cubic spline. Outside the fitted range it keeps
// following the polynomial of the nearest end segment instead of clamping.
type Spline struct {
	xs    []float64
	cubic interp.NotAKnotCubic
}

func NewSpline(xs, ys []float64) (*Spline, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("%w: %d abscissae, %d ordinates", ErrSplineInput, len(xs), len(ys))
	}
	if len(xs) < 4 {
		return nil, ErrSplineInput
	}
	for i := 1; i < len(xs); i++ {
		if !(xs[i] > xs[i-1]) {
			return nil, ErrSplineInput
		}
	}

	s := &Spline{xs: append([]float64(nil), xs...)}
	if err := s.cubic.Fit(s.xs, ys); err != nil {
		return nil, fmt.Errorf("numeric: spline fit: %w", err)
	}
	return s, nil
}

func (s *Spline) Predict(x float64) float64 {
	n := len(s.xs)
	switch {
	case x < s.xs[0]:
		return s.extrapolate(x, s.xs[0], s.xs[1])
	case x > s.xs[n-1]:
		return s.extrapolate(x, s.xs[n-1], s.xs[n-2])
	}
	return s.cubic.Predict(x)
}

func (s *Spline) PredictAll(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = s.Predict(x)
	}
	return out
}

// extrapolate evaluates the cubic of the end segment between the boundary
// knot and its neighbour at x. Four samples inside the segment determine
// that cubic exactly; its Newton form, anchored at the boundary knot,
// carries it past the end and returns constant data unchanged.
func (s *Spline) extrapolate(x, edge, inner float64) float64 {
	h := (inner - edge) / 3
	nodes := [4]float64{edge, edge + h, edge + 2*h, inner}
	var dd [4]float64
	for i, n := range nodes {
		dd[i] = s.cubic.Predict(n)
	}

	for k := 1; k < len(nodes); k++ {
		for i := len(nodes) - 1; i >= k; i-- {
			dd[i] = (dd[i] - dd[i-1]) / (nodes[i] - nodes[i-k])
		}
	}

	sum := dd[3]
	for k := 2; k >= 0; k-- {
		sum = sum*(x-nodes[k]) + dd[k]
	}
	return sum
}
