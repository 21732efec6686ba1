// Package numeric wraps the gonum routines the distribution-function engine
// is built on: Simpson quadrature, cubic spline interpolation with
// extrapolation, the sech² vertical profile fit and a few elementwise
// helpers.
//
// Every function is a pure function of its arguments and never retains or
// modifies input slices.
package numeric
