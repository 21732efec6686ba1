package phasespace

import (
	"errors"
	"fmt"
)

// Domain errors for grid construction and validation.
var (
	// ErrShapeMismatch indicates fields or coordinates that do not share a grid.
	ErrShapeMismatch = errors.New("phasespace: shape mismatch between field and domain")

	// ErrDomainOrder indicates coordinates that are not strictly increasing.
	ErrDomainOrder = errors.New("phasespace: coordinates must be strictly increasing")

	// ErrBadScale indicates a non-positive or non-finite unit scale.
	ErrBadScale = errors.New("phasespace: unit scales must be positive and finite")

	// ErrTooFewSamples indicates an axis too short for quadrature or spline fitting.
	ErrTooFewSamples = errors.New("phasespace: too few samples along an axis")
)

// ShapeError wraps ErrShapeMismatch with the offending shapes.
type ShapeError struct {
	What       string
	Rows, Cols int
	WantRows   int
	WantCols   int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: %s is %dx%d, want %dx%d",
		ErrShapeMismatch, e.What, e.Rows, e.Cols, e.WantRows, e.WantCols)
}

func (e *ShapeError) Unwrap() error {
	return ErrShapeMismatch
}
