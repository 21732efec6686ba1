package df

import (
	"errors"
	"fmt"
)

var (
	// ErrLengthMismatch indicates normalization and dispersion lists of different lengths.
	ErrLengthMismatch = errors.New("df: normalization and dispersion lists differ in length")

	// ErrNoComponents indicates an empty component list.
	ErrNoComponents = errors.New("df: at least one component is required")

	// ErrBadWeights indicates negative, non-finite or zero-sum normalizations.
	ErrBadWeights = errors.New("df: normalizations must be non-negative with a positive sum")

	// ErrBadDispersion indicates a non-positive or non-finite velocity dispersion.
	ErrBadDispersion = errors.New("df: velocity dispersion must be positive and finite")

	// ErrProfileFit indicates the vertical profile fit failed.
	ErrProfileFit = errors.New("df: vertical profile fit failed")
)

// ComponentError wraps a failure to build one component of a composite.
type ComponentError struct {
	Index   int
	Sigma   float64
	Wrapped error
}

func (e *ComponentError) Error() string {
	return fmt.Sprintf("df: component %d (sigma=%g): %v", e.Index, e.Sigma, e.Wrapped)
}

func (e *ComponentError) Unwrap() error {
	return e.Wrapped
}
