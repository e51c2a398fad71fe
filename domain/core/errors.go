package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Contract violations by the caller. These always surface as errors.
	ErrLengthMismatch = errors.New("sample arrays have mismatched lengths")
	ErrMissingField   = errors.New("required sample array missing")
	ErrBadInflections = errors.New("inflection indices not strictly increasing or out of range")

	// Data-quality conditions. These are recorded as dismissals by the
	// calibration pipeline and never abort a run; they are errors only at
	// the level of a single profile pair.
	ErrInsufficientData        = errors.New("insufficient data for analysis")
	ErrInsufficientDepthLevels = errors.New("fewer than two distinct depth levels")
	ErrNoDepthOverlap          = errors.New("profiles share no common depth range")
	ErrNoConvergence           = errors.New("parameter fit did not converge")
)

// Error constructors with context
func NewLengthMismatchError(field string, got, want int) error {
	return fmt.Errorf("%w: %s has %d samples, expected %d", ErrLengthMismatch, field, got, want)
}

func NewMissingFieldError(field string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, field)
}

// IsDataQualityError reports whether err is a per-pair data-quality
// condition rather than an API contract violation.
func IsDataQualityError(err error) bool {
	return errors.Is(err, ErrInsufficientData) ||
		errors.Is(err, ErrInsufficientDepthLevels) ||
		errors.Is(err, ErrNoDepthOverlap) ||
		errors.Is(err, ErrNoConvergence)
}
