package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Validation errors
	ErrInvalidSampleSize  = errors.New("sample size must be positive")
	ErrInvalidRate        = errors.New("rate must be within [0,1]")
	ErrInvalidAlpha       = errors.New("significance level must be within (0,1)")
	ErrInvalidRepetitions = errors.New("repetition count must be positive")
	ErrEmptySizeGrid      = errors.New("sample size grid is empty")
)

// Error constructors with context
func NewRateError(field string, value float64) error {
	return fmt.Errorf("%w: %s = %g", ErrInvalidRate, field, value)
}

func NewSampleSizeError(n int) error {
	return fmt.Errorf("%w: got %d", ErrInvalidSampleSize, n)
}
