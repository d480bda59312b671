package store

import "fmt"

// ErrInvalidDimension is a named error type for an invalid vector width.
type ErrInvalidDimension struct {
	Dimension int // Requested dimensions
}

// Error returns the error message for an invalid vector width.
func (e *ErrInvalidDimension) Error() string {
	return fmt.Sprintf("invalid dimension: %d (must be > 0)", e.Dimension)
}

// ErrInvalidNumLocations is a named error type for an invalid location count.
type ErrInvalidNumLocations struct {
	NumLocations int // Requested number of hard locations
}

// Error returns the error message for an invalid location count.
func (e *ErrInvalidNumLocations) Error() string {
	return fmt.Sprintf("invalid number of locations: %d (must be > 0)", e.NumLocations)
}

// ErrDimensionMismatch is a named error type for dimension mismatch
type ErrDimensionMismatch struct {
	Expected int // Expected dimensions
	Actual   int // Actual dimensions
}

// Error returns the error message for dimension mismatch
func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}
