package sdmgo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/sdmgo/bitvec"
	"github.com/hupe1980/sdmgo/store"
)

// ErrDimensionMismatch indicates an address or data vector whose width
// disagrees with the memory's dimensions.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

// ErrInvalidDimensions indicates an invalid configured address width.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidDimensions struct {
	Dimensions int
	cause      error
}

func (e *ErrInvalidDimensions) Error() string {
	return fmt.Sprintf("invalid dimensions: %d", e.Dimensions)
}

func (e *ErrInvalidDimensions) Unwrap() error { return e.cause }

// ErrInvalidNumLocations indicates an invalid configured location count.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidNumLocations struct {
	NumLocations int
	cause        error
}

func (e *ErrInvalidNumLocations) Error() string {
	return fmt.Sprintf("invalid number of locations: %d", e.NumLocations)
}

func (e *ErrInvalidNumLocations) Unwrap() error { return e.cause }

// translateError maps internal package errors onto the root taxonomy so
// callers match on one set of types regardless of which layer failed.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var dm *store.ErrDimensionMismatch
	if errors.As(err, &dm) {
		return &ErrDimensionMismatch{Expected: dm.Expected, Actual: dm.Actual, cause: err}
	}
	var lm *bitvec.ErrLengthMismatch
	if errors.As(err, &lm) {
		return &ErrDimensionMismatch{Expected: lm.Expected, Actual: lm.Actual, cause: err}
	}

	var id *store.ErrInvalidDimension
	if errors.As(err, &id) {
		return &ErrInvalidDimensions{Dimensions: id.Dimension, cause: err}
	}
	var nl *store.ErrInvalidNumLocations
	if errors.As(err, &nl) {
		return &ErrInvalidNumLocations{NumLocations: nl.NumLocations, cause: err}
	}

	return err
}
