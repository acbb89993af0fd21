// SPDX-License-Identifier: MIT
// Package linalg: sentinel error set.
// Every kernel returns one of these sentinels, wrapped with an operation tag
// via linalgErrorf. Tests and callers match them through errors.Is.

package linalg

import (
	"errors"
	"fmt"
)

var (
	// ErrNilMatrix indicates that a nil matrix or vector argument was used.
	ErrNilMatrix = errors.New("linalg: nil argument")

	// ErrEmpty is returned for matrices with a zero dimension where a
	// factorization needs at least one row and one column.
	ErrEmpty = errors.New("linalg: empty matrix")

	// ErrDimensionMismatch indicates incompatible operand dimensions.
	ErrDimensionMismatch = errors.New("linalg: dimension mismatch")

	// ErrNonSquare signals that a square matrix was required.
	ErrNonSquare = errors.New("linalg: matrix is not square")

	// ErrNaNInf signals a NaN or ±Inf value where finite values are required.
	ErrNaNInf = errors.New("linalg: NaN or Inf encountered")

	// ErrBadTolerance is returned when a tolerance is NaN or infinite.
	ErrBadTolerance = errors.New("linalg: invalid tolerance")

	// ErrFactorization indicates that gonum failed to factorize the input.
	ErrFactorization = errors.New("linalg: factorization failed")

	// ErrIndexOutOfRange indicates an index list entry outside [0, n).
	ErrIndexOutOfRange = errors.New("linalg: index out of range")
)

// Operation tags used by linalgErrorf.
const (
	opTruncatedSolve   = "TruncatedSolve"
	opPseudoInverse    = "PseudoInverse"
	opSymmetrize       = "Symmetrize"
	opRegularizePSD    = "RegularizePSD"
	opSampleCovariance = "SampleCovariance"
	opBlockOuter       = "BlockOuter"
	opScatter          = "ScatterSym"
)

// linalgErrorf wraps err with an operation tag, preserving the sentinel for
// errors.Is. Must only be called with a non-nil err.
func linalgErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}
