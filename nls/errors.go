// SPDX-License-Identifier: MIT
// Package nls: sentinel error set.
//
// Configuration errors (ErrBadOption, ErrMaskLength, ErrUnknownModel,
// ErrBadData, ErrUnsupportedAlgorithm) are returned before the first
// iteration. ErrNonFiniteCost aborts a run. Errors raised by model functions
// or simulators are wrapped with %w and otherwise passed through untouched.

package nls

import (
	"errors"
	"fmt"
)

var (
	// ErrBadOption is returned when an Options field is out of range.
	ErrBadOption = errors.New("nls: invalid option")

	// ErrMaskLength is returned when a free-coordinate mask does not match
	// the length of θ or x0.
	ErrMaskLength = errors.New("nls: mask length mismatch")

	// ErrUnknownModel is returned for a model whose kind has no evaluator.
	ErrUnknownModel = errors.New("nls: unsupported model kind")

	// ErrBadData is returned when the data does not fit the model shape.
	ErrBadData = errors.New("nls: malformed data")

	// ErrUnsupportedAlgorithm is returned when the algorithm cannot be used
	// with the model kind (Levenberg-Marquardt on a simulated model).
	ErrUnsupportedAlgorithm = errors.New("nls: algorithm not supported for this model")

	// ErrNonFiniteCost is returned when an accepted iterate has a NaN or
	// infinite cost.
	ErrNonFiniteCost = errors.New("nls: cost is not finite")
)

// Operation tags used by nlsErrorf.
const (
	opSolve       = "Solve"
	opEvaluator   = "NewEvaluator"
	opEvaluate    = "Evaluate"
	opDirection   = "Direction"
	opLM          = "LevenbergMarquardt"
	opUncertainty = "Uncertainty"
	opOptions     = "Options"
)

// nlsErrorf wraps a non-nil err with an operation tag.
func nlsErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}
