// SPDX-License-Identifier: MIT

package model

import "errors"

var (
	// ErrNilFunc is returned when a required model function is nil.
	ErrNilFunc = errors.New("model: required function is nil")

	// ErrBadDimension is returned when a declared dimension is not positive.
	ErrBadDimension = errors.New("model: invalid dimension")

	// ErrOutputLength is returned when a model function returns a vector
	// whose length differs from the declared dimension.
	ErrOutputLength = errors.New("model: function output has wrong length")

	// ErrParamLength is returned when a parameter or state vector has the
	// wrong length.
	ErrParamLength = errors.New("model: parameter vector has wrong length")

	// ErrBadSignal is returned for malformed time series.
	ErrBadSignal = errors.New("model: malformed signal")
)
