// SPDX-License-Identifier: MIT

package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Signal is an observed, uniformly indexed time series.
//
// Row k of Y (and of U, when present) is the sample taken at T[k].
type Signal struct {
	// Name labels the series in logs and reports.
	Name string
	// T holds the N sample times.
	T []float64
	// Y holds the N×ny observed outputs.
	Y *mat.Dense
	// U holds the N×nu inputs, or nil for autonomous systems.
	U *mat.Dense
	// NoiseCov is an optional ny×ny measurement-noise covariance.
	NoiseCov *mat.SymDense
}

// NewSignal builds and validates a Signal without inputs.
func NewSignal(t []float64, y *mat.Dense) (*Signal, error) {
	s := &Signal{T: cloneVec(t), Y: y}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	return s, nil
}

// Len returns the number of samples N.
func (s *Signal) Len() int { return len(s.T) }

// NumOutputs returns ny.
func (s *Signal) NumOutputs() int {
	if s.Y == nil {
		return 0
	}
	_, c := s.Y.Dims()

	return c
}

// NumInputs returns nu (zero when U is nil).
func (s *Signal) NumInputs() int {
	if s.U == nil {
		return 0
	}
	_, c := s.U.Dims()

	return c
}

// Output returns a copy of the k-th output sample.
func (s *Signal) Output(k int) []float64 {
	return mat.Row(nil, k, s.Y)
}

// Input returns a copy of the k-th input sample, or nil without inputs.
func (s *Signal) Input(k int) []float64 {
	if s.U == nil {
		return nil
	}

	return mat.Row(nil, k, s.U)
}

// Validate checks that the series is non-empty, finite and consistently
// shaped.
func (s *Signal) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: nil signal", ErrBadSignal)
	}
	n := len(s.T)
	if n == 0 || s.Y == nil || s.Y.IsEmpty() {
		return fmt.Errorf("%w: no samples", ErrBadSignal)
	}
	if r, _ := s.Y.Dims(); r != n {
		return fmt.Errorf("%w: %d outputs for %d sample times", ErrBadSignal, r, n)
	}
	if s.U != nil {
		if r, _ := s.U.Dims(); r != n {
			return fmt.Errorf("%w: %d inputs for %d sample times", ErrBadSignal, r, n)
		}
	}
	if s.NoiseCov != nil && s.NoiseCov.SymmetricDim() != s.NumOutputs() {
		return fmt.Errorf("%w: noise covariance is %d×%d, want %d×%d", ErrBadSignal,
			s.NoiseCov.SymmetricDim(), s.NoiseCov.SymmetricDim(), s.NumOutputs(), s.NumOutputs())
	}
	for k, t := range s.T {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return fmt.Errorf("%w: non-finite time at sample %d", ErrBadSignal, k)
		}
	}
	r, c := s.Y.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := s.Y.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: non-finite output at sample %d", ErrBadSignal, i)
			}
		}
	}

	return nil
}
