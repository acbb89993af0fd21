// SPDX-License-Identifier: MIT

package model

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ResidualFunc evaluates a residual vector r(θ).
type ResidualFunc func(th []float64) ([]float64, error)

// ResidualJacobianFunc evaluates ∂r/∂θ as an m×nth matrix.
type ResidualJacobianFunc func(th []float64) (*mat.Dense, error)

// Objective is a pure optimisation problem: minimise ‖r(θ)‖².
type Objective struct {
	Name string
	// M is the residual length.
	M int
	// F evaluates the residual. Required.
	F ResidualFunc
	// Jac is the optional analytic Jacobian of F.
	Jac ResidualJacobianFunc
	// Th holds the starting point.
	Th []float64
	// P is the parameter covariance after estimation.
	P *mat.SymDense
}

// Kind implements Model.
func (o *Objective) Kind() Kind { return KindObjective }

// NumParams implements Model.
func (o *Objective) NumParams() int { return len(o.Th) }

// Params implements Model.
func (o *Objective) Params() []float64 { return cloneVec(o.Th) }

// Covariance implements Model.
func (o *Objective) Covariance() *mat.SymDense { return o.P }

// WithEstimate implements Model. x0 is ignored.
func (o *Objective) WithEstimate(th, _ []float64, cov *mat.SymDense) Model {
	out := *o
	out.Th = cloneVec(th)
	out.P = cloneSym(cov)

	return &out
}

// Validate checks that the objective is usable.
func (o *Objective) Validate() error {
	if o.F == nil {
		return fmt.Errorf("objective %q: %w", o.Name, ErrNilFunc)
	}
	if o.M <= 0 {
		return fmt.Errorf("objective %q: M=%d: %w", o.Name, o.M, ErrBadDimension)
	}

	return nil
}

// HasJacobian reports whether an analytic Jacobian is available.
func (o *Objective) HasJacobian() bool { return o.Jac != nil }

// Residual returns r(θ), checking its length.
func (o *Objective) Residual(th []float64) ([]float64, error) {
	r, err := o.F(th)
	if err != nil {
		return nil, err
	}
	if len(r) != o.M {
		return nil, fmt.Errorf("objective %q: got %d residuals, want %d: %w", o.Name, len(r), o.M, ErrOutputLength)
	}

	return r, nil
}

// Jacobian returns ∂r/∂θ, checking its shape.
func (o *Objective) Jacobian(th []float64) (*mat.Dense, error) {
	if o.Jac == nil {
		return nil, fmt.Errorf("objective %q: jacobian: %w", o.Name, ErrNilFunc)
	}
	j, err := o.Jac(th)
	if err != nil {
		return nil, err
	}
	if r, c := j.Dims(); r != o.M || c != len(th) {
		return nil, fmt.Errorf("objective %q: jacobian is %d×%d, want %d×%d: %w", o.Name, r, c, o.M, len(th), ErrOutputLength)
	}

	return j, nil
}
