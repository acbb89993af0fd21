// SPDX-License-Identifier: MIT

package model

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// OutputFunc evaluates a static model output y = h(t, θ).
type OutputFunc func(t float64, th []float64) ([]float64, error)

// OutputJacobianFunc evaluates ∂h/∂θ at (t, θ) as an ny×nth matrix.
type OutputJacobianFunc func(t float64, th []float64) (*mat.Dense, error)

// Static is a memoryless model y(t) = h(t, θ) fitted against a Signal.
type Static struct {
	Name string
	// NY is the output dimension.
	NY int
	// H evaluates the model output. Required.
	H OutputFunc
	// Jac is the optional analytic Jacobian of H with respect to θ.
	Jac OutputJacobianFunc
	// Th holds the current parameters.
	Th []float64
	// ThNames optionally labels the parameters.
	ThNames []string
	// P is the parameter covariance after estimation.
	P *mat.SymDense
}

// Kind implements Model.
func (m *Static) Kind() Kind { return KindStatic }

// NumParams implements Model.
func (m *Static) NumParams() int { return len(m.Th) }

// Params implements Model.
func (m *Static) Params() []float64 { return cloneVec(m.Th) }

// Covariance implements Model.
func (m *Static) Covariance() *mat.SymDense { return m.P }

// WithEstimate implements Model. x0 is ignored.
func (m *Static) WithEstimate(th, _ []float64, cov *mat.SymDense) Model {
	out := *m
	out.Th = cloneVec(th)
	out.ThNames = append([]string(nil), m.ThNames...)
	out.P = cloneSym(cov)

	return &out
}

// Validate checks that the model is usable.
func (m *Static) Validate() error {
	if m.H == nil {
		return fmt.Errorf("static %q: %w", m.Name, ErrNilFunc)
	}
	if m.NY <= 0 {
		return fmt.Errorf("static %q: NY=%d: %w", m.Name, m.NY, ErrBadDimension)
	}

	return nil
}

// HasJacobian reports whether an analytic Jacobian is available.
func (m *Static) HasJacobian() bool { return m.Jac != nil }

// Evaluate returns h(t, θ), checking its length.
func (m *Static) Evaluate(t float64, th []float64) ([]float64, error) {
	y, err := m.H(t, th)
	if err != nil {
		return nil, err
	}
	if len(y) != m.NY {
		return nil, fmt.Errorf("static %q: got %d outputs, want %d: %w", m.Name, len(y), m.NY, ErrOutputLength)
	}

	return y, nil
}

// Jacobian returns ∂h/∂θ at (t, θ), checking its shape.
func (m *Static) Jacobian(t float64, th []float64) (*mat.Dense, error) {
	if m.Jac == nil {
		return nil, fmt.Errorf("static %q: jacobian: %w", m.Name, ErrNilFunc)
	}
	j, err := m.Jac(t, th)
	if err != nil {
		return nil, err
	}
	if r, c := j.Dims(); r != m.NY || c != len(th) {
		return nil, fmt.Errorf("static %q: jacobian is %d×%d, want %d×%d: %w", m.Name, r, c, m.NY, len(th), ErrOutputLength)
	}

	return j, nil
}
