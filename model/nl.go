// SPDX-License-Identifier: MIT

package model

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// StateFunc evaluates the state equation. For a discrete-time NL it returns
// x[k+1]; for a continuous-time NL it returns dx/dt.
type StateFunc func(t float64, x, u, th []float64) ([]float64, error)

// ObservationFunc evaluates the output equation y = h(t, x, u, θ).
type ObservationFunc func(t float64, x, u, th []float64) ([]float64, error)

// defaultSubsteps is the number of RK4 steps taken between two samples of a
// continuous-time NL when Substeps is zero.
const defaultSubsteps = 4

// NL is a nonlinear state-space model
//
//	x[k+1] = f(t_k, x[k], u[k], θ)   (discrete time)
//	dx/dt  = f(t, x, u, θ)           (continuous time, u held between samples)
//	y[k]   = h(t_k, x[k], u[k], θ)
//
// with initial state x0. It implements Simulator.
type NL struct {
	Name string
	// F is the state equation. Required.
	F StateFunc
	// H is the output equation. Required.
	H ObservationFunc
	// NX, NU and NY are the state, input and output dimensions.
	NX, NU, NY int
	// Th holds the parameters.
	Th []float64
	// X0 holds the initial state.
	X0 []float64
	// Continuous selects RK4 integration of F between sample times.
	Continuous bool
	// Substeps is the number of RK4 steps per sample interval.
	Substeps int
	// ThNames and XNames optionally label parameters and states.
	ThNames, XNames []string
	// P is the joint (θ, x0) covariance after estimation.
	P *mat.SymDense
}

var _ Simulator = (*NL)(nil)

// Kind implements Model.
func (m *NL) Kind() Kind { return KindDynamic }

// NumParams implements Model.
func (m *NL) NumParams() int { return len(m.Th) }

// Params implements Model.
func (m *NL) Params() []float64 { return cloneVec(m.Th) }

// Covariance implements Model.
func (m *NL) Covariance() *mat.SymDense { return m.P }

// NumStates implements Simulator.
func (m *NL) NumStates() int { return m.NX }

// NumInputs implements Simulator.
func (m *NL) NumInputs() int { return m.NU }

// NumOutputs implements Simulator.
func (m *NL) NumOutputs() int { return m.NY }

// InitialState implements Simulator.
func (m *NL) InitialState() []float64 { return cloneVec(m.X0) }

// WithParams implements Simulator.
func (m *NL) WithParams(th, x0 []float64) Simulator {
	out := m.clone()
	out.Th = cloneVec(th)
	out.X0 = cloneVec(x0)

	return out
}

// WithEstimate implements Model.
func (m *NL) WithEstimate(th, x0 []float64, cov *mat.SymDense) Model {
	out := m.clone()
	out.Th = cloneVec(th)
	out.X0 = cloneVec(x0)
	out.P = cloneSym(cov)

	return out
}

func (m *NL) clone() *NL {
	out := *m
	out.Th = cloneVec(m.Th)
	out.X0 = cloneVec(m.X0)
	out.ThNames = append([]string(nil), m.ThNames...)
	out.XNames = append([]string(nil), m.XNames...)
	out.P = cloneSym(m.P)

	return &out
}

// Validate checks functions and dimensions.
func (m *NL) Validate() error {
	if m.F == nil || m.H == nil {
		return fmt.Errorf("nl %q: %w", m.Name, ErrNilFunc)
	}
	if m.NX <= 0 || m.NY <= 0 || m.NU < 0 {
		return fmt.Errorf("nl %q: nx=%d nu=%d ny=%d: %w", m.Name, m.NX, m.NU, m.NY, ErrBadDimension)
	}
	if len(m.X0) != m.NX {
		return fmt.Errorf("nl %q: len(x0)=%d, nx=%d: %w", m.Name, len(m.X0), m.NX, ErrParamLength)
	}

	return nil
}

// Simulate implements Simulator. The model is not modified.
func (m *NL) Simulate(sig *Signal) (*mat.Dense, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := sig.Validate(); err != nil {
		return nil, err
	}
	if sig.NumInputs() != m.NU {
		return nil, fmt.Errorf("nl %q: signal has %d inputs, model %d: %w", m.Name, sig.NumInputs(), m.NU, ErrBadSignal)
	}

	n := sig.Len()
	out := mat.NewDense(n, m.NY, nil)
	x := cloneVec(m.X0)
	for k := 0; k < n; k++ {
		t, u := sig.T[k], sig.Input(k)
		y, err := m.H(t, x, u, m.Th)
		if err != nil {
			return nil, fmt.Errorf("nl %q: output at sample %d: %w", m.Name, k, err)
		}
		if len(y) != m.NY {
			return nil, fmt.Errorf("nl %q: h returned %d values, want %d: %w", m.Name, len(y), m.NY, ErrOutputLength)
		}
		out.SetRow(k, y)
		if k == n-1 {
			break
		}
		if m.Continuous {
			x, err = m.integrate(t, sig.T[k+1], x, u)
		} else {
			x, err = m.step(t, x, u)
		}
		if err != nil {
			return nil, fmt.Errorf("nl %q: state at sample %d: %w", m.Name, k, err)
		}
	}

	return out, nil
}

func (m *NL) step(t float64, x, u []float64) ([]float64, error) {
	next, err := m.F(t, x, u, m.Th)
	if err != nil {
		return nil, err
	}
	if len(next) != m.NX {
		return nil, fmt.Errorf("f returned %d values, want %d: %w", len(next), m.NX, ErrOutputLength)
	}

	return next, nil
}

// integrate advances x from t0 to t1 with classical RK4, holding u constant.
func (m *NL) integrate(t0, t1 float64, x, u []float64) ([]float64, error) {
	steps := m.Substeps
	if steps <= 0 {
		steps = defaultSubsteps
	}
	h := (t1 - t0) / float64(steps)
	tmp := make([]float64, m.NX)
	x = cloneVec(x)
	for s := 0; s < steps; s++ {
		t := t0 + float64(s)*h
		k1, err := m.step(t, x, u)
		if err != nil {
			return nil, err
		}
		floats.AddScaledTo(tmp, x, h/2, k1)
		k2, err := m.step(t+h/2, tmp, u)
		if err != nil {
			return nil, err
		}
		floats.AddScaledTo(tmp, x, h/2, k2)
		k3, err := m.step(t+h/2, tmp, u)
		if err != nil {
			return nil, err
		}
		floats.AddScaledTo(tmp, x, h, k3)
		k4, err := m.step(t+h, tmp, u)
		if err != nil {
			return nil, err
		}
		for i := range x {
			x[i] += h / 6 * (k1[i] + 2*k2[i] + 2*k3[i] + k4[i])
		}
	}

	return x, nil
}
