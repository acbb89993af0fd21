// SPDX-License-Identifier: MIT

package model

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Kind tags the shape of a model.
type Kind int

const (
	// KindObjective is a bare residual function r(θ).
	KindObjective Kind = iota
	// KindStatic is an output function h(t, θ) compared against a Signal.
	KindStatic
	// KindDynamic is a state-space model that must be simulated.
	KindDynamic
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindObjective:
		return "objective"
	case KindStatic:
		return "static"
	case KindDynamic:
		return "dynamic"
	default:
		return "unknown"
	}
}

// Model is the capability shared by every model kind.
type Model interface {
	// Kind reports the model shape.
	Kind() Kind
	// NumParams returns nth, the length of θ.
	NumParams() int
	// Params returns a copy of θ.
	Params() []float64
	// Covariance returns the joint covariance of (θ, x0), or nil when the
	// model has not been estimated.
	Covariance() *mat.SymDense
	// WithEstimate returns a copy carrying the given parameters, initial
	// state (ignored by static kinds) and covariance.
	WithEstimate(th, x0 []float64, cov *mat.SymDense) Model
}

// Simulator is a dynamical model whose output trajectory for a given input
// series is produced by forward simulation. Implementations must be free of
// side effects: Simulate may be called many times with perturbed copies.
type Simulator interface {
	Model
	// NumStates returns nx, the length of x0.
	NumStates() int
	// NumInputs returns nu.
	NumInputs() int
	// NumOutputs returns ny.
	NumOutputs() int
	// InitialState returns a copy of x0.
	InitialState() []float64
	// WithParams returns a disposable copy with θ and x0 replaced.
	WithParams(th, x0 []float64) Simulator
	// Simulate returns the N×ny predicted outputs aligned with sig.T.
	Simulate(sig *Signal) (*mat.Dense, error)
}

// StdDev returns the square roots of the diagonal of cov. A nil cov yields nil.
func StdDev(cov *mat.SymDense) []float64 {
	if cov == nil || cov.IsEmpty() {
		return nil
	}
	n := cov.SymmetricDim()
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sqrt(math.Max(cov.At(i, i), 0))
	}

	return out
}

func cloneVec(x []float64) []float64 {
	if x == nil {
		return nil
	}
	out := make([]float64, len(x))
	copy(out, x)

	return out
}

func cloneSym(s *mat.SymDense) *mat.SymDense {
	if s == nil || s.IsEmpty() {
		return nil
	}
	out := mat.NewSymDense(s.SymmetricDim(), nil)
	out.CopySym(s)

	return out
}
