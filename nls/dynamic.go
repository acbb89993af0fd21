// SPDX-License-Identifier: MIT

package nls

import (
	"fmt"
	"math"

	"github.com/InaEriksson/TSRT14/model"
	"gonum.org/v1/gonum/mat"
)

// Relative perturbation used for simulated Jacobians: h = relStep·max(|η|, relStep).
const relStep = 1e-4

// dynamicEvaluator wraps a model.Simulator: ε_k = ŷ_k(θ, x0) − y_k where ŷ
// is obtained by simulating every dataset from its initial state.
type dynamicEvaluator struct {
	m        model.Simulator
	data     []*model.Signal
	mask     Mask
	n        int
	th, x0   []float64
	override [][]float64
}

func newDynamicEvaluator(m model.Simulator, data []*model.Signal, opts Options) (*dynamicEvaluator, error) {
	nx := m.NumStates()
	n, err := validateData(data, m.NumOutputs(), m.NumInputs())
	if err != nil {
		return nil, nlsErrorf(opEvaluator, err)
	}
	x0 := m.InitialState()
	if len(x0) != nx {
		return nil, nlsErrorf(opEvaluator, fmt.Errorf("%w: initial state has %d entries, model has %d states", ErrBadData, len(x0), nx))
	}
	if len(opts.InitialStates) > len(data) {
		return nil, nlsErrorf(opEvaluator, fmt.Errorf("%w: %d initial states for %d datasets", ErrBadOption, len(opts.InitialStates), len(data)))
	}
	for i, s := range opts.InitialStates {
		if s != nil && len(s) != nx {
			return nil, nlsErrorf(opEvaluator, fmt.Errorf("%w: initial state %d has %d entries, model has %d states", ErrBadOption, i, len(s), nx))
		}
	}
	mask, err := NewMask(opts.ThetaMask, m.NumParams(), opts.X0Mask, nx)
	if err != nil {
		return nil, nlsErrorf(opEvaluator, err)
	}

	return &dynamicEvaluator{
		m:        m,
		data:     data,
		mask:     mask,
		n:        n,
		th:       m.Params(),
		x0:       x0,
		override: opts.InitialStates,
	}, nil
}

func (e *dynamicEvaluator) Dim() int           { return e.mask.Dim() }
func (e *dynamicEvaluator) Shape() (int, int)  { return e.n, e.m.NumOutputs() }
func (e *dynamicEvaluator) Mask() Mask         { return e.mask }
func (e *dynamicEvaluator) Initial() []float64 { return e.mask.Reduce(e.th, e.x0) }

func (e *dynamicEvaluator) Split(eta []float64) ([]float64, []float64) {
	return e.mask.Scatter(eta, e.th, e.x0)
}

func (e *dynamicEvaluator) Snapshot(eta []float64) model.Model {
	th, x0 := e.Split(eta)
	return e.m.WithParams(th, x0)
}

// initialState returns the start state of dataset i.
func (e *dynamicEvaluator) initialState(i int, x0 []float64) []float64 {
	if i < len(e.override) && e.override[i] != nil {
		return e.override[i]
	}

	return x0
}

func (e *dynamicEvaluator) residual(eta []float64) ([]float64, error) {
	th, x0 := e.Split(eta)
	ny := e.m.NumOutputs()
	r := make([]float64, 0, e.n*ny)
	for i, sig := range e.data {
		sim := e.m.WithParams(th, e.initialState(i, x0))
		yhat, err := sim.Simulate(sig)
		if err != nil {
			return nil, fmt.Errorf("dataset %d: %w", i, err)
		}
		if rows, cols := yhat.Dims(); rows != sig.Len() || cols != ny {
			return nil, fmt.Errorf("%w: dataset %d simulated %d×%d, want %d×%d", ErrBadData, i, rows, cols, sig.Len(), ny)
		}
		for k := 0; k < sig.Len(); k++ {
			for j := 0; j < ny; j++ {
				r = append(r, yhat.At(k, j)-sig.Y.At(k, j))
			}
		}
	}

	return r, nil
}

// jacobian perturbs each coordinate by a relative step and differences the
// simulated outputs.
func (e *dynamicEvaluator) jacobian(eta []float64, rows int) (*mat.Dense, error) {
	out := mat.NewDense(rows, len(eta), nil)
	plus := append([]float64(nil), eta...)
	minus := append([]float64(nil), eta...)
	for j := range eta {
		h := relStep * math.Max(math.Abs(eta[j]), relStep)
		plus[j] = eta[j] + h
		minus[j] = eta[j] - h
		rp, err := e.residual(plus)
		if err != nil {
			return nil, err
		}
		rm, err := e.residual(minus)
		if err != nil {
			return nil, err
		}
		for i := 0; i < rows; i++ {
			out.Set(i, j, (rp[i]-rm[i])/(2*h))
		}
		plus[j] = eta[j]
		minus[j] = eta[j]
	}

	return out, nil
}

func (e *dynamicEvaluator) Evaluate(eta []float64, withJac bool) (*Evaluation, error) {
	r, err := e.residual(eta)
	if err != nil {
		return nil, nlsErrorf(opEvaluate, err)
	}
	ev := &Evaluation{Eta: append([]float64(nil), eta...), Residual: r}
	if withJac && len(eta) > 0 {
		if ev.Jacobian, err = e.jacobian(eta, len(r)); err != nil {
			return nil, nlsErrorf(opEvaluate, err)
		}
	}
	ev.finish()

	return ev, nil
}
