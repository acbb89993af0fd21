// SPDX-License-Identifier: MIT

package nls

import (
	"fmt"
	"math"

	"github.com/InaEriksson/TSRT14/model"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Evaluation is the residual (and optionally Jacobian) at one iterate.
type Evaluation struct {
	// Eta is a copy of the iterate the evaluation was made at.
	Eta []float64
	// Cost is V(η) = εᵀε.
	Cost float64
	// Residual is ε stacked sample-major: entry k·ny+i is output i at
	// sample k (datasets concatenated in order).
	Residual []float64
	// Jacobian is ∂ε/∂η, (N·ny)×n, or nil when not requested.
	Jacobian *mat.Dense
	// Grad is Jᵀε, or nil when the Jacobian was not requested.
	Grad []float64
}

// Finite reports whether the cost is neither NaN nor infinite.
func (e *Evaluation) Finite() bool {
	return !math.IsNaN(e.Cost) && !math.IsInf(e.Cost, 0)
}

// Evaluator computes residuals of a model against data as a function of the
// reduced iterate η.
type Evaluator interface {
	// Dim returns n = len(η).
	Dim() int
	// Shape returns the total sample count N and the output dimension ny.
	Shape() (n, ny int)
	// Mask returns the free-coordinate mask.
	Mask() Mask
	// Initial returns η extracted from the model's current θ and x0.
	Initial() []float64
	// Split scatters η back into full θ and x0 (x0 is nil for static models).
	Split(eta []float64) (th, x0 []float64)
	// Evaluate computes the residual at η, and the Jacobian when withJac.
	// Repeated calls with the same η give identical results.
	Evaluate(eta []float64, withJac bool) (*Evaluation, error)
	// Snapshot returns the model with θ and x0 set from η, or nil for
	// models that carry no simulation state.
	Snapshot(eta []float64) model.Model
}

// NewEvaluator selects the static or dynamic evaluator for m and validates
// the data against it. Objective models take no data.
func NewEvaluator(m model.Model, data []*model.Signal, opts Options) (Evaluator, error) {
	if m == nil {
		return nil, nlsErrorf(opEvaluator, fmt.Errorf("%w: nil model", ErrUnknownModel))
	}
	if v, ok := m.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			return nil, nlsErrorf(opEvaluator, err)
		}
	}
	if len(opts.InitialStates) > 0 && m.Kind() != model.KindDynamic {
		return nil, nlsErrorf(opEvaluator, fmt.Errorf("%w: initial states given for a %s model", ErrBadOption, m.Kind()))
	}

	var (
		ev  Evaluator
		err error
	)
	switch mm := m.(type) {
	case *model.Objective:
		if len(opts.X0Mask) > 0 {
			return nil, nlsErrorf(opEvaluator, fmt.Errorf("%w: objective models have no initial state", ErrMaskLength))
		}
		ev, err = newObjectiveEvaluator(mm, opts)
	case *model.Static:
		if len(opts.X0Mask) > 0 {
			return nil, nlsErrorf(opEvaluator, fmt.Errorf("%w: static models have no initial state", ErrMaskLength))
		}
		ev, err = newStaticEvaluator(mm, data, opts)
	case model.Simulator:
		ev, err = newDynamicEvaluator(mm, data, opts)
	default:
		return nil, nlsErrorf(opEvaluator, fmt.Errorf("%w: %T (%s)", ErrUnknownModel, m, m.Kind()))
	}
	if err != nil {
		return nil, err
	}

	return ev, nil
}

// validateData checks each signal and its dimensions.
func validateData(data []*model.Signal, ny, nu int) (int, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("%w: no datasets", ErrBadData)
	}
	total := 0
	for i, sig := range data {
		if sig == nil {
			return 0, fmt.Errorf("%w: dataset %d is nil", ErrBadData, i)
		}
		if err := sig.Validate(); err != nil {
			return 0, fmt.Errorf("%w: dataset %d: %v", ErrBadData, i, err)
		}
		if sig.NumOutputs() != ny {
			return 0, fmt.Errorf("%w: dataset %d has %d outputs, model has %d", ErrBadData, i, sig.NumOutputs(), ny)
		}
		if nu >= 0 && sig.NumInputs() != nu {
			return 0, fmt.Errorf("%w: dataset %d has %d inputs, model has %d", ErrBadData, i, sig.NumInputs(), nu)
		}
		total += sig.Len()
	}

	return total, nil
}

// finish fills cost and gradient of e from its residual and Jacobian.
func (e *Evaluation) finish() {
	e.Cost = floats.Dot(e.Residual, e.Residual)
	if e.Jacobian == nil {
		return
	}
	var g mat.VecDense
	g.MulVec(e.Jacobian.T(), mat.NewVecDense(len(e.Residual), e.Residual))
	e.Grad = append([]float64(nil), g.RawVector().Data...)
}

// numericJacobian is the central-difference Jacobian of resid at eta with
// step √ε. The first error returned by resid is reported.
func numericJacobian(resid func([]float64) ([]float64, error), eta []float64, rows int) (*mat.Dense, error) {
	var firstErr error
	f := func(y, x []float64) {
		r, err := resid(x)
		if err != nil || len(r) != len(y) {
			if firstErr == nil {
				if err == nil {
					err = fmt.Errorf("%w: residual length changed to %d", ErrBadData, len(r))
				}
				firstErr = err
			}
			for i := range y {
				y[i] = math.NaN()
			}
			return
		}
		copy(y, r)
	}
	jac := mat.NewDense(rows, len(eta), nil)
	fd.Jacobian(jac, f, eta, &fd.JacobianSettings{
		Formula: fd.Central,
		Step:    math.Sqrt(DefaultNoiseFloor),
	})
	if firstErr != nil {
		return nil, firstErr
	}

	return jac, nil
}

// objectiveEvaluator wraps a model.Objective: ε = r(θ).
type objectiveEvaluator struct {
	m       *model.Objective
	mask    Mask
	numeric bool
}

func newObjectiveEvaluator(m *model.Objective, opts Options) (*objectiveEvaluator, error) {
	mask, err := NewMask(opts.ThetaMask, m.NumParams(), nil, 0)
	if err != nil {
		return nil, nlsErrorf(opEvaluator, err)
	}

	return &objectiveEvaluator{m: m, mask: mask, numeric: opts.NumericGradient || !m.HasJacobian()}, nil
}

func (e *objectiveEvaluator) Dim() int                       { return e.mask.Dim() }
func (e *objectiveEvaluator) Shape() (int, int)              { return e.m.M, 1 }
func (e *objectiveEvaluator) Mask() Mask                     { return e.mask }
func (e *objectiveEvaluator) Initial() []float64             { return e.mask.Reduce(e.m.Th, nil) }
func (e *objectiveEvaluator) Snapshot([]float64) model.Model { return nil }

func (e *objectiveEvaluator) Split(eta []float64) ([]float64, []float64) {
	th, _ := e.mask.Scatter(eta, e.m.Th, nil)
	return th, nil
}

func (e *objectiveEvaluator) residual(eta []float64) ([]float64, error) {
	th, _ := e.Split(eta)
	r, err := e.m.Residual(th)
	if err != nil {
		return nil, err
	}

	return append([]float64(nil), r...), nil
}

func (e *objectiveEvaluator) Evaluate(eta []float64, withJac bool) (*Evaluation, error) {
	r, err := e.residual(eta)
	if err != nil {
		return nil, nlsErrorf(opEvaluate, err)
	}
	ev := &Evaluation{Eta: append([]float64(nil), eta...), Residual: r}
	if withJac && len(eta) > 0 {
		if e.numeric {
			ev.Jacobian, err = numericJacobian(e.residual, eta, len(r))
		} else {
			th, _ := e.Split(eta)
			var full *mat.Dense
			full, err = e.m.Jacobian(th)
			if err == nil {
				ev.Jacobian = freeColumns(full, e.mask.thIdx)
			}
		}
		if err != nil {
			return nil, nlsErrorf(opEvaluate, err)
		}
	}
	ev.finish()

	return ev, nil
}

// freeColumns copies the listed columns of a into a new matrix.
func freeColumns(a *mat.Dense, cols []int) *mat.Dense {
	r, _ := a.Dims()
	out := mat.NewDense(r, len(cols), nil)
	for c, j := range cols {
		out.SetCol(c, mat.Col(nil, j, a))
	}

	return out
}

// staticEvaluator wraps a model.Static: ε_k = h(t_k, θ) − y_k.
type staticEvaluator struct {
	m       *model.Static
	data    []*model.Signal
	mask    Mask
	n       int
	numeric bool
}

func newStaticEvaluator(m *model.Static, data []*model.Signal, opts Options) (*staticEvaluator, error) {
	n, err := validateData(data, m.NY, -1)
	if err != nil {
		return nil, nlsErrorf(opEvaluator, err)
	}
	mask, err := NewMask(opts.ThetaMask, m.NumParams(), nil, 0)
	if err != nil {
		return nil, nlsErrorf(opEvaluator, err)
	}

	return &staticEvaluator{
		m:       m,
		data:    data,
		mask:    mask,
		n:       n,
		numeric: opts.NumericGradient || !m.HasJacobian(),
	}, nil
}

func (e *staticEvaluator) Dim() int                       { return e.mask.Dim() }
func (e *staticEvaluator) Shape() (int, int)              { return e.n, e.m.NY }
func (e *staticEvaluator) Mask() Mask                     { return e.mask }
func (e *staticEvaluator) Initial() []float64             { return e.mask.Reduce(e.m.Th, nil) }
func (e *staticEvaluator) Snapshot([]float64) model.Model { return nil }

func (e *staticEvaluator) Split(eta []float64) ([]float64, []float64) {
	th, _ := e.mask.Scatter(eta, e.m.Th, nil)
	return th, nil
}

func (e *staticEvaluator) residual(eta []float64) ([]float64, error) {
	th, _ := e.Split(eta)
	r := make([]float64, 0, e.n*e.m.NY)
	for _, sig := range e.data {
		for k, t := range sig.T {
			yhat, err := e.m.Evaluate(t, th)
			if err != nil {
				return nil, err
			}
			y := sig.Output(k)
			for i := range y {
				r = append(r, yhat[i]-y[i])
			}
		}
	}

	return r, nil
}

func (e *staticEvaluator) jacobian(eta []float64) (*mat.Dense, error) {
	th, _ := e.Split(eta)
	ny := e.m.NY
	out := mat.NewDense(e.n*ny, len(eta), nil)
	row := 0
	for _, sig := range e.data {
		for _, t := range sig.T {
			jk, err := e.m.Jacobian(t, th)
			if err != nil {
				return nil, err
			}
			for c, j := range e.mask.thIdx {
				for i := 0; i < ny; i++ {
					out.Set(row+i, c, jk.At(i, j))
				}
			}
			row += ny
		}
	}

	return out, nil
}

func (e *staticEvaluator) Evaluate(eta []float64, withJac bool) (*Evaluation, error) {
	r, err := e.residual(eta)
	if err != nil {
		return nil, nlsErrorf(opEvaluate, err)
	}
	ev := &Evaluation{Eta: append([]float64(nil), eta...), Residual: r}
	if withJac && len(eta) > 0 {
		if e.numeric {
			ev.Jacobian, err = numericJacobian(e.residual, eta, len(r))
		} else {
			ev.Jacobian, err = e.jacobian(eta)
		}
		if err != nil {
			return nil, nlsErrorf(opEvaluate, err)
		}
	}
	ev.finish()

	return ev, nil
}
