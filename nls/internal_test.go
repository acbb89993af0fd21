// SPDX-License-Identifier: MIT

package nls

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/InaEriksson/TSRT14/model"
)

func TestDamping(t *testing.T) {
	jac := mat.NewDense(3, 2, []float64{1, 0, 2, 1, 0, 1})
	d := newDamping(1e-3, jac)
	assert.InDelta(t, 5e-3, d.mu, 1e-15) // max(‖col‖²) = 5
	assert.Equal(t, 2.0, d.nu)

	for i := 0; i < 5; i++ {
		before, nu := d.mu, d.nu
		d.reject()
		assert.Greater(t, d.mu, before)
		assert.Equal(t, 2*nu, d.nu)
	}

	for _, rho := range []float64{1e-3, 0.25, 0.5, 0.75, 1, 3} {
		d.nu = 16
		before := d.mu
		d.accept(rho)
		assert.LessOrEqual(t, d.mu, before)
		assert.GreaterOrEqual(t, d.mu, before/3*(1-1e-15))
		assert.Equal(t, 2.0, d.nu)
	}

	d.mu = 1
	d.accept(1)
	assert.InDelta(t, 1.0/3, d.mu, 1e-15, "perfect prediction shrinks μ by three")

	zero := newDamping(1e-3, mat.NewDense(2, 2, nil))
	assert.Equal(t, 1e-3, zero.mu)
}

func TestMonitor(t *testing.T) {
	g := []float64{1, -2}
	tests := []struct {
		name       string
		iter       int
		prev, cost float64
		grad       []float64
		want       Reason
	}{
		{"max iter wins", 10, 1, 2, g, ReasonMaxIter},
		{"cost increased", 3, 1, 1.5, g, ReasonCostIncreased},
		{"small decrease", 3, 1, 1 - 1e-12, g, ReasonCostDecrease},
		{"zero cost", 3, 0, 0, g, ReasonCostDecrease},
		{"small gradient", 3, 1, 0.5, []float64{1e-9, -1e-9}, ReasonGradient},
		{"continue", 3, 1, 0.5, g, ReasonNone},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, monitor(tc.iter, 10, tc.prev, tc.cost, tc.grad, 1e-8, 1e-6))
		})
	}
}

func TestReasonString(t *testing.T) {
	for r := ReasonNone; r <= ReasonCanceled; r++ {
		assert.NotEmpty(t, r.String())
		assert.NotContains(t, r.String(), "Reason(")
	}
	assert.Equal(t, "Reason(99)", Reason(99).String())
	assert.True(t, ReasonGradient.Converged())
	assert.False(t, ReasonMaxIter.Converged())
}

func TestMaskRoundTrip(t *testing.T) {
	m, err := NewMask([]bool{true, false, true}, 3, []bool{false, true}, 2)
	require.NoError(t, err)

	th, x0 := []float64{1, 2, 3}, []float64{4, 5}
	eta := m.Reduce(th, x0)
	assert.Equal(t, []float64{1, 3, 5}, eta)
	assert.Equal(t, []int{0, 2, 4}, m.FreeIndex())
	assert.Equal(t, 2, m.NumFreeParams())
	assert.Equal(t, 1, m.NumFreeStates())

	th2, x02 := m.Scatter([]float64{10, 30, 50}, th, x0)
	assert.Equal(t, []float64{10, 2, 30}, th2)
	assert.Equal(t, []float64{4, 50}, x02)
	assert.Equal(t, []float64{1, 2, 3}, th, "inputs untouched")

	def, err := NewMask(nil, 2, nil, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, def.Dim())

	_, err = NewMask([]bool{true}, 2, nil, 0)
	assert.ErrorIs(t, err, ErrMaskLength)
	_, err = NewMask(nil, 2, []bool{true}, 3)
	assert.ErrorIs(t, err, ErrMaskLength)
}

func quadratic(center float64) *objectiveEvaluator {
	ev, err := newObjectiveEvaluator(&model.Objective{
		Name: "quad",
		M:    1,
		F:    func(th []float64) ([]float64, error) { return []float64{th[0] - center}, nil },
		Jac:  func([]float64) (*mat.Dense, error) { return mat.NewDense(1, 1, []float64{1}), nil },
		Th:   []float64{0},
	}, Options{})
	if err != nil {
		panic(err)
	}
	return ev
}

func TestLineSearchBacktracks(t *testing.T) {
	ev := quadratic(3)
	cur, err := ev.Evaluate([]float64{0}, true)
	require.NoError(t, err)

	ls, err := lineSearch(ev, cur, []float64{100}, 10)
	require.NoError(t, err)
	assert.True(t, ls.armijo)
	assert.Equal(t, 5, ls.contractions)
	assert.Equal(t, 1.0/32, ls.alpha)
	assert.Less(t, ls.eval.Cost, cur.Cost)

	ls, err = lineSearch(ev, cur, []float64{100}, 2)
	require.NoError(t, err)
	assert.False(t, ls.armijo, "budget exhausted")
	assert.Equal(t, 0.25, ls.alpha, "best trial is kept")
}

func TestLineSearchRejectsNonFinite(t *testing.T) {
	ev, err := newObjectiveEvaluator(&model.Objective{
		Name: "wall",
		M:    1,
		F: func(th []float64) ([]float64, error) {
			if th[0] > 1 {
				return []float64{math.Inf(1)}, nil
			}
			return []float64{th[0] - 1}, nil
		},
		Th: []float64{0},
	}, Options{})
	require.NoError(t, err)
	cur, err := ev.Evaluate([]float64{0}, true)
	require.NoError(t, err)

	ls, err := lineSearch(ev, cur, []float64{4}, 10)
	require.NoError(t, err)
	assert.True(t, ls.armijo)
	assert.Equal(t, 0.25, ls.alpha)
}

func TestDirectionsAgreeOnFullRank(t *testing.T) {
	ev := &Evaluation{
		Eta:      []float64{0, 0},
		Residual: []float64{1, -2, 0.5},
		Jacobian: mat.NewDense(3, 2, []float64{1, 0, 1, 1, 1, 2}),
	}
	ev.finish()

	gn, rank, err := Direction(GaussNewton, ev, DefaultSVTol)
	require.NoError(t, err)
	assert.Equal(t, 2, rank)
	rgn, rank, err := Direction(RobustGaussNewton, ev, DefaultSVTol)
	require.NoError(t, err)
	assert.Equal(t, 2, rank)
	assert.InDeltaSlice(t, gn, rgn, 1e-12)

	sd, _, err := Direction(SteepestDescent, ev, DefaultSVTol)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{-ev.Grad[0], -ev.Grad[1]}, sd, 0)

	_, _, err = Direction(LevenbergMarquardt, ev, DefaultSVTol)
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}

func TestLMStepShrinksWithDamping(t *testing.T) {
	ev := &Evaluation{
		Eta:      []float64{0, 0},
		Residual: []float64{1, -2, 0.5},
		Jacobian: mat.NewDense(3, 2, []float64{1, 0, 1, 1, 1, 2}),
	}
	ev.finish()

	small, err := lmStep(ev, 1e-8, DefaultSVTol)
	require.NoError(t, err)
	gn, _, err := Direction(GaussNewton, ev, DefaultSVTol)
	require.NoError(t, err)
	assert.InDeltaSlice(t, gn, small, 1e-6, "tiny damping reproduces Gauss-Newton")

	big, err := lmStep(ev, 1e8, DefaultSVTol)
	require.NoError(t, err)
	norm := func(p []float64) float64 { return math.Hypot(p[0], p[1]) }
	assert.Less(t, norm(big), norm(small))
	// large damping approaches −g/μ
	assert.InDelta(t, -ev.Grad[0]/1e8, big[0], 1e-12)
}

func TestOptionsParsing(t *testing.T) {
	for _, a := range []Algorithm{GaussNewton, RobustGaussNewton, LevenbergMarquardt, SteepestDescent} {
		got, err := ParseAlgorithm(a.String())
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}
	got, err := ParseAlgorithm(" LM ")
	require.NoError(t, err)
	assert.Equal(t, LevenbergMarquardt, got)
	_, err = ParseAlgorithm("newton")
	assert.ErrorIs(t, err, ErrBadOption)

	p, err := ParseStallPolicy("terminate")
	require.NoError(t, err)
	assert.Equal(t, StallTerminate, p)

	assert.NoError(t, DefaultOptions().Validate())
	bad := []func(*Options){
		func(o *Options) { o.Algorithm = Algorithm(9) },
		func(o *Options) { o.MaxIter = 0 },
		func(o *Options) { o.MaxHalf = -1 },
		func(o *Options) { o.Tau = 0 },
		func(o *Options) { o.Tau = -1 },
		func(o *Options) { o.SVTol = math.Inf(1) },
	}
	for i, set := range bad {
		o := DefaultOptions()
		set(&o)
		assert.ErrorIs(t, o.Validate(), ErrBadOption, "case %d", i)
	}
	zero := DefaultOptions()
	zero.MaxHalf, zero.GTol, zero.CTol = 0, 0, 0
	zero.SVTol, zero.NoiseFloor, zero.PSDScale = 0, 0, 0
	assert.NoError(t, zero.Validate())
	assert.ErrorIs(t, Options{}.Validate(), ErrBadOption)
}
