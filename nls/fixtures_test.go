// SPDX-License-Identifier: MIT

package nls_test

import (
	"errors"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/InaEriksson/TSRT14/model"
)

var errBoom = errors.New("boom")

// expSat is h(t, θ) = θ₀·(1 − exp(−θ₁·t)).
func expSat(th []float64, withJac bool) *model.Static {
	m := &model.Static{
		Name: "expsat",
		NY:   1,
		H: func(t float64, th []float64) ([]float64, error) {
			return []float64{th[0] * (1 - math.Exp(-th[1]*t))}, nil
		},
		Th:      append([]float64(nil), th...),
		ThNames: []string{"gain", "rate"},
	}
	if withJac {
		m.Jac = func(t float64, th []float64) (*mat.Dense, error) {
			e := math.Exp(-th[1] * t)
			return mat.NewDense(1, 2, []float64{1 - e, th[0] * t * e}), nil
		}
	}
	return m
}

// expSatData samples expSat(trueTh) on t = 0, 0.1, …, 3 and adds Gaussian
// noise of standard deviation sigma.
func expSatData(trueTh []float64, sigma float64, seed int64) *model.Signal {
	const n = 31
	rng := rand.New(rand.NewSource(seed))
	t := make([]float64, n)
	y := mat.NewDense(n, 1, nil)
	for k := range t {
		t[k] = 0.1 * float64(k)
		v := trueTh[0] * (1 - math.Exp(-trueTh[1]*t[k]))
		if sigma > 0 {
			v += sigma * rng.NormFloat64()
		}
		y.Set(k, 0, v)
	}
	sig, err := model.NewSignal(t, y)
	if err != nil {
		panic(err)
	}
	sig.Name = "expsat"
	return sig
}

// linearLS is r(θ) = A·θ − b for a fixed full-rank A.
func linearLS(th []float64) (*model.Objective, *mat.Dense, *mat.VecDense) {
	a := mat.NewDense(5, 2, []float64{
		1, 0,
		1, 1,
		1, 2,
		1, 3,
		1, 4,
	})
	b := mat.NewVecDense(5, []float64{0.9, 3.2, 4.8, 7.1, 9.0})
	obj := &model.Objective{
		Name: "line",
		M:    5,
		F: func(th []float64) ([]float64, error) {
			var r mat.VecDense
			r.MulVec(a, mat.NewVecDense(2, append([]float64(nil), th...)))
			r.SubVec(&r, b)
			return append([]float64(nil), r.RawVector().Data...), nil
		},
		Jac: func([]float64) (*mat.Dense, error) {
			return mat.DenseCopyOf(a), nil
		},
		Th: append([]float64(nil), th...),
	}
	return obj, a, b
}

// uphill is r(θ) = θ with a Jacobian of the wrong sign, so every direction
// computed from it climbs V = θ². calls, when not nil, counts residual
// evaluations.
func uphill(calls *int) *model.Objective {
	return &model.Objective{
		Name: "uphill",
		M:    1,
		F: func(th []float64) ([]float64, error) {
			if calls != nil {
				*calls++
			}
			return []float64{th[0]}, nil
		},
		Jac: func([]float64) (*mat.Dense, error) {
			return mat.NewDense(1, 1, []float64{-1}), nil
		},
		Th: []float64{1},
	}
}

// firstOrder is x[k+1] = a·x[k] + b·u[k], y[k] = x[k], θ = (a, b).
func firstOrder(th, x0 []float64) *model.NL {
	return &model.NL{
		Name: "first-order",
		F: func(_ float64, x, u, th []float64) ([]float64, error) {
			return []float64{th[0]*x[0] + th[1]*u[0]}, nil
		},
		H: func(_ float64, x, _, _ []float64) ([]float64, error) {
			return []float64{x[0]}, nil
		},
		NX: 1, NU: 1, NY: 1,
		Th:      append([]float64(nil), th...),
		X0:      append([]float64(nil), x0...),
		ThNames: []string{"a", "b"},
		XNames:  []string{"x"},
	}
}

// firstOrderData simulates firstOrder under a square-wave input.
func firstOrderData(th, x0 []float64) *model.Signal {
	const n = 40
	t := make([]float64, n)
	u := mat.NewDense(n, 1, nil)
	for k := range t {
		t[k] = float64(k)
		if (k/5)%2 == 0 {
			u.Set(k, 0, 1)
		} else {
			u.Set(k, 0, -1)
		}
	}
	sig := &model.Signal{Name: "square", T: t, U: u, Y: mat.NewDense(n, 1, nil)}
	y, err := firstOrder(th, x0).Simulate(sig)
	if err != nil {
		panic(err)
	}
	sig.Y = y
	return sig
}
