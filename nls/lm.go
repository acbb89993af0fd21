// SPDX-License-Identifier: MIT

package nls

import (
	"math"

	"github.com/InaEriksson/TSRT14/linalg"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// damping is the Levenberg-Marquardt state (μ, ν).
type damping struct {
	mu, nu float64
}

// newDamping starts at μ = τ·max diag(JᵀJ), or τ when J has no energy.
func newDamping(tau float64, jac *mat.Dense) damping {
	_, n := jac.Dims()
	maxDiag := 0.0
	for j := 0; j < n; j++ {
		col := mat.Col(nil, j, jac)
		maxDiag = math.Max(maxDiag, floats.Dot(col, col))
	}
	mu := tau * maxDiag
	if mu == 0 || math.IsNaN(mu) || math.IsInf(mu, 0) {
		mu = tau
	}

	return damping{mu: mu, nu: 2}
}

// accept scales μ by max(1/3, 1−(2ρ−1)³), capped at 1 so that an accepted
// step never raises the damping.
func (d *damping) accept(rho float64) {
	d.mu *= math.Min(1, math.Max(1.0/3, 1-math.Pow(2*rho-1, 3)))
	d.nu = 2
}

// reject grows μ geometrically.
func (d *damping) reject() {
	d.mu *= d.nu
	d.nu *= 2
}

// lmStep solves the stacked system [J; √μ·I]·x ≈ [ε; 0] by truncated SVD
// and returns p = −x.
func lmStep(ev *Evaluation, mu, svtol float64) ([]float64, error) {
	m, n := ev.Jacobian.Dims()
	a := mat.NewDense(m+n, n, nil)
	a.Slice(0, m, 0, n).(*mat.Dense).Copy(ev.Jacobian)
	s := math.Sqrt(mu)
	for i := 0; i < n; i++ {
		a.Set(m+i, i, s)
	}
	b := mat.NewVecDense(m+n, nil)
	for i, r := range ev.Residual {
		b.SetVec(i, r)
	}

	x, _, err := linalg.TruncatedSolve(a, b, svtol)
	if err != nil {
		return nil, nlsErrorf(opLM, err)
	}
	p := append([]float64(nil), x.RawVector().Data...)
	floats.Scale(-1, p)

	return p, nil
}

// gainRatio compares the actual decrease of ½V to the decrease predicted by
// the damped linear model, ½pᵀ(μp − g). A non-positive prediction or a
// non-finite trial gives a ratio of −1.
//
// ρ is the ratio for ½V, not V: both numerator and denominator are halved,
// so an exactly linear model gives ρ = 1.
func gainRatio(cur, trial *Evaluation, p []float64, mu float64) float64 {
	if !trial.Finite() {
		return -1
	}
	pred := 0.0
	for i := range p {
		pred += p[i] * (mu*p[i] - cur.Grad[i])
	}
	pred *= 0.5
	if pred <= 0 {
		return -1
	}

	return 0.5 * (cur.Cost - trial.Cost) / pred
}
