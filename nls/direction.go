// SPDX-License-Identifier: MIT

package nls

import (
	"fmt"

	"github.com/InaEriksson/TSRT14/linalg"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Direction returns the search direction for ev together with the rank used
// to compute it. A zero rank means no usable information was found and p is
// the zero vector.
func Direction(alg Algorithm, ev *Evaluation, svtol float64) ([]float64, int, error) {
	n := len(ev.Eta)
	switch alg {
	case GaussNewton:
		return gaussNewtonDirection(ev, n)
	case RobustGaussNewton:
		x, rank, err := linalg.TruncatedSolve(ev.Jacobian, mat.NewVecDense(len(ev.Residual), ev.Residual), svtol)
		if err != nil {
			return nil, 0, nlsErrorf(opDirection, err)
		}
		p := x.RawVector().Data
		floats.Scale(-1, p)
		return p, rank, nil
	case SteepestDescent:
		p := append([]float64(nil), ev.Grad...)
		floats.Scale(-1, p)
		if floats.Norm(p, 2) == 0 {
			return p, 0, nil
		}
		return p, n, nil
	}

	return nil, 0, nlsErrorf(opDirection, fmt.Errorf("%w: %s has no line-search direction", ErrUnsupportedAlgorithm, alg))
}

// gaussNewtonDirection solves (JᵀJ)p = −g by Cholesky. A normal matrix that
// is not positive definite, or a non-finite solution, yields the zero
// direction with rank 0.
func gaussNewtonDirection(ev *Evaluation, n int) ([]float64, int, error) {
	a := mat.NewSymDense(n, nil)
	a.SymOuterK(1, ev.Jacobian.T())

	var ch mat.Cholesky
	if !ch.Factorize(a) {
		return make([]float64, n), 0, nil
	}
	negg := append([]float64(nil), ev.Grad...)
	floats.Scale(-1, negg)
	var p mat.VecDense
	if err := ch.SolveVecTo(&p, mat.NewVecDense(n, negg)); err != nil {
		// Ill-conditioned: keep the solution unless it is unusable.
		if !linalg.AllFinite(p.RawVector().Data) {
			return make([]float64, n), 0, nil
		}
	}
	out := append([]float64(nil), p.RawVector().Data...)
	if !linalg.AllFinite(out) {
		return make([]float64, n), 0, nil
	}

	return out, n, nil
}
