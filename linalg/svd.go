// SPDX-License-Identifier: MIT
// Package linalg: truncated singular value decomposition kernels.
//
// Purpose:
//   - Solve rank-deficient least-squares systems without amplifying noise
//     along directions with tiny singular values.
//   - Provide the Moore–Penrose pseudo-inverse with the same truncation rule.
//
// Notes:
//   - gonum returns singular values in decreasing order, so truncation keeps
//     a prefix of the factorization.

package linalg

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// epsilon is the float64 machine epsilon.
var epsilon = math.Nextafter(1, 2) - 1

// factorizeThin computes a thin SVD of a and returns its factors.
func factorizeThin(a mat.Matrix) (sv []float64, u, v *mat.Dense, ok bool) {
	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDThin) {
		return nil, nil, nil, false
	}
	u, v = &mat.Dense{}, &mat.Dense{}
	svd.UTo(u)
	svd.VTo(v)

	return svd.Values(nil), u, v, true
}

// TruncatedSolve returns the minimum-norm least-squares solution of A·x ≈ b
// restricted to the singular components of A whose singular value exceeds tol:
//
//	x = Σ_{σᵢ > tol} (uᵢᵀb / σᵢ) · vᵢ
//
// It also returns the number of retained components (the numerical rank).
// A rank of zero yields the zero vector and no error; callers decide whether
// that is a warning condition.
//
// Inputs:
//   - a:   m×n matrix, non-empty.
//   - b:   m-vector.
//   - tol: absolute singular value threshold; negative values are treated as 0.
//
// Errors:
//   - ErrNilMatrix, ErrEmpty, ErrDimensionMismatch, ErrBadTolerance,
//     ErrFactorization, all tagged with "TruncatedSolve".
//
// Complexity:
//   - Time O(m·n·min(m,n)), Space O(m·n).
func TruncatedSolve(a mat.Matrix, b mat.Vector, tol float64) (*mat.VecDense, int, error) {
	if err := ValidateNonEmpty(a); err != nil {
		return nil, 0, linalgErrorf(opTruncatedSolve, err)
	}
	m, n := a.Dims()
	if err := ValidateVecLen(b, m); err != nil {
		return nil, 0, linalgErrorf(opTruncatedSolve, err)
	}
	if err := ValidateTolerance(tol); err != nil {
		return nil, 0, linalgErrorf(opTruncatedSolve, err)
	}
	if tol < 0 {
		tol = 0
	}

	sv, u, v, ok := factorizeThin(a)
	if !ok {
		return nil, 0, linalgErrorf(opTruncatedSolve, ErrFactorization)
	}

	x := mat.NewVecDense(n, nil)
	rank := 0
	for i, sigma := range sv {
		if sigma <= tol {
			break
		}
		coef := mat.Dot(u.ColView(i), b) / sigma
		x.AddScaledVec(x, coef, v.ColView(i))
		rank++
	}

	return x, rank, nil
}

// SingularValues returns the singular values of a in decreasing order.
func SingularValues(a mat.Matrix) ([]float64, error) {
	if err := ValidateNonEmpty(a); err != nil {
		return nil, linalgErrorf(opTruncatedSolve, err)
	}
	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDNone) {
		return nil, linalgErrorf(opTruncatedSolve, ErrFactorization)
	}

	return svd.Values(nil), nil
}

// PseudoInverse returns the n×m Moore–Penrose inverse of the m×n matrix a,
// keeping singular values strictly above tol. A negative tol selects the
// conventional default max(m,n)·σ_max·ε.
//
// Errors: ErrNilMatrix, ErrEmpty, ErrBadTolerance, ErrFactorization.
func PseudoInverse(a mat.Matrix, tol float64) (*mat.Dense, error) {
	if err := ValidateNonEmpty(a); err != nil {
		return nil, linalgErrorf(opPseudoInverse, err)
	}
	if err := ValidateTolerance(tol); err != nil {
		return nil, linalgErrorf(opPseudoInverse, err)
	}
	m, n := a.Dims()

	sv, u, v, ok := factorizeThin(a)
	if !ok {
		return nil, linalgErrorf(opPseudoInverse, ErrFactorization)
	}
	if tol < 0 {
		tol = float64(max(m, n)) * sv[0] * epsilon
	}

	out := mat.NewDense(n, m, nil)
	outer := mat.NewDense(n, m, nil)
	for i, sigma := range sv {
		if sigma <= tol {
			break
		}
		outer.Outer(1/sigma, v.ColView(i), u.ColView(i))
		out.Add(out, outer)
	}

	return out, nil
}
