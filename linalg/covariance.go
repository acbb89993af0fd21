// SPDX-License-Identifier: MIT
// Package: linalg
//
// Purpose:
//   - Covariance-shaped helpers: symmetrisation, PSD regularisation,
//     residual second moments and block-accumulated information matrices.
//   - Index scatter/gather between reduced and full coordinate sets.

package linalg

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Symmetrize returns (A + Aᵀ)/2 as a SymDense.
//
// Errors: ErrNilMatrix, ErrNonSquare, ErrEmpty.
func Symmetrize(a mat.Matrix) (*mat.SymDense, error) {
	if err := ValidateSquare(a); err != nil {
		return nil, linalgErrorf(opSymmetrize, err)
	}
	n, _ := a.Dims()
	if n == 0 {
		return nil, linalgErrorf(opSymmetrize, ErrEmpty)
	}
	s := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			s.SetSym(i, j, 0.5*(a.At(i, j)+a.At(j, i)))
		}
	}

	return s, nil
}

// RegularizePSD returns a copy of s with scale·max(λ_max, 0) added to the
// diagonal entries listed in idx (all diagonal entries when idx is nil).
// The shift guards a covariance estimate against small negative eigenvalues
// produced by round-off.
//
// Errors: ErrNilMatrix, ErrEmpty, ErrBadTolerance (scale NaN/Inf or < 0),
// ErrIndexOutOfRange, ErrFactorization.
func RegularizePSD(s mat.Symmetric, scale float64, idx []int) (*mat.SymDense, error) {
	if s == nil {
		return nil, linalgErrorf(opRegularizePSD, ErrNilMatrix)
	}
	n := s.SymmetricDim()
	if n == 0 {
		return nil, linalgErrorf(opRegularizePSD, ErrEmpty)
	}
	if err := ValidateTolerance(scale); err != nil || scale < 0 {
		return nil, linalgErrorf(opRegularizePSD, ErrBadTolerance)
	}

	var es mat.EigenSym
	if !es.Factorize(s, false) {
		return nil, linalgErrorf(opRegularizePSD, ErrFactorization)
	}
	lmax := 0.0
	for _, l := range es.Values(nil) {
		lmax = math.Max(lmax, l)
	}
	shift := scale * lmax

	out := mat.NewSymDense(n, nil)
	out.CopySym(s)
	if idx == nil {
		for i := 0; i < n; i++ {
			out.SetSym(i, i, out.At(i, i)+shift)
		}
		return out, nil
	}
	for _, i := range idx {
		if i < 0 || i >= n {
			return nil, linalgErrorf(opRegularizePSD, ErrIndexOutOfRange)
		}
		out.SetSym(i, i, out.At(i, i)+shift)
	}

	return out, nil
}

// MinEigenvalue returns the smallest eigenvalue of s.
func MinEigenvalue(s mat.Symmetric) (float64, error) {
	if s == nil {
		return 0, linalgErrorf(opRegularizePSD, ErrNilMatrix)
	}
	var es mat.EigenSym
	if !es.Factorize(s, false) {
		return 0, linalgErrorf(opRegularizePSD, ErrFactorization)
	}
	vals := es.Values(nil)
	lmin := math.Inf(1)
	for _, l := range vals {
		lmin = math.Min(lmin, l)
	}

	return lmin, nil
}

// SecondMoment returns XᵀX/N + floor·I for the N×p matrix X whose rows are
// (zero-mean) residual samples. floor keeps the result invertible when the
// residuals are degenerate.
//
// Errors: ErrNilMatrix, ErrEmpty, ErrBadTolerance.
func SecondMoment(x mat.Matrix, floor float64) (*mat.SymDense, error) {
	if err := ValidateNonEmpty(x); err != nil {
		return nil, linalgErrorf(opSampleCovariance, err)
	}
	if err := ValidateTolerance(floor); err != nil {
		return nil, linalgErrorf(opSampleCovariance, err)
	}
	n, p := x.Dims()
	s := mat.NewSymDense(p, nil)
	s.SymOuterK(1/float64(n), x.T())
	for i := 0; i < p; i++ {
		s.SetSym(i, i, s.At(i, i)+floor)
	}

	return s, nil
}

// SampleCovariance returns the unbiased (centred, N−1) covariance of the
// rows of x. At least two rows are required.
func SampleCovariance(x mat.Matrix) (*mat.SymDense, error) {
	if err := ValidateNonEmpty(x); err != nil {
		return nil, linalgErrorf(opSampleCovariance, err)
	}
	n, p := x.Dims()
	if n < 2 {
		return nil, linalgErrorf(opSampleCovariance, ErrDimensionMismatch)
	}
	cov := mat.NewSymDense(p, nil)
	stat.CovarianceMatrix(cov, x, nil)

	return cov, nil
}

// BlockOuter accumulates Σ_k J_kᵀ·W·J_k over the consecutive ny-row blocks
// J_k of the (N·ny)×n matrix j. The result is n×n and symmetric.
//
// Errors: ErrNilMatrix, ErrEmpty, ErrDimensionMismatch.
//
// Complexity: O(N·ny·n·(ny+n)).
func BlockOuter(j mat.Matrix, ny int, w mat.Matrix) (*mat.SymDense, error) {
	if err := ValidateNonEmpty(j); err != nil {
		return nil, linalgErrorf(opBlockOuter, err)
	}
	if err := ValidateSquare(w); err != nil {
		return nil, linalgErrorf(opBlockOuter, err)
	}
	rows, n := j.Dims()
	wr, _ := w.Dims()
	if ny <= 0 || wr != ny || rows%ny != 0 {
		return nil, linalgErrorf(opBlockOuter, ErrDimensionMismatch)
	}

	jd := mat.DenseCopyOf(j)
	sum := mat.NewDense(n, n, nil)
	wj := mat.NewDense(ny, n, nil)
	term := mat.NewDense(n, n, nil)
	for k := 0; k < rows/ny; k++ {
		jk := jd.Slice(k*ny, (k+1)*ny, 0, n)
		wj.Mul(w, jk)
		term.Mul(jk.T(), wj)
		sum.Add(sum, term)
	}

	return Symmetrize(sum)
}

// ScatterSym places the k×k matrix s into an n×n zero matrix at the rows and
// columns listed in idx (len(idx) == k).
func ScatterSym(s mat.Symmetric, idx []int, n int) (*mat.SymDense, error) {
	if s == nil {
		return nil, linalgErrorf(opScatter, ErrNilMatrix)
	}
	if s.SymmetricDim() != len(idx) || n <= 0 {
		return nil, linalgErrorf(opScatter, ErrDimensionMismatch)
	}
	out := mat.NewSymDense(n, nil)
	for a, i := range idx {
		if i < 0 || i >= n {
			return nil, linalgErrorf(opScatter, ErrIndexOutOfRange)
		}
		for b := a; b < len(idx); b++ {
			out.SetSym(i, idx[b], s.At(a, b))
		}
	}

	return out, nil
}

// GatherSym extracts the principal submatrix of s at idx. An empty idx
// yields a nil matrix and no error.
func GatherSym(s mat.Symmetric, idx []int) (*mat.SymDense, error) {
	if s == nil {
		return nil, linalgErrorf(opScatter, ErrNilMatrix)
	}
	if len(idx) == 0 {
		return nil, nil
	}
	n := s.SymmetricDim()
	out := mat.NewSymDense(len(idx), nil)
	for a, i := range idx {
		if i < 0 || i >= n {
			return nil, linalgErrorf(opScatter, ErrIndexOutOfRange)
		}
		for b := a; b < len(idx); b++ {
			if idx[b] < 0 || idx[b] >= n {
				return nil, linalgErrorf(opScatter, ErrIndexOutOfRange)
			}
			out.SetSym(a, b, s.At(i, idx[b]))
		}
	}

	return out, nil
}
