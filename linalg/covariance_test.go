// SPDX-License-Identifier: MIT
package linalg_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/InaEriksson/TSRT14/linalg"
)

func TestSymmetrize(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{1, 2, 4, 3})
	s, err := linalg.Symmetrize(a)
	require.NoError(t, err)
	assert.Equal(t, 3.0, s.At(0, 1))
	assert.Equal(t, 3.0, s.At(1, 0))

	_, err = linalg.Symmetrize(mat.NewDense(2, 3, nil))
	assert.ErrorIs(t, err, linalg.ErrNonSquare)
}

// TestRegularizePSD_LiftsRoundOff ensures a slightly indefinite matrix
// becomes positive-semidefinite after the diagonal shift.
func TestRegularizePSD_LiftsRoundOff(t *testing.T) {
	s := mat.NewSymDense(2, []float64{1, 1, 1, 1 - 1e-14})
	out, err := linalg.RegularizePSD(s, 1e-10, nil)
	require.NoError(t, err)

	lmin, err := linalg.MinEigenvalue(out)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, lmin, 0.0)
	assert.Equal(t, 1-1e-14, s.At(1, 1), "input must not be mutated")
}

func TestRegularizePSD_IndexSubset(t *testing.T) {
	s := mat.NewSymDense(3, []float64{
		2, 0, 0,
		0, 0, 0,
		0, 0, 1,
	})
	out, err := linalg.RegularizePSD(s, 0.5, []int{0, 2})
	require.NoError(t, err)
	assert.InDelta(t, 3.0, out.At(0, 0), tol)
	assert.Equal(t, 0.0, out.At(1, 1), "unlisted diagonal entries stay untouched")
	assert.InDelta(t, 2.0, out.At(2, 2), tol)

	_, err = linalg.RegularizePSD(s, 0.5, []int{3})
	assert.ErrorIs(t, err, linalg.ErrIndexOutOfRange)

	_, err = linalg.RegularizePSD(s, -1, nil)
	assert.ErrorIs(t, err, linalg.ErrBadTolerance)
}

func TestSecondMoment(t *testing.T) {
	x := mat.NewDense(2, 2, []float64{
		1, 2,
		-1, 0,
	})
	s, err := linalg.SecondMoment(x, 0.25)
	require.NoError(t, err)
	assert.InDelta(t, 1.25, s.At(0, 0), tol)
	assert.InDelta(t, 1.0, s.At(0, 1), tol)
	assert.InDelta(t, 2.25, s.At(1, 1), tol)
}

func TestSampleCovariance(t *testing.T) {
	x := mat.NewDense(3, 1, []float64{1, 2, 3})
	s, err := linalg.SampleCovariance(x)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, s.At(0, 0), tol)

	_, err = linalg.SampleCovariance(mat.NewDense(1, 2, nil))
	assert.ErrorIs(t, err, linalg.ErrDimensionMismatch)
}

// TestBlockOuter_IdentityWeight equals JᵀJ when every block is weighted by I.
func TestBlockOuter_IdentityWeight(t *testing.T) {
	j := mat.NewDense(4, 2, []float64{
		1, 2,
		0, 1,
		3, 1,
		1, 1,
	})
	w := mat.NewDiagDense(2, []float64{1, 1})
	got, err := linalg.BlockOuter(j, 2, w)
	require.NoError(t, err)

	var want mat.Dense
	want.Mul(j.T(), j)
	assert.True(t, mat.EqualApprox(got, &want, tol))

	_, err = linalg.BlockOuter(j, 3, mat.NewDiagDense(3, []float64{1, 1, 1}))
	assert.ErrorIs(t, err, linalg.ErrDimensionMismatch)
}

func TestScatterGatherSym(t *testing.T) {
	s := mat.NewSymDense(2, []float64{1, 2, 2, 5})
	full, err := linalg.ScatterSym(s, []int{0, 2}, 3)
	require.NoError(t, err)
	assert.Equal(t, 1.0, full.At(0, 0))
	assert.Equal(t, 2.0, full.At(0, 2))
	assert.Equal(t, 2.0, full.At(2, 0))
	assert.Equal(t, 5.0, full.At(2, 2))
	assert.Equal(t, 0.0, full.At(1, 1))

	back, err := linalg.GatherSym(full, []int{0, 2})
	require.NoError(t, err)
	assert.True(t, mat.Equal(back, s))

	empty, err := linalg.GatherSym(full, nil)
	require.NoError(t, err)
	assert.Nil(t, empty)
}
