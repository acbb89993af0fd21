// SPDX-License-Identifier: MIT

package nls

import (
	"fmt"

	"github.com/InaEriksson/TSRT14/linalg"
	"github.com/InaEriksson/TSRT14/model"
	"gonum.org/v1/gonum/mat"
)

// uncertainty holds the covariance quantities derived at the solution.
type uncertainty struct {
	noise     *mat.SymDense
	info      *mat.SymDense
	full      *mat.SymDense
	thetaCov  *mat.SymDense
	x0Cov     *mat.SymDense
	infoTheta *mat.SymDense
	infoX0    *mat.SymDense
}

// noiseCovariance picks R̂: the residual second moment when estimate is
// set, otherwise the first dataset-supplied covariance, otherwise I.
func noiseCovariance(final *Evaluation, n, ny int, data []*model.Signal, estimate bool, floor float64) (*mat.SymDense, error) {
	if estimate {
		e := mat.NewDense(n, ny, append([]float64(nil), final.Residual...))
		return linalg.SecondMoment(e, floor)
	}
	for _, sig := range data {
		if sig.NoiseCov != nil && sig.NoiseCov.SymmetricDim() == ny {
			out := mat.NewSymDense(ny, nil)
			out.CopySym(sig.NoiseCov)
			return out, nil
		}
	}
	id := mat.NewSymDense(ny, nil)
	for i := 0; i < ny; i++ {
		id.SetSym(i, i, 1)
	}

	return id, nil
}

// estimateUncertainty computes I = Σ J_kᵀ R̂⁺ J_k at the final iterate, its
// pseudo-inverse, and scatters the result into the (nth+nx)² layout.
// Fixed coordinates get zero rows and columns; only free diagonal entries
// receive the positive-semidefinite correction.
func estimateUncertainty(ev Evaluator, final *Evaluation, data []*model.Signal, opts Options) (*uncertainty, error) {
	if final.Jacobian == nil {
		return nil, nlsErrorf(opUncertainty, fmt.Errorf("%w: no Jacobian at the solution", ErrBadData))
	}
	n, ny := ev.Shape()
	mask := ev.Mask()

	noise, err := noiseCovariance(final, n, ny, data, opts.EstimateNoise, opts.NoiseFloor)
	if err != nil {
		return nil, nlsErrorf(opUncertainty, err)
	}
	w, err := linalg.PseudoInverse(noise, -1)
	if err != nil {
		return nil, nlsErrorf(opUncertainty, err)
	}
	info, err := linalg.BlockOuter(final.Jacobian, ny, w)
	if err != nil {
		return nil, nlsErrorf(opUncertainty, err)
	}
	pinv, err := linalg.PseudoInverse(info, -1)
	if err != nil {
		return nil, nlsErrorf(opUncertainty, err)
	}
	reduced, err := linalg.Symmetrize(pinv)
	if err != nil {
		return nil, nlsErrorf(opUncertainty, err)
	}
	free := mask.FreeIndex()
	full, err := linalg.ScatterSym(reduced, free, mask.FullDim())
	if err != nil {
		return nil, nlsErrorf(opUncertainty, err)
	}
	if full, err = linalg.RegularizePSD(full, opts.PSDScale, free); err != nil {
		return nil, nlsErrorf(opUncertainty, err)
	}

	u := &uncertainty{noise: noise, info: info, full: full}
	if u.thetaCov, err = linalg.GatherSym(full, seq(0, mask.nth)); err != nil {
		return nil, nlsErrorf(opUncertainty, err)
	}
	if u.x0Cov, err = linalg.GatherSym(full, seq(mask.nth, mask.nth+mask.nx)); err != nil {
		return nil, nlsErrorf(opUncertainty, err)
	}
	n1 := mask.NumFreeParams()
	if u.infoTheta, err = linalg.GatherSym(info, seq(0, n1)); err != nil {
		return nil, nlsErrorf(opUncertainty, err)
	}
	if u.infoX0, err = linalg.GatherSym(info, seq(n1, mask.Dim())); err != nil {
		return nil, nlsErrorf(opUncertainty, err)
	}

	return u, nil
}

// seq returns [lo, hi).
func seq(lo, hi int) []int {
	out := make([]int, 0, hi-lo)
	for i := lo; i < hi; i++ {
		out = append(out, i)
	}

	return out
}
