// SPDX-License-Identifier: MIT

package nls

import (
	"gonum.org/v1/gonum/floats"
)

// lineSearchResult is the outcome of a backtracking search.
type lineSearchResult struct {
	eval         *Evaluation
	alpha        float64
	contractions int
	// armijo is false when the contraction budget ran out and the best
	// trial was taken instead.
	armijo bool
}

// lineSearch backtracks along p from cur: α starts at 1 and is multiplied by
// armijoRho until V(η+αp) ≤ V(η) + c1·α·gᵀp, at most maxHalf times. Trial
// points with a non-finite cost always fail the test. When the budget runs
// out the lowest-cost trial is returned (the last one if none was finite).
func lineSearch(ev Evaluator, cur *Evaluation, p []float64, maxHalf int) (*lineSearchResult, error) {
	slope := floats.Dot(cur.Grad, p)
	trial := make([]float64, len(p))

	var best *lineSearchResult
	alpha := 1.0
	for c := 0; ; c++ {
		floats.AddScaledTo(trial, cur.Eta, alpha, p)
		e, err := ev.Evaluate(trial, false)
		if err != nil {
			return nil, err
		}
		res := &lineSearchResult{eval: e, alpha: alpha, contractions: c}
		if e.Finite() && e.Cost <= cur.Cost+armijoC1*alpha*slope {
			res.armijo = true
			return res, nil
		}
		if best == nil || !best.eval.Finite() || (e.Finite() && e.Cost < best.eval.Cost) {
			best = res
		}
		if c >= maxHalf {
			break
		}
		alpha *= armijoRho
	}

	return best, nil
}
