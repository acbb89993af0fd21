// SPDX-License-Identifier: MIT

package nls

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Reason tells why a run stopped.
type Reason int

const (
	// ReasonNone means the run has not terminated.
	ReasonNone Reason = iota
	// ReasonMaxIter: the iteration budget was exhausted.
	ReasonMaxIter
	// ReasonCostIncreased: the accepted step raised the cost.
	ReasonCostIncreased
	// ReasonCostDecrease: the relative cost decrease fell below CTol.
	ReasonCostDecrease
	// ReasonGradient: the gradient norm fell below GTol.
	ReasonGradient
	// ReasonSmallStep: the Levenberg-Marquardt step fell below CTol.
	ReasonSmallStep
	// ReasonNoFreeParameters: the masks leave nothing to estimate.
	ReasonNoFreeParameters
	// ReasonStalled: a zero direction was found under StallTerminate.
	ReasonStalled
	// ReasonNonFinite: the cost became NaN or infinite.
	ReasonNonFinite
	// ReasonCanceled: the context was canceled.
	ReasonCanceled
)

var reasonText = map[Reason]string{
	ReasonNone:             "running",
	ReasonMaxIter:          "maximum number of iterations reached",
	ReasonCostIncreased:    "cost increased",
	ReasonCostDecrease:     "relative cost decrease below tolerance",
	ReasonGradient:         "gradient norm below tolerance",
	ReasonSmallStep:        "step size below tolerance",
	ReasonNoFreeParameters: "no free parameters",
	ReasonStalled:          "search direction vanished",
	ReasonNonFinite:        "cost is not finite",
	ReasonCanceled:         "canceled",
}

// String implements fmt.Stringer.
func (r Reason) String() string {
	if s, ok := reasonText[r]; ok {
		return s
	}
	return fmt.Sprintf("Reason(%d)", int(r))
}

// Converged reports whether r is a tolerance-based stop.
func (r Reason) Converged() bool {
	return r == ReasonGradient || r == ReasonCostDecrease || r == ReasonSmallStep
}

// monitor decides termination on the line-search path after iteration iter
// has moved the cost from prev to cost. Tests are taken in order: iteration
// budget, cost increase, relative decrease, gradient ∞-norm. It returns
// ReasonNone to continue.
func monitor(iter, maxIter int, prev, cost float64, grad []float64, ctol, gtol float64) Reason {
	if iter >= maxIter {
		return ReasonMaxIter
	}
	if cost > prev {
		return ReasonCostIncreased
	}
	rel := 0.0
	if prev != 0 {
		rel = (prev - cost) / math.Abs(prev)
	}
	if rel < ctol {
		return ReasonCostDecrease
	}
	if floats.Norm(grad, math.Inf(1)) < gtol {
		return ReasonGradient
	}

	return ReasonNone
}
