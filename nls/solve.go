// SPDX-License-Identifier: MIT

package nls

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/InaEriksson/TSRT14/logging"
	"github.com/InaEriksson/TSRT14/model"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Result describes a finished run.
type Result struct {
	Algorithm Algorithm
	// Eta is the final reduced iterate.
	Eta []float64
	// Theta and X0 are the full parameter and initial-state vectors
	// (X0 is nil for models without state).
	Theta, X0 []float64
	// Cost is V at the final iterate.
	Cost float64
	// Residuals is ε at the final iterate.
	Residuals []float64
	// Reason is the single termination reason.
	Reason Reason
	// Iterations counts outer iterations (rejected LM trials included).
	Iterations int
	// RankDeficientSteps counts directions computed from a rank-deficient
	// system.
	RankDeficientSteps int
	// Log is the iteration history.
	Log *Log
	// Covariance is the joint (θ, x0) covariance, (nth+nx)×(nth+nx).
	// Fixed coordinates have zero rows and columns.
	Covariance *mat.SymDense
	// ThetaCov and X0Cov are the θ and x0 diagonal blocks of Covariance.
	ThetaCov, X0Cov *mat.SymDense
	// NoiseCov is the ny×ny noise covariance the information was built on.
	NoiseCov *mat.SymDense
	// InfoTheta and InfoX0 are the free-θ and free-x0 blocks of the
	// information matrix.
	InfoTheta, InfoX0 *mat.SymDense
}

// solver carries the state of one Solve call.
type solver struct {
	ev   Evaluator
	opts Options
	log  *slog.Logger
	res  *Result
}

// Solve estimates the free parameters (and free initial states) of m from
// data and returns a fitted copy of m with its covariance set.
//
// Configuration problems are reported before any iteration. On a non-finite
// cost or a canceled context the partial Result is returned together with
// the error; the fitted model is nil in that case.
func Solve(ctx context.Context, m model.Model, data []*model.Signal, opts Options) (model.Model, *Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, nil, err
	}
	if m != nil && m.Kind() == model.KindDynamic && opts.Algorithm == LevenbergMarquardt {
		return nil, nil, nlsErrorf(opSolve, fmt.Errorf("%w: %s on a %s model", ErrUnsupportedAlgorithm, opts.Algorithm, m.Kind()))
	}
	ev, err := NewEvaluator(m, data, opts)
	if err != nil {
		return nil, nil, err
	}

	s := &solver{
		ev:   ev,
		opts: opts,
		log:  opts.Logger,
		res:  &Result{Algorithm: opts.Algorithm, Log: &Log{}},
	}
	if s.log == nil {
		s.log = logging.Discard()
	}

	eta0 := ev.Initial()
	if ev.Dim() == 0 {
		return s.noFreeParameters(m, eta0)
	}

	cur, err := ev.Evaluate(eta0, true)
	if err != nil {
		return nil, nil, err
	}
	s.record(0, cur, 0, 0)
	var (
		final  *Evaluation
		reason Reason
	)
	if !cur.Finite() {
		final, reason, err = cur, ReasonNonFinite, nlsErrorf(opSolve, ErrNonFiniteCost)
	} else if opts.Algorithm == LevenbergMarquardt {
		final, reason, err = s.levenbergMarquardt(ctx, cur)
	} else {
		final, reason, err = s.lineSearchLoop(ctx, cur)
	}
	s.finish(final, reason)
	if err != nil {
		if reason == ReasonNone {
			return nil, nil, err
		}
		return nil, s.res, err
	}

	u, err := estimateUncertainty(ev, final, data, opts)
	if err != nil {
		return nil, s.res, err
	}
	s.res.Covariance = u.full
	s.res.ThetaCov, s.res.X0Cov = u.thetaCov, u.x0Cov
	s.res.NoiseCov = u.noise
	s.res.InfoTheta, s.res.InfoX0 = u.infoTheta, u.infoX0

	cov := u.thetaCov
	if m.Kind() == model.KindDynamic {
		cov = u.full
	}

	return m.WithEstimate(s.res.Theta, s.res.X0, cov), s.res, nil
}

// noFreeParameters handles empty masks: one cost evaluation, no iteration.
func (s *solver) noFreeParameters(m model.Model, eta []float64) (model.Model, *Result, error) {
	e, err := s.ev.Evaluate(eta, false)
	if err != nil {
		return nil, nil, err
	}
	s.record(0, e, 0, 0)
	s.finish(e, ReasonNoFreeParameters)

	return m.WithEstimate(s.res.Theta, s.res.X0, m.Covariance()), s.res, nil
}

func (s *solver) record(iter int, e *Evaluation, step, mu float64) {
	s.res.Log.append(Iteration{
		Index:    iter,
		Eta:      e.Eta,
		Cost:     e.Cost,
		Grad:     e.Grad,
		Step:     step,
		Damping:  mu,
		Snapshot: s.ev.Snapshot(e.Eta),
	})
}

func (s *solver) finish(e *Evaluation, reason Reason) {
	s.res.Reason = reason
	s.res.Eta = append([]float64(nil), e.Eta...)
	s.res.Theta, s.res.X0 = s.ev.Split(e.Eta)
	s.res.Cost = e.Cost
	s.res.Residuals = append([]float64(nil), e.Residual...)
	s.log.Info("nls finished",
		"algorithm", s.opts.Algorithm,
		"reason", reason,
		"iterations", s.res.Iterations,
		"cost", e.Cost,
	)
}

// lineSearchLoop runs Gauss-Newton, robust Gauss-Newton or steepest descent.
// It returns the lowest-cost accepted evaluation.
func (s *solver) lineSearchLoop(ctx context.Context, cur *Evaluation) (*Evaluation, Reason, error) {
	n := s.ev.Dim()
	for iter := 1; ; iter++ {
		if err := ctx.Err(); err != nil {
			return cur, ReasonCanceled, nlsErrorf(opSolve, err)
		}

		p, rank, err := Direction(s.opts.Algorithm, cur, s.opts.SVTol)
		if err != nil {
			return cur, ReasonNone, err
		}
		if rank < n {
			s.res.RankDeficientSteps++
		}
		if rank == 0 {
			s.log.Warn("zero search direction", "iter", iter, "algorithm", s.opts.Algorithm, "svtol", s.opts.SVTol)
			if s.opts.StallPolicy == StallTerminate {
				s.res.Iterations = iter
				return cur, ReasonStalled, nil
			}
		}

		ls, err := lineSearch(s.ev, cur, p, s.opts.MaxHalf)
		if err != nil {
			return cur, ReasonNone, err
		}
		s.res.Iterations = iter
		if !ls.eval.Finite() {
			return cur, ReasonNonFinite, nlsErrorf(opSolve, ErrNonFiniteCost)
		}
		next, err := s.ev.Evaluate(ls.eval.Eta, true)
		if err != nil {
			return cur, ReasonNone, err
		}
		s.record(iter, next, ls.alpha, 0)
		s.log.Debug("iteration",
			"iter", iter,
			"cost", next.Cost,
			"alpha", ls.alpha,
			"contractions", ls.contractions,
			"armijo", ls.armijo,
			"rank", rank,
			"gradnorm", floats.Norm(next.Grad, 2),
		)

		reason := monitor(iter, s.opts.MaxIter, cur.Cost, next.Cost, next.Grad, s.opts.CTol, s.opts.GTol)
		if next.Cost <= cur.Cost {
			cur = next
		}
		if reason != ReasonNone {
			return cur, reason, nil
		}
	}
}

// levenbergMarquardt runs the damped iteration. Rejected trials count as
// iterations but are not recorded in the log.
func (s *solver) levenbergMarquardt(ctx context.Context, cur *Evaluation) (*Evaluation, Reason, error) {
	d := newDamping(s.opts.Tau, cur.Jacobian)
	trialEta := make([]float64, len(cur.Eta))
	for iter := 0; ; {
		if err := ctx.Err(); err != nil {
			return cur, ReasonCanceled, nlsErrorf(opSolve, err)
		}
		if iter >= s.opts.MaxIter {
			return cur, ReasonMaxIter, nil
		}
		if floats.Norm(cur.Grad, 2) <= s.opts.GTol {
			return cur, ReasonGradient, nil
		}

		p, err := lmStep(cur, d.mu, s.opts.SVTol)
		if err != nil {
			return cur, ReasonNone, err
		}
		step := floats.Norm(p, 2)
		if step <= s.opts.CTol*(floats.Norm(cur.Eta, 2)+s.opts.CTol) {
			return cur, ReasonSmallStep, nil
		}

		iter++
		s.res.Iterations = iter
		floats.AddTo(trialEta, cur.Eta, p)
		trial, err := s.ev.Evaluate(trialEta, false)
		if err != nil {
			return cur, ReasonNone, err
		}
		rho := gainRatio(cur, trial, p, d.mu)
		if rho <= 0 {
			d.reject()
			s.log.Debug("step rejected", "iter", iter, "mu", d.mu, "rho", rho)
			continue
		}

		next, err := s.ev.Evaluate(trialEta, true)
		if err != nil {
			return cur, ReasonNone, err
		}
		d.accept(rho)
		cur = next
		s.record(iter, cur, step, d.mu)
		s.log.Debug("iteration",
			"iter", iter,
			"cost", cur.Cost,
			"step", step,
			"mu", d.mu,
			"rho", rho,
			"gradnorm", floats.Norm(cur.Grad, 2),
		)
	}
}
