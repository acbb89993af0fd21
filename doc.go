// SPDX-License-Identifier: MIT

// Package tsrt14 is a toolbox for estimating the parameters of signal and
// system models by nonlinear least squares.
//
// 🚀 What is in the box?
//
//   - Models: residual functions, static curves y = h(t, θ) and nonlinear
//     state-space systems simulated in discrete or continuous time
//   - Solvers: Gauss-Newton, truncated-SVD Gauss-Newton, Levenberg-Marquardt
//     and steepest descent, with Armijo backtracking
//   - Masks: estimate any subset of the parameters and initial states
//   - Uncertainty: noise covariance, Fisher information and parameter
//     covariance at the solution
//   - A CLI for fitting built-in curves to CSV data
//
// Under the hood, everything is organized in these packages:
//
//	model/      — Signal, Objective, Static and NL (Simulator) model types
//	nls/        — Solve, options, evaluators, direction solvers, line search,
//	              Levenberg-Marquardt damping, termination, uncertainty
//	linalg/     — truncated SVD solve, pseudo-inverse, covariance helpers
//	config/     — YAML option files
//	logging/    — slog loggers (tint handler)
//	cmd/nlsfit/ — command-line front end
//	examples/   — a runnable tank-calibration scenario
//
// Quick example:
//
//	m := &model.Static{NY: 1, H: h, Th: []float64{1, 1}}
//	fitted, res, err := nls.Solve(ctx, m, []*model.Signal{sig}, nls.DefaultOptions())
//
// fits θ to the samples in sig and returns the fitted copy of m together
// with its covariance and the iteration log in res.
package tsrt14
