// SPDX-License-Identifier: MIT

// Package nls estimates the parameters of a model by nonlinear least squares.
//
// The cost is V(η) = εᵀε, where ε stacks the residuals of every sample of
// every dataset and η holds the free entries of the parameter vector θ
// followed by the free entries of the initial state x0 (see Mask).
//
// Algorithms:
//
//   - GaussNewton: (JᵀJ)p = −Jᵀε solved by Cholesky, Armijo backtracking.
//   - RobustGaussNewton: p from a truncated SVD of J, Armijo backtracking.
//   - SteepestDescent: p = −Jᵀε, Armijo backtracking.
//   - LevenbergMarquardt: adaptive damping μ with gain-ratio acceptance
//     (static models only).
//
// Every run ends with exactly one Reason. After termination the noise
// covariance, the Fisher information Σ J_kᵀ R̂⁺ J_k and its pseudo-inverse
// are computed at the solution and returned in Result, and the fitted model
// copy carries the covariance.
//
// Three model shapes are accepted (package model): Objective (residual
// function), Static (y = h(t, θ)) and any Simulator (state-space models
// simulated from x0). Jacobians are analytic when the model supplies one,
// otherwise central differences: a fixed step √ε for static models, a
// relative step for simulated ones.
//
// Usage:
//
//	opts := nls.DefaultOptions()
//	opts.Algorithm = nls.LevenbergMarquardt
//	fitted, res, err := nls.Solve(ctx, m, data, opts)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Reason, fitted.Params(), model.StdDev(res.ThetaCov))
//
// Logging goes through Options.Logger (per-iteration records at Debug,
// termination at Info, rank-deficient steps at Warn).
package nls
