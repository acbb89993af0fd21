// SPDX-License-Identifier: MIT

// Package model defines the data and model shapes consumed by the nonlinear
// least-squares engine in package nls.
//
// Three model kinds share one interface, Model, and are told apart by Kind:
//
//   - Objective: a vector-valued residual function r(θ), minimised directly.
//   - Static: an output function y = h(t, θ) fitted to a Signal.
//   - Simulator: a dynamical model with parameters θ and initial state x0
//     whose output trajectory is produced by Simulate. NL is a
//     nonlinear state-space implementation (discrete time, or continuous
//     time integrated with fixed-step RK4 between samples).
//
// Static and Objective may carry an analytic Jacobian; when they do not, nls
// falls back to central differences.
//
// Signal stores an observed time series: sample times, outputs, optional
// inputs and an optional measurement-noise covariance.
//
//	sig, _ := model.NewSignal([]float64{0, 1, 2, 3}, mat.NewDense(4, 1, y))
//	m := &model.Static{
//		NY: 1,
//		H:  func(t float64, th []float64) ([]float64, error) { return []float64{th[0] * t}, nil },
//		Th: []float64{1},
//	}
//
// Models are values owned by the caller; every method that changes
// parameters (WithEstimate, WithParams) returns a copy.
package model
