// SPDX-License-Identifier: MIT

// Package linalg collects the dense linear-algebra kernels used by the
// nonlinear least-squares engine.
//
// The package provides:
//
//   - TruncatedSolve: least-squares solve of A·x ≈ b through a truncated
//     singular value decomposition, discarding components whose singular
//     value does not exceed a tolerance.
//   - PseudoInverse: Moore–Penrose inverse with the same truncation rule.
//   - Symmetrize and RegularizePSD: post-processing of covariance estimates
//     so they are exactly symmetric and positive-semidefinite.
//   - SampleCovariance and BlockOuter: covariance of residual blocks.
//
// All kernels are thin wrappers over gonum (mat.SVD, mat.EigenSym, stat).
// Inputs are never mutated; every function allocates its result.
//
// Errors are package sentinels (see errors.go) wrapped with an operation
// tag, so callers match them with errors.Is:
//
//	x, rank, err := linalg.TruncatedSolve(J, r, 1e-10)
//	if errors.Is(err, linalg.ErrDimensionMismatch) {
//		// caller bug: len(r) != rows(J)
//	}
package linalg
