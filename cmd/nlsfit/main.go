// SPDX-License-Identifier: MIT

// Command nlsfit fits built-in curve models to CSV data by nonlinear least
// squares.
//
//	nlsfit fit --model expsat --data samples.csv --theta 1,1
//	nlsfit fit --model logistic --data a.csv --data b.csv --algorithm lm --config opts.yaml
//	nlsfit models
//
// Flags may also be given as environment variables with the NLSFIT_ prefix
// (NLSFIT_ALGORITHM=lm, NLSFIT_MAX_ITER=200).
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
