// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"gonum.org/v1/gonum/mat"

	"github.com/InaEriksson/TSRT14/linalg"
	"github.com/InaEriksson/TSRT14/model"
	"github.com/InaEriksson/TSRT14/nls"
)

// writeReport prints the estimates with standard deviations, the run
// summary and, when trace is set, the cost trajectory.
func writeReport(w io.Writer, names []string, fitted model.Model, res *nls.Result, trace bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "parameter\testimate\tstd")
	sd := model.StdDev(fitted.Covariance())
	for i, th := range fitted.Params() {
		name := fmt.Sprintf("θ%d", i)
		if i < len(names) && names[i] != "" {
			name = names[i]
		}
		s := "-"
		if i < len(sd) && sd[i] > 0 {
			s = fmt.Sprintf("%.4g", sd[i])
		}
		fmt.Fprintf(tw, "%s\t%.6g\t%s\n", name, th, s)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nalgorithm:  %s\n", res.Algorithm)
	fmt.Fprintf(w, "reason:     %s\n", res.Reason)
	fmt.Fprintf(w, "iterations: %d\n", res.Iterations)
	fmt.Fprintf(w, "cost:       %.6g\n", res.Cost)
	if res.RankDeficientSteps > 0 {
		fmt.Fprintf(w, "rank-deficient steps: %d\n", res.RankDeficientSteps)
	}
	if sdev, ok := residualStdDev(res); ok {
		fmt.Fprintf(w, "residual std: %.4g\n", sdev)
	}

	if trace {
		fmt.Fprintln(w)
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "iter\tcost\tstep")
		for _, it := range res.Log.Iterations() {
			fmt.Fprintf(tw, "%d\t%.6g\t%.3g\n", it.Index, it.Cost, it.Step)
		}
		return tw.Flush()
	}

	return nil
}

// residualStdDev is the sample standard deviation of the final residuals
// (single-output models).
func residualStdDev(res *nls.Result) (float64, bool) {
	r := res.Residuals
	if len(r) < 2 {
		return 0, false
	}
	cov, err := linalg.SampleCovariance(mat.NewDense(len(r), 1, r))
	if err != nil {
		return 0, false
	}

	return math.Sqrt(cov.At(0, 0)), true
}
