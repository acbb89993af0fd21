// SPDX-License-Identifier: MIT

package nls_test

import (
	"context"
	"testing"

	"github.com/InaEriksson/TSRT14/model"
	"github.com/InaEriksson/TSRT14/nls"
)

func BenchmarkSolve_ExpSat(b *testing.B) {
	data := []*model.Signal{expSatData([]float64{2, 0.5}, 0.02, 1)}
	for _, alg := range []nls.Algorithm{nls.GaussNewton, nls.RobustGaussNewton, nls.LevenbergMarquardt, nls.SteepestDescent} {
		b.Run(alg.String(), func(b *testing.B) {
			opts := nls.DefaultOptions()
			opts.Algorithm = alg
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, _, err := nls.Solve(context.Background(), expSat([]float64{1.5, 0.8}, true), data, opts); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkEvaluate_DynamicJacobian(b *testing.B) {
	opts := nls.DefaultOptions()
	opts.X0Mask = []bool{true}
	ev, err := nls.NewEvaluator(firstOrder([]float64{0.5, 0.2}, []float64{0}), []*model.Signal{firstOrderData([]float64{0.8, 0.5}, []float64{1})}, opts)
	if err != nil {
		b.Fatal(err)
	}
	eta := ev.Initial()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ev.Evaluate(eta, true); err != nil {
			b.Fatal(err)
		}
	}
}
