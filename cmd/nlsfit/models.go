// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/InaEriksson/TSRT14/model"
)

// builtin is a scalar curve y = f(t, θ) with its gradient in θ.
type builtin struct {
	desc  string
	names []string
	th0   []float64
	f     func(t float64, th []float64) float64
	grad  func(t float64, th []float64) []float64
}

var builtins = map[string]builtin{
	"expsat": {
		desc:  "θ0·(1 − exp(−θ1·t))",
		names: []string{"gain", "rate"},
		th0:   []float64{1, 1},
		f: func(t float64, th []float64) float64 {
			return th[0] * (1 - math.Exp(-th[1]*t))
		},
		grad: func(t float64, th []float64) []float64 {
			e := math.Exp(-th[1] * t)
			return []float64{1 - e, th[0] * t * e}
		},
	},
	"exp": {
		desc:  "θ0·exp(θ1·t)",
		names: []string{"scale", "rate"},
		th0:   []float64{1, -1},
		f: func(t float64, th []float64) float64 {
			return th[0] * math.Exp(th[1]*t)
		},
		grad: func(t float64, th []float64) []float64 {
			e := math.Exp(th[1] * t)
			return []float64{e, th[0] * t * e}
		},
	},
	"logistic": {
		desc:  "θ0 / (1 + exp(−θ1·(t − θ2)))",
		names: []string{"capacity", "rate", "midpoint"},
		th0:   []float64{1, 1, 0},
		f: func(t float64, th []float64) float64 {
			return th[0] / (1 + math.Exp(-th[1]*(t-th[2])))
		},
		grad: func(t float64, th []float64) []float64 {
			e := math.Exp(-th[1] * (t - th[2]))
			d := 1 + e
			return []float64{
				1 / d,
				th[0] * (t - th[2]) * e / (d * d),
				-th[0] * th[1] * e / (d * d),
			}
		},
	},
	"line": {
		desc:  "θ0 + θ1·t",
		names: []string{"intercept", "slope"},
		th0:   []float64{0, 1},
		f: func(t float64, th []float64) float64 {
			return th[0] + th[1]*t
		},
		grad: func(t float64, _ []float64) []float64 {
			return []float64{1, t}
		},
	},
}

// builtinNames returns the registry keys in order.
func builtinNames() []string {
	names := make([]string, 0, len(builtins))
	for k := range builtins {
		names = append(names, k)
	}
	sort.Strings(names)

	return names
}

// newBuiltin returns the named model started at th (the default start when
// th is empty).
func newBuiltin(name string, th []float64) (*model.Static, error) {
	b, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("unknown model %q (available: %v)", name, builtinNames())
	}
	if len(th) == 0 {
		th = b.th0
	}
	if len(th) != len(b.th0) {
		return nil, fmt.Errorf("model %q has %d parameters, got %d initial values: %w", name, len(b.th0), len(th), model.ErrParamLength)
	}

	return &model.Static{
		Name: name,
		NY:   1,
		H: func(t float64, th []float64) ([]float64, error) {
			return []float64{b.f(t, th)}, nil
		},
		Jac: func(t float64, th []float64) (*mat.Dense, error) {
			return mat.NewDense(1, len(th), b.grad(t, th)), nil
		},
		Th:      append([]float64(nil), th...),
		ThNames: append([]string(nil), b.names...),
	}, nil
}
