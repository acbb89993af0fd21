// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"

	"github.com/InaEriksson/TSRT14/model"
)

func TestReadSignal(t *testing.T) {
	src := "t,y\n# comment\n0,0.5\n1, 1.5\n\n2,2.5\n"
	sig, err := readSignal(strings.NewReader(src), "mem")
	require.NoError(t, err)
	assert.Equal(t, "mem", sig.Name)
	assert.Equal(t, []float64{0, 1, 2}, sig.T)
	assert.Equal(t, 1, sig.NumOutputs())
	assert.Equal(t, []float64{1.5}, sig.Output(1))

	sig, err = readSignal(strings.NewReader("0,1,2\n1,3,4\n"), "two")
	require.NoError(t, err)
	assert.Equal(t, 2, sig.NumOutputs())
}

func TestReadSignalErrors(t *testing.T) {
	tests := map[string]string{
		"empty":        "",
		"header only":  "t,y\n",
		"one column":   "0\n1\n",
		"ragged":       "0,1\n1,2,3\n",
		"not a number": "0,1\n1,x\n",
		"nan":          "0,1\n1,NaN\n",
	}
	for name, src := range tests {
		_, err := readSignal(strings.NewReader(src), name)
		assert.Error(t, err, name)
	}
	_, err := readSignal(strings.NewReader(""), "empty")
	assert.ErrorIs(t, err, model.ErrBadSignal)
}

func TestBuiltinGradients(t *testing.T) {
	for _, name := range builtinNames() {
		b := builtins[name]
		th := make([]float64, len(b.th0))
		for i := range th {
			th[i] = 0.7 + 0.3*float64(i)
		}
		for _, tt := range []float64{0, 0.5, 2} {
			want := make([]float64, len(th))
			fd.Gradient(want, func(x []float64) float64 { return b.f(tt, x) }, th, &fd.Settings{Formula: fd.Central})
			assert.InDeltaSlice(t, want, b.grad(tt, th), 1e-6, "%s at t=%v", name, tt)
		}
	}
}

func TestNewBuiltin(t *testing.T) {
	m, err := newBuiltin("logistic", nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 0}, m.Th)
	assert.Equal(t, []string{"capacity", "rate", "midpoint"}, m.ThNames)

	_, err = newBuiltin("line", []float64{1})
	assert.ErrorIs(t, err, model.ErrParamLength)

	_, err = newBuiltin("poly", nil)
	assert.Error(t, err)
}

func TestFixMask(t *testing.T) {
	mask, err := fixMask([]int{0}, 3)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true, true}, mask)

	mask, err = fixMask(nil, 3)
	require.NoError(t, err)
	assert.Nil(t, mask)

	_, err = fixMask([]int{3}, 3)
	assert.Error(t, err)
}

func TestListValues(t *testing.T) {
	v := viper.New()
	th, err := floatList(v, "theta")
	require.NoError(t, err)
	assert.Nil(t, th)

	v.Set("theta", "[1.500000,0.800000]")
	th, err = floatList(v, "theta")
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 0.8}, th)

	v.Set("theta", "2, 1")
	th, err = floatList(v, "theta")
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 1}, th)

	v.Set("fix", []int{0, 2})
	fix, err := intList(v, "fix")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, fix)

	v.Set("theta", "1,x")
	_, err = floatList(v, "theta")
	assert.Error(t, err)
}

func writeExpSat(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("t,y\n")
	for k := 0; k <= 30; k++ {
		tt := 0.1 * float64(k)
		fmt.Fprintf(&buf, "%g,%.17g\n", tt, 2*(1-math.Exp(-0.5*tt)))
	}
	path := filepath.Join(t.TempDir(), "expsat.csv")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestFitCommand(t *testing.T) {
	path := writeExpSat(t)

	out, err := run(t, "fit", "--model", "expsat", "--data", path, "--theta", "1.5,0.8", "--trace", "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "gain")
	assert.Contains(t, out, "rate")
	assert.Contains(t, out, "algorithm:  gauss-newton")
	assert.Contains(t, out, "iter")

	out, err = run(t, "fit", "-m", "expsat", "-d", path, "-a", "lm", "--fix", "0", "--theta", "2,1")
	require.NoError(t, err)
	assert.Contains(t, out, "levenberg-marquardt")
}

func TestFitCommandConfigAndEnv(t *testing.T) {
	path := writeExpSat(t)
	cfg := filepath.Join(t.TempDir(), "opts.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("algorithm: robust-gauss-newton\nmax_iter: 40\n"), 0o600))

	out, err := run(t, "fit", "-m", "expsat", "-d", path, "-c", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "robust-gauss-newton")

	t.Setenv("NLSFIT_ALGORITHM", "sd")
	out, err = run(t, "fit", "-m", "expsat", "-d", path, "-c", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "steepest-descent", "environment overrides the file")
}

func TestFitCommandListsFromEnv(t *testing.T) {
	path := writeExpSat(t)
	t.Setenv("NLSFIT_THETA", "2,1")
	t.Setenv("NLSFIT_FIX", "0")

	out, err := run(t, "fit", "-m", "expsat", "-d", path)
	require.NoError(t, err)
	assert.Regexp(t, `gain\s+2\s+-`, out, "gain is fixed at the environment start value")

	// flags win over the environment
	out, err = run(t, "fit", "-m", "expsat", "-d", path, "--theta", "1.5,0.8", "--fix", "1")
	require.NoError(t, err)
	assert.Regexp(t, `rate\s+0\.8\s+-`, out)
}

func TestFitCommandErrors(t *testing.T) {
	path := writeExpSat(t)

	_, err := run(t, "fit", "-d", path)
	assert.Error(t, err)
	_, err = run(t, "fit", "-m", "expsat")
	assert.Error(t, err)
	_, err = run(t, "fit", "-m", "expsat", "-d", path, "-a", "newton")
	assert.Error(t, err)
	_, err = run(t, "fit", "-m", "expsat", "-d", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestModelsCommand(t *testing.T) {
	out, err := run(t, "models")
	require.NoError(t, err)
	for _, name := range builtinNames() {
		assert.Contains(t, out, name)
	}
}
