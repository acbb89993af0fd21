// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/InaEriksson/TSRT14/config"
	"github.com/InaEriksson/TSRT14/nls"
)

func newFitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Fit a built-in model to one or more CSV datasets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := newViper(cmd.Flags())
			if err != nil {
				return err
			}
			return runFit(cmd, v)
		},
	}
	f := cmd.Flags()
	f.StringP("model", "m", "", "built-in model name (see `nlsfit models`)")
	f.StringSliceP("data", "d", nil, "CSV file with columns t,y (repeatable)")
	f.Float64Slice("theta", nil, "initial parameter values")
	f.IntSlice("fix", nil, "indices of parameters to keep fixed")
	f.StringP("config", "c", "", "YAML options file")
	f.StringP("algorithm", "a", nls.GaussNewton.String(), "gauss-newton | robust-gauss-newton | levenberg-marquardt | steepest-descent")
	f.Int("max-iter", nls.DefaultMaxIter, "maximum number of iterations")
	f.Float64("gtol", nls.DefaultGTol, "gradient-norm tolerance")
	f.Float64("ctol", nls.DefaultCTol, "relative cost-decrease tolerance")
	f.Bool("estimate-noise", false, "estimate the noise variance from the residuals")
	f.Bool("numeric-gradient", false, "use finite differences instead of the analytic Jacobian")
	f.Bool("trace", false, "print the cost trajectory")

	return cmd
}

// fitOptions resolves solver options: defaults, then the YAML file, then
// explicitly set flags or NLSFIT_* variables.
func fitOptions(v *viper.Viper) (nls.Options, error) {
	opts := nls.DefaultOptions()
	if path := v.GetString("config"); path != "" {
		var err error
		if opts, err = config.Load(path); err != nil {
			return nls.Options{}, err
		}
	}
	if v.IsSet("algorithm") {
		a, err := nls.ParseAlgorithm(v.GetString("algorithm"))
		if err != nil {
			return nls.Options{}, err
		}
		opts.Algorithm = a
	}
	if v.IsSet("max-iter") {
		opts.MaxIter = v.GetInt("max-iter")
	}
	if v.IsSet("gtol") {
		opts.GTol = v.GetFloat64("gtol")
	}
	if v.IsSet("ctol") {
		opts.CTol = v.GetFloat64("ctol")
	}
	if v.IsSet("estimate-noise") {
		opts.EstimateNoise = v.GetBool("estimate-noise")
	}
	if v.IsSet("numeric-gradient") {
		opts.NumericGradient = v.GetBool("numeric-gradient")
	}

	return opts, opts.Validate()
}

// listFields splits a list value from v. Flags arrive as pflag's "[a,b]"
// text or a typed slice, environment variables as plain "a,b".
func listFields(val any) []string {
	s := strings.Trim(fmt.Sprint(val), "[]")
	return strings.FieldsFunc(s, func(r rune) bool { return r == ',' || unicode.IsSpace(r) })
}

// floatList reads --key or NLSFIT_KEY as a list of floats; unset gives nil.
func floatList(v *viper.Viper, key string) ([]float64, error) {
	if !v.IsSet(key) {
		return nil, nil
	}
	var out []float64
	for _, f := range listFields(v.Get(key)) {
		x, err := cast.ToFloat64E(f)
		if err != nil {
			return nil, fmt.Errorf("--%s: %w", key, err)
		}
		out = append(out, x)
	}

	return out, nil
}

func intList(v *viper.Viper, key string) ([]int, error) {
	if !v.IsSet(key) {
		return nil, nil
	}
	var out []int
	for _, f := range listFields(v.Get(key)) {
		x, err := cast.ToIntE(f)
		if err != nil {
			return nil, fmt.Errorf("--%s: %w", key, err)
		}
		out = append(out, x)
	}

	return out, nil
}

// fixMask turns fixed indices into a θ mask. No indices gives nil (all free).
func fixMask(fix []int, nth int) ([]bool, error) {
	if len(fix) == 0 {
		return nil, nil
	}
	mask := make([]bool, nth)
	for i := range mask {
		mask[i] = true
	}
	for _, i := range fix {
		if i < 0 || i >= nth {
			return nil, fmt.Errorf("fixed index %d out of range [0,%d)", i, nth)
		}
		mask[i] = false
	}

	return mask, nil
}

func runFit(cmd *cobra.Command, v *viper.Viper) error {
	name := v.GetString("model")
	if name == "" {
		return errors.New("--model is required")
	}
	paths := v.GetStringSlice("data")
	if len(paths) == 0 {
		return errors.New("at least one --data file is required")
	}

	opts, err := fitOptions(v)
	if err != nil {
		return err
	}
	if opts.Logger, err = loggerFor(cmd, v); err != nil {
		return err
	}

	th0, err := floatList(v, "theta")
	if err != nil {
		return err
	}
	m, err := newBuiltin(name, th0)
	if err != nil {
		return err
	}
	fix, err := intList(v, "fix")
	if err != nil {
		return err
	}
	if len(fix) > 0 {
		if opts.ThetaMask, err = fixMask(fix, m.NumParams()); err != nil {
			return err
		}
	}

	data, err := loadSignals(paths)
	if err != nil {
		return err
	}

	fitted, res, err := nls.Solve(cmd.Context(), m, data, opts)
	if err != nil {
		return err
	}

	return writeReport(cmd.OutOrStdout(), m.ThNames, fitted, res, v.GetBool("trace"))
}
