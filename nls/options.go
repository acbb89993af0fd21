// SPDX-License-Identifier: MIT

package nls

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
)

// Algorithm selects how search directions and steps are produced.
type Algorithm int

const (
	// GaussNewton solves the normal equations (JᵀJ)p = −Jᵀε.
	GaussNewton Algorithm = iota
	// RobustGaussNewton solves J·p ≈ −ε by truncated SVD.
	RobustGaussNewton
	// LevenbergMarquardt uses adaptive damping instead of a line search.
	LevenbergMarquardt
	// SteepestDescent uses p = −Jᵀε.
	SteepestDescent
)

var algorithmNames = map[Algorithm]string{
	GaussNewton:        "gauss-newton",
	RobustGaussNewton:  "robust-gauss-newton",
	LevenbergMarquardt: "levenberg-marquardt",
	SteepestDescent:    "steepest-descent",
}

var algorithmAliases = map[string]Algorithm{
	"gauss-newton":        GaussNewton,
	"gn":                  GaussNewton,
	"robust-gauss-newton": RobustGaussNewton,
	"rgn":                 RobustGaussNewton,
	"levenberg-marquardt": LevenbergMarquardt,
	"lm":                  LevenbergMarquardt,
	"steepest-descent":    SteepestDescent,
	"sd":                  SteepestDescent,
}

// String implements fmt.Stringer.
func (a Algorithm) String() string {
	if s, ok := algorithmNames[a]; ok {
		return s
	}
	return fmt.Sprintf("Algorithm(%d)", int(a))
}

// ParseAlgorithm accepts the long names returned by String and the short
// aliases gn, rgn, lm and sd (case-insensitive).
func ParseAlgorithm(s string) (Algorithm, error) {
	if a, ok := algorithmAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return a, nil
	}
	return 0, fmt.Errorf("%w: unknown algorithm %q", ErrBadOption, s)
}

// StallPolicy decides what happens when the direction solver finds no usable
// singular value and returns the zero direction.
type StallPolicy int

const (
	// StallCount records the iteration with the iterate unchanged and lets
	// the ordinary termination tests end the run.
	StallCount StallPolicy = iota
	// StallTerminate stops immediately with ReasonStalled.
	StallTerminate
)

// String implements fmt.Stringer.
func (p StallPolicy) String() string {
	switch p {
	case StallCount:
		return "count"
	case StallTerminate:
		return "terminate"
	default:
		return fmt.Sprintf("StallPolicy(%d)", int(p))
	}
}

// ParseStallPolicy accepts "count" and "terminate".
func ParseStallPolicy(s string) (StallPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "count", "":
		return StallCount, nil
	case "terminate":
		return StallTerminate, nil
	}
	return 0, fmt.Errorf("%w: unknown stall policy %q", ErrBadOption, s)
}

// Defaults used by DefaultOptions.
const (
	DefaultMaxIter = 50
	DefaultMaxHalf = 10
	DefaultGTol    = 1e-6
	DefaultCTol    = 1e-8
	DefaultSVTol   = 1e-10
	DefaultTau     = 1e-3
	// DefaultPSDScale multiplies the largest covariance eigenvalue before it
	// is added to the diagonal.
	DefaultPSDScale = 1e-10
)

// DefaultNoiseFloor is added to the diagonal of a residual-estimated noise
// covariance before it is inverted.
var DefaultNoiseFloor = math.Nextafter(1, 2) - 1

// Armijo line-search constants.
const (
	armijoC1  = 1e-4
	armijoRho = 0.5
)

// Options configures Solve.
//
// Start from DefaultOptions: Solve uses every field as given. A zero
// MaxHalf tries only the full step, zero GTol or CTol disables that test,
// zero SVTol keeps every nonzero singular value, and zero NoiseFloor or
// PSDScale disables the corresponding correction. MaxIter and Tau must be
// positive.
type Options struct {
	// Algorithm selects the iteration scheme.
	Algorithm Algorithm
	// ThetaMask marks free parameters; nil frees all of θ.
	ThetaMask []bool
	// X0Mask marks free initial-state entries; nil fixes all of x0.
	X0Mask []bool
	// InitialStates optionally fixes the initial state of dataset i to
	// InitialStates[i] (nil entries use the model's x0).
	InitialStates [][]float64
	// MaxIter bounds the number of outer iterations.
	MaxIter int
	// MaxHalf bounds the number of line-search contractions.
	MaxHalf int
	// GTol is the gradient-norm tolerance.
	GTol float64
	// CTol is the relative cost-decrease tolerance (and LM step tolerance).
	CTol float64
	// SVTol is the singular value retention threshold.
	SVTol float64
	// Tau scales the initial Levenberg-Marquardt damping.
	Tau float64
	// EstimateNoise estimates the noise covariance from the final residuals.
	EstimateNoise bool
	// NumericGradient forces finite differences even when an analytic
	// Jacobian is available.
	NumericGradient bool
	// NoiseFloor is added to an estimated noise covariance diagonal.
	NoiseFloor float64
	// PSDScale sets the positive-semidefinite correction of the covariance.
	PSDScale float64
	// StallPolicy handles zero search directions.
	StallPolicy StallPolicy
	// Logger receives per-iteration diagnostics; nil discards them.
	Logger *slog.Logger
}

// DefaultOptions returns Options with every default filled in.
func DefaultOptions() Options {
	return Options{
		Algorithm:  GaussNewton,
		MaxIter:    DefaultMaxIter,
		MaxHalf:    DefaultMaxHalf,
		GTol:       DefaultGTol,
		CTol:       DefaultCTol,
		SVTol:      DefaultSVTol,
		Tau:        DefaultTau,
		NoiseFloor: DefaultNoiseFloor,
		PSDScale:   DefaultPSDScale,
	}
}

// Validate reports the first out-of-range field, wrapped around ErrBadOption.
func (o Options) Validate() error {
	if _, ok := algorithmNames[o.Algorithm]; !ok {
		return nlsErrorf(opOptions, fmt.Errorf("%w: algorithm %d", ErrBadOption, int(o.Algorithm)))
	}
	if o.StallPolicy != StallCount && o.StallPolicy != StallTerminate {
		return nlsErrorf(opOptions, fmt.Errorf("%w: stall policy %d", ErrBadOption, int(o.StallPolicy)))
	}
	if o.MaxIter < 1 {
		return nlsErrorf(opOptions, fmt.Errorf("%w: MaxIter=%d", ErrBadOption, o.MaxIter))
	}
	if o.MaxHalf < 0 {
		return nlsErrorf(opOptions, fmt.Errorf("%w: MaxHalf=%d", ErrBadOption, o.MaxHalf))
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"GTol", o.GTol},
		{"CTol", o.CTol},
		{"SVTol", o.SVTol},
		{"Tau", o.Tau},
		{"NoiseFloor", o.NoiseFloor},
		{"PSDScale", o.PSDScale},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v < 0 {
			return nlsErrorf(opOptions, fmt.Errorf("%w: %s=%v", ErrBadOption, f.name, f.v))
		}
	}
	if o.Tau == 0 {
		return nlsErrorf(opOptions, fmt.Errorf("%w: Tau=0", ErrBadOption))
	}

	return nil
}
