// SPDX-License-Identifier: MIT

// Package config reads solver options from YAML.
//
// A file only needs the keys it changes; everything else keeps the value
// from nls.DefaultOptions:
//
//	algorithm: levenberg-marquardt
//	max_iter: 100
//	gtol: 1e-8
//	theta_mask: [true, false, true]
//	estimate_noise: true
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/InaEriksson/TSRT14/nls"
	"gopkg.in/yaml.v3"
)

var (
	// ErrRead is returned when the options file cannot be read.
	ErrRead = errors.New("config: cannot read file")
	// ErrDecode is returned for malformed YAML or unknown keys.
	ErrDecode = errors.New("config: cannot decode options")
)

// File is the on-disk shape of nls.Options. Pointer fields distinguish
// "absent" from an explicit zero.
type File struct {
	Algorithm       string      `yaml:"algorithm,omitempty"`
	ThetaMask       []bool      `yaml:"theta_mask,omitempty"`
	X0Mask          []bool      `yaml:"x0_mask,omitempty"`
	InitialStates   [][]float64 `yaml:"initial_states,omitempty"`
	MaxIter         *int        `yaml:"max_iter,omitempty"`
	MaxHalf         *int        `yaml:"max_half,omitempty"`
	GTol            *float64    `yaml:"gtol,omitempty"`
	CTol            *float64    `yaml:"ctol,omitempty"`
	SVTol           *float64    `yaml:"svtol,omitempty"`
	Tau             *float64    `yaml:"tau,omitempty"`
	EstimateNoise   *bool       `yaml:"estimate_noise,omitempty"`
	NumericGradient *bool       `yaml:"numeric_gradient,omitempty"`
	NoiseFloor      *float64    `yaml:"noise_floor,omitempty"`
	PSDScale        *float64    `yaml:"psd_scale,omitempty"`
	StallPolicy     string      `yaml:"stall_policy,omitempty"`
}

// Load reads path and returns the validated options.
func Load(path string) (nls.Options, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nls.Options{}, fmt.Errorf("%w: %v", ErrRead, err)
	}

	return Parse(b)
}

// Parse decodes YAML over nls.DefaultOptions and validates the result.
// Unknown keys are rejected. An empty document yields the defaults.
func Parse(b []byte) (nls.Options, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nls.Options{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	return f.Apply(nls.DefaultOptions())
}

// Apply overlays the fields present in f onto base and validates.
func (f File) Apply(base nls.Options) (nls.Options, error) {
	o := base
	if f.Algorithm != "" {
		a, err := nls.ParseAlgorithm(f.Algorithm)
		if err != nil {
			return nls.Options{}, err
		}
		o.Algorithm = a
	}
	if f.StallPolicy != "" {
		p, err := nls.ParseStallPolicy(f.StallPolicy)
		if err != nil {
			return nls.Options{}, err
		}
		o.StallPolicy = p
	}
	if f.ThetaMask != nil {
		o.ThetaMask = f.ThetaMask
	}
	if f.X0Mask != nil {
		o.X0Mask = f.X0Mask
	}
	if f.InitialStates != nil {
		o.InitialStates = f.InitialStates
	}
	setInt(&o.MaxIter, f.MaxIter)
	setInt(&o.MaxHalf, f.MaxHalf)
	setFloat(&o.GTol, f.GTol)
	setFloat(&o.CTol, f.CTol)
	setFloat(&o.SVTol, f.SVTol)
	setFloat(&o.Tau, f.Tau)
	setFloat(&o.NoiseFloor, f.NoiseFloor)
	setFloat(&o.PSDScale, f.PSDScale)
	if f.EstimateNoise != nil {
		o.EstimateNoise = *f.EstimateNoise
	}
	if f.NumericGradient != nil {
		o.NumericGradient = *f.NumericGradient
	}

	if err := o.Validate(); err != nil {
		return nls.Options{}, err
	}

	return o, nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
