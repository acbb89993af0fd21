// SPDX-License-Identifier: MIT

package nls

import "github.com/InaEriksson/TSRT14/model"

// Iteration records one accepted iterate.
type Iteration struct {
	// Index is 0 for the starting point and k for the k-th outer iteration.
	Index int
	Eta   []float64
	Cost  float64
	Grad  []float64
	// Step is the accepted line-search α, or ‖p‖₂ for Levenberg-Marquardt.
	Step float64
	// Damping is μ after the step (Levenberg-Marquardt only).
	Damping float64
	// Snapshot is the parameterised model for simulated models, else nil.
	Snapshot model.Model
}

// Log is the ordered iteration history of a run. Entry 0 is the start.
type Log struct {
	iters []Iteration
}

func (l *Log) append(it Iteration) {
	it.Eta = append([]float64(nil), it.Eta...)
	it.Grad = append([]float64(nil), it.Grad...)
	l.iters = append(l.iters, it)
}

// Len returns the number of recorded entries.
func (l *Log) Len() int { return len(l.iters) }

// At returns entry i.
func (l *Log) At(i int) Iteration { return l.iters[i] }

// Iterations returns a copy of all entries.
func (l *Log) Iterations() []Iteration {
	return append([]Iteration(nil), l.iters...)
}

// Costs returns the cost trajectory.
func (l *Log) Costs() []float64 {
	out := make([]float64, len(l.iters))
	for i, it := range l.iters {
		out[i] = it.Cost
	}

	return out
}

// Steps returns the step-length trajectory.
func (l *Log) Steps() []float64 {
	out := make([]float64, len(l.iters))
	for i, it := range l.iters {
		out[i] = it.Step
	}

	return out
}

// Etas returns the iterate trajectory.
func (l *Log) Etas() [][]float64 {
	out := make([][]float64, len(l.iters))
	for i, it := range l.iters {
		out[i] = append([]float64(nil), it.Eta...)
	}

	return out
}

// Grads returns the gradient trajectory.
func (l *Log) Grads() [][]float64 {
	out := make([][]float64, len(l.iters))
	for i, it := range l.iters {
		out[i] = append([]float64(nil), it.Grad...)
	}

	return out
}
