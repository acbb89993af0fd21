// SPDX-License-Identifier: MIT

package nls

import "fmt"

// Mask maps between the full coordinates (θ, x0) and the reduced iterate η
// made of the free θ entries followed by the free x0 entries.
type Mask struct {
	nth, nx int
	thIdx   []int
	x0Idx   []int
}

// NewMask builds a Mask. A nil thMask frees every parameter; a nil x0Mask
// fixes every initial-state entry.
func NewMask(thMask []bool, nth int, x0Mask []bool, nx int) (Mask, error) {
	if thMask != nil && len(thMask) != nth {
		return Mask{}, fmt.Errorf("%w: theta mask has %d entries, model has %d parameters", ErrMaskLength, len(thMask), nth)
	}
	if x0Mask != nil && len(x0Mask) != nx {
		return Mask{}, fmt.Errorf("%w: x0 mask has %d entries, model has %d states", ErrMaskLength, len(x0Mask), nx)
	}
	m := Mask{nth: nth, nx: nx}
	for i := 0; i < nth; i++ {
		if thMask == nil || thMask[i] {
			m.thIdx = append(m.thIdx, i)
		}
	}
	for i := 0; i < nx; i++ {
		if x0Mask != nil && x0Mask[i] {
			m.x0Idx = append(m.x0Idx, i)
		}
	}

	return m, nil
}

// Dim returns the length of η.
func (m Mask) Dim() int { return len(m.thIdx) + len(m.x0Idx) }

// NumFreeParams returns the number of free θ entries (the θ-part of η).
func (m Mask) NumFreeParams() int { return len(m.thIdx) }

// NumFreeStates returns the number of free x0 entries.
func (m Mask) NumFreeStates() int { return len(m.x0Idx) }

// FullDim returns nth + nx.
func (m Mask) FullDim() int { return m.nth + m.nx }

// FreeIndex returns the positions of η's entries in the concatenated
// vector (θ, x0).
func (m Mask) FreeIndex() []int {
	out := make([]int, 0, m.Dim())
	out = append(out, m.thIdx...)
	for _, i := range m.x0Idx {
		out = append(out, m.nth+i)
	}

	return out
}

// Reduce extracts η from θ and x0.
func (m Mask) Reduce(th, x0 []float64) []float64 {
	eta := make([]float64, 0, m.Dim())
	for _, i := range m.thIdx {
		eta = append(eta, th[i])
	}
	for _, i := range m.x0Idx {
		eta = append(eta, x0[i])
	}

	return eta
}

// Scatter returns copies of th and x0 with the free entries replaced by η.
// The inputs are not modified.
func (m Mask) Scatter(eta, th, x0 []float64) ([]float64, []float64) {
	thOut := append([]float64(nil), th...)
	x0Out := append([]float64(nil), x0...)
	n1 := len(m.thIdx)
	for k, i := range m.thIdx {
		thOut[i] = eta[k]
	}
	for k, i := range m.x0Idx {
		x0Out[i] = eta[n1+k]
	}

	return thOut, x0Out
}
