// Package kernel implements the three zero-latency realization
// kernels (C3 IIRKernel/TDF, C4 SVFKernel, C5 ParallelKernel): stateful
// per-channel biquad cascades driven by coefficients from pkg/eq/coeff.
//
// State layout and no-alloc Process style are grounded on the
// teacher's pkg/dsp/filter/biquad.go and svf.go (per-channel slices,
// in-place buffer processing); the algorithms themselves are grounded
// on original_source/source/dsp/filter/iir_filter/{tdf/tdf_base,
// svf_base,parallel/parallel}.hpp.
package kernel

import "github.com/dynaudio/dyneq/pkg/eq"

// tdfCoeffs is the transposed-direct-form-II coefficient set derived
// from a BiquadCoeffs by normalizing by a0 (tdf_base.hpp's
// updateFromBiquad).
type tdfCoeffs struct {
	b0, b1, b2 float64
	a1, a2     float64
}

func newTDFCoeffs(c eq.BiquadCoeffs) tdfCoeffs {
	invA0 := 1 / c[eq.A0]
	return tdfCoeffs{
		b0: c[eq.B0] * invA0,
		b1: c[eq.B1] * invA0,
		b2: c[eq.B2] * invA0,
		a1: c[eq.A1] * invA0,
		a2: c[eq.A2] * invA0,
	}
}

// TDFSection is one second-order transposed-direct-form-II biquad
// with per-channel state.
type TDFSection struct {
	coeffs tdfCoeffs
	s1, s2 []float64
}

// Prepare allocates per-channel state for numChannels.
func (t *TDFSection) Prepare(numChannels int) {
	t.s1 = make([]float64, numChannels)
	t.s2 = make([]float64, numChannels)
}

// Reset clears all channel state without reallocating.
func (t *TDFSection) Reset() {
	for i := range t.s1 {
		t.s1[i] = 0
		t.s2[i] = 0
	}
}

// UpdateFromBiquad installs new coefficients; it does not reset state,
// matching tdf_base.hpp (coefficient changes do not clear history).
func (t *TDFSection) UpdateFromBiquad(c eq.BiquadCoeffs) {
	t.coeffs = newTDFCoeffs(c)
}

// ProcessSample runs one sample through the section for channel ch.
func (t *TDFSection) ProcessSample(ch int, input float64) float64 {
	c := t.coeffs
	output := input*c.b0 + t.s1[ch]
	t.s1[ch] = input*c.b1 - output*c.a1 + t.s2[ch]
	t.s2[ch] = input*c.b2 - output*c.a2
	return output
}

// TDFCascade is an ordered, fixed-capacity run of TDFSections (the
// IIRKernel of §4.3): the minimum-phase, zero-latency realization.
type TDFCascade struct {
	sections [eq.MaxSections]TDFSection
	count    int
}

// Prepare allocates per-channel state for every section slot.
func (c *TDFCascade) Prepare(numChannels int) {
	for i := range c.sections {
		c.sections[i].Prepare(numChannels)
	}
}

// Reset clears all section state.
func (c *TDFCascade) Reset() {
	for i := 0; i < len(c.sections); i++ {
		c.sections[i].Reset()
	}
}

// UpdateFromCascade installs a new set of biquad sections. Sections
// beyond cascade.Count are left with stale coefficients but are never
// reached by ProcessSample since count bounds the active range.
func (c *TDFCascade) UpdateFromCascade(cascade eq.Cascade) {
	c.count = cascade.Count
	for i := 0; i < cascade.Count; i++ {
		c.sections[i].UpdateFromBiquad(cascade.Sections[i])
	}
}

// ProcessSample runs one sample through every active section in order.
func (c *TDFCascade) ProcessSample(ch int, input float64) float64 {
	sample := input
	for i := 0; i < c.count; i++ {
		sample = c.sections[i].ProcessSample(ch, sample)
	}
	return sample
}

// Process filters buf in place for channel ch.
func (c *TDFCascade) Process(buf []float32, ch int) {
	for i, x := range buf {
		buf[i] = float32(c.ProcessSample(ch, float64(x)))
	}
}

// Count reports the number of active sections.
func (c *TDFCascade) Count() int { return c.count }
