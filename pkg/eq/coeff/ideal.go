// Package coeff implements FilterCoeffs (C1): pure functions mapping
// (type, w0, gain, q) to biquad coefficients, for two distinct
// families sharing the same [a0,a1,a2,b0,b1,b2] tuple shape but
// different semantics.
//
// The Ideal family (this file) returns continuous-time (s-domain)
// rational coefficients used only to evaluate a target frequency
// response H(jw) for visualization and FIR correction (§4.1, §4.8).
// They are never used to process audio. Coefficient order here is
// [a0,a1,a2] = denominator coefficients of (s^2, s^1, s^0) and
// [b0,b1,b2] = numerator coefficients of (s^2, s^1, s^0) — the
// opposite power ordering from the digital Matched family in
// matched.go, matching the closed forms in the reference coefficient
// file this package is grounded on.
package coeff

import (
	"math"

	"github.com/dynaudio/dyneq/pkg/eq"
)

// FirstOrder holds the four coefficients of a 1-pole prototype:
// denominator (a0*s + a1), numerator (b0*s + b1).
type FirstOrder [4]float64

const (
	fA0 = 0
	fA1 = 1
	fB0 = 2
	fB1 = 3
)

// Ideal computes the s-domain prototype coefficients for a band. Only
// Peak/LowShelf/LowPass/HighShelf/HighPass/Notch/BandPass/TiltShelf
// have closed forms here; BandShelf is realized as a shelf pair by the
// FilterDesign layer (§4.2) and never reaches this function directly.
func Ideal(t eq.FilterType, w0, gain, q float64) eq.BiquadCoeffs {
	g := eq.DbToGain(gain)
	switch t {
	case eq.Peak:
		return Ideal2Peak(w0, g, q)
	case eq.LowShelf:
		return Ideal2LowShelf(w0, g, q)
	case eq.LowPass:
		return Ideal2LowPass(w0, q)
	case eq.HighShelf:
		return Ideal2HighShelf(w0, g, q)
	case eq.HighPass:
		return Ideal2HighPass(w0, q)
	case eq.Notch:
		return Ideal2Notch(w0, q)
	case eq.BandPass:
		return Ideal2BandPass(w0, q)
	case eq.TiltShelf:
		return Ideal2TiltShelf(w0, g, q)
	default:
		return eq.PassThrough
	}
}

// Ideal1 computes the 1-pole s-domain prototype for the types that
// admit a first-order realization.
func Ideal1(t eq.FilterType, w0, gain float64) FirstOrder {
	g := eq.DbToGain(gain)
	switch t {
	case eq.LowPass:
		return Ideal1LowPass(w0)
	case eq.HighPass:
		return Ideal1HighPass(w0)
	case eq.TiltShelf:
		return Ideal1TiltShelf(w0, g)
	case eq.LowShelf:
		return Ideal1LowShelf(w0, g)
	case eq.HighShelf:
		return Ideal1HighShelf(w0, g)
	default:
		return FirstOrder{1, w0, 0, w0}
	}
}

func Ideal1LowPass(w0 float64) FirstOrder {
	return FirstOrder{1, w0, 0, w0}
}

func Ideal1HighPass(w0 float64) FirstOrder {
	return FirstOrder{1, w0, 1, 0}
}

func Ideal1TiltShelf(w0, g float64) FirstOrder {
	a := math.Sqrt(g)
	return FirstOrder{1, a * w0, a, w0}
}

func Ideal1LowShelf(w0, g float64) FirstOrder {
	a := math.Sqrt(g)
	return FirstOrder{1, w0 / a, 1, w0 * a}
}

func Ideal1HighShelf(w0, g float64) FirstOrder {
	a := math.Sqrt(g)
	return FirstOrder{1 / a, w0, a, w0}
}

func Ideal2LowPass(w0, q float64) eq.BiquadCoeffs {
	w02 := w0 * w0
	return eq.BiquadCoeffs{1, w0 / q, w02, 0, 0, w02}
}

func Ideal2HighPass(w0, q float64) eq.BiquadCoeffs {
	return eq.BiquadCoeffs{1, w0 / q, w0 * w0, 1, 0, 0}
}

func Ideal2BandPass(w0, q float64) eq.BiquadCoeffs {
	return eq.BiquadCoeffs{1, w0 / q, w0 * w0, 0, w0 / q, 0}
}

func Ideal2Notch(w0, q float64) eq.BiquadCoeffs {
	w02 := w0 * w0
	return eq.BiquadCoeffs{1, w0 / q, w02, 1, 0, w02}
}

func Ideal2Peak(w0, g, q float64) eq.BiquadCoeffs {
	w02 := w0 * w0
	a := math.Sqrt(g)
	return eq.BiquadCoeffs{1, w0 / a / q, w02, 1, w0 * a / q, w02}
}

func Ideal2TiltShelf(w0, g, q float64) eq.BiquadCoeffs {
	a := math.Sqrt(g)
	awq := math.Sqrt(a) * w0 / q
	w02 := w0 * w0
	return eq.BiquadCoeffs{1, awq, a * w02, a, awq, w02}
}

func Ideal2LowShelf(w0, g, q float64) eq.BiquadCoeffs {
	a := math.Sqrt(g)
	awq := math.Sqrt(a) * w0 / q
	w02 := w0 * w0
	return eq.BiquadCoeffs{a, awq, w02, a, a * awq, a * a * w02}
}

func Ideal2HighShelf(w0, g, q float64) eq.BiquadCoeffs {
	a := math.Sqrt(g)
	awq := math.Sqrt(a) * w0 / q
	w02 := w0 * w0
	return eq.BiquadCoeffs{1, awq, a * w02, a * a, a * awq, a * w02}
}
