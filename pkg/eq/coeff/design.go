// FilterDesign (C2): cascades a high-order slope into second-order
// sections, one family-agnostic algorithm driven by a FuncSet of
// first- and second-order coefficient functions so it works unchanged
// against both the Ideal and Matched families in this package.
//
// Grounded on original_source's filter_design.hpp: updatePassCoeffs,
// updateShelfCoeffs, updateBandPassCoeffs, updateNotchCoeffs,
// updateBandShelfCoeffs, updateCoeffs, translated literally including
// the theta0/scale/rescale_base section-placement formula and the
// Peak-order>=4 / BandShelf shelf-pair fallback.
package coeff

import (
	"math"

	"github.com/dynaudio/dyneq/pkg/eq"
)

// FuncSet bundles the closed-form coefficient functions FilterDesign
// cascades over. One FuncSet is built per family (Ideal, Matched); the
// cascading logic itself never depends on which family it drives.
type FuncSet struct {
	LowPass1   func(w0 float64) FirstOrder
	HighPass1  func(w0 float64) FirstOrder
	LowShelf1  func(w0, g float64) FirstOrder
	HighShelf1 func(w0, g float64) FirstOrder
	TiltShelf1 func(w0, g float64) FirstOrder

	LowPass2   func(w0, q float64) eq.BiquadCoeffs
	HighPass2  func(w0, q float64) eq.BiquadCoeffs
	BandPass2  func(w0, q float64) eq.BiquadCoeffs
	Notch2     func(w0, q float64) eq.BiquadCoeffs
	Peak2      func(w0, g, q float64) eq.BiquadCoeffs
	LowShelf2  func(w0, g, q float64) eq.BiquadCoeffs
	HighShelf2 func(w0, g, q float64) eq.BiquadCoeffs
	TiltShelf2 func(w0, g, q float64) eq.BiquadCoeffs
}

// IdealSet drives FilterDesign with the s-domain prototype family.
var IdealSet = FuncSet{
	LowPass1:   Ideal1LowPass,
	HighPass1:  Ideal1HighPass,
	LowShelf1:  Ideal1LowShelf,
	HighShelf1: Ideal1HighShelf,
	TiltShelf1: Ideal1TiltShelf,

	LowPass2:   Ideal2LowPass,
	HighPass2:  Ideal2HighPass,
	BandPass2:  Ideal2BandPass,
	Notch2:     Ideal2Notch,
	Peak2:      Ideal2Peak,
	LowShelf2:  Ideal2LowShelf,
	HighShelf2: Ideal2HighShelf,
	TiltShelf2: Ideal2TiltShelf,
}

// MatchedSet drives FilterDesign with the digital matched-z family.
var MatchedSet = FuncSet{
	LowPass1:   Matched1LowPass,
	HighPass1:  Matched1HighPass,
	LowShelf1:  Matched1LowShelf,
	HighShelf1: Matched1HighShelf,
	TiltShelf1: Matched1TiltShelf,

	LowPass2:   Matched2LowPass,
	HighPass2:  Matched2HighPass,
	BandPass2:  Matched2BandPass,
	Notch2:     Matched2Notch,
	Peak2:      Matched2Peak,
	LowShelf2:  Matched2LowShelf,
	HighShelf2: Matched2HighShelf,
	TiltShelf2: Matched2TiltShelf,
}

// Design cascades the coefficients for band type t at order n, center
// frequency f (Hz), sample rate fs (Hz), gain gainDB (dB), and Q q0,
// using the functions in set. It returns an empty cascade for types/
// orders that legally produce none (Peak at n<2).
func Design(set FuncSet, t eq.FilterType, n eq.Order, f, fs, gainDB, q0 float64) eq.Cascade {
	var out eq.Cascade
	w0 := eq.W0(f, fs)
	g0 := eq.DbToGain(gainDB)
	nn := int(n)

	switch t {
	case eq.Peak:
		switch nn {
		case 0, 1:
			return out
		case 2:
			out.Append(set.Peak2(w0, g0, q0))
		default:
			updateBandShelfCoeffs(nn, set.LowShelf1, set.HighShelf1, set.LowShelf2, set.HighShelf2, w0, g0, q0, &out)
		}
	case eq.LowShelf:
		updateShelfCoeffs(nn, set.LowShelf1, set.LowShelf2, w0, g0, math.Sqrt(q0*math.Sqrt2)/math.Sqrt2, &out)
	case eq.LowPass:
		updatePassCoeffs(nn, set.LowPass1, set.LowPass2, w0, q0, &out)
	case eq.HighShelf:
		updateShelfCoeffs(nn, set.HighShelf1, set.HighShelf2, w0, g0, math.Sqrt(q0*math.Sqrt2)/math.Sqrt2, &out)
	case eq.HighPass:
		updatePassCoeffs(nn, set.HighPass1, set.HighPass2, w0, q0, &out)
	case eq.BandShelf:
		updateBandShelfCoeffs(nn, set.LowShelf1, set.HighShelf1, set.LowShelf2, set.HighShelf2, w0, g0, q0, &out)
	case eq.TiltShelf:
		updateShelfCoeffs(nn, set.TiltShelf1, set.TiltShelf2, w0, g0, math.Sqrt(q0*math.Sqrt2)/math.Sqrt2, &out)
	case eq.Notch:
		updateNotchCoeffs(nn, set.Notch2, w0, q0, &out)
	case eq.BandPass:
		updateBandPassCoeffs(nn, set.BandPass2, w0, q0, &out)
	}
	return out
}

func updatePassCoeffs(n int, firstOrder func(w0 float64) FirstOrder, twoPole func(w0, q float64) eq.BiquadCoeffs, w0, q0 float64, out *eq.Cascade) {
	if n == 1 {
		c := firstOrder(w0)
		out.Append(eq.BiquadCoeffs{c[fA0], c[fA1], 0, c[fB0], c[fB1], 0})
		return
	}
	number := n / 2
	theta0 := math.Pi / float64(number) / 4
	scale := math.Pow(math.Sqrt2*q0, 1/float64(number))
	rescaleBase := math.Log10(math.Sqrt2*q0) / math.Pow(float64(n), 1.5) * 12
	for i := 0; i < number; i++ {
		centered := float64(i) - float64(number)/2 + 0.5
		rescale := centered * rescaleBase
		theta := theta0 * float64(2*i+1)
		qs := 1.0 / 2.0 / math.Cos(theta) * scale * math.Pow(2, rescale)
		out.Append(twoPole(w0, qs))
	}
}

func updateShelfCoeffs(n int, firstOrder func(w0, g float64) FirstOrder, twoPole func(w0, g, q float64) eq.BiquadCoeffs, w0, g0, q0 float64, out *eq.Cascade) {
	if n == 1 {
		c := firstOrder(w0, g0)
		out.Append(eq.BiquadCoeffs{c[fA0], c[fA1], 0, c[fB0], c[fB1], 0})
		return
	}
	number := n / 2
	g := math.Pow(g0, 1/float64(number))
	theta0 := math.Pi / float64(number) / 4
	scale := math.Pow(math.Sqrt2*q0, 1/float64(number))
	rescaleBase := math.Log10(math.Sqrt2*q0) / math.Pow(float64(n), 1.5) * 12
	for i := 0; i < number; i++ {
		centered := float64(i) - float64(number)/2 + 0.5
		rescale := centered * rescaleBase
		theta := theta0 * float64(2*i+1)
		q := 1.0 / 2.0 / math.Cos(theta) * scale * math.Pow(2, rescale)
		out.Append(twoPole(w0, g, q))
	}
}

func updateBandPassCoeffs(n int, twoPole func(w0, q float64) eq.BiquadCoeffs, w0, q0 float64, out *eq.Cascade) {
	if n < 2 {
		return
	}
	number := n / 2
	halfbw := math.Asinh(0.5/q0) / math.Ln2
	w := w0 / math.Pow(2, halfbw)
	g := eq.DbToGain(-6 / float64(n))
	q := math.Sqrt(1-g*g) * w * w0 / g / (w0*w0 - w*w)
	single := twoPole(w0, q)
	for i := 0; i < number; i++ {
		out.Append(single)
	}
}

func updateNotchCoeffs(n int, twoPole func(w0, q float64) eq.BiquadCoeffs, w0, q0 float64, out *eq.Cascade) {
	if n < 2 {
		return
	}
	number := n / 2
	halfbw := math.Asinh(0.5/q0) / math.Ln2
	w := w0 / math.Pow(2, halfbw)
	g := eq.DbToGain(-6 / float64(n))
	q := g * w * w0 / math.Sqrt(1-g*g) / (w0*w0 - w*w)
	single := twoPole(w0, q)
	for i := 0; i < number; i++ {
		out.Append(single)
	}
}

func updateBandShelfCoeffs(n int, lowFirst, highFirst func(w0, g float64) FirstOrder, lowTwo, highTwo func(w0, g, q float64) eq.BiquadCoeffs, w0, g0, q0 float64, out *eq.Cascade) {
	if n < 2 {
		return
	}
	halfbw := math.Asinh(0.5/q0) / math.Ln2
	scale := math.Pow(2, halfbw)
	w1 := w0 / scale
	w2 := w0 * scale
	f1 := w1 > 10.0*2*math.Pi/48000
	f2 := w2 < 22000.0*2*math.Pi/48000
	switch {
	case f1 && f2:
		updateShelfCoeffs(n, lowFirst, lowTwo, w1, 1/g0, math.Sqrt2/2, out)
		updateShelfCoeffs(n, lowFirst, lowTwo, w2, g0, math.Sqrt2/2, out)
	case f1:
		updateShelfCoeffs(n, highFirst, highTwo, w1, g0, math.Sqrt2/2, out)
	case f2:
		updateShelfCoeffs(n, lowFirst, lowTwo, w2, g0, math.Sqrt2/2, out)
	default:
		out.Append(eq.BiquadCoeffs{1, 1, 1, g0, g0, g0})
	}
}
