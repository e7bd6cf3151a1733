// Package response evaluates a band's (or a cascade's) frequency
// response, used by the FFT correction stages (C13/C14) and by the
// UI's analyzer overlay. It is deliberately decoupled from any one
// realization kernel: the same closed-form rational-function
// evaluator serves both the analog s-domain prototype response (the
// Ideal family, wi = j*w) and a digital biquad's z-domain response
// (wi = e^jw), since both reduce to the same quadratic-over-quadratic
// shape. Grounded literally on original_source's
// dsp/filter/ideal_filter/ideal_base.hpp and
// dsp/filter/fir_correction/correction_helper.hpp.
package response

import (
	"math"
	"math/cmplx"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dynaudio/dyneq/pkg/eq"
)

// gridKey identifies a cached frequency grid by point count and kind.
type gridKey struct {
	n         int
	prototype bool
}

// gridCache memoizes PrototypeFrequencies/BiquadFrequencies results:
// the analyzer UI re-requests the same handful of grid sizes (one per
// open editor) every repaint, and these are pure functions of n.
var gridCache, _ = lru.New[gridKey, []complex128](8)

func cachedGrid(n int, prototype bool, compute func(int) []complex128) []complex128 {
	key := gridKey{n: n, prototype: prototype}
	if v, ok := gridCache.Get(key); ok {
		return v
	}
	v := compute(n)
	gridCache.Add(key, v)
	return v
}

// Magnitude returns |H(jw)| for the analog prototype coefficients at
// angular frequency w, via ideal_base.hpp's getMagnitude closed form
// (avoids a complex division for the common real-magnitude case).
func Magnitude(c eq.BiquadCoeffs, w float64) float64 {
	w2 := w * w
	t1 := c[eq.A2] - c[eq.A0]*w2
	denominator := c[eq.A1]*c[eq.A1]*w2 + t1*t1
	t2 := c[eq.B2] - c[eq.B0]*w2
	numerator := c[eq.B1]*c[eq.B1]*w2 + t2*t2
	return math.Sqrt(numerator / denominator)
}

// Response returns H(wi) for wi a point on the evaluation contour:
// wi = complex(0, w) for the analog s-plane, wi = exp(i*w) for the
// digital unit circle. The same rational form serves both: for the
// digital family's z^0, z^-1, z^-2 coefficient order,
// (b0*z^2 + b1*z + b2)/(a0*z^2 + a1*z + a2) at z = e^jw equals
// H(e^jw).
func Response(c eq.BiquadCoeffs, wi complex128) complex128 {
	wi2 := wi * wi
	num := complex(c[eq.B0], 0)*wi2 + complex(c[eq.B1], 0)*wi + complex(c[eq.B2], 0)
	den := complex(c[eq.A0], 0)*wi2 + complex(c[eq.A1], 0)*wi + complex(c[eq.A2], 0)
	return num / den
}

// AccumulateMagnitude multiplies gains[i] by |H(ws[i])| in place, for
// a grid of analog prototype frequencies ws.
func AccumulateMagnitude(c eq.BiquadCoeffs, ws []float64, gains []float64) {
	for i, w := range ws {
		gains[i] *= Magnitude(c, w)
	}
}

// AccumulateResponse multiplies response[i] by H(wis[i]) in place.
func AccumulateResponse(c eq.BiquadCoeffs, wis []complex128, response []complex128) {
	for i, wi := range wis {
		response[i] *= Response(c, wi)
	}
}

// AccumulateMixResponse multiplies response[i] by a phase-blended
// H(wis[i]): full complex response below startMix,
// magnitude-preserved-but-phase-scaled-by-mix[i] inside
// [startMix, endMix), and magnitude only (zero phase) from endMix on. This is
// the mixed-phase structure's per-band contribution: bins close to the
// band's own influence keep natural phase, while distant bins fall
// back toward zero-phase. Grounded on updateMixResponse.
func AccumulateMixResponse(c eq.BiquadCoeffs, wis []complex128, response []complex128, startMix, endMix int, mix []float64) {
	for i := 0; i < startMix && i < len(wis); i++ {
		response[i] *= Response(c, wis[i])
	}
	for i := startMix; i < endMix && i < len(wis); i++ {
		single := Response(c, wis[i])
		mag, arg := cmplx.Polar(single)
		response[i] *= cmplx.Rect(mag, arg*mix[i])
	}
	for i := endMix; i < len(wis); i++ {
		single := Response(c, wis[i])
		mag, _ := cmplx.Polar(single)
		response[i] *= complex(mag, 0)
	}
}

// PrototypeFrequencies returns n angular frequencies j*w, w in
// [0, pi], evenly spaced, for evaluating an analog prototype response
// (e.g. the Ideal coefficient family before digital realization). The
// result is cached by n since callers (the analyzer UI) re-request the
// same grid size every repaint.
func PrototypeFrequencies(n int) []complex128 {
	return cachedGrid(n, true, computePrototypeFrequencies)
}

func computePrototypeFrequencies(n int) []complex128 {
	ws := make([]complex128, n)
	if n < 2 {
		return ws
	}
	delta := math.Pi / float64(n-1)
	w := 0.0
	for i := range ws {
		ws[i] = complex(0, w)
		w += delta
	}
	return ws
}

// BiquadFrequencies returns n points exp(i*w), w in [0, pi], evenly
// spaced, for evaluating a digital biquad's z-domain response on the
// unit circle. Cached by n, same rationale as PrototypeFrequencies.
func BiquadFrequencies(n int) []complex128 {
	return cachedGrid(n, false, computeBiquadFrequencies)
}

func computeBiquadFrequencies(n int) []complex128 {
	ws := make([]complex128, n)
	if n < 2 {
		return ws
	}
	delta := math.Pi / float64(n-1)
	w := 0.0
	for i := range ws {
		ws[i] = cmplx.Exp(complex(0, w))
		w += delta
	}
	return ws
}

// CascadeMagnitude evaluates the combined analog-prototype magnitude
// of every active section in a cascade at each frequency in ws.
func CascadeMagnitude(cascade eq.Cascade, ws []float64) []float64 {
	gains := make([]float64, len(ws))
	for i := range gains {
		gains[i] = 1
	}
	for i := 0; i < cascade.Count; i++ {
		AccumulateMagnitude(cascade.Sections[i], ws, gains)
	}
	return gains
}

// CascadeResponse evaluates the combined complex response of every
// active section in a cascade at each point in wis.
func CascadeResponse(cascade eq.Cascade, wis []complex128) []complex128 {
	response := make([]complex128, len(wis))
	for i := range response {
		response[i] = 1
	}
	for i := 0; i < cascade.Count; i++ {
		AccumulateResponse(cascade.Sections[i], wis, response)
	}
	return response
}
