package correction

import (
	"math"
	"math/cmplx"

	"github.com/dynaudio/dyneq/pkg/eq"
	"github.com/dynaudio/dyneq/pkg/eq/response"
)

// Structure selects which correction policy a Calculator applies: how
// aggressively it steers the realized (digital, minimum-phase) biquad
// response toward the analog prototype's response.
type Structure int

const (
	Matched Structure = iota // correct magnitude+phase above bin 16-128 fade; low end untouched
	Mixed                    // like Matched, but fades out phase correction at the high end too
	Zero                     // magnitude-only correction from bin 8 upward
)

// DefaultOrder returns the structure's base FFT order, before the
// sample-rate bump in DefaultOrderForSampleRate.
func (s Structure) DefaultOrder() int {
	switch s {
	case Zero:
		return 10
	case Mixed:
		return 11
	default: // Matched
		return 9
	}
}

const (
	matchedKStart, matchedKEnd = 16, 128
	mixedKStart, mixedKEnd     = 4, 512
	mixedDecay                 = 0.98
	zeroKStart                 = 8
	matchedMixClamp            = 10000.0
	zeroClampDB                = 40.0
)

// Calculator combines one channel bus's active, on, non-dynamic bands
// into a single per-bin complex correction vector for FIRCorrection.
// Grounded on original_source's prototype_correction.hpp (the
// matched/zero skeleton: accumulate per-band ratios, sanitize
// non-finite bins, carry forward through near-zero denominators) and
// mixed_correction.hpp (the mixed structure's phase-blend schedule),
// reshaped onto spec.md §4.10's explicit bin ranges and fade curves.
type Calculator struct {
	structure Structure
	numBins   int
	mixWeight []float64 // Mixed only: per-bin phase-mix weight, decaying across [kStart,kEnd)
}

// NewCalculator builds a calculator for a structure and an FFT of
// numBins = fftSize/2+1 bins.
func NewCalculator(structure Structure, numBins int) *Calculator {
	c := &Calculator{structure: structure, numBins: numBins}
	if structure == Mixed {
		c.mixWeight = make([]float64, numBins)
		w := mixedDecay
		for i := mixedKStart; i < mixedKEnd && i < numBins; i++ {
			c.mixWeight[i] = w
			w *= mixedDecay
		}
	}
	return c
}

// startBin is the first bin the structure ever corrects; everything
// below passes straight through, avoiding DC/near-DC artifacts.
func (c *Calculator) startBin() int {
	switch c.structure {
	case Mixed:
		return mixedKStart
	case Zero:
		return zeroKStart
	default:
		return 0
	}
}

// matchedFade returns the matched structure's logarithmic fade-in
// weight k in [0,1] for bin i: 0 below kStart, growing as
// log(i/kStart)/log(kEnd/kStart) through [kStart,kEnd), 1 at/above
// kEnd (where the correction is the full complex ratio).
func matchedFade(i int) float64 {
	switch {
	case i < matchedKStart:
		return 0
	case i >= matchedKEnd:
		return 1
	default:
		return math.Log(float64(i)/matchedKStart) / math.Log(float64(matchedKEnd)/matchedKStart)
	}
}

// Compute combines idealCascades/iirCascades (the analog-prototype and
// realized-digital coefficients for every active, on, non-dynamic
// band on one channel bus, same length and order) into out, a
// complex vector of length c.numBins. protoWs/bqWs are the matching
// analog (j*w) and digital (e^jw) frequency grids from the response
// package. Bins below the structure's start bin are left at identity.
// Returns false (out left at identity) when there are no active bands.
func (c *Calculator) Compute(idealCascades, iirCascades []eq.Cascade, protoWs, bqWs []complex128, out []complex128) bool {
	for i := range out {
		out[i] = 1
	}
	if len(idealCascades) == 0 {
		return false
	}
	start := c.startBin()
	for band := range idealCascades {
		idealResp := c.idealResponse(idealCascades[band], protoWs)
		iirResp := response.CascadeResponse(iirCascades[band], bqWs)
		for j := start; j < c.numBins-1; j++ {
			out[j] *= c.bandRatio(j, iirResp[j], idealResp[j])
		}
	}
	c.sanitize(out, start)
	c.clamp(out)
	out[c.numBins-1] = complex(cmplx.Abs(out[c.numBins-2]), 0)
	return true
}

// idealResponse evaluates a band's analog-prototype response. For
// Mixed, the response's phase is scaled by mixWeight inside
// [mixedKStart, mixedKEnd) and dropped (magnitude only) from mixedKEnd
// on (response.AccumulateMixResponse), matching the original's
// "minimize phase at the high end" behavior; Matched/Zero use the
// unmodified complex response.
func (c *Calculator) idealResponse(cascade eq.Cascade, protoWs []complex128) []complex128 {
	resp := make([]complex128, len(protoWs))
	for i := range resp {
		resp[i] = 1
	}
	for s := 0; s < cascade.Count; s++ {
		if c.structure == Mixed {
			response.AccumulateMixResponse(cascade.Sections[s], protoWs, resp, mixedKStart, mixedKEnd, c.mixWeight)
		} else {
			response.AccumulateResponse(cascade.Sections[s], protoWs, resp)
		}
	}
	return resp
}

// bandRatio returns one band's contribution to bin j's correction: a
// logarithmically-faded complex ratio for Matched, a plain complex
// ratio for Mixed (the fade already lives in idealResponse), or a
// magnitude-only ratio for Zero. A near-zero denominator carries
// forward as identity rather than blowing up (the original's |B|->0
// handling).
func (c *Calculator) bandRatio(j int, b, p complex128) complex128 {
	if cmplx.Abs(b) < 1e-12 {
		return 1
	}
	if c.structure == Zero {
		return complex(cmplx.Abs(p)/cmplx.Abs(b), 0)
	}
	z := p / b
	if c.structure == Mixed {
		return z
	}
	k := matchedFade(j)
	mag, arg := cmplx.Polar(z)
	return cmplx.Rect(1+k*(mag-1), k*arg)
}

func (c *Calculator) sanitize(out []complex128, start int) {
	for j := start; j < len(out); j++ {
		re, im := real(out[j]), imag(out[j])
		if math.IsNaN(re) || math.IsNaN(im) || math.IsInf(re, 0) || math.IsInf(im, 0) {
			out[j] = 1
		}
	}
}

func (c *Calculator) clamp(out []complex128) {
	if c.structure == Zero {
		lo, hi := eq.DbToGain(-zeroClampDB), eq.DbToGain(zeroClampDB)
		for j := range out {
			mag := cmplx.Abs(out[j])
			switch {
			case mag > hi:
				out[j] *= complex(hi/mag, 0)
			case mag > 0 && mag < lo:
				out[j] *= complex(lo/mag, 0)
			}
		}
		return
	}
	for j := range out {
		if mag := cmplx.Abs(out[j]); mag > matchedMixClamp {
			out[j] *= complex(matchedMixClamp/mag, 0)
		}
	}
}
