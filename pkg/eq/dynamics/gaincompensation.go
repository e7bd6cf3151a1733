package dynamics

import "math"

// GainCompensation estimates the perceived-loudness correction (dB)
// for a Peak/Shelf/BandShelf band's own gain, fit against empirical
// psychoacoustic measurements in the original implementation. These
// are standalone helpers: the Controller does not call them, so no
// band's gain is compensated. Grounded literally on
// original_source's dsp/filter/gain_compensation/gain_compensation.hpp.
const (
	k1 = 0.165602
	k2 = 0.338973
	k3 = 0.712232
	k4 = 0.374335
	k5 = 1.494580
	k6 = 7.131157
	k7 = 0.014366
)

var (
	gcPeakPos = [3]float64{0.6797385437634612, 0.6501623179337382, 0.1661043031674446}
	gcPeakNeg = [3]float64{1.0005839027125558, 0.2615438074138483, 0.0876180361048472}

	gcLowShelfPos = [3]float64{0.5615303279130026, 1.0955796383939556, 0.0578375534446572}
	gcLowShelfNeg = [3]float64{1.7666900390139590, -0.9879875452397923, 0.0466874416227134}

	gcHighShelfPos = [3]float64{-1.6271905034386083, 2.6722453328537070, 0.1780141475194901}
	gcHighShelfNeg = [3]float64{-0.0999799556355004, 1.0888973867418563, 0.0760070892708112}
)

func integrateFQ(f1, f2 float64) float64 {
	w1 := 1.0000057078597646 + 1.3450513160225395e-8*f1*f1
	w2 := 1.0000057078597646 + 1.3450513160225395e-8*f2*f2
	return math.Log((w1 + 1) * (1 - w2) / (w2 + 1) / (1 - w1))
}

func gcEstimate(fqEffect, bw, g float64, x [3]float64) float64 {
	return (x[0]*fqEffect + x[1]*bw) * g * x[2]
}

// LowShelfGainCompensation estimates the compensation for a low-shelf
// band at freq/gain.
func LowShelfGainCompensation(freq, gain float64) float64 {
	f := clampF(freq, 15, 5000)
	bw := math.Log2(f / 10)
	fqEffect := integrateFQ(10, f)
	if gain > 0 {
		return -math.Max(0, gcEstimate(fqEffect, bw, gain, gcLowShelfPos))
	}
	return -math.Min(0, gcEstimate(fqEffect, bw, gain, gcLowShelfNeg))
}

// HighShelfGainCompensation estimates the compensation for a
// high-shelf band at freq/gain.
func HighShelfGainCompensation(freq, gain float64) float64 {
	f := clampF(freq, 200, 19999)
	bw := math.Log2(20000 / f)
	fqEffect := integrateFQ(f, 20000)
	if gain > 0 {
		return -math.Max(0, gcEstimate(fqEffect, bw, gain, gcHighShelfPos))
	}
	return -math.Min(0, gcEstimate(fqEffect, bw, gain, gcHighShelfNeg))
}

// PeakGainCompensation estimates the compensation for a Peak/BandShelf
// band at freq/gain/q.
func PeakGainCompensation(freq, gain, q float64) float64 {
	bw := math.Asinh(0.5/q) / math.Ln2
	scale := math.Pow(2, bw/2)
	f1 := clampF(freq/scale, 10, 20000)
	f2 := clampF(freq*scale, 10, 20000)
	bw = math.Log2(math.Max(0, f2/f1)) * 2
	fqEffect := integrateFQ(f1, f2)
	if gain > 0 {
		return -math.Max(0, gcEstimate(fqEffect, bw, gain, gcPeakPos))
	}
	return -math.Min(0, gcEstimate(fqEffect, bw, gain, gcPeakNeg))
}

func clampF(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
