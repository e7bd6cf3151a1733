// Package eq implements the real-time core of a dynamic parametric
// equalizer: filter coefficient design, three realization kernels
// (TDF, SVF, parallel), a side-chain driven dynamics engine, FFT-based
// phase/magnitude correction, and the controller that orchestrates all
// of the above across stereo/L/R/M/S channel groups.
package eq

import (
	"fmt"
	"math"
)

// FilterType identifies the shape of a biquad band.
type FilterType int

const (
	Peak FilterType = iota
	LowShelf
	LowPass
	HighShelf
	HighPass
	Notch
	BandPass
	TiltShelf
	BandShelf
)

func (t FilterType) String() string {
	switch t {
	case Peak:
		return "Peak"
	case LowShelf:
		return "LowShelf"
	case LowPass:
		return "LowPass"
	case HighShelf:
		return "HighShelf"
	case HighPass:
		return "HighPass"
	case Notch:
		return "Notch"
	case BandPass:
		return "BandPass"
	case TiltShelf:
		return "TiltShelf"
	case BandShelf:
		return "BandShelf"
	default:
		return fmt.Sprintf("FilterType(%d)", int(t))
	}
}

// HasGain reports whether gain is meaningful for the filter type, per
// the FilterParameters invariant in the data model: Peak/Shelf/Tilt use
// gain, Pass/Notch ignore it.
func (t FilterType) HasGain() bool {
	switch t {
	case Peak, LowShelf, HighShelf, TiltShelf, BandShelf:
		return true
	default:
		return false
	}
}

// DynamicCapable reports whether a band of this type may be flagged
// dynamic: only Peak/LowShelf/HighShelf/TiltShelf.
func (t FilterType) DynamicCapable() bool {
	switch t {
	case Peak, LowShelf, HighShelf, TiltShelf:
		return true
	default:
		return false
	}
}

// Order is the filter slope order. Legal values are 1, 2, 4, 6, 8, 12, 16.
type Order int

const (
	Order1  Order = 1
	Order2  Order = 2
	Order4  Order = 4
	Order6  Order = 6
	Order8  Order = 8
	Order12 Order = 12
	Order16 Order = 16
)

// Valid reports whether o is a legal order for type t. Order 1 is only
// legal for shelves and 1-pole passes.
func (o Order) Valid(t FilterType) bool {
	switch o {
	case Order2, Order4, Order6, Order8, Order12, Order16:
		return true
	case Order1:
		switch t {
		case LowShelf, HighShelf, TiltShelf, LowPass, HighPass:
			return true
		default:
			return false
		}
	default:
		return false
	}
}

// Sections returns the number of second-order sections (k) and whether
// an additional first-order head section is needed for odd orders.
func (o Order) Sections() (k int, oddHead bool) {
	n := int(o)
	return n / 2, n%2 == 1
}

// Status is the on/off/bypass lifecycle state of a band.
type Status int

const (
	Off Status = iota
	Bypass
	On
)

// StereoMode selects which channel group a band is routed to.
type StereoMode int

const (
	Stereo StereoMode = iota
	Left
	Right
	Mid
	Side
)

// FilterParameters is the value type describing a single biquad band's
// static configuration: type, order, center frequency, gain, and Q.
type FilterParameters struct {
	Type  FilterType
	Order Order
	Freq  float64 // Hz, [10, 20000]
	Gain  float64 // dB, [-30, 30]; meaningful only when Type.HasGain()
	Q     float64 // [0.025, 25]
}

// Clamp returns params with every field clamped to its legal range.
// The core itself never calls this on the audio path (per §7, the
// host's parameter tree is trusted); it exists for control-thread
// callers (tests, tools) constructing parameters programmatically.
func (p FilterParameters) Clamp() FilterParameters {
	p.Freq = clampF(p.Freq, 10, 20000)
	p.Gain = clampF(p.Gain, -30, 30)
	p.Q = clampF(p.Q, 0.025, 25)
	return p
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

// BiquadCoeffs is six doubles [a0, a1, a2, b0, b1, b2]. Invariant: a0 > 0.
type BiquadCoeffs [6]float64

// A0, A1, A2, B0, B1, B2 index BiquadCoeffs for readability at call sites.
const (
	A0 = 0
	A1 = 1
	A2 = 2
	B0 = 3
	B1 = 4
	B2 = 5
)

// PassThrough is the fallback section installed whenever coefficient
// derivation produces a non-finite or non-positive-a0 result (§7).
var PassThrough = BiquadCoeffs{1, 0, 0, 1, 0, 0}

// Normalized returns the coefficients divided by a0, or PassThrough if
// a0 is non-finite or non-positive.
func (c BiquadCoeffs) Normalized() BiquadCoeffs {
	if !isFinite6(c) || c[A0] <= 0 {
		return PassThrough
	}
	a0 := c[A0]
	return BiquadCoeffs{1, c[A1] / a0, c[A2] / a0, c[B0] / a0, c[B1] / a0, c[B2] / a0}
}

func isFinite6(c BiquadCoeffs) bool {
	for _, v := range c {
		if v != v || v > 1e300 || v < -1e300 { // NaN or effectively Inf
			return false
		}
	}
	return true
}

// MaxSections is the fixed cascade capacity: all arrays on the audio
// path are fixed-capacity to avoid heap growth (§9).
const MaxSections = 16

// Cascade is a fixed-capacity ordered list of biquad sections.
type Cascade struct {
	Sections [MaxSections]BiquadCoeffs
	Count    int
}

// Append adds a section if capacity remains; it is a silent no-op
// otherwise (cascade counts are bounded at compile time per §9, and a
// correctly configured band never exceeds MaxSections).
func (c *Cascade) Append(b BiquadCoeffs) {
	if c.Count >= MaxSections {
		return
	}
	c.Sections[c.Count] = b
	c.Count++
}

// Reset empties the cascade without releasing its backing array.
func (c *Cascade) Reset() {
	c.Count = 0
}

// Band is the logical entity the Controller schedules: static and
// target-for-dynamics parameters, side-chain parameters, lifecycle
// status, channel routing, and flags.
type Band struct {
	Params       FilterParameters
	TargetParams FilterParameters // gain/Q target when dynamic
	Side         SideParameters
	Status       Status
	Stereo       StereoMode

	DynamicOn       bool
	DynamicBypass   bool
	DynamicRelative bool
	DynamicLearn    bool
	SideSwap        bool
}

// SideParameters configures the per-band side-chain detector.
type SideParameters struct {
	Freq      float64 // Hz, same taper as Params.Freq
	Q         float64 // same taper as Params.Q
	Threshold float64 // dB, [-80, 0]
	Knee      float64 // dB, [0, 32]
	AttackMs  float64 // [1, 1000]
	ReleaseMs float64 // [1, 5000]
}

// IsDynamic reports whether the band behaves dynamically: the flag is
// set and the filter type is dynamic-capable (§3).
func (b Band) IsDynamic() bool {
	return b.DynamicOn && b.Params.Type.DynamicCapable()
}

// FilterStructure is the global realization structure selector.
type FilterStructure int

const (
	Minimum FilterStructure = iota // TDF cascade, zero latency
	SVF                            // state-variable cascade, zero latency
	Parallel                       // parallel peak/shelf topology, zero latency
	Matched                        // TDF + FIR matched-phase correction
	Mixed                          // TDF + FIR mixed-phase correction
	Zero                           // TDF + FIR zero-phase correction
)

// ZeroLatency reports whether the structure reports zero samples of
// latency (Minimum, SVF, Parallel) as opposed to F samples (Matched,
// Mixed, Zero) per §6.
func (s FilterStructure) ZeroLatency() bool {
	switch s {
	case Minimum, SVF, Parallel:
		return true
	default:
		return false
	}
}

// Corrects reports whether the structure runs the FIR correction pass.
func (s FilterStructure) Corrects() bool {
	return !s.ZeroLatency()
}

// DbToGain converts a decibel value to a linear gain multiplier:
// 10^(db/20), per original_source/dsp/filter/helpers.hpp's dbToGain.
func DbToGain(db float64) float64 {
	return math.Pow(10, db*0.05)
}

// GainToDb converts a linear gain multiplier to decibels: 20*log10(g).
func GainToDb(g float64) float64 {
	if g <= 0 {
		return -320 // effectively -inf, floored
	}
	return 20 * math.Log10(g)
}

// Bandwidth returns the lower and upper -3dB-equivalent corner
// frequencies of a resonance at w0 with quality q, derived from the
// standard bandwidth-in-octaves relation:
//
//	bw = 2*asinh(0.5/q)/ln(2); scale = 2^(bw/2)
//
// used to straddle a peak/bandshelf's center frequency by its
// bandwidth when splitting it into a shelf pair (§4.2).
func Bandwidth(w0, q float64) (lo, hi float64) {
	bw := 2 * math.Asinh(0.5/q) / math.Ln2
	scale := math.Pow(2, bw/2)
	return w0 / scale, w0 * scale
}

// W0 converts a frequency in Hz to angular frequency per sample:
// w0 = 2*pi*f/fs.
func W0(freq, sampleRate float64) float64 {
	return 2 * math.Pi * freq / sampleRate
}
