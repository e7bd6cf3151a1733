// Package dynamics implements the side-chain dynamics engine: the
// envelope follower and gain computer (C8), the decaying histogram
// used for threshold/knee auto-learning (C9), the per-block side
// signal handler (C10), and the DynamicFilter wrapper (C11).
package dynamics

import "math"

// defaultDecayRate is the original's hardcoded per-push decay
// constant (np.power(0.1, 1/10000)): a signal that stops appearing
// drops its count to 10% after 10000 pushes. The controller derives
// each band's short/long decay rates from a half-life in seconds via
// DecayRateForHalfLife instead of using this constant directly, since
// §4.6 ties half-life to wall-clock seconds, not a fixed push count.
const defaultDecayRate = 0.9997697679981565

// DecayRateForHalfLife returns the per-push multiplicative decay that
// halves an unrefreshed bin's count after halfLifeSeconds of pushes at
// pushRate pushes/second (one push per sample in this package's use).
func DecayRateForHalfLife(halfLifeSeconds, pushRate float64) float64 {
	samples := halfLifeSeconds * pushRate
	if samples <= 0 {
		return defaultDecayRate
	}
	return math.Pow(0.5, 1/samples)
}

// Histogram is a decaying streaming histogram over a dB range,
// grounded on original_source's histogram/{simple_histogram,
// atomic_histogram}.hpp: push() decays every bin then increments the
// one matching x, getPercentile() walks the cumulative sum and
// linearly interpolates inside the landing bin. Unlike the original
// (which bins by caller-supplied index), Push here takes the raw dB
// value directly per spec.md §4.6 ("push(x) ... increments the bin
// for x") and does the dB-to-bin mapping internally.
type Histogram struct {
	loDB, hiDB float64
	decayRate  float64

	hits    []float64
	cumHits []float64
}

// NewHistogram returns a histogram with numBins bins spanning
// [loDB, hiDB].
func NewHistogram(numBins int, loDB, hiDB float64) *Histogram {
	return &Histogram{
		loDB: loDB, hiDB: hiDB,
		decayRate: defaultDecayRate,
		hits:      make([]float64, numBins),
		cumHits:   make([]float64, numBins),
	}
}

// Reset fills every bin with x (0 to clear).
func (h *Histogram) Reset(x float64) {
	for i := range h.hits {
		h.hits[i] = x
	}
}

// SetDecayRate installs the per-push multiplicative decay.
func (h *Histogram) SetDecayRate(x float64) {
	h.decayRate = x
}

func (h *Histogram) bin(xDB float64) int {
	n := len(h.hits)
	frac := (xDB - h.loDB) / (h.hiDB - h.loDB)
	idx := int(frac * float64(n))
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	return idx
}

// Push decays every bin, then adds one hit at the bin matching xDB.
func (h *Histogram) Push(xDB float64) {
	idx := h.bin(xDB)
	for i := range h.hits {
		h.hits[i] *= h.decayRate
	}
	h.hits[idx]++
}

// Percentile returns the dB value at percentile p (p=0.5 -> median),
// linearly interpolated within the landing bin.
func (h *Histogram) Percentile(p float64) float64 {
	n := len(h.hits)
	h.cumHits[0] = h.hits[0]
	for i := 1; i < n; i++ {
		h.cumHits[i] = h.cumHits[i-1] + h.hits[i]
	}
	total := h.cumHits[n-1]
	if total <= 0 {
		return h.loDB
	}
	target := p * total
	idx := -1
	for i := 0; i < n; i++ {
		if h.cumHits[i] >= target {
			idx = i
			break
		}
	}
	if idx < 0 {
		return h.hiDB
	}
	binWidth := (h.hiDB - h.loDB) / float64(n)
	denom := math.Max(h.hits[idx], 1)
	binIndexValue := float64(idx) + (h.cumHits[idx]-target)/denom
	return h.loDB + binIndexValue*binWidth
}
