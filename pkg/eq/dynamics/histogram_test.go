package dynamics

import (
	"math"
	"testing"
)

func TestHistogramEmptyPercentileReturnsLoDB(t *testing.T) {
	h := NewHistogram(16, -80, 0)
	if p := h.Percentile(0.5); p != -80 {
		t.Errorf("got %f, want -80 (loDB) for an empty histogram", p)
	}
}

func TestHistogramPercentileTracksPushedValue(t *testing.T) {
	h := NewHistogram(128, -80, 0)
	h.SetDecayRate(1.0) // no decay, so repeated pushes accumulate cleanly
	for i := 0; i < 1000; i++ {
		h.Push(-20)
	}
	p := h.Percentile(0.5)
	if math.Abs(p-(-20)) > 1.0 {
		t.Errorf("median of a histogram saturated at -20dB: got %f, want close to -20", p)
	}
}

func TestHistogramResetFillsEveryBin(t *testing.T) {
	h := NewHistogram(8, -80, 0)
	h.Reset(5)
	for _, v := range h.hits {
		if v != 5 {
			t.Fatalf("got bin value %f after Reset(5), want 5", v)
		}
	}
}

func TestDecayRateForHalfLifeHalvesAfterHalfLife(t *testing.T) {
	rate := DecayRateForHalfLife(1.0, 1000) // 1 second half-life at 1000 pushes/sec
	got := math.Pow(rate, 1000)
	if math.Abs(got-0.5) > 1e-9 {
		t.Errorf("decay rate^pushRate = %f, want 0.5", got)
	}
}

func TestDecayRateForHalfLifeNonPositiveFallsBackToDefault(t *testing.T) {
	if rate := DecayRateForHalfLife(0, 1000); rate != defaultDecayRate {
		t.Errorf("got %f, want the default decay rate for a non-positive half-life", rate)
	}
}
