package ms

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func roundTrip(t *testing.T, mode GainMode, l, r []float32) {
	t.Helper()
	origL, origR := append([]float32(nil), l...), append([]float32(nil), r...)
	Split(l, r, mode)
	Combine(l, r, mode)
	for i := range l {
		assert.InDeltaf(t, origL[i], l[i], 1e-4, "mode %v: L[%d] round-trip mismatch", mode, i)
		assert.InDeltaf(t, origR[i], r[i], 1e-4, "mode %v: R[%d] round-trip mismatch", mode, i)
	}
}

func TestSplitCombineRoundTripsForEveryGainMode(t *testing.T) {
	for _, mode := range []GainMode{Pre, Avg, Post} {
		l := []float32{1, -0.5, 0, 0.25}
		r := []float32{-1, 0.5, 0.3, -0.25}
		roundTrip(t, mode, l, r)
	}
}

func TestSplitMonoSumIsIdenticalLAndRProducesZeroSide(t *testing.T) {
	l := []float32{0.5, 0.5}
	r := []float32{0.5, 0.5}
	Split(l, r, Avg)
	for i := range r {
		assert.InDeltaf(t, 0, r[i], 1e-6, "sample %d: side should be ~0 for L==R", i)
	}
}

func TestSplitPreGainModeMidIsHalfSum(t *testing.T) {
	l := []float32{1.0}
	r := []float32{0.2}
	Split(l, r, Pre)
	want := float32(0.5 * (1.0 + 0.2))
	if math.Abs(float64(l[0]-want)) > 1e-6 {
		t.Errorf("got mid %f, want %f", l[0], want)
	}
}
