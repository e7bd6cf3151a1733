package correction

import (
	"math/cmplx"
	"testing"

	"github.com/dynaudio/dyneq/pkg/eq"
	"github.com/dynaudio/dyneq/pkg/eq/coeff"
	"github.com/dynaudio/dyneq/pkg/eq/response"
)

func TestCalculatorComputeReturnsFalseForNoActiveBands(t *testing.T) {
	c := NewCalculator(Matched, 65)
	out := make([]complex128, 65)
	ws := response.PrototypeFrequencies(65)
	bqWs := response.BiquadFrequencies(65)
	ok := c.Compute(nil, nil, ws, bqWs, out)
	if ok {
		t.Error("got true, want false for an empty band list")
	}
	for i, v := range out {
		if v != 1 {
			t.Errorf("bin %d: got %v, want identity (1) when no bands are active", i, v)
		}
	}
}

func TestCalculatorMatchedStartsIdentityBelowKStart(t *testing.T) {
	c := NewCalculator(Matched, 256)
	ideal := coeff.Design(coeff.IdealSet, eq.Peak, eq.Order2, 1000, 48000, 6, 1)
	iir := coeff.Design(coeff.MatchedSet, eq.Peak, eq.Order2, 1000, 48000, 6, 1)
	protoWs := response.PrototypeFrequencies(256)
	bqWs := response.BiquadFrequencies(256)
	out := make([]complex128, 256)

	ok := c.Compute([]eq.Cascade{ideal}, []eq.Cascade{iir}, protoWs, bqWs, out)
	if !ok {
		t.Fatal("got false, want true for one active band")
	}
	for i := 0; i < matchedKStart; i++ {
		if out[i] != 1 {
			t.Errorf("bin %d: got %v, want identity below matchedKStart", i, out[i])
		}
	}
}

func TestCalculatorZeroStructureIsMagnitudeOnly(t *testing.T) {
	c := NewCalculator(Zero, 256)
	ideal := coeff.Design(coeff.IdealSet, eq.Peak, eq.Order2, 1000, 48000, 12, 1)
	iir := coeff.Design(coeff.MatchedSet, eq.Peak, eq.Order2, 1000, 48000, 12, 1)
	protoWs := response.PrototypeFrequencies(256)
	bqWs := response.BiquadFrequencies(256)
	out := make([]complex128, 256)

	c.Compute([]eq.Cascade{ideal}, []eq.Cascade{iir}, protoWs, bqWs, out)
	for i := zeroKStart; i < len(out)-1; i++ {
		if imag(out[i]) != 0 {
			t.Errorf("bin %d: got %v, want a real (magnitude-only) correction", i, out[i])
		}
	}
}

func TestCalculatorZeroClampsExtremeRatios(t *testing.T) {
	c := NewCalculator(Zero, 16)
	out := make([]complex128, 16)
	for i := range out {
		out[i] = 1e12 // absurdly large ratio, simulating a near-zero realized response
	}
	c.clamp(out)
	hi := eq.DbToGain(zeroClampDB)
	for i, v := range out {
		if cmplx.Abs(v) > hi+1e-6 {
			t.Errorf("bin %d: got magnitude %f, want clamped to <= %f", i, cmplx.Abs(v), hi)
		}
	}
}

func TestCalculatorOrderByStructure(t *testing.T) {
	if Matched.DefaultOrder() != 9 {
		t.Errorf("Matched: got %d, want 9", Matched.DefaultOrder())
	}
	if Mixed.DefaultOrder() != 11 {
		t.Errorf("Mixed: got %d, want 11", Mixed.DefaultOrder())
	}
	if Zero.DefaultOrder() != 10 {
		t.Errorf("Zero: got %d, want 10", Zero.DefaultOrder())
	}
}
