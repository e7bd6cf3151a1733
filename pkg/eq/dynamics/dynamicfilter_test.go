package dynamics

import (
	"math"
	"testing"

	"github.com/dynaudio/dyneq/pkg/eq"
	"github.com/dynaudio/dyneq/pkg/eq/coeff"
	"github.com/dynaudio/dyneq/pkg/eq/kernel"
)

func newTestDynamicFilter(sampleRate float64) (*DynamicFilter, *SideState) {
	var k kernel.TDFCascade
	k.Prepare(1)
	side := NewSideState()
	side.Prepare(sampleRate, 0.05)
	return NewDynamicFilter(&k, side, coeff.MatchedSet, eq.Peak, eq.Order2, 1000, sampleRate), side
}

func TestDynamicFilterStaticWhenDynamicOff(t *testing.T) {
	d, side := newTestDynamicFilter(48000)
	side.SetBaseGain(6)
	side.SetTargetGain(-12)
	d.SetDynamicOn(false)

	main := [][]float32{{1, 0, -1, 0}}
	side1 := [][]float32{{1, 1, 1, 1}}
	d.Process(main, side1)

	// processStatic never re-derives coefficients, so the kernel still
	// ran at whatever cascade it was last told about (none yet): since
	// main never had UpdateFromCascade called, it passes through an
	// identity cascade's default zero state. The invariant under test
	// is just that dynamic-off never calls Side.Advance, leaving the
	// follower unmoved.
	if side.follower.Current() != 0 {
		t.Errorf("follower advanced while dynamic was off: %f", side.follower.Current())
	}
}

func TestDynamicFilterBypassZeroesTriggerPortion(t *testing.T) {
	d, side := newTestDynamicFilter(48000)
	side.SetBaseGain(0)
	side.SetTargetGain(-24)
	side.SetThreshold(-80)
	side.SetKnee(1)
	d.SetDynamicOn(true)
	d.SetDynamicBypass(true)

	main := [][]float32{make([]float32, 2000)}
	sideBuf := [][]float32{make([]float32, 2000)}
	for i := range sideBuf[0] {
		sideBuf[0][i] = 1.0 // loud enough to fully trigger if not bypassed
	}
	d.Process(main, sideBuf)

	gain := side.CurrentGain()
	if math.Abs(gain-0) > 1.0 {
		t.Errorf("bypass should hold the follower near its base gain, got %f (base 0, target -24)", gain)
	}
}

func TestDynamicFilterParallelSkipsCoefficientRederivation(t *testing.T) {
	var pk kernel.ParallelKernel
	pk.Prepare(1, 64)
	side := NewSideState()
	side.Prepare(48000, 0.05)
	d := NewParallelDynamicFilter(&pk, side)

	// SetDesign must be a no-op for a parallel-wrapped filter: there is
	// no funcSet/typ/order/freq to retarget.
	d.SetDesign(coeff.MatchedSet, eq.Peak, eq.Order2, 500, 44100)
	if d.funcSet.Peak2 != nil || d.sampleRate != 0 {
		t.Error("SetDesign should be a no-op on a parallel-wrapped DynamicFilter")
	}
}

func TestDynamicFilterResetClearsSideAndKernel(t *testing.T) {
	d, side := newTestDynamicFilter(48000)
	side.Advance(1.0)
	d.Reset()
	if side.follower.Current() != 0 {
		t.Errorf("got follower %f after Reset, want 0", side.follower.Current())
	}
}
