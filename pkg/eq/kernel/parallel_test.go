package kernel

import (
	"testing"

	"github.com/dynaudio/dyneq/pkg/eq"
)

func TestParallelOverrideSelectsBandPassForLowOrderPeak(t *testing.T) {
	ft, isParallel := ParallelOverride(eq.Peak, eq.Order2)
	if !isParallel || ft != eq.BandPass {
		t.Errorf("got (%v, %v), want (BandPass, true)", ft, isParallel)
	}
}

func TestParallelOverrideFallsThroughForHighOrderPeak(t *testing.T) {
	ft, isParallel := ParallelOverride(eq.Peak, eq.Order8)
	if isParallel || ft != eq.Peak {
		t.Errorf("got (%v, %v), want (Peak, false)", ft, isParallel)
	}
}

func TestParallelOverrideSelectsPassFiltersForShelves(t *testing.T) {
	if ft, ok := ParallelOverride(eq.LowShelf, eq.Order2); !ok || ft != eq.LowPass {
		t.Errorf("LowShelf: got (%v, %v), want (LowPass, true)", ft, ok)
	}
	if ft, ok := ParallelOverride(eq.HighShelf, eq.Order2); !ok || ft != eq.HighPass {
		t.Errorf("HighShelf: got (%v, %v), want (HighPass, true)", ft, ok)
	}
}

func TestParallelKernelZeroGainIsTransparent(t *testing.T) {
	var p ParallelKernel
	p.Prepare(1, 64)
	ft, _ := ParallelOverride(eq.Peak, eq.Order2)
	_ = ft

	cascade := eq.Cascade{}
	cascade.Append(eq.BiquadCoeffs{1, 0, 0, 1, 0, 0})
	p.UpdateFromCascade(cascade, true, 0) // 0dB -> multiplier = 10^0-1 = 0

	buf := []float32{0.25, -0.5, 1.0}
	p.Process(buf, 0)
	want := []float32{0.25, -0.5, 1.0}
	for i := range buf {
		if buf[i] != want[i] {
			t.Errorf("sample %d: got %f, want %f (0dB parallel should be dry-only)", i, buf[i], want[i])
		}
	}
}

func TestParallelKernelUpdateGainIsNoOpWhenNotParallel(t *testing.T) {
	var p ParallelKernel
	p.Prepare(1, 64)
	cascade := eq.Cascade{}
	cascade.Append(eq.BiquadCoeffs{1, 0, 0, 1, 0, 0})
	p.UpdateFromCascade(cascade, false, 6)
	if p.multiplier != 0 {
		t.Errorf("got multiplier %f for a non-parallel kernel, want 0", p.multiplier)
	}
}
