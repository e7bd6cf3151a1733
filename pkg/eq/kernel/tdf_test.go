package kernel

import (
	"math"
	"testing"

	"github.com/dynaudio/dyneq/pkg/eq"
	"github.com/dynaudio/dyneq/pkg/eq/coeff"
)

func TestTDFCascadeSilenceInSilenceOut(t *testing.T) {
	var c TDFCascade
	c.Prepare(1)
	cascade := coeff.Design(coeff.MatchedSet, eq.Peak, eq.Order2, 1000, 48000, 6, 1)
	c.UpdateFromCascade(cascade)

	buf := make([]float32, 64)
	c.Process(buf, 0)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("sample %d: got %f from all-zero input, want 0", i, v)
		}
	}
}

func TestTDFCascadeResetClearsState(t *testing.T) {
	var c TDFCascade
	c.Prepare(1)
	cascade := coeff.Design(coeff.MatchedSet, eq.Peak, eq.Order2, 1000, 48000, 12, 1)
	c.UpdateFromCascade(cascade)

	impulse := make([]float32, 8)
	impulse[0] = 1
	c.Process(impulse, 0)

	afterImpulse := c.ProcessSample(0, 0)
	if afterImpulse == 0 {
		t.Fatal("expected nonzero ringing after an impulse before reset")
	}

	c.Reset()
	if v := c.ProcessSample(0, 0); v != 0 {
		t.Errorf("got %f after Reset with zero input, want 0", v)
	}
}

func TestTDFCascadeStableForUnitDCInput(t *testing.T) {
	var c TDFCascade
	c.Prepare(1)
	cascade := coeff.Design(coeff.MatchedSet, eq.LowPass, eq.Order2, 1000, 48000, 0, 0.707)
	c.UpdateFromCascade(cascade)

	var last float64
	for i := 0; i < 4096; i++ {
		last = c.ProcessSample(0, 1.0)
	}
	if math.IsNaN(last) || math.IsInf(last, 0) || math.Abs(last) > 10 {
		t.Errorf("DC response diverged: %f", last)
	}
}

func TestTDFCascadeCountMatchesDesignedSections(t *testing.T) {
	var c TDFCascade
	c.Prepare(2)
	cascade := coeff.Design(coeff.MatchedSet, eq.LowPass, eq.Order8, 1000, 48000, 0, 0.707)
	c.UpdateFromCascade(cascade)
	if c.Count() != cascade.Count {
		t.Errorf("got %d active sections, want %d", c.Count(), cascade.Count)
	}
}
