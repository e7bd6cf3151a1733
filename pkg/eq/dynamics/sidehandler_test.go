package dynamics

import (
	"math"
	"testing"
)

func TestSideStatePortionIsZeroBelowThreshold(t *testing.T) {
	s := NewSideState()
	s.Prepare(48000, 0.05)
	s.SetThreshold(-6)
	s.SetKnee(1)
	p := s.Portion([]float64{0.001}) // well below -6dB
	if p != 0 {
		t.Errorf("got portion %f, want 0 for a signal well below threshold", p)
	}
}

func TestSideStatePortionSaturatesAboveThreshold(t *testing.T) {
	s := NewSideState()
	s.Prepare(48000, 0.05)
	s.SetThreshold(-40)
	s.SetKnee(1)
	p := s.Portion([]float64{1.0}) // 0dBFS, far above threshold
	if p != 1 {
		t.Errorf("got portion %f, want 1 for a signal well above threshold", p)
	}
}

func TestSideStateMixInterpolatesGainAndQ(t *testing.T) {
	s := NewSideState()
	s.Prepare(48000, 0.05)
	s.SetBaseGain(0)
	s.SetTargetGain(12)
	s.SetBaseQ(0.5)
	s.SetTargetQ(2.5)

	g0, q0 := s.Mix(0)
	if g0 != 0 || q0 != 0.5 {
		t.Errorf("portion=0: got (gain=%f, q=%f), want (0, 0.5)", g0, q0)
	}
	g1, q1 := s.Mix(1)
	if g1 != 12 || q1 != 2.5 {
		t.Errorf("portion=1: got (gain=%f, q=%f), want (12, 2.5)", g1, q1)
	}
	gHalf, _ := s.Mix(0.5)
	if math.Abs(gHalf-6) > 1e-9 {
		t.Errorf("portion=0.5: got gain %f, want 6", gHalf)
	}
}

func TestSideStateResetPinsFollowerToZero(t *testing.T) {
	s := NewSideState()
	s.Prepare(48000, 0.05)
	s.Advance(1.0)
	s.Advance(1.0)
	s.Reset()
	if got := s.Advance(0); got != 0 {
		t.Errorf("got %f immediately after Reset, want 0", got)
	}
}

func TestSideStateRMSPathSaturatesForLoudSustainedInput(t *testing.T) {
	s := NewSideState()
	s.Prepare(48000, 0.05)
	s.SetThreshold(-40)
	s.SetKnee(6)
	s.SetRMSLength(0.01)

	var p float64
	for i := 0; i < 1000; i++ {
		p = s.Portion([]float64{1.0})
	}
	if p < 0.9 {
		t.Errorf("sustained 0dBFS through the RMS path: got portion %f, want close to 1", p)
	}
}
