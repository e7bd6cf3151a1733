package dynamics

import "math"

// SideState is the per-band dynamic side-chain handler (C10):
// orchestrates the per-block side signal into a per-sample gain
// portion, composing Tracker (RMS ring) and Follower (envelope).
// Grounded literally on original_source's
// dsp/filter/dynamic_filter/dynamic_side_handler.hpp, including the
// RMS/abs dual path and its blend mix (SPEC_FULL §12).
type SideState struct {
	follower *Follower
	tracker  *Tracker

	sampleRate float64

	baseGain, targetGain, gainDiff float64
	baseQ, targetQ, qDiff          float64

	threshold, knee  float64
	lowAbs, slopeAbs float64
	lowSqr, slopeSqr float64

	useRMS         bool
	rmsLengthSec   float64
	rmsLengthCount int

	rmsMix, rmsMixC, rmsMixReverse float64
}

// NewSideState returns a handler with default knee 0.01 dB (matching
// the original's floor) and RMS disabled.
func NewSideState() *SideState {
	s := &SideState{
		follower: NewFollower(),
		knee:     0.01,
		rmsMixC:  1,
	}
	s.updateTK()
	return s
}

// Prepare sizes the RMS ring for the largest RMS window the handler
// will ever use and installs the sample rate.
func (s *SideState) Prepare(sampleRate, rmsMaxLengthSeconds float64) {
	s.sampleRate = sampleRate
	s.follower.Prepare(sampleRate)
	s.tracker = NewTracker(int(math.Round(rmsMaxLengthSeconds * sampleRate)))
	s.SetRMSLength(s.rmsLengthSec)
}

// Reset pins the follower to zero; the tracker keeps running so its
// RMS estimate stays warm across a dynamic-bypass toggle.
func (s *SideState) Reset() {
	s.follower.Reset(0)
}

// SetBaseGain sets the filter's static (non-dynamic) gain.
func (s *SideState) SetBaseGain(g float64) {
	s.baseGain = g
	s.gainDiff = s.targetGain - s.baseGain
}

// SetTargetGain sets the gain reached when the side signal fully
// triggers the dynamic range.
func (s *SideState) SetTargetGain(g float64) {
	s.targetGain = g
	s.gainDiff = s.targetGain - s.baseGain
}

// SetBaseQ sets the filter's static (non-dynamic) Q.
func (s *SideState) SetBaseQ(q float64) {
	s.baseQ = q
	s.qDiff = s.targetQ - s.baseQ
}

// SetTargetQ sets the Q reached when the side signal fully triggers
// the dynamic range.
func (s *SideState) SetTargetQ(q float64) {
	s.targetQ = q
	s.qDiff = s.targetQ - s.baseQ
}

// SetThreshold sets the trigger threshold in dB.
func (s *SideState) SetThreshold(t float64) {
	s.threshold = t
	s.updateTK()
}

// SetKnee sets the knee width in dB (floored at 0.01 like the
// original, since slope_sqr_/slope_abs_ divide by it).
func (s *SideState) SetKnee(w float64) {
	if w < 0.01 {
		w = 0.01
	}
	s.knee = w
	s.updateTK()
}

func (s *SideState) updateTK() {
	low := s.threshold - s.knee
	slope := 0.5 / s.knee
	s.lowAbs = low / 20
	s.slopeAbs = slope * 20
	s.lowSqr = low / 10
	s.slopeSqr = slope * 10
}

// SetRMSLength switches between the RMS path (length > ~0) and the
// instantaneous abs/sum-of-squares path (length ~= 0).
func (s *SideState) SetRMSLength(lengthSeconds float64) {
	if lengthSeconds > 1e-6 {
		s.useRMS = true
		s.rmsLengthSec = lengthSeconds
		s.rmsLengthCount = int(math.Round(lengthSeconds * s.sampleRate))
		if s.rmsLengthCount < 1 {
			s.rmsLengthCount = 1
		}
		s.tracker.SetLength(s.rmsLengthCount)
		s.rmsMixReverse = s.rmsMix / float64(s.rmsLengthCount)
	} else {
		s.useRMS = false
		s.tracker.Reset()
	}
}

// SetRMSMix sets the blend between the pure instantaneous square
// (rmsMix=0) and the windowed RMS sum (rmsMix=1) in the RMS path.
func (s *SideState) SetRMSMix(mix float64) {
	s.rmsMix = mix
	s.rmsMixC = 1 - mix
	if s.rmsLengthCount > 0 {
		s.rmsMixReverse = mix / float64(s.rmsLengthCount)
	}
}

// Portion converts one side-channel sample frame (one sample per
// channel, already optionally pre-filtered) into the dynamic trigger
// portion p in [0,1]: squared, knee-clamped dB distance from
// threshold.
func (s *SideState) Portion(sideChannels []float64) float64 {
	var x float64
	if s.useRMS {
		square := 0.0
		for _, v := range sideChannels {
			square += v * v
		}
		sum := s.tracker.Push(square)
		x = square*s.rmsMixC + sum*s.rmsMixReverse
		x = math.Log10(math.Max(x, 1e-24))
		x = (x - s.lowSqr) * s.slopeSqr
	} else if len(sideChannels) == 1 {
		x = math.Log10(math.Max(math.Abs(sideChannels[0]), 1e-12))
		x = (x - s.lowAbs) * s.slopeAbs
	} else {
		square := 0.0
		for _, v := range sideChannels {
			square += v * v
		}
		x = math.Log10(math.Max(square, 1e-24))
		x = (x - s.lowSqr) * s.slopeSqr
	}
	x = clamp01(x)
	return x * x
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// Follower exposes the underlying envelope follower (for dynamic
// filters that need to drive it with a specific SState).
func (s *SideState) Follower() *Follower { return s.follower }

// CurrentGain returns the gain at the follower's current (unstepped)
// output.
func (s *SideState) CurrentGain() float64 {
	return s.baseGain + s.follower.Current()*s.gainDiff
}

// NextGain advances the follower by one sample of trigger portion p
// and returns the resulting interpolated gain.
func (s *SideState) NextGain(p float64) float64 {
	return s.baseGain + s.follower.ProcessSample(p)*s.gainDiff
}

// Advance steps the follower by one sample of trigger portion p and
// returns the smoothed portion, for callers (DynamicFilter) that need
// to mix more than one parameter off the same smoothed value.
func (s *SideState) Advance(p float64) float64 {
	return s.follower.ProcessSample(p)
}

// Mix converts an already-smoothed portion into the interpolated
// gain and Q for that portion.
func (s *SideState) Mix(portion float64) (gain, q float64) {
	return s.baseGain + portion*s.gainDiff, s.baseQ + portion*s.qDiff
}
