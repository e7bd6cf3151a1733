package param

import "math"

// SmoothedKind selects a SmoothedValue's ramp law.
type SmoothedKind int

const (
	Lin    SmoothedKind = iota // finite linear ramp over a fixed sample count
	Mul                        // finite multiplicative ramp over a fixed sample count
	FixLin                     // fixed-rate linear ramp, independent of distance
	FixMul                     // fixed-rate multiplicative ramp, independent of distance
)

// SmoothedValue is a per-sample ramp used to de-zipper freq/gain/Q
// changes, literally grounded on original_source's
// dsp/chore/smoothed_value.hpp (four SmoothedTypes variants, the
// 1e-10 snap-to-target shortcut, FixLin/FixMul's increase/decrease
// increment pair).
type SmoothedValue struct {
	kind SmoothedKind

	current, target, inc     float64
	increaseInc, decreaseInc float64
	maxCount, count          int
	increasing               bool
}

// NewSmoothedValue returns a value fixed at x with no ramp running.
func NewSmoothedValue(kind SmoothedKind, x float64) *SmoothedValue {
	s := &SmoothedValue{kind: kind}
	s.SetCurrentAndTarget(x)
	return s
}

// Prepare sizes the ramp for sampleRate and rampLengthSeconds. For
// Lin/Mul this sets the finite sample count; for FixLin/FixMul it sets
// the fixed per-sample increment.
func (s *SmoothedValue) Prepare(sampleRate, rampLengthSeconds float64) {
	switch s.kind {
	case Lin, Mul:
		s.maxCount = int(sampleRate * rampLengthSeconds)
	case FixLin:
		s.inc = 1.0 / (sampleRate * rampLengthSeconds)
		s.increaseInc = s.inc
		s.decreaseInc = -s.inc
	case FixMul:
		s.inc = math.Pow(2, 1.0/(sampleRate*rampLengthSeconds))
		s.increaseInc = s.inc
		s.decreaseInc = 1.0 / s.inc
	}
}

// SetTarget starts a ramp toward x, or snaps immediately if the
// current value is already within 1e-10 of x.
func (s *SmoothedValue) SetTarget(x float64) {
	s.target = x
	if math.Abs(s.current-s.target) < 1e-10 {
		s.count = 0
		return
	}
	switch s.kind {
	case Lin:
		s.inc = (s.target - s.current) / float64(s.maxCount)
		s.count = s.maxCount
	case Mul:
		s.inc = math.Exp(math.Log(s.target/s.current) / float64(s.maxCount))
		s.count = s.maxCount
	case FixLin, FixMul:
		s.count = 1
		s.increasing = s.target > s.current
	}
}

// SetCurrentAndTarget pins the value at x with no ramp running.
func (s *SmoothedValue) SetCurrentAndTarget(x float64) {
	s.current = x
	s.target = x
	s.count = 0
}

// Current returns the current value without advancing it.
func (s *SmoothedValue) Current() float64 { return s.current }

// Target returns the ramp's destination value.
func (s *SmoothedValue) Target() float64 { return s.target }

// IsSmoothing reports whether a ramp is in progress.
func (s *SmoothedValue) IsSmoothing() bool { return s.count > 0 }

// Next advances the ramp by one sample and returns the new value.
func (s *SmoothedValue) Next() float64 {
	if s.count == 0 {
		return s.current
	}
	switch s.kind {
	case Lin:
		s.current += s.inc
		s.count--
	case Mul:
		s.current *= s.inc
		s.count--
	case FixLin:
		if s.increasing {
			s.current += s.increaseInc
			if s.current > s.target {
				s.current = s.target
				s.count = 0
			}
		} else {
			s.current += s.decreaseInc
			if s.current < s.target {
				s.current = s.target
				s.count = 0
			}
		}
	case FixMul:
		if s.increasing {
			s.current *= s.increaseInc
			if s.current > s.target {
				s.current = s.target
				s.count = 0
			}
		} else {
			s.current *= s.decreaseInc
			if s.current < s.target {
				s.current = s.target
				s.count = 0
			}
		}
	}
	return s.current
}
