package dynamics

import "math"

// SState selects the Follower's punch-smooth behavior.
type SState int

const (
	Off  SState = iota // plain one-pole attack/release follower
	Full               // cascaded punch-smooth, fully engaged
	Mix                // crossfade between Off and Full by smooth portion
)

// expFactor is -2*pi*1000, the numerator of the attack/release
// one-pole time-constant conversion (milliseconds -> coefficient),
// grounded on ps_follower.hpp's exp_factor_.
const expFactor = -2 * math.Pi * 1000

// Follower is a one-pole envelope follower with an optional
// punch-smooth cascade, literally grounded on original_source's
// dsp/compressor/follower/ps_follower.hpp.
type Follower struct {
	y, state float64
	exp      float64

	attack, release float64
	attackMs        float64
	releaseMs       float64
	smooth          float64
	smoothPortion   float64
	state_          SState
}

// NewFollower returns a follower whose time constants are computed for
// a 48kHz sample rate; call Prepare to install the real one.
func NewFollower() *Follower {
	f := &Follower{attackMs: 50, releaseMs: 100, exp: -0.1308996938995747}
	f.update()
	return f
}

// Prepare installs the sample rate; it does not change attack/release
// targets, only recomputes their coefficients.
func (f *Follower) Prepare(sampleRate float64) {
	f.exp = expFactor / sampleRate
	f.update()
}

// Reset pins the follower's state to x.
func (f *Follower) Reset(x float64) {
	f.y = x
	f.state = x
}

// SetAttack sets the attack time constant in milliseconds.
func (f *Follower) SetAttack(ms float64) {
	f.attackMs = ms
	f.update()
}

// SetRelease sets the release time constant in milliseconds.
func (f *Follower) SetRelease(ms float64) {
	f.releaseMs = ms
	f.update()
}

// SetSmooth sets the punch-smooth crossfade portion in [0,1]; below
// 0.0001 the follower runs in Off mode, above 0.9999 in Full mode,
// otherwise Mix.
func (f *Follower) SetSmooth(x float64) {
	f.smoothPortion = x
	f.update()
}

// State reports the follower's current punch-smooth mode.
func (f *Follower) State() SState { return f.state_ }

func (f *Follower) update() {
	if f.attackMs < 0.001 {
		f.attack = 0
	} else {
		f.attack = math.Exp(f.exp / f.attackMs)
	}
	if f.releaseMs < 0.001 {
		f.release = 0
	} else {
		f.release = math.Exp(f.exp / f.releaseMs)
	}
	f.smooth = f.smoothPortion
	switch {
	case f.smooth < 0.0001:
		f.state_ = Off
	case f.smooth > 0.9999:
		f.state_ = Full
	default:
		f.state_ = Mix
	}
}

// ProcessSample advances the follower by one sample and returns the
// new envelope value, per its current State().
func (f *Follower) ProcessSample(x float64) float64 {
	switch f.state_ {
	case Off:
		if x >= f.y {
			f.y = f.attack*(f.y-x) + x
		} else {
			f.y = f.release*(f.y-x) + x
		}
	case Full:
		f.state = math.Max(x, f.release*(f.state-x)+x)
		f.y = f.attack*(f.y-f.state) + f.state
	default: // Mix
		f.state = math.Max(x, f.release*(f.state-x)+x)
		y1 := f.attack*(f.y-f.state) + f.state
		var y2 float64
		if x >= f.y {
			y2 = f.attack*(f.y-x) + x
		} else {
			y2 = f.release*(f.y-x) + x
		}
		f.y = f.smooth*(y1-y2) + y2
	}
	return f.y
}

// Current returns the follower's current output without advancing it.
func (f *Follower) Current() float64 { return f.y }
