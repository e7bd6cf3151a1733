package dynamics

// hardRatio is the computer's fixed compression ratio: spec.md §4.6
// calls it "ratio ~= 100 (i.e., acts as a threshold switch)" rather
// than a literal infinite-ratio clamp.
const hardRatio = 100

// Computer is a soft-knee hard-limiter gain computer, grounded on the
// teacher's pkg/dsp/dynamics/compressor.go computeGain (quadratic
// knee-position gain-reduction formula) fixed at hardRatio per spec:
// below T-W/2 passes through unchanged, above T+W/2 reduces almost
// all the way to threshold, and inside the knee interpolates
// quadratically between the two.
type Computer struct {
	threshold, knee float64
}

// NewComputer returns a computer with the given threshold and knee
// (both in dB).
func NewComputer(threshold, knee float64) *Computer {
	if knee < 0 {
		knee = 0
	}
	return &Computer{threshold: threshold, knee: knee}
}

// SetThreshold updates the threshold in dB.
func (c *Computer) SetThreshold(t float64) { c.threshold = t }

// SetKnee updates the knee width in dB (clamped to >= 0).
func (c *Computer) SetKnee(w float64) {
	if w < 0 {
		w = 0
	}
	c.knee = w
}

// Eval returns the compressed value for input dB x.
func (c *Computer) Eval(x float64) float64 {
	compressionRatio := 1 - 1.0/hardRatio
	lower := c.threshold - c.knee/2
	upper := c.threshold + c.knee/2
	overshoot := x - c.threshold
	switch {
	case x <= lower:
		return x
	case x >= upper:
		return x - overshoot*compressionRatio
	default:
		kneePos := (x - lower) / c.knee
		return x - kneePos*kneePos*overshoot*compressionRatio
	}
}

// ReductionAtKnee returns half the knee width, W/2, in dB.
func (c *Computer) ReductionAtKnee() float64 {
	return c.knee / 2
}
