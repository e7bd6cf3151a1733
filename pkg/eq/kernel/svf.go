package kernel

import (
	"math"

	"github.com/dynaudio/dyneq/pkg/eq"
)

// svfCoeffs is the zero-delay-feedback state-variable-filter
// coefficient set derived from an arbitrary BiquadCoeffs, per
// svf_base.hpp's updateFromBiquad. This is a genuine generalization:
// the mapping from (a0,a1,a2,b0,b1,b2) to (g,R2,h,chp,cbp,clp) works
// for any stable biquad, not just the textbook SVF forms.
type svfCoeffs struct {
	g, r2, h      float64
	chp, cbp, clp float64
}

func newSVFCoeffs(c eq.BiquadCoeffs) svfCoeffs {
	temp1 := math.Sqrt(math.Abs(-c[eq.A0] - c[eq.A1] - c[eq.A2]))
	temp2 := math.Sqrt(math.Abs(-c[eq.A0] + c[eq.A1] - c[eq.A2]))
	g := temp1 / temp2
	r2 := 2 * (c[eq.A0] - c[eq.A2]) / (temp1 * temp2)
	h := 1 / (g*(r2+g) + 1)
	return svfCoeffs{
		g: g, r2: r2, h: h,
		chp: (c[eq.B0] - c[eq.B1] + c[eq.B2]) / (c[eq.A0] - c[eq.A1] + c[eq.A2]),
		cbp: 2 * (c[eq.B0] - c[eq.B2]) / (temp1 * temp2),
		clp: (c[eq.B0] + c[eq.B1] + c[eq.B2]) / (c[eq.A0] + c[eq.A1] + c[eq.A2]),
	}
}

// SVFSection is one second-order zero-delay-feedback state-variable
// section with per-channel integrator state.
type SVFSection struct {
	coeffs svfCoeffs
	s1, s2 []float64
}

func (s *SVFSection) Prepare(numChannels int) {
	s.s1 = make([]float64, numChannels)
	s.s2 = make([]float64, numChannels)
}

func (s *SVFSection) Reset() {
	for i := range s.s1 {
		s.s1[i] = 0
		s.s2[i] = 0
	}
}

func (s *SVFSection) UpdateFromBiquad(c eq.BiquadCoeffs) {
	s.coeffs = newSVFCoeffs(c)
}

// ProcessSample runs one sample through the section for channel ch.
func (s *SVFSection) ProcessSample(ch int, input float64) float64 {
	c := s.coeffs
	yHP := c.h * (input - s.s1[ch]*(c.g+c.r2) - s.s2[ch])
	yBP := yHP*c.g + s.s1[ch]
	s.s1[ch] = yHP*c.g + yBP
	yLP := yBP*c.g + s.s2[ch]
	s.s2[ch] = yBP*c.g + yLP
	return c.chp*yHP + c.cbp*yBP + c.clp*yLP
}

// SVFCascade is the ordered, fixed-capacity SVFKernel of §4.4: the
// state-variable zero-latency realization.
type SVFCascade struct {
	sections [eq.MaxSections]SVFSection
	count    int
}

func (c *SVFCascade) Prepare(numChannels int) {
	for i := range c.sections {
		c.sections[i].Prepare(numChannels)
	}
}

func (c *SVFCascade) Reset() {
	for i := 0; i < len(c.sections); i++ {
		c.sections[i].Reset()
	}
}

func (c *SVFCascade) UpdateFromCascade(cascade eq.Cascade) {
	c.count = cascade.Count
	for i := 0; i < cascade.Count; i++ {
		c.sections[i].UpdateFromBiquad(cascade.Sections[i])
	}
}

func (c *SVFCascade) ProcessSample(ch int, input float64) float64 {
	sample := input
	for i := 0; i < c.count; i++ {
		sample = c.sections[i].ProcessSample(ch, sample)
	}
	return sample
}

// Process filters buf in place for channel ch.
func (c *SVFCascade) Process(buf []float32, ch int) {
	for i, x := range buf {
		buf[i] = float32(c.ProcessSample(ch, float64(x)))
	}
}

func (c *SVFCascade) Count() int { return c.count }
