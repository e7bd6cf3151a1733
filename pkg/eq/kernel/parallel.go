package kernel

import "github.com/dynaudio/dyneq/pkg/eq"

// ParallelOverride reports whether a band should be realized through
// the parallel dry+wet topology rather than a direct TDF cascade, and
// if so which pass-filter shape to actually design: Peak at order<=4
// becomes a BandPass wet path, LowShelf/HighShelf at order<=2 become
// LowPass/HighPass wet paths. Grounded on parallel.hpp's updateCoeffs
// branch (kPeak/kLowShelf/kHighShelf special-cased, everything else
// falls through to a plain, non-parallel cascade).
func ParallelOverride(t eq.FilterType, order eq.Order) (override eq.FilterType, parallel bool) {
	switch {
	case t == eq.Peak && order <= eq.Order4:
		return eq.BandPass, true
	case t == eq.LowShelf && order <= eq.Order2:
		return eq.LowPass, true
	case t == eq.HighShelf && order <= eq.Order2:
		return eq.HighPass, true
	default:
		return t, false
	}
}

// ParallelKernel realizes Peak/Shelf bands as dry signal plus a scaled
// pass-filter wet path (C5): output = dry + (10^(gain/20)-1) * wet.
// When ParallelOverride reports parallel=false it behaves exactly like
// a TDFCascade. Grounded on parallel.hpp's Parallel class, including
// the gain-only-update fast path that skips re-deriving coefficients
// when only the multiplier changes.
type ParallelKernel struct {
	wet        TDFCascade
	parallel   bool
	multiplier float64
	scratch    [][]float64 // per-channel, len == max block size
}

// Prepare allocates per-channel wet-path state and the dry/wet scratch
// buffer, sized to the largest block the host will ever hand in.
func (p *ParallelKernel) Prepare(numChannels, maxBlockSize int) {
	p.wet.Prepare(numChannels)
	p.scratch = make([][]float64, numChannels)
	for i := range p.scratch {
		p.scratch[i] = make([]float64, maxBlockSize)
	}
}

func (p *ParallelKernel) Reset() {
	p.wet.Reset()
}

// UpdateFromCascade installs new wet-path coefficients and the parallel
// flag/multiplier together (a full coefficient-recompute call).
func (p *ParallelKernel) UpdateFromCascade(cascade eq.Cascade, parallel bool, gainDB float64) {
	p.parallel = parallel
	p.wet.UpdateFromCascade(cascade)
	p.UpdateGain(gainDB)
}

// UpdateGain updates only the dry/wet multiplier. When the band is not
// parallel-realized this is a no-op: a direct cascade's gain is baked
// into its coefficients by FilterDesign, not applied as a multiplier.
func (p *ParallelKernel) UpdateGain(gainDB float64) {
	if p.parallel {
		p.multiplier = eq.DbToGain(gainDB) - 1
	}
}

// ProcessSample runs one sample through the kernel for channel ch.
func (p *ParallelKernel) ProcessSample(ch int, input float64) float64 {
	if !p.parallel {
		return p.wet.ProcessSample(ch, input)
	}
	wet := p.wet.ProcessSample(ch, input)
	return input + wet*p.multiplier
}

// Process filters buf in place for channel ch.
func (p *ParallelKernel) Process(buf []float32, ch int) {
	if !p.parallel {
		p.wet.Process(buf, ch)
		return
	}
	scratch := p.scratch[ch][:len(buf)]
	for i, x := range buf {
		scratch[i] = float64(x)
	}
	p.wet.ProcessF64(scratch, ch)
	for i, x := range buf {
		buf[i] = x + float32(scratch[i]*p.multiplier)
	}
}

// ProcessF64 filters a float64 buffer in place through the cascade.
func (c *TDFCascade) ProcessF64(buf []float64, ch int) {
	for i, x := range buf {
		buf[i] = c.ProcessSample(ch, x)
	}
}
