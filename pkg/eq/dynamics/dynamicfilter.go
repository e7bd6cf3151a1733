package dynamics

import (
	"github.com/dynaudio/dyneq/pkg/eq"
	"github.com/dynaudio/dyneq/pkg/eq/coeff"
	"github.com/dynaudio/dyneq/pkg/eq/kernel"
)

// Kernel is the subset of TDFCascade/SVFCascade's API DynamicFilter
// needs: recompute coefficients from a freshly designed cascade and
// run one sample at a time. Both cascade kernels satisfy it as-is.
type Kernel interface {
	UpdateFromCascade(cascade eq.Cascade)
	ProcessSample(ch int, input float64) float64
	Process(buf []float32, ch int)
	Reset()
}

// DynamicFilter drives a band's realization kernel from a side-chain
// portion (C11): the dry signal is filtered with coefficients mixed
// between the band's base and target gain/Q, the mix weight coming
// from SideState's smoothed envelope. Grounded literally on
// original_source's dsp/filter/dynamic_filter/dynamic_iir_filter.hpp
// processDynamic: per-sample portion computation, gain/Q interpolation,
// and a per-sample-vs-per-block choice of how often coefficients are
// actually re-derived. A parallel-realized band (ParallelKernel) skips
// coefficient re-derivation entirely and interpolates only the
// dry/wet multiplier, per parallel.hpp's cheaper gain-only path.
type DynamicFilter struct {
	Side *SideState

	main     Kernel
	parallel *kernel.ParallelKernel

	funcSet    coeff.FuncSet
	typ        eq.FilterType
	order      eq.Order
	freq       float64
	sampleRate float64

	dynamicOn, dynamicBypass, isPerSample bool
}

// NewDynamicFilter wraps a direct TDF/SVF cascade kernel with dynamic
// side-chain modulation. funcSet/typ/order/freq/sampleRate are the
// fixed, non-dynamic design parameters FilterDesign needs to rebuild
// the cascade whenever the mixed gain/Q changes.
func NewDynamicFilter(main Kernel, side *SideState, funcSet coeff.FuncSet, typ eq.FilterType, order eq.Order, freq, sampleRate float64) *DynamicFilter {
	return &DynamicFilter{
		Side: side, main: main,
		funcSet: funcSet, typ: typ, order: order, freq: freq, sampleRate: sampleRate,
	}
}

// NewParallelDynamicFilter wraps a ParallelKernel: only gain is ever
// dynamic for a parallel-realized band, so no coefficient re-derivation
// is needed, only the dry/wet multiplier.
func NewParallelDynamicFilter(parallel *kernel.ParallelKernel, side *SideState) *DynamicFilter {
	return &DynamicFilter{Side: side, parallel: parallel}
}

// SetDynamicOn enables/disables side-chain modulation; when off the
// kernel runs statically at its last-designed coefficients.
func (d *DynamicFilter) SetDynamicOn(on bool) { d.dynamicOn = on }

// SetDynamicBypass keeps the follower running (so it doesn't snap on
// re-enable) but forces the trigger portion to zero every sample.
func (d *DynamicFilter) SetDynamicBypass(on bool) { d.dynamicBypass = on }

// SetPerSample selects whether coefficients are re-derived every
// sample (true; needed when the side signal is fast-changing) or once
// per block using the first sample's portion (false; far cheaper).
func (d *DynamicFilter) SetPerSample(on bool) { d.isPerSample = on }

// SetDesign retargets the fixed design parameters FilterDesign uses to
// rebuild the cascade on every gain/Q change, without reallocating the
// DynamicFilter itself. A no-op on a parallel-wrapped instance, which
// never re-derives coefficients.
func (d *DynamicFilter) SetDesign(funcSet coeff.FuncSet, typ eq.FilterType, order eq.Order, freq, sampleRate float64) {
	if d.parallel != nil {
		return
	}
	d.funcSet, d.typ, d.order, d.freq, d.sampleRate = funcSet, typ, order, freq, sampleRate
}

// Reset resets the side-chain follower to zero (the tracker keeps its
// history) and clears the kernel state.
func (d *DynamicFilter) Reset() {
	d.Side.Reset()
	if d.parallel != nil {
		d.parallel.Reset()
	} else {
		d.main.Reset()
	}
}

// Process runs one block through the filter. mainBuf and sideBuf are
// equal-length per-channel float32 slices; sideBuf may have a
// different channel count than mainBuf (e.g. a mono side feeding a
// stereo main).
func (d *DynamicFilter) Process(mainBuf [][]float32, sideBuf [][]float32) {
	if !d.dynamicOn {
		d.processStatic(mainBuf)
		return
	}
	numSamples := len(mainBuf[0])
	sideChannels := make([]float64, len(sideBuf))
	for i := 0; i < numSamples; i++ {
		for c := range sideBuf {
			sideChannels[c] = float64(sideBuf[c][i])
		}
		p := d.Side.Portion(sideChannels)
		if d.dynamicBypass {
			p = 0
		}
		portion := d.Side.Advance(p)
		gain, q := d.Side.Mix(portion)

		if d.parallel != nil {
			d.parallel.UpdateGain(gain)
			for ch := range mainBuf {
				mainBuf[ch][i] = float32(d.parallel.ProcessSample(ch, float64(mainBuf[ch][i])))
			}
			continue
		}

		if d.isPerSample || i == 0 {
			d.main.UpdateFromCascade(coeff.Design(d.funcSet, d.typ, d.order, d.freq, d.sampleRate, gain, q))
		}
		for ch := range mainBuf {
			mainBuf[ch][i] = float32(d.main.ProcessSample(ch, float64(mainBuf[ch][i])))
		}
	}
}

func (d *DynamicFilter) processStatic(mainBuf [][]float32) {
	if d.parallel != nil {
		for ch := range mainBuf {
			d.parallel.Process(mainBuf[ch], ch)
		}
		return
	}
	for ch := range mainBuf {
		d.main.Process(mainBuf[ch], ch)
	}
}
