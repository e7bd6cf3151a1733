// Package controller implements the orchestrator (C16): it owns every
// band's parameters, kernels, dynamic side-chain state, and FFT
// correction pipeline, and drives them through one block at a time.
// It is the only thing a host-facing processor talks to.
//
// Grounded on original_source's zlp/controller.hpp/.cpp: the
// prepare_buffer/process_dynamic/process_corrections three-phase
// block structure, the per-band EmptyCell-style dirty-flag
// reconciliation, the stereo/L/R/M/S routing dispatch, and the
// Off/Bypass/On reset-on-enter semantics. The buffer-plumbing shape
// (four planar []float32 slices, explicit sample-rate/max-block
// Prepare call) follows the teacher's pkg/framework/process/{context,multibus}.go
// and pkg/framework/plugin/processor.go's Initialize/SetActive naming,
// loosely: this package stays decoupled from the framework's bus
// types so it can be unit-tested without a host. No host adapter is
// included in this repository.
//
// Unlike original_source, which keeps three persistent correction
// pipelines (match/mixed/zero) per bus so switching structures never
// reallocates, this Controller keeps exactly one: FilterStructure is
// a single global selector, so only one structure's pipeline is ever
// active, and the other two original pipelines would sit permanently
// idle. SetStructure pays a one-time reallocation instead.
package controller

import (
	"io"
	"math"
	"os"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/dynaudio/dyneq/pkg/eq"
	"github.com/dynaudio/dyneq/pkg/eq/coeff"
	"github.com/dynaudio/dyneq/pkg/eq/correction"
	"github.com/dynaudio/dyneq/pkg/eq/dynamics"
	"github.com/dynaudio/dyneq/pkg/eq/kernel"
	"github.com/dynaudio/dyneq/pkg/eq/ms"
	"github.com/dynaudio/dyneq/pkg/eq/param"
	"github.com/dynaudio/dyneq/pkg/eq/response"
)

// MaxBands is the fixed band capacity, matching Cascade's fixed
// section capacity in spirit: every per-band array is sized at
// construction time so the audio thread never grows a slice.
const MaxBands = 16

// learnHalfLifeFast/Slow set the two histograms' decay half-lives, one
// tracking recent loudness for auto-threshold learning and one
// tracking a longer baseline for the "relative" threshold mode.
const (
	histLoDB, histHiDB = -80.0, 0.0
	histBins           = 128
	learnHalfLifeFast  = 10.0
	learnHalfLifeSlow  = 100.0
)

// rmsMaxLengthSeconds bounds the largest RMS tracker window any band
// may request (SideParameters has no explicit RMS-length field in the
// public parameter surface, so every band uses the instantaneous
// abs/square path; the capacity exists for future exposure).
const rmsMaxLengthSeconds = 0.05

// bandControl is the lock-free hand-off surface for one band: the
// core filter parameters reuse param.Cell (C6) verbatim, and
// everything Cell doesn't cover (status, routing, the dynamic/side
// parameter set) gets its own atomics and a single dirty flag,
// mirroring Cell's acquire/release protocol.
type bandControl struct {
	cell *param.Cell

	status atomic.Int32
	stereo atomic.Int32

	routingDirty atomic.Bool

	dynamicOn       atomic.Bool
	dynamicBypass   atomic.Bool
	dynamicRelative atomic.Bool
	dynamicLearn    atomic.Bool
	sideSwap        atomic.Bool

	targetGain atomic.Uint64
	targetQ    atomic.Uint64
	sideFreq   atomic.Uint64
	sideQ      atomic.Uint64
	threshold  atomic.Uint64
	knee       atomic.Uint64
	attackMs   atomic.Uint64
	releaseMs  atomic.Uint64

	dynamicDirty atomic.Bool
}

func newBandControl() *bandControl {
	bc := &bandControl{cell: param.NewCell()}
	bc.stereo.Store(int32(eq.Stereo))
	bc.targetQ.Store(math.Float64bits(0.707))
	bc.sideFreq.Store(math.Float64bits(1000))
	bc.sideQ.Store(math.Float64bits(0.707))
	bc.threshold.Store(math.Float64bits(-18))
	bc.knee.Store(math.Float64bits(6))
	bc.attackMs.Store(math.Float64bits(10))
	bc.releaseMs.Store(math.Float64bits(100))
	return bc
}

func (bc *bandControl) SetFreq(x float64)             { bc.cell.SetFreq(x) }
func (bc *bandControl) SetGain(x float64)             { bc.cell.SetGain(x) }
func (bc *bandControl) SetQ(x float64)                { bc.cell.SetQ(x) }
func (bc *bandControl) SetFilterType(t eq.FilterType) { bc.cell.SetFilterType(t) }
func (bc *bandControl) SetOrder(o eq.Order)           { bc.cell.SetOrder(o) }

func (bc *bandControl) SetStatus(s eq.Status) {
	bc.status.Store(int32(s))
	bc.routingDirty.Store(true)
}

func (bc *bandControl) SetStereo(m eq.StereoMode) {
	bc.stereo.Store(int32(m))
	bc.routingDirty.Store(true)
}

func (bc *bandControl) SetSideSwap(on bool) {
	bc.sideSwap.Store(on)
	bc.routingDirty.Store(true)
}

func (bc *bandControl) SetDynamicOn(on bool)       { bc.dynamicOn.Store(on); bc.dynamicDirty.Store(true) }
func (bc *bandControl) SetDynamicBypass(on bool)   { bc.dynamicBypass.Store(on); bc.dynamicDirty.Store(true) }
func (bc *bandControl) SetDynamicRelative(on bool) { bc.dynamicRelative.Store(on); bc.dynamicDirty.Store(true) }
func (bc *bandControl) SetDynamicLearn(on bool)    { bc.dynamicLearn.Store(on); bc.dynamicDirty.Store(true) }

func (bc *bandControl) SetTargetGain(g float64) {
	bc.targetGain.Store(math.Float64bits(g))
	bc.dynamicDirty.Store(true)
}

func (bc *bandControl) SetTargetQ(q float64) {
	bc.targetQ.Store(math.Float64bits(q))
	bc.dynamicDirty.Store(true)
}

func (bc *bandControl) SetSideFreq(f float64) {
	bc.sideFreq.Store(math.Float64bits(f))
	bc.dynamicDirty.Store(true)
}

func (bc *bandControl) SetSideQ(q float64) {
	bc.sideQ.Store(math.Float64bits(q))
	bc.dynamicDirty.Store(true)
}

func (bc *bandControl) SetThreshold(t float64) {
	bc.threshold.Store(math.Float64bits(t))
	bc.dynamicDirty.Store(true)
}

func (bc *bandControl) SetKnee(w float64) {
	bc.knee.Store(math.Float64bits(w))
	bc.dynamicDirty.Store(true)
}

func (bc *bandControl) SetAttack(ms float64) {
	bc.attackMs.Store(math.Float64bits(ms))
	bc.dynamicDirty.Store(true)
}

func (bc *bandControl) SetRelease(ms float64) {
	bc.releaseMs.Store(math.Float64bits(ms))
	bc.dynamicDirty.Store(true)
}

// dynamicSnapshot is one acquire-load of every dynamic/side parameter,
// taken once per block when dynamicDirty fires.
type dynamicSnapshot struct {
	targetGain, targetQ                  float64
	sideFreq, sideQ                      float64
	threshold, knee, attackMs, releaseMs float64
	dynamicOn, dynamicBypass             bool
	dynamicRelative, dynamicLearn        bool
}

func (bc *bandControl) loadDynamic() dynamicSnapshot {
	return dynamicSnapshot{
		targetGain:      math.Float64frombits(bc.targetGain.Load()),
		targetQ:         math.Float64frombits(bc.targetQ.Load()),
		sideFreq:        math.Float64frombits(bc.sideFreq.Load()),
		sideQ:           math.Float64frombits(bc.sideQ.Load()),
		threshold:       math.Float64frombits(bc.threshold.Load()),
		knee:            math.Float64frombits(bc.knee.Load()),
		attackMs:        math.Float64frombits(bc.attackMs.Load()),
		releaseMs:       math.Float64frombits(bc.releaseMs.Load()),
		dynamicOn:       bc.dynamicOn.Load(),
		dynamicBypass:   bc.dynamicBypass.Load(),
		dynamicRelative: bc.dynamicRelative.Load(),
		dynamicLearn:    bc.dynamicLearn.Load(),
	}
}

// bandRuntime is the audio-thread-owned state for one band: the
// reconciled parameter snapshot, the three realization kernels (only
// one active at a time, selected by the controller's structure), the
// dynamic wrapper around each, the side-chain pre-filter, and the
// learning histograms.
type bandRuntime struct {
	ctrl *bandControl

	sampleRate float64

	params eq.Band
	status eq.Status
	stereo eq.StereoMode
	sideSwap bool

	tdf kernel.TDFCascade
	svf kernel.SVFCascade
	par kernel.ParallelKernel

	side    *dynamics.SideState
	dynTDF  *dynamics.DynamicFilter
	dynSVF  *dynamics.DynamicFilter
	dynPar  *dynamics.DynamicFilter

	sideFilter kernel.TDFCascade

	histFast *dynamics.Histogram
	histSlow *dynamics.Histogram

	prevStatus eq.Status
	isDynamic  bool

	sideScratch [2][]float32
	sideView    [2][]float32
	mainScratch [2][]float32
	mainView    [2][]float32
}

func newBandRuntime(sampleRate float64, maxBlock int) *bandRuntime {
	b := &bandRuntime{ctrl: newBandControl(), prevStatus: eq.Off, sampleRate: sampleRate}
	b.side = dynamics.NewSideState()
	b.side.Prepare(sampleRate, rmsMaxLengthSeconds)

	b.tdf.Prepare(2)
	b.svf.Prepare(2)
	b.par.Prepare(2, maxBlock)
	b.sideFilter.Prepare(2)

	b.dynTDF = dynamics.NewDynamicFilter(&b.tdf, b.side, coeff.MatchedSet, eq.Peak, eq.Order2, 1000, sampleRate)
	b.dynSVF = dynamics.NewDynamicFilter(&b.svf, b.side, coeff.MatchedSet, eq.Peak, eq.Order2, 1000, sampleRate)
	b.dynPar = dynamics.NewParallelDynamicFilter(&b.par, b.side)

	b.histFast = dynamics.NewHistogram(histBins, histLoDB, histHiDB)
	b.histFast.SetDecayRate(dynamics.DecayRateForHalfLife(learnHalfLifeFast, sampleRate))
	b.histSlow = dynamics.NewHistogram(histBins, histLoDB, histHiDB)
	b.histSlow.SetDecayRate(dynamics.DecayRateForHalfLife(learnHalfLifeSlow, sampleRate))

	for ch := range b.sideScratch {
		b.sideScratch[ch] = make([]float32, maxBlock)
		b.mainScratch[ch] = make([]float32, maxBlock)
	}
	return b
}

func (b *bandRuntime) resetKernels() {
	b.tdf.Reset()
	b.svf.Reset()
	b.par.Reset()
	b.sideFilter.Reset()
}

// rebuildStatic re-derives the band's non-dynamic realization
// coefficients for every structure's kernel, so switching structures
// never finds a stale cascade. Dynamic bands still need this: it seeds
// the base (gain=0-portion) coefficients the DynamicFilter interpolates
// away from.
func (b *bandRuntime) rebuildStatic(sampleRate float64) {
	p := b.params.Params

	cascade := coeff.Design(coeff.MatchedSet, p.Type, p.Order, p.Freq, sampleRate, p.Gain, p.Q)
	b.tdf.UpdateFromCascade(cascade)
	b.svf.UpdateFromCascade(cascade)

	overrideType, isParallel := kernel.ParallelOverride(p.Type, p.Order)
	designGain := p.Gain
	if isParallel {
		designGain = 0
	}
	parCascade := coeff.Design(coeff.MatchedSet, overrideType, p.Order, p.Freq, sampleRate, designGain, p.Q)
	b.par.UpdateFromCascade(parCascade, isParallel, p.Gain)

	b.dynTDF.SetDesign(coeff.MatchedSet, p.Type, p.Order, p.Freq, sampleRate)
	b.dynSVF.SetDesign(coeff.MatchedSet, p.Type, p.Order, p.Freq, sampleRate)
}

// idealCascade returns the analog-prototype cascade a correction
// calculator compares the realized (matched) cascade against.
func (b *bandRuntime) idealCascade(sampleRate float64) eq.Cascade {
	p := b.params.Params
	return coeff.Design(coeff.IdealSet, p.Type, p.Order, p.Freq, sampleRate, p.Gain, p.Q)
}

func (b *bandRuntime) iirCascade(sampleRate float64) eq.Cascade {
	p := b.params.Params
	return coeff.Design(coeff.MatchedSet, p.Type, p.Order, p.Freq, sampleRate, p.Gain, p.Q)
}

// bus identifies one of the four channel buses the correction stage
// runs against. Stereo/Left/Right bands contribute to busL/busR; Mid/
// Side bands contribute to busM/busS.
type bus int

const (
	busL bus = iota
	busR
	busM
	busS
	numBuses
)

// Controller is the orchestrator: one instance per active stream.
type Controller struct {
	sampleRate float64
	maxBlock   int

	structure     eq.FilterStructure
	structureInit bool
	externalSide  bool
	bypass        bool

	bands [MaxBands]*bandRuntime

	anyStereo, anyLeft, anyRight, anyMid, anySide bool
	anyCorr                                       [numBuses]bool
	correctionsDirty                              bool

	fir    [numBuses]*correction.FIRCorrection
	calc   [numBuses]*correction.Calculator
	protoWs, bqWs []complex128

	idealCascades [numBuses][]eq.Cascade
	iirCascades   [numBuses][]eq.Cascade

	sideInternalL, sideInternalR []float32

	latency int

	// AnalyzerHook, if set, is invoked with a tag ("main-pre",
	// "side-pre", "main-post") and the current buffer at that point
	// in the chain. It must not retain the slice past the call or
	// allocate; the audio thread never waits on it.
	AnalyzerHook func(tag string, buf []float32)

	logger *log.Logger
}

// NewController allocates a controller for up to MaxBands bands.
// Prepare still must be called before the first Process.
func NewController() *Controller {
	sink := &lumberjack.Logger{
		Filename:   "dyneq-controller.log",
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     7,
	}
	logger := log.New(io.MultiWriter(os.Stderr, sink))
	logger.SetPrefix("controller")
	logger.SetReportTimestamp(true)
	return &Controller{logger: logger}
}

// Prepare sizes every buffer for sampleRate/maxBlockSize and resets
// all state; safe to call again later to resize (§1 Lifecycle).
func (c *Controller) Prepare(sampleRate float64, maxBlockSize int) {
	c.sampleRate = sampleRate
	c.maxBlock = maxBlockSize
	c.structureInit = false

	for i := range c.bands {
		c.bands[i] = newBandRuntime(sampleRate, maxBlockSize)
	}

	c.sideInternalL = make([]float32, maxBlockSize)
	c.sideInternalR = make([]float32, maxBlockSize)

	for b := range c.idealCascades {
		c.idealCascades[b] = make([]eq.Cascade, 0, MaxBands)
		c.iirCascades[b] = make([]eq.Cascade, 0, MaxBands)
	}

	c.logger.Infof("controller prepared: sr=%.0f maxBlock=%d", sampleRate, maxBlockSize)
	c.SetStructure(eq.Minimum)
}

// Band returns the control-plane handle for band i, for a host-facing
// parameter layer to wire its automation onto.
func (c *Controller) Band(i int) *bandControl { return c.bands[i].ctrl }

// SetExternalSide selects whether Process's side arguments are used
// directly (true) or ignored in favor of a copy of the main signal
// (false, the common "use main signal as its own sidechain" case).
func (c *Controller) SetExternalSide(on bool) { c.externalSide = on }

// SetBypass globally bypasses all processing; Process becomes a no-op
// passthrough.
func (c *Controller) SetBypass(on bool) {
	c.bypass = on
	c.logger.Debugf("global bypass -> %v", on)
}

// SetStructure changes the realization/correction structure. The
// reported latency is updated immediately, before it returns.
func (c *Controller) SetStructure(s eq.FilterStructure) {
	if c.structureInit && s == c.structure {
		return
	}
	c.structure = s
	c.structureInit = true

	for _, b := range c.bands {
		b.resetKernels()
		b.side.Reset()
	}

	if s.Corrects() {
		order := correction.DefaultOrderForSampleRate(c.sampleRate, calculatorStructureFor(s).DefaultOrder())
		for bu := busL; bu < numBuses; bu++ {
			c.fir[bu] = correction.NewFIRCorrection(1, order)
			c.calc[bu] = correction.NewCalculator(calculatorStructureFor(s), c.fir[bu].NumBins())
		}
		c.protoWs = response.PrototypeFrequencies(c.fir[busL].NumBins())
		c.bqWs = response.BiquadFrequencies(c.fir[busL].NumBins())
		c.latency = c.fir[busL].Latency()
	} else {
		for bu := busL; bu < numBuses; bu++ {
			c.fir[bu] = nil
			c.calc[bu] = nil
		}
		c.latency = 0
	}
	c.correctionsDirty = true
	c.logger.Infof("filter structure -> %v, latency -> %d", s, c.latency)
}

func calculatorStructureFor(s eq.FilterStructure) correction.Structure {
	switch s {
	case eq.Mixed:
		return correction.Mixed
	case eq.Zero:
		return correction.Zero
	default:
		return correction.Matched
	}
}

// Latency reports the currently announced latency in samples.
func (c *Controller) Latency() int { return c.latency }

// prepareBuffer reconciles every dirty band and recomputes the
// routing/correction index state (§4.11 step 1).
func (c *Controller) prepareBuffer() {
	c.anyStereo, c.anyLeft, c.anyRight, c.anyMid, c.anySide = false, false, false, false, false
	for bu := range c.anyCorr {
		c.anyCorr[bu] = false
	}

	for _, b := range c.bands {
		paraDirty := b.ctrl.cell.TakeParaDirty()
		fgqDirty := b.ctrl.cell.TakeFGQDirty()
		routingDirty := b.ctrl.routingDirty.Swap(false)
		dynDirty := b.ctrl.dynamicDirty.Swap(false)

		if paraDirty || fgqDirty {
			b.params.Params = b.ctrl.cell.Load()
			b.rebuildStatic(c.sampleRate)
			c.correctionsDirty = true
		}

		newStatus := eq.Status(b.ctrl.status.Load())
		if b.prevStatus == eq.Off && newStatus != eq.Off {
			b.resetKernels()
		}
		b.status = newStatus
		b.prevStatus = newStatus
		b.stereo = eq.StereoMode(b.ctrl.stereo.Load())
		b.sideSwap = b.ctrl.sideSwap.Load()
		if routingDirty {
			c.correctionsDirty = true
		}

		if dynDirty || paraDirty {
			snap := b.ctrl.loadDynamic()
			b.reconcileDynamic(snap)
			c.correctionsDirty = true
		}

		switch b.stereo {
		case eq.Stereo:
			c.anyStereo = true
		case eq.Left:
			c.anyLeft = true
		case eq.Right:
			c.anyRight = true
		case eq.Mid:
			c.anyMid = true
		case eq.Side:
			c.anySide = true
		}

		if b.status == eq.On && !b.isDynamic {
			switch b.stereo {
			case eq.Stereo, eq.Left:
				c.anyCorr[busL] = true
			}
			switch b.stereo {
			case eq.Stereo, eq.Right:
				c.anyCorr[busR] = true
			}
			if b.stereo == eq.Mid {
				c.anyCorr[busM] = true
			}
			if b.stereo == eq.Side {
				c.anyCorr[busS] = true
			}
		}
	}

	if c.structure.Corrects() && c.correctionsDirty {
		c.rebuildCorrections()
		c.correctionsDirty = false
	}
}

// reconcileDynamic pushes a band's reconciled dynamic/side parameters
// into its SideState, side pre-filter, and DynamicFilter wrappers.
func (b *bandRuntime) reconcileDynamic(snap dynamicSnapshot) {
	isDynamic := snap.dynamicOn && b.params.Params.Type.DynamicCapable()
	if isDynamic && !b.isDynamic {
		b.side.Reset()
		b.histFast.Reset(0)
		b.histSlow.Reset(0)
	}
	b.isDynamic = isDynamic

	b.side.SetBaseGain(b.params.Params.Gain)
	b.side.SetTargetGain(snap.targetGain)
	b.side.SetBaseQ(b.params.Params.Q)
	b.side.SetTargetQ(snap.targetQ)

	threshold := snap.threshold
	switch {
	case snap.dynamicLearn:
		threshold = b.histFast.Percentile(0.9)
	case snap.dynamicRelative:
		threshold += b.histSlow.Percentile(0.5)
	}
	b.side.SetThreshold(threshold)
	b.side.SetKnee(snap.knee)
	b.side.Follower().SetAttack(snap.attackMs)
	b.side.Follower().SetRelease(snap.releaseMs)

	sideCascade := coeff.Design(coeff.MatchedSet, eq.BandPass, eq.Order2, snap.sideFreq, b.sampleRate, 0, snap.sideQ)
	b.sideFilter.UpdateFromCascade(sideCascade)

	b.dynTDF.SetDynamicOn(isDynamic)
	b.dynSVF.SetDynamicOn(isDynamic)
	b.dynPar.SetDynamicOn(isDynamic)
	b.dynTDF.SetDynamicBypass(snap.dynamicBypass)
	b.dynSVF.SetDynamicBypass(snap.dynamicBypass)
	b.dynPar.SetDynamicBypass(snap.dynamicBypass)
}

// rebuildCorrections recomputes every active bus's correction vector
// from its member bands' ideal-vs-realized cascades (§4.10/§4.11).
func (c *Controller) rebuildCorrections() {
	for bu := busL; bu < numBuses; bu++ {
		c.idealCascades[bu] = c.idealCascades[bu][:0]
		c.iirCascades[bu] = c.iirCascades[bu][:0]
	}
	for _, b := range c.bands {
		if b.status != eq.On || b.isDynamic {
			continue
		}
		ideal := b.idealCascade(c.sampleRate)
		iir := b.iirCascade(c.sampleRate)
		switch b.stereo {
		case eq.Stereo:
			c.idealCascades[busL] = append(c.idealCascades[busL], ideal)
			c.iirCascades[busL] = append(c.iirCascades[busL], iir)
			c.idealCascades[busR] = append(c.idealCascades[busR], ideal)
			c.iirCascades[busR] = append(c.iirCascades[busR], iir)
		case eq.Left:
			c.idealCascades[busL] = append(c.idealCascades[busL], ideal)
			c.iirCascades[busL] = append(c.iirCascades[busL], iir)
		case eq.Right:
			c.idealCascades[busR] = append(c.idealCascades[busR], ideal)
			c.iirCascades[busR] = append(c.iirCascades[busR], iir)
		case eq.Mid:
			c.idealCascades[busM] = append(c.idealCascades[busM], ideal)
			c.iirCascades[busM] = append(c.iirCascades[busM], iir)
		case eq.Side:
			c.idealCascades[busS] = append(c.idealCascades[busS], ideal)
			c.iirCascades[busS] = append(c.iirCascades[busS], iir)
		}
	}
	for bu := busL; bu < numBuses; bu++ {
		c.calc[bu].Compute(c.idealCascades[bu], c.iirCascades[bu], c.protoWs, c.bqWs, c.fir[bu].Correction)
	}
}

// runBand dispatches one band against the given main/side buffers,
// picking the realization kernel the controller's current structure
// selects, filtering the side signal through the band's own side-chain
// pre-filter when the band is dynamic, and discarding the output
// (into scratch) when the band is Bypass rather than On.
func (c *Controller) runBand(b *bandRuntime, mainBuf, sideBuf [][]float32) {
	if b.status == eq.Off {
		return
	}
	n := len(mainBuf[0])

	var sideView [][]float32
	if b.isDynamic {
		view := b.sideView[:len(sideBuf)]
		for ch, buf := range sideBuf {
			dst := b.sideScratch[ch][:n]
			copy(dst, buf)
			b.sideFilter.Process(dst, ch)
			view[ch] = dst
		}
		sideView = view

		// Keep both learning histograms warm regardless of which
		// threshold mode is active, so switching into learn/relative
		// mid-stream has real history to read from immediately.
		for i := 0; i < n; i++ {
			var meanSq float64
			for ch := range sideView {
				v := float64(sideView[ch][i])
				meanSq += v * v
			}
			meanSq /= float64(len(sideView))
			db := eq.GainToDb(math.Sqrt(meanSq))
			b.histFast.Push(db)
			b.histSlow.Push(db)
		}
	}

	var dyn *dynamics.DynamicFilter
	switch c.structure {
	case eq.SVF:
		dyn = b.dynSVF
	case eq.Parallel:
		dyn = b.dynPar
	default:
		dyn = b.dynTDF
	}

	if b.status == eq.Bypass {
		mview := b.mainView[:len(mainBuf)]
		for ch, buf := range mainBuf {
			dst := b.mainScratch[ch][:n]
			copy(dst, buf)
			mview[ch] = dst
		}
		dyn.Process(mview, sideView)
		return
	}
	dyn.Process(mainBuf, sideView)
}

// Process runs one block: main[L,R] and side[L,R] are equal-length
// planar float32 buffers, filtered in place (§4.11).
func (c *Controller) Process(mainL, mainR, sideL, sideR []float32) {
	c.prepareBuffer()

	n := len(mainL)
	var sl, sr []float32
	if c.externalSide {
		sl, sr = sideL, sideR
	} else {
		copy(c.sideInternalL[:n], mainL)
		copy(c.sideInternalR[:n], mainR)
		sl, sr = c.sideInternalL[:n], c.sideInternalR[:n]
	}

	if c.bypass {
		return
	}

	if c.AnalyzerHook != nil {
		c.AnalyzerHook("main-pre", mainL)
		c.AnalyzerHook("side-pre", sl)
	}

	if c.anyStereo {
		for _, b := range c.bands {
			if b.stereo == eq.Stereo {
				c.runBand(b, [][]float32{mainL, mainR}, [][]float32{sl, sr})
			}
		}
	}
	if c.anyLeft {
		for _, b := range c.bands {
			if b.stereo != eq.Left {
				continue
			}
			side := sl
			if b.sideSwap {
				side = sr
			}
			c.runBand(b, [][]float32{mainL}, [][]float32{side})
		}
	}
	if c.anyRight {
		for _, b := range c.bands {
			if b.stereo != eq.Right {
				continue
			}
			side := sr
			if b.sideSwap {
				side = sl
			}
			c.runBand(b, [][]float32{mainR}, [][]float32{side})
		}
	}
	if c.anyMid || c.anySide {
		ms.Split(mainL, mainR, ms.Avg)
		ms.Split(sl, sr, ms.Avg)
		for _, b := range c.bands {
			if b.stereo != eq.Mid {
				continue
			}
			side := sl
			if b.sideSwap {
				side = sr
			}
			c.runBand(b, [][]float32{mainL}, [][]float32{side})
		}
		for _, b := range c.bands {
			if b.stereo != eq.Side {
				continue
			}
			side := sr
			if b.sideSwap {
				side = sl
			}
			c.runBand(b, [][]float32{mainR}, [][]float32{side})
		}
		ms.Combine(mainL, mainR, ms.Avg)
		ms.Combine(sl, sr, ms.Avg)
	}

	if c.AnalyzerHook != nil {
		c.AnalyzerHook("main-post", mainL)
	}

	if c.structure.Corrects() {
		c.processCorrections(mainL, mainR)
	}
}

func (c *Controller) processCorrections(mainL, mainR []float32) {
	if c.anyCorr[busL] || c.anyCorr[busR] {
		c.fir[busL].Process([][]float32{mainL}, !c.anyCorr[busL])
		c.fir[busR].Process([][]float32{mainR}, !c.anyCorr[busR])
	}
	if c.anyCorr[busM] || c.anyCorr[busS] {
		ms.Split(mainL, mainR, ms.Avg)
		c.fir[busM].Process([][]float32{mainL}, !c.anyCorr[busM])
		c.fir[busS].Process([][]float32{mainR}, !c.anyCorr[busS])
		ms.Combine(mainL, mainR, ms.Avg)
	}
}
