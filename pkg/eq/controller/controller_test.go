package controller

import (
	"math"
	"testing"

	"github.com/dynaudio/dyneq/pkg/eq"
)

const testSampleRate = 48000.0
const testBlockSize = 4096

func newTestController() *Controller {
	c := NewController()
	c.Prepare(testSampleRate, testBlockSize)
	return c
}

func sineBlock(n int, freq, sampleRate float64) []float32 {
	buf := make([]float32, n)
	for i := range buf {
		buf[i] = float32(math.Sin(2 * math.Pi * freq * float64(i) / sampleRate))
	}
	return buf
}

func TestControllerPrepareDefaultsToZeroLatencyStructure(t *testing.T) {
	c := newTestController()
	if c.Latency() != 0 {
		t.Errorf("got latency %d, want 0 for the default Minimum structure", c.Latency())
	}
}

func TestControllerSetStructureReportsNonzeroLatencyForCorrectingStructures(t *testing.T) {
	c := newTestController()
	c.SetStructure(eq.Matched)
	if c.Latency() <= 0 {
		t.Errorf("got latency %d, want > 0 for Matched", c.Latency())
	}
	c.SetStructure(eq.Minimum)
	if c.Latency() != 0 {
		t.Errorf("got latency %d, want 0 after switching back to Minimum", c.Latency())
	}
}

func TestControllerAllBandsOffIsPassthrough(t *testing.T) {
	c := newTestController()
	mainL := sineBlock(256, 1000, testSampleRate)
	mainR := sineBlock(256, 1000, testSampleRate)
	origL := append([]float32(nil), mainL...)
	origR := append([]float32(nil), mainR...)

	c.Process(mainL, mainR, nil, nil)

	for i := range mainL {
		if mainL[i] != origL[i] || mainR[i] != origR[i] {
			t.Fatalf("sample %d: buffer modified with every band off", i)
		}
	}
}

func TestControllerGlobalBypassIsPassthrough(t *testing.T) {
	c := newTestController()
	c.Band(0).SetStatus(eq.On)
	c.Band(0).SetStereo(eq.Stereo)
	c.Band(0).SetFilterType(eq.LowPass)
	c.Band(0).SetOrder(eq.Order2)
	c.Band(0).SetFreq(200)
	c.SetBypass(true)

	mainL := sineBlock(256, 4000, testSampleRate)
	mainR := sineBlock(256, 4000, testSampleRate)
	origL := append([]float32(nil), mainL...)
	origR := append([]float32(nil), mainR...)

	c.Process(mainL, mainR, nil, nil)

	for i := range mainL {
		if mainL[i] != origL[i] || mainR[i] != origR[i] {
			t.Fatalf("sample %d: global bypass did not passthrough", i)
		}
	}
}

func TestControllerActiveStereoBandModifiesSignal(t *testing.T) {
	c := newTestController()
	c.Band(0).SetStatus(eq.On)
	c.Band(0).SetStereo(eq.Stereo)
	c.Band(0).SetFilterType(eq.LowPass)
	c.Band(0).SetOrder(eq.Order2)
	c.Band(0).SetFreq(200) // well below the 4kHz test tone

	mainL := sineBlock(2048, 4000, testSampleRate)
	mainR := sineBlock(2048, 4000, testSampleRate)
	origL := append([]float32(nil), mainL...)

	c.Process(mainL, mainR, nil, nil)

	changed := false
	for i := range mainL {
		if mainL[i] != origL[i] {
			changed = true
			break
		}
	}
	if !changed {
		t.Fatal("an active low-pass band below the signal frequency left the signal unchanged")
	}

	var inRMS, outRMS float64
	for i := range mainL {
		inRMS += float64(origL[i]) * float64(origL[i])
		outRMS += float64(mainL[i]) * float64(mainL[i])
	}
	if outRMS >= inRMS {
		t.Errorf("a low-pass band well below a 4kHz tone should attenuate it: in energy %f, out energy %f", inRMS, outRMS)
	}
}

func TestControllerOffBandIgnoredAfterBeingOn(t *testing.T) {
	c := newTestController()
	b := c.Band(0)
	b.SetStatus(eq.On)
	b.SetStereo(eq.Stereo)
	b.SetFilterType(eq.LowPass)
	b.SetOrder(eq.Order2)
	b.SetFreq(200)

	warm := sineBlock(512, 4000, testSampleRate)
	c.Process(warm, append([]float32(nil), warm...), nil, nil)

	b.SetStatus(eq.Off)
	mainL := sineBlock(512, 4000, testSampleRate)
	mainR := append([]float32(nil), mainL...)
	orig := append([]float32(nil), mainL...)
	c.Process(mainL, mainR, nil, nil)

	for i := range mainL {
		if mainL[i] != orig[i] {
			t.Fatalf("sample %d: an Off band still modified the signal", i)
		}
	}
}

func TestControllerMidSideRoutingConservesMonoSignal(t *testing.T) {
	c := newTestController()
	// No bands active, but routing still exercises the M/S split/combine
	// path since at least one band claims Mid or Side.
	c.Band(0).SetStereo(eq.Mid)
	c.Band(0).SetStatus(eq.Off)

	mainL := sineBlock(256, 1000, testSampleRate)
	mainR := append([]float32(nil), mainL...) // identical L/R: pure mono
	origL := append([]float32(nil), mainL...)
	origR := append([]float32(nil), mainR...)

	c.Process(mainL, mainR, nil, nil)

	for i := range mainL {
		if math.Abs(float64(mainL[i]-origL[i])) > 1e-4 {
			t.Errorf("sample %d: L round-trip through M/S split/combine drifted: got %f, want %f", i, mainL[i], origL[i])
		}
		if math.Abs(float64(mainR[i]-origR[i])) > 1e-4 {
			t.Errorf("sample %d: R round-trip through M/S split/combine drifted: got %f, want %f", i, mainR[i], origR[i])
		}
	}
}

func TestControllerDynamicOnBandIsReconciledAsDynamic(t *testing.T) {
	c := newTestController()
	b := c.Band(0)
	b.SetStatus(eq.On)
	b.SetStereo(eq.Stereo)
	b.SetFilterType(eq.Peak)
	b.SetOrder(eq.Order2)
	b.SetFreq(1000)
	b.SetDynamicOn(true)
	b.SetTargetGain(-12)
	b.SetThreshold(-60)

	main := sineBlock(1024, 1000, testSampleRate)
	c.Process(append([]float32(nil), main...), append([]float32(nil), main...), nil, nil)

	rt := c.bands[0]
	if !rt.isDynamic {
		t.Fatal("band should be reconciled as dynamic after SetDynamicOn(true)")
	}
}

func TestControllerAnalyzerHookFiresAtExpectedTags(t *testing.T) {
	c := newTestController()
	var tags []string
	c.AnalyzerHook = func(tag string, buf []float32) {
		tags = append(tags, tag)
	}
	main := sineBlock(64, 1000, testSampleRate)
	c.Process(append([]float32(nil), main...), append([]float32(nil), main...), nil, nil)

	want := []string{"main-pre", "side-pre", "main-post"}
	if len(tags) != len(want) {
		t.Fatalf("got tags %v, want %v", tags, want)
	}
	for i, tag := range want {
		if tags[i] != tag {
			t.Errorf("tag %d: got %q, want %q", i, tags[i], tag)
		}
	}
}
