package correction

import (
	"math"
	"testing"
)

func TestDefaultOrderForSampleRateSteps(t *testing.T) {
	cases := []struct {
		sr   float64
		want int
	}{
		{44100, 9},
		{48000, 9},
		{96000, 10},
		{192000, 11},
		{384000, 12},
	}
	for _, tc := range cases {
		if got := DefaultOrderForSampleRate(tc.sr, 9); got != tc.want {
			t.Errorf("sampleRate %f: got order %d, want %d", tc.sr, got, tc.want)
		}
	}
}

func TestFIRCorrectionIdentityCorrectionIsTransparent(t *testing.T) {
	f := NewFIRCorrection(1, 8) // small FFT for a fast test
	buf := make([]float32, f.Latency()*3)
	for i := range buf {
		buf[i] = float32(math.Sin(2 * math.Pi * float64(i) * 0.05))
	}
	in := append([]float32(nil), buf...)

	out := make([]float32, len(buf))
	copy(out, buf)
	f.Process([][]float32{out}, false)

	// After one full FFT frame of latency the overlap-add reconstruction
	// should recover the original signal (identity correction vector).
	var maxDiff float64
	for i := f.Latency(); i < len(out); i++ {
		d := math.Abs(float64(out[i] - in[i-f.Latency()]))
		if d > maxDiff {
			maxDiff = d
		}
	}
	if maxDiff > 1e-2 {
		t.Errorf("identity correction round-trip max error %f, want < 1e-2", maxDiff)
	}
}

func TestFIRCorrectionResetClearsFIFOs(t *testing.T) {
	f := NewFIRCorrection(1, 8)
	buf := make([]float32, f.Latency())
	for i := range buf {
		buf[i] = 1
	}
	f.Process([][]float32{buf}, false)
	f.Reset()
	for ch := range f.inputFIFO {
		for _, v := range f.inputFIFO[ch] {
			if v != 0 {
				t.Fatalf("inputFIFO not cleared by Reset")
			}
		}
	}
}

func TestFIRCorrectionBypassedIsUnityPower(t *testing.T) {
	f := NewFIRCorrection(1, 8)
	buf := make([]float32, f.Latency()*2)
	for i := range buf {
		buf[i] = float32(math.Sin(2 * math.Pi * float64(i) * 0.05))
	}
	in := append([]float32(nil), buf...)
	f.Process([][]float32{buf}, true)

	var maxDiff float64
	for i := f.Latency(); i < len(buf); i++ {
		d := math.Abs(float64(buf[i] - in[i-f.Latency()]))
		if d > maxDiff {
			maxDiff = d
		}
	}
	if maxDiff > 1e-2 {
		t.Errorf("bypassed pass-through max error %f, want < 1e-2", maxDiff)
	}
}
