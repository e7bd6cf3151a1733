package dynamics

import "testing"

func TestTrackerSumAccumulatesWithinWindow(t *testing.T) {
	tr := NewTracker(4)
	tr.SetLength(4)
	var sum float64
	for _, sq := range []float64{1, 2, 3, 4} {
		sum = tr.Push(sq)
	}
	if sum != 10 {
		t.Errorf("got sum %f, want 10", sum)
	}
}

func TestTrackerEvictsOldestPastWindow(t *testing.T) {
	tr := NewTracker(4)
	tr.SetLength(4)
	for _, sq := range []float64{1, 2, 3, 4} {
		tr.Push(sq)
	}
	sum := tr.Push(5) // evicts the 1
	if sum != 14 {
		t.Errorf("got sum %f, want 14 (2+3+4+5)", sum)
	}
}

func TestTrackerResetClearsSum(t *testing.T) {
	tr := NewTracker(4)
	tr.SetLength(4)
	tr.Push(10)
	tr.Reset()
	if tr.Sum() != 0 {
		t.Errorf("got sum %f after Reset, want 0", tr.Sum())
	}
}

func TestTrackerSetLengthShrinksAndAdjustsSum(t *testing.T) {
	tr := NewTracker(8)
	tr.SetLength(8)
	for _, sq := range []float64{1, 1, 1, 1, 1, 1, 1, 1} {
		tr.Push(sq)
	}
	tr.SetLength(4)
	if tr.Sum() != 4 {
		t.Errorf("got sum %f after shrinking the window to 4, want 4", tr.Sum())
	}
}
