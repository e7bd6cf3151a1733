package param

import (
	"testing"

	"github.com/dynaudio/dyneq/pkg/eq"
)

func TestNewCellDefaultsAreSensible(t *testing.T) {
	c := NewCell()
	p := c.Load()
	if p.Freq != 1000 || p.Q != 0.707 || p.Order != eq.Order2 || p.Type != eq.Peak {
		t.Errorf("got %+v, want freq=1000 q=0.707 order=2 type=Peak", p)
	}
}

func TestCellFGQDirtyFlagsOnlyFreqGainQ(t *testing.T) {
	c := NewCell()
	c.TakeFGQDirty()
	c.TakeParaDirty()

	c.SetFreq(500)
	if !c.TakeFGQDirty() {
		t.Error("SetFreq should mark fgqDirty")
	}
	if c.TakeParaDirty() {
		t.Error("SetFreq should not mark paraDirty")
	}
}

func TestCellParaDirtyFlagsOnlyTypeOrder(t *testing.T) {
	c := NewCell()
	c.TakeFGQDirty()
	c.TakeParaDirty()

	c.SetOrder(eq.Order4)
	if !c.TakeParaDirty() {
		t.Error("SetOrder should mark paraDirty")
	}
	if c.TakeFGQDirty() {
		t.Error("SetOrder should not mark fgqDirty")
	}
}

func TestCellTakeDirtyClearsFlag(t *testing.T) {
	c := NewCell()
	c.SetGain(3)
	if !c.TakeFGQDirty() {
		t.Fatal("expected fgqDirty after SetGain")
	}
	if c.TakeFGQDirty() {
		t.Error("TakeFGQDirty should clear the flag after the first read")
	}
}

func TestCellLoadReflectsLatestWrites(t *testing.T) {
	c := NewCell()
	c.SetFreq(2000)
	c.SetGain(-6)
	c.SetQ(1.5)
	c.SetFilterType(eq.LowShelf)
	c.SetOrder(eq.Order8)

	p := c.Load()
	want := eq.FilterParameters{Type: eq.LowShelf, Order: eq.Order8, Freq: 2000, Gain: -6, Q: 1.5}
	if p != want {
		t.Errorf("got %+v, want %+v", p, want)
	}
}
