package core

import (
	"slices"
	"testing"
)

func TestCoreDeterminism(t *testing.T) {
	c1 := NewSeeded(Default(), 7)
	c2 := NewSeeded(Default(), 7)
	for i := 0; i < 5; i++ {
		if c1.Uint64() != c2.Uint64() {
			t.Fatalf("Uint64 mismatch at %d", i)
		}
	}
	if c1.IntN(10) != c2.IntN(10) {
		t.Fatalf("IntN mismatch")
	}
}

func TestIntRangeBounds(t *testing.T) {
	c := NewSeeded(Default(), 3)
	seenLo, seenHi := false, false
	for i := 0; i < 20000; i++ {
		v := c.IntRange(1, 6)
		if v < 1 || v > 6 {
			t.Fatalf("IntRange out of bounds: %d", v)
		}
		seenLo = seenLo || v == 1
		seenHi = seenHi || v == 6
	}
	if !seenLo || !seenHi {
		t.Fatalf("IntRange never hit an endpoint (lo=%v hi=%v)", seenLo, seenHi)
	}
	if got := c.IntRange(5, 5); got != 5 {
		t.Fatalf("degenerate range: %d", got)
	}
}

func TestFloatRangeAndDie(t *testing.T) {
	c := NewSeeded(Cosmetic(), 11)
	for i := 0; i < 5000; i++ {
		f := c.FloatRange(1.5, 3.0)
		if f < 1.5 || f >= 3.0 {
			t.Fatalf("FloatRange out of bounds: %v", f)
		}
		d := c.Die(6)
		if d < 1 || d > 6 {
			t.Fatalf("Die out of bounds: %d", d)
		}
	}
	if c.Die(0) != 0 {
		t.Fatalf("Die(0) must be 0")
	}
}

func TestSnapshotRestore(t *testing.T) {
	for name, f := range map[string]PRNGFactory{"pcg64": Default(), "pcg32": Cosmetic()} {
		c := NewSeeded(f, 42)
		snap, err := c.Snapshot()
		if err != nil {
			t.Fatalf("%s snapshot: %v", name, err)
		}
		a := []int{c.IntN(100), c.IntN(100), c.IntN(100)}
		if err := c.Restore(snap); err != nil {
			t.Fatalf("%s restore: %v", name, err)
		}
		b := []int{c.IntN(100), c.IntN(100), c.IntN(100)}
		if !slices.Equal(a, b) {
			t.Fatalf("%s replay mismatch: %v vs %v", name, a, b)
		}
	}
	if err := NewSeeded(Cosmetic(), 1).Restore([]byte{1, 2}); err == nil {
		t.Fatalf("expected short pcg32 state to be rejected")
	}
}

func TestPickAndShuffle(t *testing.T) {
	c := NewSeeded(Default(), 9)
	if got := c.Pick(nil); got != -1 {
		t.Fatalf("expected -1 for empty pick, got %d", got)
	}
	if got := c.PickString(nil); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
	src := []int{1, 2, 3, 4}
	c.ShuffleInts(src)
	got := slices.Clone(src)
	slices.Sort(got)
	if !slices.Equal(got, []int{1, 2, 3, 4}) {
		t.Fatalf("shuffle changed elements: %v", src)
	}
}
