package ledger

import (
	"math"
	"testing"
)

func TestNeverNegative(t *testing.T) {
	l := New()
	l.Initialize(500)
	deltas := []int{-100, -1000, 50, math.MinInt / 2, 3, -3, -1}
	for _, d := range deltas {
		if b := l.Adjust(d); b < 0 {
			t.Fatalf("balance went negative: %d after delta %d", b, d)
		}
	}
	if l.Balance() != 0 {
		t.Fatalf("expected 0, got %d", l.Balance())
	}
}

func TestInitializeClampsAndMarksStarted(t *testing.T) {
	l := New()
	if l.Started() {
		t.Fatalf("new ledger must not be started")
	}
	l.Initialize(-20)
	if !l.Started() || l.Balance() != 0 {
		t.Fatalf("unexpected state: started=%v balance=%d", l.Started(), l.Balance())
	}
	l.Initialize(8888)
	l.Reset()
	if l.Started() || l.Balance() != 0 {
		t.Fatalf("reset must return to pre-start state")
	}
}

func TestObserversSeeOldAndNew(t *testing.T) {
	l := New()
	type change struct{ old, new int }
	var got []change
	cancel := l.Observe(func(o, n int) { got = append(got, change{o, n}) })
	l.Initialize(1000)
	l.Adjust(-300)
	l.Adjust(0)
	l.Adjust(-5000)
	want := []change{{0, 1000}, {1000, 700}, {700, 0}}
	if len(got) != len(want) {
		t.Fatalf("want %v got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("change %d: want %v got %v", i, want[i], got[i])
		}
	}
	cancel()
	l.Initialize(10)
	if len(got) != len(want) {
		t.Fatalf("cancelled observer must not be called")
	}
}
