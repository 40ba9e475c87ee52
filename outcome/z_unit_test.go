package outcome

import (
	"math"
	"testing"

	"github.com/zintix-labs/hongbao/sdk/core"
	"github.com/zintix-labs/hongbao/spec"
)

func TestGrantWithinRange(t *testing.T) {
	g := NewGrant(core.NewSeeded(core.Default(), 1), spec.GrantSetting{Min: 100, Max: 8888})
	for i := 0; i < 10000; i++ {
		v := g.Draw()
		if v < 100 || v > 8888 {
			t.Fatalf("grant out of range: %d", v)
		}
	}
}

func TestGrantResampled(t *testing.T) {
	g := NewGrant(core.NewSeeded(core.Default(), 2), spec.GrantSetting{Min: 100, Max: 8888})
	first := g.Draw()
	for i := 0; i < 50; i++ {
		if g.Draw() != first {
			return
		}
	}
	t.Fatalf("grant never changed across 50 draws")
}

func TestRollerFaces(t *testing.T) {
	r := NewRoller(core.NewSeeded(core.Default(), 3))
	var seen [7]bool
	for i := 0; i < 3000; i++ {
		d := r.Roll()
		if !d.Valid() {
			t.Fatalf("invalid dice: %v", d)
		}
		for _, f := range d {
			seen[f] = true
		}
	}
	for f := 1; f <= 6; f++ {
		if !seen[f] {
			t.Fatalf("face %d never rolled", f)
		}
	}
}

func TestDiceHelpers(t *testing.T) {
	d := Dice{5, 5, 5}
	if !d.Triple() || d.Sum() != 15 {
		t.Fatalf("unexpected triple/sum for %v", d)
	}
	if (Dice{2, 3, 4}).Triple() {
		t.Fatalf("2,3,4 is not a triple")
	}
	if (Dice{0, 3, 7}).Valid() {
		t.Fatalf("0 and 7 are not faces")
	}
	s := NewSequence(Dice{1, 2, 3}, Dice{6, 6, 6})
	if s.Roll() != (Dice{1, 2, 3}) || s.Roll() != (Dice{6, 6, 6}) || s.Roll() != (Dice{6, 6, 6}) {
		t.Fatalf("sequence must replay then repeat last")
	}
	if Fixed(Dice{4, 4, 1}).Roll() != (Dice{4, 4, 1}) {
		t.Fatalf("fixed roll mismatch")
	}
}

func TestMultiplierAccept(t *testing.T) {
	r := MultiplierRange{Min: 1.5, Max: 3.0}
	if m, ok := r.Accept(false, 2.2); !ok || m != 0 {
		t.Fatalf("bad omen must fix multiplier at 0, got %v %v", m, ok)
	}
	if m, ok := r.Accept(true, 2.2); !ok || m != 2.2 {
		t.Fatalf("in-range multiplier must pass through, got %v", m)
	}
	if m, _ := r.Accept(true, 9); m != 3.0 {
		t.Fatalf("expected clamp to 3.0, got %v", m)
	}
	if m, _ := r.Accept(true, 0.2); m != 1.5 {
		t.Fatalf("expected clamp to 1.5, got %v", m)
	}
	if _, ok := r.Accept(true, math.NaN()); ok {
		t.Fatalf("NaN must be rejected")
	}
	if _, ok := r.Accept(true, math.Inf(1)); ok {
		t.Fatalf("Inf must be rejected")
	}
}

func TestQuestionsDraw(t *testing.T) {
	bank := []string{"a", "b"}
	q := NewQuestions(core.NewSeeded(core.Default(), 5), bank)
	for i := 0; i < 20; i++ {
		if got := q.Draw(); got != "a" && got != "b" {
			t.Fatalf("unexpected question %q", got)
		}
	}
	if NewQuestions(core.NewSeeded(core.Default(), 5), nil).Draw() != "" {
		t.Fatalf("empty bank must yield empty question")
	}
}
