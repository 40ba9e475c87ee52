package payout

import (
	"testing"

	"github.com/zintix-labs/hongbao/outcome"
)

var table = DiceTable{Low: [2]int{4, 10}, High: [2]int{11, 17}, EvenPayout: 1, TriplePayout: 10}

func TestAuntiePaysOnPassOnly(t *testing.T) {
	for _, bet := range []int{1, 7, 100, 8888} {
		if got := Auntie(bet, 5, true); got != 5*bet {
			t.Fatalf("pass bet=%d: want %d got %d", bet, 5*bet, got)
		}
		if got := Auntie(bet, 5, false); got != -bet {
			t.Fatalf("fail bet=%d: want %d got %d", bet, -bet, got)
		}
	}
}

func TestTriplesLoseLowHigh(t *testing.T) {
	for f := 1; f <= 6; f++ {
		d := outcome.Dice{f, f, f}
		for _, c := range []Category{Low, High} {
			if got := table.Dice(100, c, d); got != -100 {
				t.Fatalf("triple %v on %s: want -100 got %d", d, c, got)
			}
		}
		if got := table.Dice(100, Triple, d); got != 1000 {
			t.Fatalf("triple %v on triple: want 1000 got %d", d, got)
		}
	}
}

func TestDiceCategories(t *testing.T) {
	cases := []struct {
		d    outcome.Dice
		c    Category
		want int
	}{
		{outcome.Dice{1, 1, 2}, Low, 50},
		{outcome.Dice{3, 3, 4}, Low, 50},
		{outcome.Dice{3, 3, 5}, Low, -50},
		{outcome.Dice{3, 3, 5}, High, 50},
		{outcome.Dice{6, 6, 5}, High, 50},
		{outcome.Dice{1, 2, 3}, High, -50},
		{outcome.Dice{1, 2, 3}, Triple, -50},
		{outcome.Dice{2, 5, 6}, None, -50},
	}
	for _, c := range cases {
		if got := table.Dice(50, c.c, c.d); got != c.want {
			t.Fatalf("%v on %q: want %d got %d", c.d, c.c, c.want, got)
		}
	}
}

func TestEveryNonTripleSumHitsExactlyOneSide(t *testing.T) {
	for a := 1; a <= 6; a++ {
		for b := 1; b <= 6; b++ {
			for c := 1; c <= 6; c++ {
				d := outcome.Dice{a, b, c}
				if d.Triple() {
					continue
				}
				if table.Hit(Low, d) == table.Hit(High, d) {
					t.Fatalf("%v must hit exactly one of low/high", d)
				}
			}
		}
	}
}

func TestDreamFormula(t *testing.T) {
	cases := []struct {
		bet  int
		good bool
		m    float64
		want int
	}{
		{100, true, 2.0, 100},
		{100, true, 1.5, 50},
		{333, true, 1.7, 233},
		{7, true, 2.9, 13},
		{100, false, 2.5, -100},
		{1, true, 1.5, 0},
	}
	for _, c := range cases {
		if got := Dream(c.bet, c.good, c.m); got != c.want {
			t.Fatalf("Dream(%d,%v,%v): want %d got %d", c.bet, c.good, c.m, c.want, got)
		}
	}
}

func TestRelative(t *testing.T) {
	if Relative(40, 1, true) != 40 || Relative(40, 1, false) != -40 {
		t.Fatalf("relative payout mismatch")
	}
}

func TestAuntieTitle(t *testing.T) {
	cases := map[int]string{
		100: "太神啦！阿姨直接包給你",
		95:  "這孩子嘴真甜！阿姨喜歡",
		80:  "嗯... 還算像句人話",
		60:  "算了，這次就放過你",
		59:  "唉，現在年輕人...",
		20:  "你這是在跟長輩頂嘴嗎？",
		0:   "出去！別說你認識我！",
	}
	for score, want := range cases {
		if got := AuntieTitle(score); got != want {
			t.Fatalf("score %d: want %q got %q", score, want, got)
		}
	}
}

func TestParseCategory(t *testing.T) {
	if c, ok := ParseCategory("triple"); !ok || c != Triple {
		t.Fatalf("expected triple")
	}
	if _, ok := ParseCategory("big"); ok {
		t.Fatalf("unknown category must be rejected")
	}
}
