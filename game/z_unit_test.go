package game

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/zintix-labs/hongbao/configs"
	"github.com/zintix-labs/hongbao/event"
	"github.com/zintix-labs/hongbao/ledger"
	"github.com/zintix-labs/hongbao/oracle"
	"github.com/zintix-labs/hongbao/outcome"
	"github.com/zintix-labs/hongbao/payout"
	"github.com/zintix-labs/hongbao/sched"
	"github.com/zintix-labs/hongbao/sdk/core"
	"github.com/zintix-labs/hongbao/spec"
)

type harness struct {
	t      *testing.T
	set    *spec.Settings
	led    *ledger.Ledger
	clk    *sched.Manual
	bus    *event.Bus
	stub   *oracle.Stub
	guard  *oracle.Guard
	dice   outcome.DiceSource
	cosm   outcome.DiceSource
	events []event.Event
	busted int
}

func newHarness(t *testing.T, balance int) *harness {
	t.Helper()
	set, err := configs.Default()
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	h := &harness{
		t:    t,
		set:  set,
		led:  ledger.New(),
		clk:  sched.NewManual(),
		bus:  event.NewBus(),
		stub: &oracle.Stub{},
		dice: outcome.NewRoller(core.NewSeeded(core.Default(), 1)),
		cosm: outcome.NewRoller(core.NewSeeded(core.Cosmetic(), 2)),
	}
	h.guard = oracle.NewGuard(h.stub, outcome.NewMultiplierRange(set.Dream), oracle.WithTimeout(50*time.Millisecond))
	h.bus.Subscribe(func(e event.Event) { h.events = append(h.events, e) })
	h.led.Initialize(balance)
	return h
}

func (h *harness) build(k spec.Kind) Session {
	h.t.Helper()
	s, err := Default().Build(k, Deps{
		Settings: h.set,
		Ledger:   h.led,
		Sched:    h.clk,
		Bus:      h.bus,
		Oracle:   h.guard,
		RNG:      core.NewSeeded(core.Default(), 3),
		Dice:     h.dice,
		Cosmetic: h.cosm,
		OnBust:   func() { h.busted++ },
	})
	if err != nil {
		h.t.Fatalf("build %s: %v", k, err)
	}
	return s
}

func (h *harness) count(tp event.Type) int {
	n := 0
	for _, e := range h.events {
		if e.Type() == tp {
			n++
		}
	}
	return n
}

func TestBetRangeGuard(t *testing.T) {
	for _, k := range spec.Kinds() {
		h := newHarness(t, 300)
		s := h.build(k)
		before := s.Bet()
		for _, bad := range []int{0, -5, 301, math.MaxInt} {
			if s.Draft(bad) {
				t.Fatalf("%s: draft %d must be rejected", k, bad)
			}
			if s.Bet() != before || s.Phase() != Betting {
				t.Fatalf("%s: rejected draft must not change state", k)
			}
		}
		if !s.Draft(1) || !s.Draft(300) || s.Bet() != 300 {
			t.Fatalf("%s: bounds 1 and balance must be accepted", k)
		}
	}
}

func TestDefaultDrafts(t *testing.T) {
	h := newHarness(t, 1000)
	if h.build(spec.KindDice).Bet() != 50 || h.build(spec.KindAuntie).Bet() != 100 {
		t.Fatalf("unexpected default bets")
	}
	h = newHarness(t, 30)
	if h.build(spec.KindDream).Bet() != 30 {
		t.Fatalf("default bet must clamp to balance")
	}
}

func TestAuntiePassPaysFiveTimes(t *testing.T) {
	h := newHarness(t, 1000)
	var gotQ string
	h.stub.Judge = func(_ context.Context, q, _ string) (oracle.AuntieVerdict, error) {
		gotQ = q
		return oracle.AuntieVerdict{Score: 95, Comment: "嘴真甜", Pass: true}, nil
	}
	s := h.build(spec.KindAuntie)
	if s.Submit("太早了") {
		t.Fatalf("submit before placing bet must be rejected")
	}
	if !s.PlaceBet() || s.Phase() != Answering {
		t.Fatalf("expected answering, got %s", s.Phase())
	}
	q := s.View().Question
	if q == "" || h.count(event.TypeQuestionAsked) != 1 {
		t.Fatalf("question must be drawn on entering answering")
	}
	if s.Submit("   ") {
		t.Fatalf("blank answer must be rejected")
	}
	if !s.Submit("明年就結婚") || s.Phase() != AwaitingOracle {
		t.Fatalf("expected awaiting oracle")
	}
	if h.led.Balance() != 1000 {
		t.Fatalf("balance must not change before resolution")
	}
	h.clk.Flush()
	if s.Phase() != Resolved || h.led.Balance() != 1500 {
		t.Fatalf("expected resolved with 1500, got %s %d", s.Phase(), h.led.Balance())
	}
	if gotQ != q {
		t.Fatalf("oracle must see the drawn question")
	}
	last := s.View().Last
	if last == nil || last.Title != payout.AuntieTitle(95) || last.Delta != 500 {
		t.Fatalf("unexpected last round %+v", last)
	}
}

func TestAuntieOracleFailureIsLoss(t *testing.T) {
	h := newHarness(t, 1000)
	s := h.build(spec.KindAuntie)
	s.Draft(200)
	s.PlaceBet()
	s.Submit("不告訴你")
	h.clk.Flush()
	if s.Phase() != Resolved || h.led.Balance() != 800 {
		t.Fatalf("fallback must resolve as loss, got %s %d", s.Phase(), h.led.Balance())
	}
	if !s.View().Last.Auntie.Fallback {
		t.Fatalf("verdict must be flagged as fallback")
	}
}

func TestOracleHangNeverSticks(t *testing.T) {
	h := newHarness(t, 1000)
	block := make(chan struct{})
	defer close(block)
	h.stub.Dream = func(context.Context, string) (oracle.DreamVerdict, error) {
		<-block
		return oracle.DreamVerdict{Good: true, Multiplier: 3}, nil
	}
	s := h.build(spec.KindDream)
	s.Submit("會飛的豬")
	h.clk.Flush()
	if s.Phase() != Resolved || h.led.Balance() != 900 {
		t.Fatalf("hung oracle must time out into a loss, got %s %d", s.Phase(), h.led.Balance())
	}
}

func TestDiceShuffleBeforeTerminalDraw(t *testing.T) {
	h := newHarness(t, 1000)
	h.dice = outcome.Fixed{6, 6, 6}
	h.cosm = outcome.Fixed{1, 2, 4}
	s := h.build(spec.KindDice)
	if s.PlaceBet() {
		t.Fatalf("roll without category must be rejected")
	}
	if s.Choose("big") {
		t.Fatalf("unknown category must be rejected")
	}
	s.Choose(payout.Triple)
	s.Draft(100)
	if !s.PlaceBet() || s.Phase() != Rolling {
		t.Fatalf("expected rolling")
	}
	h.clk.Advance(1000 * time.Millisecond)
	if s.Phase() != Rolling || h.count(event.TypeDiceShuffled) != 10 {
		t.Fatalf("expected 10 frames still rolling, got %s %d", s.Phase(), h.count(event.TypeDiceShuffled))
	}
	h.clk.Advance(100 * time.Millisecond)
	if s.Phase() != Resolved || h.led.Balance() != 2000 {
		t.Fatalf("triple hit must pay 10x, got %s %d", s.Phase(), h.led.Balance())
	}
	resolvedAt, lastShuffle := -1, -1
	for i, e := range h.events {
		switch e.(type) {
		case event.DiceShuffled:
			lastShuffle = i
		case event.RoundResolved:
			resolvedAt = i
		}
	}
	if lastShuffle > resolvedAt {
		t.Fatalf("shuffle frames must complete before resolution")
	}
	v := s.View()
	if *v.Faces != (outcome.Dice{6, 6, 6}) {
		t.Fatalf("scored faces must come from the authoritative stream, got %v", *v.Faces)
	}
}

func TestDiceTripleLosesLow(t *testing.T) {
	h := newHarness(t, 1000)
	h.dice = outcome.Fixed{2, 2, 2}
	s := h.build(spec.KindDice)
	s.Choose(payout.Low)
	s.PlaceBet()
	h.clk.Advance(2 * time.Second)
	if h.led.Balance() != 950 {
		t.Fatalf("triple must lose a low bet, got %d", h.led.Balance())
	}
	if !s.PlaceBet() {
		t.Fatalf("dice must accept a new roll from resolved")
	}
}

// 輸掉後餘額低於原本的下注，下一局要以剩餘餘額為注而不是被拒絕。
func TestStaleBetReclampsAfterLoss(t *testing.T) {
	rounds := map[spec.Kind]func(h *harness, s Session) bool{
		spec.KindDice: func(h *harness, s Session) bool {
			ok := s.PlaceBet()
			h.clk.Advance(2 * time.Second)
			return ok
		},
		spec.KindAuntie: func(h *harness, s Session) bool {
			ok := s.PlaceBet() && s.Submit("不太好")
			h.clk.Flush()
			return ok
		},
		spec.KindDream: func(h *harness, s Session) bool {
			ok := s.Submit("掉牙")
			h.clk.Flush()
			return ok
		},
		spec.KindRelative: func(h *harness, s Session) bool {
			if !s.PlaceBet() {
				return false
			}
			h.clk.Flush()
			ok := s.Submit("阿姨")
			h.clk.Flush()
			return ok
		},
	}
	for _, k := range spec.Kinds() {
		h := newHarness(t, 150)
		h.dice = outcome.Fixed{2, 2, 2}
		h.stub.Judge = func(context.Context, string, string) (oracle.AuntieVerdict, error) {
			return oracle.AuntieVerdict{Score: 20}, nil
		}
		h.stub.Dream = func(context.Context, string) (oracle.DreamVerdict, error) {
			return oracle.DreamVerdict{Explanation: "不妙"}, nil
		}
		h.stub.Question = func(context.Context) (oracle.RelativeQuestion, error) {
			return oracle.RelativeQuestion{Description: "媽媽的弟弟", Answer: "舅舅"}, nil
		}
		h.stub.Relative = func(_ context.Context, _, answer string) (oracle.RelativeVerdict, error) {
			return oracle.RelativeVerdict{Correct: answer == "舅舅", CorrectAnswer: "舅舅"}, nil
		}
		s := h.build(k)
		s.Choose(payout.Low)
		if !s.Draft(120) || !rounds[k](h, s) {
			t.Fatalf("%s: first round rejected", k)
		}
		if h.led.Balance() != 30 || s.Bet() != 30 {
			t.Fatalf("%s: expected balance and bet 30, got %d %d", k, h.led.Balance(), s.Bet())
		}
		if k != spec.KindDice && !s.PlayAgain() {
			t.Fatalf("%s: play again rejected", k)
		}
		if !rounds[k](h, s) {
			t.Fatalf("%s: stale bet must be clamped, not rejected", k)
		}
		if last := s.View().Last; last == nil || last.Bet != 30 || h.led.Balance() != 0 {
			t.Fatalf("%s: second round must stake the remaining 30, got %+v balance=%d", k, last, h.led.Balance())
		}
	}
}

func TestDreamFormula(t *testing.T) {
	h := newHarness(t, 1000)
	h.stub.Dream = func(context.Context, string) (oracle.DreamVerdict, error) {
		return oracle.DreamVerdict{Good: true, Explanation: "大吉", Multiplier: 1.7}, nil
	}
	s := h.build(spec.KindDream)
	s.Draft(333)
	if s.Submit("") {
		t.Fatalf("empty dream must be rejected")
	}
	s.Submit("前男友")
	h.clk.Flush()
	if h.led.Balance() != 1000+233 {
		t.Fatalf("expected floor(333*1.7)-333, got %d", h.led.Balance()-1000)
	}
	if h.count(event.TypeCue) < 2 {
		t.Fatalf("expected click and fanfare cues")
	}
}

func TestRelativeFlow(t *testing.T) {
	h := newHarness(t, 500)
	h.stub.Question = func(context.Context) (oracle.RelativeQuestion, error) {
		return oracle.RelativeQuestion{Description: "媽媽的弟弟", Answer: "舅舅"}, nil
	}
	h.stub.Relative = func(_ context.Context, _, answer string) (oracle.RelativeVerdict, error) {
		return oracle.RelativeVerdict{Correct: answer == "舅舅", CorrectAnswer: "舅舅"}, nil
	}
	s := h.build(spec.KindRelative)
	if !s.PlaceBet() || s.Phase() != Loading {
		t.Fatalf("expected loading")
	}
	if s.Submit("舅舅") {
		t.Fatalf("answer before question must be rejected")
	}
	h.clk.Flush()
	if s.Phase() != Answering || s.View().Question != "媽媽的弟弟" {
		t.Fatalf("expected answering with question, got %s", s.Phase())
	}
	s.Submit("舅舅")
	h.clk.Flush()
	if s.Phase() != Resolved || h.led.Balance() != 600 {
		t.Fatalf("correct answer must pay 1:1, got %d", h.led.Balance())
	}
}

func TestCloseDiscardsLateResult(t *testing.T) {
	h := newHarness(t, 1000)
	h.stub.Judge = func(context.Context, string, string) (oracle.AuntieVerdict, error) {
		return oracle.AuntieVerdict{Pass: true, Score: 100}, nil
	}
	s := h.build(spec.KindAuntie)
	s.PlaceBet()
	s.Submit("我很好")
	s.Close()
	h.clk.Flush()
	if h.led.Balance() != 1000 || h.count(event.TypeRoundResolved) != 0 {
		t.Fatalf("late result must be discarded after close")
	}
	if s.Draft(10) || s.PlaceBet() || s.PlayAgain() {
		t.Fatalf("closed session must reject all input")
	}

	d := h.build(spec.KindDice)
	d.Choose(payout.High)
	d.PlaceBet()
	d.Close()
	h.clk.Advance(5 * time.Second)
	if h.led.Balance() != 1000 || h.clk.Timers() != 0 {
		t.Fatalf("closed dice session must cancel its timers")
	}
}

func TestPlayAgain(t *testing.T) {
	h := newHarness(t, 1000)
	h.stub.Judge = func(context.Context, string, string) (oracle.AuntieVerdict, error) {
		return oracle.AuntieVerdict{Score: 10}, nil
	}
	s := h.build(spec.KindAuntie)
	s.Draft(700)
	s.PlaceBet()
	s.Submit("沒有")
	h.clk.Flush()
	if !s.PlayAgain() || s.Phase() != Betting || s.Bet() != 300 {
		t.Fatalf("auntie keeps min(prev, balance), got %s %d", s.Phase(), s.Bet())
	}

	s.Draft(300)
	s.PlaceBet()
	s.Submit("還是沒有")
	h.clk.Flush()
	if h.led.Balance() != 0 {
		t.Fatalf("expected bust, got %d", h.led.Balance())
	}
	if !s.PlayAgain() || h.busted != 1 || s.Phase() != Resolved {
		t.Fatalf("play again at zero must signal bust")
	}
}

func TestDreamPlayAgainResetsDraft(t *testing.T) {
	h := newHarness(t, 1000)
	h.stub.Dream = func(context.Context, string) (oracle.DreamVerdict, error) {
		return oracle.DreamVerdict{Good: true, Multiplier: 2}, nil
	}
	s := h.build(spec.KindDream)
	s.Draft(700)
	s.Submit("金元寶")
	h.clk.Flush()
	if !s.PlayAgain() || s.Bet() != 100 {
		t.Fatalf("dream must reset draft to default, got %d", s.Bet())
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(spec.KindDice, NewDice); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.Register(spec.KindDice, NewDice); err == nil {
		t.Fatalf("duplicate must fail")
	}
	if _, err := MergeRegistry(r, Default()); err == nil {
		t.Fatalf("merge with duplicate kind must fail")
	}
	if _, err := NewRegistry().Build(spec.KindDream, Deps{}); err == nil {
		t.Fatalf("build of unknown kind must fail")
	}
	if len(Default().Kinds()) != 4 {
		t.Fatalf("expected four built-in games")
	}
}
