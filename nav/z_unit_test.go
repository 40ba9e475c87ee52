package nav

import (
	"context"
	"testing"
	"time"

	"github.com/zintix-labs/hongbao/configs"
	"github.com/zintix-labs/hongbao/event"
	"github.com/zintix-labs/hongbao/oracle"
	"github.com/zintix-labs/hongbao/outcome"
	"github.com/zintix-labs/hongbao/payout"
	"github.com/zintix-labs/hongbao/sched"
	"github.com/zintix-labs/hongbao/sdk/core"
	"github.com/zintix-labs/hongbao/spec"
)

type fixture struct {
	n      *Navigator
	clk    *sched.Manual
	stub   *oracle.Stub
	events []event.Event
}

// newFixture 建立紅包金額固定為 grant 的牌局，骰子結果由 dice 決定。
func newFixture(t *testing.T, grant int, dice outcome.DiceSource) *fixture {
	t.Helper()
	set, err := configs.Default()
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	set.Grant = spec.GrantSetting{Min: grant, Max: grant}
	set.Games = append(set.Games, spec.KindRelative)
	if dice == nil {
		dice = outcome.NewRoller(core.NewSeeded(core.Default(), 7))
	}
	f := &fixture{clk: sched.NewManual(), stub: &oracle.Stub{}}
	bus := event.NewBus()
	bus.Subscribe(func(e event.Event) { f.events = append(f.events, e) })
	n, err := New(Config{
		Settings: set,
		Sched:    f.clk,
		Bus:      bus,
		Oracle:   oracle.NewGuard(f.stub, outcome.NewMultiplierRange(set.Dream), oracle.WithTimeout(50*time.Millisecond)),
		RNG:      core.NewSeeded(core.Default(), 8),
		Dice:     dice,
		Cosmetic: outcome.NewRoller(core.NewSeeded(core.Cosmetic(), 9)),
	})
	if err != nil {
		t.Fatalf("new navigator: %v", err)
	}
	f.n = n
	return f
}

func (f *fixture) has(tp event.Type) bool {
	for _, e := range f.events {
		if e.Type() == tp {
			return true
		}
	}
	return false
}

func (f *fixture) rollDice(t *testing.T, c payout.Category, bet int) {
	t.Helper()
	if !f.n.Enter(spec.KindDice) {
		t.Fatalf("enter dice failed")
	}
	s := f.n.Session()
	if !s.Choose(c) || !s.Draft(bet) || !s.PlaceBet() {
		t.Fatalf("placing dice bet failed")
	}
	f.clk.Advance(f.n.Settings().Dice.ShuffleInterval() * time.Duration(f.n.Settings().Dice.ShuffleFrames))
}

func TestScenarioLowWins(t *testing.T) {
	f := newFixture(t, 1000, outcome.Fixed{2, 3, 4})
	f.n.OpenEnvelope()
	f.rollDice(t, payout.Low, 100)
	last := f.n.Session().View().Last
	if last == nil || last.Delta != 100 || f.n.Balance() != 1100 {
		t.Fatalf("expected +100 and 1100, got %+v %d", last, f.n.Balance())
	}
}

func TestScenarioTripleLosesHigh(t *testing.T) {
	f := newFixture(t, 1000, outcome.Fixed{5, 5, 5})
	f.n.OpenEnvelope()
	f.rollDice(t, payout.High, 100)
	if last := f.n.Session().View().Last; last.Delta != -100 || f.n.Balance() != 900 {
		t.Fatalf("triple must lose high: %+v %d", last, f.n.Balance())
	}
}

func TestScenarioAuntieAllIn(t *testing.T) {
	f := newFixture(t, 200, nil)
	f.stub.Judge = func(context.Context, string, string) (oracle.AuntieVerdict, error) {
		return oracle.AuntieVerdict{Score: 61, Comment: "算了", Pass: true}, nil
	}
	f.n.OpenEnvelope()
	f.n.Enter(spec.KindAuntie)
	s := f.n.Session()
	if !s.Draft(200) || !s.PlaceBet() || !s.Submit("今年升官了") {
		t.Fatalf("auntie flow rejected")
	}
	f.clk.Flush()
	if f.n.Balance() != 1200 || s.View().Last.Delta != 1000 {
		t.Fatalf("expected +1000 and 1200, got %d", f.n.Balance())
	}
}

func TestScenarioGameOverAfterGrace(t *testing.T) {
	f := newFixture(t, 100, outcome.Fixed{1, 2, 3})
	f.n.OpenEnvelope()
	f.rollDice(t, payout.High, 100)
	if f.n.Balance() != 0 {
		t.Fatalf("expected bust, got %d", f.n.Balance())
	}
	if f.n.View() != InGame || f.has(event.TypeGameOver) || !f.n.GraceArmed() {
		t.Fatalf("game over must wait for the grace delay")
	}
	f.clk.Advance(1499 * time.Millisecond)
	if f.n.View() != InGame {
		t.Fatalf("game over fired early")
	}
	f.clk.Advance(time.Millisecond)
	if f.n.View() != GameOver || !f.has(event.TypeGameOver) {
		t.Fatalf("expected game over after 1500ms, got %s", f.n.View())
	}
	if f.n.Session() != nil {
		t.Fatalf("session must be torn down on game over")
	}
}

func TestPlayAgainAtZeroEndsImmediately(t *testing.T) {
	f := newFixture(t, 100, outcome.Fixed{1, 2, 3})
	f.n.OpenEnvelope()
	f.rollDice(t, payout.High, 100)
	f.n.Session().PlayAgain()
	if f.n.View() != GameOver || f.n.GraceArmed() {
		t.Fatalf("play again at zero must end the session now")
	}
	f.clk.Advance(5 * time.Second)
	n := 0
	for _, e := range f.events {
		if e.Type() == event.TypeGameOver {
			n++
		}
	}
	if n != 1 {
		t.Fatalf("expected exactly one game over event, got %d", n)
	}
}

func TestNavigationGuards(t *testing.T) {
	f := newFixture(t, 500, nil)
	if f.n.Enter(spec.KindDice) || f.n.Back() || f.n.Restart() {
		t.Fatalf("uninitialized session must reject navigation")
	}
	if !f.n.OpenEnvelope() || f.n.OpenEnvelope() {
		t.Fatalf("envelope opens exactly once")
	}
	if f.n.View() != Lobby || f.n.Balance() != 500 || !f.has(event.TypeEnvelopeOpened) {
		t.Fatalf("expected lobby with 500")
	}
	if f.n.Enter("mahjong") {
		t.Fatalf("unknown game must be rejected")
	}
	if !f.n.Enter(spec.KindDream) || f.n.Enter(spec.KindDice) {
		t.Fatalf("only one game at a time")
	}
	if !f.n.Back() || f.n.View() != Lobby || f.n.Session() != nil {
		t.Fatalf("back must tear down and return to lobby")
	}
	if !f.n.Restart() || f.n.View() != Uninitialized || f.n.Balance() != 0 {
		t.Fatalf("restart from lobby must reset the session")
	}
	if !f.has(event.TypeSessionReset) {
		t.Fatalf("missing session reset event")
	}
	if !f.n.OpenEnvelope() {
		t.Fatalf("envelope must open again after restart")
	}
}

func TestDisabledGameRejected(t *testing.T) {
	f := newFixture(t, 500, nil)
	f.n.cfg.Settings.Games = []spec.Kind{spec.KindDice}
	f.n.OpenEnvelope()
	if f.n.Enter(spec.KindAuntie) {
		t.Fatalf("disabled game must be rejected")
	}
}

func TestBackDiscardsPendingOracle(t *testing.T) {
	f := newFixture(t, 1000, nil)
	f.stub.Dream = func(context.Context, string) (oracle.DreamVerdict, error) {
		return oracle.DreamVerdict{Good: true, Multiplier: 3}, nil
	}
	f.n.OpenEnvelope()
	f.n.Enter(spec.KindDream)
	f.n.Session().Submit("金元寶")
	f.n.Back()
	f.clk.Flush()
	if f.n.Balance() != 1000 || f.has(event.TypeRoundResolved) {
		t.Fatalf("late oracle result must be discarded after back")
	}
}

func TestOracleFailureInjection(t *testing.T) {
	failures := map[string]func(*oracle.Stub){
		"error": func(s *oracle.Stub) {
			s.Judge = func(context.Context, string, string) (oracle.AuntieVerdict, error) {
				return oracle.AuntieVerdict{}, oracle.ErrMalformed
			}
		},
		"panic": func(s *oracle.Stub) {
			s.Judge = func(context.Context, string, string) (oracle.AuntieVerdict, error) { panic("boom") }
		},
		"hang": func(s *oracle.Stub) {
			s.Judge = func(ctx context.Context, _, _ string) (oracle.AuntieVerdict, error) {
				<-ctx.Done()
				return oracle.AuntieVerdict{}, ctx.Err()
			}
		},
		"missing": func(*oracle.Stub) {},
	}
	for name, inject := range failures {
		f := newFixture(t, 1000, nil)
		inject(f.stub)
		f.n.OpenEnvelope()
		f.n.Enter(spec.KindAuntie)
		s := f.n.Session()
		s.PlaceBet()
		s.Submit("秘密")
		f.clk.Flush()
		if s.Phase() != "resolved" || f.n.Balance() != 900 {
			t.Fatalf("%s: expected resolved loss, got %s %d", name, s.Phase(), f.n.Balance())
		}
	}
}

func TestBalanceRecoveryCancelsGrace(t *testing.T) {
	f := newFixture(t, 100, outcome.NewSequence(outcome.Dice{1, 2, 3}))
	f.n.OpenEnvelope()
	f.rollDice(t, payout.High, 100)
	if !f.n.GraceArmed() {
		t.Fatalf("grace must be armed at zero")
	}
	f.n.led.Adjust(50)
	if f.n.GraceArmed() {
		t.Fatalf("positive balance must cancel the grace timer")
	}
	f.clk.Advance(3 * time.Second)
	if f.n.View() != InGame {
		t.Fatalf("cancelled grace must not end the session")
	}
}

func TestSnapshot(t *testing.T) {
	f := newFixture(t, 800, nil)
	f.n.OpenEnvelope()
	f.n.Enter(spec.KindDice)
	snap := f.n.Snapshot()
	if snap.View != InGame || snap.Kind != spec.KindDice || snap.Balance != 800 || snap.Game == nil {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if snap.Game.Bet != 50 || snap.Game.Phase != "betting" {
		t.Fatalf("unexpected game view %+v", snap.Game)
	}
}
