package game

import (
	"context"
	"strings"

	"github.com/zintix-labs/hongbao/event"
	"github.com/zintix-labs/hongbao/oracle"
	"github.com/zintix-labs/hongbao/payout"
	"github.com/zintix-labs/hongbao/spec"
)

// Dream 周公解夢：下注與夢境一起送出，吉兆得 floor(bet*m)-bet，凶兆賠光。
type Dream struct {
	*base
}

func NewDream(d Deps) Session {
	return &Dream{base: newBase(spec.KindDream, d, d.Settings.Dream.DefaultBet)}
}

// Submit Betting → AwaitingOracle。
func (g *Dream) Submit(text string) bool {
	dream := strings.TrimSpace(text)
	if g.closed || g.phase != Betting || dream == "" || !g.validBet(g.draft) {
		return false
	}
	g.begin()
	bet := g.draft
	g.cue(event.CueClick)
	g.setPhase(AwaitingOracle)
	g.spawn(func(ctx context.Context) func() {
		v := g.d.Oracle.InterpretDream(ctx, dream)
		return func() { g.settle(bet, dream, v) }
	})
	return true
}

func (g *Dream) settle(bet int, dream string, v oracle.DreamVerdict) {
	g.resolve(&Round{
		Bet:    bet,
		Delta:  payout.Dream(bet, v.Good, v.Multiplier),
		Answer: dream,
		Dream:  &v,
	})
	if v.Good {
		g.cue(event.CueFanfare)
	} else {
		g.cue(event.CueLose)
	}
}

// PlayAgain 下注重設為 min(預設, 餘額)。
func (g *Dream) PlayAgain() bool {
	return g.playAgain(false)
}

func (g *Dream) View() View {
	return g.view()
}
