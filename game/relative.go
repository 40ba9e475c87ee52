package game

import (
	"context"
	"strings"

	"github.com/zintix-labs/hongbao/event"
	"github.com/zintix-labs/hongbao/oracle"
	"github.com/zintix-labs/hongbao/payout"
	"github.com/zintix-labs/hongbao/spec"
)

// Relative 親戚稱謂大考驗：下注後由 oracle 出題，答對 1:1。
type Relative struct {
	*base
	payout   int
	question oracle.RelativeQuestion
	bet      int
}

func NewRelative(d Deps) Session {
	rs := d.Settings.Relative
	return &Relative{
		base:   newBase(spec.KindRelative, d, rs.DefaultBet),
		payout: rs.Payout,
	}
}

// PlaceBet Betting → Loading，題目到達後進入 Answering。
func (g *Relative) PlaceBet() bool {
	if g.closed || g.phase != Betting || !g.validBet(g.draft) {
		return false
	}
	g.begin()
	g.bet = g.draft
	g.question = oracle.RelativeQuestion{}
	g.cue(event.CueClick)
	g.setPhase(Loading)
	g.spawn(func(ctx context.Context) func() {
		q := g.d.Oracle.RelativeQuestion(ctx)
		return func() {
			if g.phase != Loading {
				return
			}
			g.question = q
			g.setPhase(Answering)
			g.d.Bus.Publish(event.QuestionAsked{Kind: string(g.kind), Question: q.Description})
		}
	})
	return true
}

// Submit Answering → AwaitingOracle。
func (g *Relative) Submit(text string) bool {
	answer := strings.TrimSpace(text)
	if g.closed || g.phase != Answering || answer == "" {
		return false
	}
	g.cue(event.CueClick)
	g.setPhase(AwaitingOracle)
	bet, q := g.bet, g.question
	g.spawn(func(ctx context.Context) func() {
		v := g.d.Oracle.JudgeRelative(ctx, q, answer)
		return func() { g.settle(bet, q, answer, v) }
	})
	return true
}

func (g *Relative) settle(bet int, q oracle.RelativeQuestion, answer string, v oracle.RelativeVerdict) {
	g.resolve(&Round{
		Bet:      bet,
		Delta:    payout.Relative(bet, g.payout, v.Correct),
		Question: q.Description,
		Answer:   answer,
		Relative: &v,
	})
	if v.Correct {
		g.cue(event.CueWin)
	} else {
		g.cue(event.CueLose)
	}
}

// PlayAgain 下注重設為 min(預設, 餘額)。
func (g *Relative) PlayAgain() bool {
	if !g.playAgain(false) {
		return false
	}
	if g.phase == Betting {
		g.question = oracle.RelativeQuestion{}
	}
	return true
}

func (g *Relative) View() View {
	v := g.view()
	if g.phase == Answering || g.phase == AwaitingOracle {
		v.Question = g.question.Description
	}
	return v
}
