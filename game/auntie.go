package game

import (
	"context"
	"strings"

	"github.com/zintix-labs/hongbao/event"
	"github.com/zintix-labs/hongbao/oracle"
	"github.com/zintix-labs/hongbao/outcome"
	"github.com/zintix-labs/hongbao/payout"
	"github.com/zintix-labs/hongbao/spec"
)

// Auntie 阿姨的靈魂拷問：下注後抽一題，回答交給 oracle 評分，通過贏 K 倍。
type Auntie struct {
	*base
	questions *outcome.Questions
	payout    int
	question  string
	bet       int
}

func NewAuntie(d Deps) Session {
	as := d.Settings.Auntie
	return &Auntie{
		base:      newBase(spec.KindAuntie, d, as.DefaultBet),
		questions: outcome.NewQuestions(d.RNG, as.Questions),
		payout:    as.Payout,
	}
}

// PlaceBet Betting → Answering，同時抽出題目。
func (a *Auntie) PlaceBet() bool {
	if a.closed || a.phase != Betting || !a.validBet(a.draft) {
		return false
	}
	a.begin()
	a.bet = a.draft
	a.question = a.questions.Draw()
	a.cue(event.CueClick)
	a.setPhase(Answering)
	a.d.Bus.Publish(event.QuestionAsked{Kind: string(a.kind), Question: a.question})
	return true
}

// Submit Answering → AwaitingOracle。
func (a *Auntie) Submit(text string) bool {
	answer := strings.TrimSpace(text)
	if a.closed || a.phase != Answering || answer == "" {
		return false
	}
	a.cue(event.CueClick)
	a.setPhase(AwaitingOracle)
	bet, question := a.bet, a.question
	a.spawn(func(ctx context.Context) func() {
		v := a.d.Oracle.JudgeAnswer(ctx, question, answer)
		return func() { a.settle(bet, question, answer, v) }
	})
	return true
}

func (a *Auntie) settle(bet int, question, answer string, v oracle.AuntieVerdict) {
	a.resolve(&Round{
		Bet:      bet,
		Delta:    payout.Auntie(bet, a.payout, v.Pass),
		Question: question,
		Answer:   answer,
		Title:    payout.AuntieTitle(v.Score),
		Auntie:   &v,
	})
	if v.Pass {
		a.cue(event.CueWin)
	} else {
		a.cue(event.CueLose)
	}
}

// PlayAgain 保留上一局的下注（夾到餘額內）。
func (a *Auntie) PlayAgain() bool {
	if !a.playAgain(true) {
		return false
	}
	if a.phase == Betting {
		a.question = ""
	}
	return true
}

func (a *Auntie) View() View {
	v := a.view()
	if a.phase == Answering || a.phase == AwaitingOracle {
		v.Question = a.question
	}
	return v
}
