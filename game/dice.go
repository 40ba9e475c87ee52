// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package game

import (
	"time"

	"github.com/zintix-labs/hongbao/event"
	"github.com/zintix-labs/hongbao/outcome"
	"github.com/zintix-labs/hongbao/payout"
	"github.com/zintix-labs/hongbao/spec"
)

// Dice 馬年骰子樂：選大、小或豹子後開搖。
//
// 搖骰動畫的每一格都來自表演流；所有格播完之後才從權威流抽唯一一次計分骰面。
// 骰子沒有結算畫面，Resolved 時可直接再下注。
type Dice struct {
	*base
	table    payout.DiceTable
	frames   int
	cat      payout.Category
	faces    outcome.Dice
	betInUse int
}

func NewDice(d Deps) Session {
	ds := d.Settings.Dice
	return &Dice{
		base:   newBase(spec.KindDice, d, ds.DefaultBet),
		table:  payout.NewDiceTable(ds),
		frames: max(0, ds.ShuffleFrames),
		faces:  outcome.Dice{1, 1, 1},
	}
}

func (g *Dice) open() bool {
	return !g.closed && (g.phase == Betting || g.phase == Resolved)
}

func (g *Dice) Draft(amount int) bool {
	if !g.open() || !g.validBet(amount) {
		return false
	}
	g.draft = amount
	return true
}

func (g *Dice) Choose(c payout.Category) bool {
	if !g.open() {
		return false
	}
	if _, ok := payout.ParseCategory(string(c)); !ok {
		return false
	}
	g.cat = c
	g.cue(event.CueClick)
	return true
}

// PlaceBet 開搖：Betting/Resolved → Rolling。
func (g *Dice) PlaceBet() bool {
	if !g.open() || g.cat == payout.None || !g.validBet(g.draft) {
		return false
	}
	g.begin()
	g.betInUse = g.draft
	g.cue(event.CueDiceShake)
	g.setPhase(Rolling)

	interval := g.d.Settings.Dice.ShuffleInterval()
	if g.frames == 0 {
		g.after(interval, g.finish)
		return true
	}
	for i := 1; i <= g.frames; i++ {
		frame := i
		g.after(time.Duration(frame)*interval, func() {
			g.faces = g.d.Cosmetic.Roll()
			g.d.Bus.Publish(event.DiceShuffled{Frame: frame, Faces: g.faces})
			if frame == g.frames {
				g.finish()
			}
		})
	}
	return true
}

// finish 唯一一次權威抽骰並結算。
func (g *Dice) finish() {
	if g.phase != Rolling {
		return
	}
	d := g.d.Dice.Roll()
	g.faces = d
	bet, cat := g.betInUse, g.cat
	g.resolve(&Round{
		Bet:      bet,
		Delta:    g.table.Dice(bet, cat, d),
		Dice:     &d,
		Category: cat,
	})
	if g.table.Hit(cat, d) {
		g.cue(event.CueWin)
	} else {
		g.cue(event.CueLose)
	}
}

// PlayAgain 保留上一局的類別與下注（夾到餘額內）。
func (g *Dice) PlayAgain() bool {
	return g.playAgain(true)
}

func (g *Dice) View() View {
	v := g.view()
	v.Category = g.cat
	f := g.faces
	v.Faces = &f
	return v
}
