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
	"context"
	"log/slog"
	"time"

	"github.com/zintix-labs/hongbao/event"
	"github.com/zintix-labs/hongbao/payout"
	"github.com/zintix-labs/hongbao/sched"
	"github.com/zintix-labs/hongbao/spec"
)

// base 是四個遊戲共用的骨架：下注草稿、round token、計時器與 oracle 的生命週期。
type base struct {
	kind   spec.Kind
	d      Deps
	log    *slog.Logger
	phase  Phase
	draft  int
	defBet int
	round  uint64
	last   *Round
	timers []sched.Timer
	ctx    context.Context
	cancel context.CancelFunc
	closed bool
}

func newBase(kind spec.Kind, d Deps, defBet int) *base {
	ctx, cancel := context.WithCancel(context.Background())
	b := &base{
		kind:   kind,
		d:      d,
		log:    d.logger().With(slog.String("game", string(kind))),
		phase:  Betting,
		defBet: defBet,
		ctx:    ctx,
		cancel: cancel,
	}
	b.draft = min(defBet, b.balance())
	return b
}

func (b *base) Kind() spec.Kind { return b.kind }
func (b *base) Phase() Phase    { return b.phase }
func (b *base) Last() *Round    { return b.last }

func (b *base) Bet() int {
	return min(b.draft, b.balance())
}

func (b *base) balance() int { return b.d.Ledger.Balance() }

// validBet 下注守門：1 <= amount <= 餘額。
func (b *base) validBet(amount int) bool {
	return amount >= 1 && amount <= b.balance()
}

func (b *base) Draft(amount int) bool {
	if b.closed || b.phase != Betting || !b.validBet(amount) {
		return false
	}
	b.draft = amount
	return true
}

func (b *base) Choose(payout.Category) bool { return false }
func (b *base) PlaceBet() bool              { return false }
func (b *base) Submit(string) bool          { return false }

func (b *base) view() View {
	return View{Kind: b.kind, Phase: b.phase, Round: b.round, Bet: b.Bet(), Last: b.last}
}

func (b *base) setPhase(p Phase) {
	if b.phase == p {
		return
	}
	from := b.phase
	b.phase = p
	b.d.Bus.Publish(event.PhaseChanged{Kind: string(b.kind), Round: b.round, From: string(from), To: string(p)})
}

func (b *base) cue(n event.CueName) {
	b.d.Bus.Publish(event.Cue{Name: n})
}

// begin 開始新的一局並回傳其 token。
func (b *base) begin() uint64 {
	b.round++
	b.last = nil
	b.timers = b.timers[:0]
	return b.round
}

func (b *base) live(token uint64) bool {
	return !b.closed && b.round == token
}

// after 排一個只對當前 round 有效的計時器。
func (b *base) after(d time.Duration, fn func()) {
	token := b.round
	t := b.d.Sched.After(d, func() {
		if !b.live(token) {
			return
		}
		fn()
	})
	b.timers = append(b.timers, t)
}

// spawn 把 oracle 呼叫移出 loop；續行函數在 round 過期時被丟棄。
func (b *base) spawn(work func(ctx context.Context) func()) {
	token := b.round
	ctx := b.ctx
	b.d.Sched.Spawn(func() func() {
		then := work(ctx)
		return func() {
			if !b.live(token) {
				b.log.Debug("discard stale continuation", slog.Uint64("round", token))
				return
			}
			if then != nil {
				then()
			}
		}
	})
}

// resolve 進入 Resolved 並套用 delta，兩者在同一個 loop 任務中完成。
func (b *base) resolve(r *Round) {
	r.Kind = b.kind
	r.No = b.round
	b.last = r
	b.setPhase(Resolved)
	bal := b.d.Ledger.Adjust(r.Delta)
	// 餘額變少時草稿跟著夾回，骰子可直接從 Resolved 再搖
	b.draft = min(b.draft, bal)
	b.d.Bus.Publish(r.Event(bal))
	b.log.Info("round resolved",
		slog.Uint64("round", r.No),
		slog.Int("bet", r.Bet),
		slog.Int("delta", r.Delta),
		slog.Int("balance", bal),
	)
}

// playAgain 處理 Resolved 之後的共用流程；keep 為 true 時保留上一局草稿（夾到餘額內）。
func (b *base) playAgain(keep bool) bool {
	if b.closed || b.phase != Resolved {
		return false
	}
	b.cue(event.CueClick)
	if b.balance() <= 0 {
		if b.d.OnBust != nil {
			b.d.OnBust()
		}
		return true
	}
	if keep {
		b.draft = min(b.draft, b.balance())
	} else {
		b.draft = min(b.defBet, b.balance())
	}
	b.setPhase(Betting)
	return true
}

func (b *base) Close() {
	if b.closed {
		return
	}
	b.closed = true
	b.round++
	for _, t := range b.timers {
		t.Stop()
	}
	b.timers = nil
	b.cancel()
}
