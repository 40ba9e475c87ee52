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

// Package game 是四個下注小遊戲的狀態機。
//
// 每個 Session 只在 sched 的 loop 上被操作。不合法的輸入一律是 no-op 並回傳 false，
// 狀態完全不變；餘額只在進入 Resolved 的同一個 loop 任務中被調整一次。
package game

import (
	"io"
	"log/slog"

	"github.com/zintix-labs/hongbao/event"
	"github.com/zintix-labs/hongbao/ledger"
	"github.com/zintix-labs/hongbao/oracle"
	"github.com/zintix-labs/hongbao/outcome"
	"github.com/zintix-labs/hongbao/payout"
	"github.com/zintix-labs/hongbao/sched"
	"github.com/zintix-labs/hongbao/sdk/core"
	"github.com/zintix-labs/hongbao/spec"
)

type Phase string

const (
	Betting        Phase = "betting"
	Answering      Phase = "answering"
	Loading        Phase = "loading"
	Rolling        Phase = "rolling"
	AwaitingOracle Phase = "awaiting_oracle"
	Resolved       Phase = "resolved"
)

// Session 一局遊戲的狀態機。
type Session interface {
	Kind() spec.Kind
	Phase() Phase
	// Bet 目前草擬的下注金額。
	Bet() int
	// Draft 草擬下注金額，需滿足 1 <= amount <= 餘額。
	Draft(amount int) bool
	// Choose 選擇骰子下注類別；其他遊戲一律回傳 false。
	Choose(c payout.Category) bool
	// PlaceBet 送出下注：阿姨出題、親戚出題、骰子開搖。周公解夢請用 Submit。
	PlaceBet() bool
	// Submit 送出文字：阿姨與親戚的回答，或周公解夢的夢境（同時送出下注）。
	Submit(text string) bool
	// PlayAgain 從 Resolved 回到 Betting；餘額為 0 時改為通知 OnBust。
	PlayAgain() bool
	View() View
	// Close 拆除 session：取消計時器與 oracle 呼叫，之後到達的結果一律丟棄。
	Close()
}

// Deps 是 Session 的外部依賴，由 navigator 注入。
type Deps struct {
	Settings *spec.Settings
	Ledger   *ledger.Ledger
	Sched    sched.Scheduler
	Bus      *event.Bus
	Oracle   *oracle.Guard
	// RNG 權威亂數流，用於抽阿姨題目。
	RNG *core.Core
	// Dice 權威骰子流，每局只抽一次。
	Dice outcome.DiceSource
	// Cosmetic 表演骰子流，只用於搖骰動畫。
	Cosmetic outcome.DiceSource
	// OnBust 在 Resolved 且餘額為 0 時按下 PlayAgain 被呼叫。
	OnBust func()
	Log    *slog.Logger
}

func (d *Deps) logger() *slog.Logger {
	if d.Log == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return d.Log
}

// Round 一局的結算結果，只保留到下一局開始。
type Round struct {
	Kind  spec.Kind `json:"kind"`
	No    uint64    `json:"no"`
	Bet   int       `json:"bet"`
	Delta int       `json:"delta"`

	Dice     *outcome.Dice   `json:"dice,omitempty"`
	Category payout.Category `json:"category,omitempty"`

	Question string `json:"question,omitempty"`
	Answer   string `json:"answer,omitempty"`
	Title    string `json:"title,omitempty"`

	Auntie   *oracle.AuntieVerdict   `json:"auntie,omitempty"`
	Dream    *oracle.DreamVerdict    `json:"dream,omitempty"`
	Relative *oracle.RelativeVerdict `json:"relative,omitempty"`
}

func (r *Round) Win() bool { return r.Delta > 0 }

// Event 轉成對外的 round.resolved 事件。
func (r *Round) Event(balance int) event.RoundResolved {
	e := event.RoundResolved{
		Kind:     string(r.Kind),
		Round:    r.No,
		Bet:      r.Bet,
		Delta:    r.Delta,
		Balance:  balance,
		Win:      r.Win(),
		Category: string(r.Category),
		Question: r.Question,
		Answer:   r.Answer,
		Title:    r.Title,
	}
	if r.Dice != nil {
		e.Dice = []int{r.Dice[0], r.Dice[1], r.Dice[2]}
	}
	switch {
	case r.Auntie != nil:
		e.Score = r.Auntie.Score
		e.Comment = r.Auntie.Comment
	case r.Dream != nil:
		e.Multiplier = r.Dream.Multiplier
		e.Explanation = r.Dream.Explanation
	case r.Relative != nil:
		e.Comment = r.Relative.Comment
		e.CorrectAnswer = r.Relative.CorrectAnswer
	}
	return e
}

// View 是 Session 的唯讀快照。
type View struct {
	Kind     spec.Kind       `json:"kind"`
	Phase    Phase           `json:"phase"`
	Round    uint64          `json:"round"`
	Bet      int             `json:"bet"`
	Category payout.Category `json:"category,omitempty"`
	Question string          `json:"question,omitempty"`
	Faces    *outcome.Dice   `json:"faces,omitempty"`
	Last     *Round          `json:"last,omitempty"`
}
