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

// Package event 定義牌局對外輸出的事件，以及同步派送的 Bus。
package event

import "sync"

// Type 事件種類，也是對外 JSON 的 type 欄位。
type Type string

const (
	TypeBalanceChanged Type = "balance.changed"
	TypeRoundResolved  Type = "round.resolved"
	TypeGameOver       Type = "session.gameover"
	TypeSessionReset   Type = "session.reset"
	TypeEnvelopeOpened Type = "envelope.opened"
	TypeViewChanged    Type = "view.changed"
	TypePhaseChanged   Type = "phase.changed"
	TypeDiceShuffled   Type = "dice.shuffled"
	TypeQuestionAsked  Type = "question.asked"
	TypeCue            Type = "cue"
)

type Event interface {
	Type() Type
}

type BalanceChanged struct {
	Old int `json:"old"`
	New int `json:"new"`
}

func (BalanceChanged) Type() Type { return TypeBalanceChanged }

// RoundResolved 一局結算。只有與該遊戲相關的欄位會被填寫。
type RoundResolved struct {
	Kind    string `json:"kind"`
	Round   uint64 `json:"round"`
	Bet     int    `json:"bet"`
	Delta   int    `json:"delta"`
	Balance int    `json:"balance"`
	Win     bool   `json:"win"`

	Dice     []int  `json:"dice,omitempty"`
	Category string `json:"category,omitempty"`

	Question string `json:"question,omitempty"`
	Answer   string `json:"answer,omitempty"`
	Score    int    `json:"score,omitempty"`
	Title    string `json:"title,omitempty"`
	Comment  string `json:"comment,omitempty"`

	Multiplier  float64 `json:"multiplier,omitempty"`
	Explanation string  `json:"explanation,omitempty"`

	CorrectAnswer string `json:"correct_answer,omitempty"`
}

func (RoundResolved) Type() Type { return TypeRoundResolved }

type GameOver struct {
	Kind string `json:"kind,omitempty"`
}

func (GameOver) Type() Type { return TypeGameOver }

type SessionReset struct{}

func (SessionReset) Type() Type { return TypeSessionReset }

type EnvelopeOpened struct {
	Amount int `json:"amount"`
}

func (EnvelopeOpened) Type() Type { return TypeEnvelopeOpened }

type ViewChanged struct {
	From string `json:"from"`
	To   string `json:"to"`
	Kind string `json:"kind,omitempty"`
}

func (ViewChanged) Type() Type { return TypeViewChanged }

type PhaseChanged struct {
	Kind  string `json:"kind"`
	Round uint64 `json:"round"`
	From  string `json:"from"`
	To    string `json:"to"`
}

func (PhaseChanged) Type() Type { return TypePhaseChanged }

// DiceShuffled 搖骰動畫的一格，骰面來自表演流，不參與計分。
type DiceShuffled struct {
	Frame int    `json:"frame"`
	Faces [3]int `json:"faces"`
}

func (DiceShuffled) Type() Type { return TypeDiceShuffled }

type QuestionAsked struct {
	Kind     string `json:"kind"`
	Question string `json:"question"`
}

func (QuestionAsked) Type() Type { return TypeQuestionAsked }

// CueName 音效提示名稱。
type CueName string

const (
	CueClick     CueName = "click"
	CueWin       CueName = "win"
	CueLose      CueName = "lose"
	CueFanfare   CueName = "fanfare"
	CueDiceShake CueName = "dice_shake"
)

// Cue 只通知、不等待，沒有回傳值。
type Cue struct {
	Name CueName `json:"name"`
}

func (Cue) Type() Type { return TypeCue }

// Handler 接收事件。Handler 在發佈者的 goroutine 上同步執行，不可阻塞。
type Handler func(Event)

// Bus 同步派送事件。
//
// 訂閱與取消可在任意 goroutine；Publish 依訂閱順序呼叫每個 Handler。
type Bus struct {
	mu   sync.RWMutex
	next int
	subs map[int]Handler
	ord  []int
}

func NewBus() *Bus {
	return &Bus{subs: map[int]Handler{}}
}

// Subscribe 註冊 Handler，回傳取消函數。
func (b *Bus) Subscribe(h Handler) (cancel func()) {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = h
	b.ord = append(b.ord, id)
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[id]; !ok {
			return
		}
		delete(b.subs, id)
		for i, v := range b.ord {
			if v == id {
				b.ord = append(b.ord[:i], b.ord[i+1:]...)
				break
			}
		}
	}
}

func (b *Bus) Publish(e Event) {
	if b == nil || e == nil {
		return
	}
	b.mu.RLock()
	hs := make([]Handler, 0, len(b.ord))
	for _, id := range b.ord {
		hs = append(hs, b.subs[id])
	}
	b.mu.RUnlock()
	for _, h := range hs {
		h(e)
	}
}
