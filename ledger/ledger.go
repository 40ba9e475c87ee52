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

// Package ledger 持有牌局唯一的餘額。
//
// Ledger 不做同步，只能在 sched 的 loop 上被呼叫。
package ledger

// Observer 在餘額每次變動時被同步呼叫。
type Observer func(old, new int)

type Ledger struct {
	balance   int
	started   bool
	observers []Observer
}

func New() *Ledger {
	return &Ledger{}
}

func (l *Ledger) Balance() int  { return l.balance }
func (l *Ledger) Started() bool { return l.started }

// Observe 註冊觀察者，回傳取消函數。
func (l *Ledger) Observe(o Observer) (cancel func()) {
	l.observers = append(l.observers, o)
	idx := len(l.observers) - 1
	return func() {
		if idx < len(l.observers) {
			l.observers[idx] = nil
		}
	}
}

// Initialize 設定開局餘額並標記為已開始；負數視為 0。
func (l *Ledger) Initialize(amount int) {
	l.started = true
	l.set(max(0, amount))
}

// Adjust 套用 delta，餘額最低為 0，回傳新餘額。
func (l *Ledger) Adjust(delta int) int {
	l.set(max(0, l.balance+delta))
	return l.balance
}

// Reset 回到開局前狀態。
func (l *Ledger) Reset() {
	l.started = false
	l.set(0)
}

func (l *Ledger) set(v int) {
	old := l.balance
	l.balance = v
	if old == v {
		return
	}
	for _, o := range l.observers {
		if o != nil {
			o(old, v)
		}
	}
}
