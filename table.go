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

package hongbao

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zintix-labs/hongbao/errs"
	"github.com/zintix-labs/hongbao/event"
	"github.com/zintix-labs/hongbao/nav"
	"github.com/zintix-labs/hongbao/sched"
)

// Table 是一位玩家的一場牌局：一個 Navigator 加上一條專屬的 event loop。
//
// 所有狀態轉移都在 loop 上執行，外部（HTTP handler、終端機）只能透過 Do 操作，
// 因此 Table 的方法皆可併發呼叫。
type Table struct {
	rules string
	loop  *sched.Loop
	nav   *nav.Navigator
	bus   *event.Bus
	out   *event.Outbox

	lastActive atomic.Int64 // unix nano

	// lifecycle
	done      chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool
	reason    atomic.Value // string
}

func newTable(rules string, loop *sched.Loop, n *nav.Navigator, bus *event.Bus, outbox int) *Table {
	t := &Table{
		rules: rules,
		loop:  loop,
		nav:   n,
		bus:   bus,
		out:   event.NewOutbox(outbox),
		done:  make(chan struct{}),
	}
	bus.Subscribe(t.out.Handle)
	t.touch()
	return t
}

// Rules 建立牌局時使用的規則組名稱。
func (t *Table) Rules() string { return t.rules }

// Do 在 loop 上執行 fn 並回傳 fn 的結果（輸入是否被接受）。
// fn 與它同步發出的事件都處理完才回傳。不可在 loop 上（例如事件 handler 內）呼叫。
func (t *Table) Do(ctx context.Context, fn func(n *nav.Navigator) bool) (bool, error) {
	select {
	case <-ctx.Done():
		return false, errs.NewWarn("table op canceled/timeout: " + ctx.Err().Error())
	case <-t.done:
		return false, errs.NewFatal("table closed: " + t.ClosedReason())
	default:
	}
	t.touch()
	var ok bool
	if err := t.loop.Do(func() { ok = fn(t.nav) }); err != nil {
		return false, err
	}
	return ok, nil
}

func (t *Table) Snapshot(ctx context.Context) (nav.Snapshot, error) {
	var s nav.Snapshot
	_, err := t.Do(ctx, func(n *nav.Navigator) bool {
		s = n.Snapshot()
		return true
	})
	return s, err
}

// Events 取出並清空尚未被讀取的事件。
func (t *Table) Events() []event.Envelope {
	t.touch()
	return t.out.Drain()
}

// Dropped 回傳因暫存已滿而被丟棄的事件數。
func (t *Table) Dropped() uint64 { return t.out.Dropped() }

// Subscribe 註冊事件 handler；handler 在 loop 上執行，不可阻塞，也不可呼叫 Do。
func (t *Table) Subscribe(h event.Handler) (cancel func()) {
	return t.bus.Subscribe(h)
}

// LastActive 最後一次被操作的時間，給 Runtime 清理閒置牌局。
func (t *Table) LastActive() time.Time {
	return time.Unix(0, t.lastActive.Load())
}

func (t *Table) touch() {
	t.lastActive.Store(time.Now().UnixNano())
}

// Close 拆除 session 與計時器並停止 loop。可重複呼叫。
func (t *Table) Close() {
	t.closeWithReason("closed")
}

func (t *Table) closeWithReason(reason string) {
	t.closeOnce.Do(func() {
		if reason == "" {
			reason = "closed"
		}
		t.reason.Store(reason)
		t.closed.Store(true)
		close(t.done)
		_ = t.loop.Do(t.nav.Close)
		t.loop.Close()
	})
}

func (t *Table) Closed() bool {
	return t.closed.Load()
}

func (t *Table) ClosedReason() string {
	if v := t.reason.Load(); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
