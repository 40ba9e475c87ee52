package sched

import (
	"sort"
	"time"
)

// Manual 決定性的排程器，時間只在 Advance 時前進，Spawn 的工作只在 Flush 時執行。
// 給測試與模擬器使用；不可跨 goroutine 使用。
type Manual struct {
	now     time.Duration
	seq     uint64
	timers  []*manualTimer
	pending []Work
}

func NewManual() *Manual {
	return &Manual{}
}

type manualTimer struct {
	at   time.Duration
	seq  uint64
	fn   func()
	flag stopFlag
}

func (t *manualTimer) Stop() bool { return t.flag.Stop() }

// Now 目前的虛擬時間（自建立起算）。
func (m *Manual) Now() time.Duration { return m.now }

func (m *Manual) After(d time.Duration, fn func()) Timer {
	m.seq++
	t := &manualTimer{at: m.now + max(0, d), seq: m.seq, fn: fn}
	m.timers = append(m.timers, t)
	return t
}

func (m *Manual) Spawn(w Work) {
	m.pending = append(m.pending, w)
}

// Pending 尚未執行的 Spawn 工作數。
func (m *Manual) Pending() int { return len(m.pending) }

// Timers 尚未觸發也未取消的計時器數。
func (m *Manual) Timers() int {
	n := 0
	for _, t := range m.timers {
		if !t.flag.stopped && !t.flag.fired {
			n++
		}
	}
	return n
}

// Flush 依序執行所有 Spawn 工作與其續行函數，直到沒有新工作。
func (m *Manual) Flush() {
	for len(m.pending) > 0 {
		w := m.pending[0]
		m.pending = m.pending[1:]
		if then := w(); then != nil {
			then()
		}
	}
}

// Advance 讓時間前進 d，依到期順序觸發期間內的計時器（包含觸發過程中新排入的）。
func (m *Manual) Advance(d time.Duration) {
	end := m.now + max(0, d)
	for {
		t := m.nextDue(end)
		if t == nil {
			break
		}
		m.now = t.at
		t.flag.fired = true
		t.fn()
	}
	m.now = end
}

// RunUntilIdle 反覆 Flush 並跳到下一個計時器，直到沒有任何待辦。
func (m *Manual) RunUntilIdle() {
	for {
		m.Flush()
		t := m.nextDue(-1)
		if t == nil {
			return
		}
		m.now = max(m.now, t.at)
		t.flag.fired = true
		t.fn()
	}
}

// nextDue 取出到期時間 <= end 的下一個計時器；end < 0 代表不限。
func (m *Manual) nextDue(end time.Duration) *manualTimer {
	live := m.timers[:0]
	for _, t := range m.timers {
		if !t.flag.stopped && !t.flag.fired {
			live = append(live, t)
		}
	}
	m.timers = live
	if len(live) == 0 {
		return nil
	}
	sort.Slice(live, func(i, j int) bool {
		if live[i].at != live[j].at {
			return live[i].at < live[j].at
		}
		return live[i].seq < live[j].seq
	})
	if end >= 0 && live[0].at > end {
		return nil
	}
	return live[0]
}
