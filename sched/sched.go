// Package sched 提供牌局使用的單執行緒協作式排程。
//
// 所有牌局狀態（ledger、game session、navigator）只在排程器的 loop 上被讀寫；
// 阻塞工作（oracle 呼叫）透過 Spawn 移出 loop，完成後把續行函數丟回 loop。
package sched

import "time"

// Timer 可取消的延遲工作。Stop 回傳是否在觸發前成功取消。
type Timer interface {
	Stop() bool
}

// Work 在 loop 之外執行的阻塞工作，回傳要在 loop 上執行的續行函數（可為 nil）。
type Work func() (then func())

type Scheduler interface {
	// After 在 d 之後於 loop 上執行 fn。
	After(d time.Duration, fn func()) Timer
	// Spawn 在 loop 之外執行 w，其續行函數再回到 loop 執行。
	Spawn(w Work)
}

// stopFlag 是 loop 內共用的取消旗標，只在 loop 上讀寫。
type stopFlag struct {
	stopped bool
	fired   bool
}

func (f *stopFlag) Stop() bool {
	if f.stopped || f.fired {
		return false
	}
	f.stopped = true
	return true
}
