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

package sched

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/zintix-labs/hongbao/errs"
)

var ErrClosed = errs.NewFatal("sched loop closed")

// Loop 真實的事件迴圈：單一 goroutine 依序執行所有投遞進來的函數。
//
// 外層（HTTP handler、終端機）用 Do 取得 run-to-completion 語意：
// Do 回傳時，fn 與它同步觸發的所有事件都已處理完畢。
type Loop struct {
	tasks     chan func()
	done      chan struct{}
	exited    chan struct{}
	closeOnce sync.Once
	log       *slog.Logger
}

func NewLoop(log *slog.Logger) *Loop {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	l := &Loop{
		tasks:  make(chan func(), 256),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
		log:    log,
	}
	go l.run()
	return l
}

func (l *Loop) run() {
	defer close(l.exited)
	for {
		select {
		case <-l.done:
			return
		case fn := <-l.tasks:
			l.exec(fn)
		}
	}
}

func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("loop task panic", slog.Any("panic", r))
		}
	}()
	fn()
}

// Post 非同步投遞 fn；loop 已關閉時回傳 false。
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.tasks <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Do 在 loop 上執行 fn 並等待其完成。不可在 loop 自身上呼叫。
func (l *Loop) Do(fn func()) (err error) {
	fin := make(chan error, 1)
	ok := l.Post(func() {
		defer func() {
			if r := recover(); r != nil {
				fin <- errs.NewFatal(fmt.Sprintf("loop task panic: %v", r))
				return
			}
			fin <- nil
		}()
		fn()
	})
	if !ok {
		return ErrClosed
	}
	select {
	case err = <-fin:
		return err
	case <-l.done:
		return ErrClosed
	}
}

type loopTimer struct {
	t    *time.Timer
	flag stopFlag
}

// Stop 必須在 loop 上呼叫。
func (lt *loopTimer) Stop() bool {
	if !lt.flag.Stop() {
		return false
	}
	lt.t.Stop()
	return true
}

func (l *Loop) After(d time.Duration, fn func()) Timer {
	lt := &loopTimer{}
	lt.t = time.AfterFunc(d, func() {
		l.Post(func() {
			if lt.flag.stopped {
				return
			}
			lt.flag.fired = true
			fn()
		})
	})
	return lt
}

func (l *Loop) Spawn(w Work) {
	go func() {
		var then func()
		func() {
			defer func() {
				if r := recover(); r != nil {
					l.log.Error("spawned work panic", slog.Any("panic", r))
				}
			}()
			then = w()
		}()
		if then != nil {
			l.Post(then)
		}
	}()
}

// Close 停止 loop，尚未執行的函數會被丟棄。可重複呼叫。
func (l *Loop) Close() {
	l.closeOnce.Do(func() {
		close(l.done)
	})
	<-l.exited
}
