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
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/zintix-labs/hongbao/errs"
)

// Runtime 管理多張牌局（每位玩家一張），以 uuid 作為牌局 id。
type Runtime struct {
	hb *Hongbao

	mu     sync.RWMutex
	tables map[string]*Table

	maxTables int
	idle      time.Duration

	// lifecycle
	done      chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool
	reason    atomic.Value // string
}

// BuildRuntime 建立 Runtime。maxTables <= 0 代表不限；idle <= 0 代表不自動清理。
func (h *Hongbao) BuildRuntime(maxTables int, idle time.Duration) *Runtime {
	return &Runtime{
		hb:        h,
		tables:    make(map[string]*Table),
		maxTables: maxTables,
		idle:      idle,
		done:      make(chan struct{}),
	}
}

func (rt *Runtime) Hongbao() *Hongbao { return rt.hb }

// Open 以指定規則組開一張新牌局，回傳牌局 id。
func (rt *Runtime) Open(ctx context.Context, rules string) (string, *Table, error) {
	select {
	case <-ctx.Done():
		return "", nil, errs.NewWarn("open table canceled/timeout: " + ctx.Err().Error())
	case <-rt.done:
		rt.closed.Store(true)
		return "", nil, errs.NewFatal("runtime closed: " + rt.ClosedReason())
	default:
	}

	if rt.maxTables > 0 && rt.Len() >= rt.maxTables {
		rt.Sweep(time.Now())
		if rt.Len() >= rt.maxTables {
			return "", nil, errs.NewWarn("too many tables")
		}
	}
	t, err := rt.hb.NewTable(rules)
	if err != nil {
		return "", nil, err
	}
	id := uuid.NewString()

	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.closed.Load() {
		t.Close()
		return "", nil, errs.NewFatal("runtime closed: " + rt.ClosedReason())
	}
	rt.tables[id] = t
	rt.hb.log.Info("table opened", slog.String("table", id), slog.String("rules", rules))
	return id, t, nil
}

// Get 取得牌局；id 不存在時回傳 Warn。
func (rt *Runtime) Get(id string) (*Table, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errs.Warnf("invalid table id: %q", id)
	}
	rt.mu.RLock()
	t, ok := rt.tables[id]
	rt.mu.RUnlock()
	if !ok {
		return nil, errs.NewWarn("table not found")
	}
	return t, nil
}

// Remove 關閉並移除牌局。
func (rt *Runtime) Remove(id string) bool {
	rt.mu.Lock()
	t, ok := rt.tables[id]
	delete(rt.tables, id)
	rt.mu.Unlock()
	if ok {
		t.closeWithReason("removed")
	}
	return ok
}

func (rt *Runtime) Len() int {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return len(rt.tables)
}

// IDs 回傳目前所有牌局 id，已排序。
func (rt *Runtime) IDs() []string {
	rt.mu.RLock()
	ids := make([]string, 0, len(rt.tables))
	for id := range rt.tables {
		ids = append(ids, id)
	}
	rt.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// Sweep 關閉閒置超過 idle 的牌局，回傳清掉的數量。
func (rt *Runtime) Sweep(now time.Time) int {
	if rt.idle <= 0 {
		return 0
	}
	var stale []*Table
	rt.mu.Lock()
	for id, t := range rt.tables {
		if now.Sub(t.LastActive()) >= rt.idle {
			stale = append(stale, t)
			delete(rt.tables, id)
		}
	}
	rt.mu.Unlock()
	for _, t := range stale {
		t.closeWithReason("idle")
	}
	if len(stale) > 0 {
		rt.hb.log.Info("idle tables swept", slog.Int("count", len(stale)))
	}
	return len(stale)
}

// Run 定期清理閒置牌局，直到 ctx 結束或 Runtime 關閉。
func (rt *Runtime) Run(ctx context.Context) error {
	if rt.idle <= 0 {
		select {
		case <-ctx.Done():
		case <-rt.done:
		}
		return nil
	}
	tk := time.NewTicker(max(rt.idle/4, time.Second))
	defer tk.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-rt.done:
			return nil
		case now := <-tk.C:
			rt.Sweep(now)
		}
	}
}

// Close 關閉所有牌局。可重複呼叫。
func (rt *Runtime) Close() {
	rt.closeWithReason("closed")
}

func (rt *Runtime) closeWithReason(reason string) {
	rt.closeOnce.Do(func() {
		if reason == "" {
			reason = "closed"
		}
		rt.reason.Store(reason)
		rt.mu.Lock()
		rt.closed.Store(true)
		close(rt.done)
		tables := rt.tables
		rt.tables = make(map[string]*Table)
		rt.mu.Unlock()
		for _, t := range tables {
			t.closeWithReason(reason)
		}
	})
}

func (rt *Runtime) Closed() bool {
	return rt.closed.Load()
}

func (rt *Runtime) ClosedReason() string {
	if v := rt.reason.Load(); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
