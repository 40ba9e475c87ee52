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

// Package app 提供應用程式生命週期管理（App），負責統一啟動與關閉多個 Component。
package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const defaultShutdown = 5 * time.Second

// App 依註冊順序啟動所有 Component，收到 SIGINT/SIGTERM、ctx 取消或任一 Component 返回時，
// 依註冊順序逐一 Shutdown。HTTP server 應先註冊，先停止收請求再回收牌局。
type App struct {
	comps   []Component
	log     *slog.Logger
	timeout time.Duration
}

func New() *App { return &App{log: slog.Default(), timeout: defaultShutdown} }

// NewWith 建立 App 並依序註冊 Component。
func NewWith(comps ...Component) *App {
	a := New()
	for _, c := range comps {
		a.Register(c)
	}
	return a
}

// WithLogger 設定記錄關閉錯誤的 logger；nil 時不變。
func (a *App) WithLogger(log *slog.Logger) *App {
	if log != nil {
		a.log = log
	}
	return a
}

// WithShutdownTimeout 設定優雅關閉的總時限，<= 0 時沿用 5 秒。
func (a *App) WithShutdownTimeout(td time.Duration) *App {
	if td > 0 {
		a.timeout = td
	}
	return a
}

func (a *App) Register(c Component) {
	a.comps = append(a.comps, c)
}

// Run 阻塞到收到終止信號 (回傳 nil) 或任一 Component.Run 返回 (回傳其錯誤)。
func (a *App) Run() error {
	return a.RunContext(context.Background())
}

// RunContext 同 Run，ctx 取消也視為正常結束。
func (a *App) RunContext(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, len(a.comps))
	for _, c := range a.comps {
		go func(c Component) { errCh <- c.Run() }(c)
	}

	var err error
	select {
	case <-ctx.Done():
	case err = <-errCh:
	}
	a.shutdown()
	return err
}

// shutdown 所有 Component 共用同一個時限。
func (a *App) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	for i, c := range a.comps {
		if err := c.Shutdown(ctx); err != nil {
			a.log.Error("shutdown err", slog.Int("component", i), slog.Any("err", err))
		}
	}
}
