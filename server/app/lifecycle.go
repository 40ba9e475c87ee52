// Package app 定義應用程式根目錄用以管理長期運行元件的最小生命週期抽象。
package app

import (
	"context"
	"sync"
)

// Component 抽象任何「可啟動 / 可關閉」的長生命週期元件。
// - Run() 應該是阻塞呼叫，直到元件停止為止（正常或錯誤）。
// - Shutdown(ctx) 用於要求優雅關閉；實作方應該尊重 ctx deadline/cancel。
// 典型實例：HTTP Server、牌局回收 (hongbao.Runtime)。
type Component interface {
	Run() error
	Shutdown(ctx context.Context) error
}

// FromContext 把「Run(ctx) 直到 ctx 取消」形式的背景工作包成 Component。
// Shutdown 會取消 ctx，等 run 返回後再呼叫 stop (可為 nil)。
func FromContext(run func(ctx context.Context) error, stop func()) Component {
	ctx, cancel := context.WithCancel(context.Background())
	return &ctxComponent{ctx: ctx, cancel: cancel, run: run, stop: stop, done: make(chan struct{})}
}

type ctxComponent struct {
	ctx    context.Context
	cancel context.CancelFunc
	run    func(ctx context.Context) error
	stop   func()
	done   chan struct{}
	once   sync.Once
}

func (c *ctxComponent) Run() error {
	defer close(c.done)
	return c.run(c.ctx)
}

func (c *ctxComponent) Shutdown(ctx context.Context) error {
	c.cancel()
	var err error
	select {
	case <-c.done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	if c.stop != nil {
		c.once.Do(c.stop)
	}
	return err
}
