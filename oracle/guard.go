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

package oracle

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/zintix-labs/hongbao/errs"
	"github.com/zintix-labs/hongbao/outcome"
)

const DefaultTimeout = 20 * time.Second

// Guard 包裝任意 Oracle：逾時、panic 回復、結果驗證與 fallback 替換。
// Guard 的方法不回傳 error。
type Guard struct {
	inner   Oracle
	timeout time.Duration
	mult    outcome.MultiplierRange
	log     *slog.Logger
}

type GuardOption func(*Guard)

func WithTimeout(d time.Duration) GuardOption {
	return func(g *Guard) {
		if d > 0 {
			g.timeout = d
		}
	}
}

func WithLogger(log *slog.Logger) GuardOption {
	return func(g *Guard) {
		if log != nil {
			g.log = log
		}
	}
}

// NewGuard 建立 Guard；inner 為 nil 時視同 Offline。
func NewGuard(inner Oracle, mult outcome.MultiplierRange, opts ...GuardOption) *Guard {
	if inner == nil {
		inner = Offline{}
	}
	g := &Guard{
		inner:   inner,
		timeout: DefaultTimeout,
		mult:    mult,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

func (g *Guard) JudgeAnswer(ctx context.Context, question, answer string) AuntieVerdict {
	v, err := call(ctx, g, "judge_answer", func(ctx context.Context) (AuntieVerdict, error) {
		return g.inner.JudgeAnswer(ctx, question, answer)
	})
	if err != nil {
		g.warn("judge_answer", err)
		return FallbackAuntie()
	}
	v.Score = min(max(v.Score, 0), 100)
	v.Fallback = false
	return v
}

func (g *Guard) InterpretDream(ctx context.Context, dream string) DreamVerdict {
	v, err := call(ctx, g, "interpret_dream", func(ctx context.Context) (DreamVerdict, error) {
		return g.inner.InterpretDream(ctx, dream)
	})
	if err == nil {
		m, ok := g.mult.Accept(v.Good, v.Multiplier)
		if !ok {
			err = errs.WrapWithExtra(ErrMalformed, "dream multiplier not finite", fmt.Sprint(v.Multiplier))
		}
		v.Multiplier = m
	}
	if err != nil {
		g.warn("interpret_dream", err)
		return FallbackDream()
	}
	v.Fallback = false
	return v
}

func (g *Guard) RelativeQuestion(ctx context.Context) RelativeQuestion {
	q, err := call(ctx, g, "relative_question", func(ctx context.Context) (RelativeQuestion, error) {
		return g.inner.RelativeQuestion(ctx)
	})
	if err == nil && strings.TrimSpace(q.Description) == "" {
		err = errs.Wrap(ErrMalformed, "empty relative question")
	}
	if err != nil {
		g.warn("relative_question", err)
		return FallbackRelativeQuestion()
	}
	q.Fallback = false
	return q
}

// JudgeRelative 失敗時一律判錯；若題目自帶答案則一併揭曉。
func (g *Guard) JudgeRelative(ctx context.Context, q RelativeQuestion, answer string) RelativeVerdict {
	v, err := call(ctx, g, "judge_relative", func(ctx context.Context) (RelativeVerdict, error) {
		return g.inner.JudgeRelative(ctx, q.Description, answer)
	})
	if err != nil {
		g.warn("judge_relative", err)
		return FallbackRelative(q.Answer)
	}
	v.Fallback = false
	return v
}

func (g *Guard) warn(op string, err error) {
	g.log.Warn("oracle fallback",
		slog.String("op", op),
		slog.String("errlv", errs.ErrLv(errs.Level(err))),
		slog.Any("err", err),
	)
}

// call 在獨立 goroutine 執行 fn，逾時或 ctx 取消時不等待其返回。
func call[T any](ctx context.Context, g *Guard, op string, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- result{err: errs.WrapWithExtra(ErrUnavailable, "oracle "+op+" panic", fmt.Sprint(r))}
			}
		}()
		v, err := fn(ctx)
		ch <- result{v: v, err: err}
	}()

	select {
	case r := <-ch:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		return zero, errs.WrapWithExtra(ErrUnavailable, "oracle "+op+" aborted", ctx.Err().Error())
	}
}
