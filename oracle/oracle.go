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

// Package oracle 定義文字評審（阿姨、周公、親戚稱謂）的合約。
//
// 任何實作都可能失敗、逾時或回傳不合法內容；遊戲端只透過 Guard 使用，
// Guard 一律回傳可用的 verdict，失敗時以偏向輸的 fallback 取代。
package oracle

import (
	"context"

	"github.com/zintix-labs/hongbao/errs"
)

var (
	ErrUnavailable = errs.NewWarn("oracle unavailable")
	ErrMalformed   = errs.NewWarn("oracle reply malformed")
)

// AuntieVerdict 阿姨對回答的評語。Pass 決定輸贏，Score 只用於顯示。
type AuntieVerdict struct {
	Score    int    `json:"score"`
	Comment  string `json:"comment"`
	Pass     bool   `json:"pass"`
	Fallback bool   `json:"-"`
}

// DreamVerdict 周公解夢。凶兆的 Multiplier 一律為 0。
type DreamVerdict struct {
	Good        bool    `json:"good"`
	Explanation string  `json:"explanation"`
	Multiplier  float64 `json:"multiplier"`
	Fallback    bool    `json:"-"`
}

// RelativeQuestion 一道親戚稱謂題。Answer 可為空，代表只有 oracle 知道答案。
type RelativeQuestion struct {
	Description string `json:"description"`
	Answer      string `json:"-"`
	Fallback    bool   `json:"-"`
}

type RelativeVerdict struct {
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correct_answer"`
	Comment       string `json:"comment"`
	Fallback      bool   `json:"-"`
}

// Oracle 是外部評審的合約，實作必須尊重 ctx 的取消。
type Oracle interface {
	JudgeAnswer(ctx context.Context, question, answer string) (AuntieVerdict, error)
	InterpretDream(ctx context.Context, dream string) (DreamVerdict, error)
	RelativeQuestion(ctx context.Context) (RelativeQuestion, error)
	JudgeRelative(ctx context.Context, description, answer string) (RelativeVerdict, error)
}

// Offline 是沒有任何憑證時使用的 oracle，所有呼叫都回傳 ErrUnavailable。
type Offline struct{}

func (Offline) JudgeAnswer(context.Context, string, string) (AuntieVerdict, error) {
	return AuntieVerdict{}, ErrUnavailable
}

func (Offline) InterpretDream(context.Context, string) (DreamVerdict, error) {
	return DreamVerdict{}, ErrUnavailable
}

func (Offline) RelativeQuestion(context.Context) (RelativeQuestion, error) {
	return RelativeQuestion{}, ErrUnavailable
}

func (Offline) JudgeRelative(context.Context, string, string) (RelativeVerdict, error) {
	return RelativeVerdict{}, ErrUnavailable
}
