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

package dto

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/zintix-labs/hongbao/errs"
	"github.com/zintix-labs/hongbao/payout"
	"github.com/zintix-labs/hongbao/spec"
)

// 防止 body 過大
const maxBody = 64 << 10

// MaxAnswerRunes 玩家回答的字數上限。
const MaxAnswerRunes = 500

// OpenRequest 開新牌局；rules 省略時使用預設規則組。
type OpenRequest struct {
	Rules string `json:"rules,omitempty"`
}

// EnterRequest 從大廳進入遊戲。
type EnterRequest struct {
	Game spec.Kind `json:"game"`
}

// BetRequest 調整下注金額（草稿）。
type BetRequest struct {
	Amount int `json:"amount"`
}

// CategoryRequest 骰子遊戲的下注類別。
type CategoryRequest struct {
	Category payout.Category `json:"category"`
}

// AnswerRequest 回答阿姨、夢境描述或親戚稱謂。
type AnswerRequest struct {
	Text string `json:"text"`
}

// SimRequest 骰子遊戲模擬；Players > 0 時改跑玩家模擬 (每位玩家持有一個紅包)。
type SimRequest struct {
	Rules    string          `json:"rules,omitempty"`
	Category payout.Category `json:"category"`
	Bet      int             `json:"bet"`
	Rounds   int             `json:"rounds"`
	Players  int             `json:"players,omitempty"`
	Seed     *int64          `json:"seed,omitempty"`
}

// DecodeOpenRequest 允許空 body。
func DecodeOpenRequest(r *http.Request) (*OpenRequest, error) {
	req := new(OpenRequest)
	empty, err := decode(r, req)
	if err != nil {
		return nil, err
	}
	if empty {
		req.Rules = r.URL.Query().Get("rules")
	}
	req.Rules = strings.TrimSpace(req.Rules)
	return req, nil
}

func DecodeEnterRequest(r *http.Request) (*EnterRequest, error) {
	req := new(EnterRequest)
	empty, err := decode(r, req)
	if err != nil {
		return nil, err
	}
	if empty {
		req.Game = spec.Kind(r.URL.Query().Get("game"))
	}
	k, ok := spec.ParseKind(string(req.Game))
	if !ok {
		return nil, errs.Warnf("unknown game: %q", req.Game)
	}
	req.Game = k
	return req, nil
}

// DecodeBetRequest 只做型別與正負檢查；是否超過餘額由狀態機決定。
func DecodeBetRequest(r *http.Request) (*BetRequest, error) {
	req := new(BetRequest)
	empty, err := decode(r, req)
	if err != nil {
		return nil, err
	}
	if empty {
		s := r.URL.Query().Get("amount")
		v, err := strconv.Atoi(s)
		if err != nil {
			return nil, errs.Warnf("invalid amount: %q", s)
		}
		req.Amount = v
	}
	if req.Amount < 1 {
		return nil, errs.NewWarn("amount must >= 1")
	}
	return req, nil
}

func DecodeCategoryRequest(r *http.Request) (*CategoryRequest, error) {
	req := new(CategoryRequest)
	empty, err := decode(r, req)
	if err != nil {
		return nil, err
	}
	if empty {
		req.Category = payout.Category(r.URL.Query().Get("category"))
	}
	c, ok := payout.ParseCategory(strings.ToLower(strings.TrimSpace(string(req.Category))))
	if !ok {
		return nil, errs.Warnf("unknown category: %q", req.Category)
	}
	req.Category = c
	return req, nil
}

// DecodeAnswerRequest 要求非空白且不超過 MaxAnswerRunes 字。
func DecodeAnswerRequest(r *http.Request) (*AnswerRequest, error) {
	req := new(AnswerRequest)
	empty, err := decode(r, req)
	if err != nil {
		return nil, err
	}
	if empty {
		req.Text = r.URL.Query().Get("text")
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		return nil, errs.NewWarn("text is required")
	}
	if utf8.RuneCountInString(req.Text) > MaxAnswerRunes {
		return nil, errs.Warnf("text too long: max %d characters", MaxAnswerRunes)
	}
	return req, nil
}

func DecodeSimRequest(r *http.Request) (*SimRequest, error) {
	req := new(SimRequest)
	empty, err := decode(r, req)
	if err != nil {
		return nil, err
	}
	if empty {
		q := r.URL.Query()
		req.Rules = q.Get("rules")
		req.Category = payout.Category(q.Get("category"))
		ints := []struct {
			key string
			dst *int
		}{
			{"bet", &req.Bet},
			{"rounds", &req.Rounds},
			{"players", &req.Players},
		}
		for _, it := range ints {
			s := q.Get(it.key)
			if s == "" {
				continue
			}
			v, err := strconv.Atoi(s)
			if err != nil {
				return nil, errs.Warnf("%s must be integer", it.key)
			}
			*it.dst = v
		}
		if s := q.Get("seed"); s != "" {
			v, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, errs.NewWarn("seed must be int64")
			}
			req.Seed = &v
		}
	}
	c, ok := payout.ParseCategory(strings.ToLower(strings.TrimSpace(string(req.Category))))
	if !ok {
		return nil, errs.Warnf("unknown category: %q", req.Category)
	}
	req.Category = c
	req.Rules = strings.TrimSpace(req.Rules)
	if req.Bet < 1 {
		return nil, errs.NewWarn("bet must >= 1")
	}
	if req.Players < 0 || req.Players > 100000 {
		return nil, errs.NewWarn("players must be between 0 and 100,000")
	}
	limit := 1000000
	if req.Players > 0 {
		limit = 15000
	}
	if req.Rounds < 1 || req.Rounds > limit {
		return nil, errs.Warnf("rounds must be between 1 and %d", limit)
	}
	return req, nil
}

// decode 以 DisallowUnknownFields 嚴格解析 JSON body；body 為空時回傳 empty=true，
// 由呼叫端改讀 query string。
func decode(r *http.Request, dst any) (empty bool, err error) {
	if r == nil {
		return false, errs.NewWarn("nil request")
	}
	if r.Body == nil || r.Body == http.NoBody {
		return true, nil
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBody+1))
	if err != nil {
		return false, errs.WrapLevel(err, errs.Warn, "read body failed")
	}
	if len(raw) > maxBody {
		return false, errs.NewWarn("body too large")
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return true, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return false, errs.WrapLevel(err, errs.Warn, "invalid json")
	}
	return false, nil
}
