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
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/zintix-labs/hongbao/errs"
	"github.com/zintix-labs/hongbao/event"
	"github.com/zintix-labs/hongbao/payout"
	"github.com/zintix-labs/hongbao/spec"
)

func post(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/x", bytes.NewReader([]byte(body)))
}

func TestDecodeEnterRequest(t *testing.T) {
	req, err := DecodeEnterRequest(post(`{"game":"dice"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Game != spec.KindDice {
		t.Fatalf("unexpected game: %q", req.Game)
	}
	r := httptest.NewRequest(http.MethodPost, "/x?game=dream", nil)
	if req, err = DecodeEnterRequest(r); err != nil || req.Game != spec.KindDream {
		t.Fatalf("query fallback failed: %+v %v", req, err)
	}
	if _, err := DecodeEnterRequest(post(`{"game":"slots"}`)); errs.Level(err) != errs.Warn {
		t.Fatalf("expected warn for unknown game, got %v", err)
	}
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	if _, err := DecodeBetRequest(post(`{"amount":10,"unknown":true}`)); err == nil {
		t.Fatalf("expected error for unknown field")
	}
	if _, err := DecodeBetRequest(post(`{"amount":`)); errs.Level(err) != errs.Warn {
		t.Fatalf("expected warn for broken json, got %v", err)
	}
}

func TestDecodeBetRequest(t *testing.T) {
	req, err := DecodeBetRequest(post(`{"amount":88}`))
	if err != nil || req.Amount != 88 {
		t.Fatalf("unexpected result: %+v %v", req, err)
	}
	if _, err := DecodeBetRequest(post(`{"amount":0}`)); err == nil {
		t.Fatalf("expected error for zero amount")
	}
	r := httptest.NewRequest(http.MethodPost, "/x?amount=abc", nil)
	if _, err := DecodeBetRequest(r); err == nil {
		t.Fatalf("expected error for non-integer amount")
	}
}

func TestDecodeCategoryRequest(t *testing.T) {
	req, err := DecodeCategoryRequest(post(`{"category":" High "}`))
	if err != nil || req.Category != payout.High {
		t.Fatalf("unexpected result: %+v %v", req, err)
	}
	if _, err := DecodeCategoryRequest(post(`{"category":"middle"}`)); err == nil {
		t.Fatalf("expected error for unknown category")
	}
}

func TestDecodeAnswerRequest(t *testing.T) {
	req, err := DecodeAnswerRequest(post(`{"text":"  表舅  "}`))
	if err != nil || req.Text != "表舅" {
		t.Fatalf("unexpected result: %+v %v", req, err)
	}
	if _, err := DecodeAnswerRequest(post(`{"text":"   "}`)); err == nil {
		t.Fatalf("expected error for blank text")
	}
	long, _ := json.Marshal(map[string]string{"text": strings.Repeat("紅", MaxAnswerRunes+1)})
	if _, err := DecodeAnswerRequest(post(string(long))); err == nil {
		t.Fatalf("expected error for long text")
	}
}

func TestDecodeSimRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/sim?category=low&bet=10&rounds=100&seed=7", nil)
	req, err := DecodeSimRequest(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Category != payout.Low || req.Bet != 10 || req.Rounds != 100 || req.Seed == nil || *req.Seed != 7 {
		t.Fatalf("unexpected request: %+v", req)
	}
	if _, err := DecodeSimRequest(post(`{"category":"low","bet":10,"rounds":20000,"players":5}`)); err == nil {
		t.Fatalf("expected error for player rounds over limit")
	}
}

func TestDecodeEvent(t *testing.T) {
	out := event.NewOutbox(4)
	out.Handle(event.RoundResolved{Kind: "dice", Bet: 50, Delta: 50, Win: true, Dice: []int{6, 6, 6}})
	out.Handle(event.SessionReset{})
	envs := out.Drain()
	if len(envs) != 2 {
		t.Fatalf("unexpected envelopes: %d", len(envs))
	}
	e, err := DecodeEvent(envs[0])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rr, ok := e.(event.RoundResolved)
	if !ok || rr.Delta != 50 || len(rr.Dice) != 3 {
		t.Fatalf("unexpected event: %#v", e)
	}
	if e, err := DecodeEvent(envs[1]); err != nil || e.Type() != event.TypeSessionReset {
		t.Fatalf("unexpected event: %#v %v", e, err)
	}
	if _, err := DecodeEvent(event.Envelope{Type: "nope"}); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}
