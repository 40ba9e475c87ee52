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

package recorder

import (
	"github.com/zintix-labs/hongbao/errs"
	"github.com/zintix-labs/hongbao/game"
	"github.com/zintix-labs/hongbao/spec"
	"github.com/zintix-labs/hongbao/stats"
)

// RoundRecorder 回合紀錄員
//
// RoundRecorder 負責紀錄每一局的結算，並透過 Done 輸出統計報表
type RoundRecorder struct {
	Name     string
	Kind     spec.Kind
	Category string
	Bet      int
	Basic    *BasicRecord
	Dist     []int
	Player   *PlayerRecord
}

// BasicRecord 基本遊戲資料紀錄
type BasicRecord struct {
	TotalBet    int
	TotalReturn int
	MultSum     float64
	MultSqSum   float64 // 平方和
	Wins        int
	Triples     int
	Rounds      int
}

// PlayerRecord 玩家統計；InitBalance 為 0 代表不追蹤玩家。
type PlayerRecord struct {
	leaveLine   int
	InitBalance int
	Balance     int
	MaxBalance  int
	MinBalance  int
	Bust        bool
	Cashout     bool
}

func NewRoundRecorder(name string, kind spec.Kind, category string, bet int) (*RoundRecorder, error) {
	if bet < 1 {
		return nil, errs.Fatalf("bet must be >= 1, got: %d", bet)
	}
	return &RoundRecorder{
		Name:     name,
		Kind:     kind,
		Category: category,
		Bet:      bet,
		Basic:    new(BasicRecord),
		Dist:     make([]int, stats.Buckets.Len()),
		Player:   new(PlayerRecord),
	}, nil
}

// Track 開始追蹤一位帶著 balance 進場的玩家；贏到三倍紅包即離場。
func (r *RoundRecorder) Track(balance int) {
	r.Player = &PlayerRecord{
		leaveLine:   3 * balance,
		InitBalance: balance,
		Balance:     balance,
		MaxBalance:  balance,
		MinBalance:  balance,
	}
}

func MergeRoundRecorder(rs []*RoundRecorder) (*RoundRecorder, error) {
	if len(rs) == 0 {
		return nil, errs.NewFatal("merge round record err : empty")
	}
	r0 := rs[0]
	m, err := NewRoundRecorder(r0.Name, r0.Kind, r0.Category, r0.Bet)
	if err != nil {
		return nil, err
	}
	for _, v := range rs {
		if v.Kind != r0.Kind || v.Category != r0.Category || v.Bet != r0.Bet {
			return nil, errs.NewFatal("merge round record err : different strategy")
		}
		m.Basic.TotalBet += v.Basic.TotalBet
		m.Basic.TotalReturn += v.Basic.TotalReturn
		m.Basic.MultSum += v.Basic.MultSum
		m.Basic.MultSqSum += v.Basic.MultSqSum
		m.Basic.Wins += v.Basic.Wins
		m.Basic.Triples += v.Basic.Triples
		m.Basic.Rounds += v.Basic.Rounds
		for i := range v.Dist {
			m.Dist[i] += v.Dist[i]
		}
	}
	return m, nil
}

// Record 以單局結算更新統計（不含玩家）
func (r *RoundRecorder) Record(rd *game.Round) {
	ret := 0
	if rd.Delta > 0 {
		ret = rd.Bet + rd.Delta
	}
	mult := 0.0
	if rd.Bet > 0 {
		mult = float64(ret) / float64(rd.Bet)
	}
	b := r.Basic
	b.TotalBet += rd.Bet
	b.TotalReturn += ret
	b.MultSum += mult
	b.MultSqSum += mult * mult
	if rd.Win() {
		b.Wins++
	}
	if rd.Dice != nil && rd.Dice.Triple() {
		b.Triples++
	}
	b.Rounds++
	r.Dist[stats.Buckets.Index(ret, rd.Bet)]++
}

// RecordWithPlayer 在 Record 的基礎上更新玩家餘額，回傳玩家是否離場。
func (r *RoundRecorder) RecordWithPlayer(rd *game.Round) bool {
	r.Record(rd)
	p := r.Player
	p.Balance += rd.Delta
	p.MaxBalance = max(p.MaxBalance, p.Balance)
	p.MinBalance = min(p.MinBalance, p.Balance)
	if p.Balance <= 0 {
		p.Balance = 0
		p.Bust = true
		return true
	}
	if p.Balance >= p.leaveLine {
		p.Cashout = true
		return true
	}
	return false
}

func (r *RoundRecorder) Done() *stats.StatReport {
	b := r.Basic
	report := &stats.StatReport{
		Summary: &stats.SummaryReport{
			Name:        r.Name,
			Kind:        r.Kind,
			Category:    r.Category,
			Bet:         r.Bet,
			TotalBet:    b.TotalBet,
			TotalReturn: b.TotalReturn,
			TotalDelta:  b.TotalReturn - b.TotalBet,
			Wins:        b.Wins,
			Triples:     b.Triples,
			Rounds:      b.Rounds,
		},
		Mult: &stats.MultReport{
			ReturnMult:      b.MultSum,
			ReturnMultSqSum: b.MultSqSum,
		},
		Dist: &stats.DistReport{
			WinBucket:     stats.Buckets.WinBucketStr(),
			ReturnCollect: append([]int(nil), r.Dist...),
		},
	}
	if r.Player.InitBalance > 0 {
		p := r.Player
		report.Player = &stats.PlayerReport{
			InitBalance: p.InitBalance,
			Balance:     p.Balance,
			MaxBalance:  p.MaxBalance,
			MinBalance:  p.MinBalance,
			Bust:        p.Bust,
			Cashout:     p.Cashout,
		}
	}
	report.Done()
	return report
}
