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

// Package payout 是各遊戲的派彩規則，全部為純函數：輸入下注與原始結果，回傳帶正負號的 delta。
package payout

import (
	"math"

	"github.com/zintix-labs/hongbao/outcome"
	"github.com/zintix-labs/hongbao/spec"
)

// Category 骰子遊戲的下注類別。
type Category string

const (
	None   Category = ""
	Low    Category = "low"
	High   Category = "high"
	Triple Category = "triple"
)

func Categories() []Category {
	return []Category{Low, High, Triple}
}

func ParseCategory(s string) (Category, bool) {
	switch c := Category(s); c {
	case Low, High, Triple:
		return c, true
	}
	return None, false
}

// Auntie 阿姨的靈魂拷問：通過得 bet*k，否則輸掉 bet。分數不參與派彩。
func Auntie(bet, k int, pass bool) int {
	if pass {
		return bet * k
	}
	return -bet
}

// DiceTable 骰子派彩表，由 spec.DiceSetting 建立。
type DiceTable struct {
	Low, High    [2]int
	EvenPayout   int
	TriplePayout int
}

func NewDiceTable(ds spec.DiceSetting) DiceTable {
	return DiceTable{Low: ds.Low, High: ds.High, EvenPayout: ds.EvenPayout, TriplePayout: ds.TriplePayout}
}

// Hit 回傳該骰面是否命中類別。豹子一律不算大小。
func (t DiceTable) Hit(c Category, d outcome.Dice) bool {
	if d.Triple() {
		return c == Triple
	}
	sum := d.Sum()
	switch c {
	case Low:
		return sum >= t.Low[0] && sum <= t.Low[1]
	case High:
		return sum >= t.High[0] && sum <= t.High[1]
	}
	return false
}

// Dice 回傳骰子遊戲的 delta。
func (t DiceTable) Dice(bet int, c Category, d outcome.Dice) int {
	if !t.Hit(c, d) {
		return -bet
	}
	if c == Triple {
		return bet * t.TriplePayout
	}
	return bet * t.EvenPayout
}

// Dream 周公解夢：吉兆得 floor(bet*m) - bet，凶兆輸掉 bet。
func Dream(bet int, good bool, m float64) int {
	if !good {
		return -bet
	}
	return int(math.Floor(float64(bet)*m)) - bet
}

// Relative 親戚稱謂：答對得 bet*k，否則輸掉 bet。
func Relative(bet, k int, correct bool) int {
	if correct {
		return bet * k
	}
	return -bet
}

// AuntieTitle 依阿姨給的分數回傳結算標題。
func AuntieTitle(score int) string {
	switch {
	case score >= 100:
		return "太神啦！阿姨直接包給你"
	case score >= 90:
		return "這孩子嘴真甜！阿姨喜歡"
	case score >= 80:
		return "嗯... 還算像句人話"
	case score >= 60:
		return "算了，這次就放過你"
	case score >= 40:
		return "唉，現在年輕人..."
	case score >= 20:
		return "你這是在跟長輩頂嘴嗎？"
	default:
		return "出去！別說你認識我！"
	}
}
