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

// Package outcome 產生每一局的原始結果：紅包金額、骰面、周公倍率的驗證。
//
// 這裡的函數不持有任何牌局狀態，只依賴注入的 *core.Core。
package outcome

import (
	"math"

	"github.com/zintix-labs/hongbao/sdk/core"
	"github.com/zintix-labs/hongbao/spec"
)

// Grant 抽出紅包金額，閉區間均勻分布。每次開紅包都要重抽。
type Grant struct {
	rng      *core.Core
	min, max int
}

func NewGrant(rng *core.Core, gs spec.GrantSetting) *Grant {
	return &Grant{rng: rng, min: gs.Min, max: gs.Max}
}

func (g *Grant) Draw() int {
	return g.rng.IntRange(g.min, g.max)
}

// Dice 三顆骰子的點數，每顆 1..6。
type Dice [3]int

func (d Dice) Sum() int { return d[0] + d[1] + d[2] }

// Triple 回傳三顆點數是否相同（豹子）。
func (d Dice) Triple() bool { return d[0] == d[1] && d[1] == d[2] }

// Valid 回傳每顆骰子是否都在 1..6。
func (d Dice) Valid() bool {
	for _, f := range d {
		if f < 1 || f > 6 {
			return false
		}
	}
	return true
}

// DiceSource 產生一次三骰結果。骰子遊戲對權威流與表演流各持有一個。
type DiceSource interface {
	Roll() Dice
}

// Roller 是預設的 DiceSource。
type Roller struct {
	rng *core.Core
}

func NewRoller(rng *core.Core) *Roller {
	return &Roller{rng: rng}
}

func (r *Roller) Roll() Dice {
	return Dice{r.rng.Die(6), r.rng.Die(6), r.rng.Die(6)}
}

// Fixed 永遠回傳同一組骰面；給模擬器重播與測試使用。
type Fixed Dice

func (f Fixed) Roll() Dice { return Dice(f) }

// Sequence 依序回傳預先指定的骰面，用完後重複最後一組。
type Sequence struct {
	rolls []Dice
	i     int
}

func NewSequence(rolls ...Dice) *Sequence {
	return &Sequence{rolls: rolls}
}

func (s *Sequence) Roll() Dice {
	if len(s.rolls) == 0 {
		return Dice{1, 1, 1}
	}
	d := s.rolls[min(s.i, len(s.rolls)-1)]
	s.i++
	return d
}

// MultiplierRange 是周公解夢吉兆倍率的合法區間。
type MultiplierRange struct {
	Min, Max float64
}

func NewMultiplierRange(ds spec.DreamSetting) MultiplierRange {
	return MultiplierRange{Min: ds.MultMin, Max: ds.MultMax}
}

// Accept 驗證 oracle 給的倍率。
//
// 倍率由 oracle 抽出，本地不重抽：
//   - 凶兆一律為 0。
//   - 吉兆但倍率非有限數值：ok=false，呼叫端應改用 fallback。
//   - 吉兆但超出區間：夾回 [Min, Max]。
func (r MultiplierRange) Accept(good bool, m float64) (float64, bool) {
	if !good {
		return 0, true
	}
	if math.IsNaN(m) || math.IsInf(m, 0) {
		return 0, false
	}
	return min(max(m, r.Min), r.Max), true
}

// Questions 從題庫抽一題阿姨的問題。
type Questions struct {
	rng  *core.Core
	bank []string
}

func NewQuestions(rng *core.Core, bank []string) *Questions {
	return &Questions{rng: rng, bank: bank}
}

func (q *Questions) Draw() string {
	return q.rng.PickString(q.bank)
}
