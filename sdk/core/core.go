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

package core

// PRNG 定義 Core 所需的亂數來源，需同時支援取樣與狀態保存/還原。
type PRNG interface {
	RAND
	Restorable
}

// Restorable 定義可快照與還原的狀態介面。
type Restorable interface {
	// Snapshot 回傳可用於還原的序列化狀態。
	Snapshot() ([]byte, error)
	// Restore 依序列化狀態還原 PRNG 內部狀態。
	Restore([]byte) error
}

// RAND 定義核心亂數取樣能力。
//
// IntN / Float64 交由 PRNG 自己實作：32-bit 與 64-bit 輸出的產生器各有最合適的 bounded 策略與浮點精度。
type RAND interface {
	// Uint64 回傳非負 uint64 亂數。
	Uint64() uint64
	// Float64 回傳 [0,1) 的浮點亂數。
	Float64() float64
	// IntN 回傳 [0,max) 的 int 亂數，若 max <= 0 回傳 -1。
	IntN(int) int
}

// PRNGFactory 以 seed 建立 PRNG。
//
// 合約：同一個實作與版本下，New(seed) 必須是決定性的。
// 測試與模擬器依賴這一點重現整個牌局（包含骰子與紅包金額）。
type PRNGFactory interface {
	New(int64) PRNG
}

// DefaultPRNG 是權威亂數流（紅包金額、最終骰面、阿姨題目）使用的工廠，底層為 PCG64。
type DefaultPRNG struct{}

func (d *DefaultPRNG) New(seed int64) PRNG {
	return newPCG64WithSeed(seed)
}

func Default() *DefaultPRNG {
	return &DefaultPRNG{}
}

// CosmeticPRNG 是表演用亂數流（搖骰動畫的中間骰面）使用的工廠，底層為 PCG32。
//
// 與權威流使用不同的產生器與不同的 seed，任何中間骰面都不可能影響計分。
type CosmeticPRNG struct{}

func (c *CosmeticPRNG) New(seed int64) PRNG {
	return newPCG32WithSeed(seed)
}

func Cosmetic() *CosmeticPRNG {
	return &CosmeticPRNG{}
}

// Core 封裝 PRNG，並提供遊戲需要的取樣工具。
type Core struct {
	PRNG
}

// New 允許使用外部自實現的 PRNG 建立 Core。
func New(rng PRNG) *Core {
	return &Core{rng}
}

// NewSeeded 是 New(f.New(seed)) 的語法糖。
func NewSeeded(f PRNGFactory, seed int64) *Core {
	return &Core{f.New(seed)}
}

// IntRange 回傳 [lo,hi] 閉區間內均勻分布的整數；lo > hi 時回傳 lo。
func (c *Core) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + c.IntN(hi-lo+1)
}

// FloatRange 回傳 [lo,hi) 區間內均勻分布的浮點數。
func (c *Core) FloatRange(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + (hi-lo)*c.Float64()
}

// Die 擲一顆 sides 面骰，回傳 1..sides；sides < 1 時回傳 0。
func (c *Core) Die(sides int) int {
	if sides < 1 {
		return 0
	}
	return c.IntN(sides) + 1
}

// Pick 從列表中隨機選取一個元素，若列表為空回傳 -1
func (c *Core) Pick(src []int) int {
	if len(src) == 0 {
		return -1
	}
	return src[c.IntN(len(src))]
}

// PickString 從字串列表中隨機選取一個元素，若列表為空回傳 ""。
func (c *Core) PickString(src []string) string {
	if len(src) == 0 {
		return ""
	}
	return src[c.IntN(len(src))]
}

// ShuffleInts 以 Fisher-Yates 就地重排。
func (c *Core) ShuffleInts(src []int) {
	for i := len(src) - 1; i > 0; i-- {
		j := c.IntN(i + 1)
		src[i], src[j] = src[j], src[i]
	}
}
