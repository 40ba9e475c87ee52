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

// Package hongbao 提供「富貴險中求」牌局的組裝入口（assembler）與運行入口（runtime entry）。
//
// Hongbao 把下列地基組裝在一起，並提供建立 Table / Simulator / Runtime 的入口：
//  1. Catalog：規則組目錄，定義有哪些規則組（預設版、親戚稱謂版...）與各自的設定檔。
//  2. game.Registry：遊戲註冊表，提供「如何依據 Kind 建出遊戲 session」的 builders。
//  3. Oracle：外部語言模型評審；沒有設定時一律走 fallback（視為輸）。
//  4. seedMaker：牌局種子來源，保證同一個 seed 能重現整個牌局（紅包金額、題目與骰面）。
//
// 典型使用情境：
//   - 後端服務（HTTP）：由 Runtime 管理多張 Table，每張 Table 一個玩家。
//   - 終端機：直接建立一張 Table。
//   - 模擬器（sim）：由 Simulator 以虛擬時鐘自動玩大量骰子局。
package hongbao

import (
	"crypto/rand"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"math/big"
	"time"

	"github.com/zintix-labs/hongbao/catalog"
	"github.com/zintix-labs/hongbao/configs"
	"github.com/zintix-labs/hongbao/errs"
	"github.com/zintix-labs/hongbao/event"
	"github.com/zintix-labs/hongbao/game"
	"github.com/zintix-labs/hongbao/nav"
	"github.com/zintix-labs/hongbao/oracle"
	"github.com/zintix-labs/hongbao/outcome"
	"github.com/zintix-labs/hongbao/sched"
	"github.com/zintix-labs/hongbao/sdk/core"
	"github.com/zintix-labs/hongbao/spec"
)

// DefaultRules 是預設規則組名稱（configs/hongbao.yaml）。
const DefaultRules = "hongbao"

const defaultOutbox = 256

// Configs 用來把一或多個設定檔來源（fs.FS）打包成 New() 需要的參數。
//
// 可以用 go:embed 把 configs 編進 binary，也可以用 os.DirFS 在本機開發時讀取目錄。
func Configs(cfgs ...fs.FS) []fs.FS {
	return cfgs
}

type Option func(*Hongbao) error

// WithOracle 指定外部評審；nil 等同離線。
func WithOracle(o oracle.Oracle) Option {
	return func(h *Hongbao) error {
		h.orc = o
		return nil
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(h *Hongbao) error {
		if log != nil {
			h.log = log
		}
		return nil
	}
}

// WithRegistry 以合併後的 registries 取代預設的 game.Default()。
// 重複的 Kind 直接視為錯誤。
func WithRegistry(regs ...*game.Registry) Option {
	return func(h *Hongbao) error {
		reg, err := game.MergeRegistry(regs...)
		if err != nil {
			return err
		}
		h.reg = reg
		return nil
	}
}

// WithSeed 固定種子來源，之後建立的 Table 依序取得可重現的種子。
func WithSeed(seed int64) Option {
	return func(h *Hongbao) error {
		h.seeds = newSeedMaker(seed)
		return nil
	}
}

func WithDefaultRules(name string) Option {
	return func(h *Hongbao) error {
		h.rules = name
		return nil
	}
}

// WithOutboxSize 設定每張 Table 事件暫存的容量。
func WithOutboxSize(n int) Option {
	return func(h *Hongbao) error {
		if n < 1 {
			return errs.NewFatal("outbox size must be >= 1")
		}
		h.outbox = n
		return nil
	}
}

// WithOracleTimeout 覆寫所有規則組的 oracle timeout；<= 0 時沿用規則設定。
func WithOracleTimeout(d time.Duration) Option {
	return func(h *Hongbao) error {
		h.oracleTimeout = d
		return nil
	}
}

// Hongbao 是組裝器：一旦 New 回傳，Catalog 與 Registry 都已凍結，只讀。
type Hongbao struct {
	cat    *catalog.Catalog
	reg    *game.Registry
	orc    oracle.Oracle
	log    *slog.Logger
	rules  string
	seeds  *seedMaker
	outbox int

	oracleTimeout time.Duration
}

// New 建立 Hongbao。
//
//   - cfgs 至少一個：所有 yaml/json 設定檔都會以去掉副檔名的檔名登記成規則組，並在此時解析驗證。
//   - 每組規則開放的遊戲都必須在 registry 中有 builder，否則直接失敗。
func New(cfgs []fs.FS, opts ...Option) (*Hongbao, error) {
	if len(cfgs) == 0 {
		return nil, errs.NewFatal("configs required")
	}
	cat, err := catalog.New(cfgs...)
	if err != nil {
		return nil, err
	}
	if err := cat.Scan(); err != nil {
		return nil, err
	}
	cat.Freeze()

	h := &Hongbao{
		cat:    cat,
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		outbox: defaultOutbox,
	}
	for _, o := range opts {
		if err := o(h); err != nil {
			return nil, err
		}
	}
	if h.reg == nil {
		h.reg = game.Default()
	}
	if h.seeds == nil {
		seed, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
		if err != nil {
			return nil, errs.Wrap(err, "seed from crypto/rand")
		}
		h.seeds = newSeedMaker(seed.Int64())
	}
	if h.rules == "" {
		h.rules = DefaultRules
		if _, ok := cat.Get(h.rules); !ok {
			h.rules = cat.Names()[0]
		}
	}
	if _, ok := cat.Get(h.rules); !ok {
		return nil, errs.Fatalf("default rules %q not found", h.rules)
	}
	for _, name := range cat.Names() {
		set, _ := cat.Settings(name)
		for _, k := range set.Games {
			if !h.reg.IsExist(k) {
				return nil, errs.Fatalf("rules %s: game %s enabled but not registered", name, k)
			}
		}
	}
	return h, nil
}

// NewDefault 使用內嵌的 configs 建立 Hongbao。
func NewDefault(opts ...Option) (*Hongbao, error) {
	return New(Configs(configs.FS), opts...)
}

func (h *Hongbao) Rules() []catalog.Summary { return h.cat.Summary() }
func (h *Hongbao) DefaultRules() string     { return h.rules }
func (h *Hongbao) Registry() *game.Registry { return h.reg }
func (h *Hongbao) Logger() *slog.Logger     { return h.log }

// Settings 取得規則組；name 為空時回傳預設規則組。
func (h *Hongbao) Settings(name string) (*spec.Settings, error) {
	if name == "" {
		name = h.rules
	}
	return h.cat.Settings(name)
}

// NewTable 以預設種子序列建立一張牌局。
func (h *Hongbao) NewTable(rules string) (*Table, error) {
	return h.NewTableWithSeed(rules, h.seeds.next())
}

// NewTableWithSeed 以指定種子建立牌局，同一個 seed 與同一串輸入會得到同一個牌局。
func (h *Hongbao) NewTableWithSeed(rules string, seed int64) (*Table, error) {
	if rules == "" {
		rules = h.rules
	}
	set, err := h.Settings(rules)
	if err != nil {
		return nil, err
	}
	loop := sched.NewLoop(h.log)
	bus := event.NewBus()
	n, err := h.newNavigator(set, loop, bus, seed)
	if err != nil {
		loop.Close()
		return nil, err
	}
	return newTable(rules, loop, n, bus, h.outbox), nil
}

// newNavigator 由一個 seed 衍生出兩條互不相干的亂數流：
// 權威流（PCG64）負責紅包、題目與計分骰面；表演流（PCG32）只負責搖骰動畫。
func (h *Hongbao) newNavigator(set *spec.Settings, s sched.Scheduler, bus *event.Bus, seed int64) (*nav.Navigator, error) {
	sm := newSeedMaker(seed)
	rng := core.NewSeeded(core.Default(), sm.next())
	cosmetic := core.NewSeeded(core.Cosmetic(), sm.next())
	return nav.New(nav.Config{
		Settings: set,
		Registry: h.reg,
		Sched:    s,
		Bus:      bus,
		Oracle:   h.guard(set),
		RNG:      rng,
		Dice:     outcome.NewRoller(rng),
		Cosmetic: outcome.NewRoller(cosmetic),
		Log:      h.log,
	})
}

func (h *Hongbao) guard(set *spec.Settings) *oracle.Guard {
	timeout := set.Oracle.Timeout()
	if h.oracleTimeout > 0 {
		timeout = h.oracleTimeout
	}
	return oracle.NewGuard(h.orc, outcome.NewMultiplierRange(set.Dream),
		oracle.WithTimeout(timeout),
		oracle.WithLogger(h.log),
	)
}
