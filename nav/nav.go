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

// Package nav 是牌局最上層的狀態機：開紅包、大廳、遊戲中、破產。
package nav

import (
	"io"
	"log/slog"

	"github.com/zintix-labs/hongbao/errs"
	"github.com/zintix-labs/hongbao/event"
	"github.com/zintix-labs/hongbao/game"
	"github.com/zintix-labs/hongbao/ledger"
	"github.com/zintix-labs/hongbao/oracle"
	"github.com/zintix-labs/hongbao/outcome"
	"github.com/zintix-labs/hongbao/sched"
	"github.com/zintix-labs/hongbao/sdk/core"
	"github.com/zintix-labs/hongbao/spec"
)

type View string

const (
	Uninitialized View = "uninitialized"
	Lobby         View = "lobby"
	InGame        View = "in_game"
	GameOver      View = "game_over"
)

// Config 組裝 Navigator 所需的全部依賴。
type Config struct {
	Settings *spec.Settings
	Registry *game.Registry
	Sched    sched.Scheduler
	Bus      *event.Bus
	Oracle   *oracle.Guard
	// RNG 權威亂數流：紅包金額與阿姨題目。
	RNG      *core.Core
	Dice     outcome.DiceSource
	Cosmetic outcome.DiceSource
	Log      *slog.Logger
}

// Navigator 持有 ledger 與目前唯一的 game session。只能在 loop 上操作。
type Navigator struct {
	cfg     Config
	log     *slog.Logger
	led     *ledger.Ledger
	grant   *outcome.Grant
	view    View
	kind    spec.Kind
	session game.Session
	grace   sched.Timer
}

func New(cfg Config) (*Navigator, error) {
	switch {
	case cfg.Settings == nil:
		return nil, errs.NewFatal("nav: settings is nil")
	case cfg.Sched == nil:
		return nil, errs.NewFatal("nav: scheduler is nil")
	case cfg.RNG == nil || cfg.Dice == nil || cfg.Cosmetic == nil:
		return nil, errs.NewFatal("nav: rng is nil")
	}
	if cfg.Registry == nil {
		cfg.Registry = game.Default()
	}
	if cfg.Bus == nil {
		cfg.Bus = event.NewBus()
	}
	if cfg.Log == nil {
		cfg.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Oracle == nil {
		cfg.Oracle = oracle.NewGuard(nil, outcome.NewMultiplierRange(cfg.Settings.Dream), oracle.WithLogger(cfg.Log))
	}
	for _, k := range cfg.Settings.Games {
		if !cfg.Registry.IsExist(k) {
			return nil, errs.Fatalf("nav: game %s enabled but not registered", k)
		}
	}
	n := &Navigator{
		cfg:   cfg,
		log:   cfg.Log,
		led:   ledger.New(),
		grant: outcome.NewGrant(cfg.RNG, cfg.Settings.Grant),
		view:  Uninitialized,
	}
	n.led.Observe(n.onBalance)
	return n, nil
}

func (n *Navigator) View() View               { return n.view }
func (n *Navigator) Kind() spec.Kind          { return n.kind }
func (n *Navigator) Balance() int             { return n.led.Balance() }
func (n *Navigator) Session() game.Session    { return n.session }
func (n *Navigator) Bus() *event.Bus          { return n.cfg.Bus }
func (n *Navigator) Settings() *spec.Settings { return n.cfg.Settings }

// Games 目前開放的遊戲。
func (n *Navigator) Games() []spec.Kind {
	return append([]spec.Kind(nil), n.cfg.Settings.Games...)
}

// OpenEnvelope Uninitialized → Lobby，以新抽的紅包金額開局。
func (n *Navigator) OpenEnvelope() bool {
	if n.view != Uninitialized {
		return false
	}
	amount := n.grant.Draw()
	n.setView(Lobby, "")
	n.led.Initialize(amount)
	n.cfg.Bus.Publish(event.EnvelopeOpened{Amount: amount})
	n.cfg.Bus.Publish(event.Cue{Name: event.CueFanfare})
	n.log.Info("envelope opened", slog.Int("amount", amount))
	return true
}

// Enter Lobby → InGame(k)，建立唯一的 game session。
func (n *Navigator) Enter(k spec.Kind) bool {
	if n.view != Lobby || n.led.Balance() <= 0 || !n.cfg.Settings.Enabled(k) {
		return false
	}
	s, err := n.cfg.Registry.Build(k, game.Deps{
		Settings: n.cfg.Settings,
		Ledger:   n.led,
		Sched:    n.cfg.Sched,
		Bus:      n.cfg.Bus,
		Oracle:   n.cfg.Oracle,
		RNG:      n.cfg.RNG,
		Dice:     n.cfg.Dice,
		Cosmetic: n.cfg.Cosmetic,
		OnBust:   n.gameOver,
		Log:      n.log,
	})
	if err != nil {
		n.log.Error("build game failed", slog.String("kind", string(k)), slog.Any("err", err))
		return false
	}
	n.cfg.Bus.Publish(event.Cue{Name: event.CueClick})
	n.session = s
	n.setView(InGame, k)
	return true
}

// Back InGame → Lobby，拆除目前的 session；進行中的回合作廢，不扣注。
func (n *Navigator) Back() bool {
	if n.view != InGame {
		return false
	}
	n.teardown()
	n.cfg.Bus.Publish(event.Cue{Name: event.CueClick})
	n.setView(Lobby, "")
	return true
}

// Restart GameOver/Lobby → Uninitialized，餘額歸零並等待重新開紅包。
func (n *Navigator) Restart() bool {
	if n.view != GameOver && n.view != Lobby {
		return false
	}
	n.teardown()
	n.setView(Uninitialized, "")
	n.led.Reset()
	n.cfg.Bus.Publish(event.SessionReset{})
	n.log.Info("session reset")
	return true
}

// Close 拆除目前的 session 與計時器，給 Table 關閉時使用。
func (n *Navigator) Close() {
	n.teardown()
}

// GraceArmed 回報破產倒數是否進行中。
func (n *Navigator) GraceArmed() bool { return n.grace != nil }

func (n *Navigator) onBalance(old, new int) {
	n.cfg.Bus.Publish(event.BalanceChanged{Old: old, New: new})
	if new > 0 {
		n.disarm()
		return
	}
	n.arm()
}

// arm 在 Lobby/InGame 且餘額為 0 時啟動破產倒數。
func (n *Navigator) arm() {
	if n.grace != nil || n.led.Balance() > 0 || (n.view != Lobby && n.view != InGame) {
		return
	}
	n.grace = n.cfg.Sched.After(n.cfg.Settings.GraceDelay(), func() {
		n.grace = nil
		n.gameOver()
	})
}

func (n *Navigator) disarm() {
	if n.grace != nil {
		n.grace.Stop()
		n.grace = nil
	}
}

func (n *Navigator) gameOver() {
	if n.view == GameOver || n.view == Uninitialized || n.led.Balance() > 0 {
		return
	}
	kind := n.kind
	n.teardown()
	n.setView(GameOver, "")
	n.cfg.Bus.Publish(event.GameOver{Kind: string(kind)})
	n.log.Info("game over", slog.String("kind", string(kind)))
}

func (n *Navigator) teardown() {
	n.disarm()
	if n.session != nil {
		n.session.Close()
		n.session = nil
	}
}

// setView 切換畫面；任何畫面切換都會取消破產倒數，新畫面若仍為 0 元則重新計時。
func (n *Navigator) setView(v View, k spec.Kind) {
	from := n.view
	n.disarm()
	n.view = v
	n.kind = k
	n.cfg.Bus.Publish(event.ViewChanged{From: string(from), To: string(v), Kind: string(k)})
	if n.led.Started() {
		n.arm()
	}
}
