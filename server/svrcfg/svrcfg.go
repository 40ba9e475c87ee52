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

package svrcfg

import (
	"log/slog"
	"time"

	"github.com/zintix-labs/hongbao"
	"github.com/zintix-labs/hongbao/errs"
	"github.com/zintix-labs/hongbao/server/logger"
)

const (
	DefaultMaxTables = 1024
	DefaultIdle      = 30 * time.Minute
	DefaultSimMP     = 4
)

type SvrCfg struct {
	Log         *slog.Logger
	Hongbao     *hongbao.Hongbao
	MaxTables   int           // 同時存在的牌局上限
	IdleTimeout time.Duration // 牌局閒置多久後回收
	SimMP       int           // /v1/sim 使用的 worker 數
}

func (sc *SvrCfg) Vaild() error {
	if sc.Log != nil {
		if ah, ok := sc.Log.Handler().(*logger.AsyncHandler); ok && !ah.Ready() {
			return errs.NewFatal("nil default log handler: async handler is nil")
		}
	} else {
		sc.Log, _ = logger.NewAsync(1024, logger.ModeDev)
	}
	if sc.Hongbao == nil {
		return errs.NewFatal("hongbao is required")
	}
	if sc.MaxTables <= 0 {
		sc.MaxTables = DefaultMaxTables
	}
	if sc.IdleTimeout <= 0 {
		sc.IdleTimeout = DefaultIdle
	}
	if sc.SimMP <= 0 {
		sc.SimMP = DefaultSimMP
	}
	sc.SimMP = min(16, sc.SimMP)
	return nil
}
