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

package server

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/zintix-labs/hongbao/errs"
	"github.com/zintix-labs/hongbao/server/api"
	"github.com/zintix-labs/hongbao/server/app"
	"github.com/zintix-labs/hongbao/server/netsvr"
	"github.com/zintix-labs/hongbao/server/svrcfg"
)

// Run 以預設位址 (:5808) 啟動。
func Run(sCfg *svrcfg.SvrCfg) {
	RunWithSvr(sCfg, netsvr.NewChiServerDefault())
}

// RunWithSvr 組裝牌局 Runtime 與路由，並交給 app.App 管理生命週期：
// HTTP server 與閒置牌局回收各為一個 Component。
func RunWithSvr(sCfg *svrcfg.SvrCfg, svr netsvr.NetSvr) {
	if err := sCfg.Vaild(); err != nil {
		// 防止外層傳入的logger不可用
		fmt.Fprintln(os.Stderr, err)
		return
	}
	if svr == nil {
		sCfg.Log.Error(errs.NewFatal("svr is required").Error())
		return
	} else {
		if s, ok := svr.(*netsvr.ChiAdapter); ok && !s.Ready() {
			sCfg.Log.Error(errs.NewFatal("default server is not ready").Error())
			return
		}
	}

	rt := sCfg.Hongbao.BuildRuntime(sCfg.MaxTables, sCfg.IdleTimeout)

	// 註冊 Api
	if err := api.RegisterRoutes(svr, sCfg, rt); err != nil {
		sCfg.Log.Error("register routes failed", slog.Any("err", err))
		rt.Close()
		return
	}

	// 運行
	a := app.NewWith(svr, app.FromContext(rt.Run, rt.Close)).WithLogger(sCfg.Log)
	addr := ""
	if s, ok := svr.(*netsvr.ChiAdapter); ok {
		addr = s.Address()
	}
	sCfg.Log.Info("[hongbao] listening",
		slog.String("addr", addr),
		slog.String("rules", sCfg.Hongbao.DefaultRules()),
		slog.Int("max_tables", sCfg.MaxTables),
		slog.Duration("idle", sCfg.IdleTimeout),
	)
	if err := a.Run(); err != nil {
		sCfg.Log.Error("app stopped", slog.Any("err", err))
	}
}
