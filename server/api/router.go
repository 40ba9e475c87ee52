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

package api

import (
	"log/slog"
	"net/http"

	"github.com/zintix-labs/hongbao"
	"github.com/zintix-labs/hongbao/server/api/dev"
	v1 "github.com/zintix-labs/hongbao/server/api/v1"
	"github.com/zintix-labs/hongbao/server/netsvr"
	"github.com/zintix-labs/hongbao/server/netsvr/middleware"
	"github.com/zintix-labs/hongbao/server/svrcfg"
)

func RegisterRoutes(svr netsvr.NetSvr, sCfg *svrcfg.SvrCfg, rt *hongbao.Runtime) error {
	registerMiddleware(svr, sCfg.Log)   // 1. 註冊 middleware
	registerIndex(svr)                  // 2. 註冊主頁
	dev.Register(svr, sCfg)             // 3. 遊玩面板
	return registerV1API(svr, sCfg, rt) // 4. 註冊 v1 api
}

func registerMiddleware(svr netsvr.NetSvr, log *slog.Logger) {
	svr.Use(middleware.RequestID)
	svr.Use(middleware.AccessLog(log))
	svr.Use(middleware.Recover(log))
	svr.Use(middleware.Compression)
}

func registerIndex(svr netsvr.NetSvr) {
	svr.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dev", http.StatusFound)
	})
	svr.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
}

func registerV1API(svr netsvr.NetSvr, sCfg *svrcfg.SvrCfg, rt *hongbao.Runtime) error {
	t, err := v1.NewTableHandler(rt, sCfg.Log)
	if err != nil {
		return err
	}
	s, err := v1.NewSimHandler(sCfg.Hongbao, sCfg.SimMP)
	if err != nil {
		return err
	}
	svr.Group("/v1", func(vOne netsvr.NetRouter) {
		vOne.Get("/rules", v1.Rules(sCfg.Hongbao))
		vOne.Get("/rules/{name}", v1.RulesByName(sCfg.Hongbao))

		vOne.Get("/sim", s.Sim)
		vOne.Post("/sim", s.Sim)

		vOne.Post("/tables", t.Open)
		vOne.Group("/tables/{id}", func(tb netsvr.NetRouter) {
			tb.Get("/", t.Get)
			tb.Delete("/", t.Close)
			tb.Get("/events", t.Events)

			// 導覽
			tb.Post("/envelope", t.Envelope)
			tb.Post("/enter", t.Enter)
			tb.Post("/back", t.Back)
			tb.Post("/restart", t.Restart)

			// 遊戲內
			tb.Post("/bet", t.Bet)
			tb.Post("/category", t.Category)
			tb.Post("/start", t.Start)
			tb.Post("/answer", t.Answer)
			tb.Post("/again", t.Again)
		})
	})
	return nil
}
