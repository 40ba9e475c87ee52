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

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/zintix-labs/hongbao/envcfg"
	"github.com/zintix-labs/hongbao/server"
	"github.com/zintix-labs/hongbao/server/logger"
	"github.com/zintix-labs/hongbao/server/netsvr"
	"github.com/zintix-labs/hongbao/server/svrcfg"
)

func main() {
	sCfg, addr, closeFn, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closeFn()
	server.RunWithSvr(sCfg, netsvr.NewChiServer(addr))
}

// loadConfig 先讀 .env 與 HONGBAO_* / GEMINI_* 環境變數，flag 有給時再覆寫。
func loadConfig() (*svrcfg.SvrCfg, string, func(), error) {
	nop := func() {}
	envFile := flag.String("env", ".env", "dotenv file (optional)")
	addr := flag.String("addr", "", "listen address, overrides HONGBAO_ADDR")
	logMode := flag.String("log-mode", "", "log mode: dev|prod|silence, overrides HONGBAO_LOG_MODE")
	rules := flag.String("rules", "", "default rules, overrides HONGBAO_RULES")
	flag.Parse()

	env, err := envcfg.Load(*envFile)
	if err != nil {
		return nil, "", nop, err
	}
	if *addr != "" {
		env.Addr = *addr
	}
	if *logMode != "" {
		if env.LogMode, err = logger.ParseMode(*logMode); err != nil {
			return nil, "", nop, err
		}
	}
	if *rules != "" {
		env.Rules = *rules
	}

	log, ah := logger.NewAsync(4096, env.LogMode)
	hb, closeOracle, err := env.Build(context.Background(), log)
	if err != nil {
		ah.Close()
		return nil, "", nop, err
	}
	closeFn := func() {
		closeOracle()
		if n := ah.Dropped(); n > 0 {
			log.Warn("log records dropped", slog.Uint64("count", n))
		}
		ah.Close()
	}
	sCfg := &svrcfg.SvrCfg{
		Log:         log,
		Hongbao:     hb,
		MaxTables:   env.MaxTables,
		IdleTimeout: env.Idle,
		SimMP:       env.SimMP,
	}
	return sCfg, env.Addr, closeFn, nil
}
