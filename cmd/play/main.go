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

// play 終端機版的紅包牌桌，直接在行程內操作 hongbao.Table，不經過 HTTP。
package main

import (
	"context"
	"flag"
	"os"

	"github.com/pterm/pterm"
	"github.com/zintix-labs/hongbao/envcfg"
	"github.com/zintix-labs/hongbao/server/logger"
)

func main() {
	envFile := flag.String("env", ".env", "dotenv file (optional)")
	rules := flag.String("rules", "", "rules name, overrides HONGBAO_RULES")
	flag.Parse()

	env, err := envcfg.Load(*envFile)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(2)
	}
	if *rules != "" {
		env.Rules = *rules
	}

	log := logger.NewDefaultLogger(logger.ModeTerm)
	ctx := context.Background()
	hb, closeOracle, err := env.Build(ctx, log)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
	defer closeOracle()

	t, err := hb.NewTable("")
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
	defer t.Close()

	if err := newClient(t).run(ctx); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}
