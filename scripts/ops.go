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

// ops 開發用的任務入口：go run ./scripts <task> [args...]
package main

import (
	"os"
	"sort"
	"strings"

	"github.com/pterm/pterm"
)

var tasks = map[string]task{
	"test":        {desc: "清除 test cache 後跑全部測試，只顯示 ok / FAIL", run: runTest},
	"test-detail": {desc: "verbose 測試，略過沒有測試檔的套件", run: runTestDetail},
	"sim":         {desc: "跑骰子 RTP 模擬，參數轉給 cmd/sim", run: passTo("./cmd/sim")},
	"svr":         {desc: "啟動 HTTP 服務，參數轉給 cmd/svr", run: passTo("./cmd/svr")},
	"play":        {desc: "終端機牌桌，參數轉給 cmd/play", run: passTo("./cmd/play")},
}

type task struct {
	desc string
	run  func(args []string) error
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	name := os.Args[1]
	t, ok := tasks[name]
	if !ok {
		pterm.Warning.Printfln("unknown task: %s", name)
		usage()
		os.Exit(1)
	}
	if err := t.run(os.Args[2:]); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func usage() {
	names := make([]string, 0, len(tasks))
	for n := range tasks {
		names = append(names, n)
	}
	sort.Strings(names)
	rows := pterm.TableData{{"task", "說明"}}
	for _, n := range names {
		rows = append(rows, []string{n, tasks[n].desc})
	}
	pterm.Println("Usage: go run ./scripts <task> [args...]")
	_ = pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}

func joinArgs(args []string) string { return strings.Join(args, " ") }
