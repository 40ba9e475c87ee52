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

// Package perf 包住一次模擬執行，依模式寫出 pprof 檔。
package perf

import (
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"

	"github.com/zintix-labs/hongbao/errs"
)

// DefaultDir pprof 檔案寫入路徑
const DefaultDir = "build/profiling"

type Mode string

const (
	Off    Mode = ""
	CPU    Mode = "cpu"
	Heap   Mode = "heap"
	Allocs Mode = "allocs"
)

// ParseMode 未知的模式回傳 Warn。
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case Off, CPU, Heap, Allocs:
		return m, nil
	default:
		return Off, errs.Warnf("unknown pprof mode: %q (cpu|heap|allocs)", s)
	}
}

// Run 依 mode 執行 exe 並寫出 profile 至 dir (空字串用 DefaultDir)；mode 為 Off 時只執行 exe。
// exe 的錯誤優先回傳。
//
// Usage like:
//
//	go run ./cmd/sim -p cpu
func Run(exe func() error, mode Mode, dir string) error {
	if mode == Off {
		return exe()
	}
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errs.WrapLevel(err, errs.Fatal, "create pprof dir")
	}
	switch mode {
	case CPU:
		return runCPU(exe, filepath.Join(dir, "cpu.pprof"))
	case Heap:
		return runThenWrite(exe, filepath.Join(dir, "heap.pprof"), func(f *os.File) error {
			// 盡量讓快照貼近最新狀態
			runtime.GC()
			return pprof.WriteHeapProfile(f)
		})
	case Allocs:
		// 累積配置，搭配 -alloc_space / -alloc_objects 查看
		return runThenWrite(exe, filepath.Join(dir, "allocs.pprof"), func(f *os.File) error {
			return pprof.Lookup("allocs").WriteTo(f, 0)
		})
	default:
		return errs.Warnf("unknown pprof mode: %q", mode)
	}
}

// runCPU 的輸出也可直接作為 PGO 的 default.pgo。
func runCPU(exe func() error, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errs.WrapLevel(err, errs.Fatal, "create "+path)
	}
	defer f.Close()
	if err := pprof.StartCPUProfile(f); err != nil {
		return errs.WrapLevel(err, errs.Fatal, "start cpu profile")
	}
	defer pprof.StopCPUProfile()
	return exe()
}

func runThenWrite(exe func() error, path string, write func(f *os.File) error) error {
	if err := exe(); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return errs.WrapLevel(err, errs.Fatal, "create "+path)
	}
	defer f.Close()
	if err := write(f); err != nil {
		return errs.WrapLevel(err, errs.Fatal, "write "+path)
	}
	return nil
}
