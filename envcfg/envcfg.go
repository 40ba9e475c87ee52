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

// Package envcfg 讀取執行期設定：先載入 .env（可選），再以 HONGBAO_* / GEMINI_* 環境變數解析成 Env。
package envcfg

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/zintix-labs/hongbao/errs"
	"github.com/zintix-labs/hongbao/server/logger"
)

type Env struct {
	Addr      string         `env:"HONGBAO_ADDR"       envDefault:":5808"`
	LogMode   logger.LogMode `env:"HONGBAO_LOG_MODE"   envDefault:"dev"`
	Rules     string         `env:"HONGBAO_RULES"`      // 預設規則組，空字串用 hongbao
	ConfigDir string         `env:"HONGBAO_CONFIG_DIR"` // 額外的規則目錄 (扁平，*.yaml / *.json)
	MaxTables int            `env:"HONGBAO_MAX_TABLES" envDefault:"1024"`
	Idle      time.Duration  `env:"HONGBAO_IDLE"       envDefault:"30m"`
	SimMP     int            `env:"HONGBAO_SIM_MP"     envDefault:"4"`

	// OracleTimeout > 0 時覆寫規則中的 oracle.timeout_ms
	OracleTimeout time.Duration `env:"HONGBAO_ORACLE_TIMEOUT"`

	Gemini Gemini
}

type Gemini struct {
	APIKey string `env:"GEMINI_API_KEY"`
	Model  string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
}

// Load 依序載入 files（預設 .env）後解析環境變數。檔案不存在不算錯誤；已存在的環境變數不會被覆寫。
func Load(files ...string) (*Env, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, errs.WrapLevel(err, errs.Fatal, "load env file "+f)
		}
	}
	return Parse()
}

// Parse 只解析目前的環境變數。
func Parse() (*Env, error) {
	e := new(Env)
	if err := env.Parse(e); err != nil {
		return nil, errs.WrapLevel(err, errs.Fatal, "parse env")
	}
	if e.MaxTables < 1 {
		return nil, errs.Fatalf("HONGBAO_MAX_TABLES must >= 1, got %d", e.MaxTables)
	}
	return e, nil
}

// ConfigFS 回傳額外規則目錄的 fs.FS；未設定時回傳 nil。
func (e *Env) ConfigFS() (fs.FS, error) {
	if e.ConfigDir == "" {
		return nil, nil
	}
	st, err := os.Stat(e.ConfigDir)
	if err != nil {
		return nil, errs.WrapLevel(err, errs.Fatal, "config dir")
	}
	if !st.IsDir() {
		return nil, errs.Fatalf("config dir is not a directory: %s", e.ConfigDir)
	}
	return os.DirFS(e.ConfigDir), nil
}
