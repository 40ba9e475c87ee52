package envcfg

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"

	"github.com/zintix-labs/hongbao"
	"github.com/zintix-labs/hongbao/configs"
	"github.com/zintix-labs/hongbao/oracle"
	"github.com/zintix-labs/hongbao/oracle/gemini"
	"github.com/zintix-labs/hongbao/outcome"
	"github.com/zintix-labs/hongbao/server/logger"
)

// Build 依 Env 組裝 Hongbao：內嵌規則 + HONGBAO_CONFIG_DIR，GEMINI_API_KEY 有值時接上 Gemini，
// 否則使用 oracle.Offline (所有需要評審的局都走 fallback)。
//
// 回傳的 close 用來釋放 oracle client，永遠不為 nil。
func (e *Env) Build(ctx context.Context, log *slog.Logger) (*hongbao.Hongbao, func(), error) {
	nop := func() {}
	if log == nil {
		log = logger.NewDefaultLogger(logger.ModeSilence)
	}
	cfgs := []fs.FS{configs.FS}
	extra, err := e.ConfigFS()
	if err != nil {
		return nil, nop, err
	}
	if extra != nil {
		cfgs = append(cfgs, extra)
	}
	opts := []hongbao.Option{
		hongbao.WithLogger(log),
		hongbao.WithDefaultRules(e.Rules),
		hongbao.WithOracleTimeout(e.OracleTimeout),
	}

	// 先以無 oracle 的設定驗證規則，並取得解夢倍率區間寫入 prompt
	probe, err := hongbao.New(hongbao.Configs(cfgs...), opts...)
	if err != nil {
		return nil, nop, err
	}
	set, err := probe.Settings("")
	if err != nil {
		return nil, nop, err
	}

	var orc oracle.Oracle = oracle.Offline{}
	closeFn := nop
	gc, err := gemini.New(ctx, gemini.Config{
		APIKey: e.Gemini.APIKey,
		Model:  e.Gemini.Model,
		Mult:   outcome.NewMultiplierRange(set.Dream),
		Log:    log,
	})
	switch {
	case err == nil:
		orc = gc
		closeFn = func() { _ = gc.Close() }
		log.Info("oracle: gemini", slog.String("model", e.Gemini.Model))
	case errors.Is(err, oracle.ErrUnavailable):
		log.Warn("oracle: offline, GEMINI_API_KEY not set; judged rounds fall back to a loss")
	default:
		return nil, nop, err
	}

	hb, err := hongbao.New(hongbao.Configs(cfgs...), append(opts, hongbao.WithOracle(orc))...)
	if err != nil {
		closeFn()
		return nil, nop, err
	}
	return hb, closeFn, nil
}
