package v1

import (
	"crypto/rand"
	"math"
	"math/big"
	"net/http"

	"github.com/zintix-labs/hongbao"
	"github.com/zintix-labs/hongbao/dto"
	"github.com/zintix-labs/hongbao/errs"
	"github.com/zintix-labs/hongbao/server/httperr"
	"github.com/zintix-labs/hongbao/stats"
)

// SimHandler 以骰子遊戲跑 RTP 模擬，回傳統計報表。
//
// rounds 為每個 worker 的局數，總局數為 rounds * mp。
// 預設輸出 JSON (dto.SimResult)；?format=table / yaml 時改以 stats.Render 輸出文字報表。
type SimHandler struct {
	hb *hongbao.Hongbao
	mp int
}

func NewSimHandler(hb *hongbao.Hongbao, mp int) (*SimHandler, error) {
	if hb == nil {
		return nil, errs.NewFatal("hongbao is required")
	}
	return &SimHandler{hb: hb, mp: max(1, mp)}, nil
}

func (sh *SimHandler) Sim(w http.ResponseWriter, r *http.Request) {
	req, err := dto.DecodeSimRequest(r)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	format := r.URL.Query().Get("format")
	var render stats.Render
	if format != "" && format != "json" {
		if render, err = stats.NewRender(format); err != nil {
			httperr.Errs(w, err)
			return
		}
	}
	if req.Seed == nil {
		v, err := randomSeed()
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		req.Seed = &v
	}
	sim, err := sh.hb.NewSimulatorWithSeed(req.Rules, *req.Seed)
	if err != nil {
		// 尊重錯誤分級
		httperr.Errs(w, errs.Wrap(err, "build simulator err"))
		return
	}
	st := hongbao.Strategy{Category: req.Category, Bet: req.Bet}
	resp := dto.SimResult{Seed: *req.Seed}
	if req.Players > 0 {
		rep, est, used, err := sim.SimPlayers(sh.mp, req.Players, st, req.Rounds, false)
		if err != nil {
			httperr.Errs(w, errs.Wrap(err, "simulate players err"))
			return
		}
		resp.Stats, resp.Est, resp.UsedTime = rep, est, used.Milliseconds()
	} else {
		rep, used, err := sim.SimMP(st, req.Rounds, sh.mp, false)
		if err != nil {
			httperr.Errs(w, errs.Wrap(err, "simulate err"))
			return
		}
		resp.Stats, resp.UsedTime = rep, used.Milliseconds()
	}

	if render == nil {
		writeJSON(w, http.StatusOK, resp)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := render.Write(w, resp.Stats); err != nil {
		return
	}
	if resp.Est != nil {
		_ = render.WriteEstimator(w, resp.Est)
	}
}

// randomSeed 使用 crypto/rand 產生 [0, MaxInt64) 的種子。
func randomSeed() (int64, error) {
	rnd, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		return 0, errs.NewWarn("seed generate failed")
	}
	return rnd.Int64(), nil
}
