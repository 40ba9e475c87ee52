package v1

import (
	"net/http"

	"github.com/zintix-labs/hongbao"
	"github.com/zintix-labs/hongbao/dto"
	"github.com/zintix-labs/hongbao/server/httperr"
	"github.com/zintix-labs/hongbao/server/netsvr"
)

// Rules 列出所有規則組。
func Rules(hb *hongbao.Hongbao) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, dto.RulesList{Default: hb.DefaultRules(), Rules: hb.Rules()})
	}
}

// RulesByName 回傳完整的規則設定 (spec.Settings)；?format=yaml 時回傳 YAML。
func RulesByName(hb *hongbao.Hongbao) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		set, err := hb.Settings(netsvr.URLParam(r, "name"))
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		if r.URL.Query().Get("format") != "yaml" {
			writeJSON(w, http.StatusOK, set)
			return
		}
		raw, err := set.YAML()
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		_, _ = w.Write(raw)
	}
}
