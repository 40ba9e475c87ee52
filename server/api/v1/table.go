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

package v1

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/zintix-labs/hongbao"
	"github.com/zintix-labs/hongbao/dto"
	"github.com/zintix-labs/hongbao/errs"
	"github.com/zintix-labs/hongbao/game"
	"github.com/zintix-labs/hongbao/nav"
	"github.com/zintix-labs/hongbao/server/httperr"
	"github.com/zintix-labs/hongbao/server/netsvr"
)

// 單一操作的上限；oracle 呼叫在背景進行，不會佔住這段時間。
const opTimeout = 5 * time.Second

// TableHandler 以 Runtime 管理的牌局提供遊玩 API。
//
// 每個操作對應 Navigator 或 Session 的一個方法。被狀態機拒絕的輸入回 409，
// 牌局狀態保證未被改動；成功時回傳最新的 dto.TableState。
type TableHandler struct {
	rt  *hongbao.Runtime
	log *slog.Logger
}

func NewTableHandler(rt *hongbao.Runtime, log *slog.Logger) (*TableHandler, error) {
	if rt == nil {
		return nil, errs.NewFatal("runtime is required")
	}
	if log == nil {
		log = rt.Hongbao().Logger()
	}
	return &TableHandler{rt: rt, log: log}, nil
}

func (h *TableHandler) Open(w http.ResponseWriter, r *http.Request) {
	req, err := dto.DecodeOpenRequest(r)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), opTimeout)
	defer cancel()

	id, t, err := h.rt.Open(ctx, req.Rules)
	if err != nil {
		httperr.Log(h.log, "open table failed", err)
		httperr.Errs(w, err)
		return
	}
	h.writeState(w, r, http.StatusCreated, id, t)
}

func (h *TableHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, t, ok := h.table(w, r)
	if !ok {
		return
	}
	h.writeState(w, r, http.StatusOK, id, t)
}

func (h *TableHandler) Close(w http.ResponseWriter, r *http.Request) {
	id := netsvr.URLParam(r, "id")
	if !h.rt.Remove(id) {
		httperr.Errs(w, errs.Warnf("table not found: %s", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Events 取出並清空該牌局累積的事件。
func (h *TableHandler) Events(w http.ResponseWriter, r *http.Request) {
	id, t, ok := h.table(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, dto.NewEvents(id, t.Events(), t.Dropped()))
}

func (h *TableHandler) Envelope(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "open envelope", (*nav.Navigator).OpenEnvelope)
}

func (h *TableHandler) Back(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "back", (*nav.Navigator).Back)
}

func (h *TableHandler) Restart(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "restart", (*nav.Navigator).Restart)
}

func (h *TableHandler) Enter(w http.ResponseWriter, r *http.Request) {
	req, err := dto.DecodeEnterRequest(r)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	h.act(w, r, "enter "+string(req.Game), func(n *nav.Navigator) bool {
		return n.Enter(req.Game)
	})
}

func (h *TableHandler) Bet(w http.ResponseWriter, r *http.Request) {
	req, err := dto.DecodeBetRequest(r)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	h.act(w, r, "bet", inSession(func(s game.Session) bool {
		return s.Draft(req.Amount)
	}))
}

func (h *TableHandler) Category(w http.ResponseWriter, r *http.Request) {
	req, err := dto.DecodeCategoryRequest(r)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	h.act(w, r, "category", inSession(func(s game.Session) bool {
		return s.Choose(req.Category)
	}))
}

func (h *TableHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "start", inSession(game.Session.PlaceBet))
}

func (h *TableHandler) Answer(w http.ResponseWriter, r *http.Request) {
	req, err := dto.DecodeAnswerRequest(r)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	h.act(w, r, "answer", inSession(func(s game.Session) bool {
		return s.Submit(req.Text)
	}))
}

func (h *TableHandler) Again(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "play again", inSession(game.Session.PlayAgain))
}

// -----------------------------------------------------------------------------
//  內部
// -----------------------------------------------------------------------------

// inSession 不在遊戲中時一律拒絕。
func inSession(fn func(s game.Session) bool) func(n *nav.Navigator) bool {
	return func(n *nav.Navigator) bool {
		s := n.Session()
		if s == nil {
			return false
		}
		return fn(s)
	}
}

func (h *TableHandler) table(w http.ResponseWriter, r *http.Request) (string, *hongbao.Table, bool) {
	id := netsvr.URLParam(r, "id")
	t, err := h.rt.Get(id)
	if err != nil {
		httperr.Errs(w, err)
		return "", nil, false
	}
	return id, t, true
}

func (h *TableHandler) act(w http.ResponseWriter, r *http.Request, op string, fn func(n *nav.Navigator) bool) {
	id, t, ok := h.table(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), opTimeout)
	defer cancel()

	accepted, err := t.Do(ctx, fn)
	if err != nil {
		httperr.Log(h.log, op+" failed", err)
		httperr.Errs(w, err)
		return
	}
	if !accepted {
		httperr.Errs(w, errs.Rejectf("%s rejected", op))
		return
	}
	h.writeState(w, r, http.StatusOK, id, t)
}

func (h *TableHandler) writeState(w http.ResponseWriter, r *http.Request, status int, id string, t *hongbao.Table) {
	ctx, cancel := context.WithTimeout(r.Context(), opTimeout)
	defer cancel()
	snap, err := t.Snapshot(ctx)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	writeJSON(w, status, dto.TableState{ID: id, Rules: t.Rules(), Table: snap})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
