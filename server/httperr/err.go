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

package httperr

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/zintix-labs/hongbao/dto"
	"github.com/zintix-labs/hongbao/errs"
)

// levelStatus 錯誤分級對應的 HTTP status；沒列出的 (Fatal、Log、非 *errs.E) 一律 500。
var levelStatus = map[errs.ErrLevel]int{
	errs.Warn:   http.StatusBadRequest,
	errs.Reject: http.StatusConflict, // 狀態機拒絕，牌局未改變
}

func StatusCode(err error) int {
	// context 取消/超時優先，即使被 wrap 也能命中
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	}
	if e, ok := errs.AsErr(err); ok {
		if status, ok := levelStatus[e.ErrLv]; ok {
			return status
		}
	}
	return http.StatusInternalServerError
}

// Errs 依錯誤分級決定 status code，並以 JSON (dto.ErrorBody) 寫回。
func Errs(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	status := StatusCode(err)
	body := dto.ErrorBody{Error: err.Error()}
	if e, ok := errs.AsErr(err); ok {
		body.Error = e.Message
		body.Level = errs.ErrLv(e.ErrLv)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Log 只記錄需要關注的錯誤：408/409/429 記 Warn，5xx 記 Error，其餘 4xx 不記。
func Log(log *slog.Logger, msg string, err error) {
	if err == nil || log == nil {
		return
	}
	switch status := StatusCode(err); {
	case status == http.StatusRequestTimeout, status == http.StatusConflict, status == http.StatusTooManyRequests:
		log.Warn(msg, slog.Any("err", err))
	case status >= 500:
		log.Error(msg, slog.Any("err", err))
	}
}
