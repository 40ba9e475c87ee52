package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	chimid "github.com/go-chi/chi/v5/middleware"
)

// RequestID 沿用 chi 的 request id (客戶端帶 X-Request-Id 時直接採用)，並回寫到回應 header。
func RequestID(next http.Handler) http.Handler {
	return chimid.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := chimid.GetReqID(r.Context()); id != "" {
			w.Header().Set(chimid.RequestIDHeader, id)
		}
		next.ServeHTTP(w, r)
	}))
}

// ReqAttr 給 log 用的 req_id 欄位；chi 產生的 "host/prefix-000123" 只留流水號。
func ReqAttr(r *http.Request) slog.Attr {
	id := chimid.GetReqID(r.Context())
	if i := strings.LastIndex(id, "-"); strings.Contains(id, "/") && i >= 0 && i+1 < len(id) {
		id = id[i+1:]
	}
	return slog.String("req_id", id)
}
