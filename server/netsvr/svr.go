package netsvr

import (
	"net/http"

	"github.com/zintix-labs/hongbao/server/app"
)

// NetSvr 是交給 cmd/svr 的完整 HTTP 服務：可註冊路由、可被 app.App 啟停，
// 也能直接當 http.Handler 用 (測試時不必真的監聽)。
type NetSvr interface {
	NetRouter
	app.Component
	http.Handler
}

// NetRouter 只有路由能力，handler 模組拿不到 Run / Shutdown。
type NetRouter interface {
	Use(middleware func(http.Handler) http.Handler)

	Get(path string, h http.HandlerFunc)
	Post(path string, h http.HandlerFunc)
	Delete(path string, h http.HandlerFunc)

	// Group 以 path 為前綴建立子路由，path 可含參數 (例如 /tables/{id})。
	Group(path string, fn func(NetRouter))
}
