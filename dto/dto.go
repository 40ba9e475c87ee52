package dto

import (
	"github.com/zintix-labs/hongbao/catalog"
	"github.com/zintix-labs/hongbao/event"
	"github.com/zintix-labs/hongbao/nav"
	"github.com/zintix-labs/hongbao/stats"
)

// TableState 牌局快照，所有操作成功後都回傳這個結構。
type TableState struct {
	ID    string       `json:"id"`    // 牌局編號 (uuid)
	Rules string       `json:"rules"` // 規則組名稱
	Table nav.Snapshot `json:"table"` // 當下快照
}

// Events 一次輪詢取出的事件；Dropped 為 outbox 滿時累計丟棄的數量。
type Events struct {
	ID      string           `json:"id"`
	Events  []event.Envelope `json:"events"`
	Dropped uint64           `json:"dropped"`
}

type RulesList struct {
	Default string            `json:"default"`
	Rules   []catalog.Summary `json:"rules"`
}

type SimResult struct {
	Stats    *stats.StatReport       `json:"stats"`
	Est      *stats.EstimatorPlayers `json:"est,omitempty"`
	Seed     int64                   `json:"seed"`
	UsedTime int64                   `json:"used_ms"`
}

// ErrorBody 錯誤回應。
type ErrorBody struct {
	Error string `json:"error"`
	Level string `json:"level,omitempty"`
}

func NewEvents(id string, envs []event.Envelope, dropped uint64) Events {
	if envs == nil {
		envs = []event.Envelope{}
	}
	return Events{ID: id, Events: envs, Dropped: dropped}
}
