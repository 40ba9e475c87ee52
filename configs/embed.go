// Package configs 內嵌預設的牌局規則設定。
//
//   - hongbao.yaml  : 預設規則（阿姨、骰子、解夢）
//   - relative.yaml : 變體規則，另外開放親戚稱謂
package configs

import (
	"embed"

	"github.com/zintix-labs/hongbao/spec"
)

//go:embed *.yaml
var FS embed.FS

// Default 讀取內嵌的 hongbao.yaml。
func Default() (*spec.Settings, error) {
	return spec.LoadSettings(FS, spec.DefaultConfigName)
}
